package cli

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ardnew/mung"

	"github.com/ngxs-lang/ngxs/pkg"
)

// SearchPathVar is the environment variable holding additional directories,
// separated by the OS path list separator, searched for imported files.
const SearchPathVar = "NGXS_PATH"

// baseConfig is the base name of the configuration file.
const baseConfig = "config.ngxs"

var defaultDirMode os.FileMode = 0o700

// basePrefix returns the identifier used to construct per-user directory
// paths. It is the base name of the executable unless that name looks like
// a debugger or dot-prefixed artifact.
var basePrefix = sync.OnceValue(
	func() string {
		id := os.Args[0]
		if exe, err := os.Executable(); err == nil {
			id = exe
		}

		id = strings.TrimSuffix(filepath.Base(id), filepath.Ext(id))

		switch {
		case strings.HasPrefix(id, "__debug_bin"): // dlv default output
			return pkg.Name
		case strings.HasPrefix(id, "."):
			return strings.TrimLeft(id, ".")
		}

		return id
	},
)

// configDir returns the per-user configuration directory path.
var configDir = sync.OnceValue(
	func() string {
		dir, err := os.UserConfigDir()
		if err != nil {
			if dir, err = os.UserHomeDir(); err == nil {
				dir = filepath.Join(dir, ".config")
			} else {
				dir = "."
			}
		}

		return filepath.Join(dir, basePrefix())
	},
)

// cacheDir returns the per-user cache directory path used for transient
// files such as pprof output.
var cacheDir = sync.OnceValue(
	func() string {
		dir, err := os.UserCacheDir()
		if err != nil {
			if dir, err = os.UserHomeDir(); err == nil {
				dir = filepath.Join(dir, ".cache")
			} else {
				dir = "."
			}
		}

		return filepath.Join(dir, basePrefix())
	},
)

// configPath joins the given path elements onto the configuration directory.
func configPath(elem ...string) string {
	return filepath.Join(append([]string{configDir()}, elem...)...)
}

// mkdirAllRequired creates all required runtime directories.
func mkdirAllRequired() error {
	for _, dir := range []string{configDir(), cacheDir()} {
		if err := os.MkdirAll(dir, defaultDirMode); err != nil {
			return err
		}
	}

	return nil
}

// searchPath assembles the import search path from explicit --include
// directories and the [SearchPathVar] environment variable. Explicit
// directories take precedence and entries that are not directories are
// dropped.
func searchPath(include []string) []string {
	joined := mung.Make(
		mung.WithSubjectItems(os.Getenv(SearchPathVar)),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(include...),
		mung.WithFilter(func(dir string) bool {
			info, err := os.Stat(dir)

			return err == nil && info.IsDir()
		}),
	).String()

	return filepath.SplitList(joined)
}
