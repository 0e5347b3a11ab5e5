package cmd

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/klauspost/readahead"

	"github.com/ngxs-lang/ngxs/lang"
	"github.com/ngxs-lang/ngxs/log"
)

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

type (
	contextKey    struct{}
	searchPathKey struct{}
	diagnoseKey   struct{}
)

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

// KongContextFrom retrieves the kong.Context stored by [WithContext], or nil.
func KongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok {
		return nil
	}

	return ktx
}

// WithSearchPath returns a new context.Context carrying the directories
// searched for imported files.
func WithSearchPath(ctx context.Context, dirs []string) context.Context {
	return context.WithValue(ctx, searchPathKey{}, dirs)
}

func searchPathFrom(ctx context.Context) []string {
	dirs, _ := ctx.Value(searchPathKey{}).([]string)

	return dirs
}

// Diagnose is the hook commands use to present positioned compile errors.
type Diagnose func(name, source string, err error)

// WithDiagnose returns a new context.Context carrying the diagnostic hook.
func WithDiagnose(ctx context.Context, fn Diagnose) context.Context {
	return context.WithValue(ctx, diagnoseKey{}, fn)
}

func diagnoseFrom(ctx context.Context) Diagnose {
	if fn, ok := ctx.Value(diagnoseKey{}).(Diagnose); ok {
		return fn
	}

	return func(string, string, error) {}
}

// readSource reads the full contents of path, or of stdin when path is "-".
// It returns the source text and a display name for diagnostics.
func readSource(path string) (src, name string, err error) {
	if path == stdinSource {
		data, err := io.ReadAll(readahead.NewReader(os.Stdin))
		if err != nil {
			return "", "", lang.ErrReadInput.Wrap(err)
		}

		return string(data), "<stdin>", nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", lang.ErrReadInput.Wrap(err)
	}

	return string(data), path, nil
}

// writeOutput writes data to path, or to stdout when path is "-". File
// output goes through a temp file in the target directory and a rename, so
// a failed compile never truncates an existing file.
func writeOutput(path, data string) error {
	if path == stdinSource {
		_, err := io.WriteString(os.Stdout, data)

		return err
	}

	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}

	if _, err := tmp.WriteString(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())

		return err
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())

		return err
	}

	return os.Rename(tmp.Name(), path)
}

// compile parses and renders a single source file with the shared options
// every subcommand uses. Extra render options are applied last.
func compile(
	ctx context.Context,
	path string,
	indent int,
	extra ...lang.RenderOption,
) (string, error) {
	src, name, err := readSource(path)
	if err != nil {
		return "", err
	}

	cfg, err := lang.Parse(src)
	if err != nil {
		diagnoseFrom(ctx)(name, src, err)

		return "", err
	}

	opts := []lang.RenderOption{
		lang.WithIndent(strings.Repeat(" ", indent)),
		lang.WithSearchPath(searchPathFrom(ctx)...),
		lang.WithRenderLogger(log.Default()),
	}

	if path != stdinSource {
		opts = append(opts, lang.WithOrigin(path))
	}

	opts = append(opts, extra...)

	out, err := lang.Render(cfg, opts...)
	if err != nil {
		diagnoseFrom(ctx)(name, src, err)

		return "", err
	}

	return out, nil
}
