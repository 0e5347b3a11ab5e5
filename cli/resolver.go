package cli

import (
	"io"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ngxs-lang/ngxs/lang"
)

// resolve is a [kong.ConfigurationLoader] that reads flag defaults from a
// config file written in the compiler's own source syntax. Each top-level
// directive names a flag, with hyphens written as underscores:
//
//	log_level debug;
//	log_format text;
//	include "/etc/ngxs/lib";
//
// Command-line flags override config file values. Blocks and template
// definitions in the file are ignored.
func resolve(r io.Reader) (kong.Resolver, error) {
	cfg, err := lang.ParseReader(r)
	if err != nil {
		// Unparseable config file contributes no defaults.
		return flagValues{}, nil
	}

	values := make(flagValues)

	for _, node := range cfg.Statements {
		dir, ok := node.(*lang.Directive)
		if !ok || len(dir.Args) == 0 {
			continue
		}

		args := make([]string, len(dir.Args))
		for i, arg := range dir.Args {
			args[i] = unquote(arg)
		}

		if len(args) == 1 {
			values[dir.Name] = args[0]
		} else {
			values[dir.Name] = args
		}
	}

	return values, nil
}

// flagValues implements [kong.Resolver] over directive name/value pairs.
type flagValues map[string]any

func (flagValues) Validate(*kong.Application) error { return nil }

func (v flagValues) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	if value, ok := v[flag.Name]; ok {
		return value, nil
	}

	// Flag names use hyphens, directive names use underscores.
	if value, ok := v[strings.ReplaceAll(flag.Name, "-", "_")]; ok {
		return value, nil
	}

	return nil, nil
}

// unquote strips one pair of surrounding quotes, if present.
func unquote(s string) string {
	if len(s) >= 2 {
		if q := s[0]; (q == '"' || q == '\'') && s[len(s)-1] == q {
			return s[1 : len(s)-1]
		}
	}

	return s
}
