package cmd

import (
	"context"
	"encoding/json"
	"os"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ngxs-lang/ngxs/lang"
)

// Fmt parses a source file and prints it back in the chosen representation.
type Fmt struct {
	Native Native `cmd:"" default:"withargs" help:"Format as canonical source syntax (default)."`
	JSON   JSON   `cmd:""                    help:"Dump the parse tree as JSON."`
	YAML   YAML   `cmd:""                    help:"Dump the parse tree as YAML."`
	AST    AST    `cmd:""                    help:"Dump the parse tree as an annotated outline."`
}

// Native reformats source without expanding templates or imports, so the
// output remains valid compiler input.
type Native struct {
	Indent int `default:"2" help:"Indent width for formatted output" short:"i"`

	Source string `arg:"" default:"-" help:"Source input file or '-' for stdin." name:"source"`
}

// Run executes the fmt native command.
func (f *Native) Run(ctx context.Context) error {
	out, err := compile(ctx, f.Source, f.Indent, lang.WithPreserve(true))
	if err != nil {
		return err
	}

	_, err = os.Stdout.WriteString(out + "\n")

	return err
}

// JSON dumps the parse tree as JSON.
type JSON struct {
	Indent int `default:"2" help:"Indent width for JSON output" short:"i"`

	Source string `arg:"" default:"-" help:"Source input file or '-' for stdin." name:"source"`
}

// Run executes the fmt json command.
func (j *JSON) Run(ctx context.Context) error {
	cfg, err := parseSource(ctx, j.Source)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", strings.Repeat(" ", j.Indent))

	return enc.Encode(cfg.Tree())
}

// YAML dumps the parse tree as YAML.
type YAML struct {
	Indent int `default:"2" help:"Indent width for YAML output" short:"i"`

	Source string `arg:"" default:"-" help:"Source input file or '-' for stdin." name:"source"`
}

// Run executes the fmt yaml command.
func (y *YAML) Run(ctx context.Context) error {
	cfg, err := parseSource(ctx, y.Source)
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(os.Stdout, yaml.Indent(y.Indent))
	defer enc.Close()

	return enc.Encode(cfg.Tree())
}

// AST dumps the parse tree as an annotated outline with source positions.
type AST struct {
	Source string `arg:"" default:"-" help:"Source input file or '-' for stdin." name:"source"`
}

// Run executes the fmt ast command.
func (a *AST) Run(ctx context.Context) error {
	cfg, err := parseSource(ctx, a.Source)
	if err != nil {
		return err
	}

	return cfg.Dump(os.Stdout)
}

// parseSource reads and parses a single source file without rendering it.
func parseSource(ctx context.Context, path string) (*lang.Config, error) {
	src, name, err := readSource(path)
	if err != nil {
		return nil, err
	}

	cfg, err := lang.Parse(src)
	if err != nil {
		diagnoseFrom(ctx)(name, src, err)

		return nil, err
	}

	return cfg, nil
}
