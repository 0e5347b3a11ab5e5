package cmd

import (
	"context"
	"log/slog"

	"github.com/ngxs-lang/ngxs/lang"
	"github.com/ngxs-lang/ngxs/log"
)

// Build compiles a source file into nginx configuration text.
type Build struct {
	Source string `arg:"" default:"-" help:"Source input file or '-' for stdin." name:"source"`

	Out    string `default:"-"     help:"Output file or '-' for stdout."        short:"o" name:"out"`
	Indent int    `default:"2"     help:"Indent width per nesting level."       short:"i"`
	Expand bool   `default:"true"  help:"Inline template references."           negatable:""`
}

// Run executes the build command.
func (b *Build) Run(ctx context.Context) error {
	out, err := compile(ctx, b.Source, b.Indent, lang.WithExpand(b.Expand))
	if err != nil {
		return err
	}

	log.DebugContext(ctx, "compiled",
		slog.String("source", b.Source),
		slog.String("out", b.Out),
		slog.Int("bytes", len(out)),
	)

	return writeOutput(b.Out, out+"\n")
}
