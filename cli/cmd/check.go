package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/exec"

	"github.com/ngxs-lang/ngxs/log"
)

// Check compiles a source file and validates the result with nginx -t.
type Check struct {
	Source string `arg:"" default:"-" help:"Source input file or '-' for stdin." name:"source"`

	Nginx  string `default:"nginx" help:"Path to the nginx binary."`
	Indent int    `default:"2"     help:"Indent width per nesting level." short:"i"`
}

// Run executes the check command.
func (c *Check) Run(ctx context.Context) error {
	out, err := compile(ctx, c.Source, c.Indent)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp("", "ngxs-check-*.conf")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(out + "\n"); err != nil {
		tmp.Close()

		return err
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	log.DebugContext(ctx, "validating",
		slog.String("source", c.Source),
		slog.String("conf", tmp.Name()),
		slog.String("nginx", c.Nginx),
	)

	// nginx -t writes its verdict to stderr.
	cmd := exec.CommandContext(ctx, c.Nginx, "-t", "-c", tmp.Name())
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return cmd.Run()
}
