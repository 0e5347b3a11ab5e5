package cmd

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/zeebo/xxh3"

	"github.com/ngxs-lang/ngxs/log"
)

// Watch recompiles a source file whenever it or anything in its import
// search path changes.
type Watch struct {
	Source string `arg:"" help:"Source input file." name:"source" type:"existingfile"`

	Out      string        `default:"-"     help:"Output file or '-' for stdout."     short:"o" name:"out"`
	Indent   int           `default:"2"     help:"Indent width per nesting level."    short:"i"`
	Debounce time.Duration `default:"200ms" help:"Delay before recompiling after a change."`
}

// Run executes the watch command. It blocks until the context is canceled.
func (w *Watch) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch directories rather than files so editors that replace files
	// via rename do not silently drop the watch.
	dirs := append([]string{filepath.Dir(w.Source)}, searchPathFrom(ctx)...)
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return err
		}

		log.DebugContext(ctx, "watching", slog.String("dir", dir))
	}

	// Fingerprint of the last written output. Rebuilds that produce
	// identical text skip the write so downstream watchers of the output
	// file do not fire spuriously.
	var last uint64

	build := func() {
		out, err := compile(ctx, w.Source, w.Indent)
		if err != nil {
			log.ErrorContext(ctx, "compile failed",
				slog.String("source", w.Source),
				slog.Any("error", err),
			)

			return
		}

		if sum := xxh3.HashString(out); sum != last {
			if err := writeOutput(w.Out, out+"\n"); err != nil {
				log.ErrorContext(ctx, "write failed",
					slog.String("out", w.Out),
					slog.Any("error", err),
				)

				return
			}

			last = sum
		}

		log.InfoContext(ctx, "compiled",
			slog.String("source", w.Source),
			slog.String("out", w.Out),
		)
	}

	build()

	var (
		debounce *time.Timer
		rebuild  <-chan time.Time
	)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if !event.Op.Has(fsnotify.Write) &&
				!event.Op.Has(fsnotify.Create) &&
				!event.Op.Has(fsnotify.Rename) {
				continue
			}

			log.TraceContext(ctx, "fs event",
				slog.String("name", event.Name),
				slog.String("op", event.Op.String()),
			)

			if debounce == nil {
				debounce = time.NewTimer(w.Debounce)
				rebuild = debounce.C
			} else {
				debounce.Reset(w.Debounce)
			}

		case <-rebuild:
			build()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			log.WarnContext(ctx, "watch error", slog.Any("error", err))
		}
	}
}
