package cli

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ngxs-lang/ngxs/log"
)

// logFormat configures the logger format as a side effect of parsing via
// encoding.TextUnmarshaler, so flags parsed later still log correctly.
type logFormat string

func (f *logFormat) UnmarshalText(text []byte) error {
	*f = logFormat(text)
	log.Config(log.WithFormat(log.ParseFormat(string(*f))))

	return nil
}

// logLevel configures the logger level as a side effect of parsing via
// encoding.TextUnmarshaler.
type logLevel string

func (l *logLevel) UnmarshalText(text []byte) error {
	*l = logLevel(text)
	log.Config(log.WithLevel(log.ParseLevel(string(*l))))

	return nil
}

type logConfig struct {
	Level      logLevel  `default:"info"    enum:"trace,debug,info,warn,error" help:"Set log level."`
	Format     logFormat `default:"text"    enum:"json,text"                   help:"Set log format."`
	TimeLayout string    `default:"RFC3339"                                    help:"Set timestamp format."`
	Caller     bool      `default:"false"                                      help:"Include caller information."       negatable:""`
	Pretty     bool      `default:"false"                                      help:"Enable colorized pretty printing." negatable:""`
}

func (*logConfig) vars() kong.Vars { return kong.Vars{} }

func (*logConfig) group() kong.Group {
	return kong.Group{Key: "log", Title: "Logging options"}
}

// start finalizes the logger with every parsed value, including those that
// do not pass through TextUnmarshaler.
func (f *logConfig) start(ctx context.Context) {
	log.Config(
		log.WithLevel(log.ParseLevel(string(f.Level))),
		log.WithFormat(log.ParseFormat(string(f.Format))),
		log.WithTimeLayout(timeLayout(f.TimeLayout)),
		log.WithCaller(f.Caller),
		log.WithPretty(f.Pretty),
	)

	log.TraceContext(ctx, "logger initialized",
		slog.String("level", string(f.Level)),
		slog.String("format", string(f.Format)),
		slog.Bool("caller", f.Caller),
		slog.Bool("pretty", f.Pretty),
	)
}

// scan applies logger flags found in args before Kong begins parsing, so
// that messages emitted during parsing itself honor them. Value flags are
// also covered by TextUnmarshaler; boolean flags are only covered here.
func (f *logConfig) scan(args []string) {
	next := func(i int) (string, int) {
		if j := i + 1; j < len(args) && !strings.HasPrefix(args[j], "-") {
			return args[j], j
		}

		return "", i
	}

	for i := 0; i < len(args); i++ {
		name, value, assigned := strings.Cut(args[i], "=")

		switch name {
		case "--log-level":
			if !assigned {
				value, i = next(i)
			}

			_ = f.Level.UnmarshalText([]byte(value))

		case "--log-format":
			if !assigned {
				value, i = next(i)
			}

			_ = f.Format.UnmarshalText([]byte(value))

		case "--log-pretty", "--no-log-pretty", "--log-caller", "--no-log-caller":
			v := true
			if assigned {
				var err error
				if v, err = strconv.ParseBool(value); err != nil {
					continue
				}
			}

			if strings.HasPrefix(name, "--no-") {
				v = !v
			}

			if strings.HasSuffix(name, "pretty") {
				f.Pretty = v
				log.Config(log.WithPretty(v))
			} else {
				f.Caller = v
				log.Config(log.WithCaller(v))
			}
		}
	}
}

// timeLayout maps well-known layout names from the time package to their
// layout strings, passing anything else through unchanged.
func timeLayout(name string) string {
	switch name {
	case "RFC3339":
		return "2006-01-02T15:04:05Z07:00"
	case "RFC3339Nano":
		return "2006-01-02T15:04:05.999999999Z07:00"
	case "Kitchen":
		return "3:04PM"
	case "Stamp":
		return "Jan _2 15:04:05"
	case "DateTime":
		return "2006-01-02 15:04:05"
	case "TimeOnly":
		return "15:04:05"
	}

	return name
}
