// Package cli contains the command line interface for the ngxs compiler.
//
// # Usage
//
//	ngxs [flags] <command> [source]
//
// Commands:
//
//   - build: compile a source file to nginx configuration (default)
//   - fmt:   reformat a source file or dump its parse tree
//   - check: compile and validate the output with nginx -t
//   - watch: recompile whenever the source or its imports change
//
// Source is a file path or '-' for stdin. Imported files are resolved
// against the importing file's directory, then any --include directories,
// then the directories listed in the NGXS_PATH environment variable.
//
// # Configuration File
//
// Flag defaults may be placed in a config.ngxs file in the user config
// directory, written as plain directives with underscores in place of
// hyphens:
//
//	log_level debug;
//	include "/etc/ngxs/lib";
//
// Command-line flags override config file values.
//
// # Logging Options
//
//   - --log-level:  Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp format (RFC3339, RFC3339Nano, etc.)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Enable colorized pretty printing
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag
// (go build -tags pprof):
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory
package cli
