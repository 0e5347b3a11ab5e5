// Package log provides structured logging built on [log/slog].
//
// It extends the standard levels with [LevelTrace] for high-volume
// diagnostics such as per-node render events, and offers text, JSON,
// and colorized pretty output formats.
//
// A package-level logger is available through [Config] and the
// top-level logging functions. Components that need their own logger
// construct one with [Make] and thread it explicitly.
package log
