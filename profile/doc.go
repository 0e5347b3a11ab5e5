// Package profile provides optional runtime profiling via
// [github.com/pkg/profile].
//
// Profiling is compiled in only when the build tag named by [Tag] is set:
//
//	go build -tags pprof
//
// Without the tag every operation is a no-op with zero overhead, so the
// command-line surface can reference this package unconditionally.
//
// Collect a profile by constructing a [Profiler] and deferring Stop:
//
//	ctrl := profile.Profiler{Mode: "cpu", Path: "/tmp/profiles"}.Start()
//	defer ctrl.Stop()
//
// Profile files are written to the given directory named after the mode,
// e.g. cpu.pprof. Analyze them with go tool pprof.
package profile
