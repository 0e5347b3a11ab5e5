package profile

// Tag is the build tag that enables profiling support.
const Tag = "pprof"

// Profiler configures runtime profiling for a single compiler invocation.
//
// Without the pprof build tag, or with Mode unset, Start returns a no-op
// controller. Both Start and Stop are always safe to call.
type Profiler struct {
	// Mode selects the profile to collect. See [Modes] for valid values.
	Mode string

	// Path is the directory profile files are written to.
	Path string

	// Quiet suppresses the profiler's own logging.
	Quiet bool
}

// Start begins collecting the configured profile and returns a controller
// whose Stop method flushes the profile to disk.
func (p Profiler) Start() interface{ Stop() } {
	if p.Mode == "" {
		return noop{}
	}

	return start(p.Mode, p.Path, p.Quiet)
}

type noop struct{}

func (noop) Stop() {}
