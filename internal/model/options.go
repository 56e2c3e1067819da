package model

// Options carries the operational configuration of a coverage session.
// These are external inputs; none of them change while a session runs.
type Options struct {
	// LogDir receives the per-segment dump files and the lookup file.
	LogDir Path

	// FollowChildren opens the lookup file in append mode and prefixes
	// every sequence number with a process tag so that dumps from a parent
	// and its followed children never collide.
	FollowChildren bool

	// ProcessID overrides the tag source for engine bindings that report
	// the traced process id themselves. Zero means "this process".
	ProcessID int

	// LogAllCalls disables the global first-occurrence gate: every call is
	// counted and traced, not only the first per process.
	LogAllCalls bool

	// DumpParameterized controls whether each instance of a parameterized
	// suite gets its own per-test dump. When false, per-test dumps for
	// parameterized suites are suppressed.
	DumpParameterized bool

	// IncludeLibs instruments shared libraries in addition to the main
	// executable.
	IncludeLibs bool

	// FilterImage, when non-empty, restricts instrumentation to images
	// whose name contains this substring.
	FilterImage string

	// ExcludeImages lists image-name substrings to skip. Empty means the
	// default system-library exclusions apply.
	ExcludeImages []string

	// NoDefaultExcludes disables the default exclusion list entirely.
	NoDefaultExcludes bool

	// ModulesFile, when non-empty, receives a YAML list of every loaded
	// image at session close.
	ModulesFile Path
}
