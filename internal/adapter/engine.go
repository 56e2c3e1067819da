// Package adapter contains the collaborator boundaries of covlink: the host
// instrumentation engine and the on-disk dump storage.
package adapter

import (
	m "github.com/mouse-blink/covlink/internal/model"
)

// MarkerFunctionName is the reserved symbol an instrumented program calls to
// trigger a coverage flush. The engine intercepts calls to it and forwards
// the identifier argument. Keeping the symbol observable (not inlined, not
// eliminated) is a build-time contract with the instrumented program.
const MarkerFunctionName = "covlink_dump_coverage"

// Hooks receives the host engine's runtime notifications. Any hook may be
// nil; the engine skips it. FunctionEntered may be invoked from many threads
// concurrently; the lifecycle hooks arrive from the single test-driver
// thread.
type Hooks struct {
	ImageLoaded        func(img m.Image)
	FunctionDiscovered func(rec m.FunctionRecord)
	FunctionEntered    func(addr m.Address)
	MarkerCalled       func(identifier string)

	ProgramStarted func()
	SuiteStarted   func(name string)
	TestStarted    func(name string)
	TestEnded      func(result string)
	SuiteEnded     func(result string)
	ProgramEnded   func()
}

// Engine abstracts the binary-instrumentation engine that drives a coverage
// session. Run delivers events to the hooks until the traced program ends.
// Modeling the engine as an injected dependency keeps the core testable
// without a real instrumentation engine present.
type Engine interface {
	Run(hooks Hooks) error
}
