package domain

import (
	"fmt"
	"io"
	"strings"

	m "github.com/mouse-blink/covlink/internal/model"
)

// Flusher persists the current coverage segment under an identifier.
// *Session satisfies it.
type Flusher interface {
	Flush(identifier string) error
}

// LifecycleController turns the six test-framework lifecycle callbacks into
// flush boundaries, so that each dump file holds exactly the functions
// touched between two consecutive boundaries.
//
// The first suite of a program and the first test of each suite trigger an
// extra flush: static-initialization and fixture-setup coverage lands in a
// dedicated setup segment instead of being merged into the first test's
// segment.
//
// All callbacks arrive from the single test-driver thread; the controller
// itself needs no lock.
type LifecycleController struct {
	flusher           Flusher
	dumpParameterized bool
	diag              io.Writer

	suite         string
	testID        string
	parameterized bool
	testCount     int
	suiteCount    int
}

// NewLifecycleController wires the controller to its flush target. Flush
// failures are reported to diag and swallowed; a coverage tool must never
// fail into the program under test.
func NewLifecycleController(flusher Flusher, dumpParameterized bool, diag io.Writer) *LifecycleController {
	return &LifecycleController{
		flusher:           flusher,
		dumpParameterized: dumpParameterized,
		diag:              diag,
	}
}

// ProgramStart is deliberately a no-op: coverage recorded before the first
// suite is attributed to the global setup segment flushed at suite start.
func (c *LifecycleController) ProgramStart() {}

// SuiteStart notes the new suite and, for the first suite of the program,
// flushes the global setup segment.
func (c *LifecycleController) SuiteStart(name string) {
	c.suite = name

	if strings.Contains(name, m.ParameterizedMarker) {
		c.parameterized = true
	}

	if c.suiteCount == 0 {
		c.dump(m.GlobalSetupIdentifier)
	}

	c.suiteCount++
}

// TestStart notes the new test and, for the first test of the current suite,
// flushes the suite's fixture-setup segment.
func (c *LifecycleController) TestStart(name string) {
	c.testID = m.TestID{Suite: c.suite, Case: name}.String()

	if c.testCount == 0 {
		c.dump(c.suite + m.SetupSuffix)
	}

	c.testCount++
}

// TestEnd flushes the finished test's segment with the result encoded in the
// identifier. Instances of parameterized suites are skipped when their dumps
// are suppressed, since many parameter instances of one logical test would
// produce near-duplicate dumps.
func (c *LifecycleController) TestEnd(result string) {
	if c.dumpParameterized || !c.parameterized {
		c.dump(c.testID + m.ResultSeparator + result)
	}
}

// SuiteEnd always flushes, then resets the per-suite tracking.
func (c *LifecycleController) SuiteEnd(result string) {
	c.dump(c.suite + m.ResultSeparator + result)

	c.testCount = 0
	c.parameterized = false
}

// ProgramEnd resets the per-program tracking and flushes the trailing
// teardown coverage under the global setup identifier.
func (c *LifecycleController) ProgramEnd() {
	c.suiteCount = 0
	c.dump(m.GlobalSetupIdentifier)
}

func (c *LifecycleController) dump(identifier string) {
	if err := c.flusher.Flush(identifier); err != nil && c.diag != nil {
		fmt.Fprintf(c.diag, "covlink: flush %s: %v\n", identifier, err)
	}
}
