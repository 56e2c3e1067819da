package model

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// RawIDSeparator separates module, suite and case in recorded
	// exclusion-file identifiers.
	RawIDSeparator = "!!!"

	// TestCaseSeparator joins suite and case the way the test framework
	// filter syntax expects them.
	TestCaseSeparator = "."

	// ParameterizedMarker appears in the suite name of every instance of a
	// parameterized suite.
	ParameterizedMarker = "/"

	// ResultSeparator joins a test or suite identifier with its result in
	// dump identifiers.
	ResultSeparator = "___"

	// SetupSuffix labels the segment holding a suite's fixture-setup
	// coverage, flushed right before its first test body runs.
	SetupSuffix = "___setup"

	// GlobalSetupIdentifier labels the segments holding coverage recorded
	// outside any suite: static initialization before the first suite and
	// teardown after the last one.
	GlobalSetupIdentifier = "GLOBAL_TEST_SETUP"
)

// ErrMalformedTestID reports an exclusion-file line that does not follow the
// <module>!!!<suite>!!!<case> layout.
var ErrMalformedTestID = errors.New("malformed test identifier")

// TestID identifies a single test case within a suite.
type TestID struct {
	Suite string
	Case  string
}

// String renders the identifier in the test framework's own syntax.
func (id TestID) String() string {
	return id.Suite + TestCaseSeparator + id.Case
}

// ParseRawID parses a recorded exclusion line of the form
// <module>!!!<suite>!!!<case>. The module prefix is dropped; a case name may
// itself contain the separator. Lines missing either separator are rejected.
func ParseRawID(line string) (TestID, error) {
	parts := strings.SplitN(line, RawIDSeparator, 3)
	if len(parts) < 3 {
		return TestID{}, fmt.Errorf("%w: %q", ErrMalformedTestID, line)
	}

	return TestID{Suite: parts[1], Case: parts[2]}, nil
}
