package domain

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	m "github.com/mouse-blink/covlink/internal/model"
)

// Test-framework filter syntax tokens.
const (
	exclusionMarker   = "-"
	continuationToken = ":"
)

// BuildFilter reads a recorded exclusion file and merges its identifiers
// into an existing test-selection expression. Each line names one
// previously-recorded test as <module>!!!<suite>!!!<case>; the module prefix
// is dropped and the rest becomes a <suite>.<case> exclusion.
//
// A missing or unreadable file degrades to a no-op: the previous filter is
// returned unchanged. A line without the expected separators is a
// malformed-input error.
func BuildFilter(path m.Path, previous string) (string, error) {
	// #nosec G304 - path is the operator-supplied excludes file
	f, err := os.Open(string(path))
	if err != nil {
		return previous, nil
	}

	defer func() { _ = f.Close() }()

	return buildFilterFrom(f, previous)
}

func buildFilterFrom(r io.Reader, previous string) (string, error) {
	var excluded []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		id, err := m.ParseRawID(line)
		if err != nil {
			return "", err
		}

		excluded = append(excluded, id.String())
	}

	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read excludes: %w", err)
	}

	if len(excluded) == 0 {
		return previous, nil
	}

	return composeFilter(previous, excluded), nil
}

// composeFilter appends the exclusions to the previous expression: a fresh
// exclusion section when the expression has none yet, a continuation when it
// already does.
func composeFilter(previous string, excluded []string) string {
	joined := strings.Join(excluded, continuationToken)

	switch {
	case previous == "":
		return exclusionMarker + joined
	case strings.Contains(previous, exclusionMarker):
		return previous + continuationToken + joined
	default:
		return previous + exclusionMarker + joined
	}
}
