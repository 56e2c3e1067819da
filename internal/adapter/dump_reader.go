package adapter

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	m "github.com/mouse-blink/covlink/internal/model"
)

// unknownSourceMarker is written in place of the source file when debug info
// was unavailable at dump time.
const unknownSourceMarker = "??"

// LoadLookup parses the lookup file of a log directory into ordered entries.
func LoadLookup(dir m.Path) ([]m.LookupEntry, error) {
	path := filepath.Join(string(dir), LookupFileName)

	// #nosec G304 - path is derived from the operator's log directory
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open lookup file %s: %w", path, err)
	}

	defer func() { _ = f.Close() }()

	var entries []m.LookupEntry

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		key, identifier, ok := strings.Cut(line, ";")
		if !ok {
			return nil, fmt.Errorf("malformed lookup line %q in %s", line, path)
		}

		entries = append(entries, m.LookupEntry{Key: key, Identifier: identifier})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read lookup file %s: %w", path, err)
	}

	return entries, nil
}

// LoadSegment parses one per-flush dump file.
func LoadSegment(path m.Path) (m.SegmentDump, error) {
	// #nosec G304 - path is derived from lookup entries in the log directory
	f, err := os.Open(string(path))
	if err != nil {
		return m.SegmentDump{}, err
	}

	defer func() { _ = f.Close() }()

	var dump m.SegmentDump

	scanner := bufio.NewScanner(f)

	if scanner.Scan() {
		name, imagePath, ok := strings.Cut(scanner.Text(), "\t")
		if !ok {
			return m.SegmentDump{}, fmt.Errorf("malformed header in %s", path)
		}

		dump.ImageName = name
		dump.ImagePath = m.Path(imagePath)
	}

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		fn, err := parseCoveredFunction(line)
		if err != nil {
			return m.SegmentDump{}, fmt.Errorf("%s: %w", path, err)
		}

		dump.Functions = append(dump.Functions, fn)
	}

	if err := scanner.Err(); err != nil {
		return m.SegmentDump{}, fmt.Errorf("read segment %s: %w", path, err)
	}

	return dump, nil
}

// LoadSegments resolves every lookup entry to its dump file, parsing the
// files concurrently. Entries whose numbered file is missing (a reported
// per-flush failure) are kept and marked, not treated as errors.
func LoadSegments(dir m.Path, entries []m.LookupEntry) ([]m.SegmentSummary, error) {
	summaries := make([]m.SegmentSummary, len(entries))

	var g errgroup.Group

	for i, entry := range entries {
		i, entry := i, entry
		g.Go(func() error {
			path := m.Path(filepath.Join(string(dir), entry.Key+".log"))

			dump, err := LoadSegment(path)
			if os.IsNotExist(err) {
				summaries[i] = m.SegmentSummary{Entry: entry, Missing: true}
				return nil
			}

			if err != nil {
				return err
			}

			summaries[i] = m.SegmentSummary{Entry: entry, Dump: dump}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return summaries, nil
}

func parseCoveredFunction(line string) (m.CoveredFunction, error) {
	fields := strings.Split(line, "\t")
	// Leading tab yields an empty first field.
	if len(fields) != 5 || fields[0] != "" {
		return m.CoveredFunction{}, fmt.Errorf("malformed coverage line %q", line)
	}

	offsetHex, ok := strings.CutPrefix(fields[1], "+0x")
	if !ok {
		return m.CoveredFunction{}, fmt.Errorf("malformed offset %q", fields[1])
	}

	offset, err := strconv.ParseUint(offsetHex, 16, 64)
	if err != nil {
		return m.CoveredFunction{}, fmt.Errorf("malformed offset %q: %w", fields[1], err)
	}

	srcLine, err := strconv.Atoi(fields[4])
	if err != nil {
		return m.CoveredFunction{}, fmt.Errorf("malformed source line %q: %w", fields[4], err)
	}

	src := fields[2]
	if src == unknownSourceMarker {
		src = ""
	}

	return m.CoveredFunction{
		Offset:     m.Address(offset),
		SourceFile: m.Path(src),
		Symbol:     fields[3],
		SourceLine: srcLine,
	}, nil
}
