package domain

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/mouse-blink/covlink/internal/adapter"
	m "github.com/mouse-blink/covlink/internal/model"
)

// segmentFileExt is appended to the process tag and sequence number to form
// a dump file name.
const segmentFileExt = ".log"

// Session owns the mutable coverage state of one traced process: the
// function catalog, the set of functions touched since the last flush, the
// global first-occurrence set and the process-scoped counters. One explicit
// session per process replaces ambient globals so tests can run several
// independent sessions side by side.
//
// A single mutex protects everything: function-entry notifications arrive
// from whichever thread executes instrumented code, and the flush path reads
// the working set. The critical section of FunctionEntered is kept to set
// insertions and counter increments.
type Session struct {
	mu sync.Mutex

	opts  m.Options
	store adapter.DumpStore

	catalog *Catalog
	seen    map[m.Address]struct{}
	current map[m.Address]struct{}

	callCount uint64
	dumpSeq   int
	tag       string

	mainImage m.Image
	images    []m.Image
}

// NewSession wires a session to its dump store.
func NewSession(store adapter.DumpStore, opts m.Options) *Session {
	tag := ""

	if opts.FollowChildren {
		pid := opts.ProcessID
		if pid == 0 {
			pid = os.Getpid()
		}

		tag = fmt.Sprintf("pid%d_", pid)
	}

	return &Session{
		opts:    opts,
		store:   store,
		catalog: NewCatalog(),
		seen:    make(map[m.Address]struct{}),
		current: make(map[m.Address]struct{}),
		tag:     tag,
	}
}

// ImageLoaded records a loaded image. The main executable's identity becomes
// the header of every dump file.
func (s *Session) ImageLoaded(img m.Image) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.images = append(s.images, img)

	if img.Main {
		s.mainImage = img
	}
}

// RecordFunction upserts the static metadata of a discovered function.
func (s *Session) RecordFunction(rec m.FunctionRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.catalog.Record(rec)
}

// FunctionEntered notes that the function at addr was entered. It always
// joins the current segment's working set, so a function repeated across
// many segments is captured once per segment. The return value reports
// whether a standalone tracer should log this call: every call when
// LogAllCalls is set, otherwise only the first occurrence per process.
//
// This is the hot path of every traced call.
func (s *Session) FunctionEntered(addr m.Address) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.callCount++
	s.current[addr] = struct{}{}

	if s.opts.LogAllCalls {
		return true
	}

	if _, ok := s.seen[addr]; ok {
		return false
	}

	s.seen[addr] = struct{}{}

	return true
}

// Snapshot resolves the current working set against the catalog. Addresses
// without a catalog record are silently skipped; metadata recording and
// coverage recording may race under lazy instrumentation. The working set is
// not cleared.
func (s *Session) Snapshot() []m.FunctionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() []m.FunctionRecord {
	records := make([]m.FunctionRecord, 0, len(s.current))

	for addr := range s.current {
		if rec, ok := s.catalog.Lookup(addr); ok {
			records = append(records, rec)
		}
	}

	return records
}

// Flush persists the current segment under the given identifier and clears
// the working set, ending one segment and starting the next.
//
// The sequence number advances even when the segment file cannot be written,
// so later dumps stay internally consistent; the gap shows up as a lookup
// entry without a numbered file. The returned error is diagnostic only and
// must not be propagated into the instrumented program.
func (s *Session) Flush(identifier string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dumpSeq++
	key := fmt.Sprintf("%s%d", s.tag, s.dumpSeq)

	var errs []error

	if err := s.writeSegment(key); err != nil {
		errs = append(errs, err)
	}

	if err := s.store.AppendLookup(key, identifier); err != nil {
		errs = append(errs, err)
	}

	clear(s.current)

	return errors.Join(errs...)
}

func (s *Session) writeSegment(key string) error {
	w, err := s.store.CreateSegment(key + segmentFileExt)
	if err != nil {
		return fmt.Errorf("create segment %s: %w", key, err)
	}

	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "%s\t%s\n", s.mainImage.Name, s.mainImage.Path)

	for _, rec := range s.snapshotLocked() {
		src := rec.SourceFile
		if src == "" {
			src = "??"
		}

		fmt.Fprintf(bw, "\t+0x%x\t%s\t%s\t%d\n", uint64(rec.Offset()), src, rec.Symbol, rec.SourceLine)
	}

	if err := bw.Flush(); err != nil {
		_ = w.Close()
		return fmt.Errorf("write segment %s: %w", key, err)
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("close segment %s: %w", key, err)
	}

	return nil
}

// Stats reports the total call count and the number of distinct functions
// recorded in the first-occurrence set.
func (s *Session) Stats() (calls uint64, unique int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.callCount, len(s.seen)
}

// Close writes the optional module list and releases the dump store. The
// working set of a never-flushed final segment is intentionally lost.
func (s *Session) Close() error {
	s.mu.Lock()
	images := s.images
	s.mu.Unlock()

	var errs []error

	if s.opts.ModulesFile != "" {
		if err := s.store.WriteModules(s.opts.ModulesFile, images); err != nil {
			errs = append(errs, err)
		}
	}

	if err := s.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close dump store: %w", err))
	}

	return errors.Join(errs...)
}
