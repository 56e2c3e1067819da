package domain

import (
	"fmt"
	"io"
	"sync"

	m "github.com/mouse-blink/covlink/internal/model"
)

// Tracer implements the standalone trace mode: instead of segmented dumps it
// logs every function entry as one line of a flat trace file. Trace mode and
// dump mode are mutually exclusive, so the tracer carries its own lock and
// counters rather than sharing a session.
type Tracer struct {
	mu sync.Mutex

	w       io.Writer
	logAll  bool
	catalog *Catalog

	calls uint64
	seen  map[m.Address]struct{}
}

// NewTracer writes trace output to w. With logAll set every call is logged,
// otherwise only the first occurrence of each function.
func NewTracer(w io.Writer, logAll bool) *Tracer {
	return &Tracer{
		w:       w,
		logAll:  logAll,
		catalog: NewCatalog(),
		seen:    make(map[m.Address]struct{}),
	}
}

// WriteHeader emits the fixed trace file preamble.
func (t *Tracer) WriteHeader() {
	fmt.Fprintln(t.w, "# Function Trace Output")
	fmt.Fprintln(t.w, "# Format: call# | image | symbol | start_addr | end_addr | offset_range | source:line")
	fmt.Fprintln(t.w, "# ========================================")
}

// ImageLoaded logs a loaded image with its address range.
func (t *Tracer) ImageLoaded(img m.Image) {
	t.mu.Lock()
	defer t.mu.Unlock()

	fmt.Fprintf(t.w, "# IMAGE LOADED: %s [0x%x - 0x%x]\n", img.Path, uint64(img.Low), uint64(img.High))
}

// RecordFunction keeps the discovered metadata for later entry lines.
func (t *Tracer) RecordFunction(rec m.FunctionRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.catalog.Record(rec)
}

// FunctionEntered logs one call line. Without logAll, repeat entries of a
// function already seen in this process are counted but not logged.
func (t *Tracer) FunctionEntered(addr m.Address) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.calls++

	if !t.logAll {
		if _, ok := t.seen[addr]; ok {
			return
		}

		t.seen[addr] = struct{}{}
	}

	rec, ok := t.catalog.Lookup(addr)
	if !ok {
		return
	}

	src := string(rec.SourceFile)
	if src == "" {
		src = "??"
	}

	fmt.Fprintf(t.w, "%d | %s | %s | 0x%x | 0x%x | +0x%x-0x%x | %s:%d\n",
		t.calls,
		rec.Image,
		rec.Symbol,
		uint64(rec.Addr),
		uint64(rec.End()),
		uint64(rec.Offset()),
		uint64(rec.End()-rec.ImageLow),
		src,
		rec.SourceLine,
	)
}

// WriteFooter emits the close-time totals.
func (t *Tracer) WriteFooter() {
	t.mu.Lock()
	defer t.mu.Unlock()

	fmt.Fprintln(t.w, "# ========================================")
	fmt.Fprintf(t.w, "# Total function calls: %d\n", t.calls)
	fmt.Fprintf(t.w, "# Unique functions seen: %d\n", len(t.seen))
	fmt.Fprintln(t.w, "# ========================================")
}
