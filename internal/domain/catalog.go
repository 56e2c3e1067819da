// Package domain implements the coverage segmentation and dump-correlation
// core: the function catalog, the per-segment working set, the flush
// protocol and the test-lifecycle state machine that drives it.
package domain

import (
	m "github.com/mouse-blink/covlink/internal/model"
)

// Catalog maps function entry addresses to their static metadata. It is
// populated once per function when the engine discovers it and read-only
// from the hot path's perspective afterwards.
//
// Catalog is not safe for concurrent use on its own; Session serializes all
// access under its lock.
type Catalog struct {
	funcs map[m.Address]m.FunctionRecord
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{funcs: make(map[m.Address]m.FunctionRecord)}
}

// Record upserts the metadata for rec's entry address. Re-recording the same
// address overwrites the prior record, which supports image reloads.
func (c *Catalog) Record(rec m.FunctionRecord) {
	c.funcs[rec.Addr] = rec
}

// Lookup returns the record for addr. The second result is false when the
// address was never recorded; callers must degrade gracefully rather than
// fail.
func (c *Catalog) Lookup(addr m.Address) (m.FunctionRecord, bool) {
	rec, ok := c.funcs[addr]
	return rec, ok
}

// Len reports the number of distinct recorded functions.
func (c *Catalog) Len() int {
	return len(c.funcs)
}
