package model

// LookupEntry correlates one flushed segment with the identifier it was
// flushed under. Entries are append-only; per-process order matches flush
// order.
type LookupEntry struct {
	// Key is the process tag concatenated with the dump sequence number,
	// e.g. "3" or "pid412_3". It matches the segment file's base name.
	Key string

	Identifier string
}

// CoveredFunction is one parsed line of a segment dump file.
type CoveredFunction struct {
	Offset     Address
	SourceFile Path // empty when the dump recorded the unknown marker
	Symbol     string
	SourceLine int
}

// SegmentDump is a parsed per-flush dump file: the main image header plus
// one entry per function touched during the segment.
type SegmentDump struct {
	ImageName string
	ImagePath Path
	Functions []CoveredFunction
}

// SegmentSummary pairs a lookup entry with its parsed dump file for
// offline display. Missing marks a reported per-flush write failure: the
// lookup entry exists but the numbered file does not.
type SegmentSummary struct {
	Entry   LookupEntry
	Dump    SegmentDump
	Missing bool
}
