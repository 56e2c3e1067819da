// Package model defines the data structures for coverage correlation.
package model

// Path represents a file system path.
type Path string

// Address identifies a function by its runtime entry address.
type Address uint64

// Image describes a loaded executable or shared library as reported by
// the instrumentation engine.
type Image struct {
	Name string `yaml:"name"`
	Path Path   `yaml:"path"`
	Low  Address `yaml:"low"`
	High Address `yaml:"high"`
	Main bool   `yaml:"main,omitempty"`
}

// FunctionRecord holds the static metadata of a single discovered function.
// Records are keyed by entry address and never mutated after insertion;
// re-loading an image at the same address overwrites (last write wins).
type FunctionRecord struct {
	Addr       Address
	Image      string // image file name, without directory
	ImagePath  Path
	ImageLow   Address
	Symbol     string
	Size       uint32
	SourceFile Path // empty when debug info is unavailable
	SourceLine int  // meaningless when SourceFile is empty
}

// Offset returns the function entry offset relative to its image base.
func (r FunctionRecord) Offset() Address {
	return r.Addr - r.ImageLow
}

// End returns the first address past the function body.
func (r FunctionRecord) End() Address {
	return r.Addr + Address(r.Size)
}
