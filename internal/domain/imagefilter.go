package domain

import (
	"strings"

	m "github.com/mouse-blink/covlink/internal/model"
)

// DefaultExcludedImages lists the system libraries skipped by default.
// Coverage of libc internals never helps test selection and instrumenting
// them costs a lot of hot-path traffic.
var DefaultExcludedImages = []string{
	"libc.so",
	"ld-linux",
	"libm.so",
	"libpthread",
	"libdl.so",
	"libstdc++",
	"libc++",
}

// ImageFilter decides at instrumentation time which loaded images get
// instrumented. Rejected images produce no function discoveries and no entry
// events at all.
type ImageFilter struct {
	includeLibs bool
	include     string
	exclude     []string
}

// NewImageFilter builds the filter from session options. An explicit exclude
// list replaces the defaults; NoDefaultExcludes clears them entirely.
func NewImageFilter(opts m.Options) *ImageFilter {
	exclude := opts.ExcludeImages

	if opts.NoDefaultExcludes {
		exclude = nil
	} else if len(exclude) == 0 {
		exclude = DefaultExcludedImages
	}

	return &ImageFilter{
		includeLibs: opts.IncludeLibs,
		include:     opts.FilterImage,
		exclude:     exclude,
	}
}

// Admit reports whether the image should be instrumented.
func (f *ImageFilter) Admit(img m.Image) bool {
	if !f.includeLibs && !img.Main {
		return false
	}

	for _, pattern := range f.exclude {
		if pattern != "" && strings.Contains(img.Name, pattern) {
			return false
		}
	}

	if f.include != "" && !strings.Contains(img.Name, f.include) {
		return false
	}

	return true
}
