// Package controller provides output adapters for displaying recorded
// coverage segments.
package controller

import (
	m "github.com/mouse-blink/covlink/internal/model"
)

// UI defines the interface for displaying flushed coverage segments.
// Implementations can use different output methods (simple text, TUI, etc).
type UI interface {
	DisplaySegments(summaries []m.SegmentSummary) error
}
