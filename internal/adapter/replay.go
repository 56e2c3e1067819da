package adapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	m "github.com/mouse-blink/covlink/internal/model"
)

// Event types understood by the replay engine.
const (
	eventImage        = "image"
	eventFunction     = "function"
	eventEnter        = "enter"
	eventMarker       = "marker"
	eventProgramStart = "program_start"
	eventSuiteStart   = "suite_start"
	eventTestStart    = "test_start"
	eventTestEnd      = "test_end"
	eventSuiteEnd     = "suite_end"
	eventProgramEnd   = "program_end"
)

// replayEvent is one line of a recorded engine event stream (JSONL).
type replayEvent struct {
	Type string `json:"type"`

	// image
	Name string `json:"name,omitempty"`
	Path string `json:"path,omitempty"`
	Low  uint64 `json:"low,omitempty"`
	High uint64 `json:"high,omitempty"`
	Main bool   `json:"main,omitempty"`

	// function
	Addr   uint64 `json:"addr,omitempty"`
	Image  string `json:"image,omitempty"`
	Symbol string `json:"symbol,omitempty"`
	Size   uint32 `json:"size,omitempty"`
	File   string `json:"file,omitempty"`
	Line   int    `json:"line,omitempty"`

	// marker, suite_start, test_start
	ID string `json:"id,omitempty"`

	// test_end, suite_end
	Result string `json:"result,omitempty"`
}

// ReplayEngine implements Engine by replaying a recorded event stream. It is
// both the offline driver behind the replay command and the engine double
// the core is tested against.
//
// The admit function plays the instrumentation-time image filter: functions
// of images it rejects are never registered, and entries for unregistered
// addresses are dropped, exactly as an uninstrumented routine produces no
// callbacks.
type ReplayEngine struct {
	r     io.Reader
	admit func(m.Image) bool
}

// NewReplayEngine reads JSONL events from r. A nil admit admits every image.
func NewReplayEngine(r io.Reader, admit func(m.Image) bool) *ReplayEngine {
	return &ReplayEngine{r: r, admit: admit}
}

// Run decodes the stream and dispatches each event to the matching hook.
func (e *ReplayEngine) Run(hooks Hooks) error {
	dec := json.NewDecoder(e.r)

	admitted := make(map[string]m.Image)
	instrumented := make(map[m.Address]struct{})

	for {
		var ev replayEvent

		err := dec.Decode(&ev)
		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return fmt.Errorf("decode event stream: %w", err)
		}

		switch ev.Type {
		case eventImage:
			img := m.Image{
				Name: ev.Name,
				Path: m.Path(ev.Path),
				Low:  m.Address(ev.Low),
				High: m.Address(ev.High),
				Main: ev.Main,
			}
			if e.admit != nil && !e.admit(img) {
				continue
			}

			admitted[img.Name] = img

			if hooks.ImageLoaded != nil {
				hooks.ImageLoaded(img)
			}
		case eventFunction:
			img, ok := admitted[ev.Image]
			if !ok {
				continue
			}

			if hooks.FunctionDiscovered != nil {
				hooks.FunctionDiscovered(m.FunctionRecord{
					Addr:       m.Address(ev.Addr),
					Image:      img.Name,
					ImagePath:  img.Path,
					ImageLow:   img.Low,
					Symbol:     ev.Symbol,
					Size:       ev.Size,
					SourceFile: m.Path(ev.File),
					SourceLine: ev.Line,
				})
			}

			instrumented[m.Address(ev.Addr)] = struct{}{}
		case eventEnter:
			if _, ok := instrumented[m.Address(ev.Addr)]; !ok {
				continue
			}

			if hooks.FunctionEntered != nil {
				hooks.FunctionEntered(m.Address(ev.Addr))
			}
		case eventMarker:
			if hooks.MarkerCalled != nil {
				hooks.MarkerCalled(ev.ID)
			}
		case eventProgramStart:
			if hooks.ProgramStarted != nil {
				hooks.ProgramStarted()
			}
		case eventSuiteStart:
			if hooks.SuiteStarted != nil {
				hooks.SuiteStarted(ev.ID)
			}
		case eventTestStart:
			if hooks.TestStarted != nil {
				hooks.TestStarted(ev.ID)
			}
		case eventTestEnd:
			if hooks.TestEnded != nil {
				hooks.TestEnded(ev.Result)
			}
		case eventSuiteEnd:
			if hooks.SuiteEnded != nil {
				hooks.SuiteEnded(ev.Result)
			}
		case eventProgramEnd:
			if hooks.ProgramEnded != nil {
				hooks.ProgramEnded()
			}
		default:
			return fmt.Errorf("decode event stream: unknown event type %q", ev.Type)
		}
	}
}
