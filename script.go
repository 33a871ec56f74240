package lilfast

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/lilfast/lilfast/utils"
)

// ScriptEvent is a single recorded input event. Color and Brush, when set,
// change the pen before the event is applied.
type ScriptEvent struct {
	Type  string  `json:"type"`
	X     float64 `json:"x,omitempty"`
	Y     float64 `json:"y,omitempty"`
	Color string  `json:"color,omitempty"`
	Brush float64 `json:"brush,omitempty"`
}

// Script is a recorded drawing: a sequence of pointer and clear events in client coordinates.
type Script []ScriptEvent

// ReadScript decodes a JSON encoded script.
func ReadScript(r io.Reader) (Script, error) {
	var s Script
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("could not decode the stroke script: %w", err)
	}
	return s, nil
}

// LoadScript reads the script file at path.
func LoadScript(path string) (Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open the stroke script: %w", err)
	}
	defer f.Close()

	return ReadScript(f)
}

// Events converts the script to session events, starting from the pen st.
func (s Script) Events(st Style) ([]any, error) {
	events := make([]any, 0, len(s))

	for i, e := range s {
		if e.Color != "" || e.Brush != 0 {
			next := st
			if e.Color != "" {
				c, err := utils.HexToNRGBA(e.Color)
				if err != nil {
					return nil, fmt.Errorf("event %d: %w: %v", i, ErrInvalidColor, err)
				}
				next.Color = c
			}
			if e.Brush != 0 {
				if e.Brush < 0 {
					return nil, fmt.Errorf("event %d: %w: got %v", i, ErrInvalidBrush, e.Brush)
				}
				next.Width = e.Brush
			}
			events = append(events, StyleEvent{Style: next})
			st = next
		}

		client := Pt(e.X, e.Y)
		switch e.Type {
		case "down":
			events = append(events, PointerEvent{Type: PointerDown, Client: client})
		case "move":
			events = append(events, PointerEvent{Type: PointerMove, Client: client})
		case "up":
			events = append(events, PointerEvent{Type: PointerUp, Client: client})
		case "leave":
			events = append(events, PointerEvent{Type: PointerLeave, Client: client})
		case "clear":
			events = append(events, ClearStrokesEvent{})
		case "clear_background":
			events = append(events, ClearBackgroundEvent{})
		case "style":
			// Pen change only, handled above.
		default:
			return nil, fmt.Errorf("event %d: unknown event type %q", i, e.Type)
		}
	}
	return events, nil
}

// Replay applies the script to c, starting with the pen st, and returns the pen in use at the end.
func (s Script) Replay(c *Canvas, st Style) (Style, error) {
	events, err := s.Events(st)
	if err != nil {
		return st, err
	}
	for _, ev := range events {
		apply(c, &st, ev)
	}
	return st, nil
}
