package lilfast

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
)

// ErrSessionClosed is returned when posting to a session whose loop has exited.
var ErrSessionClosed = errors.New("session closed")

// Events understood by a Session, besides PointerEvent.
type (
	// BackgroundEvent sets a decoded background image.
	BackgroundEvent struct{ Image image.Image }
	// ClearBackgroundEvent removes the background image.
	ClearBackgroundEvent struct{}
	// ClearStrokesEvent erases the stroke layer.
	ClearStrokesEvent struct{}
	// StyleEvent changes the pen used for the following segments.
	StyleEvent struct{ Style Style }
	// OriginEvent moves the canvas inside the client area.
	OriginEvent struct{ Origin Point }
)

type snapshotRequest struct {
	reply chan *image.NRGBA
}

// Session serializes every canvas mutation on a single goroutine. Events are
// processed one at a time and each runs to completion, render included,
// before the next one is taken from the queue.
type Session struct {
	// OnRender, if set, receives a copy of the visible surface after each render.
	// It is called from the session goroutine.
	OnRender func(img *image.NRGBA)

	canvas *Canvas
	style  Style
	events chan any
	done   chan struct{}
}

// NewSession creates a session driving c with the initial pen style st.
func NewSession(c *Canvas, st Style) *Session {
	return &Session{
		canvas: c,
		style:  st,
		events: make(chan any, 64),
		done:   make(chan struct{}),
	}
}

// Run processes events until ctx is cancelled. It must be called only once.
func (s *Session) Run(ctx context.Context) error {
	defer close(s.done)

	if s.OnRender != nil {
		s.OnRender(s.canvas.Snapshot())
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-s.events:
			s.dispatch(ev)
		}
	}
}

// Post enqueues an event. It blocks while the queue is full.
func (s *Session) Post(ctx context.Context, ev any) error {
	select {
	case <-s.done:
		return ErrSessionClosed
	default:
	}
	select {
	case s.events <- ev:
		return nil
	case <-s.done:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Snapshot returns a copy of the visible surface taken after every event
// posted before the call has been processed.
func (s *Session) Snapshot(ctx context.Context) (*image.NRGBA, error) {
	req := snapshotRequest{reply: make(chan *image.NRGBA, 1)}
	if err := s.Post(ctx, req); err != nil {
		return nil, err
	}
	select {
	case img := <-req.reply:
		return img, nil
	case <-s.done:
		return nil, ErrSessionClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Export returns the visible surface encoded as PNG.
// Encoding happens outside the event loop, on the snapshot.
func (s *Session) Export(ctx context.Context) ([]byte, error) {
	img, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("could not encode the canvas: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *Session) dispatch(ev any) {
	frame := s.canvas.Frame()

	if req, ok := ev.(snapshotRequest); ok {
		req.reply <- s.canvas.Snapshot()
		return
	}
	apply(s.canvas, &s.style, ev)

	if s.OnRender != nil && s.canvas.Frame() != frame {
		s.OnRender(s.canvas.Snapshot())
	}
}

// Submit exports the canvas and sends it to the inference service. A failed
// submission leaves the canvas untouched, so it can be retried as is.
func (s *Session) Submit(ctx context.Context, c *Client, prompt string, iterations int) (*Result, error) {
	data, err := s.Export(ctx)
	if err != nil {
		return nil, err
	}
	return c.Generate(ctx, Request{
		Image:      data,
		Prompt:     prompt,
		Iterations: iterations,
	})
}

// apply performs a single event on the canvas. Style events update *st.
func apply(c *Canvas, st *Style, ev any) {
	switch ev := ev.(type) {
	case PointerEvent:
		c.HandlePointer(ev, *st)
	case BackgroundEvent:
		c.SetBackground(ev.Image)
	case ClearBackgroundEvent:
		c.ClearBackground()
	case ClearStrokesEvent:
		c.ClearStrokes()
	case StyleEvent:
		*st = ev.Style
	case OriginEvent:
		c.SetOrigin(ev.Origin)
	}
}
