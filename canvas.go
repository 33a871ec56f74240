package lilfast

import (
	"image"
	"image/png"
	"io"

	"github.com/disintegration/imaging"
)

// Canvas owns the stroke layer, the background holder and the visible surface.
// Every mutation goes through update, which recomposites the visible surface
// right after the change, so the visible pixels always equal the composite of
// the current background and strokes.
//
// A Canvas is not safe for concurrent use; see Session.
type Canvas struct {
	comp    *Compositor
	strokes *StrokeSurface
	bg      Background
	visible *image.NRGBA
	pointer Pointer
	frame   uint64
}

// NewCanvas creates a blank width×height canvas filled with the backdrop color.
func NewCanvas(width, height int) *Canvas {
	c := &Canvas{
		comp:    NewCompositor(),
		strokes: NewStrokeSurface(width, height),
		visible: image.NewNRGBA(image.Rect(0, 0, width, height)),
	}
	c.update(func() bool { return true })
	return c
}

// update runs mutate and recomposites when it reports a change.
func (c *Canvas) update(mutate func() bool) {
	if mutate() {
		c.comp.Render(c.visible, &c.bg, c.strokes)
		c.frame++
	}
}

// Frame returns the number of renders performed so far.
func (c *Canvas) Frame() uint64 {
	return c.frame
}

// HandlePointer feeds a pointer event through the input state machine.
func (c *Canvas) HandlePointer(ev PointerEvent, st Style) {
	c.update(func() bool {
		return c.pointer.Handle(ev, st, c.strokes)
	})
}

// SetOrigin sets the client coordinates of the canvas' top-left corner.
func (c *Canvas) SetOrigin(p Point) {
	c.pointer.Origin = p
}

// State returns the pointer state.
func (c *Canvas) State() State {
	return c.pointer.State()
}

// SetBackground replaces the background image.
func (c *Canvas) SetBackground(img image.Image) {
	c.update(func() bool {
		c.bg.Set(img)
		return true
	})
}

// ClearBackground removes the background image.
func (c *Canvas) ClearBackground() {
	c.update(func() bool {
		c.bg.Clear()
		return true
	})
}

// Background returns the current background image, if any.
func (c *Canvas) Background() (image.Image, bool) {
	return c.bg.Get()
}

// ClearStrokes erases every stroke. An active drawing session stays open.
func (c *Canvas) ClearStrokes() {
	c.update(func() bool {
		c.strokes.Clear()
		return true
	})
}

// SetFilter changes the resampling filter used for the background.
func (c *Canvas) SetFilter(f imaging.ResampleFilter) {
	c.update(func() bool {
		c.comp.SetFilter(f)
		return true
	})
}

// Strokes returns the stroke layer. Callers must not modify it.
func (c *Canvas) Strokes() *image.NRGBA {
	return c.strokes.Image()
}

// Visible returns the visible surface. Callers must not modify it.
func (c *Canvas) Visible() *image.NRGBA {
	return c.visible
}

// Snapshot returns a copy of the visible surface.
func (c *Canvas) Snapshot() *image.NRGBA {
	return imaging.Clone(c.visible)
}

// Export encodes the visible surface as PNG at its native resolution.
func (c *Canvas) Export(w io.Writer) error {
	return png.Encode(w, c.visible)
}
