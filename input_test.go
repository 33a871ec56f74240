package lilfast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// recorder is a Drawer keeping track of the calls it receives.
type recorder struct {
	calls []string
	pts   []Point
}

func (r *recorder) BeginStroke(p Point) {
	r.calls = append(r.calls, "begin")
	r.pts = append(r.pts, p)
}

func (r *recorder) ExtendStroke(p Point, _ Style) {
	r.calls = append(r.calls, "extend")
	r.pts = append(r.pts, p)
}

func (r *recorder) EndStroke() {
	r.calls = append(r.calls, "end")
}

func TestInput_StateTransitions(t *testing.T) {
	var (
		p   Pointer
		rec recorder
		st  = DefaultStyle()
	)
	assert.Equal(t, Idle, p.State())

	assert.False(t, p.Handle(move(5, 5), st, &rec), "hover moves are ignored")
	assert.Equal(t, Idle, p.State())

	assert.False(t, p.Handle(down(10, 10), st, &rec))
	assert.Equal(t, Drawing, p.State())

	assert.True(t, p.Handle(move(20, 20), st, &rec))
	assert.True(t, p.Handle(move(30, 20), st, &rec))

	assert.False(t, p.Handle(up(30, 20), st, &rec))
	assert.Equal(t, Idle, p.State())

	assert.False(t, p.Handle(move(40, 40), st, &rec))
	assert.Equal(t, []string{"begin", "extend", "extend", "end"}, rec.calls)
}

func TestInput_LeaveEndsStroke(t *testing.T) {
	var (
		p   Pointer
		rec recorder
	)
	p.Handle(down(10, 10), DefaultStyle(), &rec)
	p.Handle(PointerEvent{Type: PointerLeave, Client: Pt(600, 10)}, DefaultStyle(), &rec)

	assert.Equal(t, Idle, p.State())
	assert.Equal(t, []string{"begin", "end"}, rec.calls)

	// Leave and up while idle do not touch the drawer.
	p.Handle(PointerEvent{Type: PointerLeave}, DefaultStyle(), &rec)
	p.Handle(up(0, 0), DefaultStyle(), &rec)
	assert.Len(t, rec.calls, 2)
}

func TestInput_DownWhileDrawingRestartsPath(t *testing.T) {
	var (
		p   Pointer
		rec recorder
	)
	p.Handle(down(10, 10), DefaultStyle(), &rec)
	p.Handle(down(50, 50), DefaultStyle(), &rec)

	assert.Equal(t, Drawing, p.State())
	assert.Equal(t, []string{"begin", "begin"}, rec.calls)
	assert.Equal(t, Pt(50, 50), rec.pts[1])
}

func TestInput_ClientToLocal(t *testing.T) {
	var rec recorder
	p := Pointer{Origin: Pt(16, 32)}

	p.Handle(down(16, 32), DefaultStyle(), &rec)
	p.Handle(move(116, 82), DefaultStyle(), &rec)

	assert.Equal(t, []Point{Pt(0, 0), Pt(100, 50)}, rec.pts)
}

func TestInput_String(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "drawing", Drawing.String())
	assert.Equal(t, "down", PointerDown.String())
	assert.Equal(t, "leave", PointerLeave.String())
	assert.Equal(t, "unknown", PointerType(42).String())
}
