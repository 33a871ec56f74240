package lilfast

// State is the state of the pointer input state machine.
type State int

const (
	Idle State = iota
	Drawing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Drawing:
		return "drawing"
	}
	return "unknown"
}

// PointerType identifies a pointer event.
type PointerType int

const (
	PointerDown PointerType = iota
	PointerMove
	PointerUp
	PointerLeave
)

func (t PointerType) String() string {
	switch t {
	case PointerDown:
		return "down"
	case PointerMove:
		return "move"
	case PointerUp:
		return "up"
	case PointerLeave:
		return "leave"
	}
	return "unknown"
}

// PointerEvent is a pointer sample in client coordinates.
type PointerEvent struct {
	Type   PointerType
	Client Point
}

// Drawer receives the path operations produced by a Pointer.
// *StrokeSurface implements it.
type Drawer interface {
	BeginStroke(p Point)
	ExtendStroke(p Point, st Style)
	EndStroke()
}

var _ Drawer = (*StrokeSurface)(nil)

// Pointer turns pointer events into drawing sessions: a press starts a path,
// moves extend it while drawing, and a release or leave ends it.
// Moves while idle are hover events and are ignored.
type Pointer struct {
	// Origin is the top-left corner of the visible surface in client coordinates.
	Origin Point

	state State
}

// State returns the current state.
func (p *Pointer) State() State {
	return p.state
}

// Local converts client coordinates to surface-local ones.
func (p *Pointer) Local(client Point) Point {
	return client.Sub(p.Origin)
}

// Handle advances the state machine with ev. The style is only read when a
// segment is committed. It reports whether d was drawn to, in which case the
// caller has to recomposite the visible surface.
func (p *Pointer) Handle(ev PointerEvent, st Style, d Drawer) bool {
	switch ev.Type {
	case PointerDown:
		// A press while drawing means the release got lost; start over.
		d.BeginStroke(p.Local(ev.Client))
		p.state = Drawing
	case PointerMove:
		if p.state != Drawing {
			return false
		}
		d.ExtendStroke(p.Local(ev.Client), st)
		return true
	case PointerUp, PointerLeave:
		if p.state == Drawing {
			d.EndStroke()
		}
		p.state = Idle
	}
	return false
}
