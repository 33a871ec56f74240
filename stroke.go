package lilfast

import (
	"image"
	"image/draw"
	"math"

	"golang.org/x/image/vector"
)

// kappa is the control point distance used to approximate a quarter circle with a cubic Bézier.
const kappa = 0.5522847498307936

// Point is a position in surface-local or client coordinates.
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns the vector p+q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns the vector p-q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Mul returns the vector p*k.
func (p Point) Mul(k float64) Point { return Point{p.X * k, p.Y * k} }

// StrokeSurface is the off-screen buffer holding only the pen strokes.
// Strokes accumulate until Clear is called. The zero value must be
// initialized with Init before use.
type StrokeSurface struct {
	img    *image.NRGBA
	ras    *vector.Rasterizer
	head   Point
	active bool
}

// NewStrokeSurface allocates a transparent stroke surface of the given size.
func NewStrokeSurface(width, height int) *StrokeSurface {
	s := &StrokeSurface{}
	s.Init(width, height)
	return s
}

// Init allocates a blank buffer. The size has to match the visible surface,
// strokes are never scaled.
func (s *StrokeSurface) Init(width, height int) {
	s.img = image.NewNRGBA(image.Rect(0, 0, width, height))
	s.ras = vector.NewRasterizer(width, height)
	s.active = false
}

func (s *StrokeSurface) mustInit() {
	if s.img == nil {
		panic("lilfast: stroke surface used before initialization")
	}
}

// BeginStroke starts a new path at p, given in surface-local coordinates.
func (s *StrokeSurface) BeginStroke(p Point) {
	s.mustInit()
	s.head = p
	s.active = true
}

// ExtendStroke renders the segment between the path head and p and moves the head to p.
// It does nothing when no stroke is active.
func (s *StrokeSurface) ExtendStroke(p Point, st Style) {
	s.mustInit()
	if !s.active {
		return
	}
	s.segment(s.head, p, st)
	s.head = p
}

// EndStroke closes the active path.
func (s *StrokeSurface) EndStroke() {
	s.active = false
}

// Active reports whether a path is open.
func (s *StrokeSurface) Active() bool {
	return s.active
}

// Clear erases the buffer to fully transparent pixels.
func (s *StrokeSurface) Clear() {
	s.mustInit()
	clear(s.img.Pix)
}

// Image returns the stroke buffer. Callers must not modify it.
func (s *StrokeSurface) Image() *image.NRGBA {
	s.mustInit()
	return s.img
}

// Bounds returns the surface dimensions.
func (s *StrokeSurface) Bounds() image.Rectangle {
	s.mustInit()
	return s.img.Bounds()
}

// segment rasterizes a line from a to b as a capsule: a rectangle capped with
// two half circles. Consecutive capsules share their end caps, which yields
// round joins between segments.
func (s *StrokeSurface) segment(a, b Point, st Style) {
	r := st.Width / 2
	if r <= 0 || st.Color.A == 0 {
		return
	}
	w, h := s.img.Bounds().Dx(), s.img.Bounds().Dy()
	s.ras.Reset(w, h)
	s.ras.DrawOp = draw.Over

	dx, dy := b.X-a.X, b.Y-a.Y
	length := math.Hypot(dx, dy)

	// u is the unit direction of the segment, n its normal.
	u := Pt(1, 0)
	if length > 0 {
		u = Pt(dx/length, dy/length)
	}
	n := Pt(-u.Y, u.X)

	s.moveTo(a.Add(n.Mul(r)))
	s.lineTo(b.Add(n.Mul(r)))
	s.arc(b, n, u, r)
	s.arc(b, u, n.Mul(-1), r)
	s.lineTo(a.Sub(n.Mul(r)))
	s.arc(a, n.Mul(-1), u.Mul(-1), r)
	s.arc(a, u.Mul(-1), n, r)
	s.ras.ClosePath()

	s.ras.Draw(s.img, s.img.Bounds(), image.NewUniform(st.Color), image.Point{})
}

// arc appends a quarter circle around c going from direction from to direction to.
func (s *StrokeSurface) arc(c, from, to Point, r float64) {
	p0 := c.Add(from.Mul(r))
	p3 := c.Add(to.Mul(r))
	p1 := p0.Add(to.Mul(r * kappa))
	p2 := p3.Add(from.Mul(r * kappa))
	s.ras.CubeTo(float32(p1.X), float32(p1.Y), float32(p2.X), float32(p2.Y), float32(p3.X), float32(p3.Y))
}

func (s *StrokeSurface) moveTo(p Point) {
	s.ras.MoveTo(float32(p.X), float32(p.Y))
}

func (s *StrokeSurface) lineTo(p Point) {
	s.ras.LineTo(float32(p.X), float32(p.Y))
}
