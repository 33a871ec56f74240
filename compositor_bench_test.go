package lilfast

import (
	"image"
	"testing"
)

func Benchmark_Render(b *testing.B) {
	var bg Background
	bg.Set(solidImage(1024, 768, red))

	strokes := NewStrokeSurface(CanvasSize, CanvasSize)
	strokes.BeginStroke(Pt(10, 10))
	for i := 1; i < 50; i++ {
		strokes.ExtendStroke(Pt(float64(10*i), float64(10+i*i%400)), DefaultStyle())
	}

	dst := image.NewNRGBA(image.Rect(0, 0, CanvasSize, CanvasSize))
	c := NewCompositor()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		c.Render(dst, &bg, strokes)
	}
}

func Benchmark_Stroke(b *testing.B) {
	s := NewStrokeSurface(CanvasSize, CanvasSize)
	st := Style{Color: black, Width: BrushLarge}
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		s.BeginStroke(Pt(10, 10))
		s.ExtendStroke(Pt(500, 400), st)
		s.EndStroke()
	}
}
