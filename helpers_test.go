package lilfast

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	white = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	black = color.NRGBA{A: 0xff}
	red   = color.NRGBA{R: 0xff, A: 0xff}
)

func solidImage(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

func encodePNG(t testing.TB, img image.Image) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// isUniform reports whether every pixel of img equals c.
func isUniform(img *image.NRGBA, c color.NRGBA) bool {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.NRGBAAt(x, y) != c {
				return false
			}
		}
	}
	return true
}

func pen(c color.NRGBA, width float64) Style {
	return Style{Color: c, Width: width}
}

func down(x, y float64) PointerEvent { return PointerEvent{Type: PointerDown, Client: Pt(x, y)} }
func move(x, y float64) PointerEvent { return PointerEvent{Type: PointerMove, Client: Pt(x, y)} }
func up(x, y float64) PointerEvent   { return PointerEvent{Type: PointerUp, Client: Pt(x, y)} }
