package lilfast

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
	"github.com/lilfast/lilfast/imop"
)

// Backdrop is the color the visible surface is filled with before every render.
var Backdrop = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

// Placement is the rectangle a background image occupies on the canvas.
type Placement struct {
	X, Y, Width, Height float64
}

// Fit computes the aspect ratio preserving placement of an imgW×imgH image
// inside a canvasW×canvasH canvas. The image fills one axis entirely and is
// centered on the other one; it is never cropped.
func Fit(imgW, imgH, canvasW, canvasH int) Placement {
	if imgW <= 0 || imgH <= 0 || canvasW <= 0 || canvasH <= 0 {
		return Placement{}
	}
	imgRatio := float64(imgW) / float64(imgH)
	canvasRatio := float64(canvasW) / float64(canvasH)

	var w, h float64
	if imgRatio > canvasRatio {
		// The image is relatively wider than the canvas.
		w = float64(canvasW)
		h = w / imgRatio
	} else {
		h = float64(canvasH)
		w = h * imgRatio
	}
	return Placement{
		X:      (float64(canvasW) - w) / 2,
		Y:      (float64(canvasH) - h) / 2,
		Width:  w,
		Height: h,
	}
}

// Rect converts the placement to whole pixels by rounding its edges.
func (p Placement) Rect() image.Rectangle {
	return image.Rect(
		int(math.Round(p.X)),
		int(math.Round(p.Y)),
		int(math.Round(p.X+p.Width)),
		int(math.Round(p.Y+p.Height)),
	)
}

// Compositor repaints the visible surface from the background and the stroke layer.
type Compositor struct {
	filter imaging.ResampleFilter
	op     *imop.Composite
	cache  struct {
		bg   *Background
		gen  uint64
		rect image.Rectangle
		img  *image.NRGBA
	}
}

// NewCompositor returns a compositor scaling backgrounds with the Lanczos filter.
func NewCompositor() *Compositor {
	return &Compositor{
		filter: imaging.Lanczos,
		op:     imop.InitOp(),
	}
}

// SetFilter changes the resampling filter used to scale the background.
// The zero filter selects nearest neighbor sampling.
func (c *Compositor) SetFilter(f imaging.ResampleFilter) {
	c.filter = f
	c.cache.bg, c.cache.img = nil, nil
}

// Render fully repaints dst: backdrop fill, then the background scaled to fit
// and centered, then the strokes unscaled at the origin. Calling it again with
// unchanged inputs yields the same pixels.
func (c *Compositor) Render(dst *image.NRGBA, bg *Background, strokes *StrokeSurface) {
	if c.op == nil {
		c.op = imop.InitOp()
	}
	bounds := dst.Bounds()
	draw.Draw(dst, bounds, image.NewUniform(Backdrop), image.Point{}, draw.Src)

	if bg != nil {
		if scaled, rect := c.scaledBackground(bg, bounds); scaled != nil {
			c.op.Draw(dst, rect, scaled, image.Point{})
		}
	}

	if strokes != nil {
		c.op.Draw(dst, bounds, strokes.Image(), image.Point{})
	}
}

// scaledBackground resizes the background image to its fitted rectangle inside bounds.
// The result is cached until the background or the target rectangle changes.
func (c *Compositor) scaledBackground(bg *Background, bounds image.Rectangle) (*image.NRGBA, image.Rectangle) {
	img, ok := bg.Get()
	if !ok {
		c.cache.bg, c.cache.img = nil, nil
		return nil, image.Rectangle{}
	}
	gen := bg.Generation()
	ib := img.Bounds()
	rect := Fit(ib.Dx(), ib.Dy(), bounds.Dx(), bounds.Dy()).Rect().Add(bounds.Min)
	if rect.Empty() {
		return nil, rect
	}
	if c.cache.img != nil && c.cache.bg == bg && c.cache.gen == gen && c.cache.rect == rect {
		return c.cache.img, rect
	}

	scaled := imaging.Resize(img, rect.Dx(), rect.Dy(), c.filter)
	c.cache.bg, c.cache.gen, c.cache.rect, c.cache.img = bg, gen, rect, scaled

	return scaled, rect
}
