package gui

import (
	"image"
	"image/color"

	"gioui.org/f32"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"github.com/lilfast/lilfast/utils"
)

// drawBrush outlines the area the pen covers around the pointer position.
// It receives as parameters the pointer position and the brush width.
func (g *Gui) drawBrush(gtx C, pos f32.Point, width float32) {
	r := utils.Max(width/2, 1)
	rect := image.Rect(
		int(pos.X-r), int(pos.Y-r),
		int(pos.X+r+0.5), int(pos.Y+r+0.5),
	)

	col := g.setColor(g.style.Color)
	// Keep the outline visible on top of strokes of the same color.
	col.A = 0x90

	defer clip.Stroke{
		Path:  clip.Ellipse(rect).Path(gtx.Ops),
		Width: 1,
	}.Op().Push(gtx.Ops).Pop()
	paint.ColorOp{Color: col}.Add(gtx.Ops)
	paint.PaintOp{}.Add(gtx.Ops)
}

// setColor converts any color to the non-premultiplied form Gio expects.
func (g *Gui) setColor(c color.Color) color.NRGBA {
	return color.NRGBAModel.Convert(c).(color.NRGBA)
}
