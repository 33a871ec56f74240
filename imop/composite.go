// Package imop implements the Porter-Duff composition operations
// used for mixing a graphic element with its backdrop.
// Porter and Duff presented in their paper 12 different composition operation,
// but the image/draw core package implements only the source-over-destination and source.
// This package is aimed to overcome the missing composite operations.
//
// The canvas compositor uses it to blit the background and the stroke layer
// onto the visible surface. All operations work in place on *image.NRGBA.
package imop

import (
	"fmt"
	"image"
	"math"

	"github.com/lilfast/lilfast/utils"
)

// Op is a Porter-Duff composition operator.
type Op string

const (
	Clear   Op = "clear"
	Copy    Op = "copy"
	Dst     Op = "dst"
	SrcOver Op = "src_over"
	DstOver Op = "dst_over"
	SrcIn   Op = "src_in"
	DstIn   Op = "dst_in"
	SrcOut  Op = "src_out"
	DstOut  Op = "dst_out"
	SrcAtop Op = "src_atop"
	DstAtop Op = "dst_atop"
	Xor     Op = "xor"
)

// Composite holds the currently active composition operator.
type Composite struct {
	current Op
	ops     []Op
}

// InitOp returns a Composite with SrcOver as the active operator.
func InitOp() *Composite {
	return &Composite{
		current: SrcOver,
		ops: []Op{
			Clear,
			Copy,
			Dst,
			SrcOver,
			DstOver,
			SrcIn,
			DstIn,
			SrcOut,
			DstOut,
			SrcAtop,
			DstAtop,
			Xor,
		},
	}
}

// Set activates one of the supported composition operators.
func (op *Composite) Set(cop Op) error {
	if !utils.Contains(op.ops, cop) {
		return fmt.Errorf("unsupported composite operation: %q", cop)
	}
	op.current = cop
	return nil
}

// Get returns the active composition operator.
func (op *Composite) Get() Op {
	return op.current
}

// factors returns the Porter-Duff fractions applied to the source and the backdrop.
func (o Op) factors(as, ab float64) (fa, fb float64) {
	switch o {
	case Copy:
		return 1, 0
	case Dst:
		return 0, 1
	case SrcOver:
		return 1, 1 - as
	case DstOver:
		return 1 - ab, 1
	case SrcIn:
		return ab, 0
	case DstIn:
		return 0, as
	case SrcOut:
		return 1 - ab, 0
	case DstOut:
		return 0, 1 - as
	case SrcAtop:
		return ab, 1 - as
	case DstAtop:
		return 1 - ab, as
	case Xor:
		return 1 - ab, 1 - as
	}
	return 0, 0
}

// Draw composites src onto dst in place. The src point sp is aligned with r.Min;
// pixels of dst outside r are left untouched.
func (op *Composite) Draw(dst *image.NRGBA, r image.Rectangle, src *image.NRGBA, sp image.Point) {
	d := r.Min.Sub(sp)
	r = r.Intersect(dst.Bounds())
	r = r.Sub(d).Intersect(src.Bounds()).Add(d)
	if r.Empty() {
		return
	}

	for y := r.Min.Y; y < r.Max.Y; y++ {
		di := dst.PixOffset(r.Min.X, y)
		si := src.PixOffset(r.Min.X-d.X, y-d.Y)

		for x := r.Min.X; x < r.Max.X; x, di, si = x+1, di+4, si+4 {
			s := src.Pix[si : si+4 : si+4]
			b := dst.Pix[di : di+4 : di+4]

			if op.current == SrcOver {
				// Transparent source pixels leave the backdrop as is,
				// opaque ones replace it.
				switch s[3] {
				case 0x00:
					continue
				case 0xff:
					copy(b, s)
					continue
				}
			}
			composePixel(op.current, b, s)
		}
	}
}

// composePixel applies the operator to a single non-premultiplied pixel.
func composePixel(o Op, b, s []uint8) {
	as := float64(s[3]) / 255
	ab := float64(b[3]) / 255
	fa, fb := o.factors(as, ab)

	ao := fa*as + fb*ab
	if ao <= 0 {
		b[0], b[1], b[2], b[3] = 0, 0, 0, 0
		return
	}
	for i := 0; i < 3; i++ {
		c := (fa*as*float64(s[i]) + fb*ab*float64(b[i])) / ao
		b[i] = uint8(utils.Clamp(math.Round(c), 0, 255))
	}
	b[3] = uint8(utils.Clamp(math.Round(ao*255), 0, 255))
}
