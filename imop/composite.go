// Package imop implements the Porter-Duff composition operations
// used for mixing a graphic element with its backdrop.
// The image/draw core package implements only the source and the
// source-over-destination operators; this package covers the rest.
//
// It is used to render the debug output of the seam carver, where the
// removed seams are laid over the source image in a distinct color.
package imop

import (
	"image"
	"image/color"

	"github.com/esimov/seamcarve/utils"
	"github.com/pkg/errors"
)

const (
	Clear   = "clear"
	Copy    = "copy"
	Dst     = "dst"
	SrcOver = "src_over"
	DstOver = "dst_over"
	SrcIn   = "src_in"
	DstIn   = "dst_in"
	SrcOut  = "src_out"
	DstOut  = "dst_out"
	SrcAtop = "src_atop"
	DstAtop = "dst_atop"
	Xor     = "xor"
)

// Bitmap is the destination canvas of a composition.
type Bitmap struct {
	Img *image.NRGBA
}

// Composite holds the currently active composition operation.
type Composite struct {
	current string
	ops     []string
}

// NewBitmap creates a transparent canvas of the given size.
func NewBitmap(rect image.Rectangle) *Bitmap {
	return &Bitmap{
		Img: image.NewNRGBA(rect),
	}
}

// InitOp initializes a new composition with src_over as the active operation.
func InitOp() *Composite {
	return &Composite{
		current: SrcOver,
		ops: []string{
			Clear, Copy, Dst,
			SrcOver, DstOver,
			SrcIn, DstIn,
			SrcOut, DstOut,
			SrcAtop, DstAtop,
			Xor,
		},
	}
}

// Set activates one of the supported composition operations.
func (op *Composite) Set(cop string) error {
	if !utils.Contains(op.ops, cop) {
		return errors.Errorf("unsupported composition operation: %s", cop)
	}
	op.current = cop
	return nil
}

// Get returns the active composition operation.
func (op *Composite) Get() string {
	return op.current
}

// Draw composes the src image over the dst backdrop into the bitmap,
// optionally mixing the two with a blend mode.
func (op *Composite) Draw(bitmap *Bitmap, src, dst *image.NRGBA, blend *Blend) {
	bounds := src.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			s := toColor(src.NRGBAAt(x, y))
			b := toColor(dst.NRGBAAt(x, y))

			// The blend mode replaces the source color where both layers overlap.
			if blend != nil && blend.Get() != "" {
				s = Color{
					R: (1-b.A)*s.R + b.A*blend.mix(s.R, b.R),
					G: (1-b.A)*s.G + b.A*blend.mix(s.G, b.G),
					B: (1-b.A)*s.B + b.A*blend.mix(s.B, b.B),
					A: s.A,
				}
			}
			bitmap.Img.SetNRGBA(x, y, op.compose(s, b).toNRGBA())
		}
	}
}

// compose applies the Porter-Duff formula of the active operation.
// Fs and Fd are the fractions of the source and backdrop kept in the result.
func (op *Composite) compose(s, b Color) Color {
	var fs, fd float64

	switch op.current {
	case Clear:
		fs, fd = 0, 0
	case Copy:
		fs, fd = 1, 0
	case Dst:
		fs, fd = 0, 1
	case SrcOver:
		fs, fd = 1, 1-s.A
	case DstOver:
		fs, fd = 1-b.A, 1
	case SrcIn:
		fs, fd = b.A, 0
	case DstIn:
		fs, fd = 0, s.A
	case SrcOut:
		fs, fd = 1-b.A, 0
	case DstOut:
		fs, fd = 0, 1-s.A
	case SrcAtop:
		fs, fd = b.A, 1-s.A
	case DstAtop:
		fs, fd = 1-b.A, s.A
	case Xor:
		fs, fd = 1-b.A, 1-s.A
	}

	a := s.A*fs + b.A*fd
	if a == 0 {
		return Color{}
	}
	return Color{
		R: (s.A*fs*s.R + b.A*fd*b.R) / a,
		G: (s.A*fs*s.G + b.A*fd*b.G) / a,
		B: (s.A*fs*s.B + b.A*fd*b.B) / a,
		A: a,
	}
}

// Color is a non-premultiplied color with components in the [0, 1] range.
type Color struct {
	R, G, B, A float64
}

func toColor(c color.NRGBA) Color {
	return Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
		A: float64(c.A) / 255,
	}
}

func (c Color) toNRGBA() color.NRGBA {
	return color.NRGBA{
		R: uint8(c.R*255 + 0.5),
		G: uint8(c.G*255 + 0.5),
		B: uint8(c.B*255 + 0.5),
		A: uint8(c.A*255 + 0.5),
	}
}
