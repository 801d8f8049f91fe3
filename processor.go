package seamcarve

import (
	"image"
	"image/color"
	"io"

	"github.com/esimov/seamcarve/imop"
	"github.com/pkg/errors"
)

// DefaultRetainRatio keeps 90% of the source columns.
const DefaultRetainRatio = 0.9

// SeamCarver is the interface implemented by the types able to shrink an image.
type SeamCarver interface {
	Resize(image.Image) (image.Image, error)
}

var _ SeamCarver = (*Processor)(nil)

// Processor options
type Processor struct {
	// RetainRatio is the fraction of the source width kept, in (0, 1].
	// The zero value means DefaultRetainRatio.
	RetainRatio float64
	// Quality is the JPEG encoding quality.
	Quality int
	// Debug renders the removed seams over the source image into DebugMask.
	Debug     bool
	MaskColor color.Color
	// MaskOp is the composition operation used to lay the seams over the
	// source image. The zero value means imop.SrcOver.
	MaskOp string
	// MaskBlend is an optional blend mode mixing the seams with the source.
	MaskBlend string
	DebugMask *image.NRGBA
}

// Resize is a convenience function calling the Resize method of a SeamCarver.
func Resize(s SeamCarver, img image.Image) (image.Image, error) {
	return s.Resize(img)
}

// Resize shrinks the image horizontally by removing the lowest energy seams,
// until only RetainRatio of its width is left.
func (p *Processor) Resize(img image.Image) (image.Image, error) {
	pb, err := toPixelBuffer(img)
	if err != nil {
		return nil, err
	}
	n, err := Removals(pb.Width, p.retainRatio())
	if err != nil {
		return nil, err
	}

	var (
		src   *PixelBuffer
		op    *imop.Composite
		blend *imop.Blend
	)
	if p.Debug {
		if op, blend, err = p.maskOps(); err != nil {
			return nil, err
		}
		src = pb.Clone()
	}
	c, err := NewCarver(pb, p.Debug)
	if err != nil {
		return nil, err
	}
	res, err := c.Carve(n)
	if err != nil {
		return nil, err
	}

	if p.Debug {
		p.DebugMask = overlay(toImage(src), c.SeamMask(p.maskColor()), op, blend)
	}
	return toImage(res), nil
}

// Process decodes the source image, resizes it and encodes the result into w.
// We are using the io package, since we can provide different input and output types,
// as long as they implement the io.Reader and io.Writer interface.
func (p *Processor) Process(r io.Reader, w io.Writer) error {
	src, err := decodeImg(r)
	if err != nil {
		return err
	}
	res, err := Resize(p, src)
	if err != nil {
		return err
	}
	if err := encodeImg(w, res, p.quality()); err != nil {
		return errors.Wrap(err, "could not encode the resized image")
	}
	return nil
}

// maskOps returns the composition operation and the optional blend mode
// used for laying the seams over the source image.
func (p *Processor) maskOps() (*imop.Composite, *imop.Blend, error) {
	op := imop.InitOp()
	if p.MaskOp != "" {
		if err := op.Set(p.MaskOp); err != nil {
			return nil, nil, errors.Wrap(err, "invalid mask operation")
		}
	}
	if p.MaskBlend == "" {
		return op, nil, nil
	}
	blend := imop.NewBlend()
	if err := blend.Set(p.MaskBlend); err != nil {
		return nil, nil, errors.Wrap(err, "invalid mask blend mode")
	}
	return op, blend, nil
}

// overlay draws the seam mask over the source image.
func overlay(src, mask *image.NRGBA, op *imop.Composite, blend *imop.Blend) *image.NRGBA {
	bitmap := imop.NewBitmap(mask.Bounds())
	op.Draw(bitmap, mask, src, blend)

	return bitmap.Img
}

func (p *Processor) maskColor() color.Color {
	if p.MaskColor == nil {
		return color.NRGBA{R: 0xff, A: 0xff}
	}
	return p.MaskColor
}

func (p *Processor) quality() int {
	if p.Quality <= 0 || p.Quality > 100 {
		return 100
	}
	return p.Quality
}

func (p *Processor) retainRatio() float64 {
	if p.RetainRatio == 0 {
		return DefaultRetainRatio
	}
	return p.RetainRatio
}
