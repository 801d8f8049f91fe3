package seamcarve

import (
	"image"
	"image/color"
	"math"

	"github.com/pkg/errors"
)

// Carver drives the seam carving loop over a single pixel buffer.
// The energy map is computed once at construction and afterwards
// only contracted together with the pixel buffer.
type Carver struct {
	Width  int
	Height int
	Seams  []Seam

	buf    *PixelBuffer
	energy *EnergyMap
	finder *SeamFinder

	// origin holds, for every surviving cell, its column in the source image.
	// It is only tracked when seam tracing is enabled.
	origin   []int
	srcWidth int
	trace    bool
}

// NewCarver takes ownership of the pixel buffer and computes its energy map.
// When trace is set, the removed seams are recorded in source image coordinates.
func NewCarver(pb *PixelBuffer, trace bool) (*Carver, error) {
	if pb.Channels != RGB {
		return nil, errors.Wrapf(ErrUnsupportedFormat, "got %d channels", pb.Channels)
	}
	energy, err := NewEnergyMap(pb)
	if err != nil {
		return nil, err
	}
	c := &Carver{
		Width:    pb.Width,
		Height:   pb.Height,
		buf:      pb,
		energy:   energy,
		finder:   NewSeamFinder(),
		srcWidth: pb.Width,
		trace:    trace,
	}
	if trace {
		c.origin = make([]int, pb.Width*pb.Height)
		for i := range c.origin {
			c.origin[i] = i % pb.Width
		}
	}
	return c, nil
}

// Removals returns how many seams have to be removed from an image of the
// given width to keep the requested fraction of its columns.
func Removals(width int, retain float64) (int, error) {
	if math.IsNaN(retain) || retain <= 0 || retain > 1 {
		return 0, errors.Wrapf(ErrInvalidTarget, "retain ratio %v is outside (0, 1]", retain)
	}
	// The epsilon absorbs the representation error of ratios like 0.9,
	// so that keeping 90% of 10 columns removes exactly one.
	n := int(math.Floor((1-retain)*float64(width) + 1e-9))
	if n >= width {
		return 0, errors.Wrapf(ErrInvalidTarget, "cannot remove %d columns from a %dpx wide image", n, width)
	}
	return n, nil
}

// Buffer returns the current pixel buffer.
func (c *Carver) Buffer() *PixelBuffer {
	return c.buf
}

// Energy returns the current energy map.
func (c *Carver) Energy() *EnergyMap {
	return c.energy
}

// Step finds the lowest energy seam and removes it from both the energy map and the pixel buffer.
func (c *Carver) Step() error {
	seam := c.finder.FindSeam(c.energy)
	if err := RemoveSeam(c.buf, c.energy, seam); err != nil {
		return err
	}
	if c.trace {
		c.Seams = append(c.Seams, c.sourceSeam(seam))
		c.removeOrigin(seam)
	}
	c.Width = c.buf.Width

	return nil
}

// Carve removes exactly n seams and returns the resulting pixel buffer.
func (c *Carver) Carve(n int) (*PixelBuffer, error) {
	if n < 0 || n >= c.Width {
		return nil, errors.Wrapf(ErrInvalidTarget, "cannot remove %d columns from a %dpx wide image", n, c.Width)
	}
	for i := 0; i < n; i++ {
		if err := c.Step(); err != nil {
			return nil, errors.Wrapf(err, "seam %d of %d", i+1, n)
		}
	}
	return c.buf, nil
}

// sourceSeam translates a seam of the current buffer into source image columns.
func (c *Carver) sourceSeam(seam Seam) Seam {
	src := make(Seam, len(seam))
	for row, col := range seam {
		src[row] = c.origin[row*c.Width+col]
	}
	return src
}

// removeOrigin contracts the origin table with the same seam as the image.
// It must run before c.Width is updated.
func (c *Carver) removeOrigin(seam Seam) {
	newWidth := c.Width - 1
	origin := make([]int, newWidth*c.Height)
	for row, col := range seam {
		src := c.origin[row*c.Width : (row+1)*c.Width]
		dst := origin[row*newWidth : (row+1)*newWidth]
		copy(dst[:col], src[:col])
		copy(dst[col:], src[col+1:])
	}
	c.origin = origin
}

// SeamMask returns a transparent image of the source dimensions
// where every removed pixel is painted with the given color.
// It is empty unless the carver was created with tracing enabled.
func (c *Carver) SeamMask(col color.Color) *image.NRGBA {
	mask := image.NewNRGBA(image.Rect(0, 0, c.srcWidth, c.Height))
	for _, seam := range c.Seams {
		for y, x := range seam {
			mask.Set(x, y, col)
		}
	}
	return mask
}
