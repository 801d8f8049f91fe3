package seamcarve

import "github.com/pkg/errors"

// EnergyMap is a single channel scalar field with the same
// dimensions as the pixel buffer it was derived from.
type EnergyMap struct {
	Values []uint8
	Width  int
	Height int
}

// NewEnergyMap derives the energy of the pixel buffer:
// the grayscale field filtered with the Sobel gradient magnitude.
func NewEnergyMap(pb *PixelBuffer) (*EnergyMap, error) {
	em, err := Grayscale(pb)
	if err != nil {
		return nil, err
	}
	if err := em.Sobel(); err != nil {
		return nil, err
	}
	return em, nil
}

// Grayscale converts an RGB buffer to a field holding the
// truncated (R+G+B)/3 average of every pixel.
func Grayscale(pb *PixelBuffer) (*EnergyMap, error) {
	if pb.Channels != RGB {
		return nil, errors.Wrapf(ErrUnsupportedFormat, "got %d channels", pb.Channels)
	}
	n, err := allocSize(pb.Width, pb.Height, 1)
	if err != nil {
		return nil, err
	}
	if len(pb.Pix) != n*RGB {
		return nil, errors.Wrapf(ErrUnsupportedFormat, "buffer holds %d samples, want %d", len(pb.Pix), n*RGB)
	}
	em := &EnergyMap{
		Values: make([]uint8, n),
		Width:  pb.Width,
		Height: pb.Height,
	}
	for i := range em.Values {
		r := int(pb.Pix[i*RGB])
		g := int(pb.Pix[i*RGB+1])
		b := int(pb.Pix[i*RGB+2])
		em.Values[i] = uint8((r + g + b) / 3)
	}
	return em, nil
}

// At returns the energy value at (row, col).
func (em *EnergyMap) At(row, col int) uint8 {
	return em.Values[row*em.Width+col]
}

// RemoveSeam drops the cells crossed by the seam, shrinking the map width by one.
func (em *EnergyMap) RemoveSeam(seam Seam) error {
	if err := seam.Validate(em.Width, em.Height); err != nil {
		return err
	}
	newWidth := em.Width - 1
	if newWidth == 0 {
		return errors.Wrap(ErrInvalidTarget, "cannot remove the last column")
	}
	n, err := allocSize(newWidth, em.Height, 1)
	if err != nil {
		return err
	}
	values := make([]uint8, n)

	for row, col := range seam {
		src := em.Values[row*em.Width : (row+1)*em.Width]
		dst := values[row*newWidth : (row+1)*newWidth]
		copy(dst[:col], src[:col])
		copy(dst[col:], src[col+1:])
	}
	em.Values = values
	em.Width = newWidth

	return nil
}

// RemoveSeam removes the same seam from the pixel buffer and from its energy map,
// keeping both structures aligned. Either both are updated or neither is.
func RemoveSeam(pb *PixelBuffer, em *EnergyMap, seam Seam) error {
	if pb.Width != em.Width || pb.Height != em.Height {
		return errors.Wrapf(ErrInvalidSeam, "pixel buffer %dx%d and energy map %dx%d diverged",
			pb.Width, pb.Height, em.Width, em.Height)
	}
	if err := seam.Validate(pb.Width, pb.Height); err != nil {
		return err
	}
	if err := em.RemoveSeam(seam); err != nil {
		return err
	}
	return pb.RemoveSeam(seam)
}
