package seamcarve

import "github.com/pkg/errors"

// RGB is the only channel layout the carver accepts.
const RGB = 3

// PixelBuffer holds the raw image samples in row-major, channel-interleaved order.
type PixelBuffer struct {
	Pix      []uint8
	Width    int
	Height   int
	Channels int
}

// NewPixelBuffer allocates a zeroed buffer of the given dimensions.
func NewPixelBuffer(width, height, channels int) (*PixelBuffer, error) {
	n, err := allocSize(width, height, channels)
	if err != nil {
		return nil, err
	}
	return &PixelBuffer{
		Pix:      make([]uint8, n),
		Width:    width,
		Height:   height,
		Channels: channels,
	}, nil
}

// Index returns the position of the sample (row, col, c) inside Pix.
func (pb *PixelBuffer) Index(row, col, c int) int {
	return row*pb.Width*pb.Channels + col*pb.Channels + c
}

// At returns the sample value of channel c at (row, col).
func (pb *PixelBuffer) At(row, col, c int) uint8 {
	return pb.Pix[pb.Index(row, col, c)]
}

// Set updates the sample value of channel c at (row, col).
func (pb *PixelBuffer) Set(row, col, c int, v uint8) {
	pb.Pix[pb.Index(row, col, c)] = v
}

// Clone returns a deep copy of the buffer.
func (pb *PixelBuffer) Clone() *PixelBuffer {
	pix := make([]uint8, len(pb.Pix))
	copy(pix, pb.Pix)
	return &PixelBuffer{
		Pix:      pix,
		Width:    pb.Width,
		Height:   pb.Height,
		Channels: pb.Channels,
	}
}

// RemoveSeam drops the pixels crossed by the seam, shrinking the buffer width by one.
// A fresh backing slice is allocated; the old one is released.
func (pb *PixelBuffer) RemoveSeam(seam Seam) error {
	if err := seam.Validate(pb.Width, pb.Height); err != nil {
		return err
	}
	newWidth := pb.Width - 1
	if newWidth == 0 {
		return errors.Wrap(ErrInvalidTarget, "cannot remove the last column")
	}
	n, err := allocSize(newWidth, pb.Height, pb.Channels)
	if err != nil {
		return err
	}
	pix := make([]uint8, n)
	rowSize := newWidth * pb.Channels

	for row, col := range seam {
		src := pb.Pix[pb.Index(row, 0, 0):pb.Index(row+1, 0, 0)]
		dst := pix[row*rowSize : (row+1)*rowSize]

		// Pixels left of the seam keep their offset, the ones at the right move one step left.
		split := col * pb.Channels
		copy(dst[:split], src[:split])
		copy(dst[split:], src[split+pb.Channels:])
	}
	pb.Pix = pix
	pb.Width = newWidth

	return nil
}
