package seamcarve

import "github.com/pkg/errors"

// MaxPixels caps the number of pixels a single buffer may hold.
// Anything larger is reported as an allocation failure instead of
// letting the runtime abort the process.
const MaxPixels = 1 << 28

var (
	// ErrUnsupportedFormat is returned when the source is not a 3 channel RGB buffer.
	ErrUnsupportedFormat = errors.New("unsupported pixel format: only RGB input is supported")

	// ErrInvalidTarget is returned when the requested width cannot be reached.
	ErrInvalidTarget = errors.New("invalid target width")

	// ErrAllocation is returned when a buffer of the requested size cannot be created.
	ErrAllocation = errors.New("buffer allocation failed")

	// ErrInvalidSeam is returned when a seam does not fit the structure it is removed from.
	ErrInvalidSeam = errors.New("invalid seam")
)

// allocSize returns the number of elements needed for a width x height x depth
// buffer, or ErrAllocation if the dimensions are unusable.
func allocSize(width, height, depth int) (int, error) {
	if width <= 0 || height <= 0 || depth <= 0 {
		return 0, errors.Wrapf(ErrAllocation, "non-positive dimensions %dx%dx%d", width, height, depth)
	}
	if width > MaxPixels/height {
		return 0, errors.Wrapf(ErrAllocation, "%dx%d exceeds %d pixels", width, height, MaxPixels)
	}
	return width * height * depth, nil
}
