package seamcarve

import (
	"github.com/esimov/seamcarve/utils"
	"github.com/pkg/errors"
)

// Seam is a top to bottom path holding one column index for every image row.
type Seam []int

// Validate checks that the seam spans height rows, stays within [0, width-1]
// and moves at most one column between adjacent rows.
func (s Seam) Validate(width, height int) error {
	if len(s) != height {
		return errors.Wrapf(ErrInvalidSeam, "seam length %d, image height %d", len(s), height)
	}
	for row, col := range s {
		if col < 0 || col >= width {
			return errors.Wrapf(ErrInvalidSeam, "column %d out of range at row %d", col, row)
		}
		if row > 0 && utils.Abs(col-s[row-1]) > 1 {
			return errors.Wrapf(ErrInvalidSeam, "disconnected seam between rows %d and %d", row-1, row)
		}
	}
	return nil
}

// SeamFinder computes the lowest energy vertical seam of an energy map.
// The cost and backpointer tables are kept between calls and resized
// to the current map dimensions, so a single finder can serve a whole carve.
type SeamFinder struct {
	width  int
	height int
	cost   []int
	back   []int
}

// NewSeamFinder returns a finder with empty tables.
func NewSeamFinder() *SeamFinder {
	return &SeamFinder{}
}

// get returns the accumulated cost at (row, col).
func (sf *SeamFinder) get(row, col int) int {
	return sf.cost[row*sf.width+col]
}

// set stores the accumulated cost and the chosen parent column at (row, col).
func (sf *SeamFinder) set(row, col, cost, parent int) {
	idx := row*sf.width + col
	sf.cost[idx] = cost
	sf.back[idx] = parent
}

// resize adjusts the tables to the energy map dimensions, reusing the
// previous backing arrays whenever they are large enough.
func (sf *SeamFinder) resize(width, height int) {
	n := width * height
	if cap(sf.cost) < n {
		sf.cost = make([]int, n)
		sf.back = make([]int, n)
	}
	sf.cost = sf.cost[:n]
	sf.back = sf.back[:n]
	sf.width, sf.height = width, height
}

// FindSeam returns the vertical seam with the minimum cumulative energy.
//
// The cumulative cost M of each cell is the cell energy plus the lowest M of
// its three neighbours on the previous row. The straight-above parent is the
// baseline; the left and then the right diagonal replace it only when strictly
// cheaper. The seam ends at the first minimum of the last row and is recovered
// by walking the backpointers upward.
func (sf *SeamFinder) FindSeam(em *EnergyMap) Seam {
	width, height := em.Width, em.Height
	sf.resize(width, height)

	for col := 0; col < width; col++ {
		sf.set(0, col, int(em.At(0, col)), col)
	}

	for row := 1; row < height; row++ {
		for col := 0; col < width; col++ {
			best, parent := sf.get(row-1, col), col

			// Do not look past the far left pixels.
			if col > 0 {
				if left := sf.get(row-1, col-1); left < best {
					best, parent = left, col-1
				}
			}
			// Do not look past the far right pixels.
			if col < width-1 {
				if right := sf.get(row-1, col+1); right < best {
					best, parent = right, col+1
				}
			}
			sf.set(row, col, int(em.At(row, col))+best, parent)
		}
	}

	last := height - 1
	px := 0
	for col := 1; col < width; col++ {
		if sf.get(last, col) < sf.get(last, px) {
			px = col
		}
	}

	seam := make(Seam, height)
	for row := last; row >= 0; row-- {
		seam[row] = px
		px = sf.back[row*sf.width+px]
	}
	return seam
}
