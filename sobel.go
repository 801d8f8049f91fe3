package seamcarve

import (
	"math"

	"github.com/esimov/seamcarve/utils"
)

type kernel [3][3]int

var (
	kernelX = kernel{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}

	kernelY = kernel{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}
)

// Sobel replaces the map values with the gradient magnitude of the current field.
// See https://en.wikipedia.org/wiki/Sobel_operator
//
// The squared gradients are saturated to [-255, 255] before they are summed,
// which caps the magnitude at floor(sqrt(510)). Border cells are set to zero.
func (em *EnergyMap) Sobel() error {
	n, err := allocSize(em.Width, em.Height, 1)
	if err != nil {
		return err
	}
	dst := make([]uint8, n)

	for row := 1; row < em.Height-1; row++ {
		for col := 1; col < em.Width-1; col++ {
			var gx, gy int
			for k := -1; k <= 1; k++ {
				for l := -1; l <= 1; l++ {
					px := int(em.At(row+k, col+l))
					gx += kernelX[k+1][l+1] * px
					gy += kernelY[k+1][l+1] * px
				}
			}
			gx = clamp(gx*gx, -255, 255)
			gy = clamp(gy*gy, -255, 255)

			dst[row*em.Width+col] = uint8(math.Sqrt(float64(gx + gy)))
		}
	}
	em.Values = dst

	return nil
}

// clamp saturates v to the [lo, hi] interval.
func clamp(v, lo, hi int) int {
	return utils.Max(lo, utils.Min(v, hi))
}
