package seamcarve

import (
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomField(rnd *rand.Rand, width, height int) *EnergyMap {
	em := &EnergyMap{
		Values: make([]uint8, width*height),
		Width:  width,
		Height: height,
	}
	for i := range em.Values {
		em.Values[i] = uint8(rnd.Intn(23))
	}
	return em
}

func TestSeam_Validate(t *testing.T) {
	testCases := []struct {
		name  string
		seam  Seam
		valid bool
	}{
		{"valid", Seam{0, 1, 2, 1}, true},
		{"straight", Seam{3, 3, 3, 3}, true},
		{"too short", Seam{0, 1, 2}, false},
		{"negative column", Seam{0, -1, 0, 0}, false},
		{"column past the right edge", Seam{3, 4, 3, 3}, false},
		{"disconnected", Seam{0, 2, 2, 2}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.seam.Validate(4, 4)
			if tc.valid {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, ErrInvalidSeam))
			}
		})
	}
}

func TestSeamFinder_PrefersStraightParentOnTie(t *testing.T) {
	em := newField([][]uint8{
		{0, 0, 9},
		{9, 0, 9},
	})
	assert.Equal(t, Seam{1, 1}, NewSeamFinder().FindSeam(em))
}

func TestSeamFinder_PrefersLeftParentOverRightOnTie(t *testing.T) {
	em := newField([][]uint8{
		{0, 9, 0},
		{9, 0, 9},
	})
	assert.Equal(t, Seam{0, 1}, NewSeamFinder().FindSeam(em))
}

func TestSeamFinder_FirstMinimumOfLastRow(t *testing.T) {
	em := newField([][]uint8{
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	})
	assert.Equal(t, Seam{0, 0}, NewSeamFinder().FindSeam(em))
}

func TestSeamFinder_FollowsLowEnergyPath(t *testing.T) {
	em := newField([][]uint8{
		{9, 9, 1, 9, 9},
		{9, 9, 9, 1, 9},
		{9, 9, 9, 9, 1},
		{9, 9, 9, 1, 9},
	})
	assert.Equal(t, Seam{2, 3, 4, 3}, NewSeamFinder().FindSeam(em))
}

func TestSeamFinder_SingleColumn(t *testing.T) {
	em := newField([][]uint8{{3}, {4}, {5}})
	assert.Equal(t, Seam{0, 0, 0}, NewSeamFinder().FindSeam(em))
}

func TestSeamFinder_ValidAndMonotonic(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	sf := NewSeamFinder()

	for i := 0; i < 20; i++ {
		width, height := 2+rnd.Intn(30), 1+rnd.Intn(30)
		em := randomField(rnd, width, height)

		seam := sf.FindSeam(em)
		require.NoError(t, seam.Validate(width, height))

		// The tables must match the field the finder was called with.
		assert.Len(t, sf.cost, width*height)
		assert.Len(t, sf.back, width*height)

		for row := 1; row < height; row++ {
			assert.GreaterOrEqual(t, sf.get(row, seam[row]), sf.get(row-1, seam[row-1]))
			assert.Equal(t, seam[row-1], sf.back[row*width+seam[row]])
		}

		// The seam cost equals the sum of the energy crossed by it.
		var sum int
		for row, col := range seam {
			sum += int(em.At(row, col))
		}
		assert.Equal(t, sum, sf.get(height-1, seam[height-1]))

		// No other column of the last row is cheaper.
		for col := 0; col < width; col++ {
			assert.GreaterOrEqual(t, sf.get(height-1, col), sum)
		}
	}
}

func TestSeamFinder_ReusesTables(t *testing.T) {
	sf := NewSeamFinder()
	rnd := rand.New(rand.NewSource(7))

	sf.FindSeam(randomField(rnd, 10, 10))
	capacity := cap(sf.cost)

	seam := sf.FindSeam(randomField(rnd, 9, 10))
	assert.NoError(t, seam.Validate(9, 10))
	assert.Equal(t, capacity, cap(sf.cost))
	assert.Len(t, sf.cost, 90)
}
