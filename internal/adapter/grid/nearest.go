package grid

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// NearestIndex returns the indices of the grid values closest to coord.
// Ties return every tying index in ascending order; NaN values never match.
func NearestIndex(grid []float64, coord float64) []int {
	if len(grid) == 0 {
		return nil
	}

	dist := make([]float64, len(grid))
	for i, v := range grid {
		d := math.Abs(v - coord)
		if math.IsNaN(d) {
			d = math.Inf(1)
		}
		dist[i] = d
	}

	best := floats.Min(dist)
	if math.IsInf(best, 1) {
		return nil
	}
	var idx []int
	for i, d := range dist {
		if d == best {
			idx = append(idx, i)
		}
	}
	return idx
}

// NearestDepthIndex is NearestIndex for depth levels. Depths stored as
// negative values (maximum below -1) are flipped to positive-down first.
func NearestDepthIndex(depths []float64, target float64) []int {
	if len(depths) == 0 {
		return nil
	}
	if floats.Max(depths) < -1 {
		flipped := append([]float64(nil), depths...)
		floats.Scale(-1, flipped)
		depths = flipped
	}
	return NearestIndex(depths, target)
}
