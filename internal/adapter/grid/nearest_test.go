package grid

import (
	"math"
	"testing"
)

func TestNearestIndex(t *testing.T) {
	tests := []struct {
		name  string
		grid  []float64
		coord float64
		want  []int
	}{
		{"exact", []float64{-70, -69.5, -69, -68.5}, -69, []int{2}},
		{"between", []float64{0, 10, 20}, 13, []int{1}},
		{"tie", []float64{1, 3, 5, 7}, 4, []int{1, 2}},
		{"below range", []float64{5, 6, 7}, -100, []int{0}},
		{"repeated values", []float64{2, 2, 9}, 2, []int{0, 1}},
		{"nan ignored", []float64{math.NaN(), 4, 8}, 0, []int{1}},
		{"empty", nil, 1, nil},
		{"all nan", []float64{math.NaN()}, 1, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NearestIndex(tt.grid, tt.coord)
			if !equalInts(got, tt.want) {
				t.Errorf("NearestIndex(%v, %v) = %v, want %v", tt.grid, tt.coord, got, tt.want)
			}
		})
	}
}

func TestNearestDepthIndex(t *testing.T) {
	tests := []struct {
		name   string
		depths []float64
		target float64
		want   []int
	}{
		{"positive down", []float64{0.5, 10, 20, 30}, 12, []int{1}},
		{"negative stored", []float64{-10, -20, -30}, 15, []int{0, 1}},
		{"negative stored exact", []float64{-10, -20, -30}, 30, []int{2}},
		{"shallow negative kept", []float64{-0.5, 0}, -0.4, []int{0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NearestDepthIndex(tt.depths, tt.target)
			if !equalInts(got, tt.want) {
				t.Errorf("NearestDepthIndex(%v, %v) = %v, want %v", tt.depths, tt.target, got, tt.want)
			}
		})
	}
}

func TestNearestDepthIndex_DoesNotMutate(t *testing.T) {
	depths := []float64{-10, -20}
	NearestDepthIndex(depths, 10)
	if depths[0] != -10 || depths[1] != -20 {
		t.Errorf("depths mutated: %v", depths)
	}
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
