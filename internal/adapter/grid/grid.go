// Package grid provides index searches and front detection on model grids.
package grid

import (
	"fmt"

	"go.ngs.io/periant/internal/domain"
)

// Grid2D is a row-major 2-D field on the model grid. Rows run along
// latitude (y) and columns along longitude (x).
type Grid2D struct {
	NY, NX int
	Values []float64
}

// NewGrid2D wraps values as an ny x nx grid.
func NewGrid2D(values []float64, ny, nx int) (*Grid2D, error) {
	g := &Grid2D{NY: ny, NX: nx, Values: values}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// At returns the value at row j, column i.
func (g *Grid2D) At(j, i int) float64 {
	return g.Values[j*g.NX+i]
}

// Validate checks Values against the declared shape.
func (g *Grid2D) Validate() error {
	if g.NY < 0 || g.NX < 0 || len(g.Values) != g.NY*g.NX {
		return fmt.Errorf("%w: %d values for a %dx%d grid", domain.ErrShapeMismatch, len(g.Values), g.NY, g.NX)
	}
	return nil
}
