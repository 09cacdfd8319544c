package grid

import (
	"fmt"
	"math"

	"go.ngs.io/periant/internal/domain"
)

// FrontPositions returns, for every cell whose value lies strictly between
// minValue and maxValue, the latitude of that cell. Other cells, including
// undefined ones, are NaN. All three grids must share a shape.
func FrontPositions(field *Grid2D, minValue, maxValue float64, lon2d, lat2d *Grid2D) (*Grid2D, error) {
	named := []struct {
		name string
		g    *Grid2D
	}{{"field", field}, {"lon2d", lon2d}, {"lat2d", lat2d}}
	for _, n := range named {
		if n.g == nil {
			return nil, fmt.Errorf("%w: %s is nil", domain.ErrShapeMismatch, n.name)
		}
		if err := n.g.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", n.name, err)
		}
		if n.g.NY != field.NY || n.g.NX != field.NX {
			return nil, fmt.Errorf("%w: %s is %dx%d, field is %dx%d",
				domain.ErrShapeMismatch, n.name, n.g.NY, n.g.NX, field.NY, field.NX)
		}
	}

	out := make([]float64, len(field.Values))
	for k, v := range field.Values {
		if v > minValue && v < maxValue {
			out[k] = lat2d.Values[k]
		} else {
			out[k] = math.NaN()
		}
	}
	return &Grid2D{NY: field.NY, NX: field.NX, Values: out}, nil
}
