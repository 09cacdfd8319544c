package usecase

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"go.ngs.io/periant/internal/adapter/store"
	"go.ngs.io/periant/internal/domain"
)

// Rescale multiplies every variable with a coefficient entry by its scale
// and marks values outside [min, max] as undefined. It works in place and
// is not idempotent. Variables without an entry are left unchanged.
func Rescale(ds *domain.Dataset, coeffs store.CoefficientLookup, suffix string) error {
	if coeffs == nil {
		return nil
	}
	for _, name := range ds.VarNames() {
		c, ok, err := coeffs.Lookup(name, suffix)
		if err != nil {
			return fmt.Errorf("failed to look up coefficients for %s: %w", name, err)
		}
		if !ok {
			continue
		}
		v, _ := ds.Var(name)
		floats.Scale(c.Scale, v.Data)
		for i, x := range v.Data {
			if x < c.Min || x > c.Max {
				v.Data[i] = math.NaN()
			}
		}
	}
	return nil
}
