package usecase

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"

	"go.ngs.io/periant/internal/adapter/store"
	"go.ngs.io/periant/internal/adapter/store/nemo"
	"go.ngs.io/periant/internal/domain"
)

// Global attributes attached to every processed dataset.
const (
	AttrConventions = "GDT 1.3"
	AttrProduction  = "NEMO"
)

// Processor turns a raw NEMO dataset into a masked, sorted and rescaled
// dataset on (time, [depth], lat, lon).
type Processor struct {
	mask   *domain.OceanMask
	coeffs store.CoefficientLookup
	suffix string
	log    logrus.FieldLogger
}

// NewProcessor reads the ocean mask at maskPath.
func NewProcessor(maskPath string, coeffs store.CoefficientLookup, suffix string, log logrus.FieldLogger) (*Processor, error) {
	mask, err := nemo.ReadOceanMask(maskPath)
	if err != nil {
		return nil, err
	}
	return NewProcessorWithMask(mask, coeffs, suffix, log)
}

// NewProcessorWithMask uses an already loaded mask. The mask is not modified.
func NewProcessorWithMask(mask *domain.OceanMask, coeffs store.CoefficientLookup, suffix string, log logrus.FieldLogger) (*Processor, error) {
	if mask == nil {
		return nil, fmt.Errorf("%w: nil mask", domain.ErrMaskNotFound)
	}
	if err := mask.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Processor{mask: mask, coeffs: coeffs, suffix: suffix, log: log}, nil
}

// RefineCoordinates masks land cells of v, renames its dimensions to
// time, [depth], lat and lon, and sorts every axis by coordinate value.
// coords holds the raw coordinates of the dataset v came from.
func (p *Processor) RefineCoordinates(v *domain.Variable, coords domain.Coords) (*domain.Variable, domain.Coords, error) {
	var masks [][]float64
	var dims []string
	switch v.Layout {
	case domain.SurfaceLayout:
		masks = [][]float64{p.mask.Level(0)}
		dims = []string{domain.TimeDim, domain.LatDim, domain.LonDim}
	case domain.DepthLayout:
		if v.Shape[1] != p.mask.NZ {
			return nil, nil, fmt.Errorf("%w: variable %s has %d depth levels, mask has %d",
				domain.ErrShapeMismatch, v.Name, v.Shape[1], p.mask.NZ)
		}
		for k := 0; k < p.mask.NZ; k++ {
			masks = append(masks, p.mask.Level(k))
		}
		dims = []string{domain.TimeDim, domain.DepthDim, domain.LatDim, domain.LonDim}
	default:
		return nil, nil, fmt.Errorf("%w: variable %s is %s with dims %v", domain.ErrUnsupportedLayout, v.Name, v.Layout, v.Dims)
	}

	rank := len(v.Shape)
	ny, nx := v.Shape[rank-2], v.Shape[rank-1]
	if ny != p.mask.NY || nx != p.mask.NX {
		return nil, nil, fmt.Errorf("%w: variable %s is %dx%d, mask is %dx%d",
			domain.ErrShapeMismatch, v.Name, ny, nx, p.mask.NY, p.mask.NX)
	}

	out := v.Clone()
	out.Dims = dims

	// Mask levels repeat for every time record.
	plane := ny * nx
	for n := 0; n < len(out.Data)/plane; n++ {
		m := masks[n%len(masks)]
		cells := out.Data[n*plane : (n+1)*plane]
		for c := range cells {
			if m[c] != 1 {
				cells[c] = math.NaN()
			}
		}
	}

	axes := make([][]float64, rank)
	axes[0] = axisValues(coords[domain.RawTimeDim], v.Shape[0])
	if v.Layout == domain.DepthLayout {
		axes[1] = axisValues(coords[v.Dims[1]], v.Shape[1])
	}
	axes[rank-2] = p.mask.LatAxis()
	axes[rank-1] = p.mask.LonAxis()

	refined := make(domain.Coords, rank)
	for axis, values := range axes {
		perm := make([]int, len(values))
		floats.ArgsortStable(values, perm)
		out.Data = permuteAxis(out.Data, out.Shape, axis, perm)
		refined[dims[axis]] = values
	}
	return out, refined, nil
}

// Process refines the requested variables of res, prunes the time axis of
// missing files, rescales and labels the result. An empty varNames selects
// every record variable.
func (p *Processor) Process(res *LoadResult, varNames []string) (*domain.Dataset, error) {
	if res == nil || res.Dataset == nil {
		return nil, fmt.Errorf("%w: nothing loaded", domain.ErrNoFiles)
	}
	raw := res.Dataset
	if len(varNames) == 0 {
		for _, name := range raw.VarNames() {
			if v, _ := raw.Var(name); v.Layout != domain.StaticLayout {
				varNames = append(varNames, name)
			}
		}
	}

	ds := domain.NewDataset()
	for _, name := range varNames {
		v, ok := raw.Var(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrUnknownVariable, name)
		}
		refined, coords, err := p.RefineCoordinates(v, raw.Coords)
		if err != nil {
			return nil, err
		}
		for dim, values := range coords {
			if have, ok := ds.Coords[dim]; ok && !floats.Same(have, values) {
				return nil, fmt.Errorf("%w: variable %s disagrees on %s coordinates", domain.ErrShapeMismatch, name, dim)
			}
			ds.Coords[dim] = values
		}
		if err := ds.AddVar(refined); err != nil {
			return nil, err
		}
		p.log.WithFields(logrus.Fields{"variable": name, "layout": v.Layout.String()}).Debug("Refined variable")
	}

	axis := res.TimeAxis
	for _, path := range res.Missing {
		t, err := domain.DateFromPath(path)
		if err != nil {
			return nil, err
		}
		if axis, err = domain.RemoveTime(axis, t); err != nil {
			return nil, fmt.Errorf("missing file %s: %w", path, err)
		}
	}

	nt, _ := ds.DimLen(domain.TimeDim)
	if len(axis) != len(res.Present) || len(axis) != nt {
		return nil, fmt.Errorf("%w: %d labels, %d files, %d records",
			domain.ErrInconsistentTimeAxis, len(axis), len(res.Present), nt)
	}
	ds.Time = axis

	if err := Rescale(ds, p.coeffs, p.suffix); err != nil {
		return nil, err
	}

	ds.Attrs["Conventions"] = AttrConventions
	ds.Attrs["production"] = AttrProduction
	ds.Attrs["output_frequency"] = res.Convention.TimeStep.Frequency()
	ds.Attrs["CONFIG"] = domain.Config
	ds.Attrs["CASE"] = res.Convention.Case

	p.log.WithFields(logrus.Fields{
		"time_step": res.Convention.TimeStep,
		"records":   nt,
		"missing":   len(res.Missing),
	}).Info("Processed dataset")
	return ds, nil
}

// axisValues returns a copy of raw when it matches n, and positions
// 0..n-1 otherwise.
func axisValues(raw []float64, n int) []float64 {
	if len(raw) == n {
		return append([]float64(nil), raw...)
	}
	values := make([]float64, n)
	for i := range values {
		values[i] = float64(i)
	}
	return values
}

// permuteAxis reorders data along axis so that index i of the result holds
// index perm[i] of the input.
func permuteAxis(data []float64, shape []int, axis int, perm []int) []float64 {
	outer, inner := 1, 1
	for _, s := range shape[:axis] {
		outer *= s
	}
	for _, s := range shape[axis+1:] {
		inner *= s
	}
	n := shape[axis]

	out := make([]float64, len(data))
	for o := 0; o < outer; o++ {
		for i := 0; i < n; i++ {
			dst := (o*n + i) * inner
			src := (o*n + perm[i]) * inner
			copy(out[dst:dst+inner], data[src:src+inner])
		}
	}
	return out
}
