package nemo

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/fhs/go-netcdf/netcdf"

	"go.ngs.io/periant/internal/domain"
)

// FillValue marks undefined cells in written datasets.
const FillValue = 1e20

// TimeUnits is the CF units string of the written time coordinate.
const TimeUnits = "hours since 1900-01-01 00:00:00"

var timeEpoch = time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)

// WriteDataset writes a processed dataset to path as NetCDF-4, replacing
// any existing file. Coordinates are written for every canonical axis
// present in ds.
//
//nolint:gocyclo // Define mode and data mode are written in one pass.
func WriteDataset(path string, ds *domain.Dataset) error {
	ncMu.Lock()
	defer ncMu.Unlock()

	f, err := netcdf.CreateFile(path, netcdf.CLOBBER|netcdf.NETCDF4)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	dims := make(map[string]netcdf.Dim)
	coords := make(map[string][]float64)

	if len(ds.Time) > 0 {
		hours := make([]float64, len(ds.Time))
		for i, t := range ds.Time {
			hours[i] = t.Sub(timeEpoch).Hours()
		}
		coords[domain.TimeDim] = hours
	}
	for _, name := range []string{domain.DepthDim, domain.LatDim, domain.LonDim} {
		if c, ok := ds.Coords[name]; ok {
			coords[name] = c
		}
	}

	coordVars := make(map[string]netcdf.Var)
	for _, name := range []string{domain.TimeDim, domain.DepthDim, domain.LatDim, domain.LonDim} {
		c, ok := coords[name]
		if !ok {
			continue
		}
		d, err := f.AddDim(name, uint64(len(c)))
		if err != nil {
			return fmt.Errorf("failed to add dimension %s: %w", name, err)
		}
		dims[name] = d
		v, err := f.AddVar(name, netcdf.DOUBLE, []netcdf.Dim{d})
		if err != nil {
			return fmt.Errorf("failed to add coordinate %s: %w", name, err)
		}
		if units, ok := coordUnits[name]; ok {
			if err := v.Attr("units").WriteBytes([]byte(units)); err != nil {
				return fmt.Errorf("failed to write %s units: %w", name, err)
			}
		}
		coordVars[name] = v
	}

	dataVars := make(map[string]netcdf.Var)
	for _, name := range ds.VarNames() {
		src, _ := ds.Var(name)
		vdims := make([]netcdf.Dim, len(src.Dims))
		for i, dn := range src.Dims {
			d, ok := dims[dn]
			if !ok {
				return fmt.Errorf("%w: variable %s uses dimension %s without coordinate", domain.ErrShapeMismatch, name, dn)
			}
			vdims[i] = d
		}
		v, err := f.AddVar(name, netcdf.DOUBLE, vdims)
		if err != nil {
			return fmt.Errorf("failed to add variable %s: %w", name, err)
		}
		if err := v.Attr("_FillValue").WriteFloat64s([]float64{FillValue}); err != nil {
			return fmt.Errorf("failed to write %s _FillValue: %w", name, err)
		}
		for _, k := range sortedKeys(src.Attrs) {
			if err := v.Attr(k).WriteBytes([]byte(src.Attrs[k])); err != nil {
				return fmt.Errorf("failed to write %s attribute %s: %w", name, k, err)
			}
		}
		dataVars[name] = v
	}

	for _, k := range sortedKeys(ds.Attrs) {
		if err := f.Attr(k).WriteBytes([]byte(ds.Attrs[k])); err != nil {
			return fmt.Errorf("failed to write global attribute %s: %w", k, err)
		}
	}

	if err := f.EndDef(); err != nil {
		return fmt.Errorf("failed to leave define mode: %w", err)
	}

	for name, v := range coordVars {
		if err := v.WriteFloat64s(coords[name]); err != nil {
			return fmt.Errorf("failed to write coordinate %s: %w", name, err)
		}
	}
	for _, name := range ds.VarNames() {
		src, _ := ds.Var(name)
		out := make([]float64, len(src.Data))
		for i, x := range src.Data {
			if math.IsNaN(x) {
				out[i] = FillValue
			} else {
				out[i] = x
			}
		}
		if err := dataVars[name].WriteFloat64s(out); err != nil {
			return fmt.Errorf("failed to write variable %s: %w", name, err)
		}
	}
	return nil
}

var coordUnits = map[string]string{
	domain.TimeDim:  TimeUnits,
	domain.DepthDim: "m",
	domain.LatDim:   "degrees_north",
	domain.LonDim:   "degrees_east",
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
