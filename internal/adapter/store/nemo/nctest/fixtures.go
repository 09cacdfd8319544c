// Package nctest writes small NEMO-shaped NetCDF files for tests.
package nctest

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/fhs/go-netcdf/netcdf"
)

// Output describes one synthetic BIOPERIANT12 output file.
type Output struct {
	TimeCounter []float64 // One value per record.
	Depths      []float64 // deptht values; nil for surface-only files.
	NY, NX      int

	// Surface holds (time_counter, y, x) variables.
	Surface map[string][]float32
	// Profile holds (time_counter, deptht, y, x) variables.
	Profile map[string][]float32

	// FillValue, when non-zero, is written as _FillValue on every data variable.
	FillValue float32
}

// WriteOutput creates path with the layout described by o.
func WriteOutput(t *testing.T, path string, o Output) {
	t.Helper()
	//nolint:gosec // G301: Standard test directory permissions.
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	f, err := netcdf.CreateFile(path, netcdf.CLOBBER)
	if err != nil {
		t.Fatalf("create nc: %v", err)
	}
	defer func() { _ = f.Close() }()

	tDim, err := f.AddDim("time_counter", uint64(len(o.TimeCounter)))
	if err != nil {
		t.Fatalf("add time_counter: %v", err)
	}
	yDim, _ := f.AddDim("y", uint64(o.NY))
	xDim, _ := f.AddDim("x", uint64(o.NX))

	vTime, _ := f.AddVar("time_counter", netcdf.DOUBLE, []netcdf.Dim{tDim})

	var zDim netcdf.Dim
	var vDepth netcdf.Var
	if len(o.Depths) > 0 {
		zDim, _ = f.AddDim("deptht", uint64(len(o.Depths)))
		vDepth, _ = f.AddVar("deptht", netcdf.FLOAT, []netcdf.Dim{zDim})
	}

	vars := make(map[string]netcdf.Var)
	for _, name := range keys(o.Surface) {
		v, err := f.AddVar(name, netcdf.FLOAT, []netcdf.Dim{tDim, yDim, xDim})
		if err != nil {
			t.Fatalf("add %s: %v", name, err)
		}
		vars[name] = v
	}
	for _, name := range keys(o.Profile) {
		v, err := f.AddVar(name, netcdf.FLOAT, []netcdf.Dim{tDim, zDim, yDim, xDim})
		if err != nil {
			t.Fatalf("add %s: %v", name, err)
		}
		vars[name] = v
	}
	if o.FillValue != 0 {
		for name, v := range vars {
			if err := v.Attr("_FillValue").WriteFloat32s([]float32{o.FillValue}); err != nil {
				t.Fatalf("write %s _FillValue: %v", name, err)
			}
		}
	}

	if err := f.EndDef(); err != nil {
		t.Fatalf("enddef: %v", err)
	}

	if err := vTime.WriteFloat64s(o.TimeCounter); err != nil {
		t.Fatalf("write time_counter: %v", err)
	}
	if len(o.Depths) > 0 {
		depths := make([]float32, len(o.Depths))
		for i, d := range o.Depths {
			depths[i] = float32(d)
		}
		if err := vDepth.WriteFloat32s(depths); err != nil {
			t.Fatalf("write deptht: %v", err)
		}
	}
	for name, data := range o.Surface {
		if err := vars[name].WriteFloat32s(data); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	for name, data := range o.Profile {
		if err := vars[name].WriteFloat32s(data); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

// Mask describes a synthetic PERIANT12 mask file.
type Mask struct {
	NZ, NY, NX int
	Lon, Lat   []float32 // NY*NX each.
	TMask      []int8    // NZ*NY*NX; written as (t=1, z, y, x).
}

// WriteMask creates path holding nav_lon, nav_lat and tmask.
func WriteMask(t *testing.T, path string, m Mask) {
	t.Helper()
	//nolint:gosec // G301: Standard test directory permissions.
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	f, err := netcdf.CreateFile(path, netcdf.CLOBBER)
	if err != nil {
		t.Fatalf("create nc: %v", err)
	}
	defer func() { _ = f.Close() }()

	tDim, _ := f.AddDim("t", 1)
	zDim, _ := f.AddDim("z", uint64(m.NZ))
	yDim, _ := f.AddDim("y", uint64(m.NY))
	xDim, _ := f.AddDim("x", uint64(m.NX))
	vLon, _ := f.AddVar("nav_lon", netcdf.FLOAT, []netcdf.Dim{yDim, xDim})
	vLat, _ := f.AddVar("nav_lat", netcdf.FLOAT, []netcdf.Dim{yDim, xDim})
	vMask, _ := f.AddVar("tmask", netcdf.BYTE, []netcdf.Dim{tDim, zDim, yDim, xDim})

	if err := f.EndDef(); err != nil {
		t.Fatalf("enddef: %v", err)
	}
	if err := vLon.WriteFloat32s(m.Lon); err != nil {
		t.Fatalf("write nav_lon: %v", err)
	}
	if err := vLat.WriteFloat32s(m.Lat); err != nil {
		t.Fatalf("write nav_lat: %v", err)
	}
	if err := vMask.WriteInt8s(m.TMask); err != nil {
		t.Fatalf("write tmask: %v", err)
	}
}

func keys(m map[string][]float32) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
