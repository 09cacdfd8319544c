package domain

import (
	"fmt"
	"math"
	"time"
)

// Raw NEMO dimension names as found in BIOPERIANT12 output files.
const (
	RawTimeDim = "time_counter"
	RawYDim    = "y"
	RawXDim    = "x"
)

// Canonical dimension names of processed datasets.
const (
	TimeDim  = "time"
	DepthDim = "depth"
	LatDim   = "lat"
	LonDim   = "lon"
)

// Layout describes the axes a record variable carries. It is decided once
// when the variable is loaded.
type Layout int

const (
	// StaticLayout marks variables without a leading time axis.
	StaticLayout Layout = iota
	// SurfaceLayout marks (time, y, x) variables.
	SurfaceLayout
	// DepthLayout marks (time, depth, y, x) variables.
	DepthLayout
)

func (l Layout) String() string {
	switch l {
	case SurfaceLayout:
		return "surface"
	case DepthLayout:
		return "depth"
	default:
		return "static"
	}
}

// LayoutFor classifies a variable from its dimension names.
func LayoutFor(dims []string) Layout {
	if len(dims) == 0 || dims[0] != RawTimeDim {
		return StaticLayout
	}
	switch len(dims) {
	case 3:
		return SurfaceLayout
	case 4:
		return DepthLayout
	default:
		return StaticLayout
	}
}

// Variable is a dense row-major array. Undefined cells hold NaN.
type Variable struct {
	Name   string
	Dims   []string
	Shape  []int
	Layout Layout
	Data   []float64
	Attrs  map[string]string
}

// Size returns the number of cells implied by Shape.
func (v *Variable) Size() int {
	n := 1
	for _, s := range v.Shape {
		n *= s
	}
	return n
}

// DimLen returns the length of the named dimension.
func (v *Variable) DimLen(name string) (int, bool) {
	for i, d := range v.Dims {
		if d == name {
			return v.Shape[i], true
		}
	}
	return 0, false
}

// Valid counts the defined (non-NaN) cells.
func (v *Variable) Valid() int {
	n := 0
	for _, x := range v.Data {
		if !math.IsNaN(x) {
			n++
		}
	}
	return n
}

// Clone returns a deep copy of v.
func (v *Variable) Clone() *Variable {
	c := &Variable{
		Name:   v.Name,
		Dims:   append([]string(nil), v.Dims...),
		Shape:  append([]int(nil), v.Shape...),
		Layout: v.Layout,
		Data:   append([]float64(nil), v.Data...),
	}
	if v.Attrs != nil {
		c.Attrs = make(map[string]string, len(v.Attrs))
		for k, val := range v.Attrs {
			c.Attrs[k] = val
		}
	}
	return c
}

// Coords maps a dimension name to its 1-D coordinate values.
type Coords map[string][]float64

// Dataset is a named collection of variables sharing dimensions.
type Dataset struct {
	Coords Coords
	Time   []time.Time // Set on processed datasets only.
	Attrs  map[string]string

	vars  map[string]*Variable
	order []string
}

// NewDataset creates an empty dataset.
func NewDataset() *Dataset {
	return &Dataset{
		Coords: make(Coords),
		Attrs:  make(map[string]string),
		vars:   make(map[string]*Variable),
	}
}

// AddVar adds v, replacing any variable of the same name.
func (d *Dataset) AddVar(v *Variable) error {
	if len(v.Data) != v.Size() {
		return fmt.Errorf("%w: variable %s has %d values for shape %v", ErrShapeMismatch, v.Name, len(v.Data), v.Shape)
	}
	if len(v.Dims) != len(v.Shape) {
		return fmt.Errorf("%w: variable %s has dims %v for shape %v", ErrShapeMismatch, v.Name, v.Dims, v.Shape)
	}
	if _, ok := d.vars[v.Name]; !ok {
		d.order = append(d.order, v.Name)
	}
	d.vars[v.Name] = v
	return nil
}

// Var returns the named variable.
func (d *Dataset) Var(name string) (*Variable, bool) {
	v, ok := d.vars[name]
	return v, ok
}

// VarNames returns variable names in insertion order.
func (d *Dataset) VarNames() []string {
	return append([]string(nil), d.order...)
}

// DimLen returns the length of a dimension shared by the dataset's
// variables or coordinates.
func (d *Dataset) DimLen(name string) (int, bool) {
	if c, ok := d.Coords[name]; ok {
		return len(c), true
	}
	for _, n := range d.order {
		if l, ok := d.vars[n].DimLen(name); ok {
			return l, true
		}
	}
	return 0, false
}

// Coefficient is one row of the NEMO output coefficient table resolved for
// a range suffix.
type Coefficient struct {
	Name  string
	Scale float64
	Min   float64
	Max   float64
	Step  float64
}

// OceanMask is the static land/sea mask of the model grid.
type OceanMask struct {
	NZ, NY, NX int
	Lon        []float64 // nav_lon, NY*NX.
	Lat        []float64 // nav_lat, NY*NX.
	TMask      []float64 // tmask, NZ*NY*NX. 1 = ocean.
}

// Validate checks array lengths against the declared shape.
func (m *OceanMask) Validate() error {
	if m.NY <= 0 || m.NX <= 0 || m.NZ <= 0 {
		return fmt.Errorf("%w: ocean mask shape (%d, %d, %d)", ErrShapeMismatch, m.NZ, m.NY, m.NX)
	}
	if len(m.Lon) != m.NY*m.NX || len(m.Lat) != m.NY*m.NX {
		return fmt.Errorf("%w: nav_lon/nav_lat have %d/%d values, expected %d", ErrShapeMismatch, len(m.Lon), len(m.Lat), m.NY*m.NX)
	}
	if len(m.TMask) != m.NZ*m.NY*m.NX {
		return fmt.Errorf("%w: tmask has %d values, expected %d", ErrShapeMismatch, len(m.TMask), m.NZ*m.NY*m.NX)
	}
	return nil
}

// Level returns the mask of depth level k.
func (m *OceanMask) Level(k int) []float64 {
	n := m.NY * m.NX
	return m.TMask[k*n : (k+1)*n]
}

// LonAxis returns longitudes along the first grid row.
func (m *OceanMask) LonAxis() []float64 {
	return append([]float64(nil), m.Lon[:m.NX]...)
}

// LatAxis returns latitudes along the first grid column.
func (m *OceanMask) LatAxis() []float64 {
	lat := make([]float64, m.NY)
	for j := range lat {
		lat[j] = m.Lat[j*m.NX]
	}
	return lat
}
