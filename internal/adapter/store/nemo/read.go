// Package nemo reads and writes BIOPERIANT12 NEMO output in NetCDF format.
package nemo

import (
	"fmt"
	"math"

	"github.com/fhs/go-netcdf/netcdf"
)

// readSlab reads the hyperslab [start, start+count) of v as float64,
// converting from the stored type.
//
//nolint:gocyclo // One case per supported NetCDF type.
func readSlab(v netcdf.Var, start, count []uint64) ([]float64, error) {
	n := 1
	for _, c := range count {
		n *= int(c)
	}

	t, err := v.Type()
	if err != nil {
		return nil, fmt.Errorf("failed to get var type: %w", err)
	}

	out := make([]float64, n)
	switch t {
	case netcdf.DOUBLE:
		if err := v.ReadFloat64Slice(out, start, count); err != nil {
			return nil, fmt.Errorf("failed to read float64: %w", err)
		}
	case netcdf.FLOAT:
		tmp := make([]float32, n)
		if err := v.ReadFloat32Slice(tmp, start, count); err != nil {
			return nil, fmt.Errorf("failed to read float32: %w", err)
		}
		for i, val := range tmp {
			out[i] = float64(val)
		}
	case netcdf.INT:
		tmp := make([]int32, n)
		if err := v.ReadInt32Slice(tmp, start, count); err != nil {
			return nil, fmt.Errorf("failed to read int32: %w", err)
		}
		for i, val := range tmp {
			out[i] = float64(val)
		}
	case netcdf.SHORT:
		tmp := make([]int16, n)
		if err := v.ReadInt16Slice(tmp, start, count); err != nil {
			return nil, fmt.Errorf("failed to read int16: %w", err)
		}
		for i, val := range tmp {
			out[i] = float64(val)
		}
	case netcdf.BYTE:
		tmp := make([]int8, n)
		if err := v.ReadInt8Slice(tmp, start, count); err != nil {
			return nil, fmt.Errorf("failed to read int8: %w", err)
		}
		for i, val := range tmp {
			out[i] = float64(val)
		}
	case netcdf.UBYTE:
		tmp := make([]uint8, n)
		if err := v.ReadUint8Slice(tmp, start, count); err != nil {
			return nil, fmt.Errorf("failed to read uint8: %w", err)
		}
		for i, val := range tmp {
			out[i] = float64(val)
		}
	default:
		return nil, fmt.Errorf("unsupported data type: %v", t)
	}
	return out, nil
}

// numeric reports whether readSlab can decode variables of type t.
func numeric(t netcdf.Type) bool {
	switch t {
	case netcdf.DOUBLE, netcdf.FLOAT, netcdf.INT, netcdf.SHORT, netcdf.BYTE, netcdf.UBYTE:
		return true
	default:
		return false
	}
}

// readAll reads a whole variable, tiling the two trailing dimensions so
// that no single read exceeds tileY*tileX cells per leading index.
func readAll(v netcdf.Var, shape []uint64, tileY, tileX int) ([]float64, error) {
	rank := len(shape)
	total := 1
	for _, s := range shape {
		total *= int(s)
	}

	if rank < 2 || tileY <= 0 || tileX <= 0 {
		return readSlab(v, make([]uint64, rank), shape)
	}

	ny, nx := int(shape[rank-2]), int(shape[rank-1])
	if ny <= tileY && nx <= tileX {
		return readSlab(v, make([]uint64, rank), shape)
	}

	outer := 1
	for _, s := range shape[:rank-2] {
		outer *= int(s)
	}

	out := make([]float64, total)
	start := make([]uint64, rank)
	count := append([]uint64(nil), shape...)
	for y0 := 0; y0 < ny; y0 += tileY {
		cy := min(tileY, ny-y0)
		for x0 := 0; x0 < nx; x0 += tileX {
			cx := min(tileX, nx-x0)
			start[rank-2], start[rank-1] = uint64(y0), uint64(x0)
			count[rank-2], count[rank-1] = uint64(cy), uint64(cx)

			tile, err := readSlab(v, start, count)
			if err != nil {
				return nil, fmt.Errorf("tile y=%d x=%d: %w", y0, x0, err)
			}
			for o := 0; o < outer; o++ {
				for r := 0; r < cy; r++ {
					src := tile[(o*cy+r)*cx : (o*cy+r+1)*cx]
					dst := o*ny*nx + (y0+r)*nx + x0
					copy(out[dst:dst+cx], src)
				}
			}
		}
	}
	return out, nil
}

// attrFloat returns a numeric attribute of v as float64.
func attrFloat(v netcdf.Var, name string) (float64, bool) {
	a := v.Attr(name)
	if n, err := a.Len(); err != nil || n == 0 {
		return 0, false
	}
	t, err := a.Type()
	if err != nil {
		return 0, false
	}
	switch t {
	case netcdf.DOUBLE:
		buf := make([]float64, 1)
		if err := a.ReadFloat64s(buf); err == nil {
			return buf[0], true
		}
	case netcdf.FLOAT:
		buf := make([]float32, 1)
		if err := a.ReadFloat32s(buf); err == nil {
			return float64(buf[0]), true
		}
	case netcdf.INT:
		buf := make([]int32, 1)
		if err := a.ReadInt32s(buf); err == nil {
			return float64(buf[0]), true
		}
	case netcdf.SHORT:
		buf := make([]int16, 1)
		if err := a.ReadInt16s(buf); err == nil {
			return float64(buf[0]), true
		}
	case netcdf.BYTE:
		buf := make([]int8, 1)
		if err := a.ReadInt8s(buf); err == nil {
			return float64(buf[0]), true
		}
	}
	return 0, false
}

// attrString returns a text attribute of v.
func attrString(v netcdf.Var, name string) (string, bool) {
	a := v.Attr(name)
	n, err := a.Len()
	if err != nil || n == 0 {
		return "", false
	}
	if t, err := a.Type(); err != nil || t != netcdf.CHAR {
		return "", false
	}
	buf := make([]byte, n)
	if err := a.ReadBytes(buf); err != nil {
		return "", false
	}
	return string(buf), true
}

// packing holds the CF packing attributes of a variable.
type packing struct {
	fill   []float64 // _FillValue and missing_value.
	scale  float64
	offset float64
}

func readPacking(v netcdf.Var) packing {
	p := packing{scale: 1}
	for _, name := range []string{"_FillValue", "missing_value"} {
		if fv, ok := attrFloat(v, name); ok {
			p.fill = append(p.fill, fv)
		}
	}
	if scale, ok := attrFloat(v, "scale_factor"); ok && scale != 0 {
		p.scale = scale
	}
	if offset, ok := attrFloat(v, "add_offset"); ok {
		p.offset = offset
	}
	return p
}

// apply decodes data in place: fill cells become NaN, then scale and
// offset apply.
func (p packing) apply(data []float64) {
	for _, fv := range p.fill {
		for i, x := range data {
			if x == fv {
				data[i] = math.NaN()
			}
		}
	}
	if p.scale == 1 && p.offset == 0 {
		return
	}
	for i := range data {
		data[i] = data[i]*p.scale + p.offset
	}
}

// dimNames returns the dimension names of v.
func dimNames(v netcdf.Var) ([]string, error) {
	dims, err := v.Dims()
	if err != nil {
		return nil, fmt.Errorf("failed to get dimensions: %w", err)
	}
	names := make([]string, len(dims))
	for i, d := range dims {
		name, err := d.Name()
		if err != nil {
			return nil, fmt.Errorf("failed to get dimension name: %w", err)
		}
		names[i] = name
	}
	return names, nil
}
