package nemo

import (
	"errors"
	"fmt"
	"os"

	"github.com/fhs/go-netcdf/netcdf"

	"go.ngs.io/periant/internal/domain"
)

// Variable names of the PERIANT12 mask file.
const (
	maskLonVar  = "nav_lon"
	maskLatVar  = "nav_lat"
	maskMaskVar = "tmask"
)

// ReadOceanMask loads nav_lon, nav_lat and tmask from the mask file at path.
// The leading tmask dimension is reduced to its first index, leaving a
// (z, y, x) stack for 4-D masks and a single level otherwise.
func ReadOceanMask(path string) (*domain.OceanMask, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrMaskNotFound, path)
		}
		return nil, fmt.Errorf("failed to stat ocean mask %s: %w", path, err)
	}

	ncMu.Lock()
	defer ncMu.Unlock()

	//nolint:gosec // G304: Mask path comes from configuration.
	nc, err := netcdf.OpenFile(path, netcdf.NOWRITE)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", domain.ErrUnreadableFile, path, err)
	}
	defer func() { _ = nc.Close() }()

	lon, lonShape, err := read2D(nc, maskLonVar)
	if err != nil {
		return nil, fmt.Errorf("ocean mask %s: %w", path, err)
	}
	lat, latShape, err := read2D(nc, maskLatVar)
	if err != nil {
		return nil, fmt.Errorf("ocean mask %s: %w", path, err)
	}
	if lonShape != latShape {
		return nil, fmt.Errorf("%w: ocean mask %s: nav_lon is %v, nav_lat is %v", domain.ErrShapeMismatch, path, lonShape, latShape)
	}

	v, err := nc.Var(maskMaskVar)
	if err != nil {
		return nil, fmt.Errorf("ocean mask %s: variable %s not found: %w", path, maskMaskVar, err)
	}
	lens, err := v.LenDims()
	if err != nil {
		return nil, fmt.Errorf("ocean mask %s: %w", path, err)
	}

	start := make([]uint64, len(lens))
	count := append([]uint64(nil), lens...)
	nz := 1
	switch len(lens) {
	case 4: // (t, z, y, x)
		count[0] = 1
		nz = int(lens[1])
	case 3: // (t, y, x)
		count[0] = 1
	case 2: // (y, x)
	default:
		return nil, fmt.Errorf("%w: ocean mask %s: tmask has %d dimensions", domain.ErrShapeMismatch, path, len(lens))
	}
	ny, nx := int(lens[len(lens)-2]), int(lens[len(lens)-1])
	if ny != lonShape[0] || nx != lonShape[1] {
		return nil, fmt.Errorf("%w: ocean mask %s: tmask grid (%d, %d) differs from nav_lon %v", domain.ErrShapeMismatch, path, ny, nx, lonShape)
	}

	tmask, err := readSlab(v, start, count)
	if err != nil {
		return nil, fmt.Errorf("ocean mask %s: %s: %w", path, maskMaskVar, err)
	}

	mask := &domain.OceanMask{NZ: nz, NY: ny, NX: nx, Lon: lon, Lat: lat, TMask: tmask}
	if err := mask.Validate(); err != nil {
		return nil, fmt.Errorf("ocean mask %s: %w", path, err)
	}
	return mask, nil
}

// read2D reads a 2-D variable and its (rows, cols) shape.
func read2D(nc netcdf.Dataset, name string) ([]float64, [2]int, error) {
	v, err := nc.Var(name)
	if err != nil {
		return nil, [2]int{}, fmt.Errorf("variable %s not found: %w", name, err)
	}
	lens, err := v.LenDims()
	if err != nil {
		return nil, [2]int{}, fmt.Errorf("variable %s: %w", name, err)
	}
	if len(lens) != 2 {
		return nil, [2]int{}, fmt.Errorf("%w: expected 2D %s, got %dD", domain.ErrShapeMismatch, name, len(lens))
	}
	data, err := readSlab(v, []uint64{0, 0}, lens)
	if err != nil {
		return nil, [2]int{}, fmt.Errorf("variable %s: %w", name, err)
	}
	return data, [2]int{int(lens[0]), int(lens[1])}, nil
}
