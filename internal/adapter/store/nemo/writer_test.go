package nemo

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/fhs/go-netcdf/netcdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ngs.io/periant/internal/domain"
)

func TestWriteDataset_RoundTrip(t *testing.T) {
	ds := domain.NewDataset()
	ds.Time = []time.Time{domain.Label(2008, 1, 5), domain.Label(2008, 1, 10)}
	ds.Coords[domain.LatDim] = []float64{-70, -69}
	ds.Coords[domain.LonDim] = []float64{20, 21}
	ds.Attrs["CONFIG"] = domain.Config
	ds.Attrs["Conventions"] = "GDT 1.3"
	require.NoError(t, ds.AddVar(&domain.Variable{
		Name:   "sosstsst",
		Dims:   []string{domain.TimeDim, domain.LatDim, domain.LonDim},
		Shape:  []int{2, 2, 2},
		Layout: domain.SurfaceLayout,
		Data:   []float64{1, 2, math.NaN(), 4, 5, 6, 7, 8},
		Attrs:  map[string]string{"units": "degC"},
	}))

	path := filepath.Join(t.TempDir(), "out.nc")
	require.NoError(t, WriteDataset(path, ds))

	f, err := netcdf.OpenFile(path, netcdf.NOWRITE)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	v, err := f.Var("sosstsst")
	require.NoError(t, err)
	data, err := readSlab(v, []uint64{0, 0, 0}, []uint64{2, 2, 2})
	require.NoError(t, err)
	readPacking(v).apply(data)
	assert.True(t, math.IsNaN(data[2]))
	assert.Equal(t, 8.0, data[7])

	units, ok := attrString(v, "units")
	assert.True(t, ok)
	assert.Equal(t, "degC", units)

	tv, err := f.Var(domain.TimeDim)
	require.NoError(t, err)
	hours, err := readSlab(tv, []uint64{0}, []uint64{2})
	require.NoError(t, err)
	assert.Equal(t, 120.0, hours[1]-hours[0])
	assert.Equal(t, domain.Label(2008, 1, 5).Sub(timeEpoch).Hours(), hours[0])

	a := f.Attr("CONFIG")
	n, err := a.Len()
	require.NoError(t, err)
	buf := make([]byte, n)
	require.NoError(t, a.ReadBytes(buf))
	assert.Equal(t, domain.Config, string(buf))
}

func TestWriteDataset_UnknownDimension(t *testing.T) {
	ds := domain.NewDataset()
	require.NoError(t, ds.AddVar(&domain.Variable{
		Name: "v", Dims: []string{"y"}, Shape: []int{1}, Data: []float64{1},
	}))
	err := WriteDataset(filepath.Join(t.TempDir(), "bad.nc"), ds)
	assert.ErrorIs(t, err, domain.ErrShapeMismatch)
}
