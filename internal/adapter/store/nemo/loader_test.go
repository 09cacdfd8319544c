package nemo

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ngs.io/periant/internal/adapter/store/nemo/nctest"
	"go.ngs.io/periant/internal/domain"
)

const ny, nx, nz = 3, 4, 2

// writeDay writes one daily file whose values encode (day, cell).
func writeDay(t *testing.T, dir string, day int) string {
	t.Helper()
	path := filepath.Join(dir, "2008", "BIOPERIANT12-CNCRUN05A_y2008m01d"+twoDigits(day)+"_diadT.nc")
	sst := make([]float32, ny*nx)
	for i := range sst {
		sst[i] = float32(day*100 + i)
	}
	temp := make([]float32, nz*ny*nx)
	for i := range temp {
		temp[i] = float32(day*1000 + i)
	}
	sst[0] = -999 // Fill.
	nctest.WriteOutput(t, path, nctest.Output{
		TimeCounter: []float64{float64(day) * 86400},
		Depths:      []float64{0.5, 10},
		NY:          ny, NX: nx,
		Surface:   map[string][]float32{"sosstsst": sst},
		Profile:   map[string][]float32{"votemper": temp},
		FillValue: -999,
	})
	return path
}

func twoDigits(n int) string {
	return string([]byte{byte('0' + n/10), byte('0' + n%10)})
}

func TestLoader_ConcatenatesAlongTime(t *testing.T) {
	dir := t.TempDir()
	paths := []string{writeDay(t, dir, 1), writeDay(t, dir, 2), writeDay(t, dir, 3)}

	log, _ := test.NewNullLogger()
	ds, err := NewLoader(log).Load(context.Background(), paths)
	require.NoError(t, err)

	assert.Equal(t, []float64{86400, 2 * 86400, 3 * 86400}, ds.Coords[domain.RawTimeDim])
	assert.Equal(t, []float64{0.5, 10}, ds.Coords["deptht"])

	sst, ok := ds.Var("sosstsst")
	require.True(t, ok)
	assert.Equal(t, []int{3, ny, nx}, sst.Shape)
	assert.Equal(t, domain.SurfaceLayout, sst.Layout)
	assert.True(t, math.IsNaN(sst.Data[0]), "_FillValue should decode to NaN")
	assert.Equal(t, 201.0, sst.Data[ny*nx+1])
	assert.Equal(t, 311.0, sst.Data[2*ny*nx+11])

	temp, ok := ds.Var("votemper")
	require.True(t, ok)
	assert.Equal(t, []int{3, nz, ny, nx}, temp.Shape)
	assert.Equal(t, domain.DepthLayout, temp.Layout)
	assert.Equal(t, 2000.0+float64(nz*ny*nx-1), temp.Data[2*nz*ny*nx-1])
}

// TestLoader_TiledReadMatchesWholeRead reads with tiles smaller than the
// grid and compares against an untiled read.
func TestLoader_TiledReadMatchesWholeRead(t *testing.T) {
	dir := t.TempDir()
	paths := []string{writeDay(t, dir, 4), writeDay(t, dir, 5)}

	log, _ := test.NewNullLogger()
	whole := NewLoader(log)
	whole.Chunks = ChunkPolicy{Y: 100, X: 100}
	tiled := NewLoader(log)
	tiled.Chunks = ChunkPolicy{Y: 2, X: 3}

	a, err := whole.Load(context.Background(), paths)
	require.NoError(t, err)
	b, err := tiled.Load(context.Background(), paths)
	require.NoError(t, err)

	for _, name := range []string{"sosstsst", "votemper"} {
		va, _ := a.Var(name)
		vb, _ := b.Var(name)
		require.Equal(t, len(va.Data), len(vb.Data))
		for i := range va.Data {
			if math.IsNaN(va.Data[i]) {
				assert.True(t, math.IsNaN(vb.Data[i]))
				continue
			}
			assert.Equal(t, va.Data[i], vb.Data[i], "%s cell %d", name, i)
		}
	}
}

func TestLoader_ParallelMatchesSequential(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for day := 1; day <= 6; day++ {
		paths = append(paths, writeDay(t, dir, day))
	}

	log, _ := test.NewNullLogger()
	seq, err := NewLoader(log).Load(context.Background(), paths)
	require.NoError(t, err)

	par := NewLoader(log)
	par.Parallel = true
	par.Workers = 3
	got, err := par.Load(context.Background(), paths)
	require.NoError(t, err)

	assert.Equal(t, seq.Coords[domain.RawTimeDim], got.Coords[domain.RawTimeDim])
	vs, _ := seq.Var("votemper")
	vp, _ := got.Var("votemper")
	assert.Equal(t, vs.Data, vp.Data)
}

func TestLoader_Errors(t *testing.T) {
	log, _ := test.NewNullLogger()
	loader := NewLoader(log)

	_, err := loader.Load(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrNoFiles)

	dir := t.TempDir()
	good := writeDay(t, dir, 1)
	vanished := filepath.Join(dir, "2008", "gone.nc")
	_, err = loader.Load(context.Background(), []string{good, vanished})
	require.ErrorIs(t, err, domain.ErrUnreadableFile)
	assert.Contains(t, err.Error(), vanished)

	corrupt := filepath.Join(dir, "corrupt.nc")
	require.NoError(t, os.WriteFile(corrupt, []byte("not netcdf"), 0o600))
	loader.Parallel = true
	_, err = loader.Load(context.Background(), []string{good, corrupt})
	require.ErrorIs(t, err, domain.ErrUnreadableFile)
	assert.Contains(t, err.Error(), corrupt)
}

func TestLoader_ShapeMismatch(t *testing.T) {
	dir := t.TempDir()
	a := writeDay(t, dir, 1)
	b := filepath.Join(dir, "other.nc")
	nctest.WriteOutput(t, b, nctest.Output{
		TimeCounter: []float64{1},
		Depths:      []float64{0.5, 10},
		NY:          ny, NX: nx + 1,
		Surface: map[string][]float32{"sosstsst": make([]float32, ny*(nx+1))},
		Profile: map[string][]float32{"votemper": make([]float32, nz*ny*(nx+1))},
	})

	log, _ := test.NewNullLogger()
	_, err := NewLoader(log).Load(context.Background(), []string{a, b})
	assert.ErrorIs(t, err, domain.ErrShapeMismatch)
}

func TestLoader_Cancelled(t *testing.T) {
	dir := t.TempDir()
	paths := []string{writeDay(t, dir, 1)}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	log, _ := test.NewNullLogger()
	_, err := NewLoader(log).Load(ctx, paths)
	assert.ErrorIs(t, err, context.Canceled)
}
