package nemo

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ngs.io/periant/internal/adapter/store/nemo/nctest"
	"go.ngs.io/periant/internal/domain"
)

func TestReadOceanMask(t *testing.T) {
	path := filepath.Join(t.TempDir(), "PERIANT12_mask.nc")
	nctest.WriteMask(t, path, nctest.Mask{
		NZ: 2, NY: 2, NX: 3,
		Lon:   []float32{20, 21, 22, 20, 21, 22},
		Lat:   []float32{-70, -70, -70, -69, -69, -69},
		TMask: []int8{1, 1, 0, 1, 0, 0, 1, 0, 0, 0, 0, 0},
	})

	m, err := ReadOceanMask(path)
	require.NoError(t, err)
	assert.Equal(t, 2, m.NZ)
	assert.Equal(t, 2, m.NY)
	assert.Equal(t, 3, m.NX)
	assert.Equal(t, []float64{20, 21, 22}, m.LonAxis())
	assert.Equal(t, []float64{-70, -69}, m.LatAxis())
	assert.Equal(t, []float64{1, 1, 0, 1, 0, 0}, m.Level(0))
	assert.Equal(t, []float64{1, 0, 0, 0, 0, 0}, m.Level(1))
}

func TestReadOceanMask_NotFound(t *testing.T) {
	_, err := ReadOceanMask(filepath.Join(t.TempDir(), "absent.nc"))
	assert.ErrorIs(t, err, domain.ErrMaskNotFound)
}
