package files

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ngs.io/periant/internal/domain"
)

func fiveDaily(t *testing.T, root string) domain.Convention {
	t.Helper()
	conv, err := domain.DefaultConvention(domain.FiveDaily, root)
	require.NoError(t, err)
	return conv
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte{}, 0o644))
}

func TestExpectedPaths_Layout(t *testing.T) {
	conv := fiveDaily(t, "/store")
	paths, err := ExpectedPaths(conv, "diadT.nc", 2008, 2009)
	require.NoError(t, err)

	axis, err := domain.TimeAxis(2008, 2009, domain.FiveDaily)
	require.NoError(t, err)
	require.Len(t, paths, len(axis))

	assert.Equal(t,
		"/store/BIOPERIANT12-CNCLNG01-S/2008/BIOPERIANT12-CNCLNG01_y2008m01d05_diadT.nc",
		paths[0])
	for i, p := range paths {
		date, err := domain.DateFromPath(p)
		require.NoError(t, err)
		assert.True(t, date.Equal(axis[i]), "path %d (%s) out of step with time axis", i, p)
	}
}

// TestExpectedPaths_NoFebruary29 checks that 1-daily discovery never
// requests a leap day, even for leap years.
func TestExpectedPaths_NoFebruary29(t *testing.T) {
	conv, err := domain.DefaultConvention(domain.OneDaily, "/store")
	require.NoError(t, err)
	paths, err := ExpectedPaths(conv, "diadT.nc", 2008, 2008)
	require.NoError(t, err)

	assert.Len(t, paths, 365)
	for _, p := range paths {
		assert.NotContains(t, p, "y2008m02d29")
	}
}

// TestFindFiles_ConsecutiveMissing checks the partition when several
// adjacent files are missing, including the first and last ones.
func TestFindFiles_ConsecutiveMissing(t *testing.T) {
	root := t.TempDir()
	conv := fiveDaily(t, root)
	expected, err := ExpectedPaths(conv, "diadT.nc", 2008, 2008)
	require.NoError(t, err)

	gone := map[int]bool{0: true, 3: true, 4: true, 5: true, len(expected) - 1: true}
	for i, p := range expected {
		if !gone[i] {
			touch(t, p)
		}
	}

	log, hook := test.NewNullLogger()
	present, missing, err := NewLocator(log).FindFiles(conv, "diadT.nc", 2008, 2008)
	require.NoError(t, err)

	assert.Equal(t, len(expected), len(present)+len(missing))
	assert.Len(t, missing, len(gone))

	seen := make(map[string]int)
	for _, p := range append(append([]string(nil), present...), missing...) {
		seen[p]++
	}
	for _, p := range expected {
		assert.Equal(t, 1, seen[p], "path %s should appear exactly once", p)
	}

	assert.Equal(t, []string{expected[0], expected[3], expected[4], expected[5], expected[len(expected)-1]}, missing)

	warnings := 0
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			warnings++
			assert.False(t, strings.HasPrefix(e.Data["path"].(string), root), "missing path should be logged relative to the input dir")
		}
	}
	assert.Equal(t, len(gone), warnings)
}

func TestFindFiles_DirectoryIsNotAFile(t *testing.T) {
	root := t.TempDir()
	conv := fiveDaily(t, root)
	expected, err := ExpectedPaths(conv, "diadT.nc", 2008, 2008)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(expected[1], 0o755))

	log, _ := test.NewNullLogger()
	present, missing, err := NewLocator(log).FindFiles(conv, "diadT.nc", 2008, 2008)
	require.NoError(t, err)
	assert.Empty(t, present)
	assert.Len(t, missing, len(expected))
}

func TestFindFiles_StatOverride(t *testing.T) {
	conv := fiveDaily(t, "/nowhere")
	calls := 0
	stat := func(path string) (os.FileInfo, error) {
		calls++
		if calls%2 == 0 {
			return os.Stat(os.DevNull)
		}
		return nil, os.ErrNotExist
	}
	log, _ := test.NewNullLogger()
	present, missing, err := NewLocator(log).WithStat(stat).FindFiles(conv, "ptrcT.nc", 2008, 2008)
	require.NoError(t, err)

	// os.DevNull is not a regular file, so nothing counts as present.
	assert.Empty(t, present)
	assert.Len(t, missing, calls)
}

func TestFindFiles_InvalidRange(t *testing.T) {
	conv := fiveDaily(t, "/store")
	_, _, err := NewLocator(nil).FindFiles(conv, "diadT.nc", 2009, 2008)
	assert.ErrorIs(t, err, domain.ErrInvalidYearRange)
}
