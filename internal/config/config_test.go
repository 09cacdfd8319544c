package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ngs.io/periant/internal/domain"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "periant.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
input_root = "runs"
mask_path = "/data/PERIANT12_mask.nc"
coefficients_path = "nemo_output_coeffs_periant.csv"
time_step = "1-daily"
year_start = 2008
year_end = 2009
variables = ["sosstsst", "votemper"]

[loader]
chunk_y = 100
parallel = true
workers = 8
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	dir := filepath.Dir(path)

	assert.Equal(t, filepath.Join(dir, "runs"), cfg.InputRoot)
	assert.Equal(t, "/data/PERIANT12_mask.nc", cfg.MaskPath)
	assert.Equal(t, filepath.Join(dir, "nemo_output_coeffs_periant.csv"), cfg.CoefficientsPath)
	assert.Equal(t, "0", cfg.CoefficientSuffix)
	assert.Equal(t, "diadT.nc", cfg.Suffix)
	assert.Equal(t, []string{"sosstsst", "votemper"}, cfg.Variables)
	assert.Equal(t, LoaderConfig{ChunkY: 100, ChunkX: 1000, Parallel: true, Workers: 8}, cfg.Loader)
	require.NoError(t, cfg.Validate())

	conv, err := cfg.Convention()
	require.NoError(t, err)
	assert.Equal(t, "CNCRUN05A", conv.Case)
	assert.Equal(t, filepath.Join(dir, "runs", "BIOPERIANT12-CNCRUN05A-S"), conv.InputDir)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `input_root = "runs"`)
	t.Setenv("PERIANT_INPUT_ROOT", "/scratch/bioperiant")
	t.Setenv("PORT", "9090")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/scratch/bioperiant", cfg.InputRoot)
	assert.Equal(t, "9090", cfg.Server.Port)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, `input_rot = "typo"`))
	assert.ErrorContains(t, err, "input_rot")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c := Default()
		c.InputRoot = "/data"
		c.MaskPath = "/data/mask.nc"
		c.YearStart, c.YearEnd = 2008, 2008
		return c
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		target error
	}{
		{"missing input root", func(c *Config) { c.InputRoot = "" }, nil},
		{"missing mask", func(c *Config) { c.MaskPath = "" }, nil},
		{"bad time step", func(c *Config) { c.TimeStep = "monthly" }, domain.ErrUnsupportedTimeStep},
		{"reversed years", func(c *Config) { c.YearStart = 2010 }, domain.ErrInvalidYearRange},
		{"default years", func(c *Config) { c.YearStart, c.YearEnd = 0, 0 }, domain.ErrInvalidYearRange},
		{"missing year end", func(c *Config) { c.YearEnd = 0 }, domain.ErrInvalidYearRange},
		{"zero chunk", func(c *Config) { c.Loader.ChunkX = 0 }, nil},
		{"negative workers", func(c *Config) { c.Loader.Workers = -1 }, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			require.Error(t, err)
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
		})
	}
}
