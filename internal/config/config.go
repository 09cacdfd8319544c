// Package config reads the run configuration of the loader tools.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"go.ngs.io/periant/internal/domain"
)

// LoaderConfig controls how output files are opened.
type LoaderConfig struct {
	ChunkY   int  `toml:"chunk_y"`
	ChunkX   int  `toml:"chunk_x"`
	Parallel bool `toml:"parallel"`
	Workers  int  `toml:"workers"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Port string `toml:"port"`
}

// Config is the configuration of one processing run.
type Config struct {
	InputRoot         string   `toml:"input_root"`
	MaskPath          string   `toml:"mask_path"`
	CoefficientsPath  string   `toml:"coefficients_path"`
	CoefficientSuffix string   `toml:"coefficient_suffix"`
	TimeStep          string   `toml:"time_step"`
	Suffix            string   `toml:"suffix"`
	YearStart         int      `toml:"year_start"`
	YearEnd           int      `toml:"year_end"`
	Variables         []string `toml:"variables"`

	Loader LoaderConfig `toml:"loader"`
	Server ServerConfig `toml:"server"`
}

// Default returns a configuration with every optional field set.
func Default() *Config {
	return &Config{
		CoefficientSuffix: "0",
		TimeStep:          string(domain.FiveDaily),
		Suffix:            "diadT.nc",
		Loader: LoaderConfig{
			ChunkY:  500,
			ChunkX:  1000,
			Workers: 4,
		},
		Server: ServerConfig{Port: "8080"},
	}
}

// Load reads the TOML file at path over the defaults, resolves relative
// paths against the file's directory and applies environment overrides.
// An empty path uses the defaults and the environment only.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		md, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("unknown config keys in %s: %v", path, undecoded)
		}
		cfg.resolve(filepath.Dir(path))
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) resolve(dir string) {
	for _, p := range []*string{&c.InputRoot, &c.MaskPath, &c.CoefficientsPath} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
}

func (c *Config) applyEnv() {
	c.InputRoot = getEnv("PERIANT_INPUT_ROOT", c.InputRoot)
	c.MaskPath = getEnv("PERIANT_MASK_PATH", c.MaskPath)
	c.CoefficientsPath = getEnv("PERIANT_COEFFS_PATH", c.CoefficientsPath)
	c.Server.Port = getEnv("PORT", c.Server.Port)
}

// Validate reports the first configuration error.
func (c *Config) Validate() error {
	if c.InputRoot == "" {
		return errors.New("input_root is required")
	}
	if c.MaskPath == "" {
		return errors.New("mask_path is required")
	}
	if _, err := domain.ParseTimeStep(c.TimeStep); err != nil {
		return err
	}
	if err := c.ValidatePeriod(); err != nil {
		return err
	}
	if c.Loader.ChunkY <= 0 || c.Loader.ChunkX <= 0 {
		return fmt.Errorf("loader chunks must be positive, got %dx%d", c.Loader.ChunkY, c.Loader.ChunkX)
	}
	if c.Loader.Workers < 0 {
		return fmt.Errorf("loader workers must not be negative, got %d", c.Loader.Workers)
	}
	return nil
}

// ValidatePeriod checks that the run years are set and ordered. Year
// zero means unset.
func (c *Config) ValidatePeriod() error {
	if c.YearStart == 0 || c.YearEnd == 0 {
		return fmt.Errorf("%w: year_start and year_end are required", domain.ErrInvalidYearRange)
	}
	if c.YearEnd < c.YearStart {
		return fmt.Errorf("%w: year_start %d > year_end %d", domain.ErrInvalidYearRange, c.YearStart, c.YearEnd)
	}
	return nil
}

// Convention returns the file convention selected by TimeStep.
func (c *Config) Convention() (domain.Convention, error) {
	step, err := domain.ParseTimeStep(c.TimeStep)
	if err != nil {
		return domain.Convention{}, err
	}
	return domain.DefaultConvention(step, c.InputRoot)
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
