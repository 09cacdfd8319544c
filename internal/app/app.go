// Package app wires adapters and use cases from a configuration.
package app

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"go.ngs.io/periant/internal/adapter/store"
	csvstore "go.ngs.io/periant/internal/adapter/store/csv"
	"go.ngs.io/periant/internal/adapter/store/files"
	"go.ngs.io/periant/internal/adapter/store/nemo"
	"go.ngs.io/periant/internal/config"
	"go.ngs.io/periant/internal/usecase"
)

// Components holds everything a run needs.
type Components struct {
	Config       *config.Config
	Locator      *files.Locator
	Loader       *nemo.Loader
	Coefficients store.CoefficientLookup // Nil when no table is configured.
	Processor    *usecase.Processor
	Log          logrus.FieldLogger
}

// New validates cfg and builds the components. The ocean mask and the
// coefficient table are read here.
func New(cfg *config.Config, log logrus.FieldLogger) (*Components, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	loader := nemo.NewLoader(log)
	loader.Chunks = nemo.ChunkPolicy{Y: cfg.Loader.ChunkY, X: cfg.Loader.ChunkX}
	loader.Parallel = cfg.Loader.Parallel
	loader.Workers = cfg.Loader.Workers

	var coeffs store.CoefficientLookup
	if cfg.CoefficientsPath != "" {
		table, err := csvstore.LoadCoefficients(cfg.CoefficientsPath)
		if err != nil {
			return nil, err
		}
		log.WithFields(logrus.Fields{"path": cfg.CoefficientsPath, "variables": len(table.Names())}).Info("Loaded coefficient table")
		coeffs = table
	}

	proc, err := usecase.NewProcessor(cfg.MaskPath, coeffs, cfg.CoefficientSuffix, log)
	if err != nil {
		return nil, err
	}

	return &Components{
		Config:       cfg,
		Locator:      files.NewLocator(log),
		Loader:       loader,
		Coefficients: coeffs,
		Processor:    proc,
		Log:          log,
	}, nil
}

// DataLoader returns the pipeline driver for the configured run.
func (c *Components) DataLoader() (*usecase.DataLoader, error) {
	conv, err := c.Config.Convention()
	if err != nil {
		return nil, err
	}
	return &usecase.DataLoader{
		Convention: conv,
		Suffix:     c.Config.Suffix,
		YearStart:  c.Config.YearStart,
		YearEnd:    c.Config.YearEnd,
		Locator:    c.Locator,
		Opener:     c.Loader,
		Log:        c.Log,
	}, nil
}
