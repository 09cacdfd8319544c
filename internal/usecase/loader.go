package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"go.ngs.io/periant/internal/adapter/store"
	"go.ngs.io/periant/internal/domain"
)

// LoadResult is the raw dataset of one run together with the file
// partition and calendar it was built from.
type LoadResult struct {
	Dataset    *domain.Dataset
	Present    []string
	Missing    []string
	TimeAxis   []time.Time
	Convention domain.Convention
}

// DataLoader finds the output files of a run and opens the ones present.
type DataLoader struct {
	Convention domain.Convention
	Suffix     string
	YearStart  int
	YearEnd    int

	Locator store.FileLocator
	Opener  store.DatasetLoader
	Log     logrus.FieldLogger
}

func (l *DataLoader) logger() logrus.FieldLogger {
	if l.Log == nil {
		return logrus.StandardLogger()
	}
	return l.Log
}

// FindFiles partitions the expected files of the configured period.
func (l *DataLoader) FindFiles() (present, missing []string, err error) {
	return l.Locator.FindFiles(l.Convention, l.Suffix, l.YearStart, l.YearEnd)
}

// Load finds the files, builds the full time axis and opens the present
// files as one dataset. The time axis is not pruned here.
func (l *DataLoader) Load(ctx context.Context) (*LoadResult, error) {
	present, missing, err := l.FindFiles()
	if err != nil {
		return nil, fmt.Errorf("failed to find files: %w", err)
	}
	if len(present) == 0 {
		return nil, fmt.Errorf("%w: none of %d expected files under %s", domain.ErrNoFiles, len(missing), l.Convention.InputDir)
	}

	axis, err := domain.TimeAxis(l.YearStart, l.YearEnd, l.Convention.TimeStep)
	if err != nil {
		return nil, fmt.Errorf("failed to build time axis: %w", err)
	}

	l.logger().WithFields(logrus.Fields{
		"time_step": l.Convention.TimeStep,
		"found":     len(present),
	}).Info("Opening files")

	ds, err := l.Opener.Load(ctx, present)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}

	return &LoadResult{
		Dataset:    ds,
		Present:    present,
		Missing:    missing,
		TimeAxis:   axis,
		Convention: l.Convention,
	}, nil
}
