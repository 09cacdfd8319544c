package store

import (
	"context"

	"go.ngs.io/periant/internal/domain"
)

// DatasetLoader opens a list of output files as one dataset.
type DatasetLoader interface {
	// Load concatenates the files along time_counter in the given order.
	Load(ctx context.Context, paths []string) (*domain.Dataset, error)
}

// CoefficientLookup resolves per-variable rescaling coefficients.
type CoefficientLookup interface {
	// Lookup returns the coefficient of name for the range suffix, and
	// false if the variable has no entry.
	Lookup(name, suffix string) (domain.Coefficient, bool, error)
}

// FileLocator partitions the expected output files of a convention.
type FileLocator interface {
	FindFiles(conv domain.Convention, suffix string, yearStart, yearEnd int) (present, missing []string, err error)
}
