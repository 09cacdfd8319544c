package domain

import (
	"fmt"
	"path/filepath"
)

// TimeStep is the output cadence of a BIOPERIANT12 run.
type TimeStep string

const (
	// OneDaily selects daily outputs.
	OneDaily TimeStep = "1-daily"
	// FiveDaily selects 5-day mean outputs.
	FiveDaily TimeStep = "5-daily"
)

// ParseTimeStep validates s as a known time step.
func ParseTimeStep(s string) (TimeStep, error) {
	switch TimeStep(s) {
	case OneDaily, FiveDaily:
		return TimeStep(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedTimeStep, s)
	}
}

// Frequency returns the output_frequency attribute value for the step.
func (s TimeStep) Frequency() string {
	switch s {
	case OneDaily:
		return "1d"
	case FiveDaily:
		return "5d"
	default:
		return ""
	}
}

// Convention ties a time step to the run that produced it and to where
// its files live on disk.
type Convention struct {
	TimeStep TimeStep
	InputDir string // E.g., "<root>/BIOPERIANT12-CNCLNG01-S".
	Prefix   string // E.g., "BIOPERIANT12-CNCLNG01".
	Case     string // E.g., "CNCLNG01".
}

// Config is the model configuration name written to processed datasets.
const Config = "BIOPERIANT12"

// DefaultConvention returns the run layout for step with its directory
// placed under root.
func DefaultConvention(step TimeStep, root string) (Convention, error) {
	var c string
	switch step {
	case OneDaily:
		c = "CNCRUN05A"
	case FiveDaily:
		c = "CNCLNG01"
	default:
		return Convention{}, fmt.Errorf("%w: %q", ErrUnsupportedTimeStep, step)
	}
	prefix := Config + "-" + c
	return Convention{
		TimeStep: step,
		InputDir: filepath.Join(root, prefix+"-S"),
		Prefix:   prefix,
		Case:     c,
	}, nil
}
