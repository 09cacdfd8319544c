package domain

import "errors"

// Configuration errors.
var (
	ErrUnsupportedTimeStep = errors.New("unsupported time step (BIOPERIANT12 only has 1-daily and 5-daily outputs)")
	ErrInvalidYearRange    = errors.New("invalid year range")
	ErrMaskNotFound        = errors.New("ocean mask file does not exist")
)

// Calendar errors.
var ErrMonthOutOfRange = errors.New("month out of range [1, 12]")

// Consistency errors. They signal that file discovery and time axis
// construction disagree and must never be skipped.
var (
	ErrBadDateToken         = errors.New("cannot decode file date token")
	ErrTimeNotInAxis        = errors.New("date not found in time axis")
	ErrInconsistentTimeAxis = errors.New("time axis length does not match loaded files")
	ErrShapeMismatch        = errors.New("shape mismatch")
	ErrUnknownVariable      = errors.New("unknown variable")
	ErrUnsupportedLayout    = errors.New("unsupported variable layout")
)

// I/O errors.
var (
	ErrNoFiles        = errors.New("no files to load")
	ErrUnreadableFile = errors.New("unreadable file")
)
