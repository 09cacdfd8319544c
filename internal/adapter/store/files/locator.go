// Package files locates BIOPERIANT12 output files on the shared filesystem.
package files

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sirupsen/logrus"

	"go.ngs.io/periant/internal/domain"
)

// StatFunc reports file metadata; os.Stat by default.
type StatFunc func(path string) (os.FileInfo, error)

// Locator builds expected output paths and checks which ones exist.
type Locator struct {
	stat StatFunc
	log  logrus.FieldLogger
}

// NewLocator creates a locator. A nil logger uses the logrus standard logger.
func NewLocator(log logrus.FieldLogger) *Locator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Locator{stat: os.Stat, log: log}
}

// WithStat replaces the existence check. Intended for tests.
func (l *Locator) WithStat(stat StatFunc) *Locator {
	l.stat = stat
	return l
}

// ExpectedPaths returns every output path the convention should hold
// between yearStart and yearEnd, in time axis order:
//
//	<InputDir>/<year>/<Prefix>_y<year>m<MM>d<DD>_<suffix>
func ExpectedPaths(conv domain.Convention, suffix string, yearStart, yearEnd int) ([]string, error) {
	if yearEnd < yearStart {
		return nil, fmt.Errorf("%w: %d > %d", domain.ErrInvalidYearRange, yearStart, yearEnd)
	}

	var paths []string
	for year := yearStart; year <= yearEnd; year++ {
		tokens, err := domain.FileDateTokens(year, conv.TimeStep)
		if err != nil {
			return nil, err
		}
		dir := filepath.Join(conv.InputDir, strconv.Itoa(year))
		for _, token := range tokens {
			name := fmt.Sprintf("%s_%s_%s", conv.Prefix, token, suffix)
			paths = append(paths, filepath.Join(dir, name))
		}
	}
	return paths, nil
}

// FindFiles partitions the expected paths into present and missing ones.
// Both slices keep the expected order and together cover every expected
// path exactly once.
func (l *Locator) FindFiles(conv domain.Convention, suffix string, yearStart, yearEnd int) (present, missing []string, err error) {
	expected, err := ExpectedPaths(conv, suffix, yearStart, yearEnd)
	if err != nil {
		return nil, nil, err
	}

	log := l.log.WithFields(logrus.Fields{
		"time_step": conv.TimeStep,
		"input_dir": conv.InputDir,
	})
	log.Info("Finding files to read from the input directory")

	present = make([]string, 0, len(expected))
	for _, path := range expected {
		if l.isFile(path) {
			present = append(present, path)
		} else {
			missing = append(missing, path)
		}
	}

	log.WithFields(logrus.Fields{
		"found":   len(present),
		"missing": len(missing),
	}).Info("File discovery complete")
	for _, path := range missing {
		rel, relErr := filepath.Rel(conv.InputDir, path)
		if relErr != nil {
			rel = path
		}
		log.WithField("path", rel).Warn("Missing output file")
	}

	return present, missing, nil
}

func (l *Locator) isFile(path string) bool {
	info, err := l.stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}
