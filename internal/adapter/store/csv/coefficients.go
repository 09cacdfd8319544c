// Package csv provides the NEMO output coefficient table.
package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.ngs.io/periant/internal/domain"
)

// Required columns of the coefficient table. Range columns are named
// min<suffix>, max<suffix> and step<suffix>.
const (
	nameColumn  = "vname"
	scaleColumn = "scale"
)

// CoefficientTable holds the rows of a NEMO output coefficient file,
// e.g. nemo_output_coeffs_periant.csv. It is read once and never mutated.
type CoefficientTable struct {
	path    string
	columns map[string]int
	rows    map[string][]string
}

// LoadCoefficients reads the coefficient table at path.
func LoadCoefficients(path string) (*CoefficientTable, error) {
	//nolint:gosec // G304: File path comes from configuration.
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open coefficient table %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	table, err := ReadCoefficients(file)
	if err != nil {
		return nil, fmt.Errorf("coefficient table %s: %w", path, err)
	}
	table.path = path
	return table, nil
}

// ReadCoefficients parses a coefficient table from r.
func ReadCoefficients(r io.Reader) (*CoefficientTable, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	// Read header.
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, h := range header {
		columns[strings.TrimSpace(h)] = i
	}
	for _, required := range []string{nameColumn, scaleColumn} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("invalid CSV header: missing column %s in %v", required, header)
		}
	}

	// Read data rows. The first row for a name wins.
	rows := make(map[string][]string)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}
		if len(record) <= columns[nameColumn] {
			continue
		}
		name := strings.TrimSpace(record[columns[nameColumn]])
		if name == "" {
			continue
		}
		if _, dup := rows[name]; !dup {
			rows[name] = record
		}
	}

	return &CoefficientTable{columns: columns, rows: rows}, nil
}

// Lookup returns the scale factor and the (min, max, step) range selected
// by suffix for the variable name. The boolean is false when the table has
// no row for name.
func (t *CoefficientTable) Lookup(name, suffix string) (domain.Coefficient, bool, error) {
	record, ok := t.rows[name]
	if !ok {
		return domain.Coefficient{}, false, nil
	}

	c := domain.Coefficient{Name: name}
	fields := []struct {
		column string
		dst    *float64
	}{
		{scaleColumn, &c.Scale},
		{"min" + suffix, &c.Min},
		{"max" + suffix, &c.Max},
		{"step" + suffix, &c.Step},
	}
	for _, f := range fields {
		idx, ok := t.columns[f.column]
		if !ok {
			return domain.Coefficient{}, false, fmt.Errorf("no column %s in coefficient table (variable %s)", f.column, name)
		}
		if idx >= len(record) {
			return domain.Coefficient{}, false, fmt.Errorf("variable %s has no value for column %s", name, f.column)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(record[idx]), 64)
		if err != nil {
			return domain.Coefficient{}, false, fmt.Errorf("invalid %s for variable %s: %w", f.column, name, err)
		}
		*f.dst = v
	}
	return c, true, nil
}

// Names returns every variable name in the table.
func (t *CoefficientTable) Names() []string {
	names := make([]string, 0, len(t.rows))
	for name := range t.rows {
		names = append(names, name)
	}
	return names
}

// Path returns the file the table was loaded from, if any.
func (t *CoefficientTable) Path() string {
	return t.path
}
