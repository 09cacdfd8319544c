package usecase

import (
	"time"

	"go.ngs.io/periant/internal/domain"
)

// VariableSummary describes one processed variable.
type VariableSummary struct {
	Name  string            `json:"name"`
	Dims  []string          `json:"dims"`
	Shape []int             `json:"shape"`
	Valid int               `json:"valid_cells"`
	Attrs map[string]string `json:"attrs,omitempty"`
}

// Summary describes a processed dataset without its data.
type Summary struct {
	Dims      map[string]int    `json:"dims"`
	Attrs     map[string]string `json:"attrs"`
	Time      []string          `json:"time"`
	Variables []VariableSummary `json:"variables"`
	Missing   int               `json:"missing_files"`
}

// Summarize builds the summary of a processed dataset. missing is the
// number of files absent from the run.
func Summarize(ds *domain.Dataset, missing int) Summary {
	s := Summary{
		Dims:    make(map[string]int),
		Attrs:   ds.Attrs,
		Time:    make([]string, len(ds.Time)),
		Missing: missing,
	}
	for i, t := range ds.Time {
		s.Time[i] = t.Format(time.RFC3339)
	}
	for _, name := range ds.VarNames() {
		v, _ := ds.Var(name)
		for i, d := range v.Dims {
			s.Dims[d] = v.Shape[i]
		}
		s.Variables = append(s.Variables, VariableSummary{
			Name:  name,
			Dims:  v.Dims,
			Shape: v.Shape,
			Valid: v.Valid(),
			Attrs: v.Attrs,
		})
	}
	return s
}
