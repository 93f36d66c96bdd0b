package dataset

import (
	"fmt"

	"gopsis/domain/core"
)

// Observation is one building-level record from the pest-control survey:
// post-treatment roach count, pre-treatment roach count, treatment and
// senior-building indicators, and trap exposure in trap-days.
type Observation struct {
	Y         int     `json:"y"`
	Roach1    float64 `json:"roach1"`
	Treatment int     `json:"treatment"`
	Senior    int     `json:"senior"`
	Exposure2 float64 `json:"exposure2"`
}

// Table is an immutable observation table. Accessors return fresh column
// slices so callers can never mutate the loaded data.
type Table struct {
	name     core.DatasetKey
	rows     []Observation
	loadedAt core.Timestamp
}

// NewTable creates a table from rows. The loader contract performs no
// numeric validation beyond non-emptiness; undefined offsets (zero or
// negative exposure) are surfaced by the fitter.
func NewTable(name core.DatasetKey, rows []Observation) (*Table, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: table %q has no rows", core.ErrInsufficientData, name)
	}
	copied := make([]Observation, len(rows))
	copy(copied, rows)
	return &Table{name: name, rows: copied, loadedAt: core.Now()}, nil
}

// Name returns the dataset key
func (t *Table) Name() core.DatasetKey { return t.name }

// Len returns the number of observations
func (t *Table) Len() int { return len(t.rows) }

// Row returns observation i by value
func (t *Table) Row(i int) Observation { return t.rows[i] }

// Rows returns a copy of all observations
func (t *Table) Rows() []Observation {
	out := make([]Observation, len(t.rows))
	copy(out, t.rows)
	return out
}

// Responses returns a copy of the count responses
func (t *Table) Responses() []int {
	out := make([]int, len(t.rows))
	for i, r := range t.rows {
		out[i] = r.Y
	}
	return out
}

// Column returns a copy of the named covariate column.
func (t *Table) Column(cov string) ([]float64, error) {
	out := make([]float64, len(t.rows))
	for i, r := range t.rows {
		switch cov {
		case "roach1":
			out[i] = r.Roach1
		case "treatment":
			out[i] = float64(r.Treatment)
		case "senior":
			out[i] = float64(r.Senior)
		case "exposure2":
			out[i] = r.Exposure2
		default:
			return nil, fmt.Errorf("unknown column %q", cov)
		}
	}
	return out, nil
}

// Counts returns the treated/control split
func (t *Table) Counts() (treated, control int) {
	for _, r := range t.rows {
		if r.Treatment == 1 {
			treated++
		} else {
			control++
		}
	}
	return treated, control
}

// ZeroProportion returns the fraction of zero responses
func (t *Table) ZeroProportion() float64 {
	zeros := 0
	for _, r := range t.rows {
		if r.Y == 0 {
			zeros++
		}
	}
	return float64(zeros) / float64(len(t.rows))
}

// Fingerprint returns a deterministic hash of the table contents
func (t *Table) Fingerprint() core.Hash {
	cols := make([]float64, 0, len(t.rows)*5)
	for _, r := range t.rows {
		cols = append(cols, float64(r.Y), r.Roach1, float64(r.Treatment), float64(r.Senior), r.Exposure2)
	}
	return core.ComputeFloatFingerprint(t.name.String(), cols)
}
