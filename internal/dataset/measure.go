package dataset

import (
	"math"
	"strings"
	"time"

	"github.com/twiced-technology-gmbh/armsboard/internal/clierr"
)

// Measure is a saved, named aggregate over one column of one sheet,
// optionally narrowed by filters first.
type Measure struct {
	Name        string     `json:"name"`
	Sheet       string     `json:"sheet,omitempty"`
	Column      string     `json:"column"`
	Operation   Operation  `json:"operation"`
	Filters     []Filter   `json:"filters,omitempty"`
	LastValue   *float64   `json:"last_value,omitempty"`
	EvaluatedAt *time.Time `json:"evaluated_at,omitempty"`
}

// Validate checks the measure definition without looking at any data.
func (m *Measure) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return clierr.New(clierr.ValidationFailed, "measure name is required").
			WithDetails(map[string]any{"field": "name"})
	}
	if strings.TrimSpace(m.Column) == "" {
		return clierr.New(clierr.ValidationFailed, "measure column is required").
			WithDetails(map[string]any{"field": "column"})
	}
	op, err := ParseOperation(string(m.Operation))
	if err != nil {
		return err
	}
	m.Operation = op
	return nil
}

// Evaluate runs the measure against ds and records the result. NaN results
// are returned but not stored.
func (m *Measure) Evaluate(ds *Dataset, now time.Time) (float64, error) {
	if err := m.Validate(); err != nil {
		return 0, err
	}
	filtered, err := ApplyFilters(ds, m.Filters)
	if err != nil {
		return 0, err
	}
	v, err := Aggregate(filtered, m.Column, m.Operation)
	if err != nil {
		return 0, err
	}
	if !math.IsNaN(v) {
		m.LastValue = &v
		m.EvaluatedAt = &now
	}
	return v, nil
}
