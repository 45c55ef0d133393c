package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/twiced-technology-gmbh/armsboard/internal/clierr"
	"github.com/twiced-technology-gmbh/armsboard/internal/dataset"
)

// SavedMeasure is a measure bound to the workbook it was defined against.
type SavedMeasure struct {
	dataset.Measure
	Workbook  string    `json:"workbook,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// SaveMeasure inserts or replaces a measure by name.
func (d *DB) SaveMeasure(m SavedMeasure) error {
	if err := m.Validate(); err != nil {
		return err
	}
	filters, err := json.Marshal(m.Filters)
	if err != nil {
		return fmt.Errorf("encoding filters: %w", err)
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	var last sql.NullFloat64
	if m.LastValue != nil {
		last = sql.NullFloat64{Float64: *m.LastValue, Valid: true}
	}
	var evaluated sql.NullString
	if m.EvaluatedAt != nil {
		evaluated = sql.NullString{String: m.EvaluatedAt.Format(timeFormat), Valid: true}
	}

	_, err = d.sql.Exec(`INSERT INTO measures
		(name, workbook, sheet, column_name, operation, filters, last_value, evaluated_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			workbook = excluded.workbook,
			sheet = excluded.sheet,
			column_name = excluded.column_name,
			operation = excluded.operation,
			filters = excluded.filters,
			last_value = excluded.last_value,
			evaluated_at = excluded.evaluated_at`,
		m.Name, m.Workbook, m.Sheet, m.Column, string(m.Operation), string(filters),
		last, evaluated, m.CreatedAt.Format(timeFormat))
	if err != nil {
		return fmt.Errorf("saving measure %s: %w", m.Name, err)
	}
	d.log.Debug().Str("measure", m.Name).Msg("measure saved")
	return nil
}

// Measures returns every saved measure ordered by name.
func (d *DB) Measures() ([]SavedMeasure, error) {
	rows, err := d.sql.Query(`SELECT name, workbook, sheet, column_name, operation, filters,
		last_value, evaluated_at, created_at FROM measures ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query measures: %w", err)
	}
	defer rows.Close()

	var out []SavedMeasure
	for rows.Next() {
		m, err := scanMeasure(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Measure returns one saved measure.
func (d *DB) Measure(name string) (SavedMeasure, error) {
	row := d.sql.QueryRow(`SELECT name, workbook, sheet, column_name, operation, filters,
		last_value, evaluated_at, created_at FROM measures WHERE name = ?`, name)
	m, err := scanMeasure(row)
	if errors.Is(err, sql.ErrNoRows) {
		return SavedMeasure{}, clierr.Newf(clierr.ValidationFailed, "no measure named %q", name).
			WithDetails(map[string]any{"measure": name})
	}
	return m, err
}

// DeleteMeasure removes a measure. Deleting an unknown name is not an error.
func (d *DB) DeleteMeasure(name string) error {
	if _, err := d.sql.Exec(`DELETE FROM measures WHERE name = ?`, name); err != nil {
		return fmt.Errorf("deleting measure %s: %w", name, err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMeasure(s scanner) (SavedMeasure, error) {
	var (
		m                 SavedMeasure
		op, filters, made string
		last              sql.NullFloat64
		evaluated         sql.NullString
	)
	if err := s.Scan(&m.Name, &m.Workbook, &m.Sheet, &m.Column, &op, &filters, &last, &evaluated, &made); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return m, err
		}
		return m, fmt.Errorf("scan measure: %w", err)
	}
	m.Operation = dataset.Operation(op)
	if err := json.Unmarshal([]byte(filters), &m.Filters); err != nil {
		return m, fmt.Errorf("measure %s filters: %w", m.Name, err)
	}
	if last.Valid {
		v := last.Float64
		m.LastValue = &v
	}
	if evaluated.Valid {
		if ts, err := time.Parse(timeFormat, evaluated.String); err == nil {
			m.EvaluatedAt = &ts
		}
	}
	var err error
	if m.CreatedAt, err = time.Parse(timeFormat, made); err != nil {
		return m, fmt.Errorf("measure %s created_at: %w", m.Name, err)
	}
	return m, nil
}
