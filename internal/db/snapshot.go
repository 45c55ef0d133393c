package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/twiced-technology-gmbh/armsboard/internal/date"
	"github.com/twiced-technology-gmbh/armsboard/internal/task"
)

const (
	timeFormat = time.RFC3339Nano
	metaNextID = "next_id"
)

// SaveSnapshot replaces the stored tasks and import ledger with snap in a
// single transaction.
func (d *DB) SaveSnapshot(snap task.Snapshot) error {
	tx, err := d.sql.Begin()
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range []string{`DELETE FROM tasks`, `DELETE FROM import_sources`} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("clearing tables: %w", err)
		}
	}

	insTask, err := tx.Prepare(`INSERT INTO tasks (
		id, title, company, document_type, department, priority, status, assigned_to,
		created_at, updated_at, due_at, completed_at, description, source
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare task insert: %w", err)
	}
	defer insTask.Close()

	for _, t := range snap.Tasks {
		var completed sql.NullString
		if t.CompletedAt != nil {
			completed = sql.NullString{String: t.CompletedAt.Format(timeFormat), Valid: true}
		}
		if _, err := insTask.Exec(
			t.ID, t.Title, t.Company, t.DocumentType, t.Department,
			string(t.Priority), string(t.Status), t.AssignedTo,
			t.CreatedAt.Format(timeFormat), t.UpdatedAt.Format(timeFormat), t.DueAt.String(),
			completed, t.Description, t.Source,
		); err != nil {
			return fmt.Errorf("insert task %d: %w", t.ID, err)
		}
	}

	for _, r := range snap.Sources {
		ids, err := json.Marshal(r.TaskIDs)
		if err != nil {
			return fmt.Errorf("encoding task ids: %w", err)
		}
		if _, err := tx.Exec(
			`INSERT INTO import_sources (source, kind, batch_id, task_ids, imported_at) VALUES (?, ?, ?, ?, ?)`,
			r.Source, r.Kind, r.BatchID, string(ids), r.ImportedAt.Format(timeFormat),
		); err != nil {
			return fmt.Errorf("insert source %s: %w", r.Source, err)
		}
	}

	if _, err := tx.Exec(
		`INSERT INTO store_meta (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		metaNextID, strconv.Itoa(snap.NextID),
	); err != nil {
		return fmt.Errorf("saving next id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	d.log.Debug().Int("tasks", len(snap.Tasks)).Int("sources", len(snap.Sources)).
		Int("next_id", snap.NextID).Msg("snapshot saved")
	return nil
}

// LoadSnapshot reads the stored state. An empty database yields an empty
// snapshot with NextID 1.
func (d *DB) LoadSnapshot() (task.Snapshot, error) {
	snap := task.Snapshot{NextID: 1}

	var next string
	err := d.sql.QueryRow(`SELECT value FROM store_meta WHERE key = ?`, metaNextID).Scan(&next)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return snap, fmt.Errorf("reading next id: %w", err)
	default:
		if n, convErr := strconv.Atoi(next); convErr == nil {
			snap.NextID = n
		}
	}

	tasks, err := d.loadTasks()
	if err != nil {
		return snap, err
	}
	snap.Tasks = tasks

	sources, err := d.loadSources()
	if err != nil {
		return snap, err
	}
	snap.Sources = sources
	return snap, nil
}

func (d *DB) loadTasks() ([]*task.Task, error) {
	rows, err := d.sql.Query(`SELECT
		id, title, company, document_type, department, priority, status, assigned_to,
		created_at, updated_at, due_at, completed_at, description, source
		FROM tasks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var out []*task.Task
	for rows.Next() {
		var (
			t                     task.Task
			priority, status      string
			created, updated, due string
			completed             sql.NullString
		)
		if err := rows.Scan(
			&t.ID, &t.Title, &t.Company, &t.DocumentType, &t.Department,
			&priority, &status, &t.AssignedTo,
			&created, &updated, &due, &completed, &t.Description, &t.Source,
		); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		t.Priority = task.Priority(priority)
		t.Status = task.Status(status)
		if t.CreatedAt, err = time.Parse(timeFormat, created); err != nil {
			return nil, fmt.Errorf("task %d created_at: %w", t.ID, err)
		}
		if t.UpdatedAt, err = time.Parse(timeFormat, updated); err != nil {
			return nil, fmt.Errorf("task %d updated_at: %w", t.ID, err)
		}
		if t.DueAt, err = date.Parse(due); err != nil {
			return nil, fmt.Errorf("task %d due_at: %w", t.ID, err)
		}
		if completed.Valid {
			ts, err := time.Parse(timeFormat, completed.String)
			if err != nil {
				return nil, fmt.Errorf("task %d completed_at: %w", t.ID, err)
			}
			t.CompletedAt = &ts
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}

func (d *DB) loadSources() ([]task.SourceReceipt, error) {
	rows, err := d.sql.Query(`SELECT source, kind, batch_id, task_ids, imported_at
		FROM import_sources ORDER BY imported_at, source`)
	if err != nil {
		return nil, fmt.Errorf("query import sources: %w", err)
	}
	defer rows.Close()

	var out []task.SourceReceipt
	for rows.Next() {
		var (
			r             task.SourceReceipt
			ids, imported string
		)
		if err := rows.Scan(&r.Source, &r.Kind, &r.BatchID, &ids, &imported); err != nil {
			return nil, fmt.Errorf("scan import source: %w", err)
		}
		if err := json.Unmarshal([]byte(ids), &r.TaskIDs); err != nil {
			return nil, fmt.Errorf("source %s task ids: %w", r.Source, err)
		}
		if r.ImportedAt, err = time.Parse(timeFormat, imported); err != nil {
			return nil, fmt.Errorf("source %s imported_at: %w", r.Source, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
