// Package task implements the in-memory task store: task records, the
// status lifecycle, pick-next assignment, and imports from spreadsheet rows
// and message files.
package task

import (
	"strings"
	"time"

	"github.com/twiced-technology-gmbh/armsboard/internal/date"
)

// Status is a task's position in the lifecycle.
type Status string

// Lifecycle states. New is initial, Completed is terminal.
const (
	StatusNew        Status = "New"
	StatusInProgress Status = "InProgress"
	StatusPaused     Status = "Paused"
	StatusCompleted  Status = "Completed"
)

// Statuses lists every status in board order.
var Statuses = []Status{StatusNew, StatusInProgress, StatusPaused, StatusCompleted}

// Priority ranks how urgently a task should be worked.
type Priority string

// Priorities from lowest to highest.
const (
	PriorityLow      Priority = "Low"
	PriorityMedium   Priority = "Medium"
	PriorityHigh     Priority = "High"
	PriorityCritical Priority = "Critical"
)

// Priorities lists every priority from lowest to highest.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

// Sentinels used in place of empty values so every field is displayable.
const (
	Unassigned          = "Unassigned"
	DefaultCompany      = "N/A"
	DefaultDocumentType = "N/A"
	DefaultDepartment   = "General"
	DefaultDueDays      = 7

	SourceManual = "Manual"
)

// Task is a unit of work completed by one analyst at a time.
type Task struct {
	ID           int        `yaml:"id" json:"id"`
	Title        string     `yaml:"title" json:"title"`
	Company      string     `yaml:"company" json:"company"`
	DocumentType string     `yaml:"document_type" json:"document_type"`
	Department   string     `yaml:"department" json:"department"`
	Priority     Priority   `yaml:"priority" json:"priority"`
	Status       Status     `yaml:"status" json:"status"`
	AssignedTo   string     `yaml:"assigned_to" json:"assigned_to"`
	CreatedAt    time.Time  `yaml:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `yaml:"updated_at" json:"updated_at"`
	DueAt        date.Date  `yaml:"due_at" json:"due_at"`
	CompletedAt  *time.Time `yaml:"completed_at,omitempty" json:"completed_at,omitempty"`
	Description  string     `yaml:"description,omitempty" json:"description,omitempty"`
	Source       string     `yaml:"source" json:"source"`
}

// IsUnassigned reports whether no analyst owns the task.
func (t *Task) IsUnassigned() bool {
	return t.AssignedTo == "" || t.AssignedTo == Unassigned
}

// IsOverdue reports whether an open task is past its due date on day now.
func (t *Task) IsOverdue(now time.Time) bool {
	return t.Status != StatusCompleted && t.DueAt.Before(date.Of(now))
}

// Clone returns a deep copy so callers cannot mutate store state.
func (t *Task) Clone() *Task {
	c := *t
	if t.CompletedAt != nil {
		ts := *t.CompletedAt
		c.CompletedAt = &ts
	}
	return &c
}

// ParseStatus matches s against the known statuses, ignoring case, spaces,
// dashes and underscores ("in progress", "IN_PROGRESS" → InProgress).
func ParseStatus(s string) (Status, bool) {
	key := normalizeEnum(s)
	for _, st := range Statuses {
		if normalizeEnum(string(st)) == key {
			return st, true
		}
	}
	return "", false
}

// ParsePriority matches s against the known priorities, ignoring case.
func ParsePriority(s string) (Priority, bool) {
	key := normalizeEnum(s)
	for _, p := range Priorities {
		if normalizeEnum(string(p)) == key {
			return p, true
		}
	}
	return "", false
}

// PriorityRank returns the priority's position (Low=0 … Critical=3), or -1.
func PriorityRank(p Priority) int {
	for i, candidate := range Priorities {
		if candidate == p {
			return i
		}
	}
	return -1
}

// StatusRank returns the status's board position, or -1.
func StatusRank(s Status) int {
	for i, candidate := range Statuses {
		if candidate == s {
			return i
		}
	}
	return -1
}

func normalizeEnum(s string) string {
	r := strings.NewReplacer(" ", "", "-", "", "_", "")
	return strings.ToLower(r.Replace(strings.TrimSpace(s)))
}
