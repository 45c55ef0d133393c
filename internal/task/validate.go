package task

import (
	"strings"

	"github.com/twiced-technology-gmbh/armsboard/internal/clierr"
)

// ValidateTitle rejects empty or whitespace-only titles.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return clierr.New(clierr.ValidationFailed, "title is required").
			WithDetails(map[string]any{"field": "title"})
	}
	return nil
}

// ValidateStatus parses a status string or returns a ValidationError.
func ValidateStatus(s string) (Status, error) {
	st, ok := ParseStatus(s)
	if !ok {
		return "", clierr.Newf(clierr.ValidationFailed, "invalid status %q", s).
			WithDetails(map[string]any{
				"field":   "status",
				"status":  s,
				"allowed": Statuses,
			})
	}
	return st, nil
}

// ValidatePriority parses a priority string or returns a ValidationError.
func ValidatePriority(s string) (Priority, error) {
	p, ok := ParsePriority(s)
	if !ok {
		return "", clierr.Newf(clierr.ValidationFailed, "invalid priority %q", s).
			WithDetails(map[string]any{
				"field":    "priority",
				"priority": s,
				"allowed":  Priorities,
			})
	}
	return p, nil
}

// ValidateAnalyst rejects blank analyst names and the Unassigned sentinel.
func ValidateAnalyst(name string) error {
	name = strings.TrimSpace(name)
	if name == "" || name == Unassigned {
		return clierr.New(clierr.ValidationFailed, "analyst name is required").
			WithDetails(map[string]any{"field": "analyst"})
	}
	return nil
}

// ErrInvalidTaskID returns the error for unparseable task ID input.
func ErrInvalidTaskID(input string) *clierr.Error {
	return clierr.Newf(clierr.InvalidTaskID, "invalid task ID %q", input).
		WithDetails(map[string]any{"input": input})
}

// ErrNotFound returns the error for a missing task.
func ErrNotFound(id int) *clierr.Error {
	return clierr.Newf(clierr.TaskNotFound, "task not found: #%d", id).
		WithDetails(map[string]any{"id": id})
}

// ErrTransition returns the error for an illegal status move.
func ErrTransition(t *Task, to Status) *clierr.Error {
	return clierr.Newf(clierr.InvalidTransition,
		"task #%d cannot move from %s to %s", t.ID, t.Status, to).
		WithDetails(map[string]any{
			"id":      t.ID,
			"from":    t.Status,
			"to":      to,
			"allowed": NextStatuses(t.Status),
		})
}

// ErrAssign returns the error for an assignment the lifecycle forbids.
func ErrAssign(t *Task, analyst string) *clierr.Error {
	return clierr.Newf(clierr.InvalidTransition,
		"task #%d (%s, assigned to %s) cannot be assigned to %s",
		t.ID, t.Status, t.AssignedTo, analyst).
		WithDetails(map[string]any{
			"id":          t.ID,
			"status":      t.Status,
			"assigned_to": t.AssignedTo,
			"analyst":     analyst,
		})
}
