// Package board provides board-level views over task collections:
// filtering, sorting, grouping, summaries and the activity log.
package board

import (
	"strings"
	"time"

	"github.com/twiced-technology-gmbh/armsboard/internal/task"
)

// FilterOptions defines which tasks to include.
type FilterOptions struct {
	Statuses        []task.Status
	ExcludeStatuses []task.Status // statuses to exclude from results
	Priorities      []task.Priority
	AssignedTo      string // case-insensitive analyst name
	Unassigned      bool   // only tasks nobody owns
	Company         string
	Department      string
	DocumentType    string
	Source          string // prefix match, e.g. "Excel:" or "Email:q2.eml"
	Search          string // case-insensitive substring match across title, company and description
	Overdue         bool
	Now             time.Time // reference time for Overdue; zero means time.Now
}

// Filter returns tasks matching all specified criteria (AND logic).
func Filter(tasks []*task.Task, opts FilterOptions) []*task.Task {
	if opts.Overdue && opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	var result []*task.Task
	for _, t := range tasks {
		if matchesFilter(t, opts) {
			result = append(result, t)
		}
	}
	return result
}

func matchesFilter(t *task.Task, opts FilterOptions) bool {
	if !matchesCoreFilter(t, opts) {
		return false
	}
	return matchesExtendedFilter(t, opts)
}

func matchesCoreFilter(t *task.Task, opts FilterOptions) bool {
	if !matchesStatus(t.Status, opts.Statuses, opts.ExcludeStatuses) {
		return false
	}
	if len(opts.Priorities) > 0 && !contains(opts.Priorities, t.Priority) {
		return false
	}
	if opts.AssignedTo != "" && !strings.EqualFold(t.AssignedTo, opts.AssignedTo) {
		return false
	}
	if opts.Unassigned && !t.IsUnassigned() {
		return false
	}
	return true
}

func matchesStatus(status task.Status, include, exclude []task.Status) bool {
	if len(include) > 0 && !contains(include, status) {
		return false
	}
	if len(exclude) > 0 && contains(exclude, status) {
		return false
	}
	return true
}

// matchesSearch performs case-insensitive substring matching across title,
// company and description.
func matchesSearch(t *task.Task, query string) bool {
	q := strings.ToLower(query)
	for _, s := range []string{t.Title, t.Company, t.Description} {
		if strings.Contains(strings.ToLower(s), q) {
			return true
		}
	}
	return false
}

func matchesExtendedFilter(t *task.Task, opts FilterOptions) bool {
	if opts.Company != "" && !strings.EqualFold(t.Company, opts.Company) {
		return false
	}
	if opts.Department != "" && !strings.EqualFold(t.Department, opts.Department) {
		return false
	}
	if opts.DocumentType != "" && !strings.EqualFold(t.DocumentType, opts.DocumentType) {
		return false
	}
	if opts.Source != "" && !strings.HasPrefix(t.Source, opts.Source) {
		return false
	}
	if opts.Search != "" && !matchesSearch(t, opts.Search) {
		return false
	}
	if opts.Overdue && !t.IsOverdue(opts.Now) {
		return false
	}
	return true
}

func contains[T comparable](slice []T, item T) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
