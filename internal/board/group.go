package board

import (
	"sort"
	"time"

	"github.com/twiced-technology-gmbh/armsboard/internal/clierr"
	"github.com/twiced-technology-gmbh/armsboard/internal/task"
)

const (
	fieldPriority = "priority"
	fieldStatus   = "status"
	fieldAnalyst  = "analyst"
)

// GroupedSummary holds tasks grouped by a field.
type GroupedSummary struct {
	Field  string         `json:"field"`
	Groups []GroupSummary `json:"groups"`
}

// GroupSummary is one group within a grouped view.
type GroupSummary struct {
	Key      string          `json:"key"`
	Statuses []StatusSummary `json:"statuses"`
	Total    int             `json:"total"`
}

// ValidGroupByFields returns the list of valid --group-by field names.
func ValidGroupByFields() []string {
	return []string{fieldAnalyst, fieldPriority, fieldStatus, "company", "department", "document_type", "source"}
}

// GroupBy groups tasks by the specified field and returns summaries per group.
func GroupBy(tasks []*task.Task, field string, now time.Time) (GroupedSummary, error) {
	if !contains(ValidGroupByFields(), field) {
		return GroupedSummary{}, clierr.Newf(clierr.InvalidGroupBy, "cannot group by %q", field).
			WithDetails(map[string]any{"field": field, "valid": ValidGroupByFields()})
	}

	groups := make(map[string][]*task.Task)
	for _, t := range tasks {
		key := groupKey(t, field)
		groups[key] = append(groups[key], t)
	}

	result := GroupedSummary{Field: field, Groups: make([]GroupSummary, 0, len(groups))}
	for _, key := range sortGroupKeys(groups, field) {
		groupTasks := groups[key]
		result.Groups = append(result.Groups, GroupSummary{
			Key:      key,
			Statuses: statusSummaries(groupTasks, now),
			Total:    len(groupTasks),
		})
	}
	return result, nil
}

func groupKey(t *task.Task, field string) string {
	var key string
	switch field {
	case fieldAnalyst:
		if t.IsUnassigned() {
			return task.Unassigned
		}
		key = t.AssignedTo
	case fieldPriority:
		key = string(t.Priority)
	case fieldStatus:
		key = string(t.Status)
	case "company":
		key = t.Company
	case "department":
		key = t.Department
	case "document_type":
		key = t.DocumentType
	case "source":
		key = t.Source
	}
	if key == "" {
		return "(none)"
	}
	return key
}

func sortGroupKeys(groups map[string][]*task.Task, field string) []string {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}

	switch field {
	case fieldStatus:
		sort.SliceStable(keys, func(i, j int) bool {
			return task.StatusRank(task.Status(keys[i])) < task.StatusRank(task.Status(keys[j]))
		})
	case fieldPriority:
		sort.SliceStable(keys, func(i, j int) bool {
			return task.PriorityRank(task.Priority(keys[i])) > task.PriorityRank(task.Priority(keys[j]))
		})
	default:
		sort.Strings(keys)
	}
	return keys
}
