package board

import (
	"sort"
	"strings"

	"github.com/twiced-technology-gmbh/armsboard/internal/task"
)

// SortFields lists the accepted --sort values.
var SortFields = []string{"id", "status", "priority", "created", "updated", "due", "title", "analyst"}

// Sort sorts tasks by the given field. Status and priority use lifecycle
// and severity order, not alphabetical; ties keep id order.
func Sort(tasks []*task.Task, field string, reverse bool) {
	sort.SliceStable(tasks, func(i, j int) bool {
		if reverse {
			return compareTasks(tasks[j], tasks[i], field)
		}
		return compareTasks(tasks[i], tasks[j], field)
	})
}

func compareTasks(a, b *task.Task, field string) bool {
	switch field {
	case fieldStatus:
		return task.StatusRank(a.Status) < task.StatusRank(b.Status)
	case fieldPriority:
		// Critical first.
		return task.PriorityRank(a.Priority) > task.PriorityRank(b.Priority)
	case "created":
		return a.CreatedAt.Before(b.CreatedAt)
	case "updated":
		return a.UpdatedAt.Before(b.UpdatedAt)
	case "due":
		return a.DueAt.Before(b.DueAt)
	case "title":
		return strings.ToLower(a.Title) < strings.ToLower(b.Title)
	case fieldAnalyst:
		return strings.ToLower(a.AssignedTo) < strings.ToLower(b.AssignedTo)
	default:
		return a.ID < b.ID
	}
}
