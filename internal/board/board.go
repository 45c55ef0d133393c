package board

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/twiced-technology-gmbh/armsboard/internal/clierr"
	"github.com/twiced-technology-gmbh/armsboard/internal/config"
	"github.com/twiced-technology-gmbh/armsboard/internal/task"
)

// ListOptions controls how tasks are listed.
type ListOptions struct {
	Filter  FilterOptions
	SortBy  string
	Reverse bool
	Limit   int
}

// List applies filters, sorting and the limit to tasks.
func List(tasks []*task.Task, opts ListOptions) []*task.Task {
	out := Filter(tasks, opts.Filter)

	sortField := opts.SortBy
	if sortField == "" {
		sortField = "id"
	}
	Sort(out, sortField, opts.Reverse)

	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out
}

// StatusSummary holds metrics for a single status column.
type StatusSummary struct {
	Status     task.Status `json:"status"`
	Count      int         `json:"count"`
	Unassigned int         `json:"unassigned"`
	Overdue    int         `json:"overdue"`
}

// PriorityCount holds a count for a priority level.
type PriorityCount struct {
	Priority task.Priority `json:"priority"`
	Count    int           `json:"count"`
}

// AnalystLoad holds the open work of one analyst.
type AnalystLoad struct {
	Analyst    string `json:"analyst"`
	InProgress int    `json:"in_progress"`
	Paused     int    `json:"paused"`
	Completed  int    `json:"completed"`
}

// Overview is the aggregate board overview.
type Overview struct {
	TeamName   string          `json:"team_name"`
	TotalTasks int             `json:"total_tasks"`
	Statuses   []StatusSummary `json:"statuses"`
	Priorities []PriorityCount `json:"priorities"`
	Analysts   []AnalystLoad   `json:"analysts"`
}

// Summary computes a board overview from all tasks. Analysts on the roster
// appear even when they hold no work.
func Summary(team string, roster []string, tasks []*task.Task, now time.Time) Overview {
	prioMap := make(map[task.Priority]int, len(task.Priorities))
	loads := make(map[string]*AnalystLoad, len(roster))
	for _, name := range roster {
		loads[strings.ToLower(name)] = &AnalystLoad{Analyst: name}
	}

	for _, t := range tasks {
		prioMap[t.Priority]++
		if t.IsUnassigned() {
			continue
		}
		key := strings.ToLower(t.AssignedTo)
		load, ok := loads[key]
		if !ok {
			load = &AnalystLoad{Analyst: t.AssignedTo}
			loads[key] = load
		}
		switch t.Status {
		case task.StatusInProgress:
			load.InProgress++
		case task.StatusPaused:
			load.Paused++
		case task.StatusCompleted:
			load.Completed++
		}
	}

	priorities := make([]PriorityCount, 0, len(task.Priorities))
	for i := len(task.Priorities) - 1; i >= 0; i-- {
		p := task.Priorities[i]
		priorities = append(priorities, PriorityCount{Priority: p, Count: prioMap[p]})
	}

	analysts := make([]AnalystLoad, 0, len(loads))
	for _, l := range loads {
		analysts = append(analysts, *l)
	}
	sort.Slice(analysts, func(i, j int) bool {
		return strings.ToLower(analysts[i].Analyst) < strings.ToLower(analysts[j].Analyst)
	})

	return Overview{
		TeamName:   team,
		TotalTasks: len(tasks),
		Statuses:   statusSummaries(tasks, now),
		Priorities: priorities,
		Analysts:   analysts,
	}
}

func statusSummaries(tasks []*task.Task, now time.Time) []StatusSummary {
	byStatus := make(map[task.Status]*StatusSummary, len(task.Statuses))
	for _, s := range task.Statuses {
		byStatus[s] = &StatusSummary{Status: s}
	}
	for _, t := range tasks {
		ss, ok := byStatus[t.Status]
		if !ok {
			continue
		}
		ss.Count++
		if t.IsUnassigned() {
			ss.Unassigned++
		}
		if t.IsOverdue(now) {
			ss.Overdue++
		}
	}
	out := make([]StatusSummary, 0, len(task.Statuses))
	for _, s := range task.Statuses {
		out = append(out, *byStatus[s])
	}
	return out
}

// WorkflowLoad pairs a catalog workflow with the tasks filed under it.
type WorkflowLoad struct {
	config.WorkflowConfig
	Open    int `json:"open"`
	Overdue int `json:"overdue"`
	Done    int `json:"completed"`
}

// Workflows counts tasks per workflow, matching a task's document type to
// the workflow name.
func Workflows(catalog []config.WorkflowConfig, tasks []*task.Task, now time.Time) []WorkflowLoad {
	out := make([]WorkflowLoad, len(catalog))
	index := make(map[string]int, len(catalog))
	for i, w := range catalog {
		out[i] = WorkflowLoad{WorkflowConfig: w}
		index[strings.ToLower(w.Name)] = i
	}
	for _, t := range tasks {
		i, ok := index[strings.ToLower(t.DocumentType)]
		if !ok {
			continue
		}
		switch {
		case t.Status == task.StatusCompleted:
			out[i].Done++
		case t.IsOverdue(now):
			out[i].Open++
			out[i].Overdue++
		default:
			out[i].Open++
		}
	}
	return out
}

// ParseIDs splits a comma-separated ID string into deduplicated int IDs.
func ParseIDs(arg string) ([]int, error) {
	parts := strings.Split(arg, ",")
	seen := make(map[int]bool, len(parts))
	ids := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(p), "#"))
		if p == "" {
			continue
		}
		id, err := strconv.Atoi(p)
		if err != nil || id <= 0 {
			return nil, task.ErrInvalidTaskID(p)
		}
		if !seen[id] {
			ids = append(ids, id)
			seen[id] = true
		}
	}
	if len(ids) == 0 {
		return nil, clierr.New(clierr.InvalidTaskID, "no valid task IDs provided")
	}
	return ids, nil
}
