package board

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiced-technology-gmbh/armsboard/internal/clierr"
	"github.com/twiced-technology-gmbh/armsboard/internal/config"
	"github.com/twiced-technology-gmbh/armsboard/internal/date"
	"github.com/twiced-technology-gmbh/armsboard/internal/task"
)

var now = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func sample() []*task.Task {
	day := func(d int) date.Date { return date.New(2024, time.March, d) }
	return []*task.Task{
		{ID: 1, Title: "UCC lien search", Company: "Acme", DocumentType: "UCC", Priority: task.PriorityMedium,
			Status: task.StatusNew, AssignedTo: task.Unassigned, DueAt: day(8), CreatedAt: now.Add(-72 * time.Hour)},
		{ID: 2, Title: "Chapter 11 docket", Company: "Globex", DocumentType: "Chapter 11", Priority: task.PriorityCritical,
			Status: task.StatusInProgress, AssignedTo: "Jane", DueAt: day(12), CreatedAt: now.Add(-48 * time.Hour)},
		{ID: 3, Title: "Trade tape", Company: "Acme", DocumentType: "Trades Tape Imports", Priority: task.PriorityHigh,
			Status: task.StatusCompleted, AssignedTo: "Jane", DueAt: day(1), CreatedAt: now.Add(-96 * time.Hour)},
		{ID: 4, Title: "Judgment review", Company: "Initech", DocumentType: "UCC", Priority: task.PriorityLow,
			Status: task.StatusPaused, AssignedTo: "Raj", DueAt: day(9), CreatedAt: now.Add(-24 * time.Hour),
			Description: "lien follow-up", Source: "Excel:q2.xlsx"},
	}
}

func ids(tasks []*task.Task) []int {
	out := make([]int, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name string
		opts FilterOptions
		want []int
	}{
		{"none", FilterOptions{}, []int{1, 2, 3, 4}},
		{"status", FilterOptions{Statuses: []task.Status{task.StatusNew, task.StatusPaused}}, []int{1, 4}},
		{"exclude", FilterOptions{ExcludeStatuses: []task.Status{task.StatusCompleted}}, []int{1, 2, 4}},
		{"analyst", FilterOptions{AssignedTo: "jane"}, []int{2, 3}},
		{"unassigned", FilterOptions{Unassigned: true}, []int{1}},
		{"company", FilterOptions{Company: "acme"}, []int{1, 3}},
		{"document type", FilterOptions{DocumentType: "ucc"}, []int{1, 4}},
		{"search", FilterOptions{Search: "LIEN"}, []int{1, 4}},
		{"source", FilterOptions{Source: "Excel:"}, []int{4}},
		{"overdue", FilterOptions{Overdue: true, Now: now}, []int{1, 4}},
		{"and", FilterOptions{Company: "Acme", Statuses: []task.Status{task.StatusNew}}, []int{1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Filter(sample(), tt.opts)))
		})
	}
}

func TestSort(t *testing.T) {
	tasks := sample()
	Sort(tasks, "priority", false)
	assert.Equal(t, []int{2, 3, 1, 4}, ids(tasks))

	Sort(tasks, "due", false)
	assert.Equal(t, []int{3, 1, 4, 2}, ids(tasks))

	Sort(tasks, "created", true)
	assert.Equal(t, []int{4, 2, 1, 3}, ids(tasks))

	Sort(tasks, "id", false)
	assert.Equal(t, []int{1, 2, 3, 4}, ids(tasks))
}

func TestListLimit(t *testing.T) {
	got := List(sample(), ListOptions{SortBy: "status", Limit: 2})
	assert.Equal(t, []int{1, 2}, ids(got))
}

func TestSummary(t *testing.T) {
	ov := Summary("ARMS", []string{"Zoe", "Jane"}, sample(), now)
	assert.Equal(t, 4, ov.TotalTasks)

	require.Len(t, ov.Statuses, len(task.Statuses))
	assert.Equal(t, StatusSummary{Status: task.StatusNew, Count: 1, Unassigned: 1, Overdue: 1}, ov.Statuses[0])
	assert.Equal(t, 0, ov.Statuses[3].Overdue, "completed tasks are never overdue")

	assert.Equal(t, task.PriorityCritical, ov.Priorities[0].Priority)

	require.Len(t, ov.Analysts, 3)
	assert.Equal(t, AnalystLoad{Analyst: "Jane", InProgress: 1, Completed: 1}, ov.Analysts[0])
	assert.Equal(t, "Raj", ov.Analysts[1].Analyst)
	assert.Equal(t, AnalystLoad{Analyst: "Zoe"}, ov.Analysts[2])
}

func TestGroupBy(t *testing.T) {
	g, err := GroupBy(sample(), "analyst", now)
	require.NoError(t, err)
	keys := make([]string, len(g.Groups))
	for i, grp := range g.Groups {
		keys[i] = grp.Key
	}
	assert.Equal(t, []string{"Jane", "Raj", task.Unassigned}, keys)
	assert.Equal(t, 2, g.Groups[0].Total)

	g, err = GroupBy(sample(), "priority", now)
	require.NoError(t, err)
	assert.Equal(t, "Critical", g.Groups[0].Key)

	_, err = GroupBy(sample(), "colour", now)
	assert.True(t, clierr.HasCode(err, clierr.InvalidGroupBy))
}

func TestWorkflows(t *testing.T) {
	loads := Workflows(config.DefaultWorkflows, sample(), now)
	byName := make(map[string]WorkflowLoad, len(loads))
	for _, l := range loads {
		byName[l.Name] = l
	}
	assert.Equal(t, 2, byName["UCC"].Open)
	assert.Equal(t, 2, byName["UCC"].Overdue)
	assert.Equal(t, 1, byName["Trades Tape Imports"].Done)
	assert.Equal(t, 1, byName["Chapter 11"].Open)
	assert.Zero(t, byName["Chapter 11"].Overdue)
}

func TestParseIDs(t *testing.T) {
	got, err := ParseIDs("3, #1,3")
	require.NoError(t, err)
	assert.Equal(t, []int{3, 1}, got)

	_, err = ParseIDs("x")
	assert.True(t, clierr.HasCode(err, clierr.InvalidTaskID))
	_, err = ParseIDs(" , ")
	assert.True(t, clierr.HasCode(err, clierr.InvalidTaskID))
}

func TestActivityLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.ActivityFileName)

	entries, err := ReadLog(path, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)

	LogMutation(path, ActionCreate, 1, "", "Review filing")
	LogMutation(path, ActionAssign, 1, "Jane", "")
	LogMutation(path, ActionMove, 1, "Jane", "New -> InProgress")

	entries, err = ReadLog(path, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, ActionAssign, entries[0].Action)
	assert.Equal(t, "New -> InProgress", entries[1].Detail)
}
