package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/twiced-technology-gmbh/armsboard/internal/dataset"
	"github.com/twiced-technology-gmbh/armsboard/internal/task"
)

func TestComputeFromSheet(t *testing.T) {
	ds := dataset.FromRecords("cases",
		[]string{"Case Status", "UCC Action", "Analyst Name", "Judgment Amount", "Work Units", "Case Type"},
		[]map[string]any{
			{"Case Status": "Pending review", "UCC Action": "Open", "Analyst Name": "Jane", "Judgment Amount": 1200, "Work Units": 2, "Case Type": "Chapter 11"},
			{"Case Status": "Closed", "UCC Action": "closed", "Analyst Name": "Omar", "Work Units": "1.5", "Case Type": "Chapter 7"},
			{"Case Status": "PENDING", "UCC Action": "reopened", "Analyst Name": "Jane", "Judgment Amount": "n/a", "Work Units": "x", "Case Type": "Ch 7"},
		})

	d := Compute(ds)
	assert.Equal(t, 3, d.Rows)
	assert.Equal(t, 2, d.TotalPending)
	assert.Equal(t, 2, d.OpenUCCActions)
	assert.Equal(t, 2, d.DistinctTeamMembers)
	assert.Equal(t, 2, d.TotalJudgmentEntries)
	assert.Equal(t, 3.5, d.TotalWorkUnits)
	assert.Equal(t, 1, d.Chapter11Cases)
	assert.Equal(t, 2, d.Chapter7Cases)
	assert.Equal(t, "Case Type", d.Columns["chapter_cases"])
}

func TestComputeFallbacks(t *testing.T) {
	ds := dataset.FromRecords("notes", []string{"Notes"}, []map[string]any{
		{"Notes": "debtor filed chapter 11"},
		{"Notes": "ch 7 conversion"},
		{"Notes": nil},
	})
	d := Compute(ds)
	assert.Equal(t, 3, d.TotalPending, "no status column counts every row")
	assert.Equal(t, 3.0, d.TotalWorkUnits, "no work column counts every row")
	assert.Equal(t, 1, d.Chapter11Cases)
	assert.Equal(t, 1, d.Chapter7Cases)
	assert.Zero(t, d.DistinctTeamMembers)
}

func TestComputeEmpty(t *testing.T) {
	d := Compute(dataset.New("empty", []string{"Status"}))
	assert.Equal(t, Dashboard{Columns: map[string]string{}}, d)
}

func TestComputeFromTaskRecords(t *testing.T) {
	s := task.NewStore()
	a, _ := s.Create(task.NewTask{Title: "a", DocumentType: "Chapter 11 claim"})
	_, _ = s.Create(task.NewTask{Title: "b"})
	_, _ = s.Assign(a.ID, "Jane")

	cols, recs := task.Records(s.All())
	d := Compute(dataset.FromRecords("tasks", cols, recs))
	assert.Equal(t, "Assigned To", d.Columns["distinct_team_members"])
	assert.Equal(t, 2, d.DistinctTeamMembers, "Jane and Unassigned")
	assert.Equal(t, 1, d.Chapter11Cases)
}

func TestFindColumn(t *testing.T) {
	ds := dataset.New("x", []string{"Title", "Current_Status", "State"})
	col, ok := FindColumn(ds, StatusColumns)
	assert.True(t, ok)
	assert.Equal(t, "Current_Status", col)

	_, ok = FindColumn(ds, UCCColumns)
	assert.False(t, ok)
}
