// Package metrics computes the team dashboard counters from a dataset.
package metrics

import (
	"strings"

	"github.com/twiced-technology-gmbh/armsboard/internal/dataset"
)

// Column candidates, matched as case-insensitive substrings of the header.
// The first column (in sheet order) matching any candidate is used.
var (
	StatusColumns   = []string{"status", "state", "current_status"}
	UCCColumns      = []string{"ucc", "ucc_action", "action"}
	AnalystColumns  = []string{"analyst", "team_member", "assigned_to", "assigned"}
	JudgmentColumns = []string{"judgment", "judgment_amount", "amount"}
	WorkUnitColumns = []string{"work_units", "units", "work"}
	ChapterColumns  = []string{"chapter", "case_type", "type"}
)

// Dashboard is the set of headline counters.
type Dashboard struct {
	Rows                 int     `json:"rows"`
	TotalPending         int     `json:"total_pending"`
	OpenUCCActions       int     `json:"open_ucc_actions"`
	DistinctTeamMembers  int     `json:"distinct_team_members"`
	TotalJudgmentEntries int     `json:"total_judgment_entries"`
	TotalWorkUnits       float64 `json:"total_work_units"`
	Chapter11Cases       int     `json:"chapter_11_cases"`
	Chapter7Cases        int     `json:"chapter_7_cases"`

	// Columns records which header fed each counter.
	Columns map[string]string `json:"columns,omitempty"`
}

// FindColumn returns the first column whose lower-cased name contains any
// candidate.
func FindColumn(ds *dataset.Dataset, candidates []string) (string, bool) {
	for _, c := range ds.Columns {
		lc := strings.ToLower(c)
		for _, cand := range candidates {
			if strings.Contains(lc, strings.ToLower(cand)) {
				return c, true
			}
		}
	}
	return "", false
}

// Compute derives the dashboard from ds. Counters whose column is missing
// stay zero, except pending and work units which fall back to the row count.
func Compute(ds *dataset.Dataset) Dashboard {
	d := Dashboard{Rows: ds.Len(), Columns: make(map[string]string)}
	if ds.Len() == 0 {
		return d
	}

	if col, ok := FindColumn(ds, StatusColumns); ok {
		d.Columns["total_pending"] = col
		d.TotalPending = countMatching(ds, col, "pending")
	} else {
		d.TotalPending = ds.Len()
	}

	if col, ok := FindColumn(ds, UCCColumns); ok {
		d.Columns["open_ucc_actions"] = col
		d.OpenUCCActions = countMatching(ds, col, "open")
	}

	if col, ok := FindColumn(ds, AnalystColumns); ok {
		d.Columns["distinct_team_members"] = col
		d.DistinctTeamMembers = int(must(dataset.Aggregate(ds, col, dataset.DistinctCount)))
	}

	if col, ok := FindColumn(ds, JudgmentColumns); ok {
		d.Columns["total_judgment_entries"] = col
		d.TotalJudgmentEntries = int(must(dataset.Aggregate(ds, col, dataset.Count)))
	}

	if col, ok := FindColumn(ds, WorkUnitColumns); ok {
		d.Columns["total_work_units"] = col
		d.TotalWorkUnits = must(dataset.Aggregate(ds, col, dataset.Sum))
	} else {
		d.TotalWorkUnits = float64(ds.Len())
	}

	if col, ok := FindColumn(ds, ChapterColumns); ok {
		d.Columns["chapter_cases"] = col
		d.Chapter11Cases = countMatching(ds, col, "11")
		d.Chapter7Cases = countMatching(ds, col, "7")
	} else {
		d.Chapter11Cases, d.Chapter7Cases = scanChapters(ds)
	}
	return d
}

// countMatching counts rows whose lower-cased cast of col contains needle.
func countMatching(ds *dataset.Dataset, col, needle string) int {
	i, _ := ds.ColumnIndex(col)
	return ds.Where(func(row []dataset.Value) bool {
		return strings.Contains(strings.ToLower(row[i].String()), needle)
	}).Len()
}

// scanChapters counts chapter mentions in every cell when no chapter column
// exists.
func scanChapters(ds *dataset.Dataset) (ch11, ch7 int) {
	for _, row := range ds.Rows {
		for _, v := range row {
			s := strings.ToLower(v.String())
			if strings.Contains(s, "chapter 11") || strings.Contains(s, "ch 11") {
				ch11++
			}
			if strings.Contains(s, "chapter 7") || strings.Contains(s, "ch 7") {
				ch7++
			}
		}
	}
	return ch11, ch7
}

// must unwraps aggregates over columns already known to exist.
func must(v float64, err error) float64 {
	if err != nil {
		return 0
	}
	return v
}
