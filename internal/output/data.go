package output

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/twiced-technology-gmbh/armsboard/internal/dataset"
	"github.com/twiced-technology-gmbh/armsboard/internal/db"
	"github.com/twiced-technology-gmbh/armsboard/internal/metrics"
	"github.com/twiced-technology-gmbh/armsboard/internal/sheet"
	"github.com/twiced-technology-gmbh/armsboard/internal/task"
)

const maxCellWidth = 24

// FormatNumber renders an aggregate result. NaN prints as "--".
func FormatNumber(v float64) string {
	if math.IsNaN(v) {
		return "--"
	}
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', 2, 64) //nolint:mnd // two decimals
}

// SheetsTable lists the sheets of a workbook with their shape.
func SheetsTable(w io.Writer, wb *sheet.Workbook) {
	fmt.Fprintln(w, titleStyle.Render(wb.Name))
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-24s %6s %8s", "SHEET", "ROWS", "COLUMNS")))
	for _, ds := range wb.Sheets {
		fmt.Fprintf(w, "%-24s %6d %8d\n", truncate(ds.Name, maxCellWidth), ds.Len(), len(ds.Columns))
	}
}

// ColumnsTable lists a sheet's columns with their inferred kind.
func ColumnsTable(w io.Writer, ds *dataset.Dataset) {
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-28s %s", "COLUMN", "KIND")))
	for _, c := range ds.Columns {
		fmt.Fprintf(w, "%-28s %s\n", truncate(c, 28), dimStyle.Render(ds.ColumnKind(c).String())) //nolint:mnd // column width
	}
}

// DatasetTable renders up to limit rows of ds; limit <= 0 renders all.
func DatasetTable(w io.Writer, ds *dataset.Dataset, limit int) {
	if ds.Len() == 0 {
		fmt.Fprintln(os.Stderr, "No rows.")
		return
	}
	view := ds
	if limit > 0 {
		view = ds.Head(limit)
	}

	widths := make([]int, len(view.Columns))
	for i, c := range view.Columns {
		widths[i] = min(lipgloss.Width(c), maxCellWidth)
	}
	for _, row := range view.Rows {
		for i, v := range row {
			widths[i] = max(widths[i], min(lipgloss.Width(v.String()), maxCellWidth))
		}
	}

	cells := make([]string, len(view.Columns))
	for i, c := range view.Columns {
		cells[i] = padRight(truncate(c, maxCellWidth), widths[i])
	}
	fmt.Fprintln(w, headerStyle.Render(strings.TrimRight(strings.Join(cells, "  "), " ")))

	for _, row := range view.Rows {
		for i, v := range row {
			s := v.String()
			if v.IsNull() {
				s = dimStyle.Render("--")
			}
			cells[i] = padRight(truncate(s, maxCellWidth), widths[i])
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(cells, "  "), " "))
	}
	if view.Len() < ds.Len() {
		fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("… %d more rows", ds.Len()-view.Len())))
	}
}

// GroupsTable renders a group-by aggregation.
func GroupsTable(w io.Writer, groupColumn string, op dataset.Operation, valueColumn string, groups []dataset.Group) {
	if len(groups) == 0 {
		fmt.Fprintln(os.Stderr, "No groups found.")
		return
	}
	keyW := max(len(groupColumn), 8) //nolint:mnd // minimum column width
	for _, g := range groups {
		keyW = max(keyW, min(lipgloss.Width(g.Key), maxCellWidth))
	}
	label := string(op) + "(" + valueColumn + ")"
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-*s %14s %6s", keyW, groupColumn, label, "ROWS")))
	for _, g := range groups {
		fmt.Fprintf(w, "%s %14s %6d\n", padRight(truncate(g.Key, maxCellWidth), keyW), FormatNumber(g.Value), g.Rows)
	}
}

// MetricsTable renders the dashboard counters.
func MetricsTable(w io.Writer, name string, d metrics.Dashboard) {
	fmt.Fprintln(w, titleStyle.Render(name))
	fmt.Fprintf(w, "Rows: %d\n\n", d.Rows)
	lines := []struct {
		label, key string
		value      string
	}{
		{"Total pending", "total_pending", strconv.Itoa(d.TotalPending)},
		{"Open UCC actions", "open_ucc_actions", strconv.Itoa(d.OpenUCCActions)},
		{"Team members", "distinct_team_members", strconv.Itoa(d.DistinctTeamMembers)},
		{"Judgment entries", "total_judgment_entries", strconv.Itoa(d.TotalJudgmentEntries)},
		{"Work units", "total_work_units", FormatNumber(d.TotalWorkUnits)},
		{"Chapter 11 cases", "chapter_cases", strconv.Itoa(d.Chapter11Cases)},
		{"Chapter 7 cases", "chapter_cases", strconv.Itoa(d.Chapter7Cases)},
	}
	for _, l := range lines {
		src := ""
		if col, ok := d.Columns[l.key]; ok {
			src = dimStyle.Render(" (" + col + ")")
		}
		fmt.Fprintf(w, "  %-18s %8s%s\n", l.label+":", l.value, src)
	}
}

// MeasureTable lists saved measures.
func MeasureTable(w io.Writer, measures []db.SavedMeasure) {
	if len(measures) == 0 {
		fmt.Fprintln(os.Stderr, "No measures saved.")
		return
	}
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-20s %-28s %-14s %12s %s",
		"MEASURE", "SOURCE", "OPERATION", "LAST", "EVALUATED")))
	for _, m := range measures {
		src := m.Column
		if m.Sheet != "" {
			src = m.Sheet + "!" + src
		}
		last, at := dimStyle.Render("--"), dimStyle.Render("never")
		if m.LastValue != nil {
			last = FormatNumber(*m.LastValue)
		}
		if m.EvaluatedAt != nil {
			at = m.EvaluatedAt.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%-20s %-28s %-14s %s %s\n",
			truncate(m.Name, 20), truncate(src, 28), m.Operation, //nolint:mnd // column widths
			padLeft(last, 12), at) //nolint:mnd // column width
		for _, f := range m.Filters {
			fmt.Fprintln(w, dimStyle.Render("    where "+f.String()))
		}
	}
}

// ImportSummary reports one import per line followed by its row warnings.
func ImportSummary(w io.Writer, results []task.ImportResult) {
	for _, r := range results {
		if r.Duplicate {
			fmt.Fprintf(w, "%s: already imported (batch %s)\n", r.Source, r.BatchID)
			continue
		}
		line := fmt.Sprintf("%s: %d created", r.Source, r.Created)
		if n := r.Skipped(); n > 0 {
			line += fmt.Sprintf(", %d skipped", n)
		}
		fmt.Fprintln(w, line)
		for _, warn := range r.Warnings {
			fmt.Fprintln(w, dimStyle.Render("  "+warn.String()))
		}
	}
}
