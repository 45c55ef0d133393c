package output

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/twiced-technology-gmbh/armsboard/internal/board"
	"github.com/twiced-technology-gmbh/armsboard/internal/task"
)

const dateLayout = "2006-01-02"

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("244"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	titleStyle  = lipgloss.NewStyle().Bold(true)

	// Status colors aligned with TUI column-header palette.
	statusStyles = map[string]lipgloss.Style{
		string(task.StatusNew):        lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		string(task.StatusInProgress): lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
		string(task.StatusPaused):     lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		string(task.StatusCompleted):  lipgloss.NewStyle().Foreground(lipgloss.Color("34")),
	}

	// Priority colors matching TUI priority palette.
	priorityStyles = map[string]lipgloss.Style{
		string(task.PriorityCritical): lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		string(task.PriorityHigh):     lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
		string(task.PriorityMedium):   lipgloss.NewStyle().Foreground(lipgloss.Color("226")),
		string(task.PriorityLow):      lipgloss.NewStyle().Foreground(lipgloss.Color("242")),
	}

	analystStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("44")).Bold(true)
	overdueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// DisableColor strips all styling from table output.
func DisableColor() {
	headerStyle = lipgloss.NewStyle()
	dimStyle = lipgloss.NewStyle()
	titleStyle = lipgloss.NewStyle()
	statusStyles = map[string]lipgloss.Style{}
	priorityStyles = map[string]lipgloss.Style{}
	analystStyle = lipgloss.NewStyle()
	overdueStyle = lipgloss.NewStyle()
	plainMarkdown = true
}

// TaskTable renders a list of tasks as a formatted table.
func TaskTable(w io.Writer, tasks []*task.Task, now time.Time) {
	if len(tasks) == 0 {
		fmt.Fprintln(os.Stderr, "No tasks found.")
		return
	}

	const pad = 2
	idW, statusW, prioW, titleW, companyW, analystW := 4, 8, 10, 5, 9, 9
	for _, t := range tasks {
		idW = max(idW, len(strconv.Itoa(t.ID))+pad)
		statusW = max(statusW, len(t.Status)+pad)
		prioW = max(prioW, len(t.Priority)+pad)
		titleW = max(titleW, min(len(t.Title)+pad, 50))       //nolint:mnd // max title column width
		companyW = max(companyW, min(len(t.Company)+pad, 24)) //nolint:mnd // max company column width
		analystW = max(analystW, len(t.AssignedTo)+pad)
	}

	header := fmt.Sprintf("%-*s %-*s %-*s %-*s %-*s %-*s %s",
		idW, "ID", statusW, "STATUS", prioW, "PRIORITY",
		titleW, "TITLE", companyW, "COMPANY", analystW, "ANALYST", "DUE")
	fmt.Fprintln(w, headerStyle.Render(strings.TrimRight(header, " ")))

	for _, t := range tasks {
		analyst := t.AssignedTo
		if t.IsUnassigned() {
			analyst = dimStyle.Render("--")
		} else {
			analyst = analystStyle.Render(analyst)
		}
		due := t.DueAt.String()
		if t.IsOverdue(now) {
			due = overdueStyle.Render(due + " !")
		}

		row := fmt.Sprintf("%-*d %s %s %s %s %s %s",
			idW, t.ID,
			padRight(styledValue(string(t.Status), statusStyles), statusW),
			padRight(styledValue(string(t.Priority), priorityStyles), prioW),
			padRight(truncate(t.Title, 48), titleW), //nolint:mnd // leaves room for padding
			padRight(truncate(t.Company, 22), companyW), //nolint:mnd // leaves room for padding
			padRight(analyst, analystW),
			due)
		fmt.Fprintln(w, strings.TrimRight(row, " "))
	}
}

// TaskDetail renders a single task with full detail. The description is
// rendered as markdown.
func TaskDetail(w io.Writer, t *task.Task, now time.Time) {
	titleLine := fmt.Sprintf("Task #%d: %s", t.ID, t.Title)
	fmt.Fprintln(w, titleStyle.Render(titleLine))
	fmt.Fprintln(w, strings.Repeat("─", lipgloss.Width(titleLine)))

	printField(w, "Status", styledValue(string(t.Status), statusStyles))
	printField(w, "Priority", styledValue(string(t.Priority), priorityStyles))
	if t.IsUnassigned() {
		printField(w, "Analyst", dimStyle.Render(task.Unassigned))
	} else {
		printField(w, "Analyst", analystStyle.Render(t.AssignedTo))
	}
	printField(w, "Company", stringOrDash(t.Company))
	printField(w, "Doc type", stringOrDash(t.DocumentType))
	printField(w, "Department", stringOrDash(t.Department))
	due := t.DueAt.String()
	if t.IsOverdue(now) {
		due = overdueStyle.Render(due + " (overdue)")
	}
	printField(w, "Due", due)
	printField(w, "Source", stringOrDash(t.Source))
	printField(w, "Created", t.CreatedAt.Format("2006-01-02 15:04"))
	printField(w, "Updated", t.UpdatedAt.Format("2006-01-02 15:04"))
	if t.CompletedAt != nil {
		printField(w, "Completed", t.CompletedAt.Format("2006-01-02 15:04"))
		printField(w, "Lead time", FormatDuration(t.CompletedAt.Sub(t.CreatedAt)))
	}
	if next := task.NextStatuses(t.Status); len(next) > 0 {
		names := make([]string, len(next))
		for i, s := range next {
			names[i] = string(s)
		}
		printField(w, "Next", dimStyle.Render(strings.Join(names, ", ")))
	}

	if t.Description != "" {
		fmt.Fprintln(w)
		fmt.Fprint(w, Markdown(t.Description))
	}
}

// OverviewTable renders a board summary as a formatted dashboard.
func OverviewTable(w io.Writer, s board.Overview) {
	fmt.Fprintln(w, titleStyle.Render(s.TeamName))
	fmt.Fprintf(w, "Total: %d tasks\n\n", s.TotalTasks)

	const colW = 16
	header := fmt.Sprintf("%-16s %6s %11s %8s", "STATUS", "COUNT", "UNASSIGNED", "OVERDUE")
	fmt.Fprintln(w, headerStyle.Render(header))
	for _, ss := range s.Statuses {
		fmt.Fprintf(w, "%s %6d %11d %8d\n",
			padRight(styledValue(string(ss.Status), statusStyles), colW),
			ss.Count, ss.Unassigned, ss.Overdue)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-16s %6s", "PRIORITY", "COUNT")))
	for _, pc := range s.Priorities {
		fmt.Fprintf(w, "%s %6d\n",
			padRight(styledValue(string(pc.Priority), priorityStyles), colW), pc.Count)
	}

	if len(s.Analysts) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-16s %8s %6s %9s", "ANALYST", "ACTIVE", "PAUSED", "COMPLETED")))
		for _, a := range s.Analysts {
			fmt.Fprintf(w, "%s %8d %6d %9d\n",
				padRight(analystStyle.Render(a.Analyst), colW), a.InProgress, a.Paused, a.Completed)
		}
	}
}

// GroupedTable renders a grouped board view with per-group status breakdowns.
func GroupedTable(w io.Writer, gs board.GroupedSummary) {
	if len(gs.Groups) == 0 {
		fmt.Fprintln(os.Stderr, "No groups found.")
		return
	}

	for i, g := range gs.Groups {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%s (%d tasks)", g.Key, g.Total)))

		for _, ss := range g.Statuses {
			if ss.Count == 0 {
				continue
			}
			const groupStatusW = 16
			line := fmt.Sprintf("  %s %d", padRight(styledValue(string(ss.Status), statusStyles), groupStatusW), ss.Count)
			if ss.Overdue > 0 {
				line += overdueStyle.Render(fmt.Sprintf(" (%d overdue)", ss.Overdue))
			}
			fmt.Fprintln(w, line)
		}
	}
}

// WorkflowTable renders the workflow catalog with task counts.
func WorkflowTable(w io.Writer, loads []board.WorkflowLoad) {
	if len(loads) == 0 {
		fmt.Fprintln(os.Stderr, "No workflows configured.")
		return
	}
	header := fmt.Sprintf("%-22s %-22s %-10s %-10s %5s %6s %8s %5s",
		"WORKFLOW", "TYPE", "TARGET", "PRIORITY", "SLA", "OPEN", "OVERDUE", "DONE")
	fmt.Fprintln(w, headerStyle.Render(header))
	for _, l := range loads {
		overdue := strconv.Itoa(l.Overdue)
		if l.Overdue > 0 {
			overdue = overdueStyle.Render(overdue)
		}
		fmt.Fprintf(w, "%-22s %-22s %-10s %s %5s %6d %s %5d\n",
			truncate(l.Name, 22), truncate(l.Type, 22), l.MonthlyTarget, //nolint:mnd // column width
			padRight(styledValue(l.Priority, priorityStyles), 10), //nolint:mnd // column width
			strconv.Itoa(l.SLAHours)+"h", l.Open, padLeft(overdue, 8), l.Done) //nolint:mnd // column width
	}
}

// LogTable renders activity log entries oldest first.
func LogTable(w io.Writer, entries []board.LogEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "No activity recorded.")
		return
	}
	for _, e := range entries {
		line := dimStyle.Render(e.Timestamp.Format("2006-01-02 15:04")) + " " + padRight(e.Action, 9) //nolint:mnd // widest action
		if e.TaskID > 0 {
			line += " #" + strconv.Itoa(e.TaskID)
		}
		if e.Analyst != "" {
			line += " " + analystStyle.Render("@"+e.Analyst)
		}
		if e.Detail != "" {
			line += " " + e.Detail
		}
		fmt.Fprintln(w, line)
	}
}

// Messagef prints a simple formatted message line.
func Messagef(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format+"\n", args...)
}

func printField(w io.Writer, label, value string) {
	fmt.Fprintf(w, "  %-12s %s\n", label+":", value)
}

// FormatDuration renders a duration as human-readable "Xd Yh" or "Xh Ym".
func FormatDuration(d time.Duration) string {
	const hoursPerDay = 24
	days := int(d.Hours()) / hoursPerDay
	hours := int(d.Hours()) % hoursPerDay
	if days > 0 {
		return strconv.Itoa(days) + "d " + strconv.Itoa(hours) + "h"
	}
	minutes := int(d.Minutes()) % 60 //nolint:mnd // 60 minutes per hour
	return strconv.Itoa(hours) + "h " + strconv.Itoa(minutes) + "m"
}

// padRight pads s with spaces to the given visible width, accounting for ANSI
// escape codes that are invisible but consume bytes.
func padRight(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}

func padLeft(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return strings.Repeat(" ", width-visible) + s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func stringOrDash(s string) string {
	if s == "" {
		return dimStyle.Render("--")
	}
	return s
}

// styledValue renders s using a matching style from the map, or returns s unchanged.
func styledValue(s string, styles map[string]lipgloss.Style) string {
	if st, ok := styles[s]; ok {
		return st.Render(s)
	}
	return s
}
