package output

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/twiced-technology-gmbh/armsboard/internal/board"
	"github.com/twiced-technology-gmbh/armsboard/internal/task"
)

// TaskCompact renders a list of tasks in one-line-per-record compact format.
func TaskCompact(w io.Writer, tasks []*task.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(os.Stderr, "No tasks found.")
		return
	}

	for _, t := range tasks {
		fmt.Fprintln(w, formatTaskLine(t))
	}
}

// TaskDetailCompact renders a single task with detail in compact format.
func TaskDetailCompact(w io.Writer, t *task.Task) {
	fmt.Fprintln(w, formatTaskLine(t)+" src:"+t.Source)

	ts := "  created:" + t.CreatedAt.Format(dateLayout) +
		" updated:" + t.UpdatedAt.Format(dateLayout)
	if t.CompletedAt != nil {
		ts += " completed:" + t.CompletedAt.Format(dateLayout)
	}
	fmt.Fprintln(w, ts)
	fmt.Fprintln(w, "  company:"+t.Company+" type:"+t.DocumentType+" dept:"+t.Department)

	if t.Description != "" {
		for _, line := range strings.Split(t.Description, "\n") {
			fmt.Fprintln(w, "  "+line)
		}
	}
}

// OverviewCompact renders a board summary in compact format.
func OverviewCompact(w io.Writer, s board.Overview) {
	fmt.Fprintf(w, "%s (%d tasks)\n", s.TeamName, s.TotalTasks)

	for _, ss := range s.Statuses {
		line := "  " + string(ss.Status) + ": " + strconv.Itoa(ss.Count)
		var annotations []string
		if ss.Unassigned > 0 {
			annotations = append(annotations, strconv.Itoa(ss.Unassigned)+" unassigned")
		}
		if ss.Overdue > 0 {
			annotations = append(annotations, strconv.Itoa(ss.Overdue)+" overdue")
		}
		if len(annotations) > 0 {
			line += " (" + strings.Join(annotations, ", ") + ")"
		}
		fmt.Fprintln(w, line)
	}

	if len(s.Priorities) > 0 {
		parts := make([]string, 0, len(s.Priorities))
		for _, pc := range s.Priorities {
			parts = append(parts, string(pc.Priority)+"="+strconv.Itoa(pc.Count))
		}
		fmt.Fprintln(w, "Priority: "+strings.Join(parts, " "))
	}

	for _, a := range s.Analysts {
		fmt.Fprintf(w, "@%s active=%d paused=%d done=%d\n", a.Analyst, a.InProgress, a.Paused, a.Completed)
	}
}

// formatTaskLine builds the one-line representation of a task.
func formatTaskLine(t *task.Task) string {
	line := "#" + strconv.Itoa(t.ID) + " [" + string(t.Status) + "/" + string(t.Priority) + "] " + t.Title
	if !t.IsUnassigned() {
		line += " @" + t.AssignedTo
	}
	if t.Company != "" && t.Company != task.DefaultCompany {
		line += " (" + t.Company + ")"
	}
	return line + " due:" + t.DueAt.String()
}
