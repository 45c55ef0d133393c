package task

import "time"

// Record columns produced by Records, in display order.
var RecordColumns = []string{
	"ID", "Title", "Company", "Document Type", "Department", "Priority", "Status",
	"Assigned To", "Created Date", "Due Date", "Completed Date", "Hours To Complete", "Source",
}

// Records flattens tasks into generic rows so they can be filtered and
// aggregated like any spreadsheet. Numbers are float64, timestamps are
// time.Time, and missing values are nil.
func Records(tasks []*Task) ([]string, []map[string]any) {
	rows := make([]map[string]any, 0, len(tasks))
	for _, t := range tasks {
		var completed, hours any
		if t.CompletedAt != nil {
			completed = *t.CompletedAt
			hours = t.CompletedAt.Sub(t.CreatedAt).Round(time.Minute).Hours()
		}
		rows = append(rows, map[string]any{
			"ID":                float64(t.ID),
			"Title":             t.Title,
			"Company":           t.Company,
			"Document Type":     t.DocumentType,
			"Department":        t.Department,
			"Priority":          string(t.Priority),
			"Status":            string(t.Status),
			"Assigned To":       t.AssignedTo,
			"Created Date":      t.CreatedAt,
			"Due Date":          t.DueAt.Time,
			"Completed Date":    completed,
			"Hours To Complete": hours,
			"Source":            t.Source,
		})
	}
	return append([]string(nil), RecordColumns...), rows
}
