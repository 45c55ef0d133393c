package task

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/twiced-technology-gmbh/armsboard/internal/clierr"
	"github.com/twiced-technology-gmbh/armsboard/internal/date"
)

// Row is one spreadsheet record keyed by header. Values are strings,
// numbers, time.Time, date.Date or nil.
type Row map[string]any

// Logical fields filled from spreadsheet columns.
const (
	FieldTitle        = "title"
	FieldCompany      = "company"
	FieldDocumentType = "document_type"
	FieldDepartment   = "department"
	FieldPriority     = "priority"
	FieldAssignee     = "assigned_to"
	FieldStatus       = "status"
	FieldDescription  = "description"
	FieldDue          = "due_at"
	FieldCreated      = "created_at"
)

// HeaderCandidates lists, per logical field, the header names tried in
// order. Matching ignores case and surrounding whitespace; the first
// candidate present in the sheet wins.
var HeaderCandidates = []struct {
	Field   string
	Headers []string
}{
	{FieldTitle, []string{"Title", "Task Title", "Subject"}},
	{FieldCompany, []string{"Company", "Company Name"}},
	{FieldDocumentType, []string{"Document Type", "Doc Type", "Type"}},
	{FieldDepartment, []string{"Department", "Dept"}},
	{FieldPriority, []string{"Priority"}},
	{FieldAssignee, []string{"Assigned To", "Analyst"}},
	{FieldStatus, []string{"Status"}},
	{FieldDescription, []string{"Description", "Notes", "Details"}},
	{FieldDue, []string{"Due Date", "Due", "Deadline"}},
	{FieldCreated, []string{"Created Date", "Created At", "Created", "Date Received", "Received Date"}},
}

// ImportOptions controls the values used when a row does not supply one.
type ImportOptions struct {
	DefaultStatus   Status
	DefaultAssignee string
}

// RowWarning describes a row that was skipped or adjusted during import.
// Row is the 1-based data row number.
type RowWarning struct {
	Row     int    `json:"row"`
	Reason  string `json:"reason"`
	Skipped bool   `json:"skipped"`
}

func (w RowWarning) String() string {
	if w.Skipped {
		return fmt.Sprintf("row %d skipped: %s", w.Row, w.Reason)
	}
	return fmt.Sprintf("row %d: %s", w.Row, w.Reason)
}

// ImportResult summarises one ImportRows call.
type ImportResult struct {
	Source    string       `json:"source"`
	BatchID   string       `json:"batch_id,omitempty"`
	Created   int          `json:"created"`
	TaskIDs   []int        `json:"task_ids,omitempty"`
	Duplicate bool         `json:"duplicate"`
	Warnings  []RowWarning `json:"warnings,omitempty"`
}

// Skipped returns the number of rows that produced no task.
func (r ImportResult) Skipped() int {
	n := 0
	for _, w := range r.Warnings {
		if w.Skipped {
			n++
		}
	}
	return n
}

// ImportRows creates one task per row. A source identifier that was already
// consumed is not imported again; the result is marked Duplicate with zero
// tasks created. Bad rows become warnings and never abort the batch.
func (s *Store) ImportRows(source string, rows []Row, opts ImportOptions) (ImportResult, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return ImportResult{}, clierr.New(clierr.ValidationFailed, "import source is required").
			WithDetails(map[string]any{"field": "source"})
	}
	if opts.DefaultStatus == "" {
		opts.DefaultStatus = StatusNew
	}
	if opts.DefaultAssignee == "" {
		opts.DefaultAssignee = Unassigned
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if r, ok := s.consumed(source); ok {
		s.log.Info().Str("source", source).Str("batch_id", r.BatchID).Msg("source already imported")
		return ImportResult{Source: source, BatchID: r.BatchID, Duplicate: true}, nil
	}

	cols := resolveColumns(rows)
	res := ImportResult{Source: source, BatchID: uuid.NewString()}
	tag := sourceTag("Excel", source)

	for i, row := range rows {
		in, warns := s.rowToTask(row, cols, opts)
		for _, w := range warns {
			w.Row = i + 1
			res.Warnings = append(res.Warnings, w)
		}
		if in == nil {
			continue
		}
		in.Source = tag
		t, err := s.create(*in)
		if err != nil {
			res.Warnings = append(res.Warnings, RowWarning{Row: i + 1, Reason: err.Error(), Skipped: true})
			continue
		}
		res.Created++
		res.TaskIDs = append(res.TaskIDs, t.ID)
	}

	for _, w := range res.Warnings {
		s.log.Warn().Str("source", source).Int("row", w.Row).Bool("skipped", w.Skipped).Msg(w.Reason)
	}
	s.sources[source] = SourceReceipt{
		Source:     source,
		Kind:       "rows",
		BatchID:    res.BatchID,
		TaskIDs:    append([]int(nil), res.TaskIDs...),
		ImportedAt: s.now(),
	}
	s.log.Info().Str("source", source).Str("batch_id", res.BatchID).
		Int("created", res.Created).Int("warnings", len(res.Warnings)).Msg("rows imported")
	return res, nil
}

// columnMap maps a logical field to the header used in the rows.
type columnMap struct {
	fields map[string]string
	dates  []string // extra date-like headers tried for created_at
}

func resolveColumns(rows []Row) columnMap {
	byLower := make(map[string]string)
	for _, row := range rows {
		for h := range row {
			key := strings.ToLower(strings.TrimSpace(h))
			if prev, ok := byLower[key]; !ok || h < prev {
				byLower[key] = h
			}
		}
	}

	cm := columnMap{fields: make(map[string]string)}
	used := make(map[string]bool)
	for _, fc := range HeaderCandidates {
		for _, cand := range fc.Headers {
			if h, ok := byLower[strings.ToLower(cand)]; ok && !used[h] {
				cm.fields[fc.Field] = h
				used[h] = true
				break
			}
		}
	}

	for key, h := range byLower {
		if strings.Contains(key, "date") && !used[h] {
			cm.dates = append(cm.dates, h)
		}
	}
	sort.Strings(cm.dates)
	return cm
}

func (s *Store) rowToTask(row Row, cm columnMap, opts ImportOptions) (*NewTask, []RowWarning) {
	get := func(field string) any {
		h, ok := cm.fields[field]
		if !ok {
			return nil
		}
		return row[h]
	}
	str := func(field string) string { return cellString(get(field)) }

	title := str(FieldTitle)
	if title == "" {
		return nil, []RowWarning{{Reason: "missing title", Skipped: true}}
	}

	var warns []RowWarning
	in := &NewTask{
		Title:        title,
		Company:      str(FieldCompany),
		DocumentType: str(FieldDocumentType),
		Department:   str(FieldDepartment),
		Description:  str(FieldDescription),
		Priority:     s.defaults.Priority,
		Status:       opts.DefaultStatus,
		AssignedTo:   opts.DefaultAssignee,
	}

	if p, ok := ParsePriority(str(FieldPriority)); ok {
		in.Priority = p
	}
	if a := str(FieldAssignee); a != "" {
		if name, ok := s.recognize(a); ok {
			in.AssignedTo = name
		}
	}
	if _, ok := s.recognize(in.AssignedTo); !ok {
		in.AssignedTo = Unassigned
	}
	if st, ok := ParseStatus(str(FieldStatus)); ok {
		in.Status = st
	}
	if in.Status != StatusNew && in.AssignedTo == Unassigned {
		warns = append(warns, RowWarning{
			Reason: fmt.Sprintf("status %s needs an assignee; imported as %s", in.Status, StatusNew),
		})
		in.Status = StatusNew
	}

	created := []string{}
	if h, ok := cm.fields[FieldCreated]; ok {
		created = append(created, h)
	}
	created = append(created, cm.dates...)
	for _, h := range created {
		if ts, ok := cellTime(row[h]); ok {
			in.CreatedAt = ts
			break
		}
	}

	if v := get(FieldDue); v != nil {
		if ts, ok := cellTime(v); ok {
			d := date.Of(ts)
			in.DueAt = &d
		} else if cellString(v) != "" {
			warns = append(warns, RowWarning{Reason: fmt.Sprintf("unparseable due date %q", cellString(v))})
		}
	}
	return in, warns
}

func cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case time.Time:
		return x.Format(time.RFC3339)
	case date.Date:
		return x.String()
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}

func cellTime(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x, !x.IsZero()
	case date.Date:
		return x.Time, !x.IsZero()
	case string:
		ts, err := date.ParseTime(x)
		return ts, err == nil
	default:
		return time.Time{}, false
	}
}

func sourceTag(kind, source string) string {
	return kind + ":" + source
}
