package task

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/twiced-technology-gmbh/armsboard/internal/clierr"
	"github.com/twiced-technology-gmbh/armsboard/internal/date"
	"github.com/twiced-technology-gmbh/armsboard/internal/logging"
)

// Defaults holds the values applied to fields a caller leaves empty.
type Defaults struct {
	Company      string
	DocumentType string
	Department   string
	Priority     Priority
	DueDays      int
}

// DefaultDefaults returns the built-in sentinels.
func DefaultDefaults() Defaults {
	return Defaults{
		Company:      DefaultCompany,
		DocumentType: DefaultDocumentType,
		Department:   DefaultDepartment,
		Priority:     PriorityMedium,
		DueDays:      DefaultDueDays,
	}
}

// NewTask carries the caller-supplied fields for Create. Zero values mean
// "use the default".
type NewTask struct {
	Title        string
	Company      string
	DocumentType string
	Department   string
	Priority     Priority
	Status       Status
	AssignedTo   string
	CreatedAt    time.Time
	DueAt        *date.Date
	Description  string
	Source       string
}

// SourceReceipt records that an external file has been consumed.
type SourceReceipt struct {
	Source     string    `json:"source"`
	Kind       string    `json:"kind"`
	BatchID    string    `json:"batch_id"`
	TaskIDs    []int     `json:"task_ids"`
	ImportedAt time.Time `json:"imported_at"`
}

// Snapshot is the complete state of a Store, used for persistence.
type Snapshot struct {
	NextID  int
	Tasks   []*Task
	Sources []SourceReceipt
}

// Store owns the task collection. All methods are safe for concurrent use;
// tasks handed out are copies.
type Store struct {
	mu       sync.Mutex
	tasks    []*Task
	byID     map[int]*Task
	nextID   int
	sources  map[string]SourceReceipt
	analysts map[string]string // lower-cased name → roster spelling
	defaults Defaults
	now      func() time.Time
	log      *logging.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithAnalysts sets the analyst roster. With an empty roster any non-blank
// name is accepted.
func WithAnalysts(names ...string) Option {
	return func(s *Store) {
		for _, n := range names {
			n = strings.TrimSpace(n)
			if n != "" {
				s.analysts[strings.ToLower(n)] = n
			}
		}
	}
}

// WithDefaults overrides the field defaults. Empty fields keep the built-in
// sentinel.
func WithDefaults(d Defaults) Option {
	return func(s *Store) {
		if d.Company != "" {
			s.defaults.Company = d.Company
		}
		if d.DocumentType != "" {
			s.defaults.DocumentType = d.DocumentType
		}
		if d.Department != "" {
			s.defaults.Department = d.Department
		}
		if _, ok := ParsePriority(string(d.Priority)); ok {
			s.defaults.Priority = d.Priority
		}
		if d.DueDays > 0 {
			s.defaults.DueDays = d.DueDays
		}
	}
}

// WithLogger sets the logger used for warnings and rejected operations.
func WithLogger(l *logging.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithSnapshot restores previously captured state.
func WithSnapshot(snap Snapshot) Option {
	return func(s *Store) {
		for _, t := range snap.Tasks {
			c := t.Clone()
			s.tasks = append(s.tasks, c)
			s.byID[c.ID] = c
			if c.ID >= s.nextID {
				s.nextID = c.ID + 1
			}
		}
		sort.Slice(s.tasks, func(i, j int) bool { return s.tasks[i].ID < s.tasks[j].ID })
		if snap.NextID > s.nextID {
			s.nextID = snap.NextID
		}
		for _, r := range snap.Sources {
			r.TaskIDs = append([]int(nil), r.TaskIDs...)
			s.sources[r.Source] = r
		}
	}
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		byID:     make(map[int]*Task),
		nextID:   1,
		sources:  make(map[string]SourceReceipt),
		analysts: make(map[string]string),
		defaults: DefaultDefaults(),
		now:      time.Now,
		log:      logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create adds a task. A blank title is the only required-field failure;
// unknown priority or status values are also rejected.
func (s *Store) Create(in NewTask) (*Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.create(in)
	if err != nil {
		return nil, err
	}
	s.log.Info().Int("task_id", t.ID).Str("source", t.Source).Msg("task created")
	return t.Clone(), nil
}

func (s *Store) create(in NewTask) (*Task, error) {
	if err := ValidateTitle(in.Title); err != nil {
		return nil, err
	}

	priority := s.defaults.Priority
	if in.Priority != "" {
		p, err := ValidatePriority(string(in.Priority))
		if err != nil {
			return nil, err
		}
		priority = p
	}

	status := StatusNew
	if in.Status != "" {
		st, err := ValidateStatus(string(in.Status))
		if err != nil {
			return nil, err
		}
		status = st
	}

	assignee := Unassigned
	if a := strings.TrimSpace(in.AssignedTo); a != "" && a != Unassigned {
		name, ok := s.recognize(a)
		if !ok {
			return nil, s.unknownAnalyst(a)
		}
		assignee = name
	}
	if status != StatusNew && assignee == Unassigned {
		return nil, clierr.Newf(clierr.ValidationFailed, "status %s requires an assignee", status).
			WithDetails(map[string]any{"field": "assigned_to", "status": status})
	}

	now := s.now()
	created := in.CreatedAt
	if created.IsZero() {
		created = now
	}
	due := date.Of(created).AddDays(s.defaults.DueDays)
	if in.DueAt != nil {
		due = *in.DueAt
	}

	t := &Task{
		ID:           s.nextID,
		Title:        strings.TrimSpace(in.Title),
		Company:      orDefault(in.Company, s.defaults.Company),
		DocumentType: orDefault(in.DocumentType, s.defaults.DocumentType),
		Department:   orDefault(in.Department, s.defaults.Department),
		Priority:     priority,
		AssignedTo:   assignee,
		CreatedAt:    created,
		DueAt:        due,
		Description:  strings.TrimSpace(in.Description),
		Source:       orDefault(in.Source, SourceManual),
	}
	applyStatus(t, status, now)

	s.nextID++
	s.tasks = append(s.tasks, t)
	s.byID[t.ID] = t
	return t, nil
}

// PickNextUnassigned returns the oldest New, unassigned task (ties broken by
// lowest id), or nil when there is none.
func (s *Store) PickNextUnassigned() *Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t := s.pickNext(); t != nil {
		return t.Clone()
	}
	return nil
}

func (s *Store) pickNext() *Task {
	var best *Task
	for _, t := range s.tasks {
		if t.Status != StatusNew || !t.IsUnassigned() {
			continue
		}
		if best == nil || t.CreatedAt.Before(best.CreatedAt) ||
			(t.CreatedAt.Equal(best.CreatedAt) && t.ID < best.ID) {
			best = t
		}
	}
	return best
}

// ClaimNext picks the next unassigned task and assigns it to analyst in one
// step. It returns nil, nil when nothing is waiting.
func (s *Store) ClaimNext(analyst string) (*Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name, err := s.checkAnalyst(analyst)
	if err != nil {
		return nil, err
	}
	t := s.pickNext()
	if t == nil {
		return nil, nil
	}
	if err := s.assign(t, name); err != nil {
		return nil, err
	}
	return t.Clone(), nil
}

// Assign gives the task to analyst and moves it to InProgress. Allowed from
// New when the task is unassigned (or already pre-assigned to analyst), and
// from Paused or InProgress when nobody owns it.
func (s *Store) Assign(id int, analyst string) (*Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name, err := s.checkAnalyst(analyst)
	if err != nil {
		return nil, err
	}
	t, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound(id)
	}
	if err := s.assign(t, name); err != nil {
		return nil, err
	}
	return t.Clone(), nil
}

func (s *Store) assign(t *Task, analyst string) error {
	allowed := false
	switch t.Status {
	case StatusNew:
		allowed = t.IsUnassigned() || t.AssignedTo == analyst
	case StatusInProgress, StatusPaused:
		allowed = t.IsUnassigned()
	}
	if !allowed {
		s.log.Debug().Int("task_id", t.ID).Str("analyst", analyst).Str("status", string(t.Status)).
			Msg("assignment rejected")
		return ErrAssign(t, analyst)
	}
	t.AssignedTo = analyst
	applyStatus(t, StatusInProgress, s.now())
	s.log.Info().Int("task_id", t.ID).Str("analyst", analyst).Msg("task assigned")
	return nil
}

// Transition moves a task along the lifecycle. Illegal moves fail with
// INVALID_TRANSITION and leave the task untouched.
func (s *Store) Transition(id int, to Status) (*Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound(id)
	}
	if !CanTransition(t.Status, to) {
		s.log.Debug().Int("task_id", id).Str("from", string(t.Status)).Str("to", string(to)).
			Msg("transition rejected")
		return nil, ErrTransition(t, to)
	}
	if t.Status == StatusNew && t.IsUnassigned() {
		return nil, clierr.Newf(clierr.InvalidTransition,
			"task #%d is unassigned; assign it before starting", id).
			WithDetails(map[string]any{"id": id, "from": t.Status, "to": to})
	}

	from := t.Status
	applyStatus(t, to, s.now())
	s.log.Info().Int("task_id", id).Str("from", string(from)).Str("to", string(to)).Msg("task moved")
	return t.Clone(), nil
}

// Get returns a copy of one task.
func (s *Store) Get(id int) (*Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound(id)
	}
	return t.Clone(), nil
}

// TasksFor returns the analyst's tasks ordered by id.
func (s *Store) TasksFor(analyst string) []*Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	name, ok := s.recognize(strings.TrimSpace(analyst))
	if !ok {
		return nil
	}
	var out []*Task
	for _, t := range s.tasks {
		if t.AssignedTo == name {
			out = append(out, t.Clone())
		}
	}
	return out
}

// All returns every task ordered by id.
func (s *Store) All() []*Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t.Clone())
	}
	return out
}

// Len returns the number of tasks.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Clear removes every task and forgets consumed sources. The id counter is
// kept so ids are never reused.
func (s *Store) Clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.tasks)
	s.tasks = nil
	s.byID = make(map[int]*Task)
	s.sources = make(map[string]SourceReceipt)
	s.log.Warn().Int("removed", n).Int("next_id", s.nextID).Msg("store cleared")
	return n
}

// Snapshot captures the store for persistence.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{NextID: s.nextID, Tasks: make([]*Task, 0, len(s.tasks))}
	for _, t := range s.tasks {
		snap.Tasks = append(snap.Tasks, t.Clone())
	}
	keys := make([]string, 0, len(s.sources))
	for k := range s.sources {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		r := s.sources[k]
		r.TaskIDs = append([]int(nil), r.TaskIDs...)
		snap.Sources = append(snap.Sources, r)
	}
	return snap
}

// Sources returns the consumed source receipts ordered by import time.
func (s *Store) Sources() []SourceReceipt {
	srcs := s.Snapshot().Sources
	sort.SliceStable(srcs, func(i, j int) bool { return srcs[i].ImportedAt.Before(srcs[j].ImportedAt) })
	return srcs
}

// Analysts returns the roster in alphabetical order.
func (s *Store) Analysts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, len(s.analysts))
	for _, n := range s.analysts {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func (s *Store) recognize(name string) (string, bool) {
	if name == "" || name == Unassigned {
		return "", false
	}
	if len(s.analysts) == 0 {
		return name, true
	}
	canonical, ok := s.analysts[strings.ToLower(name)]
	return canonical, ok
}

func (s *Store) checkAnalyst(analyst string) (string, error) {
	if err := ValidateAnalyst(analyst); err != nil {
		return "", err
	}
	name, ok := s.recognize(strings.TrimSpace(analyst))
	if !ok {
		return "", s.unknownAnalyst(analyst)
	}
	return name, nil
}

func (s *Store) unknownAnalyst(name string) error {
	roster := make([]string, 0, len(s.analysts))
	for _, n := range s.analysts {
		roster = append(roster, n)
	}
	sort.Strings(roster)
	return clierr.Newf(clierr.ValidationFailed, "unknown analyst %q", name).
		WithDetails(map[string]any{"field": "analyst", "analyst": name, "allowed": roster})
}

func (s *Store) consumed(source string) (SourceReceipt, bool) {
	r, ok := s.sources[source]
	return r, ok
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v == "" {
		return def
	}
	return v
}
