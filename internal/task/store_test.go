package task

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiced-technology-gmbh/armsboard/internal/clierr"
	"github.com/twiced-technology-gmbh/armsboard/internal/date"
)

var epoch = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

// tickingClock advances one minute per call so every mutation gets a
// distinct, predictable timestamp.
type tickingClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Minute)
	return c.t
}

func newTestStore(opts ...Option) *Store {
	clock := &tickingClock{t: epoch}
	return NewStore(append([]Option{WithClock(clock.Now)}, opts...)...)
}

func TestReviewFilingScenario(t *testing.T) {
	s := newTestStore()

	tk, err := s.Create(NewTask{Title: "Review filing", Company: "Acme", Priority: PriorityHigh})
	require.NoError(t, err)
	assert.Equal(t, StatusNew, tk.Status)
	assert.Equal(t, Unassigned, tk.AssignedTo)
	assert.Equal(t, "Acme", tk.Company)
	assert.Equal(t, PriorityHigh, tk.Priority)
	assert.Equal(t, date.Of(tk.CreatedAt).AddDays(7), tk.DueAt)

	tk, err = s.Assign(tk.ID, "Jane")
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, tk.Status)
	assert.Equal(t, "Jane", tk.AssignedTo)

	tk, err = s.Transition(tk.ID, StatusPaused)
	require.NoError(t, err)
	assert.Equal(t, StatusPaused, tk.Status)

	_, err = s.Transition(tk.ID, StatusCompleted)
	require.Error(t, err)
	assert.True(t, clierr.HasCode(err, clierr.InvalidTransition))
	got, err := s.Get(tk.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPaused, got.Status)
	assert.Nil(t, got.CompletedAt)

	_, err = s.Transition(tk.ID, StatusInProgress)
	require.NoError(t, err)
	tk, err = s.Transition(tk.ID, StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, tk.Status)
	require.NotNil(t, tk.CompletedAt)
	assert.True(t, tk.CompletedAt.After(tk.CreatedAt))
}

func TestCreateDefaults(t *testing.T) {
	s := newTestStore()
	tk, err := s.Create(NewTask{Title: "  Pull credit file  "})
	require.NoError(t, err)

	assert.Equal(t, 1, tk.ID)
	assert.Equal(t, "Pull credit file", tk.Title)
	assert.Equal(t, DefaultCompany, tk.Company)
	assert.Equal(t, DefaultDocumentType, tk.DocumentType)
	assert.Equal(t, DefaultDepartment, tk.Department)
	assert.Equal(t, PriorityMedium, tk.Priority)
	assert.Equal(t, SourceManual, tk.Source)
	assert.Equal(t, tk.CreatedAt, tk.UpdatedAt)
}

func TestCreateWithConfiguredDefaults(t *testing.T) {
	s := newTestStore(WithDefaults(Defaults{Department: "Ops", Priority: PriorityLow, DueDays: 3}))
	tk, err := s.Create(NewTask{Title: "x"})
	require.NoError(t, err)
	assert.Equal(t, "Ops", tk.Department)
	assert.Equal(t, DefaultCompany, tk.Company)
	assert.Equal(t, PriorityLow, tk.Priority)
	assert.Equal(t, date.Of(tk.CreatedAt).AddDays(3), tk.DueAt)
}

func TestCreateValidation(t *testing.T) {
	s := newTestStore(WithAnalysts("Jane", "Omar"))

	tests := []struct {
		name string
		in   NewTask
		code string
	}{
		{"blank title", NewTask{Title: "   "}, clierr.ValidationFailed},
		{"bad priority", NewTask{Title: "x", Priority: "Urgentish"}, clierr.ValidationFailed},
		{"bad status", NewTask{Title: "x", Status: "Archived"}, clierr.ValidationFailed},
		{"active without assignee", NewTask{Title: "x", Status: StatusPaused}, clierr.ValidationFailed},
		{"unknown analyst", NewTask{Title: "x", AssignedTo: "Mallory"}, clierr.ValidationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Create(tt.in)
			require.Error(t, err)
			assert.Equal(t, tt.code, clierr.CodeOf(err))
		})
	}
	assert.Zero(t, s.Len())

	tk, err := s.Create(NewTask{Title: "x", AssignedTo: "jane", Status: StatusCompleted})
	require.NoError(t, err)
	assert.Equal(t, "Jane", tk.AssignedTo)
	assert.NotNil(t, tk.CompletedAt)
}

func TestIDsNeverReused(t *testing.T) {
	s := newTestStore()
	var last int
	for i := 0; i < 5; i++ {
		tk, err := s.Create(NewTask{Title: fmt.Sprintf("task %d", i)})
		require.NoError(t, err)
		assert.Greater(t, tk.ID, last)
		last = tk.ID
	}

	assert.Equal(t, 5, s.Clear())
	assert.Empty(t, s.All())

	tk, err := s.Create(NewTask{Title: "after clear"})
	require.NoError(t, err)
	assert.Equal(t, 6, tk.ID)
}

// statusTask builds a task sitting in the given status, owned by Jane.
func statusTask(t *testing.T, s *Store, st Status) *Task {
	t.Helper()
	tk, err := s.Create(NewTask{Title: "t", Status: st, AssignedTo: "Jane"})
	require.NoError(t, err)
	return tk
}

func TestTransitionClosure(t *testing.T) {
	for _, from := range Statuses {
		for _, to := range append(Statuses, Status("Archived")) {
			t.Run(fmt.Sprintf("%s_to_%s", from, to), func(t *testing.T) {
				s := newTestStore()
				tk := statusTask(t, s, from)

				got, err := s.Transition(tk.ID, to)
				if CanTransition(from, to) {
					require.NoError(t, err)
					assert.Equal(t, to, got.Status)
					return
				}
				require.Error(t, err)
				assert.True(t, clierr.HasCode(err, clierr.InvalidTransition))
				after, _ := s.Get(tk.ID)
				assert.Equal(t, tk, after, "rejected transition must not touch the task")
			})
		}
	}
}

func TestCompletedIsTerminal(t *testing.T) {
	assert.Empty(t, NextStatuses(StatusCompleted))
	for _, st := range Statuses {
		assert.False(t, CanTransition(st, st), "self transition %s", st)
	}
}

func TestCompletedAtInvariant(t *testing.T) {
	s := newTestStore()
	tk := statusTask(t, s, StatusNew)

	check := func(tk *Task) {
		t.Helper()
		assert.Equal(t, tk.Status == StatusCompleted, tk.CompletedAt != nil)
	}
	check(tk)
	for _, to := range []Status{StatusInProgress, StatusPaused, StatusInProgress, StatusCompleted} {
		var err error
		tk, err = s.Transition(tk.ID, to)
		require.NoError(t, err)
		check(tk)
	}
}

func TestStartRequiresAssignee(t *testing.T) {
	s := newTestStore()
	tk, err := s.Create(NewTask{Title: "loose"})
	require.NoError(t, err)

	_, err = s.Transition(tk.ID, StatusInProgress)
	assert.True(t, clierr.HasCode(err, clierr.InvalidTransition))
}

func TestTransitionUnknownTask(t *testing.T) {
	s := newTestStore()
	_, err := s.Transition(42, StatusPaused)
	assert.True(t, clierr.HasCode(err, clierr.TaskNotFound))
	_, err = s.Assign(42, "Jane")
	assert.True(t, clierr.HasCode(err, clierr.TaskNotFound))
}

func TestAssignRules(t *testing.T) {
	tests := []struct {
		name     string
		status   Status
		owner    string
		analyst  string
		wantCode string
	}{
		{"new unassigned", StatusNew, "", "Jane", ""},
		{"new preassigned same analyst", StatusNew, "Jane", "Jane", ""},
		{"new preassigned other analyst", StatusNew, "Omar", "Jane", clierr.InvalidTransition},
		{"in progress owned", StatusInProgress, "Omar", "Jane", clierr.InvalidTransition},
		{"paused owned", StatusPaused, "Omar", "Jane", clierr.InvalidTransition},
		{"completed", StatusCompleted, "Omar", "Jane", clierr.InvalidTransition},
		{"blank analyst", StatusNew, "", "  ", clierr.ValidationFailed},
		{"sentinel analyst", StatusNew, "", Unassigned, clierr.ValidationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore()
			tk, err := s.Create(NewTask{Title: "t", Status: tt.status, AssignedTo: tt.owner})
			require.NoError(t, err)

			got, err := s.Assign(tk.ID, tt.analyst)
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, clierr.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, StatusInProgress, got.Status)
			assert.Equal(t, tt.analyst, got.AssignedTo)
		})
	}
}

func TestAssignUsesRosterSpelling(t *testing.T) {
	s := newTestStore(WithAnalysts("Jane Doe"))
	tk, _ := s.Create(NewTask{Title: "t"})

	_, err := s.Assign(tk.ID, "Mallory")
	assert.True(t, clierr.HasCode(err, clierr.ValidationFailed))

	got, err := s.Assign(tk.ID, "jane doe")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", got.AssignedTo)
	assert.Len(t, s.TasksFor("JANE DOE"), 1)
}

func TestPickNextUnassigned(t *testing.T) {
	s := newTestStore()
	assert.Nil(t, s.PickNextUnassigned())

	day := func(d int) time.Time { return epoch.AddDate(0, 0, d) }
	a, _ := s.Create(NewTask{Title: "newer", CreatedAt: day(3)})
	b, _ := s.Create(NewTask{Title: "oldest tie 1", CreatedAt: day(1)})
	c, _ := s.Create(NewTask{Title: "oldest tie 2", CreatedAt: day(1)})
	_, _ = s.Create(NewTask{Title: "older but owned", CreatedAt: day(0), AssignedTo: "Jane"})

	for i := 0; i < 3; i++ {
		assert.Equal(t, b.ID, s.PickNextUnassigned().ID, "pick-next must be deterministic")
	}

	_, err := s.Assign(b.ID, "Jane")
	require.NoError(t, err)
	assert.Equal(t, c.ID, s.PickNextUnassigned().ID)

	_, _ = s.Assign(c.ID, "Jane")
	_, _ = s.Assign(a.ID, "Omar")
	assert.Nil(t, s.PickNextUnassigned())
}

func TestClaimNextIsExclusive(t *testing.T) {
	s := newTestStore()
	const n = 20
	for i := 0; i < n; i++ {
		_, err := s.Create(NewTask{Title: fmt.Sprintf("t%d", i)})
		require.NoError(t, err)
	}

	var (
		mu      sync.Mutex
		claimed = make(map[int]string)
		wg      sync.WaitGroup
	)
	for w := 0; w < 4; w++ {
		analyst := fmt.Sprintf("analyst-%d", w)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				tk, err := s.ClaimNext(analyst)
				if err != nil || tk == nil {
					return
				}
				mu.Lock()
				_, dup := claimed[tk.ID]
				claimed[tk.ID] = analyst
				mu.Unlock()
				assert.False(t, dup, "task %d claimed twice", tk.ID)
			}
		}()
	}
	wg.Wait()

	assert.Len(t, claimed, n)
	for _, tk := range s.All() {
		assert.Equal(t, StatusInProgress, tk.Status)
		assert.Equal(t, claimed[tk.ID], tk.AssignedTo)
	}
}

func TestTasksForOrderedByID(t *testing.T) {
	s := newTestStore()
	for i := 0; i < 4; i++ {
		tk, _ := s.Create(NewTask{Title: "t"})
		if i%2 == 0 {
			_, _ = s.Assign(tk.ID, "Jane")
		}
	}
	got := s.TasksFor("Jane")
	require.Len(t, got, 2)
	assert.Less(t, got[0].ID, got[1].ID)
	assert.Empty(t, s.TasksFor(""))
	assert.Empty(t, s.TasksFor("Nobody"))
}

func TestReturnedTasksAreCopies(t *testing.T) {
	s := newTestStore()
	tk, _ := s.Create(NewTask{Title: "original"})
	tk.Title = "mutated"
	for _, x := range s.All() {
		x.Status = StatusCompleted
	}
	got, _ := s.Get(tk.ID)
	assert.Equal(t, "original", got.Title)
	assert.Equal(t, StatusNew, got.Status)
}

func TestSnapshotRestore(t *testing.T) {
	s := newTestStore()
	for i := 0; i < 3; i++ {
		_, _ = s.Create(NewTask{Title: "t"})
	}
	_, err := s.ImportRows("q1.xlsx", []Row{{"Title": "imported"}}, ImportOptions{})
	require.NoError(t, err)
	s.Clear()
	_, _ = s.Create(NewTask{Title: "kept"})

	snap := s.Snapshot()
	restored := newTestStore(WithSnapshot(snap))

	assert.Equal(t, s.All(), restored.All())
	tk, err := restored.Create(NewTask{Title: "next"})
	require.NoError(t, err)
	assert.Equal(t, 6, tk.ID)
}

func TestErrorConstructors(t *testing.T) {
	err := ErrInvalidTaskID("abc")
	assert.Equal(t, clierr.InvalidTaskID, err.Code)
	assert.Equal(t, "abc", err.Details["input"])

	nf := ErrNotFound(7)
	assert.Equal(t, clierr.TaskNotFound, nf.Code)
	assert.Equal(t, 7, nf.Details["id"])
}
