package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiced-technology-gmbh/armsboard/internal/config"
	"github.com/twiced-technology-gmbh/armsboard/internal/task"
)

// storeWorkspace adapts an in-memory store to the board.
type storeWorkspace struct{ s *task.Store }

func (w storeWorkspace) Tasks() ([]*task.Task, error) { return w.s.All(), nil }
func (w storeWorkspace) ClaimNext(a string) (*task.Task, error) {
	return w.s.ClaimNext(a)
}
func (w storeWorkspace) Assign(id int, a string) (*task.Task, error) { return w.s.Assign(id, a) }
func (w storeWorkspace) Transition(id int, to task.Status) (*task.Task, error) {
	return w.s.Transition(id, to)
}
func (w storeWorkspace) Clear() (int, error) { return w.s.Clear(), nil }

var epoch = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestBoard(t *testing.T, analyst string) (*Board, *task.Store) {
	t.Helper()
	clock := epoch
	store := task.NewStore(task.WithClock(func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}))
	for _, title := range []string{"First filing", "Second filing", "Third filing"} {
		_, err := store.Create(task.NewTask{Title: title})
		require.NoError(t, err)
	}

	b := NewBoard(config.NewDefault("ARMS"), storeWorkspace{store}, analyst)
	b.SetNow(func() time.Time { return epoch.Add(time.Hour) })
	b.Update(tea.WindowSizeMsg{Width: 160, Height: 40})
	return b, store
}

func press(b *Board, keys string) {
	for _, r := range keys {
		b.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestBoardColumns(t *testing.T) {
	b, _ := newTestBoard(t, "Jane")
	require.Len(t, b.columns, len(task.Statuses))
	assert.Len(t, b.columns[0].tasks, 3)
	assert.Equal(t, 1, b.columns[0].tasks[0].ID, "New column is in pick order")
	assert.Contains(t, b.View(), "New (3)")
}

func TestPickNextMovesFocus(t *testing.T) {
	b, store := newTestBoard(t, "Jane")
	press(b, "n")

	got, err := store.Get(1)
	require.NoError(t, err)
	assert.Equal(t, task.StatusInProgress, got.Status)
	assert.Equal(t, "Jane", got.AssignedTo)

	assert.Equal(t, 1, b.activeCol)
	assert.Equal(t, 1, b.selectedTask().ID)
	assert.Contains(t, b.notice, "Picked #1")
}

func TestPauseResumeComplete(t *testing.T) {
	b, store := newTestBoard(t, "Jane")
	press(b, "n")
	press(b, "p")
	got, _ := store.Get(1)
	assert.Equal(t, task.StatusPaused, got.Status)

	press(b, "r")
	got, _ = store.Get(1)
	assert.Equal(t, task.StatusInProgress, got.Status)

	press(b, "c")
	got, _ = store.Get(1)
	assert.Equal(t, task.StatusCompleted, got.Status)
	assert.NotNil(t, got.CompletedAt)

	press(b, "s")
	assert.Error(t, b.err, "completed tasks cannot restart")
}

func TestStartUnassignedAssignsFirst(t *testing.T) {
	b, store := newTestBoard(t, "Jane")
	press(b, "j")
	press(b, "s")

	got, _ := store.Get(2)
	assert.Equal(t, task.StatusInProgress, got.Status)
	assert.Equal(t, "Jane", got.AssignedTo)
}

func TestPickWithoutAnalyst(t *testing.T) {
	b, store := newTestBoard(t, "")
	press(b, "n")
	assert.Error(t, b.err)
	got, _ := store.Get(1)
	assert.Equal(t, task.StatusNew, got.Status)
}

func TestClearAllConfirm(t *testing.T) {
	b, store := newTestBoard(t, "Jane")
	press(b, "C")
	assert.Equal(t, viewConfirmClearAll, b.view)
	press(b, "n")
	assert.Equal(t, 3, store.Len())

	press(b, "C")
	press(b, "y")
	assert.Equal(t, 0, store.Len())
	assert.Equal(t, viewBoard, b.view)
	assert.Contains(t, b.notice, "Removed 3")
}

func TestDetailView(t *testing.T) {
	b, _ := newTestBoard(t, "Jane")
	b.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, viewDetail, b.view)
	assert.Contains(t, b.View(), "#1 First filing")
	b.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, viewBoard, b.view)
}

func TestWrapTitle(t *testing.T) {
	assert.Equal(t, []string{"short"}, wrapTitle("short", 10, 2))
	assert.Equal(t, []string{"alpha beta", "gamma delta"}, wrapTitle("alpha beta gamma delta", 11, 2))
	assert.Equal(t, []string{"alpha beta", "gamma de..."}, wrapTitle("alpha beta gamma delta epsilon", 11, 2))
}

func TestHumanDuration(t *testing.T) {
	assert.Equal(t, "<1m", humanDuration(30*time.Second))
	assert.Equal(t, "5m", humanDuration(5*time.Minute))
	assert.Equal(t, "3d", humanDuration(72*time.Hour))
	assert.Equal(t, "2w", humanDuration(15*24*time.Hour))
}
