package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/twiced-technology-gmbh/armsboard/internal/board"
	"github.com/twiced-technology-gmbh/armsboard/internal/config"
	"github.com/twiced-technology-gmbh/armsboard/internal/db"
	"github.com/twiced-technology-gmbh/armsboard/internal/filelock"
	"github.com/twiced-technology-gmbh/armsboard/internal/logging"
	"github.com/twiced-technology-gmbh/armsboard/internal/task"
)

// lockWait bounds how long a command waits for another armsboard process.
const lockWait = 10 * time.Second

// session loads the task store from the workspace database for the length
// of one operation. The workspace lock is held from load to save, so two
// analysts claiming at once never receive the same task.
type session struct {
	cfg *config.Config
	now func() time.Time
}

func newSession(cfg *config.Config) *session {
	return &session{cfg: cfg, now: time.Now}
}

// view runs fn against a freshly loaded store and discards any changes.
func (s *session) view(fn func(*task.Store) error) error {
	return s.run(false, func(_ *db.DB, st *task.Store) error { return fn(st) })
}

// update runs fn and saves the store when fn succeeds.
func (s *session) update(fn func(*task.Store) error) error {
	return s.run(true, func(_ *db.DB, st *task.Store) error { return fn(st) })
}

// withDB runs fn with both the database and the store. The store is saved
// afterwards when save is set.
func (s *session) withDB(save bool, fn func(*db.DB, *task.Store) error) error {
	return s.run(save, fn)
}

func (s *session) run(save bool, fn func(*db.DB, *task.Store) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), lockWait)
	defer cancel()

	lock, err := filelock.Acquire(ctx, s.cfg.LockPath())
	if err != nil {
		return err
	}
	defer func() { _ = lock.Release() }()

	d, err := db.Open(s.cfg.DBPath())
	if err != nil {
		return err
	}
	defer func() { _ = d.Close() }()

	snap, err := d.LoadSnapshot()
	if err != nil {
		return fmt.Errorf("loading tasks: %w", err)
	}

	store := task.NewStore(
		task.WithSnapshot(snap),
		task.WithAnalysts(s.cfg.AnalystNames()...),
		task.WithDefaults(s.cfg.TaskDefaults()),
		task.WithClock(s.now),
		task.WithLogger(logging.Component("store")),
	)

	if err := fn(d, store); err != nil {
		return err
	}
	if !save {
		return nil
	}
	if err := d.SaveSnapshot(store.Snapshot()); err != nil {
		return fmt.Errorf("saving tasks: %w", err)
	}
	return nil
}

// boardWorkspace adapts a session to the interactive board. Every call is
// a separate locked load and save, so other processes stay in sync.
type boardWorkspace struct {
	s *session
}

func (w boardWorkspace) Tasks() ([]*task.Task, error) {
	var out []*task.Task
	err := w.s.view(func(st *task.Store) error {
		out = st.All()
		return nil
	})
	return out, err
}

func (w boardWorkspace) ClaimNext(analyst string) (*task.Task, error) {
	var t *task.Task
	err := w.s.update(func(st *task.Store) error {
		var err error
		t, err = st.ClaimNext(analyst)
		return err
	})
	if err == nil && t != nil {
		logActivity(w.s.cfg, board.ActionClaim, t.ID, t.AssignedTo, t.Title)
	}
	return t, err
}

func (w boardWorkspace) Assign(id int, analyst string) (*task.Task, error) {
	var t *task.Task
	err := w.s.update(func(st *task.Store) error {
		var err error
		t, err = st.Assign(id, analyst)
		return err
	})
	if err == nil {
		logActivity(w.s.cfg, board.ActionAssign, t.ID, t.AssignedTo, "")
	}
	return t, err
}

func (w boardWorkspace) Transition(id int, to task.Status) (*task.Task, error) {
	var t *task.Task
	err := w.s.update(func(st *task.Store) error {
		var err error
		t, err = st.Transition(id, to)
		return err
	})
	if err == nil {
		logActivity(w.s.cfg, board.ActionMove, t.ID, t.AssignedTo, string(to))
	}
	return t, err
}

func (w boardWorkspace) Clear() (int, error) {
	var n int
	err := w.s.update(func(st *task.Store) error {
		n = st.Clear()
		return nil
	})
	if err == nil {
		logActivity(w.s.cfg, board.ActionClear, 0, "", fmt.Sprintf("%d tasks", n))
	}
	return n, err
}
