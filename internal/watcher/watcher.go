// Package watcher provides debounced file system watching for the import
// inbox and the workspace directory.
package watcher

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/twiced-technology-gmbh/armsboard/internal/logging"
)

// DefaultDelay is the quiet period after the last file event before the
// callback runs. Spreadsheets are often written in several chunks.
const DefaultDelay = 500 * time.Millisecond

// Watcher watches directories and invokes a callback with the set of paths
// that were created or written since the last call.
type Watcher struct {
	fsw      *fsnotify.Watcher
	delay    time.Duration
	callback func(paths []string)
	keep     func(path string) bool
	log      *logging.Logger

	mu      sync.Mutex
	timer   *time.Timer
	pending map[string]struct{}
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDelay overrides DefaultDelay.
func WithDelay(d time.Duration) Option {
	return func(w *Watcher) { w.delay = d }
}

// WithFilter drops events for paths keep rejects.
func WithFilter(keep func(path string) bool) Option {
	return func(w *Watcher) { w.keep = keep }
}

// New creates a Watcher that monitors the given directories.
func New(paths []string, callback func(paths []string), opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, p := range paths {
		if err := fsw.Add(p); err != nil {
			_ = fsw.Close()
			return nil, err
		}
	}

	w := &Watcher{
		fsw:      fsw,
		delay:    DefaultDelay,
		callback: callback,
		log:      logging.Component("watcher"),
		pending:  make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Run starts the watch loop. It blocks until the context is canceled.
// Errors from the underlying watcher are passed to the optional errFn callback.
func (w *Watcher) Run(ctx context.Context, errFn func(error)) {
	for {
		select {
		case <-ctx.Done():
			w.mu.Lock()
			if w.timer != nil {
				w.timer.Stop()
			}
			w.mu.Unlock()
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			// Removals matter for board refreshes but carry no file to read.
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if w.keep != nil && !w.keep(event.Name) {
				continue
			}
			w.log.Debug().Str("path", event.Name).Str("op", event.Op.String()).Msg("file event")
			w.debounce(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			if errFn != nil {
				errFn(err)
			}
		}
	}
}

// Close stops the underlying filesystem watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func (w *Watcher) debounce(event fsnotify.Event) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if event.Op&(fsnotify.Create|fsnotify.Write) != 0 {
		w.pending[event.Name] = struct{}{}
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.delay, w.flush)
}

func (w *Watcher) flush() {
	w.mu.Lock()
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	w.pending = make(map[string]struct{})
	w.mu.Unlock()

	sort.Strings(paths)
	w.callback(paths)
}
