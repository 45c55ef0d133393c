package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherReportsNewFiles(t *testing.T) {
	dir := t.TempDir()
	got := make(chan []string, 4)

	w, err := New([]string{dir}, func(paths []string) { got <- paths },
		WithDelay(200*time.Millisecond),
		WithFilter(func(p string) bool { return !strings.HasPrefix(filepath.Base(p), ".") }),
	)
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx, nil)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.csv"), []byte("Title\nx\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.eml"), []byte("Subject: x\n\nbody"), 0o600))

	select {
	case paths := <-got:
		assert.Equal(t, []string{filepath.Join(dir, "a.eml"), filepath.Join(dir, "b.csv")}, paths)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher never fired")
	}
}
