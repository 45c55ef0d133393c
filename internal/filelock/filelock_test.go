package filelock

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireExcludesSecondHolder(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".lock")

	first, err := Acquire(context.Background(), path)
	require.NoError(t, err)

	_, ok, err := TryAcquire(path)
	require.NoError(t, err)
	assert.False(t, ok)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err = Acquire(ctx, path)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, first.Release())

	second, ok, err := TryAcquire(path)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, path, second.Path())
	assert.NoError(t, second.Release())
	assert.NoError(t, second.Release(), "double release is a no-op")
}

func TestAcquireWaitsForRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".lock")
	first, err := Acquire(context.Background(), path)
	require.NoError(t, err)

	go func() {
		time.Sleep(50 * time.Millisecond)
		_ = first.Release()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	second, err := Acquire(ctx, path)
	require.NoError(t, err)
	assert.NoError(t, second.Release())
}
