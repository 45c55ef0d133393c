package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesToDatedFile(t *testing.T) {
	dir := t.TempDir()
	l, err := New(Config{Level: "debug", Path: dir, Format: "json"})
	require.NoError(t, err)

	l.WithComponent("store").Info().Int("task_id", 7).Msg("created task")
	require.NoError(t, l.Close())

	files, err := l.LogFiles()
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Contains(t, filepath.Base(files[0]), time.Now().Format("2006-01-02"))

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(string(data))), &entry))
	assert.Equal(t, "store", entry["component"])
	assert.Equal(t, "created task", entry["message"])
	assert.EqualValues(t, 7, entry["task_id"])
}

func TestInvalidLevel(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	assert.Error(t, err)
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, zerolog.WarnLevel)
	l.Info().Msg("hidden")
	l.Warn().Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestCleanOldLogs(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, filePrefix+time.Now().AddDate(0, 0, -30).Format("2006-01-02")+".log")
	require.NoError(t, os.WriteFile(old, []byte("{}\n"), 0o600))

	l, err := New(Config{Path: dir, RetentionDays: 7})
	require.NoError(t, err)
	defer l.Close()

	_, err = os.Stat(old)
	assert.True(t, os.IsNotExist(err))
}

func TestGlobalLogger(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Init(Config{Path: dir}))
	defer Shutdown()

	Component("import").Info().Msg("hello")
	files, err := Get().LogFiles()
	require.NoError(t, err)
	assert.Len(t, files, 1)
}
