package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiced-technology-gmbh/armsboard/internal/clierr"
	"github.com/twiced-technology-gmbh/armsboard/internal/task"
)

func TestInitAndLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), DefaultDir)

	cfg, err := Init(dir, "Credit Ops")
	require.NoError(t, err)
	assert.DirExists(t, cfg.InboxPath())
	assert.DirExists(t, cfg.LogPath())
	assert.FileExists(t, cfg.ConfigPath())

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "Credit Ops", loaded.Team.Name)
	assert.Equal(t, CurrentVersion, loaded.Version)
	assert.Len(t, loaded.Workflows, len(DefaultWorkflows))
	assert.Equal(t, filepath.Join(dir, DefaultDBFile), loaded.DBPath())
	assert.Equal(t, task.StatusNew, loaded.ImportStatus())

	_, err = Init(dir, "again")
	assert.True(t, clierr.HasCode(err, clierr.WorkspaceAlreadyExists))
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveRoundTripsAnalysts(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Init(dir, DefaultTeam)
	require.NoError(t, err)

	cfg.Analysts = []AnalystConfig{{Name: "Jane"}, {Name: "Raj", Role: "lead"}}
	require.NoError(t, cfg.Save())

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"Jane", "Raj"}, loaded.AnalystNames())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"bad version", func(c *Config) { c.Version = 9 }, false},
		{"missing team", func(c *Config) { c.Team.Name = "" }, false},
		{"bad priority", func(c *Config) { c.Defaults.Priority = "urgent" }, false},
		{"lowercase priority", func(c *Config) { c.Defaults.Priority = "high" }, true},
		{"due days zero", func(c *Config) { c.Defaults.DueDays = 0 }, false},
		{"bad import status", func(c *Config) { c.Import.DefaultStatus = "Done" }, false},
		{"duplicate analyst", func(c *Config) {
			c.Analysts = []AnalystConfig{{Name: "Jane"}, {Name: "jane"}}
		}, false},
		{"reserved analyst", func(c *Config) { c.Analysts = []AnalystConfig{{Name: "Unassigned"}} }, false},
		{"blank analyst", func(c *Config) { c.Analysts = []AnalystConfig{{Name: ""}} }, false},
		{"duplicate workflow", func(c *Config) {
			c.Workflows = append(c.Workflows, WorkflowConfig{Name: "ucc", Priority: "Low", SLAHours: 1})
		}, false},
		{"workflow priority", func(c *Config) { c.Workflows[0].Priority = "Soon" }, false},
		{"log level", func(c *Config) { c.Log.Level = "loud" }, false},
		{"title lines", func(c *Config) { c.TUI.TitleLines = 5 }, false},
		{"age threshold", func(c *Config) { c.TUI.AgeThresholds = []AgeThreshold{{After: "soon", Color: "1"}} }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefault(DefaultTeam)
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestValidateNamesYAMLField(t *testing.T) {
	cfg := NewDefault(DefaultTeam)
	cfg.DBFile = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db_file is required")
}

func TestWorkflowLookup(t *testing.T) {
	cfg := NewDefault(DefaultTeam)
	w := cfg.Workflow("chapter 11")
	require.NotNil(t, w)
	assert.Equal(t, "Critical", w.Priority)
	assert.Equal(t, 24*time.Hour, w.SLA())
	assert.Nil(t, cfg.Workflow("Nope"))
}

func TestTaskDefaults(t *testing.T) {
	cfg := NewDefault(DefaultTeam)
	cfg.Defaults.Priority = "high"
	d := cfg.TaskDefaults()
	assert.Equal(t, task.PriorityHigh, d.Priority)
	assert.Equal(t, DefaultDueDays, d.DueDays)
	assert.Equal(t, task.DefaultDepartment, d.Department)
}

func TestAgeThresholdsDurationSorted(t *testing.T) {
	cfg := NewDefault(DefaultTeam)
	cfg.TUI.AgeThresholds = []AgeThreshold{{After: "2h", Color: "1"}, {After: "30m", Color: "2"}}
	got := cfg.AgeThresholdsDuration()
	require.Len(t, got, 2)
	assert.Equal(t, 30*time.Minute, got[0].After)
	assert.Equal(t, "1", got[1].Color)

	cfg.TUI.AgeThresholds = nil
	assert.Len(t, cfg.AgeThresholdsDuration(), len(DefaultAgeThresholds))
}

func TestFindDir(t *testing.T) {
	root := t.TempDir()
	_, err := Init(filepath.Join(root, DefaultDir), DefaultTeam)
	require.NoError(t, err)

	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o750))

	got, err := FindDir(nested)
	require.NoError(t, err)
	want, _ := filepath.EvalSymlinks(filepath.Join(root, DefaultDir))
	gotResolved, _ := filepath.EvalSymlinks(got)
	assert.Equal(t, want, gotResolved)

	got, err = FindDir(filepath.Join(root, DefaultDir))
	require.NoError(t, err)
	gotResolved, _ = filepath.EvalSymlinks(got)
	assert.Equal(t, want, gotResolved)
}

func TestFindDirNotFound(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	_, err := FindDir(t.TempDir())
	assert.True(t, clierr.HasCode(err, clierr.WorkspaceNotFound))
}
