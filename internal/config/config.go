package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.yaml.in/yaml/v3"

	"github.com/twiced-technology-gmbh/armsboard/internal/clierr"
	"github.com/twiced-technology-gmbh/armsboard/internal/logging"
	"github.com/twiced-technology-gmbh/armsboard/internal/task"
)

const fileMode = 0o600

// Sentinel errors.
var (
	ErrNotFound = errors.New("no armsboard workspace found (run 'armsboard init' to create one)")
	ErrInvalid  = errors.New("invalid config")
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0] //nolint:mnd // name,options
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Config represents the workspace configuration.
type Config struct {
	Version   int              `yaml:"version"`
	Team      TeamConfig       `yaml:"team"`
	Analysts  []AnalystConfig  `yaml:"analysts" validate:"dive"`
	Defaults  DefaultsConfig   `yaml:"defaults"`
	Workflows []WorkflowConfig `yaml:"workflows" validate:"dive"`
	Import    ImportConfig     `yaml:"import"`
	Log       LogConfig        `yaml:"log"`
	DBFile    string           `yaml:"db_file" validate:"required"`
	TUI       TUIConfig        `yaml:"tui,omitempty"`

	// dir is the absolute path to the workspace directory (not serialized).
	dir string `yaml:"-"`
}

// TeamConfig holds team metadata.
type TeamConfig struct {
	Name        string `yaml:"name" validate:"required"`
	Description string `yaml:"description,omitempty"`
}

// AnalystConfig is one roster entry.
type AnalystConfig struct {
	Name string `yaml:"name" json:"name" validate:"required"`
	Role string `yaml:"role,omitempty" json:"role,omitempty"`
}

// DefaultsConfig holds default values for new tasks.
type DefaultsConfig struct {
	Company      string `yaml:"company,omitempty"`
	DocumentType string `yaml:"document_type,omitempty"`
	Department   string `yaml:"department,omitempty"`
	Priority     string `yaml:"priority" validate:"required"`
	DueDays      int    `yaml:"due_days" validate:"gte=1,lte=365"`
}

// WorkflowConfig is one entry in the workflow catalog.
type WorkflowConfig struct {
	Name            string `yaml:"name" json:"name" validate:"required"`
	Type            string `yaml:"type,omitempty" json:"type,omitempty"`
	TargetMetric    string `yaml:"target_metric,omitempty" json:"target_metric,omitempty"`
	MonthlyTarget   string `yaml:"monthly_target,omitempty" json:"monthly_target,omitempty"`
	Priority        string `yaml:"priority" json:"priority" validate:"required"`
	SLAHours        int    `yaml:"sla_hours" json:"sla_hours" validate:"gte=1"`
	QualityRequired bool   `yaml:"quality_required" json:"quality_required"`
}

// SLA returns the workflow's turnaround time.
func (w WorkflowConfig) SLA() time.Duration {
	return time.Duration(w.SLAHours) * time.Hour
}

// ImportConfig controls spreadsheet and message imports.
type ImportConfig struct {
	InboxDir      string `yaml:"inbox_dir" validate:"required"`
	DefaultStatus string `yaml:"default_status,omitempty"`
}

// LogConfig mirrors logging.Config.
type LogConfig struct {
	Level         string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format        string `yaml:"format" validate:"omitempty,oneof=json text"`
	RetentionDays int    `yaml:"retention_days" validate:"gte=0"`
}

// AgeThreshold maps a duration threshold to an ANSI color code.
// Tasks older than the threshold (in their current status) render in this color.
type AgeThreshold struct {
	After string `yaml:"after" json:"after"` // duration string, e.g. "1h", "24h"
	Color string `yaml:"color" json:"color"` // ANSI 256 color code, e.g. "34", "226", "196"
}

// TUIConfig holds TUI-specific display settings.
type TUIConfig struct {
	TitleLines    int            `yaml:"title_lines,omitempty"`
	AgeThresholds []AgeThreshold `yaml:"age_thresholds,omitempty"`
}

// NewDefault creates a Config with default values.
func NewDefault(team string) *Config {
	return &Config{
		Version:   CurrentVersion,
		Team:      TeamConfig{Name: team},
		Workflows: append([]WorkflowConfig{}, DefaultWorkflows...),
		Defaults: DefaultsConfig{
			Company:      task.DefaultCompany,
			DocumentType: task.DefaultDocumentType,
			Department:   task.DefaultDepartment,
			Priority:     string(task.PriorityMedium),
			DueDays:      DefaultDueDays,
		},
		Import: ImportConfig{InboxDir: DefaultInboxDir, DefaultStatus: string(task.StatusNew)},
		Log:    LogConfig{Level: "info", Format: "json", RetentionDays: 7}, //nolint:mnd // one week
		DBFile: DefaultDBFile,
		TUI:    TUIConfig{TitleLines: DefaultTitleLines},
	}
}

// Dir returns the absolute path to the workspace directory.
func (c *Config) Dir() string { return c.dir }

// SetDir sets the workspace directory path on the config.
func (c *Config) SetDir(dir string) { c.dir = dir }

// ConfigPath returns the absolute path to the config file.
func (c *Config) ConfigPath() string { return filepath.Join(c.dir, ConfigFileName) }

// DBPath returns the absolute path to the SQLite database.
func (c *Config) DBPath() string { return c.resolve(c.DBFile) }

// InboxPath returns the absolute path to the import inbox.
func (c *Config) InboxPath() string { return c.resolve(c.Import.InboxDir) }

// LogPath returns the log directory.
func (c *Config) LogPath() string { return filepath.Join(c.dir, LogDir) }

// ActivityPath returns the activity log file.
func (c *Config) ActivityPath() string { return filepath.Join(c.dir, ActivityFileName) }

// LockPath returns the lock file guarding the database.
func (c *Config) LockPath() string { return filepath.Join(c.dir, LockFileName) }

func (c *Config) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.dir, p)
}

// AnalystNames returns the roster names in configured order.
func (c *Config) AnalystNames() []string {
	names := make([]string, len(c.Analysts))
	for i, a := range c.Analysts {
		names[i] = a.Name
	}
	return names
}

// Workflow returns the named workflow (case-insensitive), or nil.
func (c *Config) Workflow(name string) *WorkflowConfig {
	for i := range c.Workflows {
		if strings.EqualFold(c.Workflows[i].Name, name) {
			return &c.Workflows[i]
		}
	}
	return nil
}

// WorkflowNames returns the catalog's names in order.
func (c *Config) WorkflowNames() []string {
	names := make([]string, len(c.Workflows))
	for i, w := range c.Workflows {
		names[i] = w.Name
	}
	return names
}

// TaskDefaults converts the defaults section for the task store.
func (c *Config) TaskDefaults() task.Defaults {
	p, _ := task.ParsePriority(c.Defaults.Priority)
	return task.Defaults{
		Company:      c.Defaults.Company,
		DocumentType: c.Defaults.DocumentType,
		Department:   c.Defaults.Department,
		Priority:     p,
		DueDays:      c.Defaults.DueDays,
	}
}

// ImportStatus returns the status given to imported rows without one.
func (c *Config) ImportStatus() task.Status {
	if st, ok := task.ParseStatus(c.Import.DefaultStatus); ok {
		return st
	}
	return task.StatusNew
}

// Logging returns the logger settings for this workspace.
func (c *Config) Logging() logging.Config {
	return logging.Config{
		Level:         c.Log.Level,
		Path:          c.LogPath(),
		Format:        c.Log.Format,
		RetentionDays: c.Log.RetentionDays,
	}
}

// TitleLines returns the configured number of title lines for TUI cards.
func (c *Config) TitleLines() int {
	if c.TUI.TitleLines == 0 {
		return DefaultTitleLines
	}
	return c.TUI.TitleLines
}

// AgeThresholdsDuration returns the age thresholds as parsed durations with color codes,
// sorted by duration ascending. Returns DefaultAgeThresholds parsed if none are configured.
func (c *Config) AgeThresholdsDuration() []struct {
	After time.Duration
	Color string
} {
	thresholds := c.TUI.AgeThresholds
	if len(thresholds) == 0 {
		thresholds = DefaultAgeThresholds
	}
	result := make([]struct {
		After time.Duration
		Color string
	}, 0, len(thresholds))
	for _, at := range thresholds {
		d, err := time.ParseDuration(at.After)
		if err != nil {
			continue
		}
		result = append(result, struct {
			After time.Duration
			Color string
		}{After: d, Color: at.Color})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].After < result[j].After })
	return result
}

// Validate checks the config for errors: struct rules first, then the
// cross-field rules the tags cannot express.
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return fmt.Errorf("%w: unsupported version %d (expected %d)", ErrInvalid, c.Version, CurrentVersion)
	}
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("%w: %w", ErrInvalid, err)
		}
		msgs := make([]string, 0, len(verrs))
		for _, e := range verrs {
			msgs = append(msgs, formatFieldError(e))
		}
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
	}
	if _, ok := task.ParsePriority(c.Defaults.Priority); !ok {
		return fmt.Errorf("%w: defaults.priority %q is not one of %v", ErrInvalid, c.Defaults.Priority, task.Priorities)
	}
	if c.Import.DefaultStatus != "" {
		if _, ok := task.ParseStatus(c.Import.DefaultStatus); !ok {
			return fmt.Errorf("%w: import.default_status %q is not one of %v", ErrInvalid, c.Import.DefaultStatus, task.Statuses)
		}
	}
	if err := c.validateAnalysts(); err != nil {
		return err
	}
	if err := c.validateWorkflows(); err != nil {
		return err
	}
	return c.validateTUI()
}

func (c *Config) validateAnalysts() error {
	seen := make(map[string]bool, len(c.Analysts))
	for _, a := range c.Analysts {
		key := strings.ToLower(strings.TrimSpace(a.Name))
		if strings.EqualFold(key, task.Unassigned) {
			return fmt.Errorf("%w: %q is reserved and cannot be an analyst", ErrInvalid, task.Unassigned)
		}
		if seen[key] {
			return fmt.Errorf("%w: duplicate analyst %q", ErrInvalid, a.Name)
		}
		seen[key] = true
	}
	return nil
}

func (c *Config) validateWorkflows() error {
	seen := make(map[string]bool, len(c.Workflows))
	for _, w := range c.Workflows {
		key := strings.ToLower(w.Name)
		if seen[key] {
			return fmt.Errorf("%w: duplicate workflow %q", ErrInvalid, w.Name)
		}
		seen[key] = true
		if _, ok := task.ParsePriority(w.Priority); !ok {
			return fmt.Errorf("%w: workflow %q priority %q is not one of %v", ErrInvalid, w.Name, w.Priority, task.Priorities)
		}
	}
	return nil
}

func (c *Config) validateTUI() error {
	const minTitleLines, maxTitleLines = 1, 3
	if c.TUI.TitleLines != 0 && (c.TUI.TitleLines < minTitleLines || c.TUI.TitleLines > maxTitleLines) {
		return fmt.Errorf("%w: tui.title_lines must be between %d and %d",
			ErrInvalid, minTitleLines, maxTitleLines)
	}
	for i, at := range c.TUI.AgeThresholds {
		if _, err := time.ParseDuration(at.After); err != nil {
			return fmt.Errorf("%w: tui.age_thresholds[%d].after %q: %w", ErrInvalid, i, at.After, err)
		}
		if at.Color == "" {
			return fmt.Errorf("%w: tui.age_thresholds[%d].color is required", ErrInvalid, i)
		}
	}
	return nil
}

func formatFieldError(e validator.FieldError) string {
	field := e.Namespace()
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest
	}
	switch e.Tag() {
	case "required":
		return field + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, e.Param())
	case "gte":
		return fmt.Sprintf("%s must be >= %s", field, e.Param())
	case "lte":
		return fmt.Sprintf("%s must be <= %s", field, e.Param())
	default:
		return fmt.Sprintf("%s failed %s", field, e.Tag())
	}
}

// Init creates a new workspace in dir: the config file, the inbox and the
// log directory.
func Init(dir, team string) (*Config, error) {
	const dirMode = 0o750

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	if _, err := os.Stat(filepath.Join(absDir, ConfigFileName)); err == nil {
		return nil, clierr.Newf(clierr.WorkspaceAlreadyExists, "workspace already exists at %s", absDir).
			WithDetails(map[string]any{"dir": absDir})
	}

	cfg := NewDefault(team)
	cfg.SetDir(absDir)

	for _, d := range []string{absDir, cfg.InboxPath(), cfg.LogPath()} {
		if err := os.MkdirAll(d, dirMode); err != nil {
			return nil, fmt.Errorf("creating %s: %w", d, err)
		}
	}

	if err := cfg.Save(); err != nil {
		return nil, fmt.Errorf("writing config: %w", err)
	}
	return cfg, nil
}

// Save writes the config to its config file.
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(c.ConfigPath(), data, fileMode)
}

// Load reads and validates a config from the given workspace directory.
func Load(dir string) (*Config, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	path := filepath.Join(absDir, ConfigFileName)
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted source
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.dir = absDir

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FindDir walks upward from startDir looking for a workspace directory
// containing config.yml, then falls back to the per-user workspace.
func FindDir(startDir string) (string, error) {
	absStart, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	dir := absStart
	for {
		candidate := filepath.Join(dir, DefaultDir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return filepath.Join(dir, DefaultDir), nil
		}

		// Also check if we're inside the workspace directory itself.
		candidate = filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil && filepath.Base(dir) == DefaultDir {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	if user, err := UserDir(); err == nil {
		if _, err := os.Stat(filepath.Join(user, ConfigFileName)); err == nil {
			return user, nil
		}
	}
	return "", clierr.New(clierr.WorkspaceNotFound,
		"no armsboard workspace found (run 'armsboard init' to create one)")
}

// UserDir returns the per-user workspace, ~/.config/armsboard.
func UserDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating user config dir: %w", err)
	}
	return filepath.Join(base, "armsboard"), nil
}
