package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/armsboard/internal/clierr"
	"github.com/twiced-technology-gmbh/armsboard/internal/config"
	"github.com/twiced-technology-gmbh/armsboard/internal/output"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify workspace configuration",
	Long:  `View the full configuration, get a specific key, or set a writable value.`,
	RunE:  runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get KEY",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Set a configuration value",
	Long: `Sets a writable configuration value. The analysts key takes a
comma-separated roster of NAME or NAME:ROLE entries.`,
	Args: cobra.ExactArgs(2), //nolint:mnd // key and value
	RunE: runConfigSet,
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

// configAccessor describes how to get and set a config key.
type configAccessor struct {
	get func(*config.Config) any
	set func(*config.Config, string) error
}

func (a configAccessor) writable() bool { return a.set != nil }

func stringAccessor(field func(*config.Config) *string) configAccessor {
	return configAccessor{
		get: func(c *config.Config) any { return *field(c) },
		set: func(c *config.Config, v string) error { *field(c) = v; return nil },
	}
}

func intAccessor(key string, field func(*config.Config) *int) configAccessor {
	return configAccessor{
		get: func(c *config.Config) any { return *field(c) },
		set: func(c *config.Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return clierr.Newf(clierr.ValidationFailed,
					"invalid %s %q: must be an integer", key, v)
			}
			*field(c) = n
			return nil // validation handles range check
		},
	}
}

func configAccessors() map[string]configAccessor {
	return map[string]configAccessor{
		"version": {
			get: func(c *config.Config) any { return c.Version },
		},
		"team.name":        stringAccessor(func(c *config.Config) *string { return &c.Team.Name }),
		"team.description": stringAccessor(func(c *config.Config) *string { return &c.Team.Description }),
		"analysts": {
			get: func(c *config.Config) any { return c.AnalystNames() },
			set: func(c *config.Config, v string) error {
				c.Analysts = parseRoster(v)
				return nil
			},
		},
		"defaults.company":       stringAccessor(func(c *config.Config) *string { return &c.Defaults.Company }),
		"defaults.document_type": stringAccessor(func(c *config.Config) *string { return &c.Defaults.DocumentType }),
		"defaults.department":    stringAccessor(func(c *config.Config) *string { return &c.Defaults.Department }),
		"defaults.priority":      stringAccessor(func(c *config.Config) *string { return &c.Defaults.Priority }),
		"defaults.due_days":      intAccessor("defaults.due_days", func(c *config.Config) *int { return &c.Defaults.DueDays }),
		"import.inbox_dir":       stringAccessor(func(c *config.Config) *string { return &c.Import.InboxDir }),
		"import.default_status":  stringAccessor(func(c *config.Config) *string { return &c.Import.DefaultStatus }),
		"log.level":              stringAccessor(func(c *config.Config) *string { return &c.Log.Level }),
		"log.format":             stringAccessor(func(c *config.Config) *string { return &c.Log.Format }),
		"log.retention_days":     intAccessor("log.retention_days", func(c *config.Config) *int { return &c.Log.RetentionDays }),
		"db_file": {
			get: func(c *config.Config) any { return c.DBFile },
		},
		"workflows": {
			get: func(c *config.Config) any { return c.WorkflowNames() },
		},
		"tui.title_lines": intAccessor("tui.title_lines", func(c *config.Config) *int { return &c.TUI.TitleLines }),
		"tui.age_thresholds": {
			get: func(c *config.Config) any { return c.TUI.AgeThresholds },
		},
	}
}

// allConfigKeys returns config keys in display order.
func allConfigKeys() []string {
	return []string{
		"version",
		"team.name",
		"team.description",
		"analysts",
		"defaults.company",
		"defaults.document_type",
		"defaults.department",
		"defaults.priority",
		"defaults.due_days",
		"workflows",
		"import.inbox_dir",
		"import.default_status",
		"log.level",
		"log.format",
		"log.retention_days",
		"db_file",
		"tui.title_lines",
		"tui.age_thresholds",
	}
}

// parseRoster parses "Jane, Raj:Lead" into roster entries.
func parseRoster(v string) []config.AnalystConfig {
	var out []config.AnalystConfig
	for _, part := range strings.Split(v, ",") {
		name, role, _ := strings.Cut(part, ":")
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		out = append(out, config.AnalystConfig{Name: name, Role: strings.TrimSpace(role)})
	}
	return out
}

func runConfigShow(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	accessors := configAccessors()

	if outputFormat() == output.FormatJSON {
		m := make(map[string]any, len(accessors))
		for _, key := range allConfigKeys() {
			m[key] = accessors[key].get(cfg)
		}
		return output.JSON(os.Stdout, m)
	}

	for _, key := range allConfigKeys() {
		val := accessors[key].get(cfg)
		fmt.Fprintf(os.Stdout, "%-24s %v\n", key, formatConfigValue(val))
	}
	return nil
}

func runConfigGet(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	key := args[0]
	acc, ok := configAccessors()[key]
	if !ok {
		return unknownConfigKey(key)
	}

	val := acc.get(cfg)
	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, val)
	}

	fmt.Fprintln(os.Stdout, formatConfigValue(val))
	return nil
}

func runConfigSet(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	key, value := args[0], args[1]
	acc, ok := configAccessors()[key]
	if !ok {
		return unknownConfigKey(key)
	}
	if !acc.writable() {
		return clierr.Newf(clierr.ValidationFailed, "config key %q is read-only", key)
	}

	if err := acc.set(cfg, value); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]any{"key": key, "value": acc.get(cfg)})
	}

	output.Messagef(os.Stdout, "Set %s = %v", key, formatConfigValue(acc.get(cfg)))
	return nil
}

func unknownConfigKey(key string) error {
	return clierr.Newf(clierr.ValidationFailed, "unknown config key %q", key).
		WithDetails(map[string]any{"key": key, "allowed": allConfigKeys()})
}

func formatConfigValue(val any) string {
	switch v := val.(type) {
	case []string:
		if len(v) == 0 {
			return "--"
		}
		return strings.Join(v, ", ")
	case []config.AgeThreshold:
		parts := make([]string, 0, len(v))
		for _, t := range v {
			parts = append(parts, t.After+"="+t.Color)
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprintf("%v", v)
	}
}
