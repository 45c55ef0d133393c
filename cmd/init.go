package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/armsboard/internal/config"
	"github.com/twiced-technology-gmbh/armsboard/internal/output"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new armsboard workspace",
	Long: `Creates a workspace directory with config.yml, an import inbox and a log
directory. The task database is created on first use.

Analysts are given as NAME or NAME:ROLE and may be repeated.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().String("team", config.DefaultTeam, "team name")
	initCmd.Flags().StringArray("analyst", nil, "analyst on the roster (NAME or NAME:ROLE, repeatable)")
	initCmd.Flags().Bool("user", false, "initialize the per-user workspace instead of ./"+config.DefaultDir)
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, _ []string) error {
	dir := flagDir
	if user, _ := cmd.Flags().GetBool("user"); user && dir == "" {
		d, err := config.UserDir()
		if err != nil {
			return err
		}
		dir = d
	}
	if dir == "" {
		dir = config.DefaultDir
	}

	team, _ := cmd.Flags().GetString("team")
	cfg, err := config.Init(dir, team)
	if err != nil {
		return err
	}

	if analysts, _ := cmd.Flags().GetStringArray("analyst"); len(analysts) > 0 {
		for _, a := range analysts {
			name, role, _ := strings.Cut(a, ":")
			cfg.Analysts = append(cfg.Analysts, config.AnalystConfig{
				Name: strings.TrimSpace(name),
				Role: strings.TrimSpace(role),
			})
		}
		if err := cfg.Validate(); err != nil {
			_ = os.RemoveAll(cfg.Dir())
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]any{
			"status":   "initialized",
			"dir":      cfg.Dir(),
			"team":     cfg.Team.Name,
			"config":   cfg.ConfigPath(),
			"inbox":    cfg.InboxPath(),
			"analysts": cfg.AnalystNames(),
		})
	}

	output.Messagef(os.Stdout, "Initialized workspace for %s in %s", cfg.Team.Name, cfg.Dir())
	output.Messagef(os.Stdout, "  Config:    %s", cfg.ConfigPath())
	output.Messagef(os.Stdout, "  Inbox:     %s", cfg.InboxPath())
	output.Messagef(os.Stdout, "  Workflows: %s", strings.Join(cfg.WorkflowNames(), ", "))
	if names := cfg.AnalystNames(); len(names) > 0 {
		output.Messagef(os.Stdout, "  Analysts:  %s", strings.Join(names, ", "))
	}
	return nil
}
