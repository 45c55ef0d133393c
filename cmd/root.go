// Package cmd implements the armsboard CLI commands.
package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/armsboard/internal/board"
	"github.com/twiced-technology-gmbh/armsboard/internal/clierr"
	"github.com/twiced-technology-gmbh/armsboard/internal/config"
	"github.com/twiced-technology-gmbh/armsboard/internal/logging"
	"github.com/twiced-technology-gmbh/armsboard/internal/output"
)

// version is set at build time via ldflags.
var version = "dev"

// EnvAnalyst names the environment variable that supplies --as.
const EnvAnalyst = "ARMSBOARD_ANALYST"

// Global flags.
var (
	flagJSON    bool
	flagTable   bool
	flagCompact bool
	flagDir     string
	flagNoColor bool
	flagAs      string
)

var rootCmd = &cobra.Command{
	Use:   "armsboard",
	Short: "Task board for an ARMS analyst team",
	Long: `armsboard tracks the ARMS team's filing work: tasks are created by hand,
imported from spreadsheets and message files, picked up by analysts in order,
and moved through New, InProgress, Paused and Completed.

It also filters and aggregates spreadsheet data and keeps named measures.
Run armsboard tui for the interactive board.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if flagNoColor || os.Getenv("NO_COLOR") != "" {
			output.DisableColor()
			lipgloss.SetColorProfile(termenv.Ascii)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagTable, "table", false, "output as table")
	rootCmd.PersistentFlags().BoolVar(&flagCompact, "compact", false, "compact one-line-per-record output")
	rootCmd.PersistentFlags().BoolVar(&flagCompact, "oneline", false, "alias for --compact")
	rootCmd.PersistentFlags().StringVar(&flagDir, "dir", "", "path to the armsboard workspace")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable color output")
	rootCmd.PersistentFlags().StringVar(&flagAs, "as", "",
		"analyst acting on the board (default $"+EnvAnalyst+")")
}

// Execute runs the root command.
func Execute() {
	_, err := rootCmd.ExecuteC()
	logging.Shutdown()
	if err == nil {
		return
	}

	var silent *clierr.SilentError
	if errors.As(err, &silent) {
		os.Exit(silent.Code)
	}

	if outputFormat() == output.FormatJSON {
		var cliErr *clierr.Error
		if errors.As(err, &cliErr) {
			output.JSONError(os.Stdout, cliErr.Code, cliErr.Message, cliErr.Details)
			os.Exit(cliErr.ExitCode())
		}
		output.JSONError(os.Stdout, clierr.InternalError, err.Error(), nil)
		os.Exit(2) //nolint:mnd // exit code 2 for internal errors
	}

	fmt.Fprintln(os.Stderr, "Error:", err)
	var cliErr *clierr.Error
	if errors.As(err, &cliErr) {
		os.Exit(cliErr.ExitCode())
	}
	os.Exit(1)
}

// resolveDir returns the workspace directory from --dir or by searching
// upward from the working directory.
func resolveDir() (string, error) {
	if flagDir != "" {
		return flagDir, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}
	return config.FindDir(cwd)
}

// loadConfig finds and loads the workspace config and starts file logging.
func loadConfig() (*config.Config, error) {
	dir, err := resolveDir()
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(dir)
	if errors.Is(err, config.ErrNotFound) {
		return nil, clierr.Newf(clierr.WorkspaceNotFound, "%v", err).
			WithDetails(map[string]any{"dir": dir})
	}
	if err != nil {
		return nil, err
	}

	if err := logging.Init(cfg.Logging()); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: file logging disabled: %v\n", err)
	}
	return cfg, nil
}

// outputFormat returns the detected output format from flags/env.
func outputFormat() output.Format {
	return output.Detect(flagJSON, flagTable, flagCompact)
}

// currentAnalyst returns the analyst named by --as or the environment.
func currentAnalyst() string {
	if flagAs != "" {
		return strings.TrimSpace(flagAs)
	}
	return strings.TrimSpace(os.Getenv(EnvAnalyst))
}

// requireAnalyst returns the acting analyst or a validation error naming
// the flag to set.
func requireAnalyst() (string, error) {
	a := currentAnalyst()
	if a == "" {
		return "", clierr.Newf(clierr.ValidationFailed,
			"no analyst given; pass --as NAME or set %s", EnvAnalyst).
			WithDetails(map[string]any{"field": "analyst"})
	}
	return a, nil
}

// logActivity appends an entry to the activity log.
func logActivity(cfg *config.Config, action string, taskID int, analyst, detail string) {
	board.LogMutation(cfg.ActivityPath(), action, taskID, analyst, detail)
}

// runBatch executes fn for each ID and collects results. Returns a SilentError
// with exit code 1 if any operation failed (after outputting results).
func runBatch(ids []int, fn func(int) (string, error)) error {
	results := make([]output.BatchResult, 0, len(ids))
	anyFailed := false

	for _, id := range ids {
		status, err := fn(id)
		if err != nil {
			anyFailed = true
			var cliErr *clierr.Error
			if errors.As(err, &cliErr) {
				results = append(results, output.BatchResult{ID: id, OK: false, Error: cliErr.Message, Code: cliErr.Code})
			} else {
				results = append(results, output.BatchResult{ID: id, OK: false, Error: err.Error()})
			}
			continue
		}
		results = append(results, output.BatchResult{ID: id, OK: true, Status: status})
	}

	if outputFormat() == output.FormatJSON {
		if err := output.JSON(os.Stdout, results); err != nil {
			return err
		}
	} else {
		var succeeded int
		for _, r := range results {
			if r.OK {
				succeeded++
				output.Messagef(os.Stdout, "Task #%d -> %s", r.ID, r.Status)
			} else {
				fmt.Fprintf(os.Stderr, "Error: task #%d: %s\n", r.ID, r.Error)
			}
		}
		if len(ids) > 1 {
			output.Messagef(os.Stdout, "Completed %d/%d operations", succeeded, len(ids))
		}
	}

	if anyFailed {
		return &clierr.SilentError{Code: 1}
	}
	return nil
}
