package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/armsboard/internal/board"
	"github.com/twiced-technology-gmbh/armsboard/internal/clierr"
	"github.com/twiced-technology-gmbh/armsboard/internal/config"
	"github.com/twiced-technology-gmbh/armsboard/internal/output"
	"github.com/twiced-technology-gmbh/armsboard/internal/task"
	"github.com/twiced-technology-gmbh/armsboard/internal/watcher"
)

var boardCmd = &cobra.Command{
	Use:     "board",
	Aliases: []string{"summary"},
	Short:   "Show the team summary",
	Long: `Displays task counts per status with unassigned and overdue counts, the
priority distribution, and each analyst's open and completed work.

Use --watch to keep the display live-updating. The summary re-renders whenever
another armsboard process changes the workspace. Press Ctrl+C to stop.`,
	RunE: runBoard,
}

func init() {
	boardCmd.Flags().BoolP("watch", "w", false, "live-update the summary on workspace changes")
	boardCmd.Flags().String("group-by", "", "group tasks by field ("+strings.Join(board.ValidGroupByFields(), ", ")+")")
	rootCmd.AddCommand(boardCmd)
}

func runBoard(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	groupBy, _ := cmd.Flags().GetString("group-by")
	if groupBy != "" && !slices.Contains(board.ValidGroupByFields(), groupBy) {
		return clierr.Newf(clierr.InvalidGroupBy, "invalid --group-by field %q; valid: %s",
			groupBy, strings.Join(board.ValidGroupByFields(), ", "))
	}

	if err := renderBoard(cfg, groupBy); err != nil {
		return err
	}

	if watch, _ := cmd.Flags().GetBool("watch"); !watch {
		return nil
	}
	return watchBoard(cfg, groupBy)
}

func renderBoard(cfg *config.Config, groupBy string) error {
	var tasks []*task.Task
	if err := newSession(cfg).view(func(st *task.Store) error {
		tasks = st.All()
		return nil
	}); err != nil {
		return err
	}
	now := time.Now()

	if groupBy != "" {
		grouped, err := board.GroupBy(tasks, groupBy, now)
		if err != nil {
			return err
		}
		if outputFormat() == output.FormatJSON {
			return output.JSON(os.Stdout, grouped)
		}
		output.GroupedTable(os.Stdout, grouped)
		return nil
	}

	summary := board.Summary(cfg.Team.Name, cfg.AnalystNames(), tasks, now)

	format := outputFormat()
	if format == output.FormatJSON {
		return output.JSON(os.Stdout, summary)
	}
	if format == output.FormatCompact {
		output.OverviewCompact(os.Stdout, summary)
		return nil
	}

	output.OverviewTable(os.Stdout, summary)
	return nil
}

func watchBoard(cfg *config.Config, groupBy string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w, err := watcher.New([]string{cfg.Dir()}, func([]string) {
		clearScreen()
		freshCfg, loadErr := config.Load(cfg.Dir())
		if loadErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: reloading config: %v\n", loadErr)
			freshCfg = cfg
		}
		if renderErr := renderBoard(freshCfg, groupBy); renderErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: rendering board: %v\n", renderErr)
		}
	}, watcher.WithFilter(workspaceChange))
	if err != nil {
		return fmt.Errorf("starting file watcher: %w", err)
	}
	defer w.Close()

	fmt.Fprintln(os.Stderr, "Watching for changes... (Ctrl+C to stop)")

	w.Run(ctx, func(watchErr error) {
		fmt.Fprintf(os.Stderr, "Warning: file watcher: %v\n", watchErr)
	})
	return nil
}

// workspaceChange reports whether an event on path means the board changed.
// Every mutation appends to the activity log; database files are ignored
// because reading them touches the shared-memory file.
func workspaceChange(path string) bool {
	switch filepath.Base(path) {
	case config.ActivityFileName, config.ConfigFileName:
		return true
	}
	return false
}

// clearScreen sends ANSI escape codes to clear the terminal and move the
// cursor to the top-left corner.
func clearScreen() {
	fmt.Fprint(os.Stdout, "\033[2J\033[H")
}
