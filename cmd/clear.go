package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/twiced-technology-gmbh/armsboard/internal/board"
	"github.com/twiced-technology-gmbh/armsboard/internal/clierr"
	"github.com/twiced-technology-gmbh/armsboard/internal/output"
	"github.com/twiced-technology-gmbh/armsboard/internal/task"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every task from the board",
	Long: `Removes all tasks. Task IDs keep counting from where they were, and
previously imported files may be imported again. Saved measures are kept.`,
	Args: cobra.NoArgs,
	RunE: runClear,
}

func init() {
	clearCmd.Flags().BoolP("yes", "y", false, "skip confirmation prompt")
	rootCmd.AddCommand(clearCmd)
}

func runClear(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s := newSession(cfg)

	var count int
	if err := s.view(func(st *task.Store) error {
		count = st.Len()
		return nil
	}); err != nil {
		return err
	}

	if yes, _ := cmd.Flags().GetBool("yes"); !yes && count > 0 {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return clierr.New(clierr.ConfirmationReq,
				"cannot prompt for confirmation (not a terminal); use --yes")
		}
		fmt.Fprintf(os.Stderr, "Remove all %d tasks from %s? [y/N] ", count, cfg.Team.Name)
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		answer = strings.TrimSpace(strings.ToLower(answer))
		if answer != "y" && answer != "yes" {
			fmt.Fprintln(os.Stderr, "Canceled.")
			return nil
		}
	}

	var removed int
	if err := s.update(func(st *task.Store) error {
		removed = st.Clear()
		return nil
	}); err != nil {
		return err
	}
	logActivity(cfg, board.ActionClear, 0, currentAnalyst(), fmt.Sprintf("%d tasks", removed))

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]any{"status": "cleared", "removed": removed})
	}
	output.Messagef(os.Stdout, "Removed %d tasks", removed)
	return nil
}
