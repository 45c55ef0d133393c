package cmd

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/armsboard/internal/tui"
	"github.com/twiced-technology-gmbh/armsboard/internal/watcher"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive board",
	Long: `Opens a board with one column per status. Keys: n picks the next task,
a assigns the selected task to you, s starts, p pauses, r resumes,
c completes, enter shows details, C clears the board, q quits.

Pass --as (or set ` + EnvAnalyst + `) to pick and assign tasks.`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.RunE = runTUI
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	model := tui.NewBoard(cfg, boardWorkspace{s: newSession(cfg)}, currentAnalyst())
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go startTUIWatcher(ctx, model, p)

	_, err = p.Run()
	return err
}

func startTUIWatcher(ctx context.Context, model *tui.Board, p *tea.Program) {
	w, err := watcher.New(model.WatchPaths(), func([]string) {
		p.Send(tui.ReloadMsg{})
	}, watcher.WithFilter(workspaceChange))
	if err != nil {
		p.Send(tui.ErrMsg{Err: err})
		return
	}
	defer w.Close()
	w.Run(ctx, func(err error) {
		p.Send(tui.ErrMsg{Err: err})
	})
}
