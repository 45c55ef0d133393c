package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/armsboard/internal/board"
	"github.com/twiced-technology-gmbh/armsboard/internal/output"
	"github.com/twiced-technology-gmbh/armsboard/internal/task"
)

var moveCmd = &cobra.Command{
	Use:   "move ID[,ID,...] STATUS",
	Short: "Move tasks to a different status",
	Long: `Changes the status of one or more tasks. Legal moves are
New -> InProgress, InProgress -> Paused or Completed, and Paused -> InProgress.
Completed is final. A New task must be assigned before it can start.`,
	Args: cobra.ExactArgs(2), //nolint:mnd // ids and status
	RunE: runMove,
}

var startCmd = &cobra.Command{
	Use:   "start ID[,ID,...]",
	Short: "Start New tasks",
	Long: `Moves New tasks to InProgress. An unassigned task is assigned to the
--as analyst first.`,
	Args: cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return runShortcut(args[0], task.StatusInProgress, true)
	},
}

var pauseCmd = &cobra.Command{
	Use:   "pause ID[,ID,...]",
	Short: "Pause InProgress tasks",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return runShortcut(args[0], task.StatusPaused, false)
	},
}

var resumeCmd = &cobra.Command{
	Use:   "resume ID[,ID,...]",
	Short: "Resume Paused tasks",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return runShortcut(args[0], task.StatusInProgress, false)
	},
}

var completeCmd = &cobra.Command{
	Use:     "complete ID[,ID,...]",
	Aliases: []string{"done"},
	Short:   "Complete InProgress tasks",
	Args:    cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return runShortcut(args[0], task.StatusCompleted, false)
	},
}

func init() {
	rootCmd.AddCommand(moveCmd, startCmd, pauseCmd, resumeCmd, completeCmd)
}

func runMove(_ *cobra.Command, args []string) error {
	to, err := task.ValidateStatus(args[1])
	if err != nil {
		return err
	}
	return runShortcut(args[0], to, false)
}

// moveResult wraps a task with its previous status for JSON output.
type moveResult struct {
	*task.Task
	From task.Status `json:"from"`
}

// runShortcut moves every task in idArg to status to. With assignFirst an
// unassigned New task is given to the --as analyst instead, which starts it.
func runShortcut(idArg string, to task.Status, assignFirst bool) error {
	ids, err := board.ParseIDs(idArg)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s := newSession(cfg)
	analyst := currentAnalyst()

	move := func(id int) (moveResult, error) {
		var res moveResult
		err := s.update(func(st *task.Store) error {
			cur, err := st.Get(id)
			if err != nil {
				return err
			}
			res.From = cur.Status

			if assignFirst && cur.Status == task.StatusNew && cur.IsUnassigned() {
				if _, err := requireAnalyst(); err != nil {
					return err
				}
				res.Task, err = st.Assign(id, analyst)
				return err
			}
			res.Task, err = st.Transition(id, to)
			return err
		})
		if err != nil {
			return res, err
		}
		logActivity(cfg, board.ActionMove, id, assignedOrEmpty(res.Task),
			string(res.From)+" -> "+string(res.Status))
		return res, nil
	}

	if len(ids) == 1 {
		res, err := move(ids[0])
		if err != nil {
			return err
		}
		if outputFormat() == output.FormatJSON {
			return output.JSON(os.Stdout, res)
		}
		output.Messagef(os.Stdout, "Moved task #%d: %s -> %s", res.ID, res.From, res.Status)
		return nil
	}

	return runBatch(ids, func(id int) (string, error) {
		res, err := move(id)
		if err != nil {
			return "", err
		}
		return string(res.Status), nil
	})
}
