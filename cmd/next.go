package cmd

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/armsboard/internal/board"
	"github.com/twiced-technology-gmbh/armsboard/internal/clierr"
	"github.com/twiced-technology-gmbh/armsboard/internal/output"
	"github.com/twiced-technology-gmbh/armsboard/internal/task"
)

var nextCmd = &cobra.Command{
	Use:     "next",
	Aliases: []string{"pick"},
	Short:   "Pick the next unassigned task",
	Long: `Assigns the oldest New, unassigned task to the --as analyst and starts it.
Ties on creation time go to the lowest ID. With --peek the task is only shown.`,
	Args: cobra.NoArgs,
	RunE: runNext,
}

func init() {
	nextCmd.Flags().Bool("peek", false, "show the next task without assigning it")
	rootCmd.AddCommand(nextCmd)
}

func runNext(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	peek, _ := cmd.Flags().GetBool("peek")
	var t *task.Task

	if peek {
		err = newSession(cfg).view(func(st *task.Store) error {
			t = st.PickNextUnassigned()
			return nil
		})
	} else {
		analyst, aerr := requireAnalyst()
		if aerr != nil {
			return aerr
		}
		err = newSession(cfg).update(func(st *task.Store) error {
			var err error
			t, err = st.ClaimNext(analyst)
			return err
		})
	}
	if err != nil {
		return err
	}

	if t == nil {
		return clierr.New(clierr.NothingToPick, "no unassigned tasks are waiting")
	}
	if !peek {
		logActivity(cfg, board.ActionClaim, t.ID, t.AssignedTo, t.Title)
	}

	switch outputFormat() {
	case output.FormatJSON:
		return output.JSON(os.Stdout, t)
	case output.FormatCompact:
		output.TaskDetailCompact(os.Stdout, t)
	default:
		if !peek {
			output.Messagef(os.Stdout, "Picked task #%d for %s", t.ID, t.AssignedTo)
		}
		output.TaskDetail(os.Stdout, t, time.Now())
	}
	return nil
}
