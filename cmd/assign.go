package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/armsboard/internal/board"
	"github.com/twiced-technology-gmbh/armsboard/internal/output"
	"github.com/twiced-technology-gmbh/armsboard/internal/task"
)

var assignCmd = &cobra.Command{
	Use:   "assign ID[,ID,...] [ANALYST]",
	Short: "Assign tasks to an analyst",
	Long: `Gives each task to an analyst and moves it to InProgress. The analyst
defaults to --as. Tasks already owned by someone else are refused; there is
no reassignment.`,
	Args: cobra.RangeArgs(1, 2), //nolint:mnd // ids and optional analyst
	RunE: runAssign,
}

func init() {
	rootCmd.AddCommand(assignCmd)
}

func runAssign(_ *cobra.Command, args []string) error {
	ids, err := board.ParseIDs(args[0])
	if err != nil {
		return err
	}

	analyst := currentAnalyst()
	if len(args) == 2 { //nolint:mnd // positional analyst
		analyst = args[1]
	}
	if err := task.ValidateAnalyst(analyst); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s := newSession(cfg)

	assign := func(id int) (*task.Task, error) {
		var t *task.Task
		err := s.update(func(st *task.Store) error {
			var err error
			t, err = st.Assign(id, analyst)
			return err
		})
		if err != nil {
			return nil, err
		}
		logActivity(cfg, board.ActionAssign, t.ID, t.AssignedTo, "")
		return t, nil
	}

	if len(ids) == 1 {
		t, err := assign(ids[0])
		if err != nil {
			return err
		}
		if outputFormat() == output.FormatJSON {
			return output.JSON(os.Stdout, t)
		}
		output.Messagef(os.Stdout, "Assigned task #%d to %s (%s)", t.ID, t.AssignedTo, t.Status)
		return nil
	}

	return runBatch(ids, func(id int) (string, error) {
		t, err := assign(id)
		if err != nil {
			return "", err
		}
		return string(t.Status), nil
	})
}
