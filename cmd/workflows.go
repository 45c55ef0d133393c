package cmd

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/armsboard/internal/board"
	"github.com/twiced-technology-gmbh/armsboard/internal/output"
	"github.com/twiced-technology-gmbh/armsboard/internal/task"
)

var workflowsCmd = &cobra.Command{
	Use:   "workflows",
	Short: "List the workflow catalog with current load",
	Long: `Lists the configured workflows with their priority, SLA and monthly
target, and counts the open, overdue and completed tasks whose document type
names the workflow.`,
	Args: cobra.NoArgs,
	RunE: runWorkflows,
}

func init() {
	rootCmd.AddCommand(workflowsCmd)
}

func runWorkflows(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var tasks []*task.Task
	if err := newSession(cfg).view(func(st *task.Store) error {
		tasks = st.All()
		return nil
	}); err != nil {
		return err
	}

	loads := board.Workflows(cfg.Workflows, tasks, time.Now())
	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, loads)
	}
	output.WorkflowTable(os.Stdout, loads)
	return nil
}
