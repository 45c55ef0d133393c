package cmd

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/twiced-technology-gmbh/armsboard/internal/board"
	"github.com/twiced-technology-gmbh/armsboard/internal/clierr"
	"github.com/twiced-technology-gmbh/armsboard/internal/config"
	"github.com/twiced-technology-gmbh/armsboard/internal/date"
	"github.com/twiced-technology-gmbh/armsboard/internal/output"
	"github.com/twiced-technology-gmbh/armsboard/internal/task"
)

var createCmd = &cobra.Command{
	Use:     "create [TITLE]",
	Aliases: []string{"add"},
	Short:   "Create a new task",
	Long: `Creates a task with the given title. Fields left out take the workspace
defaults: company, document type, department, priority Medium and a due date
a week after creation.

--workflow picks an entry from the workflow catalog: the document type becomes
the workflow name, the priority defaults to the workflow's priority and the
due date to the end of its SLA.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCreate,
}

func init() {
	createCmd.Flags().String("title", "", "task title (alternative to positional argument)")
	createCmd.Flags().String("company", "", "company the filing concerns")
	createCmd.Flags().String("type", "", "document type")
	createCmd.Flags().String("department", "", "department")
	createCmd.Flags().String("priority", "", "Low, Medium, High or Critical")
	createCmd.Flags().String("status", "", "initial status (anything but New needs --assign)")
	createCmd.Flags().String("assign", "", "analyst to pre-assign")
	createCmd.Flags().String("due", "", "due date (YYYY-MM-DD, MM/DD/YYYY, ...)")
	createCmd.Flags().String("description", "", "task description (markdown)")
	createCmd.Flags().String("workflow", "", "workflow from the catalog")
	createCmd.Flags().SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		switch name {
		case "body":
			name = "description"
		case "document-type":
			name = "type"
		case "assignee":
			name = "assign"
		}
		return pflag.NormalizedName(name)
	})
	rootCmd.AddCommand(createCmd)
}

func runCreate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	title, err := resolveCreateTitle(cmd, args)
	if err != nil {
		return err
	}

	in := task.NewTask{Title: title}
	if err := applyCreateFlags(cmd, cfg, &in, time.Now()); err != nil {
		return err
	}

	var created *task.Task
	err = newSession(cfg).update(func(st *task.Store) error {
		var err error
		created, err = st.Create(in)
		return err
	})
	if err != nil {
		return err
	}

	logActivity(cfg, board.ActionCreate, created.ID, assignedOrEmpty(created), created.Title)
	return outputCreateResult(created)
}

func outputCreateResult(t *task.Task) error {
	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, t)
	}

	output.Messagef(os.Stdout, "Created task #%d: %s", t.ID, t.Title)
	output.Messagef(os.Stdout, "  Status: %s | Priority: %s | Due: %s", t.Status, t.Priority, t.DueAt)
	output.Messagef(os.Stdout, "  Company: %s | Type: %s | Department: %s", t.Company, t.DocumentType, t.Department)
	if !t.IsUnassigned() {
		output.Messagef(os.Stdout, "  Assigned to: %s", t.AssignedTo)
	}
	return nil
}

// resolveCreateTitle returns the task title from either the positional arg or --title flag.
func resolveCreateTitle(cmd *cobra.Command, args []string) (string, error) {
	flagTitle, _ := cmd.Flags().GetString("title")
	hasPositional := len(args) > 0
	hasFlag := flagTitle != ""

	switch {
	case hasPositional && hasFlag:
		return "", clierr.New(clierr.ValidationFailed,
			"title provided both as argument and --title flag; use one or the other")
	case hasPositional:
		return args[0], nil
	default:
		// An empty title is reported by the store.
		return flagTitle, nil
	}
}

func applyCreateFlags(cmd *cobra.Command, cfg *config.Config, in *task.NewTask, now time.Time) error {
	if v, _ := cmd.Flags().GetString("workflow"); v != "" {
		wf := cfg.Workflow(v)
		if wf == nil {
			return clierr.Newf(clierr.ValidationFailed, "unknown workflow %q; known: %s",
				v, strings.Join(cfg.WorkflowNames(), ", ")).
				WithDetails(map[string]any{"field": "workflow"})
		}
		in.DocumentType = wf.Name
		in.Priority = task.Priority(wf.Priority)
		due := date.Of(now.Add(wf.SLA()))
		in.DueAt = &due
	}

	if v, _ := cmd.Flags().GetString("company"); v != "" {
		in.Company = v
	}
	if v, _ := cmd.Flags().GetString("type"); v != "" {
		in.DocumentType = v
	}
	if v, _ := cmd.Flags().GetString("department"); v != "" {
		in.Department = v
	}
	if v, _ := cmd.Flags().GetString("priority"); v != "" {
		in.Priority = task.Priority(v)
	}
	if v, _ := cmd.Flags().GetString("status"); v != "" {
		in.Status = task.Status(v)
	}
	if v, _ := cmd.Flags().GetString("assign"); v != "" {
		in.AssignedTo = v
	}
	if v, _ := cmd.Flags().GetString("due"); v != "" {
		d, err := date.ParseLoose(v)
		if err != nil {
			return clierr.Newf(clierr.ValidationFailed, "invalid due date %q: %v", v, err).
				WithDetails(map[string]any{"field": "due_at"})
		}
		in.DueAt = &d
	}
	if v, _ := cmd.Flags().GetString("description"); v != "" {
		in.Description = v
	}
	return nil
}

// assignedOrEmpty returns the analyst owning t, or "" when unassigned.
func assignedOrEmpty(t *task.Task) string {
	if t.IsUnassigned() {
		return ""
	}
	return t.AssignedTo
}

