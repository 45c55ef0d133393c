package cmd

import (
	"os"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/armsboard/internal/board"
	"github.com/twiced-technology-gmbh/armsboard/internal/clierr"
	"github.com/twiced-technology-gmbh/armsboard/internal/output"
	"github.com/twiced-technology-gmbh/armsboard/internal/task"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks",
	Long: `Lists tasks with optional filtering, sorting, and output format control.
Completed tasks are hidden unless --all or --status is given.`,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringSlice("status", nil, "filter by status (comma-separated)")
	listCmd.Flags().StringSlice("priority", nil, "filter by priority (comma-separated)")
	listCmd.Flags().String("analyst", "", "filter by assigned analyst")
	listCmd.Flags().Bool("mine", false, "only tasks assigned to the --as analyst")
	listCmd.Flags().Bool("unassigned", false, "only tasks nobody owns")
	listCmd.Flags().String("company", "", "filter by company")
	listCmd.Flags().String("department", "", "filter by department")
	listCmd.Flags().String("type", "", "filter by document type")
	listCmd.Flags().String("source", "", "filter by source prefix (Manual, Excel:, Email:)")
	listCmd.Flags().StringP("search", "s", "", "search title, company and description (case-insensitive)")
	listCmd.Flags().Bool("overdue", false, "only open tasks past their due date")
	listCmd.Flags().BoolP("all", "a", false, "include completed tasks")
	listCmd.Flags().String("sort", "id", "sort field ("+strings.Join(board.SortFields, ", ")+")")
	listCmd.Flags().BoolP("reverse", "r", false, "reverse sort order")
	listCmd.Flags().IntP("limit", "n", 0, "limit number of results")
	listCmd.Flags().String("group-by", "", "group results by field ("+strings.Join(board.ValidGroupByFields(), ", ")+")")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	filter, err := listFilter(cmd)
	if err != nil {
		return err
	}

	sortBy, _ := cmd.Flags().GetString("sort")
	if !slices.Contains(board.SortFields, sortBy) {
		return clierr.Newf(clierr.ValidationFailed, "invalid --sort field %q; valid: %s",
			sortBy, strings.Join(board.SortFields, ", "))
	}
	reverse, _ := cmd.Flags().GetBool("reverse")
	limit, _ := cmd.Flags().GetInt("limit")
	groupBy, _ := cmd.Flags().GetString("group-by")

	mine, _ := cmd.Flags().GetBool("mine")
	var tasks []*task.Task
	if err := newSession(cfg).view(func(st *task.Store) error {
		if mine {
			tasks = st.TasksFor(filter.AssignedTo)
			return nil
		}
		tasks = st.All()
		return nil
	}); err != nil {
		return err
	}

	tasks = board.List(tasks, board.ListOptions{
		Filter:  filter,
		SortBy:  sortBy,
		Reverse: reverse,
		Limit:   limit,
	})

	if groupBy != "" {
		grouped, err := board.GroupBy(tasks, groupBy, filter.Now)
		if err != nil {
			return err
		}
		if outputFormat() == output.FormatJSON {
			return output.JSON(os.Stdout, grouped)
		}
		output.GroupedTable(os.Stdout, grouped)
		return nil
	}

	return outputTaskList(tasks, filter.Now)
}

func listFilter(cmd *cobra.Command) (board.FilterOptions, error) {
	f := board.FilterOptions{Now: time.Now()}

	statuses, _ := cmd.Flags().GetStringSlice("status")
	for _, s := range statuses {
		st, err := task.ValidateStatus(s)
		if err != nil {
			return f, err
		}
		f.Statuses = append(f.Statuses, st)
	}
	if all, _ := cmd.Flags().GetBool("all"); !all && len(f.Statuses) == 0 {
		f.ExcludeStatuses = []task.Status{task.StatusCompleted}
	}

	priorities, _ := cmd.Flags().GetStringSlice("priority")
	for _, p := range priorities {
		pr, err := task.ValidatePriority(p)
		if err != nil {
			return f, err
		}
		f.Priorities = append(f.Priorities, pr)
	}

	f.AssignedTo, _ = cmd.Flags().GetString("analyst")
	if mine, _ := cmd.Flags().GetBool("mine"); mine {
		a, err := requireAnalyst()
		if err != nil {
			return f, err
		}
		f.AssignedTo = a
	}
	f.Unassigned, _ = cmd.Flags().GetBool("unassigned")
	f.Company, _ = cmd.Flags().GetString("company")
	f.Department, _ = cmd.Flags().GetString("department")
	f.DocumentType, _ = cmd.Flags().GetString("type")
	f.Source, _ = cmd.Flags().GetString("source")
	f.Search, _ = cmd.Flags().GetString("search")
	f.Overdue, _ = cmd.Flags().GetBool("overdue")
	return f, nil
}

func outputTaskList(tasks []*task.Task, now time.Time) error {
	format := outputFormat()
	if format == output.FormatJSON {
		if tasks == nil {
			tasks = []*task.Task{}
		}
		return output.JSON(os.Stdout, tasks)
	}
	if format == output.FormatCompact {
		output.TaskCompact(os.Stdout, tasks)
		return nil
	}

	output.TaskTable(os.Stdout, tasks, now)
	return nil
}
