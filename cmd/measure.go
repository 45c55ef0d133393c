package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/armsboard/internal/board"
	"github.com/twiced-technology-gmbh/armsboard/internal/clierr"
	"github.com/twiced-technology-gmbh/armsboard/internal/config"
	"github.com/twiced-technology-gmbh/armsboard/internal/dataset"
	"github.com/twiced-technology-gmbh/armsboard/internal/db"
	"github.com/twiced-technology-gmbh/armsboard/internal/output"
	"github.com/twiced-technology-gmbh/armsboard/internal/task"
)

var measureCmd = &cobra.Command{
	Use:     "measure",
	Aliases: []string{"measures"},
	Short:   "Manage saved measures",
	Long: `A measure is a named aggregate over one column of a workbook, narrowed by
filters first. Measures are stored in the workspace database and keep their
last evaluated value. Without --file a measure runs against the task board.`,
	RunE: runMeasureList,
}

var measureAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Define or replace a measure",
	Example: `  armsboard measure add pending-amount --file cases.xlsx --column Amount --op sum \
      --where "Status:equals:Pending"`,
	Args: cobra.ExactArgs(1),
	RunE: runMeasureAdd,
}

var measureListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List saved measures",
	Args:    cobra.NoArgs,
	RunE:    runMeasureList,
}

var measureEvalCmd = &cobra.Command{
	Use:   "eval [NAME...]",
	Short: "Evaluate measures and store their values",
	Long: `Evaluates the named measures, or every measure when none are named.
--file evaluates against a different workbook with the same layout, for
example next month's export.`,
	RunE: runMeasureEval,
}

var measureRmCmd = &cobra.Command{
	Use:     "rm NAME",
	Aliases: []string{"delete"},
	Short:   "Delete a measure",
	Args:    cobra.ExactArgs(1),
	RunE:    runMeasureRm,
}

func init() {
	measureAddCmd.Flags().String("file", "", "workbook the measure reads (default: the task board)")
	measureAddCmd.Flags().String("sheet", "", "sheet within the workbook (default: first sheet)")
	measureAddCmd.Flags().String("column", "", "column to aggregate")
	measureAddCmd.Flags().String("op", "", "aggregate operation")
	measureAddCmd.Flags().StringArray("where", nil, "filter COLUMN:OPERATOR:VALUE (repeatable)")
	measureAddCmd.Flags().Bool("eval", false, "evaluate the measure immediately")
	measureEvalCmd.Flags().String("file", "", "evaluate against this workbook instead")

	measureCmd.AddCommand(measureAddCmd, measureListCmd, measureEvalCmd, measureRmCmd)
	rootCmd.AddCommand(measureCmd)
}

func runMeasureAdd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	file, _ := cmd.Flags().GetString("file")
	if file != "" {
		if file, err = filepath.Abs(file); err != nil {
			return fmt.Errorf("resolving path: %w", err)
		}
	}
	sheetName, _ := cmd.Flags().GetString("sheet")
	column, _ := cmd.Flags().GetString("column")
	opName, _ := cmd.Flags().GetString("op")
	exprs, _ := cmd.Flags().GetStringArray("where")
	evalNow, _ := cmd.Flags().GetBool("eval")

	filters, err := parseFilters(exprs)
	if err != nil {
		return err
	}

	m := db.SavedMeasure{
		Measure: dataset.Measure{
			Name:      args[0],
			Sheet:     sheetName,
			Column:    column,
			Operation: dataset.Operation(opName),
			Filters:   filters,
		},
		Workbook: file,
	}
	if err := m.Validate(); err != nil {
		return err
	}
	if evalNow {
		if _, err := evaluateMeasure(cfg, &m, ""); err != nil {
			return err
		}
	}

	if err := withDB(cfg, func(d *db.DB) error { return d.SaveMeasure(m) }); err != nil {
		return err
	}
	logActivity(cfg, board.ActionMeasure, 0, currentAnalyst(), "saved "+m.Name)

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, m)
	}
	output.Messagef(os.Stdout, "Saved measure %s: %s(%s)", m.Name, m.Operation, m.Column)
	if m.LastValue != nil {
		output.Messagef(os.Stdout, "  Value: %s", output.FormatNumber(*m.LastValue))
	}
	return nil
}

func runMeasureList(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var measures []db.SavedMeasure
	if err := withDB(cfg, func(d *db.DB) error {
		var err error
		measures, err = d.Measures()
		return err
	}); err != nil {
		return err
	}

	if outputFormat() == output.FormatJSON {
		if measures == nil {
			measures = []db.SavedMeasure{}
		}
		return output.JSON(os.Stdout, measures)
	}
	output.MeasureTable(os.Stdout, measures)
	return nil
}

// measureValue is one evaluation result.
type measureValue struct {
	Name   string   `json:"name"`
	Source string   `json:"source"`
	Value  *float64 `json:"value"`
	Error  string   `json:"error,omitempty"`
	Code   string   `json:"code,omitempty"`
}

func runMeasureEval(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	override, _ := cmd.Flags().GetString("file")

	var measures []db.SavedMeasure
	if err := withDB(cfg, func(d *db.DB) error {
		if len(args) == 0 {
			var err error
			measures, err = d.Measures()
			return err
		}
		for _, name := range args {
			m, err := d.Measure(name)
			if err != nil {
				return err
			}
			measures = append(measures, m)
		}
		return nil
	}); err != nil {
		return err
	}

	// Each measure reads its own workbook; failures are reported per measure.
	results := make([]measureValue, 0, len(measures))
	evaluated := make([]db.SavedMeasure, 0, len(measures))
	for i := range measures {
		m := &measures[i]
		res := measureValue{Name: m.Name, Source: measureSource(m, override)}
		v, err := evaluateMeasure(cfg, m, override)
		if err != nil {
			res.Error = err.Error()
			res.Code = clierr.CodeOf(err)
		} else {
			res.Value = finite(v)
			if override == "" {
				evaluated = append(evaluated, *m)
			}
		}
		results = append(results, res)
	}

	if err := withDB(cfg, func(d *db.DB) error {
		for _, m := range evaluated {
			if err := d.SaveMeasure(m); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return err
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, results)
	}
	anyFailed := false
	for _, r := range results {
		if r.Error != "" {
			anyFailed = true
			fmt.Fprintf(os.Stderr, "Error: measure %s: %s\n", r.Name, r.Error)
			continue
		}
		val := "--"
		if r.Value != nil {
			val = output.FormatNumber(*r.Value)
		}
		output.Messagef(os.Stdout, "%-20s %12s  %s", r.Name, val, r.Source)
	}
	if anyFailed {
		return &clierr.SilentError{Code: 1}
	}
	return nil
}

func runMeasureRm(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := withDB(cfg, func(d *db.DB) error {
		if _, err := d.Measure(args[0]); err != nil {
			return err
		}
		return d.DeleteMeasure(args[0])
	}); err != nil {
		return err
	}
	logActivity(cfg, board.ActionMeasure, 0, currentAnalyst(), "deleted "+args[0])

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]any{"name": args[0], "deleted": true})
	}
	output.Messagef(os.Stdout, "Deleted measure %s", args[0])
	return nil
}

// evaluateMeasure loads the measure's data and evaluates it, recording the
// value on m.
func evaluateMeasure(cfg *config.Config, m *db.SavedMeasure, override string) (float64, error) {
	file := m.Workbook
	if override != "" {
		file = override
	}
	ds, err := loadDataset(cfg, file, m.Sheet)
	if err != nil {
		return 0, err
	}
	return m.Evaluate(ds, time.Now())
}

func measureSource(m *db.SavedMeasure, override string) string {
	file := m.Workbook
	if override != "" {
		file = override
	}
	if file == "" {
		return taskSource
	}
	if m.Sheet != "" {
		return filepath.Base(file) + " / " + m.Sheet
	}
	return filepath.Base(file)
}

// withDB runs fn against the workspace database under the workspace lock
// without touching the task snapshot.
func withDB(cfg *config.Config, fn func(*db.DB) error) error {
	return newSession(cfg).withDB(false, func(d *db.DB, _ *task.Store) error { return fn(d) })
}
