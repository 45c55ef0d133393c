package cmd

import (
	"math"
	"os"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/armsboard/internal/clierr"
	"github.com/twiced-technology-gmbh/armsboard/internal/dataset"
	"github.com/twiced-technology-gmbh/armsboard/internal/output"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [FILE]",
	Short: "Filter and aggregate spreadsheet data",
	Long: `Applies filters to a sheet and either prints the matching rows or
aggregates one column. Without FILE the task board is analyzed, one row per
task.

Filters are written COLUMN:OPERATOR:VALUE with operators equals, contains,
greater_than, less_than, and COLUMN:date_range:START..END. Several --where
flags are combined with AND.

Operations: sum, average, count, distinct_count, min, max, std_dev.
With --group-by the aggregate is computed per distinct value, in order of
first appearance.`,
	Example: `  armsboard analyze cases.xlsx --where "Status:equals:Pending" --op sum --column Amount
  armsboard analyze cases.xlsx --sheet Q2 --op count --column Analyst --group-by Analyst
  armsboard analyze --where "Status:equals:Completed" --op average --column "Hours To Complete"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().String("sheet", "", "sheet to analyze (default: first sheet)")
	analyzeCmd.Flags().StringArray("where", nil, "filter COLUMN:OPERATOR:VALUE (repeatable)")
	analyzeCmd.Flags().String("op", "", "aggregate operation")
	analyzeCmd.Flags().String("column", "", "column to aggregate")
	analyzeCmd.Flags().String("group-by", "", "column to group by")
	analyzeCmd.Flags().IntP("limit", "n", 20, "rows to print when not aggregating (0 for all)") //nolint:mnd // default preview size
	rootCmd.AddCommand(analyzeCmd)
}

// aggregateResult is the JSON shape of a single aggregate.
type aggregateResult struct {
	Source    string            `json:"source"`
	Rows      int               `json:"rows"`
	Column    string            `json:"column"`
	Operation dataset.Operation `json:"operation"`
	Filters   []dataset.Filter  `json:"filters,omitempty"`
	Value     *float64          `json:"value"`
	GroupBy   string            `json:"group_by,omitempty"`
	Groups    []groupResult     `json:"groups,omitempty"`
}

// groupResult is a dataset.Group with non-finite values encoded as null.
type groupResult struct {
	Key   string   `json:"key"`
	Value *float64 `json:"value"`
	Rows  int      `json:"rows"`
}

// finite returns nil for NaN and infinities so results encode as JSON.
func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var file string
	if len(args) == 1 {
		file = args[0]
	}
	sheetName, _ := cmd.Flags().GetString("sheet")
	exprs, _ := cmd.Flags().GetStringArray("where")
	opName, _ := cmd.Flags().GetString("op")
	column, _ := cmd.Flags().GetString("column")
	groupBy, _ := cmd.Flags().GetString("group-by")
	limit, _ := cmd.Flags().GetInt("limit")

	filters, err := parseFilters(exprs)
	if err != nil {
		return err
	}
	ds, err := loadDataset(cfg, file, sheetName)
	if err != nil {
		return err
	}
	filtered, err := dataset.ApplyFilters(ds, filters)
	if err != nil {
		return err
	}

	if opName == "" {
		if groupBy != "" || column != "" {
			return clierr.New(clierr.InvalidAggregation, "--column and --group-by need --op")
		}
		if outputFormat() == output.FormatJSON {
			view := filtered
			if limit > 0 {
				view = filtered.Head(limit)
			}
			return output.JSON(os.Stdout, map[string]any{
				"source":  sourceLabel(file, ds),
				"rows":    filtered.Len(),
				"records": view.Records(),
			})
		}
		output.DatasetTable(os.Stdout, filtered, limit)
		return nil
	}

	op, err := dataset.ParseOperation(opName)
	if err != nil {
		return err
	}
	res := aggregateResult{
		Source: sourceLabel(file, ds), Rows: filtered.Len(),
		Column: column, Operation: op, Filters: filters, GroupBy: groupBy,
	}

	if groupBy != "" {
		groups, err := dataset.GroupAggregate(filtered, groupBy, column, op)
		if err != nil {
			return err
		}
		if outputFormat() == output.FormatJSON {
			for _, g := range groups {
				res.Groups = append(res.Groups, groupResult{Key: g.Key, Value: finite(g.Value), Rows: g.Rows})
			}
			return output.JSON(os.Stdout, res)
		}
		output.GroupsTable(os.Stdout, groupBy, op, column, groups)
		return nil
	}

	v, err := dataset.Aggregate(filtered, column, op)
	if err != nil {
		return err
	}
	res.Value = finite(v)
	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, res)
	}
	output.Messagef(os.Stdout, "%s(%s) over %d rows: %s", op, column, res.Rows, output.FormatNumber(v))
	return nil
}
