package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/armsboard/internal/metrics"
	"github.com/twiced-technology-gmbh/armsboard/internal/output"
)

var metricsCmd = &cobra.Command{
	Use:     "metrics [FILE]",
	Aliases: []string{"dashboard"},
	Short:   "Show dashboard counters for a sheet",
	Long: `Computes the team dashboard from a sheet: pending items, open UCC actions,
distinct team members, judgment entries, total work units, and Chapter 11 and
Chapter 7 cases. Columns are found by name; counters whose column is missing
stay zero. Without FILE the task board is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMetrics,
}

func init() {
	metricsCmd.Flags().String("sheet", "", "sheet to read (default: first sheet)")
	rootCmd.AddCommand(metricsCmd)
}

func runMetrics(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var file string
	if len(args) == 1 {
		file = args[0]
	}
	sheetName, _ := cmd.Flags().GetString("sheet")

	ds, err := loadDataset(cfg, file, sheetName)
	if err != nil {
		return err
	}
	d := metrics.Compute(ds)

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, d)
	}
	output.MetricsTable(os.Stdout, sourceLabel(file, ds), d)
	return nil
}
