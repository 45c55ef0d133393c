package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/armsboard/internal/config"
	"github.com/twiced-technology-gmbh/armsboard/internal/dataset"
	"github.com/twiced-technology-gmbh/armsboard/internal/output"
	"github.com/twiced-technology-gmbh/armsboard/internal/sheet"
	"github.com/twiced-technology-gmbh/armsboard/internal/task"
)

// taskSource names the task board when it stands in for a workbook.
const taskSource = "tasks"

var sheetsCmd = &cobra.Command{
	Use:   "sheets FILE",
	Short: "List the sheets and columns of a spreadsheet",
	Long: `Lists every sheet of a workbook with its row and column counts. With
--sheet the columns of that sheet are listed with their inferred kind.`,
	Args: cobra.ExactArgs(1),
	RunE: runSheets,
}

func init() {
	sheetsCmd.Flags().String("sheet", "", "list the columns of this sheet")
	rootCmd.AddCommand(sheetsCmd)
}

func runSheets(cmd *cobra.Command, args []string) error {
	wb, err := sheet.Read(args[0])
	if err != nil {
		return err
	}

	name, _ := cmd.Flags().GetString("sheet")
	if !cmd.Flags().Changed("sheet") {
		if outputFormat() == output.FormatJSON {
			type sheetInfo struct {
				Name    string   `json:"name"`
				Rows    int      `json:"rows"`
				Columns []string `json:"columns"`
			}
			infos := make([]sheetInfo, 0, len(wb.Sheets))
			for _, ds := range wb.Sheets {
				infos = append(infos, sheetInfo{Name: ds.Name, Rows: ds.Len(), Columns: ds.Columns})
			}
			return output.JSON(os.Stdout, map[string]any{"workbook": wb.Name, "sheets": infos})
		}
		output.SheetsTable(os.Stdout, wb)
		return nil
	}

	ds, err := wb.Sheet(name)
	if err != nil {
		return err
	}
	if outputFormat() == output.FormatJSON {
		kinds := make(map[string]string, len(ds.Columns))
		for _, c := range ds.Columns {
			kinds[c] = ds.ColumnKind(c).String()
		}
		return output.JSON(os.Stdout, map[string]any{"sheet": ds.Name, "columns": ds.Columns, "kinds": kinds})
	}
	output.ColumnsTable(os.Stdout, ds)
	return nil
}

// loadDataset reads one sheet of file. An empty file selects the task board
// itself, flattened to one row per task.
func loadDataset(cfg *config.Config, file, sheetName string) (*dataset.Dataset, error) {
	if file == "" {
		var ds *dataset.Dataset
		err := newSession(cfg).view(func(st *task.Store) error {
			cols, recs := task.Records(st.All())
			ds = dataset.FromRecords(taskSource, cols, recs)
			return nil
		})
		return ds, err
	}

	wb, err := sheet.Read(file)
	if err != nil {
		return nil, err
	}
	return wb.Sheet(sheetName)
}

// sourceLabel describes where a dataset came from.
func sourceLabel(file string, ds *dataset.Dataset) string {
	if file == "" {
		return taskSource
	}
	return filepath.Base(file) + " / " + ds.Name
}

// parseFilters parses repeated --where expressions.
func parseFilters(exprs []string) ([]dataset.Filter, error) {
	filters := make([]dataset.Filter, 0, len(exprs))
	for _, e := range exprs {
		f, err := dataset.ParseFilter(e)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	return filters, nil
}
