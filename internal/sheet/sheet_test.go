package sheet

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/twiced-technology-gmbh/armsboard/internal/clierr"
	"github.com/twiced-technology-gmbh/armsboard/internal/dataset"
)

func writeWorkbook(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"Title", "Amount", "Filing Date", "Analyst"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"UCC renewal", 10, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), "Jane"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]interface{}{"Chapter 7 claim", "bad", "2024-03-09"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A5", &[]interface{}{"After gap", 2.5}))

	_, err := f.NewSheet("Cases")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Cases", "A1", &[]interface{}{"Chapter", "", "Count"}))
	require.NoError(t, f.SetSheetRow("Cases", "A2", &[]interface{}{"Chapter 11", "x", 3}))

	path := filepath.Join(t.TempDir(), "intake.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestReadExcel(t *testing.T) {
	wb, err := Read(writeWorkbook(t))
	require.NoError(t, err)
	assert.Equal(t, "intake.xlsx", wb.Name)
	assert.Equal(t, []string{"Sheet1", "Cases"}, wb.SheetNames())

	ds, err := wb.Sheet("")
	require.NoError(t, err)
	assert.Equal(t, []string{"Title", "Amount", "Filing Date", "Analyst"}, ds.Columns)
	require.Equal(t, 3, ds.Len(), "blank rows are skipped")

	assert.Equal(t, dataset.Number, ds.Value(0, "Amount").Kind())
	assert.Equal(t, dataset.Date, ds.Value(0, "Filing Date").Kind())
	assert.Equal(t, "2024-03-04", ds.Value(0, "Filing Date").String())
	assert.Equal(t, dataset.Date, ds.Value(1, "Filing Date").Kind(), "text dates in date columns are parsed")
	assert.True(t, ds.Value(1, "Analyst").IsNull())
	assert.Equal(t, "bad", ds.Value(1, "Amount").String())

	sum, err := dataset.Aggregate(ds, "Amount", dataset.Sum)
	require.NoError(t, err)
	assert.Equal(t, 12.5, sum)

	cases, err := wb.Sheet("cases")
	require.NoError(t, err)
	assert.Equal(t, []string{"Chapter", "Column 2", "Count"}, cases.Columns)

	_, err = wb.Sheet("Missing")
	assert.True(t, clierr.HasCode(err, clierr.SheetNotFound))
}

func TestReadCSV(t *testing.T) {
	in := "Title,Amount,Received Date\nLien search, 12 ,03/04/2024\n,,\nCredit file,n/a,\n"
	wb, err := ReadCSV(strings.NewReader(in), "queue.csv")
	require.NoError(t, err)
	require.Len(t, wb.Sheets, 1)

	ds := wb.Sheets[0]
	assert.Equal(t, "queue", ds.Name)
	require.Equal(t, 2, ds.Len())
	assert.Equal(t, 12.0, mustFloat(t, ds.Value(0, "Amount")))
	assert.Equal(t, dataset.Date, ds.Value(0, "Received Date").Kind())
	assert.True(t, ds.Value(1, "Received Date").IsNull())
}

func TestReadKeepsTextCells(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"Title", "Account", "Company", "Amount"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"Review", "00123", "NaN", 15}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]interface{}{"Lien", "456", "Acme", "7"}))
	path := filepath.Join(t.TempDir(), "accounts.xlsx")
	require.NoError(t, f.SaveAs(path))

	wb, err := Read(path)
	require.NoError(t, err)
	ds, err := wb.Sheet("")
	require.NoError(t, err)
	require.Equal(t, 2, ds.Len())

	assert.Equal(t, dataset.String, ds.Value(0, "Account").Kind())
	assert.Equal(t, "00123", ds.Value(0, "Account").String())
	assert.Equal(t, dataset.String, ds.Value(0, "Company").Kind())
	assert.Equal(t, "NaN", ds.Value(0, "Company").String())
	assert.Equal(t, dataset.Number, ds.Value(0, "Amount").Kind())

	got, err := dataset.ApplyFilters(ds, []dataset.Filter{{Column: "Account", Operator: dataset.Equals, Value: "00123"}})
	require.NoError(t, err)
	assert.Equal(t, 1, got.Len())

	sum, err := dataset.Aggregate(ds, "Amount", dataset.Sum)
	require.NoError(t, err)
	assert.Equal(t, 22.0, sum, "numeric text still aggregates")
}

func TestReadCSVKeepsCodes(t *testing.T) {
	in := "Title,Account,Company,Amount\nReview,00123,NaN,10\nLien,1e3,Acme,inf\n"
	wb, err := ReadCSV(strings.NewReader(in), "accounts.csv")
	require.NoError(t, err)
	ds := wb.Sheets[0]

	assert.Equal(t, "00123", ds.Value(0, "Account").String())
	assert.Equal(t, dataset.String, ds.Value(0, "Account").Kind())
	assert.Equal(t, "1e3", ds.Value(1, "Account").String())
	assert.Equal(t, dataset.String, ds.Value(0, "Company").Kind())

	got, err := dataset.ApplyFilters(ds, []dataset.Filter{{Column: "Account", Operator: dataset.Equals, Value: "00123"}})
	require.NoError(t, err)
	assert.Equal(t, 1, got.Len())

	sum, err := dataset.Aggregate(ds, "Amount", dataset.Sum)
	require.NoError(t, err)
	assert.Equal(t, 10.0, sum)
}

func TestReadUnsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mail.msg")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
	_, err := Read(path)
	assert.True(t, clierr.HasCode(err, clierr.UnsupportedFile))
	assert.False(t, Supported("notes.txt"))
	assert.True(t, Supported("BOOK.XLSX"))
}

func mustFloat(t *testing.T, v dataset.Value) float64 {
	t.Helper()
	f, ok := v.Float()
	require.True(t, ok)
	return f
}
