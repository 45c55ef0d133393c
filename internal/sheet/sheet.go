// Package sheet reads spreadsheet files into datasets. Excel workbooks go
// through excelize; CSV files are a single-sheet workbook.
package sheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/twiced-technology-gmbh/armsboard/internal/clierr"
	"github.com/twiced-technology-gmbh/armsboard/internal/dataset"
	"github.com/twiced-technology-gmbh/armsboard/internal/logging"
)

// Extensions lists the file extensions Read understands.
var Extensions = []string{".xlsx", ".xlsm", ".csv"}

// Excel serial numbers outside this range are not treated as dates.
const (
	minSerial = 1
	maxSerial = 2958465 // 9999-12-31
)

// Workbook is every sheet of one spreadsheet file.
type Workbook struct {
	Name   string
	Sheets []*dataset.Dataset
}

// SheetNames returns the sheet names in workbook order.
func (w *Workbook) SheetNames() []string {
	names := make([]string, len(w.Sheets))
	for i, s := range w.Sheets {
		names[i] = s.Name
	}
	return names
}

// Sheet returns the named sheet, or the first one when name is empty.
func (w *Workbook) Sheet(name string) (*dataset.Dataset, error) {
	if name == "" && len(w.Sheets) > 0 {
		return w.Sheets[0], nil
	}
	for _, s := range w.Sheets {
		if strings.EqualFold(s.Name, name) {
			return s, nil
		}
	}
	return nil, clierr.Newf(clierr.SheetNotFound, "sheet %q not found in %s", name, w.Name).
		WithDetails(map[string]any{"sheet": name, "workbook": w.Name, "sheets": w.SheetNames()})
}

// Supported reports whether path has a readable extension.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// Read opens a spreadsheet file and loads every sheet.
func Read(path string) (*Workbook, error) {
	if !Supported(path) {
		return nil, errUnsupported(path)
	}
	f, err := os.Open(path) //nolint:gosec // user-supplied import path
	if err != nil {
		return nil, fmt.Errorf("opening spreadsheet: %w", err)
	}
	defer f.Close()

	name := filepath.Base(path)
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return ReadCSV(f, name)
	}
	return ReadExcel(f, name)
}

// ReadExcel loads every sheet of an xlsx/xlsm workbook.
func ReadExcel(r io.Reader, name string) (*Workbook, error) {
	log := logging.Component("sheet")

	xl, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("reading workbook %s: %w", name, err)
	}
	defer func() { _ = xl.Close() }()

	wb := &Workbook{Name: name}
	for _, sheetName := range xl.GetSheetList() {
		rows, err := xl.GetRows(sheetName, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("reading sheet %s of %s: %w", sheetName, name, err)
		}
		ds := build(sheetName, rows, excelCells(xl, sheetName))
		log.Debug().Str("workbook", name).Str("sheet", sheetName).
			Int("rows", ds.Len()).Int("columns", len(ds.Columns)).Msg("sheet loaded")
		wb.Sheets = append(wb.Sheets, ds)
	}
	return wb, nil
}

// ReadCSV loads a CSV file as a one-sheet workbook named after the file.
func ReadCSV(r io.Reader, name string) (*Workbook, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var rows [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		rows = append(rows, rec)
	}
	sheetName := strings.TrimSuffix(name, filepath.Ext(name))
	ds := build(sheetName, rows, textCell)
	logging.Component("sheet").Debug().Str("file", name).Int("rows", ds.Len()).Msg("csv loaded")
	return &Workbook{Name: name, Sheets: []*dataset.Dataset{ds}}, nil
}

// cellFunc converts the raw text at rows[row][col].
type cellFunc func(row, col int, raw string, dateColumn bool) dataset.Value

func build(name string, rows [][]string, cell cellFunc) *dataset.Dataset {
	if len(rows) == 0 {
		return dataset.New(name, nil)
	}

	header := rows[0]
	width := len(header)
	for _, r := range rows[1:] {
		if len(r) > width {
			width = len(r)
		}
	}
	columns := make([]string, width)
	isDate := make([]bool, width)
	for i := range columns {
		if i < len(header) {
			columns[i] = strings.TrimSpace(header[i])
		}
		if columns[i] == "" {
			columns[i] = "Column " + strconv.Itoa(i+1)
		}
		isDate[i] = strings.Contains(strings.ToLower(columns[i]), "date")
	}

	ds := dataset.New(name, columns)
	for ri, r := range rows {
		if ri == 0 || blank(r) {
			continue
		}
		vals := make([]dataset.Value, width)
		for i := range vals {
			if i < len(r) {
				vals[i] = cell(ri, i, r[i], isDate[i])
			}
		}
		_ = ds.Append(vals...)
	}
	ds.InferTypes()
	return ds
}

// textCell reads a CSV field. Only text that prints back unchanged as a
// number becomes one.
func textCell(_, _ int, raw string, _ bool) dataset.Value {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return dataset.NullValue()
	}
	if f, ok := dataset.NumberText(raw); ok {
		return dataset.NumberValue(f)
	}
	return dataset.StringValue(raw)
}

// excelCells reads workbook cells using their stored type. String cells keep
// their text; numeric cells in date columns are Excel serial dates.
func excelCells(xl *excelize.File, sheet string) cellFunc {
	return func(row, col int, raw string, dateColumn bool) dataset.Value {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return dataset.NullValue()
		}
		if textCellType(xl, sheet, row, col) {
			return dataset.StringValue(raw)
		}
		f, ok := dataset.ParseNumber(raw)
		if !ok {
			return dataset.StringValue(raw)
		}
		if !dateColumn || f < minSerial || f > maxSerial {
			return dataset.NumberValue(f)
		}
		t, err := excelize.ExcelDateToTime(f, false)
		if err != nil {
			return dataset.NumberValue(f)
		}
		return dataset.DateValue(t)
	}
}

func textCellType(xl *excelize.File, sheet string, row, col int) bool {
	axis, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return false
	}
	typ, err := xl.GetCellType(sheet, axis)
	if err != nil {
		return false
	}
	switch typ {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeFormula:
		return true
	}
	return false
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func errUnsupported(path string) error {
	return clierr.Newf(clierr.UnsupportedFile, "unsupported spreadsheet %s", filepath.Base(path)).
		WithDetails(map[string]any{"file": path, "supported": Extensions})
}
