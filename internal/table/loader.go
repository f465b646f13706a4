package table

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"creditprep/internal/errors"
)

// Load reads the named tabular file from dir into a Table. The whole file
// is materialized before returning; nothing downstream sees a partial read.
//
// The primary format is CSV. When the named .csv file is absent but a
// sibling .xlsx workbook with the same stem exists, the workbook's first
// sheet is read through the same parsing path instead. Only when neither
// exists does Load fail with a MISSING_FILE error carrying the attempted
// CSV path.
func Load(dir, name string) (*Table, error) {
	path := filepath.Join(dir, name)

	records, err := readCSVFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, errors.NewParsingError(fmt.Sprintf("failed to read %s", path), err)
		}
		workbook := siblingWorkbook(dir, name)
		records, err = readWorkbook(workbook)
		if os.IsNotExist(err) {
			return nil, errors.NewMissingFileError(path)
		}
		if err != nil {
			return nil, errors.NewParsingError(fmt.Sprintf("failed to read %s", workbook), err)
		}
		slog.Debug("csv absent, loaded sibling workbook",
			slog.String("file", filepath.Base(workbook)))
	}

	t, err := fromRecords(name, records)
	if err != nil {
		return nil, err
	}

	slog.Debug("loaded table",
		slog.String("file", name),
		slog.Int("rows", t.Rows()),
		slog.Int("columns", len(t.Columns())))
	return t, nil
}

func readCSVFile(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}
	return records, nil
}

// siblingWorkbook returns the .xlsx path that stands in for a missing CSV.
func siblingWorkbook(dir, name string) string {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	return filepath.Join(dir, stem+".xlsx")
}

func readWorkbook(path string) ([][]string, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", filepath.Base(path))
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

// fromRecords builds a Table from a header row plus body rows. Each column
// is classified once: if every non-empty cell parses as a float the column
// is numeric (empty cells become NaN), otherwise it is text.
func fromRecords(name string, records [][]string) (*Table, error) {
	if len(records) == 0 {
		return nil, errors.NewParsingError(fmt.Sprintf("file %s has no header row", name), nil)
	}
	header := records[0]
	body := records[1:]

	t := New(name, len(body))
	for j := range header {
		colName := strings.TrimSpace(header[j])
		if colName == "" {
			return nil, errors.NewParsingError(
				fmt.Sprintf("file %s has an unnamed column at position %d", name, j), nil)
		}
		if t.Has(colName) {
			return nil, errors.NewParsingError(
				fmt.Sprintf("file %s has duplicate column %s", name, colName), nil)
		}

		// Workbook rows may be shorter than the header; short rows pad
		// with missing cells.
		cells := make([]string, len(body))
		for i, row := range body {
			if j < len(row) {
				cells[i] = strings.TrimSpace(row[j])
			}
		}
		if err := addClassified(t, colName, cells); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func addClassified(t *Table, name string, cells []string) error {
	floats := make([]float64, len(cells))
	numeric := true
	for i, cell := range cells {
		if cell == "" {
			floats[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			numeric = false
			break
		}
		floats[i] = v
	}
	if numeric {
		return t.AddNumeric(name, floats)
	}
	return t.AddText(name, cells)
}
