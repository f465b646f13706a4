package table

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"creditprep/internal/errors"
	"creditprep/internal/shared/testutil"
)

func TestLoad_ClassifiesColumns(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteCSV(t, dir, "bureau.csv",
		"SK_ID_CURR,AMT_CREDIT_SUM,CREDIT_ACTIVE",
		"1,100.5,Active",
		"1,,Closed",
		"2,300,Active",
	)

	tbl, err := Load(dir, "bureau.csv")
	require.NoError(t, err)

	assert.Equal(t, "bureau.csv", tbl.Name())
	assert.Equal(t, 3, tbl.Rows())
	assert.Equal(t, []string{"SK_ID_CURR", "AMT_CREDIT_SUM", "CREDIT_ACTIVE"}, tbl.ColumnNames())

	credit, err := tbl.Numeric("AMT_CREDIT_SUM")
	require.NoError(t, err)
	assert.Equal(t, 100.5, credit[0])
	assert.True(t, math.IsNaN(credit[1]), "empty cell should load as missing")
	assert.Equal(t, 300.0, credit[2])

	active, err := tbl.Text("CREDIT_ACTIVE")
	require.NoError(t, err)
	assert.Equal(t, []string{"Active", "Closed", "Active"}, active)
}

func TestLoad_MixedColumnFallsBackToText(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteCSV(t, dir, "mixed.csv",
		"CODE",
		"12",
		"XNA",
	)

	tbl, err := Load(dir, "mixed.csv")
	require.NoError(t, err)

	// One unparsable cell makes the whole column text.
	codes, err := tbl.Text("CODE")
	require.NoError(t, err)
	assert.Equal(t, []string{"12", "XNA"}, codes)
}

func TestLoad_HeaderOnly(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteCSV(t, dir, "installments_payments.csv",
		"SK_ID_CURR,AMT_PAYMENT",
	)

	tbl, err := Load(dir, "installments_payments.csv")
	require.NoError(t, err)
	assert.Equal(t, 0, tbl.Rows())
	assert.True(t, tbl.Has("AMT_PAYMENT"))
}

func TestLoad_MissingFile(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(dir, "bureau.csv")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeMissingFile))
	assert.Contains(t, err.Error(), filepath.Join(dir, "bureau.csv"))
}

func TestLoad_ParsingErrors(t *testing.T) {
	tests := []struct {
		name string
		rows []string
	}{
		{
			name: "empty file",
			rows: nil,
		},
		{
			name: "duplicate column",
			rows: []string{"SK_ID_CURR,SK_ID_CURR", "1,2"},
		},
		{
			name: "unnamed column",
			rows: []string{"SK_ID_CURR,", "1,2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			rows := tt.rows
			if rows == nil {
				rows = []string{""}
			}
			testutil.WriteCSV(t, dir, "bad.csv", rows...)

			_, err := Load(dir, "bad.csv")
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrTypeParsing))
		})
	}
}

func TestLoad_WorkbookFallback(t *testing.T) {
	dir := t.TempDir()

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"SK_ID_CURR", "AMT_CREDIT_SUM", "CREDIT_ACTIVE"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{1, 100.5, "Active"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{2}))
	require.NoError(t, f.SaveAs(filepath.Join(dir, "bureau.xlsx")))

	tbl, err := Load(dir, "bureau.csv")
	require.NoError(t, err)

	assert.Equal(t, 2, tbl.Rows())
	ids, err := tbl.Ints("SK_ID_CURR")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids)

	// Short workbook rows pad with missing cells.
	credit, err := tbl.Numeric("AMT_CREDIT_SUM")
	require.NoError(t, err)
	assert.Equal(t, 100.5, credit[0])
	assert.True(t, math.IsNaN(credit[1]))
}

func TestLoad_CSVWinsOverWorkbook(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteCSV(t, dir, "bureau.csv",
		"SK_ID_CURR",
		"7",
	)

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"SK_ID_CURR"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{99}))
	require.NoError(t, f.SaveAs(filepath.Join(dir, "bureau.xlsx")))

	tbl, err := Load(dir, "bureau.csv")
	require.NoError(t, err)

	ids, err := tbl.Ints("SK_ID_CURR")
	require.NoError(t, err)
	assert.Equal(t, []int64{7}, ids)
}
