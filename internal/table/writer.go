package table

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"creditprep/internal/errors"
)

// WriteCSV writes the table to path, creating parent directories as
// needed. Missing cells are written as empty fields; numeric cells use the
// shortest representation that round-trips.
func (t *Table) WriteCSV(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.NewStorageError(fmt.Sprintf("failed to create directory for %s", path), err)
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.NewStorageError(fmt.Sprintf("failed to create %s", path), err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(t.ColumnNames()); err != nil {
		return errors.NewStorageError("failed to write header", err)
	}

	record := make([]string, len(t.columns))
	for i := 0; i < t.rows; i++ {
		for j, col := range t.columns {
			record[j] = col.Cell(i)
		}
		if err := writer.Write(record); err != nil {
			return errors.NewStorageError(fmt.Sprintf("failed to write row %d", i), err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return errors.NewStorageError(fmt.Sprintf("failed to flush %s", path), err)
	}
	return nil
}
