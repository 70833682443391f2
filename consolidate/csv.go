package consolidate

import (
	"encoding/csv"
	"fmt"
	"os"

	"equalprop/reports"
	"equalprop/value"
)

// WriteTable writes one report table to its CSV file under dir,
// truncate-and-create. UTF-8, comma-delimited, minimal quoting.
func WriteTable(dir string, t *reports.Table) (string, error) {
	path := dir + string(os.PathSeparator) + t.File
	if err := WriteCSV(path, t.Strings()); err != nil {
		return "", fmt.Errorf("write table %s: %w", t.Name, err)
	}
	return path, nil
}

// WriteCSV writes a row matrix to path, replacing any existing file.
func WriteCSV(path string, rows [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return nil
}

// ReadCSVCells loads a CSV file as a cell matrix. Rows may be ragged; the
// loader does not pad, the grid accessors tolerate short rows.
func ReadCSVCells(path string) ([][]value.Cell, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	grid := make([][]value.Cell, len(records))
	for i, record := range records {
		row := make([]value.Cell, len(record))
		for j, field := range record {
			row[j] = value.NewCell(field)
		}
		grid[i] = row
	}
	return grid, nil
}
