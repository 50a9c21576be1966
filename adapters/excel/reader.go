// Package excel reads spreadsheet and CSV files as tables and writes reports
// back out as workbooks.
package excel

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"tablesense/domain/table"
	"tablesense/internal"

	"github.com/xuri/excelize/v2"
)

// Sheet is one tabular sheet: a header row plus string-valued records
type Sheet struct {
	Name    string
	Headers []string
	Rows    []table.Record
}

var logger = internal.DefaultLogger.WithPrefix("DataReader")

// ReadFile reads an .xlsx or .csv file. For workbooks, sheet selects the
// sheet; empty means the first one.
func ReadFile(path, sheet string) (*Sheet, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("file not found: %s", path)
	}

	var (
		rows [][]string
		err  error
	)
	start := time.Now()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		rows, err = readCSV(path)
	case ".xlsx", ".xlsm":
		rows, err = readWorkbook(path, sheet)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}
	logger.Debug("%s read in %.2fms (%d rows)", path, float64(time.Since(start).Nanoseconds())/1e6, len(rows))

	if len(rows) == 0 {
		return nil, fmt.Errorf("%s has no header row", path)
	}
	return processRows(TableName(path), rows), nil
}

func readWorkbook(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", sheet, err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	return rows, nil
}

// processRows turns raw string rows into records keyed by the trimmed header.
// Blank cells become nil; fully blank rows are skipped.
func processRows(name string, rows [][]string) *Sheet {
	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
		if headers[i] == "" {
			headers[i] = fmt.Sprintf("column_%d", i+1)
		}
	}

	records := make([]table.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(table.Record, len(headers))
		blank := true
		for j, h := range headers {
			var cell string
			if j < len(row) {
				cell = strings.TrimSpace(row[j])
			}
			if cell == "" {
				rec[h] = nil
				continue
			}
			rec[h] = cell
			blank = false
		}
		if !blank {
			records = append(records, rec)
		}
	}

	logger.Info("%s processed (%d columns, %d rows)", name, len(headers), len(records))
	return &Sheet{Name: name, Headers: headers, Rows: records}
}

var nonIdent = regexp.MustCompile(`[^a-z0-9_]+`)

// TableName derives a safe table identifier from a file name
func TableName(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	name := strings.Trim(nonIdent.ReplaceAllString(strings.ToLower(base), "_"), "_")
	if name == "" {
		return "sheet"
	}
	if name[0] >= '0' && name[0] <= '9' {
		name = "t_" + name
	}
	if len(name) > 63 {
		name = name[:63]
	}
	return name
}
