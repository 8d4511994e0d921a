package tabular

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"winefit/domain/core"
	"winefit/domain/table"

	"github.com/xuri/excelize/v2"
)

// DataReader loads numeric tables from CSV and Excel files. Rows with
// missing, extra, or non-numeric cells are dropped and counted; columns
// are renamed to snake_case keys.
type DataReader struct{}

// NewDataReader creates a new data reader that handles both CSV and Excel files
func NewDataReader() *DataReader {
	return &DataReader{}
}

// Read loads the table at path and reports the row accounting.
func (r *DataReader) Read(ctx context.Context, path string) (*table.Table, *table.LoadReport, error) {
	fileType := detectFileType(path)
	log.Printf("[DataReader] Starting to read %s file: %s", fileType, path)

	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(fileType), path)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s file %s: %w", fileType, path, err)
	}

	var rows [][]string
	switch fileType {
	case "csv":
		rows, err = readCSVRows(raw)
	case "xlsx":
		rows, err = readExcelRows(path)
	default:
		return nil, nil, fmt.Errorf("unsupported file type: %s", fileType)
	}
	if err != nil {
		return nil, nil, err
	}

	tbl, report, err := processRows(rows)
	if err != nil {
		return nil, nil, err
	}

	report.Path = path
	report.Format = fileType
	report.DatasetHash = core.NewDatasetHash(raw)

	log.Printf("[DataReader] %s file processed (%d columns, %d rows kept, %d dropped)",
		strings.ToUpper(fileType), len(report.Columns), report.RowsKept, report.RowsDropped)

	return tbl, report, nil
}

func detectFileType(path string) string {
	if strings.ToLower(filepath.Ext(path)) == ".csv" {
		return "csv"
	}
	return "xlsx"
}

// readCSVRows parses CSV bytes, sniffing the delimiter from the header
// line. The wine quality exports use semicolons.
func readCSVRows(raw []byte) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(raw))
	reader.Comma = sniffDelimiter(raw)
	reader.FieldsPerRecord = -1 // ragged rows are dropped later, not fatal

	readStart := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	readTime := time.Since(readStart)
	log.Printf("[DataReader] CSV parsed in %.2fms (%d rows)", float64(readTime.Nanoseconds())/1e6, len(rows))

	if len(rows) < 2 {
		return nil, fmt.Errorf("CSV file must have at least a header row and one data row")
	}
	return rows, nil
}

func sniffDelimiter(raw []byte) rune {
	line := raw
	if idx := bytes.IndexByte(raw, '\n'); idx >= 0 {
		line = raw[:idx]
	}
	if bytes.Count(line, []byte{';'}) > bytes.Count(line, []byte{','}) {
		return ';'
	}
	return ','
}

// readExcelRows reads Sheet1 of an Excel workbook.
func readExcelRows(path string) ([][]string, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	if err != nil {
		return nil, fmt.Errorf("failed to read Sheet1: %w", err)
	}
	readTime := time.Since(startTime)
	log.Printf("[DataReader] Sheet1 read in %.2fms (%d rows)", float64(readTime.Nanoseconds())/1e6, len(rows))

	if len(rows) < 2 {
		return nil, fmt.Errorf("Excel file must have at least a header row and one data row")
	}
	return rows, nil
}

// processRows converts raw string rows into a numeric table, dropping any
// row that is ragged or fails to parse.
func processRows(rows [][]string) (*table.Table, *table.LoadReport, error) {
	headerRow := rows[0]
	keys := make([]core.ColumnKey, len(headerRow))
	seen := make(map[core.ColumnKey]bool, len(headerRow))
	for i, header := range headerRow {
		key := core.ColumnKey(NormalizeHeader(header))
		if key == "" {
			return nil, nil, core.NewValidationError("header", fmt.Sprintf("column %d is empty", i))
		}
		if seen[key] {
			return nil, nil, fmt.Errorf("%w: %s", core.ErrDuplicateColumn, key)
		}
		seen[key] = true
		keys[i] = key
	}

	columns := make([][]float64, len(keys))
	dropped := 0
	for rowIdx := 1; rowIdx < len(rows); rowIdx++ {
		row := rows[rowIdx]
		parsed, ok := parseRow(row, len(keys))
		if !ok {
			dropped++
			continue
		}
		for j, v := range parsed {
			columns[j] = append(columns[j], v)
		}
	}

	kept := len(rows) - 1 - dropped
	if kept == 0 {
		return nil, nil, fmt.Errorf("%w: every data row was dropped", core.ErrEmptyTable)
	}

	tbl, err := table.New(keys, columns)
	if err != nil {
		return nil, nil, err
	}

	report := &table.LoadReport{
		RowsRead:    len(rows) - 1,
		RowsKept:    kept,
		RowsDropped: dropped,
		Columns:     keys,
	}
	return tbl, report, nil
}

// parseRow returns the numeric values of a row, or ok=false when the row
// is ragged or any cell is empty or non-numeric.
func parseRow(row []string, width int) ([]float64, bool) {
	if len(row) != width {
		return nil, false
	}
	values := make([]float64, width)
	for j, cell := range row {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			return nil, false
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil, false
		}
		values[j] = v
	}
	return values, true
}

// NormalizeHeader lowercases a header and squashes separators to
// underscores, so "free sulfur dioxide" and "pH" become stable keys.
func NormalizeHeader(header string) string {
	header = strings.TrimSpace(strings.Trim(header, "﻿\"'"))
	var b strings.Builder
	lastUnderscore := true
	for _, r := range strings.ToLower(header) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteRune('_')
				lastUnderscore = true
			}
		}
	}
	return strings.TrimRight(b.String(), "_")
}
