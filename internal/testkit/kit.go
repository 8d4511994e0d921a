// Package testkit provides shared fixtures and pre-wired adapters for
// tests.
package testkit

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"winefit/adapters/plots"
	reportadapter "winefit/adapters/report"
	"winefit/adapters/rng"
	"winefit/adapters/stats/criteria"
	"winefit/adapters/stats/ols"
	"winefit/adapters/tabular"
	"winefit/domain/table"
	"winefit/ports"
)

// TestKit provides testing utilities and fixtures
type TestKit struct{}

// NewTestKit creates a new test kit instance
func NewTestKit() *TestKit {
	return &TestKit{}
}

// DatasetReader returns the CSV/XLSX reader adapter
func (t *TestKit) DatasetReader() ports.DatasetReaderPort {
	return tabular.NewDataReader()
}

// RNG returns the seeded stream adapter
func (t *TestKit) RNG() ports.RNGPort {
	return rng.NewSeededRNG()
}

// Fitter returns the least squares adapter
func (t *TestKit) Fitter() *ols.LeastSquares {
	return ols.NewLeastSquares()
}

// Distributions returns the test statistic distributions adapter
func (t *TestKit) Distributions() *criteria.Distributions {
	return criteria.NewDistributions()
}

// ReportWriter returns a writer rendering real SVG figures
func (t *TestKit) ReportWriter() ports.ReportWriterPort {
	return reportadapter.NewWriter(plots.NewSVGRenderer())
}

// WriteCSV saves a table as a semicolon-delimited CSV in the layout of
// the wine quality source files.
func WriteCSV(tbl *table.Table, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	var b strings.Builder
	keys := tbl.Columns()
	headers := make([]string, len(keys))
	for i, key := range keys {
		headers[i] = `"` + string(key) + `"`
	}
	b.WriteString(strings.Join(headers, ";") + "\n")

	cols := make([][]float64, len(keys))
	for i, key := range keys {
		col, err := tbl.Column(key)
		if err != nil {
			return err
		}
		cols[i] = col
	}

	cells := make([]string, len(keys))
	for r := 0; r < tbl.NumRows(); r++ {
		for c := range keys {
			cells[c] = strconv.FormatFloat(cols[c][r], 'g', -1, 64)
		}
		b.WriteString(strings.Join(cells, ";") + "\n")
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("writing fixture csv: %w", err)
	}
	return nil
}
