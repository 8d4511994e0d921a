package ports

import (
	"context"

	"winefit/domain/table"
)

// DatasetReaderPort loads a numeric table from disk. Implementations must
// drop rows with missing or non-numeric cells rather than guessing values,
// and report the row accounting in the load report.
type DatasetReaderPort interface {
	Read(ctx context.Context, path string) (*table.Table, *table.LoadReport, error)
}
