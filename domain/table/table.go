package table

import (
	"fmt"

	"winefit/domain/core"
)

// Table is a rectangular numeric frame with named columns. Values are
// stored column-major. A Table is never mutated after construction;
// transformations and row subsets produce new tables.
type Table struct {
	keys []core.ColumnKey
	cols map[core.ColumnKey][]float64
	rows int
}

// New builds a table from column keys and per-column value slices.
// Columns must be unique, aligned with keys, and of equal length.
func New(keys []core.ColumnKey, columns [][]float64) (*Table, error) {
	if len(keys) == 0 {
		return nil, core.NewValidationError("columns", "table requires at least one column")
	}
	if len(keys) != len(columns) {
		return nil, fmt.Errorf("%w: %d keys for %d columns", core.ErrLengthMismatch, len(keys), len(columns))
	}

	rows := len(columns[0])
	cols := make(map[core.ColumnKey][]float64, len(keys))
	ordered := make([]core.ColumnKey, len(keys))

	for i, key := range keys {
		if key.String() == "" {
			return nil, core.NewValidationError("column key", "must not be empty")
		}
		if _, exists := cols[key]; exists {
			return nil, fmt.Errorf("%w: %s", core.ErrDuplicateColumn, key)
		}
		if len(columns[i]) != rows {
			return nil, fmt.Errorf("%w: column %s has %d rows, expected %d",
				core.ErrLengthMismatch, key, len(columns[i]), rows)
		}
		values := make([]float64, rows)
		copy(values, columns[i])
		cols[key] = values
		ordered[i] = key
	}

	return &Table{keys: ordered, cols: cols, rows: rows}, nil
}

// FromColumns builds a table from a key order and a column map. Every
// key must appear in the map, and the map must hold nothing else.
func FromColumns(keys []core.ColumnKey, cols map[core.ColumnKey][]float64) (*Table, error) {
	if len(cols) != len(keys) {
		return nil, fmt.Errorf("%w: %d keys for %d columns", core.ErrLengthMismatch, len(keys), len(cols))
	}
	columns := make([][]float64, len(keys))
	for i, key := range keys {
		values, ok := cols[key]
		if !ok {
			return nil, core.NewColumnNotFoundError(key)
		}
		columns[i] = values
	}
	return New(keys, columns)
}

// NumRows returns the number of rows
func (t *Table) NumRows() int {
	return t.rows
}

// NumColumns returns the number of columns
func (t *Table) NumColumns() int {
	return len(t.keys)
}

// Columns returns the column keys in their original order
func (t *Table) Columns() []core.ColumnKey {
	out := make([]core.ColumnKey, len(t.keys))
	copy(out, t.keys)
	return out
}

// HasColumn reports whether the table contains the column
func (t *Table) HasColumn(key core.ColumnKey) bool {
	_, ok := t.cols[key]
	return ok
}

// Column returns the values of one column. The returned slice is the
// table's backing storage and must not be modified by callers.
func (t *Table) Column(key core.ColumnKey) ([]float64, error) {
	values, ok := t.cols[key]
	if !ok {
		return nil, core.NewColumnNotFoundError(key)
	}
	return values, nil
}

// Select returns a new table holding only the requested columns, in the
// requested order.
func (t *Table) Select(keys ...core.ColumnKey) (*Table, error) {
	columns := make([][]float64, 0, len(keys))
	for _, key := range keys {
		values, err := t.Column(key)
		if err != nil {
			return nil, err
		}
		columns = append(columns, values)
	}
	return New(keys, columns)
}

// Subset returns a new table containing the given rows in the given order.
func (t *Table) Subset(rows []int) (*Table, error) {
	if len(rows) == 0 {
		return nil, core.ErrEmptyTable
	}
	for _, r := range rows {
		if r < 0 || r >= t.rows {
			return nil, core.NewValidationError("row index", fmt.Sprintf("%d out of range [0,%d)", r, t.rows))
		}
	}

	columns := make([][]float64, len(t.keys))
	for i, key := range t.keys {
		src := t.cols[key]
		dst := make([]float64, len(rows))
		for j, r := range rows {
			dst[j] = src[r]
		}
		columns[i] = dst
	}
	return New(t.Columns(), columns)
}

// WithColumn returns a new table with an extra column appended.
func (t *Table) WithColumn(key core.ColumnKey, values []float64) (*Table, error) {
	if t.HasColumn(key) {
		return nil, fmt.Errorf("%w: %s", core.ErrDuplicateColumn, key)
	}
	if len(values) != t.rows {
		return nil, fmt.Errorf("%w: column %s has %d rows, expected %d",
			core.ErrLengthMismatch, key, len(values), t.rows)
	}

	keys := append(t.Columns(), key)
	columns := make([][]float64, 0, len(keys))
	for _, k := range t.keys {
		columns = append(columns, t.cols[k])
	}
	columns = append(columns, values)
	return New(keys, columns)
}

// LoadReport captures what happened while reading a dataset from disk.
type LoadReport struct {
	Path        string           `json:"path"`
	Format      string           `json:"format"`
	RowsRead    int              `json:"rows_read"`
	RowsKept    int              `json:"rows_kept"`
	RowsDropped int              `json:"rows_dropped"`
	Columns     []core.ColumnKey `json:"columns"`
	DatasetHash core.DatasetHash `json:"dataset_hash"`
}
