package table

import (
	"math"

	"winefit/domain/core"
)

// LogPrefix is prepended to a column key when the column is replaced by
// its natural logarithm.
const LogPrefix = "log_"

// LogTransform replaces a fixed set of columns with their natural logs.
// Transformed columns are renamed with LogPrefix; all other columns pass
// through untouched. Zero or negative values abort the transform, since
// the downstream model is defined on log scale.
type LogTransform struct {
	columns map[core.ColumnKey]bool
	order   []core.ColumnKey
}

// NewLogTransform builds a transform over the given columns.
func NewLogTransform(keys ...core.ColumnKey) *LogTransform {
	columns := make(map[core.ColumnKey]bool, len(keys))
	order := make([]core.ColumnKey, 0, len(keys))
	for _, key := range keys {
		if !columns[key] {
			columns[key] = true
			order = append(order, key)
		}
	}
	return &LogTransform{columns: columns, order: order}
}

// Columns returns the keys this transform applies to, in declaration order.
func (lt *LogTransform) Columns() []core.ColumnKey {
	out := make([]core.ColumnKey, len(lt.order))
	copy(out, lt.order)
	return out
}

// TargetKey maps a source column key to the key it will carry after the
// transform. Keys outside the transform set map to themselves.
func (lt *LogTransform) TargetKey(key core.ColumnKey) core.ColumnKey {
	if lt.columns[key] {
		return core.ColumnKey(LogPrefix + key.String())
	}
	return key
}

// Apply produces a new table with the configured columns replaced by
// their natural logs. Column order is preserved.
func (lt *LogTransform) Apply(t *Table) (*Table, error) {
	for _, key := range lt.order {
		if !t.HasColumn(key) {
			return nil, core.NewColumnNotFoundError(key)
		}
	}

	srcKeys := t.Columns()
	keys := make([]core.ColumnKey, len(srcKeys))
	columns := make([][]float64, len(srcKeys))

	for i, key := range srcKeys {
		values, err := t.Column(key)
		if err != nil {
			return nil, err
		}
		if !lt.columns[key] {
			keys[i] = key
			columns[i] = values
			continue
		}

		logged := make([]float64, len(values))
		for row, v := range values {
			if v <= 0 {
				return nil, core.NewNonPositiveError(key, row, v)
			}
			logged[row] = math.Log(v)
		}
		keys[i] = lt.TargetKey(key)
		columns[i] = logged
	}

	return New(keys, columns)
}
