package ols

import (
	"fmt"
	"math"

	"winefit/domain/core"
	"winefit/domain/regression"
	"winefit/domain/selection"
	"winefit/domain/table"
)

// VIF values beyond this R-squared are reported as infinite.
const vifR2Ceiling = 1 - 1e-12

// VarianceInflation regresses each predictor on the remaining ones and
// returns 1/(1-R^2) per predictor, preserving input order. A predictor
// whose auxiliary regression is itself rank deficient is exactly
// collinear and reported as +Inf.
func (ls *LeastSquares) VarianceInflation(tbl *table.Table, predictors []core.ColumnKey) ([]selection.VIFEntry, error) {
	if len(predictors) < 2 {
		return nil, fmt.Errorf("%w: variance inflation needs at least two predictors, got %d",
			core.ErrInsufficientData, len(predictors))
	}

	entries := make([]selection.VIFEntry, len(predictors))
	for j, key := range predictors {
		others := make([]core.ColumnKey, 0, len(predictors)-1)
		for _, other := range predictors {
			if other != key {
				others = append(others, other)
			}
		}

		aux, err := ls.Fit(tbl, regression.NewModelSpec(key, others...))
		if err != nil {
			if IsSingular(err) {
				entries[j] = selection.VIFEntry{Predictor: key, VIF: math.Inf(1)}
				continue
			}
			return nil, fmt.Errorf("auxiliary regression for %s: %w", key, err)
		}

		value := math.Inf(1)
		if aux.R2 < vifR2Ceiling {
			value = 1 / (1 - aux.R2)
		}
		entries[j] = selection.VIFEntry{Predictor: key, VIF: value}
	}
	return entries, nil
}
