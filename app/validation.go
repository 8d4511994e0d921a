package app

import (
	"math"

	"winefit/domain/core"
)

// HoldoutMetrics summarizes prediction quality on the held-out rows.
type HoldoutMetrics struct {
	N    int     `json:"n"`
	RMSE float64 `json:"rmse"`
	MAE  float64 `json:"mae"`
	R2   float64 `json:"r2"`
}

// NewHoldoutMetrics scores predictions against observed responses.
func NewHoldoutMetrics(observed, predicted []float64) (*HoldoutMetrics, error) {
	if len(observed) == 0 {
		return nil, core.ErrInsufficientData
	}
	if len(observed) != len(predicted) {
		return nil, core.NewValidationError("holdout",
			"observed and predicted lengths differ")
	}

	n := len(observed)
	var sse, sae, mean float64
	for i := range observed {
		diff := observed[i] - predicted[i]
		sse += diff * diff
		sae += math.Abs(diff)
		mean += observed[i]
	}
	mean /= float64(n)

	var sst float64
	for _, y := range observed {
		dev := y - mean
		sst += dev * dev
	}

	r2 := 0.0
	if sst > 0 {
		r2 = 1 - sse/sst
	}

	return &HoldoutMetrics{
		N:    n,
		RMSE: math.Sqrt(sse / float64(n)),
		MAE:  sae / float64(n),
		R2:   r2,
	}, nil
}
