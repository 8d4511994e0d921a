package regression

import (
	"math"

	"winefit/domain/core"
)

// Coefficient is one row of a fitted coefficient table.
type Coefficient struct {
	Name     core.ColumnKey `json:"name"`
	Estimate float64        `json:"estimate"`
	StdErr   float64        `json:"std_err"`
	TValue   float64        `json:"t_value"`
	PValue   float64        `json:"p_value"`
}

// Fit is the result of an ordinary least squares fit. Residuals, fitted
// values, and leverages are aligned with the rows of the training table
// the model was fit on.
type Fit struct {
	Spec         ModelSpec     `json:"spec"`
	Coefficients []Coefficient `json:"coefficients"`
	Residuals    []float64     `json:"-"`
	Fitted       []float64     `json:"-"`
	Leverage     []float64     `json:"-"`

	N          int     `json:"n"`
	DFResidual int     `json:"df_residual"`
	RSS        float64 `json:"rss"`
	TSS        float64 `json:"tss"`
	Sigma2     float64 `json:"sigma2"`

	R2     float64 `json:"r2"`
	AdjR2  float64 `json:"adj_r2"`
	LogLik float64 `json:"log_lik"`
	AIC    float64 `json:"aic"`
	AICc   float64 `json:"aicc"`
	BIC    float64 `json:"bic"`
}

// NumPredictors returns the predictor count, intercept excluded.
func (f *Fit) NumPredictors() int {
	return len(f.Spec.Predictors)
}

// NumParams returns the count of estimated mean parameters, intercept
// included.
func (f *Fit) NumParams() int {
	return len(f.Spec.Predictors) + 1
}

// Coefficient looks up a coefficient row by name.
func (f *Fit) Coefficient(name core.ColumnKey) (Coefficient, bool) {
	for _, c := range f.Coefficients {
		if c.Name == name {
			return c, true
		}
	}
	return Coefficient{}, false
}

// Intercept returns the intercept estimate.
func (f *Fit) Intercept() float64 {
	if c, ok := f.Coefficient(InterceptKey); ok {
		return c.Estimate
	}
	return 0
}

// ResidualStdErr returns the residual standard error sqrt(RSS/df).
func (f *Fit) ResidualStdErr() float64 {
	return math.Sqrt(f.Sigma2)
}

// WorstPValue returns the predictor with the largest p-value, intercept
// excluded. ok is false when the fit has no predictors.
func (f *Fit) WorstPValue() (Coefficient, bool) {
	var worst Coefficient
	found := false
	for _, c := range f.Coefficients {
		if c.Name == InterceptKey {
			continue
		}
		if !found || c.PValue > worst.PValue {
			worst = c
			found = true
		}
	}
	return worst, found
}
