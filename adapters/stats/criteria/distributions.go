package criteria

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Distributions provides unified access to the reference distributions
// the analysis needs: Student's t for coefficient tests, F for nested
// model tests and influence cutoffs, and the standard normal for Q-Q
// quantiles.
type Distributions struct{}

// NewDistributions creates a new distributions utility
func NewDistributions() *Distributions {
	return &Distributions{}
}

// TTestPValue computes the two-tailed p-value of a t-statistic.
func (d *Distributions) TTestPValue(tStatistic float64, degreesOfFreedom int) float64 {
	if degreesOfFreedom <= 0 {
		return 1.0
	}

	df := float64(degreesOfFreedom)
	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}

	// Two-tailed test
	return 2 * (1 - tDist.CDF(math.Abs(tStatistic)))
}

// TQuantile computes the quantile of Student's t-distribution.
func (d *Distributions) TQuantile(p float64, degreesOfFreedom int) float64 {
	if degreesOfFreedom <= 0 {
		return math.NaN()
	}
	return distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(degreesOfFreedom)}.Quantile(p)
}

// FTestPValue computes the upper-tail p-value of an F-statistic.
func (d *Distributions) FTestPValue(fStatistic float64, df1, df2 int) float64 {
	if df1 <= 0 || df2 <= 0 {
		return 1.0
	}
	if fStatistic <= 0 {
		return 1.0
	}

	fDist := distuv.F{D1: float64(df1), D2: float64(df2)}
	return 1 - fDist.CDF(fStatistic)
}

// FQuantile computes the quantile of the F distribution.
func (d *Distributions) FQuantile(p float64, df1, df2 int) float64 {
	if df1 <= 0 || df2 <= 0 {
		return math.NaN()
	}
	return distuv.F{D1: float64(df1), D2: float64(df2)}.Quantile(p)
}

// CooksCutoff returns the influence cutoff for a fit with p predictors on
// n observations: the median of F(p+1, n-p-1).
func (d *Distributions) CooksCutoff(n, p int) float64 {
	return d.FQuantile(0.5, p+1, n-p-1)
}

// NormalCDF computes the standard normal CDF.
func (d *Distributions) NormalCDF(x float64) float64 {
	return distuv.UnitNormal.CDF(x)
}

// NormalQuantile computes the standard normal quantile (inverse CDF).
func (d *Distributions) NormalQuantile(p float64) float64 {
	return distuv.UnitNormal.Quantile(p)
}

// TheoreticalQuantiles returns the n normal quantiles at probability
// points (i-0.5)/n, the x-axis of a Q-Q plot.
func (d *Distributions) TheoreticalQuantiles(n int) []float64 {
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = d.NormalQuantile((float64(i) + 0.5) / float64(n))
	}
	return out
}

// CoefficientInterval computes a t-based confidence interval around a
// coefficient estimate.
func (d *Distributions) CoefficientInterval(estimate, stdErr float64, degreesOfFreedom int, level float64) (lower, upper float64) {
	if degreesOfFreedom <= 0 || stdErr <= 0 {
		return estimate, estimate
	}
	if level <= 0 || level >= 1 {
		level = 0.95
	}

	alpha := 1.0 - level
	tCritical := d.TQuantile(1.0-alpha/2.0, degreesOfFreedom)
	margin := tCritical * stdErr
	return estimate - margin, estimate + margin
}
