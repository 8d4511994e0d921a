package regression

import (
	"math"
)

// Goodness-of-fit and information criterion formulas. Criteria follow the
// Gaussian likelihood convention where the error variance counts as an
// estimated parameter, so a model with p predictors has k = p + 2.

// RSquared returns the coefficient of determination.
func RSquared(rss, tss float64) float64 {
	if tss == 0 {
		return 0
	}
	return 1 - rss/tss
}

// AdjustedRSquared penalizes R-squared for model size. n is the number of
// observations and p the number of predictors, intercept excluded.
func AdjustedRSquared(rss, tss float64, n, p int) float64 {
	dfResid := n - p - 1
	if tss == 0 || dfResid <= 0 || n <= 1 {
		return 0
	}
	return 1 - (rss/float64(dfResid))/(tss/float64(n-1))
}

// GaussianLogLikelihood returns the maximized log likelihood of a linear
// model with normal errors, evaluated at the MLE variance RSS/n.
func GaussianLogLikelihood(rss float64, n int) float64 {
	nf := float64(n)
	return -0.5 * nf * (math.Log(2*math.Pi) + math.Log(rss/nf) + 1)
}

// AIC is the Akaike information criterion for k estimated parameters.
func AIC(logLik float64, k int) float64 {
	return -2*logLik + 2*float64(k)
}

// AICc applies the small-sample correction to AIC. It degenerates to +Inf
// when n <= k+1, which correctly makes overparameterized models lose.
func AICc(aic float64, n, k int) float64 {
	denom := float64(n - k - 1)
	if denom <= 0 {
		return math.Inf(1)
	}
	return aic + (2.0*float64(k)*float64(k+1))/denom
}

// BIC is the Bayesian information criterion for k estimated parameters.
func BIC(logLik float64, n, k int) float64 {
	return -2*logLik + float64(k)*math.Log(float64(n))
}
