package ols

import (
	"errors"
	"fmt"
	"math"

	"winefit/adapters/stats/criteria"
	"winefit/domain/core"
	"winefit/domain/regression"
	"winefit/domain/table"

	"gonum.org/v1/gonum/mat"
)

// rank deficiency tolerance relative to the largest R diagonal
const rankTolerance = 1e-12

// LeastSquares fits linear models by QR decomposition, which stays
// stable on the near-collinear physicochemical columns where the normal
// equations would lose precision.
type LeastSquares struct {
	distributions *criteria.Distributions
}

// NewLeastSquares creates the fitter.
func NewLeastSquares() *LeastSquares {
	return &LeastSquares{distributions: criteria.NewDistributions()}
}

// Fit estimates spec on tbl and returns the complete fit: coefficient
// table with standard errors and two-tailed p-values, residuals, fitted
// values, leverages, and goodness-of-fit summaries.
func (ls *LeastSquares) Fit(tbl *table.Table, spec regression.ModelSpec) (*regression.Fit, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	n := tbl.NumRows()
	p := len(spec.Predictors)
	pPrime := p + 1
	dfResid := n - pPrime
	if dfResid < 1 {
		return nil, fmt.Errorf("%w: %d rows for %d parameters", core.ErrInsufficientData, n, pPrime)
	}

	y, err := tbl.Column(spec.Response)
	if err != nil {
		return nil, err
	}
	X, err := designMatrix(tbl, spec.Predictors)
	if err != nil {
		return nil, err
	}

	var qr mat.QR
	qr.Factorize(X)
	if err := checkRank(&qr, pPrime); err != nil {
		return nil, err
	}

	yVec := mat.NewVecDense(n, nil)
	for i, v := range y {
		yVec.SetVec(i, v)
	}

	var beta mat.VecDense
	if err := qr.SolveVecTo(&beta, false, yVec); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrSingularDesign, err)
	}

	var fittedVec mat.VecDense
	fittedVec.MulVec(X, &beta)

	fitted := make([]float64, n)
	residuals := make([]float64, n)
	rss := 0.0
	ybar := 0.0
	for i := 0; i < n; i++ {
		fitted[i] = fittedVec.AtVec(i)
		residuals[i] = y[i] - fitted[i]
		rss += residuals[i] * residuals[i]
		ybar += y[i]
	}
	ybar /= float64(n)

	tss := 0.0
	for i := 0; i < n; i++ {
		dev := y[i] - ybar
		tss += dev * dev
	}

	sigma2 := rss / float64(dfResid)

	// (X'X)^-1 drives both standard errors and leverages
	var xtx mat.Dense
	xtx.Mul(X.T(), X)
	var xtxInv mat.Dense
	if err := xtxInv.Inverse(&xtx); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrSingularDesign, err)
	}

	names := append([]core.ColumnKey{regression.InterceptKey}, spec.Predictors...)
	coefficients := make([]regression.Coefficient, pPrime)
	for j := 0; j < pPrime; j++ {
		variance := sigma2 * xtxInv.At(j, j)
		if variance < 0 {
			return nil, fmt.Errorf("%w: negative coefficient variance", core.ErrSingularDesign)
		}
		se := math.Sqrt(variance)
		estimate := beta.AtVec(j)

		var tValue float64
		switch {
		case se > 0:
			tValue = estimate / se
		case estimate > 0:
			tValue = math.Inf(1)
		case estimate < 0:
			tValue = math.Inf(-1)
		}

		coefficients[j] = regression.Coefficient{
			Name:     names[j],
			Estimate: estimate,
			StdErr:   se,
			TValue:   tValue,
			PValue:   ls.distributions.TTestPValue(tValue, dfResid),
		}
	}

	leverage := make([]float64, n)
	for i := 0; i < n; i++ {
		h := 0.0
		for a := 0; a < pPrime; a++ {
			xa := X.At(i, a)
			for b := 0; b < pPrime; b++ {
				h += xa * xtxInv.At(a, b) * X.At(i, b)
			}
		}
		leverage[i] = h
	}

	logLik := regression.GaussianLogLikelihood(rss, n)
	k := pPrime + 1 // error variance counts as a parameter
	aic := regression.AIC(logLik, k)

	return &regression.Fit{
		Spec:         spec,
		Coefficients: coefficients,
		Residuals:    residuals,
		Fitted:       fitted,
		Leverage:     leverage,
		N:            n,
		DFResidual:   dfResid,
		RSS:          rss,
		TSS:          tss,
		Sigma2:       sigma2,
		R2:           regression.RSquared(rss, tss),
		AdjR2:        regression.AdjustedRSquared(rss, tss, n, p),
		LogLik:       logLik,
		AIC:          aic,
		AICc:         regression.AICc(aic, n, k),
		BIC:          regression.BIC(logLik, n, k),
	}, nil
}

// Predict applies the fitted coefficients to new rows.
func (ls *LeastSquares) Predict(fit *regression.Fit, tbl *table.Table) ([]float64, error) {
	X, err := designMatrix(tbl, fit.Spec.Predictors)
	if err != nil {
		return nil, err
	}

	beta := mat.NewVecDense(fit.NumParams(), nil)
	beta.SetVec(0, fit.Intercept())
	for j, key := range fit.Spec.Predictors {
		c, ok := fit.Coefficient(key)
		if !ok {
			return nil, core.NewColumnNotFoundError(key)
		}
		beta.SetVec(j+1, c.Estimate)
	}

	var out mat.VecDense
	out.MulVec(X, beta)

	predictions := make([]float64, tbl.NumRows())
	for i := range predictions {
		predictions[i] = out.AtVec(i)
	}
	return predictions, nil
}

// designMatrix builds [1 | predictors] in spec order.
func designMatrix(tbl *table.Table, predictors []core.ColumnKey) (*mat.Dense, error) {
	n := tbl.NumRows()
	X := mat.NewDense(n, len(predictors)+1, nil)
	for i := 0; i < n; i++ {
		X.Set(i, 0, 1)
	}
	for j, key := range predictors {
		col, err := tbl.Column(key)
		if err != nil {
			return nil, err
		}
		for i := 0; i < n; i++ {
			X.Set(i, j+1, col[i])
		}
	}
	return X, nil
}

// checkRank rejects designs whose R factor has a (near) zero diagonal.
func checkRank(qr *mat.QR, cols int) error {
	var r mat.Dense
	qr.RTo(&r)

	maxDiag := 0.0
	for j := 0; j < cols; j++ {
		if d := math.Abs(r.At(j, j)); d > maxDiag {
			maxDiag = d
		}
	}
	if maxDiag == 0 {
		return core.ErrSingularDesign
	}
	for j := 0; j < cols; j++ {
		if math.Abs(r.At(j, j)) < rankTolerance*maxDiag {
			return fmt.Errorf("%w: column %d is linearly dependent", core.ErrSingularDesign, j)
		}
	}
	return nil
}

// IsSingular reports whether an error came from a rank-deficient design.
func IsSingular(err error) bool {
	return errors.Is(err, core.ErrSingularDesign)
}
