package diagnostics

import (
	"math"
	"sort"

	"winefit/domain/core"
	"winefit/domain/regression"
)

// Influence collects the per-observation influence measures of a fit and
// the rows flagged by the classroom cutoffs. CooksThreshold is the median
// of the F distribution with (p+1, n-p-1) degrees of freedom and must be
// supplied by the caller; the distribution math lives behind an adapter.
type Influence struct {
	CooksD      []float64 `json:"-"`
	DFFITS      []float64 `json:"-"`
	Studentized []float64 `json:"-"`

	CooksThreshold  float64 `json:"cooks_threshold"`
	DFFITSThreshold float64 `json:"dffits_threshold"`

	FlaggedCooks  []int `json:"flagged_cooks"`
	FlaggedDFFITS []int `json:"flagged_dffits"`

	N int `json:"n"`
	P int `json:"p"`
}

// DFFITSCutoff returns the size-adjusted DFFITS cutoff 2*sqrt((p+1)/n).
func DFFITSCutoff(n, p int) float64 {
	return 2 * math.Sqrt(float64(p+1)/float64(n))
}

// NewInfluence computes Cook's distance, DFFITS, and externally
// studentized residuals from a fit's residuals and leverages.
func NewInfluence(fit *regression.Fit, cooksThreshold float64) (*Influence, error) {
	n := fit.N
	pPrime := fit.NumParams()
	if n == 0 || len(fit.Residuals) != n || len(fit.Leverage) != n {
		return nil, core.NewValidationError("fit", "residuals and leverages must cover all rows")
	}
	if fit.DFResidual <= 1 {
		return nil, core.ErrInsufficientData
	}

	inf := &Influence{
		CooksD:          make([]float64, n),
		DFFITS:          make([]float64, n),
		Studentized:     make([]float64, n),
		CooksThreshold:  cooksThreshold,
		DFFITSThreshold: DFFITSCutoff(n, fit.NumPredictors()),
		N:               n,
		P:               fit.NumPredictors(),
	}

	for i := 0; i < n; i++ {
		e := fit.Residuals[i]
		h := fit.Leverage[i]
		oneMinusH := 1 - h
		if oneMinusH <= 0 {
			// a leverage of one pins the fit to the observation
			inf.CooksD[i] = math.Inf(1)
			inf.DFFITS[i] = math.Inf(1)
			inf.Studentized[i] = math.Inf(1)
			continue
		}

		inf.CooksD[i] = (e * e * h) / (float64(pPrime) * fit.Sigma2 * oneMinusH * oneMinusH)

		// externally studentized residual: variance re-estimated with
		// the observation deleted
		deletedVar := (fit.RSS - e*e/oneMinusH) / float64(fit.DFResidual-1)
		if deletedVar <= 0 {
			deletedVar = math.SmallestNonzeroFloat64
		}
		tExt := e / math.Sqrt(deletedVar*oneMinusH)
		inf.Studentized[i] = tExt
		inf.DFFITS[i] = tExt * math.Sqrt(h/oneMinusH)
	}

	for i := 0; i < n; i++ {
		if inf.CooksD[i] > inf.CooksThreshold {
			inf.FlaggedCooks = append(inf.FlaggedCooks, i)
		}
		if math.Abs(inf.DFFITS[i]) > inf.DFFITSThreshold {
			inf.FlaggedDFFITS = append(inf.FlaggedDFFITS, i)
		}
	}
	sort.Ints(inf.FlaggedCooks)
	sort.Ints(inf.FlaggedDFFITS)

	return inf, nil
}

// FlaggedEither returns the union of both flag sets, sorted ascending.
func (inf *Influence) FlaggedEither() []int {
	seen := make(map[int]bool, len(inf.FlaggedCooks)+len(inf.FlaggedDFFITS))
	for _, i := range inf.FlaggedCooks {
		seen[i] = true
	}
	for _, i := range inf.FlaggedDFFITS {
		seen[i] = true
	}
	out := make([]int, 0, len(seen))
	for i := range seen {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// StandardizedResiduals returns internally studentized residuals
// e_i / (s * sqrt(1-h_i)), used by the residual diagnostic plots.
func StandardizedResiduals(fit *regression.Fit) []float64 {
	out := make([]float64, len(fit.Residuals))
	s := fit.ResidualStdErr()
	for i, e := range fit.Residuals {
		oneMinusH := 1 - fit.Leverage[i]
		if oneMinusH <= 0 || s == 0 {
			out[i] = math.Inf(1)
			continue
		}
		out[i] = e / (s * math.Sqrt(oneMinusH))
	}
	return out
}
