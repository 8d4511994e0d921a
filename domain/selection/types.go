package selection

import (
	"math"

	"winefit/domain/core"
	"winefit/domain/regression"
)

// RemovalReason explains why a predictor left the model.
type RemovalReason string

const (
	// ReasonCollinear marks removal driven by a variance inflation factor
	// above the policy threshold.
	ReasonCollinear RemovalReason = "collinear"
	// ReasonNotSignificant marks removal driven by a t-test p-value above
	// the policy alpha.
	ReasonNotSignificant RemovalReason = "not_significant"
)

// Policy holds the thresholds steering backward elimination.
type Policy struct {
	Alpha         float64 `json:"alpha"`
	VIFThreshold  float64 `json:"vif_threshold"`
	MinPredictors int     `json:"min_predictors"`
	MaxRounds     int     `json:"max_rounds"`
}

// DefaultPolicy mirrors the classroom protocol: 5% tests, VIF cutoff of 5,
// never reduce below a single predictor.
func DefaultPolicy() Policy {
	return Policy{Alpha: 0.05, VIFThreshold: 5.0, MinPredictors: 1, MaxRounds: 25}
}

// Validate checks the policy thresholds are usable.
func (p Policy) Validate() error {
	if p.Alpha <= 0 || p.Alpha >= 1 {
		return core.NewValidationError("alpha", "must lie in (0,1)")
	}
	if p.VIFThreshold <= 1 {
		return core.NewValidationError("vif_threshold", "must exceed 1")
	}
	if p.MinPredictors < 1 {
		return core.NewValidationError("min_predictors", "must be at least 1")
	}
	if p.MaxRounds < 1 {
		return core.NewValidationError("max_rounds", "must be at least 1")
	}
	return nil
}

// VIFEntry is the variance inflation factor of one predictor given the rest.
type VIFEntry struct {
	Predictor core.ColumnKey `json:"predictor"`
	VIF       float64        `json:"vif"`
}

// VIFReport is the collinearity check for one elimination round.
type VIFReport struct {
	Round   int        `json:"round"`
	Entries []VIFEntry `json:"entries"`
}

// Worst returns the entry with the largest VIF. ok is false for an empty
// report.
func (r VIFReport) Worst() (VIFEntry, bool) {
	var worst VIFEntry
	found := false
	for _, e := range r.Entries {
		if !found || e.VIF > worst.VIF {
			worst = e
			found = true
		}
	}
	return worst, found
}

// Flagged returns the entries strictly above the threshold, preserving order.
func (r VIFReport) Flagged(threshold float64) []VIFEntry {
	var out []VIFEntry
	for _, e := range r.Entries {
		if e.VIF > threshold {
			out = append(out, e)
		}
	}
	return out
}

// Removal records one predictor leaving the model during elimination.
type Removal struct {
	Round     int            `json:"round"`
	Predictor core.ColumnKey `json:"predictor"`
	Reason    RemovalReason  `json:"reason"`
	PValue    float64        `json:"p_value"`
	VIF       float64        `json:"vif,omitempty"`
}

// Trace is the full history of a backward elimination run.
type Trace struct {
	Start      regression.ModelSpec `json:"start"`
	Final      regression.ModelSpec `json:"final"`
	Removals   []Removal            `json:"removals"`
	VIFReports []VIFReport          `json:"vif_reports"`
	Rounds     int                  `json:"rounds"`
}

// Removed reports whether a predictor was eliminated at any round.
func (t *Trace) Removed(key core.ColumnKey) bool {
	for _, r := range t.Removals {
		if r.Predictor == key {
			return true
		}
	}
	return false
}

// FTest is the result of a partial F-test between two nested fits.
// AcceptReduction is true when the test fails to reject the hypothesis
// that the dropped coefficients are zero, meaning the smaller model is
// statistically adequate.
type FTest struct {
	Full            regression.ModelSpec `json:"full"`
	Reduced         regression.ModelSpec `json:"reduced"`
	FStat           float64              `json:"f_stat"`
	DFNumerator     int                  `json:"df_numerator"`
	DFDenominator   int                  `json:"df_denominator"`
	PValue          float64              `json:"p_value"`
	Alpha           float64              `json:"alpha"`
	AcceptReduction bool                 `json:"accept_reduction"`
}

// Candidate labels one fitted model entering the final comparison.
type Candidate struct {
	Label string          `json:"label"`
	Fit   *regression.Fit `json:"fit"`
}

// Comparison ranks candidate models on their information criteria.
type Comparison struct {
	Candidates []Candidate `json:"candidates"`
}

// BestByAICc returns the candidate with the smallest AICc. ok is false
// for an empty comparison.
func (c *Comparison) BestByAICc() (Candidate, bool) {
	return c.best(func(f *regression.Fit) float64 { return f.AICc })
}

// BestByBIC returns the candidate with the smallest BIC.
func (c *Comparison) BestByBIC() (Candidate, bool) {
	return c.best(func(f *regression.Fit) float64 { return f.BIC })
}

// BestByAdjR2 returns the candidate with the largest adjusted R-squared.
func (c *Comparison) BestByAdjR2() (Candidate, bool) {
	return c.best(func(f *regression.Fit) float64 { return -f.AdjR2 })
}

func (c *Comparison) best(score func(*regression.Fit) float64) (Candidate, bool) {
	var winner Candidate
	bestScore := math.Inf(1)
	found := false
	for _, cand := range c.Candidates {
		if cand.Fit == nil {
			continue
		}
		if s := score(cand.Fit); s < bestScore {
			bestScore = s
			winner = cand
			found = true
		}
	}
	return winner, found
}
