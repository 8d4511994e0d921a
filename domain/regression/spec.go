package regression

import (
	"fmt"
	"strings"

	"winefit/domain/core"
)

// InterceptKey names the intercept row in coefficient tables.
const InterceptKey core.ColumnKey = "(intercept)"

// ModelSpec names a response column and the predictor columns regressed
// against it. An intercept is always included and is not listed.
type ModelSpec struct {
	Response   core.ColumnKey   `json:"response"`
	Predictors []core.ColumnKey `json:"predictors"`
}

// NewModelSpec builds a spec over the given response and predictors.
func NewModelSpec(response core.ColumnKey, predictors ...core.ColumnKey) ModelSpec {
	ps := make([]core.ColumnKey, len(predictors))
	copy(ps, predictors)
	return ModelSpec{Response: response, Predictors: ps}
}

// Validate checks the spec is well formed: non-empty response, at least
// one predictor, no duplicates, response not among predictors.
func (m ModelSpec) Validate() error {
	if m.Response.String() == "" {
		return core.NewValidationError("response", "must not be empty")
	}
	if len(m.Predictors) == 0 {
		return core.NewValidationError("predictors", "at least one required")
	}
	seen := make(map[core.ColumnKey]bool, len(m.Predictors))
	for _, p := range m.Predictors {
		if p.String() == "" {
			return core.NewValidationError("predictor", "must not be empty")
		}
		if p == m.Response {
			return core.NewValidationError("predictors", fmt.Sprintf("response %s listed as predictor", p))
		}
		if seen[p] {
			return fmt.Errorf("%w: %s", core.ErrDuplicateColumn, p)
		}
		seen[p] = true
	}
	return nil
}

// Contains reports whether key is one of the predictors.
func (m ModelSpec) Contains(key core.ColumnKey) bool {
	for _, p := range m.Predictors {
		if p == key {
			return true
		}
	}
	return false
}

// WithoutPredictor returns a copy of the spec with one predictor removed.
func (m ModelSpec) WithoutPredictor(key core.ColumnKey) ModelSpec {
	ps := make([]core.ColumnKey, 0, len(m.Predictors))
	for _, p := range m.Predictors {
		if p != key {
			ps = append(ps, p)
		}
	}
	return ModelSpec{Response: m.Response, Predictors: ps}
}

// IsNestedIn reports whether every predictor of m also appears in outer
// and both share a response. Partial F-tests require this relationship.
func (m ModelSpec) IsNestedIn(outer ModelSpec) bool {
	if m.Response != outer.Response {
		return false
	}
	for _, p := range m.Predictors {
		if !outer.Contains(p) {
			return false
		}
	}
	return len(m.Predictors) < len(outer.Predictors)
}

// Formula renders the spec in R-style notation for reports and logs.
func (m ModelSpec) Formula() string {
	terms := make([]string, len(m.Predictors))
	for i, p := range m.Predictors {
		terms[i] = p.String()
	}
	return fmt.Sprintf("%s ~ %s", m.Response, strings.Join(terms, " + "))
}
