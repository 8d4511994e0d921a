package study

import (
	"encoding/json"

	"winefit/domain/core"
	"winefit/domain/regression"
	"winefit/domain/selection"
	"winefit/domain/table"
)

// Column keys of the Vinho Verde red wine dataset, normalized to
// snake_case by the reader.
const (
	KeyFixedAcidity       core.ColumnKey = "fixed_acidity"
	KeyVolatileAcidity    core.ColumnKey = "volatile_acidity"
	KeyCitricAcid         core.ColumnKey = "citric_acid"
	KeyResidualSugar      core.ColumnKey = "residual_sugar"
	KeyChlorides          core.ColumnKey = "chlorides"
	KeyFreeSulfurDioxide  core.ColumnKey = "free_sulfur_dioxide"
	KeyTotalSulfurDioxide core.ColumnKey = "total_sulfur_dioxide"
	KeyDensity            core.ColumnKey = "density"
	KeyPH                 core.ColumnKey = "ph"
	KeySulphates          core.ColumnKey = "sulphates"
	KeyAlcohol            core.ColumnKey = "alcohol"
	KeyQuality            core.ColumnKey = "quality"
)

// RawColumns returns the expected dataset columns in file order.
func RawColumns() []core.ColumnKey {
	return []core.ColumnKey{
		KeyFixedAcidity, KeyVolatileAcidity, KeyCitricAcid, KeyResidualSugar,
		KeyChlorides, KeyFreeSulfurDioxide, KeyTotalSulfurDioxide, KeyDensity,
		KeyPH, KeySulphates, KeyAlcohol, KeyQuality,
	}
}

// Protocol fixes every analysis decision up front: which columns are
// modeled, which are log-scaled, the split seed and size, the test
// thresholds, and the reduced model the report argues for. Runs with
// equal protocols and equal data are bit-for-bit reproducible.
type Protocol struct {
	Response      core.ColumnKey   `json:"response"`
	RawPredictors []core.ColumnKey `json:"raw_predictors"`
	// LogColumns are replaced by their natural logs before modeling.
	// Citric acid stays on its original scale: it contains exact zeros.
	LogColumns []core.ColumnKey `json:"log_columns"`
	// FinalPredictors is the documented reduced model, stated on the
	// post-transform scale.
	FinalPredictors []core.ColumnKey `json:"final_predictors"`

	Alpha        float64 `json:"alpha"`
	VIFThreshold float64 `json:"vif_threshold"`
	Seed         int64   `json:"seed"`
	TrainSize    int     `json:"train_size"`
}

// Default returns the red wine study protocol.
func Default() Protocol {
	return Protocol{
		Response: KeyQuality,
		RawPredictors: []core.ColumnKey{
			KeyFixedAcidity, KeyVolatileAcidity, KeyCitricAcid, KeyResidualSugar,
			KeyChlorides, KeyFreeSulfurDioxide, KeyTotalSulfurDioxide, KeyDensity,
			KeyPH, KeySulphates, KeyAlcohol,
		},
		LogColumns: []core.ColumnKey{
			KeyFixedAcidity, KeyVolatileAcidity, KeyResidualSugar, KeyChlorides,
			KeyFreeSulfurDioxide, KeyTotalSulfurDioxide, KeySulphates, KeyAlcohol,
		},
		FinalPredictors: []core.ColumnKey{
			core.ColumnKey(table.LogPrefix + KeyVolatileAcidity.String()),
			core.ColumnKey(table.LogPrefix + KeySulphates.String()),
			core.ColumnKey(table.LogPrefix + KeyAlcohol.String()),
		},
		Alpha:        0.05,
		VIFThreshold: 5.0,
		Seed:         42,
		TrainSize:    800,
	}
}

// Validate checks the protocol for internal consistency.
func (p Protocol) Validate() error {
	if p.Response.String() == "" {
		return core.NewValidationError("response", "must not be empty")
	}
	if len(p.RawPredictors) == 0 {
		return core.NewValidationError("raw_predictors", "at least one required")
	}
	raw := make(map[core.ColumnKey]bool, len(p.RawPredictors))
	for _, k := range p.RawPredictors {
		if k == p.Response {
			return core.NewValidationError("raw_predictors", "response listed as predictor")
		}
		raw[k] = true
	}
	for _, k := range p.LogColumns {
		if !raw[k] {
			return core.NewValidationError("log_columns", "unknown column "+k.String())
		}
	}

	full := p.FullSpec()
	if err := full.Validate(); err != nil {
		return err
	}
	for _, k := range p.FinalPredictors {
		if !full.Contains(k) {
			return core.NewValidationError("final_predictors", k.String()+" not in full model")
		}
	}

	if err := p.Policy().Validate(); err != nil {
		return err
	}
	if p.TrainSize <= 0 {
		return core.NewValidationError("train_size", "must be positive")
	}
	return nil
}

// Transform returns the log transform the protocol prescribes.
func (p Protocol) Transform() *table.LogTransform {
	return table.NewLogTransform(p.LogColumns...)
}

// FullSpec returns the full model on the post-transform scale.
func (p Protocol) FullSpec() regression.ModelSpec {
	transform := p.Transform()
	predictors := make([]core.ColumnKey, len(p.RawPredictors))
	for i, k := range p.RawPredictors {
		predictors[i] = transform.TargetKey(k)
	}
	return regression.NewModelSpec(p.Response, predictors...)
}

// FinalSpec returns the documented reduced model.
func (p Protocol) FinalSpec() regression.ModelSpec {
	return regression.NewModelSpec(p.Response, p.FinalPredictors...)
}

// Policy returns the elimination thresholds the protocol prescribes.
func (p Protocol) Policy() selection.Policy {
	policy := selection.DefaultPolicy()
	policy.Alpha = p.Alpha
	policy.VIFThreshold = p.VIFThreshold
	return policy
}

// Hash returns a deterministic digest of every protocol decision.
func (p Protocol) Hash() core.ProtocolHash {
	data, _ := json.Marshal(p)
	return core.NewProtocolHash(data)
}
