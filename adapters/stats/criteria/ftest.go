package criteria

import (
	"fmt"

	"winefit/domain/core"
	"winefit/domain/regression"
	"winefit/domain/selection"
)

// PartialFTest compares a reduced model against the full model it is
// nested in. The null hypothesis is that the dropped coefficients are all
// zero; failing to reject it (p > alpha) means the reduction is accepted.
func (d *Distributions) PartialFTest(full, reduced *regression.Fit, alpha float64) (*selection.FTest, error) {
	if full == nil || reduced == nil {
		return nil, core.NewValidationError("fits", "both models required")
	}
	if !reduced.Spec.IsNestedIn(full.Spec) {
		return nil, fmt.Errorf("%w: %s does not nest in %s",
			core.ErrNotNested, reduced.Spec.Formula(), full.Spec.Formula())
	}
	if full.N != reduced.N {
		return nil, core.NewValidationError("fits",
			fmt.Sprintf("sample sizes differ: %d vs %d", full.N, reduced.N))
	}

	dfNum := reduced.DFResidual - full.DFResidual
	dfDen := full.DFResidual
	if dfNum <= 0 || dfDen <= 0 {
		return nil, core.ErrInsufficientData
	}

	// numerically RSS_reduced can dip a hair under RSS_full; clamp at zero
	fStat := ((reduced.RSS - full.RSS) / float64(dfNum)) / (full.RSS / float64(dfDen))
	if fStat < 0 {
		fStat = 0
	}

	pValue := d.FTestPValue(fStat, dfNum, dfDen)

	return &selection.FTest{
		Full:            full.Spec,
		Reduced:         reduced.Spec,
		FStat:           fStat,
		DFNumerator:     dfNum,
		DFDenominator:   dfDen,
		PValue:          pValue,
		Alpha:           alpha,
		AcceptReduction: pValue > alpha,
	}, nil
}
