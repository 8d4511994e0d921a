package app

import (
	"context"
	"fmt"

	"winefit/adapters/stats/ols"
	"winefit/domain/regression"
	"winefit/domain/selection"
	"winefit/domain/table"
	"winefit/internal"
)

// EliminationService runs backward elimination: collinear predictors
// leave first on VIF, then the weakest predictor by t-test leaves each
// round until everything remaining clears alpha.
type EliminationService struct {
	fitter *ols.LeastSquares
	logger *internal.Logger
}

// NewEliminationService creates an elimination service
func NewEliminationService(fitter *ols.LeastSquares) *EliminationService {
	return &EliminationService{
		fitter: fitter,
		logger: internal.DefaultLogger.Component("EliminationService"),
	}
}

// Eliminate reduces start against policy and returns the trace along
// with the fit of the surviving model.
func (s *EliminationService) Eliminate(ctx context.Context, tbl *table.Table, start regression.ModelSpec, policy selection.Policy) (*selection.Trace, *regression.Fit, error) {
	if err := policy.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid policy: %w", err)
	}
	if err := start.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid starting model: %w", err)
	}

	trace := &selection.Trace{Start: start}
	current := start
	var fit *regression.Fit

	for round := 1; round <= policy.MaxRounds; round++ {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		var err error
		fit, err = s.fitter.Fit(tbl, current)
		if err != nil {
			return nil, nil, fmt.Errorf("round %d fit of %s: %w", round, current.Formula(), err)
		}
		trace.Rounds = round

		if len(current.Predictors) <= policy.MinPredictors {
			s.logger.Info("round %d: stopping at predictor floor %d", round, policy.MinPredictors)
			break
		}

		// collinearity is resolved before significance
		if len(current.Predictors) >= 2 {
			entries, err := s.fitter.VarianceInflation(tbl, current.Predictors)
			if err != nil {
				return nil, nil, fmt.Errorf("round %d variance inflation: %w", round, err)
			}
			vifReport := selection.VIFReport{Round: round, Entries: entries}
			trace.VIFReports = append(trace.VIFReports, vifReport)

			if worst, ok := vifReport.Worst(); ok && worst.VIF > policy.VIFThreshold {
				s.logger.Info("round %d: dropping %s, VIF %.2f above %.2f",
					round, worst.Predictor, worst.VIF, policy.VIFThreshold)
				trace.Removals = append(trace.Removals, selection.Removal{
					Round:     round,
					Predictor: worst.Predictor,
					Reason:    selection.ReasonCollinear,
					VIF:       worst.VIF,
				})
				current = current.WithoutPredictor(worst.Predictor)
				continue
			}
		}

		worst, ok := fit.WorstPValue()
		if !ok || worst.PValue <= policy.Alpha {
			s.logger.Info("round %d: all %d predictors significant at alpha %.3f",
				round, len(current.Predictors), policy.Alpha)
			break
		}

		s.logger.Info("round %d: dropping %s, p %.4f above alpha %.3f",
			round, worst.Name, worst.PValue, policy.Alpha)
		trace.Removals = append(trace.Removals, selection.Removal{
			Round:     round,
			Predictor: worst.Name,
			Reason:    selection.ReasonNotSignificant,
			PValue:    worst.PValue,
		})
		current = current.WithoutPredictor(worst.Name)
	}

	// the loop can run out of rounds right after a removal
	if len(fit.Spec.Predictors) != len(current.Predictors) {
		var err error
		fit, err = s.fitter.Fit(tbl, current)
		if err != nil {
			return nil, nil, fmt.Errorf("final fit of %s: %w", current.Formula(), err)
		}
	}

	trace.Final = current
	return trace, fit, nil
}
