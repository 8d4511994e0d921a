package app

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"winefit/adapters/stats/criteria"
	"winefit/domain/core"
	"winefit/domain/diagnostics"
	"winefit/domain/regression"
	"winefit/domain/report"
	"winefit/domain/selection"
	"winefit/domain/study"
	"winefit/domain/table"
	"winefit/internal/profiling"
)

const confidenceLevel = 0.95

// ComposerInput carries every analysis product the report needs.
type ComposerInput struct {
	Title    string
	RunID    core.RunID
	Protocol study.Protocol

	LoadReport *table.LoadReport
	Profiles   []profiling.ColumnProfile
	Split      *table.Split

	FullFit       *regression.Fit
	Trace         *selection.Trace
	EliminatedFit *regression.Fit
	FinalFit      *regression.Fit
	FTest         *selection.FTest
	Comparison    *selection.Comparison

	Influence *diagnostics.Influence
	Holdout   *HoldoutMetrics
	Observed  []float64
	Predicted []float64

	TrainTable *table.Table
}

// ReportComposer turns analysis results into a renderable document.
type ReportComposer struct {
	dists *criteria.Distributions
}

// NewReportComposer creates a report composer
func NewReportComposer() *ReportComposer {
	return &ReportComposer{dists: criteria.NewDistributions()}
}

// Compose assembles the full report document.
func (rc *ReportComposer) Compose(in ComposerInput) (*report.Document, error) {
	doc := &report.Document{
		Title:       in.Title,
		RunID:       in.RunID,
		GeneratedAt: core.Now(),
		Sections: []report.Section{
			rc.dataSection(in),
			rc.splitSection(in),
			rc.transformSection(in),
			rc.fullModelSection(in),
			rc.selectionSection(in),
			rc.finalModelSection(in),
			rc.influenceSection(in),
			rc.holdoutSection(in),
		},
	}
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("composed document invalid: %w", err)
	}
	return doc, nil
}

func (rc *ReportComposer) dataSection(in ComposerInput) report.Section {
	rep := in.LoadReport
	para := fmt.Sprintf(
		"Read %d rows from %s (%s). Kept %d rows and dropped %d malformed rows across %d columns. Dataset hash %s.",
		rep.RowsRead, rep.Path, rep.Format, rep.RowsKept, rep.RowsDropped, len(rep.Columns), shortHash(string(rep.DatasetHash)))

	profileTable := report.TableBlock{
		Title:   "Column Profiles",
		Columns: []string{"column", "count", "mean", "std_dev", "min", "median", "max", "skewness"},
	}
	for _, p := range in.Profiles {
		profileTable.Rows = append(profileTable.Rows, []string{
			p.Key.String(), strconv.Itoa(p.Count),
			fmtF(p.Mean), fmtF(p.StdDev), fmtF(p.Min), fmtF(p.Median), fmtF(p.Max), fmtF(p.Skewness),
		})
	}

	return report.Section{
		Heading:    "Data",
		Paragraphs: []string{para},
		Tables:     []report.TableBlock{profileTable},
	}
}

func (rc *ReportComposer) splitSection(in ComposerInput) report.Section {
	para := fmt.Sprintf(
		"Rows were shuffled with seed %d and divided into a training set of %d and a holdout set of %d. Split fingerprint %s.",
		in.Split.Seed, len(in.Split.Train), len(in.Split.Test), shortHash(string(in.Split.Fingerprint())))
	return report.Section{Heading: "Train/Test Split", Paragraphs: []string{para}}
}

func (rc *ReportComposer) transformSection(in ComposerInput) report.Section {
	logged := in.Protocol.LogColumns
	names := make([]string, len(logged))
	for i, key := range logged {
		names[i] = key.String()
	}
	para := fmt.Sprintf(
		"The natural log replaced %d right-skewed columns before modeling: %s. Columns with zeros or near-constant spread stay on their original scale.",
		len(logged), strings.Join(names, ", "))
	return report.Section{Heading: "Transformations", Paragraphs: []string{para}}
}

func (rc *ReportComposer) fullModelSection(in ComposerInput) report.Section {
	fit := in.FullFit
	para := fmt.Sprintf(
		"The full model %s fits the training rows with R-squared %s (adjusted %s) and residual standard error %s on %d degrees of freedom.",
		fit.Spec.Formula(), fmtF(fit.R2), fmtF(fit.AdjR2), fmtF(fit.ResidualStdErr()), fit.DFResidual)

	return report.Section{
		Heading:    "Full Model",
		Paragraphs: []string{para},
		Tables:     []report.TableBlock{coefficientTable("Full Model Coefficients", fit, nil)},
	}
}

func (rc *ReportComposer) selectionSection(in ComposerInput) report.Section {
	section := report.Section{Heading: "Model Selection"}

	trace := in.Trace
	section.Paragraphs = append(section.Paragraphs, fmt.Sprintf(
		"Backward elimination ran %d rounds, removing %d of %d predictors. Collinear predictors leave first on variance inflation, then the weakest t-test leaves each round.",
		trace.Rounds, len(trace.Removals), len(trace.Start.Predictors)))

	if len(trace.Removals) > 0 {
		removalTable := report.TableBlock{
			Title:   "Removals",
			Columns: []string{"round", "predictor", "reason", "p_value", "vif"},
		}
		for _, r := range trace.Removals {
			pCell, vifCell := "", ""
			if r.Reason == selection.ReasonNotSignificant {
				pCell = fmtP(r.PValue)
			}
			if r.Reason == selection.ReasonCollinear {
				vifCell = fmtF(r.VIF)
			}
			removalTable.Rows = append(removalTable.Rows, []string{
				strconv.Itoa(r.Round), r.Predictor.String(), string(r.Reason), pCell, vifCell,
			})
		}
		section.Tables = append(section.Tables, removalTable)
	}

	if len(trace.VIFReports) > 0 {
		last := trace.VIFReports[len(trace.VIFReports)-1]
		vifTable := report.TableBlock{
			Title:   "Variance Inflation (final round)",
			Columns: []string{"predictor", "vif"},
		}
		for _, e := range last.Entries {
			vifTable.Rows = append(vifTable.Rows, []string{e.Predictor.String(), fmtF(e.VIF)})
		}
		section.Tables = append(section.Tables, vifTable)
	}

	if in.FTest != nil {
		verdict := "the reduction holds"
		if !in.FTest.AcceptReduction {
			verdict = "the dropped predictors still matter"
		}
		section.Paragraphs = append(section.Paragraphs, fmt.Sprintf(
			"A partial F-test of the final model against the full model gives F = %s on (%d, %d) degrees of freedom with p = %s, so %s at alpha %s.",
			fmtF(in.FTest.FStat), in.FTest.DFNumerator, in.FTest.DFDenominator, fmtP(in.FTest.PValue), verdict, fmtF(in.FTest.Alpha)))
	}

	if in.Comparison != nil && len(in.Comparison.Candidates) > 0 {
		compTable := report.TableBlock{
			Title:   "Candidate Models",
			Columns: []string{"model", "predictors", "adj_r2", "aicc", "bic"},
		}
		for _, c := range in.Comparison.Candidates {
			compTable.Rows = append(compTable.Rows, []string{
				c.Label, strconv.Itoa(c.Fit.NumPredictors()),
				fmtF(c.Fit.AdjR2), fmtF(c.Fit.AICc), fmtF(c.Fit.BIC),
			})
		}
		section.Tables = append(section.Tables, compTable)

		if best, ok := in.Comparison.BestByAICc(); ok {
			section.Paragraphs = append(section.Paragraphs,
				fmt.Sprintf("By corrected AIC the preferred candidate is %q.", best.Label))
		}
	}

	return section
}

func (rc *ReportComposer) finalModelSection(in ComposerInput) report.Section {
	fit := in.FinalFit
	para := fmt.Sprintf(
		"The final model %s explains %s of the training variance (adjusted %s) with residual standard error %s.",
		fit.Spec.Formula(), fmtF(fit.R2), fmtF(fit.AdjR2), fmtF(fit.ResidualStdErr()))

	section := report.Section{
		Heading:    "Final Model",
		Paragraphs: []string{para},
		Tables:     []report.TableBlock{coefficientTable("Final Model Coefficients", fit, rc.dists)},
	}

	section.Figures = append(section.Figures,
		residualsVsFittedFigure(fit),
		qqFigure(fit, rc.dists),
		residualHistogram(fit),
	)
	for _, key := range fit.Spec.Predictors {
		if fig, ok := residualsVsPredictorFigure(fit, in.TrainTable, key); ok {
			section.Figures = append(section.Figures, fig)
		}
	}
	return section
}

func (rc *ReportComposer) influenceSection(in ComposerInput) report.Section {
	inf := in.Influence
	para := fmt.Sprintf(
		"Cook's distance flags %d training rows above the F-median cutoff %s; DFFITS flags %d rows beyond %s.",
		len(inf.FlaggedCooks), fmtF(inf.CooksThreshold), len(inf.FlaggedDFFITS), fmtF(inf.DFFITSThreshold))

	section := report.Section{Heading: "Influence Diagnostics", Paragraphs: []string{para}}

	flagged := inf.FlaggedEither()
	if len(flagged) > 0 {
		flaggedTable := report.TableBlock{
			Title:   "Flagged Observations",
			Columns: []string{"row", "cooks_d", "dffits", "studentized"},
		}
		for _, i := range flagged {
			flaggedTable.Rows = append(flaggedTable.Rows, []string{
				strconv.Itoa(i), fmtF(inf.CooksD[i]), fmtF(inf.DFFITS[i]), fmtF(inf.Studentized[i]),
			})
		}
		section.Tables = append(section.Tables, flaggedTable)
	} else {
		section.Paragraphs = append(section.Paragraphs, "No training row crossed either influence cutoff.")
	}
	return section
}

func (rc *ReportComposer) holdoutSection(in ComposerInput) report.Section {
	h := in.Holdout
	para := fmt.Sprintf(
		"On the %d held-out rows the final model reaches RMSE %s, MAE %s, and R-squared %s.",
		h.N, fmtF(h.RMSE), fmtF(h.MAE), fmtF(h.R2))

	metricsTable := report.TableBlock{
		Title:   "Holdout Metrics",
		Columns: []string{"metric", "value"},
		Rows: [][]string{
			{"n", strconv.Itoa(h.N)},
			{"rmse", fmtF(h.RMSE)},
			{"mae", fmtF(h.MAE)},
			{"r2", fmtF(h.R2)},
		},
	}

	section := report.Section{
		Heading:    "Holdout Validation",
		Paragraphs: []string{para},
		Tables:     []report.TableBlock{metricsTable},
	}

	if len(in.Observed) > 0 && len(in.Observed) == len(in.Predicted) {
		fig := report.NewFigure(report.FigureObservedVsPredicted, "Observed vs Predicted (holdout)", "predicted", "observed")
		points := make([]report.Point, len(in.Observed))
		for i := range in.Observed {
			points[i] = report.Point{X: in.Predicted[i], Y: in.Observed[i]}
		}
		fig.Series = []report.Series{{Points: points}}
		fig.Identity = true
		section.Figures = append(section.Figures, fig)
	}
	return section
}

// coefficientTable renders a fit's coefficients; when dists is given the
// table carries a confidence interval per term.
func coefficientTable(title string, fit *regression.Fit, dists *criteria.Distributions) report.TableBlock {
	tb := report.TableBlock{Title: title}
	tb.Columns = []string{"term", "estimate", "std_error", "t_value", "p_value"}
	if dists != nil {
		tb.Columns = append(tb.Columns, "ci_lower", "ci_upper")
	}

	for _, c := range fit.Coefficients {
		row := []string{c.Name.String(), fmtF(c.Estimate), fmtF(c.StdErr), fmtF(c.TValue), fmtP(c.PValue)}
		if dists != nil {
			lower, upper := dists.CoefficientInterval(c.Estimate, c.StdErr, fit.DFResidual, confidenceLevel)
			row = append(row, fmtF(lower), fmtF(upper))
		}
		tb.Rows = append(tb.Rows, row)
	}
	return tb
}

func residualsVsFittedFigure(fit *regression.Fit) report.Figure {
	fig := report.NewFigure(report.FigureResidualsVsFitted, "Residuals vs Fitted", "fitted", "residual")
	points := make([]report.Point, fit.N)
	for i := range points {
		points[i] = report.Point{X: fit.Fitted[i], Y: fit.Residuals[i]}
	}
	fig.Series = []report.Series{{Points: points}}
	fig.HLines = []float64{0}
	return fig
}

func qqFigure(fit *regression.Fit, dists *criteria.Distributions) report.Figure {
	fig := report.NewFigure(report.FigureQQ, "Normal Q-Q", "theoretical quantile", "standardized residual")

	standardized := diagnostics.StandardizedResiduals(fit)
	sort.Float64s(standardized)
	theoretical := dists.TheoreticalQuantiles(len(standardized))

	points := make([]report.Point, len(standardized))
	for i := range points {
		points[i] = report.Point{X: theoretical[i], Y: standardized[i]}
	}
	fig.Series = []report.Series{{Points: points}}
	fig.Identity = true
	return fig
}

func residualHistogram(fit *regression.Fit) report.Figure {
	fig := report.NewFigure(report.FigureHistogram, "Residual Histogram", "residual", "count")
	fig.Values = append([]float64(nil), fit.Residuals...)
	return fig
}

func residualsVsPredictorFigure(fit *regression.Fit, train *table.Table, key core.ColumnKey) (report.Figure, bool) {
	col, err := train.Column(key)
	if err != nil || len(col) != fit.N {
		return report.Figure{}, false
	}

	fig := report.NewFigure(report.FigureResidualsVsPredictor,
		fmt.Sprintf("Residuals vs %s", key), key.String(), "residual")
	points := make([]report.Point, fit.N)
	for i := range points {
		points[i] = report.Point{X: col[i], Y: fit.Residuals[i]}
	}
	fig.Series = []report.Series{{Points: points}}
	fig.HLines = []float64{0}
	return fig, true
}

func fmtF(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func fmtP(p float64) string {
	if p < 0.0001 {
		return "<0.0001"
	}
	return strconv.FormatFloat(p, 'f', 4, 64)
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
