package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"winefit/adapters/plots"
	reportadapter "winefit/adapters/report"
	"winefit/adapters/rng"
	"winefit/adapters/stats/criteria"
	"winefit/adapters/stats/ols"
	"winefit/adapters/tabular"
	"winefit/app"
	"winefit/domain/core"
	"winefit/domain/regression"
	domainreport "winefit/domain/report"
	"winefit/domain/run"
	"winefit/domain/selection"
	"winefit/domain/stage"
	"winefit/domain/study"
	"winefit/domain/table"
	"winefit/internal/config"
	"winefit/internal/profiling"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// .env is optional; a missing file is not an error
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "winefit",
		Short: "Red wine quality regression study",
		Long: `winefit fits and reduces a linear model of red wine quality from
eleven physicochemical measurements, then writes a reproducible report.`,
	}

	rootCmd.AddCommand(
		newAnalyzeCmd(),
		newFitCmd(),
		newProfileCmd(),
		newSplitCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// studyFlags registers the knobs every subcommand shares. Flags override
// the WINEFIT_* environment defaults only when explicitly set.
func studyFlags(cmd *cobra.Command) {
	cmd.Flags().String("data", "data/winequality-red.csv", "Dataset path (CSV or XLSX)")
	cmd.Flags().Int64("seed", 42, "Random seed for the train/test split")
	cmd.Flags().Int("train-size", 800, "Training rows; the rest are held out")
}

// resolveConfig layers flag overrides on top of the environment config.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("data") {
		cfg.Data.Path, _ = flags.GetString("data")
	}
	if flags.Changed("seed") {
		cfg.Study.Seed, _ = flags.GetInt64("seed")
	}
	if flags.Changed("train-size") {
		cfg.Study.TrainSize, _ = flags.GetInt("train-size")
	}
	if flags.Changed("out") {
		cfg.Output.Dir, _ = flags.GetString("out")
	}
	if flags.Changed("title") {
		cfg.Output.Title, _ = flags.GetString("title")
	}
	if flags.Changed("alpha") {
		cfg.Study.Alpha, _ = flags.GetFloat64("alpha")
	}
	if flags.Changed("vif-threshold") {
		cfg.Study.VIFThreshold, _ = flags.GetFloat64("vif-threshold")
	}
	return cfg, nil
}

// protocolFromConfig applies the operator-tunable knobs onto the fixed
// study protocol.
func protocolFromConfig(cfg *config.Config) study.Protocol {
	protocol := study.Default()
	protocol.Seed = cfg.Study.Seed
	protocol.TrainSize = cfg.Study.TrainSize
	protocol.Alpha = cfg.Study.Alpha
	protocol.VIFThreshold = cfg.Study.VIFThreshold
	return protocol
}

func newAnalysisService() *app.AnalysisService {
	writer := reportadapter.NewWriter(plots.NewSVGRenderer())
	return app.NewAnalysisService(tabular.NewDataReader(), rng.NewSeededRNG(), writer, ols.NewLeastSquares())
}

func newAnalyzeCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run the full study and write the report",
		Long: `Run the complete pipeline: load, profile, split, transform, fit,
backward elimination, influence diagnostics, holdout validation, and
report rendering (markdown, HTML, workbook, SVG figures, manifest).

Example: winefit analyze --data data/winequality-red.csv --out out --seed 42`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			return runAnalyze(cmd.Context(), cfg, jsonOut)
		},
	}

	studyFlags(cmd)
	cmd.Flags().String("out", "out", "Output directory for the report")
	cmd.Flags().String("title", "Red Wine Quality Analysis", "Report title")
	cmd.Flags().Float64("alpha", 0.05, "Significance level for elimination and tests")
	cmd.Flags().Float64("vif-threshold", 5.0, "Variance inflation threshold for elimination")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the run summary as JSON")

	return cmd
}

// analyzeSummary is the machine-readable shape of a completed run.
type analyzeSummary struct {
	RunID     core.RunID                `json:"run_id"`
	Manifest  *run.Manifest             `json:"manifest"`
	FullFit   *regression.Fit           `json:"full_fit"`
	FinalFit  *regression.Fit           `json:"final_fit"`
	Trace     *selection.Trace          `json:"trace"`
	FTest     *selection.FTest          `json:"f_test"`
	Holdout   *app.HoldoutMetrics       `json:"holdout"`
	Paths     *domainreport.OutputPaths `json:"paths"`
	Timeline  *stage.Timeline           `json:"timeline"`
	RuntimeMs int64                     `json:"runtime_ms"`
}

func runAnalyze(ctx context.Context, cfg *config.Config, jsonOut bool) error {
	service := newAnalysisService()
	result, err := service.Run(ctx, app.AnalysisRequest{
		DataPath: cfg.Data.Path,
		OutDir:   cfg.Output.Dir,
		Title:    cfg.Output.Title,
		Protocol: protocolFromConfig(cfg),
	})
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(analyzeSummary{
			RunID:     result.RunID,
			Manifest:  result.Manifest,
			FullFit:   result.FullFit,
			FinalFit:  result.FinalFit,
			Trace:     result.Trace,
			FTest:     result.FTest,
			Holdout:   result.Holdout,
			Paths:     result.Paths,
			Timeline:  result.Timeline,
			RuntimeMs: result.RuntimeMs,
		})
	}

	fmt.Printf("🍷 ANALYSIS COMPLETE (run %s)\n", result.RunID)
	fmt.Printf("Data: kept %d of %d rows across %d columns\n",
		result.LoadReport.RowsKept, result.LoadReport.RowsRead, len(result.LoadReport.Columns))
	fmt.Printf("Split: %d train / %d test, seed %d\n",
		len(result.Split.Train), len(result.Split.Test), result.Split.Seed)

	fmt.Printf("\n📐 Full model %s\n", result.FullFit.Spec.Formula())
	fmt.Printf("   R-squared %.4f (adjusted %.4f), residual SE %.4f\n",
		result.FullFit.R2, result.FullFit.AdjR2, result.FullFit.ResidualStdErr())

	fmt.Printf("\n✂️  Backward elimination: %d rounds, %d removed\n",
		result.Trace.Rounds, len(result.Trace.Removals))
	for _, r := range result.Trace.Removals {
		switch r.Reason {
		case selection.ReasonCollinear:
			fmt.Printf("   round %d: %s (VIF %.2f)\n", r.Round, r.Predictor, r.VIF)
		default:
			fmt.Printf("   round %d: %s (p=%.4f)\n", r.Round, r.Predictor, r.PValue)
		}
	}

	fmt.Printf("\n🎯 Final model %s\n", result.FinalFit.Spec.Formula())
	printCoefficients(result.FinalFit)
	fmt.Printf("   R-squared %.4f (adjusted %.4f)\n", result.FinalFit.R2, result.FinalFit.AdjR2)
	fmt.Printf("   Partial F vs full: F=%.4f, p=%.4f (reduction %s)\n",
		result.FTest.FStat, result.FTest.PValue, acceptWord(result.FTest.AcceptReduction))

	fmt.Printf("\n🔍 Influence: %d rows flagged (Cook's %d, DFFITS %d)\n",
		len(result.Influence.FlaggedEither()), len(result.Influence.FlaggedCooks), len(result.Influence.FlaggedDFFITS))
	fmt.Printf("📏 Holdout (%d rows): RMSE %.4f, MAE %.4f, R-squared %.4f\n",
		result.Holdout.N, result.Holdout.RMSE, result.Holdout.MAE, result.Holdout.R2)

	fmt.Printf("\n⏱️  Stages:\n")
	for _, r := range result.Timeline.Results {
		fmt.Printf("   %-10s %5dms  %s\n", r.Name, r.DurationMs, r.Detail)
	}

	fmt.Printf("\n📄 Artifacts in %s (total %dms):\n", result.Paths.Dir, result.RuntimeMs)
	for _, art := range result.Paths.Artifacts(result.Manifest.CreatedAt) {
		fmt.Printf("   %-15s %s\n", art.Kind, art.Path)
	}
	return nil
}

func newFitCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "fit [predictors...]",
		Short: "Fit one model on the transformed dataset and print its summary",
		Long: `Fit quality against the given post-transform predictor columns on the
whole dataset, without splitting. With no arguments the documented final
model is fit.

Example: winefit fit log_volatile_acidity log_sulphates log_alcohol`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			return runFit(cmd.Context(), cfg, args, jsonOut)
		},
	}

	studyFlags(cmd)
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the fit as JSON")

	return cmd
}

func runFit(ctx context.Context, cfg *config.Config, args []string, jsonOut bool) error {
	protocol := protocolFromConfig(cfg)

	predictors := protocol.FinalPredictors
	if len(args) > 0 {
		predictors = make([]core.ColumnKey, len(args))
		for i, arg := range args {
			predictors[i] = core.ColumnKey(arg)
		}
	}

	tbl, rep, err := tabular.NewDataReader().Read(ctx, cfg.Data.Path)
	if err != nil {
		return err
	}
	transformed, err := protocol.Transform().Apply(tbl)
	if err != nil {
		return err
	}

	fit, err := ols.NewLeastSquares().Fit(transformed, regression.NewModelSpec(protocol.Response, predictors...))
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(fit)
	}

	fmt.Printf("📐 %s on %d rows (%s)\n", fit.Spec.Formula(), fit.N, rep.Path)
	printCoefficients(fit)
	fmt.Printf("   R-squared %.4f (adjusted %.4f), residual SE %.4f on %d df\n",
		fit.R2, fit.AdjR2, fit.ResidualStdErr(), fit.DFResidual)
	fmt.Printf("   AICc %.2f, BIC %.2f\n", fit.AICc, fit.BIC)
	return nil
}

func newProfileCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Print per-column summary statistics",
		Long: `Load the dataset and print count, mean, standard deviation, range,
median, and skewness for every column.

Example: winefit profile --data data/winequality-red.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			return runProfile(cmd.Context(), cfg, jsonOut)
		},
	}

	studyFlags(cmd)
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the profiles as JSON")

	return cmd
}

func runProfile(ctx context.Context, cfg *config.Config, jsonOut bool) error {
	tbl, rep, err := tabular.NewDataReader().Read(ctx, cfg.Data.Path)
	if err != nil {
		return err
	}

	profiles, err := profiling.NewProfiler().ProfileTable(tbl)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(profiles)
	}

	fmt.Printf("📊 %s: %d rows kept of %d read\n\n", rep.Path, rep.RowsKept, rep.RowsRead)
	fmt.Printf("%-22s %6s %10s %10s %10s %10s %10s %9s\n",
		"column", "count", "mean", "std_dev", "min", "median", "max", "skew")
	for _, p := range profiles {
		fmt.Printf("%-22s %6d %10.4f %10.4f %10.4f %10.4f %10.4f %9.4f\n",
			p.Key, p.Count, p.Mean, p.StdDev, p.Min, p.Median, p.Max, p.Skewness)
	}
	return nil
}

func newSplitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "split",
		Short: "Print the seeded train/test partition fingerprint",
		Long: `Load the dataset, draw the seeded partition the analysis would use,
and print its sizes and fingerprint. Two machines agreeing on the
fingerprint will train on identical rows.

Example: winefit split --data data/winequality-red.csv --seed 42`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			return runSplit(cmd.Context(), cfg)
		},
	}

	studyFlags(cmd)

	return cmd
}

func runSplit(ctx context.Context, cfg *config.Config) error {
	tbl, _, err := tabular.NewDataReader().Read(ctx, cfg.Data.Path)
	if err != nil {
		return err
	}

	stream, err := rng.NewSeededRNG().SeededStream(ctx, app.SplitStreamName, cfg.Study.Seed)
	if err != nil {
		return err
	}
	split, err := table.NewSplit(tbl.NumRows(), cfg.Study.TrainSize, cfg.Study.Seed, stream)
	if err != nil {
		return err
	}

	fmt.Printf("🎲 Seed %d over %d rows: %d train / %d test\n",
		split.Seed, split.N, len(split.Train), len(split.Test))
	fmt.Printf("Fingerprint: %s\n", split.Fingerprint())
	fmt.Printf("First train rows: %s\n", previewIndices(split.Train, 10))
	fmt.Printf("First test rows:  %s\n", previewIndices(split.Test, 10))
	return nil
}

func printCoefficients(fit *regression.Fit) {
	dists := criteria.NewDistributions()
	fmt.Printf("   %-24s %12s %10s %9s %9s %24s\n", "term", "estimate", "std_err", "t", "p", "95% interval")
	for _, c := range fit.Coefficients {
		lower, upper := dists.CoefficientInterval(c.Estimate, c.StdErr, fit.DFResidual, 0.95)
		fmt.Printf("   %-24s %12.6f %10.6f %9.3f %9s   [%9.6f, %9.6f]\n",
			c.Name, c.Estimate, c.StdErr, c.TValue, formatP(c.PValue), lower, upper)
	}
}

func formatP(p float64) string {
	if p < 0.0001 {
		return "<0.0001"
	}
	return fmt.Sprintf("%.4f", p)
}

func acceptWord(accepted bool) string {
	if accepted {
		return "accepted"
	}
	return "rejected"
}

func previewIndices(indices []int, limit int) string {
	if len(indices) < limit {
		limit = len(indices)
	}
	parts := make([]string, limit)
	for i := 0; i < limit; i++ {
		parts[i] = fmt.Sprintf("%d", indices[i])
	}
	out := strings.Join(parts, ", ")
	if len(indices) > limit {
		out += ", ..."
	}
	return out
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
