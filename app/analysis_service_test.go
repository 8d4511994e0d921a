package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"winefit/domain/stage"
	"winefit/domain/study"
	"winefit/internal/testkit"
)

func newAnalysisService(t *testing.T) *AnalysisService {
	t.Helper()
	kit := testkit.NewTestKit()
	return NewAnalysisService(kit.DatasetReader(), kit.RNG(), kit.ReportWriter(), kit.Fitter())
}

// writeWineCSV generates a wine-shaped dataset and writes it under dir.
func writeWineCSV(t *testing.T, dir string, rows int) string {
	t.Helper()
	config := testkit.DefaultWineConfig()
	config.Rows = rows
	tbl, err := testkit.NewWineDataGenerator(config).Generate()
	if err != nil {
		t.Fatalf("generating dataset: %v", err)
	}
	path := filepath.Join(dir, "winequality-red.csv")
	if err := testkit.WriteCSV(tbl, path); err != nil {
		t.Fatalf("writing dataset: %v", err)
	}
	return path
}

func TestAnalysisService_Run_FullPipeline(t *testing.T) {
	dir := t.TempDir()
	dataPath := writeWineCSV(t, dir, 1599)
	outDir := filepath.Join(dir, "out")

	service := newAnalysisService(t)
	result, err := service.Run(context.Background(), AnalysisRequest{
		DataPath: dataPath,
		OutDir:   outDir,
		Title:    "Red Wine Quality Analysis",
		Protocol: study.Default(),
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !result.Success {
		t.Fatal("result not marked successful")
	}

	// every stage of the plan ran, in order, successfully
	plan := stage.DefaultPlan()
	if len(result.Timeline.Results) != len(plan.Stages) {
		t.Fatalf("timeline has %d stages, want %d", len(result.Timeline.Results), len(plan.Stages))
	}
	for i, res := range result.Timeline.Results {
		if res.Name != plan.Stages[i].Name {
			t.Errorf("stage %d is %s, want %s", i, res.Name, plan.Stages[i].Name)
		}
		if !res.Success {
			t.Errorf("stage %s failed: %s", res.Name, res.Error)
		}
	}
	if _, failed := result.Timeline.Failed(); failed {
		t.Error("timeline reports a failed stage on a successful run")
	}

	// split honors the protocol
	if len(result.Split.Train) != 800 || len(result.Split.Test) != 799 {
		t.Errorf("split %d/%d, want 800/799", len(result.Split.Train), len(result.Split.Test))
	}

	// the full model carries all eleven predictors, the final model three
	if got := len(result.FullFit.Spec.Predictors); got != 11 {
		t.Errorf("full model has %d predictors, want 11", got)
	}
	if got := len(result.FinalFit.Spec.Predictors); got != 3 {
		t.Errorf("final model has %d predictors, want 3", got)
	}

	// dropping the eight junk predictors barely moves adjusted R2
	if diff := result.FullFit.AdjR2 - result.FinalFit.AdjR2; diff > 0.05 || diff < -0.05 {
		t.Errorf("adjusted R2 moved %.4f between full (%.4f) and final (%.4f) models",
			diff, result.FullFit.AdjR2, result.FinalFit.AdjR2)
	}

	// the planted drivers must survive elimination
	for _, key := range study.Default().FinalPredictors {
		if !result.Trace.Final.Contains(key) {
			t.Errorf("elimination dropped %s, a planted driver", key)
		}
	}
	if len(result.Trace.Removals) == 0 {
		t.Error("elimination removed nothing from eight junk predictors")
	}

	// nested F-test between full and final is well formed
	if result.FTest.DFNumerator != 8 {
		t.Errorf("F-test numerator df = %d, want 8", result.FTest.DFNumerator)
	}
	if result.FTest.PValue < 0 || result.FTest.PValue > 1 {
		t.Errorf("F-test p-value %v outside [0,1]", result.FTest.PValue)
	}

	// three candidates entered the comparison
	if len(result.Comparison.Candidates) != 3 {
		t.Errorf("comparison has %d candidates, want 3", len(result.Comparison.Candidates))
	}
	if _, ok := result.Comparison.BestByAICc(); !ok {
		t.Error("comparison cannot rank candidates")
	}

	// the planted signal generalizes to the holdout
	if result.Holdout.N != 799 {
		t.Errorf("holdout scored %d rows, want 799", result.Holdout.N)
	}
	if result.Holdout.R2 < 0.2 {
		t.Errorf("holdout R2 = %v, planted signal should generalize", result.Holdout.R2)
	}
	if result.Holdout.RMSE <= 0 {
		t.Errorf("holdout RMSE = %v, want positive", result.Holdout.RMSE)
	}

	// manifest accounts for every row
	m := result.Manifest
	if err := m.Validate(); err != nil {
		t.Errorf("manifest invalid: %v", err)
	}
	if m.RowsRead != 1599 || m.RowsKept != 1599 || m.Columns != 12 {
		t.Errorf("manifest accounting %d/%d rows, %d columns", m.RowsRead, m.RowsKept, m.Columns)
	}
	if m.Seed != 42 || m.TrainSize != 800 || m.TestSize != 799 {
		t.Errorf("manifest split record seed=%d train=%d test=%d", m.Seed, m.TrainSize, m.TestSize)
	}

	// all artifacts landed on disk
	for _, path := range []string{result.Paths.Markdown, result.Paths.HTML, result.Paths.Workbook, result.Paths.Manifest} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("missing artifact %s: %v", path, err)
		}
	}
	if len(result.Paths.Figures) < 6 {
		t.Errorf("only %d figures rendered", len(result.Paths.Figures))
	}
	for _, path := range result.Paths.Figures {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("missing figure %s: %v", path, err)
		}
	}
}

func TestAnalysisService_Run_Deterministic(t *testing.T) {
	dir := t.TempDir()
	dataPath := writeWineCSV(t, dir, 1599)

	service := newAnalysisService(t)
	var results [2]*AnalysisResult
	for i := range results {
		outDir := filepath.Join(dir, "out", string(rune('a'+i)))
		result, err := service.Run(context.Background(), AnalysisRequest{
			DataPath: dataPath,
			OutDir:   outDir,
			Protocol: study.Default(),
		})
		if err != nil {
			t.Fatalf("run %d failed: %v", i, err)
		}
		results[i] = result
	}

	first, second := results[0], results[1]
	if first.Split.Fingerprint() != second.Split.Fingerprint() {
		t.Error("split fingerprints differ between identical runs")
	}
	if err := first.Manifest.SameInputs(second.Manifest); err != nil {
		t.Errorf("manifest fingerprints differ: %v", err)
	}

	// identical inputs must give bit-identical estimates
	for i, coef := range first.FinalFit.Coefficients {
		other := second.FinalFit.Coefficients[i]
		if coef.Estimate != other.Estimate || coef.StdErr != other.StdErr {
			t.Errorf("coefficient %s differs between runs: %v vs %v",
				coef.Name, coef.Estimate, other.Estimate)
		}
	}
	if first.Holdout.RMSE != second.Holdout.RMSE {
		t.Errorf("holdout RMSE differs: %v vs %v", first.Holdout.RMSE, second.Holdout.RMSE)
	}
}

func TestAnalysisService_Run_MissingFileFailsAtLoad(t *testing.T) {
	service := newAnalysisService(t)
	_, err := service.Run(context.Background(), AnalysisRequest{
		DataPath: filepath.Join(t.TempDir(), "absent.csv"),
		OutDir:   t.TempDir(),
		Protocol: study.Default(),
	})
	if err == nil {
		t.Fatal("expected error for missing dataset")
	}
}

func TestAnalysisService_Run_InvalidProtocolRejected(t *testing.T) {
	protocol := study.Default()
	protocol.TrainSize = 0

	service := newAnalysisService(t)
	_, err := service.Run(context.Background(), AnalysisRequest{
		DataPath: "unused.csv",
		OutDir:   t.TempDir(),
		Protocol: protocol,
	})
	if err == nil {
		t.Fatal("expected error for invalid protocol")
	}
}

func TestAnalysisService_Run_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	service := newAnalysisService(t)
	_, err := service.Run(ctx, AnalysisRequest{
		DataPath: "unused.csv",
		OutDir:   t.TempDir(),
		Protocol: study.Default(),
	})
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
