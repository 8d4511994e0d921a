package app

import (
	"context"
	"fmt"
	"time"

	"winefit/adapters/stats/criteria"
	"winefit/adapters/stats/ols"
	"winefit/domain/core"
	"winefit/domain/diagnostics"
	"winefit/domain/regression"
	"winefit/domain/report"
	"winefit/domain/run"
	"winefit/domain/selection"
	"winefit/domain/stage"
	"winefit/domain/study"
	"winefit/domain/table"
	"winefit/internal"
	"winefit/internal/profiling"
	"winefit/ports"
)

// codeVersion is stamped into every manifest fingerprint. Bump it when a
// change can alter numeric results.
const codeVersion = "1.0.0"

// SplitStreamName seeds the train/test permutation independently of any
// other randomness a run may draw.
const SplitStreamName = "train_test_split"

// AnalysisService runs the wine quality study end to end: it loads the
// dataset, splits and transforms it, fits and reduces the model, checks
// the reduction, and writes the report.
type AnalysisService struct {
	reader      ports.DatasetReaderPort
	rngPort     ports.RNGPort
	writer      ports.ReportWriterPort
	fitter      *ols.LeastSquares
	dists       *criteria.Distributions
	elimination *EliminationService
	profiler    *profiling.Profiler
	composer    *ReportComposer
	logger      *internal.Logger
}

// AnalysisRequest defines inputs for one analysis run
type AnalysisRequest struct {
	DataPath string
	OutDir   string
	Title    string
	Protocol study.Protocol
}

// AnalysisResult contains every product of a completed run
type AnalysisResult struct {
	RunID    core.RunID
	Manifest *run.Manifest

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

	Paths    *report.OutputPaths
	Timeline *stage.Timeline

	RuntimeMs int64
	Success   bool
}

// NewAnalysisService wires the analysis pipeline from its ports.
func NewAnalysisService(reader ports.DatasetReaderPort, rngPort ports.RNGPort, writer ports.ReportWriterPort, fitter *ols.LeastSquares) *AnalysisService {
	return &AnalysisService{
		reader:      reader,
		rngPort:     rngPort,
		writer:      writer,
		fitter:      fitter,
		dists:       criteria.NewDistributions(),
		elimination: NewEliminationService(fitter),
		profiler:    profiling.NewProfiler(),
		composer:    NewReportComposer(),
		logger:      internal.DefaultLogger.Component("AnalysisService"),
	}
}

// Run executes the protocol against the dataset at req.DataPath and writes
// the report into req.OutDir. Every stage outcome lands on the timeline;
// the first failing stage aborts the run.
func (s *AnalysisService) Run(ctx context.Context, req AnalysisRequest) (*AnalysisResult, error) {
	startTime := time.Now()

	protocol := req.Protocol
	if err := protocol.Validate(); err != nil {
		return nil, fmt.Errorf("protocol validation failed: %w", err)
	}
	plan := stage.DefaultPlan()

	title := req.Title
	if title == "" {
		title = "Red Wine Quality Analysis"
	}

	result := &AnalysisResult{
		RunID:    core.RunID(core.NewID()),
		Timeline: &stage.Timeline{},
	}
	s.logger.Info("Starting run %s on %s", result.RunID, req.DataPath)

	// Load
	var tbl *table.Table
	err := s.runStage(ctx, result.Timeline, stage.StageLoad, func() (string, error) {
		var stageErr error
		tbl, result.LoadReport, stageErr = s.reader.Read(ctx, req.DataPath)
		if stageErr != nil {
			return "", stageErr
		}
		return fmt.Sprintf("%d rows, %d columns", result.LoadReport.RowsKept, len(result.LoadReport.Columns)), nil
	})
	if err != nil {
		return nil, err
	}

	// Profile raw columns before any transform touches them
	err = s.runStage(ctx, result.Timeline, stage.StageProfile, func() (string, error) {
		var stageErr error
		result.Profiles, stageErr = s.profiler.ProfileTable(tbl)
		if stageErr != nil {
			return "", stageErr
		}
		return fmt.Sprintf("%d columns profiled", len(result.Profiles)), nil
	})
	if err != nil {
		return nil, err
	}

	// Split
	var trainRaw, testRaw *table.Table
	err = s.runStage(ctx, result.Timeline, stage.StageSplit, func() (string, error) {
		stream, stageErr := s.rngPort.SeededStream(ctx, SplitStreamName, protocol.Seed)
		if stageErr != nil {
			return "", stageErr
		}
		result.Split, stageErr = table.NewSplit(tbl.NumRows(), protocol.TrainSize, protocol.Seed, stream)
		if stageErr != nil {
			return "", stageErr
		}
		trainRaw, testRaw, stageErr = result.Split.Apply(tbl)
		if stageErr != nil {
			return "", stageErr
		}
		return fmt.Sprintf("%d train / %d test, seed %d", len(result.Split.Train), len(result.Split.Test), protocol.Seed), nil
	})
	if err != nil {
		return nil, err
	}

	// Transform both sides with the same protocol transform
	transform := protocol.Transform()
	var trainTbl, testTbl *table.Table
	err = s.runStage(ctx, result.Timeline, stage.StageTransform, func() (string, error) {
		var stageErr error
		trainTbl, stageErr = transform.Apply(trainRaw)
		if stageErr != nil {
			return "", stageErr
		}
		testTbl, stageErr = transform.Apply(testRaw)
		if stageErr != nil {
			return "", stageErr
		}
		return fmt.Sprintf("%d columns log-scaled", len(transform.Columns())), nil
	})
	if err != nil {
		return nil, err
	}

	// Fit the full model
	err = s.runStage(ctx, result.Timeline, stage.StageFit, func() (string, error) {
		var stageErr error
		result.FullFit, stageErr = s.fitter.Fit(trainTbl, protocol.FullSpec())
		if stageErr != nil {
			return "", stageErr
		}
		return fmt.Sprintf("R2=%.4f on %d predictors", result.FullFit.R2, len(result.FullFit.Spec.Predictors)), nil
	})
	if err != nil {
		return nil, err
	}

	// Reduce: backward elimination, then the documented final model,
	// then the partial F-test that justifies the reduction
	err = s.runStage(ctx, result.Timeline, stage.StageSelect, func() (string, error) {
		var stageErr error
		result.Trace, result.EliminatedFit, stageErr = s.elimination.Eliminate(ctx, trainTbl, protocol.FullSpec(), protocol.Policy())
		if stageErr != nil {
			return "", stageErr
		}
		result.FinalFit, stageErr = s.fitter.Fit(trainTbl, protocol.FinalSpec())
		if stageErr != nil {
			return "", stageErr
		}
		result.FTest, stageErr = s.dists.PartialFTest(result.FullFit, result.FinalFit, protocol.Alpha)
		if stageErr != nil {
			return "", stageErr
		}
		result.Comparison = &selection.Comparison{Candidates: []selection.Candidate{
			{Label: "full", Fit: result.FullFit},
			{Label: "eliminated", Fit: result.EliminatedFit},
			{Label: "final", Fit: result.FinalFit},
		}}
		return fmt.Sprintf("%d removed, F p=%.4f", len(result.Trace.Removals), result.FTest.PValue), nil
	})
	if err != nil {
		return nil, err
	}

	// Influence diagnostics on the final training fit
	err = s.runStage(ctx, result.Timeline, stage.StageDiagnose, func() (string, error) {
		cutoff := s.dists.CooksCutoff(result.FinalFit.N, len(result.FinalFit.Spec.Predictors))
		var stageErr error
		result.Influence, stageErr = diagnostics.NewInfluence(result.FinalFit, cutoff)
		if stageErr != nil {
			return "", stageErr
		}
		return fmt.Sprintf("%d flagged", len(result.Influence.FlaggedEither())), nil
	})
	if err != nil {
		return nil, err
	}

	// Holdout validation
	var observed, predicted []float64
	err = s.runStage(ctx, result.Timeline, stage.StageValidate, func() (string, error) {
		var stageErr error
		predicted, stageErr = s.fitter.Predict(result.FinalFit, testTbl)
		if stageErr != nil {
			return "", stageErr
		}
		observed, stageErr = testTbl.Column(protocol.Response)
		if stageErr != nil {
			return "", stageErr
		}
		result.Holdout, stageErr = NewHoldoutMetrics(observed, predicted)
		if stageErr != nil {
			return "", stageErr
		}
		return fmt.Sprintf("RMSE=%.4f R2=%.4f on %d rows", result.Holdout.RMSE, result.Holdout.R2, result.Holdout.N), nil
	})
	if err != nil {
		return nil, err
	}

	// Render: manifest first so a failed write still has its identity
	result.Manifest = s.buildManifest(result, req.DataPath, protocol, plan)
	err = s.runStage(ctx, result.Timeline, stage.StageRender, func() (string, error) {
		doc, stageErr := s.composer.Compose(ComposerInput{
			Title:         title,
			RunID:         result.RunID,
			Protocol:      protocol,
			LoadReport:    result.LoadReport,
			Profiles:      result.Profiles,
			Split:         result.Split,
			FullFit:       result.FullFit,
			Trace:         result.Trace,
			EliminatedFit: result.EliminatedFit,
			FinalFit:      result.FinalFit,
			FTest:         result.FTest,
			Comparison:    result.Comparison,
			Influence:     result.Influence,
			Holdout:       result.Holdout,
			Observed:      observed,
			Predicted:     predicted,
			TrainTable:    trainTbl,
		})
		if stageErr != nil {
			return "", stageErr
		}
		result.Paths, stageErr = s.writer.WriteReport(ctx, doc, result.Manifest, req.OutDir)
		if stageErr != nil {
			return "", stageErr
		}
		return fmt.Sprintf("%d figures to %s", len(result.Paths.Figures), req.OutDir), nil
	})
	if err != nil {
		return nil, err
	}

	result.RuntimeMs = time.Since(startTime).Milliseconds()
	result.Success = true
	s.logger.Info("Run %s completed in %dms, report at %s", result.RunID, result.RuntimeMs, result.Paths.Markdown)
	return result, nil
}

// buildManifest assembles the run manifest from the load report and split.
func (s *AnalysisService) buildManifest(result *AnalysisResult, dataPath string, protocol study.Protocol, plan *stage.Plan) *run.Manifest {
	manifest := run.NewManifest(result.RunID, dataPath, result.LoadReport.DatasetHash,
		protocol.Hash(), plan, protocol.Seed, codeVersion)
	manifest.RowsRead = result.LoadReport.RowsRead
	manifest.RowsKept = result.LoadReport.RowsKept
	manifest.RowsDropped = result.LoadReport.RowsDropped
	manifest.Columns = len(result.LoadReport.Columns)
	manifest.TrainSize = len(result.Split.Train)
	manifest.TestSize = len(result.Split.Test)
	manifest.SplitFingerprint = result.Split.Fingerprint()
	return manifest
}

// runStage times one pipeline stage, records it on the timeline, and
// wraps any failure with the stage name.
func (s *AnalysisService) runStage(ctx context.Context, timeline *stage.Timeline, name stage.Name, fn func() (string, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	stageStart := time.Now()
	detail, err := fn()
	res := stage.Result{
		Name:       name,
		Success:    err == nil,
		Detail:     detail,
		DurationMs: time.Since(stageStart).Milliseconds(),
	}
	if err != nil {
		res.Error = err.Error()
		timeline.Add(res)
		s.logger.Error("Stage %s failed after %dms: %v", name, res.DurationMs, err)
		return fmt.Errorf("stage %s failed: %w", name, err)
	}

	timeline.Add(res)
	s.logger.Info("Stage %s completed in %dms (%s)", name, res.DurationMs, detail)
	return nil
}
