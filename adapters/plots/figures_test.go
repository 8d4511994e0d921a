package plots

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"winefit/domain/report"
)

func renderAndStat(t *testing.T, fig report.Figure) string {
	t.Helper()
	dir := t.TempDir()

	name, err := NewSVGRenderer().Render(context.Background(), fig, dir)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if name != fig.Filename {
		t.Errorf("returned name = %q, want %q", name, fig.Filename)
	}

	info, err := os.Stat(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("rendered file missing: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("rendered file is empty")
	}

	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("reading rendered file: %v", err)
	}
	return string(data)
}

func scatterFigure(kind report.FigureKind, title string) report.Figure {
	fig := report.NewFigure(kind, title, "x", "y")
	fig.Series = []report.Series{{
		Name:   "train",
		Points: []report.Point{{X: 1, Y: 2}, {X: 2, Y: 1.5}, {X: 3, Y: 3.2}, {X: 4, Y: 2.8}},
	}}
	return fig
}

func TestRender_ResidualsVsFitted(t *testing.T) {
	fig := scatterFigure(report.FigureResidualsVsFitted, "Residuals vs Fitted")
	fig.HLines = []float64{0}

	content := renderAndStat(t, fig)
	if !strings.Contains(content, "<svg") {
		t.Error("output does not look like SVG")
	}
}

func TestRender_QQWithIdentity(t *testing.T) {
	fig := scatterFigure(report.FigureQQ, "Normal Q-Q")
	fig.Identity = true
	renderAndStat(t, fig)
}

func TestRender_ObservedVsPredicted(t *testing.T) {
	fig := scatterFigure(report.FigureObservedVsPredicted, "Observed vs Predicted")
	fig.Identity = true
	renderAndStat(t, fig)
}

func TestRender_Histogram(t *testing.T) {
	fig := report.NewFigure(report.FigureHistogram, "Residual Histogram", "residual", "count")
	fig.Values = []float64{-1.2, -0.4, -0.1, 0.0, 0.2, 0.3, 0.5, 0.9, 1.1, -0.6, 0.7, -0.3}
	renderAndStat(t, fig)
}

func TestRender_UnknownKindRejected(t *testing.T) {
	fig := report.NewFigure("heatmap", "Mystery", "x", "y")
	fig.Series = []report.Series{{Points: []report.Point{{X: 1, Y: 1}}}}

	_, err := NewSVGRenderer().Render(context.Background(), fig, t.TempDir())
	if err == nil {
		t.Fatal("expected error for unknown figure kind")
	}
}

func TestRender_EmptySeriesRejected(t *testing.T) {
	fig := report.NewFigure(report.FigureResidualsVsFitted, "Empty", "x", "y")

	_, err := NewSVGRenderer().Render(context.Background(), fig, t.TempDir())
	if err == nil {
		t.Fatal("expected error for figure without series")
	}
}

func TestRender_EmptyHistogramRejected(t *testing.T) {
	fig := report.NewFigure(report.FigureHistogram, "Empty Histogram", "x", "count")

	_, err := NewSVGRenderer().Render(context.Background(), fig, t.TempDir())
	if err == nil {
		t.Fatal("expected error for histogram without values")
	}
}

func TestRender_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fig := scatterFigure(report.FigureResidualsVsFitted, "Cancelled")
	_, err := NewSVGRenderer().Render(ctx, fig, t.TempDir())
	if err == nil {
		t.Fatal("expected context error")
	}
}
