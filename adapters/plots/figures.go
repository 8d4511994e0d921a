// Package plots renders report figures to SVG with gonum/plot.
package plots

import (
	"context"
	"fmt"
	"image/color"
	"log"
	"math"
	"os"
	"path/filepath"
	"time"

	"winefit/domain/report"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

const (
	figureWidth  = 6 * vg.Inch
	figureHeight = 4.5 * vg.Inch
)

var (
	pointColor     = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	referenceColor = color.RGBA{R: 214, G: 39, B: 40, A: 255}
)

// SVGRenderer draws diagnostic figures into a directory.
type SVGRenderer struct{}

// NewSVGRenderer creates the renderer.
func NewSVGRenderer() *SVGRenderer {
	return &SVGRenderer{}
}

// Render writes fig as an SVG file under dir and returns the filename
// relative to dir.
func (r *SVGRenderer) Render(ctx context.Context, fig report.Figure, dir string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if fig.Filename == "" {
		return "", fmt.Errorf("figure %s has no filename", fig.ID)
	}

	start := time.Now()

	p := plot.New()
	p.Title.Text = fig.Title
	p.X.Label.Text = fig.XLabel
	p.Y.Label.Text = fig.YLabel
	p.Add(plotter.NewGrid())

	var err error
	switch fig.Kind {
	case report.FigureHistogram:
		err = addHistogram(p, fig)
	case report.FigureResidualsVsFitted, report.FigureResidualsVsPredictor,
		report.FigureQQ, report.FigureObservedVsPredicted:
		err = addScatter(p, fig)
	default:
		err = fmt.Errorf("unknown figure kind %q", fig.Kind)
	}
	if err != nil {
		return "", fmt.Errorf("building figure %s: %w", fig.ID, err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating figure directory: %w", err)
	}
	outPath := filepath.Join(dir, fig.Filename)
	if err := p.Save(figureWidth, figureHeight, outPath); err != nil {
		return "", fmt.Errorf("saving figure %s: %w", fig.ID, err)
	}

	log.Printf("[FigureRenderer] Rendered %s (%s) in %dms", fig.Filename, fig.Kind, time.Since(start).Milliseconds())
	return fig.Filename, nil
}

func addHistogram(p *plot.Plot, fig report.Figure) error {
	if len(fig.Values) == 0 {
		return fmt.Errorf("histogram has no values")
	}

	values := make(plotter.Values, len(fig.Values))
	copy(values, fig.Values)

	hist, err := plotter.NewHist(values, sturgesBins(len(values)))
	if err != nil {
		return err
	}
	hist.FillColor = pointColor
	p.Add(hist)
	return nil
}

func addScatter(p *plot.Plot, fig report.Figure) error {
	if len(fig.Series) == 0 {
		return fmt.Errorf("scatter has no series")
	}

	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)

	for _, series := range fig.Series {
		if len(series.Points) == 0 {
			return fmt.Errorf("series %q has no points", series.Name)
		}
		xys := make(plotter.XYs, len(series.Points))
		for i, pt := range series.Points {
			xys[i] = plotter.XY{X: pt.X, Y: pt.Y}
			minX = math.Min(minX, pt.X)
			maxX = math.Max(maxX, pt.X)
			minY = math.Min(minY, pt.Y)
			maxY = math.Max(maxY, pt.Y)
		}

		scatter, err := plotter.NewScatter(xys)
		if err != nil {
			return err
		}
		scatter.GlyphStyle.Color = pointColor
		scatter.GlyphStyle.Radius = vg.Points(2)
		p.Add(scatter)
		if series.Name != "" {
			p.Legend.Add(series.Name, scatter)
		}
	}

	for _, yValue := range fig.HLines {
		line, err := referenceLine(minX, yValue, maxX, yValue)
		if err != nil {
			return err
		}
		p.Add(line)
	}

	if fig.Identity {
		lo := math.Min(minX, minY)
		hi := math.Max(maxX, maxY)
		line, err := referenceLine(lo, lo, hi, hi)
		if err != nil {
			return err
		}
		p.Add(line)
	}
	return nil
}

func referenceLine(x0, y0, x1, y1 float64) (*plotter.Line, error) {
	line, err := plotter.NewLine(plotter.XYs{{X: x0, Y: y0}, {X: x1, Y: y1}})
	if err != nil {
		return nil, err
	}
	line.LineStyle.Color = referenceColor
	line.LineStyle.Width = vg.Points(1)
	line.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
	return line, nil
}

// sturgesBins picks a histogram bin count from the sample size.
func sturgesBins(n int) int {
	if n < 2 {
		return 1
	}
	return int(math.Ceil(math.Log2(float64(n)))) + 1
}
