package report

import (
	"fmt"
	"strings"

	"winefit/domain/core"
)

// FigureKind identifies one of the diagnostic plot families the renderer
// knows how to draw.
type FigureKind string

const (
	FigureResidualsVsFitted    FigureKind = "residuals_vs_fitted"
	FigureResidualsVsPredictor FigureKind = "residuals_vs_predictor"
	FigureQQ                   FigureKind = "qq_plot"
	FigureHistogram            FigureKind = "histogram"
	FigureObservedVsPredicted  FigureKind = "observed_vs_predicted"
)

// Point is one plotted observation.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Series is a named set of points within a figure.
type Series struct {
	Name   string  `json:"name"`
	Points []Point `json:"points"`
}

// Figure is a renderer-independent description of one diagnostic plot.
// HLines draws horizontal reference lines (residual zero line, cutoff
// bands); Identity asks for the y=x reference of Q-Q and
// observed-vs-predicted panels. Values feeds histogram kinds.
type Figure struct {
	ID       core.FigureID `json:"id"`
	Kind     FigureKind    `json:"kind"`
	Title    string        `json:"title"`
	XLabel   string        `json:"x_label"`
	YLabel   string        `json:"y_label"`
	Series   []Series      `json:"series,omitempty"`
	Values   []float64     `json:"values,omitempty"`
	HLines   []float64     `json:"h_lines,omitempty"`
	Identity bool          `json:"identity"`
	Filename string        `json:"filename"`
}

// NewFigure builds a figure with a fresh ID and a filename slug derived
// from the title.
func NewFigure(kind FigureKind, title, xLabel, yLabel string) Figure {
	return Figure{
		ID:       core.FigureID(core.NewID()),
		Kind:     kind,
		Title:    title,
		XLabel:   xLabel,
		YLabel:   yLabel,
		Filename: Slug(title) + ".svg",
	}
}

// Slug lowercases a title and squashes non-alphanumerics to underscores.
func Slug(title string) string {
	var b strings.Builder
	lastUnderscore := true
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteRune('_')
				lastUnderscore = true
			}
		}
	}
	return strings.TrimRight(b.String(), "_")
}

// TableBlock is a rendered table: a title, a header row, and string cells.
type TableBlock struct {
	Title   string     `json:"title"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Validate checks every row matches the header width.
func (tb TableBlock) Validate() error {
	for i, row := range tb.Rows {
		if len(row) != len(tb.Columns) {
			return core.NewValidationError("table block",
				fmt.Sprintf("%s: row %d has %d cells, expected %d", tb.Title, i, len(row), len(tb.Columns)))
		}
	}
	return nil
}

// Section is one report chapter: prose paragraphs, then tables, then figures.
type Section struct {
	Heading    string       `json:"heading"`
	Paragraphs []string     `json:"paragraphs,omitempty"`
	Tables     []TableBlock `json:"tables,omitempty"`
	Figures    []Figure     `json:"figures,omitempty"`
}

// Document is the complete analysis report before rendering.
type Document struct {
	Title       string         `json:"title"`
	RunID       core.RunID     `json:"run_id"`
	GeneratedAt core.Timestamp `json:"generated_at"`
	Sections    []Section      `json:"sections"`
}

// Figures returns every figure in document order.
func (d *Document) Figures() []Figure {
	var out []Figure
	for _, s := range d.Sections {
		out = append(out, s.Figures...)
	}
	return out
}

// Tables returns every table block in document order.
func (d *Document) Tables() []TableBlock {
	var out []TableBlock
	for _, s := range d.Sections {
		out = append(out, s.Tables...)
	}
	return out
}

// Validate checks the document and all nested blocks.
func (d *Document) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return core.NewValidationError("title", "must not be empty")
	}
	if len(d.Sections) == 0 {
		return core.NewValidationError("sections", "at least one required")
	}
	for _, s := range d.Sections {
		if strings.TrimSpace(s.Heading) == "" {
			return core.NewValidationError("section heading", "must not be empty")
		}
		for _, tb := range s.Tables {
			if err := tb.Validate(); err != nil {
				return err
			}
		}
	}
	return nil
}

// OutputPaths lists where a written report landed on disk.
type OutputPaths struct {
	Dir      string   `json:"dir"`
	Markdown string   `json:"markdown"`
	HTML     string   `json:"html"`
	Workbook string   `json:"workbook"`
	Manifest string   `json:"manifest"`
	Figures  []string `json:"figures"`
}

// Artifacts enumerates the written outputs as typed artifact records,
// manifest first, in the order they were persisted.
func (p *OutputPaths) Artifacts(createdAt core.Timestamp) []core.Artifact {
	arts := make([]core.Artifact, 0, 4+len(p.Figures))
	arts = append(arts,
		core.Artifact{ID: core.NewID(), Kind: core.ArtifactManifest, Path: p.Manifest, CreatedAt: createdAt},
	)
	for _, f := range p.Figures {
		arts = append(arts, core.Artifact{ID: core.NewID(), Kind: core.ArtifactFigure, Path: f, CreatedAt: createdAt})
	}
	arts = append(arts,
		core.Artifact{ID: core.NewID(), Kind: core.ArtifactReportMarkdown, Path: p.Markdown, CreatedAt: createdAt},
		core.Artifact{ID: core.NewID(), Kind: core.ArtifactReportHTML, Path: p.HTML, CreatedAt: createdAt},
		core.Artifact{ID: core.NewID(), Kind: core.ArtifactWorkbook, Path: p.Workbook, CreatedAt: createdAt},
	)
	return arts
}
