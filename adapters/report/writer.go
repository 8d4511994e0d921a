package report

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"winefit/domain/report"
	"winefit/domain/run"
	apperrors "winefit/internal/errors"
	"winefit/ports"
)

const (
	markdownName = "report.md"
	htmlName     = "report.html"
	workbookName = "report.xlsx"
	manifestName = "manifest.json"
)

// Writer persists one finished analysis: the manifest first, so even a
// failed render leaves an auditable record, then figures, then the
// report in each format.
type Writer struct {
	figures ports.FigureRendererPort
}

// NewWriter creates a report writer that renders figures with the given
// renderer.
func NewWriter(figures ports.FigureRendererPort) *Writer {
	return &Writer{figures: figures}
}

// WriteReport writes the document and manifest under dir and returns
// where everything landed.
func (w *Writer) WriteReport(ctx context.Context, doc *report.Document, manifest *run.Manifest, dir string) (*report.OutputPaths, error) {
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid document: %w", err)
	}
	if err := manifest.Validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating report directory: %w", err)
	}

	start := time.Now()

	paths := &report.OutputPaths{
		Dir:      dir,
		Markdown: filepath.Join(dir, markdownName),
		HTML:     filepath.Join(dir, htmlName),
		Workbook: filepath.Join(dir, workbookName),
		Manifest: filepath.Join(dir, manifestName),
	}

	manifestJSON, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding manifest: %w", err)
	}
	if err := os.WriteFile(paths.Manifest, manifestJSON, 0o644); err != nil {
		return nil, apperrors.RenderFailed(manifestName, err)
	}

	figureDir := filepath.Join(dir, figureSubdir)
	for _, fig := range doc.Figures() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name, err := w.figures.Render(ctx, fig, figureDir)
		if err != nil {
			return nil, apperrors.RenderFailed(fig.Filename, err)
		}
		paths.Figures = append(paths.Figures, filepath.Join(figureDir, name))
	}

	if err := os.WriteFile(paths.Markdown, []byte(RenderMarkdown(doc)), 0o644); err != nil {
		return nil, apperrors.RenderFailed(markdownName, err)
	}
	if err := os.WriteFile(paths.HTML, RenderHTML(doc), 0o644); err != nil {
		return nil, apperrors.RenderFailed(htmlName, err)
	}
	if err := WriteWorkbook(doc, paths.Workbook); err != nil {
		return nil, apperrors.RenderFailed(workbookName, err)
	}

	log.Printf("[ReportWriter] Wrote report with %d figures to %s in %dms",
		len(paths.Figures), dir, time.Since(start).Milliseconds())
	return paths, nil
}
