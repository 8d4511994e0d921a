package ports

import (
	"context"

	"winefit/domain/report"
	"winefit/domain/run"
)

// FigureRendererPort draws one figure into dir and returns the filename
// it wrote, relative to dir.
type FigureRendererPort interface {
	Render(ctx context.Context, fig report.Figure, dir string) (string, error)
}

// ReportWriterPort persists a finished analysis: figures, the rendered
// report in every output format, and the machine-readable manifest.
type ReportWriterPort interface {
	WriteReport(ctx context.Context, doc *report.Document, manifest *run.Manifest, dir string) (*report.OutputPaths, error)
}
