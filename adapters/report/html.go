package report

import (
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"winefit/domain/report"
)

// RenderHTML converts a document to a standalone HTML page by rendering
// its markdown form. Parsers are single use, so one is built per call.
func RenderHTML(doc *report.Document) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	tree := p.Parse([]byte(RenderMarkdown(doc)))

	renderer := html.NewRenderer(html.RendererOptions{
		Title: doc.Title,
		Flags: html.CommonFlags | html.CompletePage,
	})
	return markdown.Render(tree, renderer)
}
