// Package report renders analysis documents to markdown, HTML, and an
// xlsx workbook, and writes the run manifest alongside them.
package report

import (
	"fmt"
	"strings"

	"winefit/domain/report"
)

// figures land in this subdirectory of the report directory
const figureSubdir = "figures"

// RenderMarkdown flattens a document into GitHub-flavored markdown with
// pipe tables and relative figure links.
func RenderMarkdown(doc *report.Document) string {
	var b strings.Builder

	b.WriteString("# " + doc.Title + "\n\n")
	fmt.Fprintf(&b, "_Run %s, generated %s_\n", doc.RunID, doc.GeneratedAt.String())

	for _, section := range doc.Sections {
		b.WriteString("\n## " + section.Heading + "\n")

		for _, p := range section.Paragraphs {
			b.WriteString("\n" + p + "\n")
		}
		for _, tb := range section.Tables {
			writeTable(&b, tb)
		}
		for _, fig := range section.Figures {
			fmt.Fprintf(&b, "\n![%s](%s/%s)\n", fig.Title, figureSubdir, fig.Filename)
		}
	}
	return b.String()
}

func writeTable(b *strings.Builder, tb report.TableBlock) {
	if tb.Title != "" {
		b.WriteString("\n**" + tb.Title + "**\n")
	}

	b.WriteString("\n| " + strings.Join(escapeCells(tb.Columns), " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(" --- |", len(tb.Columns)) + "\n")
	for _, row := range tb.Rows {
		b.WriteString("| " + strings.Join(escapeCells(row), " | ") + " |\n")
	}
}

// escapeCells keeps literal pipes from breaking table syntax.
func escapeCells(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.ReplaceAll(c, "|", "\\|")
	}
	return out
}
