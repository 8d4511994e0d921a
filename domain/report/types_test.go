package report

import (
	"testing"

	"winefit/domain/core"
)

func TestSlug(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Residuals vs Fitted", "residuals_vs_fitted"},
		{"Q-Q Plot (holdout)", "q_q_plot_holdout"},
		{"  Observed vs. Predicted  ", "observed_vs_predicted"},
		{"alcohol", "alcohol"},
	}
	for _, c := range cases {
		if got := Slug(c.in); got != c.want {
			t.Errorf("Slug(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNewFigureFilename(t *testing.T) {
	fig := NewFigure(FigureQQ, "Normal Q-Q Plot", "Theoretical quantiles", "Sample quantiles")
	if fig.Filename != "normal_q_q_plot.svg" {
		t.Errorf("Filename = %q, want normal_q_q_plot.svg", fig.Filename)
	}
	if fig.ID == "" {
		t.Error("Expected non-empty figure ID")
	}
}

func TestTableBlockValidate(t *testing.T) {
	good := TableBlock{
		Title:   "Coefficients",
		Columns: []string{"term", "estimate"},
		Rows:    [][]string{{"(intercept)", "1.2"}},
	}
	if err := good.Validate(); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}

	bad := TableBlock{
		Title:   "Coefficients",
		Columns: []string{"term", "estimate"},
		Rows:    [][]string{{"(intercept)"}},
	}
	if err := bad.Validate(); err == nil {
		t.Error("Expected error for ragged row")
	}
}

func TestDocumentCollectors(t *testing.T) {
	doc := &Document{
		Title: "Red Wine Quality",
		Sections: []Section{
			{
				Heading: "Data",
				Tables:  []TableBlock{{Title: "Profile", Columns: []string{"col"}, Rows: nil}},
			},
			{
				Heading: "Diagnostics",
				Figures: []Figure{
					NewFigure(FigureResidualsVsFitted, "Residuals vs Fitted", "fitted", "residual"),
					NewFigure(FigureQQ, "Normal Q-Q", "theoretical", "sample"),
				},
			},
		},
	}

	if err := doc.Validate(); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	if len(doc.Figures()) != 2 {
		t.Errorf("Expected 2 figures, got %d", len(doc.Figures()))
	}
	if len(doc.Tables()) != 1 {
		t.Errorf("Expected 1 table, got %d", len(doc.Tables()))
	}

	empty := &Document{Title: "x"}
	if err := empty.Validate(); err == nil {
		t.Error("Expected error for document without sections")
	}
}

func TestOutputPathsArtifacts(t *testing.T) {
	paths := &OutputPaths{
		Dir:      "out",
		Markdown: "out/report.md",
		HTML:     "out/report.html",
		Workbook: "out/report.xlsx",
		Manifest: "out/manifest.json",
		Figures:  []string{"out/figures/normal_q_q_plot.svg", "out/figures/residuals_vs_fitted.svg"},
	}

	arts := paths.Artifacts(core.Now())
	if len(arts) != 6 {
		t.Fatalf("Expected 6 artifacts, got %d", len(arts))
	}
	if arts[0].Kind != core.ArtifactManifest || arts[0].Path != "out/manifest.json" {
		t.Errorf("First artifact should be the manifest, got %s %s", arts[0].Kind, arts[0].Path)
	}

	counts := make(map[core.ArtifactKind]int)
	for _, a := range arts {
		counts[a.Kind]++
		if a.ID.IsEmpty() {
			t.Errorf("Artifact %s has empty ID", a.Path)
		}
	}
	if counts[core.ArtifactFigure] != 2 {
		t.Errorf("Expected 2 figure artifacts, got %d", counts[core.ArtifactFigure])
	}
	for _, kind := range []core.ArtifactKind{core.ArtifactReportMarkdown, core.ArtifactReportHTML, core.ArtifactWorkbook} {
		if counts[kind] != 1 {
			t.Errorf("Expected exactly one %s artifact, got %d", kind, counts[kind])
		}
	}
}
