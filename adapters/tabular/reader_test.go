package tabular

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"winefit/domain/core"

	"github.com/xuri/excelize/v2"
)

const semicolonCSV = `"fixed acidity";"volatile acidity";"pH";"quality"
7.4;0.7;3.51;5
7.8;0.88;3.2;5
7.8;0.76;;5
11.2;0.28;3.16;6
not_a_number;0.5;3.3;5
`

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

func TestReadCSVDropsIncompleteRows(t *testing.T) {
	path := writeTempFile(t, "wine.csv", semicolonCSV)

	tbl, report, err := NewDataReader().Read(context.Background(), path)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	if report.RowsRead != 5 {
		t.Errorf("RowsRead = %d, want 5", report.RowsRead)
	}
	if report.RowsKept != 3 || report.RowsDropped != 2 {
		t.Errorf("kept/dropped = %d/%d, want 3/2", report.RowsKept, report.RowsDropped)
	}
	if tbl.NumRows() != 3 {
		t.Errorf("table has %d rows, want 3", tbl.NumRows())
	}

	// headers normalized to snake_case
	for _, key := range []string{"fixed_acidity", "volatile_acidity", "ph", "quality"} {
		if !tbl.HasColumn(core.ColumnKey(key)) {
			t.Errorf("missing normalized column %s (have %v)", key, tbl.Columns())
		}
	}

	values, err := tbl.Column("fixed_acidity")
	if err != nil {
		t.Fatalf("Column failed: %v", err)
	}
	if values[0] != 7.4 || values[2] != 11.2 {
		t.Errorf("unexpected column values: %v", values)
	}
}

func TestReadCSVCommaDelimited(t *testing.T) {
	path := writeTempFile(t, "wine.csv", "alcohol,quality\n9.4,5\n10.2,6\n")

	tbl, report, err := NewDataReader().Read(context.Background(), path)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if report.RowsKept != 2 || report.RowsDropped != 0 {
		t.Errorf("kept/dropped = %d/%d, want 2/0", report.RowsKept, report.RowsDropped)
	}
	if !tbl.HasColumn("alcohol") || !tbl.HasColumn("quality") {
		t.Errorf("missing columns: %v", tbl.Columns())
	}
}

func TestReadCSVRaggedRowDropped(t *testing.T) {
	path := writeTempFile(t, "wine.csv", "a;b\n1;2\n3\n4;5;6\n7;8\n")

	_, report, err := NewDataReader().Read(context.Background(), path)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if report.RowsKept != 2 || report.RowsDropped != 2 {
		t.Errorf("kept/dropped = %d/%d, want 2/2", report.RowsKept, report.RowsDropped)
	}
}

func TestReadDatasetHashIsStable(t *testing.T) {
	path := writeTempFile(t, "wine.csv", "a;b\n1;2\n")

	_, first, err := NewDataReader().Read(context.Background(), path)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	_, second, err := NewDataReader().Read(context.Background(), path)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if first.DatasetHash != second.DatasetHash {
		t.Error("Same file produced different dataset hashes")
	}
	if first.DatasetHash == "" {
		t.Error("Expected non-empty dataset hash")
	}
}

func TestReadMissingFile(t *testing.T) {
	_, _, err := NewDataReader().Read(context.Background(), filepath.Join(t.TempDir(), "absent.csv"))
	if err == nil {
		t.Fatal("Expected error for missing file")
	}
}

func TestReadRejectsAllDroppedAndEmpty(t *testing.T) {
	allBad := writeTempFile(t, "bad.csv", "a;b\nx;y\n;\n")
	if _, _, err := NewDataReader().Read(context.Background(), allBad); err == nil {
		t.Error("Expected error when every data row is dropped")
	}

	headerOnly := writeTempFile(t, "empty.csv", "a;b\n")
	if _, _, err := NewDataReader().Read(context.Background(), headerOnly); err == nil {
		t.Error("Expected error for header-only file")
	}

	dup := writeTempFile(t, "dup.csv", "a;a\n1;2\n")
	if _, _, err := NewDataReader().Read(context.Background(), dup); err == nil {
		t.Error("Expected error for duplicate headers")
	}
}

func TestReadExcelSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wine.xlsx")

	f := excelize.NewFile()
	rows := [][]interface{}{
		{"fixed acidity", "alcohol", "quality"},
		{7.4, 9.4, 5},
		{7.8, 9.8, 5},
		{"", 10.0, 6}, // dropped: empty cell
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	tbl, report, err := NewDataReader().Read(context.Background(), path)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if report.Format != "xlsx" {
		t.Errorf("Format = %s, want xlsx", report.Format)
	}
	if report.RowsKept != 2 {
		t.Errorf("RowsKept = %d, want 2", report.RowsKept)
	}
	if !tbl.HasColumn("fixed_acidity") {
		t.Errorf("missing normalized column, have %v", tbl.Columns())
	}
}

func TestNormalizeHeader(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"fixed acidity", "fixed_acidity"},
		{`"volatile acidity"`, "volatile_acidity"},
		{"pH", "ph"},
		{"Free Sulfur Dioxide", "free_sulfur_dioxide"},
		{"  quality  ", "quality"},
		{"total-sulfur-dioxide", "total_sulfur_dioxide"},
	}
	for _, c := range cases {
		if got := NormalizeHeader(c.in); got != c.want {
			t.Errorf("NormalizeHeader(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
