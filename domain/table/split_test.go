package table

import (
	"errors"
	"math/rand"
	"testing"

	"winefit/domain/core"
)

func newTestRNG(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// TestSplitPartition tests that a split is disjoint and covering
func TestSplitPartition(t *testing.T) {
	const n, trainSize = 1599, 800

	split, err := NewSplit(n, trainSize, 42, newTestRNG(42))
	if err != nil {
		t.Fatalf("NewSplit failed: %v", err)
	}

	if len(split.Train) != trainSize {
		t.Errorf("Expected %d training rows, got %d", trainSize, len(split.Train))
	}
	if len(split.Test) != n-trainSize {
		t.Errorf("Expected %d holdout rows, got %d", n-trainSize, len(split.Test))
	}

	seen := make(map[int]int, n)
	for _, idx := range split.Train {
		seen[idx]++
	}
	for _, idx := range split.Test {
		seen[idx]++
	}
	if len(seen) != n {
		t.Errorf("Partition does not cover all rows: %d of %d seen", len(seen), n)
	}
	for idx, count := range seen {
		if count != 1 {
			t.Errorf("Row %d appears %d times across the partition", idx, count)
		}
	}
}

// TestSplitDeterminism tests that the same seed reproduces the same partition
func TestSplitDeterminism(t *testing.T) {
	const n, trainSize = 1599, 800

	a, err := NewSplit(n, trainSize, 42, newTestRNG(42))
	if err != nil {
		t.Fatalf("NewSplit failed: %v", err)
	}
	b, err := NewSplit(n, trainSize, 42, newTestRNG(42))
	if err != nil {
		t.Fatalf("NewSplit failed: %v", err)
	}

	if !a.Fingerprint().Equals(b.Fingerprint()) {
		t.Error("Same seed produced different partitions")
	}
	for i := range a.Train {
		if a.Train[i] != b.Train[i] {
			t.Fatalf("Train index %d differs: %d vs %d", i, a.Train[i], b.Train[i])
		}
	}

	c, err := NewSplit(n, trainSize, 43, newTestRNG(43))
	if err != nil {
		t.Fatalf("NewSplit failed: %v", err)
	}
	if a.Fingerprint().Equals(c.Fingerprint()) {
		t.Error("Different seeds produced identical partitions")
	}
}

// TestSplitBounds tests degenerate sizes
func TestSplitBounds(t *testing.T) {
	if _, err := NewSplit(0, 0, 1, newTestRNG(1)); !errors.Is(err, core.ErrEmptyTable) {
		t.Errorf("Expected empty table error, got %v", err)
	}
	if _, err := NewSplit(10, 0, 1, newTestRNG(1)); !errors.Is(err, core.ErrInvalidSplit) {
		t.Errorf("Expected invalid split error for zero train size, got %v", err)
	}
	if _, err := NewSplit(10, 10, 1, newTestRNG(1)); !errors.Is(err, core.ErrInvalidSplit) {
		t.Errorf("Expected invalid split error for empty holdout, got %v", err)
	}
	if _, err := NewSplit(10, 5, 1, nil); err == nil {
		t.Error("Expected error for nil rng")
	}
}

// TestSplitValidateRejectsOverlap tests overlap detection
func TestSplitValidateRejectsOverlap(t *testing.T) {
	bad := &Split{Train: []int{0, 1}, Test: []int{1, 2}, Seed: 1, N: 4}
	if err := bad.Validate(); !errors.Is(err, core.ErrInvalidSplit) {
		t.Errorf("Expected invalid split error for overlap, got %v", err)
	}

	short := &Split{Train: []int{0}, Test: []int{1}, Seed: 1, N: 3}
	if err := short.Validate(); !errors.Is(err, core.ErrInvalidSplit) {
		t.Errorf("Expected invalid split error for missing row, got %v", err)
	}

	unsorted := &Split{Train: []int{1, 0}, Test: []int{2}, Seed: 1, N: 3}
	if err := unsorted.Validate(); !errors.Is(err, core.ErrInvalidSplit) {
		t.Errorf("Expected invalid split error for unsorted indices, got %v", err)
	}
}

// TestSplitApply tests materializing both sides against a table
func TestSplitApply(t *testing.T) {
	tbl, err := New([]core.ColumnKey{"alcohol"}, [][]float64{{10, 11, 12, 13, 14, 15}})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	split, err := NewSplit(6, 4, 7, newTestRNG(7))
	if err != nil {
		t.Fatalf("NewSplit failed: %v", err)
	}

	train, test, err := split.Apply(tbl)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if train.NumRows() != 4 || test.NumRows() != 2 {
		t.Errorf("Expected 4/2 rows, got %d/%d", train.NumRows(), test.NumRows())
	}

	other, _ := New([]core.ColumnKey{"alcohol"}, [][]float64{{1, 2}})
	if _, _, err := split.Apply(other); !errors.Is(err, core.ErrInvalidSplit) {
		t.Errorf("Expected invalid split error for size mismatch, got %v", err)
	}
}
