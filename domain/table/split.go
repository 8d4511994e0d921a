package table

import (
	"fmt"
	"math/rand"
	"sort"

	"winefit/domain/core"
)

// Split is a disjoint partition of row indices into a training set and a
// holdout set. Indices within each side are sorted ascending so that the
// partition is fully described by its membership, not by draw order.
type Split struct {
	Train []int `json:"train"`
	Test  []int `json:"test"`
	Seed  int64 `json:"seed"`
	N     int   `json:"n"`
}

// NewSplit partitions n rows into trainSize training rows and n-trainSize
// holdout rows using a permutation drawn from rng. The same seed and n
// always produce the same partition.
func NewSplit(n, trainSize int, seed int64, rng *rand.Rand) (*Split, error) {
	if n <= 0 {
		return nil, core.ErrEmptyTable
	}
	if trainSize <= 0 || trainSize >= n {
		return nil, fmt.Errorf("%w: train size %d outside (0,%d)", core.ErrInvalidSplit, trainSize, n)
	}
	if rng == nil {
		return nil, core.NewValidationError("rng", "must not be nil")
	}

	perm := rng.Perm(n)
	train := make([]int, trainSize)
	test := make([]int, n-trainSize)
	copy(train, perm[:trainSize])
	copy(test, perm[trainSize:])
	sort.Ints(train)
	sort.Ints(test)

	split := &Split{Train: train, Test: test, Seed: seed, N: n}
	if err := split.Validate(); err != nil {
		return nil, err
	}
	return split, nil
}

// Validate checks that the split is a true partition: disjoint, covering,
// in-range, and sorted.
func (s *Split) Validate() error {
	if len(s.Train) == 0 || len(s.Test) == 0 {
		return fmt.Errorf("%w: both sides must be non-empty", core.ErrInvalidSplit)
	}
	if len(s.Train)+len(s.Test) != s.N {
		return fmt.Errorf("%w: %d train + %d test != %d rows",
			core.ErrInvalidSplit, len(s.Train), len(s.Test), s.N)
	}

	seen := make(map[int]bool, s.N)
	for _, side := range [][]int{s.Train, s.Test} {
		if !sort.IntsAreSorted(side) {
			return fmt.Errorf("%w: indices must be sorted", core.ErrInvalidSplit)
		}
		for _, idx := range side {
			if idx < 0 || idx >= s.N {
				return fmt.Errorf("%w: index %d out of range [0,%d)", core.ErrInvalidSplit, idx, s.N)
			}
			if seen[idx] {
				return fmt.Errorf("%w: index %d appears twice", core.ErrInvalidSplit, idx)
			}
			seen[idx] = true
		}
	}
	return nil
}

// Fingerprint returns a hash of the partition membership, seed included.
// Two runs with the same dataset size and seed share a fingerprint.
func (s *Split) Fingerprint() core.Hash {
	data := fmt.Sprintf("seed=%d;n=%d;train=%v;test=%v", s.Seed, s.N, s.Train, s.Test)
	return core.NewHash([]byte(data))
}

// Apply materializes the two sides of the split against a table.
func (s *Split) Apply(t *Table) (train, test *Table, err error) {
	if t.NumRows() != s.N {
		return nil, nil, fmt.Errorf("%w: split for %d rows applied to table with %d",
			core.ErrInvalidSplit, s.N, t.NumRows())
	}
	train, err = t.Subset(s.Train)
	if err != nil {
		return nil, nil, err
	}
	test, err = t.Subset(s.Test)
	if err != nil {
		return nil, nil, err
	}
	return train, test, nil
}
