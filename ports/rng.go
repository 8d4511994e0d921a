package ports

import (
	"context"
	"math/rand"
)

// RNGPort provides seeded random number generation for deterministic operations
type RNGPort interface {
	// SeededStream creates a deterministic random number generator for a
	// named operation. The same name and seed always yield the same
	// sequence, and distinct names yield independent sequences, so one
	// run can draw for several operations without coupling them.
	SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error)
}
