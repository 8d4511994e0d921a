package rng

import (
	"context"
	"math/rand"

	"winefit/domain/core"
)

// SeededRNG hands out deterministic random streams keyed by operation
// name. Mixing the name into the seed keeps independent operations from
// sharing a sequence when they run under the same base seed.
type SeededRNG struct{}

// NewSeededRNG creates the adapter.
func NewSeededRNG() *SeededRNG {
	return &SeededRNG{}
}

// SeededStream returns a generator for the named operation. The same
// name and seed always produce the same sequence.
func (r *SeededRNG) SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error) {
	if name == "" {
		return nil, core.NewValidationError("stream name", "must not be empty")
	}
	return rand.New(rand.NewSource(seed + int64(hashString(name)))), nil
}

// hashString creates a simple hash for deterministic seeding
func hashString(s string) uint32 {
	var hash uint32 = 5381
	for _, c := range s {
		hash = ((hash << 5) + hash) + uint32(c) // djb2 algorithm
	}
	return hash
}
