package core

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// Domain-specific hash types
type (
	DatasetHash   Hash
	ProtocolHash  Hash
	StageListHash Hash
	CodeVersion   Hash
)

// Constructors
func NewDatasetHash(data []byte) DatasetHash     { return DatasetHash(NewHash(data)) }
func NewProtocolHash(data []byte) ProtocolHash   { return ProtocolHash(NewHash(data)) }
func NewStageListHash(data []byte) StageListHash { return StageListHash(NewHash(data)) }
func NewCodeVersion(data []byte) CodeVersion     { return CodeVersion(NewHash(data)) }

// String conversions
func (h DatasetHash) String() string   { return Hash(h).String() }
func (h ProtocolHash) String() string  { return Hash(h).String() }
func (h StageListHash) String() string { return Hash(h).String() }
func (h CodeVersion) String() string   { return Hash(h).String() }

// ComputeColumnsHash hashes a set of column keys independent of their order
func ComputeColumnsHash(keys []ColumnKey) Hash {
	sorted := make([]string, 0, len(keys))
	for _, k := range keys {
		sorted = append(sorted, k.String())
	}
	sort.Strings(sorted)

	var data strings.Builder
	for _, k := range sorted {
		data.WriteString(k)
		data.WriteString("\n")
	}

	return NewHash([]byte(data.String()))
}
