package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	// Use UUID v7 for time-ordered, sortable IDs
	// Falls back to v4 if v7 is not available (for compatibility)
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to v4 if v7 fails
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	RunID     ID
	FigureID  ID
	ColumnKey ID
)

// String conversions for domain IDs
func (id RunID) String() string    { return ID(id).String() }
func (id FigureID) String() string { return ID(id).String() }
func (k ColumnKey) String() string { return ID(k).String() }

// ParseRunID parses a string into RunID
func ParseRunID(s string) (RunID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("run ID cannot be empty")
	}
	return RunID(s), nil
}

// ParseColumnKey parses a string into ColumnKey
func ParseColumnKey(s string) (ColumnKey, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("column key cannot be empty")
	}
	return ColumnKey(s), nil
}

// Artifact represents any output of an analysis run
type Artifact struct {
	ID        ID           `json:"id"`
	Kind      ArtifactKind `json:"kind"`
	Path      string       `json:"path"`
	CreatedAt Timestamp    `json:"created_at"`
}

// ArtifactKind defines types of run outputs
type ArtifactKind string

const (
	// ArtifactManifest is the machine-readable run manifest (seed, hashes, counts).
	ArtifactManifest ArtifactKind = "manifest"
	// ArtifactReportMarkdown is the rendered analysis report in markdown.
	ArtifactReportMarkdown ArtifactKind = "report_markdown"
	// ArtifactReportHTML is the standalone HTML rendering of the report.
	ArtifactReportHTML ArtifactKind = "report_html"
	// ArtifactWorkbook is the spreadsheet export of the report tables.
	ArtifactWorkbook ArtifactKind = "workbook"
	ArtifactFigure   ArtifactKind = "figure"
)
