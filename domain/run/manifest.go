package run

import (
	"fmt"

	"winefit/domain/core"
	"winefit/domain/stage"
)

// Fingerprint binds together everything that determines a run's output.
// Two runs with equal fingerprints must produce identical analysis
// results, down to the split membership and coefficient estimates.
type Fingerprint struct {
	DatasetHash   core.DatasetHash   `json:"dataset_hash"`
	ProtocolHash  core.ProtocolHash  `json:"protocol_hash"`
	StagePlanHash core.StageListHash `json:"stage_plan_hash"`
	Seed          int64              `json:"seed"`
	CodeVersion   string             `json:"code_version"`
	Value         core.Hash          `json:"value"` // hash of all above
}

// NewFingerprint derives the combined fingerprint from its inputs.
func NewFingerprint(datasetHash core.DatasetHash, protocolHash core.ProtocolHash,
	stagePlanHash core.StageListHash, seed int64, codeVersion string) Fingerprint {

	data := fmt.Sprintf("dataset:%s|protocol:%s|stage_plan:%s|seed:%d|code:%s",
		datasetHash, protocolHash, stagePlanHash, seed, codeVersion)

	return Fingerprint{
		DatasetHash:   datasetHash,
		ProtocolHash:  protocolHash,
		StagePlanHash: stagePlanHash,
		Seed:          seed,
		CodeVersion:   codeVersion,
		Value:         core.NewHash([]byte(data)),
	}
}

// Manifest is the truth source for replaying a run: the dataset identity,
// every protocol decision, the split fingerprint, and row accounting.
// It is written before the report so a failed render still leaves an
// auditable record.
type Manifest struct {
	RunID       core.RunID       `json:"run_id"`
	DatasetPath string           `json:"dataset_path"`
	DatasetHash core.DatasetHash `json:"dataset_hash"`

	RowsRead    int `json:"rows_read"`
	RowsKept    int `json:"rows_kept"`
	RowsDropped int `json:"rows_dropped"`
	Columns     int `json:"columns"`

	Seed             int64     `json:"seed"`
	TrainSize        int       `json:"train_size"`
	TestSize         int       `json:"test_size"`
	SplitFingerprint core.Hash `json:"split_fingerprint"`

	ProtocolHash  core.ProtocolHash  `json:"protocol_hash"`
	StagePlanHash core.StageListHash `json:"stage_plan_hash"`
	CodeVersion   string             `json:"code_version"`
	Fingerprint   Fingerprint        `json:"fingerprint"`
	CreatedAt     core.Timestamp     `json:"created_at"`
}

// NewManifest assembles a manifest and its fingerprint.
func NewManifest(
	runID core.RunID,
	datasetPath string,
	datasetHash core.DatasetHash,
	protocolHash core.ProtocolHash,
	plan *stage.Plan,
	seed int64,
	codeVersion string,
) *Manifest {
	stagePlanHash := plan.Hash()
	return &Manifest{
		RunID:         runID,
		DatasetPath:   datasetPath,
		DatasetHash:   datasetHash,
		Seed:          seed,
		ProtocolHash:  protocolHash,
		StagePlanHash: stagePlanHash,
		CodeVersion:   codeVersion,
		Fingerprint:   NewFingerprint(datasetHash, protocolHash, stagePlanHash, seed, codeVersion),
		CreatedAt:     core.Now(),
	}
}

// Validate checks if the manifest is complete
func (m *Manifest) Validate() error {
	if core.ID(m.RunID).IsEmpty() {
		return core.NewValidationError("manifest", "run_id cannot be empty")
	}
	if m.DatasetPath == "" {
		return core.NewValidationError("manifest", "dataset_path cannot be empty")
	}
	if m.DatasetHash == "" {
		return core.NewValidationError("manifest", "dataset_hash cannot be empty")
	}
	if m.ProtocolHash == "" {
		return core.NewValidationError("manifest", "protocol_hash cannot be empty")
	}
	if m.CodeVersion == "" {
		return core.NewValidationError("manifest", "code_version cannot be empty")
	}
	if m.RowsKept > m.RowsRead {
		return core.NewValidationError("manifest", "rows_kept cannot exceed rows_read")
	}
	return nil
}

// SameInputs compares the determinism inputs of two manifests and returns
// a fingerprint mismatch error when they differ. Run IDs and timestamps
// are allowed to differ.
func (m *Manifest) SameInputs(other *Manifest) error {
	if m.Fingerprint.Value != other.Fingerprint.Value {
		return fmt.Errorf("%w: %s vs %s", core.ErrFingerprintMismatch,
			m.Fingerprint.Value, other.Fingerprint.Value)
	}
	return nil
}

