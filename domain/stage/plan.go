package stage

import (
	"encoding/json"
	"sort"

	"winefit/domain/core"
)

// Name identifies one stage of the analysis pipeline.
type Name string

// Kind categorizes stages by function
type Kind string

const (
	KindData   Kind = "data"   // loading, splitting, transforming
	KindStats  Kind = "stats"  // fitting and testing
	KindReport Kind = "report" // rendering outputs
)

// The pipeline stages, in execution order.
const (
	StageLoad      Name = "load"
	StageProfile   Name = "profile"
	StageSplit     Name = "split"
	StageTransform Name = "transform"
	StageFit       Name = "fit"
	StageSelect    Name = "select"
	StageDiagnose  Name = "diagnose"
	StageValidate  Name = "validate"
	StageRender    Name = "render"
)

// Spec defines a single stage in the pipeline
type Spec struct {
	Name Name `json:"name"`
	Kind Kind `json:"kind"`
}

// Plan is the ordered list of stages a run executes.
type Plan struct {
	Stages []Spec `json:"stages"`
}

// DefaultPlan returns the full analysis pipeline.
func DefaultPlan() *Plan {
	return &Plan{Stages: []Spec{
		{Name: StageLoad, Kind: KindData},
		{Name: StageProfile, Kind: KindStats},
		{Name: StageSplit, Kind: KindData},
		{Name: StageTransform, Kind: KindData},
		{Name: StageFit, Kind: KindStats},
		{Name: StageSelect, Kind: KindStats},
		{Name: StageDiagnose, Kind: KindStats},
		{Name: StageValidate, Kind: KindStats},
		{Name: StageRender, Kind: KindReport},
	}}
}

// Hash computes a deterministic hash of the plan, independent of the
// declaration order of its stages.
func (p *Plan) Hash() core.StageListHash {
	sorted := make([]Spec, len(p.Stages))
	copy(sorted, p.Stages)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})

	data, _ := json.Marshal(sorted)
	return core.NewStageListHash(data)
}

// Validate checks the plan is non-empty and free of duplicates.
func (p *Plan) Validate() error {
	if len(p.Stages) == 0 {
		return core.NewValidationError("plan", "must contain at least one stage")
	}
	seen := make(map[Name]bool, len(p.Stages))
	for _, s := range p.Stages {
		if s.Name == "" {
			return core.NewValidationError("stage", "name cannot be empty")
		}
		if seen[s.Name] {
			return core.NewValidationError("stage", "duplicate stage name: "+string(s.Name))
		}
		seen[s.Name] = true
	}
	return nil
}

// ByKind returns all stages of a specific kind, in plan order.
func (p *Plan) ByKind(kind Kind) []Spec {
	var out []Spec
	for _, s := range p.Stages {
		if s.Kind == kind {
			out = append(out, s)
		}
	}
	return out
}

// Result records the outcome of one executed stage.
type Result struct {
	Name       Name   `json:"name"`
	Success    bool   `json:"success"`
	Detail     string `json:"detail,omitempty"`
	Error      string `json:"error,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

// Timeline accumulates stage results across a run.
type Timeline struct {
	Results []Result `json:"results"`
}

// Add appends a result to the timeline.
func (t *Timeline) Add(r Result) {
	t.Results = append(t.Results, r)
}

// TotalDurationMs sums the stage durations.
func (t *Timeline) TotalDurationMs() int64 {
	var total int64
	for _, r := range t.Results {
		total += r.DurationMs
	}
	return total
}

// Failed returns the first failing result, if any.
func (t *Timeline) Failed() (Result, bool) {
	for _, r := range t.Results {
		if !r.Success {
			return r, true
		}
	}
	return Result{}, false
}
