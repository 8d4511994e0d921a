package stage

import (
	"testing"
)

func TestDefaultPlanValidates(t *testing.T) {
	plan := DefaultPlan()
	if err := plan.Validate(); err != nil {
		t.Fatalf("Default plan must validate: %v", err)
	}
	if len(plan.Stages) != 9 {
		t.Errorf("Expected 9 stages, got %d", len(plan.Stages))
	}
	if plan.Stages[0].Name != StageLoad || plan.Stages[len(plan.Stages)-1].Name != StageRender {
		t.Error("Plan must start with load and end with render")
	}
}

func TestPlanHashDeterminism(t *testing.T) {
	a := DefaultPlan()
	b := DefaultPlan()
	if a.Hash() != b.Hash() {
		t.Error("Identical plans must hash equally")
	}

	// hash ignores declaration order
	reversed := &Plan{Stages: make([]Spec, len(a.Stages))}
	for i, s := range a.Stages {
		reversed.Stages[len(a.Stages)-1-i] = s
	}
	if a.Hash() != reversed.Hash() {
		t.Error("Hash must be independent of stage order")
	}

	// but not membership
	trimmed := &Plan{Stages: a.Stages[:5]}
	if a.Hash() == trimmed.Hash() {
		t.Error("Different stage sets must hash differently")
	}
}

func TestPlanValidateRejectsDuplicates(t *testing.T) {
	plan := &Plan{Stages: []Spec{
		{Name: StageLoad, Kind: KindData},
		{Name: StageLoad, Kind: KindData},
	}}
	if err := plan.Validate(); err == nil {
		t.Error("Expected error for duplicate stage names")
	}

	empty := &Plan{}
	if err := empty.Validate(); err == nil {
		t.Error("Expected error for empty plan")
	}
}

func TestPlanByKind(t *testing.T) {
	plan := DefaultPlan()
	stats := plan.ByKind(KindStats)
	if len(stats) != 5 {
		t.Errorf("Expected 5 stats stages, got %d", len(stats))
	}
	if len(plan.ByKind(KindReport)) != 1 {
		t.Error("Expected exactly one report stage")
	}
}

func TestTimeline(t *testing.T) {
	var tl Timeline
	tl.Add(Result{Name: StageLoad, Success: true, DurationMs: 12})
	tl.Add(Result{Name: StageFit, Success: false, Error: "singular design", DurationMs: 3})

	if tl.TotalDurationMs() != 15 {
		t.Errorf("TotalDurationMs = %d, want 15", tl.TotalDurationMs())
	}
	failed, ok := tl.Failed()
	if !ok || failed.Name != StageFit {
		t.Errorf("Failed() = %v (ok=%v), want fit stage", failed.Name, ok)
	}
}
