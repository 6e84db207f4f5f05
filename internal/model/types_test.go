package model

import "testing"

func TestStatusForNeverAllows(t *testing.T) {
	tests := []struct {
		decision Decision
		want     Status
	}{
		{Deny, StatusDanger},
		{Caution, StatusCaution},
		{Allow, StatusCaution},
	}
	for _, tt := range tests {
		if got := StatusFor(tt.decision); got != tt.want {
			t.Errorf("StatusFor(%s) = %s, want %s", tt.decision, got, tt.want)
		}
	}
}

func TestDeclaredHighCaseInsensitive(t *testing.T) {
	for _, level := range []string{"High", "high", " HIGH ", "hIgH"} {
		f := FieldSet{RiskLevel: level}
		if !f.DeclaredHigh("high") {
			t.Errorf("expected %q to be declared high", level)
		}
	}
	for _, level := range []string{"Very High", "Low", "Medium", ""} {
		f := FieldSet{RiskLevel: level}
		if f.DeclaredHigh("high") {
			t.Errorf("expected %q not to be declared high", level)
		}
	}
}

func TestSubjectExcludesRiskLevel(t *testing.T) {
	f := FieldSet{AgentType: "Researcher", Capability: "DataAccess", Tool: "Browser", RiskLevel: "High"}
	if got := f.Subject(); got != "Researcher DataAccess Browser" {
		t.Errorf("unexpected subject %q", got)
	}
}

func TestKindAndRelTypeValid(t *testing.T) {
	for _, k := range []Kind{KindAgentType, KindCapability, KindTool, KindRiskLevel} {
		if !k.Valid() {
			t.Errorf("expected kind %s to be valid", k)
		}
	}
	if Kind("Thing").Valid() {
		t.Error("expected unknown kind to be invalid")
	}
	for _, r := range []RelType{IsA, InstanceOf, HasCapability, UsesTool, HasRiskLevel} {
		if !r.Valid() {
			t.Errorf("expected rel type %s to be valid", r)
		}
	}
	if RelType("KNOWS").Valid() {
		t.Error("expected unknown rel type to be invalid")
	}
}

func TestSnapshotSortAndNodeName(t *testing.T) {
	s := Snapshot{
		Concepts: []Concept{
			{ID: "c2", Name: "Tool", Kind: KindTool},
			{ID: "c1", Name: "Agent", Kind: KindAgentType},
		},
		Instances: []Instance{{ID: "i1", Name: "agent_instance", ConceptID: "c1"}},
		Relationships: []Relationship{
			{Type: UsesTool, Source: "i1", Target: "c2"},
			{Type: InstanceOf, Source: "i1", Target: "c1"},
		},
	}
	s.Sort()

	if s.Concepts[0].Name != "Agent" {
		t.Errorf("expected concepts sorted by name, got %s first", s.Concepts[0].Name)
	}
	if s.Relationships[0].Type != InstanceOf {
		t.Errorf("expected INSTANCE_OF first, got %s", s.Relationships[0].Type)
	}
	if name, ok := s.NodeName("i1"); !ok || name != "agent_instance" {
		t.Errorf("expected agent_instance, got %q (%v)", name, ok)
	}
	if _, ok := s.NodeName("missing"); ok {
		t.Error("expected unknown id to be unresolved")
	}
}
