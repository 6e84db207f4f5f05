package normalize

import (
	"strings"
	"testing"

	"github.com/ppiankov/ontoguard/internal/model"
)

func TestNormalizeExtractsLabeledLines(t *testing.T) {
	raw := "Agent Type: Researcher\nCapability: DataAccess\nTool: Browser\nRisk Level: Low\n"
	got := Normalize(raw)
	want := model.FieldSet{AgentType: "Researcher", Capability: "DataAccess", Tool: "Browser", RiskLevel: "Low"}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestNormalizeDefaultsWhenLabelsMissing(t *testing.T) {
	got := Normalize("the model rambled and produced nothing useful")
	want := model.FieldSet{
		AgentType:  "Unknown Agent",
		Capability: "Unknown Capability",
		Tool:       "Unknown Tool",
		RiskLevel:  "Medium",
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestNormalizeRewritesPlaceholders(t *testing.T) {
	raw := strings.Join([]string{
		"Agent Type: [type of agent that would perform this action]",
		"Capability: <capability>",
		"Tool: [tool name]",
		"Risk Level: [Low, Medium, or High]",
	}, "\n")
	got := Normalize(raw)

	if got.Tool != "Unknown Tool" {
		t.Errorf("expected Unknown Tool, got %q", got.Tool)
	}
	if got.AgentType != "Unknown Agent Type" {
		t.Errorf("expected Unknown Agent Type, got %q", got.AgentType)
	}
	if got.Capability != "Unknown Capability" {
		t.Errorf("expected Unknown Capability, got %q", got.Capability)
	}
	if got.RiskLevel != "Unknown Risk Level" {
		t.Errorf("expected Unknown Risk Level, got %q", got.RiskLevel)
	}
}

func TestNormalizePercentDecodes(t *testing.T) {
	raw := "Agent Type: Data%20Scientist\nCapability: Read%2FWrite\nTool: SQL%0AClient\nRisk Level: High"
	got := Normalize(raw)

	if got.AgentType != "Data Scientist" {
		t.Errorf("expected decoded agent type, got %q", got.AgentType)
	}
	if got.Capability != "Read/Write" {
		t.Errorf("expected decoded capability, got %q", got.Capability)
	}
	if strings.ContainsAny(got.Tool, "\n\r") {
		t.Errorf("decoded control characters must not survive, got %q", got.Tool)
	}
	if got.RiskLevel != "High" {
		t.Errorf("expected High, got %q", got.RiskLevel)
	}
}

func TestNormalizeDecodedPlaceholderIsRewritten(t *testing.T) {
	got := Normalize("Tool: %5Btool name%5D")
	if got.Tool != "Unknown Tool" {
		t.Errorf("expected encoded placeholder to be rewritten, got %q", got.Tool)
	}
}

func TestNormalizeFirstMatchWins(t *testing.T) {
	raw := "Tool: Browser\nTool: Shell"
	if got := Normalize(raw).Tool; got != "Browser" {
		t.Errorf("expected first Tool line, got %q", got)
	}
}

func TestNormalizeEmptyValueFallsBack(t *testing.T) {
	raw := "Agent Type: %20%20\nRisk Level:    "
	got := Normalize(raw)
	if got.AgentType != "Unknown Agent" {
		t.Errorf("expected default agent type, got %q", got.AgentType)
	}
	if got.RiskLevel != "Medium" {
		t.Errorf("expected default risk level, got %q", got.RiskLevel)
	}
}

func TestFieldsCleansExtractedValues(t *testing.T) {
	in := model.FieldSet{AgentType: " Researcher ", Capability: "Data%20Access", Tool: "[tool name]", RiskLevel: "Low"}
	got := Fields(in)
	want := model.FieldSet{AgentType: "Researcher", Capability: "Data Access", Tool: "Unknown Tool", RiskLevel: "Low"}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestPercentDecodeKeepsMalformedEscapes(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"100%", "100%"},
		{"%zz", "%zz"},
		{"a%2", "a%2"},
		{"a+b", "a+b"},
		{"%41%42", "AB"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		if got := PercentDecode(tt.in); got != tt.want {
			t.Errorf("PercentDecode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func FuzzNormalize(f *testing.F) {
	f.Add("Agent Type: Researcher\nTool: Browser")
	f.Add("Tool: %5B%5D")
	f.Add("%%%%")
	f.Fuzz(func(t *testing.T, raw string) {
		fs := Normalize(raw)
		for _, v := range []string{fs.AgentType, fs.Capability, fs.Tool, fs.RiskLevel} {
			if strings.TrimSpace(v) == "" {
				t.Fatalf("empty field from %q: %+v", raw, fs)
			}
		}
	})
}
