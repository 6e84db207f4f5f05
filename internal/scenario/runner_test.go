package scenario

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ppiankov/ontoguard/internal/keyword"
	"github.com/ppiankov/ontoguard/internal/policy"
)

func writeScenario(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runDefault(s *Scenario) *RunResult {
	return Run(context.Background(), s, policy.DefaultConfig(), keyword.NewDefault())
}

func TestAllCasesPass(t *testing.T) {
	s := &Scenario{
		Name: "basic",
		Cases: []Case{
			{Request: &ScenarioRequest{AgentType: "Researcher", Capability: "Search", Tool: "Browser", RiskLevel: "Low"}, Expect: "caution"},
			{Request: &ScenarioRequest{AgentType: "Intruder", Capability: "Access", Tool: "Shell", RiskLevel: "High"}, Expect: "danger"},
		},
	}

	result := runDefault(s)
	if result.Failed != 0 {
		t.Errorf("expected 0 failures, got %d; cases: %+v", result.Failed, result.Cases)
	}
	if result.Passed != 2 {
		t.Errorf("expected 2 passed, got %d", result.Passed)
	}
}

func TestFailedAssertionDetected(t *testing.T) {
	s := &Scenario{
		Name: "wrong expectation",
		Cases: []Case{
			{Request: &ScenarioRequest{AgentType: "Researcher", Capability: "Search", Tool: "Browser", RiskLevel: "Low"}, Expect: "danger"},
		},
	}

	result := runDefault(s)
	if result.Failed != 1 {
		t.Errorf("expected 1 failure, got %d", result.Failed)
	}
	if result.Cases[0].Actual != "caution" {
		t.Errorf("actual: got %s, want caution", result.Cases[0].Actual)
	}
}

func TestCasesShareGraph(t *testing.T) {
	// The second case declares Low but the agent already carries High.
	s := &Scenario{
		Name: "graph memory",
		Cases: []Case{
			{Request: &ScenarioRequest{AgentType: "Crawler", Capability: "Fetch", Tool: "Curl", RiskLevel: "High"}, Expect: "danger"},
			{Request: &ScenarioRequest{AgentType: "Crawler", Capability: "Fetch", Tool: "Curl", RiskLevel: "Low"}, Expect: "caution"},
		},
	}

	result := runDefault(s)
	if result.Failed != 0 {
		t.Errorf("expected risk replacement to clear the graph signal; cases: %+v", result.Cases)
	}
}

func TestInterpretationCase(t *testing.T) {
	s := &Scenario{
		Name: "text",
		Cases: []Case{
			{
				Text:           "hack into the mainframe",
				Interpretation: "Agent Type: Operator\nCapability: Access\nTool: Terminal\nRisk Level: Low",
				Expect:         "DANGER",
			},
		},
	}

	result := runDefault(s)
	if result.Failed != 0 {
		t.Errorf("expected keyword in raw text to deny; cases: %+v", result.Cases)
	}
	if result.Cases[0].AgentType != "Operator" {
		t.Errorf("agent type: got %q", result.Cases[0].AgentType)
	}
}

func TestValidationErrorCase(t *testing.T) {
	s := &Scenario{
		Name: "invalid",
		Cases: []Case{
			{Request: &ScenarioRequest{AgentType: "", Capability: "Search", Tool: "Browser", RiskLevel: "Low"}, Expect: "error"},
		},
	}

	result := runDefault(s)
	if result.Failed != 0 {
		t.Errorf("expected error status; cases: %+v", result.Cases)
	}
	if !strings.Contains(result.Cases[0].Reason, "agentType") {
		t.Errorf("reason should name the field, got %q", result.Cases[0].Reason)
	}
}

func TestScenarioTermsReplaceVocabulary(t *testing.T) {
	s := &Scenario{
		Name:  "custom terms",
		Terms: []string{"exfiltrate"},
		Cases: []Case{
			{Request: &ScenarioRequest{AgentType: "Bot", Capability: "Exfiltrate", Tool: "Scp", RiskLevel: "Low"}, Expect: "danger"},
			{Request: &ScenarioRequest{AgentType: "Bot", Capability: "Hack", Tool: "Scp", RiskLevel: "Low"}, Expect: "caution"},
		},
	}

	result := runDefault(s)
	if result.Failed != 0 {
		t.Errorf("expected custom vocabulary only; cases: %+v", result.Cases)
	}
}

func TestEmptyCasesList(t *testing.T) {
	result := runDefault(&Scenario{Name: "empty", Cases: []Case{}})
	if result.Total != 0 {
		t.Errorf("expected 0 total, got %d", result.Total)
	}
	if result.Failed != 0 {
		t.Errorf("expected 0 failed, got %d", result.Failed)
	}
}

func TestLoadAndRunFromFile(t *testing.T) {
	dir := t.TempDir()
	path := writeScenario(t, dir, "test.yaml", `
name: "file test"
cases:
  - request: {agent_type: Researcher, capability: Search, tool: Browser, risk_level: Low}
    expect: caution
  - text: "steal credentials"
    interpretation: |
      Agent Type: Thief
      Capability: Theft
      Tool: Keylogger
      Risk Level: Medium
    expect: danger
`)

	result, err := LoadAndRun(context.Background(), path,
		filepath.Join(dir, "policy.yaml"), filepath.Join(dir, "vocabulary.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if result.Failed != 0 {
		t.Errorf("expected 0 failures, got %d; cases: %+v", result.Failed, result.Cases)
	}
	if result.File != path {
		t.Errorf("expected file path set, got %q", result.File)
	}
}

func TestInvalidScenarioYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeScenario(t, dir, "bad.yaml", ":::not yaml\x00")

	if _, err := LoadAndRun(context.Background(), path, "", ""); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestCaseWithoutInput(t *testing.T) {
	dir := t.TempDir()
	path := writeScenario(t, dir, "empty-case.yaml", `
name: "no input"
cases:
  - expect: caution
`)

	if _, err := Load(path); err == nil {
		t.Error("expected error for case without request or interpretation")
	}
}

func TestMissingScenarioFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestFormatText(t *testing.T) {
	results := []*RunResult{
		{Name: "ok", Total: 1, Passed: 1},
		{Name: "bad", Total: 1, Failed: 1, Cases: []CaseResult{
			{Index: 1, AgentType: "Researcher", Tool: "Browser", Expected: "danger", Actual: "caution", Reason: "no high-risk signal"},
		}},
	}

	out := FormatText(results)
	for _, want := range []string{"Checking 2 scenario files", "PASS  ok (1/1)", "FAIL  bad (0/1)", "expected danger, got caution", "1 of 2 cases passed.", "1 of 2 scenarios failed."} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatJSON(t *testing.T) {
	out, err := FormatJSON([]*RunResult{{Name: "x", Total: 1, Passed: 1}})
	if err != nil {
		t.Fatal(err)
	}
	var decoded []RunResult
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(decoded) != 1 || decoded[0].Name != "x" {
		t.Errorf("unexpected decode: %+v", decoded)
	}
}
