package policy

import (
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/ontoguard/internal/keyword"
	"github.com/ppiankov/ontoguard/internal/model"
)

func FuzzLoadConfigYAML(f *testing.F) {
	// Seed with valid default config YAML
	f.Add([]byte(DefaultConfigYAML()))

	// Seed with minimal valid YAML
	f.Add([]byte("declared_high_level: high\n"))

	// Seed with empty
	f.Add([]byte{})

	// Seed with garbage
	f.Add([]byte(`{{{not yaml at all`))

	f.Fuzz(func(t *testing.T, data []byte) {
		// Must not panic on any input
		var cfg PolicyConfig
		if yaml.Unmarshal(data, &cfg) == nil {
			cfg.Validate()
		}
	})
}

func FuzzEvaluateNeverAllows(f *testing.F) {
	f.Add("Researcher", "DataAccess", "Browser", "Low", "read the report")
	f.Add("Hacker", "Exploit", "Shell", "High", "steal credentials")
	f.Add("", "", "", "", "")

	vocab := keyword.NewDefault()
	f.Fuzz(func(t *testing.T, agent, capability, tool, risk, raw string) {
		fields := model.FieldSet{AgentType: agent, Capability: capability, Tool: tool, RiskLevel: risk}
		a := Evaluate(fields, raw, nil, "", vocab, nil)
		if a.Decision == model.Allow {
			t.Fatalf("ALLOW returned for %+v", fields)
		}
		if (a.Decision == model.Deny) != (len(a.Signals) > 0) {
			t.Fatalf("decision %s inconsistent with signals %v", a.Decision, a.Signals)
		}
	})
}
