package policy

import (
	"testing"

	"github.com/ppiankov/ontoguard/internal/keyword"
	"github.com/ppiankov/ontoguard/internal/model"
)

func BenchmarkEvaluate_Caution(b *testing.B) {
	cfg := DefaultConfig()
	vocab := keyword.NewDefault()
	fields := model.FieldSet{AgentType: "Researcher", Capability: "DataAccess", Tool: "Browser", RiskLevel: "Low"}
	view := fakeView{"i": {"Low"}}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Evaluate(fields, "read the quarterly report", view, "i", vocab, cfg)
	}
}

func BenchmarkEvaluate_AllSignals(b *testing.B) {
	cfg := DefaultConfig()
	vocab := keyword.NewDefault()
	fields := model.FieldSet{AgentType: "Hacker", Capability: "Exploit", Tool: "Malware", RiskLevel: "High"}
	view := fakeView{"i": {"VeryHigh"}}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Evaluate(fields, "steal credentials via phishing", view, "i", vocab, cfg)
	}
}
