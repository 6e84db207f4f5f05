package keyword

import "testing"

func BenchmarkContainsHighRiskTerm_NoMatch(b *testing.B) {
	v := NewDefault()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		v.ContainsHighRiskTerm("search for public papers about graph databases")
	}
}

func BenchmarkContainsHighRiskTerm_Match(b *testing.B) {
	v := NewDefault()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		v.ContainsHighRiskTerm("Researcher DataAccess phishing-kit")
	}
}
