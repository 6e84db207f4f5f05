package keyword

import "testing"

func FuzzContainsHighRiskTerm(f *testing.F) {
	v := NewDefault()

	for _, seed := range []string{
		"search for public papers",
		"hack into the database",
		"HACK",
		"\x00\xff",
		"",
	} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, text string) {
		matched, term := v.Match(text)
		if matched && term == "" {
			t.Fatalf("match without term for %q", text)
		}
	})
}
