// Package normalize reduces raw interpretation text to a clean FieldSet.
// It never fails: anything missing or malformed degrades to a named default.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/ppiankov/ontoguard/internal/model"
)

// field describes one labeled line of the interpretation.
type field struct {
	label       string
	fallback    string
	get         func(*model.FieldSet) *string
	linePattern *regexp.Regexp
}

var fields = []field{
	newField("Agent Type", model.DefaultAgentType, func(f *model.FieldSet) *string { return &f.AgentType }),
	newField("Capability", model.DefaultCapability, func(f *model.FieldSet) *string { return &f.Capability }),
	newField("Tool", model.DefaultTool, func(f *model.FieldSet) *string { return &f.Tool }),
	newField("Risk Level", model.DefaultRiskLevel, func(f *model.FieldSet) *string { return &f.RiskLevel }),
}

func newField(label, fallback string, get func(*model.FieldSet) *string) field {
	return field{
		label:       label,
		fallback:    fallback,
		get:         get,
		linePattern: regexp.MustCompile(`(?m)^[ \t]*` + regexp.QuoteMeta(label) + `:[ \t]*(.+)$`),
	}
}

// placeholderPatterns match a template slot the oracle echoed instead of filling.
var placeholderPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\[.+?\]`),
	regexp.MustCompile(`<.+?>`),
}

// Normalize extracts the four labeled fields from raw interpretation text.
// The first line carrying a label wins.
func Normalize(raw string) model.FieldSet {
	var fs model.FieldSet
	for _, f := range fields {
		value := f.fallback
		if m := f.linePattern.FindStringSubmatch(raw); m != nil {
			value = m[1]
		}
		*f.get(&fs) = clean(f, value)
	}
	return fs
}

// Fields applies decoding and placeholder rewriting to values that were
// already extracted upstream.
func Fields(in model.FieldSet) model.FieldSet {
	out := in
	for _, f := range fields {
		p := f.get(&out)
		*p = clean(f, *p)
	}
	return out
}

// Unknown returns the placeholder replacement for a field label.
func Unknown(label string) string {
	return "Unknown " + label
}

func clean(f field, value string) string {
	value = stripControl(PercentDecode(value))
	value = strings.TrimSpace(value)
	if value == "" {
		return f.fallback
	}
	if IsPlaceholder(value) {
		return Unknown(f.label)
	}
	return value
}

// IsPlaceholder reports whether the value contains a bracket placeholder.
func IsPlaceholder(value string) bool {
	for _, p := range placeholderPatterns {
		if p.MatchString(value) {
			return true
		}
	}
	return false
}

// PercentDecode decodes %XX escapes. Malformed escapes are kept verbatim and
// '+' is not treated as a space.
func PercentDecode(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && i+2 < len(s) {
			hi, ok1 := unhex(s[i+1])
			lo, ok2 := unhex(s[i+2])
			if ok1 && ok2 {
				b.WriteByte(hi<<4 | lo)
				i += 2
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return strings.ToValidUTF8(b.String(), "�")
}

func unhex(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// stripControl blanks control characters that decoding may have exposed.
func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
}
