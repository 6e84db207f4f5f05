// Package keyword scans free text against a configurable high-risk vocabulary.
package keyword

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Terms is the on-disk vocabulary format.
type Terms struct {
	Terms []string `yaml:"terms"`
}

// Vocabulary holds lowercased terms for case-insensitive substring matching.
type Vocabulary struct {
	mu    sync.RWMutex
	terms []string
	raw   []string
}

// New creates a Vocabulary from raw terms. Blank terms are dropped and
// duplicates collapse.
func New(terms []string) *Vocabulary {
	v := &Vocabulary{}
	for _, t := range terms {
		v.add(t)
	}
	return v
}

// NewDefault creates a Vocabulary with the built-in high-risk terms.
func NewDefault() *Vocabulary {
	return New(DefaultTerms)
}

// DefaultPath returns ~/.ontoguard/vocabulary.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".ontoguard", "vocabulary.yaml")
}

// Load reads a vocabulary from a YAML file. Falls back to defaults if the
// file doesn't exist. An empty terms list also yields the defaults so a
// truncated file never disables keyword detection.
func Load(path string) (*Vocabulary, error) {
	if path == "" {
		path = DefaultPath()
		if path == "" {
			return NewDefault(), nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewDefault(), nil
		}
		return nil, fmt.Errorf("failed to read vocabulary: %w", err)
	}

	var t Terms
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse vocabulary: %w", err)
	}
	if len(t.Terms) == 0 {
		return NewDefault(), nil
	}

	return New(t.Terms), nil
}

// ContainsHighRiskTerm reports whether text contains any vocabulary term,
// ignoring case.
func (v *Vocabulary) ContainsHighRiskTerm(text string) bool {
	matched, _ := v.Match(text)
	return matched
}

// Match returns the first vocabulary term found in text.
func (v *Vocabulary) Match(text string) (bool, string) {
	if v == nil || text == "" {
		return false, ""
	}
	lower := strings.ToLower(text)

	v.mu.RLock()
	defer v.mu.RUnlock()
	for _, term := range v.terms {
		if strings.Contains(lower, term) {
			return true, term
		}
	}
	return false, ""
}

// AddTerm adds a term at runtime.
func (v *Vocabulary) AddTerm(term string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.add(term)
}

// List returns the configured terms in insertion order.
func (v *Vocabulary) List() []string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]string, len(v.raw))
	copy(out, v.raw)
	return out
}

// Len returns the number of terms.
func (v *Vocabulary) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.terms)
}

func (v *Vocabulary) add(term string) {
	trimmed := strings.TrimSpace(term)
	if trimmed == "" {
		return
	}
	lower := strings.ToLower(trimmed)
	for _, existing := range v.terms {
		if existing == lower {
			return
		}
	}
	v.terms = append(v.terms, lower)
	v.raw = append(v.raw, trimmed)
}
