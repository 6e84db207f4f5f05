// Package scenario replays YAML decision cases against an in-memory graph.
package scenario

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/ontoguard/internal/decide"
	"github.com/ppiankov/ontoguard/internal/graph"
	"github.com/ppiankov/ontoguard/internal/keyword"
	"github.com/ppiankov/ontoguard/internal/model"
	"github.com/ppiankov/ontoguard/internal/policy"
)

// Run evaluates all cases of a scenario in order against a fresh graph.
// A scenario-level terms list replaces the given vocabulary.
func Run(ctx context.Context, s *Scenario, cfg *policy.PolicyConfig, vocab *keyword.Vocabulary) *RunResult {
	if len(s.Terms) > 0 {
		vocab = keyword.New(s.Terms)
	}

	orch := decide.New(graph.NewMemory(),
		decide.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		decide.WithPolicy(cfg, ""),
		decide.WithVocabulary(vocab),
	)

	result := &RunResult{
		Name:  s.Name,
		Total: len(s.Cases),
	}

	for i, c := range s.Cases {
		var (
			out decide.Outcome
			err error
		)
		if c.Request != nil {
			out, err = orch.Decide(ctx, model.ActionRequest{
				AgentType:  c.Request.AgentType,
				Capability: c.Request.Capability,
				Tool:       c.Request.Tool,
				RiskLevel:  c.Request.RiskLevel,
				RawText:    c.Request.RawText,
			})
		} else {
			out, err = orch.DecideText(ctx, c.Text, c.Interpretation)
		}

		actual := string(out.Response.Status)
		expected := strings.ToLower(strings.TrimSpace(c.Expect))

		cr := CaseResult{
			Index:     i + 1,
			AgentType: out.Fields.AgentType,
			Tool:      out.Fields.Tool,
			Expected:  expected,
			Actual:    actual,
			Reason:    out.Assessment.Reason,
		}
		if err != nil {
			cr.Reason = err.Error()
		}

		if actual == expected {
			cr.Passed = true
			result.Passed++
		} else {
			result.Failed++
		}

		result.Cases = append(result.Cases, cr)
	}

	return result
}

// Load reads and parses a scenario YAML file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario %s: %w", path, err)
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	for i, c := range s.Cases {
		if c.Request == nil && c.Interpretation == "" {
			return nil, fmt.Errorf("scenario %s: case %d has neither request nor interpretation", path, i+1)
		}
	}
	return &s, nil
}

// LoadAndRun loads a scenario YAML file, loads policy and vocabulary, and runs.
func LoadAndRun(ctx context.Context, path, policyPath, vocabPath string) (*RunResult, error) {
	s, err := Load(path)
	if err != nil {
		return nil, err
	}

	cfg, err := policy.LoadConfig(policyPath)
	if err != nil {
		return nil, fmt.Errorf("load policy: %w", err)
	}

	vocab, err := keyword.Load(vocabPath)
	if err != nil {
		return nil, fmt.Errorf("load vocabulary: %w", err)
	}

	result := Run(ctx, s, cfg, vocab)
	result.File = path

	return result, nil
}
