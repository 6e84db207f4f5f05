// Package policy decides whether an agent action is dangerous.
package policy

import (
	"fmt"
	"strings"

	"github.com/ppiankov/ontoguard/internal/keyword"
	"github.com/ppiankov/ontoguard/internal/model"
)

// GraphView reads the risk levels recorded on an instance.
type GraphView interface {
	CurrentRiskLevels(instanceID string) []string
}

// Evaluate combines four independent signals. Any one of them denies; with
// none the decision is CAUTION. ALLOW is never returned.
//
// Signals:
//  1. declared_high: the declared risk level equals cfg.DeclaredHighLevel
//  2. raw_text_keyword: rawText contains a vocabulary term
//  3. field_keyword: agent type, capability or tool contain a term
//  4. graph_high: a risk level on the instance contains cfg.GraphHighMarker
func Evaluate(fields model.FieldSet, rawText string, view GraphView, instanceID string, vocab *keyword.Vocabulary, cfg *PolicyConfig) model.RiskAssessment {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if vocab == nil {
		vocab = keyword.NewDefault()
	}

	var (
		signals []model.Signal
		details []string
	)

	if fields.DeclaredHigh(cfg.DeclaredHighLevel) {
		signals = append(signals, model.SignalDeclaredHigh)
		details = append(details, fmt.Sprintf("declared risk level %q", strings.TrimSpace(fields.RiskLevel)))
	}

	if hit, term := vocab.Match(rawText); hit {
		signals = append(signals, model.SignalRawTextKeyword)
		details = append(details, fmt.Sprintf("action text contains %q", term))
	}

	if hit, term := vocab.Match(fields.Subject()); hit {
		signals = append(signals, model.SignalFieldKeyword)
		details = append(details, fmt.Sprintf("fields contain %q", term))
	}

	if view != nil {
		if level, ok := graphHigh(view.CurrentRiskLevels(instanceID), cfg.GraphHighMarker); ok {
			signals = append(signals, model.SignalGraphHigh)
			details = append(details, fmt.Sprintf("graph risk level %q", level))
		}
	}

	if len(signals) == 0 {
		return model.RiskAssessment{
			Decision: model.Caution,
			Reason:   "no high-risk signal",
		}
	}
	return model.RiskAssessment{
		Decision: model.Deny,
		Reason:   "high risk: " + strings.Join(details, "; "),
		Signals:  signals,
	}
}

func graphHigh(levels []string, marker string) (string, bool) {
	if marker == "" {
		return "", false
	}
	marker = strings.ToLower(marker)
	for _, l := range levels {
		if strings.Contains(strings.ToLower(l), marker) {
			return l, true
		}
	}
	return "", false
}

// Respond maps an assessment onto the outbound status and message.
func Respond(a model.RiskAssessment, cfg *PolicyConfig) model.Response {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	status := model.StatusFor(a.Decision)
	msg := cfg.Messages.Caution
	if status == model.StatusDanger {
		msg = cfg.Messages.Danger
	}
	return model.Response{Status: status, Message: msg}
}
