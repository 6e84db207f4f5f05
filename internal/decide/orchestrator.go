// Package decide runs one action request through normalization, the graph
// update and the risk policy.
//
//	RECEIVED -> NORMALIZED -> GRAPH_UPDATED -> EVALUATED -> {DENIED, CAUTIONED, FAILED}
package decide

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/ppiankov/ontoguard/internal/audit"
	"github.com/ppiankov/ontoguard/internal/graph"
	"github.com/ppiankov/ontoguard/internal/ingest"
	"github.com/ppiankov/ontoguard/internal/keyword"
	"github.com/ppiankov/ontoguard/internal/mirror"
	"github.com/ppiankov/ontoguard/internal/model"
	"github.com/ppiankov/ontoguard/internal/normalize"
	"github.com/ppiankov/ontoguard/internal/policy"
)

// State is a step of the per-request state machine.
type State string

const (
	StateReceived     State = "RECEIVED"
	StateNormalized   State = "NORMALIZED"
	StateGraphUpdated State = "GRAPH_UPDATED"
	StateEvaluated    State = "EVALUATED"
	StateDenied       State = "DENIED"
	StateCautioned    State = "CAUTIONED"
	StateFailed       State = "FAILED"
)

// Outcome is the result of one request.
type Outcome struct {
	RequestID  string               `json:"request_id"`
	State      State                `json:"state"`
	Fields     model.FieldSet       `json:"fields"`
	InstanceID string               `json:"instance_id,omitempty"`
	Assessment model.RiskAssessment `json:"assessment"`
	Response   model.Response       `json:"response"`
}

// Orchestrator is safe for concurrent use. Policy, vocabulary and mirror
// dispatcher can be swapped while requests are in flight.
type Orchestrator struct {
	store  *graph.Store
	logger *slog.Logger
	tel    *telemetry
	newID  func() string

	mu         sync.RWMutex
	vocab      *keyword.Vocabulary
	cfg        *policy.PolicyConfig
	policyHash string
	dispatcher *mirror.Dispatcher
	auditLog   *audit.Log
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = l
	}
}

// WithVocabulary sets the high-risk vocabulary. Defaults to the built-in terms.
func WithVocabulary(v *keyword.Vocabulary) Option {
	return func(o *Orchestrator) {
		o.vocab = v
	}
}

// WithPolicy sets the policy config and the hash recorded in the audit log.
func WithPolicy(cfg *policy.PolicyConfig, hash string) Option {
	return func(o *Orchestrator) {
		o.cfg = cfg
		o.policyHash = hash
	}
}

// WithDispatcher sets the mirror dispatcher. A nil dispatcher disables mirroring.
func WithDispatcher(d *mirror.Dispatcher) Option {
	return func(o *Orchestrator) {
		o.dispatcher = d
	}
}

// WithAuditLog records every outcome.
func WithAuditLog(l *audit.Log) Option {
	return func(o *Orchestrator) {
		o.auditLog = l
	}
}

// WithRequestIDFunc overrides request id generation.
func WithRequestIDFunc(fn func() string) Option {
	return func(o *Orchestrator) {
		o.newID = fn
	}
}

// New creates an Orchestrator over store.
func New(store *graph.Store, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store: store,
		tel:   newTelemetry(),
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.vocab == nil {
		o.vocab = keyword.NewDefault()
	}
	if o.cfg == nil {
		o.cfg = policy.DefaultConfig()
	}
	return o
}

// Store returns the underlying graph store.
func (o *Orchestrator) Store() *graph.Store {
	return o.store
}

// SetPolicy swaps the policy config.
func (o *Orchestrator) SetPolicy(cfg *policy.PolicyConfig, hash string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.cfg = cfg
	o.policyHash = hash
}

// SetVocabulary swaps the high-risk vocabulary.
func (o *Orchestrator) SetVocabulary(v *keyword.Vocabulary) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.vocab = v
}

// SetDispatcher swaps the mirror dispatcher and returns the previous one
// so the caller can close it.
func (o *Orchestrator) SetDispatcher(d *mirror.Dispatcher) *mirror.Dispatcher {
	o.mu.Lock()
	defer o.mu.Unlock()
	prev := o.dispatcher
	o.dispatcher = d
	return prev
}

// Policy returns the active policy config and its hash.
func (o *Orchestrator) Policy() (*policy.PolicyConfig, string) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.cfg, o.policyHash
}

// Decide evaluates a structured request. The four fields are validated
// before anything is written; values are then cleaned by the normalizer.
func (o *Orchestrator) Decide(ctx context.Context, req model.ActionRequest) (Outcome, error) {
	start := time.Now()
	out := Outcome{RequestID: o.newID(), State: StateReceived, Fields: req.Fields()}

	if err := ingest.Validate(req); err != nil {
		return o.fail(ctx, start, out, fromIngest(err))
	}

	out.Fields = normalize.Fields(req.Fields())
	return o.run(ctx, start, out, req.RawText)
}

// DecideText normalizes an oracle interpretation of rawText and evaluates
// the resulting fields. It never fails validation.
func (o *Orchestrator) DecideText(ctx context.Context, rawText, interpretation string) (Outcome, error) {
	start := time.Now()
	out := Outcome{RequestID: o.newID(), State: StateReceived}
	out.Fields = normalize.Normalize(interpretation)
	return o.run(ctx, start, out, rawText)
}

func (o *Orchestrator) run(ctx context.Context, start time.Time, out Outcome, rawText string) (Outcome, error) {
	ctx, span := o.tel.tracer.Start(ctx, "ontoguard.decide")
	defer span.End()
	span.SetAttributes(
		attribute.String("ontoguard.request_id", out.RequestID),
		attribute.String("ontoguard.agent_type", out.Fields.AgentType),
	)

	out.State = StateNormalized
	o.logger.Debug("request normalized", "request_id", out.RequestID,
		"agent_type", out.Fields.AgentType, "capability", out.Fields.Capability,
		"tool", out.Fields.Tool, "risk_level", out.Fields.RiskLevel)

	instanceID, view, err := o.record(ctx, out.Fields)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "graph update failed")
		return o.fail(ctx, start, out, err)
	}
	out.InstanceID = instanceID
	out.State = StateGraphUpdated

	o.mu.RLock()
	vocab, cfg, dispatcher := o.vocab, o.cfg, o.dispatcher
	o.mu.RUnlock()

	out.Assessment = policy.Evaluate(out.Fields, rawText, view, instanceID, vocab, cfg)
	out.State = StateEvaluated
	out.Response = policy.Respond(out.Assessment, cfg)

	if out.Assessment.Decision == model.Deny {
		out.State = StateDenied
	} else {
		out.State = StateCautioned
	}
	span.SetAttributes(
		attribute.String("ontoguard.decision", string(out.Assessment.Decision)),
		attribute.Int("ontoguard.signals", len(out.Assessment.Signals)),
	)
	span.SetStatus(codes.Ok, "")

	o.logger.Info("decision", "request_id", out.RequestID, "status", out.Response.Status,
		"agent_type", out.Fields.AgentType, "signals", out.Assessment.Signals)

	if dispatcher != nil {
		dispatcher.Notify(o.store.Snapshot())
	}
	o.audit(out, "")
	o.tel.record(ctx, string(out.Response.Status), start)
	return out, nil
}

// record performs every graph mutation of one request in a single
// transaction and captures the instance's risk levels as committed.
func (o *Orchestrator) record(ctx context.Context, f model.FieldSet) (string, graph.RiskView, error) {
	var (
		instanceID string
		view       graph.RiskView
	)
	err := o.store.Update(ctx, func(tx *graph.Tx) error {
		agentID, err := tx.UpsertConcept(f.AgentType, model.KindAgentType)
		if err != nil {
			return fmt.Errorf("agent type: %w", err)
		}
		capabilityID, err := tx.UpsertConcept(f.Capability, model.KindCapability)
		if err != nil {
			return fmt.Errorf("capability: %w", err)
		}
		toolID, err := tx.UpsertConcept(f.Tool, model.KindTool)
		if err != nil {
			return fmt.Errorf("tool: %w", err)
		}
		riskID, err := tx.UpsertConcept(graph.RiskConceptName(f.RiskLevel), model.KindRiskLevel)
		if err != nil {
			return fmt.Errorf("risk level: %w", err)
		}

		instanceID, err = tx.UpsertInstance(agentID)
		if err != nil {
			return fmt.Errorf("instance: %w", err)
		}
		if err := tx.UpsertRelationship(model.InstanceOf, instanceID, agentID); err != nil {
			return err
		}
		if err := tx.UpsertRelationship(model.HasCapability, instanceID, capabilityID); err != nil {
			return err
		}
		if err := tx.UpsertRelationship(model.UsesTool, instanceID, toolID); err != nil {
			return err
		}
		if err := tx.SetRiskLevel(instanceID, riskID); err != nil {
			return err
		}

		view = tx.RiskView(instanceID)
		return nil
	})
	if err != nil {
		return "", nil, err
	}
	return instanceID, view, nil
}

func (o *Orchestrator) fail(ctx context.Context, start time.Time, out Outcome, err error) (Outcome, error) {
	out.State = StateFailed
	out.InstanceID = ""
	out.Response = ErrorResponse(err)

	if IsValidation(err) {
		o.logger.Info("request rejected", "request_id", out.RequestID, "error", err)
	} else {
		o.logger.Error("decision failed", "request_id", out.RequestID, "error", err)
	}
	o.audit(out, err.Error())
	o.tel.record(ctx, string(model.StatusError), start)
	return out, err
}

func (o *Orchestrator) audit(out Outcome, errMsg string) {
	o.mu.RLock()
	log, hash := o.auditLog, o.policyHash
	o.mu.RUnlock()
	if log == nil {
		return
	}

	entry := audit.AuditEntry{
		RequestID:  out.RequestID,
		Fields:     audit.FieldsOf(out.Fields),
		Instance:   out.InstanceID,
		Status:     string(out.Response.Status),
		Decision:   string(out.Assessment.Decision),
		Reason:     out.Assessment.Reason,
		PolicyHash: hash,
	}
	for _, s := range out.Assessment.Signals {
		entry.Signals = append(entry.Signals, string(s))
	}
	if errMsg != "" {
		entry.Reason = errMsg
	}
	if err := log.Record(entry); err != nil {
		o.logger.Warn("audit record failed", "request_id", out.RequestID, "error", err)
	}
}
