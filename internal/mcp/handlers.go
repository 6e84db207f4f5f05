package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ppiankov/ontoguard/internal/decide"
	"github.com/ppiankov/ontoguard/internal/model"
)

// --- Input/Output types ---

// CheckInput defines parameters for the ontology_check tool.
type CheckInput struct {
	AgentType  string `json:"agentType" jsonschema:"type of agent performing the action"`
	Capability string `json:"capability" jsonschema:"main capability the action requires"`
	Tool       string `json:"tool" jsonschema:"tool or software used"`
	RiskLevel  string `json:"riskLevel" jsonschema:"declared risk level (Low, Medium or High)"`
	RawText    string `json:"rawText,omitempty" jsonschema:"original free-text action description"`
}

// InterpretInput defines parameters for the ontology_interpret tool.
type InterpretInput struct {
	Text string `json:"text" jsonschema:"free-text description of the action"`
}

// DecisionOutput is the decision returned by both decision tools.
type DecisionOutput struct {
	RequestID string         `json:"request_id,omitempty"`
	Status    string         `json:"status"`
	Message   string         `json:"message"`
	Reason    string         `json:"reason,omitempty"`
	Signals   []string       `json:"signals,omitempty"`
	Fields    model.FieldSet `json:"fields"`
}

// GraphInput is empty, no parameters needed.
type GraphInput struct{}

// GraphOutput is the full knowledge graph.
type GraphOutput struct {
	Concepts      []model.Concept      `json:"concepts"`
	Instances     []model.Instance     `json:"instances"`
	Relationships []model.Relationship `json:"relationships"`
}

// --- Handlers ---

func (s *Server) handleCheck(ctx context.Context, req *mcpsdk.CallToolRequest, input CheckInput) (*mcpsdk.CallToolResult, DecisionOutput, error) {
	out, err := s.orch.Decide(ctx, model.ActionRequest{
		AgentType:  input.AgentType,
		Capability: input.Capability,
		Tool:       input.Tool,
		RiskLevel:  input.RiskLevel,
		RawText:    input.RawText,
	})
	return decisionResult(out, err)
}

func (s *Server) handleInterpret(ctx context.Context, req *mcpsdk.CallToolRequest, input InterpretInput) (*mcpsdk.CallToolResult, DecisionOutput, error) {
	if s.oracle == nil {
		return &mcpsdk.CallToolResult{IsError: true}, DecisionOutput{
			Status:  string(model.StatusError),
			Message: "interpretation oracle not configured",
		}, nil
	}

	interpretation, err := s.oracle.Interpret(ctx, input.Text)
	if err != nil {
		s.logger.Warn("interpretation failed", "error", err)
		return &mcpsdk.CallToolResult{IsError: true}, DecisionOutput{
			Status:  string(model.StatusError),
			Message: "An error occurred: " + err.Error(),
		}, nil
	}

	out, err := s.orch.DecideText(ctx, input.Text, interpretation)
	return decisionResult(out, err)
}

func (s *Server) handleGraph(ctx context.Context, req *mcpsdk.CallToolRequest, input GraphInput) (*mcpsdk.CallToolResult, GraphOutput, error) {
	snap := s.orch.Store().Snapshot()
	return nil, GraphOutput{
		Concepts:      nonNil(snap.Concepts),
		Instances:     nonNil(snap.Instances),
		Relationships: nonNil(snap.Relationships),
	}, nil
}

func decisionResult(out decide.Outcome, err error) (*mcpsdk.CallToolResult, DecisionOutput, error) {
	result := DecisionOutput{
		RequestID: out.RequestID,
		Status:    string(out.Response.Status),
		Message:   out.Response.Message,
		Reason:    out.Assessment.Reason,
		Fields:    out.Fields,
	}
	for _, sig := range out.Assessment.Signals {
		result.Signals = append(result.Signals, string(sig))
	}
	if err != nil {
		return &mcpsdk.CallToolResult{IsError: true}, result, nil
	}
	return nil, result, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
