package model

import "strings"

// Kind classifies a Concept node.
type Kind string

const (
	KindAgentType  Kind = "AgentType"
	KindCapability Kind = "Capability"
	KindTool       Kind = "Tool"
	KindRiskLevel  Kind = "RiskLevel"
)

// Valid reports whether k is one of the known concept kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindAgentType, KindCapability, KindTool, KindRiskLevel:
		return true
	}
	return false
}

// RelType labels a directed edge between two graph nodes.
type RelType string

const (
	IsA           RelType = "IS_A"
	InstanceOf    RelType = "INSTANCE_OF"
	HasCapability RelType = "HAS_CAPABILITY"
	UsesTool      RelType = "USES_TOOL"
	HasRiskLevel  RelType = "HAS_RISK_LEVEL"
)

// Valid reports whether r is one of the known relationship types.
func (r RelType) Valid() bool {
	switch r {
	case IsA, InstanceOf, HasCapability, UsesTool, HasRiskLevel:
		return true
	}
	return false
}

// Decision is the risk policy outcome.
type Decision string

const (
	Allow   Decision = "ALLOW"
	Caution Decision = "CAUTION"
	Deny    Decision = "DENY"
)

// Status is the outbound three-way decision contract.
type Status string

const (
	StatusDanger  Status = "danger"
	StatusCaution Status = "caution"
	StatusError   Status = "error"
)

// StatusFor maps a policy decision onto the outbound status.
// ALLOW is never produced by the base policy and is reported as caution.
func StatusFor(d Decision) Status {
	if d == Deny {
		return StatusDanger
	}
	return StatusCaution
}

// Field defaults used when the interpretation omits a label.
const (
	DefaultAgentType  = "Unknown Agent"
	DefaultCapability = "Unknown Capability"
	DefaultTool       = "Unknown Tool"
	DefaultRiskLevel  = "Medium"
)

// FieldSet is the structured reduction of one agent action description.
type FieldSet struct {
	AgentType  string `json:"agentType" yaml:"agent_type"`
	Capability string `json:"capability" yaml:"capability"`
	Tool       string `json:"tool" yaml:"tool"`
	RiskLevel  string `json:"riskLevel" yaml:"risk_level"`
}

// Subject joins the three non-risk fields, the text scanned for keywords.
func (f FieldSet) Subject() string {
	return f.AgentType + " " + f.Capability + " " + f.Tool
}

// DeclaredHigh reports whether the declared risk level equals "high".
func (f FieldSet) DeclaredHigh(level string) bool {
	return strings.EqualFold(strings.TrimSpace(f.RiskLevel), level)
}

// ActionRequest is the inbound request at the core boundary.
// The four field values are required; RawText is the original action text.
type ActionRequest struct {
	AgentType  string `json:"agentType" jsonschema:"minLength=1,pattern=\\S,description=Agent type performing the action"`
	Capability string `json:"capability" jsonschema:"minLength=1,pattern=\\S,description=Capability the action requires"`
	Tool       string `json:"tool" jsonschema:"minLength=1,pattern=\\S,description=Tool used by the action"`
	RiskLevel  string `json:"riskLevel" jsonschema:"minLength=1,pattern=\\S,description=Declared risk level (Low/Medium/High)"`
	RawText    string `json:"rawText,omitempty" jsonschema:"description=Original free-text action description"`
}

// Fields returns the request's field values as a FieldSet.
func (r ActionRequest) Fields() FieldSet {
	return FieldSet{
		AgentType:  r.AgentType,
		Capability: r.Capability,
		Tool:       r.Tool,
		RiskLevel:  r.RiskLevel,
	}
}

// Signal names one independent reason to deny.
type Signal string

const (
	SignalDeclaredHigh   Signal = "declared_high"
	SignalRawTextKeyword Signal = "raw_text_keyword"
	SignalFieldKeyword   Signal = "field_keyword"
	SignalGraphHigh      Signal = "graph_high"
)

// RiskAssessment is derived per request and never persisted.
type RiskAssessment struct {
	Decision Decision `json:"decision"`
	Reason   string   `json:"reason"`
	Signals  []Signal `json:"signals,omitempty"`
}

// Response is the outbound decision.
type Response struct {
	Status  Status `json:"status"`
	Message string `json:"message"`
}
