// Package audit keeps a tamper-evident record of every decision.
package audit

import "github.com/ppiankov/ontoguard/internal/model"

// AuditFields are the normalized request fields recorded with a decision.
type AuditFields struct {
	AgentType  string `json:"agent_type"`
	Capability string `json:"capability"`
	Tool       string `json:"tool"`
	RiskLevel  string `json:"risk_level"`
}

// FieldsOf flattens a FieldSet for the log.
func FieldsOf(f model.FieldSet) AuditFields {
	return AuditFields{
		AgentType:  f.AgentType,
		Capability: f.Capability,
		Tool:       f.Tool,
		RiskLevel:  f.RiskLevel,
	}
}

// AuditEntry is one line in the hash-chained JSONL audit log.
// All fields are structs or slices (no map[string]any) to guarantee
// deterministic json.Marshal field order for reproducible hashing.
type AuditEntry struct {
	Timestamp  string      `json:"ts"`
	RequestID  string      `json:"request_id"`
	Fields     AuditFields `json:"fields"`
	Instance   string      `json:"instance,omitempty"`
	Status     string      `json:"status"`
	Decision   string      `json:"decision,omitempty"`
	Signals    []string    `json:"signals,omitempty"`
	Reason     string      `json:"reason"`
	PolicyHash string      `json:"policy_hash"`
	PrevHash   string      `json:"prev_hash"`
}
