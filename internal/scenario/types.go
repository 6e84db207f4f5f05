package scenario

// ScenarioRequest is a structured action under test.
type ScenarioRequest struct {
	AgentType  string `yaml:"agent_type"`
	Capability string `yaml:"capability"`
	Tool       string `yaml:"tool"`
	RiskLevel  string `yaml:"risk_level"`
	RawText    string `yaml:"raw_text,omitempty"`
}

// Case is one test case within a scenario. Exactly one of Request or
// Interpretation drives the case; Text is the raw action description that
// accompanies an interpretation.
type Case struct {
	Request        *ScenarioRequest `yaml:"request,omitempty"`
	Text           string           `yaml:"text,omitempty"`
	Interpretation string           `yaml:"interpretation,omitempty"`
	Expect         string           `yaml:"expect"`
}

// Scenario is a named sequence of decisions replayed against one fresh
// graph, so later cases see what earlier cases recorded.
type Scenario struct {
	Name  string   `yaml:"name"`
	Terms []string `yaml:"terms,omitempty"`
	Cases []Case   `yaml:"cases"`
}

// CaseResult is the outcome of evaluating one test case.
type CaseResult struct {
	Index     int    `json:"index"`
	Passed    bool   `json:"passed"`
	AgentType string `json:"agent_type"`
	Tool      string `json:"tool"`
	Expected  string `json:"expected"`
	Actual    string `json:"actual"`
	Reason    string `json:"reason"`
}

// RunResult is the outcome of running all cases in one scenario file.
type RunResult struct {
	File   string       `json:"file"`
	Name   string       `json:"name"`
	Total  int          `json:"total"`
	Passed int          `json:"passed"`
	Failed int          `json:"failed"`
	Cases  []CaseResult `json:"cases"`
}
