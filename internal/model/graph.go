package model

import "sort"

// Concept is a named class-level node.
type Concept struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	Kind Kind   `json:"kind" yaml:"kind"`
}

// Instance is a named individual bound to one AgentType concept.
type Instance struct {
	ID        string `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	ConceptID string `json:"concept_id" yaml:"concept_id"`
}

// Relationship is a typed directed edge keyed by (type, source, target).
type Relationship struct {
	Type   RelType `json:"type" yaml:"type"`
	Source string  `json:"source" yaml:"source"`
	Target string  `json:"target" yaml:"target"`
}

// Snapshot is the full committed graph handed to mirror sinks.
type Snapshot struct {
	Concepts      []Concept      `json:"concepts" yaml:"concepts"`
	Instances     []Instance     `json:"instances" yaml:"instances"`
	Relationships []Relationship `json:"relationships" yaml:"relationships"`
}

// Sort orders every slice deterministically so snapshots compare and
// serialize stably.
func (s *Snapshot) Sort() {
	sort.Slice(s.Concepts, func(i, j int) bool {
		return s.Concepts[i].Name < s.Concepts[j].Name
	})
	sort.Slice(s.Instances, func(i, j int) bool {
		return s.Instances[i].Name < s.Instances[j].Name
	})
	sort.Slice(s.Relationships, func(i, j int) bool {
		a, b := s.Relationships[i], s.Relationships[j]
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		return a.Target < b.Target
	})
}

// NodeName resolves a node id to its concept or instance name.
func (s *Snapshot) NodeName(id string) (string, bool) {
	for _, c := range s.Concepts {
		if c.ID == id {
			return c.Name, true
		}
	}
	for _, in := range s.Instances {
		if in.ID == id {
			return in.Name, true
		}
	}
	return "", false
}
