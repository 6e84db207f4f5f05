package graph

import "github.com/ppiankov/ontoguard/internal/model"

// edgeSet is a set of relationships keyed by the full triple.
type edgeSet map[model.Relationship]struct{}

// state is the committed in-memory graph. It is only mutated by apply,
// under the store lock, after the backend accepted the delta.
type state struct {
	conceptsByName  map[string]model.Concept
	conceptsByID    map[string]model.Concept
	instancesByID   map[string]model.Instance
	instanceByOwner map[string]string // concept id -> instance id
	instanceNames   map[string]string // instance name -> instance id
	edges           edgeSet
	outgoing        map[string]edgeSet // source id -> edges
}

func newState() *state {
	return &state{
		conceptsByName:  make(map[string]model.Concept),
		conceptsByID:    make(map[string]model.Concept),
		instancesByID:   make(map[string]model.Instance),
		instanceByOwner: make(map[string]string),
		instanceNames:   make(map[string]string),
		edges:           make(edgeSet),
		outgoing:        make(map[string]edgeSet),
	}
}

func stateFromSnapshot(s model.Snapshot) *state {
	st := newState()
	st.apply(Delta{
		Concepts:  s.Concepts,
		Instances: s.Instances,
		Added:     s.Relationships,
	})
	return st
}

func (st *state) apply(d Delta) {
	for _, c := range d.Concepts {
		st.conceptsByName[c.Name] = c
		st.conceptsByID[c.ID] = c
	}
	for _, in := range d.Instances {
		st.instancesByID[in.ID] = in
		st.instanceByOwner[in.ConceptID] = in.ID
		st.instanceNames[in.Name] = in.ID
	}
	for _, r := range d.Removed {
		delete(st.edges, r)
		if out := st.outgoing[r.Source]; out != nil {
			delete(out, r)
		}
	}
	for _, r := range d.Added {
		st.edges[r] = struct{}{}
		out := st.outgoing[r.Source]
		if out == nil {
			out = make(edgeSet)
			st.outgoing[r.Source] = out
		}
		out[r] = struct{}{}
	}
}

func (st *state) hasNode(id string) bool {
	if _, ok := st.conceptsByID[id]; ok {
		return true
	}
	_, ok := st.instancesByID[id]
	return ok
}

func (st *state) riskLevels(instanceID string) []string {
	var names []string
	for r := range st.outgoing[instanceID] {
		if r.Type != model.HasRiskLevel {
			continue
		}
		if c, ok := st.conceptsByID[r.Target]; ok {
			names = append(names, c.Name)
		}
	}
	return uniqueSorted(names)
}

func (st *state) snapshot() model.Snapshot {
	s := model.Snapshot{
		Concepts:      make([]model.Concept, 0, len(st.conceptsByID)),
		Instances:     make([]model.Instance, 0, len(st.instancesByID)),
		Relationships: make([]model.Relationship, 0, len(st.edges)),
	}
	for _, c := range st.conceptsByID {
		s.Concepts = append(s.Concepts, c)
	}
	for _, in := range st.instancesByID {
		s.Instances = append(s.Instances, in)
	}
	for r := range st.edges {
		s.Relationships = append(s.Relationships, r)
	}
	s.Sort()
	return s
}
