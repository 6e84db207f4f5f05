package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ppiankov/ontoguard/internal/model"
)

// Delta is the set of changes one transaction commits.
type Delta struct {
	Concepts  []model.Concept
	Instances []model.Instance
	Added     []model.Relationship
	Removed   []model.Relationship
}

// Empty reports whether the delta changes nothing.
func (d Delta) Empty() bool {
	return len(d.Concepts) == 0 && len(d.Instances) == 0 && len(d.Added) == 0 && len(d.Removed) == 0
}

// Tx is a pending set of graph mutations layered over the committed state.
// Reads through a Tx see its own writes. A Tx is only valid inside the
// function passed to Store.Update.
type Tx struct {
	base   *state
	newID  func() string
	closed bool

	concepts        []model.Concept
	conceptsByName  map[string]model.Concept
	conceptsByID    map[string]model.Concept
	instances       []model.Instance
	instanceByOwner map[string]model.Instance
	instancesByID   map[string]model.Instance
	instanceNames   map[string]bool
	added           edgeSet
	removed         edgeSet
}

func newTx(base *state, newID func() string) *Tx {
	return &Tx{
		base:            base,
		newID:           newID,
		conceptsByName:  make(map[string]model.Concept),
		conceptsByID:    make(map[string]model.Concept),
		instanceByOwner: make(map[string]model.Instance),
		instancesByID:   make(map[string]model.Instance),
		instanceNames:   make(map[string]bool),
		added:           make(edgeSet),
		removed:         make(edgeSet),
	}
}

// UpsertConcept returns the id of the concept with this name, creating it
// if absent. The kind recorded at creation is kept; a later request under
// another kind returns the existing concept.
func (tx *Tx) UpsertConcept(name string, kind model.Kind) (string, error) {
	if tx.closed {
		return "", ErrTxClosed
	}
	if !kind.Valid() {
		return "", fmt.Errorf("%w: unknown concept kind %q", ErrInvalid, kind)
	}
	name = ConceptName(name)
	if name == "" {
		return "", fmt.Errorf("%w: empty %s name", ErrInvalid, kind)
	}

	if c, ok := tx.concept(name); ok {
		return c.ID, nil
	}

	c := model.Concept{ID: tx.newID(), Name: name, Kind: kind}
	tx.concepts = append(tx.concepts, c)
	tx.conceptsByName[c.Name] = c
	tx.conceptsByID[c.ID] = c
	return c.ID, nil
}

// UpsertInstance returns the single instance of an agent type concept,
// creating it if absent. A concept first recorded under another kind still
// takes the instance; its recorded kind is unchanged.
func (tx *Tx) UpsertInstance(conceptID string) (string, error) {
	if tx.closed {
		return "", ErrTxClosed
	}
	c, ok := tx.conceptByID(conceptID)
	if !ok {
		return "", fmt.Errorf("%w: concept %s", ErrNotFound, conceptID)
	}
	if id, ok := tx.base.instanceByOwner[conceptID]; ok {
		return id, nil
	}
	if in, ok := tx.instanceByOwner[conceptID]; ok {
		return in.ID, nil
	}

	in := model.Instance{ID: tx.newID(), Name: tx.freeInstanceName(c.Name), ConceptID: conceptID}
	tx.instances = append(tx.instances, in)
	tx.instanceByOwner[conceptID] = in
	tx.instancesByID[in.ID] = in
	tx.instanceNames[in.Name] = true
	return in.ID, nil
}

// freeInstanceName prefers the lowercased name and falls back to the
// case-preserving name when two agent types differ only in case.
func (tx *Tx) freeInstanceName(conceptName string) string {
	name := InstanceName(conceptName)
	if !tx.instanceNameTaken(name) {
		return name
	}
	name = conceptName + InstanceSuffix
	for n := 2; tx.instanceNameTaken(name); n++ {
		name = fmt.Sprintf("%s%s_%d", conceptName, InstanceSuffix, n)
	}
	return name
}

func (tx *Tx) instanceNameTaken(name string) bool {
	if _, ok := tx.base.instanceNames[name]; ok {
		return true
	}
	return tx.instanceNames[name]
}

// UpsertRelationship inserts the (type, source, target) edge unless it
// already exists. HAS_RISK_LEVEL must go through SetRiskLevel.
func (tx *Tx) UpsertRelationship(relType model.RelType, source, target string) error {
	if tx.closed {
		return ErrTxClosed
	}
	if !relType.Valid() {
		return fmt.Errorf("%w: unknown relationship type %q", ErrInvalid, relType)
	}
	if relType == model.HasRiskLevel {
		return fmt.Errorf("%w: %s is replaced with SetRiskLevel, not upserted", ErrInvalid, relType)
	}
	if source == target {
		return fmt.Errorf("%w: self-referencing %s edge", ErrInvalid, relType)
	}
	if !tx.hasNode(source) {
		return fmt.Errorf("%w: source %s", ErrNotFound, source)
	}
	if !tx.hasNode(target) {
		return fmt.Errorf("%w: target %s", ErrNotFound, target)
	}

	tx.addEdge(model.Relationship{Type: relType, Source: source, Target: target})
	return nil
}

// SetRiskLevel replaces every HAS_RISK_LEVEL edge of the instance with a
// single edge to riskConcept, whatever kind the concept was recorded under.
func (tx *Tx) SetRiskLevel(instanceID, riskConceptID string) error {
	if tx.closed {
		return ErrTxClosed
	}
	if _, ok := tx.instance(instanceID); !ok {
		return fmt.Errorf("%w: instance %s", ErrNotFound, instanceID)
	}
	if _, ok := tx.conceptByID(riskConceptID); !ok {
		return fmt.Errorf("%w: concept %s", ErrNotFound, riskConceptID)
	}

	want := model.Relationship{Type: model.HasRiskLevel, Source: instanceID, Target: riskConceptID}
	for _, r := range tx.edgesFrom(instanceID, model.HasRiskLevel) {
		if r != want {
			tx.removeEdge(r)
		}
	}
	tx.addEdge(want)
	return nil
}

// CurrentRiskLevels returns the names of every risk level the instance
// points at, as seen by this transaction.
func (tx *Tx) CurrentRiskLevels(instanceID string) []string {
	var names []string
	for _, r := range tx.edgesFrom(instanceID, model.HasRiskLevel) {
		if c, ok := tx.conceptByID(r.Target); ok {
			names = append(names, c.Name)
		}
	}
	return uniqueSorted(names)
}

// RiskView freezes the current risk levels of the given instances.
func (tx *Tx) RiskView(instanceIDs ...string) RiskView {
	v := make(RiskView, len(instanceIDs))
	for _, id := range instanceIDs {
		v[id] = tx.CurrentRiskLevels(id)
	}
	return v
}

// Concept looks up a concept by name through the transaction.
func (tx *Tx) Concept(name string) (model.Concept, bool) {
	return tx.concept(ConceptName(name))
}

func (tx *Tx) concept(name string) (model.Concept, bool) {
	if c, ok := tx.base.conceptsByName[name]; ok {
		return c, true
	}
	c, ok := tx.conceptsByName[name]
	return c, ok
}

func (tx *Tx) conceptByID(id string) (model.Concept, bool) {
	if c, ok := tx.base.conceptsByID[id]; ok {
		return c, true
	}
	c, ok := tx.conceptsByID[id]
	return c, ok
}

func (tx *Tx) instance(id string) (model.Instance, bool) {
	if in, ok := tx.base.instancesByID[id]; ok {
		return in, true
	}
	in, ok := tx.instancesByID[id]
	return in, ok
}

func (tx *Tx) hasNode(id string) bool {
	if tx.base.hasNode(id) {
		return true
	}
	if _, ok := tx.conceptsByID[id]; ok {
		return true
	}
	_, ok := tx.instancesByID[id]
	return ok
}

func (tx *Tx) hasEdge(r model.Relationship) bool {
	if _, ok := tx.added[r]; ok {
		return true
	}
	if _, ok := tx.removed[r]; ok {
		return false
	}
	_, ok := tx.base.edges[r]
	return ok
}

func (tx *Tx) addEdge(r model.Relationship) {
	if tx.hasEdge(r) {
		return
	}
	if _, ok := tx.removed[r]; ok {
		delete(tx.removed, r)
		return
	}
	tx.added[r] = struct{}{}
}

func (tx *Tx) removeEdge(r model.Relationship) {
	if _, ok := tx.added[r]; ok {
		delete(tx.added, r)
		return
	}
	if _, ok := tx.base.edges[r]; ok {
		tx.removed[r] = struct{}{}
	}
}

func (tx *Tx) edgesFrom(source string, relType model.RelType) []model.Relationship {
	var out []model.Relationship
	for r := range tx.base.outgoing[source] {
		if r.Type != relType {
			continue
		}
		if _, gone := tx.removed[r]; gone {
			continue
		}
		out = append(out, r)
	}
	for r := range tx.added {
		if r.Source == source && r.Type == relType {
			out = append(out, r)
		}
	}
	return out
}

func (tx *Tx) delta() Delta {
	d := Delta{
		Concepts:  tx.concepts,
		Instances: tx.instances,
	}
	for r := range tx.added {
		d.Added = append(d.Added, r)
	}
	for r := range tx.removed {
		d.Removed = append(d.Removed, r)
	}
	sortEdges(d.Added)
	sortEdges(d.Removed)
	return d
}

// RiskView is a frozen read of instance risk levels captured inside a
// transaction.
type RiskView map[string][]string

// CurrentRiskLevels returns the captured risk levels of an instance.
func (v RiskView) CurrentRiskLevels(instanceID string) []string {
	return v[instanceID]
}

func uniqueSorted(names []string) []string {
	if len(names) == 0 {
		return nil
	}
	sort.Strings(names)
	out := names[:1]
	for _, n := range names[1:] {
		if n != out[len(out)-1] {
			out = append(out, n)
		}
	}
	return out
}

func sortEdges(edges []model.Relationship) {
	sort.Slice(edges, func(i, j int) bool {
		a, b := edges[i], edges[j]
		return strings.Join([]string{string(a.Type), a.Source, a.Target}, "\x00") <
			strings.Join([]string{string(b.Type), b.Source, b.Target}, "\x00")
	})
}
