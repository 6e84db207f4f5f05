package mirror

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/ppiankov/ontoguard/internal/model"
)

// FormatPayload builds the webhook body for the given format.
func FormatPayload(format string, snap model.Snapshot) ([]byte, error) {
	switch format {
	case FormatNeo4j:
		return formatNeo4j(snap)
	default:
		return formatGeneric(snap)
	}
}

func formatGeneric(snap model.Snapshot) ([]byte, error) {
	return json.Marshal(snap)
}

type neo4jStatement struct {
	Statement  string         `json:"statement"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

// formatNeo4j renders a request for the Neo4j HTTP transactional endpoint
// (POST /db/<name>/tx/commit). Concepts become :Class nodes and instances
// :Individual nodes, merged by name. Risk edges are cleared first so the
// mirror keeps one HAS_RISK_LEVEL per individual.
func formatNeo4j(snap model.Snapshot) ([]byte, error) {
	classes := make([]map[string]any, 0, len(snap.Concepts))
	for _, c := range snap.Concepts {
		classes = append(classes, map[string]any{"id": c.ID, "name": c.Name, "kind": string(c.Kind)})
	}
	individuals := make([]map[string]any, 0, len(snap.Instances))
	for _, in := range snap.Instances {
		individuals = append(individuals, map[string]any{"id": in.ID, "name": in.Name})
	}

	statements := []neo4jStatement{
		{
			Statement:  "UNWIND $nodes AS n MERGE (c:Class {name: n.name}) SET c.id = n.id, c.kind = n.kind",
			Parameters: map[string]any{"nodes": classes},
		},
		{
			Statement:  "UNWIND $nodes AS n MERGE (i:Individual {name: n.name}) SET i.id = n.id",
			Parameters: map[string]any{"nodes": individuals},
		},
		{
			Statement: "MATCH (:Individual)-[r:HAS_RISK_LEVEL]->(:Class) DELETE r",
		},
	}

	// Relationship types cannot be parameters in Cypher; they come from the
	// closed model.RelType set.
	byType := make(map[model.RelType][]map[string]any)
	for _, r := range snap.Relationships {
		if !r.Type.Valid() {
			return nil, fmt.Errorf("invalid relationship type %q", r.Type)
		}
		byType[r.Type] = append(byType[r.Type], map[string]any{"source": r.Source, "target": r.Target})
	}
	types := make([]string, 0, len(byType))
	for t := range byType {
		types = append(types, string(t))
	}
	sort.Strings(types)
	for _, t := range types {
		statements = append(statements, neo4jStatement{
			Statement: fmt.Sprintf(
				"UNWIND $edges AS e MATCH (a {id: e.source}), (b {id: e.target}) MERGE (a)-[:%s]->(b)", t),
			Parameters: map[string]any{"edges": byType[model.RelType(t)]},
		})
	}

	return json.Marshal(map[string]any{"statements": statements})
}
