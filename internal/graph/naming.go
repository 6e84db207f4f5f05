package graph

import "strings"

// InstanceSuffix is appended to the lowercased agent type name.
const InstanceSuffix = "_instance"

// ConceptName trims surrounding whitespace from a concept name.
func ConceptName(name string) string {
	return strings.TrimSpace(name)
}

// RiskConceptName removes all whitespace from a risk level so
// "Very High" and "VeryHigh" name the same concept.
func RiskConceptName(level string) string {
	return strings.Join(strings.Fields(level), "")
}

// InstanceName derives the instance name for an agent type concept.
func InstanceName(conceptName string) string {
	return strings.ToLower(conceptName) + InstanceSuffix
}
