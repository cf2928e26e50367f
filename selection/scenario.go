package selection

import (
	"encoding/json"
	"fmt"
	"os"
)

// Scenario is a pose graph plus the candidate pairs proposed for it, as
// exported by the matching stage
type Scenario struct {
	Vertices   []Vertex       `json:"vertices"`
	Edges      []Edge         `json:"edges"`
	Candidates CandidatePairs `json:"candidates"`
}

// ParseScenarioFile reads and parses a scenario JSON file
func ParseScenarioFile(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return ParseScenarioJSON(data)
}

// ParseScenarioJSON parses scenario JSON data
func ParseScenarioJSON(data []byte) (*Scenario, error) {
	var s Scenario
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	return &s, nil
}

// PoseGraph builds the in-memory map described by the scenario
func (s *Scenario) PoseGraph() (*PoseGraph, error) {
	g := NewPoseGraph()
	for _, v := range s.Vertices {
		if err := g.AddVertex(v.ID, v.Position); err != nil {
			return nil, fmt.Errorf("building pose graph: %w", err)
		}
	}
	for _, e := range s.Edges {
		if err := g.AddEdge(e); err != nil {
			return nil, fmt.Errorf("building pose graph: %w", err)
		}
	}
	return g, nil
}

// WriteReport writes a selection report as indented JSON
func WriteReport(path string, report Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
