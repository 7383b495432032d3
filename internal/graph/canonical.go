package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// canonicalGraph is the wire shape for deterministic graph serialization.
// Nodes keep declaration order; edge lists are sorted by name, so two equal
// graphs always serialize to identical bytes. Used for golden tests and CLI
// JSON output.
type canonicalGraph struct {
	Nodes      []string    `json:"nodes"`
	Directed   [][2]string `json:"directed"`
	Bidirected [][2]string `json:"bidirected,omitempty"`
}

// MarshalCanonical serializes the graph to deterministic JSON.
func (g *CausalGraph) MarshalCanonical() ([]byte, error) {
	cg := canonicalGraph{
		Nodes:      g.Names(),
		Directed:   g.DirectedEdges(),
		Bidirected: g.BidirectedEdges(),
	}
	if cg.Directed == nil {
		cg.Directed = [][2]string{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(cg); err != nil {
		return nil, fmt.Errorf("graph: canonical marshal: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// UnmarshalCanonical rebuilds a graph from MarshalCanonical output.
func UnmarshalCanonical(data []byte) (*CausalGraph, error) {
	var cg canonicalGraph
	if err := json.Unmarshal(data, &cg); err != nil {
		return nil, fmt.Errorf("graph: canonical unmarshal: %w", err)
	}
	g, err := New(cg.Nodes)
	if err != nil {
		return nil, err
	}
	for _, e := range cg.Directed {
		if err := g.AddEdge(e[0], e[1]); err != nil {
			return nil, err
		}
	}
	for _, e := range cg.Bidirected {
		if err := g.AddBidirected(e[0], e[1]); err != nil {
			return nil, err
		}
	}
	return g, nil
}
