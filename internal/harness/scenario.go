package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/darwinlab/causal/internal/dataset"
)

// Scenario defines one conformance scenario: how to generate the data, what
// graph and roles to analyze under, and what the pipeline must conclude.
type Scenario struct {
	// Name uniquely identifies this scenario; the golden file shares it.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// RunToken is the fixed pipeline run token, for deterministic reports.
	// Defaults to "scenario-run".
	RunToken string `yaml:"run_token,omitempty"`

	// Seed drives both data generation and the refutation suite.
	Seed int64 `yaml:"seed"`

	// Data describes the synthetic dataset.
	Data DataSpec `yaml:"data"`

	// Graph is the assumed causal graph.
	Graph GraphSpec `yaml:"graph"`

	// Roles assigns treatment and outcome (and optional extra roles).
	Roles dataset.Roles `yaml:"roles"`

	// Expect states the required pipeline outcome.
	Expect ExpectSpec `yaml:"expect"`
}

// DataSpec selects a registered synthetic generator.
type DataSpec struct {
	Generator string             `yaml:"generator"`
	Samples   int                `yaml:"samples"`
	Params    map[string]float64 `yaml:"params,omitempty"`
}

// GraphSpec is the assumed graph as node and edge lists.
type GraphSpec struct {
	Nodes []string   `yaml:"nodes"`
	Edges []EdgeSpec `yaml:"edges"`
}

// EdgeSpec is one directed edge.
type EdgeSpec struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// ExpectSpec states the required outcome of the pipeline run.
type ExpectSpec struct {
	// Strategy is the required estimand kind ("backdoor", "frontdoor",
	// "instrumental_variable").
	Strategy string `yaml:"strategy"`

	// Effect brackets the acceptable point estimate.
	Effect EffectRange `yaml:"effect"`

	// RefutationPassed requires the whole refutation suite to pass.
	RefutationPassed bool `yaml:"refutation_passed"`
}

// EffectRange is an inclusive interval for the point estimate.
type EffectRange struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// LoadScenario reads and parses a scenario YAML file. Unknown fields are
// rejected so typos fail loudly.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("harness: reading scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("harness: parsing scenario YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("harness: invalid scenario: %w", err)
	}
	if scenario.RunToken == "" {
		scenario.RunToken = "scenario-run"
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Data.Generator == "" {
		return fmt.Errorf("data.generator is required")
	}
	if s.Data.Samples <= 0 {
		return fmt.Errorf("data.samples must be positive")
	}
	if len(s.Graph.Nodes) == 0 {
		return fmt.Errorf("graph.nodes is required")
	}
	for i, e := range s.Graph.Edges {
		if e.From == "" || e.To == "" {
			return fmt.Errorf("graph.edges[%d]: from and to are required", i)
		}
	}
	if s.Roles.Treatment == "" || s.Roles.Outcome == "" {
		return fmt.Errorf("roles.treatment and roles.outcome are required")
	}
	if s.Expect.Strategy == "" {
		return fmt.Errorf("expect.strategy is required")
	}
	if s.Expect.Effect.Min > s.Expect.Effect.Max {
		return fmt.Errorf("expect.effect: min %v exceeds max %v", s.Expect.Effect.Min, s.Expect.Effect.Max)
	}
	return nil
}
