package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/darwinlab/causal/internal/dataset"
	"github.com/darwinlab/causal/internal/graph"
)

// StudyConfig is the YAML study description consumed by analyze: variable
// roles plus the assumed causal graph as an edge list.
type StudyConfig struct {
	Roles dataset.Roles `yaml:"roles"`
	Graph GraphConfig   `yaml:"graph"`
}

// GraphConfig is a causal graph as node and edge lists.
type GraphConfig struct {
	Nodes []string     `yaml:"nodes"`
	Edges []EdgeConfig `yaml:"edges"`
}

// EdgeConfig is one directed edge of the assumed graph.
type EdgeConfig struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// LoadDataset reads a CSV file with a header row into a Dataset.
func LoadDataset(path string) (*dataset.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, fmt.Sprintf("opening data file %s", path), err)
	}
	defer f.Close()

	ds, err := dataset.FromCSV(f)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, fmt.Sprintf("parsing data file %s", path), err)
	}
	return ds, nil
}

// LoadStudyConfig reads and validates a YAML study config against the data.
func LoadStudyConfig(path string, ds *dataset.Dataset) (*StudyConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, fmt.Sprintf("reading study config %s", path), err)
	}
	var cfg StudyConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, WrapExitError(ExitCommandError, fmt.Sprintf("parsing study config %s", path), err)
	}
	if cfg.Roles.Treatment == "" || cfg.Roles.Outcome == "" {
		return nil, NewExitError(ExitCommandError, "study config must name a treatment and an outcome")
	}
	if err := cfg.Roles.Validate(ds); err != nil {
		return nil, WrapExitError(ExitCommandError, "study config roles do not match the data", err)
	}
	if len(cfg.Graph.Nodes) == 0 {
		return nil, NewExitError(ExitCommandError, "study config must supply a causal graph (graph.nodes, graph.edges)")
	}
	return &cfg, nil
}

// BuildGraph materializes a GraphConfig into a CausalGraph.
func BuildGraph(cfg GraphConfig) (*graph.CausalGraph, error) {
	g, err := graph.New(cfg.Nodes)
	if err != nil {
		return nil, err
	}
	for _, e := range cfg.Edges {
		if err := g.AddEdge(e.From, e.To); err != nil {
			return nil, err
		}
	}
	return g, nil
}
