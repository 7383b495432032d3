package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/darwinlab/causal/internal/discovery"
	"github.com/darwinlab/causal/internal/graph"
)

// DiscoverOptions holds flags for the discover command.
type DiscoverOptions struct {
	Algorithm string
	Alpha     float64
	Penalty   float64
	Threshold float64
}

// DiscoveryResult is the discover command's payload.
type DiscoveryResult struct {
	Algorithm  string      `json:"algorithm"`
	Variables  int         `json:"variables"`
	Nodes      []string    `json:"nodes"`
	Directed   [][2]string `json:"directed"`
	Bidirected [][2]string `json:"bidirected,omitempty"`
}

// NewDiscoverCommand creates the discover command.
func NewDiscoverCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DiscoverOptions{}

	cmd := &cobra.Command{
		Use:   "discover <data.csv>",
		Short: "Learn causal structure from observational data",
		Long: `Learn a causal graph from a CSV data matrix (header row = variable names).

Supported algorithms: pc, fci, ges, notears. PC and FCI are constraint-based
(partial-correlation independence tests), GES is score-based (BIC), and
NOTEARS is a continuous optimizer with an acyclicity penalty.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiscover(rootOpts, opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Algorithm, "algorithm", "a", "pc", "discovery algorithm (pc|fci|ges|notears)")
	cmd.Flags().Float64Var(&opts.Alpha, "alpha", 0, "independence-test significance level for pc/fci (default 0.05)")
	cmd.Flags().Float64Var(&opts.Penalty, "penalty", 0, "BIC penalty multiplier for ges (default 1.0)")
	cmd.Flags().Float64Var(&opts.Threshold, "threshold", 0, "edge-weight threshold for notears (default 0.3)")

	return cmd
}

func runDiscover(rootOpts *RootOptions, opts *DiscoverOptions, dataPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    rootOpts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   rootOpts.Verbose,
	}

	ds, err := LoadDataset(dataPath)
	if err != nil {
		_ = formatter.Error(ErrCodeBadData, err.Error(), nil)
		return err
	}
	formatter.VerboseLog("loaded %d rows, %d variables from %s", ds.N(), len(ds.Names()), dataPath)

	algo, err := buildAlgorithm(opts)
	if err != nil {
		_ = formatter.Error(ErrCodeBadAlgorithm, err.Error(), nil)
		return WrapExitError(ExitCommandError, "bad algorithm", err)
	}

	g, err := algo.Discover(ds)
	if err != nil {
		if discovery.IsConvergence(err) {
			_ = formatter.Error(ErrCodeNotConverged, err.Error(), nil)
			return WrapExitError(ExitFailure, "discovery did not converge", err)
		}
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitFailure, "discovery failed", err)
	}

	return outputGraph(formatter, algo.Name(), g)
}

func buildAlgorithm(opts *DiscoverOptions) (discovery.Algorithm, error) {
	switch opts.Algorithm {
	case "pc":
		return discovery.NewPC(discovery.PCConfig{Alpha: opts.Alpha}), nil
	case "fci":
		return discovery.NewFCI(discovery.FCIConfig{Alpha: opts.Alpha}), nil
	case "ges":
		return discovery.NewGES(discovery.GESConfig{Penalty: opts.Penalty}), nil
	case "notears":
		return discovery.NewNOTEARS(discovery.NOTEARSConfig{WThreshold: opts.Threshold}), nil
	default:
		return nil, fmt.Errorf("unknown algorithm %q: must be pc, fci, ges, or notears", opts.Algorithm)
	}
}

func outputGraph(formatter *OutputFormatter, algorithm string, g *graph.CausalGraph) error {
	result := DiscoveryResult{
		Algorithm:  algorithm,
		Variables:  len(g.Names()),
		Nodes:      g.Names(),
		Directed:   g.DirectedEdges(),
		Bidirected: g.BidirectedEdges(),
	}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "algorithm: %s\n", algorithm)
	fmt.Fprintf(formatter.Writer, "nodes: %d, directed edges: %d, bidirected edges: %d\n",
		len(result.Nodes), len(result.Directed), len(result.Bidirected))
	for _, e := range result.Directed {
		fmt.Fprintf(formatter.Writer, "  %s -> %s\n", e[0], e[1])
	}
	for _, e := range result.Bidirected {
		fmt.Fprintf(formatter.Writer, "  %s <-> %s\n", e[0], e[1])
	}
	return nil
}
