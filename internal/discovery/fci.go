package discovery

import (
	"github.com/darwinlab/causal/internal/dataset"
	"github.com/darwinlab/causal/internal/graph"
	"github.com/darwinlab/causal/internal/stats"
)

// FCIConfig holds the FCI hyperparameters; the PC phase reuses them.
type FCIConfig struct {
	// Alpha is the significance level for independence tests. Default 0.05.
	Alpha float64

	// MaxCondSize bounds conditioning-set size in the skeleton phase.
	// Default 3.
	MaxCondSize int
}

// FCI is the latent-confounder-aware extension of PC. It runs the full PC
// procedure, then marks a bidirected edge between non-adjacent variables
// sharing a common effect whose dependence survives conditioning on those
// effects: dependence that persists after conditioning on every common child
// signals an unobserved common cause.
type FCI struct {
	cfg FCIConfig
}

// NewFCI creates an FCI learner; zero-valued config fields take defaults.
func NewFCI(cfg FCIConfig) *FCI {
	if cfg.Alpha == 0 {
		cfg.Alpha = 0.05
	}
	if cfg.MaxCondSize == 0 {
		cfg.MaxCondSize = 3
	}
	return &FCI{cfg: cfg}
}

// Name implements Algorithm.
func (f *FCI) Name() string { return "fci" }

// Discover implements Algorithm. The output is a PAG approximation: the PC
// DAG plus bidirected latent-confounder markers.
func (f *FCI) Discover(d *dataset.Dataset) (*graph.CausalGraph, error) {
	pc := NewPC(PCConfig{Alpha: f.cfg.Alpha, MaxCondSize: f.cfg.MaxCondSize})
	g, err := pc.Discover(d)
	if err != nil {
		return nil, err
	}

	names := d.Names()
	corr := stats.CorrelationMatrix(d.Matrix())
	n := d.N()

	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			if g.HasDirected(names[i], names[j]) || g.HasDirected(names[j], names[i]) {
				continue
			}
			common := commonChildren(g, names, names[i], names[j])
			if len(common) == 0 {
				continue
			}
			r, err := stats.PartialCorrelation(corr, i, j, common)
			if err != nil {
				continue // singular conditioning set: no usable test
			}
			if stats.FisherZPValue(r, n, len(common)) <= f.cfg.Alpha {
				// Conditioning on the shared effects did not break
				// the dependence: latent common cause.
				if err := g.AddBidirected(names[i], names[j]); err != nil {
					return nil, err
				}
			}
		}
	}
	return g, nil
}

// commonChildren returns column indices of nodes that are directed children
// of both a and b.
func commonChildren(g *graph.CausalGraph, names []string, a, b string) []int {
	var out []int
	for idx, name := range names {
		if name == a || name == b {
			continue
		}
		if g.HasDirected(a, name) && g.HasDirected(b, name) {
			out = append(out, idx)
		}
	}
	return out
}
