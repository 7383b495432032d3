package dataset

import "fmt"

// Roles is the caller-supplied variable role assignment for an analysis.
type Roles struct {
	Treatment   string   `yaml:"treatment"`
	Outcome     string   `yaml:"outcome"`
	Confounders []string `yaml:"confounders,omitempty"`
	Instruments []string `yaml:"instruments,omitempty"`
	Mediators   []string `yaml:"mediators,omitempty"`
}

// Validate checks that every named role refers to a dataset column, that
// treatment and outcome are set and distinct, and that no variable holds two
// conflicting roles.
func (r Roles) Validate(d *Dataset) error {
	if r.Treatment == "" {
		return fmt.Errorf("dataset: roles: treatment is required")
	}
	if r.Outcome == "" {
		return fmt.Errorf("dataset: roles: outcome is required")
	}
	if r.Treatment == r.Outcome {
		return fmt.Errorf("dataset: roles: treatment and outcome are both %q", r.Treatment)
	}

	taken := map[string]string{r.Treatment: "treatment", r.Outcome: "outcome"}
	check := func(role string, names []string) error {
		for _, n := range names {
			if !d.HasColumn(n) {
				return fmt.Errorf("dataset: roles: %s: %w", role, &UnknownColumnError{Name: n})
			}
			if prev, clash := taken[n]; clash {
				return fmt.Errorf("dataset: roles: %q assigned as both %s and %s", n, prev, role)
			}
			taken[n] = role
		}
		return nil
	}

	if !d.HasColumn(r.Treatment) {
		return fmt.Errorf("dataset: roles: treatment: %w", &UnknownColumnError{Name: r.Treatment})
	}
	if !d.HasColumn(r.Outcome) {
		return fmt.Errorf("dataset: roles: outcome: %w", &UnknownColumnError{Name: r.Outcome})
	}
	if err := check("confounder", r.Confounders); err != nil {
		return err
	}
	if err := check("instrument", r.Instruments); err != nil {
		return err
	}
	return check("mediator", r.Mediators)
}
