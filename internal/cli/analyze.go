package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/darwinlab/causal/internal/estimation"
	"github.com/darwinlab/causal/internal/pipeline"
)

// AnalyzeOptions holds flags for the analyze command.
type AnalyzeOptions struct {
	ConfigPath string
	SkipRefute bool
}

// AnalysisReport is the analyze command's payload: the full pipeline output
// for one causal question.
type AnalysisReport struct {
	RunToken   string                       `json:"run_token"`
	Estimand   *pipeline.IdentifiedEstimand `json:"estimand"`
	Estimate   *estimation.Estimate         `json:"estimate"`
	Refutation *pipeline.RefutationReport   `json:"refutation,omitempty"`
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AnalyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze <data.csv>",
		Short: "Identify, estimate, and refute a causal effect",
		Long: `Run the full pipeline over a CSV data matrix and a YAML study config:
select an identification strategy from the assumed graph, estimate the
treatment effect, and run the refutation suite.

The study config names the treatment and outcome and supplies the assumed
causal graph as node and edge lists.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(rootOpts, opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "YAML study config (required)")
	cmd.Flags().BoolVar(&opts.SkipRefute, "skip-refute", false, "stop after estimation")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}

func runAnalyze(rootOpts *RootOptions, opts *AnalyzeOptions, dataPath string, cmd *cobra.Command) error {
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
	cfg, err := LoadStudyConfig(opts.ConfigPath, ds)
	if err != nil {
		_ = formatter.Error(ErrCodeBadConfig, err.Error(), nil)
		return err
	}
	g, err := BuildGraph(cfg.Graph)
	if err != nil {
		_ = formatter.Error(ErrCodeBadConfig, err.Error(), nil)
		return WrapExitError(ExitCommandError, "bad study graph", err)
	}
	formatter.VerboseLog("study: %s -> %s over %d rows", cfg.Roles.Treatment, cfg.Roles.Outcome, ds.N())

	orch, err := pipeline.New(ds, g, cfg.Roles.Treatment, cfg.Roles.Outcome,
		pipeline.WithSeed(rootOpts.Seed))
	if err != nil {
		_ = formatter.Error(ErrCodeBadConfig, err.Error(), nil)
		return WrapExitError(ExitCommandError, "pipeline setup failed", err)
	}

	estimand, err := orch.Identify()
	if err != nil {
		if pipeline.IsNotIdentifiable(err) {
			_ = formatter.Error(ErrCodeNotIdentifiable, err.Error(), nil)
			return WrapExitError(ExitFailure, "effect is not identifiable", err)
		}
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitFailure, "identification failed", err)
	}
	formatter.VerboseLog("identified via %s", estimand.Kind)

	estimate, err := orch.Estimate()
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitFailure, "estimation failed", err)
	}

	report := &AnalysisReport{
		RunToken: orch.RunToken(),
		Estimand: estimand,
		Estimate: estimate,
	}
	if !opts.SkipRefute {
		refutation, err := orch.Refute()
		if err != nil {
			_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
			return WrapExitError(ExitFailure, "refutation failed", err)
		}
		report.Refutation = refutation
	}

	if err := outputAnalysis(formatter, report); err != nil {
		return err
	}
	if report.Refutation != nil && !report.Refutation.Passed {
		return NewExitError(ExitFailure, "one or more refutation checks failed")
	}
	return nil
}

func outputAnalysis(formatter *OutputFormatter, report *AnalysisReport) error {
	if formatter.Format == "json" {
		return formatter.Success(report)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "run: %s\n", report.RunToken)
	fmt.Fprintf(w, "strategy: %s", report.Estimand.Kind)
	switch report.Estimand.Kind {
	case pipeline.EstimandBackdoor:
		fmt.Fprintf(w, " (adjusting for %v)", report.Estimand.Adjustment)
	case pipeline.EstimandFrontdoor:
		fmt.Fprintf(w, " (mediator %s)", report.Estimand.Mediator)
	case pipeline.EstimandInstrumental:
		fmt.Fprintf(w, " (instrument %s)", report.Estimand.Instrument)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "effect: %.4f (se %.4f, 95%% CI [%.4f, %.4f], %s, n=%d)\n",
		report.Estimate.Value, report.Estimate.StdErr,
		report.Estimate.CILower, report.Estimate.CIUpper,
		report.Estimate.Estimator, report.Estimate.N)

	if report.Refutation != nil {
		for _, c := range report.Refutation.Checks {
			mark := "PASS"
			if !c.Passed {
				mark = "FAIL"
			}
			fmt.Fprintf(w, "  [%s] %s: %s\n", mark, c.Name, c.Detail)
		}
	}
	return nil
}
