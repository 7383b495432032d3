package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/darwinlab/causal/internal/estimation"
	"github.com/darwinlab/causal/internal/sensitivity"
)

// SensitivityOptions holds flags for the sensitivity command.
type SensitivityOptions struct {
	Method string

	// evalue
	RiskRatio float64
	CILower   float64
	CIUpper   float64

	// iv
	Instrument string
	Treatment  string

	// rdd
	Running   string
	Cutoff    float64
	Bandwidth float64

	// did
	Group  string
	Period string

	Outcome string
}

// SensitivityResult is the sensitivity command's payload. Exactly one of the
// method fields is set, matching the requested method.
type SensitivityResult struct {
	Method string                    `json:"method"`
	EValue *sensitivity.EValueResult `json:"evalue,omitempty"`
	IV     *sensitivity.IVResult     `json:"iv,omitempty"`
	RDD    *estimation.Estimate      `json:"rdd,omitempty"`
	DiD    *sensitivity.DiDResult    `json:"did,omitempty"`
}

// NewSensitivityCommand creates the sensitivity command.
func NewSensitivityCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SensitivityOptions{}

	cmd := &cobra.Command{
		Use:   "sensitivity [data.csv]",
		Short: "Run a sensitivity or quasi-experimental analysis",
		Long: `Run a standalone sensitivity analysis.

Methods: evalue (no data file; takes --risk-ratio and optionally a CI),
iv (two-stage least squares with a first-stage F diagnostic),
rdd (local-linear regression discontinuity), did (2x2 difference in
differences with a pre-trend diagnostic).`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dataPath := ""
			if len(args) == 1 {
				dataPath = args[0]
			}
			return runSensitivity(rootOpts, opts, dataPath, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Method, "method", "m", "", "analysis method (evalue|iv|rdd|did)")
	cmd.Flags().Float64Var(&opts.RiskRatio, "risk-ratio", 0, "observed risk ratio for evalue")
	cmd.Flags().Float64Var(&opts.CILower, "ci-lower", 0, "risk-ratio CI lower bound for evalue")
	cmd.Flags().Float64Var(&opts.CIUpper, "ci-upper", 0, "risk-ratio CI upper bound for evalue")
	cmd.Flags().StringVar(&opts.Instrument, "instrument", "", "instrument column for iv")
	cmd.Flags().StringVar(&opts.Treatment, "treatment", "", "treatment column for iv")
	cmd.Flags().StringVar(&opts.Running, "running", "", "running-variable column for rdd")
	cmd.Flags().Float64Var(&opts.Cutoff, "cutoff", 0, "treatment cutoff for rdd")
	cmd.Flags().Float64Var(&opts.Bandwidth, "bandwidth", 0, "local bandwidth for rdd (default 0.5)")
	cmd.Flags().StringVar(&opts.Group, "group", "", "group column for did")
	cmd.Flags().StringVar(&opts.Period, "period", "", "period column for did")
	cmd.Flags().StringVar(&opts.Outcome, "outcome", "", "outcome column for iv/rdd/did")
	_ = cmd.MarkFlagRequired("method")

	return cmd
}

func runSensitivity(rootOpts *RootOptions, opts *SensitivityOptions, dataPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    rootOpts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   rootOpts.Verbose,
	}

	if opts.Method == "evalue" {
		ev, err := evalueResult(opts)
		if err != nil {
			_ = formatter.Error(ErrCodeBadConfig, err.Error(), nil)
			return WrapExitError(ExitCommandError, "evalue failed", err)
		}
		return outputSensitivity(formatter, &SensitivityResult{Method: "evalue", EValue: ev})
	}

	if dataPath == "" {
		err := fmt.Errorf("method %q requires a data file argument", opts.Method)
		_ = formatter.Error(ErrCodeBadConfig, err.Error(), nil)
		return WrapExitError(ExitCommandError, "missing data file", err)
	}
	ds, err := LoadDataset(dataPath)
	if err != nil {
		_ = formatter.Error(ErrCodeBadData, err.Error(), nil)
		return err
	}
	formatter.VerboseLog("loaded %d rows from %s", ds.N(), dataPath)

	result := &SensitivityResult{Method: opts.Method}
	switch opts.Method {
	case "iv":
		if opts.Instrument == "" || opts.Treatment == "" || opts.Outcome == "" {
			err := fmt.Errorf("iv requires --instrument, --treatment, and --outcome")
			_ = formatter.Error(ErrCodeBadConfig, err.Error(), nil)
			return WrapExitError(ExitCommandError, "missing iv flags", err)
		}
		result.IV, err = sensitivity.TwoStageLeastSquares(ds, opts.Instrument, opts.Treatment, opts.Outcome)
	case "rdd":
		if opts.Running == "" || opts.Outcome == "" {
			err := fmt.Errorf("rdd requires --running and --outcome")
			_ = formatter.Error(ErrCodeBadConfig, err.Error(), nil)
			return WrapExitError(ExitCommandError, "missing rdd flags", err)
		}
		result.RDD, err = sensitivity.RDD(ds, opts.Running, opts.Outcome, opts.Cutoff, sensitivity.RDDConfig{
			Bandwidth: opts.Bandwidth,
			Seed:      rootOpts.Seed,
		})
	case "did":
		if opts.Group == "" || opts.Period == "" || opts.Outcome == "" {
			err := fmt.Errorf("did requires --group, --period, and --outcome")
			_ = formatter.Error(ErrCodeBadConfig, err.Error(), nil)
			return WrapExitError(ExitCommandError, "missing did flags", err)
		}
		result.DiD, err = sensitivity.DiD(ds, opts.Group, opts.Period, opts.Outcome)
	default:
		err := fmt.Errorf("unknown method %q: must be evalue, iv, rdd, or did", opts.Method)
		_ = formatter.Error(ErrCodeBadAlgorithm, err.Error(), nil)
		return WrapExitError(ExitCommandError, "bad method", err)
	}
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitFailure, "analysis failed", err)
	}

	return outputSensitivity(formatter, result)
}

func evalueResult(opts *SensitivityOptions) (*sensitivity.EValueResult, error) {
	if opts.CILower != 0 || opts.CIUpper != 0 {
		point, ci, err := sensitivity.EValueForCI(opts.RiskRatio, opts.CILower, opts.CIUpper)
		if err != nil {
			return nil, err
		}
		return &sensitivity.EValueResult{RiskRatio: opts.RiskRatio, Point: point, CI: ci}, nil
	}
	point, err := sensitivity.EValue(opts.RiskRatio)
	if err != nil {
		return nil, err
	}
	return &sensitivity.EValueResult{RiskRatio: opts.RiskRatio, Point: point}, nil
}

func outputSensitivity(formatter *OutputFormatter, result *SensitivityResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	switch result.Method {
	case "evalue":
		fmt.Fprintf(w, "e-value: %.4f (risk ratio %.4f)\n", result.EValue.Point, result.EValue.RiskRatio)
		if result.EValue.CI != 0 {
			fmt.Fprintf(w, "e-value for CI bound: %.4f\n", result.EValue.CI)
		}
	case "iv":
		fmt.Fprintf(w, "effect: %s\n", result.IV.Estimate)
		fmt.Fprintf(w, "first-stage F: %.2f", result.IV.FirstStageF)
		if result.IV.WeakInstrument {
			fmt.Fprint(w, " (weak instrument)")
		}
		fmt.Fprintln(w)
	case "rdd":
		fmt.Fprintf(w, "effect: %s\n", result.RDD)
	case "did":
		fmt.Fprintf(w, "effect: %s\n", result.DiD.Estimate)
		fmt.Fprintf(w, "pre-period group gap: %.4f\n", result.DiD.PreTrend)
	}
	return nil
}
