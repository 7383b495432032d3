package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darwinlab/causal/internal/dataset"
	"github.com/darwinlab/causal/internal/testutil"
)

// writeCSV dumps a dataset to a temp CSV file and returns its path.
func writeCSV(t *testing.T, ds *dataset.Dataset) string {
	t.Helper()
	var b strings.Builder
	b.WriteString(strings.Join(ds.Names(), ","))
	b.WriteByte('\n')
	for i := 0; i < ds.N(); i++ {
		row := ds.Row(i)
		parts := make([]string, len(row))
		for j, v := range row {
			parts[j] = fmt.Sprintf("%g", v)
		}
		b.WriteString(strings.Join(parts, ","))
		b.WriteByte('\n')
	}
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func writeStudyConfig(t *testing.T) string {
	t.Helper()
	config := `roles:
  treatment: x
  outcome: y
  confounders: [z]
graph:
  nodes: [z, x, y]
  edges:
    - {from: z, to: x}
    - {from: x, to: y}
    - {from: z, to: y}
`
	path := filepath.Join(t.TempDir(), "study.yaml")
	require.NoError(t, os.WriteFile(path, []byte(config), 0o644))
	return path
}

// execute runs the root command with args and returns stdout and the error.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestDiscoverCommand_TextOutput(t *testing.T) {
	dataPath := writeCSV(t, testutil.Chain3(1500, 4))

	out, err := execute(t, "discover", dataPath, "--algorithm", "pc")
	require.NoError(t, err)
	assert.Contains(t, out, "algorithm: pc")
	assert.Contains(t, out, "x -> y")
}

func TestDiscoverCommand_JSONOutput(t *testing.T) {
	dataPath := writeCSV(t, testutil.Chain3(1500, 4))

	out, err := execute(t, "discover", dataPath, "--algorithm", "ges", "--format", "json")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestDiscoverCommand_UnknownAlgorithm(t *testing.T) {
	dataPath := writeCSV(t, testutil.Chain3(100, 4))

	_, err := execute(t, "discover", dataPath, "--algorithm", "lingam")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestDiscoverCommand_MissingFile(t *testing.T) {
	_, err := execute(t, "discover", filepath.Join(t.TempDir(), "absent.csv"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestAnalyzeCommand_FullRun(t *testing.T) {
	dataPath := writeCSV(t, testutil.ConfoundedTriple(3000, 8))
	configPath := writeStudyConfig(t)

	out, err := execute(t, "analyze", dataPath, "--config", configPath, "--seed", "8")
	require.NoError(t, err)
	assert.Contains(t, out, "strategy: backdoor")
	assert.Contains(t, out, "effect: ")
	assert.Contains(t, out, "[PASS] placebo_treatment")
}

func TestAnalyzeCommand_JSONReport(t *testing.T) {
	dataPath := writeCSV(t, testutil.ConfoundedTriple(3000, 8))
	configPath := writeStudyConfig(t)

	out, err := execute(t, "analyze", dataPath, "--config", configPath,
		"--seed", "8", "--format", "json", "--skip-refute")
	require.NoError(t, err)

	var resp struct {
		Status string         `json:"status"`
		Data   AnalysisReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "backdoor", string(resp.Data.Estimand.Kind))
	assert.InDelta(t, 3.0, resp.Data.Estimate.Value, 0.15)
	assert.NotEmpty(t, resp.Data.RunToken)
	assert.Nil(t, resp.Data.Refutation)
}

func TestAnalyzeCommand_NotIdentifiable(t *testing.T) {
	// Graph with an unobserved confounder node and no instrument or mediator.
	dataPath := writeCSV(t, testutil.ConfoundedTriple(500, 3))
	config := `roles:
  treatment: x
  outcome: y
graph:
  nodes: [u, x, y]
  edges:
    - {from: u, to: x}
    - {from: u, to: y}
    - {from: x, to: y}
`
	configPath := filepath.Join(t.TempDir(), "study.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(config), 0o644))

	_, err := execute(t, "analyze", dataPath, "--config", configPath)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestAnalyzeCommand_BadConfig(t *testing.T) {
	dataPath := writeCSV(t, testutil.ConfoundedTriple(100, 3))
	configPath := filepath.Join(t.TempDir(), "study.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("roles: {treatment: x}"), 0o644))

	_, err := execute(t, "analyze", dataPath, "--config", configPath)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestSensitivityCommand_EValue(t *testing.T) {
	out, err := execute(t, "sensitivity", "--method", "evalue", "--risk-ratio", "2.0")
	require.NoError(t, err)
	assert.Contains(t, out, "e-value: 3.4142")
}

func TestSensitivityCommand_IV(t *testing.T) {
	dataPath := writeCSV(t, testutil.IVData(4000, 2.0, 1.5, 6))

	out, err := execute(t, "sensitivity", dataPath, "--method", "iv",
		"--instrument", "i", "--treatment", "t", "--outcome", "y")
	require.NoError(t, err)
	assert.Contains(t, out, "iv_2sls")
	assert.Contains(t, out, "first-stage F:")
	assert.NotContains(t, out, "weak instrument")
}

func TestSensitivityCommand_DiD_JSON(t *testing.T) {
	dataPath := writeCSV(t, testutil.DiDPanel(400, 4.0, 0, 6))

	out, err := execute(t, "sensitivity", dataPath, "--method", "did",
		"--group", "group", "--period", "period", "--outcome", "y", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string            `json:"status"`
		Data   SensitivityResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.NotNil(t, resp.Data.DiD)
	assert.InDelta(t, 4.0, resp.Data.DiD.Estimate.Value, 0.2)
}

func TestSensitivityCommand_MissingMethodFlags(t *testing.T) {
	dataPath := writeCSV(t, testutil.IVData(200, 2.0, 1.5, 6))

	_, err := execute(t, "sensitivity", dataPath, "--method", "iv", "--outcome", "y")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestSensitivityCommand_DataRequired(t *testing.T) {
	_, err := execute(t, "sensitivity", "--method", "rdd", "--running", "x", "--outcome", "y")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRootCommand_RejectsBadFormat(t *testing.T) {
	dataPath := writeCSV(t, testutil.Chain3(100, 4))

	_, err := execute(t, "discover", dataPath, "--format", "xml")
	assert.Error(t, err)
}
