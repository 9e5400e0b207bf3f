package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// harnessScenarios are the conformance scenarios shipped with the harness.
var harnessScenarios = filepath.Join("..", "harness", "testdata", "scenarios")

func TestTestCommandMissingArgs(t *testing.T) {
	_, _, err := runCLI(t, "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestTestCommandNonExistentDir(t *testing.T) {
	_, _, err := runCLI(t, "test", "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scenarios directory not found")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTestCommandEmptyDir(t *testing.T) {
	out, _, err := runCLI(t, "test", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found")
}

func TestTestCommandHarnessScenarios(t *testing.T) {
	out, _, err := runCLI(t, "test", harnessScenarios)
	require.NoError(t, err, out)
	assert.Contains(t, out, "✓ scalar_examples")
	assert.Contains(t, out, "✓ unsupported_shapes")
	assert.Contains(t, out, "✓ mixed_front_ends")
	assert.Contains(t, out, "Test Summary: 3 passed, 0 failed, 3 total")
}

func TestTestCommandFilterJSON(t *testing.T) {
	out, _, err := runCLI(t, "--format", "json", "test", harnessScenarios, "--filter", "scalar_*")
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, resp.Data.Total)
	assert.Equal(t, "scalar_examples", resp.Data.Scenarios[0].Name)
}

func TestTestCommandFailingScenario(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "scenarios")
	require.NoError(t, os.MkdirAll(dir, 0755))
	writeFile(t, dir, "wrong_count.yaml", `
name: wrong_count
description: "Expects two impls from a single derive"
inline:
  - name: a.rs
    text: |
      #[derive(Mul)]
      struct A(u32);
assertions:
  - type: count
    count: 2
`)

	out, _, err := runCLI(t, "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ wrong_count")
	assert.Contains(t, out, "1 failed")
}

func TestTestCommandUpdateWritesGolden(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "scenarios")
	require.NoError(t, os.MkdirAll(dir, 0755))
	writeFile(t, dir, "single.yaml", `
name: single
description: "One Shr impl"
inline:
  - name: a.rs
    text: |
      #[derive(Shr)]
      struct Mask(u64);
assertions:
  - type: expands
    record: Mask
    operator: Shr
`)

	_, _, err := runCLI(t, "test", dir, "--update")
	require.NoError(t, err)

	golden, err := os.ReadFile(filepath.Join(root, "golden", "single.golden"))
	require.NoError(t, err)
	assert.Contains(t, string(golden), "Mask(self.0.shr(rhs))")

	// A second run compares against the golden file just written.
	out, _, err := runCLI(t, "test", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ single")

	require.NoError(t, os.WriteFile(filepath.Join(root, "golden", "single.golden"), []byte("stale"), 0644))
	out, _, err = runCLI(t, "test", dir)
	require.Error(t, err)
	assert.Contains(t, out, "does not match golden file")
}
