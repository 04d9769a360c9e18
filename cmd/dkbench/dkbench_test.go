package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/dynamikos/dynamikos/memory"
	"github.com/stretchr/testify/require"
)

// executeCommand runs dkbench with args and returns what it printed to stdout.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	verbose = false
	capacity = 256 << 20
	runIterations = 1000000
	runSeed = 0
	runWorkloads = nil
	runStats = false
	runFlags = nil

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func TestClassesCommand(t *testing.T) {
	output, err := executeCommand(t, "classes", "--capacity", "1024")
	require.NoError(t, err)
	require.Contains(t, output, "Capacity: 1024 bytes, 11 classes")
	require.Contains(t, output, "   0  16\n")
	require.Contains(t, output, "  10  1024\n")
}

func TestClassesCommandRejectsBadCapacity(t *testing.T) {
	_, err := executeCommand(t, "classes", "--capacity", "0")
	require.Error(t, err)
}

func TestRunCommand(t *testing.T) {
	output, err := executeCommand(t, "run",
		"--capacity", "67108864",
		"--iterations", "200",
		"--seed", "42",
		"--workload", "structs,trees",
	)
	require.NoError(t, err)
	require.Contains(t, output, "seed 42")
	require.Contains(t, output, "Dynamikos - structs:")
	require.Contains(t, output, "Dynamikos - trees:")
	require.NotContains(t, output, "arrays:")
	require.NotContains(t, output, "failed operations")
}

func TestRunCommandStats(t *testing.T) {
	output, err := executeCommand(t, "run",
		"--capacity", "1048576",
		"--iterations", "50",
		"--seed", "1",
		"--workload", "interleaved",
		"--flags", "monotonic,track",
		"--stats",
	)
	require.NoError(t, err)
	require.Contains(t, output, "CreateMonotonicCursor|CreateTrackAllocations")

	start := strings.Index(output, "{")
	require.GreaterOrEqual(t, start, 0)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(output[start:]), &doc))
	require.Contains(t, doc, "Total")
}

func TestRunCommandUnknownWorkload(t *testing.T) {
	_, err := executeCommand(t, "run", "--workload", "nope", "--capacity", "1024")
	require.ErrorContains(t, err, `unknown workload "nope"`)
}

func TestRunCommandUnknownFlag(t *testing.T) {
	_, err := executeCommand(t, "run", "--flags", "fast", "--capacity", "1024")
	require.ErrorContains(t, err, `unknown allocator flag "fast"`)
}

func TestParseCreateFlags(t *testing.T) {
	flags, err := parseCreateFlags([]string{"Synchronized", " track "})
	require.NoError(t, err)
	require.Equal(t, memory.CreateSynchronized|memory.CreateTrackAllocations, flags)

	flags, err = parseCreateFlags(nil)
	require.NoError(t, err)
	require.Equal(t, memory.CreateFlags(0), flags)
}

func TestVersionCommand(t *testing.T) {
	output, err := executeCommand(t, "version")
	require.NoError(t, err)
	require.Contains(t, output, "dkbench dev")
}
