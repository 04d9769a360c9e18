package main

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dynamikos/dynamikos/internal/workload"
	"github.com/dynamikos/dynamikos/memory"
	"github.com/spf13/cobra"
)

var (
	runIterations int
	runSeed       int64
	runWorkloads  []string
	runStats      bool
	runFlags      []string
)

var runFlagNames = map[string]memory.CreateFlags{
	"synchronized": memory.CreateSynchronized,
	"monotonic":    memory.CreateMonotonicCursor,
	"track":        memory.CreateTrackAllocations,
	"offheap":      memory.CreateOffHeapArena,
}

func init() {
	cmd := newRunCmd()
	cmd.Flags().IntVarP(&runIterations, "iterations", "n", 1000000, "Iterations per workload")
	cmd.Flags().Int64Var(&runSeed, "seed", 0, "Random seed (0 uses the current time)")
	cmd.Flags().StringSliceVarP(&runWorkloads, "workload", "w", nil, "Workloads to run (default all)")
	cmd.Flags().BoolVar(&runStats, "stats", false, "Print allocator statistics as JSON after the run")
	cmd.Flags().StringSliceVar(&runFlags, "flags", nil, "Allocator flags: synchronized, monotonic, track, offheap")
	rootCmd.AddCommand(cmd)
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run allocation workloads and report their timings",
		Long: `The run command creates one allocator and runs each selected workload
against it in turn, clearing the pool between workloads.

Available workloads:
` + describeWorkloads() + `
Example:
  dkbench run
  dkbench run --workload trees,arrays --iterations 10000 --stats
  dkbench run --flags monotonic,track --capacity 67108864`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd)
		},
	}
	return cmd
}

func describeWorkloads() string {
	var sb strings.Builder
	for _, wl := range workload.All() {
		fmt.Fprintf(&sb, "  %-14s %s\n", wl.Name, wl.Description)
	}
	return sb.String()
}

func parseCreateFlags(names []string) (memory.CreateFlags, error) {
	var flags memory.CreateFlags
	for _, name := range names {
		flag, ok := runFlagNames[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return 0, errors.Newf("unknown allocator flag %q", name)
		}
		flags |= flag
	}
	return flags, nil
}

func selectWorkloads(names []string) ([]workload.Workload, error) {
	if len(names) == 0 {
		return workload.All(), nil
	}

	selected := make([]workload.Workload, 0, len(names))
	for _, name := range names {
		wl, ok := workload.Find(strings.TrimSpace(name))
		if !ok {
			return nil, errors.Newf("unknown workload %q", name)
		}
		selected = append(selected, wl)
	}
	return selected, nil
}

func runRun(cmd *cobra.Command) error {
	if runIterations < 0 {
		return errors.Newf("iterations must not be negative, got %d", runIterations)
	}

	flags, err := parseCreateFlags(runFlags)
	if err != nil {
		return err
	}

	selected, err := selectWorkloads(runWorkloads)
	if err != nil {
		return err
	}

	seed := runSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	allocator, err := memory.New(newLogger(cmd.ErrOrStderr()), capacity, memory.CreateOptions{Flags: flags})
	if err != nil {
		return errors.Wrap(err, "failed to construct allocator")
	}
	defer func() {
		_ = allocator.Destroy()
	}()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Capacity: %d bytes, %d classes, flags %s, seed %d\n",
		allocator.Capacity(), len(allocator.SizeClasses()), flags, seed)

	rng := rand.New(rand.NewSource(seed))
	for _, wl := range selected {
		if err := allocator.Clear(); err != nil {
			return err
		}

		result := wl.Run(allocator, rng, runIterations)
		fmt.Fprintf(out, "Dynamikos - %-14s %.6f seconds", result.Name+":", result.Elapsed.Seconds())
		if result.Failures > 0 {
			fmt.Fprintf(out, " (%d failed operations)", result.Failures)
		}
		fmt.Fprintln(out)
	}

	if runStats {
		fmt.Fprintln(out, allocator.BuildStatsString(true))
	}

	return nil
}
