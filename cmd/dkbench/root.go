package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/exp/slog"
)

var (
	// Global flags
	verbose  bool
	capacity int
)

var rootCmd = &cobra.Command{
	Use:   "dkbench",
	Short: "Benchmark the dynamikos size-class pool allocator",
	Long: `dkbench drives the dynamikos allocator through a set of allocation
workloads (randomly sized structs, interleaved churn, fragmentation stress,
string building, trees and large arrays) and reports how long each took.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log allocator activity at debug level to stderr")
	rootCmd.PersistentFlags().IntVarP(&capacity, "capacity", "c", 256<<20, "Pool capacity in bytes")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// newLogger returns the logger handed to the allocator. Without --verbose nothing is logged.
func newLogger(w io.Writer) *slog.Logger {
	if !verbose {
		return nil
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
