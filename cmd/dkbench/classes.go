package main

import (
	"fmt"

	"github.com/dynamikos/dynamikos/memutils/sizeclass"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newClassesCmd())
}

func newClassesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classes",
		Short: "Print the size-class table for a capacity",
		Long: `The classes command prints every size class a pool of the given capacity
would use, smallest first.

Example:
  dkbench classes --capacity 1048576`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClasses(cmd)
		},
	}
	return cmd
}

func runClasses(cmd *cobra.Command) error {
	table, err := sizeclass.New(capacity)
	if err != nil {
		return err
	}

	sizeclass.LogClasses(newLogger(cmd.ErrOrStderr()), table)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Capacity: %d bytes, %d classes\n", table.Capacity(), table.Len())
	for i, size := range table.Sizes() {
		fmt.Fprintf(out, "%4d  %d\n", i, size)
	}
	return nil
}
