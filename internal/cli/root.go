// Package cli wires the prman commands into cobra.
package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	prmanerrors "prman.dev/prman/internal/errors"
)

// NewRootCmd creates the root cobra command
func NewRootCmd(version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "prman",
		Short: "prman keeps a tree of stacked GitHub pull requests up to date",
		Long: `prman keeps a tree of stacked GitHub pull requests up to date.

Open pull requests stacked on each other with "prman create -d <number>",
merge upstream changes down the whole tree with "prman evolve" and land the
bottom of a stack with "prman submit".`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Show debug output, including every git command")
	rootCmd.PersistentFlags().String("config", "", "Read configuration from this file instead of .prman.yaml")

	rootCmd.AddCommand(newCreateCmd())
	rootCmd.AddCommand(newEvolveCmd())
	rootCmd.AddCommand(newSubmitCmd())

	return rootCmd
}

// ReportError prints a command failure. Refusals that left the repository
// untouched are printed as is; anything else is marked as an error.
func ReportError(w io.Writer, err error) {
	if prmanerrors.IsValidation(err) {
		fmt.Fprintln(w, err)
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
}
