package cli

import (
	"github.com/spf13/cobra"

	"prman.dev/prman/internal/actions"
	"prman.dev/prman/internal/runtime"
)

// newEvolveCmd creates the evolve command
func newEvolveCmd() *cobra.Command {
	var cont bool

	cmd := &cobra.Command{
		Use:   "evolve",
		Short: "Merge upstream changes into every stacked pull request",
		Long: `Merge the root branch into the pull requests based on it, then each pull
request into the ones stacked on it, pushing every branch along the way.

Every branch must match its remote before anything is touched. When a merge
stops with conflicts, resolve and commit them, then run "prman evolve --continue".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, func(rc *runtime.Context) error {
				_, err := actions.EvolveAction(cmd.Context(), rc, actions.EvolveOptions{Continue: cont})
				return err
			})
		},
	}

	cmd.Flags().BoolVarP(&cont, "continue", "c", false, "Resume a propagation stopped by a merge conflict")

	return cmd
}
