package cli

import (
	"github.com/spf13/cobra"

	"prman.dev/prman/internal/actions"
	"prman.dev/prman/internal/runtime"
)

// newSubmitCmd creates the submit command
func newSubmitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "submit",
		Short: "Land the current branch's pull request and rebase its dependents",
		Long: `Merge the pull request of the current branch into the root branch, then
rebase the pull requests stacked directly on it onto the updated root and
force-push them. Only pull requests based on the root branch can be submitted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, func(rc *runtime.Context) error {
				_, err := actions.SubmitAction(cmd.Context(), rc)
				return err
			})
		},
	}
}
