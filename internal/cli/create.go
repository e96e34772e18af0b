package cli

import (
	"github.com/spf13/cobra"

	"prman.dev/prman/internal/actions"
	"prman.dev/prman/internal/runtime"
)

// newCreateCmd creates the create command
func newCreateCmd() *cobra.Command {
	var (
		dependsOn string
		title     string
		draft     bool
		noEdit    bool
		web       bool
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Push the current branch and open a pull request for it",
		Long: `Push the current branch and open a pull request for it.

The pull request targets the root branch unless --depends-on names another open
pull request, in which case it targets that pull request's branch and its body
records the dependency. Title and body come from the last commit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, func(rc *runtime.Context) error {
				_, err := actions.CreateAction(cmd.Context(), rc, actions.CreateOptions{
					DependsOn:   dependsOn,
					Title:       title,
					Draft:       draft,
					NoEdit:      noEdit,
					Web:         web,
					Interactive: isInteractive(),
				})
				return err
			})
		},
	}

	cmd.Flags().StringVarP(&dependsOn, "depends-on", "d", "root", "Number of the pull request to stack on, or \"root\"")
	cmd.Flags().StringVarP(&title, "title", "t", "", "Pull request title (defaults to the last commit title)")
	cmd.Flags().BoolVar(&draft, "draft", false, "Open the pull request as a draft")
	cmd.Flags().BoolVarP(&noEdit, "no-edit", "n", false, "Don't prompt to confirm the title")
	cmd.Flags().BoolVarP(&web, "web", "w", false, "Open the new pull request in a browser")

	return cmd
}
