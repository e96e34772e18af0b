package actions

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"prman.dev/prman/internal/engine"
	prmanerrors "prman.dev/prman/internal/errors"
	"prman.dev/prman/internal/output"
	"prman.dev/prman/internal/runtime"
	"prman.dev/prman/internal/utils"
)

// DependsOnFooter is appended to the body of a pull request stacked on another one
const DependsOnFooter = "\n\ndepends on #%d"

// CreateOptions contains options for the create command
type CreateOptions struct {
	// DependsOn is the number of the pull request to stack on ("12" or "#12").
	// Empty, "root" or the root branch name target the root branch.
	DependsOn string
	// Title overrides the title taken from the last commit
	Title string
	Draft bool
	// NoEdit skips the title prompt
	NoEdit bool
	Web    bool
	// Interactive allows prompting the operator
	Interactive bool
}

// CreateAction opens a pull request for the current branch, based on the root
// branch or on the head of another open pull request. The branch is pushed
// only once the title is settled. It returns the URL of the new pull request.
func CreateAction(ctx context.Context, rc *runtime.Context, opts CreateOptions) (string, error) {
	splog := rc.Splog

	if err := ensureCleanWorkingTree(rc); err != nil {
		return "", err
	}

	current, err := rc.VCS.CurrentBranch()
	if err != nil {
		return "", fmt.Errorf("failed to get current branch: %w", err)
	}
	if current == rc.Root {
		return "", fmt.Errorf("cannot open a pull request from the root branch %s", rc.Root)
	}

	review, err := rc.CodeReview(ctx)
	if err != nil {
		return "", err
	}

	base := rc.Root
	dependsOn := 0
	if !targetsRoot(opts.DependsOn, rc.Root) {
		prs, err := listOpenPullRequests(ctx, rc, review)
		if err != nil {
			return "", err
		}
		dep, err := resolveDependency(opts.DependsOn, prs)
		if err != nil {
			return "", err
		}
		base = dep.Compare
		dependsOn = dep.Number
	}

	head, err := rc.VCS.LastCommitInfo()
	if err != nil {
		return "", fmt.Errorf("failed to read last commit: %w", err)
	}

	title := head.Title
	if opts.Title != "" {
		title = opts.Title
	}
	body := head.Body
	if dependsOn != 0 {
		body += fmt.Sprintf(DependsOnFooter, dependsOn)
	}

	if opts.Interactive && !opts.NoEdit {
		title, err = promptTitle(title)
		if err != nil {
			return "", err
		}
	}

	if err := rc.VCS.Push(ctx, current); err != nil {
		return "", err
	}

	url, err := review.CreatePullRequest(ctx, engine.CreateRequest{
		Head:  current,
		Base:  base,
		Title: title,
		Body:  body,
		Draft: opts.Draft,
	})
	if err != nil {
		return "", err
	}

	splog.Info("Created %s <- %s: %s", output.ColorBranchName(base, false), output.ColorBranchName(current, true), url)
	if opts.Web {
		if err := utils.OpenBrowser(url); err != nil {
			splog.Warn("failed to open browser: %v", err)
		}
	}
	return url, nil
}

func targetsRoot(dependsOn, root string) bool {
	return dependsOn == "" || dependsOn == "root" || dependsOn == root
}

func resolveDependency(reference string, prs []engine.PullRequest) (engine.PullRequest, error) {
	number, err := strconv.Atoi(strings.TrimPrefix(reference, "#"))
	if err == nil {
		if pr, ok := engine.FindByNumber(prs, number); ok {
			return pr, nil
		}
		reference = fmt.Sprintf("#%d", number)
	}
	return engine.PullRequest{}, prmanerrors.NewUnknownPullRequestError(reference, engine.Numbers(prs))
}
