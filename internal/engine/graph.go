package engine

import (
	"fmt"
	"slices"

	prmanerrors "prman.dev/prman/internal/errors"
)

// DependencyTree maps each branch to the compare branches of the pull requests based on it
type DependencyTree struct {
	root      string
	children  map[string][]string
	byCompare map[string]PullRequest
	prs       []PullRequest
}

// BuildDependencyTree builds the base -> compare adjacency of prs.
// Children keep the order in which their pull requests appear in prs.
func BuildDependencyTree(root string, prs []PullRequest) *DependencyTree {
	tree := &DependencyTree{
		root:      root,
		children:  make(map[string][]string),
		byCompare: make(map[string]PullRequest, len(prs)),
		prs:       prs,
	}
	for _, pr := range prs {
		tree.children[pr.Base] = append(tree.children[pr.Base], pr.Compare)
		tree.byCompare[pr.Compare] = pr
	}
	return tree
}

// Root returns the root branch name
func (t *DependencyTree) Root() string {
	return t.root
}

// Children returns the compare branches of pull requests based on branch
func (t *DependencyTree) Children(branch string) []string {
	return t.children[branch]
}

// Validate checks that the tree is an arborescence rooted at the root branch:
// every compare branch heads exactly one pull request, every base is the root
// or another pull request's compare branch, and every branch is reachable from the root.
func (t *DependencyTree) Validate() error {
	inDegree := make(map[string]int, len(t.prs))
	for _, pr := range t.prs {
		if pr.Compare == t.root {
			return prmanerrors.NewNotArborescenceError(pr.Compare, fmt.Sprintf("#%d merges the root branch into %s", pr.Number, pr.Base))
		}
		inDegree[pr.Compare]++
		if inDegree[pr.Compare] > 1 {
			return prmanerrors.NewNotArborescenceError(pr.Compare, "branch is the head of more than one pull request")
		}
	}

	for _, pr := range t.prs {
		if pr.Base != t.root && inDegree[pr.Base] == 0 {
			return prmanerrors.NewNotArborescenceError(pr.Base, fmt.Sprintf("base of #%d is neither the root branch nor the head of an open pull request", pr.Number))
		}
	}

	reached := make(map[string]bool, len(t.prs))
	queue := []string{t.root}
	for len(queue) > 0 {
		branch := queue[0]
		queue = queue[1:]
		for _, child := range t.children[branch] {
			if !reached[child] {
				reached[child] = true
				queue = append(queue, child)
			}
		}
	}
	for _, pr := range t.prs {
		if !reached[pr.Compare] {
			return prmanerrors.NewNotArborescenceError(pr.Compare, "branch is part of a cycle and unreachable from the root branch")
		}
	}

	return nil
}

// Order returns the pull requests parent-first: reverse post-order of a
// depth-first walk from the root, with the root itself dropped.
func (t *DependencyTree) Order() []PullRequest {
	type frame struct {
		branch string
		next   int
	}

	visited := map[string]bool{t.root: true}
	stack := []frame{{branch: t.root}}
	postOrder := make([]string, 0, len(t.prs)+1)

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		kids := t.children[top.branch]
		if top.next < len(kids) {
			child := kids[top.next]
			top.next++
			if !visited[child] {
				visited[child] = true
				stack = append(stack, frame{branch: child})
			}
			continue
		}
		postOrder = append(postOrder, top.branch)
		stack = stack[:len(stack)-1]
	}

	slices.Reverse(postOrder)
	ordered := make([]PullRequest, 0, len(t.prs))
	for _, branch := range postOrder[1:] {
		ordered = append(ordered, t.byCompare[branch])
	}
	return ordered
}

// ValidateArborescence reports whether prs form a tree rooted at root
func ValidateArborescence(root string, prs []PullRequest) error {
	return BuildDependencyTree(root, prs).Validate()
}

// SortPullRequests validates prs as a tree rooted at root and returns them parent-first
func SortPullRequests(root string, prs []PullRequest) ([]PullRequest, error) {
	tree := BuildDependencyTree(root, prs)
	if err := tree.Validate(); err != nil {
		return nil, err
	}
	return tree.Order(), nil
}

// BranchToPrNumber maps each compare branch to its pull request number
func BranchToPrNumber(prs []PullRequest) map[string]int {
	m := make(map[string]int, len(prs))
	for _, pr := range prs {
		m[pr.Compare] = pr.Number
	}
	return m
}

// Dependents returns the pull requests based directly on branch
func Dependents(prs []PullRequest, branch string) []PullRequest {
	var deps []PullRequest
	for _, pr := range prs {
		if pr.Base == branch {
			deps = append(deps, pr)
		}
	}
	return deps
}

// FindByCompare returns the pull request whose compare branch is branch
func FindByCompare(prs []PullRequest, branch string) (PullRequest, bool) {
	for _, pr := range prs {
		if pr.Compare == branch {
			return pr, true
		}
	}
	return PullRequest{}, false
}

// FindByNumber returns the pull request with the given number
func FindByNumber(prs []PullRequest, number int) (PullRequest, bool) {
	for _, pr := range prs {
		if pr.Number == number {
			return pr, true
		}
	}
	return PullRequest{}, false
}

// Numbers returns the pull request numbers in order
func Numbers(prs []PullRequest) []int {
	numbers := make([]int, len(prs))
	for i, pr := range prs {
		numbers[i] = pr.Number
	}
	return numbers
}
