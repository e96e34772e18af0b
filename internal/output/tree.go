package output

import (
	"strings"
)

// BranchAnnotation holds per-branch display metadata
type BranchAnnotation struct {
	// PRNumber is the pull request headed by the branch; zero for the root
	PRNumber    int
	CustomLabel string // Additional text to display after branch name
}

// StackTreeRenderer renders a branch tree with children drawn above their base
type StackTreeRenderer struct {
	currentBranch string
	root          string
	getChildren   func(branchName string) []string
	annotations   map[string]BranchAnnotation
}

// NewStackTreeRenderer creates a new tree renderer
func NewStackTreeRenderer(currentBranch, root string, getChildren func(branchName string) []string) *StackTreeRenderer {
	return &StackTreeRenderer{
		currentBranch: currentBranch,
		root:          root,
		getChildren:   getChildren,
		annotations:   make(map[string]BranchAnnotation),
	}
}

// SetAnnotation sets the annotation for a branch
func (r *StackTreeRenderer) SetAnnotation(branchName string, annotation BranchAnnotation) {
	r.annotations[branchName] = annotation
}

// RenderStack renders the root and all its descendants. The i-th child of a
// branch is indented i columns further than the branch, like `git log --graph`.
func (r *StackTreeRenderer) RenderStack() []string {
	type frame struct {
		branch string
		indent int
		next   int
	}

	var result []string
	seen := map[string]bool{r.root: true}
	stack := []frame{{branch: r.root}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		children := r.getChildren(top.branch)
		if top.next < len(children) {
			child := children[top.next]
			indent := top.indent + top.next
			top.next++
			if !seen[child] {
				seen[child] = true
				stack = append(stack, frame{branch: child, indent: indent})
			}
			continue
		}
		result = append(result, r.getBranchLines(top.branch, top.indent, len(children))...)
		stack = stack[:len(stack)-1]
	}
	return result
}

func (r *StackTreeRenderer) getBranchLines(branchName string, indentLevel, numChildren int) []string {
	var result []string

	if numChildren >= 2 {
		result = append(result, getBranchingLine(numChildren, indentLevel))
	}

	isCurrent := branchName == r.currentBranch
	symbol := "◯"
	if isCurrent {
		symbol = "◉"
	}

	prefix := strings.Repeat("│  ", indentLevel)
	line := prefix + symbol + " " + ColorBranchName(branchName, isCurrent) + r.formatAnnotation(r.annotations[branchName])
	result = append(result, line, prefix+"│")
	return result
}

func getBranchingLine(numChildren, indentLevel int) string {
	line := strings.Repeat("│  ", indentLevel) + "├"
	if numChildren > 2 {
		line += strings.Repeat("──┴", numChildren-2)
	}
	return line + "──┘"
}

func (r *StackTreeRenderer) formatAnnotation(annotation BranchAnnotation) string {
	var parts []string
	if annotation.PRNumber != 0 {
		parts = append(parts, ColorPRNumber(annotation.PRNumber))
	}
	if annotation.CustomLabel != "" {
		parts = append(parts, ColorDim(annotation.CustomLabel))
	}
	if len(parts) == 0 {
		return ""
	}
	return " " + strings.Join(parts, " ")
}
