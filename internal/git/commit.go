package git

import (
	"context"
	"fmt"
	"strings"
)

// CommitInfo describes a single commit
type CommitInfo struct {
	Hash  string
	Title string
	Body  string
}

// SplitCommitMessage splits a raw commit message into its subject line and body
func SplitCommitMessage(message string) (string, string) {
	title, body, _ := strings.Cut(strings.TrimSpace(message), "\n")
	return strings.TrimSpace(title), strings.TrimSpace(body)
}

// AmendMessage rewrites the message of the commit at HEAD without touching its tree
func (r *CommandRunner) AmendMessage(ctx context.Context, message string) error {
	_, err := r.Run(ctx, "commit", "--amend", "--allow-empty", "-m", message)
	if err != nil {
		return fmt.Errorf("failed to amend commit message: %w", err)
	}
	return nil
}
