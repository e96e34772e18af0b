// Package git provides low-level Git operations.
//
// It wraps git command execution and go-git repository access for:
//   - Branch management (create, checkout, list)
//   - Commit operations (amend, head commit info)
//   - Remote operations (push, dry-run push, fetch, pull)
//   - History rewriting (merge, rebase --onto)
//
// This package should be the only place where direct git commands are executed.
package git
