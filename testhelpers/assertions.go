// Package testhelpers provides testing utilities for prman, including temporary
// git repositories, in-memory engine ports and a mock GitHub server.
package testhelpers

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Must is a generic helper function that panics if err is not nil,
// otherwise returns the value.
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// ExpectCommits asserts that the newest commit subjects of branch match expected.
func ExpectCommits(t *testing.T, repo *GitRepo, branch string, expected []string) {
	t.Helper()

	messages, err := repo.ListCommitMessages(branch)
	require.NoError(t, err, "Failed to list commits")
	require.GreaterOrEqual(t, len(messages), len(expected), "Not enough commits on %s", branch)
	require.Equal(t, expected, messages[:len(expected)], "Commits do not match")
}
