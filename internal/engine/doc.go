// Package engine propagates changes through a stack of dependent pull requests.
//
// It is the core of prman, responsible for:
//   - Building the dependency tree of open pull requests and ordering it parent-first
//   - Checking that every branch about to be rewritten is in sync with its remote
//   - Replaying merges down the tree, checkpointing when a merge needs manual resolution
//   - Rebasing direct dependents onto the root branch after a pull request lands
//
// Git and the review platform are reached only through the VersionControl and
// CodeReview ports, and the checkpoint only through CheckpointStore.
package engine
