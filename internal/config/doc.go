// Package config manages prman configuration and state persistence.
//
// It handles:
//   - Layered configuration (flags, PRMAN_ environment, config files, defaults)
//   - The evolve checkpoint written when a propagation pauses on a merge conflict
//   - The repository lock that keeps two prman processes off the same working tree
package config
