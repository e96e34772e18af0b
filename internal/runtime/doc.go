// Package runtime provides the execution context for prman commands.
//
// It encapsulates the configuration, logger and the adapters behind the engine
// ports, so actions receive a single value.
package runtime
