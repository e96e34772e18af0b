// Package actions provides the bodies of the prman commands.
//
// Each action corresponds to a command (create, evolve, submit): it validates
// the repository, wires the engine to the ports in runtime.Context and reports
// progress to the operator through Splog.
package actions
