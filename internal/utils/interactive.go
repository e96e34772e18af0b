package utils

import (
	"os"

	"github.com/mattn/go-isatty"
)

// IsInteractive reports whether prman may prompt the operator.
// PRMAN_NON_INTERACTIVE forces prompts off.
func IsInteractive() bool {
	if os.Getenv("PRMAN_NON_INTERACTIVE") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
}
