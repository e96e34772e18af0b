package cli

import (
	"github.com/spf13/cobra"

	"prman.dev/prman/internal/output"
	"prman.dev/prman/internal/runtime"
	"prman.dev/prman/internal/utils"
)

// run provides a runtime context built from the command's flags to fn
func run(cmd *cobra.Command, fn func(rc *runtime.Context) error) error {
	configFile, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}

	rc, err := runtime.GetContext(runtime.Options{
		ConfigFile: configFile,
		Flags:      cmd.Flags(),
	})
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()

	return fn(rc)
}

func isInteractive() bool {
	return utils.IsInteractive() && output.IsTTY()
}
