package cli_test

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"prman.dev/prman/internal/cli"
	prmanerrors "prman.dev/prman/internal/errors"
	"prman.dev/prman/testhelpers"
)

func execute(t *testing.T, args ...string) error {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("PRMAN_NON_INTERACTIVE", "1")

	root := cli.NewRootCmd("dev", "none", "unknown")
	root.SetArgs(args)
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	return root.Execute()
}

func TestRootCmd(t *testing.T) {
	t.Run("registers the commands and persistent flags", func(t *testing.T) {
		root := cli.NewRootCmd("1.0.0", "abc", "today")

		var names []string
		for _, cmd := range root.Commands() {
			names = append(names, cmd.Name())
		}
		require.Subset(t, names, []string{"create", "evolve", "submit"})
		require.NotNil(t, root.PersistentFlags().Lookup("verbose"))
		require.NotNil(t, root.PersistentFlags().Lookup("config"))
		require.Equal(t, "1.0.0 (commit abc, built today)", root.Version)
	})

	t.Run("create flags", func(t *testing.T) {
		root := cli.NewRootCmd("dev", "none", "unknown")
		create, _, err := root.Find([]string{"create"})
		require.NoError(t, err)

		dependsOn := create.Flags().Lookup("depends-on")
		require.NotNil(t, dependsOn)
		require.Equal(t, "d", dependsOn.Shorthand)
		require.Equal(t, "root", dependsOn.DefValue)
		for _, name := range []string{"title", "draft", "no-edit", "web"} {
			require.NotNil(t, create.Flags().Lookup(name), name)
		}
	})

	t.Run("rejects positional arguments", func(t *testing.T) {
		require.Error(t, execute(t, "submit", "extra"))
	})

	t.Run("leaves error printing to the caller", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())
		root := cli.NewRootCmd("dev", "none", "unknown")
		var stderr bytes.Buffer
		root.SetArgs([]string{"submit", "extra"})
		root.SetOut(&bytes.Buffer{})
		root.SetErr(&stderr)

		require.Error(t, root.Execute())
		require.NotContains(t, stderr.String(), "Error:")
	})
}

func TestReportError(t *testing.T) {
	t.Run("prints a refusal without the error prefix", func(t *testing.T) {
		var out bytes.Buffer
		cli.ReportError(&out, fmt.Errorf("%w: evolve started by PID 42 on host", prmanerrors.ErrRepositoryLocked))
		require.Equal(t, "repository is locked by another prman process: evolve started by PID 42 on host\n", out.String())
	})

	t.Run("marks other failures as errors", func(t *testing.T) {
		var out bytes.Buffer
		cli.ReportError(&out, errors.New("network unreachable"))
		require.Equal(t, "Error: network unreachable\n", out.String())
	})
}

func TestCommandsAgainstRepository(t *testing.T) {
	t.Run("fail outside a repository", func(t *testing.T) {
		t.Chdir(t.TempDir())

		for _, args := range [][]string{{"evolve"}, {"evolve", "--continue"}, {"submit"}, {"create"}} {
			require.ErrorIs(t, execute(t, args...), prmanerrors.ErrNotRepository, "%v", args)
		}
	})

	t.Run("refuse a dirty working tree before any network call", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.RemoteSceneSetup)
		require.NoError(t, scene.Repo.CreateChange("dirty", "wip", false))

		for _, args := range [][]string{{"evolve"}, {"submit"}, {"create"}} {
			require.ErrorIs(t, execute(t, args...), prmanerrors.ErrDirtyWorkingTree, "%v", args)
		}
	})

	t.Run("continue with nothing pending", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.RemoteSceneSetup)

		err := execute(t, "evolve", "--continue", "--verbose")
		require.ErrorIs(t, err, prmanerrors.ErrNothingPending)
		require.NoFileExists(t, scene.Dir+"/.git/prman.lock")
	})

	t.Run("explicit config file must exist", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)

		err := execute(t, "evolve", "--config", scene.Dir+"/missing.yaml")
		require.Error(t, err)
		_, statErr := os.Stat(scene.Dir + "/.git/prman.lock")
		require.True(t, os.IsNotExist(statErr))
	})
}
