package runtime

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"prman.dev/prman/internal/config"
	"prman.dev/prman/internal/engine"
	"prman.dev/prman/internal/git"
	"prman.dev/prman/internal/github"
	"prman.dev/prman/internal/output"
)

// Context provides access to configuration, output and the engine ports for commands
type Context struct {
	Config   *config.Config
	Splog    *output.Splog
	RepoRoot string
	// Root is the resolved root branch every stack terminates at
	Root string

	VCS   engine.VersionControl
	Store engine.CheckpointStore

	review engine.CodeReview
	runner *git.CommandRunner
}

// Options selects the configuration sources of GetContext
type Options struct {
	// WorkingDir defaults to the process working directory
	WorkingDir string
	ConfigFile string
	Flags      *pflag.FlagSet
}

// NewContext creates a context from already built ports. review may be nil
// for commands that never talk to the review platform.
func NewContext(cfg *config.Config, splog *output.Splog, repoRoot, root string, vcs engine.VersionControl, store engine.CheckpointStore, review engine.CodeReview) *Context {
	return &Context{
		Config:   cfg,
		Splog:    splog,
		RepoRoot: repoRoot,
		Root:     root,
		VCS:      vcs,
		Store:    store,
		review:   review,
	}
}

// GetContext opens the repository containing the working directory, loads the
// configuration and wires the git adapter, checkpoint store and logger.
// The GitHub adapter is created on first use by CodeReview.
func GetContext(opts Options) (*Context, error) {
	dir := opts.WorkingDir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		dir = wd
	}

	repo, err := git.OpenRepository(dir)
	if err != nil {
		return nil, err
	}
	repoRoot := repo.GetRepoRoot()

	cfg, err := config.Load(config.LoadOptions{
		RepoRoot:   repoRoot,
		ConfigFile: opts.ConfigFile,
		Flags:      opts.Flags,
	})
	if err != nil {
		return nil, err
	}

	splog, err := output.NewSplogWithConfig(output.LogOptions{
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	}, cfg.Verbose)
	if err != nil {
		return nil, err
	}

	runner := git.NewCommandRunner(repoRoot, splog)
	root := cfg.ResolveRootBranch(repo.GetDefaultBranch)
	splog.Debug("repository %s, root branch %s, remote %s", repoRoot, root, cfg.Remote)

	c := NewContext(
		cfg,
		splog,
		repoRoot,
		root,
		engine.NewGitVersionControl(repo, runner, cfg.Remote),
		config.NewFileCheckpointStore(repoRoot, cfg.CheckpointFile),
		nil,
	)
	c.runner = runner
	return c, nil
}

// CodeReview returns the review platform adapter, connecting to GitHub on first use
func (c *Context) CodeReview(ctx context.Context) (engine.CodeReview, error) {
	if c.review != nil {
		return c.review, nil
	}
	if c.runner == nil {
		return nil, fmt.Errorf("no review platform configured")
	}

	remoteURL, err := c.runner.GetRemoteURL(ctx, c.Config.Remote)
	if err != nil {
		return nil, err
	}
	info, err := github.ParseGitHubRemoteURL(remoteURL)
	if err != nil {
		return nil, err
	}

	opts := github.ClientOptions{
		Hostname:       info.Hostname,
		AppID:          c.Config.GitHub.AppID,
		InstallationID: c.Config.GitHub.InstallationID,
		PrivateKeyPath: c.Config.GitHub.PrivateKeyPath,
	}
	if !c.Config.GitHub.UsesApp() {
		token, err := github.ResolveToken(ctx, c.Config.GitHub.Token, c.runner)
		if err != nil {
			return nil, err
		}
		opts.Token = token
	}

	client, err := github.NewClient(ctx, opts)
	if err != nil {
		return nil, err
	}
	c.Splog.Debug("using GitHub repository %s/%s on %s", info.Owner, info.Repo, info.Hostname)
	c.review = github.NewReview(client, info.Owner, info.Repo, c.Config.GitHub.MergeMethod, c.Splog)
	return c.review, nil
}

// LockPath returns the absolute path of the repository lock file
func (c *Context) LockPath() string {
	if filepath.IsAbs(c.Config.LockFile) {
		return c.Config.LockFile
	}
	return filepath.Join(c.RepoRoot, c.Config.LockFile)
}

// Close flushes and closes the log file
func (c *Context) Close() error {
	if c.Splog == nil {
		return nil
	}
	return c.Splog.Close()
}
