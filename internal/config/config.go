package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// RepoConfigFile is the per-repository config file name, read from the repository root
const RepoConfigFile = ".prman.yaml"

// Config represents the complete prman configuration
type Config struct {
	// RootBranch is the branch every stack terminates at; empty means detect from the remote
	RootBranch string `mapstructure:"root_branch"`
	// Remote is the remote branches are pushed to and fetched from
	Remote string `mapstructure:"remote"`
	// CheckpointFile holds a paused evolve, relative to the repository root
	CheckpointFile string `mapstructure:"checkpoint_file"`
	// LockFile guards the working tree during evolve and submit, relative to the repository root
	LockFile string       `mapstructure:"lock_file"`
	Verbose  bool         `mapstructure:"verbose"`
	GitHub   GitHubConfig `mapstructure:"github"`
	Log      LogConfig    `mapstructure:"log"`
}

// GitHubConfig controls access to the review platform
type GitHubConfig struct {
	Token string `mapstructure:"token"`
	// AppID, InstallationID and PrivateKeyPath enable GitHub App authentication instead of a token
	AppID          int64  `mapstructure:"app_id"`
	InstallationID int64  `mapstructure:"installation_id"`
	PrivateKeyPath string `mapstructure:"private_key_path"`
	// MergeMethod is used when landing: "squash", "merge" or "rebase"
	MergeMethod string `mapstructure:"merge_method"`
}

// UsesApp reports whether GitHub App credentials are configured
func (c GitHubConfig) UsesApp() bool {
	return c.AppID != 0 && c.InstallationID != 0 && c.PrivateKeyPath != ""
}

// LogConfig controls the rotating debug log file
type LogConfig struct {
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// LoadOptions selects the config sources beyond defaults and environment
type LoadOptions struct {
	// RepoRoot is searched for RepoConfigFile
	RepoRoot string
	// ConfigFile replaces the user and repository config files when set
	ConfigFile string
	// Flags are bound over every other source
	Flags *pflag.FlagSet
}

// SetDefaults registers the default value of every key on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("root_branch", "")
	v.SetDefault("remote", "origin")
	v.SetDefault("checkpoint_file", filepath.Join(".git", ".prman_evolve"))
	v.SetDefault("lock_file", filepath.Join(".git", "prman.lock"))
	v.SetDefault("verbose", false)

	v.SetDefault("github.token", "")
	v.SetDefault("github.app_id", 0)
	v.SetDefault("github.installation_id", 0)
	v.SetDefault("github.private_key_path", "")
	v.SetDefault("github.merge_method", "squash")

	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 1)
	v.SetDefault("log.max_backups", 2)
	v.SetDefault("log.max_age_days", 30)
}

// Default returns the configuration with only defaults applied
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg := &Config{}
	_ = v.Unmarshal(cfg)
	return cfg
}

// Load reads configuration from flags, PRMAN_ environment variables, config files and defaults,
// in that order of precedence.
func Load(opts LoadOptions) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix("PRMAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", opts.ConfigFile, err)
		}
	} else {
		for _, path := range []string{UserConfigPath(), repoConfigPath(opts.RepoRoot)} {
			if path == "" || !fileExists(path) {
				continue
			}
			v.SetConfigFile(path)
			if err := v.MergeInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		}
	}

	if opts.Flags != nil {
		if flag := opts.Flags.Lookup("verbose"); flag != nil {
			if err := v.BindPFlag("verbose", flag); err != nil {
				return nil, fmt.Errorf("failed to bind verbose flag: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations prman cannot run with
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Remote) == "" {
		return fmt.Errorf("invalid config: remote must not be empty")
	}
	if strings.TrimSpace(c.CheckpointFile) == "" {
		return fmt.Errorf("invalid config: checkpoint_file must not be empty")
	}
	if strings.TrimSpace(c.LockFile) == "" {
		return fmt.Errorf("invalid config: lock_file must not be empty")
	}
	switch c.GitHub.MergeMethod {
	case "squash", "merge", "rebase":
	default:
		return fmt.Errorf("invalid config: github.merge_method must be squash, merge or rebase, got %q", c.GitHub.MergeMethod)
	}
	return nil
}

// ResolveRootBranch returns the configured root branch, else the branch the
// remote HEAD points at, else "main"
func (c *Config) ResolveRootBranch(detect func(remote string) (string, error)) string {
	if c.RootBranch != "" {
		return c.RootBranch
	}
	if detect != nil {
		if branch, err := detect(c.Remote); err == nil && branch != "" {
			return branch
		}
	}
	return "main"
}

// UserConfigPath returns $XDG_CONFIG_HOME/prman/config.yaml, falling back to ~/.config
func UserConfigPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "prman", "config.yaml")
}

func repoConfigPath(repoRoot string) string {
	if repoRoot == "" {
		return ""
	}
	return filepath.Join(repoRoot, RepoConfigFile)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
