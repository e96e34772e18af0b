package git

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"

	prmanerrors "prman.dev/prman/internal/errors"
	"prman.dev/prman/internal/output"
)

// CommandRunner handles execution of git commands.
// Commands are never given a deadline: merges and fetches may wait on the
// operator (credentials, hooks), and cancellation is left to the caller's context.
type CommandRunner struct {
	workingDir string
	splog      *output.Splog
}

// NewCommandRunner creates a new CommandRunner. splog may be nil.
func NewCommandRunner(workingDir string, splog *output.Splog) *CommandRunner {
	return &CommandRunner{workingDir: workingDir, splog: splog}
}

func (r *CommandRunner) debug(format string, args ...interface{}) {
	if r.splog != nil {
		r.splog.Debug(format, args...)
	}
}

// Run executes a git command and returns its trimmed stdout
func (r *CommandRunner) Run(ctx context.Context, args ...string) (string, error) {
	stdout, _, err := r.RunCaptured(ctx, args...)
	return stdout, err
}

// RunCaptured executes a git command and returns trimmed stdout and stderr.
// Some commands (push) report their result on stderr even on success.
func (r *CommandRunner) RunCaptured(ctx context.Context, args ...string) (string, string, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	r.debug("executing command \"git %s\"", strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, "git", args...)
	if r.workingDir != "" {
		cmd.Dir = r.workingDir
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	outStr := strings.TrimSpace(stdout.String())
	errStr := strings.TrimSpace(stderr.String())
	if err != nil {
		r.debug("\"git %s\" failed: %v\nstdout:\n%s\nstderr:\n%s", strings.Join(args, " "), err, outStr, errStr)
		return outStr, errStr, prmanerrors.NewCommandError("git", args, outStr, errStr, err)
	}
	r.debug("\"git %s\" exited with status 0", strings.Join(args, " "))
	return outStr, errStr, nil
}

// RunInteractive executes a git command with stdin/stdout/stderr connected to
// the terminal, so the operator sees merge output and can answer credential prompts.
func (r *CommandRunner) RunInteractive(ctx context.Context, args ...string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	r.debug("executing interactive command \"git %s\"", strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, "git", args...)
	if r.workingDir != "" {
		cmd.Dir = r.workingDir
	}
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		r.debug("\"git %s\" failed: %v", strings.Join(args, " "), err)
		return prmanerrors.NewCommandError("git", args, "", "", err)
	}
	return nil
}

// RunGH executes a gh command and returns its trimmed stdout
func (r *CommandRunner) RunGH(ctx context.Context, args ...string) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	cmd := exec.CommandContext(ctx, "gh", args...)
	if r.workingDir != "" {
		cmd.Dir = r.workingDir
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", prmanerrors.NewCommandError("gh", args, stdout.String(), stderr.String(), err)
	}
	return strings.TrimSpace(stdout.String()), nil
}
