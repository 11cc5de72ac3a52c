package vcs

import (
	"context"
	stderrors "errors"
	"log/slog"

	"git.home.luguber.info/inful/chapterbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/chapterbuilder/internal/logfields"
	"git.home.luguber.info/inful/chapterbuilder/internal/toolexec"
)

// CLI checks out branches by running the git binary in the repository.
type CLI struct {
	gitPath  string
	repoPath string
	runner   toolexec.Runner
}

// NewCLI returns a CLI backend. An empty gitPath means "git" from PATH.
func NewCLI(gitPath, repoPath string, runner toolexec.Runner) *CLI {
	if gitPath == "" {
		gitPath = "git"
	}
	return &CLI{gitPath: gitPath, repoPath: repoPath, runner: runner}
}

// Invocation returns the command Checkout runs for branch.
func (c *CLI) Invocation(branch string) toolexec.Invocation {
	return toolexec.Invocation{
		Tool: "git",
		Path: c.gitPath,
		Args: []string{"checkout", branch},
		Dir:  c.repoPath,
	}
}

func (c *CLI) Checkout(ctx context.Context, branch string) error {
	inv := c.Invocation(branch)
	res, err := c.runner.Run(ctx, inv)
	if err != nil {
		if stderrors.Is(err, toolexec.ErrInterrupted) {
			return errors.RuntimeError("checkout interrupted").WithCause(err).WithContext("branch", branch).Build()
		}
		return checkoutFailed(branch, err).WithContext("tool", c.gitPath).Build()
	}
	if !res.Success {
		slog.Debug("git checkout failed", logfields.Branch(branch), logfields.ExitCode(res.ExitCode))
		return errors.GitError("checkout of branch "+branch+" failed").
			WithContext("branch", branch).
			WithContext("exit_code", res.ExitCode).
			WithContext("stderr", lastLine(res.Stderr)).
			Build()
	}
	return nil
}

func (c *CLI) Head() (string, error) {
	return head(c.repoPath)
}
