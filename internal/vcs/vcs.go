// Package vcs switches the shared repository working tree between chapter
// branches.
package vcs

import (
	"context"
	"fmt"
	"strings"

	"git.home.luguber.info/inful/chapterbuilder/internal/config"
	"git.home.luguber.info/inful/chapterbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/chapterbuilder/internal/toolexec"
	"github.com/go-git/go-git/v5"
)

// Checkouter switches the working tree to a branch.
type Checkouter interface {
	// Checkout switches the working tree to branch. It blocks until done.
	Checkout(ctx context.Context, branch string) error
	// Head returns the abbreviated commit hash of the current HEAD.
	Head() (string, error)
}

// New returns the backend selected in cfg.
func New(cfg *config.Config, runner toolexec.Runner) (Checkouter, error) {
	switch cfg.Repository.VCS {
	case config.VCSGoGit:
		return NewGoGit(cfg.RepoPath()), nil
	case config.VCSCLI, "":
		return NewCLI(cfg.Tools.Git, cfg.RepoPath(), runner), nil
	default:
		return nil, errors.ConfigError(fmt.Sprintf("unknown vcs backend %q", cfg.Repository.VCS)).Build()
	}
}

const shortHashLen = 7

// head reads HEAD with go-git. Both backends use it so logs and the journal
// report commits the same way.
func head(repoPath string) (string, error) {
	repo, err := git.PlainOpen(repoPath)
	if err != nil {
		return "", fmt.Errorf("open repository: %w", err)
	}
	ref, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}
	h := ref.Hash().String()
	if len(h) > shortHashLen {
		h = h[:shortHashLen]
	}
	return h, nil
}

func checkoutFailed(branch string, cause error) *errors.ErrorBuilder {
	return errors.GitError(fmt.Sprintf("checkout of branch %s failed", branch)).
		WithCause(cause).
		WithContext("branch", branch)
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[i+1:])
	}
	return s
}
