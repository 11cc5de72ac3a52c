package vcs

import (
	"context"
	stderrors "errors"
	"fmt"

	"git.home.luguber.info/inful/chapterbuilder/internal/foundation/errors"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// GoGit checks out branches in-process with go-git. Like `git checkout`, it
// refuses to discard modified tracked files.
type GoGit struct {
	repoPath string
}

// NewGoGit returns a go-git backend for the repository at repoPath.
func NewGoGit(repoPath string) *GoGit {
	return &GoGit{repoPath: repoPath}
}

func (g *GoGit) Checkout(ctx context.Context, branch string) error {
	if err := ctx.Err(); err != nil {
		return errors.RuntimeError("checkout interrupted").WithCause(err).WithContext("branch", branch).Build()
	}

	repo, err := git.PlainOpen(g.repoPath)
	if err != nil {
		return checkoutFailed(branch, fmt.Errorf("open repository: %w", err)).
			WithContext("path", g.repoPath).
			Build()
	}
	wt, err := repo.Worktree()
	if err != nil {
		return checkoutFailed(branch, fmt.Errorf("worktree: %w", err)).Build()
	}

	localRef := plumbing.NewBranchReferenceName(branch)
	opts := &git.CheckoutOptions{Branch: localRef}

	if _, err := repo.Reference(localRef, true); err != nil {
		// Same fallback as `git checkout`: create the local branch from a
		// unique origin/<branch>.
		remoteRef, rerr := repo.Reference(plumbing.NewRemoteReferenceName("origin", branch), true)
		if rerr != nil {
			return checkoutFailed(branch, fmt.Errorf("branch not found: %w", err)).Build()
		}
		opts.Create = true
		opts.Hash = remoteRef.Hash()
	}

	if err := wt.Checkout(opts); err != nil {
		if stderrors.Is(err, git.ErrUnstagedChanges) {
			return checkoutFailed(branch, err).
				WithContext(errors.HintKey, "Commit or discard local changes in the repository before building.").
				Build()
		}
		return checkoutFailed(branch, err).Build()
	}
	return nil
}

func (g *GoGit) Head() (string, error) {
	return head(g.repoPath)
}
