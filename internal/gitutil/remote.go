package gitutil

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/storage/memory"

	"github.com/template-doctor/template-doctor/internal/core"
)

// Preflight checks template repositories before any workflow is dispatched,
// so callers get a fast 400 instead of burning a workflow run on a repo that
// does not exist.
type Preflight struct {
	logger *slog.Logger
}

// NewPreflight creates a Preflight checker.
func NewPreflight(logger *slog.Logger) *Preflight {
	return &Preflight{logger: logger}
}

// CheckRepo lists the remote's references (the equivalent of git ls-remote,
// no clone) and verifies the repository is reachable. When branch is non-empty
// it must exist on the remote.
func (p *Preflight) CheckRepo(ctx context.Context, owner, repo, branch string) error {
	remote := git.NewRemote(memory.NewStorage(), &gitconfig.RemoteConfig{
		Name: "origin",
		URLs: []string{CloneURL(owner, repo)},
	})

	refs, err := remote.ListContext(ctx, &git.ListOptions{})
	if err != nil {
		p.logger.Warn("template repository preflight failed", "repo", owner+"/"+repo, "error", err)
		return core.WrapError(core.KindInvalidFormat,
			fmt.Sprintf("template repository %s/%s is not reachable", owner, repo), err)
	}
	if branch == "" {
		return nil
	}

	want := plumbing.NewBranchReferenceName(branch)
	for _, ref := range refs {
		if ref.Name() == want {
			return nil
		}
	}
	return core.NewError(core.KindInvalidFormat,
		fmt.Sprintf("branch %q not found in %s/%s", branch, owner, repo))
}
