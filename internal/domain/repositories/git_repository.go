package repositories

import (
	"context"

	"github.com/rios0rios0/depsync/internal/domain/entities"
)

// GitRepository is the set of git operations run against the target
// repository working tree.
type GitRepository interface {
	// Root is the working tree directory every command runs in.
	Root() string

	// HasChanges reports whether 'git status --porcelain' prints anything.
	HasChanges(ctx context.Context) (bool, error)

	// Commit stages tracked changes and commits them with the given author,
	// who is also used as committer.
	Commit(ctx context.Context, message, authorName, authorEmail string) error

	// Push pushes HEAD to refs/heads/<branch> of <user>/<repo> on GitHub
	// using the token of auth. Arguments and output are never logged.
	Push(ctx context.Context, auth entities.GitHubAuth, repo, branch string) error

	// IndexMode returns the staged mode of path, or ok=false when path is
	// not in the index.
	IndexMode(ctx context.Context, path string) (mode string, ok bool, err error)

	// UpdateIndexMode adds path to the index with the executable bit set or
	// cleared.
	UpdateIndexMode(ctx context.Context, path string, executable bool) error

	// LsRemoteHeads returns the raw 'git ls-remote --heads' output.
	LsRemoteHeads(ctx context.Context, repository, ref string) (string, error)

	// SubmoduleStatus returns the raw 'git submodule status --cached' output.
	SubmoduleStatus(ctx context.Context, path string) (string, error)

	// FetchAndCheckout moves the submodule at path to commit after fetching
	// ref from repository.
	FetchAndCheckout(ctx context.Context, path, repository, ref, commit string) error
}
