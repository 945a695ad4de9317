package git

import (
	"errors"
	"fmt"
	"strings"

	gogit "github.com/go-git/go-git/v5"

	"github.com/rios0rios0/depsync/internal/domain/entities"
)

const originRemote = "origin"

// DiscoverRoot returns the root of the working tree containing dir.
func DiscoverRoot(dir string) (string, error) {
	repo, err := gogit.PlainOpenWithOptions(dir, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", fmt.Errorf("failed to open git repository at %q: %w", dir, err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("failed to open worktree at %q: %w", dir, err)
	}
	return worktree.Filesystem.Root(), nil
}

// OriginProject reads the GitHub project of the origin remote, or nil when
// there is no origin or it is not hosted on GitHub.
func OriginProject(root string) (*entities.GitHubProject, error) {
	repo, err := gogit.PlainOpen(root)
	if err != nil {
		return nil, fmt.Errorf("failed to open git repository at %q: %w", root, err)
	}

	remote, err := repo.Remote(originRemote)
	if errors.Is(err, gogit.ErrRemoteNotFound) {
		return nil, nil //nolint:nilnil // no origin is not an error
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read remote %q: %w", originRemote, err)
	}

	urls := remote.Config().URLs
	if len(urls) == 0 {
		return nil, nil //nolint:nilnil // remote without URL
	}

	project, err := entities.ParseGitHubURL(sshToHTTPS(urls[0]))
	if err != nil {
		return nil, nil //nolint:nilerr,nilnil // non-GitHub remotes give no defaults
	}
	return &project, nil
}

// sshToHTTPS rewrites "git@github.com:owner/name.git" into an https URL.
func sshToHTTPS(remoteURL string) string {
	if rest, ok := strings.CutPrefix(remoteURL, "git@"); ok {
		host, path, found := strings.Cut(rest, ":")
		if found {
			return "https://" + host + "/" + path
		}
	}
	return remoteURL
}
