//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"fmt"
	"sync"

	"github.com/rios0rios0/depsync/internal/domain/entities"
	"github.com/rios0rios0/depsync/internal/domain/repositories"
)

// SpyGitHubRepository implements repositories.GitHubRepository as a
// configurable spy. It is safe for concurrent use.
type SpyGitHubRepository struct {
	mu sync.Mutex

	// --- GetFileContents ---
	// Contents maps a remote path to its contents; unknown paths fail.
	Contents        map[string]string
	ContentsErr     error
	ContentRequests []ContentRequest

	// --- GetTree / GetCommit ---
	Trees        map[string]*entities.GitTree
	Commits      map[string]*entities.GitCommit
	TreeRequests []string

	// --- CreatePullRequest ---
	CreatedPR       *entities.PullRequest
	CreatePRErr     error
	CreatePRInputs  []entities.PullRequestInput
	CreatePRProject entities.GitHubProject

	// --- FindPullRequestByHead ---
	ExistingPR   *entities.GitHubPullRequest
	FindPRErr    error
	FindPRCalls  int
	FindPRAuthor string
	FindPRPrefix string
}

// ContentRequest records a single invocation of GetFileContents.
type ContentRequest struct {
	Path    string
	Project entities.GitHubProject
	Ref     string
}

var _ repositories.GitHubRepository = (*SpyGitHubRepository)(nil)

func (s *SpyGitHubRepository) GetFileContents(
	_ context.Context,
	path string,
	project entities.GitHubProject,
	ref string,
) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ContentRequests = append(s.ContentRequests, ContentRequest{Path: path, Project: project, Ref: ref})
	if s.ContentsErr != nil {
		return "", s.ContentsErr
	}
	content, ok := s.Contents[path]
	if !ok {
		return "", fmt.Errorf("no contents for %q", path)
	}
	return content, nil
}

func (s *SpyGitHubRepository) GetTree(
	_ context.Context,
	_ entities.GitHubProject,
	sha string,
) (*entities.GitTree, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.TreeRequests = append(s.TreeRequests, sha)
	tree, ok := s.Trees[sha]
	if !ok {
		return nil, fmt.Errorf("no tree %q", sha)
	}
	return tree, nil
}

func (s *SpyGitHubRepository) GetCommit(
	_ context.Context,
	_ entities.GitHubProject,
	sha string,
) (*entities.GitCommit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	commit, ok := s.Commits[sha]
	if !ok {
		return nil, fmt.Errorf("no commit %q", sha)
	}
	return commit, nil
}

func (s *SpyGitHubRepository) CreatePullRequest(
	_ context.Context,
	project entities.GitHubProject,
	input entities.PullRequestInput,
) (*entities.PullRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.CreatePRInputs = append(s.CreatePRInputs, input)
	s.CreatePRProject = project
	if s.CreatePRErr != nil {
		return nil, s.CreatePRErr
	}
	if s.CreatedPR != nil {
		return s.CreatedPR, nil
	}
	return &entities.PullRequest{ID: 1, Title: input.Title}, nil
}

func (s *SpyGitHubRepository) FindPullRequestByHead(
	_ context.Context,
	_ entities.GitHubProject,
	headPrefix, author string,
) (*entities.GitHubPullRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.FindPRCalls++
	s.FindPRPrefix = headPrefix
	s.FindPRAuthor = author
	return s.ExistingPR, s.FindPRErr
}
