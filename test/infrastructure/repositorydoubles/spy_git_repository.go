//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/depsync/internal/domain/entities"
	"github.com/rios0rios0/depsync/internal/domain/repositories"
)

// SpyGitRepository implements repositories.GitRepository as a configurable
// spy. Operations are appended to Calls in invocation order.
type SpyGitRepository struct {
	RootDir string
	Calls   []string

	// --- HasChanges ---
	Changes    bool
	ChangesErr error

	// --- Commit ---
	CommitErr      error
	CommitMessages []string
	CommitAuthor   string
	CommitEmail    string

	// --- Push ---
	PushErr    error
	PushedRepo string
	PushedTo   string
	PushAuth   entities.GitHubAuth

	// --- IndexMode / UpdateIndexMode ---
	// IndexModes maps a full path to its staged mode; missing means not indexed.
	IndexModes       map[string]string
	UpdatedIndexMode map[string]bool

	// --- LsRemoteHeads / SubmoduleStatus ---
	LsRemoteOutput  string
	SubmoduleOutput string

	// --- FetchAndCheckout ---
	FetchErr        error
	CheckedOutPaths []string
	CheckedOut      string
}

var _ repositories.GitRepository = (*SpyGitRepository)(nil)

func (s *SpyGitRepository) Root() string { return s.RootDir }

func (s *SpyGitRepository) HasChanges(_ context.Context) (bool, error) {
	s.Calls = append(s.Calls, "status")
	return s.Changes, s.ChangesErr
}

func (s *SpyGitRepository) Commit(_ context.Context, message, authorName, authorEmail string) error {
	s.Calls = append(s.Calls, "commit")
	s.CommitMessages = append(s.CommitMessages, message)
	s.CommitAuthor = authorName
	s.CommitEmail = authorEmail
	return s.CommitErr
}

func (s *SpyGitRepository) Push(_ context.Context, auth entities.GitHubAuth, repo, branch string) error {
	s.Calls = append(s.Calls, "push")
	s.PushAuth = auth
	s.PushedRepo = repo
	s.PushedTo = branch
	return s.PushErr
}

func (s *SpyGitRepository) IndexMode(_ context.Context, path string) (string, bool, error) {
	s.Calls = append(s.Calls, "ls-files")
	mode, ok := s.IndexModes[path]
	return mode, ok, nil
}

func (s *SpyGitRepository) UpdateIndexMode(_ context.Context, path string, executable bool) error {
	s.Calls = append(s.Calls, "update-index")
	if s.UpdatedIndexMode == nil {
		s.UpdatedIndexMode = make(map[string]bool)
	}
	s.UpdatedIndexMode[path] = executable
	return nil
}

func (s *SpyGitRepository) LsRemoteHeads(_ context.Context, _, _ string) (string, error) {
	s.Calls = append(s.Calls, "ls-remote")
	return s.LsRemoteOutput, nil
}

func (s *SpyGitRepository) SubmoduleStatus(_ context.Context, _ string) (string, error) {
	s.Calls = append(s.Calls, "submodule status")
	return s.SubmoduleOutput, nil
}

func (s *SpyGitRepository) FetchAndCheckout(_ context.Context, path, _, _, commit string) error {
	s.Calls = append(s.Calls, "fetch", "checkout")
	s.CheckedOutPaths = append(s.CheckedOutPaths, path)
	s.CheckedOut = commit
	return s.FetchErr
}
