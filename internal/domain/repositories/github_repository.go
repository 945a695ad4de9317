package repositories

import (
	"context"

	"github.com/rios0rios0/depsync/internal/domain/entities"
)

// GitHubRepository is the subset of the GitHub REST API depsync needs.
type GitHubRepository interface {
	GetFileContents(ctx context.Context, path string, project entities.GitHubProject, ref string) (string, error)
	GetTree(ctx context.Context, project entities.GitHubProject, sha string) (*entities.GitTree, error)
	GetCommit(ctx context.Context, project entities.GitHubProject, sha string) (*entities.GitCommit, error)

	// CreatePullRequest opens a pull request on project. SourceBranch of input
	// is the "<user>:<branch>" head.
	CreatePullRequest(
		ctx context.Context,
		project entities.GitHubProject,
		input entities.PullRequestInput,
	) (*entities.PullRequest, error)

	// FindPullRequestByHead returns the newest open pull request on project
	// whose head starts with headPrefix and was opened by author, or nil.
	FindPullRequestByHead(
		ctx context.Context,
		project entities.GitHubProject,
		headPrefix, author string,
	) (*entities.GitHubPullRequest, error)
}
