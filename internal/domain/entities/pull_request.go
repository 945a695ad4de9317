package entities

import (
	gitforgeEntities "github.com/rios0rios0/gitforge/domain/entities"
)

// PullRequestInput is re-exported from gitforge.
type PullRequestInput = gitforgeEntities.PullRequestInput

// PullRequest is re-exported from gitforge.
type PullRequest = gitforgeEntities.PullRequest

// GitHubUser identifies a GitHub account.
type GitHubUser struct {
	Login string
}

// GitHubHead is the source side of a pull request.
type GitHubHead struct {
	Label string
	Ref   string
	User  GitHubUser
}

// GitHubPullRequest is an open pull request found by head search.
type GitHubPullRequest struct {
	Number int
	Head   GitHubHead
	User   GitHubUser
}
