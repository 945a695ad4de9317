package entities

const (
	DefaultProjectRepoOwner  = "dotnet"
	DefaultProjectRepoBranch = "master"
)

// PullRequestConfig describes where pull requests are opened and who signs
// the commits.
type PullRequestConfig struct {
	Auth                  GitHubAuth
	ProjectRepo           string
	ProjectRepoOwner      string
	ProjectRepoBranch     string
	GitAuthorName         string
	NotifyGitHubUsers     []string
	CommitMessageOverride string
	Title                 string
	Body                  string
	AlwaysCreateNew       bool
}

// WithDefaults returns a copy with owner, branch and author filled in.
func (c PullRequestConfig) WithDefaults() PullRequestConfig {
	if c.ProjectRepoOwner == "" {
		c.ProjectRepoOwner = DefaultProjectRepoOwner
	}
	if c.ProjectRepoBranch == "" {
		c.ProjectRepoBranch = DefaultProjectRepoBranch
	}
	if c.GitAuthorName == "" {
		c.GitAuthorName = c.Auth.User
	}
	return c
}

// Validate checks the settings required to push and open a pull request.
func (c PullRequestConfig) Validate() error {
	if c.Auth.AuthToken == "" {
		return NewConfigurationError("github.token", "a GitHub token is required to submit pull requests")
	}
	if c.Auth.User == "" {
		return NewConfigurationError("github.user", "is required")
	}
	if c.ProjectRepo == "" {
		return NewConfigurationError("pull_request.repo", "is required")
	}
	return nil
}

// Project is the upstream repository receiving the pull request.
func (c PullRequestConfig) Project() GitHubProject {
	return GitHubProject{Owner: c.ProjectRepoOwner, Name: c.ProjectRepo}
}
