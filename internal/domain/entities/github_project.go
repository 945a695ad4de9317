package entities

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	DefaultGitHubUser  = "dotnet-bot"
	DefaultGitHubEmail = "dotnet-bot@microsoft.com"
	githubHost         = "github.com"
)

// GitHubProject identifies a repository as owner/name.
type GitHubProject struct {
	Owner string
	Name  string
}

// NewGitHubProject creates a GitHubProject, requiring both parts.
func NewGitHubProject(owner, name string) (GitHubProject, error) {
	if owner == "" || name == "" {
		return GitHubProject{}, NewConfigurationError("project", fmt.Sprintf("owner and name are required, got '%s/%s'", owner, name))
	}
	return GitHubProject{Owner: owner, Name: name}, nil
}

func (p GitHubProject) String() string {
	return p.Owner + "/" + p.Name
}

// ParseGitHubURL parses "https://github.com/owner/name[.git]" into a project.
func ParseGitHubURL(rawURL string) (GitHubProject, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return GitHubProject{}, fmt.Errorf("failed to parse GitHub URL %q: %w", rawURL, err)
	}

	host := strings.TrimPrefix(strings.ToLower(parsed.Host), "www.")
	if host != githubHost {
		return GitHubProject{}, fmt.Errorf("URL %q does not point to %s", rawURL, githubHost)
	}

	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	if len(segments) != 2 { //nolint:mnd // owner and name
		return GitHubProject{}, fmt.Errorf("URL %q is not in the form https://github.com/owner/name", rawURL)
	}

	return NewGitHubProject(segments[0], strings.TrimSuffix(segments[1], ".git"))
}

// GitHubAuth is the identity used to push branches and open pull requests.
type GitHubAuth struct {
	AuthToken string
	User      string
	Email     string
}

// NewGitHubAuth creates a GitHubAuth, applying the bot defaults to empty
// user and email.
func NewGitHubAuth(token, user, email string) GitHubAuth {
	if user == "" {
		user = DefaultGitHubUser
	}
	if email == "" {
		email = DefaultGitHubEmail
	}
	return GitHubAuth{AuthToken: token, User: user, Email: email}
}
