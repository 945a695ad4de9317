package github

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff"
	gh "github.com/google/go-github/v66/github"
	logger "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/rios0rios0/depsync/internal/domain/entities"
)

const (
	DefaultHTTPClientTimeout = time.Minute

	defaultRetryInterval = 2 * time.Second
	defaultMaxRetries    = 4
	tokenType            = "token"
	serverErrorMin       = 500
	serverErrorMax       = 600
)

// Options tunes the client; zero values select the defaults.
type Options struct {
	// BaseURL points to GitHub Enterprise or a test server.
	BaseURL       string
	Timeout       time.Duration
	RetryInterval time.Duration
	MaxRetries    uint64
}

// GitHubRepository implements repositories.GitHubRepository over the GitHub
// REST API. Reads are retried on rate limiting and server errors; writes are
// attempted once.
type GitHubRepository struct {
	client        *gh.Client
	retryInterval time.Duration
	maxRetries    uint64
	log           logger.FieldLogger
}

// NewGitHubRepository creates a client authenticating as auth.
func NewGitHubRepository(auth entities.GitHubAuth, opts Options, log logger.FieldLogger) (*GitHubRepository, error) {
	client := gh.NewClient(newHTTPClient(auth.AuthToken, opts.Timeout))
	client.UserAgent = auth.User

	if opts.BaseURL != "" {
		baseURL, err := url.Parse(strings.TrimSuffix(opts.BaseURL, "/") + "/")
		if err != nil {
			return nil, entities.NewConfigurationError("github.base_url", err.Error())
		}
		client.BaseURL = baseURL
	}

	repo := &GitHubRepository{
		client:        client,
		retryInterval: opts.RetryInterval,
		maxRetries:    opts.MaxRetries,
		log:           log,
	}
	if repo.retryInterval <= 0 {
		repo.retryInterval = defaultRetryInterval
	}
	if repo.maxRetries == 0 {
		repo.maxRetries = defaultMaxRetries
	}
	return repo, nil
}

func newHTTPClient(apiToken string, timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultHTTPClientTimeout
	}

	if apiToken == "" {
		return &http.Client{
			Timeout: timeout,
		}
	}

	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: apiToken, TokenType: tokenType},
	)

	tc := oauth2.NewClient(context.Background(), ts)
	tc.Timeout = timeout

	return tc
}

// GetFileContents returns the decoded contents of path at ref.
func (it *GitHubRepository) GetFileContents(
	ctx context.Context,
	path string,
	project entities.GitHubProject,
	ref string,
) (string, error) {
	operation := fmt.Sprintf("get contents of '%s' at '%s' in %s", path, ref, project)

	var content string
	err := it.retry(ctx, operation, func() error {
		fileContent, _, _, err := it.client.Repositories.GetContents(
			ctx, project.Owner, project.Name, path,
			&gh.RepositoryContentGetOptions{Ref: ref},
		)
		if err != nil {
			return err
		}
		if fileContent == nil {
			return backoff.Permanent(fmt.Errorf("path %q is a directory, not a file", path))
		}

		content, err = fileContent.GetContent()
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to decode file content: %w", err))
		}
		return nil
	})
	return content, err
}

// GetTree returns the direct entries of the tree sha.
func (it *GitHubRepository) GetTree(
	ctx context.Context,
	project entities.GitHubProject,
	sha string,
) (*entities.GitTree, error) {
	operation := fmt.Sprintf("get tree '%s' in %s", sha, project)

	var tree *gh.Tree
	err := it.retry(ctx, operation, func() error {
		var err error
		tree, _, err = it.client.Git.GetTree(ctx, project.Owner, project.Name, sha, false)
		return err
	})
	if err != nil {
		return nil, err
	}

	result := &entities.GitTree{
		SHA: tree.GetSHA(),
		URL: fmt.Sprintf("%srepos/%s/%s/git/trees/%s", it.client.BaseURL, project.Owner, project.Name, sha),
	}
	for _, entry := range tree.Entries {
		result.Entries = append(result.Entries, entities.GitObject{
			Path: entry.GetPath(),
			Type: entry.GetType(),
			SHA:  entry.GetSHA(),
			Mode: entry.GetMode(),
		})
	}
	return result, nil
}

// GetCommit returns the commit sha and its root tree.
func (it *GitHubRepository) GetCommit(
	ctx context.Context,
	project entities.GitHubProject,
	sha string,
) (*entities.GitCommit, error) {
	operation := fmt.Sprintf("get commit '%s' in %s", sha, project)

	var commit *gh.Commit
	err := it.retry(ctx, operation, func() error {
		var err error
		commit, _, err = it.client.Git.GetCommit(ctx, project.Owner, project.Name, sha)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &entities.GitCommit{
		SHA:     commit.GetSHA(),
		TreeSHA: commit.GetTree().GetSHA(),
		Message: commit.GetMessage(),
	}, nil
}

// CreatePullRequest opens a pull request. It is never retried.
func (it *GitHubRepository) CreatePullRequest(
	ctx context.Context,
	project entities.GitHubProject,
	input entities.PullRequestInput,
) (*entities.PullRequest, error) {
	it.log.Infof("Creating pull request '%s' from '%s' into %s:%s", input.Title, input.SourceBranch, project, input.TargetBranch)

	pr, _, err := it.client.PullRequests.Create(
		ctx, project.Owner, project.Name,
		&gh.NewPullRequest{
			Title: &input.Title,
			Head:  &input.SourceBranch,
			Base:  &input.TargetBranch,
			Body:  &input.Description,
		},
	)
	if err != nil {
		return nil, it.wrapError("create pull request in "+project.String(), err)
	}

	return &entities.PullRequest{
		ID:     pr.GetNumber(),
		Title:  pr.GetTitle(),
		URL:    pr.GetHTMLURL(),
		Status: pr.GetState(),
	}, nil
}

// FindPullRequestByHead searches the open pull requests of author whose head
// starts with headPrefix. With several matches, every issue id is logged and
// the newest one (first in server order) wins.
func (it *GitHubRepository) FindPullRequestByHead(
	ctx context.Context,
	project entities.GitHubProject,
	headPrefix, author string,
) (*entities.GitHubPullRequest, error) {
	query := fmt.Sprintf("repo:%s/%s head:%s author:%s state:open", project.Owner, project.Name, headPrefix, author)
	operation := fmt.Sprintf("search issues '%s'", query)

	var found *gh.IssuesSearchResult
	err := it.retry(ctx, operation, func() error {
		var err error
		found, _, err = it.client.Search.Issues(ctx, query, &gh.SearchOptions{Sort: "created", Order: "desc"})
		return err
	})
	if err != nil {
		return nil, err
	}

	if found.GetTotal() == 0 || len(found.Issues) == 0 {
		it.log.Debugf("No open pull request found for '%s'", query)
		return nil, nil //nolint:nilnil // not found is a valid result
	}

	if found.GetTotal() > 1 {
		ids := make([]string, 0, len(found.Issues))
		for _, issue := range found.Issues {
			ids = append(ids, strconv.FormatInt(issue.GetID(), 10))
		}
		it.log.Warnf(
			"Found %d pull requests for '%s', using the first: %s",
			found.GetTotal(), query, strings.Join(ids, ", "),
		)
	}

	number := found.Issues[0].GetNumber()
	operation = fmt.Sprintf("get pull request #%d in %s", number, project)

	var pr *gh.PullRequest
	err = it.retry(ctx, operation, func() error {
		var getErr error
		pr, _, getErr = it.client.PullRequests.Get(ctx, project.Owner, project.Name, number)
		return getErr
	})
	if err != nil {
		return nil, err
	}

	head := pr.GetHead()
	return &entities.GitHubPullRequest{
		Number: pr.GetNumber(),
		Head: entities.GitHubHead{
			Label: head.GetLabel(),
			Ref:   head.GetRef(),
			User:  entities.GitHubUser{Login: head.GetUser().GetLogin()},
		},
		User: entities.GitHubUser{Login: pr.GetUser().GetLogin()},
	}, nil
}

// retry runs fn with exponential backoff while it fails with a rate limit
// or a server error.
func (it *GitHubRepository) retry(ctx context.Context, operation string, fn func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = it.retryInterval

	var attempt int
	err := backoff.Retry(func() error {
		attempt++
		err := fn()
		if err == nil {
			return nil
		}
		if !isRetryable(err) {
			return backoff.Permanent(err)
		}
		it.log.Warnf("%s failed (attempt %d), retrying: %v", operation, attempt, err)
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(bo, it.maxRetries), ctx))

	return it.wrapError(operation, err)
}

func isRetryable(err error) bool {
	var rateLimitErr *gh.RateLimitError
	if errors.As(err, &rateLimitErr) {
		return true
	}

	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return true
	}

	var responseErr *gh.ErrorResponse
	if errors.As(err, &responseErr) && responseErr.Response != nil {
		status := responseErr.Response.StatusCode
		return status >= serverErrorMin && status < serverErrorMax
	}
	return false
}

// wrapError maps go-github and transport errors onto HTTPFailure and
// TimeoutError.
func (it *GitHubRepository) wrapError(operation string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &entities.TimeoutError{Operation: operation, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &entities.TimeoutError{Operation: operation, Err: err}
	}

	var rateLimitErr *gh.RateLimitError
	if errors.As(err, &rateLimitErr) && rateLimitErr.Response != nil {
		return &entities.HTTPFailure{
			Operation:  operation,
			StatusCode: rateLimitErr.Response.StatusCode,
			Content:    rateLimitErr.Message,
			Err:        err,
		}
	}

	var responseErr *gh.ErrorResponse
	if errors.As(err, &responseErr) && responseErr.Response != nil {
		content := responseErr.Message
		for _, detail := range responseErr.Errors {
			content += "; " + detail.Error()
		}
		return &entities.HTTPFailure{
			Operation:  operation,
			StatusCode: responseErr.Response.StatusCode,
			Content:    content,
			Err:        err,
		}
	}

	return fmt.Errorf("%s: %w", operation, err)
}
