package commands

import (
	"context"
	"fmt"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/depsync/internal/domain/entities"
	"github.com/rios0rios0/depsync/internal/domain/repositories"
)

const (
	// UpdateDependenciesBranchPrefix starts every branch pushed by depsync.
	UpdateDependenciesBranchPrefix = "UpdateDependencies"

	branchTimestampLayout  = "20060102150405"
	defaultPullRequestBody = "Automated dependency update."
)

// SubmitState is the last step a submission completed.
type SubmitState int

const (
	StateInitial SubmitState = iota
	StateBranchSelected
	StateCommitted
	StatePushed
	StatePRSubmitted
)

func (s SubmitState) String() string {
	switch s {
	case StateInitial:
		return "Initial"
	case StateBranchSelected:
		return "BranchSelected"
	case StateCommitted:
		return "Committed"
	case StatePushed:
		return "Pushed"
	case StatePRSubmitted:
		return "PRSubmitted"
	default:
		return fmt.Sprintf("SubmitState(%d)", int(s))
	}
}

// SubmitError is a submission failure together with the last state reached.
// A failure at or after StatePushed leaves a pushed branch behind.
type SubmitError struct {
	State SubmitState
	Err   error
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("pull request submission failed after state %s: %v", e.State, e.Err)
}

func (e *SubmitError) Unwrap() error { return e.Err }

// SubmitResult describes a finished (or partially finished) submission.
type SubmitResult struct {
	CommitMessage string
	Branch        string
	// Reused is the owned pull request whose branch was pushed to, if any.
	Reused      *entities.GitHubPullRequest
	PullRequest *entities.PullRequest
	State       SubmitState
}

// PullRequestSubmitter commits the working tree, pushes it to the bot's fork
// and opens a pull request. Unless AlwaysCreateNew is set it pushes to the
// branch of an open pull request it owns instead of opening another one.
type PullRequestSubmitter struct {
	git    repositories.GitRepository
	github repositories.GitHubRepository
	config entities.PullRequestConfig
	clock  entities.Clock
	log    logger.FieldLogger
}

// NewPullRequestSubmitter validates config and creates a PullRequestSubmitter.
func NewPullRequestSubmitter(
	git repositories.GitRepository,
	github repositories.GitHubRepository,
	config entities.PullRequestConfig,
	clock entities.Clock,
	log logger.FieldLogger,
) (*PullRequestSubmitter, error) {
	config = config.WithDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &PullRequestSubmitter{git: git, github: github, config: config, clock: clock, log: log}, nil
}

// Submit walks the states Initial through PRSubmitted.
func (it *PullRequestSubmitter) Submit(
	ctx context.Context,
	usedInfos []entities.DependencyInfo,
) (*SubmitResult, error) {
	result := &SubmitResult{CommitMessage: it.CommitMessage(usedInfos), State: StateInitial}

	branch, existing, err := it.GetRemoteBranchName(ctx)
	if err != nil {
		return result, &SubmitError{State: result.State, Err: err}
	}
	result.Branch = branch
	result.Reused = existing
	result.State = StateBranchSelected

	if err = it.Commit(ctx, result.CommitMessage); err != nil {
		return result, &SubmitError{State: result.State, Err: err}
	}
	result.State = StateCommitted

	if err = it.Push(ctx, branch); err != nil {
		return result, &SubmitError{State: result.State, Err: err}
	}
	result.State = StatePushed

	pullRequest, err := it.SubmitPullRequest(ctx, result.CommitMessage, branch, existing)
	if err != nil {
		return result, &SubmitError{State: result.State, Err: err}
	}
	result.PullRequest = pullRequest
	result.State = StatePRSubmitted

	return result, nil
}

// CommitMessage is the configured override or the generated message.
func (it *PullRequestSubmitter) CommitMessage(usedInfos []entities.DependencyInfo) string {
	if strings.TrimSpace(it.config.CommitMessageOverride) != "" {
		return it.config.CommitMessageOverride
	}
	return entities.CommitMessage(usedInfos)
}

// GetRemoteBranchName picks the branch to push. It returns the owned pull
// request being refreshed, or nil when a fresh branch was minted.
func (it *PullRequestSubmitter) GetRemoteBranchName(
	ctx context.Context,
) (string, *entities.GitHubPullRequest, error) {
	if it.config.AlwaysCreateNew {
		return it.newBranchName(), nil, nil
	}

	pullRequest, err := it.github.FindPullRequestByHead(
		ctx, it.config.Project(), UpdateDependenciesBranchPrefix, it.config.Auth.User,
	)
	if err != nil {
		return "", nil, fmt.Errorf("failed to search for an existing pull request: %w", err)
	}

	if !it.isOwned(pullRequest) {
		if pullRequest != nil {
			it.log.Warnf(
				"Pull request #%d head '%s' is not owned by '%s', creating a new one",
				pullRequest.Number, pullRequest.Head.Label, it.config.Auth.User,
			)
		}
		return it.newBranchName(), nil, nil
	}

	it.log.Infof("Updating pull request #%d on branch '%s'", pullRequest.Number, pullRequest.Head.Ref)
	return pullRequest.Head.Ref, pullRequest, nil
}

// Commit commits every tracked change with the configured identity.
func (it *PullRequestSubmitter) Commit(ctx context.Context, message string) error {
	return it.git.Commit(ctx, message, it.config.GitAuthorName, it.config.Auth.Email)
}

// Push pushes HEAD to branch on the bot's fork.
func (it *PullRequestSubmitter) Push(ctx context.Context, branch string) error {
	return it.git.Push(ctx, it.config.Auth, it.config.ProjectRepo, branch)
}

// SubmitPullRequest opens the pull request, or does nothing when an owned
// one was already updated by Push.
func (it *PullRequestSubmitter) SubmitPullRequest(
	ctx context.Context,
	title, branch string,
	existing *entities.GitHubPullRequest,
) (*entities.PullRequest, error) {
	if existing != nil {
		// TODO: notify the subscribers of the refreshed pull request with a comment.
		return &entities.PullRequest{ID: existing.Number, Title: title}, nil
	}

	if it.config.Title != "" {
		title = it.config.Title
	}

	pullRequest, err := it.github.CreatePullRequest(ctx, it.config.Project(), entities.PullRequestInput{
		SourceBranch: it.config.Auth.User + ":" + branch,
		TargetBranch: it.config.ProjectRepoBranch,
		Title:        title,
		Description:  it.pullRequestBody(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create pull request: %w", err)
	}

	it.log.Infof("Created pull request #%d: %s", pullRequest.ID, pullRequest.URL)
	return pullRequest, nil
}

func (it *PullRequestSubmitter) pullRequestBody() string {
	body := it.config.Body
	if body == "" {
		body = defaultPullRequestBody
	}
	if len(it.config.NotifyGitHubUsers) > 0 {
		body += "\n\n/cc @" + strings.Join(it.config.NotifyGitHubUsers, " @")
	}
	return body
}

func (it *PullRequestSubmitter) newBranchName() string {
	return UpdateDependenciesBranchPrefix + it.clock().UTC().Format(branchTimestampLayout)
}

// isOwned is true when the bot both opened the pull request and owns its
// head branch.
func (it *PullRequestSubmitter) isOwned(pullRequest *entities.GitHubPullRequest) bool {
	if pullRequest == nil {
		return false
	}
	user := it.config.Auth.User
	return strings.EqualFold(pullRequest.User.Login, user) &&
		strings.EqualFold(pullRequest.Head.User.Login, user) &&
		strings.HasPrefix(pullRequest.Head.Ref, UpdateDependenciesBranchPrefix)
}
