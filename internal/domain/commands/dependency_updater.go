package commands

import (
	"context"
	"fmt"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/depsync/internal/domain/entities"
	"github.com/rios0rios0/depsync/internal/domain/repositories"
)

// Submitter hands the local changes over to GitHub.
type Submitter interface {
	Submit(ctx context.Context, usedInfos []entities.DependencyInfo) (*SubmitResult, error)
}

// UpdateResult is what a run reports back to its caller.
type UpdateResult struct {
	ChangesMade   bool
	CommitMessage string
	UsedInfos     []entities.DependencyInfo
	Branch        string
	PullRequest   *entities.PullRequest
	State         SubmitState
}

// DependencyUpdater runs strategies against the target repository and checks
// that git agrees with what they report before anything leaves the machine.
type DependencyUpdater struct {
	git     repositories.GitRepository
	metrics repositories.MetricsRecorder
	log     logger.FieldLogger
}

// NewDependencyUpdater creates a DependencyUpdater.
func NewDependencyUpdater(
	git repositories.GitRepository,
	metrics repositories.MetricsRecorder,
	log logger.FieldLogger,
) *DependencyUpdater {
	return &DependencyUpdater{git: git, metrics: metrics, log: log}
}

// Update runs every strategy in order and returns the deduplicated union of
// the infos they used, in first-use order.
func (it *DependencyUpdater) Update(
	ctx context.Context,
	strategies []repositories.DependencyStrategy,
	infos []entities.DependencyInfo,
	dryRun bool,
) ([]entities.DependencyInfo, error) {
	var used []entities.DependencyInfo
	for _, strategy := range strategies {
		start := time.Now()
		strategyUsed, err := strategy.Run(ctx, infos, dryRun)
		if it.metrics != nil {
			it.metrics.ObserveStrategy(strategy.Name(), len(strategyUsed), time.Since(start), err)
		}
		if err != nil {
			return nil, err
		}
		used = entities.UnionInfos(used, strategyUsed)
	}
	return used, nil
}

// UpdateAndSubmitPullRequest applies every strategy, then commits, pushes and
// opens or refreshes the pull request through submitter. It aborts before
// any commit when git changes and used infos disagree.
func (it *DependencyUpdater) UpdateAndSubmitPullRequest(
	ctx context.Context,
	strategies []repositories.DependencyStrategy,
	infos []entities.DependencyInfo,
	submitter Submitter,
) (*UpdateResult, error) {
	used, err := it.Update(ctx, strategies, infos, false)
	if err != nil {
		return nil, err
	}

	hasChanges, err := it.git.HasChanges(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read git status: %w", err)
	}

	hasUsedInfos := len(used) > 0
	if hasChanges != hasUsedInfos {
		detail := fmt.Sprintf(
			"Git has modified files: %t. DependencyInfo is updated: %t.",
			hasChanges, hasUsedInfos,
		)
		it.log.Errorf("%v. %s", entities.ErrGitStatusMismatch, detail)
		return nil, &entities.InvariantViolation{Err: entities.ErrGitStatusMismatch, Detail: detail}
	}

	result := &UpdateResult{UsedInfos: used, State: StateInitial}
	if !hasChanges {
		it.log.Info("Dependencies are currently up to date")
		it.observeSubmission(result)
		return result, nil
	}

	submitted, err := submitter.Submit(ctx, used)
	if submitted != nil {
		result.ChangesMade = true
		result.CommitMessage = submitted.CommitMessage
		result.Branch = submitted.Branch
		result.PullRequest = submitted.PullRequest
		result.State = submitted.State
	}
	it.observeSubmission(result)
	if err != nil {
		return result, err
	}

	return result, nil
}

func (it *DependencyUpdater) observeSubmission(result *UpdateResult) {
	if it.metrics != nil {
		it.metrics.ObserveSubmission(result.State.String(), result.ChangesMade)
	}
}
