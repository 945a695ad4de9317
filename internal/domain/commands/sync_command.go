package commands

import (
	"context"
	"fmt"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/depsync/internal/domain/entities"
	"github.com/rios0rios0/depsync/internal/domain/repositories"
	infraRepos "github.com/rios0rios0/depsync/internal/infrastructure/repositories"
)

// Sync is the interface for the update and submit commands.
type Sync interface {
	Execute(ctx context.Context, settings *entities.Settings, opts SyncOptions) (*UpdateResult, error)
}

// SyncOptions holds runtime options for a single run.
type SyncOptions struct {
	DryRun bool
	// Submit commits, pushes and opens the pull request after updating.
	Submit bool
}

// SyncCommand wires the configured dependency sources and updaters into a
// DependencyUpdater and runs it once.
type SyncCommand struct {
	factory         *infraRepos.RepositoryFactory
	updaterRegistry *infraRepos.UpdaterRegistry
	clock           entities.Clock
	log             logger.FieldLogger
}

// NewSyncCommand creates a new SyncCommand.
func NewSyncCommand(
	factory *infraRepos.RepositoryFactory,
	updaterRegistry *infraRepos.UpdaterRegistry,
	clock entities.Clock,
	log logger.FieldLogger,
) *SyncCommand {
	return &SyncCommand{factory: factory, updaterRegistry: updaterRegistry, clock: clock, log: log}
}

// Execute loads the dependency infos, runs every updater and, when
// opts.Submit is set, hands the changes over to GitHub.
func (it *SyncCommand) Execute(
	ctx context.Context,
	settings *entities.Settings,
	opts SyncOptions,
) (*UpdateResult, error) {
	run, err := it.factory.Create(ctx, settings)
	if err != nil {
		return nil, err
	}
	defer func() {
		if flushErr := run.Metrics.Flush(); flushErr != nil {
			it.log.Warnf("Failed to write metrics: %v", flushErr)
		}
	}()

	infos, err := it.loadDependencyInfos(ctx, settings, run)
	if err != nil {
		return nil, err
	}
	for _, info := range infos {
		it.log.Debugf("Dependency info: %s", info)
	}

	strategies, err := it.buildStrategies(settings, run)
	if err != nil {
		return nil, err
	}

	updater := NewDependencyUpdater(run.Git, run.Metrics, it.log)

	if opts.Submit && !opts.DryRun {
		submitter, submitterErr := NewPullRequestSubmitter(
			run.Git, run.GitHub, it.pullRequestConfig(settings, run), it.clock, it.log,
		)
		if submitterErr != nil {
			return nil, submitterErr
		}
		return updater.UpdateAndSubmitPullRequest(ctx, strategies, infos, submitter)
	}

	used, err := updater.Update(ctx, strategies, infos, opts.DryRun)
	if err != nil {
		return nil, err
	}

	result := &UpdateResult{ChangesMade: len(used) > 0, UsedInfos: used, State: StateInitial}
	if result.ChangesMade {
		result.CommitMessage = settings.PullRequest.CommitMessage
		if strings.TrimSpace(result.CommitMessage) == "" {
			result.CommitMessage = entities.CommitMessage(used)
		}
	}
	return result, nil
}

func (it *SyncCommand) loadDependencyInfos(
	ctx context.Context,
	settings *entities.Settings,
	run *infraRepos.RunRepositories,
) ([]entities.DependencyInfo, error) {
	infos := make([]entities.DependencyInfo, 0, len(settings.Dependencies.Builds)+len(settings.Dependencies.Repositories))

	for _, build := range settings.Dependencies.Builds {
		buildInfo, err := run.Builds.Load(ctx, build)
		if err != nil {
			return nil, fmt.Errorf("failed to load build info %q: %w", build.Name, err)
		}
		infos = append(infos, buildInfo)
	}

	for _, repo := range settings.Dependencies.Repositories {
		info, err := resolveRepositoryInfo(ctx, run.Git, repo)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve repository %q: %w", repo.Identity, err)
		}
		infos = append(infos, info)
	}

	return infos, nil
}

func resolveRepositoryInfo(
	ctx context.Context,
	git repositories.GitRepository,
	repo entities.RepositorySettings,
) (*entities.RepositoryDependencyInfo, error) {
	if repo.SubmodulePath != "" {
		output, err := git.SubmoduleStatus(ctx, repo.SubmodulePath)
		if err != nil {
			return nil, err
		}
		return entities.ParseSubmoduleStatus(repo.Identity, repo.Repository, repo.Ref, output)
	}

	output, err := git.LsRemoteHeads(ctx, repo.Repository, repo.Ref)
	if err != nil {
		return nil, err
	}
	return entities.ParseLsRemoteOutput(repo.Identity, repo.Repository, repo.Ref, output)
}

func (it *SyncCommand) buildStrategies(
	settings *entities.Settings,
	run *infraRepos.RunRepositories,
) ([]repositories.DependencyStrategy, error) {
	strategies := make([]repositories.DependencyStrategy, 0, len(settings.Updaters))
	for _, cfg := range settings.Updaters {
		updater, err := it.updaterRegistry.Create(cfg, run)
		if err != nil {
			return nil, fmt.Errorf("failed to create updater %q: %w", cfg.DisplayName(), err)
		}

		if upgrader, ok := updater.(repositories.Upgrader); ok {
			strategies = append(strategies, NewUpgradeStrategy(cfg.DisplayName(), upgrader, it.log))
			continue
		}
		strategies = append(strategies, NewTaskStrategy(cfg.DisplayName(), updater, it.log))
	}
	return strategies, nil
}

// pullRequestConfig fills owner and repository from the origin remote when
// the settings leave them out.
func (it *SyncCommand) pullRequestConfig(
	settings *entities.Settings,
	run *infraRepos.RunRepositories,
) entities.PullRequestConfig {
	config := settings.PullRequestConfig()
	if run.Origin == nil {
		return config
	}
	if settings.PullRequest.Owner == "" {
		config.ProjectRepoOwner = run.Origin.Owner
	}
	if config.ProjectRepo == "" {
		config.ProjectRepo = run.Origin.Name
	}
	return config
}
