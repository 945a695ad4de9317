package repositories

import (
	"context"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/depsync/internal/domain/entities"
	domainRepos "github.com/rios0rios0/depsync/internal/domain/repositories"
	"github.com/rios0rios0/depsync/internal/infrastructure/repositories/buildinfo"
	"github.com/rios0rios0/depsync/internal/infrastructure/repositories/command"
	gitRepo "github.com/rios0rios0/depsync/internal/infrastructure/repositories/git"
	ghRepo "github.com/rios0rios0/depsync/internal/infrastructure/repositories/github"
	"github.com/rios0rios0/depsync/internal/infrastructure/repositories/metrics"
)

// RunRepositories holds the repositories bound to one run: the target
// working tree, the GitHub API and the dependency sources.
type RunRepositories struct {
	Root    string
	Git     domainRepos.GitRepository
	GitHub  domainRepos.GitHubRepository
	Builds  domainRepos.BuildInfoRepository
	Metrics domainRepos.MetricsRecorder
	// Origin is the GitHub project of the origin remote, nil when unknown.
	Origin *entities.GitHubProject
	Log    logger.FieldLogger
}

// RunFactory creates the repositories of a run from its settings.
type RunFactory func(ctx context.Context, settings *entities.Settings) (*RunRepositories, error)

// RepositoryFactory builds RunRepositories for the settings of each run.
type RepositoryFactory struct {
	create RunFactory
}

// NewRepositoryFactory creates a factory backed by the git executable, the
// GitHub REST API and a Prometheus textfile recorder.
func NewRepositoryFactory(log logger.FieldLogger) *RepositoryFactory {
	return &RepositoryFactory{
		create: func(_ context.Context, settings *entities.Settings) (*RunRepositories, error) {
			return newRunRepositories(settings, log)
		},
	}
}

// NewRepositoryFactoryWith creates a factory around a custom RunFactory.
func NewRepositoryFactoryWith(create RunFactory) *RepositoryFactory {
	return &RepositoryFactory{create: create}
}

// Create returns the repositories for settings.
func (f *RepositoryFactory) Create(ctx context.Context, settings *entities.Settings) (*RunRepositories, error) {
	return f.create(ctx, settings)
}

func newRunRepositories(settings *entities.Settings, log logger.FieldLogger) (*RunRepositories, error) {
	timeout, err := settings.Timeout()
	if err != nil {
		return nil, err
	}

	root, err := gitRepo.DiscoverRoot(settings.RepositoryDir)
	if err != nil {
		return nil, err
	}
	log.Debugf("Working tree root: %s", root)

	origin, err := gitRepo.OriginProject(root)
	if err != nil {
		log.Warnf("Could not read the origin remote: %v", err)
	}

	github, err := ghRepo.NewGitHubRepository(settings.GitHubAuth(), ghRepo.Options{BaseURL: settings.GitHub.BaseURL}, log)
	if err != nil {
		return nil, err
	}

	runner := command.NewExecCommandRunner(timeout, log)
	return &RunRepositories{
		Root:    root,
		Git:     gitRepo.NewCLIGitRepository(root, runner, log),
		GitHub:  github,
		Builds:  buildinfo.NewLoader(root, github, log),
		Metrics: metrics.NewRecorder(settings.MetricsFile, log),
		Origin:  origin,
		Log:     log,
	}, nil
}
