package repositories

import (
	"context"

	"github.com/rios0rios0/depsync/internal/domain/entities"
)

// Updater computes the edits that bring the target repository in line with
// the dependency infos. Computing tasks never changes the repository, and
// a repository already in line yields no tasks.
type Updater interface {
	GetUpdateTasks(ctx context.Context, infos []entities.DependencyInfo) ([]entities.UpdateTask, error)
}

// Upgrader edits the target repository directly and reports which infos it
// used on its last Upgrade.
type Upgrader interface {
	Upgrade(ctx context.Context, infos []entities.DependencyInfo) error
	BuildInfosUsed() []entities.DependencyInfo
}

// DependencyStrategy is the single dispatch point of the orchestrator over
// updaters and upgraders.
type DependencyStrategy interface {
	Name() string
	Run(ctx context.Context, infos []entities.DependencyInfo, dryRun bool) ([]entities.DependencyInfo, error)
}
