package files

import (
	"context"

	"github.com/rios0rios0/depsync/internal/domain/entities"
	"github.com/rios0rios0/depsync/internal/domain/repositories"
)

// Upgrade applies the tasks of updater right away, which is how the
// task-based updaters also serve as upgraders.
func Upgrade(
	ctx context.Context,
	updater repositories.Updater,
	infos []entities.DependencyInfo,
) ([]entities.DependencyInfo, error) {
	tasks, err := updater.GetUpdateTasks(ctx, infos)
	if err != nil {
		return nil, err
	}
	return entities.ApplyUpdateTasks(tasks)
}

// AppliedInfos remembers the infos used by the last Upgrade. Embedding it
// gives an Updater the BuildInfosUsed half of the Upgrader interface.
type AppliedInfos struct {
	used []entities.DependencyInfo
}

// Apply runs Upgrade and records the infos it used.
func (a *AppliedInfos) Apply(
	ctx context.Context,
	updater repositories.Updater,
	infos []entities.DependencyInfo,
) error {
	used, err := Upgrade(ctx, updater, infos)
	a.used = used
	return err
}

func (a *AppliedInfos) BuildInfosUsed() []entities.DependencyInfo {
	return a.used
}
