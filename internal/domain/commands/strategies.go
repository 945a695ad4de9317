package commands

import (
	"context"
	"fmt"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/depsync/internal/domain/entities"
	"github.com/rios0rios0/depsync/internal/domain/repositories"
)

// TaskStrategy runs an Updater: it computes the tasks, logs them and, unless
// in dry-run mode, applies them in order.
type TaskStrategy struct {
	name    string
	updater repositories.Updater
	log     logger.FieldLogger
}

// NewTaskStrategy creates a strategy over an Updater.
func NewTaskStrategy(name string, updater repositories.Updater, log logger.FieldLogger) *TaskStrategy {
	return &TaskStrategy{name: name, updater: updater, log: log}
}

func (it *TaskStrategy) Name() string { return it.name }

// Run applies every task and returns the infos they used. In dry-run mode the
// task previews are logged instead and nothing is written.
func (it *TaskStrategy) Run(
	ctx context.Context,
	infos []entities.DependencyInfo,
	dryRun bool,
) ([]entities.DependencyInfo, error) {
	tasks, err := it.updater.GetUpdateTasks(ctx, infos)
	if err != nil {
		return nil, fmt.Errorf("updater %q failed to compute tasks: %w", it.name, err)
	}

	var used []entities.DependencyInfo
	for _, task := range tasks {
		for _, message := range task.LogMessages {
			it.log.Infof("[%s] %s", it.name, message)
		}

		if dryRun {
			logPreview(it.log, it.name, task.Preview)
		} else if actionErr := task.Action(); actionErr != nil {
			return used, fmt.Errorf("updater %q failed to apply task: %w", it.name, actionErr)
		}
		used = entities.UnionInfos(used, task.UsedInfos)
	}

	if len(tasks) == 0 {
		it.log.Debugf("[%s] nothing to update", it.name)
	}
	return used, nil
}

// UpgradeStrategy runs an Upgrader, which edits files as it goes.
type UpgradeStrategy struct {
	name     string
	upgrader repositories.Upgrader
	log      logger.FieldLogger
}

// NewUpgradeStrategy creates a strategy over an Upgrader.
func NewUpgradeStrategy(name string, upgrader repositories.Upgrader, log logger.FieldLogger) *UpgradeStrategy {
	return &UpgradeStrategy{name: name, upgrader: upgrader, log: log}
}

func (it *UpgradeStrategy) Name() string { return it.name }

// Run upgrades and returns BuildInfosUsed. An upgrader cannot be previewed
// unless it also computes tasks, so dry-run either logs those tasks or skips.
func (it *UpgradeStrategy) Run(
	ctx context.Context,
	infos []entities.DependencyInfo,
	dryRun bool,
) ([]entities.DependencyInfo, error) {
	if dryRun {
		updater, ok := it.upgrader.(repositories.Updater)
		if !ok {
			it.log.Warnf("[%s] upgrader does not support dry-run, skipping", it.name)
			return nil, nil
		}
		return NewTaskStrategy(it.name, updater, it.log).Run(ctx, infos, true)
	}

	if err := it.upgrader.Upgrade(ctx, infos); err != nil {
		return nil, fmt.Errorf("upgrader %q failed: %w", it.name, err)
	}

	used := it.upgrader.BuildInfosUsed()
	for _, info := range used {
		it.log.Infof("[%s] upgraded to %s", it.name, info)
	}
	return used, nil
}

func logPreview(log logger.FieldLogger, name, preview string) {
	if preview == "" {
		return
	}
	log.Infof("[%s] dry-run, would apply:\n%s", name, preview)
}
