//go:build unit

package commands_test

import (
	"context"
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/depsync/internal/domain/commands"
	"github.com/rios0rios0/depsync/internal/domain/entities"
	builders "github.com/rios0rios0/depsync/test/domain/entitybuilders"
	doubles "github.com/rios0rios0/depsync/test/infrastructure/repositorydoubles"
)

func TestTaskStrategyRun(t *testing.T) {
	t.Parallel()

	t.Run("should apply every task and return the used infos once", func(t *testing.T) {
		t.Parallel()

		// given
		log, hook := logtest.NewNullLogger()
		build := builders.NewBuildInfoBuilder().BuildInfo()
		applied := 0
		updater := &doubles.StubUpdater{Tasks: []entities.UpdateTask{
			entities.NewUpdateTask(func() error { applied++; return nil }, []entities.DependencyInfo{build}, "first"),
			entities.NewUpdateTask(func() error { applied++; return nil }, []entities.DependencyInfo{build}, "second"),
		}}
		strategy := commands.NewTaskStrategy("props", updater, log)

		// when
		used, err := strategy.Run(context.Background(), []entities.DependencyInfo{build}, false)

		// then
		require.NoError(t, err)
		assert.Equal(t, 2, applied)
		assert.Equal(t, []entities.DependencyInfo{build}, used)
		assert.Equal(t, "props", strategy.Name())
		assert.Equal(t, "[props] second", hook.LastEntry().Message)
	})

	t.Run("should only log previews when running dry", func(t *testing.T) {
		t.Parallel()

		// given
		log, hook := logtest.NewNullLogger()
		build := builders.NewBuildInfoBuilder().BuildInfo()
		task := entities.NewUpdateTask(
			func() error { t.Fatal("action must not run"); return nil },
			[]entities.DependencyInfo{build},
			"'a.props' must change",
		)
		task.Preview = "-old\n+new\n"
		strategy := commands.NewTaskStrategy("props", &doubles.StubUpdater{Tasks: []entities.UpdateTask{task}}, log)

		// when
		used, err := strategy.Run(context.Background(), nil, true)

		// then
		require.NoError(t, err)
		assert.Equal(t, []entities.DependencyInfo{build}, used)
		assert.Contains(t, hook.LastEntry().Message, "+new")
	})

	t.Run("should stop at a failing action", func(t *testing.T) {
		t.Parallel()

		// given
		log, _ := logtest.NewNullLogger()
		updater := &doubles.StubUpdater{Tasks: []entities.UpdateTask{
			entities.NewUpdateTask(func() error { return assert.AnError }, nil),
			entities.NewUpdateTask(func() error { t.Fatal("second action must not run"); return nil }, nil),
		}}
		strategy := commands.NewTaskStrategy("props", updater, log)

		// when
		_, err := strategy.Run(context.Background(), nil, false)

		// then
		require.ErrorIs(t, err, assert.AnError)
		assert.Contains(t, err.Error(), `updater "props" failed to apply task`)
	})

	t.Run("should report task computation failures", func(t *testing.T) {
		t.Parallel()

		// given
		log, _ := logtest.NewNullLogger()
		strategy := commands.NewTaskStrategy("props", &doubles.StubUpdater{TasksErr: assert.AnError}, log)

		// when
		used, err := strategy.Run(context.Background(), nil, false)

		// then
		require.ErrorIs(t, err, assert.AnError)
		assert.Nil(t, used)
	})
}

func TestUpgradeStrategyRun(t *testing.T) {
	t.Parallel()

	t.Run("should upgrade and return the build infos used", func(t *testing.T) {
		t.Parallel()

		// given
		log, _ := logtest.NewNullLogger()
		build := builders.NewBuildInfoBuilder().BuildInfo()
		upgrader := &doubles.StubUpgrader{Used: []entities.DependencyInfo{build}}
		strategy := commands.NewUpgradeStrategy("project.json", upgrader, log)

		// when
		used, err := strategy.Run(context.Background(), []entities.DependencyInfo{build}, false)

		// then
		require.NoError(t, err)
		assert.Equal(t, 1, upgrader.CallCount)
		assert.Equal(t, []entities.DependencyInfo{build}, used)
	})

	t.Run("should skip upgraders that cannot preview in dry-run", func(t *testing.T) {
		t.Parallel()

		// given
		log, hook := logtest.NewNullLogger()
		upgrader := &doubles.StubUpgrader{}
		strategy := commands.NewUpgradeStrategy("project.json", upgrader, log)

		// when
		used, err := strategy.Run(context.Background(), nil, true)

		// then
		require.NoError(t, err)
		assert.Nil(t, used)
		assert.Zero(t, upgrader.CallCount)
		assert.Equal(t, "[project.json] upgrader does not support dry-run, skipping", hook.LastEntry().Message)
	})

	t.Run("should wrap upgrade failures", func(t *testing.T) {
		t.Parallel()

		// given
		log, _ := logtest.NewNullLogger()
		strategy := commands.NewUpgradeStrategy("project.json", &doubles.StubUpgrader{UpgradeErr: assert.AnError}, log)

		// when
		_, err := strategy.Run(context.Background(), nil, false)

		// then
		require.ErrorIs(t, err, assert.AnError)
	})
}
