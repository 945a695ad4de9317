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
	"github.com/rios0rios0/depsync/internal/domain/repositories"
	commanddoubles "github.com/rios0rios0/depsync/test/domain/commanddoubles"
	builders "github.com/rios0rios0/depsync/test/domain/entitybuilders"
	doubles "github.com/rios0rios0/depsync/test/infrastructure/repositorydoubles"
)

func TestDependencyUpdaterUpdate(t *testing.T) {
	t.Parallel()

	t.Run("should run every strategy and union the used infos", func(t *testing.T) {
		t.Parallel()

		// given
		log, _ := logtest.NewNullLogger()
		metrics := &doubles.SpyMetricsRecorder{}
		coreFx := builders.NewBuildInfoBuilder().WithName("corefx").BuildInfo()
		coreClr := builders.NewBuildInfoBuilder().WithName("coreclr").BuildInfo()
		first := &doubles.StubStrategy{StrategyName: "first", Used: []entities.DependencyInfo{coreFx}}
		second := &doubles.StubStrategy{StrategyName: "second", Used: []entities.DependencyInfo{coreClr, coreFx}}
		updater := commands.NewDependencyUpdater(&doubles.SpyGitRepository{}, metrics, log)

		// when
		used, err := updater.Update(
			context.Background(),
			[]repositories.DependencyStrategy{first, second},
			[]entities.DependencyInfo{coreFx, coreClr},
			true,
		)

		// then
		require.NoError(t, err)
		assert.Equal(t, []entities.DependencyInfo{coreFx, coreClr}, used)
		assert.Equal(t, []bool{true}, first.DryRuns)
		assert.Equal(t, []string{"first", "second"}, metrics.Strategies)
	})

	t.Run("should stop at the first failing strategy", func(t *testing.T) {
		t.Parallel()

		// given
		log, _ := logtest.NewNullLogger()
		failing := &doubles.StubStrategy{StrategyName: "failing", RunErr: assert.AnError}
		next := &doubles.StubStrategy{StrategyName: "next"}
		updater := commands.NewDependencyUpdater(&doubles.SpyGitRepository{}, nil, log)

		// when
		_, err := updater.Update(context.Background(), []repositories.DependencyStrategy{failing, next}, nil, false)

		// then
		require.ErrorIs(t, err, assert.AnError)
		assert.Empty(t, next.DryRuns)
	})
}

func TestDependencyUpdaterUpdateAndSubmitPullRequest(t *testing.T) {
	t.Parallel()

	t.Run("should halt when git reports changes but no info was used", func(t *testing.T) {
		t.Parallel()

		// given
		log, _ := logtest.NewNullLogger()
		git := &doubles.SpyGitRepository{Changes: true}
		submitter := &commanddoubles.StubSubmitter{}
		strategy := &doubles.StubStrategy{StrategyName: "sentinel"}
		updater := commands.NewDependencyUpdater(git, nil, log)

		// when
		result, err := updater.UpdateAndSubmitPullRequest(
			context.Background(), []repositories.DependencyStrategy{strategy}, nil, submitter,
		)

		// then
		var violation *entities.InvariantViolation
		require.ErrorAs(t, err, &violation)
		require.ErrorIs(t, err, entities.ErrGitStatusMismatch)
		assert.Equal(t, "Git has modified files: true. DependencyInfo is updated: false.", violation.Detail)
		assert.Nil(t, result)
		assert.Zero(t, submitter.SubmitCallCount)
	})

	t.Run("should halt when infos were used but git is clean", func(t *testing.T) {
		t.Parallel()

		// given
		log, _ := logtest.NewNullLogger()
		build := builders.NewBuildInfoBuilder().BuildInfo()
		strategy := &doubles.StubStrategy{StrategyName: "props", Used: []entities.DependencyInfo{build}}
		submitter := &commanddoubles.StubSubmitter{}
		updater := commands.NewDependencyUpdater(&doubles.SpyGitRepository{}, nil, log)

		// when
		_, err := updater.UpdateAndSubmitPullRequest(
			context.Background(), []repositories.DependencyStrategy{strategy}, nil, submitter,
		)

		// then
		require.ErrorIs(t, err, entities.ErrGitStatusMismatch)
		assert.Zero(t, submitter.SubmitCallCount)
	})

	t.Run("should report up to date without submitting", func(t *testing.T) {
		t.Parallel()

		// given
		log, hook := logtest.NewNullLogger()
		metrics := &doubles.SpyMetricsRecorder{}
		submitter := &commanddoubles.StubSubmitter{}
		updater := commands.NewDependencyUpdater(&doubles.SpyGitRepository{}, metrics, log)

		// when
		result, err := updater.UpdateAndSubmitPullRequest(
			context.Background(),
			[]repositories.DependencyStrategy{&doubles.StubStrategy{StrategyName: "props"}},
			nil,
			submitter,
		)

		// then
		require.NoError(t, err)
		assert.False(t, result.ChangesMade)
		assert.Equal(t, commands.StateInitial, result.State)
		assert.Zero(t, submitter.SubmitCallCount)
		assert.Equal(t, []string{"Initial"}, metrics.Submissions)
		assert.Equal(t, "Dependencies are currently up to date", hook.LastEntry().Message)
	})

	t.Run("should submit the used infos when git agrees", func(t *testing.T) {
		t.Parallel()

		// given
		log, _ := logtest.NewNullLogger()
		build := builders.NewBuildInfoBuilder().BuildInfo()
		strategy := &doubles.StubStrategy{StrategyName: "props", Used: []entities.DependencyInfo{build}}
		pullRequest := &entities.PullRequest{ID: 7, Title: "Update corefx"}
		submitter := &commanddoubles.StubSubmitter{SubmitResult: &commands.SubmitResult{
			CommitMessage: "Update corefx to 1.0.0-beta-24",
			Branch:        "UpdateDependencies20261018000000",
			PullRequest:   pullRequest,
			State:         commands.StatePRSubmitted,
		}}
		git := &doubles.SpyGitRepository{Changes: true}
		updater := commands.NewDependencyUpdater(git, nil, log)

		// when
		result, err := updater.UpdateAndSubmitPullRequest(
			context.Background(), []repositories.DependencyStrategy{strategy}, nil, submitter,
		)

		// then
		require.NoError(t, err)
		assert.True(t, result.ChangesMade)
		assert.Equal(t, commands.StatePRSubmitted, result.State)
		assert.Same(t, pullRequest, result.PullRequest)
		assert.Equal(t, "UpdateDependencies20261018000000", result.Branch)
		assert.Equal(t, []entities.DependencyInfo{build}, submitter.LastUsedInfos)
		assert.Equal(t, []bool{false}, strategy.DryRuns)
	})

	t.Run("should return the partial result of a failed submission", func(t *testing.T) {
		t.Parallel()

		// given
		log, _ := logtest.NewNullLogger()
		build := builders.NewBuildInfoBuilder().BuildInfo()
		strategy := &doubles.StubStrategy{StrategyName: "props", Used: []entities.DependencyInfo{build}}
		submitErr := &commands.SubmitError{State: commands.StatePushed, Err: assert.AnError}
		submitter := &commanddoubles.StubSubmitter{
			SubmitResult: &commands.SubmitResult{Branch: "UpdateDependencies1", State: commands.StatePushed},
			SubmitErr:    submitErr,
		}
		updater := commands.NewDependencyUpdater(&doubles.SpyGitRepository{Changes: true}, nil, log)

		// when
		result, err := updater.UpdateAndSubmitPullRequest(
			context.Background(), []repositories.DependencyStrategy{strategy}, nil, submitter,
		)

		// then
		require.ErrorIs(t, err, assert.AnError)
		require.NotNil(t, result)
		assert.Equal(t, commands.StatePushed, result.State)
		assert.Equal(t, "UpdateDependencies1", result.Branch)
	})
}
