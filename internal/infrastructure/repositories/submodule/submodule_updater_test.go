//go:build unit

package submodule_test

import (
	"context"
	"path/filepath"
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/depsync/internal/domain/entities"
	"github.com/rios0rios0/depsync/internal/infrastructure/repositories/submodule"
	builders "github.com/rios0rios0/depsync/test/domain/entitybuilders"
	doubles "github.com/rios0rios0/depsync/test/infrastructure/repositorydoubles"
)

const (
	currentCommit = "1111111111111111111111111111111111111111"
	latestCommit  = "2222222222222222222222222222222222222222"
)

func TestNewLatestCommitSubmoduleUpdater(t *testing.T) {
	t.Parallel()

	t.Run("should require repository and ref", func(t *testing.T) {
		t.Parallel()

		// given
		log, _ := logtest.NewNullLogger()

		// when
		_, noRepo := submodule.NewLatestCommitSubmoduleUpdater("external/cli", "", "master", &doubles.SpyGitRepository{}, log)
		_, noRef := submodule.NewLatestCommitSubmoduleUpdater("external/cli", "https://github.com/dotnet/cli", "", &doubles.SpyGitRepository{}, log)

		// then
		var configErr *entities.ConfigurationError
		assert.ErrorAs(t, noRepo, &configErr)
		assert.ErrorAs(t, noRef, &configErr)
	})
}

func TestLatestCommitSubmoduleUpdaterGetUpdateTasks(t *testing.T) {
	t.Parallel()

	t.Run("should move the submodule to the latest commit", func(t *testing.T) {
		t.Parallel()

		// given
		log, _ := logtest.NewNullLogger()
		git := &doubles.SpyGitRepository{
			RootDir:         "/work",
			SubmoduleOutput: "+" + currentCommit + " external/cli (heads/master)\n",
		}
		info := builders.NewRepositoryInfoBuilder().
			WithRepository("https://github.com/dotnet/cli").
			WithCommit(latestCommit).
			BuildInfo()
		updater, err := submodule.NewLatestCommitSubmoduleUpdater("external/cli", info.Repository, "master", git, log)
		require.NoError(t, err)

		// when
		tasks, err := updater.GetUpdateTasks(context.Background(), []entities.DependencyInfo{info})

		// then
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, "In 'external/cli', HEAD must be "+latestCommit, tasks[0].LogMessages[0])
		assert.Equal(t, "submodule external/cli: "+currentCommit+" -> "+latestCommit+"\n", tasks[0].Preview)
		assert.Empty(t, git.CheckedOutPaths)

		require.NoError(t, tasks[0].Action())
		assert.Equal(t, []string{filepath.Join("/work", "external/cli")}, git.CheckedOutPaths)
		assert.Equal(t, latestCommit, git.CheckedOut)
	})

	t.Run("should yield nothing when the submodule is current", func(t *testing.T) {
		t.Parallel()

		// given
		log, _ := logtest.NewNullLogger()
		git := &doubles.SpyGitRepository{SubmoduleOutput: " " + latestCommit + " external/cli\n"}
		info := builders.NewRepositoryInfoBuilder().WithCommit(latestCommit).BuildInfo()
		updater, err := submodule.NewLatestCommitSubmoduleUpdater("external/cli", info.Repository, info.Ref, git, log)
		require.NoError(t, err)

		// when
		tasks, err := updater.GetUpdateTasks(context.Background(), []entities.DependencyInfo{info})

		// then
		require.NoError(t, err)
		assert.Empty(t, tasks)
	})
}
