//go:build unit

package mirror_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/depsync/internal/domain/entities"
	"github.com/rios0rios0/depsync/internal/infrastructure/repositories/mirror"
	builders "github.com/rios0rios0/depsync/test/domain/entitybuilders"
	doubles "github.com/rios0rios0/depsync/test/infrastructure/repositorydoubles"
)

const pinnedCommit = "0123456789abcdef0123456789abcdef01234567"

func remoteBuildTools() *doubles.SpyGitHubRepository {
	return &doubles.SpyGitHubRepository{
		Commits: map[string]*entities.GitCommit{
			pinnedCommit: {SHA: pinnedCommit, TreeSHA: "root"},
		},
		Trees: map[string]*entities.GitTree{
			"root": {SHA: "root", Entries: []entities.GitObject{
				{Path: "eng", Type: entities.TypeTree, SHA: "eng-tree", Mode: "040000"},
				{Path: "README.md", Type: entities.TypeBlob, SHA: "readme", Mode: entities.ModeFile},
			}},
			"eng-tree": {SHA: "eng-tree", Entries: []entities.GitObject{
				{Path: "build.sh", Type: entities.TypeBlob, SHA: "b1", Mode: entities.ModeExecutable},
				{Path: "Versions.props", Type: entities.TypeBlob, SHA: "b2", Mode: entities.ModeFile},
			}},
		},
		Contents: map[string]string{
			"eng/build.sh":       "#!/bin/sh\necho new\n",
			"eng/versions.props": "<Project />\n",
		},
	}
}

func buildToolsInfos() []entities.DependencyInfo {
	return []entities.DependencyInfo{
		builders.NewRepositoryInfoBuilder().WithCommit(pinnedCommit).BuildInfo(),
		builders.NewBuildInfoBuilder().BuildInfo(),
	}
}

func TestExternalFileUpdaterGetUpdateTasks(t *testing.T) {
	t.Parallel()

	t.Run("should rewrite contents, fix modes and create missing files", func(t *testing.T) {
		t.Parallel()

		// given
		log, _ := logtest.NewNullLogger()
		root := t.TempDir()
		buildScript := filepath.Join(root, "eng", "build.sh")
		versionsProps := filepath.Join(root, "eng", "versions.props")
		require.NoError(t, os.MkdirAll(filepath.Dir(buildScript), 0o755))
		require.NoError(t, os.WriteFile(buildScript, []byte("#!/bin/sh\necho old\n"), 0o644))
		git := &doubles.SpyGitRepository{RootDir: root, IndexModes: map[string]string{buildScript: entities.ModeFile}}
		github := remoteBuildTools()
		updater := mirror.NewExternalFileUpdater(
			"BuildTools", "eng", "eng", []string{"build.sh", "versions.props"}, github, git, log,
		)

		// when
		tasks, err := updater.GetUpdateTasks(context.Background(), buildToolsInfos())

		// then
		require.NoError(t, err)
		require.Len(t, tasks, 3)
		assert.Contains(t, tasks[0].LogMessages[0], "must have contents of 'build.sh'")
		assert.Contains(t, tasks[1].LogMessages[0], "must have mode 100755")
		assert.Contains(t, tasks[2].LogMessages[0], "must exist with contents 'Versions.props' (100644)")

		_, err = entities.ApplyUpdateTasks(tasks)
		require.NoError(t, err)
		data, err := os.ReadFile(buildScript)
		require.NoError(t, err)
		assert.Equal(t, "#!/bin/sh\necho new\n", string(data))
		data, err = os.ReadFile(versionsProps)
		require.NoError(t, err)
		assert.Equal(t, "<Project />\n", string(data))
		assert.Equal(t, map[string]bool{buildScript: true, versionsProps: false}, git.UpdatedIndexMode)

		require.Len(t, github.ContentRequests, 2)
		for _, request := range github.ContentRequests {
			assert.Equal(t, pinnedCommit, request.Ref)
			assert.Equal(t, "dotnet/buildtools", request.Project.String())
		}
		assert.Equal(t, []string{"root", "eng-tree"}, github.TreeRequests)
	})

	t.Run("should yield nothing for a mirrored file in sync", func(t *testing.T) {
		t.Parallel()

		// given
		log, _ := logtest.NewNullLogger()
		root := t.TempDir()
		readme := filepath.Join(root, "README.md")
		require.NoError(t, os.WriteFile(readme, []byte("hello\r\n"), 0o644))
		git := &doubles.SpyGitRepository{RootDir: root, IndexModes: map[string]string{readme: entities.ModeFile}}
		github := remoteBuildTools()
		github.Contents["README.md"] = "hello\n"
		updater := mirror.NewExternalFileUpdater("buildtools", "", "", []string{"README.md"}, github, git, log)

		// when
		tasks, err := updater.GetUpdateTasks(context.Background(), buildToolsInfos())

		// then
		require.NoError(t, err)
		assert.Empty(t, tasks)
	})

	t.Run("should fail when the remote path does not exist", func(t *testing.T) {
		t.Parallel()

		// given
		log, _ := logtest.NewNullLogger()
		git := &doubles.SpyGitRepository{RootDir: t.TempDir()}
		updater := mirror.NewExternalFileUpdater(
			"buildtools", "", "eng", []string{"missing.sh"}, remoteBuildTools(), git, log,
		)

		// when
		_, err := updater.GetUpdateTasks(context.Background(), buildToolsInfos())

		// then
		var ambiguous *entities.AmbiguousMatchError
		require.ErrorAs(t, err, &ambiguous)
		assert.Equal(t, entities.TypeBlob, ambiguous.What)
		assert.Empty(t, ambiguous.Matches)
	})

	t.Run("should fail when no repository info has the identity", func(t *testing.T) {
		t.Parallel()

		// given
		log, _ := logtest.NewNullLogger()
		updater := mirror.NewExternalFileUpdater(
			"corefx", "", "", []string{"a"}, remoteBuildTools(), &doubles.SpyGitRepository{}, log,
		)

		// when
		_, err := updater.GetUpdateTasks(context.Background(), buildToolsInfos())

		// then
		var ambiguous *entities.AmbiguousMatchError
		assert.ErrorAs(t, err, &ambiguous)
	})

	t.Run("should surface download failures", func(t *testing.T) {
		t.Parallel()

		// given
		log, _ := logtest.NewNullLogger()
		github := remoteBuildTools()
		github.ContentsErr = assert.AnError
		updater := mirror.NewExternalFileUpdater(
			"buildtools", "", "eng", []string{"build.sh", "Versions.props"}, github,
			&doubles.SpyGitRepository{RootDir: t.TempDir()}, log,
		)

		// when
		_, err := updater.GetUpdateTasks(context.Background(), buildToolsInfos())

		// then
		assert.ErrorIs(t, err, assert.AnError)
	})
}
