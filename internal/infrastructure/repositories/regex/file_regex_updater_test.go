//go:build unit

package regex_test

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/depsync/internal/domain/entities"
	"github.com/rios0rios0/depsync/internal/infrastructure/repositories/regex"
	builders "github.com/rios0rios0/depsync/test/domain/entitybuilders"
)

const dependencyProps = `<Project>
  <PropertyGroup>
    <CoreFxVersion>1.0.0-beta-23</CoreFxVersion>
    <RuntimeVersion>4.0.0</RuntimeVersion>
  </PropertyGroup>
</Project>
`

func writeProps(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "dependencies.props")
	require.NoError(t, os.WriteFile(path, []byte(dependencyProps), 0o644))
	return path
}

func TestFileRegexUpdaterGetUpdateTasks(t *testing.T) {
	t.Parallel()

	t.Run("should replace an element with the release version", func(t *testing.T) {
		t.Parallel()

		// given
		log, _ := logtest.NewNullLogger()
		path := writeProps(t)
		build := builders.NewBuildInfoBuilder().WithReleaseVersion("1.0.0-beta-24").BuildInfo()
		updater, err := regex.NewFileRegexUpdater(
			path, regex.ElementPattern("CoreFxVersion"), "", regex.ReleaseValueSource{BuildInfoName: "corefx"}, log,
		)
		require.NoError(t, err)

		// when
		tasks, err := updater.GetUpdateTasks(context.Background(), []entities.DependencyInfo{build})

		// then
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, []entities.DependencyInfo{build}, tasks[0].UsedInfos)
		assert.Equal(t,
			"'"+path+"' must have release of corefx '1.0.0-beta-24' from corefx 1.0.0-beta-24",
			tasks[0].LogMessages[0],
		)

		require.NoError(t, tasks[0].Action())
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "<CoreFxVersion>1.0.0-beta-24</CoreFxVersion>")
		assert.Contains(t, string(data), "<RuntimeVersion>4.0.0</RuntimeVersion>")
	})

	t.Run("should replace a custom group with a package version", func(t *testing.T) {
		t.Parallel()

		// given
		log, _ := logtest.NewNullLogger()
		path := writeProps(t)
		build := builders.NewBuildInfoBuilder().WithPackage("System.Runtime", "4.3.0.0").BuildInfo()
		pattern := regexp.MustCompile(`<RuntimeVersion>(?P<runtime>[^<]+)</RuntimeVersion>`)
		updater, err := regex.NewFileRegexUpdater(
			path, pattern, "runtime", regex.PackageValueSource{PackageID: "System.Runtime"}, log,
		)
		require.NoError(t, err)

		// when
		err = updater.Upgrade(context.Background(), []entities.DependencyInfo{build})

		// then
		require.NoError(t, err)
		assert.Equal(t, []entities.DependencyInfo{build}, updater.BuildInfosUsed())
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "<RuntimeVersion>4.3.0</RuntimeVersion>")
	})

	t.Run("should write a visible marker when the build is missing", func(t *testing.T) {
		t.Parallel()

		// given
		log, hook := logtest.NewNullLogger()
		path := writeProps(t)
		updater, err := regex.NewFileRegexUpdater(
			path, regex.ElementPattern("CoreFxVersion"), "", regex.ReleaseValueSource{BuildInfoName: "coreclr"}, log,
		)
		require.NoError(t, err)

		// when
		tasks, err := updater.GetUpdateTasks(context.Background(), []entities.DependencyInfo{
			builders.NewBuildInfoBuilder().BuildInfo(),
		})

		// then
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Empty(t, tasks[0].UsedInfos)
		assert.Contains(t, tasks[0].Preview, "<CoreFxVersion>PROJECT 'coreclr' NOT FOUND</CoreFxVersion>")
		assert.Contains(t, hook.LastEntry().Message, "Could not find release of coreclr")
	})

	t.Run("should yield nothing when the file is current", func(t *testing.T) {
		t.Parallel()

		// given
		log, _ := logtest.NewNullLogger()
		path := writeProps(t)
		build := builders.NewBuildInfoBuilder().WithReleaseVersion("1.0.0-beta-23").BuildInfo()
		updater, err := regex.NewFileRegexUpdater(
			path, regex.ElementPattern("CoreFxVersion"), "", regex.ReleaseValueSource{BuildInfoName: "corefx"}, log,
		)
		require.NoError(t, err)

		// when
		tasks, err := updater.GetUpdateTasks(context.Background(), []entities.DependencyInfo{build})

		// then
		require.NoError(t, err)
		assert.Empty(t, tasks)
	})

	t.Run("should fail when two builds share the name", func(t *testing.T) {
		t.Parallel()

		// given
		log, _ := logtest.NewNullLogger()
		updater, err := regex.NewFileRegexUpdater(
			writeProps(t), regex.ElementPattern("CoreFxVersion"), "", regex.ReleaseValueSource{BuildInfoName: "corefx"}, log,
		)
		require.NoError(t, err)

		// when
		_, err = updater.GetUpdateTasks(context.Background(), []entities.DependencyInfo{
			builders.NewBuildInfoBuilder().BuildInfo(),
			builders.NewBuildInfoBuilder().WithReleaseVersion("2.0.0").BuildInfo(),
		})

		// then
		var ambiguous *entities.AmbiguousMatchError
		assert.ErrorAs(t, err, &ambiguous)
	})
	t.Run("should fail when the target file does not exist", func(t *testing.T) {
		t.Parallel()

		// given
		log, _ := logtest.NewNullLogger()
		missing := filepath.Join(t.TempDir(), "typo.props")
		updater, err := regex.NewFileRegexUpdater(
			missing, regex.ElementPattern("CoreFxVersion"), "", regex.ReleaseValueSource{BuildInfoName: "corefx"}, log,
		)
		require.NoError(t, err)

		// when
		tasks, err := updater.GetUpdateTasks(context.Background(), []entities.DependencyInfo{
			builders.NewBuildInfoBuilder().BuildInfo(),
		})

		// then
		var configErr *entities.ConfigurationError
		require.ErrorAs(t, err, &configErr)
		assert.Equal(t, "path", configErr.Field)
		assert.Empty(t, tasks)
		assert.NoFileExists(t, missing)
	})
}

func TestNewFileRegexUpdater(t *testing.T) {
	t.Parallel()

	t.Run("should reject a pattern without the group", func(t *testing.T) {
		t.Parallel()

		// given
		log, _ := logtest.NewNullLogger()

		// when
		_, err := regex.NewFileRegexUpdater(
			"a.props", regexp.MustCompile(`<V>(.*)</V>`), "", regex.PackageValueSource{PackageID: "x"}, log,
		)

		// then
		var configErr *entities.ConfigurationError
		assert.ErrorAs(t, err, &configErr)
	})
}

func TestReplaceGroupValue(t *testing.T) {
	t.Parallel()

	t.Run("should only replace the group span of every match", func(t *testing.T) {
		t.Parallel()

		// given
		pattern := regexp.MustCompile(`id="(?P<id>[^"]+)" v="(?P<version>[^"]+)"`)
		input := `<a id="x" v="1"/><a id="y" v="2"/>`

		// when
		output := regex.ReplaceGroupValue(pattern, input, "version", "9")

		// then
		assert.Equal(t, `<a id="x" v="9"/><a id="y" v="9"/>`, output)
	})

	t.Run("should leave the input alone for an unknown group", func(t *testing.T) {
		t.Parallel()

		// when
		output := regex.ReplaceGroupValue(regexp.MustCompile(`a`), "abc", "version", "z")

		// then
		assert.Equal(t, "abc", output)
	})
}
