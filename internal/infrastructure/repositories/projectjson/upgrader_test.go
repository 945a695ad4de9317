//go:build unit

package projectjson_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/depsync/internal/domain/entities"
	"github.com/rios0rios0/depsync/internal/infrastructure/repositories/projectjson"
	builders "github.com/rios0rios0/depsync/test/domain/entitybuilders"
)

const projectJSON = `{
  "version": "1.0.0-*",
  "dependencies": {
    "System.Runtime": "4.0.0-beta-23",
    "Newtonsoft.Json": "9.0.1",
    "System.IO": {
      "version": "4.0.0-beta-23",
      "type": "build"
    }
  },
  "frameworks": {
    "netcoreapp1.0": {
      "dependencies": {
        "System.Linq": "[4.0.0-beta-23, )"
      },
      "imports": [],
      "buildOptions": {
        "warningsAsErrors": true,
        "nowarn": [1591, "CS1998"]
      }
    }
  }
}
`

func writeProject(t *testing.T, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "project.json")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func coreFxBuild() *entities.BuildInfo {
	return builders.NewBuildInfoBuilder().
		WithPackage("System.Runtime", "4.3.0-beta-24").
		WithPackage("System.IO", "4.3.0-beta-24").
		WithPackage("System.Linq", "4.3.0-beta-24").
		WithPackage("Newtonsoft.Json", "10.0.1").
		BuildInfo()
}

func TestUpgraderUpgrade(t *testing.T) {
	t.Parallel()

	t.Run("should rewrite prerelease dependencies and keep the layout", func(t *testing.T) {
		t.Parallel()

		// given
		log, _ := logtest.NewNullLogger()
		path := writeProject(t, projectJSON)
		build := coreFxBuild()
		upgrader := projectjson.NewUpgrader([]string{path}, true, log)

		// when
		err := upgrader.Upgrade(context.Background(), []entities.DependencyInfo{build})

		// then
		require.NoError(t, err)
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		expected := strings.NewReplacer(
			`"System.Runtime": "4.0.0-beta-23"`, `"System.Runtime": "4.3.0-beta-24"`,
			`"version": "4.0.0-beta-23"`, `"version": "4.3.0-beta-24"`,
			`"System.Linq": "[4.0.0-beta-23, )"`, `"System.Linq": "4.3.0-beta-24"`,
			"[1591, \"CS1998\"]", "[\n          1591,\n          \"CS1998\"\n        ]",
		).Replace(projectJSON)
		assert.Equal(t, expected, string(data))
		assert.Equal(t, []entities.DependencyInfo{build}, upgrader.BuildInfosUsed())
	})

	t.Run("should rewrite stable dependencies when allowed", func(t *testing.T) {
		t.Parallel()

		// given
		log, _ := logtest.NewNullLogger()
		path := writeProject(t, "{\n  \"dependencies\": {\n    \"Newtonsoft.Json\": \"9.0.1\"\n  }\n}\n")
		upgrader := projectjson.NewUpgrader([]string{path}, false, log)

		// when
		tasks, err := upgrader.GetUpdateTasks(context.Background(), []entities.DependencyInfo{coreFxBuild()})

		// then
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, "Writing changes to "+path, tasks[0].LogMessages[0])
		assert.Contains(t, tasks[0].Preview, `+    "Newtonsoft.Json": "10.0.1"`)
	})

	t.Run("should leave stable dependencies alone by default", func(t *testing.T) {
		t.Parallel()

		// given
		log, _ := logtest.NewNullLogger()
		path := writeProject(t, "{\n  \"dependencies\": {\n    \"Newtonsoft.Json\": \"9.0.1\"\n  }\n}\n")
		upgrader := projectjson.NewUpgrader([]string{path}, true, log)

		// when
		tasks, err := upgrader.GetUpdateTasks(context.Background(), []entities.DependencyInfo{coreFxBuild()})

		// then
		require.NoError(t, err)
		assert.Empty(t, tasks)
	})

	t.Run("should skip unreadable files with a warning", func(t *testing.T) {
		t.Parallel()

		// given
		log, hook := logtest.NewNullLogger()
		broken := writeProject(t, "{ not json")
		upgrader := projectjson.NewUpgrader([]string{broken}, true, log)

		// when
		err := upgrader.Upgrade(context.Background(), []entities.DependencyInfo{coreFxBuild()})

		// then
		require.NoError(t, err)
		assert.Empty(t, upgrader.BuildInfosUsed())
		assert.Contains(t, hook.LastEntry().Message, "Non-fatal error reading")
	})

	t.Run("should skip versions it cannot parse", func(t *testing.T) {
		t.Parallel()

		// given
		log, hook := logtest.NewNullLogger()
		path := writeProject(t, "{\n  \"dependencies\": {\n    \"System.Runtime\": \"latest\"\n  }\n}\n")
		upgrader := projectjson.NewUpgrader([]string{path}, true, log)

		// when
		tasks, err := upgrader.GetUpdateTasks(context.Background(), []entities.DependencyInfo{coreFxBuild()})

		// then
		require.NoError(t, err)
		assert.Empty(t, tasks)
		assert.Equal(t, "Couldn't parse 'latest' for package 'System.Runtime' in '"+path+"'. Skipping.", hook.LastEntry().Message)
	})
}
