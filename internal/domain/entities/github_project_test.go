//go:build unit

package entities_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/depsync/internal/domain/entities"
)

func TestParseGitHubURL(t *testing.T) {
	t.Parallel()

	t.Run("should parse owner and name and strip .git", func(t *testing.T) {
		t.Parallel()

		for _, raw := range []string{
			"https://github.com/dotnet/buildtools",
			"https://github.com/dotnet/buildtools.git",
			"https://www.github.com/dotnet/buildtools/",
		} {
			// when
			project, err := entities.ParseGitHubURL(raw)

			// then
			require.NoError(t, err, raw)
			assert.Equal(t, "dotnet/buildtools", project.String())
		}
	})

	t.Run("should reject other hosts and paths", func(t *testing.T) {
		t.Parallel()

		for _, raw := range []string{
			"https://gitlab.com/dotnet/buildtools",
			"https://github.com/dotnet",
			"https://github.com/dotnet/buildtools/tree/master",
		} {
			// when
			_, err := entities.ParseGitHubURL(raw)

			// then
			assert.Error(t, err, raw)
		}
	})
}

func TestNewGitHubAuth(t *testing.T) {
	t.Parallel()

	t.Run("should default user and email to the bot", func(t *testing.T) {
		t.Parallel()

		// when
		auth := entities.NewGitHubAuth("token", "", "")

		// then
		assert.Equal(t, entities.DefaultGitHubUser, auth.User)
		assert.Equal(t, entities.DefaultGitHubEmail, auth.Email)
	})
}

func TestPullRequestConfig(t *testing.T) {
	t.Parallel()

	t.Run("should fill owner, branch and author", func(t *testing.T) {
		t.Parallel()

		// given
		config := entities.PullRequestConfig{
			Auth:        entities.NewGitHubAuth("token", "bot", ""),
			ProjectRepo: "cli",
		}

		// when
		config = config.WithDefaults()

		// then
		require.NoError(t, config.Validate())
		assert.Equal(t, "dotnet/cli", config.Project().String())
		assert.Equal(t, "master", config.ProjectRepoBranch)
		assert.Equal(t, "bot", config.GitAuthorName)
	})

	t.Run("should require a token and a repository", func(t *testing.T) {
		t.Parallel()

		// given
		noToken := entities.PullRequestConfig{Auth: entities.NewGitHubAuth("", "", ""), ProjectRepo: "cli"}
		noRepo := entities.PullRequestConfig{Auth: entities.NewGitHubAuth("token", "", "")}

		// when / then
		var configErr *entities.ConfigurationError
		assert.ErrorAs(t, noToken.Validate(), &configErr)
		assert.ErrorAs(t, noRepo.Validate(), &configErr)
	})
}
