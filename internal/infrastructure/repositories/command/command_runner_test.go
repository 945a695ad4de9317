//go:build unit

package command_test

import (
	"context"
	"testing"
	"time"

	logger "github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/depsync/internal/domain/entities"
	"github.com/rios0rios0/depsync/internal/infrastructure/repositories/command"
)

func TestExecCommandRunnerRun(t *testing.T) {
	t.Parallel()

	t.Run("should capture output and a non-zero exit code without failing", func(t *testing.T) {
		t.Parallel()

		// given
		log, _ := logtest.NewNullLogger()
		runner := command.NewExecCommandRunner(time.Minute, log)
		cmd := entities.Command{Name: "sh", Args: []string{"-c", "echo out; echo err >&2; exit 3"}, Dir: t.TempDir()}

		// when
		result, err := runner.Run(context.Background(), cmd)

		// then
		require.NoError(t, err)
		assert.Equal(t, 3, result.ExitCode)
		assert.Equal(t, "out\n", result.Stdout)
		assert.Equal(t, "err\n", result.Stderr)
		assert.Error(t, result.EnsureSuccessful())
	})

	t.Run("should pass extra environment variables", func(t *testing.T) {
		t.Parallel()

		// given
		log, _ := logtest.NewNullLogger()
		runner := command.NewExecCommandRunner(0, log)
		cmd := entities.Command{Name: "sh", Args: []string{"-c", "printf %s \"$DEPSYNC_VALUE\""}, Env: []string{"DEPSYNC_VALUE=42"}}

		// when
		result, err := runner.Run(context.Background(), cmd)

		// then
		require.NoError(t, err)
		assert.Equal(t, "42", result.Stdout)
	})

	t.Run("should return a timeout error when the deadline passes", func(t *testing.T) {
		t.Parallel()

		// given
		log, _ := logtest.NewNullLogger()
		runner := command.NewExecCommandRunner(50*time.Millisecond, log)
		cmd := entities.Command{Name: "sleep", Args: []string{"5"}}

		// when
		_, err := runner.Run(context.Background(), cmd)

		// then
		var timeoutErr *entities.TimeoutError
		assert.ErrorAs(t, err, &timeoutErr)
	})

	t.Run("should keep quiet commands out of logs and errors", func(t *testing.T) {
		t.Parallel()

		// given
		log, hook := logtest.NewNullLogger()
		log.SetLevel(logger.DebugLevel)
		runner := command.NewExecCommandRunner(time.Minute, log)
		cmd := entities.Command{Name: "depsync-missing-binary", Args: []string{"secret-token"}, Quiet: true}

		// when
		_, err := runner.Run(context.Background(), cmd)

		// then
		require.Error(t, err)
		assert.NotContains(t, err.Error(), "secret-token")
		for _, entry := range hook.AllEntries() {
			assert.NotContains(t, entry.Message, "secret-token")
		}
	})
}
