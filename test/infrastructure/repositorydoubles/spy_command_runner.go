//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/depsync/internal/domain/entities"
	"github.com/rios0rios0/depsync/internal/domain/repositories"
)

// SpyCommandRunner implements repositories.CommandRunner, answering every
// command with the configured output and exit code.
type SpyCommandRunner struct {
	Stdout   string
	Stderr   string
	ExitCode int
	RunErr   error
	Commands []entities.Command
}

var _ repositories.CommandRunner = (*SpyCommandRunner)(nil)

func (s *SpyCommandRunner) Run(_ context.Context, command entities.Command) (*entities.CommandResult, error) {
	s.Commands = append(s.Commands, command)
	if s.RunErr != nil {
		return nil, s.RunErr
	}
	return &entities.CommandResult{
		Command:  command,
		ExitCode: s.ExitCode,
		Stdout:   s.Stdout,
		Stderr:   s.Stderr,
	}, nil
}

// Last returns the most recent command.
func (s *SpyCommandRunner) Last() entities.Command {
	return s.Commands[len(s.Commands)-1]
}
