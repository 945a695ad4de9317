package repositories

import (
	"context"

	"github.com/rios0rios0/depsync/internal/domain/entities"
)

// CommandRunner executes external processes. A non-zero exit code is not an
// error; callers decide with CommandResult.EnsureSuccessful. Run fails only
// when the process cannot start or exceeds its timeout.
type CommandRunner interface {
	Run(ctx context.Context, command entities.Command) (*entities.CommandResult, error)
}
