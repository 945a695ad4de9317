package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/depsync/internal/domain/entities"
)

// ExecCommandRunner runs commands with os/exec, one at a time, each bounded
// by a timeout.
type ExecCommandRunner struct {
	timeout time.Duration
	log     logger.FieldLogger
}

// NewExecCommandRunner creates a runner; a zero timeout means
// entities.DefaultCommandTimeout.
func NewExecCommandRunner(timeout time.Duration, log logger.FieldLogger) *ExecCommandRunner {
	if timeout <= 0 {
		timeout = entities.DefaultCommandTimeout
	}
	return &ExecCommandRunner{timeout: timeout, log: log}
}

// Run executes the command and captures its output. Quiet commands are
// neither echoed nor have their output logged.
func (it *ExecCommandRunner) Run(ctx context.Context, command entities.Command) (*entities.CommandResult, error) {
	ctx, cancel := context.WithTimeout(ctx, it.timeout)
	defer cancel()

	if !command.Quiet {
		it.log.Debugf("EXEC %s", command.CommandLine())
	}

	//nolint:gosec // commands are built from configuration, not user input
	cmd := exec.CommandContext(ctx, command.Name, command.Args...)
	cmd.Dir = command.Dir
	if len(command.Env) > 0 {
		cmd.Env = append(os.Environ(), command.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	result := &entities.CommandResult{
		Command: command,
		Stdout:  stdout.String(),
		Stderr:  stderr.String(),
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		operation := "command"
		if !command.Quiet {
			operation = fmt.Sprintf("command '%s'", command.CommandLine())
		}
		return nil, &entities.TimeoutError{Operation: operation, Err: ctx.Err()}
	}

	var exitErr *exec.ExitError
	switch {
	case runErr == nil:
	case errors.As(runErr, &exitErr):
		result.ExitCode = exitErr.ExitCode()
	default:
		if command.Quiet {
			return nil, fmt.Errorf("failed to start %s", command.Name)
		}
		return nil, fmt.Errorf("failed to start '%s': %w", command.CommandLine(), runErr)
	}

	if !command.Quiet {
		it.log.Debugf("EXEC exited with %d", result.ExitCode)
		if result.Stderr != "" {
			it.log.Debugf("stderr: %s", result.Stderr)
		}
	}
	return result, nil
}
