package entities

import "strings"

// Command is an external process invocation.
type Command struct {
	Name string
	Args []string
	Dir  string
	Env  []string
	// Quiet keeps arguments and output out of logs and errors.
	Quiet bool
}

// NewGitCommand creates a git Command running in dir.
func NewGitCommand(dir string, args ...string) Command {
	return Command{Name: "git", Args: args, Dir: dir}
}

// CommandLine renders the command for logging.
func (c Command) CommandLine() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// CommandResult is the captured outcome of a finished process.
type CommandResult struct {
	Command  Command
	ExitCode int
	Stdout   string
	Stderr   string
}

// EnsureSuccessful returns a ProcessFailure unless the exit code is zero.
func (r *CommandResult) EnsureSuccessful() error {
	if r.ExitCode == 0 {
		return nil
	}

	failure := &ProcessFailure{ExitCode: r.ExitCode, Suppressed: r.Command.Quiet}
	if !r.Command.Quiet {
		failure.CommandLine = r.Command.CommandLine()
		failure.Stdout = r.Stdout
		failure.Stderr = r.Stderr
	}
	return failure
}
