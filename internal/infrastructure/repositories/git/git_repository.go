package git

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/depsync/internal/domain/entities"
	"github.com/rios0rios0/depsync/internal/domain/repositories"
)

const (
	githubHost     = "github.com"
	indexModeWidth = 6
)

// CLIGitRepository runs the git executable through a CommandRunner in the
// working tree root.
type CLIGitRepository struct {
	root   string
	runner repositories.CommandRunner
	log    logger.FieldLogger
}

// NewCLIGitRepository creates a CLIGitRepository for root.
func NewCLIGitRepository(root string, runner repositories.CommandRunner, log logger.FieldLogger) *CLIGitRepository {
	return &CLIGitRepository{root: root, runner: runner, log: log}
}

func (it *CLIGitRepository) Root() string { return it.root }

func (it *CLIGitRepository) HasChanges(ctx context.Context) (bool, error) {
	output, err := it.output(ctx, entities.NewGitCommand(it.root, "status", "--porcelain"))
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(output) != "", nil
}

func (it *CLIGitRepository) Commit(ctx context.Context, message, authorName, authorEmail string) error {
	command := entities.NewGitCommand(
		it.root,
		"commit", "-a", "-m", message, "--author", fmt.Sprintf("%s <%s>", authorName, authorEmail),
	)
	command.Env = []string{
		"GIT_COMMITTER_NAME=" + authorName,
		"GIT_COMMITTER_EMAIL=" + authorEmail,
	}
	_, err := it.output(ctx, command)
	return err
}

func (it *CLIGitRepository) Push(ctx context.Context, auth entities.GitHubAuth, repo, branch string) error {
	path := fmt.Sprintf("/%s/%s.git", auth.User, repo)
	refSpec := "HEAD:refs/heads/" + branch

	redacted := url.URL{Scheme: "https", Host: githubHost, Path: path}
	authenticated := url.URL{
		Scheme: "https",
		User:   url.UserPassword(auth.User, auth.AuthToken),
		Host:   githubHost,
		Path:   path,
	}

	logMessage := fmt.Sprintf("git push %s %s", redacted.String(), refSpec)
	it.log.Infof("EXEC %s", logMessage)

	command := entities.NewGitCommand(it.root, "push", authenticated.String(), refSpec)
	command.Quiet = true

	result, err := it.runner.Run(ctx, command)
	if err != nil {
		return err
	}

	message := fmt.Sprintf("%s exited with %d", logMessage, result.ExitCode)
	if result.ExitCode == 0 {
		it.log.Infof("EXEC success: %s", message)
	} else {
		it.log.Errorf("EXEC failure: %s", message)
	}
	return result.EnsureSuccessful()
}

func (it *CLIGitRepository) IndexMode(ctx context.Context, path string) (string, bool, error) {
	output, err := it.output(ctx, entities.NewGitCommand(it.root, "ls-files", "--stage", "--", path))
	if err != nil {
		return "", false, err
	}

	output = strings.TrimSpace(output)
	if len(output) < indexModeWidth {
		return "", false, nil
	}
	return output[:indexModeWidth], true, nil
}

func (it *CLIGitRepository) UpdateIndexMode(ctx context.Context, path string, executable bool) error {
	chmod := "--chmod=-x"
	if executable {
		chmod = "--chmod=+x"
	}
	_, err := it.output(ctx, entities.NewGitCommand(it.root, "update-index", "--add", chmod, "--", path))
	return err
}

func (it *CLIGitRepository) LsRemoteHeads(ctx context.Context, repository, ref string) (string, error) {
	return it.output(ctx, entities.NewGitCommand(it.root, "ls-remote", "--heads", repository, ref))
}

func (it *CLIGitRepository) SubmoduleStatus(ctx context.Context, path string) (string, error) {
	return it.output(ctx, entities.NewGitCommand(it.root, "submodule", "status", "--cached", path))
}

func (it *CLIGitRepository) FetchAndCheckout(ctx context.Context, path, repository, ref, commit string) error {
	if _, err := it.output(ctx, entities.NewGitCommand(it.root, "-C", path, "fetch", repository, ref)); err != nil {
		return err
	}
	_, err := it.output(ctx, entities.NewGitCommand(it.root, "-C", path, "checkout", commit))
	return err
}

func (it *CLIGitRepository) output(ctx context.Context, command entities.Command) (string, error) {
	result, err := it.runner.Run(ctx, command)
	if err != nil {
		return "", err
	}
	if err = result.EnsureSuccessful(); err != nil {
		return "", err
	}
	return result.Stdout, nil
}
