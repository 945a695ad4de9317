package submodule

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/depsync/internal/domain/entities"
	"github.com/rios0rios0/depsync/internal/domain/repositories"
)

// commitHashLength is the size of a full SHA-1 object name.
const commitHashLength = 40

// LatestCommitSubmoduleUpdater moves the submodule at Path to the commit of
// the repository info for Repository and Ref.
type LatestCommitSubmoduleUpdater struct {
	Path       string
	Repository string
	Ref        string

	git repositories.GitRepository
	log logger.FieldLogger
}

func NewLatestCommitSubmoduleUpdater(
	path, repository, ref string,
	git repositories.GitRepository,
	log logger.FieldLogger,
) (*LatestCommitSubmoduleUpdater, error) {
	if repository == "" {
		return nil, entities.NewConfigurationError(
			"repository", "a repository must be specified, for example 'origin'",
		)
	}
	if ref == "" {
		return nil, entities.NewConfigurationError("ref", "a ref must be specified, for example 'master'")
	}

	return &LatestCommitSubmoduleUpdater{Path: path, Repository: repository, Ref: ref, git: git, log: log}, nil
}

func (it *LatestCommitSubmoduleUpdater) GetUpdateTasks(
	ctx context.Context,
	infos []entities.DependencyInfo,
) ([]entities.UpdateTask, error) {
	info, err := entities.FindRepositoryDependencyInfo(infos, it.Repository, it.Ref)
	if err != nil {
		return nil, err
	}
	it.log.Infof("For %s, found: %s", it.Path, info)

	status, err := it.git.SubmoduleStatus(ctx, it.Path)
	if err != nil {
		return nil, err
	}
	current, err := currentCommit(status)
	if err != nil {
		return nil, fmt.Errorf("submodule '%s': %w", it.Path, err)
	}

	if strings.EqualFold(current, info.Commit) {
		it.log.Debugf("Submodule '%s' is already at %s", it.Path, info.Commit)
		return nil, nil
	}

	fullPath := filepath.Join(it.git.Root(), it.Path)
	task := entities.NewUpdateTask(
		func() error {
			return it.git.FetchAndCheckout(ctx, fullPath, it.Repository, it.Ref, info.Commit)
		},
		[]entities.DependencyInfo{info},
		fmt.Sprintf("In '%s', HEAD must be %s", it.Path, info.Commit),
	)
	task.Preview = fmt.Sprintf("submodule %s: %s -> %s\n", it.Path, current, info.Commit)
	return []entities.UpdateTask{task}, nil
}

// currentCommit reads the recorded commit from 'git submodule status' output.
func currentCommit(status string) (string, error) {
	line := strings.TrimRight(status, "\r\n")
	if len(line) < commitHashLength+1 {
		return "", fmt.Errorf("unexpected submodule status output %q", status)
	}
	return line[1 : commitHashLength+1], nil
}
