package mirror

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/depsync/internal/domain/entities"
	"github.com/rios0rios0/depsync/internal/domain/repositories"
	"github.com/rios0rios0/depsync/internal/infrastructure/repositories/files"
)

// RemoteFileUpdater copies files from a repository at the commit of its
// branch head. Missing local files are created and added to the index as
// regular files; modes of existing files are not handled.
type RemoteFileUpdater struct {
	Repository    string
	Ref           string
	LocalRootDir  string
	RemoteRootDir string
	RelativePaths []string

	github repositories.GitHubRepository
	git    repositories.GitRepository
	log    logger.FieldLogger
}

func NewRemoteFileUpdater(
	repository, ref, localRootDir, remoteRootDir string,
	relativePaths []string,
	github repositories.GitHubRepository,
	git repositories.GitRepository,
	log logger.FieldLogger,
) *RemoteFileUpdater {
	return &RemoteFileUpdater{
		Repository:    repository,
		Ref:           ref,
		LocalRootDir:  localRootDir,
		RemoteRootDir: remoteRootDir,
		RelativePaths: relativePaths,
		github:        github,
		git:           git,
		log:           log,
	}
}

func (it *RemoteFileUpdater) GetUpdateTasks(
	ctx context.Context,
	infos []entities.DependencyInfo,
) ([]entities.UpdateTask, error) {
	info, err := entities.FindRepositoryDependencyInfo(infos, it.Repository, it.Ref)
	if err != nil {
		return nil, err
	}

	project, err := entities.ParseGitHubURL(info.Repository)
	if err != nil {
		return nil, err
	}

	var tasks []entities.UpdateTask
	for _, path := range it.RelativePaths {
		remotePath := strings.Join(append(splitPath(it.RemoteRootDir), splitPath(path)...), "/")
		fullPath := filepath.Join(it.git.Root(), it.LocalRootDir, filepath.FromSlash(path))

		contents, fetchErr := it.github.GetFileContents(ctx, remotePath, project, info.Commit)
		if fetchErr != nil {
			return nil, fetchErr
		}

		update, prepareErr := files.PrepareUpdate(fullPath, func(string) (string, error) {
			return contents, nil
		})
		if prepareErr != nil {
			return nil, prepareErr
		}
		if update == nil {
			it.log.Debugf("'%s' already matches '%s'", fullPath, remotePath)
			continue
		}

		task := update.Task(
			[]entities.DependencyInfo{info},
			fmt.Sprintf("'%s' must have contents of %s '%s'", fullPath, info, remotePath),
		)
		if update.Creates() {
			task.Action = it.createAction(ctx, update)
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func (it *RemoteFileUpdater) createAction(ctx context.Context, update *files.ContentUpdate) func() error {
	return func() error {
		it.log.Infof("Creating new file '%s'.", update.Path)
		if err := update.Apply(); err != nil {
			return err
		}
		return it.git.UpdateIndexMode(ctx, update.Path, false)
	}
}
