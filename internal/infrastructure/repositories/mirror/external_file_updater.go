package mirror

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	logger "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/rios0rios0/depsync/internal/domain/entities"
	"github.com/rios0rios0/depsync/internal/domain/repositories"
	"github.com/rios0rios0/depsync/internal/infrastructure/repositories/files"
)

// fetchConcurrency bounds the parallel remote content downloads.
const fetchConcurrency = 4

// ExternalFileUpdater keeps local files identical, contents and executable
// bit, to files of a remote repository at the commit pinned by the
// repository info with the configured identity.
type ExternalFileUpdater struct {
	Identity      string
	LocalRootDir  string
	RemoteRootDir string
	RelativePaths []string

	github repositories.GitHubRepository
	git    repositories.GitRepository
	log    logger.FieldLogger
}

// NewExternalFileUpdater creates an ExternalFileUpdater. LocalRootDir is
// relative to the working tree root.
func NewExternalFileUpdater(
	identity, localRootDir, remoteRootDir string,
	relativePaths []string,
	github repositories.GitHubRepository,
	git repositories.GitRepository,
	log logger.FieldLogger,
) *ExternalFileUpdater {
	return &ExternalFileUpdater{
		Identity:      identity,
		LocalRootDir:  localRootDir,
		RemoteRootDir: remoteRootDir,
		RelativePaths: relativePaths,
		github:        github,
		git:           git,
		log:           log,
	}
}

// remoteFile is one mirrored path with everything known about its remote side.
type remoteFile struct {
	relativePath string
	remotePath   string
	object       entities.GitObject
	contents     string
}

func (it *ExternalFileUpdater) GetUpdateTasks(
	ctx context.Context,
	infos []entities.DependencyInfo,
) ([]entities.UpdateTask, error) {
	info, err := entities.FindRepositoryDependencyInfoByIdentity(infos, it.Identity)
	if err != nil {
		return nil, err
	}

	project, err := entities.ParseGitHubURL(info.Repository)
	if err != nil {
		return nil, err
	}

	remoteFiles, err := it.resolveRemoteFiles(ctx, project, info)
	if err != nil {
		return nil, err
	}

	var tasks []entities.UpdateTask
	for _, remote := range remoteFiles {
		fileTasks, taskErr := it.tasksFor(ctx, info, remote)
		if taskErr != nil {
			return nil, taskErr
		}
		tasks = append(tasks, fileTasks...)
	}
	return tasks, nil
}

// resolveRemoteFiles walks the tree for every path, then downloads the
// contents in parallel.
func (it *ExternalFileUpdater) resolveRemoteFiles(
	ctx context.Context,
	project entities.GitHubProject,
	info *entities.RepositoryDependencyInfo,
) ([]*remoteFile, error) {
	commit, err := it.github.GetCommit(ctx, project, info.Commit)
	if err != nil {
		return nil, err
	}
	root, err := it.github.GetTree(ctx, project, commit.TreeSHA)
	if err != nil {
		return nil, err
	}

	walker := newTreeWalker(it.github, project, root, it.log)
	remoteDirSegments := splitPath(it.RemoteRootDir)

	remoteFiles := make([]*remoteFile, 0, len(it.RelativePaths))
	for _, path := range it.RelativePaths {
		pathSegments := splitPath(path)
		if len(pathSegments) == 0 {
			return nil, entities.NewConfigurationError("paths", "empty relative path")
		}

		segments := append(append([]string{}, remoteDirSegments...), pathSegments...)
		object, walkErr := walker.findBlob(ctx, segments[:len(segments)-1], segments[len(segments)-1])
		if walkErr != nil {
			return nil, fmt.Errorf("failed to find '%s' in %s: %w", strings.Join(segments, "/"), info, walkErr)
		}

		remoteFiles = append(remoteFiles, &remoteFile{
			relativePath: path,
			remotePath:   strings.Join(segments, "/"),
			object:       object,
		})
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(fetchConcurrency)
	for _, remote := range remoteFiles {
		group.Go(func() error {
			contents, fetchErr := it.github.GetFileContents(groupCtx, remote.remotePath, project, info.Commit)
			if fetchErr != nil {
				return fmt.Errorf("fetching '%s': %w", remote.remotePath, fetchErr)
			}
			remote.contents = contents
			return nil
		})
	}
	if err = group.Wait(); err != nil {
		return nil, err
	}

	return remoteFiles, nil
}

func (it *ExternalFileUpdater) tasksFor(
	ctx context.Context,
	info *entities.RepositoryDependencyInfo,
	remote *remoteFile,
) ([]entities.UpdateTask, error) {
	fullPath := filepath.Join(it.git.Root(), it.LocalRootDir, filepath.FromSlash(remote.relativePath))
	used := []entities.DependencyInfo{info}

	localMode, inIndex, err := it.git.IndexMode(ctx, fullPath)
	if err != nil {
		return nil, err
	}
	if inIndex {
		it.log.Debugf("ls-files shows mode '%s' for path '%s'", localMode, fullPath)
	} else {
		it.log.Debugf("ls-files returned no mode for '%s'", fullPath)
	}

	if _, statErr := os.Stat(fullPath); !inIndex || statErr != nil {
		return []entities.UpdateTask{it.createTask(ctx, info, fullPath, remote)}, nil
	}

	var tasks []entities.UpdateTask

	update, err := files.PrepareUpdate(fullPath, func(localContents string) (string, error) {
		return files.NormalizeLineEndings(remote.contents, localContents), nil
	})
	if err != nil {
		return nil, err
	}
	if update != nil {
		tasks = append(tasks, update.Task(
			used,
			fmt.Sprintf("'%s' must have contents of '%s' at %s", fullPath, remote.object.Path, info),
		))
	}

	if localMode != remote.object.Mode {
		mode := remote.object.Mode
		task := entities.NewUpdateTask(
			func() error { return it.updateIndex(ctx, fullPath, mode) },
			used,
			fmt.Sprintf("'%s' must have mode %s of '%s' at %s", fullPath, mode, remote.object.Path, info),
		)
		task.Preview = fmt.Sprintf("mode %s -> %s %s\n", localMode, mode, fullPath)
		tasks = append(tasks, task)
	}

	return tasks, nil
}

func (it *ExternalFileUpdater) createTask(
	ctx context.Context,
	info *entities.RepositoryDependencyInfo,
	fullPath string,
	remote *remoteFile,
) entities.UpdateTask {
	mode := remote.object.Mode
	task := entities.NewUpdateTask(
		func() error {
			it.log.Infof("Creating new file '%s'.", fullPath)
			if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil { //nolint:mnd // directory permissions
				return fmt.Errorf("failed to create directory for %q: %w", fullPath, err)
			}
			if err := os.WriteFile(fullPath, []byte(remote.contents), 0o644); err != nil { //nolint:gosec,mnd // tracked source file
				return fmt.Errorf("failed to write %q: %w", fullPath, err)
			}
			return it.updateIndex(ctx, fullPath, mode)
		},
		[]entities.DependencyInfo{info},
		fmt.Sprintf("'%s' must exist with contents '%s' (%s) at %s", fullPath, remote.object.Path, mode, info),
	)
	task.Preview = files.LineDiff(fullPath, "", remote.contents)
	return task
}

func (it *ExternalFileUpdater) updateIndex(ctx context.Context, fullPath, mode string) error {
	executable := mode == entities.ModeExecutable
	it.log.Infof("Setting '%s' to mode %s in index.", fullPath, mode)
	return it.git.UpdateIndexMode(ctx, fullPath, executable)
}
