package projectjson

import (
	"context"
	"errors"
	"fmt"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/depsync/internal/domain/entities"
	"github.com/rios0rios0/depsync/internal/infrastructure/repositories/files"
)

// errSkipFile marks a document that cannot be rewritten; it is logged and
// the file is left alone.
var errSkipFile = errors.New("skipping file")

// Upgrader rewrites the package versions listed under every "dependencies"
// property of project.json files.
type Upgrader struct {
	files.AppliedInfos

	Paths              []string
	SkipStableVersions bool

	log logger.FieldLogger
}

func NewUpgrader(paths []string, skipStableVersions bool, log logger.FieldLogger) *Upgrader {
	return &Upgrader{Paths: paths, SkipStableVersions: skipStableVersions, log: log}
}

func (it *Upgrader) GetUpdateTasks(
	_ context.Context,
	infos []entities.DependencyInfo,
) ([]entities.UpdateTask, error) {
	builds := entities.BuildInfos(infos)

	var tasks []entities.UpdateTask
	for _, path := range it.Paths {
		var used []entities.DependencyInfo

		update, err := files.PrepareUpdate(path, func(contents string) (string, error) {
			var rewriteErr error
			var rewritten string
			rewritten, used, rewriteErr = it.rewrite(path, contents, builds)
			return rewritten, rewriteErr
		})
		if errors.Is(err, errSkipFile) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if update == nil {
			continue
		}

		tasks = append(tasks, update.Task(used, "Writing changes to "+path))
	}
	return tasks, nil
}

func (it *Upgrader) Upgrade(ctx context.Context, infos []entities.DependencyInfo) error {
	return it.Apply(ctx, it, infos)
}

// rewrite returns contents unchanged when no dependency needs a new version.
func (it *Upgrader) rewrite(
	path, contents string,
	builds []*entities.BuildInfo,
) (string, []entities.DependencyInfo, error) {
	root, err := parseDocument([]byte(contents))
	if err != nil {
		it.log.Warnf("Non-fatal error reading '%s'. Skipping file. Error: %v", path, err)
		return "", nil, errSkipFile
	}

	var used []entities.DependencyInfo
	for _, dependency := range dependencyProperties(root) {
		if build := it.replaceDependencyVersion(path, dependency, builds); build != nil {
			used = append(used, build)
		}
	}
	if len(used) == 0 {
		return contents, nil, nil
	}

	rendered, err := render(root)
	if err != nil {
		return "", nil, fmt.Errorf("failed to render '%s': %w", path, err)
	}
	return rendered, entities.UnionInfos(used), nil
}

// replaceDependencyVersion rewrites the first package matching the
// dependency id whose version differs, returning the build it came from.
func (it *Upgrader) replaceDependencyVersion(
	path string,
	dependency *member,
	builds []*entities.BuildInfo,
) *entities.BuildInfo {
	for _, build := range builds {
		for _, pkg := range build.LatestPackages {
			if pkg.ID != dependency.key {
				continue
			}

			versionNode := dependency.value
			if versionNode.kind == kindObject {
				versionNode = versionNode.get("version")
			}

			oldVersion, _ := versionNode.stringValue()
			versionRange, err := entities.ParseVersionRange(oldVersion)
			if err != nil || versionRange.MinVersion == nil {
				it.log.Warnf("Couldn't parse '%s' for package '%s' in '%s'. Skipping.", oldVersion, pkg.ID, path)
				continue
			}

			if it.SkipStableVersions && !versionRange.MinVersion.IsPrerelease() {
				continue
			}
			if versionRange.MinVersion.Equal(pkg.Version) {
				continue
			}

			versionNode.scalar = pkg.Version.Normalized()
			return build
		}
	}
	return nil
}
