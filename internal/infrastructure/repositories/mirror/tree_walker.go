package mirror

import (
	"context"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/depsync/internal/domain/entities"
	"github.com/rios0rios0/depsync/internal/domain/repositories"
)

// treeWalker resolves paths in a remote commit one directory at a time,
// caching each visited tree by the path that led to it ("" for the root).
type treeWalker struct {
	github  repositories.GitHubRepository
	project entities.GitHubProject
	cache   map[string]*entities.GitTree
	log     logger.FieldLogger
}

func newTreeWalker(
	github repositories.GitHubRepository,
	project entities.GitHubProject,
	root *entities.GitTree,
	log logger.FieldLogger,
) *treeWalker {
	return &treeWalker{
		github:  github,
		project: project,
		cache:   map[string]*entities.GitTree{"": root},
		log:     log,
	}
}

// findBlob returns the blob at the given directory segments and file name.
func (it *treeWalker) findBlob(ctx context.Context, dirSegments []string, name string) (entities.GitObject, error) {
	dirKey := ""
	for _, segment := range dirSegments {
		next := dirKey + "/" + segment
		if _, ok := it.cache[next]; !ok {
			parent := it.cache[dirKey]
			it.log.Debugf("Looking in '%s' for '%s' (%s)", dirKey, segment, parent.URL)

			object, err := findSingle(parent, segment, entities.TypeTree)
			if err != nil {
				return entities.GitObject{}, err
			}

			tree, err := it.github.GetTree(ctx, it.project, object.SHA)
			if err != nil {
				return entities.GitObject{}, err
			}
			it.cache[next] = tree
		}
		dirKey = next
	}

	return findSingle(it.cache[dirKey], name, entities.TypeBlob)
}

// findSingle matches name case-insensitively; exactly one entry of the
// given type must match.
func findSingle(tree *entities.GitTree, name, objectType string) (entities.GitObject, error) {
	var matches []entities.GitObject
	for _, object := range tree.Entries {
		if object.Type == objectType && strings.EqualFold(object.Path, name) {
			matches = append(matches, object)
		}
	}

	if len(matches) != 1 {
		paths := make([]string, 0, len(matches))
		for _, match := range matches {
			paths = append(paths, match.Path)
		}
		return entities.GitObject{}, &entities.AmbiguousMatchError{
			What:    objectType,
			Key:     "'" + name + "'",
			Matches: paths,
			Total:   len(tree.Entries),
		}
	}
	return matches[0], nil
}

// splitPath splits on both separators, dropping empty segments.
func splitPath(path string) []string {
	return strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '\\' })
}
