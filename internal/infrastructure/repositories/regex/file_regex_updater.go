package regex

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/depsync/internal/domain/entities"
	"github.com/rios0rios0/depsync/internal/infrastructure/repositories/files"
)

// DefaultGroupName is the capture group replaced when none is configured.
const DefaultGroupName = "version"

// ElementPattern matches the text of a simple XML element such as
// <MicrosoftNETCoreAppVersion>1.0.0</MicrosoftNETCoreAppVersion>.
func ElementPattern(elementName string) *regexp.Regexp {
	return regexp.MustCompile("<" + regexp.QuoteMeta(elementName) + ">(?P<" + DefaultGroupName + ">.*)<")
}

// FileRegexUpdater rewrites the named group of every match of Pattern in a
// single file. Every byte outside the group is kept.
type FileRegexUpdater struct {
	files.AppliedInfos

	Path      string
	Pattern   *regexp.Regexp
	GroupName string
	Source    ValueSource

	log logger.FieldLogger
}

// NewFileRegexUpdater creates a FileRegexUpdater. The group must exist in
// the pattern.
func NewFileRegexUpdater(
	path string,
	pattern *regexp.Regexp,
	groupName string,
	source ValueSource,
	log logger.FieldLogger,
) (*FileRegexUpdater, error) {
	if groupName == "" {
		groupName = DefaultGroupName
	}
	if pattern.SubexpIndex(groupName) < 0 {
		return nil, entities.NewConfigurationError(
			"group", fmt.Sprintf("pattern %q has no group named %q", pattern, groupName),
		)
	}

	return &FileRegexUpdater{
		Path:      filepath.Clean(path),
		Pattern:   pattern,
		GroupName: groupName,
		Source:    source,
		log:       log,
	}, nil
}

func (it *FileRegexUpdater) GetUpdateTasks(
	_ context.Context,
	infos []entities.DependencyInfo,
) ([]entities.UpdateTask, error) {
	value, build, err := it.Source.Value(entities.BuildInfos(infos))
	if err != nil {
		return nil, err
	}
	if build == nil {
		it.log.Errorf("Could not find %s to change '%s' with '%s'", it.Source, it.Path, it.Pattern)
	}

	if _, statErr := os.Stat(it.Path); errors.Is(statErr, fs.ErrNotExist) {
		return nil, entities.NewConfigurationError("path", fmt.Sprintf("file '%s' does not exist", it.Path))
	}

	update, err := files.PrepareUpdate(it.Path, func(contents string) (string, error) {
		return ReplaceGroupValue(it.Pattern, contents, it.GroupName, value), nil
	})
	if err != nil {
		return nil, err
	}
	if update == nil {
		return nil, nil
	}

	var used []entities.DependencyInfo
	message := fmt.Sprintf("'%s' must have %s '%s'", it.Path, it.Source, value)
	if build != nil {
		used = append(used, build)
		message = fmt.Sprintf("'%s' must have %s '%s' from %s", it.Path, it.Source, value, build)
	}
	return []entities.UpdateTask{update.Task(used, message)}, nil
}

func (it *FileRegexUpdater) Upgrade(ctx context.Context, infos []entities.DependencyInfo) error {
	return it.Apply(ctx, it, infos)
}

// ReplaceGroupValue replaces the span captured by groupName in every match
// with value. Matches where the group did not participate are left as is.
func ReplaceGroupValue(pattern *regexp.Regexp, input, groupName, value string) string {
	group := pattern.SubexpIndex(groupName)
	if group < 0 {
		return input
	}

	var builder strings.Builder
	last := 0
	for _, match := range pattern.FindAllStringSubmatchIndex(input, -1) {
		start, end := match[2*group], match[2*group+1]
		if start < 0 {
			continue
		}
		builder.WriteString(input[last:start])
		builder.WriteString(value)
		last = end
	}
	builder.WriteString(input[last:])
	return builder.String()
}
