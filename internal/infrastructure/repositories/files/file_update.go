package files

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/rios0rios0/depsync/internal/domain/entities"
)

const defaultFileMode fs.FileMode = 0o644

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ContentUpdate is a pending rewrite of a single file. The byte order mark
// and permissions of the existing file are kept when it is written.
type ContentUpdate struct {
	Path     string
	Original string
	Updated  string
	bom      []byte
	mode     fs.FileMode
	existed  bool
}

// PrepareUpdate reads path and computes its new contents with transform. It
// returns nil when the contents would not change. A missing file is treated
// as empty and created by Apply.
func PrepareUpdate(path string, transform func(current string) (string, error)) (*ContentUpdate, error) {
	update := &ContentUpdate{Path: path, mode: defaultFileMode}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read %q: %w", path, err)
	default:
		if bytes.HasPrefix(data, utf8BOM) {
			update.bom = utf8BOM
			data = data[len(utf8BOM):]
		}
		if info, statErr := os.Stat(path); statErr == nil {
			update.mode = info.Mode().Perm()
		}
		update.Original = string(data)
		update.existed = true
	}

	update.Updated, err = transform(update.Original)
	if err != nil {
		return nil, err
	}
	if update.Updated == update.Original {
		return nil, nil //nolint:nilnil // unchanged contents need no update
	}
	return update, nil
}

// Creates reports whether Apply creates a file that did not exist. New
// files are untracked until they are added to the index.
func (u *ContentUpdate) Creates() bool {
	return !u.existed
}

// Apply writes the updated contents, creating parent directories as needed.
func (u *ContentUpdate) Apply() error {
	if err := os.MkdirAll(filepath.Dir(u.Path), 0o755); err != nil { //nolint:mnd // directory permissions
		return fmt.Errorf("failed to create directory for %q: %w", u.Path, err)
	}

	content := append(append([]byte{}, u.bom...), u.Updated...)
	if err := os.WriteFile(u.Path, content, u.mode); err != nil {
		return fmt.Errorf("failed to write %q: %w", u.Path, err)
	}
	return nil
}

// Preview renders a line diff of the update.
func (u *ContentUpdate) Preview() string {
	return LineDiff(u.Path, u.Original, u.Updated)
}

// Task wraps the update into an UpdateTask.
func (u *ContentUpdate) Task(usedInfos []entities.DependencyInfo, logMessages ...string) entities.UpdateTask {
	task := entities.NewUpdateTask(u.Apply, usedInfos, logMessages...)
	task.Preview = u.Preview()
	return task
}

// LineDiff renders a unified-style line diff between before and after.
func LineDiff(path, before, after string) string {
	dmp := diffmatchpatch.New()
	beforeChars, afterChars, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(beforeChars, afterChars, false), lines)

	var builder strings.Builder
	fmt.Fprintf(&builder, "--- %s\n+++ %s\n", path, path)
	for _, diff := range diffs {
		prefix := " "
		switch diff.Type {
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffEqual:
			continue
		}
		for _, line := range strings.SplitAfter(diff.Text, "\n") {
			if line == "" {
				continue
			}
			builder.WriteString(prefix + strings.TrimRight(line, "\r\n") + "\n")
		}
	}
	return builder.String()
}

// NormalizeLineEndings rewrites content to use the line endings of
// reference: CRLF when reference contains any "\r\n", LF otherwise.
func NormalizeLineEndings(content, reference string) string {
	lf := strings.ReplaceAll(content, "\r\n", "\n")
	if strings.Contains(reference, "\r\n") {
		return strings.ReplaceAll(lf, "\n", "\r\n")
	}
	return lf
}
