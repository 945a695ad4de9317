package buildinfo

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/depsync/internal/domain/entities"
	"github.com/rios0rios0/depsync/internal/domain/repositories"
)

const (
	LatestFileName         = "Latest.txt"
	LatestPackagesFileName = "Latest_Packages.txt"

	defaultRef = "master"
)

// Loader resolves build settings into BuildInfos. Builds come from inline
// values, a local directory or a directory of a GitHub repository; the
// directory forms hold Latest.txt and Latest_Packages.txt. Inline values
// take precedence over the loaded ones.
type Loader struct {
	rootDir string
	github  repositories.GitHubRepository
	log     logger.FieldLogger
}

// NewLoader creates a Loader resolving local directories against rootDir.
func NewLoader(rootDir string, github repositories.GitHubRepository, log logger.FieldLogger) *Loader {
	return &Loader{rootDir: rootDir, github: github, log: log}
}

func (it *Loader) Load(ctx context.Context, build entities.BuildSettings) (*entities.BuildInfo, error) {
	var release, packagesText string
	var err error

	switch {
	case build.GitHub != nil:
		release, packagesText, err = it.readGitHub(ctx, *build.GitHub)
	case build.Directory != "":
		release, packagesText, err = it.readDirectory(build.Directory)
	}
	if err != nil {
		return nil, err
	}

	packages, err := ParsePackages(packagesText)
	if err != nil {
		return nil, fmt.Errorf("build %q: %w", build.Name, err)
	}

	inline, err := inlinePackages(build.Packages)
	if err != nil {
		return nil, fmt.Errorf("build %q: %w", build.Name, err)
	}
	packages = mergePackages(packages, inline)

	if build.ReleaseVersion != "" {
		release = build.ReleaseVersion
	}

	info, err := entities.NewBuildInfo(build.Name, release, packages)
	if err != nil {
		return nil, err
	}
	it.log.Debugf("Loaded build info %s with %d packages", info, len(info.LatestPackages))
	return info, nil
}

func (it *Loader) readDirectory(dir string) (string, string, error) {
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(it.rootDir, dir)
	}

	release, err := os.ReadFile(filepath.Join(dir, LatestFileName))
	if err != nil {
		return "", "", fmt.Errorf("failed to read build info: %w", err)
	}
	packages, err := os.ReadFile(filepath.Join(dir, LatestPackagesFileName))
	if err != nil {
		return "", "", fmt.Errorf("failed to read build info: %w", err)
	}
	return firstLine(string(release)), string(packages), nil
}

func (it *Loader) readGitHub(ctx context.Context, source entities.BuildGitHubSettings) (string, string, error) {
	project, err := entities.ParseGitHubURL(source.Repository)
	if err != nil {
		return "", "", err
	}
	ref := source.Ref
	if ref == "" {
		ref = defaultRef
	}

	release, err := it.github.GetFileContents(ctx, path.Join(source.Path, LatestFileName), project, ref)
	if err != nil {
		return "", "", err
	}
	packages, err := it.github.GetFileContents(ctx, path.Join(source.Path, LatestPackagesFileName), project, ref)
	if err != nil {
		return "", "", err
	}
	return firstLine(release), packages, nil
}

// ParsePackages reads "<id> <version>" lines, ignoring blank lines.
func ParsePackages(text string) ([]entities.PackageInfo, error) {
	var packages []entities.PackageInfo

	scanner := bufio.NewScanner(strings.NewReader(text))
	for line := 1; scanner.Scan(); line++ {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 2 { //nolint:mnd // id and version
			return nil, fmt.Errorf("line %d: expected '<id> <version>', got %q", line, scanner.Text())
		}

		version, err := entities.ParsePackageVersion(fields[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		packages = append(packages, entities.PackageInfo{ID: fields[0], Version: version})
	}
	return packages, scanner.Err()
}

func inlinePackages(raw map[string]string) ([]entities.PackageInfo, error) {
	ids := make([]string, 0, len(raw))
	for id := range raw {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	packages := make([]entities.PackageInfo, 0, len(ids))
	for _, id := range ids {
		version, err := entities.ParsePackageVersion(raw[id])
		if err != nil {
			return nil, fmt.Errorf("package %q: %w", id, err)
		}
		packages = append(packages, entities.PackageInfo{ID: id, Version: version})
	}
	return packages, nil
}

// mergePackages replaces loaded packages by inline ones with the same id.
func mergePackages(loaded, inline []entities.PackageInfo) []entities.PackageInfo {
	overrides := make(map[string]entities.PackageInfo, len(inline))
	for _, pkg := range inline {
		overrides[pkg.ID] = pkg
	}

	merged := make([]entities.PackageInfo, 0, len(loaded)+len(inline))
	for _, pkg := range loaded {
		if override, ok := overrides[pkg.ID]; ok {
			merged = append(merged, override)
			delete(overrides, pkg.ID)
			continue
		}
		merged = append(merged, pkg)
	}
	for _, pkg := range inline {
		if _, ok := overrides[pkg.ID]; ok {
			merged = append(merged, pkg)
		}
	}
	return merged
}

func firstLine(text string) string {
	line, _, _ := strings.Cut(text, "\n")
	return strings.TrimSpace(line)
}
