package entities

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	simpleVersionLength = 7
	commitHashLength    = 40
)

var commitPattern = regexp.MustCompile(`^[0-9a-fA-F]{7,64}$`)

// DependencyInfo is a piece of upstream state (a build or a repository head)
// that updaters copy into the target repository.
type DependencyInfo interface {
	fmt.Stringer
	SimpleName() string
	SimpleVersion() string
}

// RepositoryDependencyInfo pins a remote git repository branch to a commit.
type RepositoryDependencyInfo struct {
	Identity   string
	Repository string
	Ref        string
	Commit     string
}

// NewRepositoryDependencyInfo validates and creates a RepositoryDependencyInfo.
func NewRepositoryDependencyInfo(identity, repository, ref, commit string) (*RepositoryDependencyInfo, error) {
	switch {
	case strings.TrimSpace(identity) == "":
		return nil, NewConfigurationError("identity", "is required")
	case strings.TrimSpace(repository) == "":
		return nil, NewConfigurationError("repository", "is required")
	case strings.TrimSpace(ref) == "":
		return nil, NewConfigurationError("ref", "is required")
	case !commitPattern.MatchString(commit):
		return nil, NewConfigurationError("commit", fmt.Sprintf("%q is not a resolved commit hash", commit))
	}

	return &RepositoryDependencyInfo{
		Identity:   identity,
		Repository: repository,
		Ref:        ref,
		Commit:     commit,
	}, nil
}

// ParseLsRemoteOutput builds a RepositoryDependencyInfo from the output of
// 'git ls-remote --heads <repository> <ref>'. Exactly one line must match.
func ParseLsRemoteOutput(identity, repository, ref, output string) (*RepositoryDependencyInfo, error) {
	lines := nonEmptyLines(output)
	if len(lines) != 1 {
		return nil, &AmbiguousMatchError{
			What:    "ref",
			Key:     fmt.Sprintf("'%s' in '%s'", ref, repository),
			Matches: lines,
			Total:   len(lines),
		}
	}

	commit, _, found := strings.Cut(lines[0], "\t")
	if !found {
		commit = strings.Fields(lines[0])[0]
	}

	return NewRepositoryDependencyInfo(identity, repository, ref, strings.TrimSpace(commit))
}

// ParseSubmoduleStatus builds a RepositoryDependencyInfo from the output of
// 'git submodule status --cached <path>'. The first character is the status
// flag and the next forty are the commit.
func ParseSubmoduleStatus(identity, repository, ref, output string) (*RepositoryDependencyInfo, error) {
	line := strings.TrimRight(output, "\r\n")
	if len(line) < commitHashLength+1 {
		return nil, fmt.Errorf("unexpected submodule status output %q", output)
	}

	return NewRepositoryDependencyInfo(identity, repository, ref, line[1:commitHashLength+1])
}

func (r *RepositoryDependencyInfo) String() string {
	return fmt.Sprintf("%s:%s (%s)", r.SimpleName(), r.Ref, r.Commit)
}

// SimpleName is the last segment of the repository URL.
func (r *RepositoryDependencyInfo) SimpleName() string {
	trimmed := strings.TrimRight(r.Repository, "/")
	if index := strings.LastIndex(trimmed, "/"); index >= 0 {
		return trimmed[index+1:]
	}
	return trimmed
}

// SimpleVersion is the abbreviated commit.
func (r *RepositoryDependencyInfo) SimpleVersion() string {
	if len(r.Commit) <= simpleVersionLength {
		return r.Commit
	}
	return r.Commit[:simpleVersionLength]
}

// PackageInfo is a single package published by a build.
type PackageInfo struct {
	ID      string
	Version *PackageVersion
}

// BuildInfo is the outcome of an upstream build: its release version and the
// packages it published.
type BuildInfo struct {
	Name                 string
	LatestReleaseVersion string
	LatestPackages       []PackageInfo
}

// NewBuildInfo creates a BuildInfo, rejecting duplicate package ids.
func NewBuildInfo(name, releaseVersion string, packages []PackageInfo) (*BuildInfo, error) {
	if strings.TrimSpace(name) == "" {
		return nil, NewConfigurationError("name", "build name is required")
	}

	seen := make(map[string]struct{}, len(packages))
	for _, pkg := range packages {
		if _, ok := seen[pkg.ID]; ok {
			return nil, NewConfigurationError("packages", fmt.Sprintf("duplicate package id %q in build %q", pkg.ID, name))
		}
		seen[pkg.ID] = struct{}{}
	}

	return &BuildInfo{Name: name, LatestReleaseVersion: releaseVersion, LatestPackages: packages}, nil
}

func (b *BuildInfo) String() string {
	return fmt.Sprintf("%s %s", b.Name, b.LatestReleaseVersion)
}

func (b *BuildInfo) SimpleName() string { return b.Name }

func (b *BuildInfo) SimpleVersion() string { return b.LatestReleaseVersion }

// FindPackage returns the package with the given id, if published by this build.
func (b *BuildInfo) FindPackage(id string) (PackageInfo, bool) {
	for _, pkg := range b.LatestPackages {
		if pkg.ID == id {
			return pkg, true
		}
	}
	return PackageInfo{}, false
}

// BuildInfos filters the build infos out of a mixed list.
func BuildInfos(infos []DependencyInfo) []*BuildInfo {
	var builds []*BuildInfo
	for _, info := range infos {
		if build, ok := info.(*BuildInfo); ok {
			builds = append(builds, build)
		}
	}
	return builds
}

// RepositoryInfos filters the repository infos out of a mixed list.
func RepositoryInfos(infos []DependencyInfo) []*RepositoryDependencyInfo {
	var repos []*RepositoryDependencyInfo
	for _, info := range infos {
		if repo, ok := info.(*RepositoryDependencyInfo); ok {
			repos = append(repos, repo)
		}
	}
	return repos
}

// FindRepositoryDependencyInfo returns the single repository info for the
// given repository URL and, when ref is not empty, ref (case-insensitive).
func FindRepositoryDependencyInfo(infos []DependencyInfo, repository, ref string) (*RepositoryDependencyInfo, error) {
	repos := RepositoryInfos(infos)

	var matches []*RepositoryDependencyInfo
	for _, repo := range repos {
		if repo.Repository != repository {
			continue
		}
		if ref != "" && !strings.EqualFold(repo.Ref, ref) {
			continue
		}
		matches = append(matches, repo)
	}

	if len(matches) != 1 {
		return nil, &AmbiguousMatchError{
			What:    "RepositoryDependencyInfo",
			Key:     fmt.Sprintf("repository '%s' ref '%s'", repository, ref),
			Matches: describe(matches),
			Total:   len(repos),
		}
	}
	return matches[0], nil
}

// FindRepositoryDependencyInfoByIdentity returns the single repository info
// whose identity matches, ignoring case.
func FindRepositoryDependencyInfoByIdentity(infos []DependencyInfo, identity string) (*RepositoryDependencyInfo, error) {
	repos := RepositoryInfos(infos)

	var matches []*RepositoryDependencyInfo
	for _, repo := range repos {
		if strings.EqualFold(repo.Identity, identity) {
			matches = append(matches, repo)
		}
	}

	if len(matches) != 1 {
		return nil, &AmbiguousMatchError{
			What:    "RepositoryDependencyInfo",
			Key:     fmt.Sprintf("identity '%s'", identity),
			Matches: describe(matches),
			Total:   len(repos),
		}
	}
	return matches[0], nil
}

// UnionInfos merges lists of infos keeping the first occurrence of each.
func UnionInfos(lists ...[]DependencyInfo) []DependencyInfo {
	seen := make(map[DependencyInfo]struct{})
	var union []DependencyInfo
	for _, list := range lists {
		for _, info := range list {
			if _, ok := seen[info]; ok {
				continue
			}
			seen[info] = struct{}{}
			union = append(union, info)
		}
	}
	return union
}

func describe(repos []*RepositoryDependencyInfo) []string {
	descriptions := make([]string, 0, len(repos))
	for _, repo := range repos {
		descriptions = append(descriptions, repo.String())
	}
	return descriptions
}

func nonEmptyLines(output string) []string {
	var lines []string
	for _, line := range strings.Split(output, "\n") {
		if trimmed := strings.TrimRight(line, "\r"); strings.TrimSpace(trimmed) != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}
