package regex

import (
	"fmt"

	"github.com/rios0rios0/depsync/internal/domain/entities"
)

// ValueSource picks the value written into the matched group. A nil build
// with a nil error means the value was not found; the returned string is
// then a sentinel that makes the failure visible in the diff.
type ValueSource interface {
	fmt.Stringer
	Value(builds []*entities.BuildInfo) (string, *entities.BuildInfo, error)
}

// ReleaseValueSource resolves to the release version of the build named
// BuildInfoName.
type ReleaseValueSource struct {
	BuildInfoName string
}

func (s ReleaseValueSource) String() string { return "release of " + s.BuildInfoName }

func (s ReleaseValueSource) Value(builds []*entities.BuildInfo) (string, *entities.BuildInfo, error) {
	var matches []*entities.BuildInfo
	for _, build := range builds {
		if build.Name == s.BuildInfoName {
			matches = append(matches, build)
		}
	}

	switch len(matches) {
	case 0:
		return fmt.Sprintf("PROJECT '%s' NOT FOUND", s.BuildInfoName), nil, nil
	case 1:
		return matches[0].LatestReleaseVersion, matches[0], nil
	default:
		names := make([]string, 0, len(matches))
		for _, match := range matches {
			names = append(names, match.String())
		}
		return "", nil, &entities.AmbiguousMatchError{
			What:    "BuildInfo",
			Key:     fmt.Sprintf("name '%s'", s.BuildInfoName),
			Matches: names,
			Total:   len(builds),
		}
	}
}

// PackageValueSource resolves to the normalized version of the first
// package with PackageID across all builds.
type PackageValueSource struct {
	PackageID string
}

func (s PackageValueSource) String() string { return "package " + s.PackageID }

func (s PackageValueSource) Value(builds []*entities.BuildInfo) (string, *entities.BuildInfo, error) {
	for _, build := range builds {
		if pkg, ok := build.FindPackage(s.PackageID); ok {
			return pkg.Version.Normalized(), build, nil
		}
	}
	return fmt.Sprintf("DEPENDENCY '%s' NOT FOUND", s.PackageID), nil, nil
}
