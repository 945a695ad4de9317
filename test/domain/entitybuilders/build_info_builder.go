//go:build integration || unit || test

package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"github.com/rios0rios0/depsync/internal/domain/entities"
	testkit "github.com/rios0rios0/testkit/pkg/test"
)

// BuildInfoBuilder helps create test build infos with a fluent interface.
type BuildInfoBuilder struct {
	*testkit.BaseBuilder
	name           string
	releaseVersion string
	packages       []entities.PackageInfo
}

// NewBuildInfoBuilder creates a new build info builder with sensible defaults.
func NewBuildInfoBuilder() *BuildInfoBuilder {
	return &BuildInfoBuilder{
		BaseBuilder:    testkit.NewBaseBuilder(),
		name:           "corefx",
		releaseVersion: "1.0.0-beta-24",
	}
}

// WithName sets the build name.
func (b *BuildInfoBuilder) WithName(name string) *BuildInfoBuilder {
	b.name = name
	return b
}

// WithReleaseVersion sets the release version.
func (b *BuildInfoBuilder) WithReleaseVersion(version string) *BuildInfoBuilder {
	b.releaseVersion = version
	return b
}

// WithPackage adds a package; the version must parse.
func (b *BuildInfoBuilder) WithPackage(id, version string) *BuildInfoBuilder {
	b.packages = append(b.packages, entities.PackageInfo{
		ID:      id,
		Version: entities.MustParsePackageVersion(version),
	})
	return b
}

// Build creates the build info (satisfies testkit.Builder interface).
func (b *BuildInfoBuilder) Build() interface{} {
	return b.BuildInfo()
}

// BuildInfo creates the build info with a concrete return type.
func (b *BuildInfoBuilder) BuildInfo() *entities.BuildInfo {
	return &entities.BuildInfo{
		Name:                 b.name,
		LatestReleaseVersion: b.releaseVersion,
		LatestPackages:       append([]entities.PackageInfo{}, b.packages...),
	}
}

// Reset clears the builder state, allowing it to be reused.
func (b *BuildInfoBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	b.name = "corefx"
	b.releaseVersion = "1.0.0-beta-24"
	b.packages = nil
	return b
}

// Clone creates a deep copy of the BuildInfoBuilder.
func (b *BuildInfoBuilder) Clone() testkit.Builder {
	return &BuildInfoBuilder{
		BaseBuilder:    b.BaseBuilder.Clone().(*testkit.BaseBuilder),
		name:           b.name,
		releaseVersion: b.releaseVersion,
		packages:       append([]entities.PackageInfo{}, b.packages...),
	}
}
