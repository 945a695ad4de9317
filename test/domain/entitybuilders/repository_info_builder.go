//go:build integration || unit || test

package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"github.com/rios0rios0/depsync/internal/domain/entities"
	testkit "github.com/rios0rios0/testkit/pkg/test"
)

// RepositoryInfoBuilder helps create test repository dependency infos.
type RepositoryInfoBuilder struct {
	*testkit.BaseBuilder
	identity   string
	repository string
	ref        string
	commit     string
}

// NewRepositoryInfoBuilder creates a new builder with sensible defaults.
func NewRepositoryInfoBuilder() *RepositoryInfoBuilder {
	return &RepositoryInfoBuilder{
		BaseBuilder: testkit.NewBaseBuilder(),
		identity:    "buildtools",
		repository:  "https://github.com/dotnet/buildtools",
		ref:         "master",
		commit:      "0123456789abcdef0123456789abcdef01234567",
	}
}

// WithIdentity sets the identity.
func (b *RepositoryInfoBuilder) WithIdentity(identity string) *RepositoryInfoBuilder {
	b.identity = identity
	return b
}

// WithRepository sets the repository URL.
func (b *RepositoryInfoBuilder) WithRepository(repository string) *RepositoryInfoBuilder {
	b.repository = repository
	return b
}

// WithRef sets the ref.
func (b *RepositoryInfoBuilder) WithRef(ref string) *RepositoryInfoBuilder {
	b.ref = ref
	return b
}

// WithCommit sets the commit.
func (b *RepositoryInfoBuilder) WithCommit(commit string) *RepositoryInfoBuilder {
	b.commit = commit
	return b
}

// Build creates the info (satisfies testkit.Builder interface).
func (b *RepositoryInfoBuilder) Build() interface{} {
	return b.BuildInfo()
}

// BuildInfo creates the info with a concrete return type.
func (b *RepositoryInfoBuilder) BuildInfo() *entities.RepositoryDependencyInfo {
	return &entities.RepositoryDependencyInfo{
		Identity:   b.identity,
		Repository: b.repository,
		Ref:        b.ref,
		Commit:     b.commit,
	}
}

// Reset clears the builder state, allowing it to be reused.
func (b *RepositoryInfoBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	b.identity = "buildtools"
	b.repository = "https://github.com/dotnet/buildtools"
	b.ref = "master"
	b.commit = "0123456789abcdef0123456789abcdef01234567"
	return b
}

// Clone creates a deep copy of the RepositoryInfoBuilder.
func (b *RepositoryInfoBuilder) Clone() testkit.Builder {
	return &RepositoryInfoBuilder{
		BaseBuilder: b.BaseBuilder.Clone().(*testkit.BaseBuilder),
		identity:    b.identity,
		repository:  b.repository,
		ref:         b.ref,
		commit:      b.commit,
	}
}
