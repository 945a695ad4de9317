package repositories

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/rios0rios0/depsync/internal/domain/entities"
	domainRepos "github.com/rios0rios0/depsync/internal/domain/repositories"
	"github.com/rios0rios0/depsync/internal/infrastructure/repositories/mirror"
	"github.com/rios0rios0/depsync/internal/infrastructure/repositories/projectjson"
	regexRepo "github.com/rios0rios0/depsync/internal/infrastructure/repositories/regex"
	"github.com/rios0rios0/depsync/internal/infrastructure/repositories/submodule"
	"github.com/rios0rios0/depsync/internal/infrastructure/repositories/terraform"
)

// UpdaterFactory builds the updater described by cfg for a run. Upgraders
// are returned as Updaters that also implement domainRepos.Upgrader.
type UpdaterFactory func(cfg entities.UpdaterSettings, run *RunRepositories) (domainRepos.Updater, error)

// UpdaterRegistry manages the updater factories by updater type.
type UpdaterRegistry struct {
	factories map[string]UpdaterFactory
}

// NewUpdaterRegistry creates an empty updater registry.
func NewUpdaterRegistry() *UpdaterRegistry {
	return &UpdaterRegistry{
		factories: make(map[string]UpdaterFactory),
	}
}

// NewDefaultUpdaterRegistry creates a registry with every built-in type.
func NewDefaultUpdaterRegistry() *UpdaterRegistry {
	reg := NewUpdaterRegistry()
	reg.Register(entities.UpdaterTypeMirror, newExternalFileUpdater)
	reg.Register(entities.UpdaterTypeRemoteFile, newRemoteFileUpdater)
	reg.Register(entities.UpdaterTypeSubmodule, newSubmoduleUpdater)
	reg.Register(entities.UpdaterTypeRegexRelease, newRegexUpdater)
	reg.Register(entities.UpdaterTypeRegexPackage, newRegexUpdater)
	reg.Register(entities.UpdaterTypeProjectJSON, newProjectJSONUpgrader)
	reg.Register(entities.UpdaterTypeTerraform, newTerraformUpgrader)
	return reg
}

// Register adds a factory under the given updater type.
func (r *UpdaterRegistry) Register(updaterType string, factory UpdaterFactory) {
	r.factories[updaterType] = factory
}

// Create builds the updater for cfg.
func (r *UpdaterRegistry) Create(cfg entities.UpdaterSettings, run *RunRepositories) (domainRepos.Updater, error) {
	factory, ok := r.factories[cfg.Type]
	if !ok {
		return nil, fmt.Errorf("unknown updater type: %q", cfg.Type)
	}
	return factory(cfg, run)
}

// Names returns the sorted list of registered updater types.
func (r *UpdaterRegistry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func newExternalFileUpdater(cfg entities.UpdaterSettings, run *RunRepositories) (domainRepos.Updater, error) {
	return mirror.NewExternalFileUpdater(
		cfg.Identity, cfg.LocalRoot, cfg.RemoteRoot, cfg.Paths, run.GitHub, run.Git, run.Log,
	), nil
}

func newRemoteFileUpdater(cfg entities.UpdaterSettings, run *RunRepositories) (domainRepos.Updater, error) {
	return mirror.NewRemoteFileUpdater(
		cfg.Repository, cfg.Ref, cfg.LocalRoot, cfg.RemoteRoot, cfg.Paths, run.GitHub, run.Git, run.Log,
	), nil
}

func newSubmoduleUpdater(cfg entities.UpdaterSettings, run *RunRepositories) (domainRepos.Updater, error) {
	return submodule.NewLatestCommitSubmoduleUpdater(cfg.Path, cfg.Repository, cfg.Ref, run.Git, run.Log)
}

func newRegexUpdater(cfg entities.UpdaterSettings, run *RunRepositories) (domainRepos.Updater, error) {
	var pattern *regexp.Regexp
	if cfg.Element != "" {
		pattern = regexRepo.ElementPattern(cfg.Element)
	} else {
		compiled, err := regexp.Compile(cfg.Pattern)
		if err != nil {
			return nil, entities.NewConfigurationError("pattern", err.Error())
		}
		pattern = compiled
	}

	var source regexRepo.ValueSource = regexRepo.PackageValueSource{PackageID: cfg.Package}
	if cfg.Type == entities.UpdaterTypeRegexRelease {
		source = regexRepo.ReleaseValueSource{BuildInfoName: cfg.Build}
	}

	return regexRepo.NewFileRegexUpdater(resolvePath(run.Root, cfg.Path), pattern, cfg.Group, source, run.Log)
}

func newProjectJSONUpgrader(cfg entities.UpdaterSettings, run *RunRepositories) (domainRepos.Updater, error) {
	return projectjson.NewUpgrader(resolvePaths(run.Root, cfg.Paths), cfg.SkipsStableVersions(), run.Log), nil
}

func newTerraformUpgrader(cfg entities.UpdaterSettings, run *RunRepositories) (domainRepos.Updater, error) {
	return terraform.NewModuleUpgrader(resolvePaths(run.Root, cfg.Paths), cfg.SkipsStableVersions(), run.Log), nil
}

func resolvePath(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, filepath.FromSlash(path))
}

func resolvePaths(root string, paths []string) []string {
	resolved := make([]string, 0, len(paths))
	for _, path := range paths {
		resolved = append(resolved, resolvePath(root, path))
	}
	return resolved
}
