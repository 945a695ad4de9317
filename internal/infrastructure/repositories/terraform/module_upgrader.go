package terraform

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclwrite"
	logger "github.com/sirupsen/logrus"
	"github.com/zclconf/go-cty/cty"

	"github.com/rios0rios0/depsync/internal/domain/entities"
	"github.com/rios0rios0/depsync/internal/infrastructure/repositories/files"
)

// moduleRef is a module block whose source and version are string literals.
type moduleRef struct {
	name    string
	source  string
	version string
}

// ModuleUpgrader pins the version attribute of Terraform module blocks whose
// source is a package id published by a build.
type ModuleUpgrader struct {
	files.AppliedInfos

	Paths              []string
	SkipStableVersions bool

	log logger.FieldLogger
}

func NewModuleUpgrader(paths []string, skipStableVersions bool, log logger.FieldLogger) *ModuleUpgrader {
	return &ModuleUpgrader{Paths: paths, SkipStableVersions: skipStableVersions, log: log}
}

func (it *ModuleUpgrader) GetUpdateTasks(
	_ context.Context,
	infos []entities.DependencyInfo,
) ([]entities.UpdateTask, error) {
	builds := entities.BuildInfos(infos)

	var tasks []entities.UpdateTask
	for _, path := range it.Paths {
		var used []entities.DependencyInfo

		update, err := files.PrepareUpdate(path, func(contents string) (string, error) {
			var rewritten string
			rewritten, used = it.rewrite(path, contents, builds)
			return rewritten, nil
		})
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

func (it *ModuleUpgrader) Upgrade(ctx context.Context, infos []entities.DependencyInfo) error {
	return it.Apply(ctx, it, infos)
}

// rewrite returns contents unchanged when the file cannot be parsed or no
// module needs a new version.
func (it *ModuleUpgrader) rewrite(
	path, contents string,
	builds []*entities.BuildInfo,
) (string, []entities.DependencyInfo) {
	modules, err := scanModules(path, contents)
	if err != nil {
		it.log.Warnf("Non-fatal error reading '%s'. Skipping file. Error: %v", path, err)
		return contents, nil
	}

	versions := make(map[string]string)
	var used []entities.DependencyInfo
	for _, module := range modules {
		build, newVersion := it.desiredVersion(path, module, builds)
		if build == nil {
			continue
		}
		it.log.Debugf("Module '%s' in '%s': %s -> %s", module.name, path, module.version, newVersion)
		versions[module.name] = newVersion
		used = append(used, build)
	}
	if len(versions) == 0 {
		return contents, nil
	}

	file, diags := hclwrite.ParseConfig([]byte(contents), path, hcl.InitialPos)
	if diags.HasErrors() {
		it.log.Warnf("Non-fatal error rewriting '%s'. Skipping file. Error: %s", path, diags.Error())
		return contents, nil
	}

	for _, block := range file.Body().Blocks() {
		labels := block.Labels()
		if block.Type() != "module" || len(labels) == 0 {
			continue
		}
		if version, ok := versions[labels[0]]; ok {
			block.Body().SetAttributeValue("version", cty.StringVal(version))
		}
	}

	return string(file.Bytes()), entities.UnionInfos(used)
}

// desiredVersion applies the same rules as project.json dependencies: the
// first package matching the source wins when the pinned version differs.
func (it *ModuleUpgrader) desiredVersion(
	path string,
	module moduleRef,
	builds []*entities.BuildInfo,
) (*entities.BuildInfo, string) {
	for _, build := range builds {
		pkg, ok := build.FindPackage(module.source)
		if !ok {
			continue
		}

		versionRange, err := entities.ParseVersionRange(module.version)
		if err != nil || versionRange.MinVersion == nil {
			it.log.Warnf("Couldn't parse '%s' for module '%s' in '%s'. Skipping.", module.version, module.name, path)
			continue
		}
		if it.SkipStableVersions && !versionRange.MinVersion.IsPrerelease() {
			continue
		}
		if versionRange.MinVersion.Equal(pkg.Version) {
			continue
		}
		return build, pkg.Version.Normalized()
	}
	return nil, ""
}

// scanModules lists the module blocks with literal source and version.
func scanModules(path, contents string) ([]moduleRef, error) {
	parser := hclparse.NewParser()

	file, diags := parser.ParseHCL([]byte(contents), path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse: %s", diags.Error())
	}

	bodyContent, _, partialDiags := file.Body.PartialContent(&hcl.BodySchema{
		Blocks: []hcl.BlockHeaderSchema{
			{Type: "module", LabelNames: []string{"name"}},
		},
	})
	if partialDiags.HasErrors() {
		return nil, fmt.Errorf("failed to read module blocks: %s", partialDiags.Error())
	}

	var modules []moduleRef
	for _, block := range bodyContent.Blocks {
		attrs, _ := block.Body.JustAttributes()

		source, hasSource := literalString(attrs["source"])
		version, hasVersion := literalString(attrs["version"])
		if !hasSource || !hasVersion {
			continue
		}

		modules = append(modules, moduleRef{name: block.Labels[0], source: source, version: version})
	}
	return modules, nil
}

func literalString(attr *hcl.Attribute) (string, bool) {
	if attr == nil {
		return "", false
	}
	value, diags := attr.Expr.Value(&hcl.EvalContext{})
	if diags.HasErrors() || value.Type() != cty.String || value.IsNull() {
		return "", false
	}
	return value.AsString(), true
}
