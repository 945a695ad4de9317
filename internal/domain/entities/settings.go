package entities

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	logger "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const DefaultCommandTimeout = 10 * time.Minute

// Updater types understood by the update command.
const (
	UpdaterTypeMirror       = "mirror"
	UpdaterTypeRemoteFile   = "remote_file"
	UpdaterTypeSubmodule    = "submodule"
	UpdaterTypeRegexRelease = "regex_release"
	UpdaterTypeRegexPackage = "regex_package"
	UpdaterTypeProjectJSON  = "project_json"
	UpdaterTypeTerraform    = "terraform"
)

// Settings is the top-level configuration for depsync.
type Settings struct {
	RepositoryDir  string              `yaml:"repository_dir"`
	CommandTimeout string              `yaml:"command_timeout"`
	GitHub         GitHubSettings      `yaml:"github"`
	PullRequest    PullRequestSettings `yaml:"pull_request"`
	Dependencies   DependencySettings  `yaml:"dependencies"`
	Updaters       []UpdaterSettings   `yaml:"updaters"`
	MetricsFile    string              `yaml:"metrics_file"`
}

// GitHubSettings holds the bot identity. Token accepts an inline value,
// ${ENV_VAR} references or a path to a file holding the token.
type GitHubSettings struct {
	Token   string `yaml:"token"`
	User    string `yaml:"user"`
	Email   string `yaml:"email"`
	Author  string `yaml:"author"`
	BaseURL string `yaml:"base_url"`
}

// PullRequestSettings describes the pull request target.
type PullRequestSettings struct {
	Owner           string   `yaml:"owner"`
	Repo            string   `yaml:"repo"`
	Branch          string   `yaml:"branch"`
	Notify          []string `yaml:"notify"`
	CommitMessage   string   `yaml:"commit_message"`
	Title           string   `yaml:"title"`
	Body            string   `yaml:"body"`
	AlwaysCreateNew bool     `yaml:"always_create_new"`
}

// DependencySettings lists where dependency infos come from.
type DependencySettings struct {
	Repositories []RepositorySettings `yaml:"repositories"`
	Builds       []BuildSettings      `yaml:"builds"`
}

// RepositorySettings produces a RepositoryDependencyInfo, either from the
// remote head of Ref or from the commit recorded for SubmodulePath.
type RepositorySettings struct {
	Identity      string `yaml:"identity"`
	Repository    string `yaml:"repository"`
	Ref           string `yaml:"ref"`
	SubmodulePath string `yaml:"submodule_path"`
}

// BuildSettings produces a BuildInfo inline, from a local directory or from
// a GitHub versions repository holding Latest.txt and Latest_Packages.txt.
type BuildSettings struct {
	Name           string               `yaml:"name"`
	ReleaseVersion string               `yaml:"release_version"`
	Packages       map[string]string    `yaml:"packages"`
	Directory      string               `yaml:"directory"`
	GitHub         *BuildGitHubSettings `yaml:"github"`
}

// BuildGitHubSettings points to a build info directory on GitHub.
type BuildGitHubSettings struct {
	Repository string `yaml:"repository"`
	Ref        string `yaml:"ref"`
	Path       string `yaml:"path"`
}

// UpdaterSettings configures one updater; only the keys of its Type apply.
type UpdaterSettings struct {
	Type string `yaml:"type"`
	Name string `yaml:"name"`

	// mirror, remote_file and submodule
	Identity   string   `yaml:"identity"`
	Repository string   `yaml:"repository"`
	Ref        string   `yaml:"ref"`
	LocalRoot  string   `yaml:"local_root"`
	RemoteRoot string   `yaml:"remote_root"`
	Paths      []string `yaml:"paths"`

	// regex_release and regex_package
	Path    string `yaml:"path"`
	Pattern string `yaml:"pattern"`
	Element string `yaml:"element"`
	Group   string `yaml:"group"`
	Build   string `yaml:"build"`
	Package string `yaml:"package"`

	// project_json and terraform
	SkipStableVersions *bool `yaml:"skip_stable_versions"`
}

// SkipsStableVersions defaults to true when the key is omitted.
func (u UpdaterSettings) SkipsStableVersions() bool {
	return u.SkipStableVersions == nil || *u.SkipStableVersions
}

// DisplayName is the configured name, falling back to the type.
func (u UpdaterSettings) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Type
}

// envVarPattern matches ${VAR_NAME} placeholders.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)}`)

// NewSettings reads and parses a configuration file, expanding environment
// variables and resolving token file paths.
func NewSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	settings, err := ParseSettings(data)
	if err != nil {
		return nil, err
	}

	if settings.RepositoryDir != "" && !filepath.IsAbs(settings.RepositoryDir) {
		settings.RepositoryDir = filepath.Join(filepath.Dir(path), settings.RepositoryDir)
	}
	return settings, nil
}

// ParseSettings parses configuration bytes and validates the result.
func ParseSettings(data []byte) (*Settings, error) {
	var settings Settings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	settings.GitHub.Token = resolveToken(settings.GitHub.Token)
	if settings.RepositoryDir == "" {
		settings.RepositoryDir = "."
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &settings, nil
}

// Validate checks the structural requirements of the configuration.
func (s *Settings) Validate() error {
	if _, err := s.Timeout(); err != nil {
		return err
	}

	for i, repo := range s.Dependencies.Repositories {
		if repo.Identity == "" || repo.Repository == "" || repo.Ref == "" {
			return NewConfigurationError(
				fmt.Sprintf("dependencies.repositories[%d]", i),
				"identity, repository and ref are required",
			)
		}
	}

	for i, build := range s.Dependencies.Builds {
		field := fmt.Sprintf("dependencies.builds[%d]", i)
		if build.Name == "" {
			return NewConfigurationError(field, "name is required")
		}
		if build.GitHub != nil && build.Directory != "" {
			return NewConfigurationError(field, "directory and github are mutually exclusive")
		}
	}

	for i, updater := range s.Updaters {
		if err := updater.validate(); err != nil {
			return fmt.Errorf("updaters[%d]: %w", i, err)
		}
	}
	return nil
}

func (u UpdaterSettings) validate() error {
	switch u.Type {
	case UpdaterTypeMirror:
		if u.Identity == "" || len(u.Paths) == 0 {
			return NewConfigurationError(u.DisplayName(), "identity and paths are required")
		}
	case UpdaterTypeRemoteFile:
		if u.Repository == "" || u.Ref == "" || len(u.Paths) == 0 {
			return NewConfigurationError(u.DisplayName(), "repository, ref and paths are required")
		}
	case UpdaterTypeSubmodule:
		if u.Repository == "" || u.Ref == "" || u.Path == "" {
			return NewConfigurationError(u.DisplayName(), "repository, ref and path are required")
		}
	case UpdaterTypeRegexRelease, UpdaterTypeRegexPackage:
		if u.Path == "" || (u.Pattern == "" && u.Element == "") {
			return NewConfigurationError(u.DisplayName(), "path and pattern (or element) are required")
		}
		if u.Type == UpdaterTypeRegexRelease && u.Build == "" {
			return NewConfigurationError(u.DisplayName(), "build is required")
		}
		if u.Type == UpdaterTypeRegexPackage && u.Package == "" {
			return NewConfigurationError(u.DisplayName(), "package is required")
		}
	case UpdaterTypeProjectJSON, UpdaterTypeTerraform:
		if len(u.Paths) == 0 {
			return NewConfigurationError(u.DisplayName(), "paths are required")
		}
	default:
		return NewConfigurationError("type", fmt.Sprintf("unknown updater type %q", u.Type))
	}
	return nil
}

// Timeout is the per-process timeout, DefaultCommandTimeout when unset.
func (s *Settings) Timeout() (time.Duration, error) {
	if s.CommandTimeout == "" {
		return DefaultCommandTimeout, nil
	}
	timeout, err := time.ParseDuration(s.CommandTimeout)
	if err != nil || timeout <= 0 {
		return 0, NewConfigurationError("command_timeout", fmt.Sprintf("%q is not a positive duration", s.CommandTimeout))
	}
	return timeout, nil
}

// GitHubAuth returns the bot identity with defaults applied.
func (s *Settings) GitHubAuth() GitHubAuth {
	return NewGitHubAuth(s.GitHub.Token, s.GitHub.User, s.GitHub.Email)
}

// PullRequestConfig maps the settings onto a PullRequestConfig with defaults.
func (s *Settings) PullRequestConfig() PullRequestConfig {
	return PullRequestConfig{
		Auth:                  s.GitHubAuth(),
		ProjectRepo:           s.PullRequest.Repo,
		ProjectRepoOwner:      s.PullRequest.Owner,
		ProjectRepoBranch:     s.PullRequest.Branch,
		GitAuthorName:         s.GitHub.Author,
		NotifyGitHubUsers:     s.PullRequest.Notify,
		CommitMessageOverride: s.PullRequest.CommitMessage,
		Title:                 s.PullRequest.Title,
		Body:                  s.PullRequest.Body,
		AlwaysCreateNew:       s.PullRequest.AlwaysCreateNew,
	}.WithDefaults()
}

// FindConfigFile searches for a configuration file in standard locations.
// Returns the path to the first file found or an error if none is found.
func FindConfigFile() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = ""
	}

	locations := []string{
		".",
		".config",
		"configs",
	}
	if homeDir != "" {
		locations = append(
			locations,
			homeDir,
			filepath.Join(homeDir, ".config"),
		)
	}

	patterns := []string{
		".depsync.yaml",
		".depsync.yml",
		"depsync.yaml",
		"depsync.yml",
	}

	for _, loc := range locations {
		for _, pat := range patterns {
			p := filepath.Join(loc, pat)
			if _, statErr := os.Stat(p); statErr == nil {
				return p, nil
			}
		}
	}

	return "", errors.New("config file not found in default locations")
}

// resolveToken expands environment variable references (${VAR}) and, if the
// resulting string is a path to an existing file, reads the token from the file.
func resolveToken(raw string) string {
	if raw == "" {
		return raw
	}

	resolved := envVarPattern.ReplaceAllStringFunc(raw, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		logger.Warnf("Environment variable %q is not set", varName)
		return ""
	})

	if info, statErr := os.Stat(resolved); statErr == nil && !info.IsDir() {
		data, readErr := os.ReadFile(resolved)
		if readErr != nil {
			logger.Warnf("Failed to read token file %q: %v", resolved, readErr)
			return resolved
		}
		logger.Infof("Read token from file %q", resolved)
		return strings.TrimSpace(string(data))
	}

	return resolved
}
