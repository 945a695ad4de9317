//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"time"

	"github.com/rios0rios0/depsync/internal/domain/entities"
	"github.com/rios0rios0/depsync/internal/domain/repositories"
)

// StubUpdater implements repositories.Updater returning fixed tasks.
type StubUpdater struct {
	Tasks     []entities.UpdateTask
	TasksErr  error
	CallCount int
	LastInfos []entities.DependencyInfo
}

var _ repositories.Updater = (*StubUpdater)(nil)

func (s *StubUpdater) GetUpdateTasks(
	_ context.Context,
	infos []entities.DependencyInfo,
) ([]entities.UpdateTask, error) {
	s.CallCount++
	s.LastInfos = infos
	return s.Tasks, s.TasksErr
}

// StubUpgrader implements repositories.Upgrader only.
type StubUpgrader struct {
	Used       []entities.DependencyInfo
	UpgradeErr error
	CallCount  int
}

var _ repositories.Upgrader = (*StubUpgrader)(nil)

func (s *StubUpgrader) Upgrade(_ context.Context, _ []entities.DependencyInfo) error {
	s.CallCount++
	return s.UpgradeErr
}

func (s *StubUpgrader) BuildInfosUsed() []entities.DependencyInfo { return s.Used }

// StubStrategy implements repositories.DependencyStrategy, optionally
// running OnRun to simulate edits of the working tree.
type StubStrategy struct {
	StrategyName string
	Used         []entities.DependencyInfo
	RunErr       error
	OnRun        func()
	DryRuns      []bool
}

var _ repositories.DependencyStrategy = (*StubStrategy)(nil)

func (s *StubStrategy) Name() string { return s.StrategyName }

func (s *StubStrategy) Run(
	_ context.Context,
	_ []entities.DependencyInfo,
	dryRun bool,
) ([]entities.DependencyInfo, error) {
	s.DryRuns = append(s.DryRuns, dryRun)
	if s.OnRun != nil {
		s.OnRun()
	}
	return s.Used, s.RunErr
}

// StubBuildInfoRepository implements repositories.BuildInfoRepository from
// a map keyed by build name.
type StubBuildInfoRepository struct {
	Builds map[string]*entities.BuildInfo
	Err    error
}

var _ repositories.BuildInfoRepository = (*StubBuildInfoRepository)(nil)

func (s *StubBuildInfoRepository) Load(_ context.Context, build entities.BuildSettings) (*entities.BuildInfo, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Builds[build.Name], nil
}

// SpyMetricsRecorder implements repositories.MetricsRecorder.
type SpyMetricsRecorder struct {
	Strategies  []string
	Submissions []string
	Flushes     int
}

var _ repositories.MetricsRecorder = (*SpyMetricsRecorder)(nil)

func (s *SpyMetricsRecorder) ObserveStrategy(name string, _ int, _ time.Duration, _ error) {
	s.Strategies = append(s.Strategies, name)
}

func (s *SpyMetricsRecorder) ObserveSubmission(state string, _ bool) {
	s.Submissions = append(s.Submissions, state)
}

func (s *SpyMetricsRecorder) Flush() error {
	s.Flushes++
	return nil
}
