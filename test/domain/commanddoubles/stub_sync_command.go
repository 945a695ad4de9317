//go:build integration || unit || test

package commanddoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/depsync/internal/domain/commands"
	"github.com/rios0rios0/depsync/internal/domain/entities"
)

// StubSyncCommand is a stub implementation of commands.Sync.
type StubSyncCommand struct {
	ExecuteCallCount int
	ExecuteResult    *commands.UpdateResult
	ExecuteErr       error
	LastSettings     *entities.Settings
	LastOpts         commands.SyncOptions
}

var _ commands.Sync = (*StubSyncCommand)(nil)

func (s *StubSyncCommand) Execute(
	_ context.Context,
	settings *entities.Settings,
	opts commands.SyncOptions,
) (*commands.UpdateResult, error) {
	s.ExecuteCallCount++
	s.LastSettings = settings
	s.LastOpts = opts
	if s.ExecuteResult == nil && s.ExecuteErr == nil {
		return &commands.UpdateResult{}, nil
	}
	return s.ExecuteResult, s.ExecuteErr
}

// StubSubmitter is a stub implementation of commands.Submitter.
type StubSubmitter struct {
	SubmitCallCount int
	SubmitResult    *commands.SubmitResult
	SubmitErr       error
	LastUsedInfos   []entities.DependencyInfo
}

var _ commands.Submitter = (*StubSubmitter)(nil)

func (s *StubSubmitter) Submit(
	_ context.Context,
	usedInfos []entities.DependencyInfo,
) (*commands.SubmitResult, error) {
	s.SubmitCallCount++
	s.LastUsedInfos = usedInfos
	return s.SubmitResult, s.SubmitErr
}
