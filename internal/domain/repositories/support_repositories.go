package repositories

import (
	"context"
	"time"

	"github.com/rios0rios0/depsync/internal/domain/entities"
)

// BuildInfoRepository resolves the configured builds into BuildInfos.
type BuildInfoRepository interface {
	Load(ctx context.Context, build entities.BuildSettings) (*entities.BuildInfo, error)
}

// MetricsRecorder records the outcome of a run.
type MetricsRecorder interface {
	ObserveStrategy(name string, usedInfos int, duration time.Duration, err error)
	ObserveSubmission(state string, changesMade bool)
	Flush() error
}
