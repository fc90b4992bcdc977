// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Job is a named unit of scheduled work.
type Job struct {
	Name     string
	Schedule string        // cron spec, e.g. "@every 5m" or "*/10 * * * *"
	Timeout  time.Duration // per run; zero means no deadline beyond Stop
	Run      func(ctx context.Context) error
}

// Refresher reloads the console collections from the community API.
type Refresher interface {
	RefreshAllCollections(ctx context.Context) error
}

// RefreshFunc adapts a function to Refresher.
type RefreshFunc func(ctx context.Context) error

func (f RefreshFunc) RefreshAllCollections(ctx context.Context) error { return f(ctx) }

// RefreshJob creates the job that periodically reloads users, posts and
// comments. A failed collection keeps its previous data; the failure is
// logged and the next run tries again.
func RefreshJob(r Refresher, schedule string, timeout time.Duration, logger *zap.Logger) Job {
	return Job{
		Name:     "community-refresh",
		Schedule: schedule,
		Timeout:  timeout,
		Run: func(ctx context.Context) error {
			start := time.Now()
			err := r.RefreshAllCollections(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("scheduled refresh incomplete",
					zap.Duration("took", time.Since(start)),
					zap.Error(err))
				return err
			}
			logger.Debug("scheduled refresh done", zap.Duration("took", time.Since(start)))
			return nil
		},
	}
}
