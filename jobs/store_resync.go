package jobs

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/verandameister/quotedesk/internal/jobs"
)

// Resyncer pushes the local cache to the remote store.
type Resyncer interface {
	Resync(ctx context.Context) error
}

// StoreResyncJob retries a pending synchronisation with the remote store.
type StoreResyncJob struct {
	Store   Resyncer
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewStoreResyncJob wires dependencies for the resync handler.
func NewStoreResyncJob(store Resyncer, logger *slog.Logger, metrics *jobmetrics.Metrics) *StoreResyncJob {
	return &StoreResyncJob{Store: store, Logger: logger, Metrics: metrics}
}

// Handle processes store:resync tasks.
func (j *StoreResyncJob) Handle(ctx context.Context, _ *asynq.Task) (resultErr error) {
	if j == nil || j.Store == nil {
		return errors.New("store resync: handler not configured")
	}
	tracker := j.metrics().Track(TaskStoreResync)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	if err := j.Store.Resync(ctx); err != nil {
		j.logger().Warn("store resync failed", slog.Any("error", err))
		return err
	}
	j.logger().Info("store resync complete")
	return nil
}

func (j *StoreResyncJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}

func (j *StoreResyncJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
