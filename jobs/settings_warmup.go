package jobs

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/packquote/packquote/internal/jobs"
	"github.com/packquote/packquote/internal/pricing"
)

// SettingsCache is the part of the settings cache the warmup drives.
type SettingsCache interface {
	Rates(ctx context.Context) (pricing.Rates, error)
	Invalidate(ctx context.Context) error
}

// SettingsWarmupJob reloads the rates, optionally after a cluster-wide
// invalidation.
type SettingsWarmupJob struct {
	Cache   SettingsCache
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewSettingsWarmupJob wires dependencies for the warmup handler.
func NewSettingsWarmupJob(cache SettingsCache, logger *slog.Logger, metrics *jobmetrics.Metrics) *SettingsWarmupJob {
	return &SettingsWarmupJob{Cache: cache, Logger: logger, Metrics: metrics}
}

// Handle processes settings warmup tasks.
func (j *SettingsWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Cache == nil {
		return errors.New("settings warmup: handler not configured")
	}
	var payload SettingsWarmupPayload
	if err := decodePayload(t.Payload(), &payload); err != nil {
		return err
	}

	metrics := j.Metrics
	if metrics == nil {
		metrics = defaultJobMetrics
	}
	tracker := metrics.Track(TaskSettingsWarmup)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := slog.Default()
	if j.Logger != nil {
		logger = j.Logger
	}
	logger = logger.With(slog.String("job", TaskSettingsWarmup), slog.Bool("invalidate", payload.Invalidate))

	if payload.Invalidate {
		if err := j.Cache.Invalidate(ctx); err != nil {
			resultErr = err
			logger.Error("invalidate settings", slog.Any("error", err))
			return resultErr
		}
	}
	rates, err := j.Cache.Rates(ctx)
	if err != nil {
		resultErr = err
		logger.Error("load settings", slog.Any("error", err))
		return resultErr
	}
	logger.Info("completed settings warmup",
		slog.Int("materials", len(rates.Materials)),
		slog.Float64("exchange_rate", rates.ExchangeRate))
	return resultErr
}
