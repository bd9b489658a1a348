package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/packquote/packquote/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// Rerounder fixes quotations stored with non-canonical amounts.
type Rerounder interface {
	ReroundLegacy(ctx context.Context, limit int) (int, error)
}

// ReroundJob rewrites legacy quotation amounts in bounded batches.
type ReroundJob struct {
	Quotations Rerounder
	BatchSize  int
	Logger     *slog.Logger
	Metrics    *jobmetrics.Metrics
}

// NewReroundJob wires dependencies for the re-rounding handler.
func NewReroundJob(quotations Rerounder, batchSize int, logger *slog.Logger, metrics *jobmetrics.Metrics) *ReroundJob {
	return &ReroundJob{Quotations: quotations, BatchSize: batchSize, Logger: logger, Metrics: metrics}
}

// Handle processes re-rounding tasks.
func (j *ReroundJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Quotations == nil {
		return errors.New("quotations reround: handler not configured")
	}
	var payload ReroundPayload
	if err := decodePayload(t.Payload(), &payload); err != nil {
		return err
	}
	limit := payload.Limit
	if limit <= 0 {
		limit = j.BatchSize
	}
	if limit <= 0 {
		limit = 500
	}

	tracker := j.metrics().Track(TaskQuotationsReround)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.Int("limit", limit))
	start := time.Now()
	fixed, err := j.Quotations.ReroundLegacy(ctx, limit)
	j.metrics().AddRows(TaskQuotationsReround, fixed)
	if err != nil {
		resultErr = err
		logger.Error("reround quotations", slog.Int("fixed", fixed), slog.Any("error", err))
		return resultErr
	}
	logger.Info("completed quotations reround", slog.Int("fixed", fixed), slog.Duration("duration", time.Since(start)))
	return resultErr
}

func (j *ReroundJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskQuotationsReround))
	}
	return slog.Default().With(slog.String("job", TaskQuotationsReround))
}

func (j *ReroundJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
