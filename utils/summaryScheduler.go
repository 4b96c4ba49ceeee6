package utils

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// StatsSource reports dataset counters.
type StatsSource interface {
	Stats(ctx context.Context) (submissions, tickers int64, err error)
}

// logSummary writes the current counters once.
func logSummary(src StatsSource, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	submissions, tickers, err := src.Stats(ctx)
	if err != nil {
		log.Error("summary job failed", zap.Error(err))
		return
	}
	log.Info("dataset summary", zap.Int64("submissions", submissions), zap.Int64("tickers", tickers))
}

// StartSummaryScheduler logs dataset counters on the given cron schedule, evaluated in the clock's
// civil zone. An empty schedule disables the job and returns a nil scheduler.
func StartSummaryScheduler(schedule string, clock *Clock, src StatsSource, log *zap.Logger) (*cron.Cron, error) {
	if schedule == "" {
		return nil, nil
	}

	c := cron.New(cron.WithLocation(clock.Location))
	if _, err := c.AddFunc(schedule, func() { logSummary(src, log) }); err != nil {
		return nil, err
	}
	c.Start()

	log.Info("summary scheduler started", zap.String("schedule", schedule), zap.String("timezone", clock.Location.String()))
	return c, nil
}
