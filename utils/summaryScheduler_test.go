package utils

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeStats struct {
	submissions, tickers int64
	err                  error
}

func (f fakeStats) Stats(context.Context) (int64, int64, error) {
	return f.submissions, f.tickers, f.err
}

func TestLogSummary(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := zap.New(core)

	logSummary(fakeStats{submissions: 12, tickers: 3}, log)
	logSummary(fakeStats{err: errors.New("db down")}, log)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "dataset summary", entries[0].Message)
	assert.EqualValues(t, 12, entries[0].ContextMap()["submissions"])
	assert.EqualValues(t, 3, entries[0].ContextMap()["tickers"])
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
}

func TestStartSummaryScheduler(t *testing.T) {
	clock := MustClock("America/New_York")

	c, err := StartSummaryScheduler("", clock, fakeStats{}, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, c)

	_, err = StartSummaryScheduler("not a schedule", clock, fakeStats{}, zap.NewNop())
	assert.Error(t, err)

	c, err = StartSummaryScheduler("0 18 * * 1-5", clock, fakeStats{}, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, c)
	defer c.Stop()
	assert.Len(t, c.Entries(), 1)
}
