package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"cbi/database"
	"cbi/utils"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type env struct {
	db       *database.DbInstance
	clock    *utils.Clock
	now      time.Time
	recorder *Recorder
	resolver *Resolver
	catalog  *Catalog
}

func newEnv(t *testing.T) *env {
	t.Helper()

	db, err := database.Open(database.Options{
		Driver: "sqlite",
		DSN:    database.MemoryDSN(strings.ReplaceAll(t.Name(), "/", "_")),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	e := &env{db: db, clock: utils.MustClock("America/New_York")}
	e.now = time.Date(2024, 5, 1, 12, 0, 0, 0, e.clock.Location)
	e.clock.NowFunc = func() time.Time { return e.now }

	e.recorder = &Recorder{DB: db, Clock: e.clock}
	e.resolver = &Resolver{DB: db, Clock: e.clock}
	e.catalog = &Catalog{DB: db, Clock: e.clock}
	return e
}

// at moves the clock to a civil wall time.
func (e *env) at(year int, month time.Month, day, hour, min, sec int) {
	e.now = time.Date(year, month, day, hour, min, sec, 0, e.clock.Location)
}

func (e *env) record(t *testing.T, in SubmissionInput) uint {
	t.Helper()
	sub, err := e.recorder.Record(context.Background(), in)
	require.NoError(t, err)
	return sub.ID
}

func dec(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

// countingConnector records whether the datastore was reached.
type countingConnector struct {
	inner database.Connector
	calls int
}

func (c *countingConnector) Conn(ctx context.Context) *gorm.DB {
	c.calls++
	return c.inner.Conn(ctx)
}
