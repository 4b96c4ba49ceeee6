package main

import (
	"context"
	"encoding/csv"
	"strings"
	"testing"

	"cbi/database"
	"cbi/models"
	"cbi/services"
	"cbi/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const sample = `ticker,username,timestamp,base_target_price,up_target_multiple,kpi:Revenue:base,kpi:Revenue:up,kpi:Margin:down
ABC,alice,2023-12-29 16:00:00,100.5,12,50,,0.1
,bob,2023-12-29 16:00:00,1,,,,
XYZ,carol,2024-01-02T09:30:00Z,,,,7,
`

func readSample(t *testing.T, s string) [][]string {
	t.Helper()
	records, err := csv.NewReader(strings.NewReader(s)).ReadAll()
	require.NoError(t, err)
	return records
}

func TestParseRecords(t *testing.T) {
	clock := utils.MustClock("America/New_York")

	inputs, skipped, err := parseRecords(readSample(t, sample), clock)
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	require.Len(t, inputs, 2)

	abc := inputs[0]
	assert.Equal(t, "ABC", abc.Ticker)
	require.NotNil(t, abc.Timestamp)
	assert.Equal(t, "2023-12-29 16:00:00 EST", clock.Format(*abc.Timestamp))
	assert.Equal(t, "100.5", abc.BaseTargetPrice.Decimal.String())
	assert.False(t, abc.DownTargetPrice.Valid)
	require.Len(t, abc.KPIs, 2)
	assert.Equal(t, "Revenue", abc.KPIs[0].Name)
	assert.Equal(t, "50", abc.KPIs[0].BaseValue.Decimal.String())
	assert.False(t, abc.KPIs[0].UpValue.Valid)
	assert.Equal(t, "Margin", abc.KPIs[1].Name)

	xyz := inputs[1]
	assert.Equal(t, "2024-01-02 04:30:00 EST", clock.Format(*xyz.Timestamp))
	require.Len(t, xyz.KPIs, 1)
	assert.Equal(t, "7", xyz.KPIs[0].UpValue.Decimal.String())
}

func TestParseRecordsErrors(t *testing.T) {
	clock := utils.MustClock("America/New_York")

	_, _, err := parseRecords(readSample(t, "ticker,username\n"), clock)
	assert.Error(t, err)

	_, _, err = parseRecords(readSample(t, "ticker,username,kpi:Revenue:sideways\nABC,a,1\n"), clock)
	assert.Error(t, err)

	_, _, err = parseRecords(readSample(t, "ticker,username,base_target_price\nABC,a,abc\n"), clock)
	assert.ErrorContains(t, err, "line 2")

	_, _, err = parseRecords(readSample(t, "ticker,username,timestamp\nABC,a,yesterday\n"), clock)
	assert.Error(t, err)
}

func TestImportAllRecordsInFileOrder(t *testing.T) {
	db, err := database.Open(database.Options{Driver: "sqlite", DSN: database.MemoryDSN(t.Name())})
	require.NoError(t, err)
	defer db.Close()

	clock := utils.MustClock("America/New_York")
	inputs, _, err := parseRecords(readSample(t, sample), clock)
	require.NoError(t, err)

	r := &services.Recorder{DB: db, Clock: clock}
	inserted, failed := importAll(context.Background(), r, inputs, zap.NewNop())
	assert.Equal(t, 2, inserted)
	assert.Zero(t, failed)

	var subs []models.Submission
	require.NoError(t, db.Db.Order("id").Preload("KPIs").Find(&subs).Error)
	require.Len(t, subs, 2)
	assert.Equal(t, "ABC", subs[0].Ticker)
	assert.Len(t, subs[0].KPIs, 2)
	assert.Equal(t, "XYZ", subs[1].Ticker)
}
