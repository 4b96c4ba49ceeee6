package services

import (
	"context"
	"testing"

	"cbi/models"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestRecordPersistsSubmissionAndKPIs(t *testing.T) {
	e := newEnv(t)

	sub, err := e.recorder.Record(context.Background(), SubmissionInput{
		Ticker:           "  ABC ",
		Username:         "alice",
		BaseTargetPrice:  dec("100.505"),
		UpTargetMultiple: dec("12.34567"),
		KPIs: []KPIInput{
			{Name: " Revenue ", BaseValue: dec("50")},
			{Name: "EBITDA", DownValue: dec("0")},
		},
		Payload: []byte(`{"ticker":"  ABC "}`),
	})
	require.NoError(t, err)
	require.NotZero(t, sub.ID)

	var stored models.Submission
	require.NoError(t, e.db.Db.Preload("KPIs", func(tx *gorm.DB) *gorm.DB { return tx.Order("id") }).Take(&stored, sub.ID).Error)

	assert.Equal(t, "ABC", stored.Ticker)
	assert.Equal(t, "alice", stored.Username)
	assert.Equal(t, "2024-05-01 12:00:00 EDT", e.clock.Format(stored.Timestamp))
	assert.True(t, stored.BaseTargetPrice.Decimal.Equal(decimal.RequireFromString("100.51")))
	assert.True(t, stored.UpTargetMultiple.Decimal.Equal(decimal.RequireFromString("12.3457")))
	assert.False(t, stored.DownTargetPrice.Valid)
	assert.JSONEq(t, `{"ticker":"  ABC "}`, string(stored.Payload))

	require.Len(t, stored.KPIs, 2)
	assert.Equal(t, "Revenue", stored.KPIs[0].KPIName)
	assert.Equal(t, sub.ID, stored.KPIs[0].SubmissionID)
	// zero is stored as a value
	assert.True(t, stored.KPIs[1].DownValue.Valid)
	assert.True(t, stored.KPIs[1].DownValue.Decimal.IsZero())
	assert.False(t, stored.KPIs[1].UpValue.Valid)
}

func TestRecordNeverUpdatesInPlace(t *testing.T) {
	e := newEnv(t)

	first := e.record(t, SubmissionInput{Ticker: "ABC", Username: "alice", BaseTargetPrice: dec("10")})
	second := e.record(t, SubmissionInput{Ticker: "ABC", Username: "alice", BaseTargetPrice: dec("10")})
	assert.Greater(t, second, first)

	var n int64
	require.NoError(t, e.db.Db.Model(&models.Submission{}).Count(&n).Error)
	assert.EqualValues(t, 2, n)
}

func TestRecordRejectsMissingRequiredFields(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	cases := map[string]SubmissionInput{
		"ticker":       {Username: "alice"},
		"username":     {Ticker: "ABC", Username: "   "},
		"kpis[1].name": {Ticker: "ABC", Username: "alice", KPIs: []KPIInput{{Name: "Revenue"}, {Name: " "}}},
	}
	for field, in := range cases {
		_, err := e.recorder.Record(ctx, in)
		require.Error(t, err, field)

		var se *Error
		require.ErrorAs(t, err, &se)
		assert.Equal(t, KindInvalidInput, se.Kind)
		assert.Equal(t, field, se.Field)
	}

	var n int64
	require.NoError(t, e.db.Db.Model(&models.Submission{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestRecordUsesExplicitTimestamp(t *testing.T) {
	e := newEnv(t)

	ts, err := e.clock.ParseTimestamp("2023-12-29 16:00:00")
	require.NoError(t, err)

	sub, err := e.recorder.Record(context.Background(), SubmissionInput{Ticker: "ABC", Username: "import", Timestamp: &ts})
	require.NoError(t, err)
	assert.Equal(t, "2023-12-29 16:00:00 EST", e.clock.Format(sub.Timestamp))
}

func TestDeleteRemovesSubmissionAndKPIs(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	id := e.record(t, SubmissionInput{
		Ticker:   "XYZ",
		Username: "alice",
		KPIs:     []KPIInput{{Name: "Revenue", BaseValue: dec("1")}, {Name: "Margin"}},
	})

	deleted, err := e.recorder.Delete(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, deleted.ID)
	assert.Equal(t, "XYZ", deleted.Ticker)
	assert.Equal(t, "alice", deleted.Username)

	var kpis int64
	require.NoError(t, e.db.Db.Model(&models.KPI{}).Where("submission_id = ?", id).Count(&kpis).Error)
	assert.Zero(t, kpis)

	names, err := kpiNames(e.db.Conn(ctx), id)
	require.NoError(t, err)
	assert.Empty(t, names)

	_, err = e.recorder.Delete(ctx, id)
	require.Error(t, err)
	assert.Equal(t, KindSubmissionNotFound, KindOf(err))
}

func TestRecordRollsBackWhenKPIInsertFails(t *testing.T) {
	e := newEnv(t)

	err := e.db.Db.Callback().Create().Before("gorm:create").Register("test:fail_kpis", func(tx *gorm.DB) {
		if tx.Statement.Table == "kpis" {
			_ = tx.AddError(errors.New("kpi insert refused"))
		}
	})
	require.NoError(t, err)

	_, err = e.recorder.Record(context.Background(), SubmissionInput{
		Ticker:   "XYZ",
		Username: "alice",
		KPIs:     []KPIInput{{Name: "Revenue", BaseValue: dec("50")}},
	})
	require.Error(t, err)
	assert.Equal(t, KindStorage, KindOf(err))

	var subs, kpis int64
	require.NoError(t, e.db.Db.Model(&models.Submission{}).Count(&subs).Error)
	require.NoError(t, e.db.Db.Model(&models.KPI{}).Count(&kpis).Error)
	assert.Zero(t, subs)
	assert.Zero(t, kpis)
}
