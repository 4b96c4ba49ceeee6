package services

import (
	"context"
	"encoding/json"
	"strings"

	"cbi/database"
	"cbi/models"
	"cbi/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const DefaultDashboardLimit = 20

// TickerSummary describes the latest submission of one ticker.
type TickerSummary struct {
	Ticker         string `json:"ticker"`
	LastSubmission string `json:"last_submission"`
	Username       string `json:"username"`
	KPICount       int64  `json:"kpi_count"`
}

// ScenarioValues holds one KPI's values keyed by scenario.
type ScenarioValues struct {
	Down *json.Number `json:"down"`
	Base *json.Number `json:"base"`
	Up   *json.Number `json:"up"`
}

// SubmissionView is a submission shaped for the dashboard and data pages.
type SubmissionView struct {
	ID                 uint                      `json:"id"`
	Ticker             string                    `json:"ticker"`
	Username           string                    `json:"username"`
	Timestamp          string                    `json:"timestamp"`
	DownTargetMultiple *json.Number              `json:"down_target_multiple"`
	BaseTargetMultiple *json.Number              `json:"base_target_multiple"`
	UpTargetMultiple   *json.Number              `json:"up_target_multiple"`
	DownTargetPrice    *json.Number              `json:"down_target_price"`
	BaseTargetPrice    *json.Number              `json:"base_target_price"`
	UpTargetPrice      *json.Number              `json:"up_target_price"`
	KPIs               map[string]ScenarioValues `json:"kpis"`
}

// Dashboard is the summary page payload.
type Dashboard struct {
	Submissions      []SubmissionView `json:"submissions"`
	TotalSubmissions int64            `json:"total_submissions"`
	UniqueTickers    int64            `json:"unique_tickers"`
}

// Catalog serves read-only listings derived from the two tables.
type Catalog struct {
	DB     database.Connector
	Clock  *utils.Clock
	Logger *zap.Logger
}

// ListTickers reports, per ticker, the date, submitter and KPI count of its latest submission,
// most recent first.
func (c *Catalog) ListTickers(ctx context.Context) ([]TickerSummary, error) {
	log := nopIfNil(c.Logger)
	db := c.DB.Conn(ctx)

	var subs []models.Submission
	if err := db.Where("id IN (?)", latestPerTicker(db)).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "timestamp"}, Desc: true}).
		Order("id DESC").
		Find(&subs).Error; err != nil {
		return nil, storageError(log, "listing tickers", err)
	}

	ids := make([]uint, 0, len(subs))
	for _, s := range subs {
		ids = append(ids, s.ID)
	}
	counts, err := kpiCounts(db, ids)
	if err != nil {
		return nil, storageError(log, "counting KPIs", err)
	}

	out := make([]TickerSummary, 0, len(subs))
	for _, s := range subs {
		out = append(out, TickerSummary{
			Ticker:         s.Ticker,
			LastSubmission: c.Clock.FormatDate(s.Timestamp),
			Username:       s.Username,
			KPICount:       counts[s.ID],
		})
	}
	return out, nil
}

// ListKPINames returns the distinct KPI names on the ticker's latest submission.
func (c *Catalog) ListKPINames(ctx context.Context, ticker string) ([]string, error) {
	log := nopIfNil(c.Logger)

	ticker = strings.TrimSpace(ticker)
	if ticker == "" {
		return nil, invalidInput("ticker", "ticker is required")
	}

	db := c.DB.Conn(ctx)
	snap, err := latestSubmission(db, ticker, nil)
	if err != nil {
		return nil, storageError(log, "selecting snapshot", err)
	}
	if snap == nil {
		tickers, err := distinctTickers(db)
		if err != nil {
			return nil, storageError(log, "listing tickers", err)
		}
		return nil, &Error{
			Kind:             KindTickerNotFound,
			Field:            "ticker",
			Message:          "No data found for ticker: '" + ticker + "'",
			AvailableTickers: tickers,
		}
	}

	names, err := kpiNames(db, snap.ID)
	if err != nil {
		return nil, storageError(log, "listing KPIs", err)
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

// Dashboard returns the latest limit submissions with headline counts.
func (c *Catalog) Dashboard(ctx context.Context, limit int) (*Dashboard, error) {
	log := nopIfNil(c.Logger)
	if limit <= 0 {
		limit = DefaultDashboardLimit
	}

	db := c.DB.Conn(ctx)
	subs, err := c.recentSubmissions(db, limit)
	if err != nil {
		return nil, storageError(log, "loading submissions", err)
	}

	total, unique, err := counters(db)
	if err != nil {
		return nil, storageError(log, "counting submissions", err)
	}

	return &Dashboard{
		Submissions:      subs,
		TotalSubmissions: total,
		UniqueTickers:    unique,
	}, nil
}

// Data returns every submission, newest first.
func (c *Catalog) Data(ctx context.Context) ([]SubmissionView, error) {
	subs, err := c.recentSubmissions(c.DB.Conn(ctx), 0)
	if err != nil {
		return nil, storageError(nopIfNil(c.Logger), "loading submissions", err)
	}
	return subs, nil
}

// Stats returns the submission and ticker counters used by the summary job.
func (c *Catalog) Stats(ctx context.Context) (submissions, tickers int64, err error) {
	submissions, tickers, err = counters(c.DB.Conn(ctx))
	if err != nil {
		return 0, 0, storageError(nopIfNil(c.Logger), "counting submissions", err)
	}
	return submissions, tickers, nil
}

func counters(db *gorm.DB) (submissions, tickers int64, err error) {
	if err = db.Model(&models.Submission{}).Count(&submissions).Error; err != nil {
		return 0, 0, err
	}
	err = db.Raw("SELECT COUNT(DISTINCT LOWER(TRIM(ticker))) FROM submissions").Scan(&tickers).Error
	return submissions, tickers, err
}

func (c *Catalog) recentSubmissions(db *gorm.DB, limit int) ([]SubmissionView, error) {
	q := db.Preload("KPIs", func(tx *gorm.DB) *gorm.DB { return tx.Order("id ASC") }).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "timestamp"}, Desc: true}).
		Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var subs []models.Submission
	if err := q.Find(&subs).Error; err != nil {
		return nil, err
	}

	views := make([]SubmissionView, 0, len(subs))
	for _, s := range subs {
		views = append(views, c.view(s))
	}
	return views, nil
}

func (c *Catalog) view(s models.Submission) SubmissionView {
	kpis := make(map[string]ScenarioValues, len(s.KPIs))
	for _, k := range s.KPIs {
		// first row wins for duplicate names, as in retrieval
		if _, seen := kpis[k.KPIName]; seen {
			continue
		}
		kpis[k.KPIName] = ScenarioValues{
			Down: number(k.DownValue, KPIScale),
			Base: number(k.BaseValue, KPIScale),
			Up:   number(k.UpValue, KPIScale),
		}
	}
	return SubmissionView{
		ID:                 s.ID,
		Ticker:             s.Ticker,
		Username:           s.Username,
		Timestamp:          c.Clock.Format(s.Timestamp),
		DownTargetMultiple: number(s.DownTargetMultiple, MultipleScale),
		BaseTargetMultiple: number(s.BaseTargetMultiple, MultipleScale),
		UpTargetMultiple:   number(s.UpTargetMultiple, MultipleScale),
		DownTargetPrice:    number(s.DownTargetPrice, PriceScale),
		BaseTargetPrice:    number(s.BaseTargetPrice, PriceScale),
		UpTargetPrice:      number(s.UpTargetPrice, PriceScale),
		KPIs:               kpis,
	}
}

func kpiCounts(db *gorm.DB, ids []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(ids))
	if len(ids) == 0 {
		return counts, nil
	}
	var rows []struct {
		SubmissionID uint
		N            int64
	}
	if err := db.Model(&models.KPI{}).
		Select("submission_id, COUNT(*) AS n").
		Where("submission_id IN ?", ids).
		Group("submission_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		counts[r.SubmissionID] = r.N
	}
	return counts, nil
}

// number renders a nullable decimal as an exact JSON number at the column scale.
func number(d decimal.NullDecimal, scale int32) *json.Number {
	if !d.Valid {
		return nil
	}
	n := json.Number(d.Decimal.StringFixed(scale))
	return &n
}
