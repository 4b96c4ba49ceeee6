package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cbi/database"
	"cbi/models"
	"cbi/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Fixed metric names; any other metric is a KPI name.
const (
	MetricTargetMultiple = "Target Multiple"
	MetricTargetPrice    = "Target Price"
)

// RetrieveQuery names the value a consumer wants.
type RetrieveQuery struct {
	Ticker   string `query:"ticker" validate:"required"`
	Scenario string `query:"scenario" validate:"required"`
	Metric   string `query:"metric" validate:"required"`
	AsOfDate string `query:"as_of_date"`
}

// Resolution is a resolved value together with the snapshot it came from.
type Resolution struct {
	Value        decimal.Decimal
	Scale        int32
	Ticker       string
	Scenario     models.Scenario
	Metric       string
	SubmissionID uint
	Timestamp    time.Time
	Username     string
}

// Resolver answers "latest value of metric for ticker under scenario, as of a date".
type Resolver struct {
	DB     database.Connector
	Clock  *utils.Clock
	Logger *zap.Logger
}

// Resolve selects the newest snapshot for the ticker (largest id, optionally no later than the
// end of the as-of day in civil time) and extracts the requested value from it. Input problems
// are reported before the datastore is touched.
func (r *Resolver) Resolve(ctx context.Context, q RetrieveQuery) (*Resolution, error) {
	log := nopIfNil(r.Logger)

	scenario, err := models.ParseScenario(q.Scenario)
	if err != nil {
		return nil, &Error{
			Kind:    KindInvalidScenario,
			Field:   "scenario",
			Message: fmt.Sprintf("Invalid scenario: '%s'. Expected one of down, base, up", strings.TrimSpace(q.Scenario)),
		}
	}
	ticker := strings.TrimSpace(q.Ticker)
	if ticker == "" {
		return nil, invalidInput("ticker", "ticker is required")
	}
	metric := strings.TrimSpace(q.Metric)
	if metric == "" {
		return nil, invalidInput("metric", "metric is required")
	}

	var bound *time.Time
	asOf := strings.TrimSpace(q.AsOfDate)
	if asOf != "" {
		day, err := r.Clock.ParseDate(asOf)
		if err != nil {
			return nil, &Error{
				Kind:    KindInvalidDate,
				Field:   "as_of_date",
				Message: fmt.Sprintf("Invalid date format '%s'. Use YYYY-MM-DD", asOf),
			}
		}
		end := r.Clock.EndOfDay(day)
		bound = &end
	}

	db := r.DB.Conn(ctx)

	snap, err := latestSubmission(db, ticker, bound)
	if err != nil {
		return nil, storageError(log, "selecting snapshot", err)
	}
	if snap == nil {
		tickers, err := distinctTickers(db)
		if err != nil {
			return nil, storageError(log, "listing tickers", err)
		}
		msg := fmt.Sprintf("No data found for ticker: '%s'", ticker)
		if asOf != "" {
			msg += " as of " + asOf
		}
		return nil, &Error{
			Kind:             KindTickerNotFound,
			Field:            "ticker",
			Message:          msg,
			AvailableTickers: tickers,
		}
	}

	var (
		value    decimal.NullDecimal
		scale    int32
		resolved string
	)
	switch strings.ToLower(metric) {
	case strings.ToLower(MetricTargetMultiple):
		value, scale, resolved = snap.TargetMultiple(scenario), MultipleScale, MetricTargetMultiple
	case strings.ToLower(MetricTargetPrice):
		value, scale, resolved = snap.TargetPrice(scenario), PriceScale, MetricTargetPrice
	default:
		kpi, err := findKPI(db, snap.ID, metric)
		if err != nil {
			return nil, storageError(log, "looking up KPI", err)
		}
		if kpi == nil {
			names, err := kpiNames(db, snap.ID)
			if err != nil {
				return nil, storageError(log, "listing KPIs", err)
			}
			return nil, &Error{
				Kind:          KindKPINotFound,
				Field:         "metric",
				Message:       fmt.Sprintf("KPI '%s' not found for %s. Available KPIs: %s", metric, snap.Ticker, strings.Join(names, ", ")),
				AvailableKPIs: names,
			}
		}
		value, scale, resolved = kpi.Value(scenario), KPIScale, kpi.KPIName
	}

	if !value.Valid {
		return nil, &Error{
			Kind:  KindNoValue,
			Field: "scenario",
			Message: fmt.Sprintf("No %s value found for '%s' in submission (ID: %d) for ticker '%s'",
				scenario, resolved, snap.ID, snap.Ticker),
		}
	}

	return &Resolution{
		Value:        value.Decimal,
		Scale:        scale,
		Ticker:       snap.Ticker,
		Scenario:     scenario,
		Metric:       resolved,
		SubmissionID: snap.ID,
		Timestamp:    r.Clock.In(snap.Timestamp),
		Username:     snap.Username,
	}, nil
}

// FormattedValue renders the value at its column scale.
func (res *Resolution) FormattedValue() string {
	return res.Value.StringFixed(res.Scale)
}
