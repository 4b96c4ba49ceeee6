package services

import (
	"strings"
	"time"

	"cbi/models"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// tickerMatches compares tickers case-insensitively with surrounding whitespace ignored.
func tickerMatches(db *gorm.DB, ticker string) *gorm.DB {
	return db.Where("LOWER(TRIM(ticker)) = ?", strings.ToLower(strings.TrimSpace(ticker)))
}

// latestSubmission picks the snapshot with the largest id for ticker, optionally restricted to
// timestamps at or before bound. Id order stands in for insertion order. A nil submission with a
// nil error means no candidate exists.
func latestSubmission(db *gorm.DB, ticker string, bound *time.Time) (*models.Submission, error) {
	q := tickerMatches(db.Model(&models.Submission{}), ticker)
	if bound != nil {
		q = q.Where(clause.Lte{Column: clause.Column{Name: "timestamp"}, Value: bound.UTC()})
	}

	var sub models.Submission
	err := q.Order("id DESC").Take(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// latestPerTicker selects the id of the newest submission for each ticker identity.
func latestPerTicker(db *gorm.DB) *gorm.DB {
	return db.Model(&models.Submission{}).
		Select("MAX(id)").
		Group("LOWER(TRIM(ticker))")
}

// distinctTickers lists one spelling per ticker identity, the one on its latest submission, sorted.
func distinctTickers(db *gorm.DB) ([]string, error) {
	var tickers []string
	err := db.Model(&models.Submission{}).
		Where("id IN (?)", latestPerTicker(db)).
		Order("ticker").
		Pluck("ticker", &tickers).Error
	return tickers, err
}

// kpiNames lists the distinct KPI names attached to one submission, sorted.
func kpiNames(db *gorm.DB, submissionID uint) ([]string, error) {
	var names []string
	err := db.Model(&models.KPI{}).
		Where("submission_id = ?", submissionID).
		Distinct("kpi_name").
		Order("kpi_name").
		Pluck("kpi_name", &names).Error
	return names, err
}

// findKPI returns the KPI named name on submissionID. Duplicate names resolve to the lowest id.
func findKPI(db *gorm.DB, submissionID uint, name string) (*models.KPI, error) {
	var kpi models.KPI
	err := db.Where("submission_id = ?", submissionID).
		Where("LOWER(TRIM(kpi_name)) = ?", strings.ToLower(strings.TrimSpace(name))).
		Order("id ASC").
		Take(&kpi).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &kpi, nil
}
