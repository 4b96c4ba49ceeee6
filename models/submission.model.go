package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Submission is one analyst's scenario entry for a ticker at one point in time. Rows are never
// updated; a newer projection is a new row.
type Submission struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Ticker    string    `gorm:"type:varchar(50);not null;index" json:"ticker"`
	Username  string    `gorm:"type:varchar(100);not null" json:"username"`
	Timestamp time.Time `gorm:"not null;index" json:"timestamp"`

	DownTargetMultiple decimal.NullDecimal `gorm:"type:numeric(10,4)" json:"down_target_multiple"`
	BaseTargetMultiple decimal.NullDecimal `gorm:"type:numeric(10,4)" json:"base_target_multiple"`
	UpTargetMultiple   decimal.NullDecimal `gorm:"type:numeric(10,4)" json:"up_target_multiple"`
	DownTargetPrice    decimal.NullDecimal `gorm:"type:numeric(10,2)" json:"down_target_price"`
	BaseTargetPrice    decimal.NullDecimal `gorm:"type:numeric(10,2)" json:"base_target_price"`
	UpTargetPrice      decimal.NullDecimal `gorm:"type:numeric(10,2)" json:"up_target_price"`

	// Payload is the request body exactly as received.
	Payload datatypes.JSON `json:"-"`

	KPIs []KPI `gorm:"foreignKey:SubmissionID;constraint:OnDelete:CASCADE" json:"kpis,omitempty"`
}

func (Submission) TableName() string {
	return "submissions"
}

// TargetMultiple returns the target multiple for scenario.
func (s *Submission) TargetMultiple(scenario Scenario) decimal.NullDecimal {
	switch scenario {
	case ScenarioDown:
		return s.DownTargetMultiple
	case ScenarioBase:
		return s.BaseTargetMultiple
	case ScenarioUp:
		return s.UpTargetMultiple
	}
	return decimal.NullDecimal{}
}

// TargetPrice returns the target price for scenario.
func (s *Submission) TargetPrice(scenario Scenario) decimal.NullDecimal {
	switch scenario {
	case ScenarioDown:
		return s.DownTargetPrice
	case ScenarioBase:
		return s.BaseTargetPrice
	case ScenarioUp:
		return s.UpTargetPrice
	}
	return decimal.NullDecimal{}
}
