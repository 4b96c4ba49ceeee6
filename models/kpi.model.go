package models

import "github.com/shopspring/decimal"

// KPI is one named metric's three scenario values, owned by a single Submission.
type KPI struct {
	ID           uint                `gorm:"primaryKey;autoIncrement" json:"id"`
	SubmissionID uint                `gorm:"not null;index" json:"submission_id"`
	KPIName      string              `gorm:"column:kpi_name;type:varchar(200);not null" json:"kpi_name"`
	DownValue    decimal.NullDecimal `gorm:"type:numeric(15,4)" json:"down_value"`
	BaseValue    decimal.NullDecimal `gorm:"type:numeric(15,4)" json:"base_value"`
	UpValue      decimal.NullDecimal `gorm:"type:numeric(15,4)" json:"up_value"`
}

func (KPI) TableName() string {
	return "kpis"
}

// Value returns the KPI value for scenario.
func (k *KPI) Value(scenario Scenario) decimal.NullDecimal {
	switch scenario {
	case ScenarioDown:
		return k.DownValue
	case ScenarioBase:
		return k.BaseValue
	case ScenarioUp:
		return k.UpValue
	}
	return decimal.NullDecimal{}
}
