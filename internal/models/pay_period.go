package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PayPeriodStatus tracks whether a period is the current one for its source.
type PayPeriodStatus string

const (
	PayPeriodStatusActive    PayPeriodStatus = "active"
	PayPeriodStatusCompleted PayPeriodStatus = "completed"
)

// PayPeriod is one cadence interval of an income source, materialized
// exactly once together with its allocations. ExpectedNet is a snapshot
// of the source's net amount at generation time; the period never tracks
// later changes to the source. Immutable after creation except for the
// active -> completed status transition once its end date passes.
type PayPeriod struct {
	Base
	IncomeSourceID string          `gorm:"type:uuid;not null;index;uniqueIndex:idx_source_period_start" json:"income_source_id"`
	UserID         string          `gorm:"type:uuid;not null;index" json:"user_id"`
	StartDate      time.Time       `gorm:"not null;uniqueIndex:idx_source_period_start" json:"start_date"`
	EndDate        time.Time       `gorm:"not null" json:"end_date"`
	Status         PayPeriodStatus `gorm:"not null;default:active" json:"status"`
	ExpectedNet    decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"expected_net"`
	GeneratedAt    time.Time       `gorm:"not null" json:"generated_at"`

	// Relationships
	IncomeSource IncomeSource `gorm:"foreignKey:IncomeSourceID" json:"income_source,omitempty"`
	Allocations  []Allocation `gorm:"foreignKey:PayPeriodID" json:"allocations,omitempty"`
}
