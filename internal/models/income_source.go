package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cadence represents the recurrence interval of an income source or budget item.
type Cadence string

const (
	CadenceWeekly      Cadence = "weekly"
	CadenceBiweekly    Cadence = "biweekly"
	CadenceSemimonthly Cadence = "semimonthly"
	CadenceMonthly     Cadence = "monthly"
	CadenceQuarterly   Cadence = "quarterly"
	CadenceAnnual      Cadence = "annual"
)

// Valid reports whether the cadence is one of the recognized values.
func (c Cadence) Valid() bool {
	switch c {
	case CadenceWeekly, CadenceBiweekly, CadenceSemimonthly,
		CadenceMonthly, CadenceQuarterly, CadenceAnnual:
		return true
	}
	return false
}

// IncomeSource represents a recurring paycheck. Gross is the computation
// base for gross-percent items; net is the spendable amount pay periods
// are funded from. Once a pay period has been generated for a source,
// its amounts, cadence, and start date are frozen (only name and
// deactivation may change).
type IncomeSource struct {
	Base
	UserID      string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Name        string          `gorm:"not null" json:"name"`
	GrossAmount decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"gross_amount"`
	NetAmount   decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"net_amount"`
	Cadence     Cadence         `gorm:"not null" json:"cadence"`
	StartDate   time.Time       `gorm:"not null" json:"start_date"`
	IsActive    bool            `gorm:"default:true" json:"is_active"`

	// Relationships
	PayPeriods []PayPeriod `gorm:"foreignKey:IncomeSourceID" json:"pay_periods,omitempty"`
}
