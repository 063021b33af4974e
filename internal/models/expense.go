package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense records real spending against a budget item within a pay
// period. Creating one rolls its amount into the matching allocation's
// actual amount.
type Expense struct {
	Base
	UserID       string          `gorm:"type:uuid;not null;index" json:"user_id"`
	BudgetItemID string          `gorm:"type:uuid;not null;index" json:"budget_item_id"`
	PayPeriodID  string          `gorm:"type:uuid;not null;index" json:"pay_period_id"`
	AllocationID string          `gorm:"type:uuid;not null;index" json:"allocation_id"`
	Amount       decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	Description  string          `json:"description"`
	SpentAt      time.Time       `gorm:"not null" json:"spent_at"`

	// Relationships
	BudgetItem BudgetItem `gorm:"foreignKey:BudgetItemID" json:"-"`
	Allocation Allocation `gorm:"foreignKey:AllocationID" json:"-"`
}
