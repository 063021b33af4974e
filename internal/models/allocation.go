package models

import "github.com/shopspring/decimal"

// AllocationStatus tracks whether real spending has been recorded
// against an allocation.
type AllocationStatus string

const (
	AllocationStatusUnpaid AllocationStatus = "unpaid"
	AllocationStatusPaid   AllocationStatus = "paid"
)

// Allocation is one budget item's computed share of one pay period.
// ItemName, ItemCategory, and CalcType are snapshots taken at generation
// time so the historical record survives later edits to the item.
// ExpectedAmount is never recomputed after creation; ActualAmount is
// filled in as expenses are recorded against the item.
type Allocation struct {
	Base
	PayPeriodID    string           `gorm:"type:uuid;not null;index" json:"pay_period_id"`
	BudgetItemID   string           `gorm:"type:uuid;not null;index" json:"budget_item_id"`
	ItemName       string           `gorm:"not null" json:"item_name"`
	ItemCategory   ItemCategory     `gorm:"not null" json:"item_category"`
	CalcType       CalcType         `gorm:"not null" json:"calc_type"`
	ExpectedAmount decimal.Decimal  `gorm:"type:numeric(14,2);not null" json:"expected_amount"`
	ActualAmount   *decimal.Decimal `gorm:"type:numeric(14,2)" json:"actual_amount,omitempty"`
	Status         AllocationStatus `gorm:"not null;default:unpaid" json:"status"`
	Position       int              `gorm:"not null" json:"position"`

	// Relationships
	PayPeriod  PayPeriod  `gorm:"foreignKey:PayPeriodID" json:"-"`
	BudgetItem BudgetItem `gorm:"foreignKey:BudgetItemID" json:"-"`
}
