package models

import "github.com/shopspring/decimal"

// ItemCategory groups budget items for reporting.
type ItemCategory string

const (
	ItemCategoryBills         ItemCategory = "bills"
	ItemCategorySavings       ItemCategory = "savings"
	ItemCategoryDebt          ItemCategory = "debt"
	ItemCategoryGiving        ItemCategory = "giving"
	ItemCategoryDiscretionary ItemCategory = "discretionary"
	ItemCategoryOther         ItemCategory = "other"
)

// Valid reports whether the category is one of the recognized values.
func (c ItemCategory) Valid() bool {
	switch c {
	case ItemCategoryBills, ItemCategorySavings, ItemCategoryDebt,
		ItemCategoryGiving, ItemCategoryDiscretionary, ItemCategoryOther:
		return true
	}
	return false
}

// CalcType determines how a budget item's allocated amount is computed.
type CalcType string

const (
	// CalcTypeFixed allocates the item's value as an absolute amount.
	CalcTypeFixed CalcType = "fixed"
	// CalcTypeGrossPercent allocates value% of the period's gross income.
	CalcTypeGrossPercent CalcType = "gross_percent"
	// CalcTypeNetPercent allocates value% of the period's net income.
	CalcTypeNetPercent CalcType = "net_percent"
	// CalcTypeRemainingPercent allocates value% of whatever net income
	// is left after every earlier-ordered item has been allocated.
	CalcTypeRemainingPercent CalcType = "remaining_percent"
)

// Valid reports whether the calc type is one of the recognized values.
func (t CalcType) Valid() bool {
	switch t {
	case CalcTypeFixed, CalcTypeGrossPercent, CalcTypeNetPercent, CalcTypeRemainingPercent:
		return true
	}
	return false
}

// IsPercent reports whether the item's value is a percentage rather than
// an absolute amount.
func (t CalcType) IsPercent() bool {
	return t != CalcTypeFixed
}

// BudgetItem represents one slice of a pay period's income. Value is an
// absolute amount for fixed items and a percentage in [0,100] otherwise.
// DependsOn orders evaluation: an item is computed only after everything
// it depends on. The dependency relation over a user's active items must
// stay acyclic; that is enforced when items are written, not when
// allocations run.
type BudgetItem struct {
	Base
	UserID   string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Name     string          `gorm:"not null" json:"name"`
	Category ItemCategory    `gorm:"not null" json:"category"`
	CalcType CalcType        `gorm:"not null" json:"calc_type"`
	Value    decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"value"`
	Cadence  Cadence         `gorm:"not null" json:"cadence"`
	Priority int             `gorm:"not null;default:0" json:"priority"`
	IsActive bool            `gorm:"default:true" json:"is_active"`

	// Relationships
	DependsOn   []BudgetItem `gorm:"many2many:budget_item_dependencies;joinForeignKey:ItemID;joinReferences:DependsOnID" json:"depends_on,omitempty"`
	Allocations []Allocation `gorm:"foreignKey:BudgetItemID" json:"allocations,omitempty"`
}

// DependsOnIDs returns the ids of the item's explicit dependencies.
func (b *BudgetItem) DependsOnIDs() []string {
	ids := make([]string, 0, len(b.DependsOn))
	for _, dep := range b.DependsOn {
		ids = append(ids, dep.ID)
	}
	return ids
}
