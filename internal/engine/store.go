package engine

import "divvy/internal/models"

// Store is the persistence surface the generator depends on. The
// engine owns no storage of its own; implementations live in the
// service layer.
type Store interface {
	// GetActiveBudgetItems returns the user's active budget items with
	// their explicit dependencies loaded.
	GetActiveBudgetItems(userID string) ([]models.BudgetItem, error)

	// GetLatestPayPeriod returns the pay period with the latest end
	// date for the income source, or nil if none has been generated.
	GetLatestPayPeriod(incomeSourceID string) (*models.PayPeriod, error)

	// CreatePayPeriodWithAllocations persists a period and its
	// allocations as one atomic unit, wiring the period's generated id
	// onto each allocation. A period without all of its allocations
	// must never be observable.
	CreatePayPeriodWithAllocations(period *models.PayPeriod, allocations []models.Allocation) error
}
