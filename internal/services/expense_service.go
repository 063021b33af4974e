package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "divvy/internal/errors"
	"divvy/internal/models"
	"divvy/internal/pagination"
)

// expenseService handles expense tracking against allocations.
type expenseService struct {
	db *gorm.DB
}

// NewExpenseService creates a new ExpenseServicer.
func NewExpenseService(db *gorm.DB) ExpenseServicer {
	return &expenseService{db: db}
}

// CreateExpense records spending against a budget item within a pay
// period and rolls the amount into the matching allocation's actual
// amount, marking it paid. Expense and allocation update commit
// together.
func (s *expenseService) CreateExpense(
	userID, budgetItemID, payPeriodID string,
	amount decimal.Decimal,
	description string,
	spentAt time.Time,
) (*models.Expense, error) {
	if !amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be positive")
	}
	amount = amount.RoundBank(2)

	var expense *models.Expense
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var period models.PayPeriod
		if err := tx.Where("id = ? AND user_id = ?", payPeriodID, userID).First(&period).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrPayPeriodNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		var allocation models.Allocation
		err := tx.Where("pay_period_id = ? AND budget_item_id = ?", payPeriodID, budgetItemID).First(&allocation).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrAllocationNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		expense = &models.Expense{
			UserID:       userID,
			BudgetItemID: budgetItemID,
			PayPeriodID:  payPeriodID,
			AllocationID: allocation.ID,
			Amount:       amount,
			Description:  description,
			SpentAt:      spentAt,
		}
		if err := tx.Create(expense).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		actual := amount
		if allocation.ActualAmount != nil {
			actual = allocation.ActualAmount.Add(amount)
		}
		updates := map[string]interface{}{
			"actual_amount": actual,
			"status":        models.AllocationStatusPaid,
		}
		if err := tx.Model(&allocation).Updates(updates).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return expense, nil
}

// GetUserExpenses returns a paginated, filtered list of the user's expenses.
func (s *expenseService) GetUserExpenses(
	userID string,
	page pagination.PageRequest,
	filter ExpenseFilter,
) (*pagination.PageResponse[models.Expense], error) {
	page.Defaults()

	base := s.db.Model(&models.Expense{}).Where("user_id = ?", userID)
	if filter.BudgetItemID != nil {
		base = base.Where("budget_item_id = ?", *filter.BudgetItemID)
	}
	if filter.PayPeriodID != nil {
		base = base.Where("pay_period_id = ?", *filter.PayPeriodID)
	}
	if filter.FromDate != nil {
		base = base.Where("spent_at >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		base = base.Where("spent_at <= ?", *filter.ToDate)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var expenses []models.Expense
	if err := base.Order("spent_at DESC").Scopes(pagination.Paginate(page)).Find(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(expenses, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// DeleteExpense removes an expense and backs its amount out of the
// allocation's actual amount. The allocation returns to unpaid when
// nothing remains recorded against it.
func (s *expenseService) DeleteExpense(userID, expenseID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var expense models.Expense
		if err := tx.Where("id = ? AND user_id = ?", expenseID, userID).First(&expense).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrExpenseNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		var allocation models.Allocation
		if err := tx.Where("id = ?", expense.AllocationID).First(&allocation).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		updates := make(map[string]interface{})
		if allocation.ActualAmount != nil {
			actual := allocation.ActualAmount.Sub(expense.Amount)
			if actual.IsPositive() {
				updates["actual_amount"] = actual
			} else {
				updates["actual_amount"] = nil
				updates["status"] = models.AllocationStatusUnpaid
			}
		}
		if len(updates) > 0 {
			if err := tx.Model(&allocation).Updates(updates).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}

		if err := tx.Delete(&expense).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// UpdateAllocationActual sets an allocation's actual amount directly
// and marks it paid. The expected amount is never touched: it is a
// closed financial record.
func (s *expenseService) UpdateAllocationActual(userID, allocationID string, amount decimal.Decimal) (*models.Allocation, error) {
	if amount.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must not be negative")
	}

	var allocation models.Allocation
	err := s.db.Joins("JOIN pay_periods ON pay_periods.id = allocations.pay_period_id").
		Where("allocations.id = ? AND pay_periods.user_id = ?", allocationID, userID).
		First(&allocation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAllocationNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	amount = amount.RoundBank(2)
	updates := map[string]interface{}{
		"actual_amount": amount,
		"status":        models.AllocationStatusPaid,
	}
	if err := s.db.Model(&allocation).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	allocation.ActualAmount = &amount
	allocation.Status = models.AllocationStatusPaid
	return &allocation, nil
}
