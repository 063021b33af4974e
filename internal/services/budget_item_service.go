package services

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"divvy/internal/engine"
	apperrors "divvy/internal/errors"
	"divvy/internal/models"
	"divvy/internal/pagination"
)

// budgetItemService handles budget item business logic, including the
// write-time dependency validation pass.
type budgetItemService struct {
	db *gorm.DB
}

// NewBudgetItemService creates a new BudgetItemServicer.
func NewBudgetItemService(db *gorm.DB) BudgetItemServicer {
	return &budgetItemService{db: db}
}

// CreateBudgetItem creates a budget item after validating its value,
// enums, and dependency edges against the user's active item graph.
func (s *budgetItemService) CreateBudgetItem(userID string, params CreateBudgetItemParams) (*models.BudgetItem, error) {
	if !params.Category.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unrecognized item category")
	}
	if !params.CalcType.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unrecognized calc type")
	}
	if !params.Cadence.Valid() {
		return nil, apperrors.ErrInvalidCadence
	}
	if err := validateItemValue(params.CalcType, params.Value); err != nil {
		return nil, err
	}

	deps, err := s.resolveDependencyRefs(userID, "", params.DependsOnIDs)
	if err != nil {
		return nil, err
	}

	item := &models.BudgetItem{
		UserID:    userID,
		Name:      params.Name,
		Category:  params.Category,
		CalcType:  params.CalcType,
		Value:     params.Value,
		Cadence:   params.Cadence,
		Priority:  params.Priority,
		IsActive:  true,
		DependsOn: deps,
	}

	if err := s.checkAcyclic(userID, item, ""); err != nil {
		return nil, err
	}

	if err := s.db.Create(item).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return item, nil
}

// GetUserBudgetItems returns a paginated, filtered list of the user's budget items.
func (s *budgetItemService) GetUserBudgetItems(
	userID string,
	page pagination.PageRequest,
	filter BudgetItemFilter,
) (*pagination.PageResponse[models.BudgetItem], error) {
	page.Defaults()

	base := s.db.Model(&models.BudgetItem{}).Where("user_id = ?", userID)
	if filter.Category != nil {
		base = base.Where("category = ?", *filter.Category)
	}
	if filter.CalcType != nil {
		base = base.Where("calc_type = ?", *filter.CalcType)
	}
	if filter.IsActive != nil {
		base = base.Where("is_active = ?", *filter.IsActive)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var items []models.BudgetItem
	if err := base.Preload("DependsOn").Order("priority, id").Scopes(pagination.Paginate(page)).Find(&items).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(items, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetBudgetItemByID returns a budget item by ID if it belongs to the user.
func (s *budgetItemService) GetBudgetItemByID(userID, itemID string) (*models.BudgetItem, error) {
	var item models.BudgetItem
	if err := s.db.Preload("DependsOn").Where("id = ? AND user_id = ?", itemID, userID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetItemNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &item, nil
}

// UpdateBudgetItem updates a budget item, re-running the dependency
// validation whenever the depends_on set, priority, calc type, or
// active flag changes. Already-generated allocations keep their
// snapshots; the change only affects periods generated afterwards.
func (s *budgetItemService) UpdateBudgetItem(userID, itemID string, params UpdateBudgetItemParams) (*models.BudgetItem, error) {
	item, err := s.GetBudgetItemByID(userID, itemID)
	if err != nil {
		return nil, err
	}

	if params.Category != nil && !params.Category.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unrecognized item category")
	}
	if params.CalcType != nil && !params.CalcType.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unrecognized calc type")
	}
	if params.Cadence != nil && !params.Cadence.Valid() {
		return nil, apperrors.ErrInvalidCadence
	}

	// Build the candidate state the graph must stay acyclic under.
	candidate := *item
	if params.Name != "" {
		candidate.Name = params.Name
	}
	if params.Category != nil {
		candidate.Category = *params.Category
	}
	if params.CalcType != nil {
		candidate.CalcType = *params.CalcType
	}
	if params.Value != nil {
		candidate.Value = *params.Value
	}
	if params.Cadence != nil {
		candidate.Cadence = *params.Cadence
	}
	if params.Priority != nil {
		candidate.Priority = *params.Priority
	}
	if params.IsActive != nil {
		candidate.IsActive = *params.IsActive
	}
	if err := validateItemValue(candidate.CalcType, candidate.Value); err != nil {
		return nil, err
	}

	replaceDeps := params.DependsOnIDs != nil
	if replaceDeps {
		deps, err := s.resolveDependencyRefs(userID, itemID, params.DependsOnIDs)
		if err != nil {
			return nil, err
		}
		candidate.DependsOn = deps
	}

	if err := s.checkAcyclic(userID, &candidate, itemID); err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"name":      candidate.Name,
			"category":  candidate.Category,
			"calc_type": candidate.CalcType,
			"value":     candidate.Value,
			"cadence":   candidate.Cadence,
			"priority":  candidate.Priority,
			"is_active": candidate.IsActive,
		}
		if err := tx.Model(item).Updates(updates).Error; err != nil {
			return err
		}
		if replaceDeps {
			deps := make([]*models.BudgetItem, 0, len(candidate.DependsOn))
			for i := range candidate.DependsOn {
				deps = append(deps, &candidate.DependsOn[i])
			}
			if err := tx.Model(item).Association("DependsOn").Replace(deps); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.GetBudgetItemByID(userID, itemID)
}

// DeleteBudgetItem soft-deletes a budget item. Historical allocations
// keep their snapshots of the item's name and category.
func (s *budgetItemService) DeleteBudgetItem(userID, itemID string) error {
	item, err := s.GetBudgetItemByID(userID, itemID)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// Drop edges pointing at the deleted item so dependents fall
		// back to their remaining constraints.
		if err := tx.Exec("DELETE FROM budget_item_dependencies WHERE item_id = ? OR depends_on_id = ?", itemID, itemID).Error; err != nil {
			return err
		}
		return tx.Delete(item).Error
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// validateItemValue checks the value range for the calc type:
// percentages must sit in [0,100], fixed amounts must not be negative.
func validateItemValue(calcType models.CalcType, value decimal.Decimal) error {
	if value.IsNegative() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "value must not be negative")
	}
	if calcType.IsPercent() && value.GreaterThan(decimal.NewFromInt(100)) {
		return apperrors.ErrInvalidPercentage
	}
	return nil
}

// resolveDependencyRefs loads the referenced items and enforces the
// referential rules: no self-dependency, and every dependency must be
// one of the user's own items.
func (s *budgetItemService) resolveDependencyRefs(userID, selfID string, depIDs []string) ([]models.BudgetItem, error) {
	if len(depIDs) == 0 {
		return nil, nil
	}

	seen := make(map[string]bool, len(depIDs))
	for _, depID := range depIDs {
		if selfID != "" && depID == selfID {
			return nil, apperrors.ErrSelfDependency
		}
		if seen[depID] {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "duplicate dependency reference")
		}
		seen[depID] = true
	}

	var deps []models.BudgetItem
	if err := s.db.Where("id IN ? AND user_id = ?", depIDs, userID).Find(&deps).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(deps) != len(depIDs) {
		return nil, apperrors.ErrForeignDependency
	}
	return deps, nil
}

// checkAcyclic runs the graph builder's validation over the user's
// active items with the candidate item substituted in, rejecting the
// write if the dependency relation would gain a cycle.
func (s *budgetItemService) checkAcyclic(userID string, candidate *models.BudgetItem, replaceID string) error {
	var active []models.BudgetItem
	if err := s.db.Preload("DependsOn").Where("user_id = ? AND is_active = ?", userID, true).Find(&active).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	graph := make([]models.BudgetItem, 0, len(active)+1)
	for _, it := range active {
		if replaceID != "" && it.ID == replaceID {
			continue
		}
		graph = append(graph, it)
	}
	if candidate.IsActive {
		c := *candidate
		if c.ID == "" {
			// New items have no id yet; the sort only needs a unique key.
			c.ID = "pending-" + c.Name
		}
		graph = append(graph, c)
	}

	if err := engine.ValidateDependencies(graph); err != nil {
		var cycle *engine.CycleError
		if errors.As(err, &cycle) {
			return apperrors.WithMessage(apperrors.ErrDependencyCycle,
				"Budget item dependencies form a cycle involving "+cycle.ItemName)
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
