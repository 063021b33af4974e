package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"divvy/internal/engine"
	apperrors "divvy/internal/errors"
	"divvy/internal/logger"
	"divvy/internal/models"
	"divvy/internal/pagination"
)

// payPeriodService handles pay period generation and queries. It is the
// engine's collaborator store: the engine computes, this service reads
// and writes.
type payPeriodService struct {
	db        *gorm.DB
	generator *engine.Generator
}

// NewPayPeriodService creates a new PayPeriodServicer.
func NewPayPeriodService(db *gorm.DB) PayPeriodServicer {
	s := &payPeriodService{db: db}
	s.generator = engine.NewGenerator(s)
	return s
}

// GetActiveBudgetItems implements engine.Store.
func (s *payPeriodService) GetActiveBudgetItems(userID string) ([]models.BudgetItem, error) {
	var items []models.BudgetItem
	if err := s.db.Preload("DependsOn").Where("user_id = ? AND is_active = ?", userID, true).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// GetLatestPayPeriod implements engine.Store.
func (s *payPeriodService) GetLatestPayPeriod(incomeSourceID string) (*models.PayPeriod, error) {
	var period models.PayPeriod
	err := s.db.Where("income_source_id = ?", incomeSourceID).Order("end_date DESC").First(&period).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &period, nil
}

// CreatePayPeriodWithAllocations implements engine.Store. The period
// and its allocations commit or roll back together; a period without
// all of its allocations is never observable.
func (s *payPeriodService) CreatePayPeriodWithAllocations(period *models.PayPeriod, allocations []models.Allocation) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(period).Error; err != nil {
			return err
		}
		for i := range allocations {
			allocations[i].PayPeriodID = period.ID
		}
		if len(allocations) == 0 {
			return nil
		}
		return tx.Create(&allocations).Error
	})
}

// GenerateDue materializes due pay periods for every active income
// source of the user. Sources run concurrently; state is partitioned
// per source, and the engine serializes overlapping runs on the same
// source. A dependency cycle skips just that source; transient store
// errors fail the whole call, which is safe to retry.
func (s *payPeriodService) GenerateDue(userID string, today time.Time) ([]SourceGenerationResult, error) {
	if err := s.completeElapsed(userID, today); err != nil {
		return nil, err
	}

	var sources []models.IncomeSource
	if err := s.db.Where("user_id = ? AND is_active = ?", userID, true).Find(&sources).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	results := make([]SourceGenerationResult, len(sources))
	var g errgroup.Group
	for i := range sources {
		i := i
		g.Go(func() error {
			source := sources[i]
			result := SourceGenerationResult{
				IncomeSourceID: source.ID,
				SourceName:     source.Name,
			}

			generated, err := s.generator.GenerateDue(&source, today)
			if err != nil {
				var cycle *engine.CycleError
				if errors.As(err, &cycle) {
					// The user has to fix their budget item
					// dependencies; other sources keep generating.
					result.ErrorCode = apperrors.ErrDependencyCycle.Code
					result.ErrorMessage = "Dependency cycle involving " + cycle.ItemName
					results[i] = result
					logger.Get().Warnw("skipping income source with dependency cycle",
						"income_source_id", source.ID,
						"item", cycle.ItemName,
					)
					return nil
				}
				var invalidCadence *engine.InvalidCadenceError
				if errors.As(err, &invalidCadence) {
					return apperrors.Wrap(apperrors.ErrInvalidCadence, err)
				}
				return apperrors.Wrap(apperrors.ErrStore, err)
			}

			result.PeriodsCreated = len(generated)
			for _, p := range generated {
				if p.OverAllocated {
					result.OverAllocated = true
				}
			}
			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// completeElapsed flips pay periods whose end date has passed from
// active to completed before new periods are generated.
func (s *payPeriodService) completeElapsed(userID string, today time.Time) error {
	err := s.db.Model(&models.PayPeriod{}).
		Where("user_id = ? AND status = ? AND end_date < ?", userID, models.PayPeriodStatusActive, engine.DateOnly(today)).
		Update("status", models.PayPeriodStatusCompleted).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetUserPayPeriods returns a paginated list of the user's pay periods,
// newest first.
func (s *payPeriodService) GetUserPayPeriods(
	userID string,
	page pagination.PageRequest,
	status *models.PayPeriodStatus,
	incomeSourceID *string,
) (*pagination.PageResponse[models.PayPeriod], error) {
	page.Defaults()

	base := s.db.Model(&models.PayPeriod{}).Where("user_id = ?", userID)
	if status != nil {
		base = base.Where("status = ?", *status)
	}
	if incomeSourceID != nil {
		base = base.Where("income_source_id = ?", *incomeSourceID)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var periods []models.PayPeriod
	if err := base.Order("start_date DESC").Scopes(pagination.Paginate(page)).Find(&periods).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(periods, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetPayPeriodByID returns a pay period with its allocations in
// evaluation order, plus the remaining-pool summary. A negative
// remainder means the budget was over-allocated for this period; it is
// reported, not treated as an error.
func (s *payPeriodService) GetPayPeriodByID(userID, periodID string) (*PayPeriodDetail, error) {
	var period models.PayPeriod
	err := s.db.Preload("Allocations", func(db *gorm.DB) *gorm.DB {
		return db.Order("position")
	}).Where("id = ? AND user_id = ?", periodID, userID).First(&period).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPayPeriodNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	total := decimal.Zero
	for _, a := range period.Allocations {
		total = total.Add(a.ExpectedAmount)
	}
	remaining := period.ExpectedNet.Sub(total)

	return &PayPeriodDetail{
		PayPeriod:     period,
		TotalExpected: total,
		Remaining:     remaining,
		OverAllocated: remaining.IsNegative(),
	}, nil
}
