package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"divvy/internal/engine"
	apperrors "divvy/internal/errors"
	"divvy/internal/models"
	"divvy/internal/pagination"
)

// incomeSourceService handles income source business logic.
type incomeSourceService struct {
	db *gorm.DB
}

// NewIncomeSourceService creates a new IncomeSourceServicer.
func NewIncomeSourceService(db *gorm.DB) IncomeSourceServicer {
	return &incomeSourceService{db: db}
}

// CreateIncomeSource creates a new income source for the user.
func (s *incomeSourceService) CreateIncomeSource(
	userID, name string,
	gross, net decimal.Decimal,
	cadence models.Cadence,
	startDate time.Time,
) (*models.IncomeSource, error) {
	if !cadence.Valid() {
		return nil, apperrors.ErrInvalidCadence
	}
	if gross.IsNegative() || net.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "gross and net amounts must not be negative")
	}
	if net.GreaterThan(gross) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "net amount cannot exceed gross amount")
	}

	source := &models.IncomeSource{
		UserID:      userID,
		Name:        name,
		GrossAmount: gross.RoundBank(2),
		NetAmount:   net.RoundBank(2),
		Cadence:     cadence,
		StartDate:   engine.DateOnly(startDate),
		IsActive:    true,
	}

	if err := s.db.Create(source).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return source, nil
}

// GetUserIncomeSources returns a paginated list of the user's income sources.
func (s *incomeSourceService) GetUserIncomeSources(
	userID string,
	page pagination.PageRequest,
	isActive *bool,
) (*pagination.PageResponse[models.IncomeSource], error) {
	page.Defaults()

	base := s.db.Model(&models.IncomeSource{}).Where("user_id = ?", userID)
	if isActive != nil {
		base = base.Where("is_active = ?", *isActive)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var sources []models.IncomeSource
	if err := base.Order("created_at").Scopes(pagination.Paginate(page)).Find(&sources).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(sources, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetIncomeSourceByID returns an income source by ID if it belongs to the user.
func (s *incomeSourceService) GetIncomeSourceByID(userID, sourceID string) (*models.IncomeSource, error) {
	var source models.IncomeSource
	if err := s.db.Where("id = ? AND user_id = ?", sourceID, userID).First(&source).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrIncomeSourceNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &source, nil
}

// UpdateIncomeSource updates an income source. Once any pay period has
// been generated from a source, its amounts, cadence, and start date
// are frozen; only renaming and (de)activation remain allowed.
func (s *incomeSourceService) UpdateIncomeSource(
	userID, sourceID string,
	params UpdateIncomeSourceParams,
) (*models.IncomeSource, error) {
	source, err := s.GetIncomeSourceByID(userID, sourceID)
	if err != nil {
		return nil, err
	}

	touchesFrozen := params.GrossAmount != nil || params.NetAmount != nil ||
		params.Cadence != nil || params.StartDate != nil
	if touchesFrozen {
		var periods int64
		if err := s.db.Model(&models.PayPeriod{}).Where("income_source_id = ?", sourceID).Count(&periods).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if periods > 0 {
			return nil, apperrors.ErrSourceImmutable
		}
	}

	if params.Cadence != nil && !params.Cadence.Valid() {
		return nil, apperrors.ErrInvalidCadence
	}

	updates := make(map[string]interface{})
	if params.Name != "" {
		updates["name"] = params.Name
	}
	if params.GrossAmount != nil {
		updates["gross_amount"] = params.GrossAmount.RoundBank(2)
	}
	if params.NetAmount != nil {
		updates["net_amount"] = params.NetAmount.RoundBank(2)
	}
	if params.Cadence != nil {
		updates["cadence"] = *params.Cadence
	}
	if params.StartDate != nil {
		updates["start_date"] = engine.DateOnly(*params.StartDate)
	}
	if params.IsActive != nil {
		updates["is_active"] = *params.IsActive
	}

	if len(updates) > 0 {
		if err := s.db.Model(source).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return source, nil
}

// DeactivateIncomeSource stops period generation for a source. Existing
// pay periods and allocations are untouched.
func (s *incomeSourceService) DeactivateIncomeSource(userID, sourceID string) error {
	source, err := s.GetIncomeSourceByID(userID, sourceID)
	if err != nil {
		return err
	}

	if err := s.db.Model(source).Update("is_active", false).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
