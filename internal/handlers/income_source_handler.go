package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "divvy/internal/errors"
	"divvy/internal/models"
	"divvy/internal/pagination"
	"divvy/internal/services"
)

// IncomeSourceHandler handles income source requests.
type IncomeSourceHandler struct {
	incomeSourceService services.IncomeSourceServicer
	auditService        services.AuditServicer
}

// NewIncomeSourceHandler creates a new IncomeSourceHandler.
func NewIncomeSourceHandler(incomeSourceService services.IncomeSourceServicer, auditService services.AuditServicer) *IncomeSourceHandler {
	return &IncomeSourceHandler{incomeSourceService: incomeSourceService, auditService: auditService}
}

// CreateIncomeSourceRequest represents the request payload for creating an income source.
type CreateIncomeSourceRequest struct {
	Name        string          `json:"name" binding:"required,min=1,max=100"`
	GrossAmount decimal.Decimal `json:"gross_amount" binding:"required"`
	NetAmount   decimal.Decimal `json:"net_amount" binding:"required"`
	Cadence     models.Cadence  `json:"cadence" binding:"required,cadence"`
	StartDate   time.Time       `json:"start_date" binding:"required"`
}

// UpdateIncomeSourceRequest represents the request payload for updating an
// income source. Financial fields are rejected once pay periods exist.
type UpdateIncomeSourceRequest struct {
	Name        string           `json:"name" binding:"omitempty,min=1,max=100"`
	GrossAmount *decimal.Decimal `json:"gross_amount"`
	NetAmount   *decimal.Decimal `json:"net_amount"`
	Cadence     *models.Cadence  `json:"cadence" binding:"omitempty,cadence"`
	StartDate   *time.Time       `json:"start_date"`
	IsActive    *bool            `json:"is_active"`
}

// CreateIncomeSource handles the creation of a new income source.
// @Summary     Create an income source
// @Description Create a new income source with a pay cadence
// @Tags        income-sources
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateIncomeSourceRequest true "Income source details"
// @Success     201 {object} models.IncomeSource "Income source created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /income-sources [post]
func (h *IncomeSourceHandler) CreateIncomeSource(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateIncomeSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	source, err := h.incomeSourceService.CreateIncomeSource(
		userID, req.Name, req.GrossAmount, req.NetAmount, req.Cadence, req.StartDate,
	)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_INCOME_SOURCE", "income_source", source.ID, c.ClientIP(),
		map[string]interface{}{"name": req.Name, "cadence": req.Cadence})

	c.JSON(http.StatusCreated, gin.H{"income_source": source})
}

// GetIncomeSources handles listing income sources for the authenticated user.
// @Summary     Get income sources
// @Description Get a paginated list of income sources for the authenticated user
// @Tags        income-sources
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       is_active query bool false "Filter by active status"
// @Param       page      query int  false "Page number (default 1)"
// @Param       page_size query int  false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.IncomeSource] "Paginated income sources"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /income-sources [get]
func (h *IncomeSourceHandler) GetIncomeSources(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	isActive, err := parseBoolQuery(c, "is_active")
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.incomeSourceService.GetUserIncomeSources(userID, page, isActive)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetIncomeSource handles retrieving a specific income source.
// @Summary     Get income source by ID
// @Description Get a specific income source by ID
// @Tags        income-sources
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Income source ID"
// @Success     200 {object} models.IncomeSource "Income source details"
// @Failure     400 {object} ErrorResponse "Invalid income source ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Income source not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /income-sources/{id} [get]
func (h *IncomeSourceHandler) GetIncomeSource(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	sourceID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	source, err := h.incomeSourceService.GetIncomeSourceByID(userID, sourceID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"income_source": source})
}

// UpdateIncomeSource handles updating an existing income source.
// @Summary     Update income source
// @Description Update an income source. Amounts, cadence, and start date are frozen once pay periods exist.
// @Tags        income-sources
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                    true "Income source ID"
// @Param       request body UpdateIncomeSourceRequest true "Updated income source details"
// @Success     200 {object} models.IncomeSource "Updated income source"
// @Failure     400 {object} ErrorResponse "Invalid input or income source ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Income source not found"
// @Failure     409 {object} ErrorResponse "Financial fields frozen by existing pay periods"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /income-sources/{id} [put]
func (h *IncomeSourceHandler) UpdateIncomeSource(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	sourceID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateIncomeSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	source, err := h.incomeSourceService.UpdateIncomeSource(userID, sourceID, services.UpdateIncomeSourceParams{
		Name:        req.Name,
		GrossAmount: req.GrossAmount,
		NetAmount:   req.NetAmount,
		Cadence:     req.Cadence,
		StartDate:   req.StartDate,
		IsActive:    req.IsActive,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_INCOME_SOURCE", "income_source", sourceID, c.ClientIP(),
		map[string]interface{}{"name": req.Name})

	c.JSON(http.StatusOK, gin.H{"income_source": source})
}

// DeactivateIncomeSource handles deactivating an income source.
// @Summary     Deactivate income source
// @Description Deactivate an income source so it no longer generates pay periods. History is preserved.
// @Tags        income-sources
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Income source ID"
// @Success     200 {object} MessageResponse "Income source deactivated"
// @Failure     400 {object} ErrorResponse "Invalid income source ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Income source not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /income-sources/{id} [delete]
func (h *IncomeSourceHandler) DeactivateIncomeSource(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	sourceID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.incomeSourceService.DeactivateIncomeSource(userID, sourceID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DEACTIVATE_INCOME_SOURCE", "income_source", sourceID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Income source deactivated successfully"})
}
