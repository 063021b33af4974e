package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "divvy/internal/errors"
	"divvy/internal/models"
	"divvy/internal/pagination"
	"divvy/internal/services"
	"divvy/internal/uuid"
)

// PayPeriodHandler handles pay period requests.
type PayPeriodHandler struct {
	payPeriodService services.PayPeriodServicer
	auditService     services.AuditServicer
}

// NewPayPeriodHandler creates a new PayPeriodHandler.
func NewPayPeriodHandler(payPeriodService services.PayPeriodServicer, auditService services.AuditServicer) *PayPeriodHandler {
	return &PayPeriodHandler{payPeriodService: payPeriodService, auditService: auditService}
}

// GeneratePayPeriods materializes all due pay periods for the user.
// @Summary     Generate due pay periods
// @Description Generate every pay period due up to today for the user's active income sources, with allocations computed per period. Safe to call repeatedly.
// @Tags        pay-periods
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} services.SourceGenerationResult "Per-source generation results"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     503 {object} ErrorResponse "Storage unavailable"
// @Router      /pay-periods/generate [post]
func (h *PayPeriodHandler) GeneratePayPeriods(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	results, err := h.payPeriodService.GenerateDue(userID, time.Now().UTC())
	if err != nil {
		respondWithError(c, err)
		return
	}

	created := 0
	for _, r := range results {
		created += r.PeriodsCreated
	}
	if created > 0 {
		h.auditService.Log(userID, "GENERATE_PAY_PERIODS", "pay_period", "", c.ClientIP(),
			map[string]interface{}{"periods_created": created})
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}

// GetPayPeriods handles listing pay periods for the authenticated user.
// @Summary     Get pay periods
// @Description Get a paginated list of pay periods, newest first
// @Tags        pay-periods
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       status           query string false "Filter by status (active/completed)"
// @Param       income_source_id query string false "Filter by income source"
// @Param       page             query int    false "Page number (default 1)"
// @Param       page_size        query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.PayPeriod] "Paginated pay periods"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /pay-periods [get]
func (h *PayPeriodHandler) GetPayPeriods(c *gin.Context) {
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

	var status *models.PayPeriodStatus
	if v := c.Query("status"); v != "" {
		s := models.PayPeriodStatus(v)
		if s != models.PayPeriodStatusActive && s != models.PayPeriodStatusCompleted {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "status must be 'active' or 'completed'"))
			return
		}
		status = &s
	}

	var incomeSourceID *string
	if v := c.Query("income_source_id"); v != "" {
		if !uuid.IsValid(v) {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid income_source_id"))
			return
		}
		incomeSourceID = &v
	}

	result, err := h.payPeriodService.GetUserPayPeriods(userID, page, status, incomeSourceID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetPayPeriod handles retrieving a specific pay period with its allocations.
// @Summary     Get pay period by ID
// @Description Get a pay period with its allocation breakdown in evaluation order and remaining-pool summary
// @Tags        pay-periods
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Pay period ID"
// @Success     200 {object} services.PayPeriodDetail "Pay period details"
// @Failure     400 {object} ErrorResponse "Invalid pay period ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Pay period not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /pay-periods/{id} [get]
func (h *PayPeriodHandler) GetPayPeriod(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	periodID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	detail, err := h.payPeriodService.GetPayPeriodByID(userID, periodID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}
