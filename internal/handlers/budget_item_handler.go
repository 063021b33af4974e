package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "divvy/internal/errors"
	"divvy/internal/models"
	"divvy/internal/pagination"
	"divvy/internal/services"
)

// BudgetItemHandler handles budget item requests.
type BudgetItemHandler struct {
	budgetItemService services.BudgetItemServicer
	auditService      services.AuditServicer
}

// NewBudgetItemHandler creates a new BudgetItemHandler.
func NewBudgetItemHandler(budgetItemService services.BudgetItemServicer, auditService services.AuditServicer) *BudgetItemHandler {
	return &BudgetItemHandler{budgetItemService: budgetItemService, auditService: auditService}
}

// CreateBudgetItemRequest represents the request payload for creating a budget item.
type CreateBudgetItemRequest struct {
	Name         string              `json:"name" binding:"required,min=1,max=100"`
	Category     models.ItemCategory `json:"category" binding:"required,item_category"`
	CalcType     models.CalcType     `json:"calc_type" binding:"required,calc_type"`
	Value        decimal.Decimal     `json:"value" binding:"required"`
	Cadence      models.Cadence      `json:"cadence" binding:"required,cadence"`
	Priority     int                 `json:"priority" binding:"min=0"`
	DependsOnIDs []string            `json:"depends_on_ids"`
}

// UpdateBudgetItemRequest represents the request payload for updating a
// budget item. A non-nil depends_on_ids replaces the full dependency set.
type UpdateBudgetItemRequest struct {
	Name         string               `json:"name" binding:"omitempty,min=1,max=100"`
	Category     *models.ItemCategory `json:"category" binding:"omitempty,item_category"`
	CalcType     *models.CalcType     `json:"calc_type" binding:"omitempty,calc_type"`
	Value        *decimal.Decimal     `json:"value"`
	Cadence      *models.Cadence      `json:"cadence" binding:"omitempty,cadence"`
	Priority     *int                 `json:"priority" binding:"omitempty,min=0"`
	IsActive     *bool                `json:"is_active"`
	DependsOnIDs []string             `json:"depends_on_ids"`
}

// CreateBudgetItem handles the creation of a new budget item.
// @Summary     Create a budget item
// @Description Create a new budget item with a calculation type, priority, and optional dependencies
// @Tags        budget-items
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateBudgetItemRequest true "Budget item details"
// @Success     201 {object} models.BudgetItem "Budget item created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     409 {object} ErrorResponse "Dependency cycle"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budget-items [post]
func (h *BudgetItemHandler) CreateBudgetItem(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateBudgetItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	item, err := h.budgetItemService.CreateBudgetItem(userID, services.CreateBudgetItemParams{
		Name:         req.Name,
		Category:     req.Category,
		CalcType:     req.CalcType,
		Value:        req.Value,
		Cadence:      req.Cadence,
		Priority:     req.Priority,
		DependsOnIDs: req.DependsOnIDs,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_BUDGET_ITEM", "budget_item", item.ID, c.ClientIP(),
		map[string]interface{}{"name": req.Name, "calc_type": req.CalcType, "priority": req.Priority})

	c.JSON(http.StatusCreated, gin.H{"budget_item": item})
}

// GetBudgetItems handles listing budget items for the authenticated user.
// @Summary     Get budget items
// @Description Get a paginated list of budget items for the authenticated user, ordered by priority
// @Tags        budget-items
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       category  query string false "Filter by category"
// @Param       calc_type query string false "Filter by calculation type"
// @Param       is_active query bool   false "Filter by active status"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.BudgetItem] "Paginated budget items"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budget-items [get]
func (h *BudgetItemHandler) GetBudgetItems(c *gin.Context) {
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

	var filter services.BudgetItemFilter

	if v := c.Query("category"); v != "" {
		cat := models.ItemCategory(v)
		if !cat.Valid() {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid category"))
			return
		}
		filter.Category = &cat
	}

	if v := c.Query("calc_type"); v != "" {
		ct := models.CalcType(v)
		if !ct.Valid() {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid calc_type"))
			return
		}
		filter.CalcType = &ct
	}

	isActive, err := parseBoolQuery(c, "is_active")
	if err != nil {
		respondWithError(c, err)
		return
	}
	filter.IsActive = isActive

	result, err := h.budgetItemService.GetUserBudgetItems(userID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetBudgetItem handles retrieving a specific budget item.
// @Summary     Get budget item by ID
// @Description Get a specific budget item by ID, including its dependencies
// @Tags        budget-items
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Budget item ID"
// @Success     200 {object} models.BudgetItem "Budget item details"
// @Failure     400 {object} ErrorResponse "Invalid budget item ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget item not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budget-items/{id} [get]
func (h *BudgetItemHandler) GetBudgetItem(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	itemID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	item, err := h.budgetItemService.GetBudgetItemByID(userID, itemID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budget_item": item})
}

// UpdateBudgetItem handles updating an existing budget item.
// @Summary     Update budget item
// @Description Update a budget item. Dependency changes are validated against the user's item graph.
// @Tags        budget-items
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                  true "Budget item ID"
// @Param       request body UpdateBudgetItemRequest true "Updated budget item details"
// @Success     200 {object} models.BudgetItem "Updated budget item"
// @Failure     400 {object} ErrorResponse "Invalid input or budget item ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget item not found"
// @Failure     409 {object} ErrorResponse "Dependency cycle"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budget-items/{id} [put]
func (h *BudgetItemHandler) UpdateBudgetItem(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	itemID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateBudgetItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	item, err := h.budgetItemService.UpdateBudgetItem(userID, itemID, services.UpdateBudgetItemParams{
		Name:         req.Name,
		Category:     req.Category,
		CalcType:     req.CalcType,
		Value:        req.Value,
		Cadence:      req.Cadence,
		Priority:     req.Priority,
		IsActive:     req.IsActive,
		DependsOnIDs: req.DependsOnIDs,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_BUDGET_ITEM", "budget_item", itemID, c.ClientIP(),
		map[string]interface{}{"name": req.Name})

	c.JSON(http.StatusOK, gin.H{"budget_item": item})
}

// DeleteBudgetItem handles deleting a budget item.
// @Summary     Delete budget item
// @Description Delete a budget item (soft delete). Edges referencing it are removed; past allocations keep their snapshots.
// @Tags        budget-items
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Budget item ID"
// @Success     200 {object} MessageResponse "Budget item deleted"
// @Failure     400 {object} ErrorResponse "Invalid budget item ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget item not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budget-items/{id} [delete]
func (h *BudgetItemHandler) DeleteBudgetItem(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	itemID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.budgetItemService.DeleteBudgetItem(userID, itemID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_BUDGET_ITEM", "budget_item", itemID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Budget item deleted successfully"})
}
