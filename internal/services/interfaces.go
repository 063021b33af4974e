package services

import (
	"time"

	"github.com/shopspring/decimal"

	"divvy/internal/models"
	"divvy/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	AttemptLogin(email, password string) (*models.User, error)
	StoreRefreshTokenHash(userID, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
}

// UpdateIncomeSourceParams holds optional fields for updating an income
// source. Financial fields are rejected once pay periods exist.
type UpdateIncomeSourceParams struct {
	Name        string
	GrossAmount *decimal.Decimal
	NetAmount   *decimal.Decimal
	Cadence     *models.Cadence
	StartDate   *time.Time
	IsActive    *bool
}

// IncomeSourceServicer defines the contract for income source business logic.
type IncomeSourceServicer interface {
	CreateIncomeSource(userID, name string, gross, net decimal.Decimal, cadence models.Cadence, startDate time.Time) (*models.IncomeSource, error)
	GetUserIncomeSources(userID string, page pagination.PageRequest, isActive *bool) (*pagination.PageResponse[models.IncomeSource], error)
	GetIncomeSourceByID(userID, sourceID string) (*models.IncomeSource, error)
	UpdateIncomeSource(userID, sourceID string, params UpdateIncomeSourceParams) (*models.IncomeSource, error)
	DeactivateIncomeSource(userID, sourceID string) error
}

// CreateBudgetItemParams holds the fields for creating a budget item.
type CreateBudgetItemParams struct {
	Name         string
	Category     models.ItemCategory
	CalcType     models.CalcType
	Value        decimal.Decimal
	Cadence      models.Cadence
	Priority     int
	DependsOnIDs []string
}

// UpdateBudgetItemParams holds optional fields for updating a budget
// item. DependsOnIDs replaces the full dependency set when non-nil.
type UpdateBudgetItemParams struct {
	Name         string
	Category     *models.ItemCategory
	CalcType     *models.CalcType
	Value        *decimal.Decimal
	Cadence      *models.Cadence
	Priority     *int
	IsActive     *bool
	DependsOnIDs []string
}

// BudgetItemFilter holds optional filter parameters for listing budget items.
type BudgetItemFilter struct {
	Category *models.ItemCategory
	CalcType *models.CalcType
	IsActive *bool
}

// BudgetItemServicer defines the contract for budget item business logic.
// Dependency edges are validated on every write: a depends_on set that
// would introduce a cycle into the user's active item graph is rejected
// here, at the mutation boundary, never deferred to generation time.
type BudgetItemServicer interface {
	CreateBudgetItem(userID string, params CreateBudgetItemParams) (*models.BudgetItem, error)
	GetUserBudgetItems(userID string, page pagination.PageRequest, filter BudgetItemFilter) (*pagination.PageResponse[models.BudgetItem], error)
	GetBudgetItemByID(userID, itemID string) (*models.BudgetItem, error)
	UpdateBudgetItem(userID, itemID string, params UpdateBudgetItemParams) (*models.BudgetItem, error)
	DeleteBudgetItem(userID, itemID string) error
}

// SourceGenerationResult summarizes one income source's outcome of a
// generation run.
type SourceGenerationResult struct {
	IncomeSourceID string `json:"income_source_id"`
	SourceName     string `json:"source_name"`
	PeriodsCreated int    `json:"periods_created"`
	OverAllocated  bool   `json:"over_allocated"`
	ErrorCode      string `json:"error_code,omitempty"`
	ErrorMessage   string `json:"error_message,omitempty"`
}

// PayPeriodDetail is a pay period with its allocation breakdown in
// evaluation order, plus the remaining-pool summary derived from the
// stored expected amounts.
type PayPeriodDetail struct {
	PayPeriod     models.PayPeriod `json:"pay_period"`
	TotalExpected decimal.Decimal  `json:"total_expected"`
	Remaining     decimal.Decimal  `json:"remaining"`
	OverAllocated bool             `json:"over_allocated"`
}

// PayPeriodServicer defines the contract for pay period business logic.
type PayPeriodServicer interface {
	// GenerateDue materializes every due pay period for the user's
	// active income sources. Sources whose budget items form a
	// dependency cycle are skipped (reported in their result); other
	// sources are unaffected. Transient store errors fail the call,
	// which is safe to retry.
	GenerateDue(userID string, today time.Time) ([]SourceGenerationResult, error)
	GetUserPayPeriods(userID string, page pagination.PageRequest, status *models.PayPeriodStatus, incomeSourceID *string) (*pagination.PageResponse[models.PayPeriod], error)
	GetPayPeriodByID(userID, periodID string) (*PayPeriodDetail, error)
}

// ExpenseFilter holds optional filter parameters for listing expenses.
type ExpenseFilter struct {
	BudgetItemID *string
	PayPeriodID  *string
	FromDate     *time.Time
	ToDate       *time.Time
}

// ExpenseServicer defines the contract for expense tracking. Recording
// an expense rolls its amount into the matching allocation's actual
// amount; allocations' expected amounts are never touched.
type ExpenseServicer interface {
	CreateExpense(userID, budgetItemID, payPeriodID string, amount decimal.Decimal, description string, spentAt time.Time) (*models.Expense, error)
	GetUserExpenses(userID string, page pagination.PageRequest, filter ExpenseFilter) (*pagination.PageResponse[models.Expense], error)
	DeleteExpense(userID, expenseID string) error
	UpdateAllocationActual(userID, allocationID string, amount decimal.Decimal) (*models.Allocation, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
