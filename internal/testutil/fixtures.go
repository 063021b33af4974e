package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"divvy/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestIncomeSource creates a monthly income source with gross 5000
// and net 4000 starting January 1, 2025.
func CreateTestIncomeSource(t *testing.T, db *gorm.DB, userID string) *models.IncomeSource {
	t.Helper()
	return CreateTestIncomeSourceWith(t, db, userID, models.CadenceMonthly,
		decimal.NewFromInt(5000), decimal.NewFromInt(4000),
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
}

// CreateTestIncomeSourceWith creates an income source with the given
// cadence, amounts, and start date.
func CreateTestIncomeSourceWith(t *testing.T, db *gorm.DB, userID string, cadence models.Cadence, gross, net decimal.Decimal, startDate time.Time) *models.IncomeSource {
	t.Helper()

	source := &models.IncomeSource{
		UserID:      userID,
		Name:        fmt.Sprintf("Test Income %d", nextID()),
		GrossAmount: gross,
		NetAmount:   net,
		Cadence:     cadence,
		StartDate:   startDate,
		IsActive:    true,
	}
	if err := db.Create(source).Error; err != nil {
		t.Fatalf("failed to create test income source: %v", err)
	}
	return source
}

// CreateTestBudgetItem creates an active budget item with the given calc
// type, value, and priority.
func CreateTestBudgetItem(t *testing.T, db *gorm.DB, userID string, calcType models.CalcType, value decimal.Decimal, priority int) *models.BudgetItem {
	t.Helper()

	item := &models.BudgetItem{
		UserID:   userID,
		Name:     fmt.Sprintf("Test Item %d", nextID()),
		Category: models.ItemCategoryBills,
		CalcType: calcType,
		Value:    value,
		Cadence:  models.CadenceMonthly,
		Priority: priority,
		IsActive: true,
	}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("failed to create test budget item: %v", err)
	}
	return item
}

// CreateTestPayPeriod creates an active pay period for the given source
// spanning start to end.
func CreateTestPayPeriod(t *testing.T, db *gorm.DB, userID, sourceID string, start, end time.Time, expectedNet decimal.Decimal) *models.PayPeriod {
	t.Helper()

	period := &models.PayPeriod{
		IncomeSourceID: sourceID,
		UserID:         userID,
		StartDate:      start,
		EndDate:        end,
		Status:         models.PayPeriodStatusActive,
		ExpectedNet:    expectedNet,
		GeneratedAt:    time.Now().UTC(),
	}
	if err := db.Create(period).Error; err != nil {
		t.Fatalf("failed to create test pay period: %v", err)
	}
	return period
}

// CreateTestAllocation creates an unpaid allocation snapshotting the
// given item in the given period.
func CreateTestAllocation(t *testing.T, db *gorm.DB, periodID string, item *models.BudgetItem, expected decimal.Decimal, position int) *models.Allocation {
	t.Helper()

	alloc := &models.Allocation{
		PayPeriodID:    periodID,
		BudgetItemID:   item.ID,
		ItemName:       item.Name,
		ItemCategory:   item.Category,
		CalcType:       item.CalcType,
		ExpectedAmount: expected,
		Status:         models.AllocationStatusUnpaid,
		Position:       position,
	}
	if err := db.Create(alloc).Error; err != nil {
		t.Fatalf("failed to create test allocation: %v", err)
	}
	return alloc
}
