package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"divvy/internal/models"
	"divvy/internal/pagination"
	"divvy/internal/testutil"
)

func TestGenerateDue(t *testing.T) {
	t.Run("materializes_periods_with_allocations", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPayPeriodService(db)
		user := testutil.CreateTestUser(t, db)

		start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		source := testutil.CreateTestIncomeSourceWith(t, db, user.ID, models.CadenceMonthly,
			decimal.NewFromInt(5000), decimal.NewFromInt(4000), start)
		testutil.CreateTestBudgetItem(t, db, user.ID, models.CalcTypeFixed, decimal.NewFromInt(1500), 1)
		testutil.CreateTestBudgetItem(t, db, user.ID, models.CalcTypeNetPercent, decimal.NewFromInt(10), 2)

		today := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
		results, err := svc.GenerateDue(user.ID, today)
		testutil.AssertNoError(t, err)

		if len(results) != 1 {
			t.Fatalf("expected 1 source result, got %d", len(results))
		}
		if results[0].PeriodsCreated != 1 {
			t.Errorf("expected 1 period created, got %d", results[0].PeriodsCreated)
		}
		if results[0].ErrorCode != "" {
			t.Errorf("unexpected error code %s", results[0].ErrorCode)
		}

		var periods []models.PayPeriod
		testutil.AssertNoError(t, db.Where("income_source_id = ?", source.ID).Find(&periods).Error)
		if len(periods) != 1 {
			t.Fatalf("expected 1 persisted period, got %d", len(periods))
		}
		if periods[0].Status != models.PayPeriodStatusActive {
			t.Errorf("expected active status, got %s", periods[0].Status)
		}
		if !periods[0].ExpectedNet.Equal(decimal.NewFromInt(4000)) {
			t.Errorf("expected net snapshot 4000, got %s", periods[0].ExpectedNet)
		}

		var allocations []models.Allocation
		testutil.AssertNoError(t, db.Where("pay_period_id = ?", periods[0].ID).Order("position").Find(&allocations).Error)
		if len(allocations) != 2 {
			t.Fatalf("expected 2 allocations, got %d", len(allocations))
		}
		if !allocations[0].ExpectedAmount.Equal(decimal.NewFromInt(1500)) {
			t.Errorf("expected first allocation 1500, got %s", allocations[0].ExpectedAmount)
		}
		// 10% of net 4000.
		if !allocations[1].ExpectedAmount.Equal(decimal.NewFromInt(400)) {
			t.Errorf("expected second allocation 400, got %s", allocations[1].ExpectedAmount)
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPayPeriodService(db)
		user := testutil.CreateTestUser(t, db)

		start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		source := testutil.CreateTestIncomeSourceWith(t, db, user.ID, models.CadenceMonthly,
			decimal.NewFromInt(5000), decimal.NewFromInt(4000), start)

		today := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
		_, err := svc.GenerateDue(user.ID, today)
		testutil.AssertNoError(t, err)
		results, err := svc.GenerateDue(user.ID, today)
		testutil.AssertNoError(t, err)

		if results[0].PeriodsCreated != 0 {
			t.Errorf("expected second run to create nothing, got %d", results[0].PeriodsCreated)
		}

		var count int64
		testutil.AssertNoError(t, db.Model(&models.PayPeriod{}).Where("income_source_id = ?", source.ID).Count(&count).Error)
		if count != 1 {
			t.Errorf("expected 1 period after repeated runs, got %d", count)
		}
	})

	t.Run("backfills_contiguous_periods", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPayPeriodService(db)
		user := testutil.CreateTestUser(t, db)

		start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		source := testutil.CreateTestIncomeSourceWith(t, db, user.ID, models.CadenceMonthly,
			decimal.NewFromInt(5000), decimal.NewFromInt(4000), start)

		today := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
		results, err := svc.GenerateDue(user.ID, today)
		testutil.AssertNoError(t, err)
		if results[0].PeriodsCreated != 3 {
			t.Fatalf("expected 3 periods created, got %d", results[0].PeriodsCreated)
		}

		var periods []models.PayPeriod
		testutil.AssertNoError(t, db.Where("income_source_id = ?", source.ID).Order("start_date").Find(&periods).Error)
		if len(periods) != 3 {
			t.Fatalf("expected 3 periods, got %d", len(periods))
		}
		// January and February have passed; March is current.
		if periods[0].Status != models.PayPeriodStatusCompleted || periods[1].Status != models.PayPeriodStatusCompleted {
			t.Errorf("expected elapsed periods completed, got %s and %s", periods[0].Status, periods[1].Status)
		}
		if periods[2].Status != models.PayPeriodStatusActive {
			t.Errorf("expected current period active, got %s", periods[2].Status)
		}
		// Each period starts the day after its predecessor ends.
		for i := 1; i < len(periods); i++ {
			wantStart := periods[i-1].EndDate.AddDate(0, 0, 1)
			if !periods[i].StartDate.Equal(wantStart) {
				t.Errorf("period %d: expected start %v, got %v", i, wantStart, periods[i].StartDate)
			}
		}
	})

	t.Run("completes_elapsed_periods", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPayPeriodService(db)
		user := testutil.CreateTestUser(t, db)
		source := testutil.CreateTestIncomeSource(t, db, user.ID)

		start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
		period := testutil.CreateTestPayPeriod(t, db, user.ID, source.ID, start, end, source.NetAmount)

		today := time.Date(2025, 2, 20, 0, 0, 0, 0, time.UTC)
		_, err := svc.GenerateDue(user.ID, today)
		testutil.AssertNoError(t, err)

		var reloaded models.PayPeriod
		testutil.AssertNoError(t, db.First(&reloaded, "id = ?", period.ID).Error)
		if reloaded.Status != models.PayPeriodStatusCompleted {
			t.Errorf("expected elapsed period completed, got %s", reloaded.Status)
		}
	})

	t.Run("cycle_skips_source_without_failing_call", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPayPeriodService(db)
		user := testutil.CreateTestUser(t, db)

		start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		source := testutil.CreateTestIncomeSourceWith(t, db, user.ID, models.CadenceMonthly,
			decimal.NewFromInt(5000), decimal.NewFromInt(4000), start)

		// Wire a two-item cycle directly, bypassing write-time validation.
		a := testutil.CreateTestBudgetItem(t, db, user.ID, models.CalcTypeFixed, decimal.NewFromInt(100), 1)
		b := testutil.CreateTestBudgetItem(t, db, user.ID, models.CalcTypeFixed, decimal.NewFromInt(100), 2)
		testutil.AssertNoError(t, db.Exec("INSERT INTO budget_item_dependencies (item_id, depends_on_id) VALUES (?, ?), (?, ?)", a.ID, b.ID, b.ID, a.ID).Error)

		today := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
		results, err := svc.GenerateDue(user.ID, today)
		testutil.AssertNoError(t, err)

		if results[0].ErrorCode != "DEPENDENCY_CYCLE" {
			t.Errorf("expected DEPENDENCY_CYCLE, got %q", results[0].ErrorCode)
		}
		if results[0].PeriodsCreated != 0 {
			t.Errorf("expected no periods created, got %d", results[0].PeriodsCreated)
		}

		var count int64
		testutil.AssertNoError(t, db.Model(&models.PayPeriod{}).Where("income_source_id = ?", source.ID).Count(&count).Error)
		if count != 0 {
			t.Errorf("expected nothing persisted for cycled source, got %d periods", count)
		}
	})

	t.Run("reports_over_allocation", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPayPeriodService(db)
		user := testutil.CreateTestUser(t, db)

		start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		testutil.CreateTestIncomeSourceWith(t, db, user.ID, models.CadenceMonthly,
			decimal.NewFromInt(5000), decimal.NewFromInt(4000), start)
		// Fixed 5000 against net 4000 leaves the pool negative.
		testutil.CreateTestBudgetItem(t, db, user.ID, models.CalcTypeFixed, decimal.NewFromInt(5000), 1)

		today := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
		results, err := svc.GenerateDue(user.ID, today)
		testutil.AssertNoError(t, err)

		if !results[0].OverAllocated {
			t.Error("expected over-allocation to be reported")
		}
		if results[0].PeriodsCreated != 1 {
			t.Errorf("expected the period to still be created, got %d", results[0].PeriodsCreated)
		}
	})

	t.Run("inactive_sources_skipped", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPayPeriodService(db)
		user := testutil.CreateTestUser(t, db)
		source := testutil.CreateTestIncomeSource(t, db, user.ID)
		if err := db.Model(source).Update("is_active", false).Error; err != nil {
			t.Fatalf("failed to deactivate source: %v", err)
		}

		results, err := svc.GenerateDue(user.ID, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
		testutil.AssertNoError(t, err)
		if len(results) != 0 {
			t.Errorf("expected no results for inactive sources, got %d", len(results))
		}
	})
}

func TestGetUserPayPeriods(t *testing.T) {
	t.Run("newest_first_with_filters", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPayPeriodService(db)
		user := testutil.CreateTestUser(t, db)
		source := testutil.CreateTestIncomeSource(t, db, user.ID)

		jan := testutil.CreateTestPayPeriod(t, db, user.ID, source.ID,
			time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC), source.NetAmount)
		feb := testutil.CreateTestPayPeriod(t, db, user.ID, source.ID,
			time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC), source.NetAmount)
		testutil.AssertNoError(t, db.Model(jan).Update("status", models.PayPeriodStatusCompleted).Error)

		page := pagination.PageRequest{Page: 1, PageSize: 20}
		result, err := svc.GetUserPayPeriods(user.ID, page, nil, nil)
		testutil.AssertNoError(t, err)
		if result.TotalItems != 2 {
			t.Fatalf("expected 2 periods, got %d", result.TotalItems)
		}
		if result.Data[0].ID != feb.ID {
			t.Error("expected newest period first")
		}

		completed := models.PayPeriodStatusCompleted
		result, err = svc.GetUserPayPeriods(user.ID, page, &completed, nil)
		testutil.AssertNoError(t, err)
		if result.TotalItems != 1 || result.Data[0].ID != jan.ID {
			t.Errorf("expected only the completed January period")
		}
	})
}

func TestGetPayPeriodByID(t *testing.T) {
	t.Run("returns_allocations_in_evaluation_order", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPayPeriodService(db)
		user := testutil.CreateTestUser(t, db)
		source := testutil.CreateTestIncomeSource(t, db, user.ID)

		period := testutil.CreateTestPayPeriod(t, db, user.ID, source.ID,
			time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
			decimal.NewFromInt(4000))
		first := testutil.CreateTestBudgetItem(t, db, user.ID, models.CalcTypeFixed, decimal.NewFromInt(1500), 1)
		second := testutil.CreateTestBudgetItem(t, db, user.ID, models.CalcTypeFixed, decimal.NewFromInt(500), 2)
		// Create in reverse position order to prove ordering comes from position.
		testutil.CreateTestAllocation(t, db, period.ID, second, decimal.NewFromInt(500), 1)
		testutil.CreateTestAllocation(t, db, period.ID, first, decimal.NewFromInt(1500), 0)

		detail, err := svc.GetPayPeriodByID(user.ID, period.ID)
		testutil.AssertNoError(t, err)

		if len(detail.PayPeriod.Allocations) != 2 {
			t.Fatalf("expected 2 allocations, got %d", len(detail.PayPeriod.Allocations))
		}
		if detail.PayPeriod.Allocations[0].Position != 0 {
			t.Error("expected allocations ordered by position")
		}
		if !detail.TotalExpected.Equal(decimal.NewFromInt(2000)) {
			t.Errorf("expected total 2000, got %s", detail.TotalExpected)
		}
		if !detail.Remaining.Equal(decimal.NewFromInt(2000)) {
			t.Errorf("expected remaining 2000, got %s", detail.Remaining)
		}
		if detail.OverAllocated {
			t.Error("expected no over-allocation")
		}
	})

	t.Run("wrong_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPayPeriodService(db)
		user1 := testutil.CreateTestUser(t, db)
		user2 := testutil.CreateTestUser(t, db)
		source := testutil.CreateTestIncomeSource(t, db, user1.ID)
		period := testutil.CreateTestPayPeriod(t, db, user1.ID, source.ID,
			time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC), source.NetAmount)

		_, err := svc.GetPayPeriodByID(user2.ID, period.ID)
		testutil.AssertAppError(t, err, "PAY_PERIOD_NOT_FOUND")
	})
}
