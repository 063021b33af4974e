package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"divvy/internal/models"
	"divvy/internal/pagination"
	"divvy/internal/testutil"
)

func TestCreateIncomeSource(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewIncomeSourceService(db)
		user := testutil.CreateTestUser(t, db)

		start := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
		source, err := svc.CreateIncomeSource(user.ID, "Day Job",
			decimal.NewFromInt(5000), decimal.NewFromInt(4000), models.CadenceBiweekly, start)
		testutil.AssertNoError(t, err)

		if source.ID == "" {
			t.Fatal("expected non-empty source ID")
		}
		if source.Cadence != models.CadenceBiweekly {
			t.Errorf("expected biweekly cadence, got %s", source.Cadence)
		}
		// Start date is normalized to midnight UTC.
		want := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
		if !source.StartDate.Equal(want) {
			t.Errorf("expected start date %v, got %v", want, source.StartDate)
		}
	})

	t.Run("rounds_amounts_to_cents", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewIncomeSourceService(db)
		user := testutil.CreateTestUser(t, db)

		gross, _ := decimal.NewFromString("5000.005")
		net, _ := decimal.NewFromString("4000.125")
		source, err := svc.CreateIncomeSource(user.ID, "Rounded", gross, net, models.CadenceMonthly, time.Now())
		testutil.AssertNoError(t, err)

		// Round-half-to-even: .005 -> .00, .125 -> .12.
		if source.GrossAmount.String() != "5000" {
			t.Errorf("expected gross 5000, got %s", source.GrossAmount)
		}
		if source.NetAmount.String() != "4000.12" {
			t.Errorf("expected net 4000.12, got %s", source.NetAmount)
		}
	})

	t.Run("invalid_cadence", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewIncomeSourceService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateIncomeSource(user.ID, "Bad",
			decimal.NewFromInt(5000), decimal.NewFromInt(4000), "fortnightly", time.Now())
		testutil.AssertAppError(t, err, "INVALID_CADENCE")
	})

	t.Run("net_exceeds_gross", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewIncomeSourceService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateIncomeSource(user.ID, "Upside Down",
			decimal.NewFromInt(4000), decimal.NewFromInt(5000), models.CadenceMonthly, time.Now())
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("negative_amount", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewIncomeSourceService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateIncomeSource(user.ID, "Negative",
			decimal.NewFromInt(-5000), decimal.NewFromInt(-4000), models.CadenceMonthly, time.Now())
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestGetUserIncomeSources(t *testing.T) {
	t.Run("returns_user_sources_only", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewIncomeSourceService(db)
		user1 := testutil.CreateTestUser(t, db)
		user2 := testutil.CreateTestUser(t, db)

		testutil.CreateTestIncomeSource(t, db, user1.ID)
		testutil.CreateTestIncomeSource(t, db, user1.ID)
		testutil.CreateTestIncomeSource(t, db, user2.ID)

		page := pagination.PageRequest{Page: 1, PageSize: 20}
		result, err := svc.GetUserIncomeSources(user1.ID, page, nil)
		testutil.AssertNoError(t, err)

		if result.TotalItems != 2 {
			t.Errorf("expected 2 sources, got %d", result.TotalItems)
		}
	})

	t.Run("filter_by_is_active", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewIncomeSourceService(db)
		user := testutil.CreateTestUser(t, db)

		testutil.CreateTestIncomeSource(t, db, user.ID)
		inactive := testutil.CreateTestIncomeSource(t, db, user.ID)
		if err := db.Model(inactive).Update("is_active", false).Error; err != nil {
			t.Fatalf("failed to deactivate source: %v", err)
		}

		active := true
		page := pagination.PageRequest{Page: 1, PageSize: 20}
		result, err := svc.GetUserIncomeSources(user.ID, page, &active)
		testutil.AssertNoError(t, err)

		if result.TotalItems != 1 {
			t.Errorf("expected 1 active source, got %d", result.TotalItems)
		}
	})
}

func TestUpdateIncomeSource(t *testing.T) {
	t.Run("updates_fields_before_any_period_exists", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewIncomeSourceService(db)
		user := testutil.CreateTestUser(t, db)
		source := testutil.CreateTestIncomeSource(t, db, user.ID)

		newNet := decimal.NewFromInt(4500)
		newCadence := models.CadenceWeekly
		updated, err := svc.UpdateIncomeSource(user.ID, source.ID, UpdateIncomeSourceParams{
			Name:      "Renamed",
			NetAmount: &newNet,
			Cadence:   &newCadence,
		})
		testutil.AssertNoError(t, err)

		if updated.Name != "Renamed" {
			t.Errorf("expected name Renamed, got %s", updated.Name)
		}
		if !updated.NetAmount.Equal(newNet) {
			t.Errorf("expected net 4500, got %s", updated.NetAmount)
		}
	})

	t.Run("financial_fields_frozen_once_periods_exist", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewIncomeSourceService(db)
		user := testutil.CreateTestUser(t, db)
		source := testutil.CreateTestIncomeSource(t, db, user.ID)

		start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
		testutil.CreateTestPayPeriod(t, db, user.ID, source.ID, start, end, source.NetAmount)

		newNet := decimal.NewFromInt(9999)
		_, err := svc.UpdateIncomeSource(user.ID, source.ID, UpdateIncomeSourceParams{NetAmount: &newNet})
		testutil.AssertAppError(t, err, "SOURCE_IMMUTABLE")
	})

	t.Run("rename_still_allowed_once_periods_exist", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewIncomeSourceService(db)
		user := testutil.CreateTestUser(t, db)
		source := testutil.CreateTestIncomeSource(t, db, user.ID)

		start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
		testutil.CreateTestPayPeriod(t, db, user.ID, source.ID, start, end, source.NetAmount)

		updated, err := svc.UpdateIncomeSource(user.ID, source.ID, UpdateIncomeSourceParams{Name: "Still Editable"})
		testutil.AssertNoError(t, err)
		if updated.Name != "Still Editable" {
			t.Errorf("expected name Still Editable, got %s", updated.Name)
		}
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewIncomeSourceService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.UpdateIncomeSource(user.ID, "00000000-0000-0000-0000-000000000000", UpdateIncomeSourceParams{Name: "X"})
		testutil.AssertAppError(t, err, "INCOME_SOURCE_NOT_FOUND")
	})
}

func TestDeactivateIncomeSource(t *testing.T) {
	t.Run("deactivates_and_preserves_periods", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewIncomeSourceService(db)
		user := testutil.CreateTestUser(t, db)
		source := testutil.CreateTestIncomeSource(t, db, user.ID)

		start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
		period := testutil.CreateTestPayPeriod(t, db, user.ID, source.ID, start, end, source.NetAmount)

		testutil.AssertNoError(t, svc.DeactivateIncomeSource(user.ID, source.ID))

		reloaded, err := svc.GetIncomeSourceByID(user.ID, source.ID)
		testutil.AssertNoError(t, err)
		if reloaded.IsActive {
			t.Error("expected source to be inactive")
		}

		var kept models.PayPeriod
		if err := db.First(&kept, "id = ?", period.ID).Error; err != nil {
			t.Errorf("expected pay period to survive deactivation: %v", err)
		}
	})

	t.Run("wrong_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewIncomeSourceService(db)
		user1 := testutil.CreateTestUser(t, db)
		user2 := testutil.CreateTestUser(t, db)
		source := testutil.CreateTestIncomeSource(t, db, user1.ID)

		err := svc.DeactivateIncomeSource(user2.ID, source.ID)
		testutil.AssertAppError(t, err, "INCOME_SOURCE_NOT_FOUND")
	})
}
