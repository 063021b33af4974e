package engine

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"divvy/internal/models"
)

func item(id, name string, priority int, calcType models.CalcType, dependsOn ...string) models.BudgetItem {
	deps := make([]models.BudgetItem, 0, len(dependsOn))
	for _, depID := range dependsOn {
		deps = append(deps, models.BudgetItem{Base: models.Base{ID: depID}})
	}
	return models.BudgetItem{
		Base:      models.Base{ID: id},
		Name:      name,
		CalcType:  calcType,
		Value:     decimal.NewFromInt(10),
		Priority:  priority,
		IsActive:  true,
		DependsOn: deps,
	}
}

func orderOf(t *testing.T, items []models.BudgetItem) []string {
	t.Helper()
	ordered, err := ResolveOrder(items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ids := make([]string, 0, len(ordered))
	for _, it := range ordered {
		ids = append(ids, it.ID)
	}
	return ids
}

func assertOrder(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected order %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
}

func TestResolveOrder(t *testing.T) {
	t.Run("dependency_precedes_dependent", func(t *testing.T) {
		items := []models.BudgetItem{
			item("a", "rent", 0, models.CalcTypeFixed, "b"),
			item("b", "tithe", 5, models.CalcTypeGrossPercent),
		}
		assertOrder(t, orderOf(t, items), []string{"b", "a"})
	})

	t.Run("priority_orders_unconstrained_items", func(t *testing.T) {
		items := []models.BudgetItem{
			item("c", "fun", 3, models.CalcTypeFixed),
			item("a", "rent", 1, models.CalcTypeFixed),
			item("b", "food", 2, models.CalcTypeFixed),
		}
		assertOrder(t, orderOf(t, items), []string{"a", "b", "c"})
	})

	t.Run("id_breaks_priority_ties", func(t *testing.T) {
		items := []models.BudgetItem{
			item("z", "second", 1, models.CalcTypeFixed),
			item("a", "first", 1, models.CalcTypeFixed),
		}
		assertOrder(t, orderOf(t, items), []string{"a", "z"})
	})

	t.Run("deterministic_across_repeated_calls", func(t *testing.T) {
		items := []models.BudgetItem{
			item("d", "savings", 2, models.CalcTypeNetPercent, "a"),
			item("a", "rent", 0, models.CalcTypeFixed),
			item("c", "debt", 1, models.CalcTypeFixed, "a"),
			item("b", "giving", 1, models.CalcTypeGrossPercent),
		}
		first := orderOf(t, items)
		for i := 0; i < 10; i++ {
			assertOrder(t, orderOf(t, items), first)
		}
	})

	t.Run("remaining_percent_waits_for_lower_priorities", func(t *testing.T) {
		items := []models.BudgetItem{
			item("r", "leftover", 1, models.CalcTypeRemainingPercent),
			item("a", "rent", 0, models.CalcTypeFixed),
			item("b", "food", 0, models.CalcTypeFixed),
			// Higher priority than the remaining item: no implicit edge.
			item("z", "extra", 2, models.CalcTypeFixed),
		}
		assertOrder(t, orderOf(t, items), []string{"a", "b", "r", "z"})
	})

	t.Run("explicit_deps_override_implicit_remaining_rule", func(t *testing.T) {
		// The remaining item explicitly depends only on "a", so it does
		// not wait for "b" despite b's lower priority.
		items := []models.BudgetItem{
			item("r", "leftover", 9, models.CalcTypeRemainingPercent, "a"),
			item("b", "food", 5, models.CalcTypeFixed),
			item("a", "rent", 0, models.CalcTypeFixed),
		}
		assertOrder(t, orderOf(t, items), []string{"a", "b", "r"})
	})

	t.Run("ignores_edges_to_items_outside_the_set", func(t *testing.T) {
		items := []models.BudgetItem{
			item("a", "rent", 0, models.CalcTypeFixed, "deactivated"),
			item("b", "food", 1, models.CalcTypeFixed),
		}
		assertOrder(t, orderOf(t, items), []string{"a", "b"})
	})

	t.Run("empty_set", func(t *testing.T) {
		ordered, err := ResolveOrder(nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(ordered) != 0 {
			t.Fatalf("expected empty order, got %d items", len(ordered))
		}
	})
}

func TestResolveOrderCycles(t *testing.T) {
	t.Run("two_item_cycle", func(t *testing.T) {
		items := []models.BudgetItem{
			item("a", "rent", 0, models.CalcTypeFixed, "b"),
			item("b", "food", 1, models.CalcTypeFixed, "a"),
		}
		_, err := ResolveOrder(items)
		var cycle *CycleError
		if !errors.As(err, &cycle) {
			t.Fatalf("expected *CycleError, got %T: %v", err, err)
		}
		if cycle.ItemID != "a" && cycle.ItemID != "b" {
			t.Errorf("cycle error names item %q, expected one of the cycle members", cycle.ItemID)
		}
	})

	t.Run("self_dependency", func(t *testing.T) {
		items := []models.BudgetItem{
			item("a", "rent", 0, models.CalcTypeFixed, "a"),
		}
		var cycle *CycleError
		if !errors.As(ValidateDependencies(items), &cycle) {
			t.Fatal("expected *CycleError for self-dependency")
		}
		if cycle.ItemID != "a" {
			t.Errorf("expected cycle on item a, got %q", cycle.ItemID)
		}
	})

	t.Run("cycle_behind_valid_prefix", func(t *testing.T) {
		items := []models.BudgetItem{
			item("a", "rent", 0, models.CalcTypeFixed),
			item("b", "food", 1, models.CalcTypeFixed, "c"),
			item("c", "fun", 2, models.CalcTypeFixed, "d"),
			item("d", "misc", 3, models.CalcTypeFixed, "b"),
		}
		var cycle *CycleError
		if !errors.As(ValidateDependencies(items), &cycle) {
			t.Fatal("expected *CycleError")
		}
		if cycle.ItemID == "a" {
			t.Error("cycle error must name an item on the cycle, not the resolvable prefix")
		}
	})

	t.Run("acyclic_set_validates", func(t *testing.T) {
		items := []models.BudgetItem{
			item("a", "rent", 0, models.CalcTypeFixed),
			item("b", "food", 1, models.CalcTypeFixed, "a"),
		}
		if err := ValidateDependencies(items); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}
