package engine

import (
	"github.com/shopspring/decimal"

	"divvy/internal/models"
)

var hundred = decimal.NewFromInt(100)

// ComputedAllocation is one item's share of a pay period's income, in
// evaluation order.
type ComputedAllocation struct {
	Item   models.BudgetItem
	Amount decimal.Decimal
}

// Result carries the computed allocations plus the state of the
// remaining pool. A negative remainder is a valid, reportable outcome
// (the budget is over-allocated), not an error: under-funding is
// meaningful financial information and the full breakdown is still
// returned so it can be surfaced to the user.
type Result struct {
	Allocations   []ComputedAllocation
	Remaining     decimal.Decimal
	OverAllocated bool
}

// ComputeAllocations computes each item's allocated amount in the given
// (already dependency-resolved) order. The remaining pool is tracked
// against net income, since gross is only a computation base, not
// spendable cash. Amounts are rounded to two decimal places with
// round-half-to-even so rounding bias does not accumulate across items;
// the sub-cent drift is not redistributed.
func ComputeAllocations(ordered []models.BudgetItem, gross, net decimal.Decimal) (Result, error) {
	remaining := net
	allocations := make([]ComputedAllocation, 0, len(ordered))

	for _, item := range ordered {
		var amount decimal.Decimal
		switch item.CalcType {
		case models.CalcTypeFixed:
			amount = item.Value
		case models.CalcTypeGrossPercent:
			amount = gross.Mul(item.Value).Div(hundred)
		case models.CalcTypeNetPercent:
			amount = net.Mul(item.Value).Div(hundred)
		case models.CalcTypeRemainingPercent:
			amount = remaining.Mul(item.Value).Div(hundred)
		default:
			return Result{}, &InvalidCalcTypeError{ItemID: item.ID, CalcType: item.CalcType}
		}

		amount = amount.RoundBank(2)
		remaining = remaining.Sub(amount)
		allocations = append(allocations, ComputedAllocation{Item: item, Amount: amount})
	}

	return Result{
		Allocations:   allocations,
		Remaining:     remaining,
		OverAllocated: remaining.IsNegative(),
	}, nil
}
