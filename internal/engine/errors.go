// Package engine implements the budget allocation and pay period core:
// cadence boundary arithmetic, dependency-ordered evaluation of budget
// items, allocation amount computation, and due-period generation over
// a collaborator store. Everything except the store calls is pure and
// safe for concurrent use.
package engine

import (
	"fmt"

	"divvy/internal/models"
)

// InvalidCadenceError reports an unrecognized cadence value. This is a
// caller bug: cadences are validated at the API boundary.
type InvalidCadenceError struct {
	Cadence models.Cadence
}

func (e *InvalidCadenceError) Error() string {
	return fmt.Sprintf("invalid cadence %q", e.Cadence)
}

// InvalidCalcTypeError reports an unrecognized calc type on a budget item.
type InvalidCalcTypeError struct {
	ItemID   string
	CalcType models.CalcType
}

func (e *InvalidCalcTypeError) Error() string {
	return fmt.Sprintf("invalid calc type %q on budget item %s", e.CalcType, e.ItemID)
}

// CycleError reports a cycle in the budget item dependency graph,
// naming one item known to sit on the cycle.
type CycleError struct {
	ItemID   string
	ItemName string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("budget item dependency cycle involving %q (%s)", e.ItemName, e.ItemID)
}
