package engine

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"divvy/internal/models"
)

// GeneratedPeriod is one materialized pay period together with its
// allocations and the remaining-pool state computed for it.
type GeneratedPeriod struct {
	Period        models.PayPeriod
	Allocations   []models.Allocation
	Remaining     decimal.Decimal
	OverAllocated bool
}

// Generator materializes due pay periods for income sources. Its pure
// steps are stateless; the only mutable state is the per-source lock
// table, which enforces that GenerateDue never runs concurrently with
// itself for the same source (the read-then-backfill sequence is not
// safe under overlapping writers). Different sources may generate in
// parallel with no coordination.
type Generator struct {
	store Store

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewGenerator creates a Generator over the given store.
func NewGenerator(store Store) *Generator {
	return &Generator{
		store: store,
		locks: make(map[string]*sync.Mutex),
	}
}

// sourceLock returns the mutex for one income source, creating it on
// first use.
func (g *Generator) sourceLock(incomeSourceID string) *sync.Mutex {
	g.mu.Lock()
	defer g.mu.Unlock()
	lock, ok := g.locks[incomeSourceID]
	if !ok {
		lock = &sync.Mutex{}
		g.locks[incomeSourceID] = lock
	}
	return lock
}

// GenerateDue materializes every pay period for the source whose end
// date has passed without one existing, up to and including the period
// covering today. Gaps are backfilled: if the generator has not run for
// several cadence intervals, every missed period is created in
// chronological order so the sequence stays contiguous. Inactive
// sources are a no-op.
//
// Allocations are computed from the source's gross/net at generation
// time over the user's active budget items. A dependency cycle fails
// the whole call before anything is persisted. Each period is persisted
// atomically with its allocations; on a store failure the periods
// already persisted remain (re-invocation is idempotent because the
// backfill always restarts from the last persisted period) and the
// error is returned for the caller to retry.
func (g *Generator) GenerateDue(source *models.IncomeSource, today time.Time) ([]GeneratedPeriod, error) {
	if !source.IsActive {
		return nil, nil
	}

	lock := g.sourceLock(source.ID)
	lock.Lock()
	defer lock.Unlock()

	now := DateOnly(today)

	last, err := g.store.GetLatestPayPeriod(source.ID)
	if err != nil {
		return nil, err
	}

	var lastEnd *time.Time
	if last != nil {
		if !last.EndDate.Before(now) {
			// Current period already covers today.
			return nil, nil
		}
		end := last.EndDate
		lastEnd = &end
	}

	items, err := g.store.GetActiveBudgetItems(source.UserID)
	if err != nil {
		return nil, err
	}
	ordered, err := ResolveOrder(items)
	if err != nil {
		return nil, err
	}

	var generated []GeneratedPeriod
	for lastEnd == nil || lastEnd.Before(now) {
		start, end, err := NextBoundary(source.Cadence, source.StartDate, lastEnd)
		if err != nil {
			return generated, err
		}

		result, err := ComputeAllocations(ordered, source.GrossAmount, source.NetAmount)
		if err != nil {
			return generated, err
		}

		status := models.PayPeriodStatusActive
		if end.Before(now) {
			// Backfilled period that already ended.
			status = models.PayPeriodStatusCompleted
		}

		period := models.PayPeriod{
			IncomeSourceID: source.ID,
			UserID:         source.UserID,
			StartDate:      start,
			EndDate:        end,
			Status:         status,
			ExpectedNet:    source.NetAmount,
			GeneratedAt:    today,
		}

		allocations := make([]models.Allocation, 0, len(result.Allocations))
		for pos, computed := range result.Allocations {
			allocations = append(allocations, models.Allocation{
				BudgetItemID:   computed.Item.ID,
				ItemName:       computed.Item.Name,
				ItemCategory:   computed.Item.Category,
				CalcType:       computed.Item.CalcType,
				ExpectedAmount: computed.Amount,
				Status:         models.AllocationStatusUnpaid,
				Position:       pos,
			})
		}

		if err := g.store.CreatePayPeriodWithAllocations(&period, allocations); err != nil {
			return generated, err
		}

		generated = append(generated, GeneratedPeriod{
			Period:        period,
			Allocations:   allocations,
			Remaining:     result.Remaining,
			OverAllocated: result.OverAllocated,
		})
		endCopy := end
		lastEnd = &endCopy
	}

	return generated, nil
}
