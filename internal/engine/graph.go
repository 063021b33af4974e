package engine

import (
	"divvy/internal/models"
)

// ResolveOrder returns the budget items in dependency-respecting
// evaluation order: every item appears after everything it depends on.
// Among items with no ordering constraint between them, lower priority
// values come first, with the item id as the final tie-break, so
// repeated calls over the same item set always produce the same
// sequence. Returns a *CycleError if the dependency relation contains a
// cycle.
//
// Remaining-percent items with no explicit dependencies implicitly
// depend on every other item with strictly lower priority (they consume
// what is left after everything earlier has been allocated). Explicit
// dependencies override the implicit rule entirely. Dependency edges
// pointing at items outside the given set (e.g. deactivated items) are
// ignored.
func ResolveOrder(items []models.BudgetItem) ([]models.BudgetItem, error) {
	n := len(items)
	index := make(map[string]int, n)
	for i := range items {
		index[items[i].ID] = i
	}

	// deps[i] holds the indexes item i must be computed after.
	deps := make([][]int, n)
	for i := range items {
		explicit := items[i].DependsOnIDs()
		if items[i].CalcType == models.CalcTypeRemainingPercent && len(explicit) == 0 {
			for j := range items {
				if j != i && items[j].Priority < items[i].Priority {
					deps[i] = append(deps[i], j)
				}
			}
			continue
		}
		for _, depID := range explicit {
			// A self-reference stays in the graph: it is a one-node cycle.
			if j, ok := index[depID]; ok {
				deps[i] = append(deps[i], j)
			}
		}
	}

	// dependents is the forward adjacency: edges from a dependency to
	// the items waiting on it.
	dependents := make([][]int, n)
	indegree := make([]int, n)
	for i, ds := range deps {
		indegree[i] = len(ds)
		for _, j := range ds {
			dependents[j] = append(dependents[j], i)
		}
	}

	ready := make([]int, 0, n)
	for i := range items {
		if indegree[i] == 0 {
			ready = append(ready, i)
		}
	}

	ordered := make([]models.BudgetItem, 0, n)
	resolved := make([]bool, n)
	for len(ready) > 0 {
		// Pick the ready item with the lowest (priority, id).
		best := 0
		for k := 1; k < len(ready); k++ {
			a, b := items[ready[k]], items[ready[best]]
			if a.Priority < b.Priority || (a.Priority == b.Priority && a.ID < b.ID) {
				best = k
			}
		}
		i := ready[best]
		ready = append(ready[:best], ready[best+1:]...)

		resolved[i] = true
		ordered = append(ordered, items[i])
		for _, j := range dependents[i] {
			indegree[j]--
			if indegree[j] == 0 {
				ready = append(ready, j)
			}
		}
	}

	if len(ordered) < n {
		return nil, cycleError(items, deps, resolved)
	}
	return ordered, nil
}

// ValidateDependencies checks that the dependency relation over the
// given items is acyclic. Used at the mutation boundary so a
// depends_on edge that would create a cycle is rejected when written,
// not deferred to allocation time.
func ValidateDependencies(items []models.BudgetItem) error {
	_, err := ResolveOrder(items)
	return err
}

// cycleError walks the unresolved remainder of the graph to find one
// item that is provably on a cycle.
func cycleError(items []models.BudgetItem, deps [][]int, resolved []bool) *CycleError {
	start := -1
	for i := range items {
		if !resolved[i] {
			start = i
			break
		}
	}

	// Follow unresolved dependencies until a node repeats. Every
	// unresolved node has at least one unresolved dependency, so the
	// walk must eventually close a loop.
	seen := make(map[int]bool)
	cur := start
	for !seen[cur] {
		seen[cur] = true
		for _, j := range deps[cur] {
			if !resolved[j] {
				cur = j
				break
			}
		}
	}

	return &CycleError{ItemID: items[cur].ID, ItemName: items[cur].Name}
}
