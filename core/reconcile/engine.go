package reconcile

import (
	"context"
	"fmt"
	"sort"

	"gorm.io/gorm"
)

// ReconcileWithPlan discovers the source, compares it with the store and returns a
// plan. It does NOT execute anything; use ApplyPlan for that.
func ReconcileWithPlan(ctx context.Context, spec *Spec, db *gorm.DB) (*ReconcilePlan, error) {
	discovered, err := spec.Adapter.Discover(ctx)
	if err != nil {
		return nil, err
	}

	storeIndex, err := spec.Adapter.LoadStoreIndex(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s index: %w", spec.Adapter.Name(), err)
	}

	items, sourceIndex := dedupe(discovered, spec.Adapter)
	results := buildResults(storeIndex, sourceIndex, spec.Adapter)

	return &ReconcilePlan{
		Results:    results,
		Actions:    buildActions(results),
		Summary:    summarize(results),
		Discovered: items,
	}, nil
}

// dedupe collapses items sharing a key. The first occurrence fixes the position,
// the last occurrence provides the value.
func dedupe(discovered []SourceItem, adapter Adapter) ([]SourceItem, map[string]SourceItem) {
	index := make(map[string]SourceItem, len(discovered))
	order := make([]string, 0, len(discovered))

	for _, item := range discovered {
		key := adapter.ExtractSourceKey(item)
		if _, seen := index[key]; !seen {
			order = append(order, key)
		}
		index[key] = item
	}

	items := make([]SourceItem, 0, len(order))
	for _, key := range order {
		items = append(items, index[key])
	}
	return items, index
}

// buildResults creates one result per key in the union of both sides, sorted by key.
func buildResults(storeIndex map[string]StoreItem, sourceIndex map[string]SourceItem, adapter Adapter) []ReconcileResult {
	union := make(map[string]struct{}, len(storeIndex)+len(sourceIndex))
	for key := range storeIndex {
		union[key] = struct{}{}
	}
	for key := range sourceIndex {
		union[key] = struct{}{}
	}

	results := make([]ReconcileResult, 0, len(union))
	for key := range union {
		results = append(results, buildResult(key, storeIndex, sourceIndex, adapter))
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].ID < results[j].ID
	})
	return results
}

// buildResult creates a ReconcileResult for a single key.
func buildResult(key string, storeIndex map[string]StoreItem, sourceIndex map[string]SourceItem, adapter Adapter) ReconcileResult {
	storeItem, storePresent := storeIndex[key]
	sourceItem, sourcePresent := sourceIndex[key]

	result := ReconcileResult{
		ID:            key,
		StorePresent:  storePresent,
		SourcePresent: sourcePresent,
		Mismatch:      []string{},
	}

	var s StoreItem
	var d SourceItem
	if storePresent {
		s = storeItem
	}
	if sourcePresent {
		d = sourceItem
	}
	result.Name = adapter.ResolveName(s, d)

	if storePresent && sourcePresent {
		result.Mismatch = adapter.CompareFields(storeItem, sourceItem)
	}
	return result
}
