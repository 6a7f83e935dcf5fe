package reconcile

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ApplyPlan replaces the owned rows with plan.Discovered and runs spec.OnApplied,
// all in one transaction. It returns the number of rows written.
// Requires opts.Confirmed=true and opts.DryRun=false to actually execute.
func ApplyPlan(ctx context.Context, spec *Spec, db *gorm.DB, plan *ReconcilePlan, opts ReconcileOptions) (int, error) {
	// Safety check: do not execute if not confirmed or dry-run
	if !opts.Confirmed || opts.DryRun {
		return 0, nil
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := spec.Adapter.Replace(ctx, tx, plan.Discovered); err != nil {
			return fmt.Errorf("failed to replace %s rows: %w", spec.Adapter.Name(), err)
		}
		if spec.OnApplied != nil {
			if err := spec.OnApplied(ctx, tx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(plan.Discovered), nil
}

// ReconcileAndApply plans and optionally applies a sync while holding the job lock,
// so overlapping runs of the same job execute one after the other.
// It returns the plan, the number of rows written and any error.
func ReconcileAndApply(ctx context.Context, spec *Spec, db *gorm.DB, opts ReconcileOptions) (*ReconcilePlan, int, error) {
	unlock, err := globalLocks.acquire(ctx, spec.Key())
	if err != nil {
		return nil, 0, err
	}
	defer unlock()

	plan, err := ReconcileWithPlan(ctx, spec, db)
	if err != nil {
		return nil, 0, err
	}

	written, err := ApplyPlan(ctx, spec, db, plan, opts)
	return plan, written, err
}

// ApplyPlanLocked applies a plan computed earlier (typically shown to an operator
// first) while holding the job lock. No new discovery takes place.
func ApplyPlanLocked(ctx context.Context, spec *Spec, db *gorm.DB, plan *ReconcilePlan, opts ReconcileOptions) (int, error) {
	unlock, err := globalLocks.acquire(ctx, spec.Key())
	if err != nil {
		return 0, err
	}
	defer unlock()

	return ApplyPlan(ctx, spec, db, plan, opts)
}

// buildActions derives the actions a replacement implies, in result order.
func buildActions(results []ReconcileResult) []Action {
	var actions []Action
	for _, result := range results {
		switch {
		case result.SourcePresent && !result.StorePresent:
			actions = append(actions, Action{Type: ActionInsert, Key: result.ID, Reason: "new at source"})
		case !result.SourcePresent && result.StorePresent:
			actions = append(actions, Action{Type: ActionDelete, Key: result.ID, Reason: "no longer reported"})
		case len(result.Mismatch) > 0:
			actions = append(actions, Action{
				Type:   ActionUpdate,
				Key:    result.ID,
				Reason: "mismatch: " + strings.Join(result.Mismatch, "; "),
			})
		}
	}
	return actions
}

// summarize counts results per outcome.
func summarize(results []ReconcileResult) PlanSummary {
	summary := PlanSummary{TotalItems: len(results)}
	for _, result := range results {
		switch {
		case result.SourcePresent && !result.StorePresent:
			summary.Added++
		case !result.SourcePresent && result.StorePresent:
			summary.Removed++
		case len(result.Mismatch) > 0:
			summary.Updated++
		default:
			summary.Unchanged++
		}
	}
	return summary
}
