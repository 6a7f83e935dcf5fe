// Package reconcile merges the listing of an external source into the store.
//
// A sync owns a subset of rows (for network devices: every row not entered by hand).
// Each run replaces that subset wholesale with what the source reports, inside one
// transaction, so a failed discovery or a failed write leaves the store untouched.
//
// # Architecture
//
// 1. Adapter: model-specific logic. It loads the owned rows, queries the source,
//    extracts keys, compares fields and performs the replacement.
//
// 2. Engine: builds the union of keys, detects added, removed and changed entities
//    and produces a ReconcilePlan with a summary.
//
// 3. Apply: executes the replacement plus the optional OnApplied hook in a single
//    transaction. Runs of the same job are serialized through a per-key lock.
//
// # Usage Example
//
//	spec := &reconcile.Spec{
//	    Adapter:   network.NewAdapter(client, user, pass, store, logger),
//	    OnApplied: creds.Hook(creds),
//	}
//
//	// Preview, then apply exactly what was previewed
//	plan, err := reconcile.ReconcileWithPlan(ctx, spec, db)
//	written, err := reconcile.ApplyPlanLocked(ctx, spec, db, plan, reconcile.ReconcileOptions{Confirmed: true})
//
//	// Sync
//	plan, written, err := reconcile.ReconcileAndApply(ctx, spec, db, reconcile.ReconcileOptions{Confirmed: true})
package reconcile
