package reconcile

import (
	"context"

	"gorm.io/gorm"
)

// ReconcileResult represents the reconciliation output for a single entity.
type ReconcileResult struct {
	// ID is the unique identifier for the entity.
	ID string `json:"id"`

	// Name is the display name of the entity.
	Name string `json:"name"`

	// StorePresent indicates whether the entity currently exists in the store.
	StorePresent bool `json:"store_present"`

	// SourcePresent indicates whether the external source reported the entity.
	SourcePresent bool `json:"source_present"`

	// Mismatch contains descriptions of field differences, e.g. "ip: source=10.0.0.2 store=10.0.0.1".
	Mismatch []string `json:"mismatch"`
}

// Spec defines the configuration for a reconciliation operation.
type Spec struct {
	// Adapter provides model-specific reconciliation logic.
	Adapter Adapter

	// LockKey identifies the job for serialization. Defaults to the adapter name.
	LockKey string

	// OnApplied runs inside the apply transaction after the replacement succeeded.
	// An error rolls the whole sync back.
	OnApplied func(ctx context.Context, tx *gorm.DB) error
}

// Key returns the serialization key of the job.
func (s *Spec) Key() string {
	if s.LockKey != "" {
		return s.LockKey
	}
	return s.Adapter.Name()
}

// StoreItem represents a row currently owned by the sync.
type StoreItem any

// SourceItem represents an entity reported by the external source.
type SourceItem any

// ActionType represents the type of mutation action.
type ActionType string

const (
	// ActionInsert adds an entity reported by the source.
	ActionInsert ActionType = "insert"
	// ActionUpdate rewrites an entity whose fields changed at the source.
	ActionUpdate ActionType = "update"
	// ActionDelete removes an entity the source no longer reports.
	ActionDelete ActionType = "delete"
)

// Action represents a planned mutation operation.
type Action struct {
	// Type specifies the action to perform.
	Type ActionType `json:"type"`

	// Key is the entity identifier.
	Key string `json:"key"`

	// Reason explains why this action is needed.
	Reason string `json:"reason"`
}

// ReconcilePlan contains reconciliation results and planned actions.
type ReconcilePlan struct {
	// Results contains per-entity reconciliation data.
	Results []ReconcileResult `json:"results"`

	// Actions contains planned mutation operations.
	Actions []Action `json:"actions"`

	// Summary provides aggregate counts.
	Summary PlanSummary `json:"summary"`

	// Discovered is the deduplicated source listing, in first-seen order.
	// Applying the plan replaces the store's owned rows with exactly these items.
	Discovered []SourceItem `json:"-"`
}

// PlanSummary provides aggregate statistics for a reconcile plan.
type PlanSummary struct {
	// TotalItems is the number of unique keys across store and source.
	TotalItems int `json:"total_items"`

	// Added counts keys only the source reports.
	Added int `json:"added"`

	// Updated counts keys present on both sides with field differences.
	Updated int `json:"updated"`

	// Removed counts keys only the store holds.
	Removed int `json:"removed"`

	// Unchanged counts keys identical on both sides.
	Unchanged int `json:"unchanged"`
}

// ReconcileOptions controls whether a plan is executed.
type ReconcileOptions struct {
	// DryRun prevents execution of any mutations if true.
	DryRun bool

	// Confirmed indicates the caller accepted the destructive replacement.
	// If false, mutations will not execute regardless of DryRun.
	Confirmed bool
}
