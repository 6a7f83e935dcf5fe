package reconcile

import (
	"context"

	"gorm.io/gorm"
)

// Adapter defines the model-specific side of a sync: how to read the rows the sync
// owns, how to ask the external source for its listing, and how to write it back.
type Adapter interface {
	// Name returns the unique name of this adapter (e.g., "unifi").
	Name() string

	// LoadStoreIndex loads the rows owned by this sync, indexed by entity key.
	// Rows the sync must never touch (manual entries) are excluded.
	LoadStoreIndex(ctx context.Context, db *gorm.DB) (map[string]StoreItem, error)

	// Discover queries the external source. Any error aborts the sync before
	// the store is touched.
	Discover(ctx context.Context) ([]SourceItem, error)

	// ExtractSourceKey returns the entity key of a discovered item.
	// Items sharing a key collapse into the last one reported.
	ExtractSourceKey(item SourceItem) string

	// ResolveName returns the display name for an entity. Either item may be nil.
	ResolveName(storeItem StoreItem, sourceItem SourceItem) string

	// CompareFields lists field differences between a stored and a discovered item.
	// Both items are guaranteed to be non-nil when this is called.
	CompareFields(storeItem StoreItem, sourceItem SourceItem) []string

	// Replace deletes every owned row and inserts items in their place.
	// It is always called inside a transaction and must use tx exclusively.
	Replace(ctx context.Context, tx *gorm.DB, items []SourceItem) error
}
