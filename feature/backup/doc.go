// Package backup stores JSON snapshots of the inventory in S3-compatible object storage.
//
// Each backup is backups/inventory-<UTC timestamp>.json in the configured bucket,
// which is created on first use. After an upload the oldest backups beyond
// storage.retain are removed. Credentials kept in settings are never part of a
// snapshot.
//
// The feature is only loaded when storage is enabled.
package backup
