// Package database handles database connections and schema inspection.
//
// It wraps GORM to open the inventory database from the application's configuration.
// SQLite (a single file whose path is configurable) is the default engine; MySQL can be
// selected for larger deployments.
//
// # Connect
//
// Connect opens the database and verifies it with a ping. For SQLite the pool is capped
// at one connection and the busy timeout is set from TimeoutSeconds, so concurrent
// requests queue on the engine lock and fail with a busy error once the wait expires.
//
// # Schema Inspection
//
// GetTableColumns lists the columns of a table. The inventory migrations use it to copy
// rows out of legacy tables whose exact column set is not known in advance.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	columns, err := database.GetTableColumns(db, "unifi_devices")
package database
