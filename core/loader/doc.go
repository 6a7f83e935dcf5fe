// Package loader provides the plugin-like feature loading system.
//
// Each feature implements the Feature interface and registers its own routes:
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(app fiber.Router) error
//	}
//
// The Manager keeps features in registration order and LoadAll loads every enabled
// one. Disabled features (for example backups without object storage) are skipped
// and logged.
package loader
