package inventory

import (
	"context"
	"fmt"
	"strings"

	"nebula/core/database"
	"nebula/feature/inventory/models"

	"gorm.io/gorm"
)

// legacyDeviceTable held controller devices before network_devices existed.
const legacyDeviceTable = "unifi_devices"

// legacyDeviceColumns are copied from the legacy table when present.
var legacyDeviceColumns = []string{"id", "name", "ip", "model", "type"}

// Migrate creates missing tables and columns and folds the legacy device table
// into network_devices. Running it again is a no-op.
func Migrate(ctx context.Context, db *gorm.DB) error {
	db = db.WithContext(ctx)

	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	if !db.Migrator().HasTable(legacyDeviceTable) {
		return nil
	}

	columns, err := database.ColumnSet(db, legacyDeviceTable)
	if err != nil {
		return fmt.Errorf("failed to inspect %s: %w", legacyDeviceTable, err)
	}

	var copyCols []string
	for _, col := range legacyDeviceColumns {
		if _, ok := columns[col]; ok {
			copyCols = append(copyCols, col)
		}
	}
	if _, ok := columns["id"]; !ok {
		copyCols = nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if len(copyCols) > 0 {
			list := strings.Join(copyCols, ", ")
			sql := fmt.Sprintf(
				"INSERT INTO network_devices (%s) SELECT %s FROM %s WHERE id NOT IN (SELECT id FROM network_devices)",
				list, list, legacyDeviceTable)
			if err := tx.Exec(sql).Error; err != nil {
				return fmt.Errorf("failed to copy legacy devices: %w", err)
			}
		}
		if err := tx.Migrator().DropTable(legacyDeviceTable); err != nil {
			return fmt.Errorf("failed to drop %s: %w", legacyDeviceTable, err)
		}
		return nil
	})
}
