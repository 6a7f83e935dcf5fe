package inventory

import (
	"context"
	"fmt"

	"nebula/feature/inventory/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Setting keys with a meaning to the application.
const (
	SettingPalette     = "palette"
	SettingUserCleared = "user_cleared"
	SettingUnifiHost   = "unifi_host"
	SettingUnifiUser   = "unifi_user"
	SettingUnifiPass   = "unifi_pass"
)

// DefaultPalette is written on first start.
const DefaultPalette = "blue"

// hiddenSettings are never returned by Snapshot.
var hiddenSettings = map[string]struct{}{
	SettingUnifiPass: {},
}

// managedSettings cannot be written through PutSettings.
var managedSettings = map[string]struct{}{
	SettingUnifiPass: {},
}

// IsManagedSetting reports whether key is written by the application only.
func IsManagedSetting(key string) bool {
	_, ok := managedSettings[key]
	return ok
}

// DemoServer returns the fixed demo server.
func DemoServer() models.Server {
	return models.Server{
		ID:          "srv_demo",
		Name:        "Nebula-Core-01",
		IP:          "10.0.0.10",
		Description: "Demo Server - A fictional core server for demonstration.",
	}
}

// DemoNetworkDevice returns the fixed demo gateway.
func DemoNetworkDevice() models.NetworkDevice {
	return models.NetworkDevice{
		ID:       "net_demo",
		Name:     "Aether-Gateway-X1",
		IP:       "10.0.0.1",
		Model:    "A-1000",
		Type:     "router",
		Brand:    "Aether Industries",
		Serial:   "SN-0001-DEMO",
		IsManual: true,
	}
}

// Init prepares the schema and seeds the demo rows on a fresh database.
// Seeding is skipped once a server exists or the user has reset the inventory.
func (s *Store) Init(ctx context.Context) (bool, error) {
	if err := Migrate(ctx, s.db); err != nil {
		return false, err
	}

	seeded := false
	err := s.tx(ctx, func(tx *gorm.DB) error {
		palette := models.Setting{Key: SettingPalette, Value: DefaultPalette}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&palette).Error; err != nil {
			return err
		}

		var servers int64
		if err := tx.Model(&models.Server{}).Count(&servers).Error; err != nil {
			return err
		}
		if servers > 0 {
			return nil
		}

		var cleared int64
		if err := tx.Model(&models.Setting{}).Where(map[string]any{"key": SettingUserCleared}).Count(&cleared).Error; err != nil {
			return err
		}
		if cleared > 0 {
			return nil
		}

		seeded = true
		return seedDemo(tx)
	})
	if err != nil {
		return false, fmt.Errorf("failed to initialize inventory: %w", err)
	}
	return seeded, nil
}

// Reset wipes racks, servers, services and network devices, reseeds the demo rows
// and records that the user cleared the inventory. Settings other than user_cleared
// are kept.
func (s *Store) Reset(ctx context.Context) error {
	err := s.tx(ctx, func(tx *gorm.DB) error {
		for _, model := range []any{&models.Service{}, &models.Server{}, &models.Rack{}, &models.NetworkDevice{}} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return err
			}
		}
		if err := seedDemo(tx); err != nil {
			return err
		}
		return PutSettingsTx(tx, map[string]string{SettingUserCleared: "1"})
	})
	if err != nil {
		return fmt.Errorf("failed to reset inventory: %w", err)
	}
	return nil
}

func seedDemo(tx *gorm.DB) error {
	server := DemoServer()
	if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&server).Error; err != nil {
		return err
	}
	device := DemoNetworkDevice()
	return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&device).Error
}
