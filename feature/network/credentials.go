package network

import (
	"context"
	"fmt"

	"nebula/core/secrets"
	"nebula/feature/inventory"
	"nebula/feature/inventory/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Credentials are the controller login details.
type Credentials struct {
	Host     string
	User     string
	Password string
}

// Complete reports whether all three fields are set.
func (c Credentials) Complete() bool {
	return c.Host != "" && c.User != "" && c.Password != ""
}

// CredentialStore keeps the last working controller credentials in the settings table.
// The password is sealed with the secrets box; without a key it is not persisted.
type CredentialStore struct {
	store  *inventory.Store
	box    *secrets.Box
	logger *zap.Logger
}

// NewCredentialStore creates a CredentialStore. box may be nil.
func NewCredentialStore(store *inventory.Store, box *secrets.Box, logger *zap.Logger) *CredentialStore {
	return &CredentialStore{store: store, box: box, logger: logger}
}

// Load returns the stored credentials. A password that cannot be opened is dropped.
func (cs *CredentialStore) Load(ctx context.Context) (Credentials, error) {
	values, err := cs.store.Settings(ctx, inventory.SettingUnifiHost, inventory.SettingUnifiUser, inventory.SettingUnifiPass)
	if err != nil {
		return Credentials{}, fmt.Errorf("failed to load controller credentials: %w", err)
	}

	creds := Credentials{
		Host: values[inventory.SettingUnifiHost],
		User: values[inventory.SettingUnifiUser],
	}

	stored := values[inventory.SettingUnifiPass]
	switch {
	case stored == "":
	case secrets.IsSealed(stored):
		plain, err := cs.box.Open(stored)
		if err != nil {
			cs.logger.Warn("Stored controller password cannot be decrypted", zap.Error(err))
			break
		}
		creds.Password = plain
	default:
		// Written in clear text by older versions
		creds.Password = stored
	}
	return creds, nil
}

// SaveTx writes creds using tx. Host and user are always stored.
func (cs *CredentialStore) SaveTx(tx *gorm.DB, creds Credentials) error {
	values := map[string]string{
		inventory.SettingUnifiHost: creds.Host,
		inventory.SettingUnifiUser: creds.User,
	}

	if cs.box.Enabled() {
		sealed, err := cs.box.Seal(creds.Password)
		if err != nil {
			return fmt.Errorf("failed to seal controller password: %w", err)
		}
		values[inventory.SettingUnifiPass] = sealed
	} else {
		if err := tx.Where(map[string]any{"key": inventory.SettingUnifiPass}).Delete(&models.Setting{}).Error; err != nil {
			return err
		}
	}

	return inventory.PutSettingsTx(tx, values)
}

// Hook returns a reconcile OnApplied hook persisting creds in the sync transaction.
func (cs *CredentialStore) Hook(creds Credentials) func(ctx context.Context, tx *gorm.DB) error {
	return func(ctx context.Context, tx *gorm.DB) error {
		return cs.SaveTx(tx.WithContext(ctx), creds)
	}
}

// CanPersistPassword reports whether passwords survive a restart.
func (cs *CredentialStore) CanPersistPassword() bool {
	return cs.box.Enabled()
}
