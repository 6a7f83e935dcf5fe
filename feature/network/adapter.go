package network

import (
	"context"
	"fmt"

	"nebula/core/identity"
	"nebula/core/reconcile"
	"nebula/core/utils"
	"nebula/feature/inventory"
	"nebula/feature/inventory/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Defaults applied to fields the controller leaves empty.
const (
	Brand          = "Ubiquiti"
	DefaultName    = "Unknown Device"
	DefaultIP      = "N/A"
	DefaultModel   = "UniFi Device"
	defaultTypeRaw = "UniFi Device"
)

// Adapter syncs the non-manual network devices with a UniFi controller.
type Adapter struct {
	client   *Client
	user     string
	password string
	ids      *identity.Generator
	store    *inventory.Store
	logger   *zap.Logger
}

// NewAdapter creates an adapter that logs in with user/password on every Discover.
func NewAdapter(client *Client, user, password string, store *inventory.Store, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{
		client:   client,
		user:     user,
		password: password,
		ids:      store.IDs(),
		store:    store,
		logger:   logger,
	}
}

// Name returns the adapter name.
func (a *Adapter) Name() string {
	return "unifi"
}

// LoadStoreIndex loads the devices owned by the sync.
func (a *Adapter) LoadStoreIndex(ctx context.Context, db *gorm.DB) (map[string]reconcile.StoreItem, error) {
	devices, err := a.store.DiscoveredDevices(ctx, db)
	if err != nil {
		return nil, err
	}
	index := make(map[string]reconcile.StoreItem, len(devices))
	for _, d := range devices {
		index[d.ID] = d
	}
	return index, nil
}

// Discover logs in and maps the controller's device listing to inventory rows.
// Devices whose id belongs to a manual row are left out; the manual row wins.
func (a *Adapter) Discover(ctx context.Context) ([]reconcile.SourceItem, error) {
	if _, err := a.client.Login(ctx, a.user, a.password); err != nil {
		return nil, err
	}
	raw, err := a.client.Devices(ctx)
	if err != nil {
		return nil, err
	}

	manual, err := a.store.ManualDeviceIDs(ctx, nil)
	if err != nil {
		return nil, err
	}

	items := make([]reconcile.SourceItem, 0, len(raw))
	for _, d := range raw {
		dev := a.toDevice(d)
		if _, taken := manual[dev.ID]; taken {
			a.logger.Warn("Skipping controller device that collides with a manual device",
				zap.String("id", dev.ID), zap.String("name", dev.Name))
			continue
		}
		items = append(items, dev)
	}
	return items, nil
}

// toDevice applies the field defaults. Devices without a controller id get a generated one.
func (a *Adapter) toDevice(d RawDevice) models.NetworkDevice {
	dev := models.NetworkDevice{
		ID:     d.ID,
		Name:   firstNonEmpty(d.Name, d.Model, DefaultName),
		IP:     firstNonEmpty(d.IP, DefaultIP),
		Model:  firstNonEmpty(d.Model, DefaultModel),
		Type:   utils.Capitalize(firstNonEmpty(d.Type, defaultTypeRaw)),
		Brand:  Brand,
		Serial: d.Serial,
	}
	if dev.ID == "" {
		dev.ID = a.ids.Next(identity.PrefixNetworkDevice)
	}
	return dev
}

// ExtractSourceKey returns the device id.
func (a *Adapter) ExtractSourceKey(item reconcile.SourceItem) string {
	return item.(models.NetworkDevice).ID
}

// ResolveName prefers the controller's name.
func (a *Adapter) ResolveName(storeItem reconcile.StoreItem, sourceItem reconcile.SourceItem) string {
	if sourceItem != nil {
		return sourceItem.(models.NetworkDevice).Name
	}
	if storeItem != nil {
		return storeItem.(models.NetworkDevice).Name
	}
	return ""
}

// CompareFields lists the fields the controller changed.
func (a *Adapter) CompareFields(storeItem reconcile.StoreItem, sourceItem reconcile.SourceItem) []string {
	s := storeItem.(models.NetworkDevice)
	d := sourceItem.(models.NetworkDevice)

	var mismatches []string
	check := func(label, store, source string) {
		if store != source {
			mismatches = append(mismatches, fmt.Sprintf("%s: source=%s store=%s", label, source, store))
		}
	}
	check("name", s.Name, d.Name)
	check("ip", s.IP, d.IP)
	check("model", s.Model, d.Model)
	check("type", s.Type, d.Type)
	check("brand", s.Brand, d.Brand)
	check("serial", s.Serial, d.Serial)
	return mismatches
}

// Replace swaps every non-manual device for items.
func (a *Adapter) Replace(ctx context.Context, tx *gorm.DB, items []reconcile.SourceItem) error {
	devices := make([]models.NetworkDevice, 0, len(items))
	for _, item := range items {
		devices = append(devices, item.(models.NetworkDevice))
	}
	return inventory.ReplaceDiscoveredTx(tx.WithContext(ctx), devices)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
