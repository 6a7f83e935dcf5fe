package inventory

import (
	"context"
	"fmt"

	"nebula/core/identity"
	"nebula/feature/inventory/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the relational inventory. Every exported operation runs in its own transaction.
type Store struct {
	db  *gorm.DB
	ids *identity.Generator
}

// NewStore creates a Store on top of db.
func NewStore(db *gorm.DB, ids *identity.Generator) *Store {
	if ids == nil {
		ids = identity.New()
	}
	return &Store{db: db, ids: ids}
}

// DB returns the underlying connection.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// IDs returns the identity generator used for new rows.
func (s *Store) IDs() *identity.Generator {
	return s.ids
}

func (s *Store) tx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.db.WithContext(ctx).Transaction(fn)
}

// CreateRack inserts a rack with a fresh id.
func (s *Store) CreateRack(ctx context.Context, rack *models.Rack) error {
	rack.ID = s.ids.Next(identity.PrefixRack)
	return s.tx(ctx, func(tx *gorm.DB) error {
		return tx.Create(rack).Error
	})
}

// UpdateRack overwrites name and location. Unknown ids are a no-op reported as found=false.
func (s *Store) UpdateRack(ctx context.Context, id string, rack *models.Rack) (bool, error) {
	return s.update(ctx, &models.Rack{}, id, map[string]any{
		"name":     rack.Name,
		"location": rack.Location,
	})
}

// DeleteRack removes a rack. With cascade the rack's servers and their services go too;
// without it servers are detached. Network devices are always detached.
func (s *Store) DeleteRack(ctx context.Context, id string, cascade bool) error {
	return s.tx(ctx, func(tx *gorm.DB) error {
		if cascade {
			servers := tx.Model(&models.Server{}).Select("id").Where("rack_id = ?", id)
			if err := tx.Where("server_id IN (?)", servers).Delete(&models.Service{}).Error; err != nil {
				return err
			}
			if err := tx.Where("rack_id = ?", id).Delete(&models.Server{}).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Model(&models.Server{}).Where("rack_id = ?", id).Update("rack_id", nil).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(&models.NetworkDevice{}).Where("rack_id = ?", id).Update("rack_id", nil).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.Rack{}).Error
	})
}

// CreateServer inserts a server with a fresh id.
func (s *Store) CreateServer(ctx context.Context, server *models.Server) error {
	server.ID = s.ids.Next(identity.PrefixServer)
	return s.tx(ctx, func(tx *gorm.DB) error {
		return tx.Create(server).Error
	})
}

// UpdateServer overwrites every mutable field.
func (s *Store) UpdateServer(ctx context.Context, id string, server *models.Server) (bool, error) {
	return s.update(ctx, &models.Server{}, id, map[string]any{
		"rack_id":     server.RackID,
		"name":        server.Name,
		"ip":          server.IP,
		"description": server.Description,
	})
}

// DeleteServer removes a server and its services.
func (s *Store) DeleteServer(ctx context.Context, id string) error {
	return s.tx(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("server_id = ?", id).Delete(&models.Service{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.Server{}).Error
	})
}

// CreateService inserts a service with a fresh id. The server is not checked.
func (s *Store) CreateService(ctx context.Context, svc *models.Service) error {
	svc.ID = s.ids.Next(identity.PrefixService)
	return s.tx(ctx, func(tx *gorm.DB) error {
		return tx.Create(svc).Error
	})
}

// UpdateService overwrites every mutable field. The owning server never changes.
func (s *Store) UpdateService(ctx context.Context, id string, svc *models.Service) (bool, error) {
	return s.update(ctx, &models.Service{}, id, map[string]any{
		"name":        svc.Name,
		"vmid":        svc.VMID,
		"ip":          svc.IP,
		"vlan":        svc.VLAN,
		"cpu":         svc.CPU,
		"ram":         svc.RAM,
		"storage":     svc.Storage,
		"description": svc.Description,
	})
}

// DeleteService removes a service.
func (s *Store) DeleteService(ctx context.Context, id string) error {
	return s.tx(ctx, func(tx *gorm.DB) error {
		return tx.Where("id = ?", id).Delete(&models.Service{}).Error
	})
}

// CreateNetworkDevice inserts a manual device with a fresh id.
func (s *Store) CreateNetworkDevice(ctx context.Context, dev *models.NetworkDevice) error {
	dev.ID = s.ids.Next(identity.PrefixNetworkDevice)
	dev.IsManual = true
	return s.tx(ctx, func(tx *gorm.DB) error {
		return tx.Create(dev).Error
	})
}

// UpdateNetworkDevice overwrites every mutable field. The manual flag is kept.
func (s *Store) UpdateNetworkDevice(ctx context.Context, id string, dev *models.NetworkDevice) (bool, error) {
	return s.update(ctx, &models.NetworkDevice{}, id, map[string]any{
		"rack_id": dev.RackID,
		"name":    dev.Name,
		"ip":      dev.IP,
		"model":   dev.Model,
		"type":    dev.Type,
		"brand":   dev.Brand,
		"serial":  dev.Serial,
	})
}

// DeleteNetworkDevice removes a device, manual or not.
func (s *Store) DeleteNetworkDevice(ctx context.Context, id string) error {
	return s.tx(ctx, func(tx *gorm.DB) error {
		return tx.Where("id = ?", id).Delete(&models.NetworkDevice{}).Error
	})
}

func (s *Store) update(ctx context.Context, model any, id string, values map[string]any) (bool, error) {
	var found bool
	err := s.tx(ctx, func(tx *gorm.DB) error {
		res := tx.Model(model).Where("id = ?", id).Updates(values)
		if res.Error != nil {
			return res.Error
		}
		found = res.RowsAffected > 0
		return nil
	})
	return found, err
}

// Snapshot reads the whole inventory. Services are nested under their server;
// services whose server is gone are left out. Hidden settings are never returned.
func (s *Store) Snapshot(ctx context.Context) (*models.Snapshot, error) {
	var (
		racks    []models.Rack
		servers  []models.Server
		services []models.Service
		settings []models.Setting
		devices  []models.NetworkDevice
	)

	err := s.tx(ctx, func(tx *gorm.DB) error {
		if err := tx.Find(&servers).Error; err != nil {
			return err
		}
		if err := tx.Find(&services).Error; err != nil {
			return err
		}
		if err := tx.Find(&settings).Error; err != nil {
			return err
		}
		if err := tx.Find(&racks).Error; err != nil {
			return err
		}
		return tx.Find(&devices).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read inventory: %w", err)
	}

	views := make([]models.ServerView, len(servers))
	position := make(map[string]int, len(servers))
	for i, srv := range servers {
		views[i] = models.ServerView{Server: srv, Services: []models.Service{}}
		position[srv.ID] = i
	}
	for _, svc := range services {
		if i, ok := position[svc.ServerID]; ok {
			views[i].Services = append(views[i].Services, svc)
		}
	}

	values := make(map[string]string, len(settings))
	for _, st := range settings {
		if _, hidden := hiddenSettings[st.Key]; hidden {
			continue
		}
		values[st.Key] = st.Value
	}

	if racks == nil {
		racks = []models.Rack{}
	}
	if devices == nil {
		devices = []models.NetworkDevice{}
	}

	return &models.Snapshot{
		Racks:          racks,
		Servers:        views,
		Settings:       values,
		NetworkDevices: devices,
	}, nil
}

// PutSettings upserts every pair in one transaction.
func (s *Store) PutSettings(ctx context.Context, values map[string]string) error {
	return s.tx(ctx, func(tx *gorm.DB) error {
		return PutSettingsTx(tx, values)
	})
}

// PutSettingsTx upserts settings using an existing transaction.
func PutSettingsTx(tx *gorm.DB, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	rows := make([]models.Setting, 0, len(values))
	for k, v := range values {
		rows = append(rows, models.Setting{Key: k, Value: v})
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&rows).Error
}

// Setting returns a single setting.
func (s *Store) Setting(ctx context.Context, key string) (string, bool, error) {
	var rows []models.Setting
	if err := s.db.WithContext(ctx).Where(map[string]any{"key": key}).Limit(1).Find(&rows).Error; err != nil {
		return "", false, err
	}
	if len(rows) == 0 {
		return "", false, nil
	}
	return rows[0].Value, true, nil
}

// Settings returns the values of the given keys that exist.
func (s *Store) Settings(ctx context.Context, keys ...string) (map[string]string, error) {
	var rows []models.Setting
	if err := s.db.WithContext(ctx).Where(map[string]any{"key": keys}).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for _, r := range rows {
		out[r.Key] = r.Value
	}
	return out, nil
}

// ExportRows returns every service joined with its server, in service order.
// Services without a server are skipped.
func (s *Store) ExportRows(ctx context.Context) ([]models.ExportRow, error) {
	var rows []models.ExportRow
	err := s.db.WithContext(ctx).
		Table("services AS sv").
		Select("s.name AS server_name, s.ip AS server_ip, sv.name, sv.vmid, sv.ip, sv.vlan, sv.cpu, sv.ram, sv.storage, sv.description").
		Joins("JOIN servers s ON sv.server_id = s.id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to read export rows: %w", err)
	}
	return rows, nil
}

// DiscoveredDevices returns every network device owned by the controller sync.
func (s *Store) DiscoveredDevices(ctx context.Context, db *gorm.DB) ([]models.NetworkDevice, error) {
	if db == nil {
		db = s.db
	}
	var devices []models.NetworkDevice
	if err := db.WithContext(ctx).Where("is_manual = ?", false).Find(&devices).Error; err != nil {
		return nil, err
	}
	return devices, nil
}

// ManualDeviceIDs returns the ids of the devices added by hand.
func (s *Store) ManualDeviceIDs(ctx context.Context, db *gorm.DB) (map[string]struct{}, error) {
	if db == nil {
		db = s.db
	}
	var ids []string
	if err := db.WithContext(ctx).Model(&models.NetworkDevice{}).Where("is_manual = ?", true).Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to load manual device ids: %w", err)
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

// replaceBatchSize keeps each INSERT well under SQLite's bound-variable limit.
const replaceBatchSize = 100

// ReplaceDiscoveredTx deletes every non-manual device and inserts devices as non-manual.
// Manual rows are never touched, even when a discovered id collides with one.
func ReplaceDiscoveredTx(tx *gorm.DB, devices []models.NetworkDevice) error {
	if err := tx.Where("is_manual = ?", false).Delete(&models.NetworkDevice{}).Error; err != nil {
		return fmt.Errorf("failed to clear discovered devices: %w", err)
	}
	if len(devices) == 0 {
		return nil
	}
	for i := range devices {
		devices[i].IsManual = false
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(&devices, replaceBatchSize).Error
}
