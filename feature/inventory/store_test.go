package inventory

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"

	"nebula/core/database"
	"nebula/core/identity"
	"nebula/feature/inventory/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, Migrate(context.Background(), db))
	return NewStore(db, identity.New())
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func strPtr(s string) *string { return &s }

// seedRack creates R1 holding S1, which runs svc1, plus a device in the rack.
func seedRack(t *testing.T, s *Store) (rack models.Rack, server models.Server, svc models.Service, dev models.NetworkDevice) {
	t.Helper()
	ctx := context.Background()

	rack = models.Rack{Name: "R1", Location: "Row A"}
	require.NoError(t, s.CreateRack(ctx, &rack))

	server = models.Server{RackID: &rack.ID, Name: "S1", IP: "10.0.0.5"}
	require.NoError(t, s.CreateServer(ctx, &server))

	svc = models.Service{ServerID: server.ID, Name: "svc1"}
	require.NoError(t, s.CreateService(ctx, &svc))

	dev = models.NetworkDevice{RackID: &rack.ID, Name: "ToR switch"}
	require.NoError(t, s.CreateNetworkDevice(ctx, &dev))
	return
}

func TestStore_CreateAssignsPrefixedIDs(t *testing.T) {
	s := newTestStore(t)
	rack, server, svc, dev := seedRack(t, s)

	assert.True(t, identity.HasPrefix(rack.ID, identity.PrefixRack))
	assert.True(t, identity.HasPrefix(server.ID, identity.PrefixServer))
	assert.True(t, identity.HasPrefix(svc.ID, identity.PrefixService))
	assert.True(t, identity.HasPrefix(dev.ID, identity.PrefixNetworkDevice))
	assert.True(t, dev.IsManual)
}

func TestStore_DeleteRackCascade(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	rack, _, _, dev := seedRack(t, s)

	require.NoError(t, s.DeleteRack(ctx, rack.ID, true))

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap.Racks)
	assert.Empty(t, snap.Servers)

	var services int64
	require.NoError(t, s.DB().Model(&models.Service{}).Count(&services).Error)
	assert.Zero(t, services)

	require.Len(t, snap.NetworkDevices, 1)
	assert.Equal(t, dev.ID, snap.NetworkDevices[0].ID)
	assert.Nil(t, snap.NetworkDevices[0].RackID)
}

func TestStore_DeleteRackDetach(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	rack, server, svc, _ := seedRack(t, s)

	require.NoError(t, s.DeleteRack(ctx, rack.ID, false))

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap.Racks)
	require.Len(t, snap.Servers, 1)
	assert.Equal(t, server.ID, snap.Servers[0].ID)
	assert.Nil(t, snap.Servers[0].RackID)
	require.Len(t, snap.Servers[0].Services, 1)
	assert.Equal(t, svc.ID, snap.Servers[0].Services[0].ID)
	assert.Nil(t, snap.NetworkDevices[0].RackID)
}

func TestStore_DeleteServerCascadesServices(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, server, _, _ := seedRack(t, s)

	require.NoError(t, s.DeleteServer(ctx, server.ID))

	var services int64
	require.NoError(t, s.DB().Model(&models.Service{}).Count(&services).Error)
	assert.Zero(t, services)
}

func TestStore_UpdateFullReplace(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, server, svc, _ := seedRack(t, s)

	found, err := s.UpdateServer(ctx, server.ID, &models.Server{Name: "S1-renamed"})
	require.NoError(t, err)
	assert.True(t, found)

	cpu := 4
	found, err = s.UpdateService(ctx, svc.ID, &models.Service{Name: "svc1", CPU: &cpu, ServerID: "ignored"})
	require.NoError(t, err)
	assert.True(t, found)

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	got := snap.Servers[0]
	assert.Equal(t, "S1-renamed", got.Name)
	assert.Empty(t, got.IP)
	assert.Nil(t, got.RackID)
	require.Len(t, got.Services, 1)
	assert.Equal(t, server.ID, got.Services[0].ServerID, "services never move")
	assert.Equal(t, 4, *got.Services[0].CPU)
}

func TestStore_UpdateUnknownIsNoop(t *testing.T) {
	s := newTestStore(t)
	found, err := s.UpdateRack(context.Background(), "rck_missing", &models.Rack{Name: "x"})
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_SettingsUpsertAndHidden(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutSettings(ctx, map[string]string{"palette": "red", SettingUnifiPass: "sealed"}))
	require.NoError(t, s.PutSettings(ctx, map[string]string{"palette": "green"}))

	v, ok, err := s.Setting(ctx, "palette")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "green", v)

	_, ok, err = s.Setting(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"palette": "green"}, snap.Settings)

	values, err := s.Settings(ctx, "palette", SettingUnifiPass, "absent")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"palette": "green", SettingUnifiPass: "sealed"}, values)
}

func TestStore_InitSeedsOnce(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seeded, err := s.Init(ctx)
	require.NoError(t, err)
	assert.True(t, seeded)

	seeded, err = s.Init(ctx)
	require.NoError(t, err)
	assert.False(t, seeded)

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Servers, 1)
	assert.Equal(t, "srv_demo", snap.Servers[0].ID)
	assert.Equal(t, "blue", snap.Settings[SettingPalette])
}

func TestStore_ResetThenRestartDoesNotReseed(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedRack(t, s)
	require.NoError(t, s.PutSettings(ctx, map[string]string{"palette": "red"}))

	require.NoError(t, s.Reset(ctx))

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap.Racks)
	require.Len(t, snap.Servers, 1)
	assert.Equal(t, DemoServer(), snap.Servers[0].Server)
	assert.Empty(t, snap.Servers[0].Services)
	require.Len(t, snap.NetworkDevices, 1)
	assert.Equal(t, DemoNetworkDevice(), snap.NetworkDevices[0])
	assert.Equal(t, "1", snap.Settings[SettingUserCleared])
	assert.Equal(t, "red", snap.Settings[SettingPalette])

	// The user removes the demo server, then the process restarts
	require.NoError(t, s.DeleteServer(ctx, "srv_demo"))
	seeded, err := s.Init(ctx)
	require.NoError(t, err)
	assert.False(t, seeded)

	snap, err = s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap.Servers)
}

func TestStore_ExportRows(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, server, _, _ := seedRack(t, s)

	// Orphaned service is not exported
	require.NoError(t, s.CreateService(ctx, &models.Service{ServerID: "srv_gone", Name: "orphan"}))

	rows, err := s.ExportRows(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, server.Name, rows[0].ServerName)
	assert.Equal(t, "10.0.0.5", rows[0].ServerIP)
	assert.Equal(t, "svc1", rows[0].Name)
}

func TestStore_ReplaceDiscoveredKeepsManual(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, _, _, manual := seedRack(t, s)

	err := s.DB().Transaction(func(tx *gorm.DB) error {
		return ReplaceDiscoveredTx(tx, []models.NetworkDevice{
			{ID: "abc", Name: "U6-Pro", IsManual: true},
			{ID: manual.ID, Name: "collides with manual"},
		})
	})
	require.NoError(t, err)

	discovered, err := s.DiscoveredDevices(ctx, nil)
	require.NoError(t, err)
	require.Len(t, discovered, 1)
	assert.Equal(t, "abc", discovered[0].ID)
	assert.False(t, discovered[0].IsManual)

	var kept models.NetworkDevice
	require.NoError(t, s.DB().First(&kept, "id = ?", manual.ID).Error)
	assert.Equal(t, "ToR switch", kept.Name)
	assert.True(t, kept.IsManual)
}

func TestStore_ReplaceDiscoveredLargeListing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	devices := make([]models.NetworkDevice, 0, 1500)
	for i := 0; i < 1500; i++ {
		devices = append(devices, models.NetworkDevice{ID: fmt.Sprintf("dev%04d", i), Name: "AP", IP: "10.0.0.1"})
	}
	err := s.DB().Transaction(func(tx *gorm.DB) error {
		return ReplaceDiscoveredTx(tx, devices)
	})
	require.NoError(t, err)

	discovered, err := s.DiscoveredDevices(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, discovered, 1500)
}

func TestStore_ManualDeviceIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, _, _, manual := seedRack(t, s)
	require.NoError(t, s.DB().Transaction(func(tx *gorm.DB) error {
		return ReplaceDiscoveredTx(tx, []models.NetworkDevice{{ID: "abc", Name: "U6-Pro"}})
	}))

	ids, err := s.ManualDeviceIDs(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{manual.ID: {}}, ids)
}

func TestStore_StorageErrorRollsBack(t *testing.T) {
	db, mock := setupMockDB(t)
	s := NewStore(db, identity.New())

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `services`")).WillReturnError(errors.New("database is locked"))
	mock.ExpectRollback()

	err := s.DeleteServer(context.Background(), "srv_1")
	assert.EqualError(t, err, "database is locked")
	assert.NoError(t, mock.ExpectationsWereMet())
}
