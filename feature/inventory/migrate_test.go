package inventory

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"nebula/core/database"
	"nebula/feature/inventory/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate_LegacySchema(t *testing.T) {
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)

	legacy := []string{
		"CREATE TABLE servers (id TEXT PRIMARY KEY, name TEXT, ip TEXT, description TEXT)",
		"INSERT INTO servers (id, name, ip, description) VALUES ('srv_old', 'Old', '10.1.1.1', '')",
		"CREATE TABLE unifi_devices (id TEXT PRIMARY KEY, name TEXT, ip TEXT, model TEXT, type TEXT)",
		"INSERT INTO unifi_devices VALUES ('5f1', 'USW-24', '10.1.1.2', 'US24', 'Usw')",
	}
	for _, stmt := range legacy {
		require.NoError(t, db.Exec(stmt).Error)
	}

	ctx := context.Background()
	require.NoError(t, Migrate(ctx, db))

	columns, err := database.ColumnSet(db, "servers")
	require.NoError(t, err)
	assert.Contains(t, columns, "rack_id")

	assert.False(t, db.Migrator().HasTable("unifi_devices"))

	var devices []models.NetworkDevice
	require.NoError(t, db.Find(&devices).Error)
	require.Len(t, devices, 1)
	assert.Equal(t, "5f1", devices[0].ID)
	assert.Equal(t, "US24", devices[0].Model)
	assert.False(t, devices[0].IsManual)

	var server models.Server
	require.NoError(t, db.First(&server, "id = ?", "srv_old").Error)
	assert.Nil(t, server.RackID)

	// Second run is a no-op
	require.NoError(t, Migrate(ctx, db))
	require.NoError(t, db.Find(&devices).Error)
	assert.Len(t, devices, 1)
}

func TestMigrate_LegacyNullColumns(t *testing.T) {
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)

	// Older files left optional text columns NULL rather than empty
	legacy := []string{
		"CREATE TABLE servers (id TEXT PRIMARY KEY, rack_id TEXT, name TEXT, ip TEXT, description TEXT)",
		"INSERT INTO servers (id, name) VALUES ('srv_old', 'Old')",
		"CREATE TABLE services (id TEXT PRIMARY KEY, server_id TEXT, name TEXT, vmid INTEGER, ip TEXT, vlan INTEGER, cpu INTEGER, ram REAL, storage INTEGER, description TEXT)",
		"INSERT INTO services (id, server_id, name) VALUES ('svc_old', 'srv_old', 'dns')",
		"CREATE TABLE network_devices (id TEXT PRIMARY KEY, rack_id TEXT, name TEXT, ip TEXT, model TEXT, type TEXT, brand TEXT, serial TEXT, is_manual INTEGER DEFAULT 0)",
		"INSERT INTO network_devices (id, name, is_manual) VALUES ('net_old', 'Switch', 1)",
	}
	for _, stmt := range legacy {
		require.NoError(t, db.Exec(stmt).Error)
	}

	ctx := context.Background()
	require.NoError(t, Migrate(ctx, db))
	store := NewStore(db, nil)

	snap, err := store.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Servers, 1)
	assert.Equal(t, "", snap.Servers[0].IP)
	require.Len(t, snap.Servers[0].Services, 1)
	svc := snap.Servers[0].Services[0]
	assert.Equal(t, "", svc.IP)
	assert.Equal(t, "", svc.Description)
	assert.Nil(t, svc.VMID)
	assert.Nil(t, svc.RAM)
	require.Len(t, snap.NetworkDevices, 1)
	assert.Equal(t, "", snap.NetworkDevices[0].Model)
	assert.True(t, snap.NetworkDevices[0].IsManual)

	rows, err := store.ExportRows(ctx)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, rows))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Old,,dns,,,,,,,", lines[1])
}
