package network

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"nebula/core/identity"
	"nebula/core/reconcile"
	"nebula/core/response"
	"nebula/core/secrets"
	"nebula/feature/inventory"
	"nebula/feature/inventory/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPull_ReplacesDiscoveredAndKeepsManual(t *testing.T) {
	fx := newFixture(t, "k")
	manual := fx.addManual(t, "Patch Panel")
	fake := &fakeController{modern: true, devices: sampleDevices()}
	host := fake.start(t)

	result, err := fx.service.Pull(context.Background(), PullRequest{Host: host, User: "admin", Password: "secret"}, apply)
	require.NoError(t, err)
	assert.Equal(t, "modern", result.Variant)
	assert.True(t, result.Applied)
	assert.Equal(t, reconcile.PlanSummary{TotalItems: 2, Added: 2}, result.Summary)
	require.Len(t, result.Devices, 2)

	core := result.Devices[0]
	assert.Equal(t, "5f0a", core.ID)
	assert.Equal(t, "Usw", core.Type)
	assert.Equal(t, "Ubiquiti", core.Brand)
	assert.Equal(t, "F09FC2AA", core.Serial)
	assert.Equal(t, "U6-LR", result.Devices[1].Name, "empty name falls back to the model")
	assert.Equal(t, "Uap", result.Devices[1].Type)

	rows := fx.devices(t)
	require.Len(t, rows, 3)
	ids := []string{rows[0].ID, rows[1].ID, rows[2].ID}
	assert.ElementsMatch(t, []string{"5f0a", "5f0b", manual.ID}, ids)

	// Controller now reports a single device
	fake.devices = sampleDevices()[:1]
	result, err = fx.service.Pull(context.Background(), PullRequest{Host: host, User: "admin", Password: "secret"}, apply)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Summary.Removed)

	rows = fx.devices(t)
	require.Len(t, rows, 2)
	assert.ElementsMatch(t, []string{"5f0a", manual.ID}, []string{rows[0].ID, rows[1].ID})
}

func TestPull_Idempotent(t *testing.T) {
	fx := newFixture(t, "k")
	fake := &fakeController{modern: true, devices: sampleDevices()}
	host := fake.start(t)
	req := PullRequest{Host: host, User: "admin", Password: "secret"}

	_, err := fx.service.Pull(context.Background(), req, apply)
	require.NoError(t, err)
	first := fx.devices(t)

	result, err := fx.service.Pull(context.Background(), req, apply)
	require.NoError(t, err)
	assert.Equal(t, reconcile.PlanSummary{TotalItems: 2, Unchanged: 2}, result.Summary)
	assert.Empty(t, result.Actions)
	assert.Equal(t, first, fx.devices(t))
}

func TestPull_AuthFailureLeavesDevicesUntouched(t *testing.T) {
	fx := newFixture(t, "k")
	fake := &fakeController{modern: true, legacy: true, devices: sampleDevices()}
	host := fake.start(t)

	_, err := fx.service.Pull(context.Background(), PullRequest{Host: host, User: "admin", Password: "secret"}, apply)
	require.NoError(t, err)
	before := fx.devices(t)

	_, err = fx.service.Pull(context.Background(), PullRequest{Host: host, User: "admin", Password: "bad"}, apply)
	assert.ErrorIs(t, err, ErrAuthentication)
	assert.Equal(t, before, fx.devices(t))

	// Credentials of the failed attempt are not stored
	creds, err := fx.service.Credentials().Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "secret", creds.Password)
}

func TestPull_DeviceFetchFailureChangesNothing(t *testing.T) {
	fx := newFixture(t, "k")
	fake := &fakeController{modern: true, deviceStatus: http.StatusBadGateway}
	host := fake.start(t)

	_, err := fx.service.Pull(context.Background(), PullRequest{Host: host, User: "admin", Password: "secret"}, apply)
	assert.ErrorIs(t, err, ErrDeviceFetch)
	assert.Empty(t, fx.devices(t))

	_, ok, err := fx.store.Setting(context.Background(), inventory.SettingUnifiHost)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPull_DryRun(t *testing.T) {
	fx := newFixture(t, "k")
	fake := &fakeController{modern: true, devices: sampleDevices()}
	host := fake.start(t)

	result, err := fx.service.Pull(context.Background(), PullRequest{Host: host, User: "admin", Password: "secret"},
		reconcile.ReconcileOptions{DryRun: true, Confirmed: true})
	require.NoError(t, err)
	assert.False(t, result.Applied)
	assert.Equal(t, 2, result.Summary.Added)
	assert.Empty(t, fx.devices(t))
}

func TestPull_DefaultsAndDuplicates(t *testing.T) {
	fx := newFixture(t, "k")
	fake := &fakeController{modern: true, devices: []map[string]any{
		{"_id": "dup", "name": "first"},
		{},
		{"_id": "dup", "name": "second"},
	}}
	host := fake.start(t)

	result, err := fx.service.Pull(context.Background(), PullRequest{Host: host, User: "admin", Password: "secret"}, apply)
	require.NoError(t, err)
	require.Len(t, result.Devices, 2)

	assert.Equal(t, "dup", result.Devices[0].ID)
	assert.Equal(t, "second", result.Devices[0].Name)

	bare := result.Devices[1]
	assert.True(t, identity.HasPrefix(bare.ID, identity.PrefixNetworkDevice))
	assert.Equal(t, "Unknown Device", bare.Name)
	assert.Equal(t, "N/A", bare.IP)
	assert.Equal(t, "UniFi Device", bare.Model)
	assert.Equal(t, "Unifi device", bare.Type)
	assert.Len(t, fx.devices(t), 2)
}

func TestPull_ReusesStoredCredentials(t *testing.T) {
	fx := newFixture(t, "k")
	fake := &fakeController{modern: true, devices: sampleDevices()}
	host := fake.start(t)

	_, err := fx.service.Pull(context.Background(), PullRequest{Host: host, User: "admin", Password: "secret"}, apply)
	require.NoError(t, err)

	stored, _, err := fx.store.Setting(context.Background(), inventory.SettingUnifiPass)
	require.NoError(t, err)
	assert.True(t, secrets.IsSealed(stored))

	_, err = fx.service.Pull(context.Background(), PullRequest{}, apply)
	require.NoError(t, err)
	assert.Equal(t, int32(2), fake.modernLogins.Load())
}

func TestPull_NoKeyDoesNotPersistPassword(t *testing.T) {
	fx := newFixture(t, "")
	fake := &fakeController{modern: true, devices: sampleDevices()}
	host := fake.start(t)

	_, err := fx.service.Pull(context.Background(), PullRequest{Host: host, User: "admin", Password: "secret"}, apply)
	require.NoError(t, err)

	_, ok, err := fx.store.Setting(context.Background(), inventory.SettingUnifiPass)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = fx.service.Pull(context.Background(), PullRequest{Host: host, User: "admin"}, apply)
	var verr *response.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "password")
}

func TestCredentialStore_LegacyPlaintext(t *testing.T) {
	fx := newFixture(t, "k")
	require.NoError(t, inventory.PutSettingsTx(fx.store.DB(), map[string]string{
		inventory.SettingUnifiHost: "ctl.lan",
		inventory.SettingUnifiUser: "admin",
		inventory.SettingUnifiPass: "plain",
	}))

	creds, err := fx.service.Credentials().Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Credentials{Host: "ctl.lan", User: "admin", Password: "plain"}, creds)
	assert.True(t, creds.Complete())
}

func TestPull_ManualIDCollisionIsSkipped(t *testing.T) {
	fx := newFixture(t, "k")
	require.NoError(t, fx.store.DB().Create(&models.NetworkDevice{ID: "5f0a", Name: "Hand", IsManual: true}).Error)
	fake := &fakeController{modern: true, devices: sampleDevices()}
	host := fake.start(t)
	req := PullRequest{Host: host, User: "admin", Password: "secret"}

	result, err := fx.service.Pull(context.Background(), req, apply)
	require.NoError(t, err)
	require.Len(t, result.Devices, 1)
	assert.Equal(t, "5f0b", result.Devices[0].ID)
	assert.Equal(t, reconcile.PlanSummary{TotalItems: 1, Added: 1}, result.Summary)

	rows := fx.devices(t)
	require.Len(t, rows, 2)
	assert.Equal(t, "5f0a", rows[0].ID)
	assert.Equal(t, "Hand", rows[0].Name)
	assert.True(t, rows[0].IsManual)

	// Nothing left to do on the next run
	result, err = fx.service.Pull(context.Background(), req, apply)
	require.NoError(t, err)
	assert.Empty(t, result.Actions)
	assert.Equal(t, reconcile.PlanSummary{TotalItems: 1, Unchanged: 1}, result.Summary)
}

func TestPlanThenApply_WritesPlannedListing(t *testing.T) {
	fx := newFixture(t, "k")
	fake := &fakeController{modern: true, devices: sampleDevices()}
	host := fake.start(t)

	planned, err := fx.service.Plan(context.Background(), PullRequest{Host: host, User: "admin", Password: "secret"})
	require.NoError(t, err)
	assert.False(t, planned.Result.Applied)
	assert.Equal(t, 2, planned.Result.Summary.Added)
	assert.Empty(t, fx.devices(t))

	// The controller changes while the operator confirms
	fake.devices = sampleDevices()[:1]

	result, err := fx.service.Apply(context.Background(), planned)
	require.NoError(t, err)
	assert.True(t, result.Applied)
	assert.Len(t, fx.devices(t), 2)
	assert.Equal(t, int32(1), fake.modernLogins.Load())
	assert.Equal(t, int32(1), fake.deviceCalls.Load())

	creds, err := fx.service.Credentials().Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Credentials{Host: host, User: "admin", Password: "secret"}, creds)
}
