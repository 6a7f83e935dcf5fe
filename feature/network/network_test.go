package network

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"nebula/core/database"
	"nebula/core/identity"
	"nebula/core/reconcile"
	"nebula/core/secrets"
	"nebula/core/transport"
	"nebula/feature/inventory"
	"nebula/feature/inventory/models"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeController emulates the login and device endpoints of both controller shapes.
type fakeController struct {
	modern       bool
	legacy       bool
	deviceStatus int
	devices      []map[string]any

	modernLogins atomic.Int32
	legacyLogins atomic.Int32
	deviceCalls  atomic.Int32
	lastDevPath  atomic.Value
}

func (f *fakeController) login(enabled bool, counter *atomic.Int32) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		counter.Add(1)
		var body struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)

		if !enabled {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if body.Username != "admin" || body.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "TOKEN", Value: "session", Path: "/"})
		w.WriteHeader(http.StatusOK)
	}
}

func (f *fakeController) list(w http.ResponseWriter, r *http.Request) {
	f.deviceCalls.Add(1)
	f.lastDevPath.Store(r.URL.Path)
	if _, err := r.Cookie("TOKEN"); err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if f.deviceStatus != 0 && f.deviceStatus != http.StatusOK {
		w.WriteHeader(f.deviceStatus)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"meta": map[string]any{"rc": "ok"}, "data": f.devices})
}

// start serves the fake over TLS and returns the host:port to dial.
func (f *fakeController) start(t *testing.T) string {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", f.login(f.modern, &f.modernLogins))
	mux.HandleFunc("/api/login", f.login(f.legacy, &f.legacyLogins))
	mux.HandleFunc("/proxy/network/api/s/default/stat/device", f.list)
	mux.HandleFunc("/api/s/default/stat/device", f.list)

	srv := httptest.NewTLSServer(mux)
	t.Cleanup(srv.Close)
	return strings.TrimPrefix(srv.URL, "https://")
}

var testHTTP = transport.Config{TimeoutSeconds: 5, InsecureSkipVerify: true}

type fixture struct {
	store   *inventory.Store
	service *Service
}

func newFixture(t *testing.T, key string) *fixture {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, inventory.Migrate(context.Background(), db))

	store := inventory.NewStore(db, identity.New())
	creds := NewCredentialStore(store, secrets.NewBox(secrets.Config{Key: key}), zap.NewNop())
	svc := NewService(store, creds, Config{Site: "default", HTTP: testHTTP}, zap.NewNop())
	return &fixture{store: store, service: svc}
}

func (fx *fixture) devices(t *testing.T) []models.NetworkDevice {
	t.Helper()
	var out []models.NetworkDevice
	require.NoError(t, fx.store.DB().Order("id").Find(&out).Error)
	return out
}

func (fx *fixture) addManual(t *testing.T, name string) models.NetworkDevice {
	t.Helper()
	dev := models.NetworkDevice{Name: name, Type: "patch panel"}
	require.NoError(t, fx.store.CreateNetworkDevice(context.Background(), &dev))
	return dev
}

var apply = reconcile.ReconcileOptions{Confirmed: true}

func sampleDevices() []map[string]any {
	return []map[string]any{
		{"_id": "5f0a", "name": "Core Switch", "ip": "10.0.0.2", "model": "USW-Pro-24", "type": "usw", "serial": "F09FC2AA"},
		{"_id": "5f0b", "name": "", "ip": "10.0.0.3", "model": "U6-LR", "type": "uap"},
	}
}
