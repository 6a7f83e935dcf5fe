package virtualization

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postVMs(t *testing.T, body string) (int, map[string]any) {
	t.Helper()
	app := fiber.New()
	require.NoError(t, NewFeature(Config{HTTP: testHTTP}, nil).Load(app))

	req := httptest.NewRequest("POST", "/api/proxmox/vms", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, 10000)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestHandleListVMs_Success(t *testing.T) {
	host := (&fakeCluster{}).start(t)

	status, out := postVMs(t, `{"host":"`+host+`","user":"root","password":"secret"}`)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, out["success"])
	vms := out["vms"].([]any)
	require.Len(t, vms, 3)
	assert.Equal(t, "web", vms[0].(map[string]any)["name"])
}

func TestHandleListVMs_ClusterErrorKeepsEnvelope(t *testing.T) {
	host := (&fakeCluster{}).start(t)

	status, out := postVMs(t, `{"host":"`+host+`","user":"root","password":"bad"}`)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "Authentication failed for Proxmox VE.", out["error"])
}

func TestHandleListVMs_MissingFields(t *testing.T) {
	status, out := postVMs(t, `{"user":"root"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, out["fields"], "host")
}

func TestHandleListVMs_InvalidHostKeepsEnvelope(t *testing.T) {
	status, out := postVMs(t, `{"host":"bad host","user":"root","password":"secret"}`)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, false, out["success"])
	assert.Contains(t, out["error"], "Proxmox VE unreachable")
}
