package backup

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"nebula/core/storage/mocks"

	"github.com/gofiber/fiber/v2"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestApp(svc *Service) *fiber.App {
	app := fiber.New()
	NewHandler(svc).RegisterRoutes(app)
	return app
}

func TestHandleCreateAndList(t *testing.T) {
	client := new(mocks.Client)
	app := newTestApp(newTestService(t, client, 0))

	client.On("BucketExists", mock.Anything, "inventory").Return(true, nil)
	client.On("PutObject", mock.Anything, "inventory", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, nil)
	client.On("ListObjects", mock.Anything, "inventory", mock.Anything).
		Return(objects("backups/inventory-20260314T092653.589Z.json"))

	resp, err := app.Test(httptest.NewRequest("POST", "/api/backups", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var created map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.Equal(t, true, created["success"])
	assert.Equal(t, "inventory-20260314T092653.589Z.json", created["backup"].(map[string]any)["name"])

	resp, err = app.Test(httptest.NewRequest("GET", "/api/backups", nil))
	require.NoError(t, err)
	var listed map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listed))
	assert.Len(t, listed["backups"], 1)
}

func TestHandleGet(t *testing.T) {
	client := new(mocks.Client)
	app := newTestApp(newTestService(t, client, 0))
	client.On("GetObject", mock.Anything, "inventory", "backups/inventory-1.json", mock.Anything).
		Return(io.NopCloser(strings.NewReader(`{"racks":[]}`)), nil)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/backups/inventory-1.json", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "inventory-1.json")

	body, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"racks":[]}`, string(body))

	resp, err = app.Test(httptest.NewRequest("GET", "/api/backups/secrets.txt", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
