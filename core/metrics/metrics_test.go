package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimerDuration(t *testing.T) {
	timer := NewTimer()
	time.Sleep(10 * time.Millisecond)
	assert.GreaterOrEqual(t, timer.Duration(), 10*time.Millisecond)
}

func TestRecordSync(t *testing.T) {
	before := testutil.ToFloat64(SyncTotal.WithLabelValues("test", "success"))
	RecordSync("test", NewTimer(), 3, nil)
	assert.Equal(t, before+1, testutil.ToFloat64(SyncTotal.WithLabelValues("test", "success")))
	assert.Equal(t, 3.0, testutil.ToFloat64(DiscoveredItems.WithLabelValues("test")))

	failures := testutil.ToFloat64(SyncTotal.WithLabelValues("test", "failure"))
	RecordSync("test", NewTimer(), 0, errors.New("boom"))
	assert.Equal(t, failures+1, testutil.ToFloat64(SyncTotal.WithLabelValues("test", "failure")))
	assert.Equal(t, 3.0, testutil.ToFloat64(DiscoveredItems.WithLabelValues("test")), "failed runs keep the last count")
}

func TestMiddlewareAndHandler(t *testing.T) {
	app := fiber.New()
	app.Use(Middleware())
	app.Get("/teapot", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusTeapot) })
	app.Get("/metrics", Handler())

	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "418"))
	_, err := app.Test(httptest.NewRequest("GET", "/teapot", nil))
	require.NoError(t, err)
	assert.Equal(t, before+1, testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "418")))

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "nebula_api_requests_total")
}
