package transport

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Timeout(t *testing.T) {
	assert.Equal(t, 30*time.Second, Config{}.Timeout())
	assert.Equal(t, 5*time.Second, Config{TimeoutSeconds: 5}.Timeout())
}

func TestNewTransport(t *testing.T) {
	secure := NewTransport(time.Second, false)
	assert.Nil(t, secure.TLSClientConfig)
	assert.Equal(t, time.Second, secure.TLSHandshakeTimeout)

	insecure := NewTransport(time.Second, true)
	require.NotNil(t, insecure.TLSClientConfig)
	assert.True(t, insecure.TLSClientConfig.InsecureSkipVerify)
}

func TestNewSessionClient_KeepsCookies(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/login" {
			http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc", Path: "/"})
			return
		}
		if c, err := r.Cookie("session"); err != nil || c.Value != "abc" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client, err := NewSessionClient(Config{TimeoutSeconds: 5, InsecureSkipVerify: true})
	require.NoError(t, err)

	resp, err := client.Get(srv.URL + "/login")
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = client.Get(srv.URL + "/data")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
