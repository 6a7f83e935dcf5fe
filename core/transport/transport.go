package transport

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"net/http/cookiejar"
	"time"
)

// Config holds settings for outbound HTTP clients.
type Config struct {
	// TimeoutSeconds bounds connection setup, TLS handshake and the whole request.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// InsecureSkipVerify disables certificate checks; controllers usually run self-signed certificates.
	InsecureSkipVerify bool `mapstructure:"insecure_skip_verify" default:"true"`
}

// Timeout returns the configured timeout, defaulting to 30 seconds.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// NewTransport creates an http.Transport with strict timeouts.
func NewTransport(timeout time.Duration, insecure bool) *http.Transport {
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   timeout, // Connection setup timeout
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   timeout,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: timeout, // Wait for first response byte
	}
	if insecure {
		t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // self-signed controllers
	}
	return t
}

// NewSessionClient returns an http.Client with its own cookie jar.
// Each discovery run gets a fresh client so sessions never leak between requests.
func NewSessionClient(cfg Config) (*http.Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	return &http.Client{
		Transport: NewTransport(cfg.Timeout(), cfg.InsecureSkipVerify),
		Jar:       jar,
		Timeout:   cfg.Timeout(),
	}, nil
}
