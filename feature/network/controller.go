package network

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"nebula/core/transport"
)

var (
	// ErrAuthentication is returned when neither login variant is accepted.
	ErrAuthentication = errors.New("Authentication failed for UniFi Controller.") //nolint:staticcheck // shown to users verbatim
	// ErrDeviceFetch is returned when the device listing is not a 200 JSON document.
	ErrDeviceFetch = errors.New("failed to fetch devices from UniFi Controller")
	// ErrUnreachable wraps transport failures talking to the controller.
	ErrUnreachable = errors.New("UniFi Controller unreachable")
)

// Variant is one of the two controller API shapes.
type Variant int

const (
	// VariantModern is UniFi OS (UDM, Cloud Key Gen2+): /api/auth/login and /proxy/network paths.
	VariantModern Variant = iota
	// VariantLegacy is the standalone Network application: /api/login and /api/s paths.
	VariantLegacy
)

func (v Variant) String() string {
	if v == VariantLegacy {
		return "legacy"
	}
	return "modern"
}

func (v Variant) loginPath() string {
	if v == VariantLegacy {
		return "/api/login"
	}
	return "/api/auth/login"
}

func (v Variant) devicePath(site string) string {
	if v == VariantLegacy {
		return "/api/s/" + site + "/stat/device"
	}
	return "/proxy/network/api/s/" + site + "/stat/device"
}

// Negotiator picks the order in which variants are tried and remembers, per host,
// the one that last succeeded.
type Negotiator struct {
	mu         sync.RWMutex
	remembered map[string]Variant
}

// NewNegotiator creates a Negotiator with no history.
func NewNegotiator() *Negotiator {
	return &Negotiator{remembered: make(map[string]Variant)}
}

// Order returns the variants to try for host: the remembered one first, then modern, then legacy.
func (n *Negotiator) Order(host string) []Variant {
	n.mu.RLock()
	v, ok := n.remembered[host]
	n.mu.RUnlock()

	if ok && v == VariantLegacy {
		return []Variant{VariantLegacy, VariantModern}
	}
	return []Variant{VariantModern, VariantLegacy}
}

// Remember records the variant that accepted a login on host.
func (n *Negotiator) Remember(host string, v Variant) {
	n.mu.Lock()
	n.remembered[host] = v
	n.mu.Unlock()
}

// RawDevice is one entry of the controller's stat/device listing.
type RawDevice struct {
	ID     string `json:"_id"`
	Name   string `json:"name"`
	IP     string `json:"ip"`
	Model  string `json:"model"`
	Type   string `json:"type"`
	Serial string `json:"serial"`
}

// ClientConfig configures a controller session.
type ClientConfig struct {
	Host string
	Site string
	HTTP transport.Config
}

// Client is a single authenticated session against a controller.
type Client struct {
	http       *http.Client
	host       string
	baseURL    string
	site       string
	negotiator *Negotiator
	variant    Variant
	loggedIn   bool
}

// NewClient creates a session for cfg.Host. The host may carry a port and a scheme;
// https is assumed otherwise.
func NewClient(cfg ClientConfig, negotiator *Negotiator) (*Client, error) {
	hc, err := transport.NewSessionClient(cfg.HTTP)
	if err != nil {
		return nil, err
	}
	if negotiator == nil {
		negotiator = NewNegotiator()
	}
	site := cfg.Site
	if site == "" {
		site = "default"
	}

	host := strings.TrimRight(strings.TrimSpace(cfg.Host), "/")
	base := host
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}

	return &Client{
		http:       hc,
		host:       host,
		baseURL:    base,
		site:       site,
		negotiator: negotiator,
	}, nil
}

// Variant returns the variant negotiated by Login.
func (c *Client) Variant() Variant {
	return c.variant
}

// Login tries each variant in negotiated order. A non-200 answer moves on to the
// next variant; a transport error aborts immediately.
func (c *Client) Login(ctx context.Context, user, password string) (Variant, error) {
	body, err := json.Marshal(map[string]string{"username": user, "password": password})
	if err != nil {
		return 0, err
	}

	for _, v := range c.negotiator.Order(c.host) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+v.loginPath(), bytes.NewReader(body))
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrUnreachable, err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrUnreachable, err)
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusOK {
			c.variant = v
			c.loggedIn = true
			c.negotiator.Remember(c.host, v)
			return v, nil
		}
	}
	return 0, ErrAuthentication
}

// Devices lists the devices of the configured site. Login must have succeeded.
func (c *Client) Devices(ctx context.Context) ([]RawDevice, error) {
	if !c.loggedIn {
		return nil, ErrAuthentication
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+c.variant.devicePath(c.site), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrDeviceFetch, resp.StatusCode)
	}

	var payload struct {
		Data []RawDevice `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeviceFetch, err)
	}
	return payload.Data, nil
}

// IsDiscoveryError reports whether err came from talking to the controller
// rather than from the store.
func IsDiscoveryError(err error) bool {
	return errors.Is(err, ErrAuthentication) || errors.Is(err, ErrDeviceFetch) || errors.Is(err, ErrUnreachable)
}
