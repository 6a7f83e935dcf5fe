package virtualization

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"

	"nebula/core/transport"
	"nebula/core/utils"
)

var (
	// ErrAuthentication is returned when the ticket request is rejected.
	ErrAuthentication = errors.New("Authentication failed for Proxmox VE.") //nolint:staticcheck // shown to users verbatim
	// ErrRequest is returned when a listing answers with a non-200 status or malformed JSON.
	ErrRequest = errors.New("Proxmox VE request failed") //nolint:staticcheck // shown to users verbatim
	// ErrUnreachable wraps transport failures talking to the cluster.
	ErrUnreachable = errors.New("Proxmox VE unreachable") //nolint:staticcheck // shown to users verbatim
)

const (
	// DefaultPort is the Proxmox VE API port.
	DefaultPort = "8006"
	// DefaultRealm is appended to user names without one.
	DefaultRealm = "pam"

	apiPrefix = "/api2/json"
	gib       = 1 << 30
)

// Workload kinds.
const (
	TypeQEMU = "qemu"
	TypeLXC  = "lxc"
)

// ClientConfig configures a cluster session.
type ClientConfig struct {
	Host string
	Port string
	HTTP transport.Config
}

// Client is a single authenticated session against a Proxmox VE cluster.
type Client struct {
	http    *http.Client
	baseURL string
	ticket  string
}

// NewClient creates a session for cfg.Host. The default port is added when the host
// has none; https is assumed when it has no scheme.
func NewClient(cfg ClientConfig) (*Client, error) {
	hc, err := transport.NewSessionClient(cfg.HTTP)
	if err != nil {
		return nil, err
	}
	return &Client{http: hc, baseURL: baseURL(cfg.Host, cfg.Port)}, nil
}

func baseURL(host, port string) string {
	if port == "" {
		port = DefaultPort
	}

	scheme := "https://"
	host = strings.TrimRight(strings.TrimSpace(host), "/")
	for _, prefix := range []string{"https://", "http://"} {
		if strings.HasPrefix(host, prefix) {
			scheme = prefix
			host = strings.TrimPrefix(host, prefix)
			break
		}
	}

	if _, _, err := net.SplitHostPort(host); err != nil {
		host = net.JoinHostPort(strings.Trim(host, "[]"), port)
	}
	return scheme + host + apiPrefix
}

// qualifyUser appends the default realm to a bare user name.
func qualifyUser(user string) string {
	if strings.Contains(user, "@") {
		return user
	}
	return user + "@" + DefaultRealm
}

// Login requests an authentication ticket.
func (c *Client) Login(ctx context.Context, user, password string) error {
	form := url.Values{}
	form.Set("username", qualifyUser(user))
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/access/ticket", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ErrAuthentication
	}

	var payload struct {
		Data struct {
			Ticket string `json:"ticket"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil || payload.Data.Ticket == "" {
		return ErrAuthentication
	}
	c.ticket = payload.Data.Ticket
	return nil
}

// get decodes the data member of GET path into out.
func (c *Client) get(ctx context.Context, path string, out any) error {
	if c.ticket == "" {
		return ErrAuthentication
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	req.AddCookie(&http.Cookie{Name: "PVEAuthCookie", Value: c.ticket})

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: GET %s: status %d", ErrRequest, path, resp.StatusCode)
	}

	var payload struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fmt.Errorf("%w: GET %s: %v", ErrRequest, path, err)
	}
	if err := json.Unmarshal(payload.Data, out); err != nil {
		return fmt.Errorf("%w: GET %s: %v", ErrRequest, path, err)
	}
	return nil
}

// Nodes lists the cluster node names.
func (c *Client) Nodes(ctx context.Context) ([]string, error) {
	var nodes []struct {
		Node string `json:"node"`
	}
	if err := c.get(ctx, "/nodes", &nodes); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(nodes))
	for _, n := range nodes {
		names = append(names, n.Node)
	}
	return names, nil
}

// Workloads lists the guests of kind on node.
func (c *Client) Workloads(ctx context.Context, node, kind string) ([]Workload, error) {
	var raw []map[string]any
	if err := c.get(ctx, "/nodes/"+url.PathEscape(node)+"/"+kind, &raw); err != nil {
		return nil, err
	}

	out := make([]Workload, 0, len(raw))
	for _, r := range raw {
		out = append(out, toWorkload(r, kind))
	}
	return out, nil
}

// toWorkload maps one listing entry. Memory and disk are reported in GiB.
func toWorkload(r map[string]any, kind string) Workload {
	cpu := 1
	if v, ok := r["cpus"]; ok && v != nil {
		cpu = utils.ToInt(v)
	}
	return Workload{
		VMID:    utils.ToInt(r["vmid"]),
		Name:    utils.ToString(r["name"]),
		CPU:     cpu,
		RAM:     utils.RoundTo(utils.ToFloat64(r["maxmem"])/gib, 2),
		Storage: utils.RoundTo(utils.ToFloat64(r["maxdisk"])/gib, 2),
		Type:    kind,
	}
}

// IsDiscoveryError reports whether err came from talking to the cluster.
func IsDiscoveryError(err error) bool {
	return errors.Is(err, ErrAuthentication) || errors.Is(err, ErrRequest) || errors.Is(err, ErrUnreachable)
}
