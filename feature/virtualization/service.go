package virtualization

import (
	"context"
	"crypto/sha256"
	"fmt"

	"nebula/core/metrics"
	"nebula/core/response"
	"nebula/core/transport"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Config configures cluster discovery.
type Config struct {
	Port string
	HTTP transport.Config
}

// Request is the body of POST /api/proxmox/vms.
type Request struct {
	Host     string `json:"host"`
	User     string `json:"user"`
	Password string `json:"password"`
}

// Service lists cluster workloads. It never writes the inventory.
type Service struct {
	cfg    Config
	logger *zap.Logger
	group  singleflight.Group
}

// NewService creates a new discovery service.
func NewService(cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{cfg: cfg, logger: logger}
}

func (r Request) validate() error {
	verr := response.NewValidationError()
	verr.Require("host", r.Host)
	verr.Require("user", r.User)
	verr.Require("password", r.Password)
	return verr.OrNil()
}

// flightKey identifies identical requests without keeping the password in clear.
func (r Request) flightKey() string {
	return fmt.Sprintf("%s\x00%s\x00%x", r.Host, r.User, sha256.Sum256([]byte(r.Password)))
}

// Discover lists every qemu and lxc guest of every node. Identical concurrent requests
// share one run; the result is not kept once the run finishes.
func (s *Service) Discover(ctx context.Context, req Request) ([]Workload, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	// The shared run must not die with the first caller's request
	runCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(req.flightKey(), func() (any, error) {
		return s.discover(runCtx, req)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]Workload), nil
	}
}

func (s *Service) discover(ctx context.Context, req Request) ([]Workload, error) {
	l := s.logger.With(zap.String("host", req.Host))
	timer := metrics.NewTimer()

	vms, err := s.list(ctx, req)
	metrics.RecordSync("proxmox", timer, len(vms), err)
	if err != nil {
		l.Warn("Proxmox discovery failed", zap.Error(err))
		return nil, err
	}

	l.Info("Proxmox discovery finished", zap.Int("workloads", len(vms)), zap.Duration("took", timer.Duration()))
	return vms, nil
}

// list stops at the first failing call.
func (s *Service) list(ctx context.Context, req Request) ([]Workload, error) {
	client, err := NewClient(ClientConfig{Host: req.Host, Port: s.cfg.Port, HTTP: s.cfg.HTTP})
	if err != nil {
		return nil, err
	}
	if err := client.Login(ctx, req.User, req.Password); err != nil {
		return nil, err
	}

	nodes, err := client.Nodes(ctx)
	if err != nil {
		return nil, err
	}

	vms := []Workload{}
	for _, node := range nodes {
		for _, kind := range []string{TypeQEMU, TypeLXC} {
			found, err := client.Workloads(ctx, node, kind)
			if err != nil {
				return nil, err
			}
			vms = append(vms, found...)
		}
	}
	return vms, nil
}
