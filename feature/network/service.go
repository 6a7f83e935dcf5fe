package network

import (
	"context"

	"nebula/core/metrics"
	"nebula/core/reconcile"
	"nebula/core/response"
	"nebula/core/transport"
	"nebula/feature/inventory"
	"nebula/feature/inventory/models"

	"go.uber.org/zap"
)

// Config configures controller syncs.
type Config struct {
	Site string
	HTTP transport.Config
}

// PullRequest is the body of POST /api/unifi/pull.
// An empty password reuses the stored credentials.
type PullRequest struct {
	Host     string `json:"host"`
	User     string `json:"user"`
	Password string `json:"password"`
}

// PullResult is the outcome of a sync.
type PullResult struct {
	Devices []models.NetworkDevice `json:"devices"`
	Summary reconcile.PlanSummary  `json:"summary"`
	Actions []reconcile.Action     `json:"actions"`
	Variant string                 `json:"variant"`
	Applied bool                   `json:"applied"`
}

// Service runs controller syncs.
type Service struct {
	store      *inventory.Store
	creds      *CredentialStore
	negotiator *Negotiator
	cfg        Config
	logger     *zap.Logger
}

// NewService creates a new network sync service.
func NewService(store *inventory.Store, creds *CredentialStore, cfg Config, logger *zap.Logger) *Service {
	return &Service{
		store:      store,
		creds:      creds,
		negotiator: NewNegotiator(),
		cfg:        cfg,
		logger:     logger,
	}
}

// Credentials returns the credential store.
func (s *Service) Credentials() *CredentialStore {
	return s.creds
}

// resolve fills missing fields from the stored credentials.
func (s *Service) resolve(ctx context.Context, req PullRequest) (Credentials, error) {
	creds := Credentials{Host: req.Host, User: req.User, Password: req.Password}

	if creds.Password == "" {
		stored, err := s.creds.Load(ctx)
		if err != nil {
			return Credentials{}, err
		}
		sameTarget := (creds.Host == "" || creds.Host == stored.Host) && (creds.User == "" || creds.User == stored.User)
		if sameTarget {
			creds = stored
		}
	}

	verr := response.NewValidationError()
	verr.Require("host", creds.Host)
	verr.Require("user", creds.User)
	verr.Require("password", creds.Password)
	if err := verr.OrNil(); err != nil {
		return Credentials{}, err
	}
	return creds, nil
}

// PlannedPull is a computed sync waiting for confirmation. Apply writes exactly
// the devices it holds.
type PlannedPull struct {
	Result *PullResult

	creds  Credentials
	client *Client
	spec   *reconcile.Spec
	plan   *reconcile.ReconcilePlan
}

// prepare resolves credentials and builds the reconcile spec for one sync.
func (s *Service) prepare(ctx context.Context, req PullRequest) (Credentials, *Client, *reconcile.Spec, error) {
	creds, err := s.resolve(ctx, req)
	if err != nil {
		return Credentials{}, nil, nil, err
	}

	client, err := NewClient(ClientConfig{Host: creds.Host, Site: s.cfg.Site, HTTP: s.cfg.HTTP}, s.negotiator)
	if err != nil {
		return Credentials{}, nil, nil, err
	}

	spec := &reconcile.Spec{
		Adapter:   NewAdapter(client, creds.User, creds.Password, s.store, s.logger),
		LockKey:   "unifi",
		OnApplied: s.creds.Hook(creds),
	}
	return creds, client, spec, nil
}

// Pull syncs the non-manual network devices with the controller. With opts.DryRun or
// without opts.Confirmed only the plan is computed.
func (s *Service) Pull(ctx context.Context, req PullRequest, opts reconcile.ReconcileOptions) (*PullResult, error) {
	creds, client, spec, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	l := s.logger.With(zap.String("host", creds.Host), zap.Bool("dry_run", opts.DryRun))
	timer := metrics.NewTimer()

	plan, written, err := reconcile.ReconcileAndApply(ctx, spec, s.store.DB(), opts)
	s.record(timer, plan, err)
	if err != nil {
		l.Warn("Controller sync failed", zap.Error(err))
		return nil, err
	}

	applied := opts.Confirmed && !opts.DryRun
	s.finished(l, client, plan, written, applied)
	return newPullResult(client, plan, applied), nil
}

// Plan discovers and compares without writing. The returned plan can be applied
// later with Apply, without asking the controller again.
func (s *Service) Plan(ctx context.Context, req PullRequest) (*PlannedPull, error) {
	creds, client, spec, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	timer := metrics.NewTimer()
	plan, err := reconcile.ReconcileWithPlan(ctx, spec, s.store.DB())
	s.record(timer, plan, err)
	if err != nil {
		s.logger.Warn("Controller sync planning failed", zap.String("host", creds.Host), zap.Error(err))
		return nil, err
	}

	return &PlannedPull{
		Result: newPullResult(client, plan, false),
		creds:  creds,
		client: client,
		spec:   spec,
		plan:   plan,
	}, nil
}

// Apply writes a plan returned by Plan.
func (s *Service) Apply(ctx context.Context, p *PlannedPull) (*PullResult, error) {
	l := s.logger.With(zap.String("host", p.creds.Host), zap.Bool("dry_run", false))

	written, err := reconcile.ApplyPlanLocked(ctx, p.spec, s.store.DB(), p.plan, reconcile.ReconcileOptions{Confirmed: true})
	if err != nil {
		l.Warn("Controller sync failed", zap.Error(err))
		return nil, err
	}

	s.finished(l, p.client, p.plan, written, true)
	return newPullResult(p.client, p.plan, true), nil
}

func (s *Service) record(timer *metrics.Timer, plan *reconcile.ReconcilePlan, err error) {
	discovered := 0
	if plan != nil {
		discovered = len(plan.Discovered)
	}
	metrics.RecordSync("unifi", timer, discovered, err)
}

func (s *Service) finished(l *zap.Logger, client *Client, plan *reconcile.ReconcilePlan, written int, applied bool) {
	l.Info("Controller sync finished",
		zap.String("variant", client.Variant().String()),
		zap.Int("devices", len(plan.Discovered)),
		zap.Int("written", written),
		zap.Int("added", plan.Summary.Added),
		zap.Int("removed", plan.Summary.Removed),
		zap.Int("updated", plan.Summary.Updated),
		zap.Bool("applied", applied),
	)
	if applied && !s.creds.CanPersistPassword() {
		l.Warn("Controller password not persisted; set SECRETS_KEY to keep it across restarts")
	}
}

func newPullResult(client *Client, plan *reconcile.ReconcilePlan, applied bool) *PullResult {
	devices := make([]models.NetworkDevice, 0, len(plan.Discovered))
	for _, item := range plan.Discovered {
		devices = append(devices, item.(models.NetworkDevice))
	}
	return &PullResult{
		Devices: devices,
		Summary: plan.Summary,
		Actions: plan.Actions,
		Variant: client.Variant().String(),
		Applied: applied,
	}
}
