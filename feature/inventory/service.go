package inventory

import (
	"context"
	"fmt"
	"io"

	"nebula/feature/inventory/models"

	"go.uber.org/zap"
)

// Service validates requests and runs them against the Store.
type Service struct {
	store  *Store
	logger *zap.Logger
}

// NewService creates a new inventory service.
func NewService(store *Store, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Store returns the underlying store.
func (s *Service) Store() *Store {
	return s.store
}

// Snapshot returns the whole inventory.
func (s *Service) Snapshot(ctx context.Context) (*models.Snapshot, error) {
	return s.store.Snapshot(ctx)
}

// CreateRack validates and stores a new rack.
func (s *Service) CreateRack(ctx context.Context, in RackInput) (*models.Rack, error) {
	rack, err := in.Rack()
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateRack(ctx, rack); err != nil {
		return nil, fmt.Errorf("failed to create rack: %w", err)
	}
	return rack, nil
}

// UpdateRack replaces a rack's fields.
func (s *Service) UpdateRack(ctx context.Context, id string, in RackInput) error {
	rack, err := in.Rack()
	if err != nil {
		return err
	}
	found, err := s.store.UpdateRack(ctx, id, rack)
	return s.updated("rack", id, found, err)
}

// DeleteRack deletes a rack, cascading to its servers when asked.
func (s *Service) DeleteRack(ctx context.Context, id string, cascade bool) error {
	if err := s.store.DeleteRack(ctx, id, cascade); err != nil {
		return fmt.Errorf("failed to delete rack: %w", err)
	}
	return nil
}

// CreateServer validates and stores a new server.
func (s *Service) CreateServer(ctx context.Context, in ServerInput) (*models.Server, error) {
	server, err := in.Server()
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateServer(ctx, server); err != nil {
		return nil, fmt.Errorf("failed to create server: %w", err)
	}
	return server, nil
}

// UpdateServer replaces a server's fields.
func (s *Service) UpdateServer(ctx context.Context, id string, in ServerInput) error {
	server, err := in.Server()
	if err != nil {
		return err
	}
	found, err := s.store.UpdateServer(ctx, id, server)
	return s.updated("server", id, found, err)
}

// DeleteServer deletes a server and its services.
func (s *Service) DeleteServer(ctx context.Context, id string) error {
	if err := s.store.DeleteServer(ctx, id); err != nil {
		return fmt.Errorf("failed to delete server: %w", err)
	}
	return nil
}

// CreateService validates and stores a new service.
func (s *Service) CreateService(ctx context.Context, in ServiceInput) (*models.Service, error) {
	svc, err := in.Service(true)
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateService(ctx, svc); err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}
	return svc, nil
}

// UpdateService replaces a service's fields.
func (s *Service) UpdateService(ctx context.Context, id string, in ServiceInput) error {
	svc, err := in.Service(false)
	if err != nil {
		return err
	}
	found, err := s.store.UpdateService(ctx, id, svc)
	return s.updated("service", id, found, err)
}

// DeleteService deletes a service.
func (s *Service) DeleteService(ctx context.Context, id string) error {
	if err := s.store.DeleteService(ctx, id); err != nil {
		return fmt.Errorf("failed to delete service: %w", err)
	}
	return nil
}

// CreateNetworkDevice validates and stores a new manual device.
func (s *Service) CreateNetworkDevice(ctx context.Context, in NetworkDeviceInput) (*models.NetworkDevice, error) {
	dev, err := in.NetworkDevice()
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateNetworkDevice(ctx, dev); err != nil {
		return nil, fmt.Errorf("failed to create network device: %w", err)
	}
	return dev, nil
}

// UpdateNetworkDevice replaces a device's fields.
func (s *Service) UpdateNetworkDevice(ctx context.Context, id string, in NetworkDeviceInput) error {
	dev, err := in.NetworkDevice()
	if err != nil {
		return err
	}
	found, err := s.store.UpdateNetworkDevice(ctx, id, dev)
	return s.updated("network device", id, found, err)
}

// DeleteNetworkDevice deletes a device.
func (s *Service) DeleteNetworkDevice(ctx context.Context, id string) error {
	if err := s.store.DeleteNetworkDevice(ctx, id); err != nil {
		return fmt.Errorf("failed to delete network device: %w", err)
	}
	return nil
}

// PutSettings stores every key of body as text.
func (s *Service) PutSettings(ctx context.Context, body map[string]any) error {
	values, err := SettingsInput(body)
	if err != nil {
		return err
	}
	if err := s.store.PutSettings(ctx, values); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// Reset wipes the inventory and reseeds the demo rows.
func (s *Service) Reset(ctx context.Context) error {
	if err := s.store.Reset(ctx); err != nil {
		return err
	}
	s.logger.Info("Inventory reset to demo data")
	return nil
}

// ExportCSV writes the service export as CSV.
func (s *Service) ExportCSV(ctx context.Context, w io.Writer) error {
	rows, err := s.store.ExportRows(ctx)
	if err != nil {
		return err
	}
	return WriteCSV(w, rows)
}

// ExportXLSX writes the service export as an Excel workbook.
func (s *Service) ExportXLSX(ctx context.Context, w io.Writer) error {
	rows, err := s.store.ExportRows(ctx)
	if err != nil {
		return err
	}
	return WriteXLSX(w, rows)
}

func (s *Service) updated(kind, id string, found bool, err error) error {
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", kind, err)
	}
	if !found {
		s.logger.Debug("Update matched no row", zap.String("kind", kind), zap.String("id", id))
	}
	return nil
}
