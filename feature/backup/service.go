package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"time"

	"nebula/core/response"
	"nebula/core/storage"
	"nebula/feature/inventory"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

const (
	// Prefix is the folder backups are written to.
	Prefix = "backups/"

	namePrefix = "inventory-"
	nameSuffix = ".json"
	timeLayout = "20060102T150405.000Z"
)

// ErrNotFound is returned when a backup does not exist.
var ErrNotFound = errors.New("backup not found")

// Info describes a stored backup.
type Info struct {
	Name         string    `json:"name"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// Service writes inventory snapshots to object storage.
type Service struct {
	client storage.Client
	bucket string
	retain int
	store  *inventory.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a new backup service.
func NewService(client storage.Client, cfg storage.Config, store *inventory.Store, logger *zap.Logger) *Service {
	return &Service{
		client: client,
		bucket: cfg.Bucket,
		retain: cfg.Retain,
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Create uploads a JSON snapshot of the inventory and prunes old backups.
func (s *Service) Create(ctx context.Context) (*Info, error) {
	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err := s.ensureBucket(ctx); err != nil {
		return nil, err
	}

	taken := s.now().UTC()
	name := namePrefix + taken.Format(timeLayout) + nameSuffix
	_, err = s.client.PutObject(ctx, s.bucket, Prefix+name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload backup: %w", err)
	}
	s.logger.Info("Backup created", zap.String("name", name), zap.Int("bytes", len(data)))

	if err := s.prune(ctx); err != nil {
		// The new backup is safe; only the cleanup failed
		s.logger.Warn("Failed to prune old backups", zap.Error(err))
	}

	return &Info{Name: name, Size: int64(len(data)), LastModified: taken}, nil
}

func (s *Service) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
	}
	s.logger.Info("Created backup bucket", zap.String("bucket", s.bucket))
	return nil
}

// List returns the stored backups, newest first.
func (s *Service) List(ctx context.Context) ([]Info, error) {
	opts := minio.ListObjectsOptions{
		Prefix:    Prefix,
		Recursive: true,
	}

	backups := []Info{}
	for obj := range s.client.ListObjects(ctx, s.bucket, opts) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list backups: %w", obj.Err)
		}
		name := path.Base(obj.Key)
		if !validName(name) {
			continue
		}
		backups = append(backups, Info{Name: name, Size: obj.Size, LastModified: obj.LastModified})
	}

	// Names embed the UTC timestamp, so they sort chronologically
	sort.Slice(backups, func(i, j int) bool {
		return backups[i].Name > backups[j].Name
	})
	return backups, nil
}

// Get returns the content of the named backup.
func (s *Service) Get(ctx context.Context, name string) ([]byte, error) {
	if !validName(name) {
		verr := response.NewValidationError()
		verr.Add("name", "must look like inventory-<timestamp>.json")
		return nil, verr
	}

	obj, err := s.client.GetObject(ctx, s.bucket, Prefix+name, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to open backup %s: %w", name, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read backup %s: %w", name, err)
	}
	return data, nil
}

// prune removes the oldest backups beyond the retention count. Zero keeps everything.
func (s *Service) prune(ctx context.Context) error {
	if s.retain <= 0 {
		return nil
	}

	backups, err := s.List(ctx)
	if err != nil {
		return err
	}
	if len(backups) <= s.retain {
		return nil
	}

	for _, b := range backups[s.retain:] {
		if err := s.client.RemoveObject(ctx, s.bucket, Prefix+b.Name, minio.RemoveObjectOptions{}); err != nil {
			return fmt.Errorf("failed to remove backup %s: %w", b.Name, err)
		}
		s.logger.Info("Pruned backup", zap.String("name", b.Name))
	}
	return nil
}

func validName(name string) bool {
	return strings.HasPrefix(name, namePrefix) &&
		strings.HasSuffix(name, nameSuffix) &&
		!strings.ContainsAny(name, `/\`)
}
