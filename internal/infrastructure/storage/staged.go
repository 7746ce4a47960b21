package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/yithril/docpipeline/internal/core/domain"
)

// ObjectStore is the backend contract behind the staged store: a flat
// keyspace per stage. Implementations map a stage to a directory
// (localfs) or a bucket (gcs).
type ObjectStore interface {
	EnsureStage(ctx context.Context, stage string) error
	Save(ctx context.Context, stage, key string, data io.Reader) error
	Open(ctx context.Context, stage, key string) (io.ReadCloser, error)
	Exists(ctx context.Context, stage, key string) (bool, error)
	Copy(ctx context.Context, fromStage, toStage, key string) error
	Delete(ctx context.Context, stage, key string) error
}

// StagedStore exposes the backend through the pipeline's stage
// taxonomy. Keys are stable across stages; copying never renames.
type StagedStore struct {
	backend      ObjectStore
	pollInterval time.Duration
	pollDeadline time.Duration
}

func NewStagedStore(backend ObjectStore) *StagedStore {
	return &StagedStore{
		backend:      backend,
		pollInterval: 200 * time.Millisecond,
		pollDeadline: 30 * time.Second,
	}
}

// EnsureAllStages creates every stage container. Safe to call from
// multiple workers at once.
func (s *StagedStore) EnsureAllStages(ctx context.Context) error {
	for _, stage := range domain.AllStorageStages() {
		if err := s.EnsureStage(ctx, stage); err != nil {
			return err
		}
	}
	return nil
}

func (s *StagedStore) EnsureStage(ctx context.Context, stage domain.StorageStage) error {
	if err := s.backend.EnsureStage(ctx, string(stage)); err != nil {
		return fmt.Errorf("ensure stage %s: %w", stage, err)
	}
	return nil
}

func (s *StagedStore) Save(ctx context.Context, stage domain.StorageStage, key string, data io.Reader) error {
	if err := s.backend.Save(ctx, string(stage), key, data); err != nil {
		return fmt.Errorf("save %s to stage %s: %w", key, stage, err)
	}
	return nil
}

func (s *StagedStore) Open(ctx context.Context, stage domain.StorageStage, key string) (io.ReadCloser, error) {
	rc, err := s.backend.Open(ctx, string(stage), key)
	if err != nil {
		return nil, fmt.Errorf("open %s from stage %s: %w", key, stage, err)
	}
	return rc, nil
}

func (s *StagedStore) Exists(ctx context.Context, stage domain.StorageStage, key string) (bool, error) {
	ok, err := s.backend.Exists(ctx, string(stage), key)
	if err != nil {
		return false, fmt.Errorf("check %s in stage %s: %w", key, stage, err)
	}
	return ok, nil
}

func (s *StagedStore) Delete(ctx context.Context, stage domain.StorageStage, key string) error {
	if err := s.backend.Delete(ctx, string(stage), key); err != nil {
		return fmt.Errorf("delete %s from stage %s: %w", key, stage, err)
	}
	return nil
}

// CopyBetweenStages copies the blob and then polls the destination
// until it is visible or the deadline passes. A copy that cannot be
// confirmed is a failure, never a silent success.
func (s *StagedStore) CopyBetweenStages(ctx context.Context, from, to domain.StorageStage, key string) error {
	if err := s.backend.Copy(ctx, string(from), string(to), key); err != nil {
		return fmt.Errorf("copy %s from %s to %s: %w", key, from, to, err)
	}

	deadline := time.Now().Add(s.pollDeadline)
	for {
		ok, err := s.backend.Exists(ctx, string(to), key)
		if err != nil {
			return fmt.Errorf("confirm copy of %s in stage %s: %w", key, to, err)
		}
		if ok {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("copy of %s to stage %s not visible after %s", key, to, s.pollDeadline)
		}

		timer := time.NewTimer(s.pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
