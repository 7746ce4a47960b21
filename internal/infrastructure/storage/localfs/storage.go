package localfs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Storage keeps each stage as a subdirectory under the base path. Keys
// may contain slashes; parent directories are created on demand.
type Storage struct {
	basePath string
}

func New(basePath string) (*Storage, error) {
	if basePath == "" {
		basePath = "./data/storage"
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Storage{basePath: basePath}, nil
}

func (s *Storage) EnsureStage(_ context.Context, stage string) error {
	if err := os.MkdirAll(filepath.Join(s.basePath, stage), 0o755); err != nil {
		return fmt.Errorf("create stage dir: %w", err)
	}
	return nil
}

func (s *Storage) Save(_ context.Context, stage, key string, data io.Reader) error {
	path := s.path(stage, key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create blob dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, data); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

func (s *Storage) Open(_ context.Context, stage, key string) (io.ReadCloser, error) {
	f, err := os.Open(s.path(stage, key))
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	return f, nil
}

func (s *Storage) Exists(_ context.Context, stage, key string) (bool, error) {
	_, err := os.Stat(s.path(stage, key))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat file: %w", err)
}

func (s *Storage) Copy(ctx context.Context, fromStage, toStage, key string) error {
	src, err := s.Open(ctx, fromStage, key)
	if err != nil {
		return err
	}
	defer src.Close()
	return s.Save(ctx, toStage, key, src)
}

func (s *Storage) Delete(_ context.Context, stage, key string) error {
	if err := os.Remove(s.path(stage, key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}

func (s *Storage) path(stage, key string) string {
	return filepath.Join(s.basePath, stage, filepath.FromSlash(key))
}
