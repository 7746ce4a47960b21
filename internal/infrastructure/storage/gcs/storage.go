package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
)

// Storage maps each stage to its own bucket named
// `{bucketPrefix}-{stage}`. Writes use a DoesNotExist precondition so
// a replayed pipeline step never clobbers an existing blob; the 412
// the precondition produces counts as success.
type Storage struct {
	client       *storage.Client
	projectID    string
	bucketPrefix string
}

func New(ctx context.Context, projectID, bucketPrefix string) (*Storage, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}
	return &Storage{
		client:       client,
		projectID:    projectID,
		bucketPrefix: bucketPrefix,
	}, nil
}

func (s *Storage) Close() error { return s.client.Close() }

func (s *Storage) bucketName(stage string) string {
	return fmt.Sprintf("%s-%s", s.bucketPrefix, stage)
}

func (s *Storage) EnsureStage(ctx context.Context, stage string) error {
	bucket := s.client.Bucket(s.bucketName(stage))
	err := bucket.Create(ctx, s.projectID, nil)
	if err == nil || isAlreadyExists(err) {
		return nil
	}
	return fmt.Errorf("create bucket %s: %w", s.bucketName(stage), err)
}

func (s *Storage) Save(ctx context.Context, stage, key string, data io.Reader) error {
	obj := s.client.Bucket(s.bucketName(stage)).Object(key)
	writer := obj.If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)

	if _, err := io.Copy(writer, data); err != nil {
		_ = writer.Close()
		if isPreconditionFailed(err) {
			return nil
		}
		return fmt.Errorf("write gcs object %s: %w", key, err)
	}
	if err := writer.Close(); err != nil {
		if isPreconditionFailed(err) {
			return nil
		}
		return fmt.Errorf("finalize gcs object %s: %w", key, err)
	}
	return nil
}

func (s *Storage) Open(ctx context.Context, stage, key string) (io.ReadCloser, error) {
	r, err := s.client.Bucket(s.bucketName(stage)).Object(key).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("open gcs object %s: %w", key, err)
	}
	return r, nil
}

func (s *Storage) Exists(ctx context.Context, stage, key string) (bool, error) {
	_, err := s.client.Bucket(s.bucketName(stage)).Object(key).Attrs(ctx)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, storage.ErrObjectNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat gcs object %s: %w", key, err)
}

func (s *Storage) Copy(ctx context.Context, fromStage, toStage, key string) error {
	src := s.client.Bucket(s.bucketName(fromStage)).Object(key)
	dst := s.client.Bucket(s.bucketName(toStage)).Object(key)
	if _, err := dst.CopierFrom(src).Run(ctx); err != nil {
		return fmt.Errorf("copy gcs object %s: %w", key, err)
	}
	return nil
}

func (s *Storage) Delete(ctx context.Context, stage, key string) error {
	err := s.client.Bucket(s.bucketName(stage)).Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("delete gcs object %s: %w", key, err)
	}
	return nil
}

func isAlreadyExists(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusConflict
}

func isPreconditionFailed(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusPreconditionFailed
}
