package usecase

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yithril/docpipeline/internal/core/domain"
	"github.com/yithril/docpipeline/internal/core/ports"
)

// IngestDocumentUseCase accepts an upload, stores the original in the
// uploaded stage, records the document, and starts its pipeline run.
type IngestDocumentUseCase struct {
	repo    ports.DocumentRepository
	store   ports.StagedObjectStore
	queue   ports.TaskQueue
	allowed map[string]bool
}

func NewIngestDocumentUseCase(
	repo ports.DocumentRepository,
	store ports.StagedObjectStore,
	queue ports.TaskQueue,
	allowedContentTypes []string,
) *IngestDocumentUseCase {
	allowed := make(map[string]bool, len(allowedContentTypes))
	for _, ct := range allowedContentTypes {
		allowed[strings.ToLower(ct)] = true
	}
	return &IngestDocumentUseCase{
		repo:    repo,
		store:   store,
		queue:   queue,
		allowed: allowed,
	}
}

func (uc *IngestDocumentUseCase) Upload(
	ctx context.Context,
	tenantID string,
	projectID int,
	filename, mimeType string,
	body io.Reader,
) (*domain.Document, error) {
	if !uc.allowed[strings.ToLower(mimeType)] {
		return nil, domain.WrapError(domain.ErrUnsupportedFileType, "upload document",
			fmt.Errorf("content type not allowed: %s", mimeType))
	}

	sanitized := sanitizeFilename(filename)
	existing, err := uc.repo.FindByProjectAndFilename(ctx, tenantID, projectID, sanitized)
	if err != nil {
		return nil, fmt.Errorf("duplicate check: %w", err)
	}
	if existing != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload document",
			fmt.Errorf("file %q already exists in project %d as document %s", sanitized, projectID, existing.ID))
	}

	id := uuid.NewString()
	blobPath := domain.BlobPath(projectID, id, sanitized)
	now := time.Now().UTC()

	counted := &countingReader{r: body}
	if err := uc.store.Save(ctx, domain.StageUploaded, blobPath, counted); err != nil {
		return nil, fmt.Errorf("save to object storage: %w", err)
	}

	doc := &domain.Document{
		ID:        id,
		TenantID:  tenantID,
		ProjectID: projectID,
		Filename:  sanitized,
		MimeType:  mimeType,
		BlobURL:   blobPath,
		Status:    domain.StatusUploaded,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("create document metadata: %w", err)
	}

	input := domain.PipelineInput{
		TenantID:    tenantID,
		ProjectID:   projectID,
		DocumentID:  id,
		FileName:    sanitized,
		FileSize:    counted.n,
		ContentType: mimeType,
		BlobURL:     blobPath,
	}
	if _, err := uc.queue.StartPipeline(ctx, input); err != nil {
		return nil, fmt.Errorf("start pipeline: %w", err)
	}

	return doc, nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" {
		return "document.bin"
	}
	return base
}
