package ports

import (
	"context"
	"io"

	"github.com/yithril/docpipeline/internal/core/domain"
)

// DocumentRepository persists and reads document state.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error
	SaveClassification(ctx context.Context, id string, res domain.ClassificationResult) error
	SaveSummary(ctx context.Context, id string, res domain.SummaryResult) error
	FindByProjectAndFilename(ctx context.Context, tenantID string, projectID int, filename string) (*domain.Document, error)
}

// StagedObjectStore stores blobs across the processing stages. Keys are
// stable across stages so a document can be copied between them
// without renaming.
type StagedObjectStore interface {
	EnsureStage(ctx context.Context, stage domain.StorageStage) error
	Save(ctx context.Context, stage domain.StorageStage, key string, data io.Reader) error
	Open(ctx context.Context, stage domain.StorageStage, key string) (io.ReadCloser, error)
	Exists(ctx context.Context, stage domain.StorageStage, key string) (bool, error)
	CopyBetweenStages(ctx context.Context, from, to domain.StorageStage, key string) error
	Delete(ctx context.Context, stage domain.StorageStage, key string) error
}

// TaskQueue starts pipeline runs and delivers them to workers.
// Delivery is at-least-once; handlers must tolerate replays.
type TaskQueue interface {
	StartPipeline(ctx context.Context, input domain.PipelineInput) (string, error)
	Subscribe(ctx context.Context, handler func(context.Context, domain.PipelineInput) error) error
}

// TextExtractor extracts plain text from a local file. Unreadable or
// malformed inputs surface as errors wrapping domain.ErrCorruptedFile
// or domain.ErrUnsupportedFileType.
type TextExtractor interface {
	Extract(ctx context.Context, filePath, mimeType string) (io.Reader, map[string]any, error)
}

// Classifier assigns a document type to extracted text.
type Classifier interface {
	Classify(ctx context.Context, text string) (domain.ClassificationResult, error)
}

// Summarizer produces a type-specific summary of extracted text.
type Summarizer interface {
	Summarize(ctx context.Context, documentType, text string) (domain.SummaryResult, error)
}

// ModelBackend runs inference against the model server.
type ModelBackend interface {
	ClassifyZeroShot(ctx context.Context, text string, labels []string) (map[string]float64, error)
	Generate(ctx context.Context, model, prompt string, maxTokens int) (string, error)
}
