package ports

import (
	"context"
	"io"

	"github.com/yithril/docpipeline/internal/core/domain"
)

// DocumentIngestor is the inbound contract for document upload
// orchestration.
type DocumentIngestor interface {
	Upload(ctx context.Context, tenantID string, projectID int, filename, mimeType string, body io.Reader) (*domain.Document, error)
}

// PipelineRunner is the inbound contract for asynchronous document
// processing. Run is safe to invoke again for a document that already
// made partial progress.
type PipelineRunner interface {
	Run(ctx context.Context, input domain.PipelineInput) error
}

// DocumentReader is the inbound read model for document metadata.
type DocumentReader interface {
	GetByID(ctx context.Context, id string) (*domain.Document, error)
}

// ReviewDecider records the human review verdict for a document
// waiting in the review stage.
type ReviewDecider interface {
	Decide(ctx context.Context, documentID string, approved bool) error
}
