package domain

import (
	"fmt"
	"time"
)

// Document is the relational record tracking a file through the
// pipeline. Large content (original bytes, extracted text) never lives
// here; it stays in the staged blob store.
type Document struct {
	ID        string         `json:"id"`
	TenantID  string         `json:"tenant_id"`
	ProjectID int            `json:"project_id"`
	Filename  string         `json:"filename"`
	MimeType  string         `json:"mime_type"`
	BlobURL   string         `json:"blob_url"`
	Status    DocumentStatus `json:"status"`

	DocumentType string             `json:"document_type,omitempty"`
	Confidence   float64            `json:"confidence,omitempty"`
	Candidates   map[string]float64 `json:"candidates,omitempty"`

	Summary   string         `json:"summary,omitempty"`
	KeyPoints []string       `json:"key_points,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`

	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PipelineInput is the only payload threaded through the orchestrator.
// It is immutable once the pipeline starts.
type PipelineInput struct {
	TenantID    string `json:"tenant_id"`
	ProjectID   int    `json:"project_id"`
	DocumentID  string `json:"document_id"`
	FileName    string `json:"file_name"`
	FileSize    int64  `json:"file_size"`
	ContentType string `json:"content_type"`
	BlobURL     string `json:"blob_url"`
}

// WorkflowID returns the durable workflow identifier for this input.
// One workflow instance exists per document.
func (in PipelineInput) WorkflowID() string {
	return fmt.Sprintf("document-%s", in.DocumentID)
}

// BlobPath is the deterministic path of the original upload inside any
// storage stage. The stage partition changes as the document advances;
// the path does not.
func (in PipelineInput) BlobPath() string {
	return BlobPath(in.ProjectID, in.DocumentID, in.FileName)
}

// ExtractedTextPath locates the extracted text blob in the processed
// stage.
func (in PipelineInput) ExtractedTextPath() string {
	return BlobPath(in.ProjectID, in.DocumentID, "extracted_text.txt")
}

// BlobPath builds the project-scoped blob path shared by all stages.
func BlobPath(projectID int, documentID, filename string) string {
	return fmt.Sprintf("project-%d/document-%s/%s", projectID, documentID, filename)
}

// ClassificationResult is the document-type decision for a piece of
// extracted text. Exactly one of DocumentType or Error is set; when
// DocumentType is set, Candidates[DocumentType] equals Confidence.
type ClassificationResult struct {
	DocumentType string             `json:"document_type,omitempty"`
	Confidence   float64            `json:"confidence,omitempty"`
	Candidates   map[string]float64 `json:"candidates"`
	Error        string             `json:"error,omitempty"`
}

// Valid reports whether the result satisfies its invariants.
func (r ClassificationResult) Valid() bool {
	if (r.DocumentType == "") == (r.Error == "") {
		return false
	}
	if r.Error != "" {
		return len(r.Candidates) == 0
	}
	if r.Confidence < 0 || r.Confidence > 1 {
		return false
	}
	score, ok := r.Candidates[r.DocumentType]
	return ok && score == r.Confidence
}

// SummaryResult is the output of a summarization strategy.
type SummaryResult struct {
	Summary        string         `json:"summary"`
	KeyPoints      []string       `json:"key_points,omitempty"`
	Metadata       map[string]any `json:"metadata"`
	ModelUsed      string         `json:"model_used"`
	ProcessingTime float64        `json:"processing_time"`
	TokenCount     int            `json:"token_count,omitempty"`
}
