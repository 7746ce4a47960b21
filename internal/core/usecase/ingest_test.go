package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/yithril/docpipeline/internal/core/domain"
)

type fakeQueue struct {
	started []domain.PipelineInput
	err     error
}

func (q *fakeQueue) StartPipeline(_ context.Context, in domain.PipelineInput) (string, error) {
	if q.err != nil {
		return "", q.err
	}
	q.started = append(q.started, in)
	return in.WorkflowID(), nil
}

func (q *fakeQueue) Subscribe(context.Context, func(context.Context, domain.PipelineInput) error) error {
	return nil
}

func TestUploadStoresBlobAndStartsPipeline(t *testing.T) {
	repo := newFakeRepo()
	store := newFakeStore()
	queue := &fakeQueue{}
	uc := NewIngestDocumentUseCase(repo, store, queue, []string{"text/plain"})

	doc, err := uc.Upload(context.Background(), "tenant-a", 7, "Quarterly Report.txt", "text/plain",
		strings.NewReader("uploaded content"))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	if doc.Filename != "Quarterly_Report.txt" {
		t.Errorf("filename = %q", doc.Filename)
	}
	if doc.Status != domain.StatusUploaded {
		t.Errorf("status = %s", doc.Status)
	}

	blob, ok := store.objects[domain.StageUploaded][doc.BlobURL]
	if !ok || string(blob) != "uploaded content" {
		t.Errorf("uploaded blob = %q (found=%v)", blob, ok)
	}
	if _, ok := repo.docs[doc.ID]; !ok {
		t.Errorf("document record not created")
	}

	if len(queue.started) != 1 {
		t.Fatalf("started = %d pipeline runs", len(queue.started))
	}
	in := queue.started[0]
	if in.DocumentID != doc.ID || in.FileName != doc.Filename || in.FileSize != 16 {
		t.Errorf("pipeline input = %+v", in)
	}
	if in.BlobURL != domain.BlobPath(7, doc.ID, doc.Filename) {
		t.Errorf("blob url = %q", in.BlobURL)
	}
}

func TestUploadRejectsDisallowedContentType(t *testing.T) {
	uc := NewIngestDocumentUseCase(newFakeRepo(), newFakeStore(), &fakeQueue{}, []string{"text/plain"})

	_, err := uc.Upload(context.Background(), "tenant-a", 7, "app.exe", "application/x-msdownload",
		strings.NewReader("MZ"))
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrUnsupportedFileType) {
		t.Errorf("expected ErrUnsupportedFileType, got %v", err)
	}
}

func TestUploadRejectsDuplicateFilename(t *testing.T) {
	repo := newFakeRepo()
	repo.docs["doc-0"] = &domain.Document{
		ID:        "doc-0",
		TenantID:  "tenant-a",
		ProjectID: 7,
		Filename:  "report.txt",
	}
	uc := NewIngestDocumentUseCase(repo, newFakeStore(), &fakeQueue{}, []string{"text/plain"})

	_, err := uc.Upload(context.Background(), "tenant-a", 7, "report.txt", "text/plain",
		strings.NewReader("content"))
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
	if !strings.Contains(err.Error(), "doc-0") {
		t.Errorf("error should name the existing document, got %v", err)
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"Quarterly Report.txt": "Quarterly_Report.txt",
		"../../../etc/passwd":  "passwd",
		"résumé.pdf":           "r_sum_.pdf",
		"":                     "document.bin",
		"already-fine_v2.docx": "already-fine_v2.docx",
	}
	for in, want := range cases {
		if got := sanitizeFilename(in); got != want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}
