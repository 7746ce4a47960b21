package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/yithril/docpipeline/internal/core/domain"
)

type fakeRepo struct {
	docs        map[string]*domain.Document
	statuses    []domain.DocumentStatus
	errMessages []string
	createErr   error
	updateErr   error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{docs: map[string]*domain.Document{}}
}

func (r *fakeRepo) Create(_ context.Context, doc *domain.Document) error {
	if r.createErr != nil {
		return r.createErr
	}
	cp := *doc
	r.docs[doc.ID] = &cp
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*domain.Document, error) {
	doc, ok := r.docs[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrDocumentNotFound, "get document", fmt.Errorf("document not found: %s", id))
	}
	cp := *doc
	return &cp, nil
}

func (r *fakeRepo) UpdateStatus(_ context.Context, id string, status domain.DocumentStatus, errMessage string) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	doc, ok := r.docs[id]
	if !ok {
		return domain.WrapError(domain.ErrDocumentNotFound, "update document status", fmt.Errorf("document not found: %s", id))
	}
	doc.Status = status
	doc.Error = errMessage
	r.statuses = append(r.statuses, status)
	r.errMessages = append(r.errMessages, errMessage)
	return nil
}

func (r *fakeRepo) SaveClassification(_ context.Context, id string, res domain.ClassificationResult) error {
	doc, ok := r.docs[id]
	if !ok {
		return domain.WrapError(domain.ErrDocumentNotFound, "save classification", fmt.Errorf("document not found: %s", id))
	}
	doc.DocumentType = res.DocumentType
	doc.Confidence = res.Confidence
	doc.Candidates = res.Candidates
	return nil
}

func (r *fakeRepo) SaveSummary(_ context.Context, id string, res domain.SummaryResult) error {
	doc, ok := r.docs[id]
	if !ok {
		return domain.WrapError(domain.ErrDocumentNotFound, "save summary", fmt.Errorf("document not found: %s", id))
	}
	doc.Summary = res.Summary
	doc.KeyPoints = res.KeyPoints
	return nil
}

func (r *fakeRepo) FindByProjectAndFilename(_ context.Context, tenantID string, projectID int, filename string) (*domain.Document, error) {
	for _, doc := range r.docs {
		if doc.TenantID == tenantID && doc.ProjectID == projectID && doc.Filename == filename {
			cp := *doc
			return &cp, nil
		}
	}
	return nil, nil
}

type fakeStore struct {
	objects map[domain.StorageStage]map[string][]byte
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[domain.StorageStage]map[string][]byte{}}
}

func (s *fakeStore) put(stage domain.StorageStage, key string, data []byte) {
	if s.objects[stage] == nil {
		s.objects[stage] = map[string][]byte{}
	}
	s.objects[stage][key] = data
}

func (s *fakeStore) EnsureStage(context.Context, domain.StorageStage) error { return nil }

func (s *fakeStore) Save(_ context.Context, stage domain.StorageStage, key string, data io.Reader) error {
	content, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	s.put(stage, key, content)
	return nil
}

func (s *fakeStore) Open(_ context.Context, stage domain.StorageStage, key string) (io.ReadCloser, error) {
	content, ok := s.objects[stage][key]
	if !ok {
		return nil, fmt.Errorf("object not found: %s/%s", stage, key)
	}
	return io.NopCloser(bytes.NewReader(content)), nil
}

func (s *fakeStore) Exists(_ context.Context, stage domain.StorageStage, key string) (bool, error) {
	_, ok := s.objects[stage][key]
	return ok, nil
}

func (s *fakeStore) CopyBetweenStages(_ context.Context, from, to domain.StorageStage, key string) error {
	content, ok := s.objects[from][key]
	if !ok {
		return fmt.Errorf("object not found: %s/%s", from, key)
	}
	s.put(to, key, content)
	return nil
}

func (s *fakeStore) Delete(_ context.Context, stage domain.StorageStage, key string) error {
	delete(s.objects[stage], key)
	return nil
}

type fakeExtractor struct {
	text  string
	err   error
	calls int
}

func (e *fakeExtractor) Extract(_ context.Context, _ string, _ string) (io.Reader, map[string]any, error) {
	e.calls++
	if e.err != nil {
		return nil, nil, e.err
	}
	return strings.NewReader(e.text), map[string]any{"format": "text"}, nil
}

type fakeClassifier struct {
	result       domain.ClassificationResult
	err          error
	failuresLeft int
	calls        int
}

func (c *fakeClassifier) Classify(_ context.Context, _ string) (domain.ClassificationResult, error) {
	c.calls++
	if c.failuresLeft > 0 {
		c.failuresLeft--
		return domain.ClassificationResult{}, errors.New("model unavailable")
	}
	if c.err != nil {
		return domain.ClassificationResult{}, c.err
	}
	return c.result, nil
}

type fakeSummarizer struct {
	result   domain.SummaryResult
	err      error
	lastType string
	calls    int
}

func (s *fakeSummarizer) Summarize(_ context.Context, documentType, _ string) (domain.SummaryResult, error) {
	s.calls++
	s.lastType = documentType
	if s.err != nil {
		return domain.SummaryResult{}, s.err
	}
	return s.result, nil
}

func testInput() domain.PipelineInput {
	return domain.PipelineInput{
		TenantID:    "tenant-a",
		ProjectID:   7,
		DocumentID:  "doc-1",
		FileName:    "report.txt",
		FileSize:    128,
		ContentType: "text/plain",
	}
}

func validSummary() domain.SummaryResult {
	return domain.SummaryResult{
		Summary:   strings.Repeat("The agreement covers delivery terms. ", 3),
		KeyPoints: []string{"delivery terms"},
		ModelUsed: "saul-instruct",
	}
}

type pipelineFixture struct {
	repo       *fakeRepo
	store      *fakeStore
	extractor  *fakeExtractor
	classifier *fakeClassifier
	summarizer *fakeSummarizer
}

func newFixture() *pipelineFixture {
	return &pipelineFixture{
		repo:      newFakeRepo(),
		store:     newFakeStore(),
		extractor: &fakeExtractor{text: "This is the extracted body of the uploaded document."},
		classifier: &fakeClassifier{result: domain.ClassificationResult{
			DocumentType: "contract",
			Confidence:   0.9,
			Candidates:   map[string]float64{"contract": 0.9},
		}},
		summarizer: &fakeSummarizer{result: validSummary()},
	}
}

func (f *pipelineFixture) orchestrator(cfg OrchestratorConfig) *Orchestrator {
	if len(cfg.AllowedContentTypes) == 0 {
		cfg.AllowedContentTypes = []string{"text/plain", "application/pdf"}
	}
	if cfg.Timeouts.Status == 0 {
		cfg.Timeouts = Timeouts{
			Status:         time.Second,
			Extraction:     time.Second,
			Classification: time.Second,
			Summarization:  time.Second,
			Copy:           time.Second,
		}
	}
	return NewOrchestrator(f.repo, f.store, f.extractor, f.classifier, f.summarizer, cfg)
}

func (f *pipelineFixture) seedUpload(in domain.PipelineInput) {
	f.store.put(domain.StageUploaded, in.BlobPath(), []byte("original bytes"))
}

func assertStatuses(t *testing.T, got []domain.DocumentStatus, want ...domain.DocumentStatus) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("status sequence length = %d, want %d\ngot:  %v\nwant: %v", len(got), len(want), got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("status[%d] = %s, want %s\ngot:  %v", i, got[i], want[i], got)
		}
	}
}

func TestRunHappyPath(t *testing.T) {
	f := newFixture()
	in := testInput()
	f.seedUpload(in)

	res, err := f.orchestrator(OrchestratorConfig{}).Run(context.Background(), in)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Outcome != OutcomeCompleted {
		t.Fatalf("outcome = %s, want %s", res.Outcome, OutcomeCompleted)
	}
	if res.Status != domain.StatusHumanReviewPending {
		t.Fatalf("final status = %s", res.Status)
	}

	assertStatuses(t, f.repo.statuses,
		domain.StatusTextExtractionPending,
		domain.StatusTextExtractionRunning,
		domain.StatusTextExtractionSucceeded,
		domain.StatusTypeIdentificationPending,
		domain.StatusTypeIdentificationRunning,
		domain.StatusTypeIdentificationSucceeded,
		domain.StatusSummarizationPending,
		domain.StatusSummarizationRunning,
		domain.StatusSummarizationSucceeded,
		domain.StatusHumanReviewPending,
	)

	doc := f.repo.docs[in.DocumentID]
	if doc.DocumentType != "contract" || doc.Confidence != 0.9 {
		t.Errorf("classification not persisted: %+v", doc)
	}
	if doc.Summary == "" {
		t.Errorf("summary not persisted")
	}

	if _, ok := f.store.objects[domain.StageProcessed][in.ExtractedTextPath()]; !ok {
		t.Errorf("extracted text missing from processed stage")
	}
	if got := f.store.objects[domain.StageReview][in.BlobPath()]; string(got) != "original bytes" {
		t.Errorf("review stage copy = %q", got)
	}
	if f.summarizer.lastType != "legal_document" {
		t.Errorf("summarization type = %q, want legal_document", f.summarizer.lastType)
	}
}

func TestRunRejectsDisallowedContentType(t *testing.T) {
	f := newFixture()
	in := testInput()
	in.ContentType = "application/x-msdownload"

	res, err := f.orchestrator(OrchestratorConfig{}).Run(context.Background(), in)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Outcome != OutcomeRejected {
		t.Fatalf("outcome = %s, want %s", res.Outcome, OutcomeRejected)
	}
	if len(f.repo.docs) != 0 {
		t.Errorf("rejected upload must not create a record")
	}
	if f.extractor.calls != 0 {
		t.Errorf("extractor called for rejected upload")
	}
}

func TestRunSkipsDuplicateFilename(t *testing.T) {
	f := newFixture()
	in := testInput()
	f.repo.docs["doc-0"] = &domain.Document{
		ID:        "doc-0",
		TenantID:  in.TenantID,
		ProjectID: in.ProjectID,
		Filename:  in.FileName,
		Status:    domain.StatusCompleted,
	}

	res, err := f.orchestrator(OrchestratorConfig{}).Run(context.Background(), in)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Outcome != OutcomeSkipped {
		t.Fatalf("outcome = %s, want %s", res.Outcome, OutcomeSkipped)
	}
	if !strings.Contains(res.Reason, "doc-0") {
		t.Errorf("reason = %q, want existing document id", res.Reason)
	}
	if f.extractor.calls != 0 {
		t.Errorf("extractor called for duplicate upload")
	}
}

func TestRunResumesAfterExtraction(t *testing.T) {
	f := newFixture()
	in := testInput()
	f.seedUpload(in)
	f.store.put(domain.StageProcessed, in.ExtractedTextPath(), []byte("previously extracted text body"))
	f.repo.docs[in.DocumentID] = &domain.Document{
		ID:        in.DocumentID,
		TenantID:  in.TenantID,
		ProjectID: in.ProjectID,
		Filename:  in.FileName,
		Status:    domain.StatusTextExtractionSucceeded,
	}

	res, err := f.orchestrator(OrchestratorConfig{}).Run(context.Background(), in)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Outcome != OutcomeCompleted {
		t.Fatalf("outcome = %s", res.Outcome)
	}
	if f.extractor.calls != 0 {
		t.Errorf("extraction repeated on replay")
	}
	if f.classifier.calls != 1 {
		t.Errorf("classifier calls = %d, want 1", f.classifier.calls)
	}
	assertStatuses(t, f.repo.statuses,
		domain.StatusTypeIdentificationPending,
		domain.StatusTypeIdentificationRunning,
		domain.StatusTypeIdentificationSucceeded,
		domain.StatusSummarizationPending,
		domain.StatusSummarizationRunning,
		domain.StatusSummarizationSucceeded,
		domain.StatusHumanReviewPending,
	)
}

func TestRunResumeFromInterruptedRunning(t *testing.T) {
	f := newFixture()
	in := testInput()
	f.seedUpload(in)
	f.repo.docs[in.DocumentID] = &domain.Document{
		ID:        in.DocumentID,
		TenantID:  in.TenantID,
		ProjectID: in.ProjectID,
		Filename:  in.FileName,
		Status:    domain.StatusTextExtractionRunning,
	}

	res, err := f.orchestrator(OrchestratorConfig{MaxPhaseRetries: 2}).Run(context.Background(), in)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Outcome != OutcomeCompleted {
		t.Fatalf("outcome = %s", res.Outcome)
	}
	// An interrupted RUNNING status is first marked FAILED, then retried.
	if f.repo.statuses[0] != domain.StatusTextExtractionFailed {
		t.Errorf("first transition = %s, want %s", f.repo.statuses[0], domain.StatusTextExtractionFailed)
	}
	if f.repo.statuses[1] != domain.StatusTextExtractionPending {
		t.Errorf("second transition = %s, want %s", f.repo.statuses[1], domain.StatusTextExtractionPending)
	}
	if f.extractor.calls != 1 {
		t.Errorf("extractor calls = %d, want 1", f.extractor.calls)
	}
}

func TestRunSkipsTerminalFailedDocument(t *testing.T) {
	f := newFixture()
	in := testInput()
	f.repo.docs[in.DocumentID] = &domain.Document{
		ID:        in.DocumentID,
		TenantID:  in.TenantID,
		ProjectID: in.ProjectID,
		Filename:  in.FileName,
		Status:    domain.StatusFailed,
	}

	res, err := f.orchestrator(OrchestratorConfig{}).Run(context.Background(), in)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Outcome != OutcomeSkipped {
		t.Fatalf("outcome = %s, want %s", res.Outcome, OutcomeSkipped)
	}
	if len(f.repo.statuses) != 0 {
		t.Errorf("terminal document must not transition, got %v", f.repo.statuses)
	}
}

func TestRunRedeliveryAfterHandOffIsNoOp(t *testing.T) {
	f := newFixture()
	in := testInput()
	f.repo.docs[in.DocumentID] = &domain.Document{
		ID:        in.DocumentID,
		TenantID:  in.TenantID,
		ProjectID: in.ProjectID,
		Filename:  in.FileName,
		Status:    domain.StatusHumanReviewPending,
	}

	res, err := f.orchestrator(OrchestratorConfig{}).Run(context.Background(), in)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Outcome != OutcomeCompleted {
		t.Fatalf("outcome = %s", res.Outcome)
	}
	if len(f.repo.statuses) != 0 || f.extractor.calls != 0 {
		t.Errorf("redelivery must not repeat work")
	}
}

func TestRunExtractionFailureExhaustsRetries(t *testing.T) {
	f := newFixture()
	f.extractor.err = domain.WrapError(domain.ErrCorruptedFile, "extract", errors.New("bad header"))
	in := testInput()
	f.seedUpload(in)

	_, err := f.orchestrator(OrchestratorConfig{MaxPhaseRetries: 1}).Run(context.Background(), in)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrCorruptedFile) {
		t.Errorf("error should carry the extraction cause, got %v", err)
	}

	assertStatuses(t, f.repo.statuses,
		domain.StatusTextExtractionPending,
		domain.StatusTextExtractionRunning,
		domain.StatusTextExtractionFailed,
		domain.StatusTextExtractionPending,
		domain.StatusTextExtractionRunning,
		domain.StatusTextExtractionFailed,
		domain.StatusFailed,
	)
	if last := f.repo.errMessages[len(f.repo.errMessages)-1]; !strings.Contains(last, "bad header") {
		t.Errorf("terminal error message = %q", last)
	}
}

func TestRunClassifierRecoversWithinRetryBudget(t *testing.T) {
	f := newFixture()
	f.classifier.failuresLeft = 1
	in := testInput()
	f.seedUpload(in)

	res, err := f.orchestrator(OrchestratorConfig{MaxPhaseRetries: 1}).Run(context.Background(), in)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Outcome != OutcomeCompleted {
		t.Fatalf("outcome = %s", res.Outcome)
	}
	if f.classifier.calls != 2 {
		t.Errorf("classifier calls = %d, want 2", f.classifier.calls)
	}

	assertStatuses(t, f.repo.statuses,
		domain.StatusTextExtractionPending,
		domain.StatusTextExtractionRunning,
		domain.StatusTextExtractionSucceeded,
		domain.StatusTypeIdentificationPending,
		domain.StatusTypeIdentificationRunning,
		domain.StatusTypeIdentificationFailed,
		domain.StatusTypeIdentificationPending,
		domain.StatusTypeIdentificationRunning,
		domain.StatusTypeIdentificationSucceeded,
		domain.StatusSummarizationPending,
		domain.StatusSummarizationRunning,
		domain.StatusSummarizationSucceeded,
		domain.StatusHumanReviewPending,
	)
}

func TestRunRejectsShortExtractedText(t *testing.T) {
	f := newFixture()
	f.extractor.text = "too short"
	in := testInput()
	f.seedUpload(in)

	_, err := f.orchestrator(OrchestratorConfig{}).Run(context.Background(), in)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "too short") {
		t.Errorf("error = %v", err)
	}
	if f.repo.statuses[len(f.repo.statuses)-1] != domain.StatusFailed {
		t.Errorf("final status = %s, want %s", f.repo.statuses[len(f.repo.statuses)-1], domain.StatusFailed)
	}
}

func TestRunRejectsLowConfidenceClassification(t *testing.T) {
	f := newFixture()
	f.classifier.result = domain.ClassificationResult{
		DocumentType: "contract",
		Confidence:   0.1,
		Candidates:   map[string]float64{"contract": 0.1},
	}
	in := testInput()
	f.seedUpload(in)

	_, err := f.orchestrator(OrchestratorConfig{}).Run(context.Background(), in)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "below threshold") {
		t.Errorf("error = %v", err)
	}
	if f.summarizer.calls != 0 {
		t.Errorf("summarizer called after failed classification")
	}
}

func TestRunRejectsOutOfBoundsSummary(t *testing.T) {
	cases := map[string]string{
		"too short": "tiny",
		"too long":  strings.Repeat("x", MaxSummaryChars+1),
	}
	for name, summary := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture()
			f.summarizer.result = domain.SummaryResult{Summary: summary}
			in := testInput()
			f.seedUpload(in)

			_, err := f.orchestrator(OrchestratorConfig{}).Run(context.Background(), in)
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), "summary length") {
				t.Errorf("error = %v", err)
			}
		})
	}
}

func TestRunFailsWhenReviewCopyFails(t *testing.T) {
	f := newFixture()
	in := testInput()
	f.seedUpload(in)
	store := &copyFailStore{fakeStore: f.store}

	orch := NewOrchestrator(f.repo, store, f.extractor, f.classifier, f.summarizer, OrchestratorConfig{
		AllowedContentTypes: []string{"text/plain"},
		Timeouts:            Timeouts{Status: time.Second, Extraction: time.Second, Classification: time.Second, Summarization: time.Second, Copy: time.Second},
	})
	_, err := orch.Run(context.Background(), in)
	if err == nil {
		t.Fatalf("expected error")
	}
	if f.repo.statuses[len(f.repo.statuses)-1] != domain.StatusFailed {
		t.Errorf("final status = %s", f.repo.statuses[len(f.repo.statuses)-1])
	}
}

type copyFailStore struct {
	*fakeStore
}

func (s *copyFailStore) CopyBetweenStages(context.Context, domain.StorageStage, domain.StorageStage, string) error {
	return errors.New("copy rejected")
}
