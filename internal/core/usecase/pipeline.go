package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yithril/docpipeline/internal/core/domain"
	"github.com/yithril/docpipeline/internal/core/ports"
)

// Validation gates applied between phases.
const (
	MinExtractedChars = 10
	MinConfidence     = 0.3
	MinSummaryChars   = 50
	MaxSummaryChars   = 2000
)

// RunOutcome is the terminal verdict of one pipeline run.
type RunOutcome string

const (
	OutcomeCompleted RunOutcome = "completed"
	OutcomeRejected  RunOutcome = "rejected"
	OutcomeSkipped   RunOutcome = "skipped"
)

// RunResult reports how a pipeline run ended. Status is the last
// persisted document status.
type RunResult struct {
	Outcome RunOutcome
	Status  domain.DocumentStatus
	Reason  string
}

// Timeouts bound every activity class. Status updates and validation
// are seconds; extraction and model calls get minutes.
type Timeouts struct {
	Status         time.Duration
	Extraction     time.Duration
	Classification time.Duration
	Summarization  time.Duration
	Copy           time.Duration
}

func DefaultTimeouts() Timeouts {
	return Timeouts{
		Status:         10 * time.Second,
		Extraction:     5 * time.Minute,
		Classification: 3 * time.Minute,
		Summarization:  5 * time.Minute,
		Copy:           2 * time.Minute,
	}
}

type OrchestratorConfig struct {
	AllowedContentTypes []string
	MaxPhaseRetries     int
	Timeouts            Timeouts
}

// Orchestrator drives one document through extraction, classification
// and summarization into human review. Run is replay-safe: on
// redelivery it resumes from the persisted document status, and every
// transition is persisted before the next step executes.
type Orchestrator struct {
	repo       ports.DocumentRepository
	store      ports.StagedObjectStore
	extractor  ports.TextExtractor
	classifier ports.Classifier
	summarizer ports.Summarizer

	allowed         map[string]bool
	maxPhaseRetries int
	timeouts        Timeouts
}

func NewOrchestrator(
	repo ports.DocumentRepository,
	store ports.StagedObjectStore,
	extractor ports.TextExtractor,
	classifier ports.Classifier,
	summarizer ports.Summarizer,
	cfg OrchestratorConfig,
) *Orchestrator {
	allowed := make(map[string]bool, len(cfg.AllowedContentTypes))
	for _, ct := range cfg.AllowedContentTypes {
		allowed[strings.ToLower(ct)] = true
	}
	maxRetries := cfg.MaxPhaseRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	timeouts := cfg.Timeouts
	if timeouts.Status <= 0 {
		timeouts = DefaultTimeouts()
	}
	return &Orchestrator{
		repo:            repo,
		store:           store,
		extractor:       extractor,
		classifier:      classifier,
		summarizer:      summarizer,
		allowed:         allowed,
		maxPhaseRetries: maxRetries,
		timeouts:        timeouts,
	}
}

// phase is one retryable pipeline segment with its four statuses.
type phase struct {
	name      string
	pending   domain.DocumentStatus
	running   domain.DocumentStatus
	succeeded domain.DocumentStatus
	failed    domain.DocumentStatus
	run       func(ctx context.Context, in domain.PipelineInput) error
}

func (o *Orchestrator) Run(ctx context.Context, in domain.PipelineInput) (*RunResult, error) {
	if !o.allowed[strings.ToLower(in.ContentType)] {
		return &RunResult{
			Outcome: OutcomeRejected,
			Reason:  fmt.Sprintf("unsupported content type: %s", in.ContentType),
		}, nil
	}

	current, result, err := o.position(ctx, in)
	if err != nil {
		return nil, err
	}
	if result != nil {
		return result, nil
	}

	phases := []phase{
		{
			name:      "extraction",
			pending:   domain.StatusTextExtractionPending,
			running:   domain.StatusTextExtractionRunning,
			succeeded: domain.StatusTextExtractionSucceeded,
			failed:    domain.StatusTextExtractionFailed,
			run:       o.extractText,
		},
		{
			name:      "classification",
			pending:   domain.StatusTypeIdentificationPending,
			running:   domain.StatusTypeIdentificationRunning,
			succeeded: domain.StatusTypeIdentificationSucceeded,
			failed:    domain.StatusTypeIdentificationFailed,
			run:       o.classify,
		},
		{
			name:      "summarization",
			pending:   domain.StatusSummarizationPending,
			running:   domain.StatusSummarizationRunning,
			succeeded: domain.StatusSummarizationSucceeded,
			failed:    domain.StatusSummarizationFailed,
			run:       o.summarize,
		},
	}

	for i, p := range phases {
		if phaseIndex(current) > i {
			continue
		}
		if err := o.runPhase(ctx, in, &current, p); err != nil {
			return nil, err
		}
	}

	if err := o.handOff(ctx, in, &current); err != nil {
		return nil, err
	}
	return &RunResult{Outcome: OutcomeCompleted, Status: current}, nil
}

// position loads or creates the document record and decides where the
// run resumes. A non-nil result short-circuits the run.
func (o *Orchestrator) position(ctx context.Context, in domain.PipelineInput) (domain.DocumentStatus, *RunResult, error) {
	sctx, cancel := context.WithTimeout(ctx, o.timeouts.Status)
	defer cancel()

	existing, err := o.repo.FindByProjectAndFilename(sctx, in.TenantID, in.ProjectID, in.FileName)
	if err != nil {
		return "", nil, fmt.Errorf("duplicate check: %w", err)
	}

	switch {
	case existing == nil:
		now := time.Now().UTC()
		doc := &domain.Document{
			ID:        in.DocumentID,
			TenantID:  in.TenantID,
			ProjectID: in.ProjectID,
			Filename:  in.FileName,
			MimeType:  in.ContentType,
			BlobURL:   in.BlobPath(),
			Status:    domain.StatusUploaded,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := o.repo.Create(sctx, doc); err != nil {
			return "", nil, fmt.Errorf("create document record: %w", err)
		}
		return domain.StatusUploaded, nil, nil

	case existing.ID != in.DocumentID:
		return "", &RunResult{
			Outcome: OutcomeSkipped,
			Status:  existing.Status,
			Reason:  fmt.Sprintf("document %q already exists for this project as %s", in.FileName, existing.ID),
		}, nil

	case existing.Status == domain.StatusFailed:
		return "", &RunResult{
			Outcome: OutcomeSkipped,
			Status:  existing.Status,
			Reason:  "document is in terminal FAILED status",
		}, nil

	case phaseIndex(existing.Status) >= phaseCount:
		// Redelivery after the hand-off already happened.
		return "", &RunResult{Outcome: OutcomeCompleted, Status: existing.Status}, nil
	}

	return existing.Status, nil, nil
}

const phaseCount = 4 // three model phases plus the review hand-off

// phaseIndex maps a persisted status to the first phase that still has
// work to do.
func phaseIndex(s domain.DocumentStatus) int {
	switch s {
	case domain.StatusUploaded,
		domain.StatusTextExtractionPending, domain.StatusTextExtractionRunning, domain.StatusTextExtractionFailed:
		return 0
	case domain.StatusTextExtractionSucceeded,
		domain.StatusTypeIdentificationPending, domain.StatusTypeIdentificationRunning, domain.StatusTypeIdentificationFailed:
		return 1
	case domain.StatusTypeIdentificationSucceeded,
		domain.StatusSummarizationPending, domain.StatusSummarizationRunning, domain.StatusSummarizationFailed:
		return 2
	case domain.StatusSummarizationSucceeded:
		return 3
	default:
		return phaseCount
	}
}

// runPhase executes one phase with manual retry edges. Every failure
// is persisted as the phase's FAILED status before anything else
// happens; exhausted retries persist terminal FAILED and propagate.
func (o *Orchestrator) runPhase(ctx context.Context, in domain.PipelineInput, current *domain.DocumentStatus, p phase) error {
	// Normalize mid-phase entry from a replayed delivery. A run that
	// died while RUNNING cannot be trusted to have completed.
	if *current == p.running {
		if err := o.transitionTo(ctx, in, current, p.failed, "run interrupted before completion"); err != nil {
			return err
		}
	}
	if *current != p.pending {
		if err := o.transitionTo(ctx, in, current, p.pending, ""); err != nil {
			return err
		}
	}

	for attempt := 0; ; attempt++ {
		if err := o.transitionTo(ctx, in, current, p.running, ""); err != nil {
			return err
		}

		phaseErr := p.run(ctx, in)
		if phaseErr == nil {
			return o.transitionTo(ctx, in, current, p.succeeded, "")
		}

		if err := o.transitionTo(ctx, in, current, p.failed, phaseErr.Error()); err != nil {
			return errors.Join(phaseErr, err)
		}
		if attempt >= o.maxPhaseRetries {
			if err := o.transitionTo(ctx, in, current, domain.StatusFailed, phaseErr.Error()); err != nil {
				return errors.Join(phaseErr, err)
			}
			return fmt.Errorf("%s failed after %d attempts: %w", p.name, attempt+1, phaseErr)
		}
		if err := o.transitionTo(ctx, in, current, p.pending, phaseErr.Error()); err != nil {
			return errors.Join(phaseErr, err)
		}
	}
}

// handOff copies the original into the review stage and parks the
// document for the human reviewer.
func (o *Orchestrator) handOff(ctx context.Context, in domain.PipelineInput, current *domain.DocumentStatus) error {
	cctx, cancel := context.WithTimeout(ctx, o.timeouts.Copy)
	defer cancel()

	if err := o.store.CopyBetweenStages(cctx, domain.StageUploaded, domain.StageReview, in.BlobPath()); err != nil {
		copyErr := fmt.Errorf("stage document for review: %w", err)
		if ferr := o.transitionTo(ctx, in, current, domain.StatusFailed, copyErr.Error()); ferr != nil {
			return errors.Join(copyErr, ferr)
		}
		return copyErr
	}

	return o.transitionTo(ctx, in, current, domain.StatusHumanReviewPending, "")
}

// transitionTo validates the edge, persists the new status, and only
// then updates the in-memory position. The persisted and in-memory
// status never diverge.
func (o *Orchestrator) transitionTo(ctx context.Context, in domain.PipelineInput, current *domain.DocumentStatus, next domain.DocumentStatus, errMessage string) error {
	if err := domain.Transition(*current, next); err != nil {
		return err
	}

	sctx, cancel := context.WithTimeout(ctx, o.timeouts.Status)
	defer cancel()
	if err := o.repo.UpdateStatus(sctx, in.DocumentID, next, errMessage); err != nil {
		return fmt.Errorf("persist status %s: %w", next, err)
	}
	*current = next
	return nil
}

// extractText downloads the original, runs the extraction strategy,
// and stores the text in the processed stage. The extracted text never
// lives anywhere else.
func (o *Orchestrator) extractText(ctx context.Context, in domain.PipelineInput) error {
	actx, cancel := context.WithTimeout(ctx, o.timeouts.Extraction)
	defer cancel()

	localPath, err := o.downloadOriginal(actx, in)
	if err != nil {
		return err
	}
	defer os.Remove(localPath)

	text, _, err := o.extractor.Extract(actx, localPath, in.ContentType)
	if err != nil {
		return fmt.Errorf("extract text: %w", err)
	}

	if err := o.store.Save(actx, domain.StageProcessed, in.ExtractedTextPath(), text); err != nil {
		return fmt.Errorf("store extracted text: %w", err)
	}

	extracted, err := o.readExtractedText(actx, in)
	if err != nil {
		return err
	}
	if len(strings.TrimSpace(extracted)) < MinExtractedChars {
		return domain.WrapError(domain.ErrInvalidInput, "validate extraction",
			fmt.Errorf("extracted text too short: %d characters", len(strings.TrimSpace(extracted))))
	}
	return nil
}

// downloadOriginal copies the uploaded blob to a temp file so the
// extraction strategies can work on a local path. The file keeps the
// original extension for registry lookup.
func (o *Orchestrator) downloadOriginal(ctx context.Context, in domain.PipelineInput) (string, error) {
	rc, err := o.store.Open(ctx, domain.StageUploaded, in.BlobPath())
	if err != nil {
		return "", fmt.Errorf("open uploaded blob: %w", err)
	}
	defer rc.Close()

	tmp, err := os.CreateTemp("", "docpipeline-*"+filepath.Ext(in.FileName))
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	if _, err := io.Copy(tmp, rc); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("download uploaded blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("close temp file: %w", err)
	}
	return tmp.Name(), nil
}

func (o *Orchestrator) readExtractedText(ctx context.Context, in domain.PipelineInput) (string, error) {
	rc, err := o.store.Open(ctx, domain.StageProcessed, in.ExtractedTextPath())
	if err != nil {
		return "", fmt.Errorf("open extracted text: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("read extracted text: %w", err)
	}
	return string(data), nil
}

func (o *Orchestrator) classify(ctx context.Context, in domain.PipelineInput) error {
	actx, cancel := context.WithTimeout(ctx, o.timeouts.Classification)
	defer cancel()

	text, err := o.readExtractedText(actx, in)
	if err != nil {
		return err
	}

	res, err := o.classifier.Classify(actx, text)
	if err != nil {
		return fmt.Errorf("classify document: %w", err)
	}
	if res.Error != "" {
		return domain.WrapError(domain.ErrInvalidInput, "classify document", errors.New(res.Error))
	}
	if len(res.Candidates) == 0 {
		return domain.WrapError(domain.ErrInvalidInput, "validate classification",
			errors.New("no classification candidates"))
	}
	if res.Confidence < MinConfidence {
		return domain.WrapError(domain.ErrInvalidInput, "validate classification",
			fmt.Errorf("confidence %.2f below threshold %.2f", res.Confidence, MinConfidence))
	}

	if err := o.repo.SaveClassification(actx, in.DocumentID, res); err != nil {
		return fmt.Errorf("save classification: %w", err)
	}
	return nil
}

func (o *Orchestrator) summarize(ctx context.Context, in domain.PipelineInput) error {
	actx, cancel := context.WithTimeout(ctx, o.timeouts.Summarization)
	defer cancel()

	// The document type is recomputed from the persisted record so a
	// replayed delivery lands on the same strategy.
	doc, err := o.repo.GetByID(actx, in.DocumentID)
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}
	docType := MapDocumentType(doc.DocumentType)

	text, err := o.readExtractedText(actx, in)
	if err != nil {
		return err
	}

	res, err := o.summarizer.Summarize(actx, docType, text)
	if err != nil {
		return fmt.Errorf("summarize document: %w", err)
	}
	if n := len(res.Summary); n < MinSummaryChars || n > MaxSummaryChars {
		return domain.WrapError(domain.ErrInvalidInput, "validate summary",
			fmt.Errorf("summary length %d outside [%d, %d]", n, MinSummaryChars, MaxSummaryChars))
	}

	if err := o.repo.SaveSummary(actx, in.DocumentID, res); err != nil {
		return fmt.Errorf("save summary: %w", err)
	}
	return nil
}
