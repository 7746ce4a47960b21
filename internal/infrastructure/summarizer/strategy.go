package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yithril/docpipeline/internal/core/domain"
	"github.com/yithril/docpipeline/internal/core/ports"
)

// Strategy produces a summary for one document type.
type Strategy interface {
	DocumentType() string
	Summarize(ctx context.Context, text string) (*domain.SummaryResult, error)
}

// baseStrategy implements the shared summarize flow: truncate input to
// the model budget, render the per-type prompt, generate, post-process.
type baseStrategy struct {
	documentType string
	cfg          Config
	backend      ports.ModelBackend
	buildPrompt  func(content string) string
	postProcess  func(output string) string
}

func newBaseStrategy(
	documentType string,
	backend ports.ModelBackend,
	buildPrompt func(string) string,
	postProcess func(string) string,
) (*baseStrategy, error) {
	cfg := ConfigFor(documentType)
	if cfg.Model == "" {
		return nil, domain.WrapError(domain.ErrModelLoad, "summarizer."+documentType,
			fmt.Errorf("no model configured for document type %q", documentType))
	}
	if backend == nil {
		return nil, domain.WrapError(domain.ErrModelLoad, "summarizer."+documentType,
			errors.New("model backend is nil"))
	}
	if postProcess == nil {
		postProcess = strings.TrimSpace
	}
	return &baseStrategy{
		documentType: documentType,
		cfg:          cfg,
		backend:      backend,
		buildPrompt:  buildPrompt,
		postProcess:  postProcess,
	}, nil
}

func (s *baseStrategy) DocumentType() string { return s.documentType }

func (s *baseStrategy) Summarize(ctx context.Context, text string) (*domain.SummaryResult, error) {
	start := time.Now()

	if strings.TrimSpace(text) == "" {
		return nil, domain.WrapError(domain.ErrEmptyInput, "summarize", errors.New("input text is empty"))
	}

	content := text
	if budget := s.cfg.InputBudgetChars(); len(content) > budget {
		content = content[:budget]
	}

	out, err := s.backend.Generate(ctx, s.cfg.Model, s.buildPrompt(content), s.cfg.ReservedOutputTokens)
	if err != nil {
		return nil, domain.WrapError(domain.ErrGeneration, "summarize."+s.documentType, err)
	}

	summary := s.postProcess(out)
	if summary == "" {
		return nil, domain.WrapError(domain.ErrGeneration, "summarize."+s.documentType,
			errors.New("model returned an empty summary"))
	}

	return &domain.SummaryResult{
		Summary: summary,
		Metadata: map[string]any{
			"document_type": s.documentType,
		},
		ModelUsed:      s.cfg.Model,
		ProcessingTime: time.Since(start).Seconds(),
		TokenCount:     ApproximateTokens(text),
	}, nil
}

// stripSummaryMarker cuts off everything up to the last "Summary:"
// marker when the model echoes the prompt back.
func stripSummaryMarker(output string) string {
	if idx := strings.LastIndex(output, "Summary:"); idx >= 0 {
		output = output[idx+len("Summary:"):]
	}
	return strings.TrimSpace(output)
}
