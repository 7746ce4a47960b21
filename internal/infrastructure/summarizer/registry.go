package summarizer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/yithril/docpipeline/internal/core/domain"
	"github.com/yithril/docpipeline/internal/core/ports"
)

// Registry routes a document type to its summarization strategy. The
// general strategy is mandatory; a dedicated strategy that fails to
// build is logged and skipped, and its types fall back to general.
type Registry struct {
	strategies map[string]Strategy
	fallback   Strategy
}

func NewRegistry(backend ports.ModelBackend) (*Registry, error) {
	fallback, err := NewGeneralStrategy(backend)
	if err != nil {
		return nil, fmt.Errorf("build general summarization strategy: %w", err)
	}

	r := &Registry{
		strategies: map[string]Strategy{},
		fallback:   fallback,
	}
	for _, build := range []func(ports.ModelBackend) (Strategy, error){
		NewLegalDocumentStrategy,
		NewEmailStrategy,
	} {
		s, err := build(backend)
		if err != nil {
			slog.Warn("summarization_strategy_unavailable", "error", err)
			continue
		}
		r.strategies[s.DocumentType()] = s
	}
	return r, nil
}

// StrategyFor returns the strategy handling the document type, or the
// general fallback.
func (r *Registry) StrategyFor(documentType string) Strategy {
	if s, ok := r.strategies[documentType]; ok {
		return s
	}
	return r.fallback
}

// Summarize runs the appropriate strategy for the document type.
func (r *Registry) Summarize(ctx context.Context, documentType, text string) (domain.SummaryResult, error) {
	res, err := r.StrategyFor(documentType).Summarize(ctx, text)
	if err != nil {
		return domain.SummaryResult{}, err
	}
	return *res, nil
}
