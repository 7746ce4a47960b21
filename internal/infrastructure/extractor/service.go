package extractor

import (
	"context"
	"errors"
	"io"

	"github.com/yithril/docpipeline/internal/core/domain"
)

// Service adapts the strategy registry to the text-extraction port.
// Failure kinds are translated into the domain error taxonomy so the
// pipeline never depends on this package.
type Service struct {
	registry *Registry
}

func NewService() *Service {
	return &Service{registry: NewRegistry()}
}

func (s *Service) Extract(ctx context.Context, filePath, mimeType string) (io.Reader, map[string]any, error) {
	strategy, err := s.registry.Get(filePath, mimeType)
	if err != nil {
		return nil, nil, err
	}

	res := strategy.Extract(ctx, filePath)
	if !res.Success {
		cause := errors.New(res.ErrorMessage)
		op := "extract " + strategy.Name()
		switch res.Kind {
		case KindCorrupted:
			return nil, nil, domain.WrapError(domain.ErrCorruptedFile, op, cause)
		case KindUnsupported:
			return nil, nil, domain.WrapError(domain.ErrUnsupportedFileType, op, cause)
		default:
			return nil, nil, domain.WrapError(domain.ErrInvalidInput, op, cause)
		}
	}

	metadata := make(map[string]any, len(res.Metadata)+2)
	for k, v := range res.Metadata {
		metadata[k] = v
	}
	metadata["strategy"] = res.StrategyUsed
	metadata["processing_time"] = res.ProcessingTime

	return NewReader(res.Text), metadata, nil
}
