package httpadapter

import (
	"errors"
	"net/http"

	"github.com/yithril/docpipeline/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	var terr *domain.TransitionError
	switch {
	case domain.IsKind(err, domain.ErrUnsupportedFileType):
		return http.StatusUnsupportedMediaType
	case domain.IsKind(err, domain.ErrInvalidInput), domain.IsKind(err, domain.ErrCorruptedFile):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrDocumentNotFound):
		return http.StatusNotFound
	case errors.As(err, &terr):
		return http.StatusConflict
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
