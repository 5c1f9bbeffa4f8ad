package httpadapter

import (
	"net/http"

	"github.com/kirillkom/resume-router/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrRejectedInput),
		domain.IsKind(err, domain.ErrStorage),
		domain.IsKind(err, domain.ErrExtraction),
		domain.IsKind(err, domain.ErrNoText):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrRunNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// publicErrorMessage hides internal details behind a generic message for 5xx.
func publicErrorMessage(err error, status int) string {
	switch status {
	case http.StatusInternalServerError:
		return "internal server error"
	case http.StatusServiceUnavailable:
		return "service temporarily unavailable, retry later"
	default:
		return err.Error()
	}
}
