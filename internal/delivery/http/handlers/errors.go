package handlers

import (
	"errors"
	"net/http"

	httperrors "github.com/LavaJover/shvark-donation-service/internal/delivery/http/errors"
	"github.com/LavaJover/shvark-donation-service/internal/domain"
)

// statusFor maps error kinds to HTTP statuses. Upstream is checked first: a
// mail failure caused by missing SMTP settings is still a 502.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUpstream):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrReceiptNotFound), errors.Is(err, domain.ErrReceiptFileNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	httperrors.Write(w, statusFor(err), httperrors.New(err.Error()))
}
