package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5"

	"github.com/pardaaf/backoffice/pkg/catalog"
	"github.com/pardaaf/backoffice/pkg/dbpool"
	"github.com/pardaaf/backoffice/pkg/imaging"
	"github.com/pardaaf/backoffice/pkg/printqueue"
	"github.com/pardaaf/backoffice/pkg/token"
)

type errorEnvelope struct {
	Error string `json:"error"`
}

func (s *Service) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeError maps the error taxonomy onto HTTP statuses. Internal errors
// go through the fault sink; everything else is the caller's problem and
// is answered without a fault report.
func (s *Service) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := statusFor(err)

	if status == http.StatusInternalServerError {
		if s.faults != nil {
			s.faults.Report(r.Context(), r.URL.Path, err)
		} else {
			s.logger.ErrorContext(r.Context(), "internal error",
				slog.String("path", r.URL.Path),
				slog.String("error", err.Error()))
		}
	}

	s.writeJSON(w, status, errorEnvelope{Error: message})
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrUnauthenticated),
		errors.Is(err, token.ErrInvalid),
		errors.Is(err, token.ErrExpired):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, token.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, ErrNotFound),
		errors.Is(err, catalog.ErrGalleryNotFound),
		errors.Is(err, pgx.ErrNoRows):
		return http.StatusNotFound, "not found"
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, catalog.ErrInvalidCodename),
		errors.Is(err, imaging.ErrUndecodable),
		errors.Is(err, imaging.ErrTooLarge),
		errors.Is(err, printqueue.ErrEmptyTenant),
		errors.Is(err, printqueue.ErrEmptyFileName):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, dbpool.ErrUnavailable),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "service unavailable"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
