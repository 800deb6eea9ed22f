package apiv1

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"medstaff-dashboard/internal/domain"
	"medstaff-dashboard/internal/infra/logging"
)

// errorKind is the status and locale key a domain error maps to.
type errorKind struct {
	status int
	code   string
}

var sentinelKinds = []struct {
	err  error
	kind errorKind
}{
	{domain.ErrMissingPriorStepData, errorKind{http.StatusConflict, "missing_prior_step"}},
	{domain.ErrSubmissionInFlight, errorKind{http.StatusConflict, "submission_in_flight"}},
	{domain.ErrStepNotCurrent, errorKind{http.StatusConflict, "step_not_current"}},
	{domain.ErrWizardDisposed, errorKind{http.StatusGone, "session_closed"}},
	{domain.ErrNoActiveSession, errorKind{http.StatusNotFound, "no_active_session"}},
	{domain.ErrUnknownStep, errorKind{http.StatusNotFound, "unknown_step"}},
	{domain.ErrRateLimited, errorKind{http.StatusTooManyRequests, "rate_limited"}},
	{domain.ErrUnauthorized, errorKind{http.StatusUnauthorized, "unauthorized"}},
	{domain.ErrNotFound, errorKind{http.StatusNotFound, "not_found"}},
	{domain.ErrInvalidArgument, errorKind{http.StatusBadRequest, "validation_failed"}},
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ErrorWriter renders errors as translated JSON envelopes.
type ErrorWriter struct {
	tr  Translator
	log *zerolog.Logger
}

func NewErrorWriter(tr Translator, logger *zerolog.Logger) *ErrorWriter {
	return &ErrorWriter{tr: tr, log: logger}
}

// WriteError is ErrorWriter.Write using the server's translator.
func (s *Server) WriteError(w http.ResponseWriter, r *http.Request, err error) {
	s.errs.Write(w, r, err)
}

// Write maps err to a status code and a translated notification.
func (e *ErrorWriter) Write(w http.ResponseWriter, r *http.Request, err error) {
	body := ErrorBody{Error: ErrorDetail{TraceID: logging.TraceID(r.Context())}}
	status := http.StatusInternalServerError
	body.Error.Code = "internal_error"

	var (
		ve  *domain.ValidationError
		rse *domain.RemoteSubmissionError
	)
	switch {
	case errors.As(err, &rse):
		if rse.Rejected() {
			status = http.StatusUnprocessableEntity
			body.Error.Code = "remote_submission_rejected"
			body.Error.Message = e.tr.T(body.Error.Code, rse.Message)
		} else {
			status = http.StatusBadGateway
			body.Error.Code = "remote_submission_failed"
		}
	case errors.As(err, &ve):
		status = http.StatusUnprocessableEntity
		body.Error.Code = "validation_failed"
		body.Error.Fields = ve.Fields
	default:
		for _, sk := range sentinelKinds {
			if errors.Is(err, sk.err) {
				status, body.Error.Code = sk.kind.status, sk.kind.code
				break
			}
		}
	}
	if body.Error.Message == "" {
		body.Error.Message = e.tr.T(body.Error.Code)
	}

	l := logging.With(r.Context(), e.log)
	if status >= http.StatusInternalServerError {
		l.Error().Err(err).Int("status", status).Msg("request failed")
	} else {
		l.Debug().Err(err).Int("status", status).Msg("request rejected")
	}
	WriteJSON(w, status, body)
}
