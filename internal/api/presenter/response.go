package presenter

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/darmiel/cpd/internal/core"
	"github.com/darmiel/cpd/internal/service"
)

// Code identifies an error kind independent of its message.
type Code string

const (
	CodeBadRequest     Code = "bad_request"
	CodeKeyRejected    Code = "key_rejected"
	CodeNotAccepted    Code = "identity_not_accepted"
	CodeLoginRequired  Code = "login_required"
	CodeInvalidSession Code = "invalid_session"
	CodeForbidden      Code = "forbidden"
	CodeNotImplemented Code = "not_implemented"
	CodeNotReady       Code = "not_ready"
	CodeInternal       Code = "internal"
)

type ErrorResponse struct {
	Error         string `json:"error"`
	Code          Code   `json:"code"`
	CorrelationID string `json:"correlation_id"`
}

// JSON writes data with the given status. Responses carry identities and are never cached.
func JSON(w http.ResponseWriter, r *http.Request, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("failed to write json response")
	}
}

func Error(w http.ResponseWriter, r *http.Request, code Code, msg string, status int) {
	JSON(w, r, ErrorResponse{
		Error:         msg,
		Code:          code,
		CorrelationID: core.CorrelationID(r.Context()),
	}, status)
}

// Err writes an error returned by the identity service.
// Only *service.HTTPError messages reach the client, anything else becomes a 500.
func Err(w http.ResponseWriter, r *http.Request, err error) {
	var httpErr *service.HTTPError
	if !errors.As(err, &httpErr) {
		log.Ctx(r.Context()).Error().Err(err).Msg("unexpected service error")
		Error(w, r, CodeInternal, "internal error", http.StatusInternalServerError)
		return
	}
	Error(w, r, codeOf(httpErr), httpErr.Error(), httpErr.StatusCode)
}

func codeOf(err *service.HTTPError) Code {
	switch {
	case errors.Is(err, service.ErrRejected):
		return CodeKeyRejected
	case errors.Is(err, service.ErrNotAccepted):
		return CodeNotAccepted
	case err.StatusCode >= http.StatusInternalServerError:
		return CodeInternal
	default:
		return CodeBadRequest
	}
}
