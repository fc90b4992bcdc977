// Package respond writes JSON responses and maps domain errors to HTTP
// statuses.
package respond

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dalemusser/communityhub/internal/app/console"
	"github.com/dalemusser/communityhub/internal/app/ingest"
	"github.com/dalemusser/communityhub/internal/app/mutation"
	"github.com/dalemusser/communityhub/internal/app/store/viewstate"
	"github.com/dalemusser/communityhub/internal/app/system/communityapi"
	"github.com/dalemusser/communityhub/internal/app/system/inputval"
	"go.uber.org/zap"
)

// MaxBodyBytes bounds JSON request bodies.
const MaxBodyBytes = 1 << 20

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error  string            `json:"error"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields,omitempty"`
}

// ErrForbidden is returned when the operator's role does not allow the
// action.
var ErrForbidden = errors.New("forbidden")

// BadRequestError reports an unreadable request body or parameter.
type BadRequestError struct {
	Err error
}

func (e *BadRequestError) Error() string { return "bad request: " + e.Err.Error() }
func (e *BadRequestError) Unwrap() error { return e.Err }

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// OK writes v with 200.
func OK(w http.ResponseWriter, v any) { JSON(w, http.StatusOK, v) }

// NoContent writes 204.
func NoContent(w http.ResponseWriter) { w.WriteHeader(http.StatusNoContent) }

// Decode reads a JSON body into v. Unknown fields are rejected.
func Decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return &BadRequestError{Err: errors.New("empty body")}
		}
		return &BadRequestError{Err: err}
	}
	return nil
}

// Status maps err to an HTTP status and a stable code.
func Status(err error) (int, string) {
	var (
		ve *inputval.ValidationError
		ne *communityapi.NetworkError
		me *ingest.MalformedRecordError
		br *BadRequestError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusUnprocessableEntity, "validation"
	case errors.As(err, &br):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, mutation.ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, mutation.ErrNotFound), errors.Is(err, viewstate.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, mutation.ErrBusy):
		return http.StatusConflict, "busy"
	case errors.Is(err, mutation.ErrInvalidTransition):
		return http.StatusConflict, "invalid_transition"
	case errors.Is(err, mutation.ErrDuplicate), errors.Is(err, viewstate.ErrDuplicate):
		return http.StatusConflict, "duplicate"
	case errors.Is(err, mutation.ErrKeyChanged):
		return http.StatusConflict, "key_changed"
	case errors.Is(err, viewstate.ErrStale):
		return http.StatusConflict, "stale"
	case errors.Is(err, mutation.ErrNotConfirmed):
		return http.StatusPreconditionRequired, "not_confirmed"
	case errors.Is(err, errors.ErrUnsupported), errors.Is(err, console.ErrNotRemote):
		return http.StatusMethodNotAllowed, "unsupported"
	case errors.Is(err, viewstate.ErrClosed):
		return http.StatusServiceUnavailable, "closed"
	case errors.As(err, &ne):
		if ne.Timeout() {
			return http.StatusGatewayTimeout, "upstream_timeout"
		}
		return http.StatusBadGateway, "upstream"
	case errors.As(err, &me):
		return http.StatusBadGateway, "malformed_upstream"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// Message is the operator-facing text for err.
func Message(err error) string {
	var (
		ve *inputval.ValidationError
		ne *communityapi.NetworkError
		me *ingest.MalformedRecordError
	)
	switch {
	case errors.As(err, &ve):
		msgs := make([]string, len(ve.Fields))
		for i, f := range ve.Fields {
			msgs[i] = f.Message
		}
		return strings.Join(msgs, "; ")
	case errors.As(err, &ne):
		return communityapi.UserMessage(err)
	case errors.As(err, &me):
		return fmt.Sprintf("Données invalides : %s", me.Reason)
	}
	switch _, code := Status(err); code {
	case "bad_request":
		return "Requête invalide"
	case "unauthenticated":
		return "Veuillez vous connecter"
	case "forbidden":
		return "Accès refusé"
	case "not_found":
		return "Élément introuvable"
	case "busy":
		return "Une modification est déjà en cours pour cet élément"
	case "invalid_transition":
		return "Action impossible dans l'état actuel"
	case "duplicate":
		return "Cet identifiant existe déjà"
	case "key_changed":
		return "L'identifiant ne peut pas être modifié"
	case "stale":
		return "Les données ont été rechargées, veuillez réessayer"
	case "not_confirmed":
		return "Veuillez confirmer la suppression"
	case "unsupported":
		return "Action non prise en charge"
	case "closed":
		return "Service en cours d'arrêt"
	case "timeout":
		return "Le serveur ne répond pas (délai dépassé)"
	default:
		return "Une erreur est survenue"
	}
}

// Error writes err as an ErrorBody. Server-side failures are logged.
func Error(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	status, code := Status(err)
	body := ErrorBody{Error: Message(err), Code: code}

	var ve *inputval.ValidationError
	if errors.As(err, &ve) {
		body.Fields = make(map[string]string, len(ve.Fields))
		for _, f := range ve.Fields {
			if _, seen := body.Fields[f.Field]; !seen {
				body.Fields[f.Field] = f.Message
			}
		}
	}

	if log != nil {
		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err),
		}
		if status >= 500 {
			log.Error("request failed", fields...)
		} else {
			log.Debug("request rejected", fields...)
		}
	}
	JSON(w, status, body)
}
