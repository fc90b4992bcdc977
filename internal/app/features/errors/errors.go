// internal/app/features/errors/errors.go
package errors

import (
	"net/http"

	"github.com/dalemusser/communityhub/internal/app/system/respond"
	"go.uber.org/zap"
)

// Handler answers requests that match no route, or match a route with the
// wrong method, in the same JSON shape as every other error.
type Handler struct {
	Log *zap.Logger
}

// NewHandler constructs an errors Handler.
func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{Log: logger}
}

// NotFound is the router's not-found handler.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.Log.Debug("no route", zap.String("method", r.Method), zap.String("path", r.URL.Path))
	respond.JSON(w, http.StatusNotFound, respond.ErrorBody{
		Error: "Page introuvable",
		Code:  "not_found",
	})
}

// MethodNotAllowed is the router's wrong-method handler.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusMethodNotAllowed, respond.ErrorBody{
		Error: "Opération non prise en charge",
		Code:  "unsupported",
	})
}
