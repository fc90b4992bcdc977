package health

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dalemusser/communityhub/internal/app/system/timeouts"
	"github.com/dalemusser/communityhub/internal/app/system/workers"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Prober reports the last upstream probe result.
type Prober interface {
	Status() workers.ProbeStatus
}

// Handler holds dependencies needed for health checks.
type Handler struct {
	Client   *mongo.Client // nil when the audit store is disabled
	Upstream Prober
	Log      *zap.Logger
}

// NewHandler constructs a health Handler. client may be nil.
func NewHandler(client *mongo.Client, upstream Prober, logger *zap.Logger) *Handler {
	return &Handler{
		Client:   client,
		Upstream: upstream,
		Log:      logger,
	}
}

// healthResponse is the JSON structure for the health check response.
type healthResponse struct {
	Status   string               `json:"status"`
	Database string               `json:"database"`
	Upstream *workers.ProbeStatus `json:"upstream,omitempty"`
	Message  string               `json:"message,omitempty"`
	Error    string               `json:"error,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "database":"connected", "upstream":{"ok":true,...} }
//
// An unreachable community API answers 200 with status "degraded": the
// console still serves the collections it holds. On DB failure: 503 and
//
//	{ "status":"error", "message":"Database unavailable", "error":"…"}
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	resp := healthResponse{
		Status:   "ok",
		Database: "disabled",
	}

	if h.Client != nil {
		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
		defer cancel()

		if err := h.Client.Ping(ctx, readpref.Primary()); err != nil {
			h.Log.Error("health-check: mongo ping failed", zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			resp.Status = "error"
			resp.Database = "disconnected"
			resp.Message = "Database unavailable"
			resp.Error = err.Error()
			_ = json.NewEncoder(w).Encode(resp)
			return
		}
		resp.Database = "connected"
	}

	if h.Upstream != nil {
		st := h.Upstream.Status()
		resp.Upstream = &st
		if !st.OK {
			resp.Status = "degraded"
		}
	}

	_ = json.NewEncoder(w).Encode(resp)
}
