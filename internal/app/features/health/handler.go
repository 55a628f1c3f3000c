package health

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dalemusser/itemmanager/internal/app/system/listmirror"
	"github.com/dalemusser/itemmanager/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Handler holds dependencies needed for health checks.
type Handler struct {
	Client *mongo.Client
	Mirror *listmirror.Mirror
	Log    *zap.Logger
}

// NewHandler constructs a health Handler. mirror may be nil.
func NewHandler(client *mongo.Client, mirror *listmirror.Mirror, logger *zap.Logger) *Handler {
	return &Handler{
		Client: client,
		Mirror: mirror,
		Log:    logger,
	}
}

// healthResponse is the JSON structure for the health check response.
type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
	Mirrored *int   `json:"mirrored_lists,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "database":"connected", "mirrored_lists":3 }
//
// On DB failure: 503 and
//
//	{ "status":"error", "message":"Database unavailable", "error":"…"}
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	w.Header().Set("Content-Type", "application/json")

	resp := healthResponse{
		Status:   "ok",
		Database: "connected",
	}

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

	if h.Mirror != nil {
		n := h.Mirror.Len()
		resp.Mirrored = &n
	}

	_ = json.NewEncoder(w).Encode(resp)
}
