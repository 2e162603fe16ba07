package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/opengather/gather/internal/middleware"
	"github.com/opengather/gather/internal/model"
	"github.com/opengather/gather/internal/service"
)

// StreamHandler handles SSE event streaming
type StreamHandler struct {
	hub *service.Hub
}

// NewStreamHandler creates a new stream handler
func NewStreamHandler(hub *service.Hub) *StreamHandler {
	return &StreamHandler{
		hub: hub,
	}
}

// Stream handles GET /v1/events/stream
// This endpoint streams realtime event and attendance notifications
func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	// Check if the client supports SSE
	flusher, ok := w.(http.Flusher)
	if !ok {
		WriteError(w, model.NewInternalError("streaming not supported"))
		return
	}

	// The stream outlives the server's WriteTimeout; clear the deadline for
	// this response. Writers without deadline support report an error we
	// can ignore.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	// Generate subscriber ID
	subscriberID := uuid.New().String()

	sub := h.hub.Subscribe(subscriberID)
	defer h.hub.Unsubscribe(subscriberID)

	// The connection must not outlive the credential it was opened with
	var expiry <-chan time.Time
	if claims := middleware.GetClaims(r.Context()); claims != nil && claims.ExpiresAt > 0 {
		timer := time.NewTimer(time.Until(time.Unix(claims.ExpiresAt, 0)))
		defer timer.Stop()
		expiry = timer.C
	}

	// Send initial connection event
	fmt.Fprintf(w, "event: connected\ndata: {\"subscriber_id\":\"%s\"}\n\n", subscriberID)
	flusher.Flush()

	// Stream notifications
	for {
		select {
		case n, ok := <-sub.Notifications:
			if !ok {
				return
			}
			fmt.Fprint(w, n.Format())
			flusher.Flush()

		case <-sub.Done:
			return

		case <-expiry:
			// Token expired mid-stream
			return

		case <-r.Context().Done():
			// Client disconnected
			return
		}
	}
}
