package handler

import (
	"net/http"

	"github.com/opengather/gather/internal/middleware"
	"github.com/opengather/gather/internal/model"
	"github.com/opengather/gather/internal/service"
)

// EventHandler handles event CRUD and attendance endpoints
type EventHandler struct {
	eventService *service.EventService
}

// NewEventHandler creates a new event handler
func NewEventHandler(eventService *service.EventService) *EventHandler {
	return &EventHandler{
		eventService: eventService,
	}
}

// Create handles POST /v1/events
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireParticipant(w, r)
	if !ok {
		return
	}

	var req model.CreateEventRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	if fieldErrs := req.Validate(); len(fieldErrs) > 0 {
		WriteError(w, model.NewValidationError(fieldErrs))
		return
	}

	event, err := h.eventService.CreateEvent(r.Context(), userID, &req)
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "create event"))
		return
	}

	WriteData(w, http.StatusCreated, event, map[string]string{
		"self": "/v1/events/" + event.ID,
	})
}

// List handles GET /v1/events
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	filters := model.EventFilters{
		Category: r.URL.Query().Get("category"),
		Date:     r.URL.Query().Get("date"),
		Search:   r.URL.Query().Get("search"),
	}

	if fieldErrs := filters.Validate(); len(fieldErrs) > 0 {
		WriteError(w, model.NewValidationError(fieldErrs))
		return
	}

	events, err := h.eventService.ListEvents(r.Context(), filters)
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "list events"))
		return
	}

	WriteCollection(w, http.StatusOK, events, nil, map[string]string{
		"self": "/v1/events",
	})
}

// Get handles GET /v1/events/{eventId}
func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventId")

	event, err := h.eventService.GetEvent(r.Context(), eventID)
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "get event"))
		return
	}

	WriteData(w, http.StatusOK, event, map[string]string{
		"self": "/v1/events/" + event.ID,
	})
}

// Update handles PUT /v1/events/{eventId}
func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireParticipant(w, r)
	if !ok {
		return
	}

	eventID := r.PathValue("eventId")

	var req model.UpdateEventRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	if fieldErrs := req.Validate(); len(fieldErrs) > 0 {
		WriteError(w, model.NewValidationError(fieldErrs))
		return
	}

	event, err := h.eventService.UpdateEvent(r.Context(), eventID, userID, &req)
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "update event"))
		return
	}

	WriteData(w, http.StatusOK, event, map[string]string{
		"self": "/v1/events/" + event.ID,
	})
}

// Delete handles DELETE /v1/events/{eventId}
func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireParticipant(w, r)
	if !ok {
		return
	}

	eventID := r.PathValue("eventId")

	if err := h.eventService.DeleteEvent(r.Context(), eventID, userID); err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "delete event"))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"message": "event deleted"})
}

// Attend handles POST /v1/events/{eventId}/attend
// The operation toggles: attending users leave, others join if a slot remains
func (h *EventHandler) Attend(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireParticipant(w, r)
	if !ok {
		return
	}

	eventID := r.PathValue("eventId")

	event, err := h.eventService.ToggleAttendance(r.Context(), eventID, userID)
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "toggle attendance"))
		return
	}

	WriteData(w, http.StatusOK, event, map[string]string{
		"self": "/v1/events/" + event.ID,
	})
}

// requireParticipant checks that the request carries an authenticated,
// non-guest user and returns their ID
func (h *EventHandler) requireParticipant(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil || claims.UserID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return "", false
	}
	if claims.IsGuest() {
		WriteError(w, MapServiceError(service.ErrGuestNotAllowed))
		return "", false
	}
	return claims.UserID, true
}
