package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/CavinKrenik/RecovrSocial/internal/event"
	"github.com/CavinKrenik/RecovrSocial/services"
)

type EventHandler struct {
	eventService *services.EventService
}

func NewEventHandler(eventService *services.EventService) *EventHandler {
	return &EventHandler{
		eventService: eventService,
	}
}

func (h *EventHandler) GetEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.eventService.List()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load events")
		return
	}

	respondWithJSON(w, http.StatusOK, events)
}

func (h *EventHandler) AddEvent(w http.ResponseWriter, r *http.Request) {
	var req event.AddEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ev, err := h.eventService.Add(&req)
	if err != nil {
		if errors.Is(err, services.ErrEventMissingFields) ||
			errors.Is(err, services.ErrEventInvalidDate) ||
			errors.Is(err, services.ErrEventInPast) {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to add event")
		return
	}

	respondWithJSON(w, http.StatusCreated, ev)
}
