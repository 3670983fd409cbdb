package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/CavinKrenik/RecovrSocial/internal/journal"
	"github.com/CavinKrenik/RecovrSocial/middleware"
	"github.com/CavinKrenik/RecovrSocial/services"
)

type JournalHandler struct {
	journalService *services.JournalService
}

func NewJournalHandler(journalService *services.JournalService) *JournalHandler {
	return &JournalHandler{
		journalService: journalService,
	}
}

func (h *JournalHandler) GetEntries(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondWithError(w, http.StatusBadRequest, "User identity missing")
		return
	}

	filter := &journal.Filter{
		Term: r.URL.Query().Get("q"),
		Mood: r.URL.Query().Get("mood"),
		Tag:  r.URL.Query().Get("tag"),
	}

	entries, err := h.journalService.List(userID, filter)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load journal")
		return
	}

	respondWithJSON(w, http.StatusOK, entries)
}

func (h *JournalHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondWithError(w, http.StatusBadRequest, "User identity missing")
		return
	}

	var req journal.EntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	entry, err := h.journalService.Create(userID, &req)
	if err != nil {
		if errors.Is(err, services.ErrEmptyEntry) {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to create entry")
		return
	}

	respondWithJSON(w, http.StatusCreated, entry)
}

func (h *JournalHandler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondWithError(w, http.StatusBadRequest, "User identity missing")
		return
	}

	entryID := mux.Vars(r)["entryID"]

	var req journal.EntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	entry, err := h.journalService.Update(userID, entryID, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyEntry):
			respondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, services.ErrEntryNotFound):
			respondWithError(w, http.StatusNotFound, err.Error())
		default:
			respondWithError(w, http.StatusInternalServerError, "Failed to update entry")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, entry)
}

func (h *JournalHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondWithError(w, http.StatusBadRequest, "User identity missing")
		return
	}

	entryID := mux.Vars(r)["entryID"]

	if err := h.journalService.Delete(userID, entryID); err != nil {
		if errors.Is(err, services.ErrEntryNotFound) {
			respondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to delete entry")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Entry deleted"})
}
