package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/CavinKrenik/RecovrSocial/internal/milestone"
	"github.com/CavinKrenik/RecovrSocial/internal/profile"
	"github.com/CavinKrenik/RecovrSocial/middleware"
	"github.com/CavinKrenik/RecovrSocial/services"
)

type ProfileHandler struct {
	profileService *services.ProfileService
}

func NewProfileHandler(profileService *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
	}
}

func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondWithError(w, http.StatusBadRequest, "User identity missing")
		return
	}

	p, err := h.profileService.GetProfile(userID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load profile")
		return
	}

	respondWithJSON(w, http.StatusOK, p)
}

func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondWithError(w, http.StatusBadRequest, "User identity missing")
		return
	}

	var req profile.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.profileService.UpdateNickname(userID, req.Nickname); err != nil {
		if errors.Is(err, services.ErrEmptyNickname) {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Profile updated"})
}

func (h *ProfileHandler) SetCleanDate(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondWithError(w, http.StatusBadRequest, "User identity missing")
		return
	}

	var req profile.SetCleanDateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.profileService.SetCleanDate(userID, req.CleanDate); err != nil {
		if errors.Is(err, services.ErrInvalidCleanDate) || errors.Is(err, milestone.ErrFutureCleanDate) {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to save clean date")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Clean date saved"})
}

func (h *ProfileHandler) UpdatePrivacy(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondWithError(w, http.StatusBadRequest, "User identity missing")
		return
	}

	var req profile.PrivacyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.profileService.SetPrivacy(userID, &req); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to update privacy settings")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Privacy settings updated"})
}

func (h *ProfileHandler) GetTracker(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondWithError(w, http.StatusBadRequest, "User identity missing")
		return
	}

	tracker, err := h.profileService.Tracker(userID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load tracker")
		return
	}

	respondWithJSON(w, http.StatusOK, tracker)
}
