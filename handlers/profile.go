package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"cinedeck/models"
	"cinedeck/services/profile"
)

type profileService interface {
	SignIn(models.UserProfile) (models.UserProfile, error)
	SignOut() bool
	Current() (models.UserProfile, bool)
}

var _ profileService = (*profile.Service)(nil)

type ProfileHandler struct {
	Service profileService
}

func NewProfileHandler(s profileService) *ProfileHandler {
	return &ProfileHandler{Service: s}
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Service.Current()
	if !ok {
		writeJSONError(w, "not signed in", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Put records the profile returned by the identity provider.
func (h *ProfileHandler) Put(w http.ResponseWriter, r *http.Request) {
	var p models.UserProfile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSONError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	stored, err := h.Service.SignIn(p)
	if errors.Is(err, profile.ErrProfileIDRequired) {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, stored)
}

func (h *ProfileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	h.Service.SignOut()
	w.WriteHeader(http.StatusNoContent)
}
