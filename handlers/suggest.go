package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"cinedeck/models"
	"cinedeck/services/catalog"
	"cinedeck/services/suggest"
)

type suggestService interface {
	Suggest(context.Context, string) ([]models.ContentItem, error)
}

var _ suggestService = (*catalog.Service)(nil)

// SuggestHandler keeps one debounced suggester per search box.
type SuggestHandler struct {
	Service  suggestService
	Images   imageResolver
	Options  suggest.Options
	sessions *sessionRegistry[*suggest.Suggester]
}

func NewSuggestHandler(s suggestService, images imageResolver, opts suggest.Options, idle time.Duration) *SuggestHandler {
	return &SuggestHandler{
		Service:  s,
		Images:   images,
		Options:  opts,
		sessions: newSessionRegistry("suggest", idle, func(s *suggest.Suggester) { s.Close() }),
	}
}

func (h *SuggestHandler) Close() {
	h.sessions.Close()
}

type TypeRequest struct {
	Input string `json:"input"`
}

type SuggestResponse struct {
	ID          string         `json:"id"`
	Query       string         `json:"query"`
	Pending     bool           `json:"pending"`
	Suggestions []ItemResponse `json:"suggestions"`
}

func (h *SuggestHandler) Create(w http.ResponseWriter, r *http.Request) {
	var id string
	opts := h.Options
	opts.OnChange = func(query string, items []models.ContentItem) {
		log.Printf("[suggest] session %s: %d suggestions for %q", id, len(items), query)
	}
	s := suggest.New(h.Service.Suggest, opts)
	id = h.sessions.add(s)
	writeJSON(w, http.StatusCreated, h.response(id, s))
}

// Type records the current input. Suggestions arrive after the quiet period
// and are read back with Get.
func (h *SuggestHandler) Type(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s, ok := h.sessions.get(id)
	if !ok {
		writeJSONError(w, "suggestion session not found", http.StatusNotFound)
		return
	}
	var req TypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	s.Type(req.Input)
	writeJSON(w, http.StatusAccepted, h.response(id, s))
}

func (h *SuggestHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s, ok := h.sessions.get(id)
	if !ok {
		writeJSONError(w, "suggestion session not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, h.response(id, s))
}

func (h *SuggestHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !h.sessions.remove(mux.Vars(r)["id"]) {
		writeJSONError(w, "suggestion session not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SuggestHandler) response(id string, s *suggest.Suggester) SuggestResponse {
	return SuggestResponse{
		ID:          id,
		Query:       s.Query(),
		Pending:     s.Pending(),
		Suggestions: presentItems(h.Images, s.Suggestions(), false),
	}
}
