package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"cinedeck/models"
	"cinedeck/services/catalog"
	"cinedeck/services/gateway"
)

// imageResolver turns stored image paths into absolute URLs.
type imageResolver interface {
	Poster(path string) string
	Backdrop(path string) string
	Profile(path string) string
}

var _ imageResolver = (*gateway.Images)(nil)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeJSONError writes a JSON error response
func writeJSONError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps service and gateway errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrUnknownCategory), gateway.IsNotFound(err):
		writeJSONError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, catalog.ErrEmptyQuery):
		writeJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, catalog.ErrDetailSuperseded), errors.Is(err, catalog.ErrSearchSuperseded), errors.Is(err, catalog.ErrPageInFlight):
		writeJSONError(w, err.Error(), http.StatusConflict)
	default:
		writeJSONError(w, err.Error(), http.StatusBadGateway)
	}
}

// queryPage returns the page query parameter, or 0 when absent or invalid.
func queryPage(r *http.Request) int {
	raw := strings.TrimSpace(r.URL.Query().Get("page"))
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0
	}
	return n
}

func queryFlag(r *http.Request, name string) bool {
	switch strings.ToLower(strings.TrimSpace(r.URL.Query().Get(name))) {
	case "1", "true", "yes":
		return true
	}
	return false
}

// ItemResponse is a content item with resolved image URLs.
type ItemResponse struct {
	models.ContentItem
	PosterURL   string `json:"posterUrl"`
	BackdropURL string `json:"backdropUrl"`
}

func presentItem(img imageResolver, item models.ContentItem) ItemResponse {
	return ItemResponse{
		ContentItem: item,
		PosterURL:   img.Poster(item.PosterPath),
		BackdropURL: img.Backdrop(item.BackdropPath),
	}
}

// presentItems converts items, optionally dropping posterless and repeated entries first.
func presentItems(img imageResolver, items []models.ContentItem, visible bool) []ItemResponse {
	if visible {
		items = catalog.VisibleItems(items)
	}
	out := make([]ItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, presentItem(img, item))
	}
	return out
}
