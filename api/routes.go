package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"cinedeck/handlers"
)

// corsMiddleware handles CORS for API routes
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		// Handle preflight requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// handleOptions handles OPTIONS requests for CORS preflight
func handleOptions(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// Register mounts API endpoints onto the provided router.
func Register(
	r *mux.Router,
	catalogHandler *handlers.CatalogHandler,
	viewsHandler *handlers.ViewsHandler,
	suggestHandler *handlers.SuggestHandler,
	profileHandler *handlers.ProfileHandler,
) {
	api := r.PathPrefix("/api").Subrouter()
	api.Use(corsMiddleware)

	// Category lists
	api.HandleFunc("/categories", catalogHandler.Categories).Methods(http.MethodGet)
	api.HandleFunc("/categories/{key}", catalogHandler.Category).Methods(http.MethodGet)
	api.HandleFunc("/categories/{key}/reset", catalogHandler.ResetCategory).Methods(http.MethodPost)

	api.HandleFunc("/state", catalogHandler.State).Methods(http.MethodGet)
	api.HandleFunc("/state/error", catalogHandler.ClearError).Methods(http.MethodDelete)
	api.HandleFunc("/selection", catalogHandler.Select).Methods(http.MethodPut)
	api.HandleFunc("/selection", catalogHandler.ClearSelection).Methods(http.MethodDelete)

	api.HandleFunc("/home", catalogHandler.Home).Methods(http.MethodGet)

	api.HandleFunc("/genres", catalogHandler.Genres).Methods(http.MethodGet)
	api.HandleFunc("/genres/{kind}/{id}", catalogHandler.GenreListing).Methods(http.MethodGet)

	api.HandleFunc("/detail", catalogHandler.CloseDetail).Methods(http.MethodDelete)
	api.HandleFunc("/detail/{id}", catalogHandler.Detail).Methods(http.MethodGet)

	api.HandleFunc("/search", catalogHandler.Search).Methods(http.MethodGet)
	api.HandleFunc("/search", catalogHandler.ClearSearch).Methods(http.MethodDelete)

	// Infinite-scroll views
	api.HandleFunc("/views", viewsHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/views/{id}", viewsHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/views/{id}", viewsHandler.Switch).Methods(http.MethodPut)
	api.HandleFunc("/views/{id}", viewsHandler.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/views/{id}/boundary", viewsHandler.Boundary).Methods(http.MethodPost)

	// Type-ahead suggestions
	api.HandleFunc("/suggest", suggestHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/suggest/{id}", suggestHandler.Type).Methods(http.MethodPost)
	api.HandleFunc("/suggest/{id}", suggestHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/suggest/{id}", suggestHandler.Delete).Methods(http.MethodDelete)

	api.HandleFunc("/profile", profileHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/profile", profileHandler.Put).Methods(http.MethodPut)
	api.HandleFunc("/profile", profileHandler.Delete).Methods(http.MethodDelete)

	api.PathPrefix("/").HandlerFunc(handleOptions).Methods(http.MethodOptions)
}
