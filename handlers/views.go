package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"cinedeck/models"
	"cinedeck/services/catalog"
	"cinedeck/services/pager"
)

type catalogSources interface {
	CategorySource(catalog.Category) *catalog.CategorySource
	GenreSource(models.MediaKind, int) *catalog.GenreSource
	SearchSource(string) *catalog.SearchSource
}

var _ catalogSources = (*catalog.Service)(nil)

// viewSource is a pageable list whose accumulated items can be read back.
type viewSource interface {
	pager.Source
	Key() string
	Items() []models.ContentItem
}

var (
	_ viewSource = (*catalog.CategorySource)(nil)
	_ viewSource = (*catalog.GenreSource)(nil)
	_ viewSource = (*catalog.SearchSource)(nil)
)

// ViewsHandler runs one infinite-scroll controller per client view.
type ViewsHandler struct {
	Sources  catalogSources
	Images   imageResolver
	Options  pager.Options
	sessions *sessionRegistry[*pager.Controller]
}

func NewViewsHandler(sources catalogSources, images imageResolver, opts pager.Options, idle time.Duration) *ViewsHandler {
	return &ViewsHandler{
		Sources:  sources,
		Images:   images,
		Options:  opts,
		sessions: newSessionRegistry("views", idle, func(c *pager.Controller) { c.Close() }),
	}
}

// Close shuts down every open view.
func (h *ViewsHandler) Close() {
	h.sessions.Close()
}

type GenreRef struct {
	Kind models.MediaKind `json:"kind"`
	ID   int              `json:"id"`
}

// ViewRequest selects the list a view pages through. Exactly one field is set.
type ViewRequest struct {
	Category string    `json:"category,omitempty"`
	Genre    *GenreRef `json:"genre,omitempty"`
	Query    string    `json:"query,omitempty"`
}

// BoundaryRequest carries either a precomputed distance, raw scroll positions
// or an intersection observer result.
type BoundaryRequest struct {
	Distance       *int   `json:"distance,omitempty"`
	Direction      string `json:"direction,omitempty"`
	ScrollY        *int   `json:"scrollY,omitempty"`
	LastScrollY    int    `json:"lastScrollY,omitempty"`
	ViewportHeight int    `json:"viewportHeight,omitempty"`
	ContentHeight  int    `json:"contentHeight,omitempty"`
	Intersecting   *bool  `json:"intersecting,omitempty"`
}

type ViewResponse struct {
	ID         string         `json:"id"`
	Source     string         `json:"source"`
	Items      []ItemResponse `json:"items"`
	Page       int            `json:"page"`
	TotalPages int            `json:"totalPages"`
	HasMore    bool           `json:"hasMore"`
	InFlight   bool           `json:"inFlight"`
	Error      string         `json:"error,omitempty"`
}

type BoundaryResponse struct {
	Started bool         `json:"started"`
	View    ViewResponse `json:"view"`
}

var errBadView = errors.New("view needs exactly one of category, genre or query")

func (h *ViewsHandler) resolve(req ViewRequest) (viewSource, error) {
	set := 0
	if strings.TrimSpace(req.Category) != "" {
		set++
	}
	if req.Genre != nil {
		set++
	}
	if strings.TrimSpace(req.Query) != "" {
		set++
	}
	if set != 1 {
		return nil, errBadView
	}

	switch {
	case req.Genre != nil:
		if !req.Genre.Kind.Valid() || req.Genre.ID <= 0 {
			return nil, errors.New("genre needs kind movie or tv and a positive id")
		}
		return h.Sources.GenreSource(req.Genre.Kind, req.Genre.ID), nil
	case strings.TrimSpace(req.Query) != "":
		return h.Sources.SearchSource(req.Query), nil
	default:
		c, ok := catalog.ParseCategory(req.Category)
		if !ok {
			return nil, catalog.ErrUnknownCategory
		}
		return h.Sources.CategorySource(c), nil
	}
}

func (h *ViewsHandler) decodeSource(w http.ResponseWriter, r *http.Request) (viewSource, bool) {
	var req ViewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid JSON body", http.StatusBadRequest)
		return nil, false
	}
	src, err := h.resolve(req)
	if errors.Is(err, catalog.ErrUnknownCategory) {
		writeJSONError(w, err.Error(), http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	return src, true
}

// Create starts a view and loads its initial pages. A failed initial load
// still creates the view; the error is reported and later boundaries retry.
func (h *ViewsHandler) Create(w http.ResponseWriter, r *http.Request) {
	src, ok := h.decodeSource(w, r)
	if !ok {
		return
	}
	ctrl := pager.New(src, h.Options)
	startErr := ctrl.Start(r.Context())
	id := h.sessions.add(ctrl)

	resp := h.viewResponse(id, ctrl)
	if startErr != nil {
		resp.Error = startErr.Error()
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *ViewsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	ctrl, ok := h.sessions.get(id)
	if !ok {
		writeJSONError(w, "view not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, h.viewResponse(id, ctrl))
}

// Switch points an existing view at another list.
func (h *ViewsHandler) Switch(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	ctrl, ok := h.sessions.get(id)
	if !ok {
		writeJSONError(w, "view not found", http.StatusNotFound)
		return
	}
	src, ok := h.decodeSource(w, r)
	if !ok {
		return
	}
	switchErr := ctrl.Switch(r.Context(), src)

	resp := h.viewResponse(id, ctrl)
	if switchErr != nil {
		resp.Error = switchErr.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ViewsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !h.sessions.remove(mux.Vars(r)["id"]) {
		writeJSONError(w, "view not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Boundary reports the sentinel position. With ?wait=1 the response is sent
// after the triggered fetch has finished.
func (h *ViewsHandler) Boundary(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	ctrl, ok := h.sessions.get(id)
	if !ok {
		writeJSONError(w, "view not found", http.StatusNotFound)
		return
	}
	var req BoundaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	started := ctrl.Observe(req.boundary())
	if started && queryFlag(r, "wait") {
		ctrl.Wait()
	}
	writeJSON(w, http.StatusOK, BoundaryResponse{Started: started, View: h.viewResponse(id, ctrl)})
}

func (req BoundaryRequest) boundary() pager.Boundary {
	switch {
	case req.Intersecting != nil:
		return pager.IntersectionBoundary(*req.Intersecting)
	case req.ScrollY != nil:
		return pager.ScrollBoundary(*req.ScrollY, req.LastScrollY, req.ViewportHeight, req.ContentHeight)
	case req.Distance != nil:
		return pager.Boundary{Distance: *req.Distance, Direction: pager.ParseDirection(req.Direction)}
	default:
		return pager.Boundary{Direction: pager.Still}
	}
}

func (h *ViewsHandler) viewResponse(id string, ctrl *pager.Controller) ViewResponse {
	resp := ViewResponse{ID: id, HasMore: ctrl.HasMore(), InFlight: ctrl.InFlight()}
	src, ok := ctrl.Source().(viewSource)
	if !ok {
		resp.Items = []ItemResponse{}
		return resp
	}
	resp.Source = src.Key()
	resp.Page, resp.TotalPages = src.Cursor()
	resp.Items = presentItems(h.Images, src.Items(), true)
	return resp
}
