package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"cinedeck/models"
	"cinedeck/services/catalog"
)

const (
	detailCastLimit            = 12
	detailRecommendationsLimit = 6
)

type catalogService interface {
	LoadPage(context.Context, catalog.Category, int) (int, error)
	LoadGenrePage(context.Context, models.MediaKind, int, int) (int, error)
	Reset(catalog.Category)
	LoadHome(context.Context) catalog.HomeView
	Genres(context.Context) (models.GenreCatalog, error)
	OpenDetail(context.Context, models.MediaKind, int64) (*models.ContentDetail, error)
	CloseDetail()
	Search(context.Context, string, int) (models.SearchState, error)
	ClearSearch()
	Select(models.ContentItem)
	ClearSelection()
	ClearError()
	Store() *catalog.Store
}

var _ catalogService = (*catalog.Service)(nil)

// CatalogHandler serves the category lists, home view, genres, detail and search.
type CatalogHandler struct {
	Service catalogService
	Images  imageResolver
}

func NewCatalogHandler(s catalogService, images imageResolver) *CatalogHandler {
	return &CatalogHandler{Service: s, Images: images}
}

type CategoryInfo struct {
	Key   string           `json:"key"`
	Title string           `json:"title"`
	Kind  models.MediaKind `json:"kind"`
	Group string           `json:"group"`
}

// CategoryResponse is the accumulated state of one list.
type CategoryResponse struct {
	Key        string           `json:"key"`
	Title      string           `json:"title,omitempty"`
	Kind       models.MediaKind `json:"kind"`
	Items      []ItemResponse   `json:"items"`
	Page       int              `json:"page"`
	TotalPages int              `json:"totalPages"`
	HasMore    bool             `json:"hasMore"`
	Error      string           `json:"error,omitempty"`
}

type StateResponse struct {
	Loading  bool              `json:"loading"`
	Pending  int               `json:"pending"`
	Error    string            `json:"error,omitempty"`
	Detail   *models.DetailKey `json:"detail,omitempty"`
	Selected *ItemResponse     `json:"selected,omitempty"`
}

type HomeRowResponse struct {
	Key   string         `json:"key"`
	Title string         `json:"title"`
	Items []ItemResponse `json:"items"`
	Error string         `json:"error,omitempty"`
}

type HeroResponse struct {
	ItemResponse
	Date string `json:"date"`
}

type HomeResponse struct {
	Hero []HeroResponse    `json:"hero"`
	Rows []HomeRowResponse `json:"rows"`
}

type CastResponse struct {
	models.CastMember
	ProfileURL string `json:"profileUrl"`
}

// DetailResponse shadows the list fields of ContentDetail with presented versions.
type DetailResponse struct {
	models.ContentDetail
	PosterURL       string         `json:"posterUrl"`
	BackdropURL     string         `json:"backdropUrl"`
	Cast            []CastResponse `json:"cast"`
	Similar         []ItemResponse `json:"similar"`
	Recommendations []ItemResponse `json:"recommendations"`
}

type SearchResponse struct {
	Query      string         `json:"query"`
	Items      []ItemResponse `json:"items"`
	Page       int            `json:"page"`
	TotalPages int            `json:"totalPages"`
	HasMore    bool           `json:"hasMore"`
}

func (h *CatalogHandler) Categories(w http.ResponseWriter, r *http.Request) {
	all := catalog.Categories()
	out := make([]CategoryInfo, 0, len(all))
	for _, c := range all {
		def := c.Definition()
		out = append(out, CategoryInfo{Key: def.Key, Title: def.Title, Kind: def.Kind, Group: def.Group})
	}
	writeJSON(w, http.StatusOK, out)
}

// Category loads the requested page of a category, or page 1 when nothing is
// loaded yet and no page was asked for, then returns the accumulated list.
func (h *CatalogHandler) Category(w http.ResponseWriter, r *http.Request) {
	c, ok := catalog.ParseCategory(mux.Vars(r)["key"])
	if !ok {
		writeJSONError(w, "unknown category", http.StatusNotFound)
		return
	}

	page := queryPage(r)
	if page == 0 && len(h.Service.Store().Category(c).Items) == 0 {
		page = 1
	}
	if page > 0 {
		if _, err := h.Service.LoadPage(r.Context(), c, page); err != nil {
			writeServiceError(w, err)
			return
		}
	}

	def := c.Definition()
	resp := h.categoryResponse(def.Key, h.Service.Store().Category(c), queryFlag(r, "visible"))
	resp.Title = def.Title
	resp.Kind = def.Kind
	writeJSON(w, http.StatusOK, resp)
}

func (h *CatalogHandler) ResetCategory(w http.ResponseWriter, r *http.Request) {
	c, ok := catalog.ParseCategory(mux.Vars(r)["key"])
	if !ok {
		writeJSONError(w, "unknown category", http.StatusNotFound)
		return
	}
	h.Service.Reset(c)
	w.WriteHeader(http.StatusNoContent)
}

func (h *CatalogHandler) State(w http.ResponseWriter, r *http.Request) {
	st := h.Service.Store().Snapshot()
	resp := StateResponse{Loading: st.Loading(), Pending: st.Pending, Error: st.Err, Detail: st.DetailKey}
	if st.Selected != nil {
		item := presentItem(h.Images, *st.Selected)
		resp.Selected = &item
	}
	writeJSON(w, http.StatusOK, resp)
}

// Select records the item the user is hovering or focusing.
func (h *CatalogHandler) Select(w http.ResponseWriter, r *http.Request) {
	var item models.ContentItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		writeJSONError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if item.ID <= 0 {
		writeJSONError(w, "item id is required", http.StatusBadRequest)
		return
	}
	if !item.Kind.Valid() {
		item.Kind = models.KindMovie
	}
	h.Service.Select(item)
	w.WriteHeader(http.StatusNoContent)
}

func (h *CatalogHandler) ClearSelection(w http.ResponseWriter, r *http.Request) {
	h.Service.ClearSelection()
	w.WriteHeader(http.StatusNoContent)
}

func (h *CatalogHandler) ClearError(w http.ResponseWriter, r *http.Request) {
	h.Service.ClearError()
	w.WriteHeader(http.StatusNoContent)
}

func (h *CatalogHandler) Home(w http.ResponseWriter, r *http.Request) {
	view := h.Service.LoadHome(r.Context())

	resp := HomeResponse{
		Hero: make([]HeroResponse, 0, len(view.Hero)),
		Rows: make([]HomeRowResponse, 0, len(view.Rows)),
	}
	for _, item := range view.Hero {
		resp.Hero = append(resp.Hero, HeroResponse{ItemResponse: presentItem(h.Images, item.ContentItem), Date: item.Date})
	}
	for _, row := range view.Rows {
		resp.Rows = append(resp.Rows, HomeRowResponse{
			Key:   row.Category.Key,
			Title: row.Category.Title,
			Items: presentItems(h.Images, row.Page.Items, true),
			Error: row.Page.Error,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *CatalogHandler) Genres(w http.ResponseWriter, r *http.Request) {
	genres, err := h.Service.Genres(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, genres)
}

// GenreListing works like Category for /genres/{kind}/{id}.
func (h *CatalogHandler) GenreListing(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	kind := models.MediaKind(strings.ToLower(vars["kind"]))
	if !kind.Valid() {
		writeJSONError(w, "kind must be movie or tv", http.StatusBadRequest)
		return
	}
	genreID, err := strconv.Atoi(vars["id"])
	if err != nil || genreID <= 0 {
		writeJSONError(w, "invalid genre id", http.StatusBadRequest)
		return
	}

	key := catalog.GenreKey(kind, genreID)
	page := queryPage(r)
	if page == 0 && len(h.Service.Store().Page(key).Items) == 0 {
		page = 1
	}
	if page > 0 {
		if _, err := h.Service.LoadGenrePage(r.Context(), kind, genreID, page); err != nil {
			writeServiceError(w, err)
			return
		}
	}

	resp := h.categoryResponse(key, h.Service.Store().Page(key), queryFlag(r, "visible"))
	resp.Kind = kind
	writeJSON(w, http.StatusOK, resp)
}

func (h *CatalogHandler) categoryResponse(key string, page models.CategoryPage, visible bool) CategoryResponse {
	return CategoryResponse{
		Key:        key,
		Items:      presentItems(h.Images, page.Items, visible),
		Page:       page.Page,
		TotalPages: page.TotalPages,
		HasMore:    page.HasMore(),
		Error:      page.Error,
	}
}

// Detail opens /detail/{id}?type=movie|tv. Anything but "tv" is treated as a movie.
func (h *CatalogHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		writeJSONError(w, "invalid id", http.StatusBadRequest)
		return
	}
	kind := models.ParseMediaKind(strings.TrimSpace(r.URL.Query().Get("type")))

	detail, err := h.Service.OpenDetail(r.Context(), kind, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.detailResponse(detail))
}

func (h *CatalogHandler) CloseDetail(w http.ResponseWriter, r *http.Request) {
	h.Service.CloseDetail()
	w.WriteHeader(http.StatusNoContent)
}

func (h *CatalogHandler) detailResponse(d *models.ContentDetail) DetailResponse {
	cast := d.Cast
	if len(cast) > detailCastLimit {
		cast = cast[:detailCastLimit]
	}
	presentedCast := make([]CastResponse, 0, len(cast))
	for _, member := range cast {
		presentedCast = append(presentedCast, CastResponse{CastMember: member, ProfileURL: h.Images.Profile(member.ProfilePath)})
	}

	recs := presentItems(h.Images, d.Recommendations, true)
	if len(recs) > detailRecommendationsLimit {
		recs = recs[:detailRecommendationsLimit]
	}

	return DetailResponse{
		ContentDetail:   *d,
		PosterURL:       h.Images.Poster(d.PosterPath),
		BackdropURL:     h.Images.Backdrop(d.BackdropPath),
		Cast:            presentedCast,
		Similar:         presentItems(h.Images, d.Similar, true),
		Recommendations: recs,
	}
}

// Search runs /search?q=&page=. Page 1 replaces the search slot, later pages append.
func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeJSONError(w, "query parameter q is required", http.StatusBadRequest)
		return
	}
	page := queryPage(r)
	if page == 0 {
		page = 1
	}

	st, err := h.Service.Search(r.Context(), query, page)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{
		Query:      st.Query,
		Items:      presentItems(h.Images, st.Items, queryFlag(r, "visible")),
		Page:       st.Page,
		TotalPages: st.TotalPages,
		HasMore:    st.Page < st.TotalPages,
	})
}

func (h *CatalogHandler) ClearSearch(w http.ResponseWriter, r *http.Request) {
	h.Service.ClearSearch()
	w.WriteHeader(http.StatusNoContent)
}
