package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"

	"github.com/gorilla/mux"

	"cinedeck/models"
	"cinedeck/services/catalog"
	"cinedeck/services/gateway"
)

var errTest = errors.New("HTTP 503")

// fakeGateway serves lists of totalPages pages. Every page holds one item with
// a poster and one without.
type fakeGateway struct {
	mu         sync.Mutex
	totalPages int
	listErr    map[string]error
	listCalls  map[string]int
	details    map[int64]*models.ContentDetail
	detailErr  error
	detailKind models.MediaKind
	genres     map[models.MediaKind][]models.Genre
	searches   []string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		totalPages: 3,
		listErr:    map[string]error{},
		listCalls:  map[string]int{},
		details:    map[int64]*models.ContentDetail{},
		genres: map[models.MediaKind][]models.Genre{
			models.KindMovie: {{ID: 28, Name: "Action"}},
			models.KindTV:    {{ID: 16, Name: "Animation"}},
		},
	}
}

func listPage(kind models.MediaKind, page, total int) models.PagePayload {
	base := int64(page * 10)
	return models.PagePayload{
		Page:       page,
		TotalPages: total,
		Results: []models.ContentItem{
			{ID: base + 1, Title: fmt.Sprintf("item %d", base+1), PosterPath: "/a.jpg", Kind: kind},
			{ID: base + 2, Title: fmt.Sprintf("item %d", base+2), Kind: kind},
		},
	}
}

func (f *fakeGateway) ListPage(_ context.Context, kind models.MediaKind, endpoint string, params url.Values) (models.PagePayload, error) {
	page, _ := strconv.Atoi(params.Get("page"))
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls[fmt.Sprintf("%s#%d", endpoint, page)]++
	if err := f.listErr[endpoint]; err != nil {
		return models.PagePayload{}, err
	}
	return listPage(kind, page, f.totalPages), nil
}

func (f *fakeGateway) SearchMulti(_ context.Context, query string, page int) (models.PagePayload, error) {
	f.mu.Lock()
	f.searches = append(f.searches, query)
	f.mu.Unlock()
	payload := listPage(models.KindTV, page, 2)
	payload.Results[0].Title = query
	return payload, nil
}

func (f *fakeGateway) Detail(_ context.Context, kind models.MediaKind, id int64) (*models.ContentDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detailKind = kind
	if f.detailErr != nil {
		return nil, f.detailErr
	}
	d, ok := f.details[id]
	if !ok {
		return nil, &gateway.HTTPStatusError{Endpoint: string(kind) + "/" + strconv.FormatInt(id, 10), StatusCode: http.StatusNotFound}
	}
	return d, nil
}

func (f *fakeGateway) Genres(_ context.Context, kind models.MediaKind) ([]models.Genre, error) {
	return f.genres[kind], nil
}

func (f *fakeGateway) calls(endpoint string, page int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls[fmt.Sprintf("%s#%d", endpoint, page)]
}

var _ catalog.Gateway = (*fakeGateway)(nil)

func newTestCatalog() (*catalog.Service, *fakeGateway, *gateway.Images) {
	gw := newFakeGateway()
	svc := catalog.NewService(gw, catalog.NewStore(), catalog.Options{})
	return svc, gw, gateway.NewImages(gateway.ImageOptions{})
}

func doRequest(t *testing.T, handler http.HandlerFunc, method, target string, vars map[string]string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	if vars != nil {
		req = mux.SetURLVars(req, vars)
	}
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return out
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}
