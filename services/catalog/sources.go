package catalog

import (
	"context"
	"strings"

	"cinedeck/models"
)

// CategorySource exposes one category as an incrementally loaded list.
type CategorySource struct {
	svc *Service
	cat Category
}

func (s *Service) CategorySource(c Category) *CategorySource {
	return &CategorySource{svc: s, cat: c}
}

func (c *CategorySource) Fetch(ctx context.Context, page int) (int, error) {
	return c.svc.LoadPage(ctx, c.cat, page)
}

func (c *CategorySource) Cursor() (int, int) {
	p := c.svc.store.Category(c.cat)
	return p.Page, p.TotalPages
}

func (c *CategorySource) Key() string {
	return c.cat.Key()
}

func (c *CategorySource) Items() []models.ContentItem {
	return c.svc.store.Category(c.cat).Items
}

// GenreSource exposes a genre listing as an incrementally loaded list.
type GenreSource struct {
	svc     *Service
	kind    models.MediaKind
	genreID int
}

func (s *Service) GenreSource(kind models.MediaKind, genreID int) *GenreSource {
	if !kind.Valid() {
		kind = models.KindMovie
	}
	return &GenreSource{svc: s, kind: kind, genreID: genreID}
}

func (g *GenreSource) Fetch(ctx context.Context, page int) (int, error) {
	return g.svc.LoadGenrePage(ctx, g.kind, g.genreID, page)
}

func (g *GenreSource) Cursor() (int, int) {
	p := g.svc.store.Page(g.Key())
	return p.Page, p.TotalPages
}

func (g *GenreSource) Key() string {
	return GenreKey(g.kind, g.genreID)
}

func (g *GenreSource) Items() []models.ContentItem {
	return g.svc.store.Page(g.Key()).Items
}

// SearchSource exposes the results of one query as an incrementally loaded list.
type SearchSource struct {
	svc   *Service
	query string
}

func (s *Service) SearchSource(query string) *SearchSource {
	return &SearchSource{svc: s, query: strings.TrimSpace(query)}
}

func (q *SearchSource) Fetch(ctx context.Context, page int) (int, error) {
	return q.svc.searchPage(ctx, q.query, page)
}

// Cursor reports the empty position while the search slot holds another query.
func (q *SearchSource) Cursor() (int, int) {
	st := q.svc.store.Search()
	if st.Query != q.query {
		return 1, 0
	}
	return st.Page, st.TotalPages
}

func (q *SearchSource) Key() string {
	return searchKey(q.query)
}

func (q *SearchSource) Items() []models.ContentItem {
	st := q.svc.store.Search()
	if st.Query != q.query {
		return []models.ContentItem{}
	}
	return st.Items
}
