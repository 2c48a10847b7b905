package catalog

import (
	"testing"

	"cinedeck/models"
)

func items(ids ...int64) []models.ContentItem {
	out := make([]models.ContentItem, len(ids))
	for i, id := range ids {
		out[i] = models.ContentItem{ID: id, Kind: models.KindMovie, PosterPath: "/p.jpg"}
	}
	return out
}

func ids(list []models.ContentItem) []int64 {
	out := make([]int64, len(list))
	for i, item := range list {
		out[i] = item.ID
	}
	return out
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func fetched(key string, page, total int, list []models.ContentItem) PageFetched {
	return PageFetched{Key: key, Payload: models.PagePayload{Page: page, TotalPages: total, Results: list}}
}

func TestReduceConcatenatesInOrderPages(t *testing.T) {
	s := NewState()
	pages := [][]models.ContentItem{items(1, 2, 3), items(4, 5), items(6)}
	want := 0
	for i, list := range pages {
		s = Reduce(s, PageRequested{Key: "popular-movies"})
		s = Reduce(s, fetched("popular-movies", i+1, 500, list))
		want += len(list)
	}

	page := s.Page("popular-movies")
	if len(page.Items) != want {
		t.Fatalf("expected %d items, got %d", want, len(page.Items))
	}
	if !equalIDs(ids(page.Items), []int64{1, 2, 3, 4, 5, 6}) {
		t.Fatalf("unexpected order %v", ids(page.Items))
	}
	if page.Page != 3 || page.TotalPages != 500 {
		t.Fatalf("unexpected cursor page=%d total=%d", page.Page, page.TotalPages)
	}
	if s.Loading() || s.Err != "" {
		t.Fatalf("expected idle state, got pending=%d err=%q", s.Pending, s.Err)
	}
}

func TestReducePageOneReplaces(t *testing.T) {
	s := NewState()
	s = Reduce(s, fetched("trending-movies", 1, 10, items(1, 2)))
	s = Reduce(s, fetched("trending-movies", 2, 10, items(3, 4)))
	s = Reduce(s, fetched("trending-movies", 1, 12, items(9)))

	page := s.Page("trending-movies")
	if !equalIDs(ids(page.Items), []int64{9}) || page.Page != 1 || page.TotalPages != 12 {
		t.Fatalf("expected replacement, got %+v", page)
	}
}

func TestReduceAppendKeepsDuplicates(t *testing.T) {
	s := NewState()
	s = Reduce(s, fetched("popular-movies", 1, 3, items(1, 2)))
	s = Reduce(s, fetched("popular-movies", 2, 3, items(2, 3)))

	if got := ids(s.Page("popular-movies").Items); !equalIDs(got, []int64{1, 2, 2, 3}) {
		t.Fatalf("store must not dedupe, got %v", got)
	}
}

func TestReduceFailureLeavesItemsAndRetryAppends(t *testing.T) {
	s := NewState()
	s = Reduce(s, PageRequested{Key: "popular-movies"})
	s = Reduce(s, fetched("popular-movies", 1, 5, items(1, 2)))

	s = Reduce(s, PageRequested{Key: "popular-movies"})
	if !s.Loading() {
		t.Fatal("expected loading while request is pending")
	}
	s = Reduce(s, PageFailed{Key: "popular-movies", Message: "HTTP 503"})

	page := s.Page("popular-movies")
	if !equalIDs(ids(page.Items), []int64{1, 2}) || page.Page != 1 || page.TotalPages != 5 {
		t.Fatalf("failure changed category: %+v", page)
	}
	if s.Err != "HTTP 503" || page.Error != "HTTP 503" {
		t.Fatalf("expected recorded error, got global=%q category=%q", s.Err, page.Error)
	}
	if s.Loading() {
		t.Fatal("failure must clear loading")
	}

	s = Reduce(s, PageRequested{Key: "popular-movies"})
	s = Reduce(s, fetched("popular-movies", 2, 5, items(3)))
	page = s.Page("popular-movies")
	if !equalIDs(ids(page.Items), []int64{1, 2, 3}) || page.Page != 2 {
		t.Fatalf("retry should append, got %+v", page)
	}
	if s.Err != "" || page.Error != "" {
		t.Fatalf("success should clear errors, got global=%q category=%q", s.Err, page.Error)
	}
}

func TestReduceResetOnlyTouchesOneCategory(t *testing.T) {
	s := NewState()
	s = Reduce(s, fetched("popular-movies", 1, 5, items(1)))
	s = Reduce(s, fetched("trending-movies", 1, 5, items(2)))
	s = Reduce(s, CategoryReset{Key: "trending-movies"})

	reset := s.Page("trending-movies")
	if len(reset.Items) != 0 || reset.Items == nil || reset.Page != 1 || reset.TotalPages != 0 {
		t.Fatalf("unexpected reset page %+v", reset)
	}
	if len(s.Page("popular-movies").Items) != 1 {
		t.Fatal("reset leaked into another category")
	}
}

func TestReduceDoesNotMutateInput(t *testing.T) {
	before := Reduce(NewState(), fetched("popular-movies", 1, 5, items(1, 2)))
	after := Reduce(before, fetched("popular-movies", 2, 5, items(3)))
	_ = Reduce(after, CategoryReset{Key: "popular-movies"})

	if got := ids(before.Page("popular-movies").Items); !equalIDs(got, []int64{1, 2}) {
		t.Fatalf("previous state mutated: %v", got)
	}
	if got := ids(after.Page("popular-movies").Items); !equalIDs(got, []int64{1, 2, 3}) {
		t.Fatalf("previous state mutated: %v", got)
	}
}

func TestReduceUnknownKeyReadsEmpty(t *testing.T) {
	page := NewState().Page("nope")
	if page.Page != 1 || page.TotalPages != 0 || len(page.Items) != 0 {
		t.Fatalf("unexpected page %+v", page)
	}
}

func TestReduceDropsStaleDetail(t *testing.T) {
	fightClub := models.DetailKey{Kind: models.KindMovie, ID: 550}
	sequel := models.DetailKey{Kind: models.KindMovie, ID: 551}

	s := NewState()
	s = Reduce(s, DetailRequested{Key: fightClub})
	s = Reduce(s, DetailRequested{Key: sequel})
	s = Reduce(s, DetailLoaded{Key: fightClub, Detail: &models.ContentDetail{ContentItem: models.ContentItem{ID: 550}}})
	if s.Detail != nil {
		t.Fatalf("stale detail applied: %+v", s.Detail)
	}

	s = Reduce(s, DetailLoaded{Key: sequel, Detail: &models.ContentDetail{ContentItem: models.ContentItem{ID: 551}}})
	if s.Detail == nil || s.Detail.ID != 551 {
		t.Fatalf("expected detail 551, got %+v", s.Detail)
	}
	if s.Loading() {
		t.Fatalf("expected both requests settled, pending=%d", s.Pending)
	}

	s = Reduce(s, DetailRequested{Key: fightClub})
	if s.Detail != nil {
		t.Fatal("opening a detail must clear the slot")
	}
	s = Reduce(s, DetailCleared{})
	if s.DetailKey != nil {
		t.Fatal("expected key cleared")
	}
	s = Reduce(s, DetailLoaded{Key: fightClub, Detail: &models.ContentDetail{}})
	if s.Detail != nil {
		t.Fatal("response after close must be dropped")
	}
}

func TestReduceDetailFailureOnlyForCurrentKey(t *testing.T) {
	first := models.DetailKey{Kind: models.KindTV, ID: 1}
	second := models.DetailKey{Kind: models.KindTV, ID: 2}

	s := NewState()
	s = Reduce(s, DetailRequested{Key: first})
	s = Reduce(s, DetailRequested{Key: second})
	s = Reduce(s, DetailFailed{Key: first, Message: "boom"})
	if s.Err != "" {
		t.Fatalf("stale failure recorded: %q", s.Err)
	}
	s = Reduce(s, DetailFailed{Key: second, Message: "HTTP 404"})
	if s.Err != "HTTP 404" || s.Detail != nil {
		t.Fatalf("unexpected state err=%q detail=%v", s.Err, s.Detail)
	}
}

func TestReduceSearch(t *testing.T) {
	search := func(query string, page, total int, list []models.ContentItem) SearchFetched {
		return SearchFetched{Query: query, Payload: models.PagePayload{Page: page, TotalPages: total, Results: list}}
	}

	s := NewState()
	s = Reduce(s, SearchRequested{Query: "batman"})
	s = Reduce(s, search("batman", 1, 3, items(1, 2)))
	s = Reduce(s, SearchRequested{Query: "batman"})
	s = Reduce(s, search("batman", 2, 3, items(3)))
	if !equalIDs(ids(s.Search.Items), []int64{1, 2, 3}) || s.Search.Page != 2 {
		t.Fatalf("same query should append, got %+v", s.Search)
	}

	s = Reduce(s, SearchRequested{Query: "dune"})
	s = Reduce(s, search("batman", 3, 3, items(4)))
	if !equalIDs(ids(s.Search.Items), []int64{1, 2, 3}) {
		t.Fatalf("response for old query applied: %v", ids(s.Search.Items))
	}

	s = Reduce(s, search("dune", 1, 1, items(7)))
	if s.Search.Query != "dune" || !equalIDs(ids(s.Search.Items), []int64{7}) {
		t.Fatalf("new query should replace, got %+v", s.Search)
	}

	s = Reduce(s, SearchCleared{})
	if s.Search.Query != "" || len(s.Search.Items) != 0 || s.SearchQuery != "" {
		t.Fatalf("unexpected cleared search %+v", s.Search)
	}
}

func TestReducePendingNeverNegative(t *testing.T) {
	s := Reduce(NewState(), PageFailed{Key: "x", Message: "late"})
	if s.Pending != 0 {
		t.Fatalf("pending underflow: %d", s.Pending)
	}
	s = Reduce(s, ErrorCleared{})
	if s.Err != "" {
		t.Fatal("expected error cleared")
	}
}

func TestReduceGenresAndSelection(t *testing.T) {
	s := NewState()
	s = Reduce(s, GenresRequested{})
	s = Reduce(s, GenresLoaded{Genres: models.GenreCatalog{Movie: []models.Genre{{ID: 28, Name: "Action"}}}})
	if len(s.Genres.Movie) != 1 || s.Genres.TV == nil {
		t.Fatalf("unexpected genres %+v", s.Genres)
	}

	s = Reduce(s, SelectionSet{Item: models.ContentItem{ID: 42}})
	if s.Selected == nil || s.Selected.ID != 42 {
		t.Fatal("expected selection")
	}
	s = Reduce(s, SelectionCleared{})
	if s.Selected != nil {
		t.Fatal("expected selection cleared")
	}
}
