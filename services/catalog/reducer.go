package catalog

import (
	"maps"

	"cinedeck/models"
)

// State is the aggregated catalog. Values handed out by Reduce share no
// mutable memory with their input.
type State struct {
	Categories map[string]models.CategoryPage
	Detail     *models.ContentDetail
	DetailKey  *models.DetailKey
	Selected   *models.ContentItem
	Search     models.SearchState
	// SearchQuery is the most recently requested query; responses for any
	// other query are dropped.
	SearchQuery string
	Genres      models.GenreCatalog
	Pending     int
	Err         string
}

func NewState() State {
	return State{
		Categories: map[string]models.CategoryPage{},
		Search:     models.EmptySearchState(),
		Genres:     models.GenreCatalog{Movie: []models.Genre{}, TV: []models.Genre{}},
	}
}

// Loading reports whether any tracked fetch is outstanding.
func (s State) Loading() bool {
	return s.Pending > 0
}

// Page returns the category page stored under key, or the empty page.
func (s State) Page(key string) models.CategoryPage {
	if p, ok := s.Categories[key]; ok {
		return p
	}
	return models.EmptyCategoryPage()
}

// Event is an update applied by Reduce.
type Event interface {
	event()
}

type (
	PageRequested struct{ Key string }
	PageFetched   struct {
		Key     string
		Payload models.PagePayload
	}
	PageFailed struct {
		Key     string
		Message string
	}
	CategoryReset struct{ Key string }

	DetailRequested struct{ Key models.DetailKey }
	DetailLoaded    struct {
		Key    models.DetailKey
		Detail *models.ContentDetail
	}
	DetailFailed struct {
		Key     models.DetailKey
		Message string
	}
	DetailCleared struct{}

	SearchRequested struct{ Query string }
	SearchFetched   struct {
		Query   string
		Payload models.PagePayload
	}
	SearchFailed struct {
		Query   string
		Message string
	}
	SearchCleared struct{}

	GenresRequested struct{}
	GenresLoaded    struct{ Genres models.GenreCatalog }
	GenresFailed    struct{ Message string }

	SelectionSet     struct{ Item models.ContentItem }
	SelectionCleared struct{}
	ErrorCleared     struct{}
)

func (PageRequested) event()    {}
func (PageFetched) event()      {}
func (PageFailed) event()       {}
func (CategoryReset) event()    {}
func (DetailRequested) event()  {}
func (DetailLoaded) event()     {}
func (DetailFailed) event()     {}
func (DetailCleared) event()    {}
func (SearchRequested) event()  {}
func (SearchFetched) event()    {}
func (SearchFailed) event()     {}
func (SearchCleared) event()    {}
func (GenresRequested) event()  {}
func (GenresLoaded) event()     {}
func (GenresFailed) event()     {}
func (SelectionSet) event()     {}
func (SelectionCleared) event() {}
func (ErrorCleared) event()     {}

// Reduce applies ev to s and returns the next state.
func Reduce(s State, ev Event) State {
	switch e := ev.(type) {
	case PageRequested:
		s.Pending++
		s.Err = ""

	case PageFetched:
		s.Pending = settle(s.Pending)
		s.Err = ""
		prev := s.Page(e.Key)
		var items []models.ContentItem
		if e.Payload.Page > 1 {
			items = make([]models.ContentItem, 0, len(prev.Items)+len(e.Payload.Results))
			items = append(items, prev.Items...)
			items = append(items, e.Payload.Results...)
		} else {
			items = append([]models.ContentItem{}, e.Payload.Results...)
		}
		s.Categories = withPage(s.Categories, e.Key, models.CategoryPage{
			Items:      items,
			Page:       e.Payload.Page,
			TotalPages: e.Payload.TotalPages,
		})

	case PageFailed:
		s.Pending = settle(s.Pending)
		s.Err = e.Message
		page := s.Page(e.Key)
		page.Error = e.Message
		s.Categories = withPage(s.Categories, e.Key, page)

	case CategoryReset:
		s.Categories = withPage(s.Categories, e.Key, models.EmptyCategoryPage())

	case DetailRequested:
		s.Pending++
		s.Err = ""
		key := e.Key
		s.DetailKey = &key
		s.Detail = nil

	case DetailLoaded:
		s.Pending = settle(s.Pending)
		if s.DetailKey != nil && *s.DetailKey == e.Key && e.Detail != nil {
			detail := *e.Detail
			s.Detail = &detail
		}

	case DetailFailed:
		s.Pending = settle(s.Pending)
		if s.DetailKey != nil && *s.DetailKey == e.Key {
			s.Detail = nil
			s.Err = e.Message
		}

	case DetailCleared:
		s.Detail = nil
		s.DetailKey = nil

	case SearchRequested:
		s.Pending++
		s.Err = ""
		s.SearchQuery = e.Query

	case SearchFetched:
		s.Pending = settle(s.Pending)
		if e.Query != s.SearchQuery {
			break
		}
		if e.Payload.Page > 1 && s.Search.Query == e.Query {
			items := make([]models.ContentItem, 0, len(s.Search.Items)+len(e.Payload.Results))
			items = append(items, s.Search.Items...)
			items = append(items, e.Payload.Results...)
			s.Search = models.SearchState{Query: e.Query, Items: items, Page: e.Payload.Page, TotalPages: e.Payload.TotalPages}
		} else {
			s.Search = models.SearchState{
				Query:      e.Query,
				Items:      append([]models.ContentItem{}, e.Payload.Results...),
				Page:       e.Payload.Page,
				TotalPages: e.Payload.TotalPages,
			}
		}

	case SearchFailed:
		s.Pending = settle(s.Pending)
		if e.Query == s.SearchQuery {
			s.Err = e.Message
		}

	case SearchCleared:
		s.Search = models.EmptySearchState()
		s.SearchQuery = ""

	case GenresRequested:
		s.Pending++
		s.Err = ""

	case GenresLoaded:
		s.Pending = settle(s.Pending)
		s.Genres = models.GenreCatalog{
			Movie: append([]models.Genre{}, e.Genres.Movie...),
			TV:    append([]models.Genre{}, e.Genres.TV...),
		}

	case GenresFailed:
		s.Pending = settle(s.Pending)
		s.Err = e.Message

	case SelectionSet:
		item := e.Item
		s.Selected = &item

	case SelectionCleared:
		s.Selected = nil

	case ErrorCleared:
		s.Err = ""
	}
	return s
}

func settle(pending int) int {
	if pending > 0 {
		return pending - 1
	}
	return 0
}

func withPage(categories map[string]models.CategoryPage, key string, page models.CategoryPage) map[string]models.CategoryPage {
	next := maps.Clone(categories)
	if next == nil {
		next = map[string]models.CategoryPage{}
	}
	next[key] = page
	return next
}
