package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"cinedeck/models"
)

var (
	// ErrDetailSuperseded is returned when another detail was opened while this one loaded.
	ErrDetailSuperseded = errors.New("detail request superseded")
	ErrEmptyQuery       = errors.New("search query is empty")
	// ErrSearchSuperseded is returned when a newer query took the search slot while this one loaded.
	ErrSearchSuperseded = errors.New("search superseded by a newer query")
	// ErrPageInFlight is returned when a different page of the same list is already loading.
	ErrPageInFlight = errors.New("another page of this list is loading")
)

// Options tunes the catalog service.
type Options struct {
	// HomeConcurrency bounds parallel page loads when building the home view.
	HomeConcurrency int
}

// Service connects the fetchers to the aggregation store. Every failure is
// recorded in the store and also returned to the caller.
type Service struct {
	store   *Store
	fetcher *Fetcher
	gw      Gateway
	opts    Options

	// At most one page per store key is loading at any time, whoever asked for it.
	inflightMu    sync.Mutex
	inflightPages map[string]*pageFlight
	lastCounts    map[string]int
}

type pageFlight struct {
	page  int
	wg    sync.WaitGroup
	count int
	err   error
}

func NewService(gw Gateway, store *Store, opts Options) *Service {
	if store == nil {
		store = NewStore()
	}
	if opts.HomeConcurrency <= 0 {
		opts.HomeConcurrency = 4
	}
	svc := &Service{
		store:         store,
		fetcher:       NewFetcher(gw),
		gw:            gw,
		opts:          opts,
		inflightPages: make(map[string]*pageFlight),
		lastCounts:    make(map[string]int),
	}
	store.Subscribe(newErrorWatcher().observe)
	return svc
}

func (s *Service) Store() *Store {
	return s.store
}

// LoadPage fetches one page of c into the store and returns the number of items received.
// A caller asking for the page that is already loading waits for that fetch;
// asking for a page after 1 that is already stored returns without a request.
func (s *Service) LoadPage(ctx context.Context, c Category, page int) (int, error) {
	if !c.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrUnknownCategory, int(c))
	}
	if page < 1 {
		page = 1
	}
	key := c.Key()
	return s.guardPage(key, page, s.storedPage(key), func() (int, error) {
		s.store.Dispatch(PageRequested{Key: key})
		payload, err := s.fetcher.Fetch(ctx, c, page)
		return s.settlePage(key, page, payload, err)
	})
}

// LoadGenrePage fetches one page of a genre listing into the store.
func (s *Service) LoadGenrePage(ctx context.Context, kind models.MediaKind, genreID, page int) (int, error) {
	if !kind.Valid() {
		kind = models.KindMovie
	}
	if page < 1 {
		page = 1
	}
	key := GenreKey(kind, genreID)
	return s.guardPage(key, page, s.storedPage(key), func() (int, error) {
		s.store.Dispatch(PageRequested{Key: key})
		payload, err := s.fetcher.FetchGenre(ctx, kind, genreID, page)
		return s.settlePage(key, page, payload, err)
	})
}

// storedPage reports the highest page held for key, or 0 when nothing is loaded.
func (s *Service) storedPage(key string) func() int {
	return func() int {
		p := s.store.Page(key)
		if p.TotalPages == 0 {
			return 0
		}
		return p.Page
	}
}

// guardPage runs load unless key already has a page loading. The store is
// updated inside load before the flight is released, so a caller arriving
// afterwards sees the new page through stored.
func (s *Service) guardPage(key string, page int, stored func() int, load func() (int, error)) (int, error) {
	s.inflightMu.Lock()
	if inflight, exists := s.inflightPages[key]; exists {
		s.inflightMu.Unlock()
		if inflight.page != page {
			return 0, fmt.Errorf("%w: %s page %d", ErrPageInFlight, key, inflight.page)
		}
		log.Printf("[catalog] waiting for inflight %s page %d", key, page)
		inflight.wg.Wait()
		return inflight.count, inflight.err
	}
	if page > 1 && page <= stored() {
		count := s.lastCounts[key]
		s.inflightMu.Unlock()
		return count, nil
	}
	inflight := &pageFlight{page: page}
	inflight.wg.Add(1)
	s.inflightPages[key] = inflight
	s.inflightMu.Unlock()

	inflight.count, inflight.err = load()

	s.inflightMu.Lock()
	if inflight.err == nil {
		s.lastCounts[key] = inflight.count
	}
	delete(s.inflightPages, key)
	s.inflightMu.Unlock()
	inflight.wg.Done()
	return inflight.count, inflight.err
}

func (s *Service) settlePage(key string, page int, payload models.PagePayload, err error) (int, error) {
	if err != nil {
		log.Printf("[catalog] load %s page %d failed: %v", key, page, err)
		s.store.Dispatch(PageFailed{Key: key, Message: err.Error()})
		return 0, err
	}
	s.store.Dispatch(PageFetched{Key: key, Payload: payload})
	return len(payload.Results), nil
}

// Reset clears c back to its initial empty state.
func (s *Service) Reset(c Category) {
	s.ResetKey(c.Key())
}

func (s *Service) ResetKey(key string) {
	s.store.Dispatch(CategoryReset{Key: key})
}

// OpenDetail clears the detail slot and loads the record for kind/id. A blank
// or unknown kind means movie. If a newer detail was opened meanwhile the
// response is dropped and ErrDetailSuperseded is returned.
func (s *Service) OpenDetail(ctx context.Context, kind models.MediaKind, id int64) (*models.ContentDetail, error) {
	if !kind.Valid() {
		kind = models.KindMovie
	}
	key := models.DetailKey{Kind: kind, ID: id}
	s.store.Dispatch(DetailRequested{Key: key})

	detail, err := s.gw.Detail(ctx, kind, id)
	if err != nil {
		log.Printf("[catalog] detail %s/%d failed: %v", kind, id, err)
		s.store.Dispatch(DetailFailed{Key: key, Message: err.Error()})
		return nil, err
	}
	s.store.Dispatch(DetailLoaded{Key: key, Detail: detail})

	if current, ok := s.store.DetailKey(); !ok || current != key {
		log.Printf("[catalog] detail %s/%d superseded, dropping response", kind, id)
		return nil, ErrDetailSuperseded
	}
	return detail, nil
}

// CloseDetail empties the detail slot.
func (s *Service) CloseDetail() {
	s.store.Dispatch(DetailCleared{})
}

// Search loads one page of multi search results into the search slot. Page 1
// or a new query replaces the slot; later pages of the same query append.
// ErrSearchSuperseded is returned when another query owns the slot by the
// time the response arrives.
func (s *Service) Search(ctx context.Context, query string, page int) (models.SearchState, error) {
	if _, err := s.searchPage(ctx, query, page); err != nil {
		return models.SearchState{}, err
	}
	st := s.store.Search()
	if st.Query != strings.TrimSpace(query) {
		return models.SearchState{}, ErrSearchSuperseded
	}
	return st, nil
}

func (s *Service) searchPage(ctx context.Context, query string, page int) (int, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return 0, ErrEmptyQuery
	}
	if page < 1 {
		page = 1
	}
	stored := func() int {
		st := s.store.Search()
		if st.Query != query || st.TotalPages == 0 {
			return 0
		}
		return st.Page
	}
	return s.guardPage(searchKey(query), page, stored, func() (int, error) {
		s.store.Dispatch(SearchRequested{Query: query})
		payload, err := s.gw.SearchMulti(ctx, query, page)
		if err != nil {
			log.Printf("[catalog] search %q page %d failed: %v", query, page, err)
			s.store.Dispatch(SearchFailed{Query: query, Message: err.Error()})
			return 0, err
		}
		s.store.Dispatch(SearchFetched{Query: query, Payload: payload})
		if s.store.Snapshot().SearchQuery != query {
			log.Printf("[catalog] search %q superseded, dropping response", query)
			return 0, ErrSearchSuperseded
		}
		return len(payload.Results), nil
	})
}

func searchKey(query string) string {
	return "search:" + query
}

func (s *Service) ClearSearch() {
	s.store.Dispatch(SearchCleared{})
}

// Suggest runs a first-page multi search without touching the store.
func (s *Service) Suggest(ctx context.Context, query string) ([]models.ContentItem, error) {
	payload, err := s.gw.SearchMulti(ctx, query, 1)
	if err != nil {
		return nil, err
	}
	return payload.Results, nil
}

// LoadGenres fetches the movie and TV genre lists together. Either failure fails both.
func (s *Service) LoadGenres(ctx context.Context) (models.GenreCatalog, error) {
	s.store.Dispatch(GenresRequested{})

	var movie, tv []models.Genre
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		movie, err = s.gw.Genres(gctx, models.KindMovie)
		return err
	})
	g.Go(func() error {
		var err error
		tv, err = s.gw.Genres(gctx, models.KindTV)
		return err
	})
	if err := g.Wait(); err != nil {
		log.Printf("[catalog] genres failed: %v", err)
		s.store.Dispatch(GenresFailed{Message: err.Error()})
		return models.GenreCatalog{}, err
	}

	s.store.Dispatch(GenresLoaded{Genres: models.GenreCatalog{Movie: movie, TV: tv}})
	return s.store.Genres(), nil
}

// Genres returns the stored genre lists, loading them on first use.
func (s *Service) Genres(ctx context.Context) (models.GenreCatalog, error) {
	genres := s.store.Genres()
	if len(genres.Movie) > 0 || len(genres.TV) > 0 {
		return genres, nil
	}
	return s.LoadGenres(ctx)
}

func (s *Service) Select(item models.ContentItem) {
	s.store.Dispatch(SelectionSet{Item: item})
}

func (s *Service) ClearSelection() {
	s.store.Dispatch(SelectionCleared{})
}

func (s *Service) ClearError() {
	s.store.Dispatch(ErrorCleared{})
}
