package catalog

import (
	"log"
	"slices"
	"sync"

	"cinedeck/models"
)

// Store is the single process-wide aggregation store. Every update goes
// through Reduce under the write lock.
type Store struct {
	mu    sync.RWMutex
	state State

	subMu  sync.Mutex
	nextID int
	subs   map[int]func(State)
}

func NewStore() *Store {
	return &Store{state: NewState(), subs: map[int]func(State){}}
}

// Dispatch applies ev and notifies subscribers with the resulting state.
func (s *Store) Dispatch(ev Event) {
	s.mu.Lock()
	s.state = Reduce(s.state, ev)
	next := s.state
	s.mu.Unlock()

	s.subMu.Lock()
	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subMu.Unlock()
	for _, fn := range subs {
		fn(next)
	}
}

// Subscribe registers fn for change notifications. The returned func removes it.
func (s *Store) Subscribe(fn func(State)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

// Snapshot returns the current state. Slices inside must not be modified.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Store) Page(key string) models.CategoryPage {
	s.mu.RLock()
	page := s.state.Page(key)
	s.mu.RUnlock()
	page.Items = slices.Clone(page.Items)
	if page.Items == nil {
		page.Items = []models.ContentItem{}
	}
	return page
}

func (s *Store) Category(c Category) models.CategoryPage {
	return s.Page(c.Key())
}

func (s *Store) Detail() *models.ContentDetail {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.Detail == nil {
		return nil
	}
	detail := *s.state.Detail
	return &detail
}

// DetailKey returns the key of the detail being viewed, if any.
func (s *Store) DetailKey() (models.DetailKey, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.DetailKey == nil {
		return models.DetailKey{}, false
	}
	return *s.state.DetailKey, true
}

func (s *Store) Selected() (models.ContentItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.Selected == nil {
		return models.ContentItem{}, false
	}
	return *s.state.Selected, true
}

func (s *Store) Search() models.SearchState {
	s.mu.RLock()
	search := s.state.Search
	s.mu.RUnlock()
	search.Items = slices.Clone(search.Items)
	if search.Items == nil {
		search.Items = []models.ContentItem{}
	}
	return search
}

func (s *Store) Genres() models.GenreCatalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.GenreCatalog{
		Movie: slices.Clone(s.state.Genres.Movie),
		TV:    slices.Clone(s.state.Genres.TV),
	}
}

func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Loading()
}

func (s *Store) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Err
}

// errorWatcher logs when the global error is set or cleared.
type errorWatcher struct {
	mu   sync.Mutex
	last string
}

func newErrorWatcher() *errorWatcher {
	return &errorWatcher{}
}

func (w *errorWatcher) observe(st State) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if st.Err == w.last {
		return
	}
	if st.Err == "" {
		log.Printf("[catalog] error cleared (was %q)", w.last)
	} else {
		log.Printf("[catalog] error recorded: %s", st.Err)
	}
	w.last = st.Err
}
