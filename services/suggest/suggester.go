package suggest

import (
	"context"
	"log"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"cinedeck/models"
)

const (
	DefaultQuiet     = 300 * time.Millisecond
	DefaultMinLength = 2
	DefaultLimit     = 5
)

// SearchFunc returns the first page of results for query.
type SearchFunc func(ctx context.Context, query string) ([]models.ContentItem, error)

type Options struct {
	// Quiet is how long input must stay unchanged before a request is sent.
	Quiet     time.Duration
	MinLength int
	Limit     int
	// OnChange is called outside the lock whenever the suggestion list changes.
	OnChange func(query string, items []models.ContentItem)
}

// Suggester produces type-ahead suggestions for one input. Each request is
// tagged with a generation number and only the latest generation may write
// the suggestion list.
type Suggester struct {
	search SearchFunc
	opts   Options

	mu      sync.Mutex
	gen     uint64
	latest  string
	shown   string
	items   []models.ContentItem
	pending bool
	timer   *time.Timer
	cancel  context.CancelFunc
	closed  bool
}

func New(search SearchFunc, opts Options) *Suggester {
	if opts.Quiet <= 0 {
		opts.Quiet = DefaultQuiet
	}
	if opts.MinLength <= 0 {
		opts.MinLength = DefaultMinLength
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	return &Suggester{search: search, opts: opts}
}

// Type records new input. Input shorter than MinLength clears the list at
// once; otherwise a request is scheduled after the quiet period, replacing
// any scheduled or running one.
func (s *Suggester) Type(input string) {
	q := strings.TrimSpace(input)

	s.mu.Lock()
	if s.closed || (q == s.latest && s.pending) {
		s.mu.Unlock()
		return
	}
	s.gen++
	gen := s.gen
	s.stopLocked()
	s.latest = q

	if utf8.RuneCountInString(q) < s.opts.MinLength {
		changed := len(s.items) > 0
		s.items = nil
		s.shown = ""
		s.mu.Unlock()
		if changed {
			s.notify(q, nil)
		}
		return
	}
	if q == s.shown {
		// the list on screen already answers this query
		s.mu.Unlock()
		return
	}

	s.pending = true
	s.timer = time.AfterFunc(s.opts.Quiet, func() {
		s.fire(gen, q)
	})
	s.mu.Unlock()
}

func (s *Suggester) fire(gen uint64, q string) {
	s.mu.Lock()
	if s.closed || gen != s.gen {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.mu.Unlock()
	defer cancel()

	results, err := s.search(ctx, q)

	s.mu.Lock()
	if s.closed || gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.cancel = nil
	s.pending = false
	if err != nil {
		log.Printf("[suggest] query %q failed: %v", q, err)
		s.items = nil
		s.shown = ""
	} else {
		if len(results) > s.opts.Limit {
			results = results[:s.opts.Limit]
		}
		s.items = slices.Clone(results)
		s.shown = q
	}
	items := slices.Clone(s.items)
	s.mu.Unlock()

	s.notify(q, items)
}

func (s *Suggester) stopLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.pending = false
}

func (s *Suggester) notify(q string, items []models.ContentItem) {
	if s.opts.OnChange != nil {
		s.opts.OnChange(q, items)
	}
}

// Suggestions returns a copy of the current list.
func (s *Suggester) Suggestions() []models.ContentItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := slices.Clone(s.items)
	if out == nil {
		out = []models.ContentItem{}
	}
	return out
}

// Query returns the latest trimmed input.
func (s *Suggester) Query() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

// Pending reports whether a request is scheduled or running.
func (s *Suggester) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Close drops any scheduled or running request.
func (s *Suggester) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.gen++
	s.stopLocked()
}
