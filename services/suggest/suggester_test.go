package suggest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cinedeck/models"
)

const (
	quiet   = 20 * time.Millisecond
	settle  = time.Second
	pollGap = 5 * time.Millisecond
)

type recorder struct {
	mu      sync.Mutex
	queries []string
	results map[string][]models.ContentItem
	errs    map[string]error
	gates   map[string]chan struct{}
	ctxs    map[string]context.Context
}

func newRecorder() *recorder {
	return &recorder{
		results: map[string][]models.ContentItem{},
		errs:    map[string]error{},
		gates:   map[string]chan struct{}{},
		ctxs:    map[string]context.Context{},
	}
}

func (r *recorder) search(ctx context.Context, query string) ([]models.ContentItem, error) {
	r.mu.Lock()
	r.queries = append(r.queries, query)
	r.ctxs[query] = ctx
	gate := r.gates[query]
	r.mu.Unlock()

	if gate != nil {
		<-gate
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.errs[query]; err != nil {
		return nil, err
	}
	if res, ok := r.results[query]; ok {
		return res, nil
	}
	return []models.ContentItem{{ID: 1, Title: query}}, nil
}

func (r *recorder) calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.queries...)
}

func titled(n int, prefix string) []models.ContentItem {
	out := make([]models.ContentItem, n)
	for i := range out {
		out[i] = models.ContentItem{ID: int64(i + 1), Title: fmt.Sprintf("%s %d", prefix, i+1)}
	}
	return out
}

func TestShortInputClearsWithoutRequest(t *testing.T) {
	rec := newRecorder()
	s := New(rec.search, Options{Quiet: quiet})
	defer s.Close()

	s.Type("ba")
	require.Eventually(t, func() bool { return len(s.Suggestions()) == 1 }, settle, pollGap)

	s.Type(" b ")
	assert.Empty(t, s.Suggestions(), "short input clears immediately")
	s.Type("")
	time.Sleep(3 * quiet)
	assert.Equal(t, []string{"ba"}, rec.calls())
}

func TestTypingBurstIssuesOneRequest(t *testing.T) {
	rec := newRecorder()
	rec.results["batman"] = titled(8, "Batman")
	var changes []string
	var mu sync.Mutex
	s := New(rec.search, Options{Quiet: 4 * quiet, OnChange: func(q string, _ []models.ContentItem) {
		mu.Lock()
		changes = append(changes, q)
		mu.Unlock()
	}})
	defer s.Close()

	for _, q := range []string{"b", "ba", "bat", "batm", "batma", "batman"} {
		s.Type(q)
		time.Sleep(quiet / 4)
	}

	require.Eventually(t, func() bool { return len(s.Suggestions()) == 5 }, settle, pollGap)
	assert.Equal(t, []string{"batman"}, rec.calls())
	assert.Equal(t, "Batman 1", s.Suggestions()[0].Title)
	assert.Equal(t, "batman", s.Query())

	mu.Lock()
	assert.Equal(t, []string{"batman"}, changes)
	mu.Unlock()

	// retyping the settled query does not refetch
	s.Type("batma")
	s.Type("batman ")
	time.Sleep(12 * quiet)
	assert.Equal(t, []string{"batman"}, rec.calls())
	assert.Len(t, s.Suggestions(), 5)
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	rec := newRecorder()
	slow := make(chan struct{})
	rec.gates["bat"] = slow
	rec.results["bat"] = titled(3, "Bat")
	rec.results["batman"] = titled(2, "Batman")
	s := New(rec.search, Options{Quiet: quiet})
	defer s.Close()

	s.Type("bat")
	require.Eventually(t, func() bool { return len(rec.calls()) == 1 }, settle, pollGap)

	s.Type("batman")
	require.Eventually(t, func() bool { return len(s.Suggestions()) == 2 }, settle, pollGap)

	rec.mu.Lock()
	batCtx := rec.ctxs["bat"]
	rec.mu.Unlock()
	assert.ErrorIs(t, batCtx.Err(), context.Canceled, "superseded request is cancelled")

	close(slow)
	time.Sleep(3 * quiet)
	got := s.Suggestions()
	require.Len(t, got, 2)
	assert.Equal(t, "Batman 1", got[0].Title)
	assert.Equal(t, []string{"bat", "batman"}, rec.calls())
}

func TestErrorClearsSuggestions(t *testing.T) {
	rec := newRecorder()
	rec.errs["dune"] = errors.New("HTTP 500")
	s := New(rec.search, Options{Quiet: quiet})
	defer s.Close()

	s.Type("dun")
	require.Eventually(t, func() bool { return len(s.Suggestions()) == 1 }, settle, pollGap)

	s.Type("dune")
	require.Eventually(t, func() bool { return len(rec.calls()) == 2 && !s.Pending() }, settle, pollGap)
	assert.Empty(t, s.Suggestions())
}

func TestCloseDropsScheduledRequest(t *testing.T) {
	rec := newRecorder()
	s := New(rec.search, Options{Quiet: quiet})

	s.Type("alien")
	s.Close()
	time.Sleep(3 * quiet)
	assert.Empty(t, rec.calls())

	s.Type("aliens")
	time.Sleep(3 * quiet)
	assert.Empty(t, rec.calls())
}

func TestDefaults(t *testing.T) {
	s := New(nil, Options{})
	assert.Equal(t, DefaultQuiet, s.opts.Quiet)
	assert.Equal(t, DefaultMinLength, s.opts.MinLength)
	assert.Equal(t, DefaultLimit, s.opts.Limit)
}
