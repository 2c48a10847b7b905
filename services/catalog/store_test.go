package catalog

import (
	"bytes"
	"log"
	"os"
	"strings"
	"testing"

	"cinedeck/models"
)

func TestStoreSubscribeAndUnsubscribe(t *testing.T) {
	s := NewStore()

	var seen []int
	unsubscribe := s.Subscribe(func(st State) {
		seen = append(seen, st.Pending)
	})

	s.Dispatch(PageRequested{Key: "popular-movies"})
	s.Dispatch(fetched("popular-movies", 1, 3, items(1, 2)))
	unsubscribe()
	s.Dispatch(PageRequested{Key: "popular-movies"})

	if len(seen) != 2 || seen[0] != 1 || seen[1] != 0 {
		t.Fatalf("expected two notifications with pending 1 then 0, got %v", seen)
	}
}

func TestStoreReadsAreCopies(t *testing.T) {
	s := NewStore()
	s.Dispatch(fetched("popular-movies", 1, 3, items(1, 2)))

	page := s.Page("popular-movies")
	page.Items[0].ID = 99

	if got := s.Category(PopularMovies).Items[0].ID; got != 1 {
		t.Fatalf("expected store to be unaffected by caller mutation, got id %d", got)
	}

	if empty := s.Page("never-loaded"); empty.Items == nil || empty.Page != 1 {
		t.Fatalf("expected empty page for unknown key, got %+v", empty)
	}
}

func TestStoreSelection(t *testing.T) {
	s := NewStore()
	if _, ok := s.Selected(); ok {
		t.Fatal("expected no selection initially")
	}

	s.Dispatch(SelectionSet{Item: models.ContentItem{ID: 5, Title: "Alien"}})
	item, ok := s.Selected()
	if !ok || item.ID != 5 {
		t.Fatalf("expected selected item 5, got %+v (ok=%v)", item, ok)
	}

	s.Dispatch(SelectionCleared{})
	if _, ok := s.Selected(); ok {
		t.Fatal("expected selection to be cleared")
	}
}

func TestServiceLogsGlobalErrorTransitions(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	store := NewStore()
	NewService(nil, store, Options{})

	store.Dispatch(PageRequested{Key: "popular-movies"})
	store.Dispatch(PageFailed{Key: "popular-movies", Message: "HTTP 503"})
	store.Dispatch(SelectionCleared{})
	store.Dispatch(ErrorCleared{})

	out := buf.String()
	if strings.Count(out, "error recorded: HTTP 503") != 1 {
		t.Fatalf("expected one error log line, got %q", out)
	}
	if strings.Count(out, "error cleared") != 1 {
		t.Fatalf("expected one clear log line, got %q", out)
	}
}
