package gateway

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"cinedeck/models"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     make(http.Header),
	}
}

func newTestClient(fn roundTripFunc) *Client {
	return NewClient(Options{
		APIKey:      "secret-key",
		Language:    "en",
		MinInterval: -1,
		HTTPClient:  &http.Client{Transport: fn},
	})
}

func TestListPageDecodesAndTagsKind(t *testing.T) {
	var captured *http.Request
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		captured = req
		return jsonResponse(http.StatusOK, `{"page":2,"total_pages":9,"results":[
			{"id":1,"name":"Dark","first_air_date":"2017-12-01","poster_path":"/dark.jpg","vote_average":8.4},
			{"id":2,"name":"Lupin","poster_path":null}
		]}`), nil
	})

	params := url.Values{}
	params.Set("with_original_language", "fr")
	params.Set("page", "2")
	payload, err := client.ListPage(context.Background(), models.KindTV, "discover/tv", params)
	if err != nil {
		t.Fatalf("ListPage: %v", err)
	}

	if captured.URL.Path != "/3/discover/tv" {
		t.Fatalf("unexpected path %q", captured.URL.Path)
	}
	q := captured.URL.Query()
	if q.Get("api_key") != "secret-key" || q.Get("language") != "en-US" || q.Get("with_original_language") != "fr" || q.Get("page") != "2" {
		t.Fatalf("unexpected query %v", q)
	}

	if payload.Page != 2 || payload.TotalPages != 9 || len(payload.Results) != 2 {
		t.Fatalf("unexpected payload %+v", payload)
	}
	first := payload.Results[0]
	if first.Title != "Dark" || first.Kind != models.KindTV || first.PosterPath != "/dark.jpg" || first.Rating != 8.4 {
		t.Fatalf("unexpected first item %+v", first)
	}
	if payload.Results[1].PosterPath != "" || payload.Results[1].Kind != models.KindTV {
		t.Fatalf("unexpected second item %+v", payload.Results[1])
	}
}

func TestListPageStatusErrorKeepsKeyOut(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusNotFound, `{"status_message":"not found"}`), nil
	})

	_, err := client.ListPage(context.Background(), models.KindMovie, "movie/popular", nil)
	if err == nil {
		t.Fatal("expected error")
	}
	var statusErr *HTTPStatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusNotFound {
		t.Fatalf("expected HTTPStatusError 404, got %v", err)
	}
	if !IsNotFound(err) {
		t.Fatal("expected IsNotFound")
	}
	if strings.Contains(err.Error(), "secret-key") {
		t.Fatalf("error leaks api key: %v", err)
	}
}

func TestTransportErrorKeepsKeyOut(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	})

	_, err := client.ListPage(context.Background(), models.KindMovie, "movie/popular", nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if strings.Contains(err.Error(), "secret-key") {
		t.Fatalf("error leaks api key: %v", err)
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Fatalf("expected transport cause, got %v", err)
	}
}

func TestListPageRejectsMalformedPayloads(t *testing.T) {
	cases := map[string]string{
		"invalid json":        `{"page":1,`,
		"missing results":     `{"page":1,"total_pages":3}`,
		"missing page":        `{"results":[],"total_pages":3}`,
		"missing total pages": `{"page":1,"results":[]}`,
		"zero page":           `{"page":0,"results":[],"total_pages":3}`,
		"results not list":    `{"page":1,"results":{},"total_pages":3}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			client := newTestClient(func(req *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusOK, body), nil
			})
			_, err := client.ListPage(context.Background(), models.KindMovie, "movie/popular", nil)
			if !errors.Is(err, ErrMalformedPayload) {
				t.Fatalf("expected ErrMalformedPayload, got %v", err)
			}
		})
	}
}

func TestUnconfiguredClientSkipsNetwork(t *testing.T) {
	called := false
	client := NewClient(Options{HTTPClient: &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		called = true
		return jsonResponse(http.StatusOK, `{}`), nil
	})}})

	if _, err := client.SearchMulti(context.Background(), "batman", 1); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if called {
		t.Fatal("transport should not be called")
	}
}

func TestSearchMultiDropsPeopleAndInfersKind(t *testing.T) {
	var query url.Values
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		query = req.URL.Query()
		return jsonResponse(http.StatusOK, `{"page":1,"total_pages":1,"results":[
			{"id":268,"title":"Batman","media_type":"movie","release_date":"1989-06-23"},
			{"id":3,"name":"Michael Keaton","media_type":"person"},
			{"id":2098,"name":"Batman: The Animated Series","media_type":"tv"},
			{"id":77,"name":"Untyped Show","first_air_date":"2001-01-01"}
		]}`), nil
	})

	payload, err := client.SearchMulti(context.Background(), "batman", 0)
	if err != nil {
		t.Fatalf("SearchMulti: %v", err)
	}
	if query.Get("query") != "batman" || query.Get("page") != "1" {
		t.Fatalf("unexpected query %v", query)
	}
	if len(payload.Results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(payload.Results))
	}
	want := []models.MediaKind{models.KindMovie, models.KindTV, models.KindTV}
	for i, item := range payload.Results {
		if item.Kind != want[i] {
			t.Fatalf("item %d kind %q, want %q", i, item.Kind, want[i])
		}
	}
}

func TestDetailDecodesAppendedResources(t *testing.T) {
	var captured *http.Request
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		captured = req
		return jsonResponse(http.StatusOK, `{
			"id":550,"title":"Fight Club","runtime":139,"overview":"...","tagline":"Mischief. Mayhem. Soap.",
			"genres":[{"id":18,"name":"Drama"}],
			"videos":{"results":[{"key":"abc","site":"YouTube","type":"Trailer","name":"Trailer"},{"key":"","site":"YouTube"}]},
			"credits":{"cast":[{"id":819,"name":"Edward Norton","character":"Narrator","order":0}],"crew":[{"id":7467,"name":"David Fincher","job":"Director"}]},
			"similar":{"page":1,"results":[{"id":807,"title":"Se7en"}],"total_pages":1},
			"recommendations":{"page":1,"results":[{"id":680,"title":"Pulp Fiction"}],"total_pages":1}
		}`), nil
	})

	detail, err := client.Detail(context.Background(), models.KindMovie, 550)
	if err != nil {
		t.Fatalf("Detail: %v", err)
	}
	if captured.URL.Path != "/3/movie/550" {
		t.Fatalf("unexpected path %q", captured.URL.Path)
	}
	if got := captured.URL.Query().Get("append_to_response"); got != "videos,credits,similar,recommendations" {
		t.Fatalf("unexpected append_to_response %q", got)
	}
	if detail.Title != "Fight Club" || detail.Runtime != 139 || detail.Kind != models.KindMovie {
		t.Fatalf("unexpected detail %+v", detail.ContentItem)
	}
	if len(detail.Videos) != 1 || detail.Videos[0].EmbedURL != "https://www.youtube.com/embed/abc" {
		t.Fatalf("unexpected videos %+v", detail.Videos)
	}
	if len(detail.Cast) != 1 || detail.Cast[0].Name != "Edward Norton" {
		t.Fatalf("unexpected cast %+v", detail.Cast)
	}
	if len(detail.Crew) != 1 || detail.Crew[0].Job != "Director" {
		t.Fatalf("unexpected crew %+v", detail.Crew)
	}
	if len(detail.Similar) != 1 || detail.Similar[0].Title != "Se7en" {
		t.Fatalf("unexpected similar %+v", detail.Similar)
	}
	if len(detail.Recommendations) != 1 || detail.Recommendations[0].Kind != models.KindMovie {
		t.Fatalf("unexpected recommendations %+v", detail.Recommendations)
	}
}

func TestDetailInvalidKindDefaultsToMovie(t *testing.T) {
	var path string
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		path = req.URL.Path
		return jsonResponse(http.StatusOK, `{"id":1,"title":"x"}`), nil
	})
	if _, err := client.Detail(context.Background(), "", 1); err != nil {
		t.Fatalf("Detail: %v", err)
	}
	if path != "/3/movie/1" {
		t.Fatalf("unexpected path %q", path)
	}
}

func TestDetailWithoutIDIsMalformed(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"success":false}`), nil
	})
	if _, err := client.Detail(context.Background(), models.KindTV, 1); !errors.Is(err, ErrMalformedPayload) {
		t.Fatalf("expected ErrMalformedPayload, got %v", err)
	}
}

func TestGenres(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/3/genre/tv/list" {
			t.Errorf("unexpected path %q", req.URL.Path)
		}
		return jsonResponse(http.StatusOK, `{"genres":[{"id":16,"name":"Animation"},{"id":18,"name":"Drama"}]}`), nil
	})
	genres, err := client.Genres(context.Background(), models.KindTV)
	if err != nil {
		t.Fatalf("Genres: %v", err)
	}
	if len(genres) != 2 || genres[0].Name != "Animation" {
		t.Fatalf("unexpected genres %+v", genres)
	}
}

func TestConcurrentIdenticalRequestsShareOneRoundTrip(t *testing.T) {
	var calls atomic.Int32
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		calls.Add(1)
		select {
		case started <- struct{}{}:
		default:
		}
		<-release
		return jsonResponse(http.StatusOK, `{"page":1,"total_pages":1,"results":[{"id":1,"title":"A"}]}`), nil
	})

	var wg sync.WaitGroup
	results := make([]models.PagePayload, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			payload, err := client.ListPage(context.Background(), models.KindMovie, "movie/popular", nil)
			if err != nil {
				t.Errorf("ListPage: %v", err)
			}
			results[i] = payload
		}(i)
		if i == 0 {
			<-started
		}
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Fatalf("expected one round trip, got %d", got)
	}
	for i, payload := range results {
		if len(payload.Results) != 1 {
			t.Fatalf("caller %d got %+v", i, payload)
		}
	}
}

func TestNormalizeLanguage(t *testing.T) {
	cases := map[string]string{
		"":      "en-US",
		"en":    "en-US",
		"en-GB": "en-GB",
		"pt_BR": "pt-BR",
		"fr-fr": "fr-FR",
		"%%":    "en-US",
	}
	for in, want := range cases {
		if got := normalizeLanguage(in); got != want {
			t.Fatalf("normalizeLanguage(%q) = %q, want %q", in, got, want)
		}
	}
}
