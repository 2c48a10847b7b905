package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/text/language"

	"cinedeck/models"
)

const (
	DefaultBaseURL = "https://api.themoviedb.org/3"

	defaultLanguage    = "en-US"
	defaultTimeout     = 15 * time.Second
	defaultMinInterval = 20 * time.Millisecond
	maxBodyBytes       = 8 << 20

	detailAppend = "videos,credits,similar,recommendations"
)

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	APIKey      string
	BaseURL     string
	Language    string
	Timeout     time.Duration
	MinInterval time.Duration
	HTTPClient  *http.Client
}

// Client talks to the remote content gateway. It performs exactly one attempt
// per request; callers decide what a failure means.
type Client struct {
	apiKey   string
	baseURL  string
	language string
	httpc    *http.Client

	// Rate limiting
	throttleMu  sync.Mutex
	lastRequest time.Time
	minInterval time.Duration

	// identical in-flight GETs share one round trip
	group singleflight.Group
}

func NewClient(opts Options) *Client {
	httpc := opts.HTTPClient
	if httpc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpc = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	minInterval := opts.MinInterval
	if minInterval < 0 {
		minInterval = 0
	} else if minInterval == 0 {
		minInterval = defaultMinInterval
	}
	return &Client{
		apiKey:      strings.TrimSpace(opts.APIKey),
		baseURL:     baseURL,
		language:    normalizeLanguage(opts.Language),
		httpc:       httpc,
		minInterval: minInterval,
	}
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.apiKey != ""
}

// ListPage fetches one page of a paginated list endpoint such as "movie/popular"
// or "discover/tv". Items without a media type are tagged with kind.
func (c *Client) ListPage(ctx context.Context, kind models.MediaKind, endpoint string, params url.Values) (models.PagePayload, error) {
	body, err := c.doGET(ctx, endpoint, params)
	if err != nil {
		return models.PagePayload{}, err
	}
	return decodeList(body, endpoint, kind, false)
}

// SearchMulti queries movies and TV together. People are dropped from the results.
func (c *Client) SearchMulti(ctx context.Context, query string, page int) (models.PagePayload, error) {
	if page < 1 {
		page = 1
	}
	params := url.Values{}
	params.Set("query", query)
	params.Set("page", strconv.Itoa(page))
	params.Set("include_adult", "false")

	const endpoint = "search/multi"
	body, err := c.doGET(ctx, endpoint, params)
	if err != nil {
		return models.PagePayload{}, err
	}
	return decodeList(body, endpoint, "", true)
}

// Detail fetches a title together with its videos, credits, similar titles and recommendations.
func (c *Client) Detail(ctx context.Context, kind models.MediaKind, id int64) (*models.ContentDetail, error) {
	if !kind.Valid() {
		kind = models.KindMovie
	}
	endpoint := string(kind) + "/" + strconv.FormatInt(id, 10)
	params := url.Values{}
	params.Set("append_to_response", detailAppend)

	body, err := c.doGET(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}
	return decodeDetail(body, endpoint, kind)
}

// Genres lists the genre taxonomy for one media kind.
func (c *Client) Genres(ctx context.Context, kind models.MediaKind) ([]models.Genre, error) {
	if !kind.Valid() {
		kind = models.KindMovie
	}
	endpoint := "genre/" + string(kind) + "/list"
	body, err := c.doGET(ctx, endpoint, nil)
	if err != nil {
		return nil, err
	}
	return decodeGenres(body, endpoint)
}

// doGET performs a rate limited GET and returns the raw body. Concurrent
// callers asking for the same URL share the response bytes.
func (c *Client) doGET(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if !c.IsConfigured() {
		return nil, ErrNotConfigured
	}

	reqURL, err := url.JoinPath(c.baseURL, endpoint)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	for k, v := range params {
		q[k] = append([]string(nil), v...)
	}
	if q.Get("language") == "" {
		q.Set("language", c.language)
	}

	key := reqURL + "?" + q.Encode()
	v, err, shared := c.group.Do(key, func() (any, error) {
		return c.fetch(ctx, reqURL, q, endpoint)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		log.Printf("[gateway] shared in-flight response for %s", endpoint)
	}
	return v.([]byte), nil
}

func (c *Client) fetch(ctx context.Context, reqURL string, q url.Values, endpoint string) ([]byte, error) {
	c.throttle()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	withKey := url.Values{}
	for k, v := range q {
		withKey[k] = v
	}
	withKey.Set("api_key", c.apiKey)
	req.URL.RawQuery = withKey.Encode()
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		// url.Error embeds the full request URL, which carries the api key.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		log.Printf("[gateway] request %s failed: %v", endpoint, err)
		return nil, fmt.Errorf("gateway %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		log.Printf("[gateway] request %s returned status %d", endpoint, resp.StatusCode)
		return nil, &HTTPStatusError{Endpoint: endpoint, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("gateway %s: read body: %w", endpoint, err)
	}
	return body, nil
}

func (c *Client) throttle() {
	c.throttleMu.Lock()
	defer c.throttleMu.Unlock()
	if since := time.Since(c.lastRequest); since < c.minInterval {
		time.Sleep(c.minInterval - since)
	}
	c.lastRequest = time.Now()
}

// normalizeLanguage turns loose language input ("en", "pt_BR") into the
// language-REGION form the gateway expects.
func normalizeLanguage(lang string) string {
	lang = strings.ReplaceAll(strings.TrimSpace(lang), "_", "-")
	if lang == "" {
		return defaultLanguage
	}
	tag, err := language.Parse(lang)
	if err != nil || tag == language.Und {
		return defaultLanguage
	}
	base, _ := tag.Base()
	region, _ := tag.Region()
	return base.String() + "-" + region.String()
}
