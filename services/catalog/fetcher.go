package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"cinedeck/models"
	"cinedeck/services/gateway"
)

var ErrUnknownCategory = errors.New("unknown category")

//go:generate mockgen -destination=mocks/mock_gateway.go -package=mocks cinedeck/services/catalog Gateway

// Gateway is the subset of the remote content API used by the catalog.
type Gateway interface {
	ListPage(ctx context.Context, kind models.MediaKind, endpoint string, params url.Values) (models.PagePayload, error)
	SearchMulti(ctx context.Context, query string, page int) (models.PagePayload, error)
	Detail(ctx context.Context, kind models.MediaKind, id int64) (*models.ContentDetail, error)
	Genres(ctx context.Context, kind models.MediaKind) ([]models.Genre, error)
}

var _ Gateway = (*gateway.Client)(nil)

// Fetcher retrieves single pages of categories. It holds no catalog state.
type Fetcher struct {
	gw  Gateway
	now func() time.Time
}

func NewFetcher(gw Gateway) *Fetcher {
	return &Fetcher{gw: gw, now: time.Now}
}

// Fetch requests one page of c. Pages below 1 are treated as 1.
func (f *Fetcher) Fetch(ctx context.Context, c Category, page int) (models.PagePayload, error) {
	if !c.Valid() {
		return models.PagePayload{}, fmt.Errorf("%w: %d", ErrUnknownCategory, int(c))
	}
	def := c.Definition()
	return f.gw.ListPage(ctx, def.Kind, def.Endpoint, def.Query(page, f.now()))
}

// FetchGenre requests one page of titles tagged with genreID.
func (f *Fetcher) FetchGenre(ctx context.Context, kind models.MediaKind, genreID, page int) (models.PagePayload, error) {
	if !kind.Valid() {
		kind = models.KindMovie
	}
	if page < 1 {
		page = 1
	}
	params := url.Values{}
	params.Set("with_genres", strconv.Itoa(genreID))
	params.Set("page", strconv.Itoa(page))
	return f.gw.ListPage(ctx, kind, "discover/"+string(kind), params)
}
