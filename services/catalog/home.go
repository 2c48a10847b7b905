package catalog

import (
	"context"
	"log"
	"sort"

	"github.com/sourcegraph/conc/pool"

	"cinedeck/models"
)

const (
	heroPerSource = 10
	heroSize      = 10
)

// HomeRows are the rows of the landing view, in display order.
var HomeRows = []Category{
	TrendingMovies,
	TrendingTV,
	PopularMovies,
	TurkishDrama,
	NewestTurkishTV,
	FrenchMovies,
	ArabicMovies,
	TopRatedMovies,
	KDrama,
	CDrama,
	IndianMovies,
	MarvelMovies,
	NetflixMovies,
	AppleMovies,
	HBOMovies,
	Anime,
}

type HomeRow struct {
	Category Definition          `json:"category"`
	Page     models.CategoryPage `json:"page"`
}

type HomeView struct {
	Hero []models.HeroItem `json:"hero"`
	Rows []HomeRow         `json:"rows"`
}

// LoadHome fills the hero sources and every home row that is still empty.
// Loaded lists are left alone so views paging through them keep their place.
// Row failures are recorded in the store and never stop other rows.
func (s *Service) LoadHome(ctx context.Context) HomeView {
	p := pool.New().WithMaxGoroutines(s.opts.HomeConcurrency)

	sources := append([]Category{UpcomingMovies, UpcomingTV}, HomeRows...)
	for _, c := range sources {
		if len(s.store.Category(c).Items) > 0 {
			continue
		}
		c := c // per-iteration copy; go directive is below 1.22
		p.Go(func() {
			if _, err := s.LoadPage(ctx, c, 1); err != nil {
				log.Printf("[catalog] home list %s: %v", c, err)
			}
		})
	}
	p.Wait()

	view := HomeView{Hero: s.Hero(), Rows: make([]HomeRow, 0, len(HomeRows))}
	for _, c := range HomeRows {
		view.Rows = append(view.Rows, HomeRow{Category: c.Definition(), Page: s.store.Category(c)})
	}
	return view
}

// Hero merges the first upcoming movies and on-the-air series, newest first.
func (s *Service) Hero() []models.HeroItem {
	movies := s.store.Category(UpcomingMovies).Items
	series := s.store.Category(UpcomingTV).Items
	return buildHero(movies, series)
}

func buildHero(movies, series []models.ContentItem) []models.HeroItem {
	hero := make([]models.HeroItem, 0, 2*heroPerSource)
	for _, items := range [][]models.ContentItem{movies, series} {
		for i, item := range items {
			if i == heroPerSource {
				break
			}
			hero = append(hero, models.HeroItem{ContentItem: item, Date: item.Date()})
		}
	}
	// ISO dates sort lexically; undated items go last
	sort.SliceStable(hero, func(i, j int) bool {
		return hero[i].Date > hero[j].Date
	})
	if len(hero) > heroSize {
		hero = hero[:heroSize]
	}
	return hero
}

// VisibleItems drops entries without a poster and repeated titles, keeping
// the first occurrence. The store itself never deduplicates.
func VisibleItems(items []models.ContentItem) []models.ContentItem {
	type itemKey struct {
		kind models.MediaKind
		id   int64
	}
	seen := make(map[itemKey]struct{}, len(items))
	out := make([]models.ContentItem, 0, len(items))
	for _, item := range items {
		if item.PosterPath == "" {
			continue
		}
		k := itemKey{item.Kind, item.ID}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, item)
	}
	return out
}
