package catalog

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"cinedeck/models"
)

// Category is one of the fixed browsable lists. The set is closed; string keys
// are only parsed at the HTTP edge.
type Category int

const (
	PopularMovies Category = iota
	TrendingMovies
	TopRatedMovies
	UpcomingMovies

	PopularTV
	AllTV
	TrendingTV
	UpcomingTV

	Anime
	AnimatedMovies
	AnimatedTV
	AnimeMovies
	AnimeTV
	WesternCartoons
	JapaneseAnime

	ArabicMovies
	LatestArabicTV
	PopularArabic
	RamadanSeries
	FrenchMovies
	LatestFrench
	TurkishMovies
	TurkishDrama
	LatestTurkishMovies
	NewestTurkishTV
	PopularTurkish
	KDrama
	CDrama
	IndianMovies

	NetflixOriginals
	NetflixMovies
	NetflixTrending
	DisneyOriginals
	DisneyMovies
	DisneyTrending
	AmazonOriginals
	AmazonMovies
	HBOOriginals
	HBOMovies
	AppleOriginals
	AppleMovies

	MarvelMovies
	FootballMatches
	SportsDocumentaries
	LiveSports

	categoryCount
)

// Watch provider and network ids used by the streaming platform lists.
const (
	providerNetflix    = 8
	providerDisneyPlus = 337
	providerAmazon     = 119
	providerHBOMax     = 384
	providerAppleTV    = 350
)

// Definition describes how a category is fetched.
type Definition struct {
	Key      string           `json:"key"`
	Title    string           `json:"title"`
	Kind     models.MediaKind `json:"kind"`
	Group    string           `json:"group"`
	Endpoint string           `json:"-"`
	// Params are fixed filter parameters. They are treated as data and may be
	// tuned without touching the fetch logic.
	Params map[string]string `json:"-"`
	// YearParam, when set, receives the current calendar year at fetch time.
	YearParam string `json:"-"`
}

var definitions = [categoryCount]Definition{
	PopularMovies:  {Key: "popular-movies", Title: "Popular Movies", Kind: models.KindMovie, Group: "movies", Endpoint: "movie/popular"},
	TrendingMovies: {Key: "trending-movies", Title: "Trending Movies", Kind: models.KindMovie, Group: "movies", Endpoint: "trending/movie/week"},
	TopRatedMovies: {Key: "top-rated-movies", Title: "Top Rated Movies", Kind: models.KindMovie, Group: "movies", Endpoint: "movie/top_rated"},
	UpcomingMovies: {Key: "upcoming-movies", Title: "Upcoming Movies", Kind: models.KindMovie, Group: "movies", Endpoint: "movie/upcoming"},

	PopularTV:  {Key: "tv-shows", Title: "Popular TV Shows", Kind: models.KindTV, Group: "tv", Endpoint: "tv/popular"},
	AllTV:      {Key: "all-tv-shows", Title: "All TV Shows", Kind: models.KindTV, Group: "tv", Endpoint: "discover/tv", Params: map[string]string{"sort_by": "popularity.desc"}},
	TrendingTV: {Key: "trending-tv", Title: "Trending TV Shows", Kind: models.KindTV, Group: "tv", Endpoint: "trending/tv/week"},
	UpcomingTV: {Key: "upcoming-tv", Title: "Upcoming TV Shows", Kind: models.KindTV, Group: "tv", Endpoint: "tv/on_the_air"},

	Anime:           {Key: "anime", Title: "Anime", Kind: models.KindTV, Group: "animation", Endpoint: "discover/tv", Params: map[string]string{"with_genres": "16"}},
	AnimatedMovies:  {Key: "animated-movies", Title: "Animated Movies", Kind: models.KindMovie, Group: "animation", Endpoint: "discover/movie", Params: map[string]string{"with_genres": "16", "sort_by": "popularity.desc"}},
	AnimatedTV:      {Key: "animated-tv", Title: "Animated TV Shows", Kind: models.KindTV, Group: "animation", Endpoint: "discover/tv", Params: map[string]string{"with_genres": "16", "sort_by": "popularity.desc"}},
	AnimeMovies:     {Key: "anime-movies", Title: "Anime Movies", Kind: models.KindMovie, Group: "animation", Endpoint: "discover/movie", Params: map[string]string{"with_genres": "16", "with_original_language": "ja", "sort_by": "popularity.desc"}},
	AnimeTV:         {Key: "anime-tv", Title: "Anime TV Series", Kind: models.KindTV, Group: "animation", Endpoint: "discover/tv", Params: map[string]string{"with_genres": "16", "with_original_language": "ja", "sort_by": "popularity.desc"}},
	WesternCartoons: {Key: "western-cartoons", Title: "Western Cartoons", Kind: models.KindMovie, Group: "animation", Endpoint: "discover/movie", Params: map[string]string{"with_genres": "16", "without_companies": "19398", "sort_by": "popularity.desc"}},
	JapaneseAnime:   {Key: "japanese-anime", Title: "Japanese Anime", Kind: models.KindTV, Group: "animation", Endpoint: "discover/tv", Params: map[string]string{"with_genres": "16", "with_origin_country": "JP", "sort_by": "popularity.desc"}},

	ArabicMovies:        {Key: "arabic-content", Title: "Arabic Movies", Kind: models.KindMovie, Group: "regional", Endpoint: "discover/movie", Params: map[string]string{"with_original_language": "ar", "region": "EG", "sort_by": "release_date.desc"}},
	LatestArabicTV:      {Key: "arabic-tv", Title: "Latest Arabic TV", Kind: models.KindTV, Group: "regional", Endpoint: "discover/tv", Params: map[string]string{"with_original_language": "ar", "sort_by": "first_air_date.desc"}},
	PopularArabic:       {Key: "popular-arabic", Title: "Popular Arabic Content", Kind: models.KindMovie, Group: "regional", Endpoint: "discover/movie", Params: map[string]string{"with_original_language": "ar", "sort_by": "popularity.desc"}},
	RamadanSeries:       {Key: "ramadan-content", Title: "Ramadan Series", Kind: models.KindTV, Group: "regional", Endpoint: "discover/tv", Params: map[string]string{"with_original_language": "ar", "with_keywords": "ramadan,arabic-tv-series", "sort_by": "popularity.desc"}, YearParam: "first_air_date_year"},
	FrenchMovies:        {Key: "french-content", Title: "French Movies", Kind: models.KindMovie, Group: "regional", Endpoint: "discover/movie", Params: map[string]string{"with_original_language": "fr"}},
	LatestFrench:        {Key: "latest-french", Title: "Latest French Content", Kind: models.KindMovie, Group: "regional", Endpoint: "discover/movie", Params: map[string]string{"with_original_language": "fr", "sort_by": "release_date.desc"}},
	TurkishMovies:       {Key: "turkish-content", Title: "Turkish Movies", Kind: models.KindMovie, Group: "regional", Endpoint: "discover/movie", Params: map[string]string{"with_original_language": "tr"}},
	TurkishDrama:        {Key: "turkish-drama", Title: "Turkish Dramas", Kind: models.KindTV, Group: "regional", Endpoint: "discover/tv", Params: map[string]string{"with_original_language": "tr", "with_genres": "18", "sort_by": "first_air_date.desc"}},
	LatestTurkishMovies: {Key: "latest-turkish-movies", Title: "Latest Turkish Movies", Kind: models.KindMovie, Group: "regional", Endpoint: "discover/movie", Params: map[string]string{"with_original_language": "tr", "sort_by": "release_date.desc"}},
	NewestTurkishTV:     {Key: "newest-turkish-tv", Title: "Newest Turkish TV", Kind: models.KindTV, Group: "regional", Endpoint: "discover/tv", Params: map[string]string{"with_original_language": "tr", "sort_by": "first_air_date.desc"}},
	PopularTurkish:      {Key: "popular-turkish", Title: "Popular Turkish Content", Kind: models.KindMovie, Group: "regional", Endpoint: "discover/movie", Params: map[string]string{"with_original_language": "tr", "sort_by": "popularity.desc"}},
	KDrama:              {Key: "k-drama", Title: "Korean Dramas", Kind: models.KindTV, Group: "regional", Endpoint: "discover/tv", Params: map[string]string{"with_original_language": "ko", "with_genres": "18", "sort_by": "first_air_date.desc"}},
	CDrama:              {Key: "c-drama", Title: "Chinese Dramas", Kind: models.KindTV, Group: "regional", Endpoint: "discover/tv", Params: map[string]string{"with_original_language": "zh", "with_genres": "18", "sort_by": "first_air_date.desc"}},
	IndianMovies:        {Key: "indian-movies", Title: "Indian Movies", Kind: models.KindMovie, Group: "regional", Endpoint: "discover/movie", Params: map[string]string{"with_original_language": "hi", "sort_by": "release_date.desc"}},

	NetflixOriginals: originals("netflix-originals", "Netflix Originals", providerNetflix),
	NetflixMovies:    providerMovies("netflix-movies", "Netflix Movies", providerNetflix, "release_date.desc"),
	NetflixTrending:  providerMovies("netflix-trending", "Netflix Trending", providerNetflix, "popularity.desc"),
	DisneyOriginals:  originals("disney-originals", "Disney+ Originals", providerDisneyPlus),
	DisneyMovies:     providerMovies("disney-movies", "Disney+ Movies", providerDisneyPlus, "release_date.desc"),
	DisneyTrending:   providerMovies("disney-trending", "Disney+ Trending", providerDisneyPlus, "popularity.desc"),
	AmazonOriginals:  originals("amazon-originals", "Amazon Prime Originals", providerAmazon),
	AmazonMovies:     providerMovies("amazon-movies", "Amazon Prime Movies", providerAmazon, "release_date.desc"),
	HBOOriginals:     originals("hbo-originals", "HBO Max Originals", providerHBOMax),
	HBOMovies:        providerMovies("hbo-movies", "HBO Max Movies", providerHBOMax, "release_date.desc"),
	AppleOriginals:   originals("apple-originals", "Apple TV+ Originals", providerAppleTV),
	AppleMovies:      providerMovies("apple-movies", "Apple TV+ Movies", providerAppleTV, "release_date.desc"),

	MarvelMovies:        {Key: "marvel-movies", Title: "Marvel Movies", Kind: models.KindMovie, Group: "special", Endpoint: "discover/movie", Params: map[string]string{"with_companies": "420|19551|38679", "sort_by": "release_date.desc"}},
	FootballMatches:     {Key: "football-matches", Title: "Football Matches", Kind: models.KindMovie, Group: "special", Endpoint: "discover/movie", Params: map[string]string{"with_genres": "10770", "sort_by": "release_date.desc"}},
	SportsDocumentaries: {Key: "sports-documentaries", Title: "Sports Documentaries", Kind: models.KindMovie, Group: "special", Endpoint: "discover/movie", Params: map[string]string{"with_genres": "99", "with_keywords": "180", "sort_by": "release_date.desc"}},
	LiveSports:          {Key: "live-sports", Title: "Live Sports", Kind: models.KindTV, Group: "special", Endpoint: "discover/tv", Params: map[string]string{"with_genres": "10767", "sort_by": "first_air_date.desc"}},
}

func originals(key, title string, network int) Definition {
	return Definition{
		Key: key, Title: title, Kind: models.KindTV, Group: "streaming", Endpoint: "discover/tv",
		Params: map[string]string{"with_networks": strconv.Itoa(network), "sort_by": "first_air_date.desc"},
	}
}

func providerMovies(key, title string, provider int, sortBy string) Definition {
	return Definition{
		Key: key, Title: title, Kind: models.KindMovie, Group: "streaming", Endpoint: "discover/movie",
		Params: map[string]string{"with_watch_providers": strconv.Itoa(provider), "watch_region": "US", "sort_by": sortBy},
	}
}

var byKey = func() map[string]Category {
	m := make(map[string]Category, categoryCount)
	for i := Category(0); i < categoryCount; i++ {
		m[definitions[i].Key] = i
	}
	return m
}()

// Categories returns every category in declaration order.
func Categories() []Category {
	out := make([]Category, 0, categoryCount)
	for i := Category(0); i < categoryCount; i++ {
		out = append(out, i)
	}
	return out
}

// ParseCategory resolves a string key such as "popular-movies".
func ParseCategory(key string) (Category, bool) {
	c, ok := byKey[strings.ToLower(strings.TrimSpace(key))]
	return c, ok
}

func (c Category) Valid() bool {
	return c >= 0 && c < categoryCount
}

func (c Category) Definition() Definition {
	if !c.Valid() {
		return Definition{}
	}
	return definitions[c]
}

func (c Category) Key() string {
	return c.Definition().Key
}

func (c Category) String() string {
	if !c.Valid() {
		return "Category(" + strconv.Itoa(int(c)) + ")"
	}
	return definitions[c].Key
}

// Query builds the request parameters for one page of the category.
func (d Definition) Query(page int, now time.Time) url.Values {
	if page < 1 {
		page = 1
	}
	q := url.Values{}
	for k, v := range d.Params {
		q.Set(k, v)
	}
	if d.YearParam != "" {
		q.Set(d.YearParam, strconv.Itoa(now.Year()))
	}
	q.Set("page", strconv.Itoa(page))
	return q
}

// GenreKey is the store key of a genre listing.
func GenreKey(kind models.MediaKind, genreID int) string {
	return "genre:" + string(kind) + ":" + strconv.Itoa(genreID)
}
