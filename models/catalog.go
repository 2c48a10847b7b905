package models

// Catalog structures shared by the gateway client, the aggregation store and the API.

// MediaKind distinguishes movies from TV series.
type MediaKind string

const (
	KindMovie MediaKind = "movie"
	KindTV    MediaKind = "tv"
)

// ParseMediaKind maps free-form input onto a kind, defaulting to movie.
func ParseMediaKind(s string) MediaKind {
	switch s {
	case "tv", "TV", "series", "show":
		return KindTV
	default:
		return KindMovie
	}
}

func (k MediaKind) Valid() bool {
	return k == KindMovie || k == KindTV
}

// ContentItem is a single movie or TV entry as returned by list endpoints.
// Items are never mutated after they are decoded.
type ContentItem struct {
	ID               int64     `json:"id"`
	Title            string    `json:"title"`
	OriginalTitle    string    `json:"originalTitle,omitempty"`
	Overview         string    `json:"overview,omitempty"`
	PosterPath       string    `json:"posterPath,omitempty"`
	BackdropPath     string    `json:"backdropPath,omitempty"`
	Rating           float64   `json:"rating,omitempty"`
	VoteCount        int       `json:"voteCount,omitempty"`
	Popularity       float64   `json:"popularity,omitempty"`
	ReleaseDate      string    `json:"releaseDate,omitempty"`
	FirstAirDate     string    `json:"firstAirDate,omitempty"`
	OriginalLanguage string    `json:"originalLanguage,omitempty"`
	GenreIDs         []int     `json:"genreIds,omitempty"`
	Kind             MediaKind `json:"kind"`
}

// Date returns the release date for movies and the first air date for series.
func (c ContentItem) Date() string {
	if c.ReleaseDate != "" {
		return c.ReleaseDate
	}
	return c.FirstAirDate
}

// PagePayload is one decoded page of a paginated upstream list.
type PagePayload struct {
	Page       int           `json:"page"`
	Results    []ContentItem `json:"results"`
	TotalPages int           `json:"totalPages"`
}

// CategoryPage is the accumulated state of one category.
type CategoryPage struct {
	Items      []ContentItem `json:"items"`
	Page       int           `json:"page"`
	TotalPages int           `json:"totalPages"`
	Error      string        `json:"error,omitempty"`
}

// EmptyCategoryPage is the initial and reset state of every category.
func EmptyCategoryPage() CategoryPage {
	return CategoryPage{Items: []ContentItem{}, Page: 1, TotalPages: 0}
}

// HasMore reports whether another page exists upstream.
func (p CategoryPage) HasMore() bool {
	return p.Page < p.TotalPages
}

// SearchState is the single search slot.
type SearchState struct {
	Query      string        `json:"query"`
	Items      []ContentItem `json:"items"`
	Page       int           `json:"page"`
	TotalPages int           `json:"totalPages"`
}

func EmptySearchState() SearchState {
	return SearchState{Items: []ContentItem{}, Page: 1}
}

type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// GenreCatalog holds the movie and TV genre lists.
type GenreCatalog struct {
	Movie []Genre `json:"movie"`
	TV    []Genre `json:"tv"`
}

type Video struct {
	Key          string `json:"key"`
	Name         string `json:"name"`
	Site         string `json:"site"`
	Type         string `json:"type"`
	Official     bool   `json:"official,omitempty"`
	URL          string `json:"url,omitempty"`
	EmbedURL     string `json:"embedUrl,omitempty"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
}

type CastMember struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Character   string `json:"character,omitempty"`
	ProfilePath string `json:"profilePath,omitempty"`
	Order       int    `json:"order"`
}

type CrewMember struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Job        string `json:"job,omitempty"`
	Department string `json:"department,omitempty"`
}

// ContentDetail is the full record of one title with its appended sub-resources.
type ContentDetail struct {
	ContentItem
	Tagline         string        `json:"tagline,omitempty"`
	Status          string        `json:"status,omitempty"`
	Runtime         int           `json:"runtime,omitempty"`
	Seasons         int           `json:"seasons,omitempty"`
	Episodes        int           `json:"episodes,omitempty"`
	Genres          []Genre       `json:"genres"`
	Videos          []Video       `json:"videos"`
	Cast            []CastMember  `json:"cast"`
	Crew            []CrewMember  `json:"crew,omitempty"`
	Similar         []ContentItem `json:"similar"`
	Recommendations []ContentItem `json:"recommendations"`
}

// DetailKey identifies the detail record currently being viewed.
type DetailKey struct {
	Kind MediaKind `json:"kind"`
	ID   int64     `json:"id"`
}

// HeroItem is one slide of the home carousel.
type HeroItem struct {
	ContentItem
	Date string `json:"date"`
}
