package gateway

import (
	"strings"
)

const (
	DefaultImageBaseURL = "https://image.tmdb.org/t/p"
	DefaultPlaceholder  = "/placeholder-image.jpg"

	// Posters: w500 is plenty for grid cards
	// Backdrops: w1280 is good for 1080p backgrounds
	PosterSize   = "w500"
	BackdropSize = "w1280"
	ProfileSize  = "w185"
)

var imageSizes = map[string]struct{}{
	"w92": {}, "w154": {}, "w185": {}, "w300": {}, "w342": {}, "w500": {},
	"w780": {}, "w1280": {}, "h632": {}, "original": {},
}

// ImageOptions configures an Images builder. Zero values fall back to defaults.
type ImageOptions struct {
	BaseURL      string
	Placeholder  string
	PosterSize   string
	BackdropSize string
	ProfileSize  string
}

// Images turns relative image paths into absolute URLs.
type Images struct {
	base        string
	placeholder string
	poster      string
	backdrop    string
	profile     string
}

func NewImages(opts ImageOptions) *Images {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		base = DefaultImageBaseURL
	}
	placeholder := strings.TrimSpace(opts.Placeholder)
	if placeholder == "" {
		placeholder = DefaultPlaceholder
	}
	return &Images{
		base:        base,
		placeholder: placeholder,
		poster:      sizeOr(opts.PosterSize, PosterSize),
		backdrop:    sizeOr(opts.BackdropSize, BackdropSize),
		profile:     sizeOr(opts.ProfileSize, ProfileSize),
	}
}

// URL builds {base}/{size}{path}. An empty path yields the placeholder and an
// unknown size token falls back to the poster size.
func (i *Images) URL(imagePath, size string) string {
	trimmed := strings.TrimSpace(imagePath)
	if trimmed == "" {
		return i.placeholder
	}
	if !strings.HasPrefix(trimmed, "/") {
		trimmed = "/" + trimmed
	}
	return i.base + "/" + sizeOr(size, i.poster) + trimmed
}

func (i *Images) Poster(imagePath string) string   { return i.URL(imagePath, i.poster) }
func (i *Images) Backdrop(imagePath string) string { return i.URL(imagePath, i.backdrop) }
func (i *Images) Profile(imagePath string) string  { return i.URL(imagePath, i.profile) }

func sizeOr(size, fallback string) string {
	size = strings.TrimSpace(size)
	if _, ok := imageSizes[size]; ok {
		return size
	}
	return fallback
}
