package gateway

import (
	"encoding/json"
	"fmt"
	"strings"

	"cinedeck/models"
)

type tmdbListResponse struct {
	Page       *int        `json:"page"`
	Results    *[]tmdbItem `json:"results"`
	TotalPages *int        `json:"total_pages"`
}

type tmdbItem struct {
	ID               int64   `json:"id"`
	Title            string  `json:"title"`
	Name             string  `json:"name"`
	OriginalTitle    string  `json:"original_title"`
	OriginalName     string  `json:"original_name"`
	Overview         string  `json:"overview"`
	PosterPath       string  `json:"poster_path"`
	BackdropPath     string  `json:"backdrop_path"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int     `json:"vote_count"`
	Popularity       float64 `json:"popularity"`
	ReleaseDate      string  `json:"release_date"`
	FirstAirDate     string  `json:"first_air_date"`
	OriginalLanguage string  `json:"original_language"`
	GenreIDs         []int   `json:"genre_ids"`
	MediaType        string  `json:"media_type"`
}

type tmdbDetailResponse struct {
	tmdbItem
	Tagline          string          `json:"tagline"`
	Status           string          `json:"status"`
	Runtime          int             `json:"runtime"`
	EpisodeRunTime   []int           `json:"episode_run_time"`
	NumberOfSeasons  int             `json:"number_of_seasons"`
	NumberOfEpisodes int             `json:"number_of_episodes"`
	Genres           []models.Genre  `json:"genres"`
	Videos           tmdbVideos      `json:"videos"`
	Credits          tmdbCredits     `json:"credits"`
	Similar          tmdbSubList     `json:"similar"`
	Recommendations  tmdbSubList     `json:"recommendations"`
}

type tmdbVideos struct {
	Results []tmdbVideo `json:"results"`
}

type tmdbVideo struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	Site     string `json:"site"`
	Type     string `json:"type"`
	Official bool   `json:"official"`
}

type tmdbCredits struct {
	Cast []struct {
		ID          int64  `json:"id"`
		Name        string `json:"name"`
		Character   string `json:"character"`
		ProfilePath string `json:"profile_path"`
		Order       int    `json:"order"`
	} `json:"cast"`
	Crew []struct {
		ID         int64  `json:"id"`
		Name       string `json:"name"`
		Job        string `json:"job"`
		Department string `json:"department"`
	} `json:"crew"`
}

// appended lists are best effort; only the top-level record is validated
type tmdbSubList struct {
	Results []tmdbItem `json:"results"`
}

type tmdbGenresResponse struct {
	Genres *[]models.Genre `json:"genres"`
}

// decodeList validates the {page, results, total_pages} shape. A payload
// missing any of them is rejected as a whole.
func decodeList(body []byte, endpoint string, kind models.MediaKind, mixed bool) (models.PagePayload, error) {
	var raw tmdbListResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return models.PagePayload{}, malformed(endpoint, err)
	}
	switch {
	case raw.Page == nil:
		return models.PagePayload{}, malformed(endpoint, fmt.Errorf("missing page"))
	case raw.Results == nil:
		return models.PagePayload{}, malformed(endpoint, fmt.Errorf("missing results"))
	case raw.TotalPages == nil:
		return models.PagePayload{}, malformed(endpoint, fmt.Errorf("missing total_pages"))
	case *raw.Page < 1:
		return models.PagePayload{}, malformed(endpoint, fmt.Errorf("invalid page %d", *raw.Page))
	}

	items := make([]models.ContentItem, 0, len(*raw.Results))
	for _, r := range *raw.Results {
		if mixed && r.MediaType != "" && r.MediaType != string(models.KindMovie) && r.MediaType != string(models.KindTV) {
			continue
		}
		items = append(items, r.toContentItem(kind))
	}

	return models.PagePayload{
		Page:       *raw.Page,
		Results:    items,
		TotalPages: *raw.TotalPages,
	}, nil
}

func decodeDetail(body []byte, endpoint string, kind models.MediaKind) (*models.ContentDetail, error) {
	var raw tmdbDetailResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, malformed(endpoint, err)
	}
	if raw.ID == 0 {
		return nil, malformed(endpoint, fmt.Errorf("missing id"))
	}

	// the detail endpoint never sets media_type; the path decides
	raw.MediaType = string(kind)
	detail := &models.ContentDetail{
		ContentItem:     raw.toContentItem(kind),
		Tagline:         raw.Tagline,
		Status:          raw.Status,
		Runtime:         raw.Runtime,
		Seasons:         raw.NumberOfSeasons,
		Episodes:        raw.NumberOfEpisodes,
		Genres:          raw.Genres,
		Videos:          make([]models.Video, 0, len(raw.Videos.Results)),
		Cast:            make([]models.CastMember, 0, len(raw.Credits.Cast)),
		Similar:         subListItems(raw.Similar, kind),
		Recommendations: subListItems(raw.Recommendations, kind),
	}
	if detail.Runtime == 0 && len(raw.EpisodeRunTime) > 0 {
		detail.Runtime = raw.EpisodeRunTime[0]
	}
	if detail.Genres == nil {
		detail.Genres = []models.Genre{}
	}
	if len(raw.Genres) > 0 && len(detail.GenreIDs) == 0 {
		for _, g := range raw.Genres {
			detail.GenreIDs = append(detail.GenreIDs, g.ID)
		}
	}

	for _, v := range raw.Videos.Results {
		if video, ok := buildVideo(v); ok {
			detail.Videos = append(detail.Videos, video)
		}
	}
	for _, member := range raw.Credits.Cast {
		detail.Cast = append(detail.Cast, models.CastMember{
			ID:          member.ID,
			Name:        member.Name,
			Character:   member.Character,
			ProfilePath: member.ProfilePath,
			Order:       member.Order,
		})
	}
	for _, member := range raw.Credits.Crew {
		detail.Crew = append(detail.Crew, models.CrewMember{
			ID:         member.ID,
			Name:       member.Name,
			Job:        member.Job,
			Department: member.Department,
		})
	}

	return detail, nil
}

func decodeGenres(body []byte, endpoint string) ([]models.Genre, error) {
	var raw tmdbGenresResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, malformed(endpoint, err)
	}
	if raw.Genres == nil {
		return nil, malformed(endpoint, fmt.Errorf("missing genres"))
	}
	return *raw.Genres, nil
}

func subListItems(list tmdbSubList, kind models.MediaKind) []models.ContentItem {
	items := make([]models.ContentItem, 0, len(list.Results))
	for _, r := range list.Results {
		items = append(items, r.toContentItem(kind))
	}
	return items
}

func (r tmdbItem) toContentItem(fallback models.MediaKind) models.ContentItem {
	kind := models.MediaKind(r.MediaType)
	if !kind.Valid() {
		kind = inferKind(r, fallback)
	}
	original := r.OriginalTitle
	if original == "" {
		original = r.OriginalName
	}
	return models.ContentItem{
		ID:               r.ID,
		Title:            pickName(kind, r.Name, r.Title),
		OriginalTitle:    original,
		Overview:         r.Overview,
		PosterPath:       strings.TrimSpace(r.PosterPath),
		BackdropPath:     strings.TrimSpace(r.BackdropPath),
		Rating:           r.VoteAverage,
		VoteCount:        r.VoteCount,
		Popularity:       r.Popularity,
		ReleaseDate:      r.ReleaseDate,
		FirstAirDate:     r.FirstAirDate,
		OriginalLanguage: r.OriginalLanguage,
		GenreIDs:         r.GenreIDs,
		Kind:             kind,
	}
}

func inferKind(r tmdbItem, fallback models.MediaKind) models.MediaKind {
	if fallback.Valid() {
		return fallback
	}
	if r.FirstAirDate != "" || (r.Name != "" && r.Title == "") {
		return models.KindTV
	}
	return models.KindMovie
}

func pickName(kind models.MediaKind, seriesName, movieTitle string) string {
	if kind == models.KindMovie && movieTitle != "" {
		return movieTitle
	}
	if seriesName != "" {
		return seriesName
	}
	return movieTitle
}

func buildVideo(v tmdbVideo) (models.Video, bool) {
	key := strings.TrimSpace(v.Key)
	if key == "" {
		return models.Video{}, false
	}
	video := models.Video{
		Key:      key,
		Name:     strings.TrimSpace(v.Name),
		Site:     strings.TrimSpace(v.Site),
		Type:     strings.TrimSpace(v.Type),
		Official: v.Official,
	}
	switch strings.ToLower(video.Site) {
	case "youtube":
		video.URL = "https://www.youtube.com/watch?v=" + key
		video.EmbedURL = "https://www.youtube.com/embed/" + key
		video.ThumbnailURL = "https://img.youtube.com/vi/" + key + "/hqdefault.jpg"
	case "vimeo":
		video.URL = "https://vimeo.com/" + key
		video.EmbedURL = "https://player.vimeo.com/video/" + key
	default:
		video.URL = key
	}
	return video, true
}
