package external

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const (
	defaultTMDBAPI  = "https://api.themoviedb.org/3"
	tmdbPosterBase  = "https://image.tmdb.org/t/p/w500"
	tmdbMovieURLFmt = "https://www.themoviedb.org/movie/%d"
)

// Movie 电影
type Movie struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	ReleaseDate string  `json:"releaseDate"`
	Rating      float64 `json:"rating"`
	PosterURL   string  `json:"posterUrl,omitempty"`
	URL         string  `json:"url"`
}

// TMDBClient TMDB电影推荐
type TMDBClient struct {
	base
	apiKey  string
	baseURL string
}

// NewTMDBClient 创建TMDB客户端
func NewTMDBClient(apiKey string, opts Options) *TMDBClient {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultTMDBAPI
	}
	return &TMDBClient{
		base:    newBase("tmdb", opts),
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Configured 是否已配置密钥
func (c *TMDBClient) Configured() bool {
	return c.apiKey != ""
}

// MoviesByGenre 按类型获取热门电影
func (c *TMDBClient) MoviesByGenre(ctx context.Context, genreID int, limit int) ([]Movie, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	if limit <= 0 || limit > 20 {
		limit = 10
	}

	body, err := c.fetch(ctx, "discover:"+strconv.Itoa(genreID), 0, func(ctx context.Context) (*http.Request, error) {
		params := url.Values{}
		params.Set("api_key", c.apiKey)
		params.Set("with_genres", strconv.Itoa(genreID))
		params.Set("sort_by", "popularity.desc")
		params.Set("include_adult", "false")
		params.Set("page", "1")
		return http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/discover/movie?"+params.Encode(), nil)
	})
	if err != nil {
		return nil, err
	}

	var resp struct {
		Results []struct {
			ID          int     `json:"id"`
			Title       string  `json:"title"`
			Overview    string  `json:"overview"`
			ReleaseDate string  `json:"release_date"`
			VoteAverage float64 `json:"vote_average"`
			PosterPath  string  `json:"poster_path"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: tmdb: decode response: %v", ErrUpstream, err)
	}

	movies := make([]Movie, 0, limit)
	for _, r := range resp.Results {
		if len(movies) == limit {
			break
		}
		m := Movie{
			ID:          r.ID,
			Title:       r.Title,
			Overview:    r.Overview,
			ReleaseDate: r.ReleaseDate,
			Rating:      r.VoteAverage,
			URL:         fmt.Sprintf(tmdbMovieURLFmt, r.ID),
		}
		if r.PosterPath != "" {
			m.PosterURL = tmdbPosterBase + r.PosterPath
		}
		movies = append(movies, m)
	}
	return movies, nil
}
