package external

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	defaultSpotifyAPI   = "https://api.spotify.com/v1"
	defaultSpotifyToken = "https://accounts.spotify.com/api/token"
)

// SpotifyConfig Spotify配置
type SpotifyConfig struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
}

// Playlist 歌单
type Playlist struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	URL         string `json:"url"`
	ImageURL    string `json:"imageUrl,omitempty"`
}

// SpotifyClient 使用client credentials模式访问Spotify
type SpotifyClient struct {
	base
	cfg     SpotifyConfig
	baseURL string

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
	now         func() time.Time
}

// NewSpotifyClient 创建Spotify客户端
func NewSpotifyClient(cfg SpotifyConfig, opts Options) *SpotifyClient {
	if cfg.TokenURL == "" {
		cfg.TokenURL = defaultSpotifyToken
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultSpotifyAPI
	}
	return &SpotifyClient{
		base:    newBase("spotify", opts),
		cfg:     cfg,
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
	}
}

// Configured 是否已配置密钥
func (c *SpotifyClient) Configured() bool {
	return c.cfg.ClientID != "" && c.cfg.ClientSecret != ""
}

// Playlists 按关键词搜索歌单
func (c *SpotifyClient) Playlists(ctx context.Context, query string, limit int) ([]Playlist, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	cacheKey := fmt.Sprintf("playlists:%s:%d", strings.ToLower(query), limit)
	body, err := c.fetch(ctx, cacheKey, 0, func(ctx context.Context) (*http.Request, error) {
		token, err := c.accessToken(ctx)
		if err != nil {
			return nil, err
		}

		params := url.Values{}
		params.Set("q", query)
		params.Set("type", "playlist")
		params.Set("limit", strconv.Itoa(limit))

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
		return req, nil
	})
	if err != nil {
		return nil, err
	}

	var resp struct {
		Playlists struct {
			Items []*struct {
				ID           string `json:"id"`
				Name         string `json:"name"`
				Description  string `json:"description"`
				ExternalURLs struct {
					Spotify string `json:"spotify"`
				} `json:"external_urls"`
				Images []struct {
					URL string `json:"url"`
				} `json:"images"`
			} `json:"items"`
		} `json:"playlists"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: spotify: decode response: %v", ErrUpstream, err)
	}

	playlists := make([]Playlist, 0, len(resp.Playlists.Items))
	for _, item := range resp.Playlists.Items {
		// Spotify偶尔返回null条目
		if item == nil {
			continue
		}
		p := Playlist{
			ID:          item.ID,
			Name:        item.Name,
			Description: item.Description,
			URL:         item.ExternalURLs.Spotify,
		}
		if len(item.Images) > 0 {
			p.ImageURL = item.Images[0].URL
		}
		playlists = append(playlists, p)
	}
	return playlists, nil
}

// accessToken 获取并缓存访问令牌，提前一分钟刷新
func (c *SpotifyClient) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && c.now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.cfg.ClientID, c.cfg.ClientSecret)

	body, err := c.do(req)
	if err != nil {
		return "", err
	}

	var tok struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &tok); err != nil {
		return "", fmt.Errorf("%w: spotify: decode token: %v", ErrUpstream, err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("%w: spotify: empty access token", ErrUpstream)
	}

	c.token = tok.AccessToken
	c.tokenExpiry = c.now().Add(time.Duration(tok.ExpiresIn)*time.Second - time.Minute)
	return c.token, nil
}
