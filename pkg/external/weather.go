package external

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultOpenWeatherAPI = "https://api.openweathermap.org/data/2.5"
	weatherCacheTTL       = 10 * time.Minute
)

// ErrInvalidLocation 缺少城市或经纬度
var ErrInvalidLocation = errors.New("city or lat/lon is required")

// WeatherQuery 天气查询条件，City与经纬度二选一
type WeatherQuery struct {
	City string
	Lat  *float64
	Lon  *float64
}

func (q WeatherQuery) valid() bool {
	return strings.TrimSpace(q.City) != "" || (q.Lat != nil && q.Lon != nil)
}

// Weather 当前天气
type Weather struct {
	Location    string  `json:"location"`
	Condition   string  `json:"condition"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
	Temperature float64 `json:"temperature"`
	FeelsLike   float64 `json:"feelsLike"`
	Humidity    int     `json:"humidity"`
	WindSpeed   float64 `json:"windSpeed"`
	Units       string  `json:"units"`
}

// WeatherClient OpenWeatherMap当前天气
type WeatherClient struct {
	base
	apiKey  string
	units   string
	baseURL string
}

// NewWeatherClient 创建天气客户端
func NewWeatherClient(apiKey, units string, opts Options) *WeatherClient {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenWeatherAPI
	}
	if units == "" {
		units = "metric"
	}
	return &WeatherClient{
		base:    newBase("openweather", opts),
		apiKey:  apiKey,
		units:   units,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Configured 是否已配置密钥
func (c *WeatherClient) Configured() bool {
	return c.apiKey != ""
}

// Current 查询当前天气
func (c *WeatherClient) Current(ctx context.Context, q WeatherQuery) (*Weather, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	if !q.valid() {
		return nil, ErrInvalidLocation
	}

	params := url.Values{}
	params.Set("appid", c.apiKey)
	params.Set("units", c.units)
	var cacheKey string
	if city := strings.TrimSpace(q.City); city != "" {
		params.Set("q", city)
		cacheKey = "city:" + strings.ToLower(city)
	} else {
		lat := strconv.FormatFloat(*q.Lat, 'f', 2, 64)
		lon := strconv.FormatFloat(*q.Lon, 'f', 2, 64)
		params.Set("lat", lat)
		params.Set("lon", lon)
		cacheKey = "coord:" + lat + "," + lon
	}

	body, err := c.fetch(ctx, cacheKey, weatherCacheTTL, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/weather?"+params.Encode(), nil)
	})
	if err != nil {
		return nil, err
	}

	var resp struct {
		Name    string `json:"name"`
		Weather []struct {
			Main        string `json:"main"`
			Description string `json:"description"`
			Icon        string `json:"icon"`
		} `json:"weather"`
		Main struct {
			Temp      float64 `json:"temp"`
			FeelsLike float64 `json:"feels_like"`
			Humidity  int     `json:"humidity"`
		} `json:"main"`
		Wind struct {
			Speed float64 `json:"speed"`
		} `json:"wind"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: openweather: decode response: %v", ErrUpstream, err)
	}

	w := &Weather{
		Location:    resp.Name,
		Temperature: resp.Main.Temp,
		FeelsLike:   resp.Main.FeelsLike,
		Humidity:    resp.Main.Humidity,
		WindSpeed:   resp.Wind.Speed,
		Units:       c.units,
	}
	if len(resp.Weather) > 0 {
		w.Condition = resp.Weather[0].Main
		w.Description = resp.Weather[0].Description
		w.Icon = resp.Weather[0].Icon
	}
	return w, nil
}
