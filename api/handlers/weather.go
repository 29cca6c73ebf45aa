package handlers

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/BinLe1988/mood-tracker/models"
	"github.com/BinLe1988/mood-tracker/pkg/external"

	"github.com/gin-gonic/gin"
)

// WeatherHandler 当前天气
type WeatherHandler struct {
	weather WeatherProvider
}

func NewWeatherHandler(weather WeatherProvider) *WeatherHandler {
	return &WeatherHandler{weather: weather}
}

// GetWeather 按城市或经纬度查询天气，未指定时使用用户资料中的城市
func (h *WeatherHandler) GetWeather(c *gin.Context) {
	q := external.WeatherQuery{City: strings.TrimSpace(c.Query("city"))}

	latRaw, lonRaw := c.Query("lat"), c.Query("lon")
	if q.City == "" && (latRaw != "" || lonRaw != "") {
		lat, err := strconv.ParseFloat(latRaw, 64)
		if err != nil || math.IsNaN(lat) || lat < -90 || lat > 90 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid lat"})
			return
		}
		lon, err := strconv.ParseFloat(lonRaw, 64)
		if err != nil || math.IsNaN(lon) || lon < -180 || lon > 180 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid lon"})
			return
		}
		q.Lat, q.Lon = &lat, &lon
	}

	if q.City == "" && q.Lat == nil {
		if u, ok := c.Get("user"); ok {
			if user, ok := u.(*models.User); ok {
				q.City = user.City
			}
		}
	}

	w, err := h.weather.Current(c.Request.Context(), q)
	if err != nil {
		externalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"weather": w,
	})
}
