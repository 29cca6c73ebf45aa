package handlers

import (
	"net/http"
	"strconv"

	"github.com/BinLe1988/mood-tracker/pkg/mood"

	"github.com/gin-gonic/gin"
)

const defaultRecommendationLimit = 10

// 推荐依据的心情来源
const (
	sourceQuery   = "query"
	sourceLatest  = "latest"
	sourceDefault = "default"
)

// RecommendationHandler 按心情推荐音乐、电影和活动
type RecommendationHandler struct {
	moods  MoodRepository
	music  MusicProvider
	movies MovieProvider
}

func NewRecommendationHandler(moods MoodRepository, music MusicProvider, movies MovieProvider) *RecommendationHandler {
	return &RecommendationHandler{moods: moods, music: music, movies: movies}
}

// resolveProfile 优先使用查询参数，其次最近一次心情，都没有时用neutral。
// 无法识别的心情同样返回neutral配置。
func (h *RecommendationHandler) resolveProfile(c *gin.Context) (mood.Profile, string, bool) {
	if label := c.Query("mood"); label != "" {
		if _, ok := mood.ParseMood(label); !ok {
			return mood.SelectProfile(label), sourceDefault, true
		}
		return mood.SelectProfile(label), sourceQuery, true
	}

	latest, err := h.moods.Latest(c.Request.Context(), currentUserID(c))
	if err != nil {
		if isNotFound(err) {
			return mood.SelectProfile(mood.Neutral.String()), sourceDefault, true
		}
		internalError(c, err, "Failed to load mood")
		return mood.Profile{}, "", false
	}
	return mood.SelectProfile(latest.Mood), sourceLatest, true
}

func recommendationLimit(c *gin.Context) (int, bool) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultRecommendationLimit)))
	if err != nil || limit <= 0 || limit > 50 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 50"})
		return 0, false
	}
	return limit, true
}

// GetRecommendations 获取心情推荐配置
func (h *RecommendationHandler) GetRecommendations(c *gin.Context) {
	profile, source, ok := h.resolveProfile(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"profile": profile,
		"source":  source,
	})
}

// GetMusic 获取推荐歌单
func (h *RecommendationHandler) GetMusic(c *gin.Context) {
	profile, source, ok := h.resolveProfile(c)
	if !ok {
		return
	}
	limit, ok := recommendationLimit(c)
	if !ok {
		return
	}

	playlists, err := h.music.Playlists(c.Request.Context(), profile.MusicQuery, limit)
	if err != nil {
		externalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"profile":   profile,
		"source":    source,
		"playlists": playlists,
	})
}

// GetMovies 获取推荐电影
func (h *RecommendationHandler) GetMovies(c *gin.Context) {
	profile, source, ok := h.resolveProfile(c)
	if !ok {
		return
	}
	limit, ok := recommendationLimit(c)
	if !ok {
		return
	}

	movies, err := h.movies.MoviesByGenre(c.Request.Context(), profile.MovieGenreID, limit)
	if err != nil {
		externalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"profile": profile,
		"source":  source,
		"movies":  movies,
	})
}
