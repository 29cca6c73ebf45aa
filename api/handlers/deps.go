package handlers

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/BinLe1988/mood-tracker/database"
	"github.com/BinLe1988/mood-tracker/models"
	"github.com/BinLe1988/mood-tracker/pkg/external"

	"github.com/gin-gonic/gin"
)

// MoodRepository 心情记录存储
type MoodRepository interface {
	Create(ctx context.Context, entry *models.MoodEntry) error
	ListSince(ctx context.Context, userID uint, since time.Time) ([]models.MoodEntry, error)
	List(ctx context.Context, userID uint, limit, offset int) ([]models.MoodEntry, int64, error)
	Latest(ctx context.Context, userID uint) (*models.MoodEntry, error)
	Delete(ctx context.Context, userID, id uint) error
}

// UserRepository 用户存储
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Exists(ctx context.Context, username, email string, excludeID uint) (bool, error)
	Save(ctx context.Context, user *models.User) error
}

type MusicProvider interface {
	Playlists(ctx context.Context, query string, limit int) ([]external.Playlist, error)
}

type MovieProvider interface {
	MoviesByGenre(ctx context.Context, genreID int, limit int) ([]external.Movie, error)
}

type WeatherProvider interface {
	Current(ctx context.Context, q external.WeatherQuery) (*external.Weather, error)
}

type EmotionClassifier interface {
	Classify(ctx context.Context, text string) (*external.EmotionResult, error)
}

// currentUserID 从上下文中取出认证中间件写入的用户ID
func currentUserID(c *gin.Context) uint {
	v, ok := c.Get("userID")
	if !ok {
		return 0
	}
	id, _ := v.(uint)
	return id
}

// internalError 记录错误并返回500
func internalError(c *gin.Context, err error, msg string) {
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}

// externalError 将第三方调用错误映射为HTTP状态码
func externalError(c *gin.Context, err error) {
	_ = c.Error(err)
	switch {
	case isTimeout(err):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "Upstream service timed out"})
	case errors.Is(err, external.ErrNotConfigured):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Service not configured"})
	case errors.Is(err, external.ErrInvalidLocation), errors.Is(err, external.ErrEmptyText):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": "Upstream service unavailable"})
	}
}

// isTimeout 上下文超时或http.Client超时
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isNotFound(err error) bool {
	return errors.Is(err, database.ErrNotFound)
}

// HealthCheck 健康检查
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
