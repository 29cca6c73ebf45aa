package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/BinLe1988/mood-tracker/database"
	"github.com/BinLe1988/mood-tracker/models"
	"github.com/BinLe1988/mood-tracker/pkg/utils"

	"github.com/gin-gonic/gin"
)

// UserFinder 按ID查找用户
type UserFinder interface {
	FindByID(ctx context.Context, id uint) (*models.User, error)
}

// Auth 验证JWT令牌中间件
func Auth(users UserFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")

		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}"})
			c.Abort()
			return
		}

		claims, err := utils.ParseToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		user, err := users.FindByID(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			} else {
				_ = c.Error(err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user"})
			}
			c.Abort()
			return
		}

		// 将用户ID和用户信息存储在上下文中
		c.Set("userID", claims.UserID)
		c.Set("user", user)

		c.Next()
	}
}
