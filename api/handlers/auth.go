package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/BinLe1988/mood-tracker/models"
	"github.com/BinLe1988/mood-tracker/pkg/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandler 用户认证与资料
type AuthHandler struct {
	users UserRepository
}

func NewAuthHandler(users UserRepository) *AuthHandler {
	return &AuthHandler{users: users}
}

// Login 用户登录
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.CredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.FindByEmail(c.Request.Context(), strings.ToLower(req.Email))
	if err != nil {
		if isNotFound(err) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		internalError(c, err, "Database error")
		return
	}

	// 验证密码
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	// 更新最后登录时间
	now := time.Now()
	user.LastLogin = &now
	if err := h.users.Save(c.Request.Context(), user); err != nil {
		_ = c.Error(err)
	}

	token, err := utils.GenerateToken(user.ID)
	if err != nil {
		internalError(c, err, "Failed to generate token")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  user.ToResponse(),
	})
}

// Register 用户注册
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	email := strings.ToLower(req.Email)

	// 检查用户名和邮箱是否已存在
	exists, err := h.users.Exists(c.Request.Context(), req.Username, email, 0)
	if err != nil {
		internalError(c, err, "Database error")
		return
	}
	if exists {
		c.JSON(http.StatusConflict, gin.H{"error": "Username or email already exists"})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		internalError(c, err, "Failed to hash password")
		return
	}

	user := models.User{
		Username: req.Username,
		Email:    email,
		Password: string(hashedPassword),
		JoinDate: time.Now(),
	}
	if err := h.users.Create(c.Request.Context(), &user); err != nil {
		internalError(c, err, "Failed to create user")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user":    user.ToResponse(),
	})
}

// Logout 用户登出，令牌由前端清除
func (h *AuthHandler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}

// GetCurrentUser 获取当前用户信息
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	user, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	userObj := user.(*models.User)
	c.JSON(http.StatusOK, gin.H{
		"user": userObj.ToResponse(),
	})
}

// UpdateUserProfile 更新用户资料
func (h *AuthHandler) UpdateUserProfile(c *gin.Context) {
	userID := currentUserID(c)

	var req models.ProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 检查用户名是否已存在
	if req.Username != "" {
		taken, err := h.users.Exists(c.Request.Context(), req.Username, "", userID)
		if err != nil {
			internalError(c, err, "Database error")
			return
		}
		if taken {
			c.JSON(http.StatusConflict, gin.H{"error": "Username already exists"})
			return
		}
	}

	user, err := h.users.FindByID(c.Request.Context(), userID)
	if err != nil {
		internalError(c, err, "Failed to find user")
		return
	}

	if req.Username != "" {
		user.Username = req.Username
	}
	if req.City != nil {
		user.City = strings.TrimSpace(*req.City)
	}

	if err := h.users.Save(c.Request.Context(), user); err != nil {
		internalError(c, err, "Failed to update profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"user":    user.ToResponse(),
	})
}
