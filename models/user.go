package models

import (
	"time"

	"gorm.io/gorm"
)

// User 用户模型
type User struct {
	gorm.Model
	Username  string     `gorm:"size:50;not null;unique" json:"username"`
	Email     string     `gorm:"size:100;not null;unique" json:"email"`
	Password  string     `gorm:"size:255;not null" json:"-"`
	City      string     `gorm:"size:100" json:"city"` // 天气推荐的默认城市
	JoinDate  time.Time  `json:"joinDate"`
	LastLogin *time.Time `json:"lastLogin"`
}

// CredentialRequest 用户登录请求
type CredentialRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// RegistrationRequest 用户注册请求
type RegistrationRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// ProfileUpdateRequest 更新用户资料
type ProfileUpdateRequest struct {
	Username string  `json:"username" binding:"omitempty,min=3,max=50"`
	City     *string `json:"city" binding:"omitempty,max=100"`
}

// UserResponse 用户响应
type UserResponse struct {
	ID        uint       `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	City      string     `json:"city"`
	JoinDate  time.Time  `json:"joinDate"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
}

// ToResponse 转换为响应
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		City:      u.City,
		JoinDate:  u.JoinDate,
		LastLogin: u.LastLogin,
	}
}
