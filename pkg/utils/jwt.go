package utils

import (
	"errors"
	"time"

	"github.com/BinLe1988/mood-tracker/configs"

	"github.com/golang-jwt/jwt/v4"
)

const issuer = "mood-tracker"

// 全局JWT密钥
var jwtSecret string
var jwtExpiration int

// InitJWT 初始化JWT配置
func InitJWT(cfg *configs.Config) {
	jwtSecret = cfg.JWT.Secret
	jwtExpiration = cfg.JWT.ExpiresIn
	if jwtExpiration <= 0 {
		jwtExpiration = 24
	}
}

// Claims JWT声明
type Claims struct {
	UserID uint `json:"user_id"`
	jwt.RegisteredClaims
}

// GenerateToken 生成JWT令牌
func GenerateToken(userID uint) (string, error) {
	if jwtSecret == "" {
		return "", errors.New("jwt secret not initialized")
	}

	nowTime := time.Now()
	expireTime := nowTime.Add(time.Duration(jwtExpiration) * time.Hour)

	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expireTime),
			IssuedAt:  jwt.NewNumericDate(nowTime),
			Issuer:    issuer,
		},
	}

	tokenClaims := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tokenClaims.SignedString([]byte(jwtSecret))
}

// ParseToken 解析JWT令牌
func ParseToken(token string) (*Claims, error) {
	tokenClaims, err := jwt.ParseWithClaims(token, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := tokenClaims.Claims.(*Claims); ok && tokenClaims.Valid {
		if claims.Issuer != issuer {
			return nil, errors.New("invalid token issuer")
		}
		return claims, nil
	}

	return nil, errors.New("invalid token")
}
