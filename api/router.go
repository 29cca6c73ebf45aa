package api

import (
	"time"

	"github.com/BinLe1988/mood-tracker/api/handlers"
	"github.com/BinLe1988/mood-tracker/api/middleware"
	"github.com/BinLe1988/mood-tracker/models"
	"github.com/BinLe1988/mood-tracker/pkg/logger"
	"github.com/BinLe1988/mood-tracker/pkg/mood"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies 路由依赖
type Dependencies struct {
	Users          handlers.UserRepository
	Moods          handlers.MoodRepository
	Aggregator     *mood.Aggregator
	Music          handlers.MusicProvider
	Movies         handlers.MovieProvider
	Weather        handlers.WeatherProvider
	Classifier     handlers.EmotionClassifier
	Logger         *logger.Logger
	RateLimiter    *middleware.RateLimiter
	AllowedOrigins []string
	LookbackHours  int
}

// SetupRouter 设置API路由
func SetupRouter(router *gin.Engine, deps Dependencies) error {
	if err := models.RegisterValidators(); err != nil {
		return err
	}

	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(deps.Logger))
	router.Use(cors.New(corsConfig(deps.AllowedOrigins)))

	router.GET("/healthz", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authHandler := handlers.NewAuthHandler(deps.Users)
	moodHandler := handlers.NewMoodHandler(deps.Moods, deps.Aggregator, deps.Classifier, deps.LookbackHours)
	recHandler := handlers.NewRecommendationHandler(deps.Moods, deps.Music, deps.Movies)
	weatherHandler := handlers.NewWeatherHandler(deps.Weather)

	// 公共API
	public := router.Group("/api")
	if deps.RateLimiter != nil {
		public.Use(middleware.RateLimit(deps.RateLimiter))
	}
	{
		// 认证相关
		public.POST("/auth/login", authHandler.Login)
		public.POST("/auth/register", authHandler.Register)
	}

	// 需要认证的API
	// 认证前按IP限流，认证后按用户限流
	authorized := router.Group("/api")
	if deps.RateLimiter != nil {
		authorized.Use(middleware.RateLimit(deps.RateLimiter))
	}
	authorized.Use(middleware.Auth(deps.Users))
	if deps.RateLimiter != nil {
		authorized.Use(middleware.RateLimit(deps.RateLimiter))
	}
	{
		// 用户相关
		authorized.GET("/user", authHandler.GetCurrentUser)
		authorized.PUT("/user/profile", authHandler.UpdateUserProfile)
		authorized.POST("/auth/logout", authHandler.Logout)

		// 心情相关
		authorized.POST("/moods", moodHandler.CreateMood)
		authorized.GET("/moods", moodHandler.ListMoods)
		authorized.GET("/moods/recent", moodHandler.RecentMoods)
		authorized.GET("/moods/latest", moodHandler.LatestMood)
		authorized.GET("/moods/trend", moodHandler.Trend)
		authorized.GET("/moods/stats", moodHandler.Stats)
		authorized.POST("/moods/analyze", moodHandler.AnalyzeText)
		authorized.DELETE("/moods/:id", moodHandler.DeleteMood)

		// 推荐相关
		authorized.GET("/recommendations", recHandler.GetRecommendations)
		authorized.GET("/recommendations/music", recHandler.GetMusic)
		authorized.GET("/recommendations/movies", recHandler.GetMovies)

		// 天气
		authorized.GET("/weather", weatherHandler.GetWeather)
	}
	return nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
