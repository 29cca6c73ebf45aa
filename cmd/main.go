package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BinLe1988/mood-tracker/api"
	"github.com/BinLe1988/mood-tracker/api/middleware"
	"github.com/BinLe1988/mood-tracker/configs"
	"github.com/BinLe1988/mood-tracker/database"
	"github.com/BinLe1988/mood-tracker/pkg/cache"
	"github.com/BinLe1988/mood-tracker/pkg/external"
	"github.com/BinLe1988/mood-tracker/pkg/logger"
	"github.com/BinLe1988/mood-tracker/pkg/mood"
	"github.com/BinLe1988/mood-tracker/pkg/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	// 加载配置
	var (
		cfg *configs.Config
		err error
	)
	if *configPath != "" {
		cfg, err = configs.LoadFile(*configPath)
	} else {
		cfg, err = configs.Load()
	}
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLog, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer appLog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 初始化JWT
	utils.InitJWT(cfg)

	// 初始化数据库连接
	db, err := database.Initialize(cfg.Database)
	if err != nil {
		appLog.Fatal("Failed to initialize database", "error", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			appLog.Warn("Failed to close database", "error", err)
		}
	}()

	loc, err := cfg.Location()
	if err != nil {
		appLog.Fatal("Invalid timezone", "error", err)
	}

	// 第三方接口缓存，配置了Redis时优先使用
	var responseCache cache.Cache
	if cfg.Redis.Addr != "" {
		client, err := cache.Dial(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			appLog.Fatal("Failed to connect to redis", "error", err)
		}
		defer client.Close()
		responseCache = cache.NewRedisCache(client, "mood", cfg.Cache.TTL)
		appLog.Info("Using redis cache", "addr", cfg.Redis.Addr)
	} else {
		mem := cache.NewMemoryCache(cfg.Cache.MaxEntries, cfg.Cache.TTL)
		defer mem.Close()
		monitor := cache.NewMonitor(mem, cache.MonitorConfig{Interval: cfg.Cache.MonitorInterval}, appLog)
		monitor.Start()
		defer monitor.Stop()
		responseCache = mem
	}

	opts := external.Options{
		Timeout:  cfg.APIs.Timeout,
		Cache:    responseCache,
		CacheTTL: cfg.Cache.TTL,
		Logger:   appLog,
	}
	spotify := external.NewSpotifyClient(external.SpotifyConfig{
		ClientID:     cfg.APIs.Spotify.ClientID,
		ClientSecret: cfg.APIs.Spotify.ClientSecret,
	}, opts)
	tmdb := external.NewTMDBClient(cfg.APIs.TMDB.APIKey, opts)
	weather := external.NewWeatherClient(cfg.APIs.OpenWeather.APIKey, cfg.APIs.OpenWeather.Units, opts)
	sentiment := external.NewSentimentClient(cfg.APIs.HuggingFace.APIKey, cfg.APIs.HuggingFace.Model, opts)

	for name, ok := range map[string]bool{
		"spotify":     spotify.Configured(),
		"tmdb":        tmdb.Configured(),
		"openweather": weather.Configured(),
		"huggingface": sentiment.Configured(),
	} {
		if !ok {
			appLog.Warn("Provider not configured, related endpoints will return 503", "provider", name)
		}
	}

	limiter := middleware.NewRateLimiter(cfg.Server.RateLimit.Requests, cfg.Server.RateLimit.Window)
	defer limiter.Stop()

	// 创建Gin实例
	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery())

	// 设置路由
	if err := api.SetupRouter(router, api.Dependencies{
		Users:          database.NewUserStore(db),
		Moods:          database.NewMoodStore(db),
		Aggregator:     mood.NewAggregator(loc),
		Music:          spotify,
		Movies:         tmdb,
		Weather:        weather,
		Classifier:     sentiment,
		Logger:         appLog,
		RateLimiter:    limiter,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		LookbackHours:  cfg.Mood.LookbackHours,
	}); err != nil {
		appLog.Fatal("Failed to set up router", "error", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 启动服务器
	go func() {
		appLog.Info("Server starting", "port", cfg.Server.Port, "timezone", loc.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Fatal("Failed to start server", "error", err)
		}
	}()

	<-ctx.Done()
	appLog.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error("Server forced to shutdown", "error", err)
	}
}
