package configs

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
)

type Server struct {
	Port           string    `mapstructure:"port"`
	Mode           string    `mapstructure:"mode"` // debug / release
	AllowedOrigins []string  `mapstructure:"allowed_origins"`
	RateLimit      RateLimit `mapstructure:"rate_limit"`
}

type RateLimit struct {
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

type Database struct {
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	Path     string `mapstructure:"path"` // sqlite文件路径
}

type JWT struct {
	Secret    string `mapstructure:"secret"`
	ExpiresIn int    `mapstructure:"expires_in"` // 过期时间（小时）
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type Cache struct {
	TTL             time.Duration `mapstructure:"ttl"`
	MaxEntries      int           `mapstructure:"max_entries"`
	MonitorInterval time.Duration `mapstructure:"monitor_interval"`
}

type Mood struct {
	Timezone      string `mapstructure:"timezone"`
	LookbackHours int    `mapstructure:"lookback_hours"`
}

type APIs struct {
	Timeout time.Duration `mapstructure:"timeout"`

	Spotify struct {
		ClientID     string `mapstructure:"client_id"`
		ClientSecret string `mapstructure:"client_secret"`
	} `mapstructure:"spotify"`

	TMDB struct {
		APIKey string `mapstructure:"api_key"`
	} `mapstructure:"tmdb"`

	OpenWeather struct {
		APIKey string `mapstructure:"api_key"`
		Units  string `mapstructure:"units"`
	} `mapstructure:"openweather"`

	HuggingFace struct {
		APIKey string `mapstructure:"api_key"`
		Model  string `mapstructure:"model"`
	} `mapstructure:"huggingface"`
}

type Config struct {
	Server   Server   `mapstructure:"server"`
	Database Database `mapstructure:"database"`
	JWT      JWT      `mapstructure:"jwt"`
	Redis    Redis    `mapstructure:"redis"`
	Cache    Cache    `mapstructure:"cache"`
	Mood     Mood     `mapstructure:"mood"`
	APIs     APIs     `mapstructure:"apis"`
	LogMode  string   `mapstructure:"log_mode"`
}

// Load 加载配置，配置文件不存在时使用默认值和环境变量
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	return load(v)
}

// LoadFile 从指定文件加载配置
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	v.SetEnvPrefix("MOOD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.rate_limit.requests", 60)
	v.SetDefault("server.rate_limit.window", time.Minute)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "mood.db")

	v.SetDefault("jwt.expires_in", 24)

	v.SetDefault("cache.ttl", 30*time.Minute)
	v.SetDefault("cache.max_entries", 1000)
	v.SetDefault("cache.monitor_interval", 5*time.Minute)

	v.SetDefault("mood.timezone", "UTC")
	v.SetDefault("mood.lookback_hours", 168)

	v.SetDefault("apis.timeout", 10*time.Second)
	v.SetDefault("apis.openweather.units", "metric")
	v.SetDefault("apis.huggingface.model", "j-hartmann/emotion-english-distilroberta-base")

	v.SetDefault("log_mode", "production")

	// AutomaticEnv只对已知键生效，密钥类配置需要显式绑定
	for _, key := range []string{
		"jwt.secret",
		"database.host", "database.port", "database.user", "database.password", "database.dbname",
		"redis.addr", "redis.password", "redis.db",
		"apis.spotify.client_id", "apis.spotify.client_secret",
		"apis.tmdb.api_key", "apis.openweather.api_key", "apis.huggingface.api_key",
	} {
		_ = v.BindEnv(key)
	}
}

// Validate 校验配置
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("jwt.secret is required")
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("unsupported server mode: %s", c.Server.Mode)
	}
	switch c.Database.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid mood.timezone: %w", err)
	}
	if c.Mood.LookbackHours <= 0 {
		return errors.New("mood.lookback_hours must be positive")
	}
	return nil
}

// Location 返回心情聚合使用的参考时区
func (c *Config) Location() (*time.Location, error) {
	if c.Mood.Timezone == "" || strings.EqualFold(c.Mood.Timezone, "UTC") {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Mood.Timezone)
}
