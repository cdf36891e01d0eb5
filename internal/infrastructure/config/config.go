package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 應用配置
type Config struct {
	App         AppConfig        `mapstructure:"app"`
	Server      ServerConfig     `mapstructure:"server"`
	OpenRouter  OpenRouterConfig `mapstructure:"openrouter"`
	Cache       CacheConfig      `mapstructure:"cache"`
	Queue       QueueConfig      `mapstructure:"queue"`
	Redis       RedisConfig      `mapstructure:"redis"`
	Database    DatabaseConfig   `mapstructure:"database"`
	RateLimit   RateLimitConfig  `mapstructure:"rate_limit"`
	Image       ImageConfig      `mapstructure:"image"`
	Nutrition   NutritionConfig  `mapstructure:"nutrition"`
	DedupWindow time.Duration    `mapstructure:"dedup_window"`
	LogLevel    string           `mapstructure:"log_level"`
	LogDir      string           `mapstructure:"log_dir"`
	LogMode     string           `mapstructure:"log_mode"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes"`
}

// OpenRouterConfig OpenRouter 配置
type OpenRouterConfig struct {
	APIKey     string        `mapstructure:"api_key"`
	BaseURL    string        `mapstructure:"base_url"`
	Model      string        `mapstructure:"model"`
	MaxTokens  int           `mapstructure:"max_tokens"`
	Timeout    time.Duration `mapstructure:"timeout"`
	RetryCount int           `mapstructure:"retry_count"`
}

// CacheConfig 緩存配置；Backend 為 memory 或 redis
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Backend         string        `mapstructure:"backend"`
	MaxSize         int           `mapstructure:"max_size"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// QueueConfig AI 請求隊列：同時呼叫上游的 worker 數與等待上限
type QueueConfig struct {
	MaxSize int `mapstructure:"max_size"`
	Workers int `mapstructure:"workers"`
}

// RedisConfig Redis 連線設定
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// DatabaseConfig 資料庫設定；Driver 為 postgres 或 sqlite
type DatabaseConfig struct {
	Driver       string `mapstructure:"driver"`
	DSN          string `mapstructure:"dsn"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	AutoMigrate  bool   `mapstructure:"auto_migrate"`
}

// RateLimitConfig 速率限制配置（每個 client IP）
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// ImageConfig 圖片配置
type ImageConfig struct {
	MaxSizeBytes int64    `mapstructure:"max_size_bytes"`
	MaxDimension int      `mapstructure:"max_dimension"`
	// AllowedHosts 允許下載圖片的主機，空白時不接受 URL
	AllowedHosts []string `mapstructure:"allowed_hosts"`
}

// NutritionConfig 營養分析設定
type NutritionConfig struct {
	// NarrativeFallback 沒有「부족한 영양소」列時改掃描建議句
	NarrativeFallback bool `mapstructure:"narrative_fallback"`
	// RecommendedIntake 覆寫建議攝取量基準，鍵為營養素名稱
	RecommendedIntake map[string]float64 `mapstructure:"recommended_intake"`
}

// LoadConfig 載入設定：.env（可選）→ 環境變數 → 預設值
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindings := map[string]string{
		"openrouter.api_key":  "OPENROUTER_API_KEY",
		"openrouter.model":    "OPENROUTER_MODEL",
		"openrouter.base_url": "OPENROUTER_BASE_URL",
		"cache.enabled":       "CACHE_ENABLED",
		"cache.backend":       "CACHE_BACKEND",
		"redis.addr":          "REDIS_ADDR",
		"redis.password":      "REDIS_PASSWORD",
		"database.driver":     "DATABASE_DRIVER",
		"database.dsn":        "DATABASE_URL",
		"rate_limit.enabled":  "RATE_LIMIT_ENABLED",
		"rate_limit.requests": "RATE_LIMIT_REQUESTS",
		"rate_limit.window":   "RATE_LIMIT_WINDOW",
		"dedup_window":        "DEDUP_WINDOW",
		"log_level":           "LOG_LEVEL",
		"log_mode":            "LOG_MODE",
		"server.port":         "PORT",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, "APP_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("failed to bind env %s: %w", env, err)
		}
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// MaskAPIKey 遮罩 API Key，只顯示前後各 4 個字符
func MaskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// setDefaults 設定預設值
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")
	v.SetDefault("app.debug", true)
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.name", "aiharu-api")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "130s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.request_timeout", "120s")
	v.SetDefault("server.max_body_bytes", 12<<20)

	v.SetDefault("openrouter.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("openrouter.model", "openai/gpt-4o-mini")
	v.SetDefault("openrouter.max_tokens", 2048)
	v.SetDefault("openrouter.timeout", "90s")
	v.SetDefault("openrouter.retry_count", 2)

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.max_size", 500)
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.cleanup_interval", "10m")

	v.SetDefault("queue.max_size", 50)
	v.SetDefault("queue.workers", 4)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "aiharu.db")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 10)
	v.SetDefault("rate_limit.window", "1m")

	v.SetDefault("image.max_size_bytes", 10*1024*1024)
	v.SetDefault("image.max_dimension", 1600)
	v.SetDefault("image.allowed_hosts", []string{})

	v.SetDefault("nutrition.narrative_fallback", false)

	v.SetDefault("dedup_window", "2s")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_dir", "logs")
}

// validateConfig 驗證設定
func validateConfig(cfg *Config) error {
	if cfg.Server.Port <= 0 {
		return fmt.Errorf("server port is required")
	}

	switch cfg.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
	if cfg.Database.DSN == "" {
		return fmt.Errorf("database dsn is required")
	}

	if cfg.Cache.Enabled {
		switch cfg.Cache.Backend {
		case "memory":
			if cfg.Cache.MaxSize <= 0 {
				return fmt.Errorf("invalid cache max size")
			}
			if cfg.Cache.CleanupInterval <= 0 {
				return fmt.Errorf("invalid cache cleanup interval")
			}
		case "redis":
			if cfg.Redis.Addr == "" {
				return fmt.Errorf("redis addr is required for redis cache")
			}
		default:
			return fmt.Errorf("unsupported cache backend %q", cfg.Cache.Backend)
		}
		if cfg.Cache.TTL <= 0 {
			return fmt.Errorf("invalid cache ttl")
		}
	}

	if cfg.Queue.Workers <= 0 || cfg.Queue.MaxSize <= 0 {
		return fmt.Errorf("invalid queue size")
	}

	if cfg.RateLimit.Enabled && (cfg.RateLimit.Requests <= 0 || cfg.RateLimit.Window <= 0) {
		return fmt.Errorf("invalid rate limit")
	}
	return nil
}
