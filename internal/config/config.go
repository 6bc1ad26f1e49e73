package config

import (
	"fmt"
	"strings"

	"github.com/driftwear-shop/driftwear/internal/logger"

	"github.com/spf13/viper"
)

// Config 应用配置结构
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Queue      QueueConfig      `mapstructure:"queue"`
	CORS       CORSConfig       `mapstructure:"cors"`
	Security   SecurityConfig   `mapstructure:"security"`
	Cart       CartConfig       `mapstructure:"cart"`
	Checkout   CheckoutConfig   `mapstructure:"checkout"`
	Media      MediaConfig      `mapstructure:"media"`
	Newsletter NewsletterConfig `mapstructure:"newsletter"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug / release
}

// LogConfig 日志配置
type LogConfig struct {
	Dir        string `mapstructure:"dir"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// ToLoggerOptions 转换为 logger 配置
func (c LogConfig) ToLoggerOptions() logger.Options {
	return logger.Options{
		Dir:        c.Dir,
		Filename:   c.Filename,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
	}
}

// DatabasePoolConfig 数据库连接池配置
type DatabasePoolConfig struct {
	MaxOpenConns           int `mapstructure:"max_open_conns"`
	MaxIdleConns           int `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSeconds int `mapstructure:"conn_max_lifetime_seconds"`
	ConnMaxIdleTimeSeconds int `mapstructure:"conn_max_idle_time_seconds"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver string             `mapstructure:"driver"` // 数据库驱动（sqlite/postgres）
	DSN    string             `mapstructure:"dsn"`    // 数据库连接串
	Pool   DatabasePoolConfig `mapstructure:"pool"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// QueueConfig 异步队列配置
type QueueConfig struct {
	Enabled     bool           `mapstructure:"enabled"`
	Host        string         `mapstructure:"host"`
	Port        int            `mapstructure:"port"`
	Password    string         `mapstructure:"password"`
	DB          int            `mapstructure:"db"`
	Concurrency int            `mapstructure:"concurrency"`
	Queues      map[string]int `mapstructure:"queues"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	NewsletterRateLimit RateLimitConfig `mapstructure:"newsletter_rate_limit"`
}

// RateLimitConfig 接口限流配置
type RateLimitConfig struct {
	WindowSeconds int `mapstructure:"window_seconds"`
	MaxAttempts   int `mapstructure:"max_attempts"`
}

// CartConfig 购物车与展示配置
type CartConfig struct {
	CurrencyCode   string         `mapstructure:"currency_code"`
	CurrencySymbol string         `mapstructure:"currency_symbol"`
	Discount       DiscountConfig `mapstructure:"discount"`
}

// DiscountConfig 全局折扣配置
type DiscountConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	Percent float64 `mapstructure:"percent"`
	Code    string  `mapstructure:"code"`
}

// CheckoutConfig 结算通道配置（Stripe Checkout Session）
type CheckoutConfig struct {
	SecretKey               string `mapstructure:"secret_key"`
	APIBaseURL              string `mapstructure:"api_base_url"`
	WebhookSecret           string `mapstructure:"webhook_secret"`
	WebhookToleranceSeconds int    `mapstructure:"webhook_tolerance_seconds"`
	SuccessURL              string `mapstructure:"success_url"`
	CancelURL               string `mapstructure:"cancel_url"`
	LockTTLSeconds          int    `mapstructure:"lock_ttl_seconds"`
	ReconcileDelaySeconds   int    `mapstructure:"reconcile_delay_seconds"`
}

// MediaConfig 签名媒体配置（3D 试穿素材）
type MediaConfig struct {
	SigningSecret    string `mapstructure:"signing_secret"`
	URLTTLSeconds    int    `mapstructure:"url_ttl_seconds"`
	JWTSecret        string `mapstructure:"jwt_secret"`
	RequiredRole     string `mapstructure:"required_role"`
	BaseURL          string `mapstructure:"base_url"`
	AssetDir         string `mapstructure:"asset_dir"`
	AllowedAssetType string `mapstructure:"allowed_asset_type"`
}

// NewsletterConfig 邮件订阅投递配置
type NewsletterConfig struct {
	ProviderURL    string `mapstructure:"provider_url"`
	SourceTag      string `mapstructure:"source_tag"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// Load 从 config.yml 加载配置
func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../")   // 如果从 cmd/server 运行
	viper.AddConfigPath("./etc") // etc 文件夹

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("log.dir", "")
	viper.SetDefault("log.filename", "driftwear.log")
	viper.SetDefault("log.max_size_mb", 100)
	viper.SetDefault("log.max_backups", 7)
	viper.SetDefault("log.max_age_days", 30)
	viper.SetDefault("log.compress", true)
	viper.SetDefault("database.driver", "sqlite")
	viper.SetDefault("database.dsn", "./db/driftwear.db")
	viper.SetDefault("database.pool.max_open_conns", 1)
	viper.SetDefault("database.pool.max_idle_conns", 1)
	viper.SetDefault("database.pool.conn_max_lifetime_seconds", 0)
	viper.SetDefault("database.pool.conn_max_idle_time_seconds", 0)
	viper.SetDefault("redis.enabled", true)
	viper.SetDefault("redis.host", "127.0.0.1")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.prefix", "dw")
	viper.SetDefault("queue.enabled", true)
	viper.SetDefault("queue.host", "127.0.0.1")
	viper.SetDefault("queue.port", 6379)
	viper.SetDefault("queue.password", "")
	viper.SetDefault("queue.db", 1)
	viper.SetDefault("queue.concurrency", 10)
	viper.SetDefault("queue.queues", map[string]int{
		"default": 10,
	})
	viper.SetDefault("cors.allowed_origins", []string{"*"})
	viper.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	viper.SetDefault("cors.allowed_headers", []string{
		"Content-Type",
		"Content-Length",
		"Accept-Encoding",
		"Authorization",
		"Cache-Control",
		"X-Requested-With",
		"X-Cart-Token",
	})
	viper.SetDefault("cors.allow_credentials", true)
	viper.SetDefault("cors.max_age", 600)
	viper.SetDefault("security.newsletter_rate_limit.window_seconds", 300)
	viper.SetDefault("security.newsletter_rate_limit.max_attempts", 5)
	viper.SetDefault("cart.currency_code", "USD")
	viper.SetDefault("cart.currency_symbol", "$")
	viper.SetDefault("cart.discount.enabled", false)
	viper.SetDefault("cart.discount.percent", 0)
	viper.SetDefault("cart.discount.code", "")
	viper.SetDefault("checkout.secret_key", "")
	viper.SetDefault("checkout.api_base_url", "https://api.stripe.com")
	viper.SetDefault("checkout.webhook_secret", "")
	viper.SetDefault("checkout.webhook_tolerance_seconds", 300)
	viper.SetDefault("checkout.success_url", "")
	viper.SetDefault("checkout.cancel_url", "")
	viper.SetDefault("checkout.lock_ttl_seconds", 30)
	viper.SetDefault("checkout.reconcile_delay_seconds", 900)
	viper.SetDefault("media.signing_secret", "")
	viper.SetDefault("media.url_ttl_seconds", 300)
	viper.SetDefault("media.jwt_secret", "")
	viper.SetDefault("media.required_role", "tryon")
	viper.SetDefault("media.base_url", "")
	viper.SetDefault("media.asset_dir", "./media")
	viper.SetDefault("media.allowed_asset_type", "glb")
	viper.SetDefault("newsletter.provider_url", "")
	viper.SetDefault("newsletter.source_tag", "storefront")
	viper.SetDefault("newsletter.timeout_seconds", 10)

	// 环境变量支持（server.port -> SERVER_PORT）
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		logger.Warnw("config_file_read_failed",
			"error", err,
			"fallback", "env_or_defaults",
		)
	} else {
		logger.Infow("config_file_loaded", "file", viper.ConfigFileUsed())
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		logger.Errorw("config_unmarshal_failed", "error", err)
		panic(fmt.Errorf("配置解析失败: %w", err))
	}

	return &cfg
}
