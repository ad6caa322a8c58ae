// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Environment string `mapstructure:"environment"`
	HTTPAddr    string `mapstructure:"http_addr"`

	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Stylist   StylistConfig   `mapstructure:"stylist"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Credits   CreditsConfig   `mapstructure:"credits"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // postgres or sqlite
	DSN    string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type AuthConfig struct {
	JWTSecret       string        `mapstructure:"jwt_secret"`
	TokenTTL        time.Duration `mapstructure:"token_ttl"`
	OTPTTL          time.Duration `mapstructure:"otp_ttl"`
	OTPMaxAttempts  int           `mapstructure:"otp_max_attempts"`
	OTPHourlyQuota  int           `mapstructure:"otp_hourly_quota"`
	Argon2Memory    uint32        `mapstructure:"argon2_memory"`
	Argon2Time      uint32        `mapstructure:"argon2_time"`
	Argon2Threads   uint8         `mapstructure:"argon2_threads"`
	Argon2KeyLength uint32        `mapstructure:"argon2_key_length"`
}

type StylistConfig struct {
	APIKey        string        `mapstructure:"api_key"`
	Model         string        `mapstructure:"model"`
	RequestLimit  time.Duration `mapstructure:"request_limit"`
	MaxImageBytes int           `mapstructure:"max_image_bytes"`
}

type StorageConfig struct {
	Bucket          string        `mapstructure:"bucket"`
	Region          string        `mapstructure:"region"`
	AccessKeyID     string        `mapstructure:"access_key_id"`
	SecretAccessKey string        `mapstructure:"secret_access_key"`
	EndpointURL     string        `mapstructure:"endpoint_url"`
	SignedURLTTL    time.Duration `mapstructure:"signed_url_ttl"`
}

type CreditsConfig struct {
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

type RateLimitConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	UploadLimit   int           `mapstructure:"upload_limit"`
	UploadWindow  time.Duration `mapstructure:"upload_window"`
	OTPLimit      int           `mapstructure:"otp_limit"`
	OTPWindow     time.Duration `mapstructure:"otp_window"`
	FailOpenRedis bool          `mapstructure:"fail_open_redis"`
}

type TracingConfig struct {
	Enabled          bool    `mapstructure:"enabled"`
	ExporterEndpoint string  `mapstructure:"exporter_endpoint"`
	ExporterProtocol string  `mapstructure:"exporter_protocol"`
	SamplingRatio    float64 `mapstructure:"sampling_ratio"`
}

// Load reads configuration from the environment, with an optional .env file
// for local development.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("STYLOREN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.Environment == "production" && cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("auth.jwt_secret is required in production")
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("http_addr", ":8080")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "file:styloren.db?cache=shared")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.jwt_secret", "dev-secret-do-not-use")
	v.SetDefault("auth.token_ttl", 7*24*time.Hour)
	v.SetDefault("auth.otp_ttl", 10*time.Minute)
	v.SetDefault("auth.otp_max_attempts", 5)
	v.SetDefault("auth.otp_hourly_quota", 3)
	v.SetDefault("auth.argon2_memory", 64*1024)
	v.SetDefault("auth.argon2_time", 3)
	v.SetDefault("auth.argon2_threads", 2)
	v.SetDefault("auth.argon2_key_length", 32)

	v.SetDefault("stylist.model", "gemini-2.5-flash")
	v.SetDefault("stylist.request_limit", 60*time.Second)
	v.SetDefault("stylist.max_image_bytes", 10*1024*1024)

	v.SetDefault("storage.bucket", "scan-images")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.signed_url_ttl", time.Hour)

	v.SetDefault("credits.cache_ttl", 2*time.Minute)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.upload_limit", 25)
	v.SetDefault("rate_limit.upload_window", 60*time.Second)
	v.SetDefault("rate_limit.otp_limit", 3)
	v.SetDefault("rate_limit.otp_window", time.Hour)
	v.SetDefault("rate_limit.fail_open_redis", true)

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.exporter_protocol", "http")
	v.SetDefault("tracing.sampling_ratio", 0.1)
}
