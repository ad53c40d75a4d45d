package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// This function will Load the ENVIORNMENT VARIABLES from .env if GO_ENV variable is not set
func LoadENV() error {
	goEnv := os.Getenv("GO_ENV")

	if goEnv == "" || goEnv == "development" {
		if err := godotenv.Load(); err != nil {
			if os.IsNotExist(err) {
				log.Println("Warning: .env file not found, using system environment variables")
				return nil
			}
			return err
		}
	}

	return nil
}

// Config holds every setting the API needs at runtime
type Config struct {
	Env        string           `mapstructure:"go_env"`
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"db"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Spaces     SpacesConfig     `mapstructure:"spaces"`
	Log        LogConfig        `mapstructure:"log"`
	Comparison ComparisonConfig `mapstructure:"comparison"`
	Cron       CronConfig       `mapstructure:"cron"`
}

// ServerConfig HTTP server settings
type ServerConfig struct {
	Port              int           `mapstructure:"port"`
	AllowedOrigins    string        `mapstructure:"allowed_origins"`
	RateLimitRequests int           `mapstructure:"rate_limit_requests"`
	RateLimitWindow   time.Duration `mapstructure:"rate_limit_window"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
	BodyLimitMB       int           `mapstructure:"body_limit_mb"`
}

// DatabaseConfig PostgreSQL settings
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	User            string        `mapstructure:"user_name"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN builds the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode,
	)
}

// RedisConfig cache settings. An empty URL disables Redis-backed features.
type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	NameCacheTTL time.Duration `mapstructure:"name_cache_ttl"`
}

// AuthConfig JWT settings
type AuthConfig struct {
	JWTSecret     string        `mapstructure:"jwt_secret"`
	JWTIssuer     string        `mapstructure:"jwt_issuer"`
	AccessExpiry  time.Duration `mapstructure:"access_expiry"`
	RefreshExpiry time.Duration `mapstructure:"refresh_expiry"`
}

// SpacesConfig S3-compatible object storage settings (DigitalOcean Spaces)
type SpacesConfig struct {
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	CDNURL    string `mapstructure:"cdn_endpoint"`
}

// Enabled reports whether enough settings exist to talk to the bucket
func (c *SpacesConfig) Enabled() bool {
	return c.Bucket != "" && c.Region != "" && c.AccessKey != "" && c.SecretKey != ""
}

// LogConfig zap settings
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ComparisonConfig selects the comparison field set and bounds catalog lookups
type ComparisonConfig struct {
	FieldSet     string        `mapstructure:"field_set"`
	StoreTimeout time.Duration `mapstructure:"store_timeout"`
}

// CronConfig background job settings
type CronConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	OrphanGraceTime time.Duration `mapstructure:"orphan_grace_time"`
}

// IsProduction reports whether GO_ENV is production
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Get reads the configuration from the environment.
// Precedence: environment variables > defaults.
// Keys map to variables by upper-casing and replacing "." with "_", e.g. db.host -> DB_HOST.
func Get() (*Config, error) {
	v := viper.New()

	v.SetDefault("go_env", "development")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", "http://localhost:4200,http://localhost:4000")
	v.SetDefault("server.rate_limit_requests", 100)
	v.SetDefault("server.rate_limit_window", time.Minute)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.request_timeout", 20*time.Second)
	v.SetDefault("server.body_limit_mb", 20)

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.user_name", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.name", "elpensum")
	v.SetDefault("db.ssl_mode", "disable")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", time.Hour)

	v.SetDefault("redis.url", "")
	v.SetDefault("redis.name_cache_ttl", 10*time.Minute)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.jwt_issuer", "el-pensum-api")
	v.SetDefault("auth.access_expiry", 24*time.Hour)
	v.SetDefault("auth.refresh_expiry", 7*24*time.Hour)

	v.SetDefault("spaces.access_key", "")
	v.SetDefault("spaces.secret_key", "")
	v.SetDefault("spaces.bucket", "")
	v.SetDefault("spaces.region", "")
	v.SetDefault("spaces.endpoint", "")
	v.SetDefault("spaces.cdn_endpoint", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("comparison.field_set", DefaultFieldSet)
	v.SetDefault("comparison.store_timeout", 5*time.Second)

	v.SetDefault("cron.enabled", true)
	v.SetDefault("cron.orphan_grace_time", time.Hour)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if cfg.Spaces.Endpoint == "" && cfg.Spaces.Region != "" {
		cfg.Spaces.Endpoint = fmt.Sprintf("%s.digitaloceanspaces.com", cfg.Spaces.Region)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the settings the server cannot start without
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("invalid configuration: AUTH_JWT_SECRET must be set")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("invalid configuration: AUTH_JWT_SECRET must be at least 16 characters")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid configuration: SERVER_PORT must be between 1 and 65535")
	}
	if c.Comparison.StoreTimeout <= 0 {
		return fmt.Errorf("invalid configuration: COMPARISON_STORE_TIMEOUT must be positive")
	}
	if _, err := LoadFieldSet(c.Comparison.FieldSet); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
