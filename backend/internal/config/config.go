package config

import (
	"fmt"
	"os"
	"time"

	"github.com/muhuuh/todo-organisor-sub000/backend/internal/utils"

	"github.com/BurntSushi/toml"
)

// Config carries all runtime settings. Values come from an optional TOML file
// (CONFIG_FILE, ./config.toml by default) with environment variables taking
// precedence over anything the file sets.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Database  DatabaseConfig  `toml:"database"`
	Redis     RedisConfig     `toml:"redis"`
	Auth      AuthConfig      `toml:"auth"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
	Rollover  RolloverConfig  `toml:"rollover"`
}

type ServerConfig struct {
	Host         string        `toml:"host"`
	Port         int           `toml:"port"`
	Environment  string        `toml:"environment"`
	ReadTimeout  time.Duration `toml:"read_timeout"`
	WriteTimeout time.Duration `toml:"write_timeout"`
	IdleTimeout  time.Duration `toml:"idle_timeout"`
}

type DatabaseConfig struct {
	// Driver is "postgres" or "sqlite". sqlite keeps local development and
	// tests self-contained; postgres is the deployment target.
	Driver          string        `toml:"driver"`
	DSN             string        `toml:"dsn"`
	Name            string        `toml:"name"`
	MaxOpenConns    int           `toml:"max_open_conns"`
	MaxIdleConns    int           `toml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `toml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `toml:"conn_max_idle_time"`
}

type RedisConfig struct {
	Host         string        `toml:"host"`
	Port         int           `toml:"port"`
	Password     string        `toml:"password"`
	DB           int           `toml:"db"`
	PoolSize     int           `toml:"pool_size"`
	MinIdleConns int           `toml:"min_idle_conns"`
	MaxRetries   int           `toml:"max_retries"`
	DialTimeout  time.Duration `toml:"dial_timeout"`
	ReadTimeout  time.Duration `toml:"read_timeout"`
	WriteTimeout time.Duration `toml:"write_timeout"`
}

type AuthConfig struct {
	JWTSecret  string        `toml:"jwt_secret"`
	AccessTTL  time.Duration `toml:"access_ttl"`
	RefreshTTL time.Duration `toml:"refresh_ttl"`
}

type RateLimitConfig struct {
	RequestsPerMin int `toml:"requests_per_min"`
	BurstSize      int `toml:"burst_size"`
}

type RolloverConfig struct {
	Enabled bool `toml:"enabled"`
	// Schedule is a cron expression; the default fires at midnight local to
	// Timezone, when Tomorrow's tasks roll into Today.
	Schedule string `toml:"schedule"`
	Timezone string `toml:"timezone"`
}

// LoadConfig builds the configuration from defaults, the optional TOML file,
// then environment overrides, in that order.
func LoadConfig() (*Config, error) {
	cfg := defaultConfig()

	path := utils.GetEnv("CONFIG_FILE", "config.toml")
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if cfg.Database.Driver != "postgres" && cfg.Database.Driver != "sqlite" {
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
	if cfg.IsProduction() && cfg.Auth.JWTSecret == defaultJWTSecret {
		return nil, fmt.Errorf("JWT_SECRET must be set in production")
	}

	return cfg, nil
}

const defaultJWTSecret = "default_secret_change_in_production"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			Environment:  "development",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:          "postgres",
			DSN:             "host=localhost user=postgres password=postgres dbname=organiser port=5432 sslmode=disable",
			Name:            "organiser",
			MaxOpenConns:    25,
			MaxIdleConns:    10,
			ConnMaxLifetime: time.Hour,
			ConnMaxIdleTime: 30 * time.Minute,
		},
		Redis: RedisConfig{
			Host:         "localhost",
			Port:         6379,
			DB:           0,
			PoolSize:     10,
			MinIdleConns: 2,
			MaxRetries:   3,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Auth: AuthConfig{
			JWTSecret:  defaultJWTSecret,
			AccessTTL:  time.Hour,
			RefreshTTL: 7 * 24 * time.Hour,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMin: 120,
			BurstSize:      20,
		},
		Rollover: RolloverConfig{
			Enabled:  true,
			Schedule: "0 0 * * *",
			Timezone: "Local",
		},
	}
}

func applyEnvOverrides(cfg *Config) {
	cfg.Server.Host = utils.GetEnv("SERVER_HOST", cfg.Server.Host)
	cfg.Server.Port = utils.GetEnvAsInt("SERVER_PORT", cfg.Server.Port)
	cfg.Server.Environment = utils.GetEnv("ENVIRONMENT", cfg.Server.Environment)
	cfg.Server.ReadTimeout = utils.GetEnvAsDuration("SERVER_READ_TIMEOUT", cfg.Server.ReadTimeout)
	cfg.Server.WriteTimeout = utils.GetEnvAsDuration("SERVER_WRITE_TIMEOUT", cfg.Server.WriteTimeout)
	cfg.Server.IdleTimeout = utils.GetEnvAsDuration("SERVER_IDLE_TIMEOUT", cfg.Server.IdleTimeout)

	cfg.Database.Driver = utils.GetEnv("DB_DRIVER", cfg.Database.Driver)
	cfg.Database.DSN = utils.GetEnv("DB_DSN", cfg.Database.DSN)
	cfg.Database.Name = utils.GetEnv("DB_NAME", cfg.Database.Name)
	cfg.Database.MaxOpenConns = utils.GetEnvAsInt("DB_MAX_OPEN_CONNS", cfg.Database.MaxOpenConns)
	cfg.Database.MaxIdleConns = utils.GetEnvAsInt("DB_MAX_IDLE_CONNS", cfg.Database.MaxIdleConns)
	cfg.Database.ConnMaxLifetime = utils.GetEnvAsDuration("DB_CONN_MAX_LIFETIME", cfg.Database.ConnMaxLifetime)
	cfg.Database.ConnMaxIdleTime = utils.GetEnvAsDuration("DB_CONN_MAX_IDLE_TIME", cfg.Database.ConnMaxIdleTime)

	cfg.Redis.Host = utils.GetEnv("REDIS_HOST", cfg.Redis.Host)
	cfg.Redis.Port = utils.GetEnvAsInt("REDIS_PORT", cfg.Redis.Port)
	cfg.Redis.Password = utils.GetEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = utils.GetEnvAsInt("REDIS_DB", cfg.Redis.DB)
	cfg.Redis.PoolSize = utils.GetEnvAsInt("REDIS_POOL_SIZE", cfg.Redis.PoolSize)

	cfg.Auth.JWTSecret = utils.GetEnv("JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.Auth.AccessTTL = utils.GetEnvAsDuration("JWT_ACCESS_TTL", cfg.Auth.AccessTTL)
	cfg.Auth.RefreshTTL = utils.GetEnvAsDuration("JWT_REFRESH_TTL", cfg.Auth.RefreshTTL)

	cfg.RateLimit.RequestsPerMin = utils.GetEnvAsInt("RATE_LIMIT_PER_MIN", cfg.RateLimit.RequestsPerMin)
	cfg.RateLimit.BurstSize = utils.GetEnvAsInt("RATE_LIMIT_BURST", cfg.RateLimit.BurstSize)

	cfg.Rollover.Schedule = utils.GetEnv("ROLLOVER_SCHEDULE", cfg.Rollover.Schedule)
	cfg.Rollover.Timezone = utils.GetEnv("ROLLOVER_TZ", cfg.Rollover.Timezone)
	if raw := utils.GetEnv("ROLLOVER_ENABLED", ""); raw != "" {
		cfg.Rollover.Enabled = raw == "true" || raw == "1"
	}
}

// IsProduction reports whether the server runs in release mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// GetServerAddr returns the host:port the HTTP server binds to.
func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// GetRedisAddr returns the host:port of the Redis instance.
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
