package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config application-wide configuration
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"db"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Log        LogConfig        `mapstructure:"log"`
	Attendance AttendanceConfig `mapstructure:"attendance"`
}

// ServerConfig HTTP server settings
type ServerConfig struct {
	Port    int        `mapstructure:"port"`
	BaseURL string     `mapstructure:"base_url"`
	CORS    CORSConfig `mapstructure:"cors"`
}

// CORSConfig cross-origin settings
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig PostgreSQL settings
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // minutes
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // minutes
}

// DSN builds the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis settings
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LogConfig logging settings
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// AttendanceConfig attendance module tuning
type AttendanceConfig struct {
	LockTTL        time.Duration `mapstructure:"lock_ttl"`         // batch-save lock lifetime
	RosterCacheTTL time.Duration `mapstructure:"roster_cache_ttl"` // 0 disables the roster cache
	RateLimit      int           `mapstructure:"rate_limit"`       // batch saves per window per client
	RateWindow     time.Duration `mapstructure:"rate_window"`
	CheckinSecret  string        `mapstructure:"checkin_secret"`    // HMAC key for QR check-in tokens
	CheckinTTL     time.Duration `mapstructure:"checkin_token_ttl"` // how long a shown QR stays valid
}

// Load reads configuration from .env, config file and environment.
// Precedence: environment > config file > defaults.
func Load(path string) (*Config, error) {
	// .env is optional; missing file is not an error
	_ = godotenv.Load()

	v := viper.New()

	// ── defaults ──
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "siakad")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "Asia/Jakarta")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)
	v.SetDefault("db.conn_max_idle_time", 30)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("attendance.lock_ttl", "10s")
	v.SetDefault("attendance.roster_cache_ttl", "5m")
	v.SetDefault("attendance.rate_limit", 30)
	v.SetDefault("attendance.rate_window", "1m")
	v.SetDefault("attendance.checkin_secret", "siakad-checkin-dev-secret")
	v.SetDefault("attendance.checkin_token_ttl", "60s")

	// ── config file ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── environment ──
	v.SetEnvPrefix("SIAKAD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the settings the server cannot run without
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid config: server.port must be within 1-65535")
	}
	if c.Attendance.LockTTL <= 0 {
		return fmt.Errorf("invalid config: attendance.lock_ttl must be positive")
	}
	if c.Attendance.RosterCacheTTL < 0 {
		return fmt.Errorf("invalid config: attendance.roster_cache_ttl must not be negative")
	}
	if c.Attendance.RateLimit > 0 && c.Attendance.RateWindow <= 0 {
		return fmt.Errorf("invalid config: attendance.rate_window must be positive when rate_limit is set")
	}
	if len(c.Attendance.CheckinSecret) < 16 {
		return fmt.Errorf("invalid config: attendance.checkin_secret must be at least 16 characters")
	}
	if c.Attendance.CheckinTTL <= 0 {
		return fmt.Errorf("invalid config: attendance.checkin_token_ttl must be positive")
	}
	return nil
}
