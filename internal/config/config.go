package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"

	"github.com/bcdservices/dashboard-api/pkg/messaging/redis"
)

// EnvPrefix namespaces environment overrides, e.g. DASHBOARD_BACKEND_TOKEN.
const EnvPrefix = "DASHBOARD"

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Backend    BackendConfig    `mapstructure:"backend"`
	Schedule   ScheduleConfig   `mapstructure:"schedule"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Redis      RedisConfig      `mapstructure:"redis"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	CORS       CORSConfig       `mapstructure:"cors"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	Log        LogConfig        `mapstructure:"log"`
	Revenue    RevenueConfig    `mapstructure:"revenue"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type BackendConfig struct {
	URL             string        `mapstructure:"url"`
	Token           string        `mapstructure:"token"`
	Timeout         time.Duration `mapstructure:"timeout"`
	RatePerSecond   float64       `mapstructure:"rate_per_second"`
	Burst           int           `mapstructure:"burst"`
	ProductCacheTTL time.Duration `mapstructure:"product_cache_ttl"`
	Breaker         BreakerConfig `mapstructure:"breaker"`
}

type BreakerConfig struct {
	ConsecutiveFailures uint32        `mapstructure:"consecutive_failures"`
	OpenTimeout         time.Duration `mapstructure:"open_timeout"`
	Interval            time.Duration `mapstructure:"interval"`
}

type ScheduleConfig struct {
	Location        string        `mapstructure:"location"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
}

type AuthConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	JWTSecret string        `mapstructure:"jwt_secret"`
	Issuer    string        `mapstructure:"issuer"`
	Leeway    time.Duration `mapstructure:"leeway"`
}

type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	Channel      string        `mapstructure:"channel"`
	MaxRetries   int           `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool   `mapstructure:"prometheus_enabled"`
	Namespace         string `mapstructure:"namespace"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// RevenueConfig carries figures the backend does not hold: last fiscal
// year's monthly revenue and manual per-month adjustments, keyed YYYY-MM.
type RevenueConfig struct {
	PreviousYear map[string]float64 `mapstructure:"previous_year"`
	Adjustments  map[string]float64 `mapstructure:"adjustments"`
}

// envOverrides lists the values deployments usually inject through the
// environment rather than config.yml.
type envOverrides struct {
	Port            int           `envconfig:"PORT"`
	BackendURL      string        `envconfig:"BACKEND_URL"`
	BackendToken    string        `envconfig:"BACKEND_TOKEN"`
	BackendTimeout  time.Duration `envconfig:"BACKEND_TIMEOUT"`
	JWTSecret       string        `envconfig:"JWT_SECRET"`
	AuthEnabled     *bool         `envconfig:"AUTH_ENABLED"`
	RedisURL        string        `envconfig:"REDIS_URL"`
	LogLevel        string        `envconfig:"LOG_LEVEL"`
	LogFormat       string        `envconfig:"LOG_FORMAT"`
	LogFile         string        `envconfig:"LOG_FILE"`
	Location        string        `envconfig:"SCHEDULE_LOCATION"`
	RefreshInterval time.Duration `envconfig:"SCHEDULE_REFRESH_INTERVAL"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.request_timeout", 20*time.Second)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)

	v.SetDefault("backend.timeout", 15*time.Second)
	v.SetDefault("backend.rate_per_second", 10.0)
	v.SetDefault("backend.burst", 20)
	v.SetDefault("backend.product_cache_ttl", 5*time.Minute)
	v.SetDefault("backend.breaker.consecutive_failures", 5)
	v.SetDefault("backend.breaker.open_timeout", 30*time.Second)
	v.SetDefault("backend.breaker.interval", time.Minute)

	v.SetDefault("schedule.location", "Europe/Paris")
	v.SetDefault("schedule.refresh_interval", time.Duration(0))

	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.leeway", 5*time.Second)

	v.SetDefault("redis.channel", "schedule.events")
	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.retry_backoff", 100*time.Millisecond)
	v.SetDefault("redis.pool_size", 10)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_second", 20.0)
	v.SetDefault("rate_limit.burst", 40)

	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"})

	v.SetDefault("monitoring.prometheus_enabled", true)
	v.SetDefault("monitoring.namespace", "dashboard")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)
}

// LoadConfig reads config.yml from the usual places, or from path when it
// is set, then applies DASHBOARD_* environment overrides. A missing config
// file is not an error; defaults and the environment still apply.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/app/config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}
	if env.Port != 0 {
		cfg.Server.Port = env.Port
	}
	if env.BackendURL != "" {
		cfg.Backend.URL = env.BackendURL
	}
	if env.BackendToken != "" {
		cfg.Backend.Token = env.BackendToken
	}
	if env.BackendTimeout != 0 {
		cfg.Backend.Timeout = env.BackendTimeout
	}
	if env.JWTSecret != "" {
		cfg.Auth.JWTSecret = env.JWTSecret
	}
	if env.AuthEnabled != nil {
		cfg.Auth.Enabled = *env.AuthEnabled
	}
	if env.RedisURL != "" {
		cfg.Redis.URL = env.RedisURL
	}
	if env.LogLevel != "" {
		cfg.Log.Level = env.LogLevel
	}
	if env.LogFormat != "" {
		cfg.Log.Format = env.LogFormat
	}
	if env.LogFile != "" {
		cfg.Log.File = env.LogFile
	}
	if env.Location != "" {
		cfg.Schedule.Location = env.Location
	}
	if env.RefreshInterval != 0 {
		cfg.Schedule.RefreshInterval = env.RefreshInterval
	}
	return nil
}

// Validate checks the values the server cannot start without.
func (c *Config) Validate() error {
	var problems []string
	if c.Backend.URL == "" {
		problems = append(problems, "backend.url is required")
	} else if u, err := url.Parse(c.Backend.URL); err != nil || u.Scheme == "" || u.Host == "" {
		problems = append(problems, fmt.Sprintf("backend.url %q is not an absolute URL", c.Backend.URL))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("server.port %d out of range", c.Server.Port))
	}
	if _, err := c.Schedule.LoadLocation(); err != nil {
		problems = append(problems, err.Error())
	}
	if c.Schedule.RefreshInterval < 0 {
		problems = append(problems, "schedule.refresh_interval must not be negative")
	}
	if c.Auth.Enabled && c.Auth.JWTSecret == "" {
		problems = append(problems, "auth.jwt_secret is required when auth is enabled")
	}
	for month := range c.Revenue.PreviousYear {
		if _, err := time.Parse("2006-01", month); err != nil {
			problems = append(problems, fmt.Sprintf("revenue.previous_year key %q is not YYYY-MM", month))
		}
	}
	for month := range c.Revenue.Adjustments {
		if _, err := time.Parse("2006-01", month); err != nil {
			problems = append(problems, fmt.Sprintf("revenue.adjustments key %q is not YYYY-MM", month))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// LoadLocation resolves the business time zone.
func (s ScheduleConfig) LoadLocation() (*time.Location, error) {
	name := s.Location
	if name == "" {
		name = "Europe/Paris"
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("schedule.location %q: %w", name, err)
	}
	return loc, nil
}

func (c *RedisConfig) Enabled() bool {
	return c.URL != ""
}

func (c *RedisConfig) ToBrokerConfig() redis.Config {
	return redis.Config{
		URL:          c.URL,
		MaxRetries:   c.MaxRetries,
		RetryBackoff: c.RetryBackoff,
		PoolSize:     c.PoolSize,
		MinIdleConns: c.MinIdleConns,
	}
}
