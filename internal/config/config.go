package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"

	defaultJWTSecret = "change-me-in-production"
)

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Database  DatabaseConfig  `mapstructure:"database"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Security  SecurityConfig  `mapstructure:"security"`
	Log       LogConfig       `mapstructure:"log"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Files     FilesConfig     `mapstructure:"files"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Outbox    OutboxConfig    `mapstructure:"outbox"`
	Reminder  ReminderConfig  `mapstructure:"reminder"`
	SMTP      SMTPConfig      `mapstructure:"smtp"`
	Worker    WorkerConfig    `mapstructure:"worker"`
}

type AppConfig struct {
	Name            string        `mapstructure:"name"`
	Environment     string        `mapstructure:"environment"`
	Port            int           `mapstructure:"port"`
	StaticDir       string        `mapstructure:"static_dir"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxBodyMB       int64         `mapstructure:"max_body_mb"`
}

func (c AppConfig) IsDevelopment() bool { return c.Environment == EnvDevelopment }
func (c AppConfig) IsProduction() bool  { return c.Environment == EnvProduction }

type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN prefers the connection URL and falls back to the discrete fields.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

type JWTConfig struct {
	Secret    string `mapstructure:"secret"`
	ExpiresIn string `mapstructure:"expires_in"`
	Issuer    string `mapstructure:"issuer"`
}

// TTL parses ExpiresIn. Besides Go durations a whole number of days ("7d") is accepted.
func (c JWTConfig) TTL() (time.Duration, error) {
	return ParseDuration(c.ExpiresIn)
}

type SecurityConfig struct {
	BcryptCost int `mapstructure:"bcrypt_cost"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

type CORSConfig struct {
	AllowedOrigins   []string      `mapstructure:"allowed_origins"`
	AllowCredentials bool          `mapstructure:"allow_credentials"`
	MaxAge           time.Duration `mapstructure:"max_age"`
}

type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

type FilesConfig struct {
	Dir           string `mapstructure:"dir"`
	MaxUploadMB   int64  `mapstructure:"max_upload_mb"`
	ExportMaxRows int    `mapstructure:"export_max_rows"`
}

type RedisConfig struct {
	URL     string `mapstructure:"url"`
	Channel string `mapstructure:"channel"`
}

type OutboxConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
	BatchSize    int           `mapstructure:"batch_size"`
	MaxAttempts  int           `mapstructure:"max_attempts"`
	RetryDelay   time.Duration `mapstructure:"retry_delay"`
	StaleAfter   time.Duration `mapstructure:"stale_after"`
	Retention    time.Duration `mapstructure:"retention"`
}

type ReminderConfig struct {
	Interval      time.Duration `mapstructure:"interval"`
	LeadDays      int           `mapstructure:"lead_days"`
	RatePerMinute int           `mapstructure:"rate_per_minute"`
	BatchSize     int           `mapstructure:"batch_size"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

func (c SMTPConfig) Enabled() bool { return c.Host != "" }

type WorkerConfig struct {
	MetricsPort int `mapstructure:"metrics_port"`
}

// envOverlay holds the conventional flat variables deployments set directly.
type envOverlay struct {
	Port         int    `envconfig:"PORT"`
	DatabaseURL  string `envconfig:"DATABASE_URL"`
	JWTSecret    string `envconfig:"JWT_SECRET"`
	JWTExpiresIn string `envconfig:"JWT_EXPIRES_IN"`
	AppEnv       string `envconfig:"APP_ENV"`
	RedisURL     string `envconfig:"REDIS_URL"`
	CORSOrigins  string `envconfig:"CORS_ORIGINS"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "patient-registry")
	v.SetDefault("app.environment", EnvDevelopment)
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.static_dir", "./public")
	v.SetDefault("app.read_timeout", "15s")
	v.SetDefault("app.write_timeout", "60s")
	v.SetDefault("app.shutdown_timeout", "15s")
	v.SetDefault("app.max_body_mb", 12)

	v.SetDefault("database.url", "")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.name", "patient_registry")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")

	v.SetDefault("jwt.secret", defaultJWTSecret)
	v.SetDefault("jwt.expires_in", "7d")
	v.SetDefault("jwt.issuer", "patient-registry")

	v.SetDefault("security.bcrypt_cost", 12)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("cors.allow_credentials", true)
	v.SetDefault("cors.max_age", "12h")

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 100)
	v.SetDefault("rate_limit.window", "15m")

	v.SetDefault("files.dir", "./uploads")
	v.SetDefault("files.max_upload_mb", 10)
	v.SetDefault("files.export_max_rows", 5000)

	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("redis.channel", "patient-registry.events")

	v.SetDefault("outbox.poll_interval", "5s")
	v.SetDefault("outbox.batch_size", 50)
	v.SetDefault("outbox.max_attempts", 5)
	v.SetDefault("outbox.retry_delay", "30s")
	v.SetDefault("outbox.stale_after", "5m")
	v.SetDefault("outbox.retention", "168h")

	v.SetDefault("reminder.interval", "1h")
	v.SetDefault("reminder.lead_days", 2)
	v.SetDefault("reminder.rate_per_minute", 30)
	v.SetDefault("reminder.batch_size", 100)

	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from", "no-reply@patient-registry.local")

	v.SetDefault("worker.metrics_port", 9091)
}

// Load reads defaults, an optional config file, APP_* style environment
// variables and finally the flat deployment variables. An empty path searches
// for config.yaml in . and ./config.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

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

	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	var env envOverlay
	if err := envconfig.Process("", &env); err != nil {
		return fmt.Errorf("failed to process environment: %w", err)
	}

	if env.Port != 0 {
		cfg.App.Port = env.Port
	}
	if env.DatabaseURL != "" {
		cfg.Database.URL = env.DatabaseURL
	}
	if env.JWTSecret != "" {
		cfg.JWT.Secret = env.JWTSecret
	}
	if env.JWTExpiresIn != "" {
		cfg.JWT.ExpiresIn = env.JWTExpiresIn
	}
	if env.AppEnv != "" {
		cfg.App.Environment = env.AppEnv
	}
	if env.RedisURL != "" {
		cfg.Redis.URL = env.RedisURL
	}
	if env.CORSOrigins != "" {
		cfg.CORS.AllowedOrigins = splitList(env.CORSOrigins)
	}
	return nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	var problems []string

	switch c.App.Environment {
	case EnvDevelopment, EnvProduction, EnvTest:
	default:
		problems = append(problems, fmt.Sprintf("app.environment must be one of development, production, test (got %q)", c.App.Environment))
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		problems = append(problems, "app.port must be between 1 and 65535")
	}
	if c.JWT.Secret == "" {
		problems = append(problems, "jwt.secret is required")
	}
	if c.App.IsProduction() && (c.JWT.Secret == defaultJWTSecret || len(c.JWT.Secret) < 32) {
		problems = append(problems, "jwt.secret must be set to at least 32 characters in production")
	}
	if ttl, err := c.JWT.TTL(); err != nil || ttl <= 0 {
		problems = append(problems, fmt.Sprintf("jwt.expires_in is not a positive duration (got %q)", c.JWT.ExpiresIn))
	}
	if c.RateLimit.Enabled && (c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0) {
		problems = append(problems, "rate_limit.requests and rate_limit.window must be positive")
	}
	if c.Files.MaxUploadMB <= 0 {
		problems = append(problems, "files.max_upload_mb must be positive")
	}
	if c.Files.ExportMaxRows <= 0 {
		problems = append(problems, "files.export_max_rows must be positive")
	}
	if c.Security.BcryptCost < 4 || c.Security.BcryptCost > 31 {
		problems = append(problems, "security.bcrypt_cost must be between 4 and 31")
	}
	if c.Database.URL != "" {
		if _, err := url.Parse(c.Database.URL); err != nil {
			problems = append(problems, "database.url is not a valid URL")
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// ParseDuration extends time.ParseDuration with a whole-day form such as "7d".
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
