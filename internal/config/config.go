package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/GoPolymarket/kylingate/internal/pkg/apperrors"
	"github.com/GoPolymarket/kylingate/internal/pkg/logger"
	"github.com/spf13/viper"
)

const (
	SinkElasticsearch = "elasticsearch"
	SinkRedis         = "redis"
	SinkPostgres      = "postgres"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Kylin     KylinConfig     `mapstructure:"kylin"`
	Audit     AuditConfig     `mapstructure:"audit"`
	Auth      AuthConfig      `mapstructure:"auth"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

type ServerConfig struct {
	Port                   string `mapstructure:"port"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type KylinConfig struct {
	ApiKey    string `mapstructure:"api_key"`
	ApiSecret string `mapstructure:"api_secret"`
	BaseURL   string `mapstructure:"base_url"`
	TimeoutMs int    `mapstructure:"timeout_ms"`
	// DebugSigning logs canonical strings at debug level. The secret itself is always redacted.
	DebugSigning bool `mapstructure:"debug_signing"`
}

type AuditConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Sink      string `mapstructure:"sink"`
	Host      string `mapstructure:"host"`
	Index     string `mapstructure:"index"`
	TimeoutMs int    `mapstructure:"timeout_ms"`

	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	RedisListMax  int    `mapstructure:"redis_list_max"`

	PostgresDSN string `mapstructure:"postgres_dsn"`
}

type AuthConfig struct {
	RequireAPIKey bool   `mapstructure:"require_api_key"`
	APIKey        string `mapstructure:"api_key"`
}

type RateLimitConfig struct {
	QPS   float64 `mapstructure:"qps"`
	Burst int     `mapstructure:"burst"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

func (k KylinConfig) Timeout() time.Duration {
	return time.Duration(k.TimeoutMs) * time.Millisecond
}

func (a AuditConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutMs) * time.Millisecond
}

func (s ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(s.ShutdownTimeoutSeconds) * time.Second
}

// Load reads configFile, or config.yaml from . and ./configs when configFile is empty.
// A missing default config file is not an error; env vars and defaults still apply.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	// e.g. KYLINGATE_AUDIT_ENABLED
	v.SetEnvPrefix("kylingate")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Names used by existing deployments.
	_ = v.BindEnv("kylin.api_key", "KYLIN_API_KEY", "KYLINGATE_KYLIN_API_KEY")
	_ = v.BindEnv("kylin.api_secret", "KYLIN_API_SECRET", "KYLINGATE_KYLIN_API_SECRET")
	_ = v.BindEnv("kylin.base_url", "KYLIN_BASE_URL", "KYLINGATE_KYLIN_BASE_URL")
	_ = v.BindEnv("audit.host", "KYLINGATE_AUDIT_HOST", "ES_HOST")
	_ = v.BindEnv("audit.index", "KYLINGATE_AUDIT_INDEX", "ES_INDEX")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		logger.Info("No config file found, using defaults and env vars")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Audit.Sink = strings.ToLower(strings.TrimSpace(cfg.Audit.Sink))

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.shutdown_timeout_seconds", 5)
	v.SetDefault("log.level", "info")

	v.SetDefault("kylin.base_url", "https://api.kylin.network")
	v.SetDefault("kylin.timeout_ms", 10000)
	v.SetDefault("kylin.debug_signing", false)

	v.SetDefault("audit.enabled", false)
	v.SetDefault("audit.sink", SinkElasticsearch)
	v.SetDefault("audit.host", "localhost:9200")
	v.SetDefault("audit.index", "kylin_access_tracking")
	v.SetDefault("audit.timeout_ms", 3000)
	v.SetDefault("audit.redis_addr", "")
	v.SetDefault("audit.redis_password", "")
	v.SetDefault("audit.redis_db", 0)
	v.SetDefault("audit.redis_list_max", 10000)
	v.SetDefault("audit.postgres_dsn", "")

	v.SetDefault("auth.require_api_key", false)
	v.SetDefault("auth.api_key", "")

	v.SetDefault("rate_limit.qps", 0)
	v.SetDefault("rate_limit.burst", 10)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

// Validate reports settings the process cannot serve traffic without.
func (c *Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.Kylin.ApiKey) == "" {
		missing = append(missing, "KYLIN_API_KEY")
	}
	if strings.TrimSpace(c.Kylin.ApiSecret) == "" {
		missing = append(missing, "KYLIN_API_SECRET")
	}
	if len(missing) > 0 {
		return apperrors.NewConfig(strings.Join(missing, ", ") + " is not set")
	}
	if c.Kylin.BaseURL == "" {
		return apperrors.NewConfig("kylin.base_url is empty")
	}
	if c.Kylin.TimeoutMs <= 0 {
		return apperrors.NewConfig("kylin.timeout_ms must be positive")
	}
	if c.Auth.RequireAPIKey && c.Auth.APIKey == "" {
		return apperrors.NewConfig("auth.require_api_key is set but auth.api_key is empty")
	}
	if !c.Audit.Enabled {
		return nil
	}
	switch c.Audit.Sink {
	case SinkElasticsearch:
		if c.Audit.Host == "" || c.Audit.Index == "" {
			return apperrors.NewConfig("audit.host and audit.index are required for the elasticsearch sink")
		}
	case SinkRedis:
		if c.Audit.RedisAddr == "" {
			return apperrors.NewConfig("audit.redis_addr is required for the redis sink")
		}
	case SinkPostgres:
		if c.Audit.PostgresDSN == "" {
			return apperrors.NewConfig("audit.postgres_dsn is required for the postgres sink")
		}
	default:
		return apperrors.NewConfig(fmt.Sprintf("unknown audit.sink %q", c.Audit.Sink))
	}
	return nil
}
