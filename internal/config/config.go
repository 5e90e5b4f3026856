package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	Service  string
	Port     string
	LogLevel string

	ElasticsearchURLs          []string
	ElasticsearchIndex         string
	ElasticsearchFlushInterval time.Duration

	KafkaBrokers []string
	KafkaTopic   string

	MetricsEnabled  bool
	MetricsToken    string
	RateLimitPerMin int
	DocsEnabled     bool
	ShutdownTimeout time.Duration
}

func (c Config) Addr() string { return ":" + c.Port }

// Load reads ENV_FILE (default .env) when it exists, then the process
// environment, which always wins.
func Load() (Config, error) {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", envFile, err)
	}

	v := viper.New()
	v.SetDefault("SERVICE_NAME", "catalog")
	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("ELASTICSEARCH_URLS", "")
	v.SetDefault("ELASTICSEARCH_INDEX", "product-logs")
	v.SetDefault("ELASTICSEARCH_FLUSH_INTERVAL", "2s")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_TOPIC", "product-events")
	v.SetDefault("METRICS_ENABLED", true)
	v.SetDefault("METRICS_TOKEN", "")
	v.SetDefault("RATE_LIMIT_PER_MIN", 0)
	v.SetDefault("DOCS_ENABLED", true)
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")
	v.AutomaticEnv()

	cfg := Config{
		Service:  v.GetString("SERVICE_NAME"),
		Port:     v.GetString("PORT"),
		LogLevel: strings.ToLower(v.GetString("LOG_LEVEL")),

		ElasticsearchURLs:          splitList(v.GetString("ELASTICSEARCH_URLS")),
		ElasticsearchIndex:         v.GetString("ELASTICSEARCH_INDEX"),
		ElasticsearchFlushInterval: v.GetDuration("ELASTICSEARCH_FLUSH_INTERVAL"),

		KafkaBrokers: splitList(v.GetString("KAFKA_BROKERS")),
		KafkaTopic:   v.GetString("KAFKA_TOPIC"),

		MetricsEnabled:  v.GetBool("METRICS_ENABLED"),
		MetricsToken:    v.GetString("METRICS_TOKEN"),
		RateLimitPerMin: v.GetInt("RATE_LIMIT_PER_MIN"),
		DocsEnabled:     v.GetBool("DOCS_ENABLED"),
		ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("PORT is empty"))
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}
	if len(c.ElasticsearchURLs) > 0 && c.ElasticsearchFlushInterval <= 0 {
		errs = append(errs, errors.New("ELASTICSEARCH_FLUSH_INTERVAL must be positive"))
	}
	if len(c.KafkaBrokers) > 0 && c.KafkaTopic == "" {
		errs = append(errs, errors.New("KAFKA_TOPIC is empty"))
	}
	if c.RateLimitPerMin < 0 {
		errs = append(errs, errors.New("RATE_LIMIT_PER_MIN must not be negative"))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("SHUTDOWN_TIMEOUT must be positive"))
	}
	return errors.Join(errs...)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
