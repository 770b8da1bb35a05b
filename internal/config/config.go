package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	SinkNone      = "none"
	SinkEventsAPI = "events_api"
	SinkKafka     = "kafka"
)

var ErrMissingDSN = errors.New("POSTGRES_DSN is not set")

type Product struct {
	ID    string  `yaml:"id"`
	Name  string  `yaml:"name"`
	Price float64 `yaml:"price"`
}

// Config is the resolved runtime configuration: defaults, then the YAML
// file, then environment overrides.
type Config struct {
	HTTPPort int

	DatabaseURL string
	RedisURL    string
	SessionTTL  time.Duration

	LogLevel  string
	LogFormat string

	CollectorSink       string
	TikTokEndpoint      string
	TikTokPixelCode     string
	TikTokAccessToken   string
	TikTokTestEventCode string
	KafkaBrokers        []string
	KafkaTopic          string

	ReadyTimeout  time.Duration
	PollInterval  time.Duration
	SettleDelay   time.Duration
	RetryInterval time.Duration
	FlushInterval time.Duration

	BackendBaseURL string
	DeploymentRoot string
	BackendTimeout time.Duration

	Currency       string
	ContentType    string
	DefaultProduct Product
	Upsells        map[int]Product
}

type configFile struct {
	Service struct {
		HTTPPort  int    `yaml:"http_port"`
		LogLevel  string `yaml:"log_level"`
		LogFormat string `yaml:"log_format"`
	} `yaml:"service"`
	Dependencies struct {
		PostgresDSN       string `yaml:"postgres_dsn"`
		RedisURL          string `yaml:"redis_url"`
		SessionTTLMinutes int    `yaml:"session_ttl_minutes"`
	} `yaml:"dependencies"`
	Collector struct {
		Sink   string `yaml:"sink"`
		TikTok struct {
			Endpoint      string `yaml:"endpoint"`
			PixelCode     string `yaml:"pixel_code"`
			AccessToken   string `yaml:"access_token"`
			TestEventCode string `yaml:"test_event_code"`
		} `yaml:"tiktok"`
		Kafka struct {
			Brokers []string `yaml:"brokers"`
			Topic   string   `yaml:"topic"`
		} `yaml:"kafka"`
		Dispatch struct {
			ReadyTimeoutMS  int `yaml:"ready_timeout_ms"`
			PollIntervalMS  int `yaml:"poll_interval_ms"`
			SettleDelayMS   int `yaml:"settle_delay_ms"`
			RetryIntervalMS int `yaml:"retry_interval_ms"`
			FlushIntervalMS int `yaml:"flush_interval_ms"`
		} `yaml:"dispatch"`
	} `yaml:"collector"`
	Backend struct {
		BaseURL        string `yaml:"base_url"`
		DeploymentRoot string `yaml:"deployment_root"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"backend"`
	Catalog struct {
		Currency    string          `yaml:"currency"`
		ContentType string          `yaml:"content_type"`
		Default     Product         `yaml:"default"`
		Upsells     map[int]Product `yaml:"upsells"`
	} `yaml:"catalog"`
}

func Load(path string) (Config, error) {
	cfg := Config{
		HTTPPort:       8080,
		SessionTTL:     30 * time.Minute,
		LogLevel:       "info",
		LogFormat:      "json",
		CollectorSink:  SinkNone,
		KafkaTopic:     "conversion-events",
		ReadyTimeout:   5 * time.Second,
		PollInterval:   100 * time.Millisecond,
		SettleDelay:    2 * time.Second,
		RetryInterval:  2 * time.Second,
		FlushInterval:  time.Second,
		DeploymentRoot: "/",
		BackendTimeout: 10 * time.Second,
		Currency:       "BRL",
		ContentType:    "product",
		DefaultProduct: Product{ID: "main-product", Name: "Main Product"},
		Upsells:        map[int]Product{},
	}

	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := applyFile(&cfg, raw); err != nil {
				return Config{}, err
			}
		case !errors.Is(err, os.ErrNotExist):
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	applyEnv(&cfg)

	if cfg.DatabaseURL == "" {
		return Config{}, ErrMissingDSN
	}
	switch cfg.CollectorSink {
	case SinkNone, SinkEventsAPI, SinkKafka:
	default:
		return Config{}, fmt.Errorf("unknown COLLECTOR_SINK %q", cfg.CollectorSink)
	}
	if cfg.CollectorSink == SinkKafka && len(cfg.KafkaBrokers) == 0 {
		return Config{}, fmt.Errorf("COLLECTOR_SINK=kafka requires KAFKA_BROKERS")
	}
	if cfg.CollectorSink == SinkEventsAPI && (cfg.TikTokPixelCode == "" || cfg.TikTokAccessToken == "") {
		return Config{}, fmt.Errorf("COLLECTOR_SINK=events_api requires TIKTOK_PIXEL_CODE and TIKTOK_ACCESS_TOKEN")
	}

	return cfg, nil
}

// DeliveryDrainTimeout bounds the shutdown wait for pending confirmations:
// a full readiness wait plus the settle delay, with a second of slack.
func (c Config) DeliveryDrainTimeout() time.Duration {
	return c.ReadyTimeout + c.SettleDelay + time.Second
}

func applyFile(cfg *Config, raw []byte) error {
	var f configFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	if f.Service.HTTPPort > 0 {
		cfg.HTTPPort = f.Service.HTTPPort
	}
	cfg.LogLevel = nonEmpty(f.Service.LogLevel, cfg.LogLevel)
	cfg.LogFormat = nonEmpty(f.Service.LogFormat, cfg.LogFormat)

	cfg.DatabaseURL = nonEmpty(f.Dependencies.PostgresDSN, cfg.DatabaseURL)
	cfg.RedisURL = nonEmpty(f.Dependencies.RedisURL, cfg.RedisURL)
	if f.Dependencies.SessionTTLMinutes > 0 {
		cfg.SessionTTL = time.Duration(f.Dependencies.SessionTTLMinutes) * time.Minute
	}

	c := f.Collector
	cfg.CollectorSink = nonEmpty(c.Sink, cfg.CollectorSink)
	cfg.TikTokEndpoint = nonEmpty(c.TikTok.Endpoint, cfg.TikTokEndpoint)
	cfg.TikTokPixelCode = nonEmpty(c.TikTok.PixelCode, cfg.TikTokPixelCode)
	cfg.TikTokAccessToken = nonEmpty(c.TikTok.AccessToken, cfg.TikTokAccessToken)
	cfg.TikTokTestEventCode = nonEmpty(c.TikTok.TestEventCode, cfg.TikTokTestEventCode)
	if len(c.Kafka.Brokers) > 0 {
		cfg.KafkaBrokers = c.Kafka.Brokers
	}
	cfg.KafkaTopic = nonEmpty(c.Kafka.Topic, cfg.KafkaTopic)
	cfg.ReadyTimeout = millis(c.Dispatch.ReadyTimeoutMS, cfg.ReadyTimeout)
	cfg.PollInterval = millis(c.Dispatch.PollIntervalMS, cfg.PollInterval)
	cfg.SettleDelay = millis(c.Dispatch.SettleDelayMS, cfg.SettleDelay)
	cfg.RetryInterval = millis(c.Dispatch.RetryIntervalMS, cfg.RetryInterval)
	cfg.FlushInterval = millis(c.Dispatch.FlushIntervalMS, cfg.FlushInterval)

	cfg.BackendBaseURL = nonEmpty(f.Backend.BaseURL, cfg.BackendBaseURL)
	cfg.DeploymentRoot = nonEmpty(f.Backend.DeploymentRoot, cfg.DeploymentRoot)
	if f.Backend.TimeoutSeconds > 0 {
		cfg.BackendTimeout = time.Duration(f.Backend.TimeoutSeconds) * time.Second
	}

	cfg.Currency = nonEmpty(f.Catalog.Currency, cfg.Currency)
	cfg.ContentType = nonEmpty(f.Catalog.ContentType, cfg.ContentType)
	if f.Catalog.Default.ID != "" {
		cfg.DefaultProduct = f.Catalog.Default
	}
	for n, p := range f.Catalog.Upsells {
		cfg.Upsells[n] = p
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.HTTPPort = envInt("HTTP_PORT", cfg.HTTPPort)
	cfg.DatabaseURL = envOrDefault("POSTGRES_DSN", cfg.DatabaseURL)
	cfg.RedisURL = envOrDefault("REDIS_URL", cfg.RedisURL)
	cfg.SessionTTL = time.Duration(envInt("SESSION_TTL_MINUTES", int(cfg.SessionTTL.Minutes()))) * time.Minute
	cfg.LogLevel = strings.ToLower(envOrDefault("LOG_LEVEL", cfg.LogLevel))
	cfg.LogFormat = strings.ToLower(envOrDefault("LOG_FORMAT", cfg.LogFormat))

	cfg.CollectorSink = strings.ToLower(strings.TrimSpace(envOrDefault("COLLECTOR_SINK", cfg.CollectorSink)))
	cfg.TikTokEndpoint = envOrDefault("TIKTOK_EVENTS_API_URL", cfg.TikTokEndpoint)
	cfg.TikTokPixelCode = envOrDefault("TIKTOK_PIXEL_CODE", cfg.TikTokPixelCode)
	cfg.TikTokAccessToken = envOrDefault("TIKTOK_ACCESS_TOKEN", cfg.TikTokAccessToken)
	cfg.TikTokTestEventCode = envOrDefault("TIKTOK_TEST_EVENT_CODE", cfg.TikTokTestEventCode)
	cfg.KafkaBrokers = envCSV("KAFKA_BROKERS", cfg.KafkaBrokers)
	cfg.KafkaTopic = envOrDefault("KAFKA_TOPIC", cfg.KafkaTopic)

	cfg.BackendBaseURL = envOrDefault("BACKEND_BASE_URL", cfg.BackendBaseURL)
	cfg.DeploymentRoot = envOrDefault("DEPLOYMENT_ROOT", cfg.DeploymentRoot)
	cfg.Currency = strings.ToUpper(envOrDefault("DEFAULT_CURRENCY", cfg.Currency))
}

func nonEmpty(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}

func millis(ms int, fallback time.Duration) time.Duration {
	if ms <= 0 {
		return fallback
	}
	return time.Duration(ms) * time.Millisecond
}

func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

// envInt falls back on empty or invalid values.
func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func envCSV(name string, fallback []string) []string {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	parts := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	if len(parts) == 0 {
		return fallback
	}
	return parts
}
