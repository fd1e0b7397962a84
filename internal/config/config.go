package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/couchcryptid/volcano-alert-service/internal/adapter/bmkg"
)

// Push providers.
const (
	ProviderFCM   = "fcm"
	ProviderNtfy  = "ntfy"
	ProviderKafka = "kafka"
	ProviderLog   = "log"
)

// State backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
)

const (
	defaultTopic          = "sinabung"
	defaultEmergencyTopic = "sinabung_emergency"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	ListingURL    string
	VolcanoName   string
	CheckInterval time.Duration
	FetchTimeout  time.Duration
	UserAgent     string

	Topic                string
	EmergencyTopic       string
	EmergencyNotifyClear bool

	PushProvider    string
	CredentialsFile string
	NtfyURL         string
	KafkaBrokers    []string

	StateBackend string
	DataDir      string
	RedisAddr    string

	BMKGURL    string
	AdminToken string

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	interval, err := parseCheckInterval(sharedcfg.EnvOrDefault("CHECK_INTERVAL_MINUTES", "5"))
	if err != nil {
		return nil, err
	}

	fetchTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("FETCH_TIMEOUT", "20s"))
	if err != nil || fetchTimeout <= 0 {
		return nil, errors.New("invalid FETCH_TIMEOUT")
	}

	notifyClear, err := parseBool(sharedcfg.EnvOrDefault("EMERGENCY_NOTIFY_CLEAR", "false"))
	if err != nil {
		return nil, errors.New("invalid EMERGENCY_NOTIFY_CLEAR")
	}

	cfg := &Config{
		ListingURL:    strings.TrimSpace(sharedcfg.EnvOrDefault("MAGMA_TINGKAT_URL", "")),
		VolcanoName:   strings.TrimSpace(sharedcfg.EnvOrDefault("VOLCANO_NAME", "Sinabung")),
		CheckInterval: interval,
		FetchTimeout:  fetchTimeout,
		UserAgent:     sharedcfg.EnvOrDefault("USER_AGENT", "sinabung-alert-mvp/1.0"),

		Topic:                orDefault(sharedcfg.EnvOrDefault("FCM_TOPIC", ""), defaultTopic),
		EmergencyTopic:       orDefault(sharedcfg.EnvOrDefault("FCM_EMERGENCY_TOPIC", ""), defaultEmergencyTopic),
		EmergencyNotifyClear: notifyClear,

		PushProvider:    strings.ToLower(sharedcfg.EnvOrDefault("PUSH_PROVIDER", ProviderFCM)),
		CredentialsFile: sharedcfg.EnvOrDefault("GOOGLE_APPLICATION_CREDENTIALS", ""),
		NtfyURL:         sharedcfg.EnvOrDefault("NTFY_URL", "https://ntfy.sh"),
		KafkaBrokers:    sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),

		StateBackend: strings.ToLower(sharedcfg.EnvOrDefault("STATE_BACKEND", BackendFile)),
		DataDir:      sharedcfg.EnvOrDefault("DATA_DIR", "data"),
		RedisAddr:    sharedcfg.EnvOrDefault("REDIS_ADDR", "localhost:6379"),

		BMKGURL:    sharedcfg.EnvOrDefault("BMKG_URL", bmkg.DefaultURL),
		AdminToken: sharedcfg.EnvOrDefault("ADMIN_TOKEN", ""),

		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
	}

	if cfg.VolcanoName == "" {
		return nil, errors.New("VOLCANO_NAME is required")
	}
	switch cfg.PushProvider {
	case ProviderFCM:
		if cfg.CredentialsFile == "" {
			return nil, errors.New("PUSH_PROVIDER is fcm but GOOGLE_APPLICATION_CREDENTIALS is not set")
		}
	case ProviderKafka:
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required for the kafka push provider")
		}
	case ProviderNtfy, ProviderLog:
	default:
		return nil, fmt.Errorf("unknown PUSH_PROVIDER %q", cfg.PushProvider)
	}
	switch cfg.StateBackend {
	case BackendFile, BackendRedis:
	default:
		return nil, fmt.Errorf("unknown STATE_BACKEND %q", cfg.StateBackend)
	}

	return cfg, nil
}

// parseCheckInterval reads whole minutes, clamping anything below one minute up to one.
func parseCheckInterval(s string) (time.Duration, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, errors.New("invalid CHECK_INTERVAL_MINUTES")
	}
	if n < 1 {
		n = 1
	}
	return time.Duration(n) * time.Minute, nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes":
		return true, nil
	case "", "0", "false", "no":
		return false, nil
	}
	return false, strconv.ErrSyntax
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v == "" {
		return def
	}
	return v
}
