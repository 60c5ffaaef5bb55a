package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	// Catalog is the key of the definition to build.
	Catalog         string
	DefinitionsFile string

	// OutputLocation and PublicURL override the definition when set.
	OutputLocation string
	PublicURL      string
	// PublicURLSet distinguishes CATALOG_PUBLIC_URL="" (skip the patch) from unset.
	PublicURLSet bool

	AWSRegion        string
	S3Endpoint       string
	S3ForcePathStyle bool
	HTTPTimeout      time.Duration

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	httpTimeout, err := parseDuration("HTTP_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}

	pathStyle, err := parseBool("S3_FORCE_PATH_STYLE", false)
	if err != nil {
		return nil, err
	}

	publicURL, publicURLSet := os.LookupEnv("CATALOG_PUBLIC_URL")

	cfg := &Config{
		Catalog:          sharedcfg.EnvOrDefault("CATALOG", "renewables"),
		DefinitionsFile:  os.Getenv("CATALOG_DEFINITIONS_FILE"),
		OutputLocation:   os.Getenv("CATALOG_OUTPUT_LOCATION"),
		PublicURL:        strings.TrimRight(publicURL, "/"),
		PublicURLSet:     publicURLSet,
		AWSRegion:        sharedcfg.EnvOrDefault("AWS_REGION", "us-west-2"),
		S3Endpoint:       os.Getenv("S3_ENDPOINT"),
		S3ForcePathStyle: pathStyle,
		HTTPTimeout:      httpTimeout,
		HTTPAddr:         os.Getenv("HTTP_ADDR"),
		LogLevel:         sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:        sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:  shutdownTimeout,
		KafkaBrokers:     sharedcfg.ParseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:       sharedcfg.EnvOrDefault("KAFKA_TOPIC", "catalog-published"),
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: must be debug, info, warn, or error", cfg.LogLevel)
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("invalid LOG_FORMAT %q: must be json or text", cfg.LogFormat)
	}
	return cfg, nil
}

// NotifyEnabled reports whether catalog events are published to Kafka.
func (c *Config) NotifyEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive duration", key)
	}
	return d, nil
}

func parseBool(key string, fallback bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

