// Package config loads the service configuration from the environment.
package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config is the explicit configuration object threaded through construction.
// No component reads the environment on its own.
type Config struct {
	HTTPAddr    string `envconfig:"HTTP_ADDR" default:":8080"`
	ServiceName string `envconfig:"SERVICE_NAME" default:"marketplace"`

	// CheckoutLogPath is the SQLite file for the checkout audit log.
	// Empty disables audit logging.
	CheckoutLogPath string `envconfig:"CHECKOUT_LOG_PATH" default:"./data/checkout.db"`

	// RedisAddr enables estimate caching when set.
	RedisAddr string `envconfig:"REDIS_ADDR"`

	// KafkaBrokers is a comma-separated broker list. Empty disables event
	// publishing.
	KafkaBrokers string `envconfig:"KAFKA_BROKERS"`

	// Estimator collaborator. An empty API key means the estimator is
	// treated as always unavailable and checkout uses fallback estimates.
	EstimatorBaseURL string        `envconfig:"ESTIMATOR_BASE_URL"`
	EstimatorAPIKey  string        `envconfig:"ESTIMATOR_API_KEY"`
	EstimatorTimeout time.Duration `envconfig:"ESTIMATOR_TIMEOUT" default:"3s"`

	// SeedDemoData loads a few demo products on startup for local runs.
	SeedDemoData bool `envconfig:"SEED_DEMO_DATA"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("freshmart", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
