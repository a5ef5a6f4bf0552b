package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/dash-tools/otel-loadgen/pkg/generator/model"
	"github.com/ilyakaznacheev/cleanenv"
)

const (
	minIntervalSec       = 0.1
	defaultServicePrefix = "loadgen-service"
)

type Config struct {
	Target            string  `env:"OTEL_LOAD_TARGET" env-default:"http://otel-collector:4318/v1/traces" env-description:"OTLP/HTTP traces endpoint"`
	IntervalSec       float64 `env:"OTEL_LOAD_INTERVAL_SEC" env-default:"1.0" env-description:"Seconds between batches"`
	TracesPerBatch    int     `env:"OTEL_LOAD_TRACES_PER_BATCH" env-default:"8" env-description:"Traces generated per batch"`
	ServicePrefix     string  `env:"OTEL_LOAD_SERVICE_PREFIX" env-default:"loadgen-service" env-description:"Prefix for synthetic service names"`
	ServiceCount      int     `env:"OTEL_LOAD_SERVICE_COUNT" env-default:"3" env-description:"Number of edge services to rotate through"`
	ErrorEvery        int     `env:"OTEL_LOAD_ERROR_EVERY" env-default:"7" env-description:"Every n-th trace carries an error status"`
	InterService      bool    `env:"OTEL_LOAD_INTERSERVICE" env-default:"true" env-description:"Generate inter-service traces"`
	InterServiceRatio float64 `env:"OTEL_LOAD_INTERSERVICE_RATIO" env-default:"0.85" env-description:"Fraction of traces using the inter-service topology"`
	MinSpanDurationMs int     `env:"OTEL_LOAD_MIN_SPAN_DURATION_MS" env-default:"1" env-description:"Floor for generated span durations in milliseconds"`
	HttpTimeoutSec    int     `env:"OTEL_LOAD_HTTP_TIMEOUT_SEC" env-default:"10" env-description:"Timeout for collector requests in seconds"`
	MetricsAddr       string  `env:"OTEL_LOAD_METRICS_ADDR" env-default:":9464" env-description:"Listen address for the Prometheus endpoint"`
}

// ReadConfig loads the configuration from the environment. Unparsable values
// fail the startup; values outside their legal range are clamped instead.
func ReadConfig() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment configuration: %w", err)
	}
	cfg.normalize()
	return &cfg, nil
}

func (cfg *Config) normalize() {
	if cfg.IntervalSec < minIntervalSec {
		cfg.IntervalSec = minIntervalSec
	}
	if cfg.TracesPerBatch < 1 {
		cfg.TracesPerBatch = 1
	}
	cfg.ServicePrefix = strings.TrimSpace(cfg.ServicePrefix)
	if cfg.ServicePrefix == "" {
		cfg.ServicePrefix = defaultServicePrefix
	}
	if cfg.ServiceCount < 1 {
		cfg.ServiceCount = 1
	}
	if cfg.ErrorEvery < 1 {
		cfg.ErrorEvery = 1
	}
	if cfg.InterServiceRatio < 0 {
		cfg.InterServiceRatio = 0
	}
	if cfg.InterServiceRatio > 1 {
		cfg.InterServiceRatio = 1
	}
	if cfg.MinSpanDurationMs < 1 {
		cfg.MinSpanDurationMs = 1
	}
	if cfg.HttpTimeoutSec < 1 {
		cfg.HttpTimeoutSec = 1
	}
}

func (cfg *Config) Interval() time.Duration {
	return time.Duration(cfg.IntervalSec * float64(time.Second))
}

func (cfg *Config) HttpTimeout() time.Duration {
	return time.Duration(cfg.HttpTimeoutSec) * time.Second
}

func (cfg *Config) MinSpanDuration() time.Duration {
	return time.Duration(cfg.MinSpanDurationMs) * time.Millisecond
}

// BatchParams maps the configuration onto the generation parameters shared by
// every batch.
func (cfg *Config) BatchParams() model.BatchParams {
	return model.BatchParams{
		TracesPerBatch:    cfg.TracesPerBatch,
		ServicePrefix:     cfg.ServicePrefix,
		ServiceCount:      cfg.ServiceCount,
		ErrorEvery:        cfg.ErrorEvery,
		InterService:      cfg.InterService,
		InterServiceRatio: cfg.InterServiceRatio,
	}
}
