package observability

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/smallbiznis/solarops/internal/config"
)

// Config holds logging, tracing and metrics export settings. Service identity
// comes from the application config; the rest is read from the environment.
type Config struct {
	ServiceName string
	Environment string
	Version     string

	LogLevel  string
	LogFormat string
	// SlowRequest marks API requests slower than this in the request log.
	SlowRequest time.Duration

	OtelEnabled          bool
	OtelExporterEndpoint string
	OtelExporterProtocol string
	OtelSamplingRatio    float64
}

func LoadConfig(cfg config.Config) Config {
	e := env{}
	out := Config{
		ServiceName:          e.str("OTEL_SERVICE_NAME", cfg.AppName),
		Environment:          e.str("DEPLOYMENT_ENV", cfg.Environment),
		Version:              e.str("SERVICE_VERSION", cfg.AppVersion),
		LogLevel:             strings.ToLower(e.str("LOG_LEVEL", "info")),
		LogFormat:            strings.ToLower(e.str("LOG_FORMAT", "json")),
		SlowRequest:          time.Duration(e.float("HTTP_SLOW_REQUEST_MS", 2000)) * time.Millisecond,
		OtelEnabled:          e.boolean("OTEL_ENABLED", false),
		OtelExporterEndpoint: e.str("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.OTLPEndpoint),
		OtelExporterProtocol: strings.ToLower(e.str("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc")),
		OtelSamplingRatio:    e.float("OTEL_SAMPLING_RATIO", 0.1),
	}
	if out.ServiceName == "" {
		out.ServiceName = "solarops"
	}
	if out.OtelSamplingRatio < 0 || out.OtelSamplingRatio > 1 {
		out.OtelSamplingRatio = 0.1
	}
	return out
}

// Debug is on for debug logging and for non-production environments.
func (c Config) Debug() bool {
	if c.LogLevel == "debug" {
		return true
	}
	switch strings.ToLower(c.Environment) {
	case "dev", "development", "local", "test":
		return true
	}
	return false
}

type env struct{}

func (env) str(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return strings.TrimSpace(def)
}

func (e env) boolean(key string, def bool) bool {
	v, err := strconv.ParseBool(e.str(key, ""))
	if err != nil {
		return def
	}
	return v
}

func (e env) float(key string, def float64) float64 {
	v, err := strconv.ParseFloat(e.str(key, ""), 64)
	if err != nil {
		return def
	}
	return v
}
