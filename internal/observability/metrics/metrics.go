package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const exportInterval = 10 * time.Second

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics holds the domain counters. A nil *Metrics records nothing.
type Metrics struct {
	recordWrites        metric.Int64Counter
	integrityViolations metric.Int64Counter
	tokensIssued        metric.Int64Counter
	rateLimitDenied     metric.Int64Counter
	exportedRows        metric.Int64Counter
}

// NewProvider installs the global meter provider. Disabled metrics get a
// no-op provider so instruments can be created unconditionally.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := exporterFor(cfg)
	if err != nil {
		return nil, err
	}
	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(exportInterval))),
	)
	otel.SetMeterProvider(provider)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return provider.Shutdown(ctx)
		},
	})

	log.Info("otlp metrics enabled",
		zap.String("endpoint", cfg.ExporterEndpoint),
		zap.String("protocol", cfg.ExporterProtocol),
	)
	return provider, nil
}

// New creates the domain counters on the provider's meter.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "solarops"
	}
	b := counterBuilder{meter: provider.Meter(name)}

	m := &Metrics{
		recordWrites:        b.counter("solarops_record_writes_total", "Audited record writes by entity and operation."),
		integrityViolations: b.counter("solarops_integrity_violations_total", "Writes rejected by uniqueness or reference rules."),
		tokensIssued:        b.counter("solarops_tokens_issued_total", "API tokens handed out by the token endpoint."),
		rateLimitDenied:     b.counter("solarops_rate_limit_denied_total", "Requests refused by the rate limiter."),
		exportedRows:        b.counter("solarops_export_rows_total", "Rows written to admin spreadsheet exports."),
	}
	if b.err != nil {
		return nil, b.err
	}
	return m, nil
}

// NewNoop returns counters bound to a no-op provider.
func NewNoop() *Metrics {
	m, _ := New(Config{}, noop.NewMeterProvider())
	return m
}

type counterBuilder struct {
	meter metric.Meter
	err   error
}

func (b *counterBuilder) counter(name, description string) metric.Int64Counter {
	c, err := b.meter.Int64Counter(name, metric.WithDescription(description))
	if err != nil && b.err == nil {
		b.err = fmt.Errorf("counter %s: %w", name, err)
	}
	return c
}

func (m *Metrics) RecordWrite(ctx context.Context, entity, operation string) {
	if m == nil {
		return
	}
	m.recordWrites.Add(ctx, 1, labels("entity", entity, "operation", operation))
}

// RecordIntegrityViolation counts a rejected write; reason is "duplicate" or
// "reference".
func (m *Metrics) RecordIntegrityViolation(ctx context.Context, entity, reason string) {
	if m == nil {
		return
	}
	m.integrityViolations.Add(ctx, 1, labels("entity", entity, "reason", reason))
}

func (m *Metrics) RecordTokenIssued(ctx context.Context) {
	if m == nil {
		return
	}
	m.tokensIssued.Add(ctx, 1)
}

func (m *Metrics) RecordRateLimitDenied(ctx context.Context, endpoint string) {
	if m == nil {
		return
	}
	m.rateLimitDenied.Add(ctx, 1, labels("endpoint", endpoint))
}

func (m *Metrics) RecordExport(ctx context.Context, entity string, rows int) {
	if m == nil || rows <= 0 {
		return
	}
	m.exportedRows.Add(ctx, int64(rows), labels("entity", entity))
}

// labels turns key/value pairs into an attribute option, dropping any key
// outside the allowed label set.
func labels(kv ...string) metric.MeasurementOption {
	attrs := make([]attribute.KeyValue, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		attrs = append(attrs, attribute.String(kv[i], strings.TrimSpace(kv[i+1])))
	}
	return metric.WithAttributes(FilterAttributes(attrs...)...)
}

func exporterFor(cfg Config) (sdkmetric.Exporter, error) {
	ctx := context.Background()
	switch strings.ToLower(strings.TrimSpace(cfg.ExporterProtocol)) {
	case "", "grpc", "grpc/protobuf":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if cfg.ExporterEndpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(cfg.ExporterEndpoint))
		}
		return otlpmetricgrpc.New(ctx, opts...)
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{otlpmetrichttp.WithInsecure()}
		if cfg.ExporterEndpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(cfg.ExporterEndpoint))
		}
		return otlpmetrichttp.New(ctx, opts...)
	}
	return nil, fmt.Errorf("unsupported OTLP protocol %q", cfg.ExporterProtocol)
}

var allowedLabelKeys = map[attribute.Key]bool{
	"entity":      true,
	"operation":   true,
	"reason":      true,
	"endpoint":    true,
	"status_code": true,
}

// FilterAttributes keeps only low-cardinality label keys. Record and owner
// IDs never become labels.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	out := attrs[:0:0]
	for _, attr := range attrs {
		if allowedLabelKeys[attr.Key] {
			out = append(out, attr)
		}
	}
	return out
}
