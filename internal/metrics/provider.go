// Package metrics provides OpenTelemetry metrics with Prometheus export for the pipeline,
// the distribution coordinator and the status server.
package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Provider owns the meter provider and the Prometheus registry scraped at /metrics.
type Provider struct {
	namespace     string
	meterProvider *sdkmetric.MeterProvider
	registry      *prometheus.Registry
}

// ProviderOption customizes a Provider.
type ProviderOption func(*prometheus.Registry) error

// WithRuntimeCollectors adds the Go runtime and process collectors to the registry.
func WithRuntimeCollectors() ProviderOption {
	return func(registry *prometheus.Registry) error {
		return registry.Register(collectors.NewGoCollector())
	}
}

// WithProcessCollector adds the process collector (open fds, rss, cpu) to the registry.
func WithProcessCollector() ProviderOption {
	return func(registry *prometheus.Registry) error {
		return registry.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
}

// NewProvider creates a provider whose instruments are scoped to namespace, which is also
// the metric name prefix used by the instrument constructors in this package.
func NewProvider(namespace string, opts ...ProviderOption) (*Provider, error) {
	registry := prometheus.NewRegistry()
	for _, opt := range opts {
		if err := opt(registry); err != nil {
			return nil, fmt.Errorf("failed to register collector: %w", err)
		}
	}

	exporter, err := promexporter.New(promexporter.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	return &Provider{
		namespace:     namespace,
		meterProvider: sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter)),
		registry:      registry,
	}, nil
}

// Namespace returns the metric name prefix.
func (p *Provider) Namespace() string {
	return p.namespace
}

// Meter returns the meter for the provider's namespace.
func (p *Provider) Meter() metric.Meter {
	return p.meterProvider.Meter(p.namespace)
}

// MeterProvider returns the OpenTelemetry meter provider.
func (p *Provider) MeterProvider() *sdkmetric.MeterProvider {
	return p.meterProvider
}

// Handler serves the registry in Prometheus exposition format.
func (p *Provider) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Shutdown flushes and stops the meter provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.meterProvider == nil {
		return nil
	}
	return p.meterProvider.Shutdown(ctx)
}
