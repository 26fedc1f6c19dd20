package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// NewPrometheusProvider creates a Prometheus-backed OTel MeterProvider
// and an [http.Handler] serving the /metrics scrape endpoint. Instruments
// created from the returned provider appear in scrapes. Each call uses an
// independent Prometheus registry to avoid collector conflicts.
func NewPrometheusProvider() (*sdkmetric.MeterProvider, http.Handler, error) {
	registry := prometheus.NewRegistry()

	exporter, err := promexporter.New(
		promexporter.WithRegisterer(registry),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))

	return provider, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}), nil
}
