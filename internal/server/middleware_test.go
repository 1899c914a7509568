package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/teemow/meetsched/internal/instrumentation"
)

// httpPathLabels collects the distinct "path" attribute values recorded
// on http_requests_total.
func httpPathLabels(t *testing.T, reader *sdkmetric.ManualReader) []string {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}
	var paths []string
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "http_requests_total" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("unexpected data type %T for http_requests_total", m.Data)
			}
			for _, dp := range sum.DataPoints {
				if v, ok := dp.Attributes.Value(attribute.Key("path")); ok {
					paths = append(paths, v.AsString())
				}
			}
		}
	}
	return paths
}

func TestRequestMiddleware_RoutePatternLabels(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	metrics, err := instrumentation.NewMetrics(provider.Meter("test"))
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}

	s, err := New(Config{
		Addr:    ":0",
		Engine:  defaultEngine(t),
		Auth:    &fakeAuth{},
		Metrics: metrics,
	})
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	handler := s.routes()

	// A matched route records the mux pattern, not the raw path.
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/config", nil))

	// Scanner paths that match no route all collapse into one value, so
	// arbitrary request paths cannot grow the label set.
	for _, target := range []string{"/wp-admin", "/.env", "/vendor/phpunit/x"} {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, target, nil))
	}

	paths := httpPathLabels(t, reader)
	want := map[string]bool{"GET /api/config": true, "unmatched": true}
	for _, p := range paths {
		if !want[p] {
			t.Errorf("unexpected path label %q", p)
		}
	}
	if len(paths) != len(want) {
		t.Errorf("expected %d distinct path labels, got %d (%v)", len(want), len(paths), paths)
	}
}
