package observability

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestInitMetricsServesInstruments(t *testing.T) {
	provider, handler, err := InitMetrics(MetricsConfig{ServiceName: "lending-api"})
	if err != nil {
		t.Fatalf("InitMetrics: %v", err)
	}
	defer func() { _ = provider.Shutdown(context.Background()) }()

	counter, err := provider.Meter("test").Int64Counter("schedules_computed")
	if err != nil {
		t.Fatalf("create counter: %v", err)
	}
	counter.Add(context.Background(), 3)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(string(body), "schedules_computed") {
		t.Errorf("expected counter in exposition output, got:\n%s", body)
	}
}

func TestInitMetricsIndependentRegistries(t *testing.T) {
	p1, _, err := InitMetrics(MetricsConfig{RuntimeCollectors: true})
	if err != nil {
		t.Fatalf("first InitMetrics: %v", err)
	}
	defer func() { _ = p1.Shutdown(context.Background()) }()

	p2, _, err := InitMetrics(MetricsConfig{RuntimeCollectors: true})
	if err != nil {
		t.Fatalf("second InitMetrics should not collide with the first: %v", err)
	}
	defer func() { _ = p2.Shutdown(context.Background()) }()
}

func TestInitTracerDisabledWithoutEndpoint(t *testing.T) {
	shutdown, err := InitTracer(context.Background(), TracingConfig{ServiceName: "lending-api"})
	if err != nil {
		t.Fatalf("InitTracer: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("no-op shutdown returned %v", err)
	}
}
