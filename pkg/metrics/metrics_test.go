package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/goliatone/go-genui/pkg/render"
)

func TestObserveRenderCountsPlaceholders(t *testing.T) {
	m := New(false)
	m.ObserveRender("html", render.Stats{Nodes: 7, Unknown: 2, Truncated: 1, DroppedProps: 3}, 3*time.Millisecond)
	m.ObserveRender("html", render.Stats{Nodes: 1}, time.Millisecond)

	if got := testutil.ToFloat64(m.renders.WithLabelValues("html")); got != 2 {
		t.Fatalf("renders = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.rendered); got != 8 {
		t.Fatalf("rendered nodes = %v, want 8", got)
	}
	if got := testutil.ToFloat64(m.placeholders.WithLabelValues("unknown")); got != 2 {
		t.Fatalf("unknown placeholders = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.droppedProps); got != 3 {
		t.Fatalf("dropped props = %v, want 3", got)
	}
}

func TestGenerationAndExtraction(t *testing.T) {
	m := New(false)
	m.ObserveGeneration(OutcomeFallback, 0)
	m.ObserveGeneration(OutcomeOK, time.Second)
	m.ObserveExtraction(4, 1)

	if got := testutil.ToFloat64(m.generations.WithLabelValues(OutcomeFallback)); got != 1 {
		t.Fatalf("fallback generations = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.extracted); got != 4 {
		t.Fatalf("extracted = %v, want 4", got)
	}
	if got := testutil.ToFloat64(m.rejected); got != 1 {
		t.Fatalf("rejected = %v, want 1", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New(false)
	m.ObserveExtraction(1, 0)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "genui_extracted_nodes_total 1") {
		t.Fatalf("metrics output missing counter:\n%s", body)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveGeneration(OutcomeOK, time.Second)
	m.ObserveExtraction(1, 1)
	m.ObserveRender("text", render.Stats{}, time.Millisecond)
	if m.Registry() != nil {
		t.Fatalf("expected nil registry")
	}
}
