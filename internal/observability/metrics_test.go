package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_ObserveHTTP(t *testing.T) {
	m := NewMetrics()

	m.ObserveHTTP(http.MethodGet, "GET /api/v1/items", http.StatusOK, 10*time.Millisecond)
	m.ObserveHTTP(http.MethodGet, "GET /api/v1/items", http.StatusOK, 20*time.Millisecond)

	got := testutil.ToFloat64(m.httpRequests.WithLabelValues(http.MethodGet, "GET /api/v1/items", "200"))
	if got != 2 {
		t.Errorf("expected 2 requests, got %v", got)
	}
}

func TestMetrics_OrderRejected(t *testing.T) {
	m := NewMetrics()
	m.OrderRejected("insufficient_stock")

	got := testutil.ToFloat64(m.orderRejections.WithLabelValues("insufficient_stock"))
	if got != 1 {
		t.Errorf("expected 1 rejection, got %v", got)
	}
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveHTTP(http.MethodGet, "/", http.StatusOK, time.Millisecond)
	m.ObserveGRPC("/x", "OK")
	m.OrderRejected("insufficient_stock")
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.OrderRejected("insufficient_stock")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "stock_order_rejections_total") {
		t.Error("expected rejection counter in exposition")
	}
}
