package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveTransactionIncrementsCounter(t *testing.T) {
	c := NewCollector()
	c.ObserveTransaction("spend", "create_listing", "completed", 0.002)
	c.ObserveTransaction("spend", "create_listing", "completed", 0.001)
	c.ObserveTransaction("earn", "signup_bonus", "completed", 0.001)

	got := testutil.ToFloat64(c.transactionsCreated.WithLabelValues("spend", "create_listing", "completed"))
	if got != 2 {
		t.Fatalf("expected 2, got %v", got)
	}
	got = testutil.ToFloat64(c.transactionsCreated.WithLabelValues("earn", "signup_bonus", "completed"))
	if got != 1 {
		t.Fatalf("expected 1, got %v", got)
	}
}

func TestSetCirculation(t *testing.T) {
	c := NewCollector()
	c.SetCirculation(-55)
	if got := testutil.ToFloat64(c.coinsInCirculation); got != -55 {
		t.Fatalf("expected -55, got %v", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	c := NewCollector()
	c.ObserveTransaction("earn", "daily_login", "completed", 0.001)

	rr := httptest.NewRecorder()
	c.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "coin_transactions_created_total") {
		t.Fatalf("counter missing from exposition:\n%s", body)
	}
}
