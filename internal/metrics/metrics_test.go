package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}

	metric:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if labels[lp.GetName()] != lp.GetValue() {
					continue metric
				}
			}

			return m.GetCounter().GetValue()
		}
	}

	return 0
}

func TestCollector_Counters(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordCharge("success")
	c.RecordCharge("success")
	c.RecordCharge("insufficient")
	c.RecordTopUp()
	c.RecordDebitConflict()
	c.RecordCompensationFailure()

	if got := counterValue(t, reg, "webapp_charges_total", map[string]string{"outcome": "success"}); got != 2 {
		t.Errorf("charges{success} = %v, want 2", got)
	}
	if got := counterValue(t, reg, "webapp_charges_total", map[string]string{"outcome": "insufficient"}); got != 1 {
		t.Errorf("charges{insufficient} = %v, want 1", got)
	}
	if got := counterValue(t, reg, "webapp_topups_total", nil); got != 1 {
		t.Errorf("topups = %v, want 1", got)
	}
	if got := counterValue(t, reg, "webapp_debit_conflicts_total", nil); got != 1 {
		t.Errorf("debit_conflicts = %v, want 1", got)
	}
	if got := counterValue(t, reg, "webapp_compensation_failures_total", nil); got != 1 {
		t.Errorf("compensation_failures = %v, want 1", got)
	}
}

func TestHandler_ServesMetrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordTopUp()

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "webapp_topups_total") {
		t.Fatalf("expected webapp_topups_total in scrape output")
	}
}
