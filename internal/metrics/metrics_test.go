package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/common/expfmt"

	"github.com/auditkit/auditkit/pkg/types"
)

// scrape renders the registry and parses the exposition back into
// metric families.
func scrape(t *testing.T, reg *Registry) map[string]float64 {
	t.Helper()

	rr := httptest.NewRecorder()
	reg.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}

	var parser expfmt.TextParser
	families, err := parser.TextToMetricFamilies(strings.NewReader(rr.Body.String()))
	if err != nil {
		t.Fatalf("parse exposition: %v (body: %s)", err, rr.Body.String())
	}

	// Flatten to "name{k=v,...}" -> value for easy assertions.
	out := make(map[string]float64)
	for name, mf := range families {
		for _, m := range mf.Metric {
			key := name
			for _, lp := range m.Label {
				key += "," + lp.GetName() + "=" + lp.GetValue()
			}
			out[key] = m.GetCounter().GetValue()
		}
	}
	return out
}

func TestRegistry_Empty(t *testing.T) {
	rr := httptest.NewRecorder()
	NewRegistry().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	if strings.TrimSpace(rr.Body.String()) != "" {
		t.Errorf("empty registry must render nothing: got %q", rr.Body.String())
	}
}

func TestRegistry_Counters(t *testing.T) {
	reg := NewRegistry()
	reg.ObserveAudit(types.AuditTypeURL, 2*time.Second)
	reg.ObserveAudit(types.AuditTypeURL, 3*time.Second)
	reg.ObserveAudit(types.AuditTypeGitHub, time.Second)
	reg.ObserveCollector("pagespeed", types.StatusOK)
	reg.ObserveCollector("pagespeed", types.StatusError)
	reg.ObserveCollector("crux", types.StatusSkipped)

	got := scrape(t, reg)

	if got["auditkit_audits_total,type=url"] != 2 {
		t.Errorf("audits_total{url}: got %v, want 2", got["auditkit_audits_total,type=url"])
	}
	if got["auditkit_audits_total,type=github"] != 1 {
		t.Errorf("audits_total{github}: got %v, want 1", got["auditkit_audits_total,type=github"])
	}
	if got["auditkit_audit_seconds_total,type=url"] != 5 {
		t.Errorf("audit_seconds_total{url}: got %v, want 5", got["auditkit_audit_seconds_total,type=url"])
	}
	if got["auditkit_collector_results_total,source=pagespeed,status=ok"] != 1 {
		t.Errorf("collector ok: got %v, want 1", got["auditkit_collector_results_total,source=pagespeed,status=ok"])
	}
	if got["auditkit_collector_results_total,source=pagespeed,status=error"] != 1 {
		t.Errorf("collector error: got %v, want 1", got["auditkit_collector_results_total,source=pagespeed,status=error"])
	}
	if got["auditkit_collector_results_total,source=crux,status=skipped"] != 1 {
		t.Errorf("collector skipped: got %v, want 1", got["auditkit_collector_results_total,source=crux,status=skipped"])
	}
}

func TestRegistry_MethodNotAllowed(t *testing.T) {
	rr := httptest.NewRecorder()
	NewRegistry().ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/metrics", nil))

	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("status: got %d, want 405", rr.Code)
	}
}
