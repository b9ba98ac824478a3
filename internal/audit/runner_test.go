package audit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/auditkit/auditkit/internal/collector"
	"github.com/auditkit/auditkit/pkg/types"
)

// fakeRecorder counts observations for assertion.
type fakeRecorder struct {
	mu         sync.Mutex
	audits     int
	collectors map[string]types.Status
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{collectors: make(map[string]types.Status)}
}

func (f *fakeRecorder) ObserveAudit(types.AuditType, time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.audits++
}

func (f *fakeRecorder) ObserveCollector(source string, status types.Status) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.collectors[source] = status
}

const psiBody = `{
  "lighthouseResult": {
    "categories": {"performance": {"score": 0.9}},
    "audits": {
      "largest-contentful-paint": {"numericValue": 2000},
      "cumulative-layout-shift": {"numericValue": 0.05}
    }
  }
}`

const pageBody = `<html><head>
<title>Fixture</title>
<meta name="viewport" content="width=device-width">
</head><body></body></html>`

// auditServer serves every upstream the web-audit path talks to.
func auditServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/runPagespeed"):
			_, _ = w.Write([]byte(psiBody))
		case strings.HasPrefix(r.URL.Path, "/analyze"):
			_, _ = w.Write([]byte(`{"grade": "B"}`))
		case r.URL.Path == "/":
			w.Header().Set("Content-Security-Policy", "default-src 'self'")
			_, _ = w.Write([]byte(pageBody))
		default:
			http.NotFound(w, r)
		}
	}))
}

func testRunner(srv *httptest.Server, rec Recorder) *Runner {
	c := collector.NewWithEndpoints(srv.Client(), collector.Endpoints{
		PSI:         srv.URL,
		Observatory: srv.URL,
		GitHubAPI:   srv.URL,
		GitHubRaw:   srv.URL,
	})
	r := New(c, rec)
	r.newID = func() string { return "test-run" }
	r.now = func() time.Time { return time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC) }
	return r
}

func TestRun_URLAudit(t *testing.T) {
	srv := auditServer(t)
	defer srv.Close()

	rec := newFakeRecorder()
	res, err := testRunner(srv, rec).Run(context.Background(), srv.URL+"/", types.AuditTypeURL)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if res.ID != "test-run" {
		t.Errorf("ID: got %q, want test-run", res.ID)
	}
	if !res.AuditedAt.Equal(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("AuditedAt: got %v", res.AuditedAt)
	}

	// Web audits always report the full fixed pillar set, in order.
	wantPillars := []types.PillarID{
		types.PillarPerformance,
		types.PillarSEO,
		types.PillarAccessibility,
		types.PillarSecurity,
		types.PillarStructuredData,
		types.PillarAIReadiness,
	}
	if len(res.Pillars) != len(wantPillars) {
		t.Fatalf("Pillars: got %d, want %d", len(res.Pillars), len(wantPillars))
	}
	for i, id := range wantPillars {
		if res.Pillars[i].ID != id {
			t.Errorf("Pillars[%d].ID: got %q, want %q", i, res.Pillars[i].ID, id)
		}
	}

	// Clean lab metrics: the vendor baseline carries through.
	if res.Pillars[0].Score != 90 {
		t.Errorf("performance score: got %d, want 90", res.Pillars[0].Score)
	}
	// No accessibility collector: unmeasured pillar stays at 0.
	if res.Pillars[2].Score != 0 || len(res.Pillars[2].Issues) != 0 {
		t.Errorf("accessibility: got score %d with %d issues, want 0/0",
			res.Pillars[2].Score, len(res.Pillars[2].Issues))
	}

	if res.Meta == nil || res.Meta.Title != "Fixture" {
		t.Errorf("Meta: got %+v, want parsed page metadata", res.Meta)
	}
	if res.Raw == nil || res.Raw.PageSpeed == nil || res.Raw.CrUX == nil || res.Raw.Security == nil {
		t.Error("Raw: web audits must carry pagespeed, crux, and security results")
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.audits != 1 {
		t.Errorf("recorder audits: got %d, want 1", rec.audits)
	}
	for _, source := range []string{"pagespeed", "crux", "meta", "security"} {
		if _, ok := rec.collectors[source]; !ok {
			t.Errorf("recorder: collector %q never observed", source)
		}
	}
}

func TestRun_URLAudit_CollectorIsolation(t *testing.T) {
	// PSI is down; the page itself is fine.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/runPagespeed"):
			http.Error(w, "down", http.StatusBadGateway)
		case strings.HasPrefix(r.URL.Path, "/analyze"):
			_, _ = w.Write([]byte(`{"grade": "B"}`))
		case r.URL.Path == "/":
			_, _ = w.Write([]byte(pageBody))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	res, err := testRunner(srv, nil).Run(context.Background(), srv.URL+"/", types.AuditTypeURL)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if res.Pillars[0].Score != 0 {
		t.Errorf("performance with PSI down: got %d, want 0", res.Pillars[0].Score)
	}
	// SEO still scored from the live page fetch.
	seo := res.Pillars[1]
	if seo.ID != types.PillarSEO || seo.Score == 0 {
		t.Errorf("SEO must score independently of PSI: got %d", seo.Score)
	}
	if res.Raw.PageSpeed.Status != types.StatusError {
		t.Errorf("Raw.PageSpeed.Status: got %q, want error", res.Raw.PageSpeed.Status)
	}
}

func TestRun_GitHubAudit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/commits"):
			_, _ = w.Write([]byte(`[{"commit": {"committer": {"date": "` + time.Now().Add(-24*time.Hour).Format(time.RFC3339) + `"}}}]`))
		case strings.HasPrefix(r.URL.Path, "/repos/"):
			_, _ = w.Write([]byte(`{"default_branch": "main", "topics": ["go"]}`))
		case strings.HasSuffix(r.URL.Path, "/README.md"), strings.HasSuffix(r.URL.Path, "/LICENSE"):
			w.WriteHeader(http.StatusOK)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	res, err := testRunner(srv, nil).Run(context.Background(), "https://github.com/acme/rocket", types.AuditTypeGitHub)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// Repo audits report only the applicable pillars.
	if len(res.Pillars) != 2 {
		t.Fatalf("Pillars: got %d, want 2", len(res.Pillars))
	}
	if res.Pillars[0].ID != types.PillarRepoHealth {
		t.Errorf("Pillars[0].ID: got %q, want repo_health", res.Pillars[0].ID)
	}
	if res.Pillars[1].ID != types.PillarAIReadiness {
		t.Errorf("Pillars[1].ID: got %q, want ai_readiness", res.Pillars[1].ID)
	}
	if res.Meta != nil {
		t.Error("Meta must be nil for repo audits")
	}
	if res.Raw == nil || res.Raw.GitHub == nil {
		t.Fatal("Raw.GitHub must be set for repo audits")
	}
}

func TestRun_GitHubAudit_TotalFailureFiltersPillars(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	res, err := testRunner(srv, nil).Run(context.Background(), "https://github.com/ghost/gone", types.AuditTypeGitHub)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// Both pillars score 0 with no issues: inapplicable, filtered out.
	if len(res.Pillars) != 0 {
		t.Errorf("Pillars: got %d, want 0", len(res.Pillars))
	}
	if res.Raw.GitHub.Status != types.StatusError {
		t.Errorf("Raw.GitHub.Status: got %q, want error", res.Raw.GitHub.Status)
	}
}

func TestRun_InvalidTarget(t *testing.T) {
	r := New(collector.New(), nil)

	tests := []struct {
		name   string
		target string
		typ    types.AuditType
	}{
		{"no scheme", "example.com", types.AuditTypeURL},
		{"bad scheme", "ftp://example.com", types.AuditTypeURL},
		{"empty", "", types.AuditTypeURL},
		{"unknown type", "https://example.com", types.AuditType("bogus")},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := r.Run(context.Background(), tc.target, tc.typ); err == nil {
				t.Error("Run: expected error, got nil")
			}
		})
	}
}

func TestSettle_PanicBecomesErrorResult(t *testing.T) {
	var wg sync.WaitGroup
	var dst types.Result[types.MetaData]

	settle(&wg, nil, "meta", &dst, func() types.Result[types.MetaData] {
		panic("collector exploded")
	})
	wg.Wait()

	if dst.Status != types.StatusError {
		t.Fatalf("Status: got %q, want error", dst.Status)
	}
	if !strings.Contains(dst.Error, "collector exploded") {
		t.Errorf("Error: got %q, want the panic message", dst.Error)
	}
}
