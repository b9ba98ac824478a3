package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/auditkit/auditkit/internal/api"
	"github.com/auditkit/auditkit/internal/store"
	"github.com/auditkit/auditkit/pkg/types"
)

// --- test helpers -----------------------------------------------------------

// fakeAuditor returns a canned result, recording the last call.
type fakeAuditor struct {
	lastTarget string
	lastType   types.AuditType
	result     *types.AuditResult
	err        error
}

func (f *fakeAuditor) Run(_ context.Context, target string, typ types.AuditType) (*types.AuditResult, error) {
	f.lastTarget = target
	f.lastType = typ
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func auditResult(id, url string) *types.AuditResult {
	return &types.AuditResult{
		ID:        id,
		URL:       url,
		Type:      types.AuditTypeURL,
		AuditedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		Pillars: []types.PillarScore{
			{ID: types.PillarSEO, Label: "SEO", Score: 80, Issues: []types.AuditIssue{}},
			{ID: types.PillarSecurity, Label: "Security", Score: 60, Issues: []types.AuditIssue{}},
		},
	}
}

func newHandler(a api.Auditor, st *store.Store) http.Handler {
	return api.New(a, st, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func post(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	h.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("decode JSON: %v (body: %s)", err, rr.Body.String())
	}
}

// --- POST /api/v1/audits ----------------------------------------------------

func TestRunAudit(t *testing.T) {
	st := store.New(time.Hour)
	a := &fakeAuditor{result: auditResult("run-1", "https://example.com")}
	h := newHandler(a, st)

	rr := post(t, h, "/api/v1/audits", `{"url": "https://example.com", "type": "url"}`)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want 201 (body: %s)", rr.Code, rr.Body.String())
	}
	if a.lastTarget != "https://example.com" || a.lastType != types.AuditTypeURL {
		t.Errorf("auditor called with %q/%q", a.lastTarget, a.lastType)
	}

	var resp types.AuditResult
	decode(t, rr, &resp)
	if resp.ID != "run-1" {
		t.Errorf("ID: got %q, want run-1", resp.ID)
	}

	// The result must now be retrievable from the store.
	if _, ok := st.Get("run-1"); !ok {
		t.Error("store: run-1 not cached after POST")
	}
}

func TestRunAudit_InfersType(t *testing.T) {
	tests := []struct {
		url  string
		want types.AuditType
	}{
		{"https://github.com/acme/rocket", types.AuditTypeGitHub},
		{"https://example.com", types.AuditTypeURL},
	}

	for _, tc := range tests {
		a := &fakeAuditor{result: auditResult("run", tc.url)}
		h := newHandler(a, store.New(time.Hour))

		post(t, h, "/api/v1/audits", `{"url": "`+tc.url+`"}`)

		if a.lastType != tc.want {
			t.Errorf("inferred type for %q: got %q, want %q", tc.url, a.lastType, tc.want)
		}
	}
}

func TestRunAudit_BadRequests(t *testing.T) {
	h := newHandler(&fakeAuditor{}, store.New(time.Hour))

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{not json`},
		{"missing url", `{"type": "url"}`},
		{"bad type", `{"url": "https://example.com", "type": "ftp"}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := post(t, h, "/api/v1/audits", tc.body)
			if rr.Code != http.StatusBadRequest {
				t.Errorf("status: got %d, want 400", rr.Code)
			}
		})
	}
}

func TestRunAudit_AuditorError(t *testing.T) {
	a := &fakeAuditor{err: errors.New(`audit: target "x" is not an absolute http(s) URL`)}
	h := newHandler(a, store.New(time.Hour))

	rr := post(t, h, "/api/v1/audits", `{"url": "https://example.com"}`)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", rr.Code)
	}
	var resp map[string]string
	decode(t, rr, &resp)
	if resp["error"] == "" {
		t.Error("error body must carry the message")
	}
}

// --- GET /api/v1/audits -----------------------------------------------------

func TestListAudits(t *testing.T) {
	st := store.New(time.Hour)
	st.Put(auditResult("run-1", "https://a.example"))
	st.Put(auditResult("run-2", "https://b.example"))
	h := newHandler(&fakeAuditor{}, st)

	rr := get(t, h, "/api/v1/audits")

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	var resp []api.AuditSummary
	decode(t, rr, &resp)
	if len(resp) != 2 {
		t.Fatalf("summaries: got %d, want 2", len(resp))
	}
	// Average of the two canned pillars (80 and 60).
	if resp[0].AverageScore != 70 {
		t.Errorf("AverageScore: got %v, want 70", resp[0].AverageScore)
	}
	if resp[0].PillarCount != 2 {
		t.Errorf("PillarCount: got %d, want 2", resp[0].PillarCount)
	}
}

func TestListAudits_Empty(t *testing.T) {
	h := newHandler(&fakeAuditor{}, store.New(time.Hour))

	rr := get(t, h, "/api/v1/audits")

	if strings.TrimSpace(rr.Body.String()) != "[]" {
		t.Errorf("empty list must encode as []: got %s", rr.Body.String())
	}
}

// --- GET /api/v1/audits/{id} ------------------------------------------------

func TestGetAudit(t *testing.T) {
	st := store.New(time.Hour)
	st.Put(auditResult("run-1", "https://example.com"))
	h := newHandler(&fakeAuditor{}, st)

	rr := get(t, h, "/api/v1/audits/run-1")

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	var resp types.AuditResult
	decode(t, rr, &resp)
	if resp.ID != "run-1" {
		t.Errorf("ID: got %q, want run-1", resp.ID)
	}
	if len(resp.Pillars) != 2 {
		t.Errorf("Pillars: got %d, want 2", len(resp.Pillars))
	}
}

func TestGetAudit_NotFound(t *testing.T) {
	h := newHandler(&fakeAuditor{}, store.New(time.Hour))

	rr := get(t, h, "/api/v1/audits/ghost")

	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", rr.Code)
	}
}

// --- misc -------------------------------------------------------------------

func TestHealth(t *testing.T) {
	st := store.New(time.Hour)
	st.Put(auditResult("run-1", "https://example.com"))
	h := newHandler(&fakeAuditor{}, st)

	rr := get(t, h, "/api/v1/health")

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	var resp api.HealthResponse
	decode(t, rr, &resp)
	if resp.Status != "ok" {
		t.Errorf("Status: got %q, want ok", resp.Status)
	}
	if resp.AuditCount != 1 {
		t.Errorf("AuditCount: got %d, want 1", resp.AuditCount)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h := newHandler(&fakeAuditor{}, store.New(time.Hour))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/api/v1/audits", nil))

	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("status: got %d, want 405", rr.Code)
	}
}
