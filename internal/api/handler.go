// Package api is the HTTP surface for running audits and reading cached
// results. All endpoints speak JSON under /api/v1/.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/auditkit/auditkit/internal/store"
	"github.com/auditkit/auditkit/pkg/types"
)

// Auditor runs one audit end to end. Satisfied by audit.Runner.
type Auditor interface {
	Run(ctx context.Context, target string, typ types.AuditType) (*types.AuditResult, error)
}

// Handler is the HTTP handler for all /api/v1/* endpoints. It runs audits
// through the Auditor and reads cached results from the store.
type Handler struct {
	auditor Auditor
	store   *store.Store
	logger  *slog.Logger
	mux     *http.ServeMux
}

// New creates a Handler wired to the given auditor and store and registers
// all routes.
func New(a Auditor, st *store.Store, logger *slog.Logger) http.Handler {
	h := &Handler{auditor: a, store: st, logger: logger, mux: http.NewServeMux()}

	h.mux.HandleFunc("/api/v1/health", h.health)
	h.mux.HandleFunc("/api/v1/audits", h.audits)
	h.mux.HandleFunc("/api/v1/audits/", h.getAudit) // subtree — extracts {id}

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// --- route handlers ---------------------------------------------------------

// health returns GET /api/v1/health — liveness plus the cached audit count.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, HealthResponse{
		Status:     "ok",
		AuditCount: h.store.Count(),
	})
}

// audits dispatches /api/v1/audits by method: POST runs a new audit,
// GET lists cached ones.
func (h *Handler) audits(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.runAudit(w, r)
	case http.MethodGet:
		h.listAudits(w, r)
	default:
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// runAudit handles POST /api/v1/audits — runs an audit synchronously and
// returns the full result.
func (h *Handler) runAudit(w http.ResponseWriter, r *http.Request) {
	var req auditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonErr(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.URL == "" {
		jsonErr(w, http.StatusBadRequest, "url is required")
		return
	}
	typ := req.Type
	if typ == "" {
		typ = inferType(req.URL)
	}
	if typ != types.AuditTypeURL && typ != types.AuditTypeGitHub {
		jsonErr(w, http.StatusBadRequest, "type must be url or github")
		return
	}

	result, err := h.auditor.Run(r.Context(), req.URL, typ)
	if err != nil {
		h.logger.Warn("audit rejected", "url", req.URL, "type", typ, "error", err)
		jsonErr(w, http.StatusBadRequest, err.Error())
		return
	}

	h.store.Put(result)
	h.logger.Info("audit completed",
		"id", result.ID, "url", result.URL, "type", result.Type,
		"pillars", len(result.Pillars))
	jsonResp(w, http.StatusCreated, result)
}

// listAudits handles GET /api/v1/audits — summaries of all cached audits,
// newest first.
func (h *Handler) listAudits(w http.ResponseWriter, _ *http.Request) {
	jsonResp(w, http.StatusOK, BuildSummaries(h.store))
}

// BuildSummaries maps all cached audits to their list representation, newest
// first. Shared with the ws broadcast loop.
func BuildSummaries(st *store.Store) []AuditSummary {
	entries := st.List()
	out := make([]AuditSummary, 0, len(entries))
	for _, e := range entries {
		out = append(out, toSummary(e.Result))
	}
	return out
}

// getAudit returns GET /api/v1/audits/{id} — one full cached result.
func (h *Handler) getAudit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/v1/audits/")
	if id == "" {
		// Redirect bare /api/v1/audits/ to list handler.
		h.listAudits(w, r)
		return
	}

	e, ok := h.store.Get(id)
	if !ok {
		jsonErr(w, http.StatusNotFound, "audit not found")
		return
	}
	jsonResp(w, http.StatusOK, e.Result)
}

// --- helpers ----------------------------------------------------------------

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}

// inferType picks an audit type from the target when the request omits one.
func inferType(url string) types.AuditType {
	if strings.Contains(url, "github.com/") {
		return types.AuditTypeGitHub
	}
	return types.AuditTypeURL
}

// toSummary maps a full result to its list representation.
func toSummary(r *types.AuditResult) AuditSummary {
	s := AuditSummary{
		ID:          r.ID,
		URL:         r.URL,
		Type:        r.Type,
		AuditedAt:   r.AuditedAt.UTC().Format(time.RFC3339),
		PillarCount: len(r.Pillars),
	}
	if len(r.Pillars) > 0 {
		var total int
		for _, p := range r.Pillars {
			total += p.Score
		}
		s.AverageScore = float64(total) / float64(len(r.Pillars))
	}
	return s
}
