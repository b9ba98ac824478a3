package api

import "github.com/auditkit/auditkit/pkg/types"

// auditRequest is the body for POST /api/v1/audits.
type auditRequest struct {
	URL  string          `json:"url"`
	Type types.AuditType `json:"type,omitempty"`
}

// AuditSummary is one audit entry in GET /api/v1/audits.
type AuditSummary struct {
	ID           string          `json:"id"`
	URL          string          `json:"url"`
	Type         types.AuditType `json:"type"`
	AuditedAt    string          `json:"audited_at"` // RFC3339
	PillarCount  int             `json:"pillar_count"`
	AverageScore float64         `json:"average_score"`
}

// HealthResponse is the payload for GET /api/v1/health.
type HealthResponse struct {
	Status     string `json:"status"`
	AuditCount int    `json:"audit_count"`
}

// errorResponse is a generic JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}
