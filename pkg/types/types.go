// Package types defines the shared audit data model: collector result
// wrappers, per-source payloads, pillar scores, issues, and the final
// AuditResult. These are the canonical structures handed to downstream
// consumers (report generators, the HTTP API, the websocket feed).
package types

import "time"

// Status is the tagged outcome of one collector invocation.
type Status string

const (
	// StatusOK means the collector produced a usable payload.
	StatusOK Status = "ok"

	// StatusError means transport, parse, or deadline failure.
	StatusError Status = "error"

	// StatusSkipped means the source was reachable but had no usable
	// signal (e.g. insufficient real-user traffic for field data).
	StatusSkipped Status = "skipped"
)

// Result wraps the outcome of one collector call.
// Data is non-nil if and only if Status is StatusOK.
type Result[T any] struct {
	Status     Status `json:"status"`
	Data       *T     `json:"data,omitempty"`
	Error      string `json:"error,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

// Severity classifies how urgent an issue is.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// PillarID identifies one audited dimension.
type PillarID string

const (
	PillarPerformance    PillarID = "performance"
	PillarSEO            PillarID = "seo"
	PillarAccessibility  PillarID = "accessibility"
	PillarSecurity       PillarID = "security"
	PillarStructuredData PillarID = "structured-data"
	PillarAIReadiness    PillarID = "ai-readiness"
	PillarRepoHealth     PillarID = "repo-health"
)

// AuditType selects which collector set an audit runs.
type AuditType string

const (
	AuditTypeURL    AuditType = "url"
	AuditTypeGitHub AuditType = "github"
)

// AuditIssue is one scored finding surfaced to the end user.
// ID is stable for a given triggering condition, so re-scoring the same
// input yields the same issue list.
type AuditIssue struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`

	// Fix is a one-line remediation instruction.
	Fix string `json:"fix,omitempty"`

	// Snippet is a code or config example.
	Snippet string `json:"snippet,omitempty"`

	// Docs links to relevant documentation.
	Docs string `json:"docs,omitempty"`

	Pillar PillarID `json:"pillar"`
}

// PillarScore is the scored outcome of one pillar. Issues keep the order
// the scoring function emitted them in. A score of 0 with no issues means
// the pillar had no usable input data, as opposed to a genuinely poor
// score, which always carries issues.
type PillarScore struct {
	ID     PillarID     `json:"id"`
	Label  string       `json:"label"`
	Score  int          `json:"score"`
	Issues []AuditIssue `json:"issues"`
}

// PageSpeedData holds lab metrics from the PageSpeed Insights API.
// All timing fields are milliseconds.
type PageSpeedData struct {
	PerformanceScore int     `json:"performance_score"`
	FCP              float64 `json:"fcp"`
	LCP              float64 `json:"lcp"`
	CLS              float64 `json:"cls"`
	TBT              float64 `json:"tbt"`
	TTFB             float64 `json:"ttfb"`
	SpeedIndex       float64 `json:"speed_index"`

	Opportunities []Opportunity `json:"opportunities"`
	Diagnostics   []Diagnostic  `json:"diagnostics"`
}

// Opportunity is one Lighthouse improvement suggestion with its estimated
// saving in milliseconds.
type Opportunity struct {
	Title   string  `json:"title"`
	Savings float64 `json:"savings"`
}

// Diagnostic is one informative Lighthouse audit that did not pass.
type Diagnostic struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// CrUXRating is the Core Web Vitals bucket for a field metric.
type CrUXRating string

const (
	RatingGood             CrUXRating = "good"
	RatingNeedsImprovement CrUXRating = "needs-improvement"
	RatingPoor             CrUXRating = "poor"
)

// CrUXMetric is one real-user metric: p75 value plus its rating bucket.
type CrUXMetric struct {
	P75    float64    `json:"p75"`
	Rating CrUXRating `json:"rating"`
}

// CrUXData holds real-user (field) Core Web Vitals for an origin.
type CrUXData struct {
	LCP CrUXMetric `json:"lcp"`
	CLS CrUXMetric `json:"cls"`
	INP CrUXMetric `json:"inp"`
	FCP CrUXMetric `json:"fcp"`
}

// MetaData is the parsed snapshot of a page's head metadata plus the
// results of the sibling well-known-file probes.
type MetaData struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Canonical   string `json:"canonical,omitempty"`
	Robots      string `json:"robots,omitempty"`

	OGTitle       string `json:"og_title,omitempty"`
	OGDescription string `json:"og_description,omitempty"`
	OGImage       string `json:"og_image,omitempty"`
	TwitterCard   string `json:"twitter_card,omitempty"`

	HasViewport         bool     `json:"has_viewport"`
	HasHreflang         bool     `json:"has_hreflang"`
	HasStructuredData   bool     `json:"has_structured_data"`
	StructuredDataTypes []string `json:"structured_data_types,omitempty"`

	HasSitemap   bool `json:"has_sitemap"`
	HasRobotsTxt bool `json:"has_robots_txt"`
	HasLlmsTxt   bool `json:"has_llms_txt"`
	HasAgentsMd  bool `json:"has_agents_md"`

	ResponseTimeMs int64 `json:"response_time_ms"`
	StatusCode     int   `json:"status_code"`
}

// SecurityData holds the HTTP security posture of a site: direct header
// probe results plus the Mozilla Observatory grade when available.
type SecurityData struct {
	// Grade is the Observatory letter grade (A+ to F); empty when the
	// Observatory scan was unavailable.
	Grade string `json:"grade,omitempty"`

	Headers SecurityHeaders `json:"headers"`

	// Missing lists absent security headers in check order.
	Missing []string `json:"missing"`

	SSLValid bool `json:"ssl_valid"`
}

// SecurityHeaders holds the raw values of the probed response headers.
// Empty string means the header was not present.
type SecurityHeaders struct {
	CSP                 string `json:"csp,omitempty"`
	HSTS                string `json:"hsts,omitempty"`
	XFrameOptions       string `json:"x_frame_options,omitempty"`
	XContentTypeOptions string `json:"x_content_type_options,omitempty"`
	ReferrerPolicy      string `json:"referrer_policy,omitempty"`
	PermissionsPolicy   string `json:"permissions_policy,omitempty"`
}

// AccessibilityViolation is one axe-core rule violation.
type AccessibilityViolation struct {
	ID          string `json:"id"`
	Impact      string `json:"impact"` // critical | serious | moderate | minor
	Description string `json:"description"`
	Nodes       int    `json:"nodes"`
	HelpURL     string `json:"help_url"`
}

// AccessibilityData holds axe-shaped accessibility scan results.
type AccessibilityData struct {
	Violations []AccessibilityViolation `json:"violations"`
	WCAGLevel  string                   `json:"wcag_level"`
}

// GitHubData is the repository metadata and file-presence snapshot for a
// GitHub repo audit.
type GitHubData struct {
	Owner       string `json:"owner"`
	Repo        string `json:"repo"`
	Description string `json:"description,omitempty"`

	Stars         int    `json:"stars"`
	Forks         int    `json:"forks"`
	OpenIssues    int    `json:"open_issues"`
	License       string `json:"license,omitempty"`
	DefaultBranch string `json:"default_branch"`

	HasReadme        bool `json:"has_readme"`
	HasLicense       bool `json:"has_license"`
	HasContributing  bool `json:"has_contributing"`
	HasCodeOfConduct bool `json:"has_code_of_conduct"`
	HasSecurity      bool `json:"has_security"`
	HasCodeowners    bool `json:"has_codeowners"`

	HasAgentsMd            bool `json:"has_agents_md"`
	HasClaude              bool `json:"has_claude"`
	HasGemini              bool `json:"has_gemini"`
	HasCopilotInstructions bool `json:"has_copilot_instructions"`
	HasLlmsTxt             bool `json:"has_llms_txt"`

	HasGithubWorkflows  bool `json:"has_github_workflows"`
	HasDependabot       bool `json:"has_dependabot"`
	HasBranchProtection bool `json:"has_branch_protection"`
	HasIssueTemplates   bool `json:"has_issue_templates"`
	HasPrTemplate       bool `json:"has_pr_template"`

	TopicsCount         int    `json:"topics_count"`
	LatestRelease       string `json:"latest_release,omitempty"`
	DaysSinceLastCommit int    `json:"days_since_last_commit"`
}

// RawResults carries the per-source collector outcomes attached to an
// AuditResult for diagnostics and report regeneration.
type RawResults struct {
	PageSpeed     *Result[PageSpeedData]     `json:"pagespeed,omitempty"`
	CrUX          *Result[CrUXData]          `json:"crux,omitempty"`
	Security      *Result[SecurityData]      `json:"security,omitempty"`
	Accessibility *Result[AccessibilityData] `json:"accessibility,omitempty"`
	GitHub        *Result[GitHubData]        `json:"github,omitempty"`
}

// AuditResult is the complete outcome of one audit run. It is immutable
// once assembled; callers must not modify it after receiving it.
type AuditResult struct {
	// ID is the unique run identifier, used for retrieval and log
	// correlation.
	ID string `json:"id"`

	URL       string    `json:"url"`
	Type      AuditType `json:"type"`
	AuditedAt time.Time `json:"audited_at"`

	// Pillars holds one entry per pillar relevant to the audit type, in
	// a fixed order per type.
	Pillars []PillarScore `json:"pillars"`

	// Meta is the normalized page metadata snapshot (URL audits only).
	Meta *MetaData `json:"meta,omitempty"`

	// Raw holds the per-source collector outcomes.
	Raw *RawResults `json:"raw,omitempty"`
}
