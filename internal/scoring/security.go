package scoring

import (
	"fmt"
	"strings"

	"github.com/auditkit/auditkit/pkg/types"
)

const securityLabel = "Security"

// Per-header penalties. CSP and HSTS are the two headers whose absence is
// treated as critical.
const (
	noHTTPSPenalty        = 40
	criticalHeaderPenalty = 15
	warningHeaderPenalty  = 8
)

func isCriticalHeader(name string) bool {
	return name == "Content-Security-Policy" || name == "Strict-Transport-Security"
}

// headerIssueID derives a stable issue id from a header name:
// "X-Frame-Options" -> "missing-x-frame-options".
func headerIssueID(name string) string {
	var b strings.Builder
	b.WriteString("missing-")
	for _, r := range strings.ToLower(name) {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		} else {
			b.WriteByte('-')
		}
	}
	return b.String()
}

// Security scores the security pillar from the header probe results and
// the Observatory grade. Missing headers are scored per entry in probe
// order. The grade check compares lexically against "B" and "C", so in
// practice only A-family grades produce the observatory-low finding; it
// never carries a penalty, since the individual header findings already
// account for it.
func Security(sec types.Result[types.SecurityData]) types.PillarScore {
	if sec.Data == nil {
		return emptyPillar(types.PillarSecurity, securityLabel)
	}

	d := sec.Data
	score := 100
	issues := make([]types.AuditIssue, 0, len(d.Missing)+2)

	if !d.SSLValid {
		issues = append(issues, types.AuditIssue{
			ID:          "no-https",
			Title:       "Site not served over HTTPS",
			Description: "The site is served over HTTP. All traffic is unencrypted.",
			Severity:    types.SeverityCritical,
			Fix:         "Install an SSL certificate and redirect all HTTP traffic to HTTPS.",
			Pillar:      types.PillarSecurity,
		})
		score -= noHTTPSPenalty
	}

	for _, header := range d.Missing {
		sev := types.SeverityWarning
		penalty := warningHeaderPenalty
		if isCriticalHeader(header) {
			sev = types.SeverityCritical
			penalty = criticalHeaderPenalty
		}
		issues = append(issues, types.AuditIssue{
			ID:          headerIssueID(header),
			Title:       fmt.Sprintf("Missing %s header", header),
			Description: fmt.Sprintf("The %s security header is not set.", header),
			Severity:    sev,
			Fix:         fmt.Sprintf("Add %s to your server response headers.", header),
			Pillar:      types.PillarSecurity,
		})
		score -= penalty
	}

	if d.Grade != "" && d.Grade < "B" {
		sev := types.SeverityWarning
		if d.Grade < "C" {
			sev = types.SeverityCritical
		}
		issues = append(issues, types.AuditIssue{
			ID:          "observatory-low",
			Title:       fmt.Sprintf("Mozilla Observatory grade: %s", d.Grade),
			Description: fmt.Sprintf("Security header score is %s. A grade of A or higher is recommended.", d.Grade),
			Severity:    sev,
			Pillar:      types.PillarSecurity,
		})
	}

	return pillar(types.PillarSecurity, securityLabel, score, issues)
}
