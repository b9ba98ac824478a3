package scoring

import (
	"fmt"

	"github.com/auditkit/auditkit/pkg/types"
)

const accessibilityLabel = "Accessibility"

const (
	criticalViolationPenalty = 15
	minorViolationPenalty    = 5
)

// Accessibility scores the accessibility pillar from axe-shaped scan
// results. The default URL audit has no accessibility collector (axe
// needs a real browser), so this pillar usually reports zero; callers
// that run their own scan can still feed results through here.
func Accessibility(data types.Result[types.AccessibilityData]) types.PillarScore {
	if data.Data == nil {
		return emptyPillar(types.PillarAccessibility, accessibilityLabel)
	}

	score := 100
	issues := make([]types.AuditIssue, 0, len(data.Data.Violations))

	for _, v := range data.Data.Violations {
		sev := types.SeverityWarning
		penalty := minorViolationPenalty
		if v.Impact == "critical" || v.Impact == "serious" {
			sev = types.SeverityCritical
			penalty = criticalViolationPenalty
		}
		issues = append(issues, types.AuditIssue{
			ID:          "a11y-" + v.ID,
			Title:       v.Description,
			Description: fmt.Sprintf("%d element%s affected. WCAG violation.", v.Nodes, plural(v.Nodes)),
			Severity:    sev,
			Docs:        v.HelpURL,
			Fix:         fmt.Sprintf("See axe docs: %s", v.HelpURL),
			Pillar:      types.PillarAccessibility,
		})
		score -= penalty
	}

	return pillar(types.PillarAccessibility, accessibilityLabel, score, issues)
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
