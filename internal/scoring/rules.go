package scoring

import (
	"strings"

	"github.com/auditkit/auditkit/pkg/types"
)

// rule is one threshold check in a pillar's rule table: a predicate on
// the normalized payload, the issue it raises, and the fixed penalty it
// subtracts. Rules are independent — every rule in a table runs
// regardless of which earlier rules triggered.
type rule[T any] struct {
	match   func(*T) bool
	penalty int
	issue   func(*T) types.AuditIssue
}

// evaluate applies rules to data in table order, starting the running
// score at start. The score may overshoot past 0 or 100 during
// accumulation; callers clamp once at the end via pillar().
func evaluate[T any](start int, data *T, rules []rule[T]) (int, []types.AuditIssue) {
	score := start
	issues := make([]types.AuditIssue, 0, len(rules))
	for _, r := range rules {
		if !r.match(data) {
			continue
		}
		issues = append(issues, r.issue(data))
		score -= r.penalty
	}
	return score, issues
}

// pillar builds the final PillarScore, clamping the accumulated score to
// [0,100]. A nil issue slice is normalized to an empty one so the JSON
// form is always an array.
func pillar(id types.PillarID, label string, score int, issues []types.AuditIssue) types.PillarScore {
	if issues == nil {
		issues = []types.AuditIssue{}
	}
	return types.PillarScore{ID: id, Label: label, Score: clamp(score), Issues: issues}
}

// emptyPillar reports a pillar with no usable input data: score 0 and no
// issues.
func emptyPillar(id types.PillarID, label string) types.PillarScore {
	return types.PillarScore{ID: id, Label: label, Score: 0, Issues: []types.AuditIssue{}}
}

// clamp restricts score to [0, 100].
func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// slug lowercases s and collapses whitespace runs into single hyphens,
// producing a stable issue-id fragment from a human title.
func slug(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), "-")
}
