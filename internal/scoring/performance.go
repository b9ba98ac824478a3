package scoring

import (
	"fmt"

	"github.com/auditkit/auditkit/pkg/types"
)

const performanceLabel = "Performance"

// Core Web Vitals thresholds (milliseconds unless noted). The "poor"
// threshold marks a critical issue; the lower one marks needs-improvement.
const (
	lcpPoorMs      = 4000
	lcpSlowMs      = 2500
	clsPoor        = 0.25 // unitless score
	clsHigh        = 0.1
	ttfbSlowMs     = 800
	ttfbCriticalMs = 1800
	tbtHighMs      = 600
)

// labRules is the ordered rule table applied to PageSpeed lab metrics.
// The baseline is the vendor's own 0-100 performance score, which already
// encodes many weighted factors; these rules layer explicit Core Web
// Vitals findings on top.
var labRules = []rule[types.PageSpeedData]{
	{
		match:   func(d *types.PageSpeedData) bool { return d.LCP > lcpPoorMs },
		penalty: 20,
		issue: func(d *types.PageSpeedData) types.AuditIssue {
			return types.AuditIssue{
				ID:          "lcp-poor",
				Title:       "Largest Contentful Paint is too slow",
				Description: fmt.Sprintf("LCP is %.1fs (target: < 2.5s). This is a Core Web Vital.", d.LCP/1000),
				Severity:    types.SeverityCritical,
				Fix:         "Preload the hero image, serve it from a CDN, and use modern formats (WebP/AVIF).",
				Pillar:      types.PillarPerformance,
			}
		},
	},
	{
		match:   func(d *types.PageSpeedData) bool { return d.LCP > lcpSlowMs && d.LCP <= lcpPoorMs },
		penalty: 10,
		issue: func(d *types.PageSpeedData) types.AuditIssue {
			return types.AuditIssue{
				ID:          "lcp-needs-improvement",
				Title:       "LCP needs improvement",
				Description: fmt.Sprintf("LCP is %.1fs (target: < 2.5s).", d.LCP/1000),
				Severity:    types.SeverityWarning,
				Fix:         "Add `<link rel=\"preload\">` for the LCP image and enable CDN caching.",
				Pillar:      types.PillarPerformance,
			}
		},
	},
	{
		match:   func(d *types.PageSpeedData) bool { return d.CLS > clsPoor },
		penalty: 15,
		issue: func(d *types.PageSpeedData) types.AuditIssue {
			return types.AuditIssue{
				ID:          "cls-poor",
				Title:       "Cumulative Layout Shift is too high",
				Description: fmt.Sprintf("CLS is %.3f (target: < 0.1). Users see unexpected layout jumps.", d.CLS),
				Severity:    types.SeverityCritical,
				Fix:         "Set explicit width/height on images and embeds. Reserve space for ads/dynamic content.",
				Pillar:      types.PillarPerformance,
			}
		},
	},
	{
		match:   func(d *types.PageSpeedData) bool { return d.CLS > clsHigh && d.CLS <= clsPoor },
		penalty: 8,
		issue: func(d *types.PageSpeedData) types.AuditIssue {
			return types.AuditIssue{
				ID:          "cls-warning",
				Title:       "CLS needs improvement",
				Description: fmt.Sprintf("CLS is %.3f (target: < 0.1).", d.CLS),
				Severity:    types.SeverityWarning,
				Fix:         "Set explicit dimensions on all media elements.",
				Pillar:      types.PillarPerformance,
			}
		},
	},
	{
		match:   func(d *types.PageSpeedData) bool { return d.TTFB > ttfbSlowMs },
		penalty: 10,
		issue: func(d *types.PageSpeedData) types.AuditIssue {
			sev := types.SeverityWarning
			if d.TTFB > ttfbCriticalMs {
				sev = types.SeverityCritical
			}
			return types.AuditIssue{
				ID:          "ttfb-slow",
				Title:       "Slow server response time (TTFB)",
				Description: fmt.Sprintf("TTFB is %.0fms (target: < 200ms).", d.TTFB),
				Severity:    sev,
				Fix:         "Enable server-side caching, use a CDN, or upgrade hosting tier.",
				Pillar:      types.PillarPerformance,
			}
		},
	},
	{
		match:   func(d *types.PageSpeedData) bool { return d.TBT > tbtHighMs },
		penalty: 15,
		issue: func(d *types.PageSpeedData) types.AuditIssue {
			return types.AuditIssue{
				ID:          "tbt-high",
				Title:       "High Total Blocking Time",
				Description: fmt.Sprintf("TBT is %.0fms (target: < 200ms). JavaScript is blocking the main thread.", d.TBT),
				Severity:    types.SeverityCritical,
				Fix:         "Split large JS bundles, defer non-critical scripts, and remove unused code.",
				Pillar:      types.PillarPerformance,
			}
		},
	},
}

// fieldRules applies real-user (CrUX) findings. Evaluated only when field
// data is present; its absence carries no penalty.
var fieldRules = []rule[types.CrUXData]{
	{
		match:   func(d *types.CrUXData) bool { return d.INP.Rating == types.RatingPoor },
		penalty: 15,
		issue: func(d *types.CrUXData) types.AuditIssue {
			return types.AuditIssue{
				ID:          "inp-poor",
				Title:       "Poor Interaction to Next Paint (real users)",
				Description: fmt.Sprintf("Real-user INP p75: %.0fms (target: < 200ms). This affects your Google Search ranking.", d.INP.P75),
				Severity:    types.SeverityCritical,
				Fix:         "Reduce JavaScript execution time on interaction handlers and use `startTransition` for non-urgent updates.",
				Pillar:      types.PillarPerformance,
			}
		},
	},
}

// Performance scores the performance pillar from lab metrics, enriched by
// real-user field data when available. Unlike the rule-derived pillars,
// the baseline here is the vendor-supplied 0-100 performance score.
func Performance(pagespeed types.Result[types.PageSpeedData], crux types.Result[types.CrUXData]) types.PillarScore {
	if pagespeed.Data == nil {
		return emptyPillar(types.PillarPerformance, performanceLabel)
	}

	d := pagespeed.Data
	score, issues := evaluate(d.PerformanceScore, d, labRules)

	// Surface the top Lighthouse opportunities as issues. Informational
	// only — no score penalty.
	for i, opp := range d.Opportunities {
		if i >= 3 {
			break
		}
		sev := types.SeverityInfo
		if opp.Savings > 1000 {
			sev = types.SeverityWarning
		}
		issues = append(issues, types.AuditIssue{
			ID:          "opp-" + slug(opp.Title),
			Title:       opp.Title,
			Description: fmt.Sprintf("Potential saving: %.1fs", opp.Savings/1000),
			Severity:    sev,
			Pillar:      types.PillarPerformance,
		})
	}

	if crux.Data != nil {
		var fieldIssues []types.AuditIssue
		score, fieldIssues = evaluate(score, crux.Data, fieldRules)
		issues = append(issues, fieldIssues...)
	}

	return pillar(types.PillarPerformance, performanceLabel, score, issues)
}
