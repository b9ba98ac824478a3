package collector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"sort"
	"time"

	"github.com/auditkit/auditkit/pkg/types"
)

// Lighthouse audit keys for the timing metrics we extract.
const (
	auditFCP        = "first-contentful-paint"
	auditLCP        = "largest-contentful-paint"
	auditCLS        = "cumulative-layout-shift"
	auditTBT        = "total-blocking-time"
	auditTTFB       = "server-response-time"
	auditSpeedIndex = "speed-index"
)

// Opportunities below this estimated saving are noise and dropped.
const minOpportunitySavingsMs = 200

// Caps on the number of opportunities/diagnostics carried in the payload.
const (
	maxOpportunities = 5
	maxDiagnostics   = 5
)

// psiResponse is the subset of the PageSpeed Insights v5 response we use.
type psiResponse struct {
	LighthouseResult  *psiLighthouse `json:"lighthouseResult"`
	LoadingExperience *psiField      `json:"loadingExperience"`
}

type psiLighthouse struct {
	Categories psiCategories       `json:"categories"`
	Audits     map[string]psiAudit `json:"audits"`
}

type psiCategories struct {
	Performance struct {
		Score float64 `json:"score"`
	} `json:"performance"`
}

type psiAudit struct {
	Title            string          `json:"title"`
	Description      string          `json:"description"`
	Score            *float64        `json:"score"`
	ScoreDisplayMode string          `json:"scoreDisplayMode"`
	NumericValue     float64         `json:"numericValue"`
	Details          *psiAuditDetail `json:"details"`
}

type psiAuditDetail struct {
	Type             string  `json:"type"`
	OverallSavingsMs float64 `json:"overallSavingsMs"`
}

// psiField is the loadingExperience block: real-user CrUX data embedded
// in every PSI response.
type psiField struct {
	OverallCategory string                    `json:"overall_category"`
	Metrics         map[string]psiFieldMetric `json:"metrics"`
}

type psiFieldMetric struct {
	Percentile75 float64            `json:"percentile_75"`
	Percentiles  map[string]float64 `json:"percentiles"`
	Histogram    []psiHistogramBin  `json:"histogram"`
}

type psiHistogramBin struct {
	Start   float64 `json:"start"`
	Density float64 `json:"density"`
}

// CollectPageSpeed queries the PageSpeed Insights public API (keyless,
// ~1 req/sec per IP) for lab metrics on pageURL.
func (c *Client) CollectPageSpeed(ctx context.Context, pageURL string) types.Result[types.PageSpeedData] {
	start := time.Now()

	psi, err := c.fetchPSI(ctx, pageURL)
	if err != nil {
		var se *statusError
		if errors.As(err, &se) {
			return errResult[types.PageSpeedData](fmt.Sprintf("PageSpeed API %d", se.Code), start)
		}
		slog.Warn("collector: pagespeed fetch failed", "url", pageURL, "err", err)
		return errResult[types.PageSpeedData](err.Error(), start)
	}

	data := &types.PageSpeedData{}
	if lr := psi.LighthouseResult; lr != nil {
		data.PerformanceScore = int(math.Round(lr.Categories.Performance.Score * 100))
		data.FCP = lr.Audits[auditFCP].NumericValue
		data.LCP = lr.Audits[auditLCP].NumericValue
		data.CLS = lr.Audits[auditCLS].NumericValue
		data.TBT = lr.Audits[auditTBT].NumericValue
		data.TTFB = lr.Audits[auditTTFB].NumericValue
		data.SpeedIndex = lr.Audits[auditSpeedIndex].NumericValue
		data.Opportunities, data.Diagnostics = extractFindings(lr.Audits)
	}

	return okResult(data, start)
}

// fetchPSI issues the shared PSI request and decodes the response. Used
// by both the lab-metrics and field-data adapters.
func (c *Client) fetchPSI(ctx context.Context, pageURL string) (*psiResponse, error) {
	params := url.Values{}
	params.Set("url", pageURL)
	params.Set("strategy", "mobile")
	if c.creds.PSIKey != "" {
		params.Set("key", c.creds.PSIKey)
	}

	var psi psiResponse
	endpoint := c.psiBase + "/runPagespeed?" + params.Encode()
	if err := c.getJSON(ctx, endpoint, psiDeadline, nil, &psi); err != nil {
		return nil, err
	}
	return &psi, nil
}

// extractFindings pulls improvement opportunities (sorted by estimated
// saving, largest first) and informative diagnostics out of the audit
// map. Both lists are sorted before truncation so the payload is
// deterministic regardless of map iteration order.
func extractFindings(audits map[string]psiAudit) ([]types.Opportunity, []types.Diagnostic) {
	var opps []types.Opportunity
	var diags []types.Diagnostic

	for key, a := range audits {
		if a.Details != nil && a.Details.Type == "opportunity" && a.Details.OverallSavingsMs > minOpportunitySavingsMs {
			title := a.Title
			if title == "" {
				title = key
			}
			opps = append(opps, types.Opportunity{Title: title, Savings: a.Details.OverallSavingsMs})
		}
		if a.ScoreDisplayMode == "informative" && a.Description != "" && (a.Score == nil || *a.Score != 1) {
			title := a.Title
			if title == "" {
				title = key
			}
			diags = append(diags, types.Diagnostic{Title: title, Description: a.Description})
		}
	}

	sort.Slice(opps, func(i, j int) bool {
		if opps[i].Savings != opps[j].Savings {
			return opps[i].Savings > opps[j].Savings
		}
		return opps[i].Title < opps[j].Title
	})
	sort.Slice(diags, func(i, j int) bool { return diags[i].Title < diags[j].Title })

	if len(opps) > maxOpportunities {
		opps = opps[:maxOpportunities]
	}
	if len(diags) > maxDiagnostics {
		diags = diags[:maxDiagnostics]
	}
	return opps, diags
}

// parseFieldData converts the loadingExperience block into CrUXData.
// Returns nil when the origin has no recorded field population.
func parseFieldData(field *psiField) *types.CrUXData {
	if field == nil || field.OverallCategory == "" {
		return nil
	}

	parse := func(key string) types.CrUXMetric {
		m, ok := field.Metrics[key]
		if !ok {
			// Metric not recorded for this origin. Defaults to poor, so a
			// low-interaction origin without INP data still takes the
			// inp-poor deduction.
			return types.CrUXMetric{Rating: types.RatingPoor}
		}
		p75 := m.Percentile75
		if p75 == 0 {
			p75 = m.Percentiles["75"]
		}
		var good, needs float64
		if len(m.Histogram) > 0 {
			good = m.Histogram[0].Density
		}
		if len(m.Histogram) > 1 {
			needs = m.Histogram[1].Density
		}
		rating := types.RatingPoor
		switch {
		case good >= 0.75:
			rating = types.RatingGood
		case needs >= 0.5:
			rating = types.RatingNeedsImprovement
		}
		return types.CrUXMetric{P75: p75, Rating: rating}
	}

	return &types.CrUXData{
		LCP: parse("LARGEST_CONTENTFUL_PAINT_MS"),
		CLS: parse("CUMULATIVE_LAYOUT_SHIFT_SCORE"),
		INP: parse("INTERACTION_TO_NEXT_PAINT"),
		FCP: parse("FIRST_CONTENTFUL_PAINT_MS"),
	}
}
