package collector

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/auditkit/auditkit/pkg/types"
)

// securityHeaderNames is the probe order for the Missing list.
var securityHeaderNames = []string{
	"Content-Security-Policy",
	"Strict-Transport-Security",
	"X-Frame-Options",
	"X-Content-Type-Options",
	"Referrer-Policy",
	"Permissions-Policy",
}

// CollectSecurity probes pageURL's response headers directly and, in
// parallel, triggers a Mozilla Observatory scan for the letter grade.
// The Observatory call is best-effort: its failure leaves the grade
// empty but never fails the adapter.
func (c *Client) CollectSecurity(ctx context.Context, pageURL string) types.Result[types.SecurityData] {
	start := time.Now()

	u, err := url.Parse(pageURL)
	if err != nil || u.Hostname() == "" {
		return errResult[types.SecurityData]("invalid URL", start)
	}
	host := u.Hostname()

	var (
		grade   string
		headers http.Header
	)

	g, probeCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		grade = c.observatoryGrade(probeCtx, host)
		return nil
	})
	g.Go(func() error {
		headers = c.probeHeaders(probeCtx, pageURL)
		return nil
	})
	g.Wait() //nolint:errcheck // both probes are best-effort

	data := &types.SecurityData{
		Grade: grade,
		Headers: types.SecurityHeaders{
			CSP:                 headers.Get("Content-Security-Policy"),
			HSTS:                headers.Get("Strict-Transport-Security"),
			XFrameOptions:       headers.Get("X-Frame-Options"),
			XContentTypeOptions: headers.Get("X-Content-Type-Options"),
			ReferrerPolicy:      headers.Get("Referrer-Policy"),
			PermissionsPolicy:   headers.Get("Permissions-Policy"),
		},
		SSLValid: strings.HasPrefix(pageURL, "https://"),
	}
	data.Missing = missingHeaders(data.Headers)

	return okResult(data, start)
}

// probeHeaders issues a HEAD request to the page itself and returns its
// response headers; an empty header set on failure means every security
// header reads as missing.
func (c *Client) probeHeaders(ctx context.Context, pageURL string) http.Header {
	ctx, cancel := context.WithTimeout(ctx, headerProbeDeadline)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, pageURL, nil)
	if err != nil {
		return http.Header{}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		slog.Warn("collector: header probe failed", "url", pageURL, "err", err)
		return http.Header{}
	}
	resp.Body.Close()
	return resp.Header
}

// observatoryGrade triggers (or re-reads) an Observatory scan for host
// and returns the letter grade, or "" when unavailable.
func (c *Client) observatoryGrade(ctx context.Context, host string) string {
	ctx, cancel := context.WithTimeout(ctx, observatoryDeadline)
	defer cancel()

	form := url.Values{}
	form.Set("hidden", "true")
	form.Set("rescan", "false")

	endpoint := c.observatoryBase + "/analyze?host=" + url.QueryEscape(host)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		slog.Warn("collector: observatory scan failed", "host", host, "err", err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return ""
	}

	var out struct {
		Grade string `json:"grade"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return ""
	}
	return out.Grade
}

// missingHeaders lists absent security headers in probe order.
// X-Frame-Options is not required when a CSP frame-ancestors directive
// covers the same protection.
func missingHeaders(h types.SecurityHeaders) []string {
	present := map[string]bool{
		"Content-Security-Policy":   h.CSP != "",
		"Strict-Transport-Security": h.HSTS != "",
		"X-Frame-Options":           h.XFrameOptions != "" || strings.Contains(h.CSP, "frame-ancestors"),
		"X-Content-Type-Options":    h.XContentTypeOptions != "",
		"Referrer-Policy":           h.ReferrerPolicy != "",
		"Permissions-Policy":        h.PermissionsPolicy != "",
	}

	missing := make([]string, 0, len(securityHeaderNames))
	for _, name := range securityHeaderNames {
		if !present[name] {
			missing = append(missing, name)
		}
	}
	return missing
}
