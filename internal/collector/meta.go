package collector

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/auditkit/auditkit/pkg/types"
)

var (
	titleRe      = regexp.MustCompile(`(?i)<title[^>]*>([^<]+)</title>`)
	canonicalRe  = regexp.MustCompile(`(?i)<link[^>]+rel=["']canonical["'][^>]+href=["']([^"']+)["']`)
	schemaTypeRe = regexp.MustCompile(`"@type"\s*:\s*"([^"]+)"`)
)

// CollectMeta fetches pageURL, parses its head metadata, and probes the
// origin for the well-known files search engines and AI tools look for
// (sitemap.xml, robots.txt, llms.txt, AGENTS.md). The probes run
// concurrently; a failed probe resolves to absent, never to an adapter
// failure.
func (c *Client) CollectMeta(ctx context.Context, pageURL string) types.Result[types.MetaData] {
	start := time.Now()

	reqCtx, cancel := context.WithTimeout(ctx, pageFetchDeadline)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, pageURL, nil)
	if err != nil {
		return errResult[types.MetaData](fmt.Sprintf("build request: %v", err), start)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := c.client.Do(req)
	if err != nil {
		slog.Warn("collector: page fetch failed", "url", pageURL, "err", err)
		return errResult[types.MetaData](err.Error(), start)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errResult[types.MetaData](fmt.Sprintf("read body: %v", err), start)
	}
	html := string(body)
	responseTime := time.Since(start).Milliseconds()

	data := &types.MetaData{
		Title:         firstMatch(titleRe, html),
		Description:   metaTag(html, "description"),
		Canonical:     firstMatch(canonicalRe, html),
		Robots:        metaTag(html, "robots"),
		OGTitle:       metaProperty(html, "og:title"),
		OGDescription: metaProperty(html, "og:description"),
		OGImage:       metaProperty(html, "og:image"),
		TwitterCard:   metaTag(html, "twitter:card"),

		HasViewport: strings.Contains(html, `name="viewport"`) || strings.Contains(html, "name='viewport'"),
		HasHreflang: strings.Contains(html, "hreflang"),

		ResponseTimeMs: responseTime,
		StatusCode:     resp.StatusCode,
	}
	data.Title = strings.TrimSpace(data.Title)

	data.StructuredDataTypes = schemaTypes(html)
	data.HasStructuredData = len(data.StructuredDataTypes) > 0

	// Probe sibling well-known files off the page's origin.
	if u, err := url.Parse(pageURL); err == nil {
		origin := u.Scheme + "://" + u.Host
		g, probeCtx := errgroup.WithContext(ctx)
		probe := func(path string, dst *bool) {
			g.Go(func() error {
				*dst = c.headOK(probeCtx, origin+path, wellKnownDeadline, nil)
				return nil
			})
		}
		probe("/llms.txt", &data.HasLlmsTxt)
		probe("/AGENTS.md", &data.HasAgentsMd)
		probe("/sitemap.xml", &data.HasSitemap)
		probe("/robots.txt", &data.HasRobotsTxt)
		g.Wait() //nolint:errcheck // probes never return errors
	}

	return okResult(data, start)
}

// metaTag extracts the content of <meta name="..." content="...">,
// tolerating either attribute order.
func metaTag(html, name string) string {
	return metaContent(html, "name", name)
}

// metaProperty extracts the content of <meta property="..." content="...">.
func metaProperty(html, property string) string {
	return metaContent(html, "property", property)
}

func metaContent(html, attr, value string) string {
	quoted := regexp.QuoteMeta(value)
	forward := regexp.MustCompile(`(?i)<meta[^>]+` + attr + `=["']` + quoted + `["'][^>]+content=["']([^"']+)["']`)
	if m := forward.FindStringSubmatch(html); m != nil {
		return m[1]
	}
	reverse := regexp.MustCompile(`(?i)<meta[^>]+content=["']([^"']+)["'][^>]+` + attr + `=["']` + quoted + `["']`)
	if m := reverse.FindStringSubmatch(html); m != nil {
		return m[1]
	}
	return ""
}

func firstMatch(re *regexp.Regexp, html string) string {
	if m := re.FindStringSubmatch(html); m != nil {
		return m[1]
	}
	return ""
}

// schemaTypes returns the distinct schema.org @type values found in the
// page's JSON-LD blocks, in first-seen order.
func schemaTypes(html string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range schemaTypeRe.FindAllStringSubmatch(html, -1) {
		if m[1] != "" && !seen[m[1]] {
			seen[m[1]] = true
			out = append(out, m[1])
		}
	}
	return out
}
