package scoring

import (
	"fmt"

	"github.com/auditkit/auditkit/pkg/types"
)

const seoLabel = "SEO"

// titleMaxLen is the longest title Google renders without truncation.
const titleMaxLen = 60

// slowResponseMs flags a page response slow enough to affect ranking.
const slowResponseMs = 3000

var seoRules = []rule[types.MetaData]{
	{
		match:   func(m *types.MetaData) bool { return m.Title == "" },
		penalty: 25,
		issue: func(*types.MetaData) types.AuditIssue {
			return types.AuditIssue{
				ID:          "no-title",
				Title:       "Missing <title> tag",
				Description: "The page has no title tag. This is critical for SEO.",
				Severity:    types.SeverityCritical,
				Fix:         "Add a unique, descriptive <title> tag (50-60 characters).",
				Pillar:      types.PillarSEO,
			}
		},
	},
	{
		match:   func(m *types.MetaData) bool { return m.Title != "" && len(m.Title) > titleMaxLen },
		penalty: 5,
		issue: func(m *types.MetaData) types.AuditIssue {
			return types.AuditIssue{
				ID:          "title-long",
				Title:       "Title tag too long",
				Description: fmt.Sprintf("Title is %d characters (optimal: 50-60). Google truncates it in search results.", len(m.Title)),
				Severity:    types.SeverityWarning,
				Fix:         "Shorten the title to 50-60 characters.",
				Pillar:      types.PillarSEO,
			}
		},
	},
	{
		match:   func(m *types.MetaData) bool { return m.Description == "" },
		penalty: 15,
		issue: func(*types.MetaData) types.AuditIssue {
			return types.AuditIssue{
				ID:          "no-description",
				Title:       "Missing meta description",
				Description: "No meta description tag found. Search engines may generate their own, often poorly.",
				Severity:    types.SeverityWarning,
				Fix:         "Add a meta description of 120-160 characters summarising the page.",
				Pillar:      types.PillarSEO,
			}
		},
	},
	{
		match:   func(m *types.MetaData) bool { return m.Canonical == "" },
		penalty: 10,
		issue: func(*types.MetaData) types.AuditIssue {
			return types.AuditIssue{
				ID:          "no-canonical",
				Title:       "No canonical URL",
				Description: "Missing rel=\"canonical\" link. Without it, search engines may index duplicate content.",
				Severity:    types.SeverityWarning,
				Fix:         "Add <link rel=\"canonical\" href=\"https://yourdomain.com/page\"> to each page.",
				Pillar:      types.PillarSEO,
			}
		},
	},
	{
		match:   func(m *types.MetaData) bool { return !m.HasViewport },
		penalty: 20,
		issue: func(*types.MetaData) types.AuditIssue {
			return types.AuditIssue{
				ID:          "no-viewport",
				Title:       "No viewport meta tag",
				Description: "Missing viewport meta tag. The page will not render correctly on mobile.",
				Severity:    types.SeverityCritical,
				Fix:         "Add <meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">.",
				Pillar:      types.PillarSEO,
			}
		},
	},
	{
		match:   func(m *types.MetaData) bool { return m.OGTitle == "" },
		penalty: 5,
		issue: func(*types.MetaData) types.AuditIssue {
			return types.AuditIssue{
				ID:          "no-og-title",
				Title:       "Missing Open Graph title",
				Description: "No og:title tag. Links shared on social media will not preview correctly.",
				Severity:    types.SeverityWarning,
				Fix:         "Add <meta property=\"og:title\" content=\"...\"> to the page head.",
				Pillar:      types.PillarSEO,
			}
		},
	},
	{
		match:   func(m *types.MetaData) bool { return m.OGImage == "" },
		penalty: 5,
		issue: func(*types.MetaData) types.AuditIssue {
			return types.AuditIssue{
				ID:          "no-og-image",
				Title:       "Missing Open Graph image",
				Description: "No og:image tag. Social shares will have no preview image.",
				Severity:    types.SeverityWarning,
				Fix:         "Add <meta property=\"og:image\" content=\"https://...\"> with a 1200×630 image.",
				Pillar:      types.PillarSEO,
			}
		},
	},
	{
		match:   func(m *types.MetaData) bool { return !m.HasSitemap },
		penalty: 10,
		issue: func(*types.MetaData) types.AuditIssue {
			return types.AuditIssue{
				ID:          "no-sitemap",
				Title:       "No sitemap.xml found",
				Description: "sitemap.xml was not found at /sitemap.xml. Search engines rely on sitemaps to discover content.",
				Severity:    types.SeverityWarning,
				Fix:         "Generate and serve a sitemap.xml. Submit it to Google Search Console and Bing Webmaster Tools.",
				Pillar:      types.PillarSEO,
			}
		},
	},
	{
		match:   func(m *types.MetaData) bool { return !m.HasRobotsTxt },
		penalty: 5,
		issue: func(*types.MetaData) types.AuditIssue {
			return types.AuditIssue{
				ID:          "no-robots-txt",
				Title:       "No robots.txt found",
				Description: "robots.txt was not found. Search engines may crawl unwanted pages.",
				Severity:    types.SeverityWarning,
				Fix:         "Create /robots.txt and include a Sitemap: directive.",
				Pillar:      types.PillarSEO,
			}
		},
	},
	{
		match:   func(m *types.MetaData) bool { return m.ResponseTimeMs > slowResponseMs },
		penalty: 5,
		issue: func(m *types.MetaData) types.AuditIssue {
			return types.AuditIssue{
				ID:          "slow-response",
				Title:       "Slow server response",
				Description: fmt.Sprintf("Page responded in %dms. Slow pages rank lower.", m.ResponseTimeMs),
				Severity:    types.SeverityWarning,
				Pillar:      types.PillarSEO,
			}
		},
	},
}

// SEO scores the SEO pillar from the parsed page metadata.
func SEO(meta types.Result[types.MetaData]) types.PillarScore {
	if meta.Data == nil {
		return emptyPillar(types.PillarSEO, seoLabel)
	}
	score, issues := evaluate(100, meta.Data, seoRules)
	return pillar(types.PillarSEO, seoLabel, score, issues)
}
