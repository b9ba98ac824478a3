package scoring

import (
	"fmt"
	"strings"

	"github.com/auditkit/auditkit/pkg/types"
)

const structuredLabel = "Structured Data"

const (
	noSchemaPenalty      = 40
	missingSchemaPenalty = 5
)

// recommendedSchemas are the schema.org types every site should carry for
// rich-result eligibility.
var recommendedSchemas = []string{"WebSite", "Organization", "BreadcrumbList"}

const webSiteSnippet = `{
  "@context": "https://schema.org",
  "@type": "WebSite",
  "name": "Your Site",
  "url": "https://yoursite.com"
}`

// StructuredData scores the structured-data pillar from the page metadata
// snapshot. A page with no JSON-LD at all takes the single large penalty;
// otherwise each missing recommended type takes a small one.
func StructuredData(meta types.Result[types.MetaData]) types.PillarScore {
	if meta.Data == nil {
		return emptyPillar(types.PillarStructuredData, structuredLabel)
	}

	m := meta.Data
	score := 100
	issues := make([]types.AuditIssue, 0, len(recommendedSchemas))

	if !m.HasStructuredData {
		issues = append(issues, types.AuditIssue{
			ID:          "no-schema",
			Title:       "No structured data (JSON-LD)",
			Description: "No schema.org structured data found. Search engines cannot generate rich results for this page.",
			Severity:    types.SeverityWarning,
			Fix:         "Add JSON-LD structured data. For articles, use NewsArticle. For products, use Product. For organisations, use Organization.",
			Snippet:     webSiteSnippet,
			Pillar:      types.PillarStructuredData,
		})
		score -= noSchemaPenalty
		return pillar(types.PillarStructuredData, structuredLabel, score, issues)
	}

	for _, schema := range recommendedSchemas {
		if containsString(m.StructuredDataTypes, schema) {
			continue
		}
		issues = append(issues, types.AuditIssue{
			ID:          "missing-schema-" + strings.ToLower(schema),
			Title:       fmt.Sprintf("Missing %s schema", schema),
			Description: fmt.Sprintf("%s structured data is recommended for better search visibility.", schema),
			Severity:    types.SeverityInfo,
			Fix:         fmt.Sprintf("Add a %s JSON-LD block to the page head.", schema),
			Pillar:      types.PillarStructuredData,
		})
		score -= missingSchemaPenalty
	}

	return pillar(types.PillarStructuredData, structuredLabel, score, issues)
}

func containsString(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
