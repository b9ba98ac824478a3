package scoring

import (
	"testing"

	"github.com/auditkit/auditkit/pkg/types"
)

func TestStructuredData_NoData(t *testing.T) {
	p := StructuredData(errRes[types.MetaData]("down"))
	if p.Score != 0 {
		t.Errorf("Score: got %d, want 0", p.Score)
	}
}

func TestStructuredData_NoSchema(t *testing.T) {
	p := StructuredData(okRes(&types.MetaData{HasStructuredData: false}))

	if p.Score != 60 { // 100 - 40
		t.Errorf("Score: got %d, want 60", p.Score)
	}
	if len(p.Issues) != 1 {
		t.Fatalf("Issues: got %d, want 1", len(p.Issues))
	}
	issue := findIssue(t, p.Issues, "no-schema")
	if issue.Snippet == "" {
		t.Error("no-schema must carry a JSON-LD example snippet")
	}
}

func TestStructuredData_MissingRecommendedTypes(t *testing.T) {
	p := StructuredData(okRes(&types.MetaData{
		HasStructuredData:   true,
		StructuredDataTypes: []string{"WebSite"},
	}))

	if p.Score != 90 { // 100 - 5 - 5
		t.Errorf("Score: got %d, want 90", p.Score)
	}
	if !hasIssue(p.Issues, "missing-schema-organization") {
		t.Error("Issues: missing missing-schema-organization")
	}
	if !hasIssue(p.Issues, "missing-schema-breadcrumblist") {
		t.Error("Issues: missing missing-schema-breadcrumblist")
	}
	if hasIssue(p.Issues, "missing-schema-website") {
		t.Error("Issues: WebSite is present and must not be flagged")
	}
}

func TestStructuredData_AllRecommendedPresent(t *testing.T) {
	p := StructuredData(okRes(&types.MetaData{
		HasStructuredData:   true,
		StructuredDataTypes: []string{"WebSite", "Organization", "BreadcrumbList", "Article"},
	}))

	if p.Score != 100 {
		t.Errorf("Score: got %d, want 100", p.Score)
	}
	if len(p.Issues) != 0 {
		t.Errorf("Issues: got %d, want 0", len(p.Issues))
	}
}
