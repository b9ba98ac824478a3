package scoring

import (
	"fmt"

	"github.com/auditkit/auditkit/pkg/types"
)

const repoHealthLabel = "Repo Health"

// staleRepoDays marks a repository as unmaintained when the last commit
// is older than this.
const staleRepoDays = 365

var repoHealthRules = []rule[types.GitHubData]{
	{
		match:   func(g *types.GitHubData) bool { return !g.HasReadme },
		penalty: 30,
		issue: func(*types.GitHubData) types.AuditIssue {
			return types.AuditIssue{
				ID:          "no-readme",
				Title:       "Missing README",
				Description: "No README file found. Contributors and users have no documentation.",
				Severity:    types.SeverityCritical,
				Fix:         "Create README.md with project purpose, setup steps, and usage examples.",
				Pillar:      types.PillarRepoHealth,
			}
		},
	},
	{
		match:   func(g *types.GitHubData) bool { return !g.HasLicense },
		penalty: 20,
		issue: func(*types.GitHubData) types.AuditIssue {
			return types.AuditIssue{
				ID:          "no-license",
				Title:       "Missing LICENSE file",
				Description: "No license file found. The project is technically All Rights Reserved.",
				Severity:    types.SeverityCritical,
				Fix:         "Add a LICENSE file. For open source, use MIT, Apache-2.0, or GPL.",
				Pillar:      types.PillarRepoHealth,
			}
		},
	},
	{
		match:   func(g *types.GitHubData) bool { return !g.HasContributing },
		penalty: 10,
		issue: func(*types.GitHubData) types.AuditIssue {
			return types.AuditIssue{
				ID:          "no-contributing",
				Title:       "Missing CONTRIBUTING.md",
				Description: "No contribution guide exists. Contributors have no guidance on how to contribute.",
				Severity:    types.SeverityWarning,
				Fix:         "Create CONTRIBUTING.md describing the development process, PR guidelines, and code style.",
				Pillar:      types.PillarRepoHealth,
			}
		},
	},
	{
		match:   func(g *types.GitHubData) bool { return !g.HasSecurity },
		penalty: 10,
		issue: func(*types.GitHubData) types.AuditIssue {
			return types.AuditIssue{
				ID:          "no-security",
				Title:       "Missing SECURITY.md",
				Description: "No security policy file. Users cannot report vulnerabilities responsibly.",
				Severity:    types.SeverityWarning,
				Fix:         "Create SECURITY.md describing how to report security vulnerabilities.",
				Pillar:      types.PillarRepoHealth,
			}
		},
	},
	{
		match:   func(g *types.GitHubData) bool { return !g.HasGithubWorkflows },
		penalty: 15,
		issue: func(*types.GitHubData) types.AuditIssue {
			return types.AuditIssue{
				ID:          "no-ci",
				Title:       "No CI/CD workflows",
				Description: "No GitHub Actions workflows found. No automated testing or deployment pipeline.",
				Severity:    types.SeverityWarning,
				Fix:         "Add .github/workflows/ci.yml with test, lint, and type-check jobs.",
				Pillar:      types.PillarRepoHealth,
			}
		},
	},
	{
		match:   func(g *types.GitHubData) bool { return !g.HasDependabot },
		penalty: 5,
		issue: func(*types.GitHubData) types.AuditIssue {
			return types.AuditIssue{
				ID:          "no-dependabot",
				Title:       "Dependabot not configured",
				Description: "Automated dependency updates are not enabled.",
				Severity:    types.SeverityInfo,
				Fix:         "Add .github/dependabot.yml to enable automated dependency PRs.",
				Pillar:      types.PillarRepoHealth,
			}
		},
	},
	{
		match:   func(g *types.GitHubData) bool { return g.TopicsCount == 0 },
		penalty: 5,
		issue: func(*types.GitHubData) types.AuditIssue {
			return types.AuditIssue{
				ID:          "no-topics",
				Title:       "No GitHub topics set",
				Description: "Repository has no topics. Topics improve discoverability in GitHub search.",
				Severity:    types.SeverityInfo,
				Fix:         "Add 5-10 relevant topics to the repository settings.",
				Pillar:      types.PillarRepoHealth,
			}
		},
	},
	{
		match:   func(g *types.GitHubData) bool { return g.DaysSinceLastCommit > staleRepoDays },
		penalty: 10,
		issue: func(g *types.GitHubData) types.AuditIssue {
			return types.AuditIssue{
				ID:          "stale-repo",
				Title:       "Repo appears unmaintained",
				Description: fmt.Sprintf("Last commit was %d days ago.", g.DaysSinceLastCommit),
				Severity:    types.SeverityWarning,
				Pillar:      types.PillarRepoHealth,
			}
		},
	},
}

// RepoHealth scores the repo-health pillar from the GitHub metadata and
// file-presence snapshot.
func RepoHealth(github types.Result[types.GitHubData]) types.PillarScore {
	if github.Data == nil {
		return emptyPillar(types.PillarRepoHealth, repoHealthLabel)
	}
	score, issues := evaluate(100, github.Data, repoHealthRules)
	return pillar(types.PillarRepoHealth, repoHealthLabel, score, issues)
}
