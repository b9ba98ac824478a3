package scoring

import "github.com/auditkit/auditkit/pkg/types"

const aiReadinessLabel = "AI Readiness"

// pageAIRules covers the site-level AI-discoverability signals.
var pageAIRules = []rule[types.MetaData]{
	{
		match:   func(m *types.MetaData) bool { return !m.HasLlmsTxt },
		penalty: 20,
		issue: func(*types.MetaData) types.AuditIssue {
			return types.AuditIssue{
				ID:          "no-llms-txt",
				Title:       "No /llms.txt found",
				Description: "llms.txt is the emerging standard for helping AI systems understand your site (like robots.txt, but for LLMs).",
				Severity:    types.SeverityWarning,
				Fix:         "Create /llms.txt following the llms.txt specification at https://llmstxt.org/",
				Docs:        "https://llmstxt.org/",
				Pillar:      types.PillarAIReadiness,
			}
		},
	},
	{
		match:   func(m *types.MetaData) bool { return !m.HasAgentsMd },
		penalty: 10,
		issue: func(*types.MetaData) types.AuditIssue {
			return types.AuditIssue{
				ID:          "no-agents-md",
				Title:       "No /AGENTS.md found",
				Description: "AGENTS.md provides instructions for AI coding agents working on your codebase.",
				Severity:    types.SeverityInfo,
				Fix:         "Create AGENTS.md at the root of your repo with project context, commands, and development guidelines.",
				Pillar:      types.PillarAIReadiness,
			}
		},
	},
	{
		match:   func(m *types.MetaData) bool { return m.OGImage == "" },
		penalty: 5,
		issue: func(*types.MetaData) types.AuditIssue {
			return types.AuditIssue{
				ID:          "ai-no-og-image",
				Title:       "Missing og:image hurts AI-generated summaries",
				Description: "AI tools that summarise links use og:image for visual context.",
				Severity:    types.SeverityInfo,
				Pillar:      types.PillarAIReadiness,
			}
		},
	},
}

// repoAIRules covers the repository-level agent context files.
var repoAIRules = []rule[types.GitHubData]{
	{
		match:   func(g *types.GitHubData) bool { return !g.HasAgentsMd },
		penalty: 25,
		issue: func(*types.GitHubData) types.AuditIssue {
			return types.AuditIssue{
				ID:          "no-agents-md-repo",
				Title:       "Missing AGENTS.md in repo",
				Description: "AI coding agents (Copilot, Claude Code, Cursor) use AGENTS.md for project context.",
				Severity:    types.SeverityCritical,
				Fix:         "Create AGENTS.md at repo root with: project description, tech stack, commands, and development guidelines.",
				Pillar:      types.PillarAIReadiness,
			}
		},
	},
	{
		match:   func(g *types.GitHubData) bool { return !g.HasClaude },
		penalty: 10,
		issue: func(*types.GitHubData) types.AuditIssue {
			return types.AuditIssue{
				ID:          "no-claude-md",
				Title:       "Missing CLAUDE.md",
				Description: "CLAUDE.md provides Claude-specific instructions for agentic coding tasks.",
				Severity:    types.SeverityWarning,
				Fix:         "Create CLAUDE.md with testing commands, style guide, and important implementation notes.",
				Pillar:      types.PillarAIReadiness,
			}
		},
	},
	{
		match:   func(g *types.GitHubData) bool { return !g.HasGemini },
		penalty: 5,
		issue: func(*types.GitHubData) types.AuditIssue {
			return types.AuditIssue{
				ID:          "no-gemini-md",
				Title:       "Missing GEMINI.md",
				Description: "GEMINI.md provides Gemini-specific agentic context.",
				Severity:    types.SeverityInfo,
				Pillar:      types.PillarAIReadiness,
			}
		},
	},
	{
		match:   func(g *types.GitHubData) bool { return !g.HasCopilotInstructions },
		penalty: 10,
		issue: func(*types.GitHubData) types.AuditIssue {
			return types.AuditIssue{
				ID:          "no-copilot-instructions",
				Title:       "Missing .github/copilot-instructions.md",
				Description: "GitHub Copilot customisation instructions are not set for your repo.",
				Severity:    types.SeverityWarning,
				Fix:         "Create .github/copilot-instructions.md with your coding standards and project context.",
				Pillar:      types.PillarAIReadiness,
			}
		},
	},
	{
		match:   func(g *types.GitHubData) bool { return !g.HasLlmsTxt },
		penalty: 5,
		issue: func(*types.GitHubData) types.AuditIssue {
			return types.AuditIssue{
				ID:          "no-llms-txt-repo",
				Title:       "Missing llms.txt context file",
				Description: "No llms.txt or llms-full.txt found. AI tools have no curated context file.",
				Severity:    types.SeverityInfo,
				Pillar:      types.PillarAIReadiness,
			}
		},
	},
}

// AIReadiness scores the AI-readiness pillar. It combines two optional
// sources: each rule block runs only when its source has data, and a
// missing secondary source carries no penalty. With neither source the
// pillar reports zero, marking it unmeasured.
func AIReadiness(meta types.Result[types.MetaData], github types.Result[types.GitHubData]) types.PillarScore {
	if meta.Data == nil && github.Data == nil {
		return emptyPillar(types.PillarAIReadiness, aiReadinessLabel)
	}

	score := 100
	issues := []types.AuditIssue{}

	if meta.Data != nil {
		var pageIssues []types.AuditIssue
		score, pageIssues = evaluate(score, meta.Data, pageAIRules)
		issues = append(issues, pageIssues...)
	}

	if github.Data != nil {
		var repoIssues []types.AuditIssue
		score, repoIssues = evaluate(score, github.Data, repoAIRules)
		issues = append(issues, repoIssues...)
	}

	return pillar(types.PillarAIReadiness, aiReadinessLabel, score, issues)
}
