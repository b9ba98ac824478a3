package collector

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/auditkit/auditkit/pkg/types"
)

// repoURLRe extracts owner and repo from any github.com URL form.
var repoURLRe = regexp.MustCompile(`github\.com/([^/]+)/([^/?#]+)`)

// ghAcceptHeader pins the REST API version.
const ghAcceptHeader = "application/vnd.github.v3+json"

// daysUnknown is reported when the last-commit lookup fails.
const daysUnknown = 999

// ghRepo is the subset of the repository metadata response we use.
type ghRepo struct {
	Description     string   `json:"description"`
	StargazersCount int      `json:"stargazers_count"`
	ForksCount      int      `json:"forks_count"`
	OpenIssuesCount int      `json:"open_issues_count"`
	DefaultBranch   string   `json:"default_branch"`
	Topics          []string `json:"topics"`
	PushedAt        string   `json:"pushed_at"`
	License         *struct {
		SpdxID string `json:"spdx_id"`
	} `json:"license"`
}

type ghCommit struct {
	Commit struct {
		Committer struct {
			Date time.Time `json:"date"`
		} `json:"committer"`
	} `json:"commit"`
}

// CollectGitHub audits a public GitHub repository: metadata through the
// unauthenticated REST API (60 req/hour per IP), then file-existence
// probes through raw.githubusercontent.com HEAD requests, which need no
// token and carry no rate limit. Probes run concurrently; one probe
// failing simply marks that file absent.
func (c *Client) CollectGitHub(ctx context.Context, repoURL string) types.Result[types.GitHubData] {
	start := time.Now()

	m := repoURLRe.FindStringSubmatch(repoURL)
	if m == nil {
		return types.Result[types.GitHubData]{Status: types.StatusError, Error: "invalid GitHub URL"}
	}
	owner, repo := m[1], m[2]

	var meta ghRepo
	repoEndpoint := fmt.Sprintf("%s/repos/%s/%s", c.githubAPIBase, owner, repo)
	if err := c.getJSON(ctx, repoEndpoint, githubAPIDeadline, c.ghHeaders(), &meta); err != nil {
		slog.Warn("collector: github metadata fetch failed", "repo", owner+"/"+repo, "err", err)
		return errResult[types.GitHubData]("GitHub repo not found or rate limited", start)
	}

	branch := meta.DefaultBranch
	if branch == "" {
		branch = "HEAD"
	}

	data := &types.GitHubData{
		Owner:               owner,
		Repo:                repo,
		Description:         meta.Description,
		Stars:               meta.StargazersCount,
		Forks:               meta.ForksCount,
		OpenIssues:          meta.OpenIssuesCount,
		DefaultBranch:       branch,
		TopicsCount:         len(meta.Topics),
		LatestRelease:       meta.PushedAt,
		DaysSinceLastCommit: c.daysSinceLastCommit(ctx, owner, repo),
	}
	if meta.License != nil {
		data.License = meta.License.SpdxID
	}

	var llmsTxt, llmsFullTxt bool

	g, probeCtx := errgroup.WithContext(ctx)
	probe := func(path string, dst *bool) {
		g.Go(func() error {
			url := fmt.Sprintf("%s/%s/%s/%s/%s", c.githubRawBase, owner, repo, branch, path)
			*dst = c.headOK(probeCtx, url, rawProbeDeadline, nil)
			return nil
		})
	}

	probe("README.md", &data.HasReadme)
	probe("LICENSE", &data.HasLicense)
	probe("CONTRIBUTING.md", &data.HasContributing)
	probe("CODE_OF_CONDUCT.md", &data.HasCodeOfConduct)
	probe("SECURITY.md", &data.HasSecurity)
	probe(".github/CODEOWNERS", &data.HasCodeowners)
	probe("AGENTS.md", &data.HasAgentsMd)
	probe("CLAUDE.md", &data.HasClaude)
	probe("GEMINI.md", &data.HasGemini)
	probe(".github/copilot-instructions.md", &data.HasCopilotInstructions)
	probe("llms.txt", &llmsTxt)
	probe("llms-full.txt", &llmsFullTxt)
	probe(".github/workflows", &data.HasGithubWorkflows)
	probe(".github/dependabot.yml", &data.HasDependabot)
	probe(".github/PULL_REQUEST_TEMPLATE.md", &data.HasPrTemplate)

	// Issue templates live in a directory, so the raw host cannot answer;
	// use the contents API instead, with the usual API headers.
	g.Go(func() error {
		url := fmt.Sprintf("%s/repos/%s/%s/contents/.github/ISSUE_TEMPLATE", c.githubAPIBase, owner, repo)
		data.HasIssueTemplates = c.headOK(probeCtx, url, rawProbeDeadline, c.ghHeaders())
		return nil
	})

	g.Wait() //nolint:errcheck // probes never return errors

	data.HasLlmsTxt = llmsTxt || llmsFullTxt
	// Branch protection requires an admin token; always reported absent.
	data.HasBranchProtection = false

	return okResult(data, start)
}

// daysSinceLastCommit looks up the most recent commit's age in whole
// days, or daysUnknown when the lookup fails.
func (c *Client) daysSinceLastCommit(ctx context.Context, owner, repo string) int {
	var commits []ghCommit
	endpoint := fmt.Sprintf("%s/repos/%s/%s/commits?per_page=1", c.githubAPIBase, owner, repo)
	if err := c.getJSON(ctx, endpoint, githubAPIDeadline, c.ghHeaders(), &commits); err != nil {
		return daysUnknown
	}
	if len(commits) == 0 || commits[0].Commit.Committer.Date.IsZero() {
		return daysUnknown
	}
	return int(time.Since(commits[0].Commit.Committer.Date).Hours() / 24)
}

// ghHeaders builds REST API request headers, attaching the token when
// one is configured.
func (c *Client) ghHeaders() map[string]string {
	h := map[string]string{"Accept": ghAcceptHeader}
	if c.creds.GitHubToken != "" {
		h["Authorization"] = "Bearer " + c.creds.GitHubToken
	}
	return h
}
