package audit

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/auditkit/auditkit/internal/collector"
	"github.com/auditkit/auditkit/internal/scoring"
	"github.com/auditkit/auditkit/pkg/types"
)

// Recorder receives pipeline observations for self-metrics. A nil
// Recorder disables recording.
type Recorder interface {
	ObserveAudit(typ types.AuditType, elapsed time.Duration)
	ObserveCollector(source string, status types.Status)
}

// Runner owns the fan-out/fan-in step for one audit invocation. Safe for
// concurrent use; each Run call works on its own local state.
type Runner struct {
	collectors *collector.Client
	recorder   Recorder

	now   func() time.Time // injectable for tests
	newID func() string
}

// New creates a Runner using the given collector client. rec may be nil.
func New(c *collector.Client, rec Recorder) *Runner {
	return &Runner{
		collectors: c,
		recorder:   rec,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// Run executes a full audit of target. The only error it returns is a
// malformed target; partial or total collector failure degrades to
// zero-scored pillars instead.
func (r *Runner) Run(ctx context.Context, target string, typ types.AuditType) (*types.AuditResult, error) {
	if err := validateTarget(target, typ); err != nil {
		return nil, err
	}

	start := time.Now()
	res := &types.AuditResult{
		ID:        r.newID(),
		URL:       target,
		Type:      typ,
		AuditedAt: r.now().UTC(),
	}

	switch typ {
	case types.AuditTypeGitHub:
		r.runGitHub(ctx, target, res)
	default:
		r.runURL(ctx, target, res)
	}

	if r.recorder != nil {
		r.recorder.ObserveAudit(typ, time.Since(start))
	}
	slog.Info("audit: run complete",
		"id", res.ID, "type", typ, "target", target,
		"pillars", len(res.Pillars), "elapsed", time.Since(start))
	return res, nil
}

// runURL fans out the web-audit collector set and scores the fixed web
// pillar set. All pillars are reported even at score 0.
func (r *Runner) runURL(ctx context.Context, target string, res *types.AuditResult) {
	var (
		pagespeed types.Result[types.PageSpeedData]
		crux      types.Result[types.CrUXData]
		meta      types.Result[types.MetaData]
		security  types.Result[types.SecurityData]
	)

	var wg sync.WaitGroup
	settle(&wg, r.recorder, "pagespeed", &pagespeed, func() types.Result[types.PageSpeedData] {
		return r.collectors.CollectPageSpeed(ctx, target)
	})
	settle(&wg, r.recorder, "crux", &crux, func() types.Result[types.CrUXData] {
		return r.collectors.CollectCrUX(ctx, target)
	})
	settle(&wg, r.recorder, "meta", &meta, func() types.Result[types.MetaData] {
		return r.collectors.CollectMeta(ctx, target)
	})
	settle(&wg, r.recorder, "security", &security, func() types.Result[types.SecurityData] {
		return r.collectors.CollectSecurity(ctx, target)
	})
	wg.Wait()

	// No accessibility collector in the default build (axe needs a real
	// browser); the pillar is reported as unmeasured.
	noA11y := types.Result[types.AccessibilityData]{
		Status: types.StatusSkipped,
		Error:  "accessibility scan requires a browser",
	}
	noGitHub := types.Result[types.GitHubData]{
		Status: types.StatusSkipped,
		Error:  "repository source does not apply to web audits",
	}

	res.Pillars = []types.PillarScore{
		scoring.Performance(pagespeed, crux),
		scoring.SEO(meta),
		scoring.Accessibility(noA11y),
		scoring.Security(security),
		scoring.StructuredData(meta),
		scoring.AIReadiness(meta, noGitHub),
	}
	res.Meta = meta.Data
	res.Raw = &types.RawResults{
		PageSpeed: &pagespeed,
		CrUX:      &crux,
		Security:  &security,
	}
}

// runGitHub runs the repository-audit path. Repo audits are
// pillar-sparse: pillars that scored 0 with no issues are inapplicable
// for this audit type and filtered out.
func (r *Runner) runGitHub(ctx context.Context, target string, res *types.AuditResult) {
	var github types.Result[types.GitHubData]

	var wg sync.WaitGroup
	settle(&wg, r.recorder, "github", &github, func() types.Result[types.GitHubData] {
		return r.collectors.CollectGitHub(ctx, target)
	})
	wg.Wait()

	noMeta := types.Result[types.MetaData]{
		Status: types.StatusSkipped,
		Error:  "page source does not apply to repository audits",
	}

	candidates := []types.PillarScore{
		scoring.RepoHealth(github),
		scoring.AIReadiness(noMeta, github),
	}
	res.Pillars = make([]types.PillarScore, 0, len(candidates))
	for _, p := range candidates {
		if p.Score > 0 || len(p.Issues) > 0 {
			res.Pillars = append(res.Pillars, p)
		}
	}
	res.Raw = &types.RawResults{GitHub: &github}
}

// settle runs one collector in its own goroutine and writes its result
// to dst. A panicking collector is converted to an error-status result
// instead of taking down the audit. dst must not be read until the
// WaitGroup has settled.
func settle[T any](wg *sync.WaitGroup, rec Recorder, source string, dst *types.Result[T], fn func() types.Result[T]) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer func() {
			if p := recover(); p != nil {
				slog.Error("audit: collector fault", "source", source, "panic", p)
				*dst = types.Result[T]{
					Status: types.StatusError,
					Error:  fmt.Sprintf("collector fault: %v", p),
				}
			}
			if rec != nil {
				rec.ObserveCollector(source, dst.Status)
			}
		}()
		*dst = fn()
	}()
}

// validateTarget enforces the minimal shape check the pipeline performs:
// an absolute http(s) URL, which for repository audits must point at a
// GitHub repo path.
func validateTarget(target string, typ types.AuditType) error {
	u, err := url.Parse(target)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("audit: target %q is not an absolute http(s) URL", target)
	}
	switch typ {
	case types.AuditTypeURL, types.AuditTypeGitHub:
		return nil
	default:
		return fmt.Errorf("audit: unknown audit type %q", typ)
	}
}
