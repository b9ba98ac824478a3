package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/auditkit/auditkit/pkg/types"
)

// userAgent identifies audit traffic to the probed sites and APIs.
const userAgent = "AuditKit/1.0 (+https://github.com/auditkit/auditkit; audit-bot)"

// Hard-coded source endpoints. Not configurable at this level; tests
// override the Client's base fields instead.
const (
	defaultPSIBase         = "https://www.googleapis.com/pagespeedonline/v5"
	defaultObservatoryBase = "https://http-observatory.security.mozilla.org/api/v1"
	defaultGitHubAPIBase   = "https://api.github.com"
	defaultGitHubRawBase   = "https://raw.githubusercontent.com"
)

// Per-call deadlines. Each remote call owns its own deadline; exceeding
// it fails only that call, never a sibling adapter.
const (
	psiDeadline         = 30 * time.Second
	pageFetchDeadline   = 15 * time.Second
	wellKnownDeadline   = 5 * time.Second
	observatoryDeadline = 20 * time.Second
	headerProbeDeadline = 10 * time.Second
	githubAPIDeadline   = 10 * time.Second
	rawProbeDeadline    = 6 * time.Second
)

// Credentials carries optional API credentials. A PSI key raises the
// PageSpeed quota; a GitHub token raises the REST API rate limit from
// 60 to 5000 requests per hour. Both work unauthenticated.
type Credentials struct {
	PSIKey      string
	GitHubToken string
}

// Client bundles the adapters for all remote sources behind one shared
// HTTP client. The zero value is not usable; construct with New.
type Client struct {
	client *http.Client
	creds  Credentials

	psiBase         string
	observatoryBase string
	githubAPIBase   string
	githubRawBase   string
}

// New returns a Client wired to the production endpoints. The underlying
// http.Client carries no global timeout — every call sets its own
// context deadline.
func New() *Client {
	return &Client{
		client:          &http.Client{},
		psiBase:         defaultPSIBase,
		observatoryBase: defaultObservatoryBase,
		githubAPIBase:   defaultGitHubAPIBase,
		githubRawBase:   defaultGitHubRawBase,
	}
}

// NewWithCredentials is New with API credentials attached to PageSpeed
// and GitHub calls.
func NewWithCredentials(creds Credentials) *Client {
	c := New()
	c.creds = creds
	return c
}

// Endpoints overrides the remote service base URLs. Empty fields keep
// the production default.
type Endpoints struct {
	PSI         string
	Observatory string
	GitHubAPI   string
	GitHubRaw   string
}

// NewWithEndpoints returns a Client that talks to alternative service
// endpoints, e.g. a self-hosted Observatory or a test server. A nil
// httpClient uses a fresh default client.
func NewWithEndpoints(httpClient *http.Client, ep Endpoints) *Client {
	c := New()
	if httpClient != nil {
		c.client = httpClient
	}
	if ep.PSI != "" {
		c.psiBase = ep.PSI
	}
	if ep.Observatory != "" {
		c.observatoryBase = ep.Observatory
	}
	if ep.GitHubAPI != "" {
		c.githubAPIBase = ep.GitHubAPI
	}
	if ep.GitHubRaw != "" {
		c.githubRawBase = ep.GitHubRaw
	}
	return c
}

// okResult wraps a payload in a StatusOK result with elapsed time.
func okResult[T any](data *T, start time.Time) types.Result[T] {
	return types.Result[T]{
		Status:     types.StatusOK,
		Data:       data,
		DurationMs: time.Since(start).Milliseconds(),
	}
}

// errResult records a transport, parse, or deadline failure.
func errResult[T any](msg string, start time.Time) types.Result[T] {
	return types.Result[T]{
		Status:     types.StatusError,
		Error:      msg,
		DurationMs: time.Since(start).Milliseconds(),
	}
}

// skipResult records a reachable source that had no usable signal.
func skipResult[T any](msg string, start time.Time) types.Result[T] {
	return types.Result[T]{
		Status:     types.StatusSkipped,
		Error:      msg,
		DurationMs: time.Since(start).Milliseconds(),
	}
}

// getJSON issues a GET with the given deadline and decodes the JSON body
// into out. A non-2xx status is returned as *statusError so callers can
// branch on the code.
func (c *Client) getJSON(ctx context.Context, url string, deadline time.Duration, headers map[string]string, out any) error {
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		io.Copy(io.Discard, resp.Body) //nolint:errcheck
		return &statusError{Code: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// headOK issues a HEAD request with the given deadline and reports
// whether it returned a 2xx status. Any failure counts as absent.
func (c *Client) headOK(ctx context.Context, url string, deadline time.Duration, headers map[string]string) bool {
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", userAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode <= 299
}

// statusError reports a non-2xx HTTP response.
type statusError struct {
	Code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}
