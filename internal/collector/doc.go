// Package collector provides one adapter per remote audit data source:
// PageSpeed Insights lab metrics (pagespeed.go), real-user field data
// extracted from the same endpoint (crux.go), page metadata fetch+parse
// with well-known-file probes (meta.go), HTTP security headers plus the
// Mozilla Observatory grade (security.go), and GitHub repository
// metadata with file-existence probes (github.go).
//
// Every adapter is a pure function of its target identifier to a
// types.Result[T]: transport failures, parse failures, and exceeded
// deadlines all land in the result's Status/Error fields and never
// escape as errors or panics. A source that is reachable but has no
// usable signal reports StatusSkipped instead of StatusError.
//
// Endpoints and per-call deadlines are fixed constants; the Client's
// unexported base-URL fields exist only so package tests can point
// adapters at httptest servers.
package collector
