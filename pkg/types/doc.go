// Package types defines the shared audit data model: pillar scores,
// issues, collector results, and the raw payloads collectors return.
// It is imported by every internal package and is what API clients
// decode against.
package types
