// Package version records the build's version string.
package version

// Version is the semantic version of this build. Overridden at link time:
//
//	go build -ldflags "-X github.com/auditkit/auditkit/internal/version.Version=v1.2.3"
var Version = "0.1.0-dev"
