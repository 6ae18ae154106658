// Package version exposes the build version.
package version

// Version is the release version, overridden at build time via
// -ldflags "-X prcast/pkg/version.Version=...".
var Version = "1.0.0-dev"
