// Package version holds the build version of hops.
package version

// Version is overridden at build time with
// -ldflags "-X github.com/blackwell-systems/hops/internal/version.Version=...".
var Version = "0.3.0"

// String returns the version prefixed with "v".
func String() string {
	return "v" + Version
}
