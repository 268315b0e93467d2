// Package version exposes build metadata injected through ldflags.
package version

import "fmt"

var (
	// Version is the semantic version of the build.
	Version = "0.1.0"
	// Commit is the short git SHA embedded at build time.
	Commit = "none"
	// BuildTime is the UTC build timestamp embedded at build time.
	BuildTime = "unknown"
)

func Short() string {
	return Version
}

func Full() string {
	return fmt.Sprintf("energymon %s (commit %s, built %s)", Version, Commit, BuildTime)
}
