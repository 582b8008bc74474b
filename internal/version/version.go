// Package version reports the avrogen build version.
package version

import (
	"fmt"
	"runtime/debug"
)

// Set through -ldflags at release time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// readBuildInfo is swapped in tests.
var readBuildInfo = debug.ReadBuildInfo

// GetVersion returns the release version. Development builds fall back to
// the module version recorded by `go install`, then to "dev".
func GetVersion() string {
	if Version != "dev" && Version != "" {
		return Version
	}
	if info, ok := readBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev"
}

// GetFullVersion returns the version with build information,
// e.g. "v0.3.0 (commit: abc123, built: 2026-01-02T10:30:00Z)".
func GetFullVersion() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", GetVersion(), Commit, Date)
}

// GeneratorID identifies avrogen in report metadata, e.g. "avrogen/v0.3.0".
func GeneratorID() string {
	return "avrogen/" + GetVersion()
}
