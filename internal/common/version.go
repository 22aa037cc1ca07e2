package common

import (
	"fmt"
	"runtime/debug"
)

// Version variables injected at build time via ldflags
var (
	Version   = "dev"
	Build     = "unknown"
	GitCommit = "unknown"
)

// GetVersion returns the semantic version string
func GetVersion() string {
	return Version
}

// GetBuild returns the build timestamp
func GetBuild() string {
	return Build
}

// GetGitCommit returns the short git commit hash. When ldflags were not
// provided it falls back to the VCS revision recorded by the Go toolchain.
func GetGitCommit() string {
	if GitCommit != "unknown" {
		return GitCommit
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return GitCommit
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && len(s.Value) >= 7 {
			return s.Value[:7]
		}
	}
	return GitCommit
}

// GetFullVersion returns a formatted version string with all build info
func GetFullVersion() string {
	return fmt.Sprintf("%s (build: %s, commit: %s)", GetVersion(), GetBuild(), GetGitCommit())
}
