package core

import "strings"

// ldflagsPackage is the import path the -X flags below must name.
const ldflagsPackage = "comic_backend/core"

// Version is the application version, set at build time via ldflags:
//
//	go build -ldflags "-X comic_backend/core.Version=$(git describe --tags --always)" .
//
// If not set at build time, defaults to "dev".
var Version = "dev"

// BuildTime is the build timestamp, set at build time via ldflags:
//
//	go build -ldflags "-X comic_backend/core.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)" .
var BuildTime = "unknown"

// GitCommit is the git commit hash, set at build time via ldflags:
//
//	go build -ldflags "-X comic_backend/core.GitCommit=$(git rev-parse --short HEAD)" .
var GitCommit = "unknown"

// BuildInfo is the machine-readable form printed by `panelcfg version --json`.
type BuildInfo struct {
	Version   string `json:"version"`
	BuildTime string `json:"build_time"`
	GitCommit string `json:"git_commit"`
}

// GetBuildInfo returns the compile-time injected build values.
func GetBuildInfo() BuildInfo {
	return BuildInfo{Version: Version, BuildTime: BuildTime, GitCommit: GitCommit}
}

// GetVersion returns the application version string.
// This is a pure function that returns the compile-time injected version.
func GetVersion() string {
	return Version
}

// GetVersionInfo returns a formatted version information string.
//
// Examples:
//   - "v1.0.0 (built 2024-01-15T10:30:00Z, commit abc1234)"
//   - "dev (built unknown, commit unknown)"
func GetVersionInfo() string {
	return Version + " (built " + BuildTime + ", commit " + GitCommit + ")"
}

// BuildLdflags returns the ldflags string for injecting version information.
// Empty values are left out.
//
// Example output:
//
//	"-X comic_backend/core.Version=v1.0.0 -X comic_backend/core.GitCommit=abc1234"
func BuildLdflags(version, buildTime, gitCommit string) string {
	var flags []string
	for _, kv := range [][2]string{{"Version", version}, {"BuildTime", buildTime}, {"GitCommit", gitCommit}} {
		if kv[1] != "" {
			flags = append(flags, "-X "+ldflagsPackage+"."+kv[0]+"="+kv[1])
		}
	}
	return strings.Join(flags, " ")
}
