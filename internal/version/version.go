// Package version exposes build information for the pagekit binary. The
// exported variables are overridden at build time with -ldflags; when they
// are not set, the package falls back to the module's embedded VCS metadata.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"time"
)

// Set at build time using -ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// BuildInfo contains version and build information.
type BuildInfo struct {
	Version   string    `json:"version"`
	GitCommit string    `json:"git_commit"`
	BuildTime time.Time `json:"build_time"`
	GoVersion string    `json:"go_version"`
	Platform  string    `json:"platform"`
}

// Get returns the full build information.
func Get() *BuildInfo {
	return &BuildInfo{
		Version:   GetVersion(),
		GitCommit: GetGitCommit(),
		BuildTime: parseBuildTime(BuildTime),
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// GetVersion returns the binary version, preferring the ldflags value and
// falling back to embedded build info.
func GetVersion() string {
	if Version != "" && Version != "dev" {
		return Version
	}

	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			return info.Main.Version
		}
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" && len(setting.Value) >= 7 {
				return "dev-" + setting.Value[:7]
			}
		}
	}

	return "dev"
}

// GetGitCommit returns the commit hash the binary was built from.
func GetGitCommit() string {
	if GitCommit != "" && GitCommit != "unknown" {
		return GitCommit
	}

	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" {
				return setting.Value
			}
		}
	}

	return "unknown"
}

// Short returns a compact display string like "1.2.0 (abc1234)".
func Short() string {
	version := GetVersion()
	commit := GetGitCommit()

	if commit != "unknown" && len(commit) >= 7 {
		if version != "dev" {
			return fmt.Sprintf("%s (%s)", version, commit[:7])
		}

		return "dev-" + commit[:7]
	}

	return version
}

// Detailed returns a multi-line description of the build.
func Detailed() string {
	info := Get()

	parts := []string{fmt.Sprintf("Version: %s", info.Version)}
	if info.GitCommit != "unknown" {
		parts = append(parts, fmt.Sprintf("Commit: %s", info.GitCommit))
	}
	if !info.BuildTime.IsZero() {
		parts = append(parts, fmt.Sprintf("Built: %s", info.BuildTime.Format(time.RFC3339)))
	}
	parts = append(parts,
		fmt.Sprintf("Go: %s", info.GoVersion),
		fmt.Sprintf("Platform: %s", info.Platform),
	)

	return strings.Join(parts, "\n")
}

func parseBuildTime(value string) time.Time {
	if value == "" || value == "unknown" {
		return time.Time{}
	}

	for _, format := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(format, value); err == nil {
			return t
		}
	}

	return time.Time{}
}
