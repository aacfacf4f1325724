// Package version exposes build metadata injected through -ldflags.
package version

import (
	"fmt"
	"runtime"
)

var (
	// Version is the release version.
	Version = "dev"
	// GitCommit is the source revision.
	GitCommit = "unknown"
	// BuildDate is the build timestamp.
	BuildDate = "unknown"
)

// Info contains version and build metadata.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// Get returns version and build information.
func Get() Info {
	return Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// String returns a one-line version string.
func String() string {
	return fmt.Sprintf("%s (%s, %s)", Version, GitCommit, BuildDate)
}
