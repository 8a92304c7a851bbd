// Package version carries build metadata, overridden at link time:
//
//	go build -ldflags "-X github.com/MrSnakeDoc/nearby/internal/version.Version=v0.3.0"
package version

import (
	"fmt"
	"runtime"
	"time"
)

var (
	Version   = "dev"                           // ex: v0.1.0
	Commit    = "none"                          // ex: abcd123
	BuildDate = time.Now().Format(time.RFC3339) // ex: 2025-08-11T18:42:00Z
	GoVersion = runtime.Version()               // go version
)

// Build is the metadata block reported by /healthz.
type Build struct {
	Version   string `json:"version,omitempty"`
	Commit    string `json:"commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
	GoVersion string `json:"go_version,omitempty"`
}

func Info() Build {
	return Build{Version: Version, Commit: Commit, BuildDate: BuildDate, GoVersion: GoVersion}
}

func (b Build) String() string {
	return fmt.Sprintf("%s (commit=%s, built=%s, go=%s)", b.Version, b.Commit, b.BuildDate, b.GoVersion)
}
