// Package buildinfo holds build-time variables injected via ldflags:
//
//	go build -ldflags "-X github.com/go-ports/dm/internal/buildinfo.Version=v1.2.0"
package buildinfo

import "fmt"

// Populated by -ldflags at build time; defaults used for local dev.
var (
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// Summary renders the version line shown by `dm --version`.
func Summary() string {
	return fmt.Sprintf("%s (commit %s, built %s)", Version, GitCommit, BuildDate)
}
