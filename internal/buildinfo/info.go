// Package buildinfo holds release metadata stamped in at link time:
//
//	go build -ldflags "-X github.com/cleared-dev/stmtconv/internal/buildinfo.Version=v1.2.0"
package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Summary formats the metadata for --version output.
func Summary() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date)
}
