// Package version holds build information set with -ldflags, e.g.
//
//	-X github.com/dkoosis/cdashreport/internal/version.Version=v1.2.0
package version

import "fmt"

// These variables are populated by the Go linker (LDFLAGS) at build time.
var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildDate  = "unknown"
)

// String is the multi-line text printed by "cdashreport version".
func String() string {
	return fmt.Sprintf("cdashreport version %s\nCommit: %s\nBuilt: %s\n", Version, CommitHash, BuildDate)
}
