// Package version exposes build metadata stamped at link time.
package version

import "fmt"

// Populated via -ldflags "-X github.com/Sumatoshi-tech/lariat/pkg/version.Version=...".
var (
	// Version is the semantic release version.
	Version = "dev"

	// Commit is the Git hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// String renders the full build identity on one line.
func String() string {
	return fmt.Sprintf("lariat %s (commit %s, built %s)", Version, Commit, Date)
}
