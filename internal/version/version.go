// Package version holds build information stamped at link time with
// -ldflags "-X github.com/cristianoliveira/flagtree/internal/version.Version=...".
package version

import "fmt"

// Version is the release of the build.
var Version = "development"

// Commit is the git commit of the build.
var Commit = "unknown"

// String returns Version, followed by "+commit" when the commit is known.
func String() string {
	if Commit != "unknown" && Commit != "" {
		return Version + "+" + Commit
	}
	return Version
}

// Line renders the one-line version banner of program.
func Line(program string) string {
	return fmt.Sprintf("%s version %s", program, String())
}
