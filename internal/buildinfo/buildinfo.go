// Package buildinfo holds build-time metadata injected via -ldflags.
package buildinfo

// Version is the semantic version or tag for this build.
// Inject via: -X github.com/rvceconnect/rvce-connect-go/internal/buildinfo.Version=...
var Version = ""

// Commit is the git commit SHA for this build.
// Inject via: -X github.com/rvceconnect/rvce-connect-go/internal/buildinfo.Commit=...
var Commit = ""

// BuildDate is the RFC3339 build timestamp.
// Inject via: -X github.com/rvceconnect/rvce-connect-go/internal/buildinfo.BuildDate=...
var BuildDate = ""

// String returns "version (commit)" for logs, with "dev" when no version was injected.
func String() string {
	v := Version
	if v == "" {
		v = "dev"
	}
	if Commit == "" {
		return v
	}
	c := Commit
	if len(c) > 7 {
		c = c[:7]
	}
	return v + " (" + c + ")"
}
