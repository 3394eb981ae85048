// Package buildinfo exposes the version stamped into apisbr binaries.
//
// Values are injected with ldflags:
//
//	go build -ldflags "-X github.com/apisbr/apisbr/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/apisbr/apisbr/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/apisbr/apisbr/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" ./cmd/apisbr
package buildinfo

import "fmt"

var (
	// Version is the release tag, "dev" for local builds.
	Version = "dev"

	// Commit is the git commit the binary was built from.
	Commit = "none"

	// Date is the UTC build timestamp.
	Date = "unknown"
)

// Info is the JSON shape served by the HTTP facade's health endpoint.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Get returns the current build information.
func Get() Info {
	return Info{Version: Version, Commit: Commit, Date: Date}
}

// UserAgent is sent with every request to the government APIs.
func UserAgent() string {
	return fmt.Sprintf("apisbr/%s (+https://github.com/apisbr/apisbr)", Version)
}

// Template returns the version template string for cobra.
func Template() string {
	return fmt.Sprintf("{{.Name}} %s (commit %s, built %s)\n", Version, Commit, Date)
}
