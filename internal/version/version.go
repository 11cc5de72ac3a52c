// Package version holds build metadata stamped in at link time:
//
//	go build -ldflags "-X git.home.luguber.info/inful/chapterbuilder/internal/version.Version=v1.0.0" ./cmd/chapterbuilder
//
// The version is recorded with every journaled run.
package version

var Version = "dev"

var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String renders the version with its commit when known.
func String() string {
	if GitCommit == "" || GitCommit == "unknown" {
		return Version
	}
	return Version + " (" + GitCommit + ")"
}
