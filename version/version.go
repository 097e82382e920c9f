package version

// Set by --ldflags on build time, e.g.
// -X github.com/starkedge/mempool/version.Commit=$(git rev-parse HEAD)
// Versioning should follow the SemVer guidelines
// https://semver.org/
var (
	Version   = "v0.1.0"
	Commit    string
	Branch    string
	BuildTime string
)
