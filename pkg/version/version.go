package version

// Base version information, overridden at build time via ldflags, e.g.
// -X github.com/balanshq/balans/pkg/version.gitCommit=$(git rev-parse HEAD)
var (
	gitCommit  = "unknown"
	gitVersion = "unknown"
	buildDate  = "unknown"
)

// Info holds the version details stamped into the binary.
type Info struct {
	GitCommit  string `json:"gitCommit"`
	GitVersion string `json:"gitVersion"`
	BuildDate  string `json:"buildDate"`
}

func Get() Info {
	return Info{
		GitCommit:  gitCommit,
		GitVersion: gitVersion,
		BuildDate:  buildDate,
	}
}
