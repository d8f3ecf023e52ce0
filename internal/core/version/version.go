// Package version reports build information
package version

// BuildInfo holds version information about the build
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Info returns the build information
// set with -ldflags "-X 'datemerge/internal/core/version.version=v0.1.0' -X 'datemerge/internal/core/version.commit=abcd'"
func Info() BuildInfo {
	return BuildInfo{
		Service: service,
		Version: version,
		Commit:  commit,
		Date:    date,
	}
}

var (
	service = "datemerge"
	version = "dev"
	commit  = "none"
	date    = "unknown"
)
