package version

// Version is the version of the sharepoint CLI. It is overridden at build
// time with -ldflags "-X .../internal/version.Version=...".
var Version = "0.1.0-dev"

// GitCommit is the commit the binary was built from, if known.
var GitCommit = ""

// String returns the version with the commit when it is set.
func String() string {
	if GitCommit == "" {
		return Version
	}
	return Version + " (" + GitCommit + ")"
}
