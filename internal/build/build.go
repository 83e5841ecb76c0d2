package build

// Set at build time via -ldflags.
var (
	// Version is the release version.
	Version = "dev"
	// Time is the build timestamp.
	Time = "unknown"
)
