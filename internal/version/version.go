package version

import (
	"fmt"
	"io"
	"os"
)

// Build information, set with -ldflags "-X".
var (
	App       string = "Trellis"
	Version   string
	GitCommit string
	BuildTime string
	GoVersion string
	BuildOS   string
	BuildArch string
)

// PrintVersion prints the version information
func PrintVersion() {
	Fprint(os.Stdout)
}

// Fprint writes the version information to w.
func Fprint(w io.Writer) {
	fmt.Fprintf(w, "%s version %s\n", App, String())
	if GitCommit != "" {
		fmt.Fprintf(w, "Git commit: %s\n", ShortCommit())
	}
	if BuildTime != "" {
		fmt.Fprintf(w, "Build time: %s\n", BuildTime)
	}
	if GoVersion != "" {
		fmt.Fprintf(w, "Go version: %s\n", GoVersion)
	}
	if BuildOS != "" && BuildArch != "" {
		fmt.Fprintf(w, "Built for: %s/%s\n", BuildOS, BuildArch)
	}
}

// ShortCommit returns the first seven characters of the commit hash.
func ShortCommit() string {
	if len(GitCommit) > 7 {
		return GitCommit[:7]
	}
	return GitCommit
}

// String returns the release version, "dev" for local builds.
func String() string {
	if Version != "" {
		return Version
	}
	return "dev"
}
