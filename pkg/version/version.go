// Package version carries build metadata stamped in by the linker.
package version

import (
	"fmt"
	"runtime/debug"
)

// Set with -ldflags "-X github.com/Sumatoshi-tech/paramspace/pkg/version.Version=...".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

const (
	devVersion  = "dev"
	unknownInfo = "none"
	unknownDate = "unknown"
	shortCommit = 12
)

// InitBinaryVersion fills unset fields from the embedded build info, which
// covers binaries built with go install.
func InitBinaryVersion() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	apply(info)
}

func apply(info *debug.BuildInfo) {
	if Version == devVersion && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}

	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			if Commit == unknownInfo && setting.Value != "" {
				Commit = setting.Value[:min(len(setting.Value), shortCommit)]
			}
		case "vcs.time":
			if Date == unknownDate && setting.Value != "" {
				Date = setting.Value
			}
		}
	}
}

// String formats the metadata for the version command.
func String(binary string) string {
	return fmt.Sprintf("%s %s (commit: %s, built: %s)", binary, Version, Commit, Date)
}
