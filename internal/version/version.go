// Package version reports the danmaku build version.
//
// Release builds set both values through ldflags:
//
//	go build -ldflags="-X github.com/muurk/danmaku/internal/version.Version=v1.2.3 \
//	                   -X github.com/muurk/danmaku/internal/version.Commit=abc123"
//
// A binary installed with 'go install github.com/muurk/danmaku/cmd/danmaku@v1.2.3'
// takes the module version from its build info instead. Local builds fall back
// to the VCS stamp, then to "dev".
package version

import (
	"fmt"
	"runtime/debug"
	"time"
)

var (
	// Version is the semantic version of the client
	Version = ""
	// Commit is the short git commit hash
	Commit = ""
)

// shortHashLen is the number of hash characters kept in Commit
const shortHashLen = 7

func init() {
	if Version == "" || Commit == "" {
		if info, ok := debug.ReadBuildInfo(); ok {
			v, c := fromBuildInfo(info)
			if Version == "" {
				Version = v
			}
			if Commit == "" {
				Commit = c
			}
		}
	}

	if Version == "" {
		Version = "dev"
	}
	if Commit == "" {
		Commit = "unknown"
	}
}

// fromBuildInfo derives a version and commit from the toolchain's build info.
// A tagged module version wins; otherwise the VCS commit date gives a
// dev-YYYYMMDD version.
func fromBuildInfo(info *debug.BuildInfo) (version, commit string) {
	settings := make(map[string]string, len(info.Settings))
	for _, s := range info.Settings {
		settings[s.Key] = s.Value
	}

	if rev := settings["vcs.revision"]; rev != "" {
		if len(rev) > shortHashLen {
			rev = rev[:shortHashLen]
		}
		commit = rev
		if settings["vcs.modified"] == "true" {
			commit += "-dirty"
		}
	}

	if v := info.Main.Version; v != "" && v != "(devel)" {
		return v, commit
	}
	if t, err := time.Parse(time.RFC3339, settings["vcs.time"]); err == nil {
		version = "dev-" + t.Format("20060102")
	}
	return version, commit
}

// Full returns the version string printed by 'danmaku version'
func Full() string {
	return fmt.Sprintf("%s (commit: %s)", Version, Commit)
}
