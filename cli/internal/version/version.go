// Package version reports the build of the schemaforge binary.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set with -ldflags "-X .../version.GitCommit=..." by release builds. When
// they are left unset, Get falls back to the VCS stamp the go tool embeds.
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// Info describes the running binary.
type Info struct {
	Version   string
	BuildDate string
	GitCommit string
	// Modified is set when the binary was built from a dirty tree.
	Modified  bool
	GoVersion string
	Platform  string
}

// Get collects the build information of the running binary.
func Get() Info {
	info := Info{
		Version:   Version,
		BuildDate: BuildDate,
		GitCommit: GitCommit,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		info = info.withSettings(bi.Settings)
	}
	return info
}

// withSettings fills fields left unknown from the vcs.* build settings.
func (i Info) withSettings(settings []debug.BuildSetting) Info {
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			if i.GitCommit == "unknown" && s.Value != "" {
				i.GitCommit = shortCommit(s.Value)
			}
		case "vcs.time":
			if i.BuildDate == "unknown" && s.Value != "" {
				i.BuildDate = s.Value
			}
		case "vcs.modified":
			i.Modified = s.Value == "true"
		}
	}
	return i
}

func shortCommit(rev string) string {
	if len(rev) > 12 {
		return rev[:12]
	}
	return rev
}

func (i Info) String() string {
	return fmt.Sprintf("schemaforge version %s (%s %s)", i.Version, i.Platform, i.GoVersion)
}

// Rows lists the fields for a two-column table.
func (i Info) Rows() [][]string {
	commit := i.GitCommit
	if i.Modified {
		commit += " (modified)"
	}
	return [][]string{
		{"Version", i.Version},
		{"Build date", i.BuildDate},
		{"Git commit", commit},
		{"Platform", i.Platform},
		{"Go version", i.GoVersion},
	}
}
