// Package misc keeps program identification in one place.
package misc

import (
	"runtime/debug"
	"strings"
)

const appName = "cbundle"

// Overwritten with -ldflags "-X cbundle/misc.version=..." by release builds.
var (
	version = "dev"
	githash = ""
)

// GetAppName returns program name used for logs, reports and temporary files.
func GetAppName() string {
	return appName
}

// GetVersion returns program version.
func GetVersion() string {
	return version
}

// GetGitHash returns short vcs revision program was built from, either
// injected at link time or read from embedded build information.
func GetGitHash() string {
	if len(githash) > 0 {
		return githash
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	var rev string
	var dirty bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if len(rev) == 0 {
		return "unknown"
	}
	if len(rev) > 8 {
		rev = rev[:8]
	}
	if dirty {
		rev = strings.Join([]string{rev, "dirty"}, "-")
	}
	return rev
}
