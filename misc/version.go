// Package misc keeps build time information.
package misc

import (
	"os"
	"path/filepath"
	"strings"
)

// Set by the linker: -X github.com/cebtenzzre/npf2html/misc.version=...
var (
	version = "dev"
	gitHash = "unknown"
	appName = ""
)

// GetVersion returns application version.
func GetVersion() string {
	return version
}

// GetGitHash returns git commit the application was built from.
func GetGitHash() string {
	return gitHash
}

// GetAppName returns application name, derived from executable name unless
// set at build time.
func GetAppName() string {
	if len(appName) > 0 {
		return appName
	}
	name := filepath.Base(os.Args[0])
	return strings.TrimSuffix(name, filepath.Ext(name))
}
