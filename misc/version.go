// Package misc keeps build time information.
package misc

// set by linker flags.
var (
	appName = "odt2rst"
	version = "dev"
	gitHash = "unknown"
)

// GetAppName returns program name used for logs, temporary files and reports.
func GetAppName() string {
	return appName
}

func GetVersion() string {
	return version
}

func GetGitHash() string {
	return gitHash
}
