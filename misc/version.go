// Package misc keeps build time information about the program.
package misc

// Set by linker with -ldflags "-X cn1css/misc.version=... -X cn1css/misc.githash=...".
var (
	version = "dev"
	githash = "unknown"
)

const appName = "cn1css"

func GetAppName() string {
	return appName
}

func GetVersion() string {
	return version
}

func GetGitHash() string {
	return githash
}
