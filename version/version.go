package version

import (
	"fmt"
	"strings"
)

// buildCharset holds the characters allowed in appBuild.
const buildCharset = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz-"

const (
	appMajor uint = 0
	appMinor uint = 3
	appPatch uint = 0
)

// appBuild can be set at link time with
// -ldflags "-X github.com/btcprim/btcprim/version.appBuild=foo".
// It is dropped unless every character is in buildCharset.
var appBuild string

// Version returns the application version, major.minor.patch followed by
// -build when a build tag was linked in.
func Version() string {
	version := fmt.Sprintf("%d.%d.%d", appMajor, appMinor, appPatch)
	if build := sanitizeBuild(appBuild); build != "" {
		version += "-" + build
	}
	return version
}

func sanitizeBuild(build string) string {
	for _, r := range build {
		if !strings.ContainsRune(buildCharset, r) {
			return ""
		}
	}
	return build
}
