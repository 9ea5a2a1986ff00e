// Package version carries the build metadata stamped into the clippy binary.
package version

import (
	"fmt"
	"runtime"
)

// Stamped through -ldflags by the release build; defaults describe a local
// development build.
var (
	Version   = "dev"
	Commit    = "none"
	Date      = "unknown"
	GoVersion = runtime.Version()
)

// Platform reports the os/arch pair the binary was built for.
func Platform() string {
	return runtime.GOOS + "/" + runtime.GOARCH
}

// Summary is the one-line form shown in the status bar: the version, plus an
// abbreviated commit when one was stamped.
func Summary() string {
	v := Version
	if v == "" {
		v = "dev"
	}
	if Commit != "" && Commit != "none" {
		short := Commit
		if len(short) > 7 {
			short = short[:7]
		}
		return fmt.Sprintf("%s (%s)", v, short)
	}
	return v
}
