package cli

import (
	"runtime/debug"
)

const unknownVersion = "unknown"

// applicationVersion reports the module version recorded in the build info.
func applicationVersion() string {
	buildInfo, buildInfoAvailable := debug.ReadBuildInfo()
	if buildInfoAvailable && buildInfo.Main.Version != "" && buildInfo.Main.Version != "(devel)" {
		return buildInfo.Main.Version
	}
	return unknownVersion
}
