// Package appinfo reports build information for health and error payloads.
package appinfo

import (
	"os"
	"runtime/debug"
)

// Name is the service name reported by /health.
const Name = "doclib"

// Version checks APP_VERSION, then the module version, then the vcs
// revision recorded by the toolchain.
func Version() string {
	if v := os.Getenv("APP_VERSION"); v != "" {
		return v
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "0.0.0-unknown"
	}
	if info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" && setting.Value != "" {
			if len(setting.Value) > 12 {
				return setting.Value[:12]
			}
			return setting.Value
		}
	}
	return "0.0.0-unknown"
}
