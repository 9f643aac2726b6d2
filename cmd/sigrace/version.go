package main

import "runtime/debug"

// version is set at build time via ldflags:
//
//	go build -ldflags "-X main.version=0.1.0"
//
// When ldflags are not set (bare go build), resolveVersion reads the VCS
// info that Go embeds automatically, so dev builds get a useful version
// string without needing git at runtime.
var version = "dev"

// resolveVersion returns the build version string. If [version] was set via
// ldflags at build time it is returned as-is; otherwise VCS revision and
// dirty state embedded by the Go toolchain are used to construct a
// "dev+<hash>" tag.
func resolveVersion() string {
	if version != "dev" {
		return version
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return version
	}
	var revision string
	var dirty bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if revision == "" {
		return version
	}
	hash := revision[:min(7, len(revision))]
	if dirty {
		return "dev+" + hash + ".dirty"
	}
	return "dev+" + hash
}
