// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set via -ldflags at build time.
var (
	GitCommit = "unknown"
	GitDirty  = "false"
	BuildTime = "unknown"
	Version   = "0.1.0-dev"
)

// Build describes one binary. It is the payload of "sqlfrag version --json".
type Build struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Dirty     bool   `json:"dirty"`
	BuildTime string `json:"build_time"`
	Go        string `json:"go"`
	Platform  string `json:"platform"`
}

// Current returns the running binary's build.
func Current() Build {
	build := Build{
		Version:   Version,
		Commit:    GitCommit,
		Dirty:     GitDirty == "true",
		BuildTime: BuildTime,
		Go:        runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		build.fillFromBuildInfo(info)
	}
	return build
}

// fillFromBuildInfo replaces fields left at their defaults with the
// toolchain's VCS stamps.
func (b *Build) fillFromBuildInfo(info *debug.BuildInfo) {
	if b.Version == "0.1.0-dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		b.Version = info.Main.Version
	}
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			if b.Commit == "unknown" && setting.Value != "" {
				b.Commit = setting.Value
				if len(b.Commit) > 12 {
					b.Commit = b.Commit[:12]
				}
			}
		case "vcs.time":
			if b.BuildTime == "unknown" && setting.Value != "" {
				b.BuildTime = setting.Value
			}
		case "vcs.modified":
			if GitDirty == "false" && setting.Value == "true" {
				b.Dirty = true
			}
		}
	}
}

// String formats the build for --version output:
// "0.1.0-dev (abc1234, 2026-02-10T...)".
func (b Build) String() string {
	dirty := ""
	if b.Dirty {
		dirty = "-dirty"
	}
	return fmt.Sprintf("%s (%s%s, %s)", b.Version, b.Commit, dirty, b.BuildTime)
}

// Full adds the Go version and platform to String.
func (b Build) Full() string {
	return fmt.Sprintf("%s\n  Go: %s\n  Platform: %s", b.String(), b.Go, b.Platform)
}

// Info returns Current().String().
func Info() string {
	return Current().String()
}
