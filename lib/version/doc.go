// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports the build of the sqlfrag binary.
//
// [GitCommit], [GitDirty], [BuildTime] and [Version] are injected with
// -ldflags -X by release builds:
//
//	go build -ldflags "-X github.com/bureau-foundation/sqlfrag/lib/version.GitCommit=$(git rev-parse --short HEAD)"
//
// When they are not injected (go install, go run, tests) [Current]
// falls back to the VCS settings recorded by the Go toolchain in the
// binary's build info.
package version
