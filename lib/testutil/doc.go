// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for sqlfrag packages.
//
// [MustParse] parses an inline XML fixture into a [dom.Document] and
// fails the test on malformed input, so tests can declare trees as
// string literals next to their assertions.
//
// [WriteFile] and [WriteTree] lay fixture files out under a test's
// temporary directory and return their paths. Mapper loading, config
// loading and the CLI tests use them for on-disk fixtures.
//
// [UniqueName] generates monotonically increasing identifiers for test
// disambiguation (database files, fragment ids shared across subtests).
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
package testutil
