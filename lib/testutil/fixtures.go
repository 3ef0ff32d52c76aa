// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/bureau-foundation/sqlfrag/lib/dom"
)

// MustParse parses source as an XML document named name.
//
//	document := testutil.MustParse(t, "a.xml", `<p><include refid="f"/></p>`)
func MustParse(t testing.TB, name, source string) *dom.Document {
	t.Helper()
	document, err := dom.Parse(strings.NewReader(source), name)
	if err != nil {
		t.Fatalf("parsing fixture %s: %v", name, err)
	}
	return document
}

// WriteFile writes content to name under directory, creating parent
// directories as needed, and returns the full path.
func WriteFile(t testing.TB, directory, name, content string) string {
	t.Helper()
	path := filepath.Join(directory, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("creating fixture directory for %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture %s: %v", name, err)
	}
	return path
}

// WriteTree writes every entry of files (relative path → content) under
// a fresh temporary directory and returns the directory. Files are
// written in sorted order so failures are reproducible.
func WriteTree(t testing.TB, files map[string]string) string {
	t.Helper()
	directory := t.TempDir()
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		WriteFile(t, directory, name, files[name])
	}
	return directory
}

var uniqueCounter atomic.Uint64

// UniqueName returns a string of the form "prefix-N" where N is a
// monotonically increasing integer.
func UniqueName(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, uniqueCounter.Add(1))
}
