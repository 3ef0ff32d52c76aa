// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mapper

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Extension is the file extension of mapper documents.
const Extension = ".xml"

// FindFiles expands paths into mapper files. Directories are searched
// recursively for files ending in [Extension]; regular files are taken
// as given whatever their name. The result is sorted with duplicates
// removed.
func FindFiles(paths ...string) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string
	add := func(path string) {
		clean := filepath.Clean(path)
		if _, exists := seen[clean]; exists {
			return
		}
		seen[clean] = struct{}{}
		files = append(files, clean)
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("finding mappers: %w", err)
		}
		if !info.IsDir() {
			add(root)
			continue
		}
		err = filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !entry.IsDir() && strings.HasSuffix(entry.Name(), Extension) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("finding mappers under %s: %w", root, err)
		}
	}
	sort.Strings(files)
	return files, nil
}
