// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package scope holds the immutable variable scopes used for
// placeholder interpolation during include expansion.
//
// A [Scope] is an ordered name → value mapping. Scopes are never
// modified after construction: [Scope.Overlay] returns a new scope
// whose entries are the receiver's, with overlay values replacing
// matching names in place and new names appended in declaration
// order. A nil *Scope is a valid, empty scope, so callers can pass an
// absent base variable set without special-casing it.
package scope

import (
	"encoding/binary"
	"fmt"
	"sort"
	"strings"
)

// Entry is one variable binding.
type Entry struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// Scope is an immutable ordered set of variable bindings.
type Scope struct {
	entries []Entry
	index   map[string]int
}

// New builds a scope from entries in order. A name given twice keeps
// its first position and its last value, matching the way a
// properties file is read.
func New(entries ...Entry) *Scope {
	scope := &Scope{index: make(map[string]int, len(entries))}
	for _, entry := range entries {
		scope.set(entry)
	}
	return scope
}

// FromMap builds a scope from an unordered map. Names are sorted so
// the resulting order is deterministic.
func FromMap(values map[string]string) *Scope {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	entries := make([]Entry, len(names))
	for i, name := range names {
		entries[i] = Entry{Name: name, Value: values[name]}
	}
	return New(entries...)
}

func (s *Scope) set(entry Entry) {
	if position, exists := s.index[entry.Name]; exists {
		s.entries[position].Value = entry.Value
		return
	}
	s.index[entry.Name] = len(s.entries)
	s.entries = append(s.entries, entry)
}

// Lookup returns the value bound to name.
func (s *Scope) Lookup(name string) (string, bool) {
	if s == nil {
		return "", false
	}
	position, ok := s.index[name]
	if !ok {
		return "", false
	}
	return s.entries[position].Value, true
}

// Len returns the number of bindings.
func (s *Scope) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// IsEmpty reports whether the scope has no bindings.
func (s *Scope) IsEmpty() bool {
	return s.Len() == 0
}

// Entries returns a copy of the bindings in order.
func (s *Scope) Entries() []Entry {
	if s == nil {
		return nil
	}
	return append([]Entry(nil), s.entries...)
}

// Map returns the bindings as a fresh map.
func (s *Scope) Map() map[string]string {
	result := make(map[string]string, s.Len())
	if s == nil {
		return result
	}
	for _, entry := range s.entries {
		result[entry.Name] = entry.Value
	}
	return result
}

// Overlay returns a new scope with entries laid over s. Overlay
// values win on name collisions. The receiver is not modified. With
// no entries Overlay returns s itself.
func (s *Scope) Overlay(entries ...Entry) *Scope {
	if len(entries) == 0 {
		return s
	}
	result := &Scope{
		entries: make([]Entry, 0, s.Len()+len(entries)),
		index:   make(map[string]int, s.Len()+len(entries)),
	}
	if s != nil {
		result.entries = append(result.entries, s.entries...)
		for name, position := range s.index {
			result.index[name] = position
		}
	}
	for _, entry := range entries {
		result.set(entry)
	}
	return result
}

// Fingerprint returns a canonical encoding of the bindings that is
// independent of their order. Two scopes with equal bindings have
// equal fingerprints.
func (s *Scope) Fingerprint() string {
	if s.IsEmpty() {
		return ""
	}
	sorted := s.Entries()
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	var builder strings.Builder
	var length [binary.MaxVarintLen64]byte
	for _, entry := range sorted {
		for _, field := range []string{entry.Name, entry.Value} {
			n := binary.PutUvarint(length[:], uint64(len(field)))
			builder.Write(length[:n])
			builder.WriteString(field)
		}
	}
	return builder.String()
}

// String formats the scope as {name=value, ...} for logs and errors.
func (s *Scope) String() string {
	if s.IsEmpty() {
		return "{}"
	}
	parts := make([]string, len(s.entries))
	for i, entry := range s.entries {
		parts[i] = fmt.Sprintf("%s=%q", entry.Name, entry.Value)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
