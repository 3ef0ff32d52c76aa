// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package namespace qualifies fragment and statement identifiers with
// the namespace of the mapper that declares or references them.
//
// Definitions (an <sql id> or a statement id) must be local names: an
// id is qualified as "namespace.id", and a dotted id is accepted only
// when it already carries the enclosing namespace. References
// (an include refid) may point anywhere: a dotted reference is taken
// as already qualified, a bare one resolves within the current
// namespace.
package namespace

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrInvalid is returned for namespaces and identifiers that cannot be
// qualified.
var ErrInvalid = errors.New("invalid namespace")

// Namespace is the namespace of one mapper document.
type Namespace string

// Validate checks that the namespace is non-empty and contains no
// whitespace.
func (n Namespace) Validate() error {
	if n == "" {
		return fmt.Errorf("%w: namespace is empty", ErrInvalid)
	}
	if strings.IndexFunc(string(n), unicode.IsSpace) >= 0 {
		return fmt.Errorf("%w: namespace %q contains whitespace", ErrInvalid, string(n))
	}
	if strings.HasPrefix(string(n), ".") || strings.HasSuffix(string(n), ".") {
		return fmt.Errorf("%w: namespace %q starts or ends with a dot", ErrInvalid, string(n))
	}
	return nil
}

// QualifyReference qualifies a reference to another element. Dotted
// ids are returned unchanged.
func (n Namespace) QualifyReference(id string) string {
	if strings.Contains(id, ".") {
		return id
	}
	return string(n) + "." + id
}

// QualifyDefinition qualifies the id of an element declared in this
// namespace.
func (n Namespace) QualifyDefinition(id string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("%w: empty id in namespace %q", ErrInvalid, string(n))
	}
	if strings.HasPrefix(id, string(n)+".") {
		return id, nil
	}
	if strings.Contains(id, ".") {
		return "", fmt.Errorf("%w: dots are not allowed in element names, please remove it from %q", ErrInvalid, id)
	}
	return string(n) + "." + id, nil
}

// Local strips this namespace's prefix from a qualified id. Ids from
// other namespaces are returned unchanged.
func (n Namespace) Local(id string) string {
	return strings.TrimPrefix(id, string(n)+".")
}

// Split separates a qualified id into namespace and local name at the
// last dot. An id without a dot has an empty namespace.
func Split(id string) (Namespace, string) {
	index := strings.LastIndexByte(id, '.')
	if index < 0 {
		return "", id
	}
	return Namespace(id[:index]), id[index+1:]
}
