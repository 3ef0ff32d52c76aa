// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package include

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every error returned by [Expander.Expand] for a problem
// with the tree itself is an [*Error] matching exactly one of these.
var (
	// ErrUnresolvedReference: the refid names no registered fragment.
	ErrUnresolvedReference = errors.New("unresolved include reference")

	// ErrDuplicateVariable: one include declares the same variable twice.
	ErrDuplicateVariable = errors.New("variable defined twice in the same include definition")

	// ErrMalformedReference: an include lacks refid, a declaration lacks
	// name or value, or an include root has no parent to splice into.
	ErrMalformedReference = errors.New("malformed include")

	// ErrCyclicInclude: a fragment is re-entered with the same scope
	// while it is still being expanded.
	ErrCyclicInclude = errors.New("cyclic include")

	// ErrIncludeDepth: includes nest deeper than the configured limit.
	ErrIncludeDepth = errors.New("include nesting too deep")
)

// Error describes a failed include with the location of the include
// element that caused it.
type Error struct {
	// Kind is one of the Err* sentinels above.
	Kind error

	// Location is the document name, line and path of the include
	// element (or property declaration) involved.
	Location string

	// RefID is the raw refid attribute, when present.
	RefID string

	// Variable names the offending variable for ErrDuplicateVariable.
	Variable string

	// Chain lists the qualified fragment ids being expanded, outermost
	// first, for ErrCyclicInclude and ErrIncludeDepth.
	Chain []string

	// Detail is a short human-readable explanation.
	Detail string

	// Err is the underlying cause, such as the resolver's not-found
	// error.
	Err error
}

func (e *Error) Error() string {
	var builder strings.Builder
	if e.Location != "" {
		builder.WriteString(e.Location)
		builder.WriteString(": ")
	}
	builder.WriteString(e.Kind.Error())
	if e.Variable != "" {
		fmt.Fprintf(&builder, " %q", e.Variable)
	}
	if e.Detail != "" {
		builder.WriteString(": ")
		builder.WriteString(e.Detail)
	}
	if len(e.Chain) > 0 {
		builder.WriteString(" (via ")
		builder.WriteString(strings.Join(e.Chain, " -> "))
		builder.WriteString(")")
	}
	if e.Err != nil {
		builder.WriteString(": ")
		builder.WriteString(e.Err.Error())
	}
	return builder.String()
}

// Is reports whether target is e's kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}
