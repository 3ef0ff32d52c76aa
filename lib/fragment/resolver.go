// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package fragment

import (
	"errors"
	"fmt"

	"github.com/bureau-foundation/sqlfrag/lib/dom"
	"github.com/bureau-foundation/sqlfrag/lib/interpolate"
	"github.com/bureau-foundation/sqlfrag/lib/scope"
)

// ErrNotFound matches every [*NotFoundError].
var ErrNotFound = errors.New("fragment not found")

// NotFoundError reports a reference to an unregistered fragment.
type NotFoundError struct {
	// RefID is the requested id after interpolation, before
	// namespace qualification.
	RefID string

	// ID is the qualified id that was looked up.
	ID string
}

func (e *NotFoundError) Error() string {
	if e.RefID == e.ID {
		return fmt.Sprintf("could not find SQL fragment to include with refid %q", e.RefID)
	}
	return fmt.Sprintf("could not find SQL fragment to include with refid %q (resolved to %q)", e.RefID, e.ID)
}

// Is reports whether target is [ErrNotFound].
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ResolverConfig holds the collaborators of a [Resolver].
type ResolverConfig struct {
	// Registry is required.
	Registry *Registry

	// Qualify maps a raw id to a registry key. Nil means ids are used
	// as-is.
	Qualify func(id string) string

	// Interpolate expands placeholders in the refid. Nil means
	// [interpolate.Default].
	Interpolate interpolate.Func
}

// Resolver resolves include references to private fragment copies.
type Resolver struct {
	registry    *Registry
	qualify     func(string) string
	interpolate interpolate.Func
}

// NewResolver validates cfg and returns a Resolver.
func NewResolver(cfg ResolverConfig) (*Resolver, error) {
	if cfg.Registry == nil {
		return nil, fmt.Errorf("fragment resolver: Registry is required")
	}
	resolver := &Resolver{
		registry:    cfg.Registry,
		qualify:     cfg.Qualify,
		interpolate: cfg.Interpolate,
	}
	if resolver.qualify == nil {
		resolver.qualify = func(id string) string { return id }
	}
	if resolver.interpolate == nil {
		resolver.interpolate = interpolate.Default
	}
	return resolver, nil
}

// WithQualifier returns a resolver sharing r's registry and
// interpolation but qualifying ids with qualify. Mappers use this to
// resolve references relative to their own namespace. A nil qualify
// uses ids as-is.
func (r *Resolver) WithQualifier(qualify func(string) string) *Resolver {
	copied := *r
	copied.qualify = qualify
	if copied.qualify == nil {
		copied.qualify = func(id string) string { return id }
	}
	return &copied
}

// Resolve returns the qualified id and a deep copy of the fragment
// element named by rawRefID. The copy shares the registered node's
// owner document but no nodes.
func (r *Resolver) Resolve(rawRefID string, vars *scope.Scope) (string, *dom.Node, error) {
	refID := r.interpolate(rawRefID, vars)
	id := r.qualify(refID)
	fragment, ok := r.registry.Lookup(id)
	if !ok {
		return id, nil, &NotFoundError{RefID: refID, ID: id}
	}
	return id, fragment.Node.Clone(), nil
}
