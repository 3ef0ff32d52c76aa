// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package fragment

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/bureau-foundation/sqlfrag/lib/dom"
)

// ErrDuplicateFragment is returned when an id is registered twice.
var ErrDuplicateFragment = errors.New("fragment already registered")

// Fragment is a registered <sql> element.
type Fragment struct {
	// ID is the namespace-qualified id.
	ID string

	// DatabaseID is the database the fragment was declared for, or
	// empty for database-independent fragments.
	DatabaseID string

	// Source names the document the fragment came from.
	Source string

	// Node is the fragment element. It belongs to the source document
	// and must not be modified after registration.
	Node *dom.Node
}

// Registry holds fragments by qualified id.
type Registry struct {
	mu        sync.RWMutex
	fragments map[string]*Fragment
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{fragments: make(map[string]*Fragment)}
}

// Register adds fragment. The id must not already be registered.
func (r *Registry) Register(fragment Fragment) error {
	if fragment.ID == "" {
		return fmt.Errorf("registering fragment from %s: empty id", fragment.Source)
	}
	if fragment.Node == nil {
		return fmt.Errorf("registering fragment %q: nil node", fragment.ID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, exists := r.fragments[fragment.ID]; exists {
		return fmt.Errorf("%w: %q from %s (first registered from %s)",
			ErrDuplicateFragment, fragment.ID, fragment.Source, existing.Source)
	}
	registered := fragment
	r.fragments[fragment.ID] = &registered
	return nil
}

// Lookup returns the fragment registered under id. The returned value
// is shared; callers that need to modify the node must clone it.
func (r *Registry) Lookup(id string) (*Fragment, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fragment, ok := r.fragments[id]
	return fragment, ok
}

// Contains reports whether id is registered.
func (r *Registry) Contains(id string) bool {
	_, ok := r.Lookup(id)
	return ok
}

// Len returns the number of registered fragments.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.fragments)
}

// IDs returns the registered ids in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.fragments))
	for id := range r.fragments {
		ids = append(ids, id)
	}
	r.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

// All returns every fragment ordered by id.
func (r *Registry) All() []*Fragment {
	ids := r.IDs()
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]*Fragment, 0, len(ids))
	for _, id := range ids {
		if fragment, ok := r.fragments[id]; ok {
			result = append(result, fragment)
		}
	}
	return result
}
