// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package include

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/sqlfrag/lib/dom"
	"github.com/bureau-foundation/sqlfrag/lib/fragment"
	"github.com/bureau-foundation/sqlfrag/lib/interpolate"
	"github.com/bureau-foundation/sqlfrag/lib/scope"
)

// DefaultMaxDepth bounds include nesting when Config.MaxDepth is zero.
const DefaultMaxDepth = 64

const (
	elementName = "include"
	refIDAttr   = "refid"
	nameAttr    = "name"
	valueAttr   = "value"
)

// Resolver maps a raw refid to a private copy of the fragment it
// names. The returned id is the qualified id, used to detect cycles
// and in diagnostics. A missing fragment must be reported with an
// error matching [fragment.ErrNotFound].
type Resolver interface {
	Resolve(refID string, vars *scope.Scope) (id string, node *dom.Node, err error)
}

// Config holds the collaborators of an [Expander].
type Config struct {
	// Resolver is required.
	Resolver Resolver

	// Interpolate substitutes variables into included content and
	// declared values. Nil means [interpolate.Default].
	Interpolate interpolate.Func

	// Logger receives a debug record per resolved include. Nil
	// discards.
	Logger *slog.Logger

	// MaxDepth bounds include nesting. Zero or negative means
	// DefaultMaxDepth.
	MaxDepth int
}

// Expander rewrites include directives. It holds no per-call state
// and may be shared by goroutines expanding distinct trees.
type Expander struct {
	resolver    Resolver
	interpolate interpolate.Func
	logger      *slog.Logger
	maxDepth    int
}

// New validates cfg and returns an Expander.
func New(cfg Config) (*Expander, error) {
	if cfg.Resolver == nil {
		return nil, fmt.Errorf("include expander: Resolver is required")
	}
	expander := &Expander{
		resolver:    cfg.Resolver,
		interpolate: cfg.Interpolate,
		logger:      cfg.Logger,
		maxDepth:    cfg.MaxDepth,
	}
	if expander.interpolate == nil {
		expander.interpolate = interpolate.Default
	}
	if expander.logger == nil {
		expander.logger = slog.New(slog.DiscardHandler)
	}
	if expander.maxDepth <= 0 {
		expander.maxDepth = DefaultMaxDepth
	}
	return expander, nil
}

// Expand rewrites the tree rooted at root so that no include elements
// remain. base is the scope for top-level includes and may be nil.
// If root is itself an include it is replaced within its parent.
//
// On error the tree may be partially expanded.
func (e *Expander) Expand(root *dom.Node, base *scope.Scope) error {
	run := &expansion{Expander: e}
	if !isInclude(root) {
		return run.walk(root, base, false)
	}
	parent := root.Parent()
	if parent == nil {
		return &Error{
			Kind:     ErrMalformedReference,
			Location: root.Location(),
			Detail:   "include has no parent to expand into",
		}
	}
	replacements, err := run.expandInclude(root, base)
	if err != nil {
		return err
	}
	if err := parent.ReplaceChild(root, replacements...); err != nil {
		return fmt.Errorf("splicing include at %s: %w", root.Location(), err)
	}
	return nil
}

// frame is one fragment on the active include chain.
type frame struct {
	id          string
	fingerprint string
}

// expansion carries the include chain of a single Expand call.
type expansion struct {
	*Expander
	chain []frame
}

func (x *expansion) walk(node *dom.Node, vars *scope.Scope, included bool) error {
	substitute := included && !vars.IsEmpty()
	switch node.Kind() {
	case dom.ElementNode:
		if substitute {
			for _, attr := range node.Attrs() {
				node.SetAttr(attr.Name, x.interpolate(attr.Value, vars))
			}
		}
		return x.walkChildren(node, vars, included)
	case dom.TextNode:
		if substitute {
			node.SetData(x.interpolate(node.Data(), vars))
		}
		return nil
	case dom.CDATANode, dom.CommentNode, dom.ProcInstNode, dom.DirectiveNode:
		return nil
	default:
		return fmt.Errorf("expanding %s: unexpected node kind %v", node.Location(), node.Kind())
	}
}

// walkChildren expands node's children into a fresh list and installs
// it in one step.
func (x *expansion) walkChildren(node *dom.Node, vars *scope.Scope, included bool) error {
	children := node.Children()
	if len(children) == 0 {
		return nil
	}
	rebuilt := make([]*dom.Node, 0, len(children))
	changed := false
	for _, child := range children {
		if !isInclude(child) {
			if err := x.walk(child, vars, included); err != nil {
				return err
			}
			rebuilt = append(rebuilt, child)
			continue
		}
		replacements, err := x.expandInclude(child, vars)
		if err != nil {
			return err
		}
		rebuilt = append(rebuilt, replacements...)
		changed = true
	}
	if !changed {
		return nil
	}
	if err := node.SetChildren(rebuilt); err != nil {
		return fmt.Errorf("replacing children of %s: %w", node.Location(), err)
	}
	return nil
}

// expandInclude resolves and expands one include element and returns
// the detached nodes that replace it, owned by the include's document.
func (x *expansion) expandInclude(include *dom.Node, vars *scope.Scope) ([]*dom.Node, error) {
	rawRefID, ok := include.Attr(refIDAttr)
	if !ok {
		return nil, &Error{
			Kind:     ErrMalformedReference,
			Location: include.Location(),
			Detail:   "missing refid attribute",
		}
	}

	id, resolved, err := x.resolver.Resolve(rawRefID, vars)
	if err != nil {
		if errors.Is(err, fragment.ErrNotFound) {
			return nil, &Error{
				Kind:     ErrUnresolvedReference,
				Location: include.Location(),
				RefID:    rawRefID,
				Err:      err,
			}
		}
		return nil, fmt.Errorf("resolving include %q at %s: %w", rawRefID, include.Location(), err)
	}

	childScope, err := x.childScope(include, vars)
	if err != nil {
		return nil, err
	}

	current := frame{id: id, fingerprint: childScope.Fingerprint()}
	for _, active := range x.chain {
		if active == current {
			return nil, &Error{
				Kind:     ErrCyclicInclude,
				Location: include.Location(),
				RefID:    rawRefID,
				Detail:   fmt.Sprintf("%q includes itself with scope %s", id, childScope),
				Chain:    x.chainIDs(id),
			}
		}
	}
	if len(x.chain) >= x.maxDepth {
		return nil, &Error{
			Kind:     ErrIncludeDepth,
			Location: include.Location(),
			RefID:    rawRefID,
			Detail:   fmt.Sprintf("more than %d nested includes", x.maxDepth),
			Chain:    x.chainIDs(id),
		}
	}

	x.logger.Debug("resolved include",
		"refid", rawRefID,
		"id", id,
		"depth", len(x.chain)+1,
		"variables", childScope.Len(),
		"location", include.Location(),
	)

	x.chain = append(x.chain, current)
	err = x.walk(resolved, childScope, true)
	x.chain = x.chain[:len(x.chain)-1]
	if err != nil {
		return nil, err
	}

	target := include.Owner()
	if resolved.Owner() != target {
		resolved = target.Import(resolved)
	}
	replacements := resolved.Children()
	if err := resolved.SetChildren(nil); err != nil {
		return nil, fmt.Errorf("detaching fragment %q: %w", id, err)
	}
	return replacements, nil
}

// childScope overlays the include's property declarations on
// inherited. Values are interpolated against inherited only.
func (x *expansion) childScope(include *dom.Node, inherited *scope.Scope) (*scope.Scope, error) {
	declarations := include.ElementChildren()
	if len(declarations) == 0 {
		return inherited, nil
	}
	declared := make([]scope.Entry, 0, len(declarations))
	seen := make(map[string]struct{}, len(declarations))
	for _, declaration := range declarations {
		name, hasName := declaration.Attr(nameAttr)
		value, hasValue := declaration.Attr(valueAttr)
		if !hasName || !hasValue {
			return nil, &Error{
				Kind:     ErrMalformedReference,
				Location: declaration.Location(),
				Detail:   "property declaration requires name and value attributes",
			}
		}
		if _, duplicate := seen[name]; duplicate {
			return nil, &Error{
				Kind:     ErrDuplicateVariable,
				Location: declaration.Location(),
				Variable: name,
			}
		}
		seen[name] = struct{}{}
		declared = append(declared, scope.Entry{Name: name, Value: x.interpolate(value, inherited)})
	}
	return inherited.Overlay(declared...), nil
}

func (x *expansion) chainIDs(next string) []string {
	ids := make([]string, 0, len(x.chain)+1)
	for _, active := range x.chain {
		ids = append(ids, active.id)
	}
	return append(ids, next)
}

func isInclude(node *dom.Node) bool {
	return node.Kind() == dom.ElementNode && node.Name() == elementName
}
