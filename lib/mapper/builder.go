// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mapper

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bureau-foundation/sqlfrag/lib/dom"
	"github.com/bureau-foundation/sqlfrag/lib/fragment"
	"github.com/bureau-foundation/sqlfrag/lib/include"
	"github.com/bureau-foundation/sqlfrag/lib/interpolate"
	"github.com/bureau-foundation/sqlfrag/lib/scope"
)

// ErrDuplicateStatement is returned when two statements claim the same
// qualified id for the same database.
var ErrDuplicateStatement = errors.New("statement already defined")

// BuilderConfig configures a [Builder].
type BuilderConfig struct {
	// DatabaseID selects database-specific fragments and statements.
	// Empty means only database-independent ones are used.
	DatabaseID string

	// Variables is the base scope for every statement. Nil is empty.
	Variables *scope.Scope

	// Interpolate defaults to [interpolate.Default].
	Interpolate interpolate.Func

	// MaxDepth bounds include nesting (see [include.Config]).
	MaxDepth int

	// Logger receives deferral and summary records. Nil discards.
	Logger *slog.Logger
}

// Builder collects mappers and expands their statements. It is not
// safe for concurrent use.
type Builder struct {
	databaseID  string
	variables   *scope.Scope
	interpolate interpolate.Func
	maxDepth    int
	logger      *slog.Logger

	registry *fragment.Registry
	resolver *fragment.Resolver

	claims  map[string]*claim
	order   []*claim
	mappers int
}

// claim is a statement selected for building, complete or deferred.
type claim struct {
	id         string
	kind       Kind
	databaseID string
	node       *dom.Node
	expander   *include.Expander

	statement *Statement
	deferred  error
}

// NewBuilder returns a Builder with an empty fragment registry.
func NewBuilder(cfg BuilderConfig) *Builder {
	builder := &Builder{
		databaseID:  cfg.DatabaseID,
		variables:   cfg.Variables,
		interpolate: cfg.Interpolate,
		maxDepth:    cfg.MaxDepth,
		logger:      cfg.Logger,
		registry:    fragment.NewRegistry(),
		claims:      make(map[string]*claim),
	}
	if builder.interpolate == nil {
		builder.interpolate = interpolate.Default
	}
	if builder.logger == nil {
		builder.logger = slog.New(slog.DiscardHandler)
	}
	// NewResolver only fails without a registry.
	builder.resolver, _ = fragment.NewResolver(fragment.ResolverConfig{
		Registry:    builder.registry,
		Interpolate: builder.interpolate,
	})
	return builder
}

// Registry returns the fragment registry the builder fills.
func (b *Builder) Registry() *fragment.Registry {
	return b.registry
}

// passes returns the database ids to select, in order. An empty entry
// selects database-independent elements.
func (b *Builder) passes() []string {
	if b.databaseID == "" {
		return []string{""}
	}
	return []string{b.databaseID, ""}
}

// AddFiles parses and adds each mapper file in order.
func (b *Builder) AddFiles(paths ...string) error {
	for _, path := range paths {
		mapper, err := ParseFile(path)
		if err != nil {
			return err
		}
		if err := b.AddMapper(mapper); err != nil {
			return err
		}
	}
	return nil
}

// AddMapper registers the mapper's fragments and builds as many of its
// statements as the fragments registered so far allow. Statements that
// reference missing fragments are deferred to [Builder.Build].
//
// A failed AddMapper may leave the builder partially updated.
func (b *Builder) AddMapper(mapper *Mapper) error {
	if err := b.addFragments(mapper); err != nil {
		return err
	}

	resolver := b.resolver.WithQualifier(mapper.Namespace.QualifyReference)
	expander, err := include.New(include.Config{
		Resolver:    resolver,
		Interpolate: b.interpolate,
		Logger:      b.logger,
		MaxDepth:    b.maxDepth,
	})
	if err != nil {
		return err
	}

	claimed, err := b.claimStatements(mapper, expander)
	if err != nil {
		return err
	}
	b.mappers++

	for _, c := range claimed {
		if _, err := b.attempt(c); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) addFragments(mapper *Mapper) error {
	for _, pass := range b.passes() {
		for _, element := range mapper.Fragments {
			declared, _ := element.Attr(databaseIDAttr)
			if declared != pass {
				continue
			}
			rawID, _ := element.Attr(idAttr)
			id, err := mapper.Namespace.QualifyDefinition(rawID)
			if err != nil {
				return fmt.Errorf("%s: %w", element.Location(), err)
			}
			if pass == "" {
				if existing, held := b.registry.Lookup(id); held && existing.DatabaseID != "" {
					b.logger.Debug("skipping database-independent fragment",
						"id", id, "database_id", existing.DatabaseID, "location", element.Location())
					continue
				}
			}
			err = b.registry.Register(fragment.Fragment{
				ID:         id,
				DatabaseID: declared,
				Source:     mapper.Source(),
				Node:       element,
			})
			if err != nil {
				return fmt.Errorf("%s: %w", element.Location(), err)
			}
		}
	}
	return nil
}

func (b *Builder) claimStatements(mapper *Mapper, expander *include.Expander) ([]*claim, error) {
	var claimed []*claim
	for _, pass := range b.passes() {
		for _, element := range mapper.Statements {
			declared, _ := element.Attr(databaseIDAttr)
			if declared != pass {
				continue
			}
			rawID, _ := element.Attr(idAttr)
			id, err := mapper.Namespace.QualifyDefinition(rawID)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", element.Location(), err)
			}
			if existing, held := b.claims[id]; held {
				if pass == "" && existing.databaseID != "" {
					b.logger.Debug("skipping database-independent statement",
						"id", id, "database_id", existing.databaseID, "location", element.Location())
					continue
				}
				return nil, fmt.Errorf("%s: %w: %q", element.Location(), ErrDuplicateStatement, id)
			}
			c := &claim{
				id:         id,
				kind:       Kind(element.Name()),
				databaseID: declared,
				node:       element,
				expander:   expander,
			}
			b.claims[id] = c
			b.order = append(b.order, c)
			claimed = append(claimed, c)
		}
	}
	return claimed, nil
}

// attempt expands a copy of the claim's statement. It reports false
// without an error when the statement references a fragment that is
// not registered yet.
func (b *Builder) attempt(c *claim) (bool, error) {
	expanded := c.node.Clone()
	err := c.expander.Expand(expanded, b.variables)
	if errors.Is(err, include.ErrUnresolvedReference) {
		if c.deferred == nil {
			b.logger.Debug("deferring statement", "id", c.id, "reason", err)
		}
		c.deferred = err
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("building statement %q: %w", c.id, err)
	}
	c.deferred = nil
	c.statement = &Statement{
		ID:         c.id,
		Kind:       c.kind,
		DatabaseID: c.databaseID,
		Source:     c.node.Owner().Name,
		Node:       expanded,
	}
	return true, nil
}

// Build retries deferred statements until all are complete or a pass
// completes none, and returns every statement in the order mappers and
// statements were added. Statements still incomplete are reported
// together in an [*IncompleteError].
func (b *Builder) Build() ([]*Statement, error) {
	passes := 0
	for {
		passes++
		progress := false
		pending := 0
		for _, c := range b.order {
			if c.statement != nil {
				continue
			}
			built, err := b.attempt(c)
			if err != nil {
				return nil, err
			}
			if built {
				progress = true
			} else {
				pending++
			}
		}
		if pending == 0 || !progress {
			break
		}
	}

	var incomplete []Incomplete
	for _, c := range b.order {
		if c.statement == nil {
			incomplete = append(incomplete, Incomplete{ID: c.id, Source: c.node.Owner().Name, Err: c.deferred})
		}
	}
	if len(incomplete) > 0 {
		b.logger.Warn("statements incomplete", "incomplete", len(incomplete), "statements", len(b.order))
		return nil, &IncompleteError{Statements: incomplete}
	}

	statements := b.Statements()
	b.logger.Info("built statements",
		"statements", len(statements),
		"fragments", b.registry.Len(),
		"mappers", b.mappers,
		"passes", passes,
	)
	return statements, nil
}

// Statements returns the statements completed so far, in the order
// they were added.
func (b *Builder) Statements() []*Statement {
	var statements []*Statement
	for _, c := range b.order {
		if c.statement != nil {
			statements = append(statements, c.statement)
		}
	}
	return statements
}

// Incomplete describes one statement that could not be built.
type Incomplete struct {
	ID     string
	Source string
	Err    error
}

// IncompleteError lists statements whose includes never resolved. It
// matches [include.ErrUnresolvedReference].
type IncompleteError struct {
	Statements []Incomplete
}

func (e *IncompleteError) Error() string {
	parts := make([]string, len(e.Statements))
	for i, statement := range e.Statements {
		parts[i] = fmt.Sprintf("%s: %v", statement.ID, statement.Err)
	}
	noun := "statements"
	if len(parts) == 1 {
		noun = "statement"
	}
	return fmt.Sprintf("%d %s incomplete: %s", len(parts), noun, strings.Join(parts, "; "))
}

func (e *IncompleteError) Unwrap() []error {
	errs := make([]error, len(e.Statements))
	for i, statement := range e.Statements {
		errs[i] = statement.Err
	}
	return errs
}
