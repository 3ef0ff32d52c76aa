// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mapper

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/bureau-foundation/sqlfrag/lib/dom"
	"github.com/bureau-foundation/sqlfrag/lib/namespace"
)

// ErrInvalidMapper is returned for documents that are not mapper
// documents.
var ErrInvalidMapper = errors.New("invalid mapper document")

const (
	rootElement     = "mapper"
	fragmentElement = "sql"
	namespaceAttr   = "namespace"
	idAttr          = "id"
	databaseIDAttr  = "databaseId"
)

// Mapper is one parsed mapper document.
type Mapper struct {
	Namespace  namespace.Namespace
	Document   *dom.Document
	Fragments  []*dom.Node
	Statements []*dom.Node
}

// Source returns the name of the document the mapper was parsed from.
func (m *Mapper) Source() string {
	return m.Document.Name
}

// Parse reads a mapper document. name identifies the document in
// diagnostics.
func Parse(r io.Reader, name string) (*Mapper, error) {
	document, err := dom.Parse(r, name)
	if err != nil {
		return nil, err
	}
	return FromDocument(document)
}

// ParseFile reads the mapper document at path.
func ParseFile(path string) (*Mapper, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening mapper: %w", err)
	}
	defer file.Close()
	return Parse(file, path)
}

// FromDocument classifies the children of an already parsed mapper
// document. Elements other than fragments and statements (result
// maps, caches) are ignored.
func FromDocument(document *dom.Document) (*Mapper, error) {
	root := document.Root()
	if root == nil || root.Name() != rootElement {
		return nil, fmt.Errorf("%w: %s: root element must be <%s>", ErrInvalidMapper, document.Name, rootElement)
	}
	value, _ := root.Attr(namespaceAttr)
	space := namespace.Namespace(value)
	if err := space.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidMapper, root.Location(), err)
	}

	mapper := &Mapper{Namespace: space, Document: document}
	for _, element := range root.ElementChildren() {
		switch {
		case element.Name() == fragmentElement:
			mapper.Fragments = append(mapper.Fragments, element)
		case isStatementElement(element.Name()):
			mapper.Statements = append(mapper.Statements, element)
		}
	}
	return mapper, nil
}
