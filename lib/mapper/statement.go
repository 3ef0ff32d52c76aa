// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mapper

import (
	"strings"

	"github.com/bureau-foundation/sqlfrag/lib/digest"
	"github.com/bureau-foundation/sqlfrag/lib/dom"
)

// Kind is the SQL command type of a statement.
type Kind string

const (
	Select Kind = "select"
	Insert Kind = "insert"
	Update Kind = "update"
	Delete Kind = "delete"
)

func isStatementElement(name string) bool {
	switch Kind(name) {
	case Select, Insert, Update, Delete:
		return true
	}
	return false
}

// Statement is a fully expanded statement.
type Statement struct {
	// ID is the namespace-qualified statement id.
	ID string

	Kind Kind

	// DatabaseID is the database the statement was declared for, or
	// empty.
	DatabaseID string

	// Source names the mapper document.
	Source string

	// Node is the expanded statement element. It is a detached copy
	// owned by the source document; the document itself still holds
	// the unexpanded original.
	Node *dom.Node
}

// Body returns the expanded statement content as XML, without the
// statement element itself. Dynamic SQL tags such as <if> are kept.
func (s *Statement) Body() string {
	return s.Node.InnerXML()
}

// Text returns the character data of the statement with runs of
// whitespace collapsed to single spaces.
func (s *Statement) Text() string {
	return strings.Join(strings.Fields(s.Node.TextContent()), " ")
}

// Digest returns the digest of Body.
func (s *Statement) Digest() digest.Digest {
	return digest.OfString(s.Body())
}
