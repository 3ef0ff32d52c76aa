// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package dom is the small mutable XML tree that mapper documents are
// parsed into and that include expansion rewrites.
//
// Every [Node] is owned by exactly one [Document]. Nodes never move
// between documents: [Document.Import] produces a deep copy owned by
// the importing document and leaves the source subtree untouched.
// Parent links are navigational only; a node's children slice is the
// single owning reference to it.
//
// Node kinds form a closed set ([ElementNode], [TextNode],
// [CDATANode], [CommentNode], [ProcInstNode], [DirectiveNode]) so tree
// walkers can switch over [Node.Kind] exhaustively.
//
// Child lists are replaced, not edited in place: [Node.SetChildren]
// and [Node.ReplaceChild] validate the whole replacement before
// swapping it in, so a failed mutation leaves the tree as it was.
//
// [Parse] builds a Document from encoding/xml tokens and records the
// source line of each node for diagnostics. [Render] and
// [RenderChildren] serialize back to XML.
//
// This package has no sqlfrag-internal dependencies.
package dom
