// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package dom

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a node.
type Kind uint8

const (
	// ElementNode is an element with a name, attributes and children.
	ElementNode Kind = iota + 1
	// TextNode is parsed character data.
	TextNode
	// CommentNode is an XML comment.
	CommentNode
	// ProcInstNode is a processing instruction. Name holds the target.
	ProcInstNode
	// DirectiveNode is a <!...> directive other than a comment.
	DirectiveNode
	// CDATANode is a CDATA section. Its data is kept verbatim.
	CDATANode
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case ElementNode:
		return "element"
	case TextNode:
		return "text"
	case CommentNode:
		return "comment"
	case ProcInstNode:
		return "procinst"
	case DirectiveNode:
		return "directive"
	case CDATANode:
		return "cdata"
	default:
		return fmt.Sprintf("kind(%d)", k)
	}
}

// Errors returned by tree mutations.
var (
	ErrWrongDocument = errors.New("node belongs to a different document")
	ErrAttached      = errors.New("node is already attached to a parent")
	ErrNotElement    = errors.New("only elements can have children")
	ErrHierarchy     = errors.New("node cannot become a descendant of itself")
	ErrNotChild      = errors.New("node is not a child of this parent")
)

// Attr is a single attribute. Name keeps any prefix as written
// ("xmlns:x", "x:attr").
type Attr struct {
	Name  string
	Value string
}

// Document owns a tree of nodes.
type Document struct {
	// Name identifies the document in diagnostics, typically the
	// file it was parsed from.
	Name string

	root *Node
}

// NewDocument returns an empty document.
func NewDocument(name string) *Document {
	return &Document{Name: name}
}

// Root returns the document element, or nil for an empty document.
func (d *Document) Root() *Node {
	return d.root
}

// SetRoot makes node the document element. The node must be a
// detached element owned by d.
func (d *Document) SetRoot(node *Node) error {
	if node.owner != d {
		return ErrWrongDocument
	}
	if node.parent != nil {
		return ErrAttached
	}
	if node.kind != ElementNode {
		return ErrNotElement
	}
	d.root = node
	return nil
}

// CreateElement returns a detached element owned by d.
func (d *Document) CreateElement(name string, attrs ...Attr) *Node {
	node := &Node{kind: ElementNode, name: name, owner: d}
	if len(attrs) > 0 {
		node.attrs = append([]Attr(nil), attrs...)
	}
	return node
}

// CreateText returns a detached text node owned by d.
func (d *Document) CreateText(data string) *Node {
	return &Node{kind: TextNode, data: data, owner: d}
}

// CreateCDATA returns a detached CDATA section owned by d.
func (d *Document) CreateCDATA(data string) *Node {
	return &Node{kind: CDATANode, data: data, owner: d}
}

// CreateComment returns a detached comment owned by d.
func (d *Document) CreateComment(data string) *Node {
	return &Node{kind: CommentNode, data: data, owner: d}
}

// CreateProcInst returns a detached processing instruction owned by d.
func (d *Document) CreateProcInst(target, inst string) *Node {
	return &Node{kind: ProcInstNode, name: target, data: inst, owner: d}
}

// CreateDirective returns a detached directive owned by d.
func (d *Document) CreateDirective(data string) *Node {
	return &Node{kind: DirectiveNode, data: data, owner: d}
}

// Node is a single tree node. The zero value is not usable; create
// nodes through a Document.
type Node struct {
	kind     Kind
	name     string
	attrs    []Attr
	data     string
	children []*Node
	parent   *Node
	owner    *Document
	line     int
}

// Kind returns the node kind.
func (n *Node) Kind() Kind { return n.kind }

// Name returns the element name or processing instruction target.
// Empty for other kinds.
func (n *Node) Name() string { return n.name }

// Owner returns the document that owns n.
func (n *Node) Owner() *Document { return n.owner }

// Parent returns the parent node, or nil when n is detached or is a
// document element.
func (n *Node) Parent() *Node { return n.parent }

// Line returns the 1-based source line n was parsed from, or 0 for
// nodes created programmatically.
func (n *Node) Line() int { return n.line }

// Data returns the character data of text, comment, processing
// instruction and directive nodes.
func (n *Node) Data() string { return n.data }

// SetData replaces the character data.
func (n *Node) SetData(data string) { n.data = data }

// Attr returns the value of the named attribute.
func (n *Node) Attr(name string) (string, bool) {
	for _, attr := range n.attrs {
		if attr.Name == name {
			return attr.Value, true
		}
	}
	return "", false
}

// SetAttr sets an attribute value, keeping the attribute's position
// when it already exists and appending it otherwise.
func (n *Node) SetAttr(name, value string) {
	for i := range n.attrs {
		if n.attrs[i].Name == name {
			n.attrs[i].Value = value
			return
		}
	}
	n.attrs = append(n.attrs, Attr{Name: name, Value: value})
}

// Attrs returns a copy of the attributes in document order.
func (n *Node) Attrs() []Attr {
	return append([]Attr(nil), n.attrs...)
}

// Children returns a copy of the child slice.
func (n *Node) Children() []*Node {
	return append([]*Node(nil), n.children...)
}

// ElementChildren returns the element children in document order.
func (n *Node) ElementChildren() []*Node {
	var result []*Node
	for _, child := range n.children {
		if child.kind == ElementNode {
			result = append(result, child)
		}
	}
	return result
}

// AppendChild attaches child as the last child of n.
func (n *Node) AppendChild(child *Node) error {
	if err := n.checkAdoptable(child); err != nil {
		return err
	}
	child.parent = n
	n.children = append(n.children, child)
	return nil
}

// SetChildren replaces the children of n with children. Entries may
// be current children of n (reordering) or detached nodes owned by
// the same document. The whole list is validated before anything
// changes.
func (n *Node) SetChildren(children []*Node) error {
	if n.kind != ElementNode {
		return ErrNotElement
	}
	seen := make(map[*Node]struct{}, len(children))
	for _, child := range children {
		if _, dup := seen[child]; dup {
			return fmt.Errorf("node listed twice: %w", ErrAttached)
		}
		seen[child] = struct{}{}
		if child.parent == n {
			continue
		}
		if err := n.checkAdoptable(child); err != nil {
			return err
		}
	}

	for _, old := range n.children {
		if _, kept := seen[old]; !kept {
			old.parent = nil
		}
	}
	fresh := make([]*Node, len(children))
	copy(fresh, children)
	for _, child := range fresh {
		child.parent = n
	}
	n.children = fresh
	return nil
}

// ReplaceChild replaces old, which must be a child of n, with
// replacements in order. With no replacements old is simply removed.
// old ends up detached.
func (n *Node) ReplaceChild(old *Node, replacements ...*Node) error {
	if old.parent != n {
		return ErrNotChild
	}
	next := make([]*Node, 0, len(n.children)-1+len(replacements))
	for _, child := range n.children {
		if child == old {
			next = append(next, replacements...)
			continue
		}
		next = append(next, child)
	}
	return n.SetChildren(next)
}

// Remove detaches n from its parent. It is a no-op for detached nodes.
func (n *Node) Remove() {
	parent := n.parent
	if parent == nil {
		return
	}
	next := make([]*Node, 0, len(parent.children)-1)
	for _, child := range parent.children {
		if child != n {
			next = append(next, child)
		}
	}
	parent.children = next
	n.parent = nil
}

func (n *Node) checkAdoptable(child *Node) error {
	if n.kind != ElementNode {
		return ErrNotElement
	}
	if child.owner != n.owner {
		return ErrWrongDocument
	}
	if child.parent != nil {
		return ErrAttached
	}
	if child.owner.root == child {
		return fmt.Errorf("document element: %w", ErrAttached)
	}
	for ancestor := n; ancestor != nil; ancestor = ancestor.parent {
		if ancestor == child {
			return ErrHierarchy
		}
	}
	return nil
}

// Inspect walks the subtree rooted at n in document order. When fn
// returns false the children of that node are skipped.
func (n *Node) Inspect(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, child := range n.children {
		child.Inspect(fn)
	}
}

// TextContent returns the concatenated data of all text and CDATA
// nodes in the subtree rooted at n.
func (n *Node) TextContent() string {
	if n.kind == TextNode || n.kind == CDATANode {
		return n.data
	}
	var builder strings.Builder
	n.Inspect(func(node *Node) bool {
		if node.kind == TextNode || node.kind == CDATANode {
			builder.WriteString(node.data)
		}
		return true
	})
	return builder.String()
}

// Path returns an XPath-like location of n within its tree, such as
// "/mapper/select[2]/include[1]". Used for error context.
func (n *Node) Path() string {
	var steps []string
	for node := n; node != nil; node = node.parent {
		steps = append(steps, node.step())
	}
	var builder strings.Builder
	for i := len(steps) - 1; i >= 0; i-- {
		builder.WriteByte('/')
		builder.WriteString(steps[i])
	}
	return builder.String()
}

func (n *Node) step() string {
	label := n.name
	switch n.kind {
	case TextNode, CDATANode:
		label = "text()"
	case CommentNode:
		label = "comment()"
	case ProcInstNode:
		label = "processing-instruction()"
	case DirectiveNode:
		label = "directive()"
	}
	if n.parent == nil {
		return label
	}
	index := 0
	for _, sibling := range n.parent.children {
		if sibling.kind == n.kind && sibling.name == n.name {
			index++
		}
		if sibling == n {
			break
		}
	}
	return fmt.Sprintf("%s[%d]", label, index)
}

// Location formats n's document name, line and path for diagnostics.
func (n *Node) Location() string {
	name := "<unnamed>"
	if n.owner != nil && n.owner.Name != "" {
		name = n.owner.Name
	}
	if n.line > 0 {
		return fmt.Sprintf("%s:%d: %s", name, n.line, n.Path())
	}
	return fmt.Sprintf("%s: %s", name, n.Path())
}
