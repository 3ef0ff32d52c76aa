// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package dom

// Clone returns a detached deep copy of n owned by the same document.
// Later changes to either tree are invisible to the other.
func (n *Node) Clone() *Node {
	return n.copyInto(n.owner)
}

// Import returns a detached deep copy of node owned by d. The source
// subtree and its document are not modified, so importing never leaves
// nodes shared between documents.
func (d *Document) Import(node *Node) *Node {
	return node.copyInto(d)
}

func (n *Node) copyInto(owner *Document) *Node {
	copied := &Node{
		kind:  n.kind,
		name:  n.name,
		data:  n.data,
		owner: owner,
		line:  n.line,
	}
	if len(n.attrs) > 0 {
		copied.attrs = append([]Attr(nil), n.attrs...)
	}
	if len(n.children) > 0 {
		copied.children = make([]*Node, len(n.children))
		for i, child := range n.children {
			childCopy := child.copyInto(owner)
			childCopy.parent = copied
			copied.children[i] = childCopy
		}
	}
	return copied
}
