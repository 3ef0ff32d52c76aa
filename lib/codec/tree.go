// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"fmt"

	"github.com/bureau-foundation/sqlfrag/lib/dom"
)

// WireAttr is one attribute of a [WireNode].
type WireAttr struct {
	Name  string `cbor:"n"`
	Value string `cbor:"v"`
}

// WireNode is the serialized form of a dom node and its subtree.
// Processing instructions keep their target in Name and their
// instruction in Data.
type WireNode struct {
	Kind     dom.Kind   `cbor:"k"`
	Name     string     `cbor:"name,omitempty"`
	Attrs    []WireAttr `cbor:"attrs,omitempty"`
	Data     string     `cbor:"data,omitempty"`
	Children []WireNode `cbor:"children,omitempty"`
}

// ToWire converts the subtree rooted at node.
func ToWire(node *dom.Node) WireNode {
	wire := WireNode{Kind: node.Kind(), Name: node.Name(), Data: node.Data()}
	for _, attr := range node.Attrs() {
		wire.Attrs = append(wire.Attrs, WireAttr{Name: attr.Name, Value: attr.Value})
	}
	for _, child := range node.Children() {
		wire.Children = append(wire.Children, ToWire(child))
	}
	return wire
}

// FromWire builds a detached subtree owned by document.
func FromWire(wire WireNode, document *dom.Document) (*dom.Node, error) {
	var node *dom.Node
	switch wire.Kind {
	case dom.ElementNode:
		if wire.Name == "" {
			return nil, fmt.Errorf("element without a name")
		}
		attrs := make([]dom.Attr, len(wire.Attrs))
		for i, attr := range wire.Attrs {
			attrs[i] = dom.Attr{Name: attr.Name, Value: attr.Value}
		}
		node = document.CreateElement(wire.Name, attrs...)
	case dom.TextNode:
		node = document.CreateText(wire.Data)
	case dom.CDATANode:
		node = document.CreateCDATA(wire.Data)
	case dom.CommentNode:
		node = document.CreateComment(wire.Data)
	case dom.ProcInstNode:
		node = document.CreateProcInst(wire.Name, wire.Data)
	case dom.DirectiveNode:
		node = document.CreateDirective(wire.Data)
	default:
		return nil, fmt.Errorf("unknown node kind %d", int(wire.Kind))
	}

	if len(wire.Children) > 0 && wire.Kind != dom.ElementNode {
		return nil, fmt.Errorf("%v node with children", wire.Kind)
	}
	for i, childWire := range wire.Children {
		child, err := FromWire(childWire, document)
		if err != nil {
			return nil, fmt.Errorf("child %d of <%s>: %w", i, wire.Name, err)
		}
		if err := node.AppendChild(child); err != nil {
			return nil, fmt.Errorf("child %d of <%s>: %w", i, wire.Name, err)
		}
	}
	return node, nil
}

// EncodeTree encodes the subtree rooted at node.
func EncodeTree(node *dom.Node) ([]byte, error) {
	return Marshal(ToWire(node))
}

// DecodeTree decodes data produced by [EncodeTree] into a detached
// subtree owned by document.
func DecodeTree(data []byte, document *dom.Document) (*dom.Node, error) {
	var wire WireNode
	if err := Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("decoding tree: %w", err)
	}
	node, err := FromWire(wire, document)
	if err != nil {
		return nil, fmt.Errorf("decoding tree: %w", err)
	}
	return node, nil
}
