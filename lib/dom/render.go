// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package dom

import (
	"bufio"
	"io"
	"strings"
)

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer(
		"&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;",
		"\n", "&#xA;", "\r", "&#xD;", "\t", "&#x9;",
	)
)

// Render writes node and its subtree as XML.
func Render(w io.Writer, node *Node) error {
	buffered := bufio.NewWriter(w)
	render(buffered, node)
	return buffered.Flush()
}

// RenderChildren writes the children of node as XML, without the
// node's own tags.
func RenderChildren(w io.Writer, node *Node) error {
	buffered := bufio.NewWriter(w)
	for _, child := range node.children {
		render(buffered, child)
	}
	return buffered.Flush()
}

// String returns node rendered as XML.
func (n *Node) String() string {
	var builder strings.Builder
	render(&builder, n)
	return builder.String()
}

// InnerXML returns the children of n rendered as XML.
func (n *Node) InnerXML() string {
	var builder strings.Builder
	for _, child := range n.children {
		render(&builder, child)
	}
	return builder.String()
}

type stringWriter interface {
	io.Writer
	io.StringWriter
	io.ByteWriter
}

// render ignores write errors; bufio.Writer and strings.Builder keep
// the first error and report it on Flush.
func render(w stringWriter, node *Node) {
	switch node.kind {
	case ElementNode:
		w.WriteByte('<')
		w.WriteString(node.name)
		for _, attr := range node.attrs {
			w.WriteByte(' ')
			w.WriteString(attr.Name)
			w.WriteString(`="`)
			attrEscaper.WriteString(w, attr.Value)
			w.WriteByte('"')
		}
		if len(node.children) == 0 {
			w.WriteString("/>")
			return
		}
		w.WriteByte('>')
		for _, child := range node.children {
			render(w, child)
		}
		w.WriteString("</")
		w.WriteString(node.name)
		w.WriteByte('>')
	case TextNode:
		textEscaper.WriteString(w, node.data)
	case CDATANode:
		w.WriteString("<![CDATA[")
		w.WriteString(strings.ReplaceAll(node.data, "]]>", "]]]]><![CDATA[>"))
		w.WriteString("]]>")
	case CommentNode:
		w.WriteString("<!--")
		w.WriteString(node.data)
		w.WriteString("-->")
	case ProcInstNode:
		w.WriteString("<?")
		w.WriteString(node.name)
		if node.data != "" {
			w.WriteByte(' ')
			w.WriteString(node.data)
		}
		w.WriteString("?>")
	case DirectiveNode:
		w.WriteString("<!")
		w.WriteString(node.data)
		w.WriteByte('>')
	}
}
