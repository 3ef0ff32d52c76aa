// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package dom

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"unicode"
)

// Parse reads one XML document from r. name is recorded as the
// document name for diagnostics.
//
// Whitespace, comments, processing instructions and directives outside
// the document element (the XML declaration, a DOCTYPE) are accepted and
// dropped. Inside the document element every token becomes a node;
// whitespace-only text is preserved so rendering round-trips layout.
// CDATA sections become [CDATANode]s and are never merged with
// neighbouring text.
func Parse(r io.Reader, name string) (*Document, error) {
	source, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	decoder := xml.NewDecoder(bytes.NewReader(source))
	document := NewDocument(name)

	var stack []*Node
	rootClosed := false

	for {
		line, _ := decoder.InputPos()
		offset := decoder.InputOffset()
		token, err := decoder.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			if rootClosed {
				return nil, fmt.Errorf("%s:%d: unexpected element <%s> after document end", name, line, qualifiedName(t.Name))
			}
			element := document.CreateElement(qualifiedName(t.Name), convertAttrs(t.Attr)...)
			element.line = line
			if len(stack) > 0 {
				if err := stack[len(stack)-1].AppendChild(element); err != nil {
					return nil, fmt.Errorf("%s:%d: %w", name, line, err)
				}
			} else {
				if err := document.SetRoot(element); err != nil {
					return nil, fmt.Errorf("%s:%d: %w", name, line, err)
				}
			}
			stack = append(stack, element)

		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("%s:%d: unexpected </%s>", name, line, qualifiedName(t.Name))
			}
			open := stack[len(stack)-1]
			if closing := qualifiedName(t.Name); closing != open.name {
				return nil, fmt.Errorf("%s:%d: element <%s> opened on line %d closed by </%s>",
					name, line, open.name, open.line, closing)
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				rootClosed = true
			}

		case xml.CharData:
			if len(stack) == 0 {
				if !isIgnorableOutsideRoot(string(t)) {
					return nil, fmt.Errorf("%s:%d: unexpected character data outside the document element", name, line)
				}
				continue
			}
			if bytes.HasPrefix(source[offset:], cdataOpen) {
				appendNode(stack, document.CreateCDATA(string(t)), line)
			} else {
				appendNode(stack, document.CreateText(string(t)), line)
			}

		case xml.Comment:
			if len(stack) > 0 {
				appendNode(stack, document.CreateComment(string(t)), line)
			}

		case xml.ProcInst:
			if len(stack) > 0 {
				appendNode(stack, document.CreateProcInst(t.Target, string(t.Inst)), line)
			}

		case xml.Directive:
			if len(stack) > 0 {
				appendNode(stack, document.CreateDirective(string(t)), line)
			}
		}
	}

	if len(stack) > 0 {
		open := stack[len(stack)-1]
		return nil, fmt.Errorf("%s: element <%s> opened on line %d is never closed: %w",
			name, open.name, open.line, io.ErrUnexpectedEOF)
	}
	if document.root == nil {
		return nil, fmt.Errorf("%s: no document element: %w", name, io.ErrUnexpectedEOF)
	}
	return document, nil
}

var cdataOpen = []byte("<![CDATA[")

// appendNode attaches a freshly created non-element node to the
// innermost open element. Adjacent text nodes are merged.
func appendNode(stack []*Node, node *Node, line int) {
	parent := stack[len(stack)-1]
	if count := len(parent.children); count > 0 && node.kind == TextNode {
		if previous := parent.children[count-1]; previous.kind == TextNode {
			previous.data += node.data
			return
		}
	}
	node.line = line
	node.parent = parent
	parent.children = append(parent.children, node)
}

func qualifiedName(name xml.Name) string {
	if name.Space == "" {
		return name.Local
	}
	return name.Space + ":" + name.Local
}

func convertAttrs(xmlAttrs []xml.Attr) []Attr {
	attrs := make([]Attr, 0, len(xmlAttrs))
	for _, a := range xmlAttrs {
		attrs = append(attrs, Attr{Name: qualifiedName(a.Name), Value: a.Value})
	}
	return attrs
}

func isIgnorableOutsideRoot(data string) bool {
	for _, r := range data {
		if r == '\uFEFF' {
			continue
		}
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
