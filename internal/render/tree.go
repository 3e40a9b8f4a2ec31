// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

type nodeKind int

const (
	elementNode nodeKind = iota
	textNode
	procInstNode
	commentNode
	directiveNode
)

// node is a namespace-prefix preserving XML tree. Names keep the prefix
// as written in the source (Space holds the prefix, not the URI) so that
// parts round-trip without namespace rewriting.
type node struct {
	kind     nodeKind
	name     xml.Name
	attrs    []xml.Attr
	children []*node

	// text holds character data, comment text, directive text or the
	// processing instruction body.
	text string
}

func parseTree(data []byte) (*node, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = true

	root := &node{kind: elementNode}
	stack := []*node{root}
	for {
		tok, err := dec.RawToken()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing xml: %w", err)
		}
		top := stack[len(stack)-1]
		switch t := tok.(type) {
		case xml.StartElement:
			n := &node{kind: elementNode, name: t.Name, attrs: append([]xml.Attr(nil), t.Attr...)}
			top.children = append(top.children, n)
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) == 1 {
				return nil, fmt.Errorf("parsing xml: unexpected end element %s", t.Name.Local)
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			top.children = append(top.children, &node{kind: textNode, text: string(t)})
		case xml.ProcInst:
			top.children = append(top.children, &node{kind: procInstNode, name: xml.Name{Local: t.Target}, text: string(t.Inst)})
		case xml.Comment:
			top.children = append(top.children, &node{kind: commentNode, text: string(t)})
		case xml.Directive:
			top.children = append(top.children, &node{kind: directiveNode, text: string(t)})
		}
	}
	if len(stack) != 1 {
		return nil, fmt.Errorf("parsing xml: unclosed element %s", stack[len(stack)-1].name.Local)
	}
	return root, nil
}

// is reports whether n is the element prefix:local.
func (n *node) is(prefix, local string) bool {
	return n.kind == elementNode && n.name.Space == prefix && n.name.Local == local
}

// element returns the first child element of n named prefix:local.
func (n *node) element(prefix, local string) *node {
	for _, c := range n.children {
		if c.is(prefix, local) {
			return c
		}
	}
	return nil
}

// innerText concatenates all character data below n.
func (n *node) innerText() string {
	var sb strings.Builder
	var walk func(*node)
	walk = func(m *node) {
		if m.kind == textNode {
			sb.WriteString(m.text)
			return
		}
		for _, c := range m.children {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// clone copies n and its whole subtree.
func (n *node) clone() *node {
	c := n.shallow()
	if len(n.children) > 0 {
		c.children = make([]*node, len(n.children))
		for i, ch := range n.children {
			c.children[i] = ch.clone()
		}
	}
	return c
}

// shallow copies n without its children.
func (n *node) shallow() *node {
	return &node{
		kind:  n.kind,
		name:  n.name,
		attrs: append([]xml.Attr(nil), n.attrs...),
		text:  n.text,
	}
}

func (n *node) setAttr(prefix, local, value string) {
	for i, a := range n.attrs {
		if a.Name.Space == prefix && a.Name.Local == local {
			n.attrs[i].Value = value
			return
		}
	}
	n.attrs = append(n.attrs, xml.Attr{Name: xml.Name{Space: prefix, Local: local}, Value: value})
}

// serialize writes the children of the document root.
func serialize(root *node) ([]byte, error) {
	var buf bytes.Buffer
	for _, c := range root.children {
		if err := writeNode(&buf, c); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;", "\n", "&#xA;", "\r", "&#xD;", "\t", "&#x9;")
)

func qualified(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

func writeNode(buf *bytes.Buffer, n *node) error {
	switch n.kind {
	case textNode:
		textEscaper.WriteString(buf, n.text)
		return nil
	case procInstNode:
		buf.WriteString("<?" + n.name.Local)
		if n.text != "" {
			buf.WriteString(" " + n.text)
		}
		buf.WriteString("?>")
		return nil
	case commentNode:
		buf.WriteString("<!--" + n.text + "-->")
		return nil
	case directiveNode:
		buf.WriteString("<!" + n.text + ">")
		return nil
	}

	buf.WriteString("<" + qualified(n.name))
	for _, a := range n.attrs {
		buf.WriteString(" " + qualified(a.Name) + `="`)
		attrEscaper.WriteString(buf, a.Value)
		buf.WriteString(`"`)
	}
	if len(n.children) == 0 {
		buf.WriteString("/>")
		return nil
	}
	buf.WriteString(">")
	for _, c := range n.children {
		if err := writeNode(buf, c); err != nil {
			return err
		}
	}
	buf.WriteString("</" + qualified(n.name) + ">")
	return nil
}
