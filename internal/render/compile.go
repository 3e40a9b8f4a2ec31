// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"encoding/xml"
	"slices"
	"strings"

	"github.com/pdiddy/datasheet-engine/pkg/types"
)

// level says which sibling elements may carry block tags: paragraphs in
// a body or cell, rows in a table.
type level int

const (
	levelParagraph level = iota
	levelRow
)

type blockKind int

const (
	blockNode blockKind = iota
	blockIf
	blockFor
)

// block is one compiled element of a part. Paragraphs and non-element
// nodes are leaves that are cloned whole on output; other elements keep
// their compiled children.
type block struct {
	kind     blockKind
	node     *node
	leaf     bool
	children []block

	tag  tag
	body []block
	alt  []block
}

type compiler struct {
	part   string
	prefix string
	names  *collector

	// bound holds the loop variables in scope.
	bound []string
}

func (c *compiler) syntaxError(marker, reason string) error {
	return &types.TemplateSyntaxError{Part: c.part, Marker: marker, Reason: reason}
}

func (c *compiler) compileChildren(n *node, lvl level) ([]block, error) {
	blocks, next, term, err := c.compileSeq(n.children, 0, lvl)
	if err != nil {
		return nil, err
	}
	if term != nil {
		return nil, c.syntaxError(term.raw, "end tag without a matching opening tag")
	}
	if next != len(n.children) {
		return nil, c.syntaxError("", "incomplete block")
	}
	return blocks, nil
}

// compileSeq compiles siblings from i until the end of the list or a
// closing tag (else, endif, endfor), which is returned unconsumed as term.
func (c *compiler) compileSeq(nodes []*node, i int, lvl level) (blocks []block, next int, term *tag, err error) {
	for i < len(nodes) {
		n := nodes[i]
		t, isTag, err := c.markerOf(n, lvl)
		if err != nil {
			return nil, i, nil, err
		}
		if !isTag {
			b, err := c.compileNode(n)
			if err != nil {
				return nil, i, nil, err
			}
			blocks = append(blocks, b)
			i++
			continue
		}

		switch t.kind {
		case tagElse, tagEndIf, tagEndFor:
			return blocks, i, &t, nil
		case tagIf:
			b, after, err := c.compileIf(nodes, i+1, lvl, t)
			if err != nil {
				return nil, i, nil, err
			}
			blocks = append(blocks, b)
			i = after
		case tagFor:
			b, after, err := c.compileFor(nodes, i+1, lvl, t)
			if err != nil {
				return nil, i, nil, err
			}
			blocks = append(blocks, b)
			i = after
		}
	}
	return blocks, i, nil, nil
}

func (c *compiler) compileIf(nodes []*node, i int, lvl level, t tag) (block, int, error) {
	c.register(t.cond, c.names.conditionals)
	b := block{kind: blockIf, tag: t}

	body, next, term, err := c.compileSeq(nodes, i, lvl)
	if err != nil {
		return block{}, 0, err
	}
	if term == nil {
		return block{}, 0, c.syntaxError(t.raw, "if without endif")
	}
	b.body = body

	if term.kind == tagElse {
		alt, after, end, err := c.compileSeq(nodes, next+1, lvl)
		if err != nil {
			return block{}, 0, err
		}
		if end == nil {
			return block{}, 0, c.syntaxError(t.raw, "if without endif")
		}
		b.alt, next, term = alt, after, end
	}
	if term.kind != tagEndIf {
		return block{}, 0, c.syntaxError(term.raw, "expected endif")
	}
	return b, next + 1, nil
}

func (c *compiler) compileFor(nodes []*node, i int, lvl level, t tag) (block, int, error) {
	if t.row {
		c.register(t.list, c.names.rowLoops)
	} else {
		c.register(t.list, c.names.loops)
	}

	c.bound = append(c.bound, t.name)
	body, next, term, err := c.compileSeq(nodes, i, lvl)
	c.bound = c.bound[:len(c.bound)-1]
	if err != nil {
		return block{}, 0, err
	}
	if term == nil {
		return block{}, 0, c.syntaxError(t.raw, "for without endfor")
	}
	if term.kind != tagEndFor {
		return block{}, 0, c.syntaxError(term.raw, "expected endfor")
	}
	return block{kind: blockFor, tag: t, body: body}, next + 1, nil
}

// register records a referenced path unless it starts at a loop variable.
func (c *compiler) register(path []string, into map[string]bool) {
	if path[0] == "loop" || slices.Contains(c.bound, path[0]) {
		return
	}
	into[joinPath(path)] = true
}

// markerOf reports whether n is a block tag at this level. A paragraph or
// row that mixes a tag with other text is a syntax error.
func (c *compiler) markerOf(n *node, lvl level) (tag, bool, error) {
	switch {
	case lvl == levelParagraph && n.is(c.prefix, "p"):
		text := strings.TrimSpace(wordText(n, c.prefix))
		if !strings.Contains(text, "{%") {
			return tag{}, false, nil
		}
		t, ok, err := parseTag(text)
		switch {
		case !ok:
			return tag{}, false, c.syntaxError(text, "block tag must stand alone in its paragraph")
		case err != nil:
			return tag{}, false, c.syntaxError(text, err.Error())
		case t.row:
			return tag{}, false, c.syntaxError(text, "row tag outside a table row")
		}
		return t, true, nil

	case lvl == levelRow && n.is(c.prefix, "tr"):
		text := strings.TrimSpace(wordText(n, c.prefix))
		if !strings.Contains(text, "{%tr") {
			return tag{}, false, nil
		}
		t, ok, err := parseTag(text)
		switch {
		case !ok || !t.row:
			return tag{}, false, c.syntaxError(text, "row tag must stand alone in its row")
		case err != nil:
			return tag{}, false, c.syntaxError(text, err.Error())
		}
		return t, true, nil
	}
	return tag{}, false, nil
}

func (c *compiler) compileNode(n *node) (block, error) {
	if n.kind != elementNode {
		return block{kind: blockNode, node: n, leaf: true}, nil
	}
	if n.is(c.prefix, "p") {
		if err := c.checkParagraph(n); err != nil {
			return block{}, err
		}
		return block{kind: blockNode, node: n, leaf: true}, nil
	}

	lvl := levelParagraph
	if n.is(c.prefix, "tbl") {
		lvl = levelRow
	}
	children, err := c.compileChildren(n, lvl)
	if err != nil {
		return block{}, err
	}
	return block{kind: blockNode, node: n, children: children}, nil
}

// checkParagraph validates every placeholder of a paragraph and records
// its name.
func (c *compiler) checkParagraph(p *node) error {
	text := wordText(p, c.prefix)
	for _, m := range placeholderPattern.FindAllStringSubmatch(text, -1) {
		e, ok := parseExpr(m[1])
		if !ok {
			return c.syntaxError(m[0], "invalid placeholder expression")
		}
		c.register(e.path, c.names.scalars)
	}
	rest := placeholderPattern.ReplaceAllString(text, "")
	if strings.Contains(rest, "{{") || strings.Contains(rest, "}}") {
		return c.syntaxError(strings.TrimSpace(text), "unbalanced placeholder braces")
	}
	if strings.Contains(rest, "{%") || strings.Contains(rest, "%}") {
		return c.syntaxError(strings.TrimSpace(text), "block tag must stand alone in its paragraph")
	}
	return nil
}

// wordText concatenates the w:t text below n.
func wordText(n *node, prefix string) string {
	var sb strings.Builder
	var walk func(*node)
	walk = func(m *node) {
		for _, ch := range m.children {
			if ch.is(prefix, "t") {
				sb.WriteString(ch.innerText())
				continue
			}
			walk(ch)
		}
	}
	walk(n)
	return sb.String()
}

// emitAll produces the output nodes of blocks for one scope.
func emitAll(blocks []block, sc *scope, prefix string) []*node {
	var out []*node
	for _, b := range blocks {
		switch b.kind {
		case blockIf:
			v, ok := sc.lookup(b.tag.cond)
			if (ok && truthy(v)) != b.tag.negate {
				out = append(out, emitAll(b.body, sc, prefix)...)
			} else {
				out = append(out, emitAll(b.alt, sc, prefix)...)
			}
		case blockFor:
			v, _ := sc.lookup(b.tag.list)
			list := items(v)
			for i, it := range list {
				inner := sc.with(b.tag.name, it).with("loop", loopInfo(i, len(list)))
				out = append(out, emitAll(b.body, inner, prefix)...)
			}
		default:
			out = append(out, emitNode(b, sc, prefix))
		}
	}
	return out
}

func emitNode(b block, sc *scope, prefix string) *node {
	if b.leaf {
		n := b.node.clone()
		if n.is(prefix, "p") {
			substitute(n, sc, prefix)
		}
		return n
	}
	n := b.node.shallow()
	n.children = emitAll(b.children, sc, prefix)
	if n.is(prefix, "tc") && n.element(prefix, "p") == nil {
		// A cell must end with a paragraph.
		n.children = append(n.children, &node{kind: elementNode, name: xml.Name{Space: prefix, Local: "p"}})
	}
	return n
}
