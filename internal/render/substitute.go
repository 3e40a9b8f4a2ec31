// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"encoding/xml"
	"strings"
)

// textRef is a w:t element and the run that holds it.
type textRef struct {
	run *node
	t   *node
}

// substitute replaces the placeholders of paragraph p in place. A
// placeholder may span several runs: its value goes into the text element
// where it starts, keeping that run's formatting, and the remainder of the
// token is removed from the following runs. Newlines in values become
// line breaks inside the run.
func substitute(p *node, sc *scope, prefix string) {
	var refs []textRef
	var nested []*node
	var walk func(*node)
	walk = func(n *node) {
		for _, ch := range n.children {
			switch {
			case ch.is(prefix, "p"):
				nested = append(nested, ch)
			case ch.is(prefix, "t"):
				refs = append(refs, textRef{run: n, t: ch})
			default:
				walk(ch)
			}
		}
	}
	walk(p)

	for _, q := range nested {
		substitute(q, sc, prefix)
	}
	if len(refs) == 0 {
		return
	}

	texts := make([]string, len(refs))
	var full strings.Builder
	for i, r := range refs {
		texts[i] = r.t.innerText()
		full.WriteString(texts[i])
	}
	s := full.String()
	matches := placeholderPattern.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return
	}
	values := make([]string, len(matches))
	for i, m := range matches {
		if e, ok := parseExpr(s[m[2]:m[3]]); ok {
			values[i] = sc.evaluate(e)
		}
	}

	start := 0
	for i, r := range refs {
		end := start + len(texts[i])
		out := spliceRange(s, start, end, matches, values)
		start = end
		if out == texts[i] {
			continue
		}
		setText(r, out, prefix)
	}
}

// spliceRange rebuilds s[start:end] with every placeholder that starts in
// the range replaced by its value and every placeholder tail that began
// in an earlier range removed.
func spliceRange(s string, start, end int, matches [][]int, values []string) string {
	var out strings.Builder
	cursor := start
	for i, m := range matches {
		ms, me := m[0], m[1]
		if me <= cursor {
			continue
		}
		if ms >= end {
			break
		}
		if ms >= cursor {
			out.WriteString(s[cursor:ms])
			out.WriteString(values[i])
		}
		cursor = me
	}
	if cursor < end {
		out.WriteString(s[cursor:end])
	}
	return out.String()
}

// setText replaces the content of a text element, splitting it around
// line breaks.
func setText(r textRef, text string, prefix string) {
	lines := strings.Split(text, "\n")
	nodes := make([]*node, 0, 2*len(lines)-1)
	for i, line := range lines {
		if i > 0 {
			nodes = append(nodes, &node{kind: elementNode, name: xml.Name{Space: prefix, Local: "br"}})
		}
		t := r.t
		if i > 0 {
			t = r.t.shallow()
		}
		t.children = nil
		if line != "" {
			t.children = []*node{{kind: textNode, text: line}}
		}
		t.setAttr("xml", "space", "preserve")
		nodes = append(nodes, t)
	}

	for i, ch := range r.run.children {
		if ch == r.t {
			r.run.children = append(r.run.children[:i:i], append(nodes, r.run.children[i+1:]...)...)
			return
		}
	}
}
