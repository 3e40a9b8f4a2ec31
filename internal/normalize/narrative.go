// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"regexp"
	"strings"

	"github.com/pdiddy/datasheet-engine/pkg/types"
)

// Narrative is free text kept as an ordered list of paragraphs.
type Narrative struct {
	Paragraphs []string
}

// Text joins the paragraphs with newlines.
func (n Narrative) Text() string {
	return strings.Join(n.Paragraphs, "\n")
}

// NarrativeOf collects paragraph and list-item text in order, collapsing
// whitespace and dropping empty paragraphs. Tables are ignored.
func NarrativeOf(blocks []types.Block) Narrative {
	n := Narrative{Paragraphs: []string{}}
	for _, b := range blocks {
		if b.Kind == types.BlockTable {
			continue
		}
		if s := CollapseSpace(b.Text); s != "" {
			n.Paragraphs = append(n.Paragraphs, s)
		}
	}
	return n
}

// CollapseSpace trims s and reduces every whitespace run to one space.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// OrderedList is an ordered sequence of items such as protocol steps.
type OrderedList struct {
	Items []string
}

// itemMarker matches enumerations and bullets that start a list item in
// plain paragraphs: "1.", "2)", "a.", "B)", "•", "-", "*".
var itemMarker = regexp.MustCompile(`^\s*(?:\d{1,3}[.)]|[A-Za-z][.)]|[•·▪●\-*])\s+`)

// OrderedListOf returns one item per list-item block, at any nesting
// level. When the blocks carry no list numbering, paragraph lines become
// items; if any line starts with an enumeration, only enumerated lines
// open new items and the others continue the previous one.
func OrderedListOf(blocks []types.Block) OrderedList {
	l := OrderedList{Items: []string{}}
	for _, b := range blocks {
		if b.Kind != types.BlockListItem {
			continue
		}
		if s := CollapseSpace(b.Text); s != "" {
			l.Items = append(l.Items, s)
		}
	}
	if len(l.Items) > 0 {
		return l
	}

	var lines []string
	marked := false
	for _, b := range blocks {
		if b.Kind != types.BlockParagraph {
			continue
		}
		for _, line := range strings.Split(b.Text, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				lines = append(lines, line)
				marked = marked || itemMarker.MatchString(line)
			}
		}
	}

	for _, line := range lines {
		if !marked {
			l.Items = append(l.Items, CollapseSpace(line))
			continue
		}
		if loc := itemMarker.FindStringIndex(line); loc != nil {
			if s := CollapseSpace(line[loc[1]:]); s != "" {
				l.Items = append(l.Items, s)
			}
			continue
		}
		if n := len(l.Items); n > 0 {
			l.Items[n-1] += " " + CollapseSpace(line)
			continue
		}
		l.Items = append(l.Items, CollapseSpace(line))
	}
	return l
}
