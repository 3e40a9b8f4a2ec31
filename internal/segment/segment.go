// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package segment locates logical sections in a parsed datasheet. Headings
// are recognised by their text first and by their formatting second, using
// a declarative alias table.
package segment

import (
	"strings"
	"unicode"

	"github.com/pdiddy/datasheet-engine/pkg/types"
)

// Heading heuristics for blocks whose text is not an exact alias.
const (
	maxHeadingRunes = 80
	maxHeadingWords = 10
)

// Segmenter partitions documents into section spans. It holds no mutable
// state and is safe for concurrent use.
type Segmenter struct {
	table *Table
}

// New returns a Segmenter over table, or over the built-in table when nil.
func New(table *Table) *Segmenter {
	if table == nil {
		table = DefaultTable()
	}
	return &Segmenter{table: table}
}

// Table returns the alias table in use.
func (s *Segmenter) Table() *Table { return s.table }

// Segment returns the section spans of doc in document order. Each matched
// heading closes the previous span at its own index and opens a new one;
// the last span runs to the end of the document. Headings that match no
// alias stay inside the open span. A document without recognised headings
// yields no spans.
func (s *Segmenter) Segment(doc types.RawDocument) []types.SectionSpan {
	var spans []types.SectionSpan
	for i, b := range doc.Blocks {
		key, ok := s.classify(doc, b)
		if !ok {
			continue
		}
		if n := len(spans); n > 0 {
			spans[n-1].End = i
		}
		spans = append(spans, types.SectionSpan{Key: key, Start: i, Heading: b.Text})
	}
	if n := len(spans); n > 0 {
		spans[n-1].End = len(doc.Blocks)
	}

	for i := range spans {
		s.applyStop(doc, &spans[i])
	}
	return spans
}

// classify decides whether b is a section heading and which key it opens.
// An exact alias match wins regardless of formatting; otherwise the block
// must look like a heading and start with an alias.
func (s *Segmenter) classify(doc types.RawDocument, b types.Block) (types.SectionKey, bool) {
	if b.Kind == types.BlockTable || strings.TrimSpace(b.Text) == "" {
		return "", false
	}
	norm := NormalizeHeading(b.Text)
	if key, ok := s.table.exact(norm); ok {
		return key, true
	}
	if !headingLike(doc, b) {
		return "", false
	}
	return s.table.prefix(norm)
}

// headingLike applies the formatting heuristics: an explicit heading style
// or outline level, or a short line that is bold, set larger than the body
// text, coloured, or written in capitals.
func headingLike(doc types.RawDocument, b types.Block) bool {
	f := b.Format
	if f.HeadingLevel > 0 {
		return true
	}
	if len([]rune(b.Text)) > maxHeadingRunes || len(strings.Fields(b.Text)) > maxHeadingWords {
		return false
	}
	if f.Bold {
		return true
	}
	if doc.BodySizeHalfPoints > 0 && f.SizeHalfPoints > doc.BodySizeHalfPoints {
		return true
	}
	if c := strings.ToLower(f.Color); c != "" && c != "auto" && c != "000000" {
		return true
	}
	return allCaps(b.Text)
}

func allCaps(s string) bool {
	letters := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			if !unicode.IsUpper(r) {
				return false
			}
			letters++
		}
	}
	return letters >= 3
}

// applyStop records the first occurrence of the section's stop sentence.
func (s *Segmenter) applyStop(doc types.RawDocument, span *types.SectionSpan) {
	e, ok := s.table.Entry(span.Key)
	if !ok || e.StopSentence == "" {
		return
	}
	for i := span.Start + 1; i < span.End; i++ {
		b := doc.Blocks[i]
		if b.Kind == types.BlockTable {
			continue
		}
		if off := indexFold(b.Text, e.StopSentence); off >= 0 {
			span.Stop = &types.StopPoint{Block: i, Offset: off}
			return
		}
	}
}

// Content returns the blocks of a span after its heading, truncated at the
// stop point when one was recorded. Returned blocks are copies.
func Content(doc types.RawDocument, span types.SectionSpan) []types.Block {
	end := span.End
	if span.Stop != nil {
		end = span.Stop.Block + 1
	}
	var out []types.Block
	for i := span.Start + 1; i < end && i < len(doc.Blocks); i++ {
		b := doc.Blocks[i]
		if span.Stop != nil && i == span.Stop.Block {
			b.Text = strings.TrimSpace(b.Text[:span.Stop.Offset])
			if b.Text == "" {
				continue
			}
		}
		out = append(out, b)
	}
	return out
}

// Lookup returns every span with the given key, in document order.
func Lookup(spans []types.SectionSpan, key types.SectionKey) []types.SectionSpan {
	var out []types.SectionSpan
	for _, sp := range spans {
		if sp.Key == key {
			out = append(out, sp)
		}
	}
	return out
}

// Preamble returns the blocks before the first span, or the whole
// document when there are no spans.
func Preamble(doc types.RawDocument, spans []types.SectionSpan) []types.Block {
	end := len(doc.Blocks)
	if len(spans) > 0 {
		end = spans[0].Start
	}
	return append([]types.Block(nil), doc.Blocks[:end]...)
}
