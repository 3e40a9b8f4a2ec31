// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize turns the raw blocks of each section into typed
// sub-records. The strategy is chosen by the section's declared shape:
// narrative text, ordered list, key-value table or numeric table.
package normalize

import (
	"fmt"

	"github.com/pdiddy/datasheet-engine/internal/segment"
	"github.com/pdiddy/datasheet-engine/pkg/types"
)

// Section is the normalized content of one section key. When a key has
// several spans their content is concatenated in document order.
type Section struct {
	Key   types.SectionKey
	Shape types.Shape

	// Present is false when the document has no span for the key.
	Present bool

	// Narrative is always populated from the paragraphs of the section,
	// whatever its shape, so that text outside a table is not lost.
	Narrative Narrative

	List      OrderedList
	KeyValues []KeyValueTable
	Tables    []NumericTable
}

// KeyValue returns the first key-value table of the section.
func (s Section) KeyValue() KeyValueTable {
	if len(s.KeyValues) == 0 {
		return KeyValueTable{}
	}
	return s.KeyValues[0]
}

// Result holds every normalized section plus the warnings raised.
type Result struct {
	Sections map[types.SectionKey]Section
	Warnings []types.Warning
}

// Section returns the normalized section for key. Absent keys yield the
// empty default.
func (r Result) Section(key types.SectionKey) Section {
	if s, ok := r.Sections[key]; ok {
		return s
	}
	return Section{Key: key}
}

// Normalizer applies shape strategies according to an alias table.
type Normalizer struct {
	table *segment.Table
}

// New returns a Normalizer using the shapes declared in table, or in the
// built-in table when nil.
func New(table *segment.Table) *Normalizer {
	if table == nil {
		table = segment.DefaultTable()
	}
	return &Normalizer{table: table}
}

// Normalize produces one Section per declared key. Missing sections and
// missing shapes produce empty defaults and warnings; they never fail.
func (n *Normalizer) Normalize(doc types.RawDocument, spans []types.SectionSpan) Result {
	res := Result{Sections: make(map[types.SectionKey]Section)}

	for _, key := range n.table.Keys() {
		shape := n.table.Shape(key)
		sec := Section{Key: key, Shape: shape}

		keySpans := segment.Lookup(spans, key)
		if len(keySpans) == 0 {
			res.Sections[key] = sec
			res.Warnings = append(res.Warnings, types.Warning{
				Kind:    types.KindSectionNotFound,
				Section: key,
				Message: "section not found in source",
			})
			continue
		}

		var blocks []types.Block
		for _, sp := range keySpans {
			blocks = append(blocks, segment.Content(doc, sp)...)
		}
		sec.Present = true
		sec.Narrative = NarrativeOf(blocks)

		found := true
		switch shape {
		case types.ShapeOrderedList:
			sec.List = OrderedListOf(blocks)
			found = len(sec.List.Items) > 0
		case types.ShapeKeyValueTable:
			sec.KeyValues = KeyValueTablesOf(blocks)
			found = len(sec.KeyValues) > 0
		case types.ShapeNumericTable:
			sec.Tables = NumericTablesOf(key, blocks)
			found = len(sec.Tables) > 0
		default:
			found = len(sec.Narrative.Paragraphs) > 0
		}
		if !found {
			res.Warnings = append(res.Warnings, types.Warning{
				Kind:    types.KindShapeMismatch,
				Section: key,
				Message: fmt.Sprintf("no %s content found in section", shape),
			})
		}
		res.Sections[key] = sec
	}
	return res
}
