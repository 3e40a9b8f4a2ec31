// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mapper

import (
	"strings"

	"github.com/pdiddy/datasheet-engine/internal/normalize"
	"github.com/pdiddy/datasheet-engine/internal/segment"
	"github.com/pdiddy/datasheet-engine/pkg/types"
)

// specProperty is a fixed row of a specification table and the labels
// that fill it.
type specProperty struct {
	name   string
	labels []string
}

// overviewProperties are the leading rows of the overview table, in
// output order. Labels that match none of them follow in document order.
var overviewProperties = []specProperty{
	{"Product Name", kitNameLabels},
	{"Reactive Species", []string{"reactive species", "species reactivity", "species", "reactivity"}},
	{"Size", []string{"kit size", "size", "pack size"}},
	{"Description", []string{"kit description", "product description", "description"}},
	{"Sensitivity", sensitivityLabels},
	{"Detection Range", detectionRangeLabels},
	{"Storage Instructions", []string{"storage instructions", "storage conditions", "storage"}},
	{"UniProt ID", []string{"uniprot id", "uniprot"}},
}

// noteHeadings are the technical details headings that introduce
// procedural notes rather than a specification table.
var noteHeadings = []string{"procedural notes", "procedure notes", "notes", "technical hints", "precautions"}

// overviewSpecifications builds the overview table from the OVERVIEW
// section rows. Without an overview section it reads the first two
// tables that belong to no other mapped section.
func (m *Mapper) overviewSpecifications(doc types.RawDocument, spans []types.SectionSpan, res normalize.Result) []types.SpecRow {
	var rows kvSource
	for _, t := range res.Section(types.SectionOverview).KeyValues {
		rows = append(rows, t.Rows...)
	}
	if len(rows) == 0 {
		tables, _ := looseBlocks(doc, spans)
		if len(tables) > 2 {
			tables = tables[:2]
		}
		rows = valuedRows(normalize.KeyValueTablesOf(tables))
	}

	out := []types.SpecRow{}
	used := make([]bool, len(rows))
	for _, prop := range overviewProperties {
		for i, row := range rows {
			if used[i] || !labelMatches(labelKey(row.Key), prop.labels, false) {
				continue
			}
			used[i] = true
			if v := m.scrub.Apply(row.Value()); v != "" {
				out = append(out, types.SpecRow{Property: prop.name, Value: v})
				break
			}
		}
	}
	for i, row := range rows {
		if used[i] {
			continue
		}
		label := strings.TrimRight(normalize.CollapseSpace(row.Key), " :")
		if v := m.scrub.Apply(row.Value()); label != "" && v != "" {
			out = append(out, types.SpecRow{Property: label, Value: v})
		}
	}
	return out
}

// technicalDetails lists the antibody, specificity, standard and
// cross-reactivity scalars that were found.
func technicalDetails(rec types.CanonicalRecord) []types.SpecRow {
	out := []types.SpecRow{}
	for _, row := range []types.SpecRow{
		{Property: "Capture/Detection Antibodies", Value: rec.Antibodies},
		{Property: "Specificity", Value: rec.Specificity},
		{Property: "Standard Protein", Value: rec.Standard},
		{Property: "Cross-reactivity", Value: rec.CrossReactivity},
	} {
		if row.Value != "" {
			out = append(out, row)
		}
	}
	return out
}

// proceduralNotes joins the text of every technical details span headed
// as notes, hints or precautions.
func (m *Mapper) proceduralNotes(doc types.RawDocument, spans []types.SectionSpan) string {
	var paras []string
	for _, sp := range segment.Lookup(spans, types.SectionTechnicalDetails) {
		if !labelMatches(labelKey(segment.NormalizeHeading(sp.Heading)), noteHeadings, false) {
			continue
		}
		paras = append(paras, normalize.NarrativeOf(segment.Content(doc, sp)).Paragraphs...)
	}
	return m.scrub.Apply(strings.Join(paras, "\n"))
}
