// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mapper

import (
	"strings"
	"unicode"

	"github.com/pdiddy/datasheet-engine/internal/normalize"
	"github.com/pdiddy/datasheet-engine/internal/segment"
	"github.com/pdiddy/datasheet-engine/pkg/types"
)

// Label aliases for scalar fields found in key-value rows. Labels are
// compared after labelKey normalization, so punctuation is irrelevant.
var (
	kitNameLabels         = []string{"product name", "kit name", "name"}
	catalogLabels         = []string{"catalog number", "catalog no", "catalog", "cat no", "cat", "product code", "sku"}
	lotLabels             = []string{"lot number", "lot no", "lot", "batch number", "batch"}
	sensitivityLabels     = []string{"sensitivity", "minimum detectable dose", "lower limit of detection", "lld", "mdd"}
	detectionRangeLabels  = []string{"detection range", "assay range", "measuring range", "range"}
	specificityLabels     = []string{"specificity"}
	crossReactivityLabels = []string{"cross reactivity", "crossreactivity"}
	standardLabels        = []string{"standard protein", "recombinant standard", "recombinant protein", "standard material", "expression system for standard"}
	antibodyLabels        = []string{"capture detection antibodies", "capture detection antibody", "capture antibody", "detection antibody", "antibody pair", "antibodies"}
	sampleTypeLabels      = []string{"sample type", "sample types", "suitable sample type", "suitable sample types", "samples"}
	sampleVolumeLabels    = []string{"sample volume", "sample volume required", "sample size"}
	assayTimeLabels       = []string{"assay time", "assay duration", "total assay time", "assay length"}
)

// labelKey lower-cases a label and turns punctuation into spaces:
// "Cat. No.:" becomes "cat no".
func labelKey(s string) string {
	f := func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}
	return strings.Join(strings.Fields(strings.Map(f, s)), " ")
}

// labelMatches accepts an exact label or, unless exact is set, the label
// followed by a qualifier, such as "sensitivity pg ml" for
// "Sensitivity (pg/ml)".
func labelMatches(key string, labels []string, exact bool) bool {
	for _, l := range labels {
		if key == l || (!exact && strings.HasPrefix(key, l+" ")) {
			return true
		}
	}
	return false
}

// kvSource is an ordered collection of key-value rows searched for scalar
// values. Earlier rows take precedence.
type kvSource []normalize.KVRow

func (src kvSource) lookup(labels []string, exact bool) string {
	for _, row := range src {
		if labelMatches(labelKey(row.Key), labels, exact) {
			if v := strings.TrimSpace(row.Value()); v != "" {
				return v
			}
		}
	}
	return ""
}

// ownTables lists the sections whose tables are mapped to their own
// record fields. Their rows never feed scalar lookups.
var ownTables = []types.SectionKey{
	types.SectionReagents,
	types.SectionStandardCurve,
	types.SectionIntraInterAssay,
	types.SectionReproducibility,
}

// looseBlocks splits the blocks outside ownTables sections into tables
// and everything else.
func looseBlocks(doc types.RawDocument, spans []types.SectionSpan) (tables, lines []types.Block) {
	owned := map[int]bool{}
	for _, key := range ownTables {
		for _, sp := range segment.Lookup(spans, key) {
			for i := sp.Start; i < sp.End; i++ {
				owned[i] = true
			}
		}
	}
	for i, b := range doc.Blocks {
		switch {
		case b.Kind != types.BlockTable:
			lines = append(lines, b)
		case !owned[i]:
			tables = append(tables, b)
		}
	}
	return tables, lines
}

func valuedRows(tables []normalize.KeyValueTable) kvSource {
	var src kvSource
	for _, t := range tables {
		for _, row := range t.Rows {
			if len(row.Values) > 0 {
				src = append(src, row)
			}
		}
	}
	return src
}

// scalarSource gathers rows from the overview and technical details
// tables first, then from any other table in the document with at least
// two columns, then from "Key: value" lines anywhere in the document.
func scalarSource(doc types.RawDocument, spans []types.SectionSpan, res normalize.Result) kvSource {
	var src kvSource
	for _, key := range []types.SectionKey{types.SectionOverview, types.SectionTechnicalDetails} {
		for _, t := range res.Section(key).KeyValues {
			src = append(src, t.Rows...)
		}
	}

	tables, lines := looseBlocks(doc, spans)
	src = append(src, valuedRows(normalize.KeyValueTablesOf(tables))...)
	for _, t := range normalize.KeyValueTablesOf(lines) {
		src = append(src, t.Rows...)
	}
	return src
}
