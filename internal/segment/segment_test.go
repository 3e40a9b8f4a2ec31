// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package segment

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/datasheet-engine/pkg/types"
)

func para(text string) types.Block {
	return types.Block{Kind: types.BlockParagraph, Text: text, Format: types.Format{SizeHalfPoints: 22}}
}

func styled(text string, f types.Format) types.Block {
	return types.Block{Kind: types.BlockParagraph, Text: text, Format: f}
}

func doc(blocks ...types.Block) types.RawDocument {
	for i := range blocks {
		blocks[i].Index = i
	}
	return types.RawDocument{Blocks: blocks, BodySizeHalfPoints: 22}
}

func TestNormalizeHeading(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Intended Use", "intended use"},
		{"INTENDED USE:", "intended use"},
		{"  Intended   Use :", "intended use"},
		{"1. Background", "background"},
		{"IV. Assay Protocol", "assay protocol"},
		{"B) Data Analysis", "data analysis"},
		{"Ｄｉｓｃｌａｉｍｅｒ", "disclaimer"},
		{"Reagents.", "reagents"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeHeading(tt.in))
		})
	}
}

func TestSegmentSpansAreOrderedAndContiguous(t *testing.T) {
	d := doc(
		para("Human IL-6 ELISA Kit"),
		para("INTENDED USE"),
		para("For the quantitative detection of IL-6."),
		para("Background"),
		para("IL-6 is a cytokine."),
		para("More background."),
		para("Data Analysis:"),
		para("Plot the curve."),
	)

	spans := New(nil).Segment(d)
	require.Len(t, spans, 3)

	assert.Equal(t, types.SectionIntendedUse, spans[0].Key)
	assert.Equal(t, 1, spans[0].Start)
	assert.Equal(t, types.SectionBackground, spans[1].Key)
	assert.Equal(t, types.SectionDataAnalysis, spans[2].Key)
	assert.Equal(t, len(d.Blocks), spans[2].End)

	for i := 1; i < len(spans); i++ {
		assert.Equal(t, spans[i].Start, spans[i-1].End, "span %d must start where span %d ends", i, i-1)
		assert.Less(t, spans[i-1].Start, spans[i].Start)
	}
	assert.Equal(t, 3, spans[1].Len())
}

func TestSegmentTextMatchBeatsStyle(t *testing.T) {
	d := doc(
		styled("Background", types.Format{SizeHalfPoints: 22}),
		para("text"),
	)
	spans := New(nil).Segment(d)
	require.Len(t, spans, 1)
	assert.Equal(t, types.SectionBackground, spans[0].Key)
}

func TestSegmentStyleHeuristics(t *testing.T) {
	tests := []struct {
		name  string
		block types.Block
		want  types.SectionKey
	}{
		{
			name:  "heading style with suffix",
			block: styled("Assay Procedure (Summary)", types.Format{HeadingLevel: 1}),
			want:  types.SectionAssayProtocol,
		},
		{
			name:  "bold short line",
			block: styled("Reagent Preparation and Storage Notes", types.Format{Bold: true}),
			want:  types.SectionReagentPreparation,
		},
		{
			name:  "larger font",
			block: styled("Standard Curve for IL-6", types.Format{SizeHalfPoints: 28}),
			want:  types.SectionStandardCurve,
		},
		{
			name:  "distinct colour",
			block: styled("Sample Collection tips", types.Format{Color: "C00000", SizeHalfPoints: 22}),
			want:  types.SectionSampleCollectionNotes,
		},
		{
			name:  "capitals",
			block: para("SAMPLE DILUTION GUIDELINE FOR SERUM"),
			want:  types.SectionSampleDilutionGuideline,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spans := New(nil).Segment(doc(tt.block, para("body")))
			require.Len(t, spans, 1)
			assert.Equal(t, tt.want, spans[0].Key)
		})
	}
}

func TestSegmentPlainTextIsNotPrefixMatched(t *testing.T) {
	d := doc(para("Background noise was low in every well of the plate."))
	assert.Empty(t, New(nil).Segment(d))
}

func TestSegmentLongestAliasWins(t *testing.T) {
	// "sample preparation and storage" must beat "sample preparation".
	d := doc(styled("Sample Preparation and Storage of plasma", types.Format{Bold: true}), para("x"))
	spans := New(nil).Segment(d)
	require.Len(t, spans, 1)
	assert.Equal(t, types.SectionSamplePreparation, spans[0].Key)

	table, err := NewTable([]Entry{
		{Key: types.SectionReagents, Shape: types.ShapeKeyValueTable, Aliases: []string{"kit"}},
		{Key: types.SectionOverview, Shape: types.ShapeKeyValueTable, Aliases: []string{"kit overview"}},
	})
	require.NoError(t, err)
	spans = New(table).Segment(doc(styled("Kit Overview table", types.Format{Bold: true})))
	require.Len(t, spans, 1)
	assert.Equal(t, types.SectionOverview, spans[0].Key)
}

func TestSegmentUnmatchedHeadingStaysInSpan(t *testing.T) {
	d := doc(
		para("Intended Use"),
		styled("Important Note", types.Format{Bold: true}),
		para("Not for diagnostic use."),
	)
	spans := New(nil).Segment(d)
	require.Len(t, spans, 1)
	assert.Equal(t, 0, spans[0].Start)
	assert.Equal(t, 3, spans[0].End)

	content := Content(d, spans[0])
	require.Len(t, content, 2)
	assert.Equal(t, "Important Note", content[0].Text)
}

func TestSegmentNoHeadings(t *testing.T) {
	d := doc(para("just text"), para("more text"))
	spans := New(nil).Segment(d)
	assert.Empty(t, spans)
	assert.Len(t, Preamble(d, spans), 2)
}

func TestSegmentTablesAreNeverHeadings(t *testing.T) {
	d := doc(types.Block{Kind: types.BlockTable, Text: "Reagents", Rows: [][]string{{"Reagents"}}})
	assert.Empty(t, New(nil).Segment(d))
}

func TestSegmentStopSentenceTruncates(t *testing.T) {
	d := doc(
		para("Data Analysis"),
		para("Average the duplicate readings."),
		para("Plot a four parameter curve.  For more information on assay principle, protocols,  and troubleshooting tips, see our website."),
		para("Trailing marketing text."),
		para("Disclaimer"),
		para("Research use only."),
	)
	spans := New(nil).Segment(d)
	require.Len(t, spans, 2)
	require.NotNil(t, spans[0].Stop)
	assert.Equal(t, 2, spans[0].Stop.Block)

	content := Content(d, spans[0])
	require.Len(t, content, 2)
	assert.Equal(t, "Plot a four parameter curve.", content[1].Text)

	assert.Nil(t, spans[1].Stop)
	assert.Equal(t, "Research use only.", Content(d, spans[1])[0].Text)
}

func TestSegmentDefaultStopSentences(t *testing.T) {
	const boilerplate = "For more information on assay principle, protocols, and troubleshooting tips, see the Technical Resource Center at www.example.com/resources."
	tests := []struct {
		name    string
		heading string
		key     types.SectionKey
	}{
		{"assay principle", "Assay Principle", types.SectionAssayPrinciple},
		{"principle of the assay", "Principle of the Assay", types.SectionAssayPrinciple},
		{"data analysis", "Data Analysis", types.SectionDataAnalysis},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := doc(
				para(tt.heading),
				para("Antibody is coated on a plate. "+boilerplate),
				para("Visit our website to learn about our complete product line."),
				para("Disclaimer"),
				para("Research use only."),
			)
			spans := New(nil).Segment(d)
			require.Len(t, spans, 2)
			assert.Equal(t, tt.key, spans[0].Key)
			require.NotNil(t, spans[0].Stop)
			assert.Equal(t, 1, spans[0].Stop.Block)

			content := Content(d, spans[0])
			require.Len(t, content, 1)
			assert.Equal(t, "Antibody is coated on a plate.", content[0].Text)
		})
	}
}

func TestSegmentNotesHeadingsEndPreviousSection(t *testing.T) {
	tests := []string{"Procedural Notes", "Notes", "Technical Hints", "Precautions", "7. Procedural Notes:"}
	for _, heading := range tests {
		t.Run(heading, func(t *testing.T) {
			d := doc(
				para("Assay Protocol"),
				para("1. Add 100 ul standard."),
				para("2. Incubate 90 minutes."),
				para(heading),
				para("1. Avoid foaming when mixing."),
			)
			spans := New(nil).Segment(d)
			require.Len(t, spans, 2)
			assert.Equal(t, types.SectionAssayProtocol, spans[0].Key)
			assert.Equal(t, 3, spans[0].End)
			assert.Equal(t, types.SectionTechnicalDetails, spans[1].Key)
			assert.Equal(t, heading, spans[1].Heading)
		})
	}
}

func TestSegmentRepeatedKeys(t *testing.T) {
	d := doc(para("Background"), para("a"), para("Disclaimer"), para("b"), para("Background"), para("c"))
	spans := New(nil).Segment(d)
	got := Lookup(spans, types.SectionBackground)
	require.Len(t, got, 2)
	assert.Equal(t, "a", Content(d, got[0])[0].Text)
	assert.Equal(t, "c", Content(d, got[1])[0].Text)
}

func TestSegmentIsDeterministic(t *testing.T) {
	d := doc(para("Intended Use"), para("x"), para("Reagents"), para("y"))
	s := New(nil)
	assert.Equal(t, s.Segment(d), s.Segment(d))
}

func TestNewTableValidation(t *testing.T) {
	tests := []struct {
		name    string
		entries []Entry
		errMsg  string
	}{
		{name: "empty", entries: nil, errMsg: "empty"},
		{
			name:    "unknown key",
			entries: []Entry{{Key: "NOPE", Shape: types.ShapeNarrative, Aliases: []string{"x"}}},
			errMsg:  "unknown section key",
		},
		{
			name:    "unknown shape",
			entries: []Entry{{Key: types.SectionBackground, Shape: "blob", Aliases: []string{"x"}}},
			errMsg:  "unknown shape",
		},
		{
			name:    "no aliases",
			entries: []Entry{{Key: types.SectionBackground, Shape: types.ShapeNarrative}},
			errMsg:  "no aliases",
		},
		{
			name: "alias owned twice",
			entries: []Entry{
				{Key: types.SectionBackground, Shape: types.ShapeNarrative, Aliases: []string{"Overview"}},
				{Key: types.SectionOverview, Shape: types.ShapeKeyValueTable, Aliases: []string{"OVERVIEW:"}},
			},
			errMsg: "registered for both",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTable(tt.entries)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestDefaultTableCoversVocabulary(t *testing.T) {
	table := DefaultTable()
	for _, key := range types.SectionKeys() {
		e, ok := table.Entry(key)
		require.True(t, ok, "missing %s", key)
		assert.NotEmpty(t, e.Aliases)
	}
	assert.Equal(t, types.ShapeOrderedList, table.Shape(types.SectionAssayProtocol))
	assert.Equal(t, types.ShapeNumericTable, table.Shape(types.SectionStandardCurve))
}

func TestReadTable(t *testing.T) {
	src := `
sections:
  - key: BACKGROUND
    shape: narrative
    aliases: [Hintergrund]
`
	table, err := ReadTable(strings.NewReader(src))
	require.NoError(t, err)
	spans := New(table).Segment(doc(para("Hintergrund"), para("Text")))
	require.Len(t, spans, 1)
	assert.Equal(t, types.SectionBackground, spans[0].Key)
}
