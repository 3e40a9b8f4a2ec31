// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/datasheet-engine/internal/segment"
	"github.com/pdiddy/datasheet-engine/pkg/types"
)

func p(text string) types.Block {
	return types.Block{Kind: types.BlockParagraph, Text: text}
}

func li(text string, level int) types.Block {
	return types.Block{Kind: types.BlockListItem, Text: text, Level: level}
}

func tbl(rows ...[]string) types.Block {
	return types.Block{Kind: types.BlockTable, Rows: rows}
}

func TestNarrativeOf(t *testing.T) {
	n := NarrativeOf([]types.Block{
		p("  First   paragraph\nwith a break. "),
		p(""),
		tbl([]string{"ignored"}),
		li("A list item", 0),
		p("   "),
	})
	assert.Equal(t, []string{"First paragraph with a break.", "A list item"}, n.Paragraphs)
	assert.Equal(t, "First paragraph with a break.\nA list item", n.Text())

	empty := NarrativeOf(nil)
	assert.NotNil(t, empty.Paragraphs)
	assert.Equal(t, "", empty.Text())
}

func TestOrderedListOf(t *testing.T) {
	tests := []struct {
		name   string
		blocks []types.Block
		want   []string
	}{
		{
			name:   "list items at any level",
			blocks: []types.Block{li("Add 100 µl standard.", 0), li("", 0), p("note"), li("Incubate 90 min.", 1)},
			want:   []string{"Add 100 µl standard.", "Incubate 90 min."},
		},
		{
			name:   "numbered paragraphs with continuation lines",
			blocks: []types.Block{p("1. Prepare reagents."), p("Bring to room temperature."), p("2) Add samples.\n3. Read at 450 nm.")},
			want:   []string{"Prepare reagents. Bring to room temperature.", "Add samples.", "Read at 450 nm."},
		},
		{
			name:   "bullets",
			blocks: []types.Block{p("• Microplate reader"), p("- Pipettes")},
			want:   []string{"Microplate reader", "Pipettes"},
		},
		{
			name:   "plain paragraphs each become an item",
			blocks: []types.Block{p("Microplate reader"), p("Deionized water")},
			want:   []string{"Microplate reader", "Deionized water"},
		},
		{
			name:   "nothing",
			blocks: []types.Block{tbl([]string{"a"})},
			want:   []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OrderedListOf(tt.blocks).Items)
		})
	}
}

func TestKeyValueTablesOf(t *testing.T) {
	tables := KeyValueTablesOf([]types.Block{
		p("The kit contains:"),
		tbl(
			[]string{"Description", "Specification", "Quantity"},
			[]string{"Wash Buffer", "1", "20 ml"},
			[]string{"", "", ""},
			[]string{" Standard ", "10 ng", "2 vials"},
		),
		tbl([]string{"Storage", "4°C"}),
	})
	require.Len(t, tables, 2)

	first := tables[0]
	assert.Equal(t, []string{"Description", "Specification", "Quantity"}, first.Header)
	require.Len(t, first.Rows, 2)
	assert.Equal(t, KVRow{Key: "Wash Buffer", Values: []string{"1", "20 ml"}}, first.Rows[0])
	assert.Equal(t, "Standard", first.Rows[1].Key)

	second := tables[1]
	assert.Nil(t, second.Header, "a single data row is not a header")
	assert.Equal(t, "4°C", second.Rows[0].Value())
}

func TestKeyValueTablesOfFallsBackToLines(t *testing.T) {
	tables := KeyValueTablesOf([]types.Block{
		p("Sensitivity: 1.5 pg/ml"),
		p("Detection Range: 3.1-200 pg/ml\nSample Type: Serum, plasma"),
		p("A sentence without a colon."),
	})
	require.Len(t, tables, 1)
	require.Len(t, tables[0].Rows, 3)
	assert.Equal(t, "Detection Range", tables[0].Rows[1].Key)
	assert.Equal(t, "Serum, plasma", tables[0].Rows[2].Value())
}

func TestNumericTablesOf(t *testing.T) {
	t.Run("vertical standard curve", func(t *testing.T) {
		tables := NumericTablesOf(types.SectionStandardCurve, []types.Block{
			tbl([]string{"Concentration (pg/ml)", "O.D."}, []string{"1,000", "2.456"}, []string{"", ""}, []string{"0", "0.05"}),
		})
		require.Len(t, tables, 1)
		require.Len(t, tables[0].Rows, 2)
		assert.Equal(t, Cell{Text: "1,000", Number: 1000, IsNumber: true}, tables[0].Rows[0][0])
		assert.Equal(t, 1, tables[0].Column("o.d", "od"))
	})

	t.Run("horizontal table is transposed", func(t *testing.T) {
		tables := NumericTablesOf(types.SectionStandardCurve, []types.Block{
			tbl([]string{"Concentration", "500", "250"}, []string{"O.D.", "1.9", "1.1"}),
		})
		require.Len(t, tables, 1)
		assert.Equal(t, []string{"Concentration", "O.D."}, tables[0].Header)
		require.Len(t, tables[0].Rows, 2)
		assert.Equal(t, "250", tables[0].Rows[1][0].Text)
		assert.Equal(t, "1.1", tables[0].Rows[1][1].Text)
	})

	t.Run("labels and column lookups", func(t *testing.T) {
		tables := NumericTablesOf(types.SectionIntraInterAssay, []types.Block{
			p("Intra-Assay Precision"),
			tbl([]string{"Sample", "n", "Mean", "SD", "CV%"}, []string{"1", "24", "150", "7.5", "5%"}),
			p("Inter-Assay Precision"),
			tbl([]string{"Sample", "n", "Mean", "SD", "CV%"}, []string{"1", "24", "140", "9.8", "7%"}),
		})
		require.Len(t, tables, 2)
		assert.Equal(t, "Intra-Assay Precision", tables[0].Label)
		assert.Equal(t, "Inter-Assay Precision", tables[1].Label)
		assert.Equal(t, 1, tables[0].Column("n"))
		assert.Equal(t, 2, tables[0].Column("mean"))
		assert.Equal(t, Cell{Text: "5%", Number: 5, IsNumber: true}, tables[0].Rows[0][4])
	})

	t.Run("tables without vocabulary or columns are skipped", func(t *testing.T) {
		tables := NumericTablesOf(types.SectionReproducibility, []types.Block{
			tbl([]string{"Lot", "Date"}, []string{"1", "2020"}),
			tbl([]string{"Sample", "Value"}, []string{"1", "2"}),
		})
		assert.Empty(t, tables)
	})
}

func TestParseCell(t *testing.T) {
	tests := []struct {
		in   string
		want Cell
	}{
		{"0.05", Cell{Text: "0.05", Number: 0.05, IsNumber: true}},
		{"1,250", Cell{Text: "1,250", Number: 1250, IsNumber: true}},
		{"12,500.5", Cell{Text: "12,500.5", Number: 12500.5, IsNumber: true}},
		{"0,5", Cell{Text: "0,5", Number: 0.5, IsNumber: true}},
		{"12,75", Cell{Text: "12,75", Number: 12.75, IsNumber: true}},
		{"12.5 %", Cell{Text: "12.5 %", Number: 12.5, IsNumber: true}},
		{"1,2,3", Cell{Text: "1,2,3"}},
		{"1,25.0", Cell{Text: "1,25.0"}},
		{"Blank", Cell{Text: "Blank"}},
		{"", Cell{}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseCell(tt.in))
		})
	}
}

func TestNormalizeWarnings(t *testing.T) {
	d := types.RawDocument{Blocks: []types.Block{
		{Index: 0, Kind: types.BlockParagraph, Text: "Intended Use"},
		{Index: 1, Kind: types.BlockParagraph, Text: "Measures mouse KLK1."},
		{Index: 2, Kind: types.BlockParagraph, Text: "Standard Curve"},
		{Index: 3, Kind: types.BlockParagraph, Text: "See figure."},
	}}
	seg := segment.New(nil)
	res := New(seg.Table()).Normalize(d, seg.Segment(d))

	intended := res.Section(types.SectionIntendedUse)
	assert.True(t, intended.Present)
	assert.Equal(t, "Measures mouse KLK1.", intended.Narrative.Text())

	curve := res.Section(types.SectionStandardCurve)
	assert.True(t, curve.Present)
	assert.Empty(t, curve.Tables)

	repro := res.Section(types.SectionReproducibility)
	assert.False(t, repro.Present)
	assert.Empty(t, repro.KeyValue().Rows)

	var mismatch, notFound int
	for _, w := range res.Warnings {
		switch w.Kind {
		case types.KindShapeMismatch:
			mismatch++
			assert.Equal(t, types.SectionStandardCurve, w.Section)
		case types.KindSectionNotFound:
			notFound++
		}
	}
	assert.Equal(t, 1, mismatch)
	assert.Equal(t, len(types.SectionKeys())-2, notFound)
}

func TestNormalizeConcatenatesRepeatedSections(t *testing.T) {
	d := types.RawDocument{Blocks: []types.Block{
		{Index: 0, Kind: types.BlockParagraph, Text: "Background"},
		{Index: 1, Kind: types.BlockParagraph, Text: "first"},
		{Index: 2, Kind: types.BlockParagraph, Text: "Disclaimer"},
		{Index: 3, Kind: types.BlockParagraph, Text: "legal"},
		{Index: 4, Kind: types.BlockParagraph, Text: "Background"},
		{Index: 5, Kind: types.BlockParagraph, Text: "second"},
	}}
	seg := segment.New(nil)
	res := New(nil).Normalize(d, seg.Segment(d))
	assert.Equal(t, []string{"first", "second"}, res.Section(types.SectionBackground).Narrative.Paragraphs)
}
