// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mapper

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/datasheet-engine/internal/normalize"
	"github.com/pdiddy/datasheet-engine/internal/segment"
	"github.com/pdiddy/datasheet-engine/pkg/types"
)

func p(text string) types.Block {
	return types.Block{Kind: types.BlockParagraph, Text: text}
}

func tbl(rows ...[]string) types.Block {
	return types.Block{Kind: types.BlockTable, Rows: rows}
}

func li(text string) types.Block {
	return types.Block{Kind: types.BlockListItem, Text: text}
}

func input(t *testing.T, source string, ov types.Overrides, blocks ...types.Block) Input {
	t.Helper()
	for i := range blocks {
		blocks[i].Index = i
	}
	doc := types.RawDocument{Blocks: blocks}
	seg := segment.New(nil)
	spans := seg.Segment(doc)
	return Input{
		Doc:       doc,
		Spans:     spans,
		Sections:  normalize.New(seg.Table()).Normalize(doc, spans),
		Source:    source,
		Overrides: ov,
	}
}

func defaultMapper(t *testing.T) *Mapper {
	t.Helper()
	m, err := NewFromConfig(types.DefaultScrub())
	require.NoError(t, err)
	return m
}

func datasheet() []types.Block {
	return []types.Block{
		p("Mouse KLK1 PicoKine® ELISA Kit"),
		p("Catalog Number: EK1586"),
		p("Lot No. 6058725"),
		p("Intended Use"),
		p("For quantitative detection of mouse KLK1 in serum. Submit a review for a reward."),
		p("Overview"),
		tbl([]string{"Sensitivity", "<10 pg/ml"}, []string{"Detection Range (pg/ml)", "78-5000"}, []string{"Sample Type", "Serum, plasma"}),
		p("Kit Components"),
		tbl(
			[]string{"Description", "Quantity", "Specification"},
			[]string{"Anti-KLK1 Precoated Plate", "1", "96 wells"},
			[]string{"Boster Wash Buffer", "1 bottle", "30 ml"},
		),
		p("Assay Protocol"),
		li("Add 100 µl standard."),
		li("Incubate 90 min at 37°C."),
		p("Typical Standard Curve"),
		tbl([]string{"Concentration (pg/ml)", "O.D."}, []string{"5000", "2.4"}, []string{"0", "0.05"}),
		p("Precision"),
		p("Intra-Assay Precision"),
		tbl([]string{"Sample", "n", "Mean", "SD", "CV%"}, []string{"1", "24", "150", "7.5", "5%"}),
		p("Inter-Assay Precision"),
		tbl([]string{"Sample", "n", "Mean", "SD", "CV%"}, []string{"1", "24", "140", "9.8", "7%"}),
	}
}

func TestMapExtractsRecord(t *testing.T) {
	rec := defaultMapper(t).Map(input(t, "EK1586.docx", types.Overrides{}, datasheet()...))

	assert.Equal(t, "Mouse KLK1 ELISA Kit", rec.KitName)
	assert.Equal(t, "EK1586", rec.CatalogNumber)
	assert.Equal(t, "6058725", rec.LotNumber)
	assert.Equal(t, types.OutputName{CatalogNumber: "EK1586", LotNumber: "6058725"}, rec.Name)

	assert.Equal(t, "<10 pg/ml", rec.Sensitivity)
	assert.Equal(t, "78-5000", rec.DetectionRange)
	assert.Equal(t, "Serum, plasma", rec.SampleType)
	assert.Equal(t, "", rec.AssayTime)

	assert.Equal(t, "For quantitative detection of mouse KLK1 in serum.", rec.IntendedUse)
	assert.Equal(t, []string{"Add 100 µl standard.", "Incubate 90 min at 37°C."}, rec.AssayProtocol)

	require.Len(t, rec.Reagents, 2)
	assert.Equal(t, types.ReagentRow{Name: "Anti-KLK1 Precoated Plate", Specification: "96 wells", Quantity: "1"}, rec.Reagents[0])
	assert.Equal(t, "Innovative Research Wash Buffer", rec.Reagents[1].Name)

	assert.Equal(t, []types.CurvePoint{{Concentration: "5000", OD: "2.4"}, {Concentration: "0", OD: "0.05"}}, rec.StandardCurve)

	require.Len(t, rec.Precision.Intra, 1)
	require.Len(t, rec.Precision.Inter, 1)
	assert.Equal(t, types.PrecisionRow{Sample: "1", N: "24", Mean: "150", SD: "7.5", CV: "5%"}, rec.Precision.Intra[0])
	assert.Equal(t, "9.8", rec.Precision.Inter[0].SD)

	assert.Empty(t, rec.Reproducibility)
	assert.NotNil(t, rec.Reproducibility)

	assert.Equal(t, []types.SpecRow{
		{Property: "Sensitivity", Value: "<10 pg/ml"},
		{Property: "Detection Range", Value: "78-5000"},
		{Property: "Sample Type", Value: "Serum, plasma"},
	}, rec.OverviewSpecifications)
	assert.Equal(t, "", rec.Standard)
	assert.Empty(t, rec.TechnicalDetails)
	assert.NotNil(t, rec.TechnicalDetails)
}

func TestMapSpecificationTables(t *testing.T) {
	rec := defaultMapper(t).Map(input(t, "x.docx", types.Overrides{},
		p("Overview"),
		tbl(
			[]string{"Product Name", "Human IL-6 ELISA Kit"},
			[]string{"Storage", "Store at 4°C"},
			[]string{"UniProt", "P05231"},
			[]string{"Catalog Number", "EK0410"},
			[]string{"Reactivity", "Human"},
			[]string{"Size", "96 wells/kit"},
		),
		p("Technical Details"),
		tbl(
			[]string{"Capture/Detection Antibodies", "Mouse monoclonal / biotinylated polyclonal"},
			[]string{"Specificity", "Natural and recombinant human IL-6"},
			[]string{"Standard Protein", "Recombinant human IL-6, E. coli expressed"},
			[]string{"Cross-reactivity", "None detected"},
		),
	))

	assert.Equal(t, []types.SpecRow{
		{Property: "Product Name", Value: "Human IL-6 ELISA Kit"},
		{Property: "Reactive Species", Value: "Human"},
		{Property: "Size", Value: "96 wells/kit"},
		{Property: "Storage Instructions", Value: "Store at 4°C"},
		{Property: "UniProt ID", Value: "P05231"},
		{Property: "Catalog Number", Value: "EK0410"},
	}, rec.OverviewSpecifications)

	assert.Equal(t, "Recombinant human IL-6, E. coli expressed", rec.Standard)
	assert.Equal(t, "Mouse monoclonal / biotinylated polyclonal", rec.Antibodies)
	assert.Equal(t, []types.SpecRow{
		{Property: "Capture/Detection Antibodies", Value: "Mouse monoclonal / biotinylated polyclonal"},
		{Property: "Specificity", Value: "Natural and recombinant human IL-6"},
		{Property: "Standard Protein", Value: "Recombinant human IL-6, E. coli expressed"},
		{Property: "Cross-reactivity", Value: "None detected"},
	}, rec.TechnicalDetails)

	f := rec.Fields()
	assert.Equal(t, "Recombinant human IL-6, E. coli expressed", f["standard"])
	assert.Len(t, f["overview_specifications"], 6)
	assert.Len(t, f["technical_details"], 4)
}

func TestMapStandardScalar(t *testing.T) {
	tests := []struct {
		name   string
		blocks []types.Block
		want   string
	}{
		{
			name:   "standard label",
			blocks: []types.Block{tbl([]string{"Standard", "Recombinant mouse KLK1"}, []string{"Size", "96 wells"})},
			want:   "Recombinant mouse KLK1",
		},
		{
			name:   "standard protein wins over standard",
			blocks: []types.Block{tbl([]string{"Standard", "Lyophilized"}, []string{"Standard Protein", "Recombinant mouse KLK1"})},
			want:   "Recombinant mouse KLK1",
		},
		{
			name: "curve header is not a value",
			blocks: []types.Block{
				p("Typical Standard Curve"),
				tbl([]string{"Standard", "OD"}, []string{"500", "1.2"}),
			},
			want: "",
		},
		{
			name:   "key value line",
			blocks: []types.Block{p("Standard: Recombinant human IL-6")},
			want:   "Recombinant human IL-6",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := New(nil).Map(input(t, "x.docx", types.Overrides{}, tt.blocks...))
			assert.Equal(t, tt.want, rec.Standard)
		})
	}
}

func TestMapStandardCurveKeepsNumericRows(t *testing.T) {
	tests := []struct {
		name string
		rows [][]string
		want []types.CurvePoint
	}{
		{
			name: "repeated header and note rows",
			rows: [][]string{
				{"Concentration (pg/ml)", "O.D."},
				{"1,000", "2.1"},
				{"Concentration (pg/ml)", "O.D."},
				{"0", "0.05"},
				{"For demonstration only", "See lot sheet"},
			},
			want: []types.CurvePoint{{Concentration: "1,000", OD: "2.1"}, {Concentration: "0", OD: "0.05"}},
		},
		{
			name: "decimal comma",
			rows: [][]string{
				{"Concentration (ng/ml)", "O.D."},
				{"0,5", "0,12"},
			},
			want: []types.CurvePoint{{Concentration: "0,5", OD: "0,12"}},
		},
		{
			name: "blank label with reading",
			rows: [][]string{
				{"Concentration (pg/ml)", "O.D."},
				{"Blank", "0.04"},
			},
			want: []types.CurvePoint{{Concentration: "Blank", OD: "0.04"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := New(nil).Map(input(t, "x.docx", types.Overrides{}, p("Typical Standard Curve"), tbl(tt.rows...)))
			assert.Equal(t, tt.want, rec.StandardCurve)
		})
	}
}

func TestMapAssayPrincipleDropsResourceLinks(t *testing.T) {
	rec := defaultMapper(t).Map(input(t, "x.docx", types.Overrides{},
		p("Assay Principle"),
		p("Antibody is coated on a plate. For more information on assay principle, protocols, and troubleshooting tips, see the Technical Resource Center at www.example.com/resources."),
		p("Visit our website to learn about our complete product line."),
		p("Intended Use"),
		p("Research use only."),
	))
	assert.Equal(t, "Antibody is coated on a plate.", rec.AssayPrinciple)
	assert.Equal(t, "Research use only.", rec.IntendedUse)
}

func TestMapOverridesWin(t *testing.T) {
	ov := types.Overrides{KitName: "Mouse Kallikrein 1 ELISA Kit", CatalogNumber: "IMSKLK1KT", LotNumber: "L-42"}
	rec := defaultMapper(t).Map(input(t, "EK1586.docx", ov, datasheet()...))

	assert.Equal(t, "Mouse Kallikrein 1 ELISA Kit", rec.KitName)
	assert.Equal(t, "IMSKLK1KT", rec.CatalogNumber)
	assert.Equal(t, "L-42", rec.LotNumber)
	assert.Equal(t, "IMSKLK1KT-L-42.docx", rec.Name.FileName())
}

func TestMapNamingFallbacks(t *testing.T) {
	tests := []struct {
		name   string
		source string
		blocks []types.Block
		want   types.OutputName
	}{
		{
			name:   "product code in header text",
			source: "upload.docx",
			blocks: []types.Block{p("Human IL-6 ELISA Kit EK0410"), p("Background"), p("text")},
			want:   types.OutputName{CatalogNumber: "EK0410", LotNumber: Unknown},
		},
		{
			name:   "source stem",
			source: "incoming/EK1586-6058725.docx",
			blocks: []types.Block{p("Background"), p("text")},
			want:   types.OutputName{CatalogNumber: "EK1586", LotNumber: "6058725"},
		},
		{
			name:   "nothing resolves",
			source: "datasheet.docx",
			blocks: []types.Block{p("Background"), p("text")},
			want:   types.OutputName{CatalogNumber: Unknown, LotNumber: Unknown},
		},
		{
			name:   "key value table",
			source: "x.docx",
			blocks: []types.Block{tbl([]string{"Cat. No.", "EK0001"}, []string{"Lot", "A/12"})},
			want:   types.OutputName{CatalogNumber: "EK0001", LotNumber: "A_12"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := New(nil).Map(input(t, tt.source, types.Overrides{}, tt.blocks...))
			assert.Equal(t, tt.want, rec.Name)
			assert.NotEmpty(t, rec.Name.CatalogNumber)
			assert.NotEmpty(t, rec.Name.LotNumber)
		})
	}
}

func TestMapLotLabelIsExact(t *testing.T) {
	rec := New(nil).Map(input(t, "x.docx", types.Overrides{},
		tbl([]string{"Lot to lot variation", "<10%"}),
	))
	assert.Equal(t, "", rec.LotNumber)
}

func TestMapEmptyDocumentHasNoNulls(t *testing.T) {
	rec := New(nil).Map(input(t, "", types.Overrides{}))
	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "null")
	assert.Equal(t, types.OutputName{CatalogNumber: Unknown, LotNumber: Unknown}, rec.Name)
}

func TestMapPrecisionWithoutLabelsFillsInOrder(t *testing.T) {
	rec := New(nil).Map(input(t, "x.docx", types.Overrides{},
		p("Precision"),
		tbl([]string{"Sample", "n", "Mean", "SD", "CV"}, []string{"A", "20", "1", "0.1", "10"}),
		tbl([]string{"Sample", "n", "Mean", "SD", "CV"}, []string{"B", "20", "2", "0.2", "10"}),
	))
	require.Len(t, rec.Precision.Intra, 1)
	require.Len(t, rec.Precision.Inter, 1)
	assert.Equal(t, "A", rec.Precision.Intra[0].Sample)
	assert.Equal(t, "B", rec.Precision.Inter[0].Sample)
}

func TestMapReproducibility(t *testing.T) {
	rec := New(nil).Map(input(t, "x.docx", types.Overrides{},
		p("Recovery"),
		tbl(
			[]string{"Sample", "Observed", "Added", "Expected", "Recovery %"},
			[]string{"Serum", "95", "100", "100", "95%"},
		),
	))
	require.Len(t, rec.Reproducibility, 1)
	assert.Equal(t, types.ReproducibilityRow{Sample: "Serum", Value: "95", Added: "100", Expected: "100", Recovery: "95%"}, rec.Reproducibility[0])
}

func TestScrubber(t *testing.T) {
	s, err := NewScrubber(types.DefaultScrub())
	require.NoError(t, err)

	tests := []struct {
		in, want string
	}{
		{"Boster Bio® offers kits.", "Innovative Research offers kits."},
		{"PicoKine™ ELISA", "ELISA"},
		{"Wash.\nFor more information on assay principle, protocols, and troubleshooting tips, see the guide.", "Wash."},
		{"Great kit. Submit a product review and get an Amazon gift card.", "Great kit."},
		{
			"Coated on a plate. For more information on assay principle, protocols, and troubleshooting tips, see the Technical Resource Center at www.example.com/resources.\nVisit our website to learn about our complete product line.",
			"Coated on a plate.",
		},
		{
			"Coated plate. For more information on assay principle, protocols, and troubleshooting tips, see www.example.com/elisa. Wash twice.",
			"Coated plate. Wash twice.",
		},
		{"Read first.\nFor more information on assay principle, protocols, and troubleshooting tips, see www.example.com", "Read first."},
		{"See the Technical Resource Center at www.example.com/elisa for tips. Store at 4°C.", "Store at 4°C."},
		{"Submit a review at www.example.com/review. Store dry.", "Store dry."},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, s.Apply(tt.in), tt.in)
	}

	assert.Equal(t, []string{"a"}, s.ApplyAll([]string{"a", "®", ""}))

	disabled, err := NewScrubber(types.ScrubConfig{Disabled: true, Replacements: []types.Replacement{{From: "a", To: "b"}}})
	require.NoError(t, err)
	assert.Equal(t, "a", disabled.Apply("a"))

	_, err = NewScrubber(types.ScrubConfig{Boilerplate: []string{"("}})
	assert.Error(t, err)

	var nilScrub *Scrubber
	assert.Equal(t, "Boster", nilScrub.Apply("Boster"))
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "EK1586", SanitizeName(" EK1586 "))
	assert.Equal(t, "A_12", SanitizeName("A/12"))
	assert.Equal(t, Unknown, SanitizeName("../"))
}
