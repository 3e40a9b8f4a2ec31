// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/datasheet-engine/internal/docx"
	"github.com/pdiddy/datasheet-engine/internal/docx/docxtest"
	"github.com/pdiddy/datasheet-engine/internal/render"
	"github.com/pdiddy/datasheet-engine/pkg/types"
)

func sourceDoc() []byte {
	return docxtest.New().
		Para("Mouse KLK1 ELISA Kit").
		Para("Catalog Number: EK1586").
		Heading("Intended Use").
		Para("Measures Mouse Klk1 in serum and plasma.").
		Heading("Kit Components").
		Table(
			[]string{"Description", "Specification", "Quantity"},
			[]string{"Wash Buffer", "1", "20 ml"},
		).
		Bytes()
}

func templateDoc() []byte {
	return docxtest.New().
		Para("{{ kit_name }} ({{ catalog_number }})").
		Heading("Intended Use").
		Para("{{ intended_use }}").
		Heading("Reagents").
		Table(
			[]string{"Reagent", "Specification", "Quantity"},
			[]string{"{%tr for r in reagents %}", "", ""},
			[]string{"{{ r.name }}", "{{ r.specification }}", "{{ r.quantity }}"},
			[]string{"{%tr endfor %}", "", ""},
		).
		Para("{% if reproducibility %}").
		Heading("Reproducibility").
		Para("Recovery was measured in spiked samples.").
		Para("{% endif %}").
		Bytes()
}

func pipeline(t *testing.T) *Pipeline {
	t.Helper()
	tpl, err := render.Parse(templateDoc())
	require.NoError(t, err)
	p, err := NewFromConfig(types.ExtractionConfig{Scrub: types.DefaultScrub()}, tpl)
	require.NoError(t, err)
	return p
}

func TestConvertEndToEnd(t *testing.T) {
	out, err := pipeline(t).Convert(sourceDoc(), "EK1586.docx", types.Overrides{})
	require.NoError(t, err)

	assert.Equal(t, "Measures Mouse Klk1 in serum and plasma.", out.Record.IntendedUse)
	assert.Equal(t, []types.ReagentRow{{Name: "Wash Buffer", Specification: "1", Quantity: "20 ml"}}, out.Record.Reagents)
	assert.Empty(t, out.Unresolved)

	doc, err := docx.Parse(out.Document)
	require.NoError(t, err)

	var paragraphs []string
	var tables [][][]string
	for _, b := range doc.Blocks {
		if b.Kind == types.BlockTable {
			tables = append(tables, b.Table())
			continue
		}
		paragraphs = append(paragraphs, b.Text)
	}
	assert.Equal(t, []string{
		"Mouse KLK1 ELISA Kit (EK1586)",
		"Intended Use",
		"Measures Mouse Klk1 in serum and plasma.",
		"Reagents",
	}, paragraphs)
	require.Len(t, tables, 1)
	assert.Equal(t, [][]string{
		{"Reagent", "Specification", "Quantity"},
		{"Wash Buffer", "1", "20 ml"},
	}, tables[0])
}

func TestConvertWarnsAboutMissingSections(t *testing.T) {
	out, err := pipeline(t).Convert(sourceDoc(), "EK1586.docx", types.Overrides{})
	require.NoError(t, err)

	missing := map[types.SectionKey]bool{}
	for _, w := range out.Warnings {
		if w.Kind == types.KindSectionNotFound {
			missing[w.Section] = true
		}
	}
	assert.True(t, missing[types.SectionReproducibility])
	assert.False(t, missing[types.SectionIntendedUse])
}

func TestConvertOverrides(t *testing.T) {
	out, err := pipeline(t).Convert(sourceDoc(), "EK1586.docx", types.Overrides{CatalogNumber: "IMSKLK1KT", LotNumber: "7"})
	require.NoError(t, err)
	assert.Equal(t, "IMSKLK1KT", out.Record.CatalogNumber)
	assert.Equal(t, "IMSKLK1KT-7.docx", out.Record.Name.FileName())

	doc, err := docx.Parse(out.Document)
	require.NoError(t, err)
	assert.Equal(t, "Mouse KLK1 ELISA Kit (IMSKLK1KT)", doc.Blocks[0].Text)
}

func TestConvertMalformedInput(t *testing.T) {
	_, err := pipeline(t).Convert([]byte("%PDF-1.4"), "broken.docx", types.Overrides{})
	require.Error(t, err)

	var mi *types.MalformedInputError
	require.True(t, errors.As(err, &mi))
	assert.Equal(t, "broken.docx", mi.Source)
	assert.Equal(t, types.KindMalformedInput, types.KindOf(err))
}

func TestConvertWithoutTemplate(t *testing.T) {
	p := New(nil, nil, nil)
	_, err := p.Convert(sourceDoc(), "x.docx", types.Overrides{})
	assert.ErrorIs(t, err, ErrNoTemplate)

	ex, err := p.Extract(sourceDoc(), "x.docx", types.Overrides{})
	require.NoError(t, err)
	assert.Equal(t, "EK1586", ex.Record.CatalogNumber)
	assert.NotEmpty(t, ex.Spans)
}

func TestExtractNotesHeadingsEndAssayProtocol(t *testing.T) {
	tests := []struct {
		heading string
		styled  bool
	}{
		{"Procedural Notes", false},
		{"Procedural Notes", true},
		{"Notes", false},
		{"Technical Hints", true},
		{"Precautions", false},
	}
	for _, tt := range tests {
		t.Run(tt.heading, func(t *testing.T) {
			b := docxtest.New().
				Heading("Assay Protocol").
				Para("1. Add 100 ul standard.").
				Para("2. Incubate 90 minutes.")
			if tt.styled {
				b = b.Heading(tt.heading)
			} else {
				b = b.Para(tt.heading)
			}
			data := b.Para("1. Avoid foaming when mixing.").Bytes()

			ex, err := pipeline(t).Extract(data, "x.docx", types.Overrides{})
			require.NoError(t, err)
			assert.Equal(t, []string{"Add 100 ul standard.", "Incubate 90 minutes."}, ex.Record.AssayProtocol)
			assert.Equal(t, "1. Avoid foaming when mixing.", ex.Record.ProceduralNotes)
		})
	}
}

func TestConvertIsDeterministic(t *testing.T) {
	p := pipeline(t)
	first, err := p.Convert(sourceDoc(), "a.docx", types.Overrides{})
	require.NoError(t, err)
	second, err := p.Convert(sourceDoc(), "a.docx", types.Overrides{})
	require.NoError(t, err)
	assert.Equal(t, first.Document, second.Document)
}

func TestNewFromConfigLoadsSectionsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sections.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`sections:
  - key: INTENDED_USE
    shape: narrative
    aliases: [purpose]
`), 0o644))

	p, err := NewFromConfig(types.ExtractionConfig{SectionsFile: path}, nil)
	require.NoError(t, err)

	data := docxtest.New().Heading("Purpose").Para("Research use.").Bytes()
	ex, err := p.Extract(data, "x.docx", types.Overrides{})
	require.NoError(t, err)
	assert.Equal(t, "Research use.", ex.Record.IntendedUse)

	_, err = NewFromConfig(types.ExtractionConfig{SectionsFile: filepath.Join(dir, "missing.yaml")}, nil)
	assert.Error(t, err)

	_, err = NewFromConfig(types.ExtractionConfig{Scrub: types.ScrubConfig{Boilerplate: []string{"("}}}, nil)
	assert.Error(t, err)
}
